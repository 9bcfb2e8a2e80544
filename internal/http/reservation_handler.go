package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/room-reservations/internal/application"
	"github.com/example/room-reservations/internal/persistence"
)

type reservationService interface {
	Create(ctx context.Context, input application.ReservationInput) (application.Reservation, error)
	Update(ctx context.Context, id string, patch application.ReservationPatch) (application.Reservation, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (application.Reservation, error)
	List(ctx context.Context, filter application.ReservationFilter) ([]application.Reservation, error)
}

// ReservationHandler serves the reservation collection and item routes.
type ReservationHandler struct {
	service   reservationService
	responder responder
	logger    *slog.Logger
}

func NewReservationHandler(service reservationService, logger *slog.Logger) *ReservationHandler {
	base := defaultLogger(logger)
	return &ReservationHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ReservationHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ReservationHandler", operation, attrs...)
}

func (h *ReservationHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	q := r.URL.Query()
	filter := application.ReservationFilter{
		RoomID:    q.Get("roomId"),
		Date:      q.Get("date"),
		Company:   q.Get("company"),
		StartDate: q.Get("startDate"),
		EndDate:   q.Get("endDate"),
	}
	logger := h.log(r.Context(), "List", "room_id", filter.RoomID, "date", filter.Date)

	reservations, err := h.service.List(r.Context(), filter)
	if err != nil {
		logger.ErrorContext(r.Context(), "reservation listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeData(r.Context(), w, http.StatusOK, toReservationDTOs(reservations), "")
}

func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req reservationRequest
	if !decodeAndValidate(r.Context(), w, r, h.responder, &req) {
		return
	}

	logger := h.log(r.Context(), "Create", "room_id", req.RoomID, "date", req.Date)

	reservation, err := h.service.Create(r.Context(), req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "reservation creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("reservation_id", reservation.ID).InfoContext(r.Context(), "reservation created")
	h.responder.writeData(r.Context(), w, http.StatusCreated, toReservationDTO(reservation), "Reservation created successfully")
}

func (h *ReservationHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := h.reservationID(w, r, "Get")
	if !ok {
		return
	}

	reservation, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeData(r.Context(), w, http.StatusOK, toReservationDTO(reservation), "")
}

func (h *ReservationHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := h.reservationID(w, r, "Update")
	if !ok {
		return
	}

	var req reservationPatchRequest
	if !decodeAndValidate(r.Context(), w, r, h.responder, &req) {
		return
	}

	logger := h.log(r.Context(), "Update", "reservation_id", id)

	reservation, err := h.service.Update(r.Context(), id, req.toPatch())
	if err != nil {
		logger.ErrorContext(r.Context(), "reservation update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "reservation updated")
	h.responder.writeData(r.Context(), w, http.StatusOK, toReservationDTO(reservation), "Reservation updated successfully")
}

func (h *ReservationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := h.reservationID(w, r, "Delete")
	if !ok {
		return
	}

	logger := h.log(r.Context(), "Delete", "reservation_id", id)

	if err := h.service.Delete(r.Context(), id); err != nil {
		logger.ErrorContext(r.Context(), "reservation deletion failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "reservation deleted")
	h.responder.writeData(r.Context(), w, http.StatusOK, nil, "Reservation deleted successfully")
}

func (h *ReservationHandler) reservationID(w http.ResponseWriter, r *http.Request, operation string) (string, bool) {
	id, ok := ReservationIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" || strings.Contains(id, "/") {
		h.log(r.Context(), operation, "error_kind", "bad_request").WarnContext(r.Context(), "missing reservation id")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidReservationID)
		return "", false
	}
	return id, true
}

type reservationRequest struct {
	RoomID     string `json:"roomId" validate:"required"`
	RoomName   string `json:"roomName,omitempty"`
	Date       string `json:"date" validate:"required"`
	StartTime  string `json:"startTime" validate:"required"`
	EndTime    string `json:"endTime" validate:"required"`
	ReservedBy string `json:"reservedBy" validate:"required,max=100"`
	Company    string `json:"company" validate:"required,max=100"`
}

func (r reservationRequest) toInput() application.ReservationInput {
	return application.ReservationInput{
		RoomID:     r.RoomID,
		Date:       r.Date,
		StartTime:  r.StartTime,
		EndTime:    r.EndTime,
		ReservedBy: r.ReservedBy,
		Company:    r.Company,
	}
}

// reservationPatchRequest ignores id, roomName and createdAt if supplied.
type reservationPatchRequest struct {
	RoomID     *string `json:"roomId,omitempty"`
	Date       *string `json:"date,omitempty"`
	StartTime  *string `json:"startTime,omitempty"`
	EndTime    *string `json:"endTime,omitempty"`
	ReservedBy *string `json:"reservedBy,omitempty" validate:"omitempty,max=100"`
	Company    *string `json:"company,omitempty" validate:"omitempty,max=100"`
}

func (r reservationPatchRequest) toPatch() application.ReservationPatch {
	return application.ReservationPatch{
		RoomID:     r.RoomID,
		Date:       r.Date,
		StartTime:  r.StartTime,
		EndTime:    r.EndTime,
		ReservedBy: r.ReservedBy,
		Company:    r.Company,
	}
}

type reservationDTO struct {
	ID         string `json:"id"`
	RoomID     string `json:"roomId"`
	RoomName   string `json:"roomName"`
	Date       string `json:"date"`
	StartTime  string `json:"startTime"`
	EndTime    string `json:"endTime"`
	ReservedBy string `json:"reservedBy"`
	Company    string `json:"company"`
	CreatedAt  string `json:"createdAt"`
}

func toReservationDTO(r application.Reservation) reservationDTO {
	dto := reservationDTO{
		ID:         r.ID,
		RoomID:     r.RoomID,
		RoomName:   r.RoomName,
		Date:       r.Date,
		StartTime:  r.StartTime,
		EndTime:    r.EndTime,
		ReservedBy: r.ReservedBy,
		Company:    r.Company,
	}
	if !r.CreatedAt.IsZero() {
		dto.CreatedAt = r.CreatedAt.UTC().Format(persistence.TimestampLayout)
	}
	return dto
}

func toReservationDTOs(list []application.Reservation) []reservationDTO {
	out := make([]reservationDTO, len(list))
	for i, r := range list {
		out[i] = toReservationDTO(r)
	}
	return out
}
