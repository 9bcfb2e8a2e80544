package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/example/room-reservations/internal/application"
)

type calendarService interface {
	Calendar(ctx context.Context, query application.CalendarQuery) (application.Calendar, error)
}

// CalendarHandler serves the weekly slot grid.
type CalendarHandler struct {
	service   calendarService
	responder responder
	logger    *slog.Logger
}

func NewCalendarHandler(service calendarService, logger *slog.Logger) *CalendarHandler {
	base := defaultLogger(logger)
	return &CalendarHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *CalendarHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	q := r.URL.Query()
	query := application.CalendarQuery{
		Week:      q.Get("week"),
		StartDate: q.Get("startDate"),
		EndDate:   q.Get("endDate"),
	}

	calendar, err := h.service.Calendar(r.Context(), query)
	if err != nil {
		handlerLogger(r.Context(), h.logger, "CalendarHandler", "Get").ErrorContext(r.Context(), "calendar failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeData(r.Context(), w, http.StatusOK, toCalendarDTO(calendar), "")
}

type calendarDTO struct {
	StartDate    string           `json:"startDate"`
	EndDate      string           `json:"endDate"`
	Dates        []string         `json:"dates"`
	TimeSlots    []string         `json:"timeSlots"`
	CurrentSlot  string           `json:"currentSlot,omitempty"`
	Rooms        []roomDTO        `json:"rooms"`
	Days         []dayDTO         `json:"days"`
	Reservations []reservationDTO `json:"reservations"`
}

type dayDTO struct {
	Date  string            `json:"date"`
	Today bool              `json:"today"`
	Rooms []roomScheduleDTO `json:"rooms"`
}

type roomScheduleDTO struct {
	RoomID string    `json:"roomId"`
	Slots  []slotDTO `json:"slots"`
}

type slotDTO struct {
	Time          string `json:"time"`
	Available     bool   `json:"available"`
	ReservationID string `json:"reservationId,omitempty"`
}

func toCalendarDTO(c application.Calendar) calendarDTO {
	view := c.View
	dto := calendarDTO{
		StartDate:    view.StartDate,
		EndDate:      view.EndDate,
		Dates:        view.Dates,
		TimeSlots:    view.TimeSlots,
		CurrentSlot:  view.CurrentSlot,
		Days:         make([]dayDTO, len(view.Days)),
		Reservations: toReservationDTOs(c.Reservations),
	}

	for i, day := range view.Days {
		d := dayDTO{Date: day.Date, Today: day.Today, Rooms: make([]roomScheduleDTO, len(day.Rooms))}
		for j, rs := range day.Rooms {
			slots := make([]slotDTO, len(rs.Slots))
			for k, s := range rs.Slots {
				slots[k] = slotDTO{Time: s.Time, Available: s.Available, ReservationID: s.ReservationID}
			}
			d.Rooms[j] = roomScheduleDTO{RoomID: rs.Room.ID, Slots: slots}
		}
		dto.Days[i] = d
	}

	if len(view.Days) > 0 {
		for _, rs := range view.Days[0].Rooms {
			dto.Rooms = append(dto.Rooms, roomDTO{ID: rs.Room.ID, Name: rs.Room.Name, Description: rs.Room.Description})
		}
	}
	if dto.Rooms == nil {
		dto.Rooms = []roomDTO{}
	}
	return dto
}
