package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/example/room-reservations/internal/application"
	"github.com/example/room-reservations/internal/availability"
)

var (
	errBadRequestBody       = errors.New("Invalid request body")
	errInvalidReservationID = errors.New("Invalid reservation id")
	errMissingSessionToken  = errors.New("Authentication required")
	errPasswordRequired     = errors.New("Password is required")
	errTooManyRequests      = errors.New("Too many login attempts. Please try again later.")
)

const (
	msgConflict         = "This time slot is already reserved. Please select a different time."
	msgNotFound         = "Reservation not found"
	msgInvalidPassword  = "Invalid password"
	msgSessionInvalid   = "Session is invalid. Please log in again."
	msgSessionExpired   = "Session expired. Please log in again."
	msgStoreUnavailable = "Failed to access reservations. Please try again."
	msgInternal         = "Internal server error"
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeData(ctx context.Context, w http.ResponseWriter, status int, data any, message string) {
	r.writeJSON(ctx, w, status, successResponse{Success: true, Data: data, Message: message})
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := statusMessage(status)
	if err != nil {
		if msg := err.Error(); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).WarnContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Error: message})
}

func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New(msgInternal))
		return
	}

	var vErr *application.ValidationError
	switch {
	case errors.As(err, &vErr):
		r.writeJSON(ctx, w, http.StatusBadRequest, errorResponse{
			Error:  translateValidationError(vErr.Cause),
			Fields: translateFieldErrors(vErr),
		})
	case errors.Is(err, application.ErrConflict):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{Error: msgConflict})
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Error: msgNotFound})
	case errors.Is(err, application.ErrInvalidCredentials):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{Error: msgInvalidPassword})
	case errors.Is(err, application.ErrSessionExpired):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{Error: msgSessionExpired})
	case errors.Is(err, application.ErrUnauthenticated):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{Error: msgSessionInvalid})
	case errors.Is(err, application.ErrStoreUnavailable):
		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Error: msgStoreUnavailable})
	case errors.Is(err, context.DeadlineExceeded):
		r.writeJSON(ctx, w, http.StatusServiceUnavailable, errorResponse{Error: statusMessage(http.StatusServiceUnavailable)})
	default:
		r.loggerFor(ctx).ErrorContext(ctx, "unhandled service error", "error", err, "error_kind", application.ErrorKind(err))
		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Error: msgInternal})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func statusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "Invalid request"
	case http.StatusUnauthorized:
		return errMissingSessionToken.Error()
	case http.StatusNotFound:
		return msgNotFound
	case http.StatusConflict:
		return msgConflict
	case http.StatusTooManyRequests:
		return errTooManyRequests.Error()
	case http.StatusServiceUnavailable:
		return "Service is busy. Please try again."
	default:
		return msgInternal
	}
}

var validationMessages = []struct {
	err     error
	message string
}{
	{application.ErrMissingFields, "Missing required fields"},
	{application.ErrUnknownRoom, "Invalid room"},
	{application.ErrUnknownCompany, "Invalid company"},
	{availability.ErrMalformedTime, "Invalid time format"},
	{availability.ErrMalformedDate, "Invalid date format"},
	{availability.ErrMalformedInput, "Invalid date or time format"},
	{availability.ErrInvalidRange, "End time must be after start time"},
	{availability.ErrTooShort, "Reservation must be at least 15 minutes"},
	{availability.ErrTooLong, "Reservation cannot exceed 8 hours"},
	{availability.ErrInThePast, "Cannot reserve in the past"},
	{availability.ErrTooFarAhead, "Cannot reserve more than 1 year in advance"},
	{availability.ErrRangeTooWide, "Date range is too wide"},
}

func translateValidationError(err error) string {
	for _, m := range validationMessages {
		if errors.Is(err, m.err) {
			return m.message
		}
	}
	return "Invalid request"
}

func translateValidationMessage(message string) string {
	for _, m := range validationMessages {
		if m.err.Error() == message {
			return m.message
		}
	}
	return message
}

func translateFieldErrors(vErr *application.ValidationError) map[string]string {
	if vErr == nil || len(vErr.FieldErrors) == 0 {
		return nil
	}

	translated := make(map[string]string, len(vErr.FieldErrors))
	for field, msg := range vErr.FieldErrors {
		translated[field] = translateValidationMessage(msg)
	}
	return translated
}

type successResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

type errorResponse struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Fields  map[string]string `json:"fields,omitempty"`
}
