package http

import (
	"log/slog"
	"net/http"

	"github.com/example/room-reservations/internal/application"
)

type roomCatalog interface {
	Rooms() []application.Room
	Companies() []string
}

// RoomHandler serves the static room catalog.
type RoomHandler struct {
	catalog   roomCatalog
	responder responder
	logger    *slog.Logger
}

func NewRoomHandler(catalog roomCatalog, logger *slog.Logger) *RoomHandler {
	base := defaultLogger(logger)
	return &RoomHandler{catalog: catalog, responder: newResponder(base), logger: base}
}

func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.catalog == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	rooms := h.catalog.Rooms()
	dto := roomsResponse{Rooms: make([]roomDTO, len(rooms)), Companies: h.catalog.Companies()}
	for i, room := range rooms {
		dto.Rooms[i] = roomDTO{ID: room.ID, Name: room.Name, Description: room.Description}
	}
	if dto.Companies == nil {
		dto.Companies = []string{}
	}

	h.responder.writeData(r.Context(), w, http.StatusOK, dto, "")
}

type roomDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type roomsResponse struct {
	Rooms     []roomDTO `json:"rooms"`
	Companies []string  `json:"companies"`
}
