package application

import (
	"time"

	"github.com/example/room-reservations/internal/availability"
	"github.com/example/room-reservations/internal/persistence"
)

// Room is a statically configured meeting room.
type Room struct {
	ID          string
	Name        string
	Description string
}

// Reservation is a booked window in one room on one date.
type Reservation struct {
	ID         string
	RoomID     string
	RoomName   string
	Date       string
	StartTime  string
	EndTime    string
	ReservedBy string
	Company    string
	CreatedAt  time.Time
}

// ReservationInput captures caller provided fields for a new reservation.
type ReservationInput struct {
	RoomID     string
	Date       string
	StartTime  string
	EndTime    string
	ReservedBy string
	Company    string
}

// ReservationPatch captures the fields an administrator may change. Nil fields
// keep their stored value. The room name follows the room id.
type ReservationPatch struct {
	RoomID     *string
	Date       *string
	StartTime  *string
	EndTime    *string
	ReservedBy *string
	Company    *string
}

// ReservationFilter narrows reservation listings.
type ReservationFilter struct {
	RoomID    string
	Date      string
	Company   string
	StartDate string
	EndDate   string
}

// CalendarQuery selects the dates of a calendar. Week is any date inside the
// requested week; StartDate and EndDate give an explicit inclusive range.
// An empty query selects the current week.
type CalendarQuery struct {
	Week      string
	StartDate string
	EndDate   string
}

// Calendar is the slot grid of every room for the selected dates, together
// with the reservations it was built from.
type Calendar struct {
	View         availability.CalendarView
	Reservations []Reservation
}

// Session is an issued admin session.
type Session struct {
	Token     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

func fromRecord(r persistence.Reservation) Reservation {
	return Reservation{
		ID:         r.ID,
		RoomID:     r.RoomID,
		RoomName:   r.RoomName,
		Date:       r.Date,
		StartTime:  r.StartTime,
		EndTime:    r.EndTime,
		ReservedBy: r.ReservedBy,
		Company:    r.Company,
		CreatedAt:  r.CreatedAt,
	}
}

func fromRecords(records []persistence.Reservation) []Reservation {
	out := make([]Reservation, len(records))
	for i, r := range records {
		out[i] = fromRecord(r)
	}
	return out
}

func (f ReservationFilter) record() persistence.ReservationFilter {
	return persistence.ReservationFilter{
		RoomID:    f.RoomID,
		Date:      f.Date,
		Company:   f.Company,
		StartDate: f.StartDate,
		EndDate:   f.EndDate,
	}
}
