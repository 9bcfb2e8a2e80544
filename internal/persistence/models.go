package persistence

import (
	"strings"
	"time"
)

// TimestampLayout is the external ISO-8601 form of CreatedAt.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// StoredTimestampLayout is the fixed-width nanosecond form text backends
// persist CreatedAt in. Parse stored values with time.RFC3339Nano, which also
// accepts the shorter fractions written by older rows.
const StoredTimestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Reservation is a stored reservation record. Date, StartTime and EndTime keep
// their fixed-width "YYYY-MM-DD" and "HH:MM" forms.
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

// ReservationDraft carries the caller supplied fields of a new reservation.
// The store assigns ID and CreatedAt.
type ReservationDraft struct {
	RoomID     string
	RoomName   string
	Date       string
	StartTime  string
	EndTime    string
	ReservedBy string
	Company    string
}

// Validate reports ErrConstraintViolation when a required column is empty.
func (d ReservationDraft) Validate() error {
	if d.RoomID == "" || d.Date == "" || d.StartTime == "" || d.EndTime == "" {
		return ErrConstraintViolation
	}
	return nil
}

// Reservation materialises the draft with the store assigned fields.
func (d ReservationDraft) Reservation(id string, createdAt time.Time) Reservation {
	return Reservation{
		ID:         id,
		RoomID:     d.RoomID,
		RoomName:   d.RoomName,
		Date:       d.Date,
		StartTime:  d.StartTime,
		EndTime:    d.EndTime,
		ReservedBy: d.ReservedBy,
		Company:    d.Company,
		CreatedAt:  createdAt,
	}
}

// ReservationPatch lists the mutable fields of a reservation. Nil fields are
// left untouched. ID and CreatedAt cannot be patched.
type ReservationPatch struct {
	RoomID     *string
	RoomName   *string
	Date       *string
	StartTime  *string
	EndTime    *string
	ReservedBy *string
	Company    *string
}

// IsZero reports whether the patch changes nothing.
func (p ReservationPatch) IsZero() bool {
	return p.RoomID == nil && p.RoomName == nil && p.Date == nil && p.StartTime == nil &&
		p.EndTime == nil && p.ReservedBy == nil && p.Company == nil
}

// MovesSlot reports whether the patch touches the room, date or time window.
func (p ReservationPatch) MovesSlot() bool {
	return p.RoomID != nil || p.Date != nil || p.StartTime != nil || p.EndTime != nil
}

// Apply returns r with the patch merged onto it.
func (p ReservationPatch) Apply(r Reservation) Reservation {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&r.RoomID, p.RoomID)
	set(&r.RoomName, p.RoomName)
	set(&r.Date, p.Date)
	set(&r.StartTime, p.StartTime)
	set(&r.EndTime, p.EndTime)
	set(&r.ReservedBy, p.ReservedBy)
	set(&r.Company, p.Company)
	return r
}

// Columns returns the column/value pairs touched by the patch, keyed by the
// SQL column name.
func (p ReservationPatch) Columns() map[string]any {
	cols := make(map[string]any, 7)
	add := func(name string, v *string) {
		if v != nil {
			cols[name] = *v
		}
	}
	add("room_id", p.RoomID)
	add("room_name", p.RoomName)
	add("date", p.Date)
	add("start_time", p.StartTime)
	add("end_time", p.EndTime)
	add("reserved_by", p.ReservedBy)
	add("company", p.Company)
	return cols
}

// ReservationFilter narrows reservation listings. Empty fields match
// everything. Company matches case-insensitively as a substring; StartDate and
// EndDate bound the date inclusively.
type ReservationFilter struct {
	RoomID    string
	Date      string
	Company   string
	StartDate string
	EndDate   string
}

// Match reports whether r satisfies the filter.
func (f ReservationFilter) Match(r Reservation) bool {
	if f.RoomID != "" && r.RoomID != f.RoomID {
		return false
	}
	if f.Date != "" && r.Date != f.Date {
		return false
	}
	if f.Company != "" && !strings.Contains(strings.ToLower(r.Company), strings.ToLower(f.Company)) {
		return false
	}
	if f.StartDate != "" && r.Date < f.StartDate {
		return false
	}
	if f.EndDate != "" && r.Date > f.EndDate {
		return false
	}
	return true
}
