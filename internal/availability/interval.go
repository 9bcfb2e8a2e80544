package availability

import "time"

// Interval is the engine's view of a reservation: a half-open
// [Start, End) window in one room on one date.
type Interval struct {
	ID     string
	RoomID string
	Date   time.Time
	Start  Clock
	End    Clock
}

// NewInterval parses the external string forms into an Interval.
func NewInterval(id, roomID, date, start, end string) (Interval, error) {
	d, err := ParseDate(date)
	if err != nil {
		return Interval{}, err
	}
	from, err := ParseClock(start)
	if err != nil {
		return Interval{}, err
	}
	to, err := ParseClock(end)
	if err != nil {
		return Interval{}, err
	}
	return Interval{ID: id, RoomID: roomID, Date: d, Start: from, End: to}, nil
}

// Contains reports whether the clock falls inside [Start, End).
func (i Interval) Contains(c Clock) bool {
	return i.Start <= c && c < i.End
}

// Overlaps reports whether two intervals collide. Intervals in different rooms
// or on different dates never collide, and touching endpoints do not count.
func Overlaps(a, b Interval) bool {
	if a.RoomID != b.RoomID || !a.Date.Equal(b.Date) {
		return false
	}
	return a.Start < b.End && b.Start < a.End
}

// IsAvailable reports whether candidate collides with none of existing,
// ignoring the entry whose ID equals excludeID.
func IsAvailable(candidate Interval, existing []Interval, excludeID string) bool {
	for _, other := range existing {
		if excludeID != "" && other.ID == excludeID {
			continue
		}
		if Overlaps(candidate, other) {
			return false
		}
	}
	return true
}

// Conflicts returns every entry of existing that collides with candidate,
// ignoring the entry whose ID equals excludeID.
func Conflicts(candidate Interval, existing []Interval, excludeID string) []Interval {
	var out []Interval
	for _, other := range existing {
		if excludeID != "" && other.ID == excludeID {
			continue
		}
		if Overlaps(candidate, other) {
			out = append(out, other)
		}
	}
	return out
}
