package availability

import "time"

// MaxRangeDays bounds the number of dates a single calendar projection covers.
const MaxRangeDays = 62

// Room is a bookable room as shown on the calendar.
type Room struct {
	ID          string
	Name        string
	Description string
}

// TimeSlot is one grid cell for one room on one date.
type TimeSlot struct {
	Time          string
	Available     bool
	ReservationID string
}

// RoomSchedule is the slot row of a single room on a single date.
type RoomSchedule struct {
	Room  Room
	Slots []TimeSlot
}

// DaySchedule holds one RoomSchedule per room for a date.
type DaySchedule struct {
	Date  string
	Today bool
	Rooms []RoomSchedule
}

// CalendarView is the read-only projection of reservations onto a date range.
type CalendarView struct {
	StartDate   string
	EndDate     string
	Dates       []string
	TimeSlots   []string
	CurrentSlot string
	Days        []DaySchedule
}

type dayKey struct {
	roomID string
	date   time.Time
}

// BuildCalendar projects intervals onto the grid for every room and date. A
// slot is occupied when its start falls inside [Start, End) of a reservation in
// the same room on the same date. When now falls on one of the dates within the
// grid, CurrentSlot holds the slot containing it.
func BuildCalendar(rooms []Room, dates []time.Time, intervals []Interval, grid Grid, now time.Time) CalendarView {
	clocks := grid.Slots()
	labels := make([]string, len(clocks))
	for i, c := range clocks {
		labels[i] = c.String()
	}

	byDay := make(map[dayKey][]Interval)
	for _, iv := range intervals {
		key := dayKey{roomID: iv.RoomID, date: iv.Date}
		byDay[key] = append(byDay[key], iv)
	}

	view := CalendarView{
		Dates:     make([]string, 0, len(dates)),
		TimeSlots: labels,
		Days:      make([]DaySchedule, 0, len(dates)),
	}
	if len(dates) > 0 {
		view.StartDate = FormatDate(dates[0])
		view.EndDate = FormatDate(dates[len(dates)-1])
	}

	today := Today(now)
	for _, date := range dates {
		day := DaySchedule{
			Date:  FormatDate(date),
			Today: !now.IsZero() && date.Equal(today),
			Rooms: make([]RoomSchedule, 0, len(rooms)),
		}
		for _, room := range rooms {
			booked := byDay[dayKey{roomID: room.ID, date: date}]
			schedule := RoomSchedule{Room: room, Slots: make([]TimeSlot, len(clocks))}
			for i, c := range clocks {
				slot := TimeSlot{Time: labels[i], Available: true}
				for _, iv := range booked {
					if iv.Contains(c) {
						slot.Available = false
						slot.ReservationID = iv.ID
						break
					}
				}
				schedule.Slots[i] = slot
			}
			day.Rooms = append(day.Rooms, schedule)
		}
		if day.Today {
			view.CurrentSlot = currentSlot(clocks, grid.IntervalMinutes, ClockOf(now))
		}
		view.Dates = append(view.Dates, day.Date)
		view.Days = append(view.Days, day)
	}
	return view
}

func currentSlot(clocks []Clock, intervalMinutes int, now Clock) string {
	if len(clocks) == 0 || now < clocks[0] {
		return ""
	}
	floored := FloorToInterval(now-clocks[0], intervalMinutes) + clocks[0]
	for _, c := range clocks {
		if c == floored {
			return c.String()
		}
	}
	return ""
}

// WeekStart returns the Monday of the week containing d.
func WeekStart(d time.Time) time.Time {
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// WeekDates returns the seven consecutive dates starting at start.
func WeekDates(start time.Time) []time.Time {
	out := make([]time.Time, 7)
	for i := range out {
		out[i] = start.AddDate(0, 0, i)
	}
	return out
}

// DateRange returns every date from start through end inclusive.
func DateRange(start, end time.Time) ([]time.Time, error) {
	if end.Before(start) {
		return nil, ErrInvalidRange
	}
	days := int(end.Sub(start).Hours()/24) + 1
	if days > MaxRangeDays {
		return nil, ErrRangeTooWide
	}
	out := make([]time.Time, 0, days)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out, nil
}
