package availability

import (
	"fmt"
	"time"
)

const (
	// DateLayout is the external form of a reservation date.
	DateLayout = "2006-01-02"
	// ClockLayout is the external form of a wall-clock time.
	ClockLayout = "15:04"
)

// Clock is a wall-clock time of day expressed in minutes since midnight.
type Clock int

// ParseClock parses a zero-padded 24-hour "HH:MM" value.
func ParseClock(value string) (Clock, error) {
	if len(value) != len(ClockLayout) {
		return 0, ErrMalformedTime
	}
	t, err := time.Parse(ClockLayout, value)
	if err != nil {
		return 0, ErrMalformedTime
	}
	return Clock(t.Hour()*60 + t.Minute()), nil
}

// String renders the clock in "HH:MM" form.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// Duration converts the clock to the elapsed time since midnight.
func (c Clock) Duration() time.Duration {
	return time.Duration(c) * time.Minute
}

// ParseDate parses a zero-padded "YYYY-MM-DD" calendar date. The result is
// midnight UTC so dates compare as civil days.
func ParseDate(value string) (time.Time, error) {
	if len(value) != len(DateLayout) {
		return time.Time{}, ErrMalformedDate
	}
	d, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, ErrMalformedDate
	}
	return d, nil
}

// FormatDate renders a civil date in "YYYY-MM-DD" form.
func FormatDate(d time.Time) string {
	return d.Format(DateLayout)
}

// Today returns the civil date of now in now's own location.
func Today(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// ClockOf returns the wall-clock time of now in now's own location.
func ClockOf(now time.Time) Clock {
	return Clock(now.Hour()*60 + now.Minute())
}

// IsToday reports whether date is the civil date of now.
func IsToday(date string, now time.Time) bool {
	d, err := ParseDate(date)
	if err != nil {
		return false
	}
	return d.Equal(Today(now))
}
