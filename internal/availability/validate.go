package availability

import "time"

// Policy bounds the duration and advance window of a reservation.
type Policy struct {
	MinDuration    time.Duration
	MaxDuration    time.Duration
	MaxAdvanceDays int
}

// DefaultPolicy allows reservations between 15 minutes and 8 hours long, up to
// 365 days ahead.
var DefaultPolicy = Policy{
	MinDuration:    15 * time.Minute,
	MaxDuration:    8 * time.Hour,
	MaxAdvanceDays: 365,
}

// ValidateTimes checks a start/end pair against DefaultPolicy.
func ValidateTimes(start, end string) error {
	return DefaultPolicy.ValidateTimes(start, end)
}

// ValidateDate checks a date against DefaultPolicy relative to now.
func ValidateDate(date string, now time.Time) error {
	return DefaultPolicy.ValidateDate(date, now)
}

// ValidateTimes parses both values and enforces ordering and duration bounds.
func (p Policy) ValidateTimes(start, end string) error {
	from, err := ParseClock(start)
	if err != nil {
		return err
	}
	to, err := ParseClock(end)
	if err != nil {
		return err
	}
	return p.ValidateClocks(from, to)
}

// ValidateClocks enforces ordering and duration bounds on parsed values.
func (p Policy) ValidateClocks(start, end Clock) error {
	if start >= end {
		return ErrInvalidRange
	}
	length := (end - start).Duration()
	if length > p.MaxDuration {
		return ErrTooLong
	}
	if length < p.MinDuration {
		return ErrTooShort
	}
	return nil
}

// ValidateDate parses date and checks it is neither before today nor beyond
// the advance window.
func (p Policy) ValidateDate(date string, now time.Time) error {
	d, err := ParseDate(date)
	if err != nil {
		return err
	}
	today := Today(now)
	if d.Before(today) {
		return ErrInThePast
	}
	if d.After(today.AddDate(0, 0, p.MaxAdvanceDays)) {
		return ErrTooFarAhead
	}
	return nil
}
