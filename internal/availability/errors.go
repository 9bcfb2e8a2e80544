package availability

import "errors"

var (
	// ErrMalformedInput is matched by every date or time that is not in its fixed-width form.
	ErrMalformedInput = errors.New("availability: malformed input")
	// ErrInvalidRange is returned when the start time is not before the end time.
	ErrInvalidRange = errors.New("availability: end time must be after start time")
	// ErrTooShort is returned when a reservation is shorter than the minimum duration.
	ErrTooShort = errors.New("availability: reservation is too short")
	// ErrTooLong is returned when a reservation is longer than the maximum duration.
	ErrTooLong = errors.New("availability: reservation is too long")
	// ErrInThePast is returned when the date lies before today.
	ErrInThePast = errors.New("availability: date is in the past")
	// ErrTooFarAhead is returned when the date lies beyond the advance booking window.
	ErrTooFarAhead = errors.New("availability: date is too far ahead")
)

var (
	// ErrMalformedTime reports an unparseable "HH:MM" value.
	ErrMalformedTime error = &malformedError{what: "time"}
	// ErrMalformedDate reports an unparseable "YYYY-MM-DD" value.
	ErrMalformedDate error = &malformedError{what: "date"}
)

type malformedError struct {
	what string
}

func (e *malformedError) Error() string {
	return "availability: malformed " + e.what
}

func (e *malformedError) Unwrap() error {
	return ErrMalformedInput
}

// ErrRangeTooWide is returned when a calendar date range exceeds MaxRangeDays.
var ErrRangeTooWide = errors.New("availability: date range too wide")
