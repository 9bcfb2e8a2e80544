package testfixtures

import (
	"sync"
	"time"

	"github.com/example/room-reservations/internal/availability"
)

// Clock is a settable time source shared by the stores and services a test
// builds. It only moves when told to.
type Clock struct {
	mu sync.Mutex
	at time.Time
}

// NewClock starts a clock at start, or at ReferenceTime when start is zero.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{at: start}
}

// NewClockAt starts a clock at the "HH:MM" wall-clock time of the
// "YYYY-MM-DD" date, in UTC. Malformed input panics.
func NewClockAt(date, hhmm string) *Clock {
	c := &Clock{}
	c.MoveTo(date, hhmm)
	return c
}

// Now reports the clock's instant.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.at
}

// NowFunc returns Now for injection into constructors. A nil clock yields the
// wall clock.
func (c *Clock) NowFunc() func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}

// Advance moves the clock forward by d and returns the new instant.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.at = c.at.Add(d)
	return c.at
}

// MoveTo jumps to the "HH:MM" wall-clock time of the "YYYY-MM-DD" date.
func (c *Clock) MoveTo(date, hhmm string) {
	day, err := availability.ParseDate(date)
	if err != nil {
		panic(err)
	}
	slot, err := availability.ParseClock(hhmm)
	if err != nil {
		panic(err)
	}
	c.mu.Lock()
	c.at = day.Add(slot.Duration())
	c.mu.Unlock()
}

// Date is the clock's current reservation date.
func (c *Clock) Date() string {
	return availability.FormatDate(c.Now())
}

// DaysAhead is the reservation date n days after the clock's date.
func (c *Clock) DaysAhead(n int) string {
	return availability.FormatDate(c.Now().AddDate(0, 0, n))
}
