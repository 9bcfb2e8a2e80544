package testfixtures

import (
	"testing"
	"time"
)

func TestNewClockZeroStartsAtReference(t *testing.T) {
	if got := NewClock(time.Time{}).Now(); !got.Equal(ReferenceTime()) {
		t.Fatalf("expected %v, got %v", ReferenceTime(), got)
	}
}

func TestClockAdvanceIsSeenThroughNowFunc(t *testing.T) {
	clock := NewClockAt("2025-06-02", "09:00")
	now := clock.NowFunc()

	if got := clock.Advance(8*time.Hour + time.Second); !got.Equal(now()) {
		t.Fatalf("expected NowFunc to follow Advance, got %v and %v", got, now())
	}
	if got := now().Format(time.RFC3339); got != "2025-06-02T17:00:01Z" {
		t.Fatalf("unexpected instant %s", got)
	}
}

func TestClockNilNowFuncUsesWallClock(t *testing.T) {
	var clock *Clock
	before := time.Now()
	if got := clock.NowFunc()(); got.Before(before) {
		t.Fatalf("expected wall clock time, got %v", got)
	}
}

func TestClockReservationDates(t *testing.T) {
	clock := NewClockAt("2025-12-31", "19:30")
	if clock.Date() != "2025-12-31" {
		t.Fatalf("expected 2025-12-31, got %s", clock.Date())
	}
	if got := clock.DaysAhead(1); got != "2026-01-01" {
		t.Fatalf("expected 2026-01-01, got %s", got)
	}

	clock.MoveTo("2026-01-05", "08:00")
	if got := clock.Now(); got.Hour() != 8 || clock.Date() != "2026-01-05" {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestNewClockAtPanicsOnMalformedInput(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	NewClockAt("2025-6-2", "9:00")
}
