package testfixtures

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/example/room-reservations/internal/application"
	"github.com/example/room-reservations/internal/persistence"
)

var reservationCounter uint64

// referenceTime is a Monday morning, so the default calendar week starts on
// the reference date.
var referenceTime = time.Date(2025, time.June, 2, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ReferenceDate returns ReferenceTime in "YYYY-MM-DD" form.
func ReferenceDate() string {
	return referenceTime.Format("2006-01-02")
}

// ReservationFixture is a deterministic reservation that can be materialised
// as application input, a store draft or a stored record.
type ReservationFixture struct {
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

// ReservationOption configures the generated reservation fixture.
type ReservationOption func(*ReservationFixture)

// NewReservationFixture returns a one hour reservation in room-1 on the day
// after ReferenceTime, with optional overrides.
func NewReservationFixture(opts ...ReservationOption) ReservationFixture {
	idx := atomic.AddUint64(&reservationCounter, 1)
	fixture := ReservationFixture{
		ID:         fmt.Sprintf("reservation-%03d", idx),
		RoomID:     "room-1",
		RoomName:   "Meeting Room 1",
		Date:       referenceTime.AddDate(0, 0, 1).Format("2006-01-02"),
		StartTime:  "10:00",
		EndTime:    "11:00",
		ReservedBy: "Alice",
		Company:    "Company A",
		CreatedAt:  referenceTime.Add(time.Duration(idx) * time.Minute),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithReservationID overrides the identifier.
func WithReservationID(id string) ReservationOption {
	return func(f *ReservationFixture) {
		f.ID = id
	}
}

// WithRoom overrides the room id and name.
func WithRoom(id, name string) ReservationOption {
	return func(f *ReservationFixture) {
		f.RoomID = id
		f.RoomName = name
	}
}

// WithDate overrides the reservation date.
func WithDate(date string) ReservationOption {
	return func(f *ReservationFixture) {
		f.Date = date
	}
}

// WithWindow overrides the start and end times.
func WithWindow(start, end string) ReservationOption {
	return func(f *ReservationFixture) {
		f.StartTime = start
		f.EndTime = end
	}
}

// WithCompany overrides the company.
func WithCompany(company string) ReservationOption {
	return func(f *ReservationFixture) {
		f.Company = company
	}
}

// Input converts the fixture into service input.
func (f ReservationFixture) Input() application.ReservationInput {
	return application.ReservationInput{
		RoomID:     f.RoomID,
		Date:       f.Date,
		StartTime:  f.StartTime,
		EndTime:    f.EndTime,
		ReservedBy: f.ReservedBy,
		Company:    f.Company,
	}
}

// Draft converts the fixture into a store draft.
func (f ReservationFixture) Draft() persistence.ReservationDraft {
	return persistence.ReservationDraft{
		RoomID:     f.RoomID,
		RoomName:   f.RoomName,
		Date:       f.Date,
		StartTime:  f.StartTime,
		EndTime:    f.EndTime,
		ReservedBy: f.ReservedBy,
		Company:    f.Company,
	}
}

// Record converts the fixture into a stored record.
func (f ReservationFixture) Record() persistence.Reservation {
	return f.Draft().Reservation(f.ID, f.CreatedAt)
}

// FastArgon2idParams keeps password hashing cheap in tests.
var FastArgon2idParams = application.Argon2idParams{
	Memory:      1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

// PasswordHash hashes password with FastArgon2idParams.
func PasswordHash(tb testing.TB, password string) string {
	tb.Helper()
	hash, err := application.CreatePasswordHash(password, FastArgon2idParams)
	if err != nil {
		tb.Fatalf("failed to hash password: %v", err)
	}
	return hash
}
