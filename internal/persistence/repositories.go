package persistence

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
)

// ReservationRepository is the durable store behind reservations. It does not
// enforce the no-overlap rule; callers check availability before writing.
type ReservationRepository interface {
	ListReservations(ctx context.Context) ([]Reservation, error)
	GetReservation(ctx context.Context, id string) (Reservation, error)
	CreateReservation(ctx context.Context, draft ReservationDraft) (Reservation, error)
	UpdateReservation(ctx context.Context, id string, patch ReservationPatch) (Reservation, error)
	DeleteReservation(ctx context.Context, id string) error
	ListFilteredReservations(ctx context.Context, filter ReservationFilter) ([]Reservation, error)
}

// Options carries the identifier and clock sources shared by every store.
type Options struct {
	IDGenerator func() string
	Now         func() time.Time
}

// Option customises Options.
type Option func(*Options)

// WithIDGenerator overrides the reservation identifier source.
func WithIDGenerator(gen func() string) Option {
	return func(o *Options) {
		if gen != nil {
			o.IDGenerator = gen
		}
	}
}

// WithClock overrides the time source used for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(o *Options) {
		if now != nil {
			o.Now = now
		}
	}
}

// NewOptions applies opts over the defaults.
func NewOptions(opts ...Option) Options {
	o := Options{IDGenerator: NewReservationID, Now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Timestamp returns the CreatedAt value for now in UTC at full precision.
func (o Options) Timestamp() time.Time {
	return o.Now().UTC()
}

// TimestampCeil returns the CreatedAt value for now rounded up to precision,
// for backends that store coarser timestamps. The result is never earlier
// than the clock reading.
func (o Options) TimestampCeil(precision time.Duration) time.Time {
	now := o.Now().UTC()
	stamp := now.Truncate(precision)
	if stamp.Before(now) {
		stamp = stamp.Add(precision)
	}
	return stamp
}

// NewReservationID returns a time-ordered unique identifier: a millisecond
// timestamp followed by random bits.
func NewReservationID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// SortReservations orders list by (Date, StartTime), keeping the relative
// order of equal entries.
func SortReservations(list []Reservation) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Date != list[j].Date {
			return list[i].Date < list[j].Date
		}
		return list[i].StartTime < list[j].StartTime
	})
}

// FilterReservations returns the sorted subset of list matching filter.
func FilterReservations(list []Reservation, filter ReservationFilter) []Reservation {
	out := make([]Reservation, 0, len(list))
	for _, r := range list {
		if filter.Match(r) {
			out = append(out, r)
		}
	}
	SortReservations(out)
	return out
}
