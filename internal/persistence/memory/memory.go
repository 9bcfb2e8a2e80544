// Package memory provides a process-local reservation store.
package memory

import (
	"context"
	"sync"

	"github.com/example/room-reservations/internal/persistence"
)

// Storage keeps reservations in memory in insertion order.
type Storage struct {
	mu      sync.RWMutex
	records map[string]persistence.Reservation
	order   []string
	opts    persistence.Options
}

var _ persistence.ReservationRepository = (*Storage)(nil)

// Open returns an empty Storage.
func Open(opts ...persistence.Option) *Storage {
	return &Storage{
		records: make(map[string]persistence.Reservation),
		opts:    persistence.NewOptions(opts...),
	}
}

// Close releases resources held by the storage. No-op for the in-memory implementation.
func (s *Storage) Close() error {
	return nil
}

// Migrate initialises the storage. No-op for the in-memory implementation.
func (s *Storage) Migrate(context.Context) error {
	return nil
}

// ListReservations returns every reservation in insertion order.
func (s *Storage) ListReservations(ctx context.Context) ([]persistence.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]persistence.Reservation, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.records[id])
	}
	return out, nil
}

// GetReservation retrieves a reservation by ID.
func (s *Storage) GetReservation(ctx context.Context, id string) (persistence.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[id]
	if !ok {
		return persistence.Reservation{}, persistence.ErrNotFound
	}
	return r, nil
}

// CreateReservation assigns an ID and CreatedAt and appends the reservation.
func (s *Storage) CreateReservation(ctx context.Context, draft persistence.ReservationDraft) (persistence.Reservation, error) {
	if err := draft.Validate(); err != nil {
		return persistence.Reservation{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r := draft.Reservation(s.opts.IDGenerator(), s.opts.Timestamp())
	if _, ok := s.records[r.ID]; ok {
		return persistence.Reservation{}, persistence.ErrDuplicate
	}
	s.records[r.ID] = r
	s.order = append(s.order, r.ID)
	return r, nil
}

// UpdateReservation merges patch onto the stored reservation.
func (s *Storage) UpdateReservation(ctx context.Context, id string, patch persistence.ReservationPatch) (persistence.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[id]
	if !ok {
		return persistence.Reservation{}, persistence.ErrNotFound
	}
	r = patch.Apply(r)
	s.records[id] = r
	return r, nil
}

// DeleteReservation removes a reservation permanently.
func (s *Storage) DeleteReservation(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.records, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// ListFilteredReservations returns matching reservations ordered by date and start time.
func (s *Storage) ListFilteredReservations(ctx context.Context, filter persistence.ReservationFilter) ([]persistence.Reservation, error) {
	all, err := s.ListReservations(ctx)
	if err != nil {
		return nil, err
	}
	return persistence.FilterReservations(all, filter), nil
}
