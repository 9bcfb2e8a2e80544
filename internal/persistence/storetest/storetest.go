// Package storetest holds the behavioural contract every
// persistence.ReservationRepository implementation is tested against.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/room-reservations/internal/persistence"
)

// Factory returns a fresh, empty store configured with opts.
type Factory func(t *testing.T, opts ...persistence.Option) persistence.ReservationRepository

// Draft returns a complete draft for the given slot.
func Draft(room, date, start, end string) persistence.ReservationDraft {
	return persistence.ReservationDraft{
		RoomID:     room,
		RoomName:   "Meeting " + room,
		Date:       date,
		StartTime:  start,
		EndTime:    end,
		ReservedBy: "Alice",
		Company:    "Company A",
	}
}

// Run exercises the repository contract against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	t.Run("create then get round trips", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		before := time.Now()
		created, err := store.CreateReservation(ctx, Draft("room-1", "2025-06-10", "09:00", "10:00"))
		require.NoError(t, err)
		after := time.Now().UTC()

		assert.NotEmpty(t, created.ID)
		assert.False(t, created.CreatedAt.Before(before), "createdAt %v before %v", created.CreatedAt, before)
		assert.False(t, created.CreatedAt.After(after), "createdAt %v after %v", created.CreatedAt, after)

		got, err := store.GetReservation(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, "room-1", got.RoomID)
		assert.Equal(t, "Meeting room-1", got.RoomName)
		assert.Equal(t, "2025-06-10", got.Date)
		assert.Equal(t, "09:00", got.StartTime)
		assert.Equal(t, "10:00", got.EndTime)
		assert.Equal(t, "Alice", got.ReservedBy)
		assert.Equal(t, "Company A", got.Company)
		assert.True(t, created.CreatedAt.Equal(got.CreatedAt), "expected %v, got %v", created.CreatedAt, got.CreatedAt)

		all, err := store.ListReservations(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, created.ID, all[0].ID)
	})

	t.Run("uses injected id generator and clock", func(t *testing.T) {
		ctx := context.Background()
		fixed := time.Date(2025, time.May, 1, 8, 30, 0, 0, time.UTC)
		store := newStore(t,
			persistence.WithIDGenerator(func() string { return "fixed-id" }),
			persistence.WithClock(func() time.Time { return fixed }),
		)

		created, err := store.CreateReservation(ctx, Draft("room-2", "2025-06-10", "09:00", "10:00"))
		require.NoError(t, err)
		assert.Equal(t, "fixed-id", created.ID)
		assert.True(t, fixed.Equal(created.CreatedAt))

		_, err = store.CreateReservation(ctx, Draft("room-2", "2025-06-10", "11:00", "12:00"))
		assert.True(t, errors.Is(err, persistence.ErrDuplicate), "expected duplicate, got %v", err)
	})

	t.Run("rejects incomplete drafts", func(t *testing.T) {
		store := newStore(t)
		_, err := store.CreateReservation(context.Background(), persistence.ReservationDraft{RoomID: "room-1"})
		assert.ErrorIs(t, err, persistence.ErrConstraintViolation)
	})

	t.Run("get unknown id", func(t *testing.T) {
		store := newStore(t)
		_, err := store.GetReservation(context.Background(), "missing")
		assert.ErrorIs(t, err, persistence.ErrNotFound)
	})

	t.Run("update merges patch and keeps write-once fields", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)
		created, err := store.CreateReservation(ctx, Draft("room-1", "2025-06-10", "09:00", "10:00"))
		require.NoError(t, err)

		end, name := "11:30", "Bob"
		updated, err := store.UpdateReservation(ctx, created.ID, persistence.ReservationPatch{EndTime: &end, ReservedBy: &name})
		require.NoError(t, err)
		assert.Equal(t, created.ID, updated.ID)
		assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))
		assert.Equal(t, "11:30", updated.EndTime)
		assert.Equal(t, "Bob", updated.ReservedBy)
		assert.Equal(t, "09:00", updated.StartTime)

		got, err := store.GetReservation(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "11:30", got.EndTime)
		assert.Equal(t, "Bob", got.ReservedBy)
		assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("update unknown id", func(t *testing.T) {
		store := newStore(t)
		name := "Bob"
		_, err := store.UpdateReservation(context.Background(), "missing", persistence.ReservationPatch{ReservedBy: &name})
		assert.ErrorIs(t, err, persistence.ErrNotFound)
	})

	t.Run("delete removes permanently", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)
		keep, err := store.CreateReservation(ctx, Draft("room-1", "2025-06-10", "09:00", "10:00"))
		require.NoError(t, err)
		gone, err := store.CreateReservation(ctx, Draft("room-1", "2025-06-10", "10:00", "11:00"))
		require.NoError(t, err)

		require.NoError(t, store.DeleteReservation(ctx, gone.ID))
		_, err = store.GetReservation(ctx, gone.ID)
		assert.ErrorIs(t, err, persistence.ErrNotFound)
		assert.ErrorIs(t, store.DeleteReservation(ctx, gone.ID), persistence.ErrNotFound)

		all, err := store.ListReservations(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, keep.ID, all[0].ID)
	})

	t.Run("filtered listing sorts and filters", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)
		seed := []persistence.ReservationDraft{
			Draft("room-2", "2025-06-12", "09:00", "10:00"),
			Draft("room-1", "2025-06-10", "14:00", "15:00"),
			Draft("room-3", "2025-06-11", "08:00", "09:00"),
			Draft("room-1", "2025-06-10", "09:00", "10:00"),
		}
		seed[2].Company = "Company B"
		ids := make([]string, len(seed))
		for i, d := range seed {
			r, err := store.CreateReservation(ctx, d)
			require.NoError(t, err)
			ids[i] = r.ID
		}

		all, err := store.ListFilteredReservations(ctx, persistence.ReservationFilter{})
		require.NoError(t, err)
		assert.Equal(t, []string{ids[3], ids[1], ids[2], ids[0]}, reservationIDs(all))

		byRoom, err := store.ListFilteredReservations(ctx, persistence.ReservationFilter{RoomID: "room-1"})
		require.NoError(t, err)
		assert.Equal(t, []string{ids[3], ids[1]}, reservationIDs(byRoom))

		byDate, err := store.ListFilteredReservations(ctx, persistence.ReservationFilter{Date: "2025-06-11"})
		require.NoError(t, err)
		assert.Equal(t, []string{ids[2]}, reservationIDs(byDate))

		byCompany, err := store.ListFilteredReservations(ctx, persistence.ReservationFilter{Company: "COMPANY b"})
		require.NoError(t, err)
		assert.Equal(t, []string{ids[2]}, reservationIDs(byCompany))

		byRange, err := store.ListFilteredReservations(ctx, persistence.ReservationFilter{StartDate: "2025-06-11", EndDate: "2025-06-12"})
		require.NoError(t, err)
		assert.Equal(t, []string{ids[2], ids[0]}, reservationIDs(byRange))

		none, err := store.ListFilteredReservations(ctx, persistence.ReservationFilter{Company: "Company C"})
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}

func reservationIDs(list []persistence.Reservation) []string {
	out := make([]string, len(list))
	for i, r := range list {
		out[i] = r.ID
	}
	return out
}
