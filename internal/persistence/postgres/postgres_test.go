package postgres

import (
	"context"
	"os"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormpg "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/example/room-reservations/internal/persistence"
	"github.com/example/room-reservations/internal/persistence/storetest"
)

var reservationColumns = []string{"id", "room_id", "room_name", "date", "start_time", "end_time", "reserved_by", "company", "created_at"}

func newTestStorage(t *testing.T) (*Storage, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gormDB, err := gorm.Open(gormpg.New(gormpg.Config{Conn: db}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	return New(gormDB), mock
}

// TestStorageContract runs the shared store contract against a real database
// when RESERVATIONS_TEST_POSTGRES_DSN is set. Every store starts from an empty
// reservations table, so the database must be dedicated to tests.
func TestStorageContract(t *testing.T) {
	dsn := os.Getenv("RESERVATIONS_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("RESERVATIONS_TEST_POSTGRES_DSN not set")
	}

	storetest.Run(t, func(t *testing.T, opts ...persistence.Option) persistence.ReservationRepository {
		store, err := Open(dsn, PoolConfig{MaxOpenConns: 2}, opts...)
		require.NoError(t, err)
		t.Cleanup(func() { store.Close() })

		ctx := context.Background()
		require.NoError(t, store.Migrate(ctx))
		require.NoError(t, store.db.WithContext(ctx).Exec(`DELETE FROM "reservations"`).Error)
		return store
	})
}

func TestStorage_GetReservation(t *testing.T) {
	created := time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		store, mock := newTestStorage(t)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "reservations" WHERE id = $1`)).
			WillReturnRows(sqlmock.NewRows(reservationColumns).
				AddRow("res-1", "room-1", "Meeting Room 1", "2025-06-10", "09:00", "10:00", "Alice", "Company A", created))

		got, err := store.GetReservation(context.Background(), "res-1")
		require.NoError(t, err)
		assert.Equal(t, "res-1", got.ID)
		assert.Equal(t, "Meeting Room 1", got.RoomName)
		assert.True(t, created.Equal(got.CreatedAt))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		store, mock := newTestStorage(t)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "reservations" WHERE id = $1`)).
			WillReturnRows(sqlmock.NewRows(reservationColumns))

		_, err := store.GetReservation(context.Background(), "missing")
		assert.ErrorIs(t, err, persistence.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStorage_DeleteReservation(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		store, mock := newTestStorage(t)
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "reservations" WHERE id = $1`)).
			WithArgs("res-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, store.DeleteReservation(context.Background(), "res-1"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing", func(t *testing.T) {
		store, mock := newTestStorage(t)
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "reservations" WHERE id = $1`)).
			WithArgs("missing").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, store.DeleteReservation(context.Background(), "missing"), persistence.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStorage_ListFilteredReservations(t *testing.T) {
	store, mock := newTestStorage(t)
	created := time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT \* FROM "reservations" WHERE room_id = \$1 AND strpos\(lower\(company\), lower\(\$2\)\) > 0 AND date >= \$3 ORDER BY date, start_time, created_at, id`).
		WithArgs("room-1", "pany a", "2025-06-01").
		WillReturnRows(sqlmock.NewRows(reservationColumns).
			AddRow("res-2", "room-1", "Meeting Room 1", "2025-06-10", "09:00", "10:00", "Bob", "Company A", created).
			AddRow("res-1", "room-1", "Meeting Room 1", "2025-06-10", "13:00", "14:00", "Alice", "Company A", created))

	got, err := store.ListFilteredReservations(context.Background(), persistence.ReservationFilter{
		RoomID:    "room-1",
		Company:   "pany a",
		StartDate: "2025-06-01",
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "res-2", got[0].ID)
	assert.Equal(t, "res-1", got[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_CreateReservationRejectsIncompleteDraft(t *testing.T) {
	store, mock := newTestStorage(t)
	_, err := store.CreateReservation(context.Background(), persistence.ReservationDraft{RoomID: "room-1"})
	assert.ErrorIs(t, err, persistence.ErrConstraintViolation)
	assert.NoError(t, mock.ExpectationsWereMet())
}
