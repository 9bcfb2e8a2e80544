package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/room-reservations/internal/persistence"
)

const reservationColumns = "id, room_id, room_name, date, start_time, end_time, reserved_by, company, created_at"

// ReservationRepository implements persistence.ReservationRepository using SQLite.
type ReservationRepository struct {
	pool   *ConnectionPool
	retry  *RetryHelper
	mapper ErrorMapper
	opts   persistence.Options
}

var _ persistence.ReservationRepository = (*ReservationRepository)(nil)

// NewReservationRepository creates a repository over pool.
func NewReservationRepository(pool *ConnectionPool, opts ...persistence.Option) *ReservationRepository {
	return &ReservationRepository{
		pool:  pool,
		retry: NewRetryHelper(DefaultRetryConfig()),
		opts:  persistence.NewOptions(opts...),
	}
}

// ListReservations returns every reservation in insertion order.
func (r *ReservationRepository) ListReservations(ctx context.Context) ([]persistence.Reservation, error) {
	return r.query(ctx, "SELECT "+reservationColumns+" FROM reservations ORDER BY seq")
}

// GetReservation retrieves a reservation by ID.
func (r *ReservationRepository) GetReservation(ctx context.Context, id string) (persistence.Reservation, error) {
	row := r.pool.DB().QueryRowContext(ctx, "SELECT "+reservationColumns+" FROM reservations WHERE id = ?", id)
	res, err := scanReservation(row)
	if err != nil {
		return persistence.Reservation{}, r.mapper.MapError(err)
	}
	return res, nil
}

// CreateReservation assigns an ID and CreatedAt and inserts the reservation.
func (r *ReservationRepository) CreateReservation(ctx context.Context, draft persistence.ReservationDraft) (persistence.Reservation, error) {
	if err := draft.Validate(); err != nil {
		return persistence.Reservation{}, err
	}
	res := draft.Reservation(r.opts.IDGenerator(), r.opts.Timestamp())

	const query = `
		INSERT INTO reservations (` + reservationColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	err := r.retry.WithRetry(ctx, func() error {
		_, err := r.pool.DB().ExecContext(ctx, query,
			res.ID,
			res.RoomID,
			res.RoomName,
			res.Date,
			res.StartTime,
			res.EndTime,
			res.ReservedBy,
			res.Company,
			res.CreatedAt.Format(persistence.StoredTimestampLayout),
		)
		return err
	})
	if err != nil {
		return persistence.Reservation{}, err
	}
	return res, nil
}

// UpdateReservation merges patch onto the stored reservation within a transaction.
func (r *ReservationRepository) UpdateReservation(ctx context.Context, id string, patch persistence.ReservationPatch) (persistence.Reservation, error) {
	var updated persistence.Reservation
	err := r.retry.WithRetry(ctx, func() error {
		return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			row := tx.QueryRowContext(ctx, "SELECT "+reservationColumns+" FROM reservations WHERE id = ?", id)
			existing, err := scanReservation(row)
			if err != nil {
				return err
			}
			updated = patch.Apply(existing)

			cols := patch.Columns()
			if len(cols) == 0 {
				return nil
			}
			sets := make([]string, 0, len(cols))
			args := make([]any, 0, len(cols)+1)
			for _, name := range []string{"room_id", "room_name", "date", "start_time", "end_time", "reserved_by", "company"} {
				if v, ok := cols[name]; ok {
					sets = append(sets, name+" = ?")
					args = append(args, v)
				}
			}
			args = append(args, id)

			result, err := tx.ExecContext(ctx, "UPDATE reservations SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
			if err != nil {
				return err
			}
			affected, err := result.RowsAffected()
			if err != nil {
				return err
			}
			if affected == 0 {
				return persistence.ErrNotFound
			}
			return nil
		})
	})
	if err != nil {
		return persistence.Reservation{}, err
	}
	return updated, nil
}

// DeleteReservation removes a reservation permanently.
func (r *ReservationRepository) DeleteReservation(ctx context.Context, id string) error {
	return r.retry.WithRetry(ctx, func() error {
		result, err := r.pool.DB().ExecContext(ctx, "DELETE FROM reservations WHERE id = ?", id)
		if err != nil {
			return err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return persistence.ErrNotFound
		}
		return nil
	})
}

// ListFilteredReservations returns matching reservations ordered by date and start time.
func (r *ReservationRepository) ListFilteredReservations(ctx context.Context, filter persistence.ReservationFilter) ([]persistence.Reservation, error) {
	var (
		where []string
		args  []any
	)
	if filter.RoomID != "" {
		where = append(where, "room_id = ?")
		args = append(args, filter.RoomID)
	}
	if filter.Date != "" {
		where = append(where, "date = ?")
		args = append(args, filter.Date)
	}
	if filter.Company != "" {
		where = append(where, "instr(lower(company), lower(?)) > 0")
		args = append(args, filter.Company)
	}
	if filter.StartDate != "" {
		where = append(where, "date >= ?")
		args = append(args, filter.StartDate)
	}
	if filter.EndDate != "" {
		where = append(where, "date <= ?")
		args = append(args, filter.EndDate)
	}

	query := "SELECT " + reservationColumns + " FROM reservations"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date, start_time, seq"
	return r.query(ctx, query, args...)
}

func (r *ReservationRepository) query(ctx context.Context, query string, args ...any) ([]persistence.Reservation, error) {
	rows, err := r.pool.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	out := make([]persistence.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(row rowScanner) (persistence.Reservation, error) {
	var (
		res       persistence.Reservation
		createdAt string
	)
	if err := row.Scan(
		&res.ID,
		&res.RoomID,
		&res.RoomName,
		&res.Date,
		&res.StartTime,
		&res.EndTime,
		&res.ReservedBy,
		&res.Company,
		&createdAt,
	); err != nil {
		return persistence.Reservation{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return persistence.Reservation{}, fmt.Errorf("sqlite: parse created_at %q: %w", createdAt, err)
	}
	res.CreatedAt = t.UTC()
	return res, nil
}
