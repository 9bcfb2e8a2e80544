// Package postgres implements the reservation store on PostgreSQL through gorm.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	gormpg "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/example/room-reservations/internal/persistence"
)

// reservationRecord is the gorm model of the reservations table.
type reservationRecord struct {
	ID         string    `gorm:"primaryKey;size:64"`
	RoomID     string    `gorm:"size:64;not null;index:idx_reservations_room_date,priority:1"`
	RoomName   string    `gorm:"size:255;not null"`
	Date       string    `gorm:"size:10;not null;index:idx_reservations_room_date,priority:2"`
	StartTime  string    `gorm:"size:5;not null"`
	EndTime    string    `gorm:"size:5;not null"`
	ReservedBy string    `gorm:"size:255;not null"`
	Company    string    `gorm:"size:255;not null"`
	CreatedAt  time.Time `gorm:"not null"`
}

func (reservationRecord) TableName() string {
	return "reservations"
}

// PoolConfig sizes the underlying connection pool.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Storage is a PostgreSQL backed reservation store.
type Storage struct {
	db   *gorm.DB
	opts persistence.Options
}

var _ persistence.ReservationRepository = (*Storage)(nil)

// Open connects to the database at dsn.
func Open(dsn string, pool PoolConfig, opts ...persistence.Option) (*Storage, error) {
	db, err := gorm.Open(gormpg.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("postgres: get sql.DB: %w", err)
	}
	if pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}
	return New(db, opts...), nil
}

// New wraps an existing gorm connection.
func New(db *gorm.DB, opts ...persistence.Option) *Storage {
	return &Storage{db: db, opts: persistence.NewOptions(opts...)}
}

// Migrate creates or updates the reservations table.
func (s *Storage) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&reservationRecord{}); err != nil {
		return fmt.Errorf("postgres: automigrate: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ListReservations returns every reservation ordered by creation.
func (s *Storage) ListReservations(ctx context.Context) ([]persistence.Reservation, error) {
	var records []reservationRecord
	if err := s.db.WithContext(ctx).Order("created_at, id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("postgres: list reservations: %w", err)
	}
	return toReservations(records), nil
}

// GetReservation retrieves a reservation by ID.
func (s *Storage) GetReservation(ctx context.Context, id string) (persistence.Reservation, error) {
	var rec reservationRecord
	if err := s.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return persistence.Reservation{}, mapError(err)
	}
	return rec.toReservation(), nil
}

// CreateReservation assigns an ID and CreatedAt and inserts the reservation.
func (s *Storage) CreateReservation(ctx context.Context, draft persistence.ReservationDraft) (persistence.Reservation, error) {
	if err := draft.Validate(); err != nil {
		return persistence.Reservation{}, err
	}
	res := draft.Reservation(s.opts.IDGenerator(), s.opts.TimestampCeil(time.Microsecond))
	rec := fromReservation(res)
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return persistence.Reservation{}, mapError(err)
	}
	return res, nil
}

// UpdateReservation merges patch onto the stored row under a row lock.
func (s *Storage) UpdateReservation(ctx context.Context, id string, patch persistence.ReservationPatch) (persistence.Reservation, error) {
	var updated persistence.Reservation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec reservationRecord
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&rec, "id = ?", id).Error; err != nil {
			return err
		}
		if cols := patch.Columns(); len(cols) > 0 {
			if err := tx.Model(&reservationRecord{}).Where("id = ?", id).Updates(cols).Error; err != nil {
				return err
			}
		}
		updated = patch.Apply(rec.toReservation())
		return nil
	})
	if err != nil {
		return persistence.Reservation{}, mapError(err)
	}
	return updated, nil
}

// DeleteReservation removes a reservation permanently.
func (s *Storage) DeleteReservation(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&reservationRecord{})
	if result.Error != nil {
		return mapError(result.Error)
	}
	if result.RowsAffected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// ListFilteredReservations returns matching reservations ordered by date and start time.
func (s *Storage) ListFilteredReservations(ctx context.Context, filter persistence.ReservationFilter) ([]persistence.Reservation, error) {
	q := s.db.WithContext(ctx).Model(&reservationRecord{})
	if filter.RoomID != "" {
		q = q.Where("room_id = ?", filter.RoomID)
	}
	if filter.Date != "" {
		q = q.Where("date = ?", filter.Date)
	}
	if filter.Company != "" {
		q = q.Where("strpos(lower(company), lower(?)) > 0", filter.Company)
	}
	if filter.StartDate != "" {
		q = q.Where("date >= ?", filter.StartDate)
	}
	if filter.EndDate != "" {
		q = q.Where("date <= ?", filter.EndDate)
	}

	var records []reservationRecord
	if err := q.Order("date, start_time, created_at, id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("postgres: list filtered reservations: %w", err)
	}
	return toReservations(records), nil
}

func mapError(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return persistence.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", persistence.ErrDuplicate, err)
	default:
		return fmt.Errorf("postgres: %w", err)
	}
}

func fromReservation(r persistence.Reservation) reservationRecord {
	return reservationRecord{
		ID:         r.ID,
		RoomID:     r.RoomID,
		RoomName:   r.RoomName,
		Date:       r.Date,
		StartTime:  r.StartTime,
		EndTime:    r.EndTime,
		ReservedBy: r.ReservedBy,
		Company:    r.Company,
		CreatedAt:  r.CreatedAt,
	}
}

func (rec reservationRecord) toReservation() persistence.Reservation {
	return persistence.Reservation{
		ID:         rec.ID,
		RoomID:     rec.RoomID,
		RoomName:   rec.RoomName,
		Date:       rec.Date,
		StartTime:  rec.StartTime,
		EndTime:    rec.EndTime,
		ReservedBy: rec.ReservedBy,
		Company:    rec.Company,
		CreatedAt:  rec.CreatedAt.UTC(),
	}
}

func toReservations(records []reservationRecord) []persistence.Reservation {
	out := make([]persistence.Reservation, len(records))
	for i, rec := range records {
		out[i] = rec.toReservation()
	}
	return out
}
