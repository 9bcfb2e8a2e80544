// Package sqlite implements the reservation store on SQLite through the
// pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/example/room-reservations/internal/persistence"
	"github.com/example/room-reservations/internal/persistence/sqlite/migration"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Storage is a SQLite backed reservation store.
type Storage struct {
	*ReservationRepository
	pool *ConnectionPool
}

// Open connects to the database described by cfg.
func Open(cfg migration.SQLiteConfig, opts ...persistence.Option) (*Storage, error) {
	pool, err := NewConnectionPool(cfg)
	if err != nil {
		return nil, err
	}
	return &Storage{
		ReservationRepository: NewReservationRepository(pool, opts...),
		pool:                  pool,
	}, nil
}

// Close releases the connection pool.
func (s *Storage) Close() error {
	return s.pool.Close()
}

// Migrate applies the embedded schema migrations.
func (s *Storage) Migrate(ctx context.Context) error {
	files, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("sqlite: load migrations: %w", err)
	}
	return migration.NewExecutor(s.pool.DB(), files).Run(ctx)
}
