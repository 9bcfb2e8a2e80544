package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/room-reservations/internal/persistence"
	"github.com/example/room-reservations/internal/persistence/sqlite"
	"github.com/example/room-reservations/internal/persistence/sqlite/migration"
)

// NewSQLiteStore opens a migrated SQLite reservation store in a temporary
// directory. The store is closed when the test finishes.
func NewSQLiteStore(tb testing.TB, opts ...persistence.Option) *sqlite.Storage {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "reservations.db")
	storage, err := sqlite.Open(migration.DefaultSQLiteConfig(path), opts...)
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}
	tb.Cleanup(func() { _ = storage.Close() })

	if err := storage.Migrate(context.Background()); err != nil {
		tb.Fatalf("failed to migrate storage: %v", err)
	}
	return storage
}
