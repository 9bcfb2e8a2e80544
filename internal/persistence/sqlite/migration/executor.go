package migration

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"
)

// Migration is a single versioned schema change.
type Migration struct {
	Version     string
	Description string
	SQL         string
}

// Executor applies migrations from a file system to a database.
type Executor struct {
	db    *sql.DB
	files fs.FS
}

// NewExecutor constructs an executor reading *.sql files from the root of files.
func NewExecutor(db *sql.DB, files fs.FS) *Executor {
	return &Executor{db: db, files: files}
}

// Load parses and orders the migrations found in the executor's file system.
func (e *Executor) Load() ([]Migration, error) {
	entries, err := fs.ReadDir(e.files, ".")
	if err != nil {
		return nil, newMigrationError("", "read migrations", err)
	}

	seen := make(map[string]bool, len(entries))
	migrations := make([]Migration, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".sql" {
			continue
		}
		base := strings.TrimSuffix(entry.Name(), ".sql")
		version, description, ok := strings.Cut(base, "_")
		if !ok || version == "" {
			return nil, newMigrationError("", "parse "+entry.Name(), ErrInvalidMigrationFile)
		}
		if seen[version] {
			return nil, newMigrationError(version, "parse "+entry.Name(), ErrDuplicateVersion)
		}
		seen[version] = true

		body, err := fs.ReadFile(e.files, entry.Name())
		if err != nil {
			return nil, newMigrationError(version, "read "+entry.Name(), err)
		}
		migrations = append(migrations, Migration{Version: version, Description: description, SQL: string(body)})
	}

	sort.Slice(migrations, func(i, j int) bool { return migrations[i].Version < migrations[j].Version })
	return migrations, nil
}

// Run applies every pending migration in version order.
func (e *Executor) Run(ctx context.Context) error {
	if err := e.InitializeVersionTable(ctx); err != nil {
		return err
	}
	migrations, err := e.Load()
	if err != nil {
		return err
	}
	for _, m := range migrations {
		applied, err := e.IsVersionApplied(ctx, m.Version)
		if err != nil {
			return err
		}
		if applied {
			continue
		}
		if err := e.ExecuteMigration(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

// InitializeVersionTable creates the schema_migrations table if it does not exist.
func (e *Executor) InitializeVersionTable(ctx context.Context) error {
	const createTableSQL = `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at TEXT NOT NULL,
			execution_time_ms INTEGER NOT NULL
		)`
	if _, err := e.db.ExecContext(ctx, createTableSQL); err != nil {
		return newMigrationError("", "create schema_migrations table", err)
	}
	return nil
}

// IsVersionApplied reports whether the version is recorded in schema_migrations.
func (e *Executor) IsVersionApplied(ctx context.Context, version string) (bool, error) {
	var count int
	err := e.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM schema_migrations WHERE version = ?", version).Scan(&count)
	if err != nil {
		return false, newMigrationError(version, "check version", err)
	}
	return count > 0, nil
}

// AppliedVersions lists the recorded versions in ascending order.
func (e *Executor) AppliedVersions(ctx context.Context) ([]string, error) {
	rows, err := e.db.QueryContext(ctx, "SELECT version FROM schema_migrations ORDER BY version")
	if err != nil {
		return nil, newMigrationError("", "list versions", err)
	}
	defer rows.Close()

	var versions []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, newMigrationError("", "scan version", err)
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// ExecuteMigration runs the statements of m and records it in one transaction.
func (e *Executor) ExecuteMigration(ctx context.Context, m Migration) (err error) {
	statements := parseSQL(m.SQL)
	if len(statements) == 0 {
		return newMigrationError(m.Version, "parse SQL", ErrInvalidMigrationFile)
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return newMigrationError(m.Version, "begin transaction", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	start := time.Now()
	for i, stmt := range statements {
		if _, execErr := tx.ExecContext(ctx, stmt); execErr != nil {
			err = newMigrationError(m.Version, fmt.Sprintf("execute statement %d", i+1), execErr)
			return err
		}
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, description, applied_at, execution_time_ms) VALUES (?, ?, ?, ?)",
		m.Version, m.Description, time.Now().UTC().Format(time.RFC3339), time.Since(start).Milliseconds(),
	)
	if err != nil {
		err = newMigrationError(m.Version, "record migration", err)
		return err
	}

	if err = tx.Commit(); err != nil {
		err = newMigrationError(m.Version, "commit transaction", err)
		return err
	}
	return nil
}

// parseSQL splits a script on semicolons and drops comment-only lines.
func parseSQL(script string) []string {
	var statements []string
	for _, stmt := range strings.Split(script, ";") {
		var lines []string
		for _, line := range strings.Split(stmt, "\n") {
			line = strings.TrimSpace(line)
			if line != "" && !strings.HasPrefix(line, "--") {
				lines = append(lines, line)
			}
		}
		if len(lines) > 0 {
			statements = append(statements, strings.Join(lines, "\n"))
		}
	}
	return statements
}
