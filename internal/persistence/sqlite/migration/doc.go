// Package migration opens configured SQLite connections and applies versioned
// schema migrations.
//
// Migrations are read from an fs.FS (normally an embedded directory) and follow
// the naming convention {version}_{description}.sql, e.g.
// "001_create_reservations.sql". Each file runs in its own transaction and is
// recorded in the schema_migrations table so it is applied at most once.
//
// Example usage:
//
//	db, err := migration.Open(migration.DefaultSQLiteConfig("reservations.db"))
//	if err != nil {
//		return err
//	}
//	if err := migration.NewExecutor(db, files).Run(ctx); err != nil {
//		return err
//	}
package migration
