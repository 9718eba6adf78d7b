package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "embed"
)

//go:embed schema.sql
var schemaDefinition string

type migration struct {
	version int
	name    string
	sql     string
}

//nolint:gochecknoglobals // append-only list of schema changes.
var migrations = []migration{
	{
		version: 1,
		name:    "records",
		sql:     schemaDefinition,
	},
}

// migrate applies every migration whose version is not yet recorded in schema_migrations. Each migration runs in
// its own transaction together with its bookkeeping row.
func (db *Database) migrate(ctx context.Context, ms []migration) error {
	if _, err := db.ReadWrite.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations
		(
			version    INTEGER PRIMARY KEY NOT NULL,
			name       TEXT                NOT NULL,
			applied_at TEXT                NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
		) STRICT;`); err != nil {
		return fmt.Errorf("ensure schema_migrations table: %w", err)
	}

	for _, m := range ms {
		var exists int
		err := db.ReadWrite.QueryRowContext(ctx,
			`SELECT 1 FROM schema_migrations WHERE version = ?`, m.version).Scan(&exists)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("check migration version %d: %w", m.version, err)
		}

		start := time.Now()
		if err = db.WithTx(ctx, func(tx *sql.Tx) error {
			if _, err = tx.ExecContext(ctx, m.sql); err != nil {
				return fmt.Errorf("apply migration version %d (%s): %w", m.version, m.name, err)
			}
			if _, err = tx.ExecContext(ctx,
				`INSERT INTO schema_migrations (version, name) VALUES (?, ?)`, m.version, m.name); err != nil {
				return fmt.Errorf("record migration version %d: %w", m.version, err)
			}
			return nil
		}); err != nil {
			return err
		}
		db.logger.LogAttrs(ctx, slog.LevelInfo, "applied migration",
			slog.Int("version", m.version), slog.String("name", m.name), slog.Duration("duration", time.Since(start)))
	}

	return nil
}

// SchemaVersion returns the highest applied migration version.
func (db *Database) SchemaVersion(ctx context.Context) (int, error) {
	var version sql.NullInt64
	if err := db.ReadOnly.QueryRowContext(ctx,
		`SELECT MAX(version) FROM schema_migrations`).Scan(&version); err != nil {
		return 0, fmt.Errorf("query schema version: %w", err)
	}
	return int(version.Int64), nil
}
