package workout

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/myrjola/gymlog/internal/sqlite"
)

// Record keys. Every record holds one JSON document.
const (
	keyCurrentWorkout   = "currentWorkout"
	keyWorkoutView      = "workoutView"
	keyWorkoutHistory   = "workoutHistory"
	keyExerciseLibrary  = "exerciseLibrary"
	keyCategoryConfig   = "categoryConfig"
	keyCoachPreferences = "coachPreferences"
)

// querier is satisfied by both connection pools and by transactions, so that reads can take part in a
// read-modify-write transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// repository groups the record repositories.
type repository struct {
	sessions   *sqliteSessionRepository
	history    *sqliteHistoryRepository
	library    *sqliteLibraryRepository
	categories *sqliteCategoryRepository
	prefs      *sqlitePreferencesRepository
}

func newRepository(db *sqlite.Database, logger *slog.Logger) *repository {
	base := newBaseRepository(db, logger)
	return &repository{
		sessions:   &sqliteSessionRepository{baseRepository: base},
		history:    &sqliteHistoryRepository{baseRepository: base},
		library:    &sqliteLibraryRepository{baseRepository: base},
		categories: &sqliteCategoryRepository{baseRepository: base},
		prefs:      &sqlitePreferencesRepository{baseRepository: base},
	}
}

// baseRepository stores JSON documents in the records table.
type baseRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func newBaseRepository(db *sqlite.Database, logger *slog.Logger) baseRepository {
	return baseRepository{
		db:     db,
		logger: logger,
	}
}

// load decodes the record under key into v and reports whether a usable record was found.
//
// A record that fails to decode is treated as missing so that the caller falls back to its default. Inside a
// transaction the damaged value is also moved to "<key>.corrupt" to keep it for inspection.
func (r baseRepository) load(ctx context.Context, q querier, key string, v any) (bool, error) {
	var raw string
	err := q.QueryRowContext(ctx, `SELECT value FROM records WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query record %s: %w", key, err)
	}

	decodeErr := json.Unmarshal([]byte(raw), v)
	if decodeErr == nil {
		return true, nil
	}

	attrs := []slog.Attr{slog.String("key", key), slog.String("error", decodeErr.Error())}
	if _, ok := q.(*sql.Tx); !ok {
		r.logger.LogAttrs(ctx, slog.LevelWarn, "ignoring corrupt record", attrs...)
		return false, nil
	}
	if err = r.quarantine(ctx, q, key, raw); err != nil {
		return false, err
	}
	r.logger.LogAttrs(ctx, slog.LevelWarn, "quarantined corrupt record",
		append(attrs, slog.String("quarantineKey", key+corruptRecordSuffix))...)
	return false, nil
}

func (r baseRepository) quarantine(ctx context.Context, q querier, key, raw string) error {
	if _, err := q.ExecContext(ctx, `
		INSERT INTO records (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at`, key+corruptRecordSuffix, raw); err != nil {
		return fmt.Errorf("quarantine record %s: %w", key, err)
	}
	return r.remove(ctx, q, key)
}

// store encodes v and upserts it under key.
func (r baseRepository) store(ctx context.Context, q querier, key string, v any) error {
	value, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal record %s: %w", key, err)
	}
	if _, err = q.ExecContext(ctx, `
		INSERT INTO records (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at`, key, string(value)); err != nil {
		return fmt.Errorf("store record %s: %w", key, err)
	}
	return nil
}

func (r baseRepository) remove(ctx context.Context, q querier, key string) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM records WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete record %s: %w", key, err)
	}
	return nil
}
