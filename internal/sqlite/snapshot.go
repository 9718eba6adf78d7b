package sqlite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"
)

var ErrSnapshotExists = errors.New("snapshot target already exists")

// Snapshot writes a consistent, compacted copy of the whole database to path. It refuses to overwrite an existing
// file.
func (db *Database) Snapshot(ctx context.Context, path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrSnapshotExists, path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat snapshot target: %w", err)
	}

	start := time.Now()
	if _, err := db.ReadWrite.ExecContext(ctx, `VACUUM INTO ?`, path); err != nil {
		return fmt.Errorf("vacuum into %s: %w", path, err)
	}
	db.logger.LogAttrs(ctx, slog.LevelInfo, "wrote database snapshot",
		slog.String("path", path), slog.Duration("duration", time.Since(start)))
	return nil
}
