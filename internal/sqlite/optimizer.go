package sqlite

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// optimize runs the given optimize pragma. Failures are logged and otherwise ignored since the database stays
// fully usable without fresh query planner statistics. See https://www.sqlite.org/pragma.html#pragma_optimize.
func (db *Database) optimize(ctx context.Context, pragma string) {
	start := time.Now()
	if _, err := db.ReadWrite.ExecContext(ctx, pragma); err != nil {
		err = fmt.Errorf("optimize database: %w", err)
		db.logger.LogAttrs(ctx, slog.LevelWarn, "failed to optimize database", slog.Any("error", err))
		return
	}
	db.logger.LogAttrs(ctx, slog.LevelDebug, "optimized database",
		slog.String("pragma", pragma), slog.Duration("duration", time.Since(start)))
}
