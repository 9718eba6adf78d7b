package workout

import (
	"context"
	"fmt"
)

// sqliteHistoryRepository stores completed sessions, newest first.
type sqliteHistoryRepository struct {
	baseRepository
}

// List returns the history, newest first.
func (r *sqliteHistoryRepository) List(ctx context.Context, q querier) ([]Session, error) {
	var history []Session
	found, err := r.load(ctx, q, keyWorkoutHistory, &history)
	if err != nil {
		return nil, fmt.Errorf("load workout history: %w", err)
	}
	if !found || history == nil {
		return []Session{}, nil
	}
	return history, nil
}

// Set replaces the history, keeping only the newest entries up to the cap.
func (r *sqliteHistoryRepository) Set(ctx context.Context, q querier, history []Session) error {
	if history == nil {
		history = []Session{}
	}
	if len(history) > maxHistory {
		history = history[:maxHistory]
	}
	return r.store(ctx, q, keyWorkoutHistory, history)
}

// Update applies updateFn to the history and stores it when updateFn reports a change.
func (r *sqliteHistoryRepository) Update(
	ctx context.Context,
	q querier,
	updateFn func(history []Session) ([]Session, bool, error),
) error {
	history, err := r.List(ctx, q)
	if err != nil {
		return err
	}
	updated, changed, err := updateFn(history)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	if err = r.Set(ctx, q, updated); err != nil {
		return fmt.Errorf("save updated history: %w", err)
	}
	return nil
}
