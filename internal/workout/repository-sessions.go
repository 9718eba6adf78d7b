package workout

import (
	"context"
	"fmt"
)

// sqliteSessionRepository stores the workout in progress and its presentation state as two records.
type sqliteSessionRepository struct {
	baseRepository
}

// Get returns the active session, rebuilding its view when the stored one is missing or stale. It returns
// ErrNoActiveSession when no workout is in progress.
func (r *sqliteSessionRepository) Get(ctx context.Context, q querier) (ActiveSession, error) {
	var session *Session
	found, err := r.load(ctx, q, keyCurrentWorkout, &session)
	if err != nil {
		return ActiveSession{}, fmt.Errorf("load current workout: %w", err)
	}
	if !found || session == nil {
		return ActiveSession{}, ErrNoActiveSession
	}

	var view SessionView
	if found, err = r.load(ctx, q, keyWorkoutView, &view); err != nil {
		return ActiveSession{}, fmt.Errorf("load workout view: %w", err)
	}
	if !found {
		view = newView(*session, false)
	}
	view.reconcile(*session)
	return ActiveSession{Session: *session, View: view}, nil
}

// Exists reports whether a workout is in progress.
func (r *sqliteSessionRepository) Exists(ctx context.Context, q querier) (bool, error) {
	var exists int
	err := q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM records WHERE key = ? AND value != 'null')`, keyCurrentWorkout).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query current workout: %w", err)
	}
	return exists == 1, nil
}

// Set stores the session and its view.
func (r *sqliteSessionRepository) Set(ctx context.Context, q querier, active ActiveSession) error {
	if err := r.store(ctx, q, keyCurrentWorkout, active.Session); err != nil {
		return err
	}
	return r.store(ctx, q, keyWorkoutView, active.View)
}

// Clear removes the session and its view.
func (r *sqliteSessionRepository) Clear(ctx context.Context, q querier) error {
	if err := r.remove(ctx, q, keyCurrentWorkout); err != nil {
		return err
	}
	return r.remove(ctx, q, keyWorkoutView)
}
