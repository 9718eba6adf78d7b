package workout

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/myrjola/gymlog/internal/errors"
	"golang.org/x/sync/errgroup"
)

func findHistoryEntry(history []Session, id ID) (Session, error) {
	i := slices.IndexFunc(history, func(s Session) bool { return s.ID == id })
	if i < 0 {
		return Session{}, fmt.Errorf("history entry %s: %w", id, ErrNotFound)
	}
	return history[i], nil
}

// History returns completed workouts, newest first.
func (s *Service) History(ctx context.Context) ([]Session, error) {
	history, err := s.repo.history.List(ctx, s.db.ReadOnly)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return history, nil
}

// HistoryEntry returns one completed workout or ErrNotFound.
func (s *Service) HistoryEntry(ctx context.Context, id ID) (Session, error) {
	history, err := s.History(ctx)
	if err != nil {
		return Session{}, err
	}
	return findHistoryEntry(history, id)
}

// updateHistoryEntry edits one history entry in place. Totals are recomputed after the edit. A stale entry,
// exercise or set makes the edit a no-op.
func (s *Service) updateHistoryEntry(
	ctx context.Context,
	op string,
	id ID,
	updateFn func(entry *ActiveSession) (bool, error),
) error {
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		return s.repo.history.Update(ctx, tx, func(history []Session) ([]Session, bool, error) {
			i := slices.IndexFunc(history, func(s Session) bool { return s.ID == id })
			if i < 0 {
				return nil, false, fmt.Errorf("history entry %s: %w", id, ErrNotFound)
			}
			// Reuse the session state machine on the entry. Its view is thrown away.
			entry := ActiveSession{Session: history[i], View: newView(history[i], false)}
			updated, err := updateFn(&entry)
			if err != nil || !updated {
				return nil, false, err
			}
			entry.Session.TotalExercises = len(entry.Session.Exercises)
			entry.Session.TotalSets = entry.Session.countSets()
			history[i] = entry.Session
			return history, true, nil
		})
	})
	if errors.Is(err, ErrNotFound) {
		s.logger.LogAttrs(ctx, slog.LevelDebug, "ignoring stale reference",
			slog.String("op", op), errors.SlogError(err))
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdateHistorySet corrects a value of a recorded set.
func (s *Service) UpdateHistorySet(
	ctx context.Context,
	entryID, exerciseID ID,
	index int,
	column Column,
	field Field,
	value float64,
) error {
	return s.updateHistoryEntry(ctx, "update history set", entryID, func(e *ActiveSession) (bool, error) {
		set, err := e.set(exerciseID, index)
		if err != nil {
			return false, err
		}
		switch column {
		case ColumnPlanned:
			set.Planned = set.Planned.with(field, value)
		case ColumnActual:
			set.Actual = set.Actual.with(field, value)
		}
		return true, nil
	})
}

// ToggleHistorySetCompletion flips the completed flag of a recorded set.
func (s *Service) ToggleHistorySetCompletion(ctx context.Context, entryID, exerciseID ID, index int) error {
	return s.updateHistoryEntry(ctx, "toggle history set", entryID, func(e *ActiveSession) (bool, error) {
		return changed(e.toggleSetCompletion(exerciseID, index))
	})
}

// DeleteHistoryExercise removes an exercise from a recorded workout.
func (s *Service) DeleteHistoryExercise(ctx context.Context, entryID, exerciseID ID) error {
	return s.updateHistoryEntry(ctx, "delete history exercise", entryID, func(e *ActiveSession) (bool, error) {
		return changed(e.deleteExercise(exerciseID))
	})
}

// DeleteHistorySet removes a set from a recorded workout.
func (s *Service) DeleteHistorySet(ctx context.Context, entryID, exerciseID ID, index int) error {
	return s.updateHistoryEntry(ctx, "delete history set", entryID, func(e *ActiveSession) (bool, error) {
		return changed(e.deleteSet(exerciseID, index))
	})
}

// DeleteHistoryEntry removes a recorded workout. Deleting an unknown entry is a no-op.
func (s *Service) DeleteHistoryEntry(ctx context.Context, id ID) error {
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		return s.repo.history.Update(ctx, tx, func(history []Session) ([]Session, bool, error) {
			n := len(history)
			history = slices.DeleteFunc(history, func(s Session) bool { return s.ID == id })
			return history, len(history) != n, nil
		})
	})
	if err != nil {
		return fmt.Errorf("delete history entry: %w", err)
	}
	return nil
}

// ClearHistory removes every recorded workout.
func (s *Service) ClearHistory(ctx context.Context) error {
	if err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		return s.repo.history.Set(ctx, tx, []Session{})
	}); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "cleared workout history")
	return nil
}

// analyticsInput loads the records the analytics need concurrently.
func (s *Service) analyticsInput(ctx context.Context) ([]Session, CategoryResolver, error) {
	var (
		history    []Session
		library    Library
		categories Categories
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		history, err = s.repo.history.List(gctx, s.db.ReadOnly)
		return err
	})
	g.Go(func() error {
		var err error
		library, err = s.repo.library.List(gctx, s.db.ReadOnly, s.now())
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = s.repo.categories.List(gctx, s.db.ReadOnly)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, CategoryResolver{}, fmt.Errorf("load analytics input: %w", err) //nolint:exhaustruct // error
	}
	return history, NewCategoryResolver(library, categories), nil
}

// Heatmap computes the volume heatmap of the days ending today in loc.
func (s *Service) Heatmap(ctx context.Context, days int, loc *time.Location) (HeatmapWindow, error) {
	history, resolver, err := s.analyticsInput(ctx)
	if err != nil {
		return HeatmapWindow{}, err
	}
	return Heatmap(history, resolver, s.clock().In(loc), days), nil
}

// CategoryBreakdown computes the completed volume per category between the days of start and end.
func (s *Service) CategoryBreakdown(ctx context.Context, start, end time.Time) (Breakdown, error) {
	history, resolver, err := s.analyticsInput(ctx)
	if err != nil {
		return Breakdown{}, err
	}
	return CategoryBreakdown(history, resolver, start, end), nil
}

// QuickStats summarizes the history.
func (s *Service) QuickStats(ctx context.Context) (Overview, error) {
	history, err := s.History(ctx)
	if err != nil {
		return Overview{}, err
	}
	return QuickStats(history, s.clock()), nil
}

// ExerciseHistory lists past performances of an exercise, oldest first.
func (s *Service) ExerciseHistory(ctx context.Context, name string) ([]ExerciseHistoryEntry, error) {
	history, err := s.History(ctx)
	if err != nil {
		return nil, err
	}
	return ExerciseHistory(history, name), nil
}
