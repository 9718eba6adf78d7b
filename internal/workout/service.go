package workout

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/myrjola/gymlog/internal/errors"
	"github.com/myrjola/gymlog/internal/sqlite"
)

// Service handles the business logic for workout management. Every mutation is a read-modify-write of whole
// records inside one immediate transaction.
type Service struct {
	db     *sqlite.Database
	repo   *repository
	logger *slog.Logger
	clock  func() time.Time
	coach  Coach
}

type Option func(*Service)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.clock = now
	}
}

// WithCoach enables workout suggestions.
func WithCoach(c Coach) Option {
	return func(s *Service) {
		s.coach = c
	}
}

// NewService creates a new workout service.
func NewService(db *sqlite.Database, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		db:     db,
		repo:   newRepository(db, logger),
		logger: logger,
		clock:  time.Now,
		coach:  nil,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// now returns the current time at the millisecond precision of the stored records.
func (s *Service) now() time.Time {
	return s.clock().UTC().Truncate(time.Millisecond)
}

// Current returns the workout in progress, or ErrNoActiveSession.
func (s *Service) Current(ctx context.Context) (ActiveSession, error) {
	active, err := s.repo.sessions.Get(ctx, s.db.ReadOnly)
	if err != nil {
		return ActiveSession{}, fmt.Errorf("get current workout: %w", err)
	}
	return active, nil
}

// StartSession starts an empty workout. It fails with ErrInvalidState when a workout is already in progress; the
// caller has to discard it first.
func (s *Service) StartSession(ctx context.Context) (Session, error) {
	var session Session
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		exists, err := s.repo.sessions.Exists(ctx, tx)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: a workout is already in progress", ErrInvalidState)
		}
		session = newSession(NewID(), s.now())
		return s.repo.sessions.Set(ctx, tx, ActiveSession{Session: session, View: newView(session, false)})
	})
	if err != nil {
		return Session{}, fmt.Errorf("start session: %w", err)
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "started workout", slog.String("sessionID", string(session.ID)))
	return session, nil
}

// DiscardSession drops the workout in progress without recording it.
func (s *Service) DiscardSession(ctx context.Context) error {
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		exists, err := s.repo.sessions.Exists(ctx, tx)
		if err != nil {
			return err
		}
		if !exists {
			return ErrNoActiveSession
		}
		return s.repo.sessions.Clear(ctx, tx)
	})
	if err != nil {
		return fmt.Errorf("discard session: %w", err)
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "discarded workout")
	return nil
}

// StartFromTemplate starts a workout that repeats the history entry historyID. An existing workout is replaced only
// when replace is set.
func (s *Service) StartFromTemplate(ctx context.Context, historyID ID, replace bool) (Session, error) {
	var session Session
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		exists, err := s.repo.sessions.Exists(ctx, tx)
		if err != nil {
			return err
		}
		if exists && !replace {
			return fmt.Errorf("%w: a workout is already in progress", ErrInvalidState)
		}
		history, err := s.repo.history.List(ctx, tx)
		if err != nil {
			return err
		}
		tmpl, err := findHistoryEntry(history, historyID)
		if err != nil {
			return err
		}
		session = sessionFromTemplate(tmpl, NewID(), s.now(), NewID)
		return s.repo.sessions.Set(ctx, tx, ActiveSession{Session: session, View: newView(session, false)})
	})
	if err != nil {
		return Session{}, fmt.Errorf("start from template: %w", err)
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "started workout from template",
		slog.String("sessionID", string(session.ID)), slog.String("templateID", string(historyID)))
	return session, nil
}

// updateActive runs updateFn on the workout in progress and stores the result when it reports a change. A stale
// exercise ID or set index makes the operation a no-op.
func (s *Service) updateActive(
	ctx context.Context,
	op string,
	updateFn func(active *ActiveSession) (bool, error),
) error {
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		active, err := s.repo.sessions.Get(ctx, tx)
		if err != nil {
			return err
		}
		changed, err := updateFn(&active)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}
		return s.repo.sessions.Set(ctx, tx, active)
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

// changed adapts mutations that always change the session when they succeed.
func changed(err error) (bool, error) {
	return err == nil, err
}

// AddExercise appends an exercise to the workout and records its use in the library.
func (s *Service) AddExercise(ctx context.Context, name string) (Exercise, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Exercise{}, fmt.Errorf("add exercise: %w: exercise name is required", ErrValidation)
	}
	var exercise Exercise
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		active, err := s.repo.sessions.Get(ctx, tx)
		if err != nil {
			return err
		}
		exercise = active.addExercise(NewID(), name)
		if err = s.repo.sessions.Set(ctx, tx, active); err != nil {
			return err
		}
		now := s.now()
		return s.repo.library.Update(ctx, tx, now, func(library *Library) (bool, error) {
			return library.RecordUsage(name, now), nil
		})
	})
	if err != nil {
		return Exercise{}, fmt.Errorf("add exercise: %w", err)
	}
	return exercise, nil
}

// DeleteExercise removes an exercise and all its sets.
func (s *Service) DeleteExercise(ctx context.Context, exerciseID ID) error {
	return s.updateActive(ctx, "delete exercise", func(a *ActiveSession) (bool, error) {
		return changed(a.deleteExercise(exerciseID))
	})
}

// MoveExercise moves an exercise one position up or down.
func (s *Service) MoveExercise(ctx context.Context, exerciseID ID, dir Direction) error {
	return s.updateActive(ctx, "move exercise", func(a *ActiveSession) (bool, error) {
		return a.moveExercise(exerciseID, dir)
	})
}

// SwapExercise replaces an exercise with another one by name, keeping its sets.
func (s *Service) SwapExercise(ctx context.Context, exerciseID ID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("swap exercise: %w: exercise name is required", ErrValidation)
	}
	return s.updateActive(ctx, "swap exercise", func(a *ActiveSession) (bool, error) {
		return a.renameExercise(exerciseID, name)
	})
}

// SwapCandidates lists library exercises that could replace the exercise: those of the same category, or every
// other exercise when it has no category.
func (s *Service) SwapCandidates(ctx context.Context, exerciseID ID) ([]LibraryEntry, error) {
	active, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	i := active.Session.exerciseIndex(exerciseID)
	if i < 0 {
		return nil, fmt.Errorf("swap candidates: exercise %s: %w", exerciseID, ErrNotFound)
	}
	name := active.Session.Exercises[i].Name

	library, err := s.repo.library.List(ctx, s.db.ReadOnly, s.now())
	if err != nil {
		return nil, fmt.Errorf("swap candidates: %w", err)
	}
	category := ""
	if entry, ok := library.FindByName(name); ok {
		category = entry.Category
	}
	candidates := []LibraryEntry{}
	for _, entry := range library.Suggest("", 0) {
		if strings.EqualFold(entry.Name, name) {
			continue
		}
		if category == "" || strings.EqualFold(entry.Category, category) {
			candidates = append(candidates, entry)
		}
	}
	return candidates, nil
}

// AddSet appends a set to an exercise, starting from the previous set's values.
func (s *Service) AddSet(ctx context.Context, exerciseID ID) error {
	return s.updateActive(ctx, "add set", func(a *ActiveSession) (bool, error) {
		_, err := a.addSet(exerciseID)
		return changed(err)
	})
}

// DeleteSet removes a set from an exercise.
func (s *Service) DeleteSet(ctx context.Context, exerciseID ID, index int) error {
	return s.updateActive(ctx, "delete set", func(a *ActiveSession) (bool, error) {
		return changed(a.deleteSet(exerciseID, index))
	})
}

// SelectSet marks a set as the one being edited.
func (s *Service) SelectSet(ctx context.Context, exerciseID ID, index int) error {
	return s.updateActive(ctx, "select set", func(a *ActiveSession) (bool, error) {
		return a.selectSet(exerciseID, index)
	})
}

// UpdateSetField sets a field of both the planned and the actual values. Completed sets are left untouched and
// negative values are stored as zero.
func (s *Service) UpdateSetField(ctx context.Context, exerciseID ID, index int, field Field, value float64) error {
	return s.updateActive(ctx, "update set", func(a *ActiveSession) (bool, error) {
		return a.updateSetField(exerciseID, index, field, value)
	})
}

// UpdateSetValue sets a field of either the planned or the actual values. Completed sets are left untouched and
// negative values are stored as zero.
func (s *Service) UpdateSetValue(
	ctx context.Context,
	exerciseID ID,
	index int,
	column Column,
	field Field,
	value float64,
) error {
	return s.updateActive(ctx, "update set", func(a *ActiveSession) (bool, error) {
		return a.updateSetValue(exerciseID, index, column, field, value)
	})
}

// ToggleSetCompletion flips the completed flag of a set.
func (s *Service) ToggleSetCompletion(ctx context.Context, exerciseID ID, index int) error {
	return s.updateActive(ctx, "toggle set completion", func(a *ActiveSession) (bool, error) {
		return changed(a.toggleSetCompletion(exerciseID, index))
	})
}

// ToggleExerciseCollapse opens or closes an exercise.
func (s *Service) ToggleExerciseCollapse(ctx context.Context, exerciseID ID) error {
	return s.updateActive(ctx, "toggle exercise", func(a *ActiveSession) (bool, error) {
		return changed(a.toggleCollapse(exerciseID))
	})
}

// ToggleExerciseDetails shows or hides the details of an exercise.
func (s *Service) ToggleExerciseDetails(ctx context.Context, exerciseID ID) error {
	return s.updateActive(ctx, "toggle exercise details", func(a *ActiveSession) (bool, error) {
		return changed(a.toggleDetails(exerciseID))
	})
}

// ToggleTimeMode switches an exercise between weight and reps and timed sets.
func (s *Service) ToggleTimeMode(ctx context.Context, exerciseID ID) error {
	return s.updateActive(ctx, "toggle time mode", func(a *ActiveSession) (bool, error) {
		return changed(a.toggleTimeMode(exerciseID))
	})
}

// ToggleShowPrevious shows or hides the previous performance of an exercise.
func (s *Service) ToggleShowPrevious(ctx context.Context, exerciseID ID) error {
	return s.updateActive(ctx, "toggle show previous", func(a *ActiveSession) (bool, error) {
		return changed(a.toggleShowPrevious(exerciseID))
	})
}

// ToggleAllExercises collapses or expands every exercise.
func (s *Service) ToggleAllExercises(ctx context.Context) error {
	return s.updateActive(ctx, "toggle all exercises", func(a *ActiveSession) (bool, error) {
		a.toggleAll()
		return true, nil
	})
}

// CompleteSession records the workout in history and clears it. A workout without exercises fails with
// ErrEmptySession and stays in progress.
func (s *Service) CompleteSession(ctx context.Context) (Session, error) {
	var entry Session
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		active, err := s.repo.sessions.Get(ctx, tx)
		if err != nil {
			return err
		}
		if entry, err = active.complete(s.now()); err != nil {
			return err
		}
		if err = s.repo.history.Update(ctx, tx, func(history []Session) ([]Session, bool, error) {
			return prependHistory(history, entry), true, nil
		}); err != nil {
			return err
		}
		return s.repo.sessions.Clear(ctx, tx)
	})
	if err != nil {
		return Session{}, fmt.Errorf("complete session: %w", err)
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "completed workout",
		slog.String("sessionID", string(entry.ID)),
		slog.Int("duration", entry.Duration),
		slog.Int("totalSets", entry.TotalSets),
		slog.Int("totalExercises", entry.TotalExercises))
	return entry, nil
}
