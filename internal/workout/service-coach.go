package workout

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/myrjola/gymlog/internal/errors"
	"golang.org/x/sync/errgroup"
)

// Coach suggests the next workout from the user's records.
type Coach interface {
	Suggest(ctx context.Context, req CoachRequest) (CoachSuggestion, error)
}

// CoachRequest carries everything a coach may base a suggestion on.
type CoachRequest struct {
	History     []Session
	Library     Library
	Categories  Categories
	Preferences CoachPreferences
}

// CoachSuggestion is a suggested workout ready to be started.
type CoachSuggestion struct {
	Session Session
	// LibraryEntries name and categorize the suggested exercises. Those missing from the library are added when
	// the workout starts.
	LibraryEntries   []LibraryEntry
	Rationale        string
	Focus            string
	EstimatedMinutes int
}

const opSuggestWorkout = "suggest workout"

// validate rejects suggestions that cannot be started. Nothing is written before it passes.
func (c CoachSuggestion) validate() error {
	var problems []string
	if strings.TrimSpace(c.Rationale) == "" {
		problems = append(problems, "missing rationale")
	}
	if strings.TrimSpace(c.Focus) == "" {
		problems = append(problems, "missing focus")
	}
	if len(c.Session.Exercises) == 0 {
		problems = append(problems, "no exercises")
	}
	for i, e := range c.Session.Exercises {
		if strings.TrimSpace(e.Name) == "" {
			problems = append(problems, fmt.Sprintf("exercise %d has no name", i+1))
		}
	}
	if len(problems) == 0 {
		return nil
	}
	return &ExternalServiceError{
		Op:          opSuggestWorkout,
		UserMessage: "The coach returned an incomplete workout. Please try again.",
		Retryable:   true,
		Err:         errors.New("invalid suggestion", slog.String("problems", strings.Join(problems, "; "))),
	}
}

// SuggestWorkout asks the coach for the next workout and starts it. An existing workout is replaced only when
// replace is set. On any failure the stored records are left exactly as they were.
func (s *Service) SuggestWorkout(ctx context.Context, replace bool) (CoachSuggestion, error) {
	if s.coach == nil {
		return CoachSuggestion{}, &ExternalServiceError{
			Op:          opSuggestWorkout,
			UserMessage: "The workout coach is not configured. Set OPENAI_API_KEY to enable it.",
			Retryable:   false,
			Err:         nil,
		}
	}
	if !replace {
		exists, err := s.repo.sessions.Exists(ctx, s.db.ReadOnly)
		if err != nil {
			return CoachSuggestion{}, fmt.Errorf("%s: %w", opSuggestWorkout, err)
		}
		if exists {
			return CoachSuggestion{}, fmt.Errorf("%s: %w: a workout is already in progress", opSuggestWorkout,
				ErrInvalidState)
		}
	}

	req, err := s.coachRequest(ctx)
	if err != nil {
		return CoachSuggestion{}, fmt.Errorf("%s: %w", opSuggestWorkout, err)
	}
	suggestion, err := s.coach.Suggest(ctx, req)
	if err != nil {
		return CoachSuggestion{}, fmt.Errorf("%s: %w", opSuggestWorkout, err)
	}
	if err = suggestion.validate(); err != nil {
		return CoachSuggestion{}, err
	}

	var patched bool
	err = s.db.WithTx(ctx, func(tx *sql.Tx) error {
		exists, err := s.repo.sessions.Exists(ctx, tx)
		if err != nil {
			return err
		}
		if exists && !replace {
			return fmt.Errorf("%w: a workout is already in progress", ErrInvalidState)
		}
		active := ActiveSession{Session: suggestion.Session, View: newView(suggestion.Session, true)}
		if err = s.repo.sessions.Set(ctx, tx, active); err != nil {
			return err
		}
		categories, err := s.repo.categories.List(ctx, tx)
		if err != nil {
			return err
		}
		now := s.now()
		return s.repo.library.Update(ctx, tx, now, func(library *Library) (bool, error) {
			var extended Library
			if extended, patched = PatchLibrary(*library, suggestion.LibraryEntries, categories, now); patched {
				*library = extended
			}
			return patched, nil
		})
	})
	if err != nil {
		return CoachSuggestion{}, fmt.Errorf("%s: %w", opSuggestWorkout, err)
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "started suggested workout",
		slog.String("sessionID", string(suggestion.Session.ID)),
		slog.String("focus", suggestion.Focus),
		slog.Int("exercises", len(suggestion.Session.Exercises)),
		slog.Bool("libraryPatched", patched))
	return suggestion, nil
}

// coachRequest loads the coach's input records concurrently.
func (s *Service) coachRequest(ctx context.Context) (CoachRequest, error) {
	var req CoachRequest
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		req.History, err = s.repo.history.List(gctx, s.db.ReadOnly)
		return err
	})
	g.Go(func() error {
		var err error
		req.Library, err = s.repo.library.List(gctx, s.db.ReadOnly, s.now())
		return err
	})
	g.Go(func() error {
		var err error
		req.Categories, err = s.repo.categories.List(gctx, s.db.ReadOnly)
		return err
	})
	g.Go(func() error {
		var err error
		req.Preferences, err = s.repo.prefs.Get(gctx, s.db.ReadOnly)
		return err
	})
	if err := g.Wait(); err != nil {
		return CoachRequest{}, fmt.Errorf("load coach input: %w", err)
	}
	return req, nil
}
