package workout

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/myrjola/gymlog/internal/errors"
	"golang.org/x/sync/errgroup"
)

// ExportDocument is the backup file format. Presentation state is never exported.
type ExportDocument struct {
	ExportDate      time.Time      `json:"exportDate"`
	Version         string         `json:"version"`
	CurrentWorkout  *Session       `json:"currentWorkout"`
	WorkoutHistory  []Session      `json:"workoutHistory"`
	ExerciseLibrary []LibraryEntry `json:"exerciseLibrary"`
}

// Export collects the workout in progress, the history and the library.
func (s *Service) Export(ctx context.Context) (ExportDocument, error) {
	doc := ExportDocument{
		ExportDate:      s.now(),
		Version:         exportVersion,
		CurrentWorkout:  nil,
		WorkoutHistory:  nil,
		ExerciseLibrary: nil,
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		active, err := s.repo.sessions.Get(gctx, s.db.ReadOnly)
		if errors.Is(err, ErrNoActiveSession) {
			return nil
		}
		if err != nil {
			return err
		}
		doc.CurrentWorkout = &active.Session
		return nil
	})
	g.Go(func() error {
		var err error
		doc.WorkoutHistory, err = s.repo.history.List(gctx, s.db.ReadOnly)
		return err
	})
	g.Go(func() error {
		library, err := s.repo.library.List(gctx, s.db.ReadOnly, s.now())
		doc.ExerciseLibrary = library
		return err
	})
	if err := g.Wait(); err != nil {
		return ExportDocument{}, fmt.Errorf("export: %w", err)
	}
	return doc, nil
}

// WriteExport writes the export document as indented JSON.
func (s *Service) WriteExport(ctx context.Context, w io.Writer) error {
	doc, err := s.Export(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err = enc.Encode(doc); err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	return nil
}

// ImportResult describes which records an import replaced.
type ImportResult struct {
	Version         string
	CurrentWorkout  bool // the key was present, possibly null
	HistoryEntries  int  // -1 when the key was absent
	LibraryEntries  int  // -1 when the key was absent
	WorkoutReplaced bool // a workout was stored, as opposed to cleared
}

// Import replaces the records present in the document read from r. Keys absent from the document leave their
// records untouched and a null currentWorkout clears the workout in progress. Legacy shapes are normalized, the
// library is deduplicated and the history is capped.
func (s *Service) Import(ctx context.Context, r io.Reader) (ImportResult, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return ImportResult{}, fmt.Errorf("import: read document: %w", err)
	}
	var doc map[string]json.RawMessage
	if err = json.Unmarshal(raw, &doc); err != nil {
		return ImportResult{}, fmt.Errorf("import: %w: not a JSON object: %w", ErrValidation, err)
	}

	result := ImportResult{
		Version:         legacyExportVersion,
		CurrentWorkout:  false,
		HistoryEntries:  -1,
		LibraryEntries:  -1,
		WorkoutReplaced: false,
	}
	if v, ok := doc["version"]; ok {
		_ = json.Unmarshal(v, &result.Version)
	}

	var (
		current *Session
		history []Session
		library []LibraryEntry
	)
	currentRaw, hasCurrent := doc["currentWorkout"]
	historyRaw, hasHistory := doc["workoutHistory"]
	libraryRaw, hasLibrary := doc["exerciseLibrary"]
	if !hasCurrent && !hasHistory && !hasLibrary {
		return ImportResult{}, fmt.Errorf("import: %w: document has no workout data", ErrValidation)
	}
	if hasCurrent {
		if err = json.Unmarshal(currentRaw, &current); err != nil {
			return ImportResult{}, fmt.Errorf("import: %w: currentWorkout: %w", ErrValidation, err)
		}
		result.CurrentWorkout = true
		result.WorkoutReplaced = current != nil
	}
	if hasHistory {
		if err = json.Unmarshal(historyRaw, &history); err != nil {
			return ImportResult{}, fmt.Errorf("import: %w: workoutHistory: %w", ErrValidation, err)
		}
		history = history[:min(len(history), maxHistory)]
		result.HistoryEntries = len(history)
	}
	if hasLibrary && !bytes.Equal(bytes.TrimSpace(libraryRaw), []byte("null")) {
		if err = json.Unmarshal(libraryRaw, &library); err != nil {
			return ImportResult{}, fmt.Errorf("import: %w: exerciseLibrary: %w", ErrValidation, err)
		}
		library = Dedupe(library)
		result.LibraryEntries = len(library)
	}

	err = s.db.WithTx(ctx, func(tx *sql.Tx) error {
		if hasCurrent {
			if current == nil {
				if err := s.repo.sessions.Clear(ctx, tx); err != nil {
					return err
				}
			} else if err := s.repo.sessions.Set(ctx, tx,
				ActiveSession{Session: *current, View: newView(*current, false)}); err != nil {
				return err
			}
		}
		if hasHistory {
			if err := s.repo.history.Set(ctx, tx, history); err != nil {
				return err
			}
		}
		if library != nil {
			if err := s.repo.library.Set(ctx, tx, library); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, fmt.Errorf("import: %w", err)
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "imported workout data",
		slog.String("version", result.Version),
		slog.Bool("currentWorkout", result.CurrentWorkout),
		slog.Int("historyEntries", result.HistoryEntries),
		slog.Int("libraryEntries", result.LibraryEntries))
	return result, nil
}
