package workout

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
)

// Library returns the exercise library.
func (s *Service) Library(ctx context.Context) (Library, error) {
	library, err := s.repo.library.List(ctx, s.db.ReadOnly, s.now())
	if err != nil {
		return nil, fmt.Errorf("list library: %w", err)
	}
	return library, nil
}

// SuggestExercises autocompletes exercise names, most used first.
func (s *Service) SuggestExercises(ctx context.Context, query string, limit int) ([]LibraryEntry, error) {
	library, err := s.Library(ctx)
	if err != nil {
		return nil, err
	}
	return library.Suggest(query, limit), nil
}

// validateCategory returns the canonical spelling of category, which must be configured or empty.
func (s *Service) validateCategory(ctx context.Context, q querier, category string) (string, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return "", nil
	}
	categories, err := s.repo.categories.List(ctx, q)
	if err != nil {
		return "", err
	}
	c, ok := categories.Find(category)
	if !ok {
		return "", fmt.Errorf("%w: unknown category %q", ErrValidation, category)
	}
	return c.Name, nil
}

// AddLibraryExercise adds an exercise to the library. The name must not collide with an existing exercise after
// normalization, and the category must be configured or empty.
func (s *Service) AddLibraryExercise(ctx context.Context, name, category string) (LibraryEntry, error) {
	name = strings.TrimSpace(name)
	if NormalizeName(name) == "" {
		return LibraryEntry{}, fmt.Errorf("add library exercise: %w: exercise name must contain letters or digits",
			ErrValidation)
	}
	var entry LibraryEntry
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		canonical, err := s.validateCategory(ctx, tx, category)
		if err != nil {
			return err
		}
		now := s.now()
		return s.repo.library.Update(ctx, tx, now, func(library *Library) (bool, error) {
			var added bool
			if entry, added = library.Add(name, canonical, now); !added {
				return false, fmt.Errorf("%w: exercise %q already exists", ErrValidation, entry.Name)
			}
			return true, nil
		})
	})
	if err != nil {
		return LibraryEntry{}, fmt.Errorf("add library exercise: %w", err)
	}
	return entry, nil
}

// UpdateLibraryExercise renames and recategorizes a library exercise. Sessions and history keep the old name.
func (s *Service) UpdateLibraryExercise(ctx context.Context, id ID, name, category string) error {
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		canonical, err := s.validateCategory(ctx, tx, category)
		if err != nil {
			return err
		}
		return s.repo.library.Update(ctx, tx, s.now(), func(library *Library) (bool, error) {
			return changed(library.Update(id, name, canonical))
		})
	})
	if err != nil {
		return fmt.Errorf("update library exercise: %w", err)
	}
	return nil
}

// DeleteLibraryExercise removes an exercise from the library. Sessions and history that refer to it by name are
// left alone.
func (s *Service) DeleteLibraryExercise(ctx context.Context, id ID) error {
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		return s.repo.library.Update(ctx, tx, s.now(), func(library *Library) (bool, error) {
			if !library.Remove(id) {
				return false, fmt.Errorf("library entry %s: %w", id, ErrNotFound)
			}
			return true, nil
		})
	})
	if err != nil {
		return fmt.Errorf("delete library exercise: %w", err)
	}
	return nil
}

// Categories returns the category configuration.
func (s *Service) Categories(ctx context.Context) (Categories, error) {
	categories, err := s.repo.categories.List(ctx, s.db.ReadOnly)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// AddCategory creates a category. An empty color picks the first preset.
func (s *Service) AddCategory(ctx context.Context, name, color string) (Category, error) {
	var category Category
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		categories, err := s.repo.categories.List(ctx, tx)
		if err != nil {
			return err
		}
		if category, err = categories.Add(name, color); err != nil {
			return err
		}
		return s.repo.categories.Set(ctx, tx, categories)
	})
	if err != nil {
		return Category{}, fmt.Errorf("add category: %w", err)
	}
	return category, nil
}

// UpdateCategory renames and recolors a category. Library exercises follow a rename.
func (s *Service) UpdateCategory(ctx context.Context, id int, name, color string) error {
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		categories, err := s.repo.categories.List(ctx, tx)
		if err != nil {
			return err
		}
		old, err := categories.Update(id, name, color)
		if err != nil {
			return err
		}
		if err = s.repo.categories.Set(ctx, tx, categories); err != nil {
			return err
		}
		renamed := categories[categories.indexByID(id)].Name
		if renamed == old {
			return nil
		}
		return s.repo.library.Update(ctx, tx, s.now(), func(library *Library) (bool, error) {
			library.renameCategory(old, renamed)
			return true, nil
		})
	})
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return nil
}

// DeleteCategory removes an unprotected category. Library exercises in it move to Uncategorized.
func (s *Service) DeleteCategory(ctx context.Context, id int) error {
	var deleted Category
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		categories, err := s.repo.categories.List(ctx, tx)
		if err != nil {
			return err
		}
		if deleted, err = categories.Delete(id); err != nil {
			return err
		}
		if err = s.repo.categories.Set(ctx, tx, categories); err != nil {
			return err
		}
		return s.repo.library.Update(ctx, tx, s.now(), func(library *Library) (bool, error) {
			library.renameCategory(deleted.Name, CategoryUncategorized)
			return true, nil
		})
	})
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "deleted category", slog.String("category", deleted.Name))
	return nil
}

// Preferences returns the coaching preferences.
func (s *Service) Preferences(ctx context.Context) (CoachPreferences, error) {
	prefs, err := s.repo.prefs.Get(ctx, s.db.ReadOnly)
	if err != nil {
		return CoachPreferences{}, fmt.Errorf("get preferences: %w", err)
	}
	return prefs, nil
}

// SavePreferences stores the coaching preferences.
func (s *Service) SavePreferences(ctx context.Context, prefs CoachPreferences) error {
	prefs.Mode = strings.TrimSpace(prefs.Mode)
	if prefs.Mode == "" {
		return fmt.Errorf("save preferences: %w: coaching mode is required", ErrValidation)
	}
	if prefs.TimeAvailable <= 0 {
		return fmt.Errorf("save preferences: %w: time available must be positive", ErrValidation)
	}
	if err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		return s.repo.prefs.Set(ctx, tx, prefs)
	}); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}
