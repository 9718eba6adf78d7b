package workout

import (
	"context"
	"fmt"
	"time"
)

// sqliteLibraryRepository stores the exercise library.
type sqliteLibraryRepository struct {
	baseRepository
}

// List returns the library, or the seed library stamped with now when none is stored yet.
func (r *sqliteLibraryRepository) List(ctx context.Context, q querier, now time.Time) (Library, error) {
	var library Library
	found, err := r.load(ctx, q, keyExerciseLibrary, &library)
	if err != nil {
		return nil, fmt.Errorf("load exercise library: %w", err)
	}
	if !found {
		return DefaultLibrary(now), nil
	}
	if library == nil {
		return Library{}, nil
	}
	return library, nil
}

// Set stores the library after merging entries with the same normalized name.
func (r *sqliteLibraryRepository) Set(ctx context.Context, q querier, library Library) error {
	return r.store(ctx, q, keyExerciseLibrary, Dedupe(library))
}

// Update applies updateFn to the library and stores it when updateFn reports a change.
func (r *sqliteLibraryRepository) Update(
	ctx context.Context,
	q querier,
	now time.Time,
	updateFn func(library *Library) (bool, error),
) error {
	library, err := r.List(ctx, q, now)
	if err != nil {
		return err
	}
	changed, err := updateFn(&library)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	if err = r.Set(ctx, q, library); err != nil {
		return fmt.Errorf("save updated library: %w", err)
	}
	return nil
}
