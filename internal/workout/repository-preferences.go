package workout

import (
	"context"
	"fmt"
)

// sqlitePreferencesRepository stores the coaching preferences.
type sqlitePreferencesRepository struct {
	baseRepository
}

// Get retrieves the coaching preferences, falling back to the defaults.
func (r *sqlitePreferencesRepository) Get(ctx context.Context, q querier) (CoachPreferences, error) {
	prefs := DefaultCoachPreferences()
	found, err := r.load(ctx, q, keyCoachPreferences, &prefs)
	if err != nil {
		return CoachPreferences{}, fmt.Errorf("load coach preferences: %w", err)
	}
	if !found {
		return DefaultCoachPreferences(), nil
	}
	return prefs, nil
}

// Set saves the coaching preferences.
func (r *sqlitePreferencesRepository) Set(ctx context.Context, q querier, prefs CoachPreferences) error {
	return r.store(ctx, q, keyCoachPreferences, prefs)
}
