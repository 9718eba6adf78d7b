package coach

import (
	"strings"
	"time"

	"github.com/myrjola/gymlog/internal/workout"
)

// generatedWorkout is the structured output of the model.
type generatedWorkout struct {
	Rationale        string              `json:"rationale"`
	Focus            string              `json:"focus"`
	EstimatedMinutes int                 `json:"estimated_minutes"`
	Exercises        []generatedExercise `json:"exercises"`
}

type generatedExercise struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	TimeMode bool   `json:"timeMode"`
	// Values clamps negative and non-finite numbers while decoding.
	Sets  []workout.Values `json:"sets"`
	Notes string           `json:"notes"`
}

// suggestion turns the model output into a fresh session that starts at now. Every set starts uncompleted with
// identical planned and actual values.
func (g generatedWorkout) suggestion(now time.Time) workout.CoachSuggestion {
	session := workout.Session{
		ID:             workout.NewID(),
		StartTime:      now,
		EndTime:        nil,
		CompletedAt:    nil,
		Duration:       0,
		TotalSets:      0,
		TotalExercises: len(g.Exercises),
		Exercises:      make([]workout.Exercise, 0, len(g.Exercises)),
	}
	entries := make([]workout.LibraryEntry, 0, len(g.Exercises))
	for _, ge := range g.Exercises {
		name := strings.TrimSpace(ge.Name)
		e := workout.Exercise{
			ID:       workout.NewID(),
			Name:     name,
			TimeMode: ge.TimeMode,
			Sets:     make([]workout.Set, 0, len(ge.Sets)),
		}
		for _, v := range ge.Sets {
			e.Sets = append(e.Sets, workout.Set{Completed: false, Planned: v, Actual: v})
		}
		session.TotalSets += len(e.Sets)
		session.Exercises = append(session.Exercises, e)
		//nolint:exhaustruct // the service fills in the rest.
		entries = append(entries, workout.LibraryEntry{Name: name, Category: strings.TrimSpace(ge.Category)})
	}

	return workout.CoachSuggestion{
		Session:          session,
		LibraryEntries:   entries,
		Rationale:        strings.TrimSpace(g.Rationale),
		Focus:            strings.TrimSpace(g.Focus),
		EstimatedMinutes: max(g.EstimatedMinutes, 0),
	}
}
