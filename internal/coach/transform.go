package coach

import (
	"time"

	"github.com/myrjola/gymlog/internal/workout"
)

// The payload types carry only what the model needs. IDs, totals and presentation state are left out.

type payload struct {
	History     []historyEntry           `json:"history"`
	Exercises   []libraryExercise        `json:"exercises"`
	Categories  []string                 `json:"categories"`
	Preferences workout.CoachPreferences `json:"preferences"`
}

type historyEntry struct {
	Date      time.Time         `json:"date"`
	Duration  int               `json:"duration"`
	Exercises []historyExercise `json:"exercises"`
}

type historyExercise struct {
	Name     string       `json:"name"`
	TimeMode bool         `json:"timeMode"`
	Sets     []historySet `json:"sets"`
}

type historySet struct {
	Completed bool           `json:"completed"`
	Planned   workout.Values `json:"planned"`
	Actual    workout.Values `json:"actual"`
}

type libraryExercise struct {
	Name       string     `json:"name"`
	Category   string     `json:"category"`
	UsageCount int        `json:"usageCount"`
	LastUsed   *time.Time `json:"lastUsed"`
}

// newPayload reduces req to the model input. History keeps its newest first order.
func newPayload(req workout.CoachRequest) payload {
	p := payload{
		History:     make([]historyEntry, 0, len(req.History)),
		Exercises:   make([]libraryExercise, 0, len(req.Library)),
		Categories:  make([]string, 0, len(req.Categories)),
		Preferences: req.Preferences,
	}
	for _, s := range req.History {
		entry := historyEntry{
			Date:      s.StartTime,
			Duration:  s.Duration,
			Exercises: make([]historyExercise, 0, len(s.Exercises)),
		}
		for _, e := range s.Exercises {
			ex := historyExercise{Name: e.Name, TimeMode: e.TimeMode, Sets: make([]historySet, 0, len(e.Sets))}
			for _, set := range e.Sets {
				ex.Sets = append(ex.Sets, historySet{
					Completed: workout.IsCompleted(set),
					Planned:   set.Planned,
					Actual:    set.Actual,
				})
			}
			entry.Exercises = append(entry.Exercises, ex)
		}
		p.History = append(p.History, entry)
	}
	for _, e := range req.Library {
		p.Exercises = append(p.Exercises, libraryExercise{
			Name:       e.Name,
			Category:   e.Category,
			UsageCount: e.UsageCount,
			LastUsed:   e.LastUsed,
		})
	}
	for _, c := range req.Categories {
		p.Categories = append(p.Categories, c.Name)
	}
	return p
}
