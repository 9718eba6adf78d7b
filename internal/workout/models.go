package workout

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Values holds the measurable part of a set. Every field is non-negative.
type Values struct {
	Weight float64 `json:"weight"` // kilograms
	Reps   int     `json:"reps"`
	Time   int     `json:"time"` // seconds
}

// Field selects one of the Values fields.
type Field string

const (
	FieldWeight Field = "weight"
	FieldReps   Field = "reps"
	FieldTime   Field = "time"
)

// ParseField parses the textual form of a Field.
func ParseField(s string) (Field, error) {
	switch f := Field(strings.ToLower(strings.TrimSpace(s))); f {
	case FieldWeight, FieldReps, FieldTime:
		return f, nil
	default:
		return "", fmt.Errorf("%w: unknown field %q", ErrValidation, s)
	}
}

// with returns a copy of v with field set to value clamped to zero. Counts are truncated to whole numbers.
func (v Values) with(field Field, value float64) Values {
	if math.IsNaN(value) || value < 0 {
		value = 0
	}
	switch field {
	case FieldWeight:
		v.Weight = value
	case FieldReps:
		v.Reps = int(value)
	case FieldTime:
		v.Time = int(value)
	}
	return v
}

func (v Values) isZero() bool {
	return v.Weight <= 0 && v.Reps <= 0 && v.Time <= 0
}

// Column selects the planned or the actual values of a set.
type Column string

const (
	ColumnPlanned Column = "planned"
	ColumnActual  Column = "actual"
)

// ParseColumn parses the textual form of a Column.
func ParseColumn(s string) (Column, error) {
	switch c := Column(strings.ToLower(strings.TrimSpace(s))); c {
	case ColumnPlanned, ColumnActual:
		return c, nil
	default:
		return "", fmt.Errorf("%w: unknown column %q", ErrValidation, s)
	}
}

// Direction moves an exercise within the session.
type Direction int

const (
	Up Direction = iota
	Down
)

// Set is one block of repetitions. Completed is the only source of truth for completion once a set has been
// normalized.
type Set struct {
	Completed bool   `json:"completed"`
	Planned   Values `json:"planned"`
	Actual    Values `json:"actual"`
}

// Exercise is an exercise performed within a session. Name refers to the library by name, but need not exist there.
type Exercise struct {
	ID       ID     `json:"id"`
	Name     string `json:"name"`
	TimeMode bool   `json:"timeMode"`
	Sets     []Set  `json:"sets"`
}

// Session is either the in-progress workout or a completed history entry. EndTime and CompletedAt are nil until the
// session is completed.
type Session struct {
	ID             ID         `json:"id"`
	StartTime      time.Time  `json:"startTime"`
	EndTime        *time.Time `json:"endTime"`
	CompletedAt    *time.Time `json:"completedAt"`
	Duration       int        `json:"duration"` // seconds
	TotalSets      int        `json:"totalSets"`
	TotalExercises int        `json:"totalExercises"`
	Exercises      []Exercise `json:"exercises"`
}

func (s *Session) exerciseIndex(id ID) int {
	for i, e := range s.Exercises {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (s *Session) countSets() int {
	n := 0
	for _, e := range s.Exercises {
		n += len(e.Sets)
	}
	return n
}

// ExerciseView is the presentation state of one exercise in the active session.
type ExerciseView struct {
	Collapsed     bool `json:"collapsed"`
	DetailsHidden bool `json:"detailsHidden"`
	ShowPrevious  bool `json:"showPrevious"`
	SelectedSet   *int `json:"selectedSet"`
}

// SessionView is presentation state kept apart from the session so that it never leaks into history or exports.
// When AccordionMode is set at most one exercise is expanded.
type SessionView struct {
	SessionID     ID                  `json:"sessionId"`
	AccordionMode bool                `json:"accordionMode"`
	Exercises     map[ID]ExerciseView `json:"exercises"`
}

// LibraryEntry is a named exercise known to the user. Category is a category name, empty when unassigned.
type LibraryEntry struct {
	ID         ID         `json:"id"`
	Name       string     `json:"name"`
	Category   string     `json:"category"`
	CreatedAt  time.Time  `json:"createdAt"`
	LastUsed   *time.Time `json:"lastUsed"`
	UsageCount int        `json:"usageCount"`
}

// Category tags exercises for volume breakdowns. Protected categories cannot be deleted.
type Category struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	Protected bool   `json:"protected"`
}

// CoachPreferences steer workout suggestions.
type CoachPreferences struct {
	Mode          string `json:"mode"`
	TimeAvailable int    `json:"timeAvailable"` // minutes
	Injuries      string `json:"injuries"`
	Notes         string `json:"notes"`
}

const (
	DefaultCoachMode         = "progressive_overload"
	defaultTimeAvailable     = 60
	maxHistory               = 100
	CategoryOther            = "Other"
	CategoryUncategorized    = "Uncategorized"
	uncategorizedFallbackHex = "#374151"
	exportVersion            = "2"
	legacyExportVersion      = "1.0"
	corruptRecordSuffix      = ".corrupt"
)

// DefaultCoachPreferences returns the preferences used until the user saves their own.
func DefaultCoachPreferences() CoachPreferences {
	return CoachPreferences{
		Mode:          DefaultCoachMode,
		TimeAvailable: defaultTimeAvailable,
		Injuries:      "",
		Notes:         "",
	}
}

// ColorPresets are offered for new categories. The first one is the default.
//
//nolint:gochecknoglobals // read-only palette.
var ColorPresets = []string{
	"#22c55e", "#16a34a", "#15803d", "#166534", "#14532d",
	"#3b82f6", "#2563eb", "#1d4ed8", "#06b6d4", "#0891b2",
	"#f59e0b", "#d97706", "#b45309", "#eab308", "#ca8a04",
	"#ef4444", "#dc2626", "#b91c1c", "#ec4899", "#db2777",
	"#a855f7", "#8b5cf6", "#7c3aed", "#6366f1", "#4f46e5",
	"#f97316", "#14b8a6", "#0d9488", "#6b7280", "#374151",
}

// DefaultCategories returns the seed category configuration.
func DefaultCategories() []Category {
	return []Category{
		{ID: 1, Name: "Push", Color: "#22c55e", Protected: false},
		{ID: 2, Name: "Pull", Color: "#3b82f6", Protected: false},
		{ID: 3, Name: "Legs", Color: "#f59e0b", Protected: false},
		{ID: 4, Name: "Core", Color: "#a855f7", Protected: false},
		{ID: 5, Name: "Cardio", Color: "#ef4444", Protected: false},
		{ID: 6, Name: CategoryOther, Color: "#6b7280", Protected: true},
		{ID: 7, Name: CategoryUncategorized, Color: uncategorizedFallbackHex, Protected: true},
	}
}

// DefaultLibrary returns the seed exercise library stamped with createdAt. Seed IDs are derived from the names so
// that the seed is stable before it is first persisted.
func DefaultLibrary(createdAt time.Time) []LibraryEntry {
	seeds := []struct{ name, category string }{
		{"Bench Press", "Push"},
		{"Squats", "Legs"},
		{"Deadlift", "Pull"},
		{"Overhead Press", "Push"},
		{"Pull-ups", "Pull"},
	}
	library := make([]LibraryEntry, 0, len(seeds))
	for _, s := range seeds {
		library = append(library, LibraryEntry{
			ID:         seedID(s.name),
			Name:       s.name,
			Category:   s.category,
			CreatedAt:  createdAt,
			LastUsed:   nil,
			UsageCount: 0,
		})
	}
	return library
}
