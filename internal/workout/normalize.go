package workout

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/myrjola/gymlog/internal/ptr"
)

// The decoders in this file accept every shape older versions of the app persisted and turn it into the canonical
// shape exactly once, on load. Encoding always writes the canonical shape.

// flexNumber decodes JSON numbers, numeric strings and null. Non-numeric strings decode as zero.
type flexNumber float64

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*n = 0
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("unmarshal numeric string: %w", err)
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			f = 0
		}
		*n = flexNumber(f)
	default:
		var f float64
		if err := json.Unmarshal(b, &f); err != nil {
			return fmt.Errorf("unmarshal number: %w", err)
		}
		*n = flexNumber(f)
	}
	if math.IsInf(float64(*n), 0) || math.IsNaN(float64(*n)) {
		*n = 0
	}
	return nil
}

func (v *Values) UnmarshalJSON(b []byte) error {
	var raw struct {
		Weight flexNumber `json:"weight"`
		Reps   flexNumber `json:"reps"`
		Time   flexNumber `json:"time"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("unmarshal values: %w", err)
	}
	*v = Values{}.
		with(FieldWeight, float64(raw.Weight)).
		with(FieldReps, float64(raw.Reps)).
		with(FieldTime, float64(raw.Time))
	return nil
}

// ResolveCompleted returns flag when present. Sets persisted before the flag existed count as completed when any
// actual value is positive.
func ResolveCompleted(flag *bool, actual Values) bool {
	if flag != nil {
		return *flag
	}
	return !actual.isZero()
}

func (s *Set) UnmarshalJSON(b []byte) error {
	var raw struct {
		Completed *bool   `json:"completed"`
		Planned   *Values `json:"planned"`
		Actual    *Values `json:"actual"`
		// The earliest sets were flat {weight, reps}.
		Weight *flexNumber `json:"weight"`
		Reps   *flexNumber `json:"reps"`
		Time   *flexNumber `json:"time"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("unmarshal set: %w", err)
	}

	var actual Values
	switch {
	case raw.Actual != nil:
		actual = *raw.Actual
	case raw.Weight != nil || raw.Reps != nil || raw.Time != nil:
		actual = Values{}.
			with(FieldWeight, float64(ptr.Deref(raw.Weight, 0))).
			with(FieldReps, float64(ptr.Deref(raw.Reps, 0))).
			with(FieldTime, float64(ptr.Deref(raw.Time, 0)))
	}

	*s = Set{
		Completed: ResolveCompleted(raw.Completed, actual),
		Planned:   ptr.Deref(raw.Planned, actual),
		Actual:    actual,
	}
	return nil
}

// UnmarshalJSON drops presentation fields such as collapsed that older versions stored inside the exercise.
func (e *Exercise) UnmarshalJSON(b []byte) error {
	type plain Exercise
	var raw plain
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("unmarshal exercise: %w", err)
	}
	raw.Name = strings.TrimSpace(raw.Name)
	if raw.Sets == nil {
		raw.Sets = []Set{}
	}
	*e = Exercise(raw)
	return nil
}

func (s *Session) UnmarshalJSON(b []byte) error {
	type plain Session
	var raw plain
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("unmarshal session: %w", err)
	}
	if raw.Exercises == nil {
		raw.Exercises = []Exercise{}
	}

	seen := make(map[ID]bool, len(raw.Exercises))
	for i := range raw.Exercises {
		if id := raw.Exercises[i].ID; id == "" || seen[id] {
			raw.Exercises[i].ID = NewID()
		}
		seen[raw.Exercises[i].ID] = true
	}

	raw.Duration = max(raw.Duration, 0)
	if raw.StartTime.IsZero() && raw.CompletedAt != nil {
		raw.StartTime = *raw.CompletedAt
	}
	*s = Session(raw)
	if s.CompletedAt != nil && s.TotalExercises == 0 && s.TotalSets == 0 && len(s.Exercises) > 0 {
		s.TotalExercises = len(s.Exercises)
		s.TotalSets = s.countSets()
	}
	return nil
}

func (e *LibraryEntry) UnmarshalJSON(b []byte) error {
	type plain LibraryEntry
	var raw plain
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("unmarshal library entry: %w", err)
	}
	raw.Name = strings.TrimSpace(raw.Name)
	raw.Category = strings.TrimSpace(raw.Category)
	raw.UsageCount = max(raw.UsageCount, 0)
	if raw.ID == "" {
		raw.ID = NewID()
	}
	*e = LibraryEntry(raw)
	return nil
}

// UnmarshalJSON keeps the defaults for absent fields and accepts the time budget as text.
func (p *CoachPreferences) UnmarshalJSON(b []byte) error {
	var raw struct {
		Mode          *string     `json:"mode"`
		TimeAvailable *flexNumber `json:"timeAvailable"`
		Injuries      string      `json:"injuries"`
		Notes         string      `json:"notes"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("unmarshal coach preferences: %w", err)
	}
	prefs := DefaultCoachPreferences()
	if mode := strings.TrimSpace(ptr.Deref(raw.Mode, "")); mode != "" {
		prefs.Mode = mode
	}
	if minutes := int(ptr.Deref(raw.TimeAvailable, 0)); minutes > 0 {
		prefs.TimeAvailable = minutes
	}
	prefs.Injuries = strings.TrimSpace(raw.Injuries)
	prefs.Notes = strings.TrimSpace(raw.Notes)
	*p = prefs
	return nil
}
