package workout_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/gymlog/internal/workout"
)

func TestSet_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		json string
		want workout.Set
	}{
		{
			name: "canonical",
			json: `{"completed":false,"planned":{"weight":60,"reps":5,"time":0},"actual":{"weight":62.5,"reps":4,"time":0}}`,
			want: workout.Set{
				Completed: false,
				Planned:   workout.Values{Weight: 60, Reps: 5, Time: 0},
				Actual:    workout.Values{Weight: 62.5, Reps: 4, Time: 0},
			},
		},
		{
			name: "explicit flag wins over positive values",
			json: `{"completed":false,"actual":{"weight":60,"reps":5}}`,
			want: workout.Set{
				Completed: false,
				Planned:   workout.Values{Weight: 60, Reps: 5, Time: 0},
				Actual:    workout.Values{Weight: 60, Reps: 5, Time: 0},
			},
		},
		{
			name: "explicit flag wins over zero values",
			json: `{"completed":true,"actual":{"weight":0,"reps":0}}`,
			want: workout.Set{Completed: true, Planned: workout.Values{}, Actual: workout.Values{}},
		},
		{
			name: "missing flag with positive values",
			json: `{"planned":{"weight":60,"reps":5},"actual":{"weight":60,"reps":5}}`,
			want: workout.Set{
				Completed: true,
				Planned:   workout.Values{Weight: 60, Reps: 5, Time: 0},
				Actual:    workout.Values{Weight: 60, Reps: 5, Time: 0},
			},
		},
		{
			name: "missing flag with zero values",
			json: `{"planned":{"weight":60,"reps":5},"actual":{"weight":0,"reps":0}}`,
			want: workout.Set{
				Completed: false,
				Planned:   workout.Values{Weight: 60, Reps: 5, Time: 0},
				Actual:    workout.Values{},
			},
		},
		{
			name: "flat legacy set",
			json: `{"weight":"40","reps":8}`,
			want: workout.Set{
				Completed: true,
				Planned:   workout.Values{Weight: 40, Reps: 8, Time: 0},
				Actual:    workout.Values{Weight: 40, Reps: 8, Time: 0},
			},
		},
		{
			name: "numeric strings negatives and garbage",
			json: `{"completed":false,"actual":{"weight":"-5","reps":"abc","time":"30"}}`,
			want: workout.Set{
				Completed: false,
				Planned:   workout.Values{Weight: 0, Reps: 0, Time: 30},
				Actual:    workout.Values{Weight: 0, Reps: 0, Time: 30},
			},
		},
		{
			name: "fractional counts truncate",
			json: `{"completed":true,"actual":{"weight":20.5,"reps":7.9,"time":null}}`,
			want: workout.Set{
				Completed: true,
				Planned:   workout.Values{Weight: 20.5, Reps: 7, Time: 0},
				Actual:    workout.Values{Weight: 20.5, Reps: 7, Time: 0},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got workout.Set
			if err := json.Unmarshal([]byte(tt.json), &got); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("set mismatch (-want +got):\n%s", diff)
			}
			if workout.IsCompleted(got) != got.Completed {
				t.Errorf("IsCompleted = %v, want %v", workout.IsCompleted(got), got.Completed)
			}
		})
	}
}

func TestResolveCompleted(t *testing.T) {
	yes, no := true, false
	positive := workout.Values{Weight: 0, Reps: 10, Time: 0}
	tests := []struct {
		name   string
		flag   *bool
		actual workout.Values
		want   bool
	}{
		{name: "flag true", flag: &yes, actual: workout.Values{}, want: true},
		{name: "flag false", flag: &no, actual: positive, want: false},
		{name: "proxy positive", flag: nil, actual: positive, want: true},
		{name: "proxy zero", flag: nil, actual: workout.Values{}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := workout.ResolveCompleted(tt.flag, tt.actual); got != tt.want {
				t.Errorf("ResolveCompleted() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSession_UnmarshalJSON_legacy(t *testing.T) {
	const legacy = `{
		"id": 1700000000000,
		"completedAt": "2024-11-14T22:13:20Z",
		"duration": -20,
		"exercises": [
			{"id": 5, "name": " Squats ", "collapsed": true, "sets": [{"weight": 100, "reps": 5}]},
			{"id": 5, "name": "Lunges"},
			{"name": "Plank", "timeMode": true, "sets": [{"completed": true, "actual": {"time": 60}}]}
		]
	}`
	var got workout.Session
	if err := json.Unmarshal([]byte(legacy), &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if got.ID != "1700000000000" {
		t.Errorf("ID = %q, want 1700000000000", got.ID)
	}
	wantStart := time.Date(2024, 11, 14, 22, 13, 20, 0, time.UTC)
	if !got.StartTime.Equal(wantStart) {
		t.Errorf("StartTime = %v, want %v", got.StartTime, wantStart)
	}
	if got.Duration != 0 {
		t.Errorf("Duration = %d, want 0", got.Duration)
	}
	if got.TotalExercises != 3 || got.TotalSets != 2 {
		t.Errorf("totals = %d exercises, %d sets, want 3, 2", got.TotalExercises, got.TotalSets)
	}

	ids := map[workout.ID]bool{}
	for _, e := range got.Exercises {
		if e.ID == "" || ids[e.ID] {
			t.Errorf("exercise %q has empty or duplicate ID %q", e.Name, e.ID)
		}
		ids[e.ID] = true
		if e.Sets == nil {
			t.Errorf("exercise %q has nil sets", e.Name)
		}
	}
	if got.Exercises[0].ID != "5" {
		t.Errorf("first exercise ID = %q, want 5", got.Exercises[0].ID)
	}
	if got.Exercises[0].Name != "Squats" {
		t.Errorf("first exercise name = %q, want Squats", got.Exercises[0].Name)
	}
}

func TestCoachPreferences_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		json string
		want workout.CoachPreferences
	}{
		{
			name: "empty object keeps defaults",
			json: `{}`,
			want: workout.DefaultCoachPreferences(),
		},
		{
			name: "time available as text",
			json: `{"mode":"strength","timeAvailable":"45","injuries":" left knee "}`,
			want: workout.CoachPreferences{Mode: "strength", TimeAvailable: 45, Injuries: "left knee", Notes: ""},
		},
		{
			name: "invalid time keeps default",
			json: `{"mode":"","timeAvailable":-10}`,
			want: workout.DefaultCoachPreferences(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got workout.CoachPreferences
			if err := json.Unmarshal([]byte(tt.json), &got); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("preferences mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
