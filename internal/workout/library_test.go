package workout_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/gymlog/internal/workout"
)

func names(entries []workout.LibraryEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Name)
	}
	return out
}

func TestLibrary_Suggest(t *testing.T) {
	older := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(24 * time.Hour)
	library := workout.Library{
		{ID: "b", Name: "B", UsageCount: 3, LastUsed: &older},
		{ID: "a", Name: "A", UsageCount: 3, LastUsed: &newer},
		{ID: "c", Name: "C", UsageCount: 1, LastUsed: nil},
		{ID: "d", Name: "D", UsageCount: 1, LastUsed: &older},
	}

	tests := []struct {
		name  string
		query string
		limit int
		want  []string
	}{
		{name: "usage then recency then name", query: "", limit: 0, want: []string{"A", "B", "D", "C"}},
		{name: "limit", query: "", limit: 3, want: []string{"A", "B", "D"}},
		{name: "case insensitive contains", query: " c ", limit: 0, want: []string{"C"}},
		{name: "no match", query: "row", limit: 0, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, names(library.Suggest(tt.query, tt.limit))); diff != "" {
				t.Errorf("Suggest() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLibrary_Add(t *testing.T) {
	now := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)
	library := workout.Library(workout.DefaultLibrary(now))

	if _, added := library.Add("pullups", "Pull", now); added {
		t.Error("Add() accepted a name that normalizes like Pull-ups")
	}
	entry, added := library.Add("  Romanian Deadlift ", "Legs", now)
	if !added {
		t.Fatal("Add() rejected a new exercise")
	}
	if entry.Name != "Romanian Deadlift" || entry.ID == "" || entry.UsageCount != 0 || entry.LastUsed != nil {
		t.Errorf("Add() = %+v", entry)
	}
	if len(library) != 6 {
		t.Errorf("len(library) = %d, want 6", len(library))
	}
}

func TestLibrary_RecordUsage(t *testing.T) {
	now := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)
	library := workout.Library(workout.DefaultLibrary(now))

	if !library.RecordUsage("squats", now) {
		t.Fatal("RecordUsage() did not find Squats")
	}
	later := now.Add(time.Hour)
	library.RecordUsage("Squats", later)
	entry, _ := library.FindByName("Squats")
	if entry.UsageCount != 2 || !entry.LastUsed.Equal(later) {
		t.Errorf("Squats usage = %d, last used %v, want 2, %v", entry.UsageCount, entry.LastUsed, later)
	}
	if library.RecordUsage("Unknown", now) {
		t.Error("RecordUsage() found an unknown exercise")
	}
}

func TestLibrary_Update(t *testing.T) {
	now := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)
	library := workout.Library(workout.DefaultLibrary(now))
	bench, _ := library.FindByName("Bench Press")

	if err := library.Update(bench.ID, "Squats", "Push"); !errors.Is(err, workout.ErrValidation) {
		t.Errorf("renaming onto another exercise error = %v, want ErrValidation", err)
	}
	if err := library.Update(bench.ID, "--", "Push"); !errors.Is(err, workout.ErrValidation) {
		t.Errorf("renaming to punctuation error = %v, want ErrValidation", err)
	}
	if err := library.Update("missing", "Dips", "Push"); !errors.Is(err, workout.ErrNotFound) {
		t.Errorf("updating missing entry error = %v, want ErrNotFound", err)
	}
	if err := library.Update(bench.ID, "bench press", "Other"); err != nil {
		t.Fatalf("changing the case of its own name: %v", err)
	}
	got, _ := library.FindByName("Bench Press")
	if got.Name != "bench press" || got.Category != "Other" || got.ID != bench.ID {
		t.Errorf("updated entry = %+v", got)
	}
}

func TestDedupe(t *testing.T) {
	older := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)
	got := workout.Dedupe([]workout.LibraryEntry{
		{ID: "1", Name: "Pull-ups", Category: "", UsageCount: 2, LastUsed: &older},
		{ID: "2", Name: "pullups", Category: "Pull", UsageCount: 3, LastUsed: &newer},
		{ID: "3", Name: "  ", UsageCount: 1},
		{ID: "4", Name: "Dips", Category: "Push"},
	})
	want := workout.Library{
		{ID: "1", Name: "Pull-ups", Category: "Pull", UsageCount: 5, LastUsed: &newer},
		{ID: "4", Name: "Dips", Category: "Push"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Dedupe() mismatch (-want +got):\n%s", diff)
	}
}

func TestPatchLibrary(t *testing.T) {
	now := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)
	existing := workout.Library(workout.DefaultLibrary(now))
	categories := workout.Categories(workout.DefaultCategories())

	if patched, ok := workout.PatchLibrary(existing, []workout.LibraryEntry{{Name: "squats"}}, categories, now); ok ||
		patched != nil {
		t.Errorf("PatchLibrary() with known exercises = %v, %v, want nil, false", patched, ok)
	}

	patched, ok := workout.PatchLibrary(existing, []workout.LibraryEntry{
		{Name: "Face Pulls", Category: "pull"},
		{Name: "Sled Push", Category: "Conditioning"},
	}, categories, now)
	if !ok {
		t.Fatal("PatchLibrary() reported no change")
	}
	if len(existing) != 5 {
		t.Errorf("existing library was modified, len = %d", len(existing))
	}
	facePulls, _ := patched.FindByName("Face Pulls")
	sledPush, _ := patched.FindByName("Sled Push")
	if facePulls.Category != "Pull" || sledPush.Category != workout.CategoryUncategorized {
		t.Errorf("categories = %q, %q, want Pull, Uncategorized", facePulls.Category, sledPush.Category)
	}
}

func TestNormalizeName(t *testing.T) {
	tests := map[string]string{
		"Pull-ups":      "pullups",
		" Bench  Press": "benchpress",
		"21s (Curls)":   "21scurls",
		"--":            "",
	}
	for in, want := range tests {
		if got := workout.NormalizeName(in); got != want {
			t.Errorf("NormalizeName(%q) = %q, want %q", in, got, want)
		}
	}
}
