package workout_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/gymlog/internal/sqlite"
	"github.com/myrjola/gymlog/internal/testhelpers"
	"github.com/myrjola/gymlog/internal/workout"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestService(t *testing.T, opts ...workout.Option) (*workout.Service, *sqlite.Database, *testClock) {
	t.Helper()
	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))
	db, err := sqlite.NewDatabase(t.Context(), ":memory:", logger)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	t.Cleanup(func() {
		if err = db.Close(); err != nil {
			t.Errorf("Failed to close database: %v", err)
		}
	})
	clock := &testClock{mu: sync.Mutex{}, now: time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)}
	opts = append([]workout.Option{workout.WithClock(clock.Now)}, opts...)
	return workout.NewService(db, logger, opts...), db, clock
}

// startWithExercise starts a session with one exercise holding a single set of weight × reps.
func startWithExercise(t *testing.T, svc *workout.Service, name string, weight float64, reps int) workout.Exercise {
	t.Helper()
	ctx := t.Context()
	if _, err := svc.StartSession(ctx); err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	ex, err := svc.AddExercise(ctx, name)
	if err != nil {
		t.Fatalf("AddExercise: %v", err)
	}
	if err = svc.AddSet(ctx, ex.ID); err != nil {
		t.Fatalf("AddSet: %v", err)
	}
	if err = svc.UpdateSetField(ctx, ex.ID, 0, workout.FieldWeight, weight); err != nil {
		t.Fatalf("UpdateSetField weight: %v", err)
	}
	if err = svc.UpdateSetField(ctx, ex.ID, 0, workout.FieldReps, float64(reps)); err != nil {
		t.Fatalf("UpdateSetField reps: %v", err)
	}
	return ex
}

func currentSession(t *testing.T, svc *workout.Service) workout.ActiveSession {
	t.Helper()
	active, err := svc.Current(t.Context())
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	return active
}

func TestService_CompleteSession(t *testing.T) {
	ctx := t.Context()
	svc, _, clock := newTestService(t)

	ex := startWithExercise(t, svc, "Bench Press", 60, 5)
	if err := svc.ToggleSetCompletion(ctx, ex.ID, 0); err != nil {
		t.Fatalf("ToggleSetCompletion: %v", err)
	}
	clock.Advance(42 * time.Minute)

	entry, err := svc.CompleteSession(ctx)
	if err != nil {
		t.Fatalf("CompleteSession: %v", err)
	}
	history, err := svc.History(ctx)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("len(history) = %d, want 1", len(history))
	}
	if diff := cmp.Diff(entry, history[0]); diff != "" {
		t.Errorf("stored entry mismatch (-returned +stored):\n%s", diff)
	}
	if entry.TotalSets != 1 || entry.TotalExercises != 1 || entry.Duration != 2520 {
		t.Errorf("entry totals = %d sets, %d exercises, %ds, want 1, 1, 2520s",
			entry.TotalSets, entry.TotalExercises, entry.Duration)
	}
	stats := workout.WorkoutStats(history[0])
	if stats.CompletionRate != 100 || stats.TotalVolume != 300 {
		t.Errorf("stats = %d%% completion, %v volume, want 100%%, 300", stats.CompletionRate, stats.TotalVolume)
	}
	if _, err = svc.Current(ctx); !errors.Is(err, workout.ErrNoActiveSession) {
		t.Errorf("Current after completion error = %v, want ErrNoActiveSession", err)
	}

	overview, err := svc.QuickStats(ctx)
	if err != nil {
		t.Fatalf("QuickStats: %v", err)
	}
	if diff := cmp.Diff(workout.Overview{Workouts: 1, TotalSets: 1, DaysSinceLast: 0}, overview); diff != "" {
		t.Errorf("QuickStats mismatch (-want +got):\n%s", diff)
	}
	heatmap, err := svc.Heatmap(ctx, 7, time.UTC)
	if err != nil {
		t.Fatalf("Heatmap: %v", err)
	}
	if today := heatmap.Days[6]; today.Volume != 300 || today.Categories["Push"] != 300 {
		t.Errorf("today = %+v, want 300 Push volume", today)
	}
}

func TestService_CompleteSession_empty(t *testing.T) {
	ctx := t.Context()
	svc, _, _ := newTestService(t)

	if _, err := svc.StartSession(ctx); err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	_, err := svc.CompleteSession(ctx)
	if !errors.Is(err, workout.ErrEmptySession) || !errors.Is(err, workout.ErrValidation) {
		t.Errorf("CompleteSession error = %v, want ErrEmptySession", err)
	}
	history, err := svc.History(ctx)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("len(history) = %d, want 0", len(history))
	}
	if _, err = svc.Current(ctx); err != nil {
		t.Errorf("session was not kept: %v", err)
	}
}

func TestService_CompleteSession_evictsOldest(t *testing.T) {
	ctx := t.Context()
	svc, _, clock := newTestService(t)

	doc := workout.ExportDocument{Version: "2"}
	for i := range 100 {
		completed := clock.Now().Add(-time.Duration(i+1) * time.Hour)
		doc.WorkoutHistory = append(doc.WorkoutHistory,
			completedSession(fmt.Sprintf("h%03d", i), completed.Add(-time.Hour),
				exercise("Squats", weighted(true, 100, 5))))
	}
	importDocument(t, svc, doc)

	startWithExercise(t, svc, "Squats", 100, 5)
	entry, err := svc.CompleteSession(ctx)
	if err != nil {
		t.Fatalf("CompleteSession: %v", err)
	}

	history, err := svc.History(ctx)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 100 {
		t.Fatalf("len(history) = %d, want 100", len(history))
	}
	if history[0].ID != entry.ID || history[1].ID != "h000" || history[99].ID != "h098" {
		t.Errorf("history = [%s, %s, ..., %s], want [%s, h000, ..., h098]",
			history[0].ID, history[1].ID, history[99].ID, entry.ID)
	}
}

func importDocument(t *testing.T, svc *workout.Service, doc workout.ExportDocument) workout.ImportResult {
	t.Helper()
	b, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	result, err := svc.Import(t.Context(), bytes.NewReader(b))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	return result
}

func TestService_AddExercise_recordsLibraryUsage(t *testing.T) {
	ctx := t.Context()
	svc, _, clock := newTestService(t)

	for range 2 {
		startWithExercise(t, svc, "Squats", 100, 5)
		if _, err := svc.CompleteSession(ctx); err != nil {
			t.Fatalf("CompleteSession: %v", err)
		}
		clock.Advance(48 * time.Hour)
	}
	secondUse := clock.Now().Add(-48 * time.Hour)

	library, err := svc.Library(ctx)
	if err != nil {
		t.Fatalf("Library: %v", err)
	}
	squats, ok := library.FindByName("Squats")
	if !ok {
		t.Fatal("Squats missing from library")
	}
	if squats.UsageCount != 2 || squats.LastUsed == nil || !squats.LastUsed.Equal(secondUse) {
		t.Errorf("Squats usage = %d, last used %v, want 2, %v", squats.UsageCount, squats.LastUsed, secondUse)
	}

	suggestions, err := svc.SuggestExercises(ctx, "", 2)
	if err != nil {
		t.Fatalf("SuggestExercises: %v", err)
	}
	if diff := cmp.Diff([]string{"Squats", "Bench Press"}, names(suggestions)); diff != "" {
		t.Errorf("SuggestExercises mismatch (-want +got):\n%s", diff)
	}

	if _, err = svc.StartSession(ctx); err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if _, err = svc.AddExercise(ctx, "  "); !errors.Is(err, workout.ErrValidation) {
		t.Errorf("AddExercise with blank name error = %v, want ErrValidation", err)
	}
}

func TestService_StartSession_inProgress(t *testing.T) {
	ctx := t.Context()
	svc, _, _ := newTestService(t)

	first, err := svc.StartSession(ctx)
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if _, err = svc.StartSession(ctx); !errors.Is(err, workout.ErrInvalidState) {
		t.Errorf("second StartSession error = %v, want ErrInvalidState", err)
	}
	if got := currentSession(t, svc).Session.ID; got != first.ID {
		t.Errorf("current session = %s, want %s", got, first.ID)
	}

	if err = svc.DiscardSession(ctx); err != nil {
		t.Fatalf("DiscardSession: %v", err)
	}
	if err = svc.DiscardSession(ctx); !errors.Is(err, workout.ErrNoActiveSession) {
		t.Errorf("second DiscardSession error = %v, want ErrNoActiveSession", err)
	}
	if err = svc.AddSet(ctx, "anything"); !errors.Is(err, workout.ErrNoActiveSession) {
		t.Errorf("AddSet without session error = %v, want ErrNoActiveSession", err)
	}
}

func TestService_staleReferences(t *testing.T) {
	ctx := t.Context()
	svc, _, _ := newTestService(t)
	ex := startWithExercise(t, svc, "Bench Press", 60, 5)
	before := currentSession(t, svc)

	ops := map[string]func() error{
		"delete set":      func() error { return svc.DeleteSet(ctx, ex.ID, 3) },
		"update set":      func() error { return svc.UpdateSetField(ctx, ex.ID, -1, workout.FieldReps, 3) },
		"toggle set":      func() error { return svc.ToggleSetCompletion(ctx, "missing", 0) },
		"delete exercise": func() error { return svc.DeleteExercise(ctx, "missing") },
		"move exercise":   func() error { return svc.MoveExercise(ctx, "missing", workout.Up) },
		"select set":      func() error { return svc.SelectSet(ctx, ex.ID, 9) },
		"toggle collapse": func() error { return svc.ToggleExerciseCollapse(ctx, "missing") },
	}
	for name, op := range ops {
		if err := op(); err != nil {
			t.Errorf("%s with stale reference: %v", name, err)
		}
	}
	if diff := cmp.Diff(before, currentSession(t, svc)); diff != "" {
		t.Errorf("stale references changed the session (-want +got):\n%s", diff)
	}
}

func TestService_completedSetIsLocked(t *testing.T) {
	ctx := t.Context()
	svc, _, _ := newTestService(t)
	ex := startWithExercise(t, svc, "Bench Press", 60, 5)

	if err := svc.ToggleSetCompletion(ctx, ex.ID, 0); err != nil {
		t.Fatalf("ToggleSetCompletion: %v", err)
	}
	if err := svc.UpdateSetField(ctx, ex.ID, 0, workout.FieldWeight, 100); err != nil {
		t.Fatalf("UpdateSetField: %v", err)
	}
	if err := svc.UpdateSetValue(ctx, ex.ID, 0, workout.ColumnPlanned, workout.FieldReps, 1); err != nil {
		t.Fatalf("UpdateSetValue: %v", err)
	}
	want := workout.Set{
		Completed: true,
		Planned:   workout.Values{Weight: 60, Reps: 5, Time: 0},
		Actual:    workout.Values{Weight: 60, Reps: 5, Time: 0},
	}
	if diff := cmp.Diff(want, currentSession(t, svc).Session.Exercises[0].Sets[0]); diff != "" {
		t.Errorf("completed set changed (-want +got):\n%s", diff)
	}
}

func TestService_viewState(t *testing.T) {
	ctx := t.Context()
	svc, _, _ := newTestService(t)
	if _, err := svc.StartSession(ctx); err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	first, err := svc.AddExercise(ctx, "Bench Press")
	if err != nil {
		t.Fatalf("AddExercise: %v", err)
	}
	second, err := svc.AddExercise(ctx, "Squats")
	if err != nil {
		t.Fatalf("AddExercise: %v", err)
	}

	view := currentSession(t, svc).View
	if !view.Exercises[first.ID].Collapsed || view.Exercises[second.ID].Collapsed {
		t.Errorf("after adding: %+v, want only the newest expanded", view.Exercises)
	}

	if err = svc.ToggleExerciseCollapse(ctx, first.ID); err != nil {
		t.Fatalf("ToggleExerciseCollapse: %v", err)
	}
	if err = svc.ToggleShowPrevious(ctx, first.ID); err != nil {
		t.Fatalf("ToggleShowPrevious: %v", err)
	}
	if err = svc.ToggleExerciseDetails(ctx, second.ID); err != nil {
		t.Fatalf("ToggleExerciseDetails: %v", err)
	}
	if err = svc.ToggleTimeMode(ctx, second.ID); err != nil {
		t.Fatalf("ToggleTimeMode: %v", err)
	}
	if err = svc.MoveExercise(ctx, second.ID, workout.Up); err != nil {
		t.Fatalf("MoveExercise: %v", err)
	}

	active := currentSession(t, svc)
	want := map[workout.ID]workout.ExerciseView{
		first.ID:  {Collapsed: false, DetailsHidden: false, ShowPrevious: true, SelectedSet: nil},
		second.ID: {Collapsed: true, DetailsHidden: true, ShowPrevious: false, SelectedSet: nil},
	}
	if diff := cmp.Diff(want, active.View.Exercises); diff != "" {
		t.Errorf("view mismatch (-want +got):\n%s", diff)
	}
	if active.Session.Exercises[0].ID != second.ID || !active.Session.Exercises[0].TimeMode {
		t.Errorf("exercises = %+v, want timed Squats first", active.Session.Exercises)
	}

	if err = svc.ToggleAllExercises(ctx); err != nil {
		t.Fatalf("ToggleAllExercises: %v", err)
	}
	if err = svc.ToggleAllExercises(ctx); err != nil {
		t.Fatalf("ToggleAllExercises: %v", err)
	}
	view = currentSession(t, svc).View
	if view.AccordionMode || view.Exercises[first.ID].Collapsed || view.Exercises[second.ID].Collapsed {
		t.Errorf("after expanding all: %+v", view)
	}
}

func TestService_StartFromTemplate(t *testing.T) {
	ctx := t.Context()
	svc, _, _ := newTestService(t)

	ex := startWithExercise(t, svc, "Bench Press", 60, 5)
	if err := svc.ToggleSetCompletion(ctx, ex.ID, 0); err != nil {
		t.Fatalf("ToggleSetCompletion: %v", err)
	}
	entry, err := svc.CompleteSession(ctx)
	if err != nil {
		t.Fatalf("CompleteSession: %v", err)
	}

	if _, err = svc.StartFromTemplate(ctx, "missing", false); !errors.Is(err, workout.ErrNotFound) {
		t.Errorf("StartFromTemplate(missing) error = %v, want ErrNotFound", err)
	}
	session, err := svc.StartFromTemplate(ctx, entry.ID, false)
	if err != nil {
		t.Fatalf("StartFromTemplate: %v", err)
	}
	if session.ID == entry.ID || session.Exercises[0].ID == ex.ID {
		t.Error("template session reuses identifiers of the history entry")
	}
	want := []workout.Set{{
		Completed: false,
		Planned:   workout.Values{Weight: 60, Reps: 5, Time: 0},
		Actual:    workout.Values{Weight: 60, Reps: 5, Time: 0},
	}}
	if diff := cmp.Diff(want, currentSession(t, svc).Session.Exercises[0].Sets); diff != "" {
		t.Errorf("template sets mismatch (-want +got):\n%s", diff)
	}

	if _, err = svc.StartFromTemplate(ctx, entry.ID, false); !errors.Is(err, workout.ErrInvalidState) {
		t.Errorf("StartFromTemplate over a session error = %v, want ErrInvalidState", err)
	}
	replaced, err := svc.StartFromTemplate(ctx, entry.ID, true)
	if err != nil {
		t.Fatalf("StartFromTemplate with replace: %v", err)
	}
	if replaced.ID == session.ID {
		t.Error("replace kept the previous session")
	}
}

func TestService_historyEditing(t *testing.T) {
	ctx := t.Context()
	svc, _, _ := newTestService(t)

	ex := startWithExercise(t, svc, "Bench Press", 60, 5)
	if err := svc.AddSet(ctx, ex.ID); err != nil {
		t.Fatalf("AddSet: %v", err)
	}
	entry, err := svc.CompleteSession(ctx)
	if err != nil {
		t.Fatalf("CompleteSession: %v", err)
	}

	steps := []struct {
		name string
		op   func() error
	}{
		{"update set", func() error {
			return svc.UpdateHistorySet(ctx, entry.ID, ex.ID, 0, workout.ColumnActual, workout.FieldReps, 8)
		}},
		{"toggle set", func() error { return svc.ToggleHistorySetCompletion(ctx, entry.ID, ex.ID, 0) }},
		{"delete set", func() error { return svc.DeleteHistorySet(ctx, entry.ID, ex.ID, 1) }},
		{"stale entry", func() error { return svc.DeleteHistorySet(ctx, "missing", ex.ID, 0) }},
		{"stale set", func() error { return svc.ToggleHistorySetCompletion(ctx, entry.ID, ex.ID, 5) }},
	}
	for _, step := range steps {
		if err = step.op(); err != nil {
			t.Fatalf("%s: %v", step.name, err)
		}
	}

	got, err := svc.HistoryEntry(ctx, entry.ID)
	if err != nil {
		t.Fatalf("HistoryEntry: %v", err)
	}
	want := []workout.Set{{
		Completed: true,
		Planned:   workout.Values{Weight: 60, Reps: 5, Time: 0},
		Actual:    workout.Values{Weight: 60, Reps: 8, Time: 0},
	}}
	if diff := cmp.Diff(want, got.Exercises[0].Sets); diff != "" {
		t.Errorf("edited sets mismatch (-want +got):\n%s", diff)
	}
	if got.TotalSets != 1 || got.TotalExercises != 1 {
		t.Errorf("totals = %d sets, %d exercises, want 1, 1", got.TotalSets, got.TotalExercises)
	}

	exerciseHistory, err := svc.ExerciseHistory(ctx, "Bench Press")
	if err != nil {
		t.Fatalf("ExerciseHistory: %v", err)
	}
	if len(exerciseHistory) != 1 || exerciseHistory[0].Sets[0].Reps != 8 {
		t.Errorf("ExerciseHistory = %+v, want one entry with 8 reps", exerciseHistory)
	}

	if err = svc.DeleteHistoryExercise(ctx, entry.ID, ex.ID); err != nil {
		t.Fatalf("DeleteHistoryExercise: %v", err)
	}
	if got, _ = svc.HistoryEntry(ctx, entry.ID); got.TotalExercises != 0 || got.TotalSets != 0 {
		t.Errorf("totals after deleting exercise = %d sets, %d exercises, want 0, 0",
			got.TotalSets, got.TotalExercises)
	}

	if err = svc.DeleteHistoryEntry(ctx, entry.ID); err != nil {
		t.Fatalf("DeleteHistoryEntry: %v", err)
	}
	if _, err = svc.HistoryEntry(ctx, entry.ID); !errors.Is(err, workout.ErrNotFound) {
		t.Errorf("HistoryEntry after delete error = %v, want ErrNotFound", err)
	}
	if err = svc.DeleteHistoryEntry(ctx, entry.ID); err != nil {
		t.Errorf("deleting a missing entry: %v", err)
	}
}

func TestService_ClearHistory(t *testing.T) {
	ctx := t.Context()
	svc, _, _ := newTestService(t)
	startWithExercise(t, svc, "Bench Press", 60, 5)
	if _, err := svc.CompleteSession(ctx); err != nil {
		t.Fatalf("CompleteSession: %v", err)
	}

	if err := svc.ClearHistory(ctx); err != nil {
		t.Fatalf("ClearHistory: %v", err)
	}
	history, err := svc.History(ctx)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("len(history) = %d, want 0", len(history))
	}
}

func TestService_swapExercise(t *testing.T) {
	ctx := t.Context()
	svc, _, _ := newTestService(t)
	bench := startWithExercise(t, svc, "Bench Press", 60, 5)
	burpees, err := svc.AddExercise(ctx, "Burpees")
	if err != nil {
		t.Fatalf("AddExercise: %v", err)
	}

	tests := []struct {
		exercise workout.ID
		want     []string
	}{
		{exercise: bench.ID, want: []string{"Overhead Press"}},
		{exercise: burpees.ID, want: []string{"Bench Press", "Deadlift", "Overhead Press", "Pull-ups", "Squats"}},
	}
	for _, tt := range tests {
		candidates, err := svc.SwapCandidates(ctx, tt.exercise)
		if err != nil {
			t.Fatalf("SwapCandidates: %v", err)
		}
		if diff := cmp.Diff(tt.want, names(candidates)); diff != "" {
			t.Errorf("SwapCandidates(%s) mismatch (-want +got):\n%s", tt.exercise, diff)
		}
	}
	if _, err = svc.SwapCandidates(ctx, "missing"); !errors.Is(err, workout.ErrNotFound) {
		t.Errorf("SwapCandidates(missing) error = %v, want ErrNotFound", err)
	}

	if err = svc.SwapExercise(ctx, bench.ID, "Overhead Press"); err != nil {
		t.Fatalf("SwapExercise: %v", err)
	}
	active := currentSession(t, svc)
	if got := active.Session.Exercises[0]; got.Name != "Overhead Press" || len(got.Sets) != 1 {
		t.Errorf("swapped exercise = %+v, want Overhead Press keeping its set", got)
	}
}

func TestService_libraryAndCategories(t *testing.T) {
	ctx := t.Context()
	svc, _, _ := newTestService(t)

	mobility, err := svc.AddCategory(ctx, "Mobility", "")
	if err != nil {
		t.Fatalf("AddCategory: %v", err)
	}
	hips, err := svc.AddLibraryExercise(ctx, "Hip Circles", "mobility")
	if err != nil {
		t.Fatalf("AddLibraryExercise: %v", err)
	}
	if hips.Category != "Mobility" {
		t.Errorf("category = %q, want Mobility", hips.Category)
	}

	invalid := map[string]error{}
	_, invalid["duplicate exercise"] = svc.AddLibraryExercise(ctx, "pull ups", "")
	_, invalid["unknown category"] = svc.AddLibraryExercise(ctx, "Dips", "Arms")
	invalid["protected category"] = svc.DeleteCategory(ctx, 7)
	invalid["rename onto existing"] = svc.UpdateLibraryExercise(ctx, hips.ID, "Squats", "")
	for name, err := range invalid {
		if !errors.Is(err, workout.ErrValidation) {
			t.Errorf("%s error = %v, want ErrValidation", name, err)
		}
	}
	if err = svc.DeleteLibraryExercise(ctx, "missing"); !errors.Is(err, workout.ErrNotFound) {
		t.Errorf("DeleteLibraryExercise(missing) error = %v, want ErrNotFound", err)
	}

	if err = svc.UpdateCategory(ctx, 3, "Lower Body", ""); err != nil {
		t.Fatalf("UpdateCategory: %v", err)
	}
	if err = svc.DeleteCategory(ctx, 1); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}
	if err = svc.DeleteCategory(ctx, mobility.ID); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}

	library, err := svc.Library(ctx)
	if err != nil {
		t.Fatalf("Library: %v", err)
	}
	wantCategories := map[string]string{
		"Bench Press":    workout.CategoryUncategorized,
		"Overhead Press": workout.CategoryUncategorized,
		"Squats":         "Lower Body",
		"Deadlift":       "Pull",
		"Pull-ups":       "Pull",
		"Hip Circles":    workout.CategoryUncategorized,
	}
	gotCategories := map[string]string{}
	for _, e := range library {
		gotCategories[e.Name] = e.Category
	}
	if diff := cmp.Diff(wantCategories, gotCategories); diff != "" {
		t.Errorf("library categories mismatch (-want +got):\n%s", diff)
	}

	if err = svc.DeleteLibraryExercise(ctx, hips.ID); err != nil {
		t.Fatalf("DeleteLibraryExercise: %v", err)
	}
	categories, err := svc.Categories(ctx)
	if err != nil {
		t.Fatalf("Categories: %v", err)
	}
	if len(categories) != 6 {
		t.Errorf("len(categories) = %d, want 6", len(categories))
	}
}

func TestService_Preferences(t *testing.T) {
	ctx := t.Context()
	svc, _, _ := newTestService(t)

	prefs, err := svc.Preferences(ctx)
	if err != nil {
		t.Fatalf("Preferences: %v", err)
	}
	if diff := cmp.Diff(workout.DefaultCoachPreferences(), prefs); diff != "" {
		t.Errorf("default preferences mismatch (-want +got):\n%s", diff)
	}

	if err = svc.SavePreferences(ctx, workout.CoachPreferences{Mode: " ", TimeAvailable: 30}); !errors.Is(err,
		workout.ErrValidation) {
		t.Errorf("SavePreferences without mode error = %v, want ErrValidation", err)
	}
	want := workout.CoachPreferences{Mode: "strength", TimeAvailable: 45, Injuries: "left knee", Notes: ""}
	if err = svc.SavePreferences(ctx, want); err != nil {
		t.Fatalf("SavePreferences: %v", err)
	}
	if prefs, err = svc.Preferences(ctx); err != nil {
		t.Fatalf("Preferences: %v", err)
	}
	if diff := cmp.Diff(want, prefs); diff != "" {
		t.Errorf("saved preferences mismatch (-want +got):\n%s", diff)
	}
}

func TestService_corruptRecords(t *testing.T) {
	ctx := t.Context()
	svc, db, _ := newTestService(t)

	for _, key := range []string{"workoutHistory", "currentWorkout"} {
		if _, err := db.ReadWrite.ExecContext(ctx,
			`INSERT INTO records (key, value) VALUES (?, ?)`, key, `{"broken`); err != nil {
			t.Fatalf("insert corrupt %s: %v", key, err)
		}
	}

	history, err := svc.History(ctx)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("len(history) = %d, want 0", len(history))
	}
	if _, err = svc.Current(ctx); !errors.Is(err, workout.ErrNoActiveSession) {
		t.Errorf("Current error = %v, want ErrNoActiveSession", err)
	}

	// Reads inside a transaction move the damaged value aside.
	if err = svc.DeleteHistoryEntry(ctx, "missing"); err != nil {
		t.Fatalf("DeleteHistoryEntry: %v", err)
	}
	if diff := cmp.Diff([]string{"currentWorkout", "workoutHistory.corrupt"}, recordKeys(ctx, t, db)); diff != "" {
		t.Errorf("record keys mismatch (-want +got):\n%s", diff)
	}
}

func recordKeys(ctx context.Context, t *testing.T, db *sqlite.Database) []string {
	t.Helper()
	rows, err := db.ReadOnly.QueryContext(ctx, `SELECT key FROM records ORDER BY key`)
	if err != nil {
		t.Fatalf("query records: %v", err)
	}
	defer rows.Close()
	var keys []string
	for rows.Next() {
		var key string
		if err = rows.Scan(&key); err != nil {
			t.Fatalf("scan record key: %v", err)
		}
		keys = append(keys, key)
	}
	if err = rows.Err(); err != nil {
		t.Fatalf("iterate records: %v", err)
	}
	return keys
}
