package workout_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/gymlog/internal/workout"
)

type fakeCoach struct {
	suggestion workout.CoachSuggestion
	err        error
	calls      int
	req        workout.CoachRequest
	// during runs while the suggestion is being generated.
	during func(ctx context.Context)
}

func (c *fakeCoach) Suggest(ctx context.Context, req workout.CoachRequest) (workout.CoachSuggestion, error) {
	c.calls++
	c.req = req
	if c.during != nil {
		c.during(ctx)
	}
	return c.suggestion, c.err
}

func suggestedSession() workout.Session {
	return workout.Session{
		ID:        "suggested",
		Exercises: []workout.Exercise{
			exercise("Squats", weighted(false, 100, 5), weighted(false, 100, 5)),
			exercise("Face Pulls", weighted(false, 20, 15)),
		},
	}
}

func TestService_SuggestWorkout(t *testing.T) {
	ctx := t.Context()
	coach := &fakeCoach{}
	svc, _, clock := newTestService(t, workout.WithCoach(coach))

	session := suggestedSession()
	session.StartTime = clock.Now()
	coach.suggestion = workout.CoachSuggestion{
		Session: session,
		LibraryEntries: []workout.LibraryEntry{
			{Name: "Squats", Category: "Legs"},
			{Name: "Face Pulls", Category: "Pull"},
		},
		Rationale:        "Legs are rested.",
		Focus:            "Lower body",
		EstimatedMinutes: 45,
	}

	got, err := svc.SuggestWorkout(ctx, false)
	if err != nil {
		t.Fatalf("SuggestWorkout: %v", err)
	}
	if got.Focus != "Lower body" || coach.calls != 1 {
		t.Errorf("SuggestWorkout() = %+v after %d calls", got, coach.calls)
	}
	if diff := cmp.Diff(workout.DefaultCoachPreferences(), coach.req.Preferences); diff != "" {
		t.Errorf("request preferences mismatch (-want +got):\n%s", diff)
	}
	if len(coach.req.Categories) != len(workout.DefaultCategories()) || len(coach.req.Library) != 5 {
		t.Errorf("request = %d categories, %d exercises", len(coach.req.Categories), len(coach.req.Library))
	}

	active := currentSession(t, svc)
	if diff := cmp.Diff(session, active.Session); diff != "" {
		t.Errorf("started session mismatch (-want +got):\n%s", diff)
	}
	wantView := map[workout.ID]workout.ExerciseView{
		"ex-Squats":     {Collapsed: false, DetailsHidden: false, ShowPrevious: true, SelectedSet: nil},
		"ex-Face Pulls": {Collapsed: true, DetailsHidden: false, ShowPrevious: true, SelectedSet: nil},
	}
	if diff := cmp.Diff(wantView, active.View.Exercises); diff != "" {
		t.Errorf("view mismatch (-want +got):\n%s", diff)
	}
	library, err := svc.Library(ctx)
	if err != nil {
		t.Fatalf("Library: %v", err)
	}
	if entry, ok := library.FindByName("Face Pulls"); !ok || entry.Category != "Pull" {
		t.Errorf("Face Pulls = %+v, %v, want a Pull library entry", entry, ok)
	}

	if _, err = svc.SuggestWorkout(ctx, false); !errors.Is(err, workout.ErrInvalidState) {
		t.Errorf("SuggestWorkout over a session error = %v, want ErrInvalidState", err)
	}
	if coach.calls != 1 {
		t.Errorf("coach called %d times, want 1", coach.calls)
	}
	if _, err = svc.SuggestWorkout(ctx, true); err != nil {
		t.Errorf("SuggestWorkout with replace: %v", err)
	}
}

func TestService_SuggestWorkout_failuresLeaveStateUntouched(t *testing.T) {
	tests := []struct {
		name          string
		coach         *fakeCoach
		wantRetryable bool
	}{
		{
			name:          "not configured",
			coach:         nil,
			wantRetryable: false,
		},
		{
			name: "service failure",
			coach: &fakeCoach{err: &workout.ExternalServiceError{
				Op:          "suggest workout",
				UserMessage: "The coach is unavailable.",
				Retryable:   true,
				Err:         errors.New("503 service unavailable"),
			}},
			wantRetryable: true,
		},
		{
			name: "incomplete suggestion",
			coach: &fakeCoach{suggestion: workout.CoachSuggestion{
				Session:        suggestedSession(),
				LibraryEntries: []workout.LibraryEntry{{Name: "Face Pulls", Category: "Pull"}},
				Rationale:      "",
				Focus:          "Lower body",
			}},
			wantRetryable: true,
		},
		{
			name: "no exercises",
			coach: &fakeCoach{suggestion: workout.CoachSuggestion{
				Session:   workout.Session{ID: "empty", Exercises: []workout.Exercise{}},
				Rationale: "Rest day.",
				Focus:     "Recovery",
			}},
			wantRetryable: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := t.Context()
			var opts []workout.Option
			if tt.coach != nil {
				opts = append(opts, workout.WithCoach(tt.coach))
			}
			svc, _, _ := newTestService(t, opts...)

			_, err := svc.SuggestWorkout(ctx, false)
			var serviceErr *workout.ExternalServiceError
			if !errors.As(err, &serviceErr) {
				t.Fatalf("SuggestWorkout error = %v, want ExternalServiceError", err)
			}
			if serviceErr.Retryable != tt.wantRetryable || serviceErr.UserMessage == "" {
				t.Errorf("ExternalServiceError = %+v", serviceErr)
			}

			if _, err = svc.Current(ctx); !errors.Is(err, workout.ErrNoActiveSession) {
				t.Errorf("Current error = %v, want ErrNoActiveSession", err)
			}
			library, err := svc.Library(ctx)
			if err != nil {
				t.Fatalf("Library: %v", err)
			}
			if _, ok := library.FindByName("Face Pulls"); ok {
				t.Error("failed suggestion patched the library")
			}
		})
	}
}

func TestService_SuggestWorkout_keepsLibraryWritesDuringCall(t *testing.T) {
	ctx := t.Context()
	coach := &fakeCoach{}
	svc, _, clock := newTestService(t, workout.WithCoach(coach))
	session := suggestedSession()
	session.StartTime = clock.Now()
	coach.suggestion = workout.CoachSuggestion{
		Session:          session,
		LibraryEntries:   []workout.LibraryEntry{{Name: "Face Pulls", Category: "Shoulders"}},
		Rationale:        "Balance the pressing.",
		Focus:            "Upper body",
		EstimatedMinutes: 40,
	}
	coach.during = func(ctx context.Context) {
		if _, err := svc.AddLibraryExercise(ctx, "Lunges", "Legs"); err != nil {
			t.Errorf("AddLibraryExercise: %v", err)
		}
	}

	if _, err := svc.SuggestWorkout(ctx, false); err != nil {
		t.Fatalf("SuggestWorkout: %v", err)
	}

	library, err := svc.Library(ctx)
	if err != nil {
		t.Fatalf("Library: %v", err)
	}
	if _, ok := library.FindByName("Lunges"); !ok {
		t.Error("library entry added while the coach was working was lost")
	}
	if entry, ok := library.FindByName("Face Pulls"); !ok || entry.Category != workout.CategoryUncategorized {
		t.Errorf("Face Pulls = %+v, %v, want an Uncategorized entry", entry, ok)
	}
	if len(library) != len(coach.req.Library)+2 {
		t.Errorf("len(library) = %d, want %d", len(library), len(coach.req.Library)+2)
	}
}

func TestService_SuggestWorkout_knownExercisesLeaveLibraryAlone(t *testing.T) {
	ctx := t.Context()
	coach := &fakeCoach{}
	svc, _, clock := newTestService(t, workout.WithCoach(coach))
	before, err := svc.Library(ctx)
	if err != nil {
		t.Fatalf("Library: %v", err)
	}
	session := suggestedSession()
	session.StartTime = clock.Now()
	coach.suggestion = workout.CoachSuggestion{
		Session:          session,
		LibraryEntries:   []workout.LibraryEntry{{Name: "squats", Category: "Legs"}},
		Rationale:        "Legs are rested.",
		Focus:            "Lower body",
		EstimatedMinutes: 45,
	}

	if _, err = svc.SuggestWorkout(ctx, false); err != nil {
		t.Fatalf("SuggestWorkout: %v", err)
	}
	after, err := svc.Library(ctx)
	if err != nil {
		t.Fatalf("Library: %v", err)
	}
	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("library changed (-before +after):\n%s", diff)
	}
}
