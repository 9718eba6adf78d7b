package coach_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/gymlog/internal/coach"
	"github.com/myrjola/gymlog/internal/workout"
)

func keys(modes []coach.Mode) []string {
	out := make([]string, 0, len(modes))
	for _, m := range modes {
		out = append(out, m.Key)
	}
	return out
}

func TestLoadCatalog_builtin(t *testing.T) {
	modes, err := coach.LoadCatalog("")
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	want := []string{"progressive_overload", "weight_loss", "strength", "fitness"}
	if diff := cmp.Diff(want, keys(modes.Modes())); diff != "" {
		t.Errorf("modes mismatch (-want +got):\n%s", diff)
	}
	if got := modes.Mode("fitness").Name; got != "General Fitness" {
		t.Errorf("fitness name = %q", got)
	}
	if got := modes.Mode("yoga"); got.Key != workout.DefaultCoachMode {
		t.Errorf("unknown mode resolved to %q, want %q", got.Key, workout.DefaultCoachMode)
	}
	if modes.Has("yoga") || !modes.Has("strength") {
		t.Error("Has() disagrees with the catalog")
	}
}

func TestLoadCatalog_userFile(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		return path
	}

	valid := write("modes.yaml", `
modes:
  - key: strength
    name: Powerlifting
    instructions: Competition lifts only.
  - key: mobility
    name: Mobility
    instructions: |
      GOAL: Move better.
`)
	modes, err := coach.LoadCatalog(valid)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	want := []string{"progressive_overload", "weight_loss", "strength", "fitness", "mobility"}
	if diff := cmp.Diff(want, keys(modes.Modes())); diff != "" {
		t.Errorf("modes mismatch (-want +got):\n%s", diff)
	}
	wantStrength := coach.Mode{Key: "strength", Name: "Powerlifting", Instructions: "Competition lifts only."}
	if diff := cmp.Diff(wantStrength, modes.Mode("strength")); diff != "" {
		t.Errorf("overridden mode mismatch (-want +got):\n%s", diff)
	}
	if got := modes.Mode("mobility").Instructions; got != "GOAL: Move better." {
		t.Errorf("mobility instructions = %q", got)
	}

	tests := []struct {
		name string
		path string
	}{
		{name: "missing file", path: filepath.Join(dir, "missing.yaml")},
		{name: "missing instructions", path: write("incomplete.yaml", "modes:\n  - key: x\n    name: X\n")},
		{name: "not yaml", path: write("broken.yaml", "modes: [\n")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := coach.LoadCatalog(tt.path); err == nil {
				t.Error("LoadCatalog succeeded, want an error")
			}
		})
	}
}
