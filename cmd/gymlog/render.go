package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/myrjola/gymlog/internal/timer"
	"github.com/myrjola/gymlog/internal/workout"
)

const dateLayout = "2006-01-02"

func formatValues(v workout.Values, timeMode bool) string {
	if timeMode {
		return fmt.Sprintf("%ds", v.Time)
	}
	return fmt.Sprintf("%s × %d", workout.FormatWeight(v.Weight), v.Reps)
}

func checkmark(done bool) string {
	if done {
		return "✓"
	}
	return "·"
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0) //nolint:mnd // column padding
}

// sessionContext is what renderActive needs besides the session itself.
type sessionContext struct {
	now      time.Time
	resolver workout.CategoryResolver
	history  []workout.Session
}

// renderActive prints the workout in progress the way the view state asks for.
func renderActive(w io.Writer, active workout.ActiveSession, sc sessionContext) {
	s := active.Session
	_, _ = fmt.Fprintf(w, "Workout in progress, started %s, %s elapsed\n",
		s.StartTime.In(sc.now.Location()).Format("2006-01-02 15:04"), timer.Format(sc.now.Sub(s.StartTime)))
	if len(s.Exercises) == 0 {
		_, _ = fmt.Fprintln(w, "No exercises yet. Add one with: gymlog exercise add <name>")
		return
	}
	for i, e := range s.Exercises {
		view := active.View.Exercises[e.ID]
		marker := "▾"
		if view.Collapsed {
			marker = "▸"
		}
		mode := ""
		if e.TimeMode {
			mode = ", timed"
		}
		_, _ = fmt.Fprintf(w, "\n%s %d. %s [%s%s]\n", marker, i+1, e.Name, sc.resolver.Category(e.Name), mode)
		summary := workout.ExerciseStats(e).Summary
		if view.Collapsed {
			_, _ = fmt.Fprintf(w, "   %s\n", summary)
			continue
		}
		tw := newTable(w)
		_, _ = fmt.Fprintln(tw, "     #\tplanned\tactual\tdone")
		for j, set := range e.Sets {
			cursor := " "
			if view.SelectedSet != nil && *view.SelectedSet == j {
				cursor = ">"
			}
			_, _ = fmt.Fprintf(tw, "   %s %d\t%s\t%s\t%s\n", cursor, j+1,
				formatValues(set.Planned, e.TimeMode), formatValues(set.Actual, e.TimeMode), checkmark(set.Completed))
		}
		_ = tw.Flush()
		if view.ShowPrevious {
			if last, ok := workout.LastPerformance(sc.history, e.Name); ok {
				prev := make([]string, 0, len(last.Sets))
				for _, v := range last.Sets {
					prev = append(prev, formatValues(v, last.TimeMode))
				}
				_, _ = fmt.Fprintf(w, "   Previous (%s): %s\n",
					last.CompletedAt.In(sc.now.Location()).Format(dateLayout), strings.Join(prev, ", "))
			} else {
				_, _ = fmt.Fprintln(w, "   Previous: none")
			}
		}
		if !view.DetailsHidden {
			_, _ = fmt.Fprintf(w, "   %s\n", summary)
		}
	}
}

// renderSummary prints the statistics of a finished session.
func renderSummary(w io.Writer, s workout.Session) {
	stats := workout.WorkoutStats(s)
	_, _ = fmt.Fprintf(w, "Duration: %s\n", workout.FormatDuration(s.Duration))
	_, _ = fmt.Fprintf(w, "Sets: %d/%d completed (%d%%, %s)\n", stats.CompletedSets, stats.TotalSets,
		stats.CompletionRate, workout.PerformanceBadge(stats.CompletionRate).Label())
	_, _ = fmt.Fprintf(w, "Volume: %s kg\n", workout.FormatVolume(stats.TotalVolume))
	for _, h := range workout.Highlights(stats) {
		_, _ = fmt.Fprintf(w, "  * %s\n", h)
	}
}

// renderEntry prints a history entry with the outcome of every set.
func renderEntry(w io.Writer, s workout.Session, loc *time.Location) {
	completed := s.StartTime
	if s.CompletedAt != nil {
		completed = *s.CompletedAt
	}
	_, _ = fmt.Fprintf(w, "Workout %s on %s\n", s.ID, completed.In(loc).Format("2006-01-02 15:04"))
	renderSummary(w, s)
	for i, e := range s.Exercises {
		_, _ = fmt.Fprintf(w, "\n%d. %s: %s\n", i+1, e.Name, workout.ExerciseStats(e).Summary)
		tw := newTable(w)
		for j, set := range e.Sets {
			c := workout.ClassifySet(set)
			_, _ = fmt.Fprintf(tw, "   %d\t%s\t%s\t%s\t%s %d%%\n", j+1, formatValues(set.Planned, e.TimeMode),
				formatValues(set.Actual, e.TimeMode), checkmark(set.Completed), c.Outcome, c.Percent)
		}
		_ = tw.Flush()
	}
}
