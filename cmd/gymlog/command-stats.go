package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/myrjola/gymlog/internal/workout"
	"github.com/spf13/cobra"
)

const defaultBreakdownDays = 30

// intensityBlocks draws heatmap intensities 0 to 4.
var intensityBlocks = []string{"·", "░", "▒", "▓", "█"} //nolint:gochecknoglobals // lookup table

func parseDate(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not a YYYY-MM-DD date", workout.ErrValidation, s)
	}
	return t, nil
}

func (app *application) statsCommand() *cobra.Command {
	cmd := &cobra.Command{ //nolint:exhaustruct // cobra commands set only what they need.
		Use:   "stats",
		Short: "Summarize the training history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			o, err := app.service.QuickStats(cmd.Context())
			if err != nil {
				return err //nolint:wrapcheck // service errors are already wrapped.
			}
			app.printf("Workouts: %d\nSets: %d\n", o.Workouts, o.TotalSets)
			if o.Workouts > 0 {
				app.printf("Days since last workout: %d\n", o.DaysSinceLast)
			}
			return nil
		},
	}
	cmd.AddCommand(app.heatmapCommand(), app.breakdownCommand(), app.exerciseHistoryCommand())
	return cmd
}

func (app *application) heatmapCommand() *cobra.Command {
	var (
		days int
		css  bool
	)
	cmd := &cobra.Command{ //nolint:exhaustruct // cobra commands set only what they need.
		Use:   "heatmap",
		Short: "Show the daily training volume",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			window, err := app.service.Heatmap(cmd.Context(), days, app.now().Location())
			if err != nil {
				return err //nolint:wrapcheck // service errors are already wrapped.
			}
			tw := newTable(app.out)
			for _, d := range window.Days {
				line := fmt.Sprintf("%s\t%s\t%s\t%s kg\t%s", d.Date.Format(dateLayout), d.Date.Format("Mon"),
					intensityBlocks[d.Intensity], workout.FormatVolume(d.Volume), d.Legend)
				if css {
					color := d.Gradient
					if color == "" {
						color = d.RampColor()
					}
					line += "\t" + color
				}
				_, _ = fmt.Fprintln(tw, line)
			}
			if err = tw.Flush(); err != nil {
				return err //nolint:wrapcheck // terminal output
			}
			app.printf("%d workouts, %s kg", window.TotalWorkouts, workout.FormatVolume(window.TotalVolume))
			if len(window.Categories) > 0 {
				app.printf(" across %s", strings.Join(window.Categories, ", "))
			}
			app.println()
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 28, "number of days ending today") //nolint:mnd // four weeks
	cmd.Flags().BoolVar(&css, "css", false, "print the CSS background of every day")
	return cmd
}

func (app *application) breakdownCommand() *cobra.Command {
	var (
		from, to string
		css      bool
	)
	cmd := &cobra.Command{ //nolint:exhaustruct // cobra commands set only what they need.
		Use:   "breakdown",
		Short: "Show the completed volume per category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			now := app.now()
			end, start := now, now.AddDate(0, 0, -(defaultBreakdownDays - 1))
			var err error
			if to != "" {
				if end, err = parseDate(to, now.Location()); err != nil {
					return err
				}
			}
			if from != "" {
				if start, err = parseDate(from, now.Location()); err != nil {
					return err
				}
			}
			b, err := app.service.CategoryBreakdown(cmd.Context(), start, end)
			if err != nil {
				return err //nolint:wrapcheck // service errors are already wrapped.
			}
			app.printf("%s to %s: %d workouts, %s kg\n", start.Format(dateLayout), end.Format(dateLayout),
				b.Workouts, workout.FormatVolume(b.TotalVolume))
			for _, line := range b.Legend() {
				app.printf("  %s\n", line)
			}
			if css {
				app.println(b.Donut())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first day, YYYY-MM-DD (default 30 days ago)")
	cmd.Flags().StringVar(&to, "to", "", "last day, YYYY-MM-DD (default today)")
	cmd.Flags().BoolVar(&css, "css", false, "print the CSS conic-gradient of the breakdown")
	return cmd
}

func (app *application) exerciseHistoryCommand() *cobra.Command {
	return &cobra.Command{ //nolint:exhaustruct // cobra commands set only what they need.
		Use:   "exercise <name>",
		Short: "Show every past performance of an exercise, oldest first",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args, " ")
			entries, err := app.service.ExerciseHistory(cmd.Context(), name)
			if err != nil {
				return err //nolint:wrapcheck // service errors are already wrapped.
			}
			if len(entries) == 0 {
				app.printf("No history for %s\n", name)
				return nil
			}
			tw := newTable(app.out)
			for _, e := range entries {
				sets := make([]string, 0, len(e.Sets))
				for _, v := range e.Sets {
					sets = append(sets, formatValues(v, e.TimeMode))
				}
				_, _ = fmt.Fprintf(tw, "%s\t%s\n", e.CompletedAt.In(app.now().Location()).Format(dateLayout),
					strings.Join(sets, ", "))
			}
			return tw.Flush() //nolint:wrapcheck // terminal output
		},
	}
}
