package main

import (
	"context"
	"fmt"
	"time"

	"github.com/myrjola/gymlog/internal/timer"
	"github.com/myrjola/gymlog/internal/workout"
	"github.com/spf13/cobra"
)

func (app *application) sessionCommand() *cobra.Command {
	cmd := &cobra.Command{ //nolint:exhaustruct // cobra commands set only what they need.
		Use:   "session",
		Short: "Start, inspect and finish the workout in progress",
	}
	cmd.AddCommand(
		&cobra.Command{ //nolint:exhaustruct // cobra commands set only what they need.
			Use:   "start",
			Short: "Start an empty workout",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				s, err := app.service.StartSession(cmd.Context())
				if err != nil {
					return err //nolint:wrapcheck // service errors are already wrapped.
				}
				app.printf("Started workout %s\n", s.ID)
				return nil
			},
		},
		&cobra.Command{ //nolint:exhaustruct // cobra commands set only what they need.
			Use:   "show",
			Short: "Show the workout in progress",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return app.showActive(cmd)
			},
		},
		&cobra.Command{ //nolint:exhaustruct // cobra commands set only what they need.
			Use:   "discard",
			Short: "Throw away the workout in progress",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := app.service.DiscardSession(cmd.Context()); err != nil {
					return err //nolint:wrapcheck // service errors are already wrapped.
				}
				app.println("Discarded the workout in progress")
				return nil
			},
		},
		&cobra.Command{ //nolint:exhaustruct // cobra commands set only what they need.
			Use:   "complete",
			Short: "Finish the workout and move it to history",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				s, err := app.service.CompleteSession(cmd.Context())
				if err != nil {
					return err //nolint:wrapcheck // service errors are already wrapped.
				}
				app.println("Workout completed")
				renderSummary(app.out, s)
				return nil
			},
		},
		app.templateCommand(),
		app.timerCommand(),
	)
	return cmd
}

func (app *application) showActive(cmd *cobra.Command) error {
	ctx := cmd.Context()
	active, err := app.service.Current(ctx)
	if err != nil {
		return err //nolint:wrapcheck // service errors are already wrapped.
	}
	library, err := app.service.Library(ctx)
	if err != nil {
		return err //nolint:wrapcheck // service errors are already wrapped.
	}
	categories, err := app.service.Categories(ctx)
	if err != nil {
		return err //nolint:wrapcheck // service errors are already wrapped.
	}
	history, err := app.service.History(ctx)
	if err != nil {
		return err //nolint:wrapcheck // service errors are already wrapped.
	}
	renderActive(app.out, active, sessionContext{
		now:      app.now(),
		resolver: workout.NewCategoryResolver(library, categories),
		history:  history,
	})
	return nil
}

func (app *application) templateCommand() *cobra.Command {
	var replace bool
	cmd := &cobra.Command{ //nolint:exhaustruct // cobra commands set only what they need.
		Use:   "repeat <history-entry>",
		Short: "Start a workout that repeats a history entry",
		Long: "Start a workout with the exercises and values of a history entry. The entry is given as its position " +
			"in `gymlog history list` or as its ID.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, err := app.historyEntry(cmd, args[0])
			if err != nil {
				return err
			}
			s, err := app.service.StartFromTemplate(cmd.Context(), entry.ID, replace)
			if err != nil {
				return err //nolint:wrapcheck // service errors are already wrapped.
			}
			app.printf("Started workout %s with %d exercises\n", s.ID, len(s.Exercises))
			return nil
		},
	}
	cmd.Flags().BoolVar(&replace, "replace", false, "discard the workout in progress first")
	return cmd
}

func (app *application) timerCommand() *cobra.Command {
	var limit time.Duration
	cmd := &cobra.Command{ //nolint:exhaustruct // cobra commands set only what they need.
		Use:   "timer",
		Short: "Show the elapsed time of the workout until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			active, err := app.service.Current(ctx)
			if err != nil {
				return err //nolint:wrapcheck // service errors are already wrapped.
			}
			if limit > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, limit)
				defer cancel()
			}
			t := timer.New(timer.WithClock(app.now))
			t.Start(ctx, active.Session.StartTime, func(elapsed time.Duration) {
				app.printf("\rElapsed %s", timer.Format(elapsed))
			})
			<-ctx.Done()
			t.Stop()
			app.println()
			return nil
		},
	}
	cmd.Flags().DurationVar(&limit, "for", 0, "stop after this long instead of waiting for an interrupt")
	return cmd
}

// formatSession is the one line form used in listings.
func formatSession(i int, s workout.Session, loc *time.Location) string {
	when := s.StartTime
	if s.CompletedAt != nil {
		when = *s.CompletedAt
	}
	stats := workout.WorkoutStats(s)
	return fmt.Sprintf("%d\t%s\t%s\t%d exercises\t%d/%d sets\t%s kg\t%s", i+1, when.In(loc).Format("2006-01-02 15:04"),
		workout.FormatDuration(s.Duration), s.TotalExercises, stats.CompletedSets, stats.TotalSets,
		workout.FormatVolume(stats.TotalVolume), s.ID)
}
