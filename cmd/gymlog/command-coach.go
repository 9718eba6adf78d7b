package main

import (
	"fmt"
	"strings"

	"github.com/myrjola/gymlog/internal/workout"
	"github.com/spf13/cobra"
)

func (app *application) prefsCommand() *cobra.Command {
	cmd := &cobra.Command{ //nolint:exhaustruct // cobra commands set only what they need.
		Use:   "prefs",
		Short: "Show the coaching preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			prefs, err := app.service.Preferences(cmd.Context())
			if err != nil {
				return err //nolint:wrapcheck // service errors are already wrapped.
			}
			app.printf("Mode: %s (%s)\n", prefs.Mode, app.modes.Mode(prefs.Mode).Name)
			app.printf("Time available: %d minutes\n", prefs.TimeAvailable)
			app.printf("Injuries: %s\n", prefs.Injuries)
			app.printf("Notes: %s\n", prefs.Notes)
			return nil
		},
	}

	var next workout.CoachPreferences
	set := &cobra.Command{ //nolint:exhaustruct // cobra commands set only what they need.
		Use:   "set",
		Short: "Change the coaching preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			prefs, err := app.service.Preferences(ctx)
			if err != nil {
				return err //nolint:wrapcheck // service errors are already wrapped.
			}
			flags := cmd.Flags()
			if flags.Changed("mode") {
				if !app.modes.Has(next.Mode) {
					return fmt.Errorf("%w: unknown coaching mode %q, see gymlog coach modes",
						workout.ErrValidation, next.Mode)
				}
				prefs.Mode = next.Mode
			}
			if flags.Changed("time") {
				prefs.TimeAvailable = next.TimeAvailable
			}
			if flags.Changed("injuries") {
				prefs.Injuries = next.Injuries
			}
			if flags.Changed("notes") {
				prefs.Notes = next.Notes
			}
			return app.service.SavePreferences(ctx, prefs) //nolint:wrapcheck // service errors are already wrapped.
		},
	}
	set.Flags().StringVar(&next.Mode, "mode", "", "coaching mode key")
	set.Flags().IntVar(&next.TimeAvailable, "time", 0, "minutes available per workout")
	set.Flags().StringVar(&next.Injuries, "injuries", "", "injuries or soreness to work around")
	set.Flags().StringVar(&next.Notes, "notes", "", "anything else the coach should know")

	cmd.AddCommand(set)
	return cmd
}

func (app *application) coachCommand() *cobra.Command {
	cmd := &cobra.Command{ //nolint:exhaustruct // cobra commands set only what they need.
		Use:   "coach",
		Short: "Let the coach plan the next workout",
	}

	var replace bool
	suggest := &cobra.Command{ //nolint:exhaustruct // cobra commands set only what they need.
		Use:   "suggest",
		Short: "Start a workout suggested from the history and preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			suggestion, err := app.service.SuggestWorkout(cmd.Context(), replace)
			if err != nil {
				return err //nolint:wrapcheck // service errors are already wrapped.
			}
			app.printf("Focus: %s (about %d minutes)\n", suggestion.Focus, suggestion.EstimatedMinutes)
			app.printf("%s\n\n", suggestion.Rationale)
			return app.showActive(cmd)
		},
	}
	suggest.Flags().BoolVar(&replace, "replace", false, "discard the workout in progress first")

	cmd.AddCommand(
		suggest,
		&cobra.Command{ //nolint:exhaustruct // cobra commands set only what they need.
			Use:   "modes",
			Short: "List the coaching modes",
			Args:  cobra.NoArgs,
			RunE: func(_ *cobra.Command, _ []string) error {
				tw := newTable(app.out)
				for _, m := range app.modes.Modes() {
					goal, _, _ := strings.Cut(m.Instructions, "\n")
					_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", m.Key, m.Name, strings.TrimPrefix(goal, "GOAL: "))
				}
				return tw.Flush() //nolint:wrapcheck // terminal output
			},
		},
	)
	return cmd
}
