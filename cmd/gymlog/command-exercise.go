package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/myrjola/gymlog/internal/workout"
	"github.com/spf13/cobra"
)

// exerciseToggle builds a subcommand that flips one piece of state of an exercise in the workout in progress.
func (app *application) exerciseToggle(
	use, short string,
	toggle func(*workout.Service, context.Context, workout.ID) error,
) *cobra.Command {
	return &cobra.Command{ //nolint:exhaustruct // cobra commands set only what they need.
		Use:   use + " <exercise>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := app.activeExercise(cmd, args[0])
			if err != nil {
				return err
			}
			return toggle(app.service, cmd.Context(), e.ID)
		},
	}
}

func (app *application) exerciseCommand() *cobra.Command {
	cmd := &cobra.Command{ //nolint:exhaustruct // cobra commands set only what they need.
		Use:   "exercise",
		Short: "Edit the exercises of the workout in progress",
		Long: "Edit the exercises of the workout in progress. Exercises are given as their position in " +
			"`gymlog session show` or as their ID.",
	}
	cmd.AddCommand(
		&cobra.Command{ //nolint:exhaustruct // cobra commands set only what they need.
			Use:   "add <name>",
			Short: "Add an exercise to the workout in progress",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				e, err := app.service.AddExercise(cmd.Context(), strings.Join(args, " "))
				if err != nil {
					return err //nolint:wrapcheck // service errors are already wrapped.
				}
				app.printf("Added %s\n", e.Name)
				return nil
			},
		},
		&cobra.Command{ //nolint:exhaustruct // cobra commands set only what they need.
			Use:   "delete <exercise>",
			Short: "Remove an exercise and its sets",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				e, err := app.activeExercise(cmd, args[0])
				if err != nil {
					return err
				}
				return app.service.DeleteExercise(cmd.Context(), e.ID) //nolint:wrapcheck // already wrapped.
			},
		},
		&cobra.Command{ //nolint:exhaustruct // cobra commands set only what they need.
			Use:       "move <exercise> up|down",
			Short:     "Move an exercise one step",
			Args:      cobra.ExactArgs(2), //nolint:mnd // exercise and direction
			ValidArgs: []string{"up", "down"},
			RunE: func(cmd *cobra.Command, args []string) error {
				var dir workout.Direction
				switch strings.ToLower(args[1]) {
				case "up":
					dir = workout.Up
				case "down":
					dir = workout.Down
				default:
					return fmt.Errorf("%w: direction must be up or down, got %q", workout.ErrValidation, args[1])
				}
				e, err := app.activeExercise(cmd, args[0])
				if err != nil {
					return err
				}
				return app.service.MoveExercise(cmd.Context(), e.ID, dir) //nolint:wrapcheck // already wrapped.
			},
		},
		&cobra.Command{ //nolint:exhaustruct // cobra commands set only what they need.
			Use:   "swap <exercise> <name>",
			Short: "Replace an exercise by another one, keeping its sets",
			Args:  cobra.MinimumNArgs(2), //nolint:mnd // exercise and name
			RunE: func(cmd *cobra.Command, args []string) error {
				e, err := app.activeExercise(cmd, args[0])
				if err != nil {
					return err
				}
				//nolint:wrapcheck // service errors are already wrapped.
				return app.service.SwapExercise(cmd.Context(), e.ID, strings.Join(args[1:], " "))
			},
		},
		&cobra.Command{ //nolint:exhaustruct // cobra commands set only what they need.
			Use:   "alternatives <exercise>",
			Short: "List library exercises that could replace an exercise",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				e, err := app.activeExercise(cmd, args[0])
				if err != nil {
					return err
				}
				candidates, err := app.service.SwapCandidates(cmd.Context(), e.ID)
				if err != nil {
					return err //nolint:wrapcheck // service errors are already wrapped.
				}
				if len(candidates) == 0 {
					app.println("No alternatives in the library")
				}
				for _, c := range candidates {
					app.printf("%s [%s]\n", c.Name, c.Category)
				}
				return nil
			},
		},
		app.exerciseToggle("collapse", "Collapse or expand an exercise", (*workout.Service).ToggleExerciseCollapse),
		app.exerciseToggle("details", "Hide or show the summary of an exercise", (*workout.Service).ToggleExerciseDetails),
		app.exerciseToggle("timed", "Switch an exercise between reps and time", (*workout.Service).ToggleTimeMode),
		app.exerciseToggle("previous", "Hide or show the previous performance", (*workout.Service).ToggleShowPrevious),
		&cobra.Command{ //nolint:exhaustruct // cobra commands set only what they need.
			Use:   "collapse-all",
			Short: "Collapse every exercise, or expand them all when all are collapsed",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return app.service.ToggleAllExercises(cmd.Context()) //nolint:wrapcheck // already wrapped.
			},
		},
	)
	return cmd
}
