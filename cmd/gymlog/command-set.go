package main

import (
	"context"
	"fmt"

	"github.com/myrjola/gymlog/internal/workout"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// valueFlags collects --weight, --reps and --time. Only the flags given on the command line are applied.
type valueFlags struct {
	weight float64
	reps   int
	time   int
}

func (v *valueFlags) register(flags *pflag.FlagSet) {
	flags.Float64Var(&v.weight, string(workout.FieldWeight), 0, "weight in kg")
	flags.IntVar(&v.reps, string(workout.FieldReps), 0, "repetitions")
	flags.IntVar(&v.time, string(workout.FieldTime), 0, "time in seconds")
}

// apply calls update once per changed field in weight, reps, time order.
func (v *valueFlags) apply(flags *pflag.FlagSet, update func(workout.Field, float64) error) error {
	values := []struct {
		field workout.Field
		value float64
	}{
		{field: workout.FieldWeight, value: v.weight},
		{field: workout.FieldReps, value: float64(v.reps)},
		{field: workout.FieldTime, value: float64(v.time)},
	}
	changed := false
	for _, fv := range values {
		if !flags.Changed(string(fv.field)) {
			continue
		}
		changed = true
		if err := update(fv.field, fv.value); err != nil {
			return err
		}
	}
	if !changed {
		return fmt.Errorf("%w: give at least one of --weight, --reps or --time", workout.ErrValidation)
	}
	return nil
}

// parseColumn accepts planned, actual or both. Both returns an empty column.
func parseColumn(s string) (workout.Column, error) {
	if s == "both" {
		return "", nil
	}
	return workout.ParseColumn(s) //nolint:wrapcheck // already carries ErrValidation.
}

// setArgs resolves <exercise> <set> against the workout in progress into an exercise ID and a 0-based index.
func (app *application) setArgs(cmd *cobra.Command, args []string) (workout.ID, int, error) {
	e, err := app.activeExercise(cmd, args[0])
	if err != nil {
		return "", 0, err
	}
	index, err := setIndex(e, args[1])
	if err != nil {
		return "", 0, err
	}
	return e.ID, index, nil
}

func (app *application) setAction(
	use, short string,
	action func(*workout.Service, context.Context, workout.ID, int) error,
) *cobra.Command {
	return &cobra.Command{ //nolint:exhaustruct // cobra commands set only what they need.
		Use:   use + " <exercise> <set>",
		Short: short,
		Args:  cobra.ExactArgs(2), //nolint:mnd // exercise and set
		RunE: func(cmd *cobra.Command, args []string) error {
			id, index, err := app.setArgs(cmd, args)
			if err != nil {
				return err
			}
			return action(app.service, cmd.Context(), id, index)
		},
	}
}

func (app *application) setCommand() *cobra.Command {
	cmd := &cobra.Command{ //nolint:exhaustruct // cobra commands set only what they need.
		Use:   "set",
		Short: "Edit the sets of the workout in progress",
		Long: "Edit the sets of the workout in progress. Exercises are given as their position or ID and sets as " +
			"their position within the exercise.",
	}

	var (
		values valueFlags
		column string
	)
	update := &cobra.Command{ //nolint:exhaustruct // cobra commands set only what they need.
		Use:   "update <exercise> <set>",
		Short: "Change the values of a set that is not completed",
		Args:  cobra.ExactArgs(2), //nolint:mnd // exercise and set
		RunE: func(cmd *cobra.Command, args []string) error {
			col, err := parseColumn(column)
			if err != nil {
				return err
			}
			id, index, err := app.setArgs(cmd, args)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			return values.apply(cmd.Flags(), func(field workout.Field, value float64) error {
				if col == "" {
					return app.service.UpdateSetField(ctx, id, index, field, value) //nolint:wrapcheck // wrapped.
				}
				return app.service.UpdateSetValue(ctx, id, index, col, field, value) //nolint:wrapcheck // wrapped.
			})
		},
	}
	values.register(update.Flags())
	update.Flags().StringVar(&column, "column", "both", "values to change: planned, actual or both")

	cmd.AddCommand(
		&cobra.Command{ //nolint:exhaustruct // cobra commands set only what they need.
			Use:   "add <exercise>",
			Short: "Add a set that copies the previous one",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				e, err := app.activeExercise(cmd, args[0])
				if err != nil {
					return err
				}
				return app.service.AddSet(cmd.Context(), e.ID) //nolint:wrapcheck // already wrapped.
			},
		},
		update,
		app.setAction("delete", "Remove a set", (*workout.Service).DeleteSet),
		app.setAction("select", "Mark a set as the one being edited", (*workout.Service).SelectSet),
		app.setAction("done", "Toggle whether a set is completed", (*workout.Service).ToggleSetCompletion),
	)
	return cmd
}
