package main

import (
	"fmt"

	"github.com/myrjola/gymlog/internal/workout"
	"github.com/spf13/cobra"
)

// historySetArgs resolves <entry> <exercise> <set> into IDs and a 0-based set index.
func (app *application) historySetArgs(cmd *cobra.Command, args []string) (workout.ID, workout.ID, int, error) {
	entry, err := app.historyEntry(cmd, args[0])
	if err != nil {
		return "", "", 0, err
	}
	e, err := exerciseRef(entry, args[1])
	if err != nil {
		return "", "", 0, err
	}
	index, err := setIndex(e, args[2])
	if err != nil {
		return "", "", 0, err
	}
	return entry.ID, e.ID, index, nil
}

func (app *application) historyCommand() *cobra.Command {
	cmd := &cobra.Command{ //nolint:exhaustruct // cobra commands set only what they need.
		Use:   "history",
		Short: "Review and correct completed workouts",
		Long: "Review and correct completed workouts. Entries are given as their position in `gymlog history list`, " +
			"newest first, or as their ID.",
	}

	var clearConfirmed bool
	clearCmd := &cobra.Command{ //nolint:exhaustruct // cobra commands set only what they need.
		Use:   "clear",
		Short: "Delete every completed workout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !clearConfirmed {
				return fmt.Errorf("%w: pass --yes to delete the whole history", workout.ErrValidation)
			}
			if err := app.service.ClearHistory(cmd.Context()); err != nil {
				return err //nolint:wrapcheck // service errors are already wrapped.
			}
			app.println("History cleared")
			return nil
		},
	}
	clearCmd.Flags().BoolVar(&clearConfirmed, "yes", false, "confirm deleting the whole history")

	var (
		values valueFlags
		column string
	)
	updateSet := &cobra.Command{ //nolint:exhaustruct // cobra commands set only what they need.
		Use:   "update-set <entry> <exercise> <set>",
		Short: "Correct the values of a recorded set",
		Args:  cobra.ExactArgs(3), //nolint:mnd // entry, exercise and set
		RunE: func(cmd *cobra.Command, args []string) error {
			col, err := workout.ParseColumn(column)
			if err != nil {
				return err //nolint:wrapcheck // already carries ErrValidation.
			}
			entryID, exerciseID, index, err := app.historySetArgs(cmd, args)
			if err != nil {
				return err
			}
			return values.apply(cmd.Flags(), func(field workout.Field, value float64) error {
				//nolint:wrapcheck // service errors are already wrapped.
				return app.service.UpdateHistorySet(cmd.Context(), entryID, exerciseID, index, col, field, value)
			})
		},
	}
	values.register(updateSet.Flags())
	updateSet.Flags().StringVar(&column, "column", string(workout.ColumnActual), "values to change: planned or actual")

	cmd.AddCommand(
		&cobra.Command{ //nolint:exhaustruct // cobra commands set only what they need.
			Use:   "list",
			Short: "List completed workouts, newest first",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				history, err := app.service.History(cmd.Context())
				if err != nil {
					return err //nolint:wrapcheck // service errors are already wrapped.
				}
				if len(history) == 0 {
					app.println("No completed workouts yet")
					return nil
				}
				tw := newTable(app.out)
				for i, s := range history {
					_, _ = fmt.Fprintln(tw, formatSession(i, s, app.now().Location()))
				}
				return tw.Flush() //nolint:wrapcheck // terminal output
			},
		},
		&cobra.Command{ //nolint:exhaustruct // cobra commands set only what they need.
			Use:   "show <entry>",
			Short: "Show a completed workout set by set",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				entry, err := app.historyEntry(cmd, args[0])
				if err != nil {
					return err
				}
				renderEntry(app.out, entry, app.now().Location())
				return nil
			},
		},
		&cobra.Command{ //nolint:exhaustruct // cobra commands set only what they need.
			Use:   "delete <entry>",
			Short: "Delete a completed workout",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				entry, err := app.historyEntry(cmd, args[0])
				if err != nil {
					return err
				}
				return app.service.DeleteHistoryEntry(cmd.Context(), entry.ID) //nolint:wrapcheck // wrapped.
			},
		},
		clearCmd,
		updateSet,
		&cobra.Command{ //nolint:exhaustruct // cobra commands set only what they need.
			Use:   "toggle-set <entry> <exercise> <set>",
			Short: "Toggle whether a recorded set is completed",
			Args:  cobra.ExactArgs(3), //nolint:mnd // entry, exercise and set
			RunE: func(cmd *cobra.Command, args []string) error {
				entryID, exerciseID, index, err := app.historySetArgs(cmd, args)
				if err != nil {
					return err
				}
				//nolint:wrapcheck // service errors are already wrapped.
				return app.service.ToggleHistorySetCompletion(cmd.Context(), entryID, exerciseID, index)
			},
		},
		&cobra.Command{ //nolint:exhaustruct // cobra commands set only what they need.
			Use:   "delete-set <entry> <exercise> <set>",
			Short: "Delete a recorded set",
			Args:  cobra.ExactArgs(3), //nolint:mnd // entry, exercise and set
			RunE: func(cmd *cobra.Command, args []string) error {
				entryID, exerciseID, index, err := app.historySetArgs(cmd, args)
				if err != nil {
					return err
				}
				//nolint:wrapcheck // service errors are already wrapped.
				return app.service.DeleteHistorySet(cmd.Context(), entryID, exerciseID, index)
			},
		},
		&cobra.Command{ //nolint:exhaustruct // cobra commands set only what they need.
			Use:   "delete-exercise <entry> <exercise>",
			Short: "Delete an exercise from a completed workout",
			Args:  cobra.ExactArgs(2), //nolint:mnd // entry and exercise
			RunE: func(cmd *cobra.Command, args []string) error {
				entry, err := app.historyEntry(cmd, args[0])
				if err != nil {
					return err
				}
				e, err := exerciseRef(entry, args[1])
				if err != nil {
					return err
				}
				return app.service.DeleteHistoryExercise(cmd.Context(), entry.ID, e.ID) //nolint:wrapcheck // wrapped.
			},
		},
	)
	return cmd
}
