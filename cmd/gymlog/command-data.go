package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/myrjola/gymlog/internal/errors"
	"github.com/spf13/cobra"
)

func (app *application) exportCommand() *cobra.Command {
	return &cobra.Command{ //nolint:exhaustruct // cobra commands set only what they need.
		Use:   "export [file]",
		Short: "Write every record as a JSON document",
		Long:  "Write the workout in progress, the history and the library as a JSON document to file or stdout.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 || args[0] == "-" {
				return app.service.WriteExport(cmd.Context(), app.out) //nolint:wrapcheck // already wrapped.
			}
			f, err := os.Create(args[0])
			if err != nil {
				return errors.Wrap(err, "create export file", slog.String("path", args[0]))
			}
			if err = app.service.WriteExport(cmd.Context(), f); err != nil {
				_ = f.Close()
				return err //nolint:wrapcheck // service errors are already wrapped.
			}
			if err = f.Close(); err != nil {
				return errors.Wrap(err, "close export file", slog.String("path", args[0]))
			}
			app.printf("Exported to %s\n", args[0])
			return nil
		},
	}
}

func (app *application) importCommand() *cobra.Command {
	return &cobra.Command{ //nolint:exhaustruct // cobra commands set only what they need.
		Use:   "import <file>",
		Short: "Replace records with those of an exported JSON document",
		Long: "Replace records with those of an exported JSON document, - reads stdin. Only the records present in " +
			"the document are replaced.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = app.in
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return errors.Wrap(err, "open import file", slog.String("path", args[0]))
				}
				defer f.Close()
				r = f
			}
			result, err := app.service.Import(cmd.Context(), r)
			if err != nil {
				return err //nolint:wrapcheck // service errors are already wrapped.
			}
			app.printf("Imported version %s document\n", result.Version)
			if result.CurrentWorkout {
				if result.WorkoutReplaced {
					app.println("  workout in progress: replaced")
				} else {
					app.println("  workout in progress: cleared")
				}
			}
			if result.HistoryEntries >= 0 {
				app.printf("  history: %d entries\n", result.HistoryEntries)
			}
			if result.LibraryEntries >= 0 {
				app.printf("  library: %d exercises\n", result.LibraryEntries)
			}
			return nil
		},
	}
}

func (app *application) backupCommand() *cobra.Command {
	return &cobra.Command{ //nolint:exhaustruct // cobra commands set only what they need.
		Use:   "backup <path>",
		Short: "Copy the database to a new file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.db.Snapshot(cmd.Context(), args[0]); err != nil {
				return errors.Wrap(err, "backup db", slog.String("path", args[0]))
			}
			app.printf("Backed up to %s\n", args[0])
			return nil
		},
	}
}
