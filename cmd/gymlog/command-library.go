package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/myrjola/gymlog/internal/workout"
	"github.com/spf13/cobra"
)

// libraryEntry resolves ref as an exercise name first and as an entry ID second.
func (app *application) libraryEntry(cmd *cobra.Command, ref string) (workout.LibraryEntry, error) {
	library, err := app.service.Library(cmd.Context())
	if err != nil {
		return workout.LibraryEntry{}, err //nolint:wrapcheck // service errors are already wrapped.
	}
	if e, ok := library.FindByName(ref); ok {
		return e, nil
	}
	for _, e := range library {
		if string(e.ID) == ref {
			return e, nil
		}
	}
	return workout.LibraryEntry{}, fmt.Errorf("library exercise %q: %w", ref, workout.ErrNotFound)
}

func (app *application) libraryCommand() *cobra.Command {
	cmd := &cobra.Command{ //nolint:exhaustruct // cobra commands set only what they need.
		Use:   "library",
		Short: "Manage the exercise library",
		Long:  "Manage the exercise library. Exercises are given by name or ID.",
	}

	var limit int
	suggest := &cobra.Command{ //nolint:exhaustruct // cobra commands set only what they need.
		Use:   "suggest <query>",
		Short: "Autocomplete an exercise name, most used first",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			matches, err := app.service.SuggestExercises(cmd.Context(), strings.Join(args, " "), limit)
			if err != nil {
				return err //nolint:wrapcheck // service errors are already wrapped.
			}
			for _, e := range matches {
				app.println(e.Name)
			}
			return nil
		},
	}
	suggest.Flags().IntVar(&limit, "limit", 8, "maximum number of suggestions, 0 for all") //nolint:mnd // fits a screen

	var addCategory string
	add := &cobra.Command{ //nolint:exhaustruct // cobra commands set only what they need.
		Use:   "add <name>",
		Short: "Add an exercise to the library",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := app.service.AddLibraryExercise(cmd.Context(), strings.Join(args, " "), addCategory)
			if err != nil {
				return err //nolint:wrapcheck // service errors are already wrapped.
			}
			app.printf("Added %s %s\n", e.Name, e.ID)
			return nil
		},
	}
	add.Flags().StringVar(&addCategory, "category", "", "category of the exercise")

	var newName, newCategory string
	update := &cobra.Command{ //nolint:exhaustruct // cobra commands set only what they need.
		Use:   "update <exercise>",
		Short: "Rename or recategorize a library exercise",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := app.libraryEntry(cmd, strings.Join(args, " "))
			if err != nil {
				return err
			}
			name, category := e.Name, e.Category
			if cmd.Flags().Changed("name") {
				name = newName
			}
			if cmd.Flags().Changed("category") {
				category = newCategory
			}
			//nolint:wrapcheck // service errors are already wrapped.
			return app.service.UpdateLibraryExercise(cmd.Context(), e.ID, name, category)
		},
	}
	update.Flags().StringVar(&newName, "name", "", "new name")
	update.Flags().StringVar(&newCategory, "category", "", "new category, empty for none")

	cmd.AddCommand(
		&cobra.Command{ //nolint:exhaustruct // cobra commands set only what they need.
			Use:   "list",
			Short: "List the exercise library",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				library, err := app.service.Library(cmd.Context())
				if err != nil {
					return err //nolint:wrapcheck // service errors are already wrapped.
				}
				tw := newTable(app.out)
				_, _ = fmt.Fprintln(tw, "name\tcategory\tused\tlast used\tid")
				now := app.now()
				for _, e := range library {
					category := e.Category
					if category == "" {
						category = workout.CategoryUncategorized
					}
					_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", e.Name, category, e.UsageCount,
						workout.FormatLastUsed(e.LastUsed, now), e.ID)
				}
				return tw.Flush() //nolint:wrapcheck // terminal output
			},
		},
		suggest,
		add,
		update,
		&cobra.Command{ //nolint:exhaustruct // cobra commands set only what they need.
			Use:   "delete <exercise>",
			Short: "Remove an exercise from the library",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				e, err := app.libraryEntry(cmd, strings.Join(args, " "))
				if err != nil {
					return err
				}
				return app.service.DeleteLibraryExercise(cmd.Context(), e.ID) //nolint:wrapcheck // wrapped.
			},
		},
	)
	return cmd
}

// categoryID resolves ref as a category name first and as a numeric ID second.
func (app *application) categoryID(cmd *cobra.Command, ref string) (int, error) {
	categories, err := app.service.Categories(cmd.Context())
	if err != nil {
		return 0, err //nolint:wrapcheck // service errors are already wrapped.
	}
	if c, ok := categories.Find(ref); ok {
		return c.ID, nil
	}
	id, err := strconv.Atoi(ref)
	if err != nil {
		return 0, fmt.Errorf("category %q: %w", ref, workout.ErrNotFound)
	}
	return id, nil
}

func (app *application) categoryCommand() *cobra.Command {
	cmd := &cobra.Command{ //nolint:exhaustruct // cobra commands set only what they need.
		Use:   "category",
		Short: "Manage the exercise categories",
		Long:  "Manage the exercise categories. Categories are given by name or ID. Colors are #rrggbb.",
	}

	var addColor string
	add := &cobra.Command{ //nolint:exhaustruct // cobra commands set only what they need.
		Use:   "add <name>",
		Short: "Create a category",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.service.AddCategory(cmd.Context(), strings.Join(args, " "), addColor)
			if err != nil {
				return err //nolint:wrapcheck // service errors are already wrapped.
			}
			app.printf("Added category %d %s %s\n", c.ID, c.Name, c.Color)
			return nil
		},
	}
	add.Flags().StringVar(&addColor, "color", "", "color, default "+workout.ColorPresets[0])

	var newName, newColor string
	update := &cobra.Command{ //nolint:exhaustruct // cobra commands set only what they need.
		Use:   "update <category>",
		Short: "Rename or recolor a category",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := app.categoryID(cmd, strings.Join(args, " "))
			if err != nil {
				return err
			}
			return app.service.UpdateCategory(cmd.Context(), id, newName, newColor) //nolint:wrapcheck // wrapped.
		},
	}
	update.Flags().StringVar(&newName, "name", "", "new name")
	update.Flags().StringVar(&newColor, "color", "", "new color")

	cmd.AddCommand(
		&cobra.Command{ //nolint:exhaustruct // cobra commands set only what they need.
			Use:   "list",
			Short: "List the categories",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				categories, err := app.service.Categories(cmd.Context())
				if err != nil {
					return err //nolint:wrapcheck // service errors are already wrapped.
				}
				tw := newTable(app.out)
				for _, c := range categories {
					protected := ""
					if c.Protected {
						protected = "protected"
					}
					_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", c.ID, c.Name, c.Color, protected)
				}
				return tw.Flush() //nolint:wrapcheck // terminal output
			},
		},
		add,
		update,
		&cobra.Command{ //nolint:exhaustruct // cobra commands set only what they need.
			Use:   "delete <category>",
			Short: "Delete a category. Its exercises become uncategorized",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := app.categoryID(cmd, strings.Join(args, " "))
				if err != nil {
					return err
				}
				return app.service.DeleteCategory(cmd.Context(), id) //nolint:wrapcheck // wrapped.
			},
		},
	)
	return cmd
}
