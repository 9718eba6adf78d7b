package main

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/myrjola/gymlog/internal/coach"
	"github.com/myrjola/gymlog/internal/errors"
	"github.com/myrjola/gymlog/internal/logging"
	"github.com/myrjola/gymlog/internal/sqlite"
	"github.com/myrjola/gymlog/internal/workout"
	"github.com/spf13/cobra"
)

// maxHistoryPosition matches the history cap. Larger numbers are IDs.
const maxHistoryPosition = 100

type application struct {
	cfg    config
	logger *slog.Logger
	in     io.Reader
	out    io.Writer
	now    func() time.Time

	// Set by the root command before any subcommand runs.
	db      *sqlite.Database
	service *workout.Service
	modes   *coach.Catalog
}

func newApplication(cfg config, logger *slog.Logger, in io.Reader, out io.Writer) *application {
	return &application{
		cfg:     cfg,
		logger:  logger,
		in:      in,
		out:     out,
		now:     time.Now,
		db:      nil,
		service: nil,
		modes:   nil,
	}
}

func (app *application) rootCommand() *cobra.Command {
	var dbPath string
	root := &cobra.Command{ //nolint:exhaustruct // cobra commands set only what they need.
		Use:           "gymlog",
		Short:         "Log gym workouts, review history and get coached",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SetContext(logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath())))
			return app.open(cmd, dbPath)
		},
	}
	root.PersistentFlags().StringVar(&dbPath, "db", "", "path to the SQLite database (overrides GYMLOG_SQLITE_URL)")

	root.AddCommand(
		app.sessionCommand(),
		app.exerciseCommand(),
		app.setCommand(),
		app.historyCommand(),
		app.statsCommand(),
		app.libraryCommand(),
		app.categoryCommand(),
		app.prefsCommand(),
		app.coachCommand(),
		app.exportCommand(),
		app.importCommand(),
		app.backupCommand(),
	)
	return root
}

// open connects to the database and wires the service. The caller closes it with close.
func (app *application) open(cmd *cobra.Command, dbPath string) error {
	ctx := cmd.Context()
	url := dbPath
	if url == "" {
		url = app.cfg.SqliteURL
	}
	if url == "" {
		var err error
		if url, err = defaultDatabasePath(); err != nil {
			return err
		}
	}

	modes, err := coach.LoadCatalog(app.cfg.CoachModes)
	if err != nil {
		return errors.Wrap(err, "load coaching modes")
	}
	db, err := sqlite.NewDatabase(ctx, url, app.logger)
	if err != nil {
		return errors.Wrap(err, "open db", slog.String("url", url))
	}
	app.logger.LogAttrs(ctx, slog.LevelDebug, "connected to db", slog.String("url", url))

	opts := []workout.Option{workout.WithClock(app.now)}
	if app.cfg.OpenAIAPIKey != "" {
		client := coach.New(coach.Config{
			APIKey:     app.cfg.OpenAIAPIKey,
			Model:      app.cfg.CoachModel,
			BaseURL:    app.cfg.CoachBaseURL,
			Timeout:    app.cfg.CoachTimeout,
			MaxRetries: 1,
		}, modes, app.logger, coach.WithClock(app.now))
		opts = append(opts, workout.WithCoach(client))
	}
	app.db = db
	app.modes = modes
	app.service = workout.NewService(db, app.logger, opts...)
	return nil
}

func (app *application) close() error {
	if app.db == nil {
		return nil
	}
	err := app.db.Close()
	app.db = nil
	if err != nil {
		return errors.Wrap(err, "close db")
	}
	return nil
}

func (app *application) printf(format string, a ...any) {
	_, _ = fmt.Fprintf(app.out, format, a...)
}

func (app *application) println(a ...any) {
	_, _ = fmt.Fprintln(app.out, a...)
}

// parsePosition parses a 1-based position.
func parsePosition(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %q is not a position starting from 1", workout.ErrValidation, s)
	}
	return n, nil
}

// exerciseRef resolves a 1-based position or an exercise ID in session.
func exerciseRef(session workout.Session, ref string) (workout.Exercise, error) {
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(session.Exercises) {
		return session.Exercises[n-1], nil
	}
	for _, e := range session.Exercises {
		if string(e.ID) == ref {
			return e, nil
		}
	}
	return workout.Exercise{}, fmt.Errorf("exercise %q: %w", ref, workout.ErrNotFound)
}

// setIndex resolves a 1-based set position in e into a 0-based index.
func setIndex(e workout.Exercise, ref string) (int, error) {
	n, err := parsePosition(ref)
	if err != nil {
		return 0, err
	}
	if n > len(e.Sets) {
		return 0, fmt.Errorf("set %d of %s: %w", n, e.Name, workout.ErrNotFound)
	}
	return n - 1, nil
}

// activeExercise resolves ref against the workout in progress.
func (app *application) activeExercise(cmd *cobra.Command, ref string) (workout.Exercise, error) {
	active, err := app.service.Current(cmd.Context())
	if err != nil {
		return workout.Exercise{}, err //nolint:wrapcheck // service errors are already wrapped.
	}
	return exerciseRef(active.Session, ref)
}

// historyEntry resolves a 1-based position in the newest first history. Anything else is taken as an entry ID, which
// covers the numeric IDs of imported legacy entries.
func (app *application) historyEntry(cmd *cobra.Command, ref string) (workout.Session, error) {
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= maxHistoryPosition {
		history, err := app.service.History(cmd.Context())
		if err != nil {
			return workout.Session{}, err //nolint:wrapcheck // service errors are already wrapped.
		}
		if n <= len(history) {
			return history[n-1], nil
		}
	}
	return app.service.HistoryEntry(cmd.Context(), workout.ID(ref)) //nolint:wrapcheck // already wrapped.
}

// userMessage renders err for the terminal.
func userMessage(err error) string {
	var serviceErr *workout.ExternalServiceError
	if errors.As(err, &serviceErr) {
		if serviceErr.Retryable {
			return serviceErr.UserMessage + " (you can retry)"
		}
		return serviceErr.UserMessage
	}
	return err.Error()
}
