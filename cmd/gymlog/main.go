package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/myrjola/gymlog/internal/envstruct"
	"github.com/myrjola/gymlog/internal/errors"
	"github.com/myrjola/gymlog/internal/flightrecorder"
	"github.com/myrjola/gymlog/internal/logging"
)

type config struct {
	// SqliteURL is the path to the SQLite database. Empty selects gymlog.sqlite3 in the user config directory.
	// You can use ":memory:" for an ethereal in-memory database.
	SqliteURL string `env:"GYMLOG_SQLITE_URL" envDefault:""`
	// LogLevel is one of debug, info, warn or error. Logs go to stderr.
	LogLevel string `env:"GYMLOG_LOG_LEVEL" envDefault:"warn"`
	// LogFile optionally mirrors the logs to a size-rotated file.
	LogFile string `env:"GYMLOG_LOG_FILE" envDefault:""`
	// OpenAIAPIKey enables the workout coach.
	OpenAIAPIKey string `env:"OPENAI_API_KEY" envDefault:""`
	// CoachModel is the OpenAI chat model used by the coach.
	CoachModel string `env:"GYMLOG_COACH_MODEL" envDefault:"gpt-4o"`
	// CoachBaseURL overrides the OpenAI API endpoint.
	CoachBaseURL string `env:"GYMLOG_COACH_BASE_URL" envDefault:""`
	// CoachTimeout bounds a single coach request.
	CoachTimeout time.Duration `env:"GYMLOG_COACH_TIMEOUT" envDefault:"60s"`
	// CoachModes is an optional YAML file adding or overriding coaching modes.
	CoachModes string `env:"GYMLOG_COACH_MODES" envDefault:""`
	// TracesDir enables the flight recorder. A runtime trace is written there when a coach request times out.
	TracesDir string `env:"GYMLOG_TRACES_DIR" envDefault:""`
}

// defaultDatabasePath places the database in the per-user configuration directory.
func defaultDatabasePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "resolve user config dir")
	}
	dir = filepath.Join(dir, "gymlog")
	if err = os.MkdirAll(dir, 0o700); err != nil { //nolint:mnd // owner only
		return "", errors.Wrap(err, "create data dir", slog.String("dir", dir))
	}
	return filepath.Join(dir, "gymlog.sqlite3"), nil
}

func run(
	ctx context.Context,
	args []string,
	stdin io.Reader,
	stdout, stderr io.Writer,
	lookupEnv func(string) (string, bool),
) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.DecoratePanic(r)
		}
	}()

	var cancel context.CancelFunc
	ctx, cancel = signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	var cfg config
	if err = envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return errors.Wrap(err, "parse log level")
	}
	logger, closer := logging.NewLogger(stderr, level, cfg.LogFile)
	defer func() {
		_ = closer.Close()
	}()

	var recorder *flightrecorder.Service
	if cfg.TracesDir != "" {
		if recorder, err = startFlightRecorder(ctx, cfg.TracesDir, logger); err != nil {
			return err
		}
		defer recorder.Stop(ctx)
	}

	app := newApplication(cfg, logger, stdin, stdout)
	root := app.rootCommand()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err = errors.Join(root.ExecuteContext(ctx), app.close())
	if err != nil {
		logger.LogAttrs(ctx, slog.LevelDebug, "command failed", errors.SlogError(err))
		if recorder != nil && errors.Is(err, context.DeadlineExceeded) {
			if _, traceErr := recorder.CaptureTimeoutTrace(ctx); traceErr != nil {
				logger.LogAttrs(ctx, slog.LevelError, "capture timeout trace", errors.SlogError(traceErr))
			}
		}
		return err
	}
	return nil
}

func startFlightRecorder(ctx context.Context, dir string, logger *slog.Logger) (*flightrecorder.Service, error) {
	recorder, err := flightrecorder.New(flightrecorder.Config{
		Logger:          logger,
		MinAge:          0,
		MaxBytes:        0,
		TracesDirectory: dir,
		Now:             nil,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create flight recorder")
	}
	if err = recorder.Start(ctx); err != nil {
		return nil, errors.Wrap(err, "start flight recorder")
	}
	return recorder, nil
}

func main() {
	ctx := context.Background()
	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr, os.LookupEnv); err != nil {
		_, _ = io.WriteString(os.Stderr, "Error: "+userMessage(err)+"\n")
		os.Exit(1)
	}
}
