// Package flightrecorder keeps a rolling runtime trace and writes it to disk when a coach request times out.
package flightrecorder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/trace"
	"sync"
	"time"

	"github.com/myrjola/gymlog/internal/errors"
)

const (
	// defaultMinAge covers a full coach request including retries.
	defaultMinAge = 2 * time.Minute

	defaultMaxBytes = 16 * 1024 * 1024 // 16MB
)

// Service records the most recent trace events in memory.
type Service struct {
	logger          *slog.Logger
	flightRecorder  *trace.FlightRecorder
	tracesDirectory string
	now             func() time.Time

	mu       sync.Mutex
	captured bool
}

type Config struct {
	Logger          *slog.Logger
	MinAge          time.Duration
	MaxBytes        uint64
	TracesDirectory string
	// Now defaults to time.Now and names the trace files.
	Now func() time.Time
}

// New creates a recorder writing to cfg.TracesDirectory, which is created when missing.
func New(cfg Config) (*Service, error) {
	if cfg.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if cfg.TracesDirectory == "" {
		return nil, errors.New("traces directory is required")
	}
	stat, err := os.Stat(cfg.TracesDirectory)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err = os.MkdirAll(cfg.TracesDirectory, 0o700); err != nil { //nolint:mnd // owner only
			return nil, errors.Wrap(err, "create traces directory", slog.String("dir", cfg.TracesDirectory))
		}
	case err != nil:
		return nil, errors.Wrap(err, "stat traces directory", slog.String("dir", cfg.TracesDirectory))
	case !stat.IsDir():
		return nil, errors.New("traces path is not a directory", slog.String("dir", cfg.TracesDirectory))
	}

	minAge := cfg.MinAge
	if minAge == 0 {
		minAge = defaultMinAge
	}
	maxBytes := cfg.MaxBytes
	if maxBytes == 0 {
		maxBytes = defaultMaxBytes
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Service{
		logger:          cfg.Logger,
		flightRecorder:  trace.NewFlightRecorder(trace.FlightRecorderConfig{MinAge: minAge, MaxBytes: maxBytes}),
		tracesDirectory: cfg.TracesDirectory,
		now:             now,
		mu:              sync.Mutex{},
		captured:        false,
	}, nil
}

// Start begins recording. Only one recorder can run per process.
func (s *Service) Start(ctx context.Context) error {
	if err := s.flightRecorder.Start(); err != nil {
		return fmt.Errorf("start flight recorder: %w", err)
	}
	s.logger.LogAttrs(ctx, slog.LevelDebug, "flight recorder started", slog.String("dir", s.tracesDirectory))
	return nil
}

// Stop ends recording. Nothing can be captured afterwards.
func (s *Service) Stop(ctx context.Context) {
	if !s.flightRecorder.Enabled() {
		return
	}
	s.flightRecorder.Stop()
	s.logger.LogAttrs(ctx, slog.LevelDebug, "flight recorder stopped")
}

// CaptureTimeoutTrace writes the recorded trace to a timeout-<timestamp>.trace file and returns its path. A
// process captures at most once, later calls return an empty path.
func (s *Service) CaptureTimeoutTrace(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.captured {
		s.logger.LogAttrs(ctx, slog.LevelDebug, "trace already captured")
		return "", nil
	}

	path := filepath.Join(s.tracesDirectory, fmt.Sprintf("timeout-%s.trace", s.now().UTC().Format("20060102-150405")))
	file, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "create trace file", slog.String("file", path))
	}
	written, err := s.flightRecorder.WriteTo(file)
	if closeErr := file.Close(); err == nil && closeErr != nil {
		err = closeErr
	}
	if err != nil {
		return "", errors.Wrap(err, "write trace", slog.String("file", path))
	}
	s.captured = true

	s.logger.LogAttrs(ctx, slog.LevelWarn, "captured timeout trace",
		slog.String("file", path),
		slog.Int64("bytes", written))
	return path, nil
}
