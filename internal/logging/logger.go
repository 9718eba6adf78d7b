package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	logFileMaxSizeMB  = 5
	logFileMaxBackups = 3
	logFileMaxAgeDays = 28
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// ParseLevel parses debug, info, warn or error into a [slog.Level].
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("parse log level %q: %w", s, err)
	}
	return level, nil
}

// NewLogger builds a text logger on top of [ContextHandler] that writes to w.
//
// When file is not empty, records are also appended to that file which is rotated by size. The returned
// [io.Closer] releases the file and must be called before exiting.
func NewLogger(w io.Writer, level slog.Level, file string) (*slog.Logger, io.Closer) {
	var (
		sink   = w
		closer io.Closer = nopCloser{}
	)
	if file != "" {
		rotating := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    logFileMaxSizeMB,
			MaxAge:     logFileMaxAgeDays,
			MaxBackups: logFileMaxBackups,
			LocalTime:  true,
			Compress:   false,
		}
		sink = io.MultiWriter(w, rotating)
		closer = rotating
	}
	handler := NewContextHandler(slog.NewTextHandler(sink, &slog.HandlerOptions{
		AddSource:   false,
		Level:       level,
		ReplaceAttr: nil,
	}))
	return slog.New(handler), closer
}
