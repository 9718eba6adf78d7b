package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/myrjola/gymlog/internal/logging"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "INFO", want: slog.LevelInfo},
		{in: " warn ", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "loud", want: slog.LevelInfo, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := logging.ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logFile := filepath.Join(t.TempDir(), "gymlog.log")
	logger, closer := logging.NewLogger(&buf, slog.LevelInfo, logFile)

	ctx := logging.WithAttrs(context.Background(), slog.String("command", "start"))
	logger.LogAttrs(ctx, slog.LevelDebug, "hidden")
	logger.LogAttrs(ctx, slog.LevelInfo, "session started")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	for _, out := range []string{buf.String(), readFile(t, logFile)} {
		if !strings.Contains(out, "session started") || !strings.Contains(out, "command=start") {
			t.Errorf("expected log output to contain message and context attr, got %q", out)
		}
		if strings.Contains(out, "hidden") {
			t.Errorf("debug record should be filtered, got %q", out)
		}
	}
}

func TestWithAttrs_doesNotLeakIntoParent(t *testing.T) {
	var buf bytes.Buffer
	logger, _ := logging.NewLogger(&buf, slog.LevelDebug, "")

	parent := logging.WithAttrs(context.Background(), slog.String("a", "1"))
	_ = logging.WithAttrs(parent, slog.String("b", "2"))
	logger.LogAttrs(parent, slog.LevelInfo, "parent")

	if strings.Contains(buf.String(), "b=2") {
		t.Errorf("child attribute leaked into parent context: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "a=1") {
		t.Errorf("expected parent attribute in %q", buf.String())
	}
}

func TestContextHandler_derivedLoggers(t *testing.T) {
	var buf bytes.Buffer
	handler := logging.NewContextHandler(slog.NewTextHandler(&buf, nil))
	logger := slog.New(handler).With(slog.String("db", "gymlog.sqlite3")).WithGroup("set")

	ctx := logging.WithAttrs(context.Background(), slog.String("command", "set done"))
	logger.LogAttrs(ctx, slog.LevelDebug, "hidden")
	logger.LogAttrs(ctx, slog.LevelInfo, "set completed", slog.Int("index", 2))

	out := buf.String()
	for _, part := range []string{"db=gymlog.sqlite3", "set.index=2", `command="set done"`} {
		if !strings.Contains(out, part) {
			t.Errorf("expected %s in %q", part, out)
		}
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("debug record should be filtered, got %q", out)
	}
}

func readFile(t *testing.T, name string) string {
	t.Helper()
	b, err := os.ReadFile(name)
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	return string(b)
}
