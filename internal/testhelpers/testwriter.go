package testhelpers

import (
	"io"
	"strings"
	"sync/atomic"
	"testing"
)

// Writer forwards log output to t.Log so that it is only shown for failing tests.
type Writer struct {
	tb   testing.TB
	done atomic.Bool
}

// NewWriter creates a Writer bound to tb. Output written after tb finishes is dropped, since background goroutines
// such as the session timer may still log while a test is being torn down.
func NewWriter(tb testing.TB) io.Writer {
	w := &Writer{tb: tb, done: atomic.Bool{}}
	tb.Cleanup(func() {
		w.done.Store(true)
	})
	return w
}

// Write implements io.Writer.
func (w *Writer) Write(p []byte) (int, error) {
	if w.done.Load() {
		return len(p), nil
	}
	if output := strings.TrimSuffix(string(p), "\n"); output != "" {
		w.tb.Helper()
		w.tb.Log(output)
	}
	return len(p), nil
}
