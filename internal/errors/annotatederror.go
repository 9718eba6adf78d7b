// Package errors annotates errors with structured [slog.Attr] and the source location where they were created so
// that a single log line tells what went wrong, where, and with which inputs.
package errors

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

type annotatedError struct {
	msg    string
	err    error
	attrs  []slog.Attr
	pc     uintptr
	source string
}

func (e *annotatedError) Error() string {
	if e.err == nil {
		return e.msg
	}
	return e.msg + ": " + e.err.Error()
}

func (e *annotatedError) Unwrap() error {
	return e.err
}

// NewSentinel creates an error meant to be compared with [Is]. It carries no source location.
func NewSentinel(msg string) error {
	return stderrors.New(msg) //nolint:err113 // this is the sentinel constructor.
}

// New creates an error annotated with attrs and the caller's source location.
func New(msg string, attrs ...slog.Attr) error {
	return &annotatedError{msg: msg, err: nil, attrs: attrs, pc: callerPC(), source: ""}
}

// Wrap annotates err with msg and attrs. It returns nil if err is nil.
func Wrap(err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	return &annotatedError{msg: msg, err: err, attrs: attrs, pc: callerPC(), source: ""}
}

// DecoratePanic converts a recovered panic value into an error pointing at the line that panicked.
func DecoratePanic(v any) error {
	if v == nil {
		return nil
	}
	err, ok := v.(error)
	if !ok {
		err = fmt.Errorf("%v", v) //nolint:err113 // panic values are arbitrary.
	}
	pcs := make([]uintptr, 64) //nolint:mnd // deep enough for a panic unwinding through a few deferred calls.
	n := runtime.Callers(2, pcs) //nolint:mnd // skip runtime.Callers and DecoratePanic.
	return &annotatedError{msg: "panic", err: err, attrs: nil, pc: 0, source: panicSite(pcs[:n])}
}

// SlogError converts err into an "error" group containing the message, the annotations collected from the whole
// error chain, and the innermost source location.
func SlogError(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	var (
		annotations []any
		source      string
	)
	walk(err, func(ae *annotatedError) {
		for _, attr := range ae.attrs {
			annotations = append(annotations, attr)
		}
		if s := ae.location(); s != "" {
			source = s
		}
	})

	attrs := []slog.Attr{slog.String("message", err.Error())}
	if len(annotations) > 0 {
		attrs = append(attrs, slog.Group("annotations", annotations...))
	}
	if source != "" {
		attrs = append(attrs, slog.String("source", source))
	}
	return slog.Attr{Key: "error", Value: slog.GroupValue(attrs...)}
}

func (e *annotatedError) location() string {
	if e.source != "" {
		return e.source
	}
	if e.pc == 0 {
		return ""
	}
	frame, _ := runtime.CallersFrames([]uintptr{e.pc}).Next()
	return formatFrame(frame)
}

func walk(err error, visit func(*annotatedError)) {
	if err == nil {
		return
	}
	if ae, ok := err.(*annotatedError); ok { //nolint:errorlint // walking the chain manually.
		visit(ae)
	}
	switch u := err.(type) { //nolint:errorlint // walking the chain manually.
	case interface{ Unwrap() []error }:
		for _, e := range u.Unwrap() {
			walk(e, visit)
		}
	case interface{ Unwrap() error }:
		walk(u.Unwrap(), visit)
	}
}

func callerPC() uintptr {
	var pcs [1]uintptr
	// Skip runtime.Callers, callerPC, and the constructor.
	runtime.Callers(3, pcs[:]) //nolint:mnd // see above.
	return pcs[0]
}

// panicSite returns the first non-runtime frame below runtime.gopanic.
func panicSite(pcs []uintptr) string {
	frames := runtime.CallersFrames(pcs)
	var (
		fallback   string
		afterPanic bool
	)
	for {
		frame, more := frames.Next()
		switch {
		case frame.Function == "runtime.gopanic":
			afterPanic = true
		case strings.HasPrefix(frame.Function, "runtime."):
		case afterPanic:
			return formatFrame(frame)
		case fallback == "":
			fallback = formatFrame(frame)
		}
		if !more {
			return fallback
		}
	}
}

func formatFrame(frame runtime.Frame) string {
	if frame.File == "" {
		return ""
	}
	return filepath.Base(frame.File) + ":" + strconv.Itoa(frame.Line)
}

// Is reports whether any error in err's tree matches target. See [errors.Is].
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's tree that matches target. See [errors.As].
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// Unwrap returns the result of calling the Unwrap method on err. See [errors.Unwrap].
func Unwrap(err error) error {
	return stderrors.Unwrap(err)
}

// Join returns an error that wraps the given errors. See [errors.Join].
func Join(errs ...error) error {
	return stderrors.Join(errs...)
}
