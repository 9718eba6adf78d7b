// Package timer drives the elapsed-time display of an active workout session.
package timer

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const defaultInterval = time.Second

// Timer calls a tick function with the elapsed time since a start instant once per interval. Starting a running
// Timer is a no-op, and the zero value is not usable; create one with [New].
type Timer struct {
	interval time.Duration
	now      func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

type Option func(*Timer)

// WithInterval overrides the one second tick interval.
func WithInterval(d time.Duration) Option {
	return func(t *Timer) {
		if d > 0 {
			t.interval = d
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Timer) {
		t.now = now
	}
}

func New(opts ...Option) *Timer {
	t := &Timer{
		interval: defaultInterval,
		now:      time.Now,
		mu:       sync.Mutex{},
		cancel:   nil,
		done:     nil,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start begins ticking in a background goroutine until ctx is cancelled or Stop is called. tick is called
// immediately and then once per interval. Start reports false without doing anything if the Timer is already
// running.
func (t *Timer) Start(ctx context.Context, start time.Time, tick func(elapsed time.Duration)) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done != nil {
		return false
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	t.cancel = cancel
	t.done = done

	go func() {
		defer func() {
			t.mu.Lock()
			if t.done == done {
				t.cancel = nil
				t.done = nil
			}
			t.mu.Unlock()
			cancel()
			close(done)
		}()

		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()
		for {
			tick(elapsed(start, t.now()))
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	return true
}

// Stop cancels a running Timer and waits for its goroutine to exit. Stopping an idle Timer is a no-op.
func (t *Timer) Stop() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the Timer is ticking.
func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done != nil
}

// elapsed truncates to whole seconds and never goes negative when the clock moves backwards.
func elapsed(start, now time.Time) time.Duration {
	d := now.Sub(start).Truncate(time.Second)
	if d < 0 {
		return 0
	}
	return d
}

// Format renders d as zero-padded HH:MM:SS. Negative durations render as 00:00:00.
func Format(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	s := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, s/60%60, s%60) //nolint:mnd // seconds per hour and minute
}
