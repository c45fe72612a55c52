// Package debounce provides a delayed-action primitive that collapses a
// burst of calls into the single most recent one.
package debounce

import (
	"sync"
	"time"
)

// DefaultDelay is the quiet period used when none is configured.
const DefaultDelay = 300 * time.Millisecond

// Debouncer runs the most recently supplied action once a quiet period has
// elapsed since the last Call. Scheduling a new action cancels any
// unexpired prior one (last-write-wins, never queued).
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending func()
}

// Option customises Debouncer construction.
type Option func(*Debouncer)

// WithDelay overrides the quiet period.
func WithDelay(delay time.Duration) Option {
	return func(d *Debouncer) {
		if delay > 0 {
			d.delay = delay
		}
	}
}

// New constructs a Debouncer with the supplied options.
func New(opts ...Option) *Debouncer {
	d := &Debouncer{delay: DefaultDelay}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Call schedules fn to run after the quiet period, replacing any pending
// action and restarting the timer.
func (d *Debouncer) Call(fn func()) {
	if fn == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending = fn
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

// Cancel drops the pending action, if any, and reports whether one was
// pending.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	had := d.pending != nil
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = nil
	return had
}

// Flush runs the pending action immediately on the calling goroutine and
// reports whether there was one. The timer is cancelled so the action runs
// exactly once.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	fn := d.pending
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = nil
	d.mu.Unlock()

	if fn == nil {
		return false
	}
	fn()
	return true
}

// Pending reports whether an action is waiting for the quiet period.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	fn := d.pending
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()

	if fn != nil {
		fn()
	}
}
