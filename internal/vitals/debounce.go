package vitals

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of calls into trailing-edge invocations
// with a hard cap on how long an invocation can be delayed. It tracks
// the first and last call times of the current window and fires on
// whichever of (quiet period elapsed since the last call) or (max wait
// elapsed since the first call) comes first, then resets the window.
type Debouncer struct {
	quiet   time.Duration
	maxWait time.Duration

	mu          sync.Mutex
	timer       *time.Timer
	windowStart time.Time
	pending     bool
	fn          func()
}

// NewDebouncer creates a debouncer with the given quiet period and
// maximum wait. maxWait must be >= quiet.
func NewDebouncer(quiet, maxWait time.Duration) *Debouncer {
	return &Debouncer{quiet: quiet, maxWait: maxWait}
}

// Call schedules fn for a debounced invocation. Only the most recent
// fn of a burst is invoked.
func (d *Debouncer) Call(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now()
	d.fn = fn

	if !d.pending {
		d.pending = true
		d.windowStart = now
	}

	fireAt := now.Add(d.quiet)
	if forced := d.windowStart.Add(d.maxWait); forced.Before(fireAt) {
		fireAt = forced
	}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(time.Until(fireAt), d.fire)
}

// fire invokes the latest scheduled function and resets the window
func (d *Debouncer) fire() {
	d.mu.Lock()
	fn := d.fn
	d.pending = false
	d.fn = nil
	d.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Stop cancels any pending invocation
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = false
	d.fn = nil
}
