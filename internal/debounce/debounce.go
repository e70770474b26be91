// Package debounce delays an action until its input has been quiet for a
// fixed window.
package debounce

import (
	"sync"
	"time"
)

// Debouncer runs only the most recent triggered function, once no newer
// trigger has arrived within the delay.
type Debouncer struct {
	mu    sync.Mutex
	clock Clock
	delay time.Duration
	timer Timer
	gen   uint64
}

// New creates a Debouncer. A nil clock uses SystemClock.
func New(delay time.Duration, clock Clock) *Debouncer {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Debouncer{clock: clock, delay: delay}
}

// Delay returns the quiet window.
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Trigger schedules fn to run after the delay, replacing any function that
// has not run yet.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = d.clock.AfterFunc(d.delay, func() {
		d.mu.Lock()
		// A timer that fired while being replaced must not run.
		if gen != d.gen {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()
		fn()
	})
}

// Cancel drops the pending function, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}
