// Package debounce delays a call until its input has been quiet for a
// fixed period.
package debounce

import (
	"sync"
	"time"

	"typeahead/internal/clock"
)

// Debouncer wraps fn so that Call(v) runs fn(v) only after delay has
// passed with no further Call. Every Call replaces the pending value and
// restarts the wait.
//
// fn runs on the clock's timer goroutine (synchronously inside Advance
// for a fake clock). Owners that need fn on a particular event loop must
// post from fn onto that loop themselves.
type Debouncer[T any] struct {
	mu    sync.Mutex
	clock clock.Clock
	delay time.Duration
	fn    func(T)
	timer *clock.Timer
	gen   uint64
}

// New creates a debouncer around fn
func New[T any](c clock.Clock, delay time.Duration, fn func(T)) *Debouncer[T] {
	if c == nil {
		c = clock.Real()
	}
	return &Debouncer[T]{
		clock: c,
		delay: delay,
		fn:    fn,
	}
}

// Delay returns the quiet period
func (d *Debouncer[T]) Delay() time.Duration {
	return d.delay
}

// Call schedules fn(v), cancelling whatever was pending
func (d *Debouncer[T]) Call(v T) {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
	gen := d.gen

	if d.delay <= 0 {
		d.mu.Unlock()
		d.fn(v)
		return
	}

	d.timer = d.clock.AfterFunc(d.delay, func() { d.fire(gen, v) })
	d.mu.Unlock()
}

// Cancel drops the pending call, if any, and reports whether there was one.
// Owners call it on teardown so no timer outlives them.
func (d *Debouncer[T]) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	pending := d.timer != nil
	if pending {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
	return pending
}

// Pending reports whether a call is waiting for its quiet period
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

func (d *Debouncer[T]) fire(gen uint64, v T) {
	d.mu.Lock()
	// A timer that lost the race with Call or Cancel must not run.
	if gen != d.gen || d.timer == nil {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()

	d.fn(v)
}
