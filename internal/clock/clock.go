// Package clock lets timer-driven code run against either the wall clock
// or a fake that only moves when a test advances it.
package clock

import "time"

// Clock is the subset of the time package used by debouncing and timeouts
type Clock interface {
	Now() time.Time

	// AfterFunc calls f once d has elapsed. The returned Timer cancels
	// the pending call.
	AfterFunc(d time.Duration, f func()) *Timer
}

// Timer is a pending AfterFunc call
type Timer struct {
	stopFunc func() bool
}

// Stop prevents the timer from firing. It reports false if the timer
// already fired or was already stopped.
func (t *Timer) Stop() bool { return t.stopFunc() }

// Real returns a Clock backed by the time package
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) *Timer {
	timer := time.AfterFunc(d, f)
	return &Timer{stopFunc: timer.Stop}
}
