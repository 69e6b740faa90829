// Package clock abstracts timers behind an interface so that polling
// cadence and notice expiry can be driven deterministically in tests.
// Production code injects Real(); tests inject a Fake and advance it.
package clock

import "time"

// Clock is the subset of the time package the sync layer needs.
type Clock interface {
	Now() time.Time

	// After returns a channel that receives once d has elapsed.
	After(d time.Duration) <-chan time.Time

	// AfterFunc schedules f to run once d has elapsed. Stop the
	// returned Timer to cancel the pending call.
	AfterFunc(d time.Duration, f func()) Timer

	// NewTicker delivers a tick every d on the returned Ticker's
	// channel until the Ticker is stopped.
	NewTicker(d time.Duration) Ticker
}

// Timer is a cancellable one-shot timer.
type Timer interface {
	// Stop cancels the timer. It reports false if the timer already
	// fired or was stopped.
	Stop() bool
}

// Ticker delivers periodic ticks.
type Ticker interface {
	Chan() <-chan time.Time
	Stop()
}

// Real returns a Clock backed by the standard time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

func (realClock) NewTicker(d time.Duration) Ticker {
	return realTicker{time.NewTicker(d)}
}

type realTicker struct {
	ticker *time.Ticker
}

func (t realTicker) Chan() <-chan time.Time { return t.ticker.C }

func (t realTicker) Stop() { t.ticker.Stop() }
