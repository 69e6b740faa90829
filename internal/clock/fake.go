package clock

import (
	"sort"
	"sync"
	"time"
)

// NewFake returns a deterministic Clock frozen at start. Time moves
// only when Advance is called.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

// Fake is a Clock for tests. Pending timers fire, in deadline order,
// as Advance moves the current time past their deadlines. AfterFunc
// callbacks run synchronously inside Advance.
//
// Safe for concurrent use.
type Fake struct {
	mu      sync.Mutex
	now     time.Time
	waiters []*fakeWaiter
}

type fakeWaiter struct {
	deadline time.Time
	ch       chan time.Time // nil for AfterFunc waiters
	fn       func()         // nil for channel waiters
	interval time.Duration  // non-zero for tickers
	stopped  bool
	fired    bool
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fake) After(d time.Duration) <-chan time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan time.Time, 1)
	if d <= 0 {
		ch <- f.now
		return ch
	}
	f.waiters = append(f.waiters, &fakeWaiter{deadline: f.now.Add(d), ch: ch})
	return ch
}

func (f *Fake) AfterFunc(d time.Duration, fn func()) Timer {
	f.mu.Lock()
	if d <= 0 {
		f.mu.Unlock()
		fn()
		return stoppedTimer{}
	}
	w := &fakeWaiter{deadline: f.now.Add(d), fn: fn}
	f.waiters = append(f.waiters, w)
	f.mu.Unlock()
	return &fakeTimer{fake: f, waiter: w}
}

func (f *Fake) NewTicker(d time.Duration) Ticker {
	if d <= 0 {
		panic("non-positive ticker interval")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	w := &fakeWaiter{deadline: f.now.Add(d), ch: make(chan time.Time, 1), interval: d}
	f.waiters = append(f.waiters, w)
	return &fakeTicker{fake: f, waiter: w}
}

// Advance moves the fake time forward by d, firing every waiter whose
// deadline falls inside the window in deadline order. Tickers
// reschedule themselves and can fire several times within one call.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.now.Add(d)

	for {
		next := f.nextDueLocked(target)
		if next == nil {
			break
		}
		f.now = next.deadline
		if next.interval > 0 {
			next.deadline = next.deadline.Add(next.interval)
			select {
			case next.ch <- f.now:
			default: // consumer behind, drop the tick like time.Ticker
			}
			continue
		}
		next.fired = true
		if next.ch != nil {
			next.ch <- f.now
			continue
		}
		// Run AfterFunc callbacks without holding the lock so they
		// may schedule further timers.
		fn := next.fn
		f.mu.Unlock()
		fn()
		f.mu.Lock()
	}

	f.now = target
	f.compactLocked()
	f.mu.Unlock()
}

// nextDueLocked returns the earliest unstopped, unfired waiter due at
// or before target, or nil.
func (f *Fake) nextDueLocked(target time.Time) *fakeWaiter {
	due := make([]*fakeWaiter, 0, len(f.waiters))
	for _, w := range f.waiters {
		if !w.stopped && !w.fired && !w.deadline.After(target) {
			due = append(due, w)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool { return due[i].deadline.Before(due[j].deadline) })
	return due[0]
}

func (f *Fake) compactLocked() {
	kept := f.waiters[:0]
	for _, w := range f.waiters {
		if !w.stopped && !w.fired {
			kept = append(kept, w)
		}
	}
	f.waiters = kept
}

// PendingTimers reports how many timers and tickers are currently
// scheduled. Tests use this to confirm registration before advancing.
func (f *Fake) PendingTimers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, w := range f.waiters {
		if !w.stopped && !w.fired {
			n++
		}
	}
	return n
}

type fakeTimer struct {
	fake   *Fake
	waiter *fakeWaiter
}

func (t *fakeTimer) Stop() bool {
	t.fake.mu.Lock()
	defer t.fake.mu.Unlock()
	if t.waiter.fired || t.waiter.stopped {
		return false
	}
	t.waiter.stopped = true
	return true
}

type stoppedTimer struct{}

func (stoppedTimer) Stop() bool { return false }

type fakeTicker struct {
	fake   *Fake
	waiter *fakeWaiter
}

func (t *fakeTicker) Chan() <-chan time.Time { return t.waiter.ch }

func (t *fakeTicker) Stop() {
	t.fake.mu.Lock()
	defer t.fake.mu.Unlock()
	t.waiter.stopped = true
}
