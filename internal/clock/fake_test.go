package clock

import (
	"testing"
	"time"
)

func TestFakeAfter(t *testing.T) {
	fake := NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	ch := fake.After(5 * time.Second)

	fake.Advance(4 * time.Second)
	select {
	case <-ch:
		t.Fatal("fired before deadline")
	default:
	}

	fake.Advance(time.Second)
	select {
	case fired := <-ch:
		want := time.Date(2026, 1, 1, 0, 0, 5, 0, time.UTC)
		if !fired.Equal(want) {
			t.Errorf("fired at %v, want %v", fired, want)
		}
	default:
		t.Fatal("did not fire at deadline")
	}
}

func TestFakeAfterFunc(t *testing.T) {
	fake := NewFake(time.Unix(0, 0))

	fired := 0
	timer := fake.AfterFunc(3*time.Second, func() { fired++ })

	fake.Advance(2 * time.Second)
	if fired != 0 {
		t.Fatal("fired early")
	}
	fake.Advance(2 * time.Second)
	if fired != 1 {
		t.Fatalf("fired %d times, want 1", fired)
	}

	// Repeated advances must not re-fire a one-shot timer.
	fake.Advance(10 * time.Second)
	if fired != 1 {
		t.Fatalf("fired %d times after extra advance, want 1", fired)
	}
	if timer.Stop() {
		t.Error("Stop reported an already-fired timer as stopped")
	}
}

func TestFakeAfterFuncStop(t *testing.T) {
	fake := NewFake(time.Unix(0, 0))

	fired := false
	timer := fake.AfterFunc(3*time.Second, func() { fired = true })
	if !timer.Stop() {
		t.Fatal("Stop on a pending timer returned false")
	}

	fake.Advance(10 * time.Second)
	if fired {
		t.Fatal("stopped timer fired")
	}
}

func TestFakeTicker(t *testing.T) {
	fake := NewFake(time.Unix(0, 0))
	ticker := fake.NewTicker(3 * time.Second)
	defer ticker.Stop()

	ticks := 0
	drain := func() {
		for {
			select {
			case <-ticker.Chan():
				ticks++
			default:
				return
			}
		}
	}

	fake.Advance(3 * time.Second)
	drain()
	if ticks != 1 {
		t.Fatalf("ticks = %d after one interval, want 1", ticks)
	}

	// The tick channel has capacity 1; ticks beyond an unconsumed one
	// are dropped, matching time.Ticker.
	fake.Advance(9 * time.Second)
	drain()
	if ticks != 2 {
		t.Fatalf("ticks = %d after slow consumer window, want 2", ticks)
	}

	ticker.Stop()
	fake.Advance(10 * time.Second)
	drain()
	if ticks != 2 {
		t.Fatalf("ticks = %d after Stop, want 2", ticks)
	}
}

func TestFakeOrdering(t *testing.T) {
	fake := NewFake(time.Unix(0, 0))

	var order []string
	fake.AfterFunc(2*time.Second, func() { order = append(order, "second") })
	fake.AfterFunc(1*time.Second, func() { order = append(order, "first") })

	fake.Advance(5 * time.Second)

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("callbacks ran in order %v, want [first second]", order)
	}
}
