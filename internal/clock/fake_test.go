package clock

import (
	"testing"
	"time"
)

func TestFakeAfterFuncFiresInDeadlineOrder(t *testing.T) {
	c := NewFake(time.Unix(0, 0))
	var order []string
	c.AfterFunc(300*time.Millisecond, func() { order = append(order, "c") })
	c.AfterFunc(100*time.Millisecond, func() { order = append(order, "a") })
	c.AfterFunc(200*time.Millisecond, func() { order = append(order, "b") })

	c.Advance(150 * time.Millisecond)
	if len(order) != 1 || order[0] != "a" {
		t.Fatalf("after 150ms got %v", order)
	}
	c.Advance(time.Second)
	if got := len(order); got != 3 || order[1] != "b" || order[2] != "c" {
		t.Fatalf("unexpected order %v", order)
	}
	if c.Pending() != 0 {
		t.Fatalf("expected no pending timers, got %d", c.Pending())
	}
}

func TestFakeNowTracksDeadlinesDuringCallbacks(t *testing.T) {
	start := time.Unix(100, 0)
	c := NewFake(start)
	var seen time.Duration
	c.AfterFunc(250*time.Millisecond, func() { seen = c.Now().Sub(start) })
	c.Advance(time.Second)
	if seen != 250*time.Millisecond {
		t.Fatalf("callback saw %v, want 250ms", seen)
	}
	if got := c.Now().Sub(start); got != time.Second {
		t.Fatalf("clock at %v after advance", got)
	}
}

func TestFakeEveryRepeatsUntilStopped(t *testing.T) {
	c := NewFake(time.Unix(0, 0))
	count := 0
	var tm Timer
	tm = c.Every(100*time.Millisecond, func() {
		count++
		if count == 3 {
			tm.Stop()
		}
	})
	c.Advance(time.Second)
	if count != 3 {
		t.Fatalf("expected 3 ticks, got %d", count)
	}
	if tm.Stop() {
		t.Fatal("second Stop should report false")
	}
}

func TestFakeCallbackCanScheduleWithinWindow(t *testing.T) {
	c := NewFake(time.Unix(0, 0))
	fired := 0
	c.AfterFunc(100*time.Millisecond, func() {
		fired++
		c.AfterFunc(100*time.Millisecond, func() { fired++ })
	})
	c.Advance(250 * time.Millisecond)
	if fired != 2 {
		t.Fatalf("expected chained timer to fire, got %d", fired)
	}
}

func TestFakeStopPreventsFiring(t *testing.T) {
	c := NewFake(time.Unix(0, 0))
	fired := false
	tm := c.AfterFunc(time.Second, func() { fired = true })
	if !tm.Stop() {
		t.Fatal("expected Stop to report true for pending timer")
	}
	c.Advance(2 * time.Second)
	if fired {
		t.Fatal("stopped timer fired")
	}
}
