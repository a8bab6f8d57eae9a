// Package clock abstracts wall time and timers so the danmaku scheduler,
// motion drivers, and translation pipeline can run against real time in
// production and a manually advanced clock in tests.
package clock

import (
	"sync"
	"time"
)

// Timer is a cancellable scheduled callback.
type Timer interface {
	// Stop cancels the timer. It reports whether the call prevented a future
	// firing. Stopping an already stopped timer is a no-op.
	Stop() bool
}

// Clock provides the current time plus one-shot and periodic callbacks.
type Clock interface {
	Now() time.Time
	// AfterFunc calls f once after d elapses.
	AfterFunc(d time.Duration, f func()) Timer
	// Every calls f each time d elapses until the returned Timer is stopped.
	Every(d time.Duration, f func()) Timer
}

// Real returns a Clock backed by the time package.
func Real() Clock {
	return realClock{}
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

func (realClock) Every(d time.Duration, f func()) Timer {
	t := &ticker{ticker: time.NewTicker(d), done: make(chan struct{})}
	go t.run(f)
	return t
}

type ticker struct {
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

func (t *ticker) run(f func()) {
	for {
		select {
		case <-t.done:
			return
		case <-t.ticker.C:
			select {
			case <-t.done:
				return
			default:
			}
			f()
		}
	}
}

func (t *ticker) Stop() bool {
	stopped := false
	t.once.Do(func() {
		t.ticker.Stop()
		close(t.done)
		stopped = true
	})
	return stopped
}
