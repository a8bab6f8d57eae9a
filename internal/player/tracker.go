package player

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"danmaku/internal/clock"
	"danmaku/internal/logging"
)

// DefaultTrackInterval is how often TimeTracker samples the position.
const DefaultTrackInterval = 1000 * time.Millisecond

// FormatTime renders whole seconds as HH:MM:SS.
func FormatTime(d time.Duration) string {
	secs := int64(d / time.Second)
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, secs%3600/60, secs%60)
}

// PositionSource reports the playback position.
type PositionSource interface {
	Position() time.Duration
}

// TimeTracker samples a PositionSource and reports the formatted time
// whenever it changes.
type TimeTracker struct {
	source   PositionSource
	clock    clock.Clock
	interval time.Duration
	onChange func(string)
	logger   *slog.Logger

	mu     sync.Mutex
	ticker clock.Timer
	last   string
}

// NewTimeTracker builds a tracker. onChange runs on the clock's goroutine.
func NewTimeTracker(source PositionSource, c clock.Clock, interval time.Duration, onChange func(string), logger *slog.Logger) *TimeTracker {
	if c == nil {
		c = clock.Real()
	}
	if interval <= 0 {
		interval = DefaultTrackInterval
	}
	return &TimeTracker{
		source:   source,
		clock:    c,
		interval: interval,
		onChange: onChange,
		logger:   logging.NewComponentLogger(logger, "time_tracker"),
	}
}

// Start begins sampling. Starting a running tracker restarts it.
func (t *TimeTracker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ticker != nil {
		t.ticker.Stop()
	}
	t.ticker = t.clock.Every(t.interval, t.check)
	t.logger.Debug("time tracker started", logging.Duration("interval", t.interval))
}

// Stop halts sampling.
func (t *TimeTracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ticker == nil {
		return
	}
	t.ticker.Stop()
	t.ticker = nil
	t.logger.Debug("time tracker stopped")
}

// Current returns the last reported time, or "" before the first sample.
func (t *TimeTracker) Current() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}

func (t *TimeTracker) check() {
	formatted := FormatTime(t.source.Position())
	t.mu.Lock()
	if t.ticker == nil || formatted == t.last {
		t.mu.Unlock()
		return
	}
	t.last = formatted
	t.mu.Unlock()
	if t.onChange != nil {
		t.onChange(formatted)
	}
}
