package motion

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"danmaku/internal/clock"
)

const (
	// StartExtent is the right edge of the container in percent.
	StartExtent = 100.0
	// EndExtent is where a fragment has fully exited on the left.
	EndExtent = -200.0

	MinDuration = 8 * time.Second
	MaxDuration = 15 * time.Second

	// DefaultReportInterval is the minimum spacing between extent reports.
	DefaultReportInterval = 100 * time.Millisecond
	// DefaultFrameInterval is the SamplingDriver frame period.
	DefaultFrameInterval = 16 * time.Millisecond

	StrategyAuto       = "auto"
	StrategyTransition = "transition"
	StrategySampling   = "sampling"
)

// Duration returns how long text takes to cross the container: ten seconds
// plus one second per thirty characters, clamped to [MinDuration, MaxDuration].
func Duration(text string) time.Duration {
	n := utf8.RuneCountInString(text)
	d := 10*time.Second + time.Duration(n)*time.Second/30
	return min(max(d, MinDuration), MaxDuration)
}

// Extent maps animation progress in [0, 1] to the horizontal boundary.
func Extent(progress float64) float64 {
	progress = min(max(progress, 0), 1)
	return StartExtent - (StartExtent-EndExtent)*progress
}

// Animation is a running fragment animation.
type Animation interface {
	// Stop cancels the animation. Callbacks that have not begun are
	// suppressed, but one already running on a clock goroutine may still
	// finish after Stop returns. Callers must ignore reports for ids they
	// have dropped. Stop does not wait for callbacks, so it is safe to call
	// while holding a lock those callbacks take.
	Stop()
}

// Driver animates one fragment at a time per call.
type Driver interface {
	Name() string
	// Animate starts moving the fragment identified by id. report receives
	// extents as the fragment travels; done is called once when it has fully
	// exited.
	Animate(id int64, text string, report func(extent float64), done func()) Animation
}

// Transition describes a declarative animation a renderer interpolates itself.
type Transition struct {
	ID       int64
	From     float64
	To       float64
	Start    time.Time
	Duration time.Duration
}

// TransitionCapable is implemented by renderers that can interpolate a
// fragment's position without per-frame updates.
type TransitionCapable interface {
	SupportsTransitions() bool
	StartTransition(Transition)
}

// Options configures driver timing.
type Options struct {
	Clock          clock.Clock
	ReportInterval time.Duration
	FrameInterval  time.Duration
}

func (o Options) withDefaults() Options {
	if o.Clock == nil {
		o.Clock = clock.Real()
	}
	if o.ReportInterval <= 0 {
		o.ReportInterval = DefaultReportInterval
	}
	if o.FrameInterval <= 0 {
		o.FrameInterval = DefaultFrameInterval
	}
	return o
}

// Select returns the driver for strategy. The auto strategy uses the
// transition driver when renderer implements TransitionCapable and reports
// support, and the sampling driver otherwise.
func Select(strategy string, renderer any, opts Options) (Driver, error) {
	capable, ok := renderer.(TransitionCapable)
	supported := ok && capable.SupportsTransitions()

	switch strings.ToLower(strings.TrimSpace(strategy)) {
	case "", StrategyAuto:
		if supported {
			return NewTransitionDriver(capable, opts), nil
		}
		return NewSamplingDriver(opts), nil
	case StrategyTransition:
		if !supported {
			return nil, fmt.Errorf("motion: renderer %T does not support transitions", renderer)
		}
		return NewTransitionDriver(capable, opts), nil
	case StrategySampling:
		return NewSamplingDriver(opts), nil
	default:
		return nil, fmt.Errorf("motion: unknown strategy %q", strategy)
	}
}

// run holds the state shared by both drivers for one animation.
type run struct {
	mu       sync.Mutex
	timers   []clock.Timer
	stopped  atomic.Bool
	finished atomic.Bool
	report   func(float64)
	done     func()
}

func (r *run) add(t clock.Timer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped.Load() {
		t.Stop()
		return
	}
	r.timers = append(r.timers, t)
}

func (r *run) cancelTimers() {
	r.mu.Lock()
	timers := r.timers
	r.timers = nil
	r.mu.Unlock()
	for _, t := range timers {
		t.Stop()
	}
}

func (r *run) emit(extent float64) {
	if r.stopped.Load() || r.finished.Load() {
		return
	}
	r.report(extent)
}

// finish reports the final extent and completion exactly once.
func (r *run) finish() {
	if r.stopped.Load() || !r.finished.CompareAndSwap(false, true) {
		return
	}
	r.cancelTimers()
	r.report(EndExtent)
	r.done()
}

func (r *run) Stop() {
	if r.stopped.Swap(true) {
		return
	}
	r.cancelTimers()
}
