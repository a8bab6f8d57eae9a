package motion

import (
	"strings"
	"sync"
	"testing"
	"time"

	"danmaku/internal/clock"
)

type recorder struct {
	mu      sync.Mutex
	extents []float64
	times   []time.Time
	done    int
	clk     clock.Clock
}

func (r *recorder) report(extent float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extents = append(r.extents, extent)
	r.times = append(r.times, r.clk.Now())
}

func (r *recorder) finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.done++
}

type transitionRenderer struct {
	supported bool
	started   []Transition
}

func (r *transitionRenderer) SupportsTransitions() bool { return r.supported }

func (r *transitionRenderer) StartTransition(t Transition) { r.started = append(r.started, t) }

func TestDuration(t *testing.T) {
	tests := []struct {
		name string
		text string
		want time.Duration
	}{
		{name: "empty", text: "", want: 10 * time.Second},
		{name: "thirty runes", text: strings.Repeat("弹", 30), want: 11 * time.Second},
		{name: "fifteen runes", text: strings.Repeat("a", 15), want: 10*time.Second + 500*time.Millisecond},
		{name: "clamped", text: strings.Repeat("x", 600), want: MaxDuration},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Duration(tc.text); got != tc.want {
				t.Fatalf("Duration = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestExtentTrajectory(t *testing.T) {
	if Extent(0) != 100 || Extent(0.5) != -50 || Extent(1) != -200 {
		t.Fatalf("unexpected trajectory: %v %v %v", Extent(0), Extent(0.5), Extent(1))
	}
	if Extent(2) != -200 || Extent(-1) != 100 {
		t.Fatal("progress must be clamped")
	}
}

func assertRun(t *testing.T, rec *recorder, duration time.Duration, start time.Time) {
	t.Helper()
	if rec.done != 1 {
		t.Fatalf("expected done exactly once, got %d", rec.done)
	}
	if rec.extents[0] != StartExtent {
		t.Fatalf("expected first report at start extent, got %v", rec.extents[0])
	}
	if last := rec.extents[len(rec.extents)-1]; last != EndExtent {
		t.Fatalf("expected final report at end extent, got %v", last)
	}
	for i := 1; i < len(rec.times); i++ {
		if rec.extents[i] > rec.extents[i-1] {
			t.Fatalf("extent moved backwards at %d: %v", i, rec.extents)
		}
		if i < len(rec.times)-1 && rec.times[i].Sub(rec.times[i-1]) < DefaultReportInterval {
			t.Fatalf("reports %d and %d closer than report interval", i-1, i)
		}
	}
	if got := rec.times[len(rec.times)-1].Sub(start); got != duration {
		t.Fatalf("completed after %v, want %v", got, duration)
	}
	// one initial report, one per interval strictly inside the run, one final
	maxReports := int(duration/DefaultReportInterval) + 2
	if len(rec.extents) > maxReports {
		t.Fatalf("too many reports: %d > %d", len(rec.extents), maxReports)
	}
}

func TestTransitionDriverReportsAndCompletesOnce(t *testing.T) {
	start := time.Unix(0, 0)
	clk := clock.NewFake(start)
	renderer := &transitionRenderer{supported: true}
	driver := NewTransitionDriver(renderer, Options{Clock: clk})
	rec := &recorder{clk: clk}

	driver.Animate(7, "hello", rec.report, rec.finish)
	if len(renderer.started) != 1 || renderer.started[0].ID != 7 || renderer.started[0].Duration != Duration("hello") {
		t.Fatalf("renderer not handed the transition: %+v", renderer.started)
	}

	clk.Advance(20 * time.Second)
	assertRun(t, rec, Duration("hello"), start)
	if clk.Pending() != 0 {
		t.Fatalf("expected no timers left, got %d", clk.Pending())
	}
}

func TestSamplingDriverReportsAndCompletesOnce(t *testing.T) {
	start := time.Unix(0, 0)
	clk := clock.NewFake(start)
	driver := NewSamplingDriver(Options{Clock: clk, FrameInterval: 16 * time.Millisecond})
	rec := &recorder{clk: clk}

	text := strings.Repeat("b", 15)
	driver.Animate(1, text, rec.report, rec.finish)
	clk.Advance(20 * time.Second)

	if rec.done != 1 {
		t.Fatalf("expected done once, got %d", rec.done)
	}
	if rec.extents[len(rec.extents)-1] != EndExtent {
		t.Fatalf("expected final end extent")
	}
	// completion lands on the first frame at or after the duration
	elapsed := rec.times[len(rec.times)-1].Sub(start)
	if elapsed < Duration(text) || elapsed >= Duration(text)+16*time.Millisecond {
		t.Fatalf("completed after %v, want within one frame of %v", elapsed, Duration(text))
	}
	for i := 1; i < len(rec.times)-1; i++ {
		if rec.times[i].Sub(rec.times[i-1]) < DefaultReportInterval {
			t.Fatalf("reports closer than report interval at %d", i)
		}
	}
	if clk.Pending() != 0 {
		t.Fatalf("expected no timers left, got %d", clk.Pending())
	}
}

func TestStopPreventsFurtherCallbacks(t *testing.T) {
	for _, name := range []string{StrategyTransition, StrategySampling} {
		t.Run(name, func(t *testing.T) {
			clk := clock.NewFake(time.Unix(0, 0))
			driver, err := Select(name, &transitionRenderer{supported: true}, Options{Clock: clk})
			if err != nil {
				t.Fatalf("Select: %v", err)
			}
			rec := &recorder{clk: clk}
			anim := driver.Animate(1, "x", rec.report, rec.finish)
			clk.Advance(time.Second)
			anim.Stop()
			anim.Stop()
			before := len(rec.extents)

			clk.Advance(30 * time.Second)
			if len(rec.extents) != before || rec.done != 0 {
				t.Fatalf("callbacks after stop: reports %d -> %d, done %d", before, len(rec.extents), rec.done)
			}
			if clk.Pending() != 0 {
				t.Fatalf("expected timers cancelled, got %d pending", clk.Pending())
			}
		})
	}
}

func TestStopFromReportCallbackHoldingLock(t *testing.T) {
	for _, name := range []string{StrategyTransition, StrategySampling} {
		t.Run(name, func(t *testing.T) {
			clk := clock.NewFake(time.Unix(0, 0))
			driver, err := Select(name, &transitionRenderer{supported: true}, Options{Clock: clk})
			if err != nil {
				t.Fatalf("Select: %v", err)
			}

			var (
				mu      sync.Mutex
				anim    Animation
				reports int
				done    int
			)
			report := func(float64) {
				mu.Lock()
				defer mu.Unlock()
				reports++
				if anim != nil {
					anim.Stop()
				}
			}
			finish := func() {
				mu.Lock()
				defer mu.Unlock()
				done++
			}
			started := driver.Animate(1, "x", report, finish)
			mu.Lock()
			anim = started
			mu.Unlock()

			clk.Advance(30 * time.Second)
			mu.Lock()
			defer mu.Unlock()
			if done != 0 {
				t.Fatalf("done fired after stop from a report callback")
			}
			if reports == 0 {
				t.Fatal("expected at least one report before stop")
			}
			if clk.Pending() != 0 {
				t.Fatalf("expected timers cancelled, got %d pending", clk.Pending())
			}
		})
	}
}

func TestSelect(t *testing.T) {
	opts := Options{Clock: clock.NewFake(time.Unix(0, 0))}
	tests := []struct {
		name     string
		strategy string
		renderer any
		want     string
		wantErr  bool
	}{
		{name: "auto capable", strategy: "auto", renderer: &transitionRenderer{supported: true}, want: StrategyTransition},
		{name: "auto declines", strategy: "auto", renderer: &transitionRenderer{supported: false}, want: StrategySampling},
		{name: "auto plain", strategy: "", renderer: struct{}{}, want: StrategySampling},
		{name: "forced sampling", strategy: "Sampling", renderer: &transitionRenderer{supported: true}, want: StrategySampling},
		{name: "forced transition unsupported", strategy: "transition", renderer: struct{}{}, wantErr: true},
		{name: "unknown", strategy: "css", renderer: nil, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			driver, err := Select(tc.strategy, tc.renderer, opts)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Select: %v", err)
			}
			if driver.Name() != tc.want {
				t.Fatalf("got %s, want %s", driver.Name(), tc.want)
			}
		})
	}
}
