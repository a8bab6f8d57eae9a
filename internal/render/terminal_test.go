package render

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"danmaku/internal/clock"
	"danmaku/internal/danmaku"
	"danmaku/internal/motion"
)

var epoch = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newSimTerminal(t *testing.T, width, height int) (*Terminal, tcell.SimulationScreen, *clock.Fake) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("init screen: %v", err)
	}
	screen.SetSize(width, height)
	t.Cleanup(screen.Fini)
	fake := clock.NewFake(epoch)
	return NewTerminal(screen, WithClock(fake)), screen, fake
}

func runeAt(screen tcell.Screen, x, y int) rune {
	r, _, _, _ := screen.GetContent(x, y)
	return r
}

func TestTerminalDrawsFragmentAtExtent(t *testing.T) {
	term, screen, _ := newSimTerminal(t, 40, 11)
	term.FragmentShown(danmaku.View{ID: 1, Text: "hi", Top: 10, Extent: 50, Color: "#FF6B6B"})
	term.Draw()

	if runeAt(screen, 20, 1) != 'h' || runeAt(screen, 21, 1) != 'i' {
		t.Fatalf("fragment not drawn at column 20 row 1")
	}

	term.FragmentMoved(1, 0)
	term.Draw()
	if runeAt(screen, 0, 1) != 'h' || runeAt(screen, 20, 1) == 'h' {
		t.Fatal("fragment did not move to column 0")
	}

	term.FragmentCompleted(1)
	term.Draw()
	if runeAt(screen, 0, 1) == 'h' {
		t.Fatal("completed fragment still drawn")
	}
	if term.Len() != 0 {
		t.Fatalf("expected no items, got %d", term.Len())
	}
}

func TestTerminalInterpolatesTransitions(t *testing.T) {
	term, screen, fake := newSimTerminal(t, 40, 11)
	if !term.SupportsTransitions() {
		t.Fatal("terminal should support transitions")
	}
	term.FragmentShown(danmaku.View{ID: 7, Text: "go", Top: 10, Extent: motion.StartExtent})
	term.StartTransition(motion.Transition{ID: 7, From: 100, To: -200, Start: epoch, Duration: 10 * time.Second})

	fake.Advance(time.Second)
	term.Draw()
	// 100 - 300*0.1 = 70% of 40 columns.
	if runeAt(screen, 28, 1) != 'g' || runeAt(screen, 29, 1) != 'o' {
		t.Fatal("transition not interpolated to column 28")
	}

	fake.Advance(4 * time.Second)
	term.Draw()
	for x := range 40 {
		if runeAt(screen, x, 1) == 'g' {
			t.Fatalf("fragment should be off screen, found at column %d", x)
		}
	}
}

func TestTerminalIgnoresTransitionForCompletedFragment(t *testing.T) {
	term, _, _ := newSimTerminal(t, 40, 11)
	term.FragmentShown(danmaku.View{ID: 3, Text: "late", Top: 10, Extent: motion.StartExtent})
	term.FragmentCompleted(3)

	term.StartTransition(motion.Transition{ID: 3, From: 100, To: -200, Start: epoch, Duration: 10 * time.Second})
	term.StartTransition(motion.Transition{ID: 99, From: 100, To: -200, Start: epoch, Duration: 10 * time.Second})
	if term.Len() != 0 {
		t.Fatalf("transitions must not resurrect fragments, got %d items", term.Len())
	}
}

func TestTerminalWideRunesAndStatus(t *testing.T) {
	term, screen, _ := newSimTerminal(t, 20, 11)
	term.FragmentShown(danmaku.View{ID: 2, Text: "你好", Top: 17, Extent: 0})
	term.SetStatus("FUNNY")
	term.Draw()

	if runeAt(screen, 0, 1) != '你' || runeAt(screen, 2, 1) != '好' {
		t.Fatal("wide runes not laid out two columns apart")
	}
	if runeAt(screen, 0, 10) != 'F' || runeAt(screen, 4, 10) != 'Y' {
		t.Fatal("status line missing")
	}
}

func TestMotionSelectPicksTransitionDriverForTerminal(t *testing.T) {
	term, _, fake := newSimTerminal(t, 20, 11)
	driver, err := motion.Select(motion.StrategyAuto, term, motion.Options{Clock: fake})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if driver.Name() != motion.StrategyTransition {
		t.Fatalf("expected transition driver, got %s", driver.Name())
	}
}

func TestLogSinkCountsEvents(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	sink := NewLogSink(logger)

	sink.FragmentShown(danmaku.View{ID: 3, Text: "笑死", Lane: 2})
	sink.FragmentMoved(3, 10)
	sink.FragmentMoved(3, 0)
	sink.FragmentCompleted(3)

	shown, moves, completed := sink.Counts()
	if shown != 1 || moves != 2 || completed != 1 {
		t.Fatalf("unexpected counts %d %d %d", shown, moves, completed)
	}
	out := buf.String()
	if !strings.Contains(out, "text=笑死") || !strings.Contains(out, "component=render") {
		t.Fatalf("unexpected log output: %s", out)
	}
}
