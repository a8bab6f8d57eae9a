package render

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"danmaku/internal/clock"
	"danmaku/internal/danmaku"
	"danmaku/internal/logging"
	"danmaku/internal/motion"
)

var (
	_ danmaku.Sink             = (*Terminal)(nil)
	_ motion.TransitionCapable = (*Terminal)(nil)
)

type item struct {
	view  danmaku.View
	trans *motion.Transition
	style tcell.Style
}

// Terminal renders fragments onto a tcell screen.
type Terminal struct {
	screen tcell.Screen
	clock  clock.Clock
	logger *slog.Logger

	mu     sync.Mutex
	items  map[int64]*item
	status string
	frames int
}

// TerminalOption customizes a Terminal.
type TerminalOption func(*Terminal)

// WithClock overrides the clock used to interpolate transitions.
func WithClock(c clock.Clock) TerminalOption {
	return func(t *Terminal) {
		if c != nil {
			t.clock = c
		}
	}
}

// WithLogger sets the renderer logger.
func WithLogger(logger *slog.Logger) TerminalOption {
	return func(t *Terminal) {
		t.logger = logging.NewComponentLogger(logger, "render")
	}
}

// NewTerminal wraps an initialized screen.
func NewTerminal(screen tcell.Screen, opts ...TerminalOption) *Terminal {
	t := &Terminal{
		screen: screen,
		clock:  clock.Real(),
		logger: logging.NewNop(),
		items:  make(map[int64]*item),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// OpenScreen creates and initializes the terminal screen.
func OpenScreen() (tcell.Screen, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.SetStyle(tcell.StyleDefault)
	screen.HideCursor()
	return screen, nil
}

func (t *Terminal) SupportsTransitions() bool { return true }

// StartTransition attaches a transition to a shown fragment; Draw
// interpolates it. Transitions for fragments already completed are dropped.
func (t *Terminal) StartTransition(tr motion.Transition) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if it, ok := t.items[tr.ID]; ok {
		it.trans = &tr
	}
}

func (t *Terminal) FragmentShown(v danmaku.View) {
	t.mu.Lock()
	defer t.mu.Unlock()
	it, ok := t.items[v.ID]
	if !ok {
		it = &item{}
		t.items[v.ID] = it
	}
	it.view = v
	it.style = styleFor(v)
}

func (t *Terminal) FragmentMoved(id int64, extent float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if it, ok := t.items[id]; ok {
		it.view.Extent = extent
	}
}

func (t *Terminal) FragmentCompleted(id int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.items, id)
}

// SetStatus replaces the bottom status line.
func (t *Terminal) SetStatus(status string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = status
}

// Len returns the number of fragments on screen.
func (t *Terminal) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.items)
}

// Draw renders one frame.
func (t *Terminal) Draw() {
	t.mu.Lock()
	defer t.mu.Unlock()

	width, height := t.screen.Size()
	t.screen.Clear()
	if width <= 0 || height <= 0 {
		return
	}

	now := t.clock.Now()
	ids := make([]int64, 0, len(t.items))
	for id := range t.items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	// The last row is reserved for the status line.
	area := max(height-1, 1)
	for _, id := range ids {
		it := t.items[id]
		if it.view.Text == "" {
			continue
		}
		extent := it.view.Extent
		if it.trans != nil {
			extent = interpolate(*it.trans, now)
		}
		col := int(math.Round(extent * float64(width) / 100))
		row := int(it.view.Top * float64(area) / 100)
		if row >= area {
			row = area - 1
		}
		drawText(t.screen, col, row, width, it.view.Text, it.style)
	}

	if t.status != "" && height > 1 {
		drawText(t.screen, 0, height-1, width, t.status, tcell.StyleDefault.Reverse(true))
	}
	t.screen.Show()
	t.frames++
}

// Run draws a frame every interval until ctx is done.
func (t *Terminal) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = motion.DefaultFrameInterval
	}
	ticker := t.clock.Every(interval, t.Draw)
	defer ticker.Stop()
	<-ctx.Done()
}

// Events forwards screen events until ctx is done or the screen is finalized.
func (t *Terminal) Events(ctx context.Context) <-chan tcell.Event {
	out := make(chan tcell.Event)
	go func() {
		defer close(out)
		for {
			ev := t.screen.PollEvent()
			if ev == nil {
				return
			}
			if _, ok := ev.(*tcell.EventResize); ok {
				t.screen.Sync()
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Close restores the terminal.
func (t *Terminal) Close() {
	t.mu.Lock()
	frames := t.frames
	t.mu.Unlock()
	t.screen.Fini()
	t.logger.Debug("terminal closed", logging.Int("frames", frames))
}

func interpolate(tr motion.Transition, now time.Time) float64 {
	if tr.Duration <= 0 {
		return tr.To
	}
	progress := float64(now.Sub(tr.Start)) / float64(tr.Duration)
	progress = min(max(progress, 0), 1)
	return tr.From + (tr.To-tr.From)*progress
}

func drawText(screen tcell.Screen, col, row, width int, text string, style tcell.Style) {
	for _, r := range text {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if col >= 0 && col+w <= width {
			screen.SetContent(col, row, r, nil, style)
		}
		col += w
		if col >= width {
			return
		}
	}
}

func styleFor(v danmaku.View) tcell.Style {
	style := tcell.StyleDefault
	if v.Color != "" {
		style = style.Foreground(tcell.GetColor(v.Color))
	}
	// Larger fonts render bold since a terminal cell cannot scale.
	if v.FontSize != "" && v.FontSize != "1.0em" {
		style = style.Bold(true)
	}
	return style
}
