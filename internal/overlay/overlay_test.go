package overlay_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"danmaku/internal/clock"
	"danmaku/internal/danmaku"
	"danmaku/internal/motion"
	"danmaku/internal/overlay"
	"danmaku/internal/player"
	"danmaku/internal/settings"
	"danmaku/internal/testsupport"
	"danmaku/internal/track"
	"danmaku/internal/translate"
)

var epoch = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type backend struct {
	mu      sync.Mutex
	systems []string
	users   []string
	reply   func(user string) (string, error)
}

func (b *backend) Complete(_ context.Context, system, user string) (string, error) {
	b.mu.Lock()
	b.systems = append(b.systems, system)
	b.users = append(b.users, user)
	reply := b.reply
	b.mu.Unlock()
	if reply != nil {
		return reply(user)
	}
	return user + "||哈哈", nil
}

func (b *backend) calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.users...)
}

func (b *backend) lastSystem() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.systems[len(b.systems)-1]
}

type sink struct {
	mu    sync.Mutex
	shown []string
}

func (s *sink) FragmentShown(v danmaku.View) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shown = append(s.shown, v.Text)
}

func (s *sink) FragmentMoved(int64, float64) {}

func (s *sink) FragmentCompleted(int64) {}

func (s *sink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.shown)
}

type fixture struct {
	clock    *clock.Fake
	backend  *backend
	sink     *sink
	pipeline *translate.Pipeline
	playback *player.Playback
	store    *settings.Store
	overlay  *overlay.Overlay
	lockPath string
}

func newFixture(t *testing.T, cues ...testsupport.Cue) *fixture {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	srt := testsupport.WriteSRT(t, filepath.Join(testsupport.BaseDir(cfg), "video.en.srt"), cues...)

	f := &fixture{
		clock:    clock.NewFake(epoch),
		backend:  &backend{},
		sink:     &sink{},
		store:    testsupport.MustOpenSettings(t, cfg),
		lockPath: cfg.LockPath(),
	}
	f.pipeline = translate.New(translate.DefaultConfig(), f.backend, translate.WithClock(f.clock))
	driver := motion.NewSamplingDriver(motion.Options{Clock: f.clock})
	manager := danmaku.NewManager(danmaku.Config{}, track.New(track.DefaultLanes), driver, f.sink,
		danmaku.WithClock(f.clock))
	f.playback = player.NewPlayback(f.clock, 1, 0)

	ov, err := overlay.New(overlay.Config{Language: "en", Retention: 2 * time.Second}, overlay.Deps{
		Pipeline: f.pipeline,
		Manager:  manager,
		Service:  player.NewFileService(map[string]string{"en": srt}, nil),
		Playback: f.playback,
		Store:    f.store,
	},
		overlay.WithClock(f.clock),
		overlay.WithDispatcher(func(fn func()) { fn() }),
		overlay.WithLock(f.lockPath),
	)
	if err != nil {
		t.Fatalf("overlay.New: %v", err)
	}
	f.overlay = ov
	return f
}

func (f *fixture) start(t *testing.T) {
	t.Helper()
	if err := f.overlay.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(f.overlay.Stop)
}

func TestNewRequiresCollaborators(t *testing.T) {
	if _, err := overlay.New(overlay.Config{}, overlay.Deps{}); err == nil {
		t.Fatal("expected error for missing deps")
	}
}

func TestOverlayRequestsEachDisplayedLineOnce(t *testing.T) {
	f := newFixture(t,
		testsupport.Cue{Start: time.Second, End: 3 * time.Second, Text: "Hello"},
		testsupport.Cue{Start: 5 * time.Second, End: 6 * time.Second, Text: "World"},
	)
	f.start(t)
	if f.overlay.SessionID() == "" {
		t.Fatal("expected a session id")
	}

	f.clock.Advance(time.Second)
	if got := f.backend.calls(); len(got) != 1 || got[0] != "Hello" {
		t.Fatalf("expected one request for Hello, got %v", got)
	}
	if f.sink.count() != 1 {
		t.Fatalf("expected first fragment immediately, got %d", f.sink.count())
	}

	f.clock.Advance(time.Second)
	if f.sink.count() != 2 {
		t.Fatalf("expected second fragment after emit interval, got %d", f.sink.count())
	}

	// Past the cue end the retained line must not be requested again.
	f.clock.Advance(2 * time.Second)
	if got := f.backend.calls(); len(got) != 1 {
		t.Fatalf("retained line re-requested: %v", got)
	}

	f.clock.Advance(time.Second)
	if got := f.backend.calls(); len(got) != 2 || got[1] != "World" {
		t.Fatalf("expected World request at 5s, got %v", got)
	}

	stats := f.overlay.Stats()
	if stats.Requests != 2 || stats.Delivered != 2 || stats.Language != "en" || stats.Cues != 2 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestOverlayKeepsLastDisplayedCues(t *testing.T) {
	f := newFixture(t, testsupport.Cue{Start: time.Second, End: 2 * time.Second, Text: "Hello"})
	f.start(t)

	f.clock.Advance(10 * time.Second)
	displayed := f.overlay.Displayed()
	if len(displayed) != 1 || displayed[0].Text != "Hello" {
		t.Fatalf("expected last displayed cue to persist, got %+v", displayed)
	}
}

func TestOverlayPausedPlaybackSuspendsRequests(t *testing.T) {
	f := newFixture(t, testsupport.Cue{Start: 0, End: 10 * time.Second, Text: "Hello"})
	f.start(t)

	if paused := f.overlay.TogglePause(); !paused {
		t.Fatal("expected pause")
	}
	f.clock.Advance(2 * time.Second)
	if got := f.backend.calls(); len(got) != 0 {
		t.Fatalf("paused overlay requested %v", got)
	}

	f.overlay.TogglePause()
	f.clock.Advance(time.Second)
	if got := f.backend.calls(); len(got) != 1 {
		t.Fatalf("expected request after resume, got %v", got)
	}
}

func TestOverlayDropsErrorResults(t *testing.T) {
	f := newFixture(t, testsupport.Cue{Start: 0, End: 10 * time.Second, Text: "Hello"})
	f.backend.reply = func(string) (string, error) { return "", errors.New("boom") }
	f.start(t)

	f.clock.Advance(translate.DefaultRetryDelay + time.Second)
	if f.sink.count() != 0 {
		t.Fatalf("error results must not reach the screen, shown %d", f.sink.count())
	}
	if got := f.backend.calls(); len(got) != 2 {
		t.Fatalf("expected one retry, got %d calls", len(got))
	}
	if stats := f.overlay.Stats(); stats.Dropped != 1 || stats.Delivered != 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestOverlayStyleChangeRerequestsDisplayedLines(t *testing.T) {
	f := newFixture(t, testsupport.Cue{Start: 0, End: 30 * time.Second, Text: "Hello"})
	f.start(t)

	f.clock.Advance(time.Second)
	f.clock.Advance(2 * time.Second)
	if err := f.overlay.SetStyle(context.Background(), translate.StyleMeme); err != nil {
		t.Fatalf("SetStyle: %v", err)
	}

	if got := f.backend.calls(); len(got) != 2 {
		t.Fatalf("expected re-request after style change, got %v", got)
	}
	meme, _ := translate.Lookup(translate.StyleMeme)
	if f.backend.lastSystem() != meme.Instruction {
		t.Fatal("re-request should use the new style")
	}
	key, rev, err := f.store.Style(context.Background())
	if err != nil || key != "MEME" || rev != 1 {
		t.Fatalf("style not persisted: %q %d %v", key, rev, err)
	}

	// The overlay's own write must not be replayed by the poller.
	f.clock.Advance(2 * time.Second)
	if got := f.backend.calls(); len(got) != 2 {
		t.Fatalf("unexpected extra requests %v", got)
	}
}

func TestOverlayPicksUpExternalStyleChanges(t *testing.T) {
	f := newFixture(t)
	testsupport.SaveStyle(t, f.store, "academic")
	f.start(t)
	if f.pipeline.Style() != translate.StyleAcademic {
		t.Fatalf("persisted style not restored, got %s", f.pipeline.Style())
	}

	testsupport.SaveStyle(t, f.store, "MOVIE")
	f.clock.Advance(overlay.DefaultStylePollInterval)
	if f.pipeline.Style() != translate.StyleMovie {
		t.Fatalf("external change not applied, got %s", f.pipeline.Style())
	}

	testsupport.SaveStyle(t, f.store, "bogus")
	f.clock.Advance(overlay.DefaultStylePollInterval)
	if f.pipeline.Style() != translate.StyleMovie {
		t.Fatalf("invalid persisted style applied, got %s", f.pipeline.Style())
	}
}

func TestOverlaySingleInstanceLock(t *testing.T) {
	f := newFixture(t)
	f.start(t)

	other, err := overlay.New(overlay.Config{}, overlay.Deps{
		Pipeline: translate.New(translate.DefaultConfig(), &backend{}),
		Manager:  danmaku.NewManager(danmaku.Config{}, track.New(2), motion.NewSamplingDriver(motion.Options{}), nil),
		Service:  player.NewStub(nil),
		Playback: player.NewPlayback(nil, 1, 0),
	}, overlay.WithLock(f.lockPath))
	if err != nil {
		t.Fatalf("overlay.New: %v", err)
	}
	if err := other.Start(context.Background()); !errors.Is(err, overlay.ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}

	f.overlay.Stop()
	if err := other.Start(context.Background()); err != nil {
		t.Fatalf("Start after release: %v", err)
	}
	other.Stop()
}

func TestOverlayStopCancelsTimers(t *testing.T) {
	f := newFixture(t, testsupport.Cue{Start: 0, End: 30 * time.Second, Text: "Hello"})
	f.start(t)
	f.clock.Advance(time.Second)

	f.overlay.Stop()
	if f.clock.Pending() != 0 {
		t.Fatalf("expected no pending timers after Stop, got %d", f.clock.Pending())
	}
	calls := len(f.backend.calls())
	f.clock.Advance(time.Minute)
	if len(f.backend.calls()) != calls {
		t.Fatal("requests issued after Stop")
	}
}
