package overlay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"danmaku/internal/clock"
	"danmaku/internal/danmaku"
	"danmaku/internal/logging"
	"danmaku/internal/player"
	"danmaku/internal/services"
	"danmaku/internal/subtitles"
	"danmaku/internal/translate"
)

const (
	DefaultPollInterval      = 250 * time.Millisecond
	DefaultStylePollInterval = 1000 * time.Millisecond
)

// ErrAlreadyRunning is returned by Start when another overlay holds the lock.
var ErrAlreadyRunning = errors.New("another danmaku overlay is already running")

// StyleStore persists the selected style across processes.
type StyleStore interface {
	Style(ctx context.Context) (string, int64, error)
	SetStyle(ctx context.Context, key string) (int64, error)
}

// Config holds overlay timing and the initial caption language.
type Config struct {
	PollInterval      time.Duration
	StylePollInterval time.Duration
	Retention         time.Duration
	Language          string
}

func (c Config) withDefaults() Config {
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.StylePollInterval <= 0 {
		c.StylePollInterval = DefaultStylePollInterval
	}
	if c.Retention < 0 {
		c.Retention = 0
	}
	return c
}

// Deps are the collaborators an overlay drives. Store and Tracker are optional.
type Deps struct {
	Pipeline *translate.Pipeline
	Manager  *danmaku.Manager
	Service  player.Service
	Playback *player.Playback
	Store    StyleStore
	Tracker  *player.TimeTracker
}

// Stats counts overlay activity.
type Stats struct {
	Ticks     int
	Requests  int
	Delivered int
	Dropped   int
	Cues      int
	Language  string
	Style     translate.StyleKey
}

// Option customizes an Overlay.
type Option func(*Overlay)

// WithClock overrides the time source.
func WithClock(c clock.Clock) Option {
	return func(o *Overlay) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithLogger sets the overlay logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Overlay) {
		o.logger = logging.NewComponentLogger(logger, "overlay")
	}
}

// WithLock guards the session with an advisory lock at path.
func WithLock(path string) Option {
	return func(o *Overlay) {
		o.lockPath = path
	}
}

// WithSessionID overrides the generated session identifier.
func WithSessionID(id string) Option {
	return func(o *Overlay) {
		if id != "" {
			o.sessionID = id
		}
	}
}

// WithDispatcher replaces the goroutine used to run translation requests.
func WithDispatcher(dispatch func(func())) Option {
	return func(o *Overlay) {
		if dispatch != nil {
			o.dispatch = dispatch
		}
	}
}

// Overlay coordinates one danmaku session.
type Overlay struct {
	cfg       Config
	deps      Deps
	clock     clock.Clock
	logger    *slog.Logger
	dispatch  func(func())
	sessionID string
	lockPath  string
	lock      *flock.Flock

	mu          sync.Mutex
	ctx         context.Context
	cancel      context.CancelFunc
	running     bool
	cues        []subtitles.Cue
	lang        string
	displayed   []subtitles.Cue
	requested   map[string]struct{}
	styleRev    int64
	poll        clock.Timer
	stylePoll   clock.Timer
	cancelStyle func()
	wg          sync.WaitGroup
	stats       Stats
}

// New builds an overlay. Pipeline, Manager, Service, and Playback are required.
func New(cfg Config, deps Deps, opts ...Option) (*Overlay, error) {
	if deps.Pipeline == nil || deps.Manager == nil || deps.Service == nil || deps.Playback == nil {
		return nil, errors.New("overlay requires pipeline, manager, player service, and playback")
	}
	o := &Overlay{
		cfg:       cfg.withDefaults(),
		deps:      deps,
		clock:     clock.Real(),
		logger:    logging.NewNop(),
		dispatch:  func(f func()) { go f() },
		sessionID: uuid.NewString(),
		requested: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.With(logging.SessionID(o.sessionID))
	if o.lockPath != "" {
		o.lock = flock.New(o.lockPath)
	}
	return o, nil
}

// SessionID identifies this overlay run.
func (o *Overlay) SessionID() string { return o.sessionID }

// Start acquires the lock, loads subtitles, restores the persisted style, and
// begins sampling playback. Playback starts playing.
func (o *Overlay) Start(ctx context.Context) error {
	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return errors.New("overlay already started")
	}
	o.mu.Unlock()

	if o.lock != nil {
		ok, err := o.lock.TryLock()
		if err != nil {
			return fmt.Errorf("acquire lock: %w", err)
		}
		if !ok {
			return ErrAlreadyRunning
		}
	}

	ctx = services.WithSessionID(ctx, o.sessionID)
	runCtx, cancel := context.WithCancel(ctx)

	o.mu.Lock()
	o.ctx = runCtx
	o.cancel = cancel
	o.running = true
	o.mu.Unlock()

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		o.consumeEvents(runCtx)
	}()

	if err := o.deps.Service.Init(runCtx); err != nil {
		o.Stop()
		return fmt.Errorf("init player %s: %w", o.deps.Service.Name(), err)
	}
	o.loadLanguage(runCtx, o.cfg.Language)
	o.restoreStyle(runCtx)

	cancelStyle := o.deps.Pipeline.OnStyleChange(o.onStyleChange)
	o.deps.Manager.Start()
	o.deps.Playback.Play()
	if o.deps.Tracker != nil {
		o.deps.Tracker.Start()
	}

	o.mu.Lock()
	o.cancelStyle = cancelStyle
	o.poll = o.clock.Every(o.cfg.PollInterval, o.tick)
	if o.deps.Store != nil {
		o.stylePoll = o.clock.Every(o.cfg.StylePollInterval, o.syncStyle)
	}
	o.mu.Unlock()

	o.logger.Info("danmaku overlay started",
		logging.String(logging.FieldEventType, "overlay_started"),
		logging.String("player", o.deps.Service.Name()),
		logging.Style(string(o.deps.Pipeline.Style())),
		logging.String("lock", o.lockPath),
	)
	return nil
}

// Stop cancels every timer and in-flight request, clears the screen, and
// releases the lock.
func (o *Overlay) Stop() {
	o.mu.Lock()
	if !o.running {
		o.mu.Unlock()
		return
	}
	o.running = false
	if o.cancel != nil {
		o.cancel()
	}
	for _, t := range []clock.Timer{o.poll, o.stylePoll} {
		if t != nil {
			t.Stop()
		}
	}
	o.poll, o.stylePoll = nil, nil
	cancelStyle := o.cancelStyle
	o.cancelStyle = nil
	o.mu.Unlock()

	if cancelStyle != nil {
		cancelStyle()
	}
	if o.deps.Tracker != nil {
		o.deps.Tracker.Stop()
	}
	o.deps.Pipeline.Stop()
	o.deps.Manager.Stop()
	o.deps.Playback.Pause()
	o.wg.Wait()

	if o.lock != nil {
		if err := o.lock.Unlock(); err != nil {
			o.logger.Warn("failed to release overlay lock", logging.Error(err))
		}
	}
	o.logger.Info("danmaku overlay stopped", logging.String(logging.FieldEventType, "overlay_stopped"))
}

// SetStyle switches the caption style and persists it.
func (o *Overlay) SetStyle(ctx context.Context, key translate.StyleKey) error {
	if err := o.deps.Pipeline.SetStyle(key); err != nil {
		return err
	}
	if o.deps.Store == nil {
		return nil
	}
	rev, err := o.deps.Store.SetStyle(ctx, string(key))
	if err != nil {
		return fmt.Errorf("persist style: %w", err)
	}
	o.mu.Lock()
	o.styleRev = max(o.styleRev, rev)
	o.mu.Unlock()
	return nil
}

// TogglePause flips playback and reports whether it is now paused.
func (o *Overlay) TogglePause() bool {
	paused := o.deps.Playback.Toggle()
	o.deps.Manager.SetActive(!paused)
	return paused
}

// Stats returns a snapshot of overlay counters.
func (o *Overlay) Stats() Stats {
	o.mu.Lock()
	defer o.mu.Unlock()
	s := o.stats
	s.Cues = len(o.cues)
	s.Language = o.lang
	s.Style = o.deps.Pipeline.Style()
	return s
}

// Displayed returns the subtitle cues currently driving requests.
func (o *Overlay) Displayed() []subtitles.Cue {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]subtitles.Cue, len(o.displayed))
	copy(out, o.displayed)
	return out
}

func (o *Overlay) tick() {
	paused := o.deps.Playback.Paused()
	o.deps.Manager.SetActive(!paused)
	pos := o.deps.Playback.Position()

	o.mu.Lock()
	if !o.running {
		o.mu.Unlock()
		return
	}
	o.stats.Ticks++
	if paused {
		o.mu.Unlock()
		return
	}
	if window := subtitles.Window(o.cues, pos, o.cfg.Retention); len(window) > 0 {
		o.displayed = window
	}
	current := make(map[string]struct{}, len(o.displayed))
	var fresh []string
	for _, cue := range o.displayed {
		current[cue.Text] = struct{}{}
		if _, ok := o.requested[cue.Text]; !ok {
			fresh = append(fresh, cue.Text)
		}
	}
	o.requested = current
	ctx := o.ctx
	o.mu.Unlock()

	for _, text := range fresh {
		o.request(ctx, text)
	}
}

func (o *Overlay) request(ctx context.Context, text string) {
	o.mu.Lock()
	if !o.running {
		o.mu.Unlock()
		return
	}
	o.stats.Requests++
	o.wg.Add(1)
	o.mu.Unlock()

	o.dispatch(func() {
		defer o.wg.Done()
		o.deps.Pipeline.Request(ctx, text, o.deliver)
	})
}

func (o *Overlay) deliver(result string) {
	if result == "" || translate.IsErrorResult(result) {
		o.mu.Lock()
		o.stats.Dropped++
		o.mu.Unlock()
		return
	}
	o.deps.Manager.Submit(result)
	o.mu.Lock()
	o.stats.Delivered++
	o.mu.Unlock()
}

func (o *Overlay) onStyleChange(previous, current translate.StyleKey) {
	label := string(current)
	if def, ok := translate.Lookup(current); ok {
		label = def.Label
	}
	o.logger.Info("弹幕风格已切换: "+label,
		logging.String(logging.FieldEventType, "style_switched"),
		logging.String("previous", string(previous)),
		logging.Style(string(current)),
	)

	o.mu.Lock()
	if !o.running {
		o.mu.Unlock()
		return
	}
	texts := make([]string, 0, len(o.displayed))
	for _, cue := range o.displayed {
		texts = append(texts, cue.Text)
	}
	ctx := o.ctx
	o.mu.Unlock()

	for _, text := range texts {
		o.request(ctx, text)
	}
}

func (o *Overlay) restoreStyle(ctx context.Context) {
	if o.deps.Store == nil {
		return
	}
	raw, rev, err := o.deps.Store.Style(ctx)
	if err != nil {
		logging.WarnWithContext(o.logger, "failed to read persisted style", "style_read_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "starting with configured style"),
		)
		return
	}
	o.mu.Lock()
	o.styleRev = rev
	o.mu.Unlock()
	if raw == "" {
		return
	}
	o.applyStyle(raw)
}

func (o *Overlay) syncStyle() {
	o.mu.Lock()
	ctx := o.ctx
	running := o.running
	known := o.styleRev
	o.mu.Unlock()
	if !running {
		return
	}

	raw, rev, err := o.deps.Store.Style(ctx)
	if err != nil {
		o.logger.Debug("style poll failed", logging.Error(err))
		return
	}
	if rev <= known {
		return
	}
	o.mu.Lock()
	o.styleRev = rev
	o.mu.Unlock()
	o.applyStyle(raw)
}

func (o *Overlay) applyStyle(raw string) {
	key, err := translate.ParseStyle(raw)
	if err != nil {
		logging.WarnWithContext(o.logger, "ignoring persisted style", "style_invalid",
			logging.Style(raw),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "run danmaku style set with a listed key"),
		)
		return
	}
	if err := o.deps.Pipeline.SetStyle(key); err != nil {
		o.logger.Warn("apply style failed", logging.Error(err))
	}
}

func (o *Overlay) consumeEvents(ctx context.Context) {
	events := o.deps.Service.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			o.handleEvent(ctx, ev)
		}
	}
}

func (o *Overlay) handleEvent(ctx context.Context, ev player.Event) {
	switch ev.Kind {
	case player.EventCaptions:
		o.logger.Debug("captions available",
			logging.VideoID(ev.VideoID),
			logging.String("lang", ev.Lang),
			logging.String("url", ev.URL),
		)
	case player.EventLangChanged:
		o.loadLanguage(ctx, ev.Lang)
	case player.EventLoaded:
		o.logger.Debug("player loaded", logging.VideoID(ev.VideoID))
	}
}

func (o *Overlay) loadLanguage(ctx context.Context, lang string) {
	cues, err := o.deps.Service.Subtitles(ctx, lang)
	if err != nil {
		logging.WarnWithContext(o.logger, "failed to load subtitles", "subtitles_load_failed",
			logging.String("lang", lang),
			logging.Error(err),
			logging.String(logging.FieldImpact, "no danmaku until subtitles load"),
		)
		cues = nil
	}
	o.mu.Lock()
	o.cues = cues
	o.lang = lang
	o.displayed = nil
	o.requested = make(map[string]struct{})
	o.mu.Unlock()
	o.logger.Info("subtitles active", logging.String("lang", lang), logging.Int("cues", len(cues)))
}
