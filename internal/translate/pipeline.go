package translate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"danmaku/internal/clock"
	"danmaku/internal/logging"
	"danmaku/internal/services"
)

const (
	DefaultMinInterval = 1500 * time.Millisecond
	DefaultRetryDelay  = 3000 * time.Millisecond
)

// Result sentinels. Every failure result starts with ErrorPrefix.
const (
	ErrorPrefix     = "翻译出错"
	ResultTimeout   = ErrorPrefix + "：请求超时"
	ResultNetwork   = ErrorPrefix + "：网络异常"
	ResultMalformed = ErrorPrefix + "：无效的API响应"
	ResultFailed    = ErrorPrefix
)

// IsErrorResult reports whether s is a failure sentinel.
func IsErrorResult(s string) bool {
	return strings.HasPrefix(s, ErrorPrefix)
}

// Backend completes one chat exchange.
type Backend interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Config holds pipeline timing and the initial style.
type Config struct {
	MinInterval time.Duration
	RetryDelay  time.Duration
	Style       StyleKey
}

func (c Config) withDefaults() Config {
	if c.MinInterval < 0 {
		c.MinInterval = 0
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = DefaultRetryDelay
	}
	if _, ok := Lookup(c.Style); !ok {
		c.Style = DefaultStyle
	}
	return c
}

// DefaultConfig returns the stock timings with DefaultStyle.
func DefaultConfig() Config {
	return Config{
		MinInterval: DefaultMinInterval,
		RetryDelay:  DefaultRetryDelay,
		Style:       DefaultStyle,
	}
}

// Stats counts pipeline outcomes since creation.
type Stats struct {
	Dispatched int
	CacheHits  int
	Limited    int
	Failures   int
	Retries    int
	Cached     int
}

// StyleListener observes a committed style change.
type StyleListener func(previous, current StyleKey)

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithClock overrides the time source used by the limiter and retries.
func WithClock(c clock.Clock) Option {
	return func(p *Pipeline) {
		if c != nil {
			p.clock = c
		}
	}
}

// WithLogger sets the pipeline logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logging.NewComponentLogger(logger, "translate")
	}
}

type listenerEntry struct {
	id int
	fn StyleListener
}

// Pipeline caches, rate-limits, and retries backend completions for the
// current style.
type Pipeline struct {
	cfg     Config
	backend Backend
	clock   clock.Clock
	logger  *slog.Logger

	mu           sync.Mutex
	style        StyleKey
	generation   uint64
	cache        map[string]string
	lastDispatch time.Time
	dispatched   bool
	listeners    []listenerEntry
	nextListener int
	retries      map[int]clock.Timer
	nextRetry    int
	stopped      bool
	stats        Stats
}

// New builds a pipeline on top of backend.
func New(cfg Config, backend Backend, opts ...Option) *Pipeline {
	cfg = cfg.withDefaults()
	p := &Pipeline{
		cfg:     cfg,
		backend: backend,
		clock:   clock.Real(),
		logger:  logging.NewNop(),
		style:   cfg.Style,
		cache:   make(map[string]string),
		retries: make(map[int]clock.Timer),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Translate returns the caption result for text under the current style.
// Blank input and rate-limited calls yield "", backend failures yield a
// sentinel.
func (p *Pipeline) Translate(ctx context.Context, text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return ""
	}
	if cached, ok := p.cache[text]; ok {
		p.stats.CacheHits++
		p.mu.Unlock()
		return cached
	}
	now := p.clock.Now()
	if p.dispatched && now.Sub(p.lastDispatch) < p.cfg.MinInterval {
		p.stats.Limited++
		p.mu.Unlock()
		p.logger.Debug("translation rate limited", logging.Duration("since_last", now.Sub(p.lastDispatch)))
		return ""
	}
	p.lastDispatch = now
	p.dispatched = true
	p.stats.Dispatched++
	style := p.style
	generation := p.generation
	p.mu.Unlock()

	def, _ := Lookup(style)
	ctx = services.WithStyle(ctx, string(style))
	raw, err := p.backend.Complete(ctx, def.Instruction, text)
	if err != nil {
		p.mu.Lock()
		p.stats.Failures++
		p.mu.Unlock()
		result := sentinelFor(err)
		logging.WarnWithContext(
			logging.WithContext(ctx, p.logger),
			"translation failed",
			"translation_failed",
			logging.String("result", result),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check llm api key and network access"),
		)
		return result
	}

	result := strings.TrimSpace(raw)
	if result == "" {
		return ""
	}
	p.mu.Lock()
	if generation == p.generation && !p.stopped {
		p.cache[text] = result
	}
	p.mu.Unlock()
	return result
}

// Request translates text and hands a usable result to deliver. An error
// result is not delivered; one retry is scheduled after RetryDelay and its
// result is delivered whatever it is. Request blocks for the first attempt.
func (p *Pipeline) Request(ctx context.Context, text string, deliver func(string)) {
	result := p.Translate(ctx, text)
	if ctx.Err() != nil {
		return
	}
	if !IsErrorResult(result) {
		if deliver != nil {
			deliver(result)
		}
		return
	}
	p.scheduleRetry(ctx, text, deliver)
}

func (p *Pipeline) scheduleRetry(ctx context.Context, text string, deliver func(string)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	id := p.nextRetry
	p.nextRetry++
	p.stats.Retries++
	p.retries[id] = p.clock.AfterFunc(p.cfg.RetryDelay, func() {
		p.mu.Lock()
		_, live := p.retries[id]
		delete(p.retries, id)
		stopped := p.stopped
		p.mu.Unlock()
		if !live || stopped || ctx.Err() != nil {
			return
		}
		result := p.Translate(ctx, text)
		if deliver != nil {
			deliver(result)
		}
	})
	p.logger.Debug("translation retry scheduled", logging.Duration("delay", p.cfg.RetryDelay))
}

// Style returns the current style key.
func (p *Pipeline) Style() StyleKey {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.style
}

// SetStyle switches the style, drops every cached result, and notifies
// listeners. Setting the current style does nothing.
func (p *Pipeline) SetStyle(key StyleKey) error {
	if _, ok := Lookup(key); !ok {
		return fmt.Errorf("%w: unknown style %q", services.ErrValidation, key)
	}

	p.mu.Lock()
	if p.style == key {
		p.mu.Unlock()
		return nil
	}
	previous := p.style
	p.style = key
	p.generation++
	clear(p.cache)
	listeners := make([]listenerEntry, len(p.listeners))
	copy(listeners, p.listeners)
	p.mu.Unlock()

	p.logger.Info("caption style changed",
		logging.String("previous", string(previous)),
		logging.Style(string(key)),
	)
	for _, entry := range listeners {
		p.notify(entry, previous, key)
	}
	return nil
}

func (p *Pipeline) notify(entry listenerEntry, previous, current StyleKey) {
	defer func() {
		if r := recover(); r != nil {
			logging.WarnWithContext(p.logger, "style listener panicked", "style_listener_panic",
				logging.Int("listener", entry.id),
				logging.String("panic", fmt.Sprint(r)),
			)
		}
	}()
	entry.fn(previous, current)
}

// OnStyleChange registers fn and returns a func that unregisters it.
func (p *Pipeline) OnStyleChange(fn StyleListener) (cancel func()) {
	if fn == nil {
		return func() {}
	}
	p.mu.Lock()
	id := p.nextListener
	p.nextListener++
	p.listeners = append(p.listeners, listenerEntry{id: id, fn: fn})
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			for i, entry := range p.listeners {
				if entry.id == id {
					p.listeners = append(p.listeners[:i], p.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// Stats returns a snapshot of pipeline counters.
func (p *Pipeline) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.stats
	s.Cached = len(p.cache)
	return s
}

// Stop cancels pending retries. Later calls to Translate return "".
func (p *Pipeline) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	p.stopped = true
	for id, timer := range p.retries {
		timer.Stop()
		delete(p.retries, id)
	}
	clear(p.cache)
}

func sentinelFor(err error) string {
	switch {
	case errors.Is(err, services.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return ResultTimeout
	case errors.Is(err, services.ErrNetwork):
		return ResultNetwork
	case errors.Is(err, services.ErrMalformedResponse):
		return ResultMalformed
	default:
		return ResultFailed
	}
}
