package danmaku

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"danmaku/internal/clock"
	"danmaku/internal/logging"
	"danmaku/internal/motion"
	"danmaku/internal/splitter"
	"danmaku/internal/track"
)

const (
	DefaultMaxVisible      = 12
	DefaultEmitInterval    = 1000 * time.Millisecond
	DefaultCompletionDelay = 100 * time.Millisecond
	DefaultSweepInterval   = 2000 * time.Millisecond
)

// Config holds the manager's capacity and timing. Zero fields take the
// package defaults. A negative CompletionDelay retires fragments as soon as
// their motion completes.
type Config struct {
	MaxVisible      int
	EmitInterval    time.Duration
	CompletionDelay time.Duration
	SweepInterval   time.Duration
	Delimiter       string
}

func (c Config) withDefaults() Config {
	if c.MaxVisible <= 0 {
		c.MaxVisible = DefaultMaxVisible
	}
	if c.EmitInterval <= 0 {
		c.EmitInterval = DefaultEmitInterval
	}
	if c.CompletionDelay == 0 {
		c.CompletionDelay = DefaultCompletionDelay
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = DefaultSweepInterval
	}
	if c.Delimiter == "" {
		c.Delimiter = splitter.DefaultDelimiter
	}
	return c
}

// Stats counts lifecycle events since the manager was created.
type Stats struct {
	Created    int
	Retired    int
	Evicted    int
	Duplicates int
	Superseded int
	Rejected   int
	Visible    int
	Busy       bool
}

// Option customizes a Manager.
type Option func(*Manager)

// WithClock overrides the time source.
func WithClock(c clock.Clock) Option {
	return func(m *Manager) {
		if c != nil {
			m.clock = c
		}
	}
}

// WithLogger sets the manager logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logging.NewComponentLogger(logger, "danmaku")
	}
}

// WithDecorator overrides fragment decoration.
func WithDecorator(d *Decorator) Option {
	return func(m *Manager) {
		if d != nil {
			m.decorator = d
		}
	}
}

type fragment struct {
	Fragment
	anim   motion.Animation
	retire clock.Timer
}

type batch struct {
	items []string
	next  int
}

// Manager owns the visible fragment set for one overlay.
type Manager struct {
	cfg       Config
	clock     clock.Clock
	lanes     *track.Allocator
	driver    motion.Driver
	sink      Sink
	decorator *Decorator
	logger    *slog.Logger

	mu         sync.Mutex
	fragments  []*fragment
	owners     map[int]int64
	active     bool
	busy       bool
	batch      *batch
	batchTimer clock.Timer
	pending    string
	hasPending bool
	lastResult string
	sweep      clock.Timer
	started    bool
	stopped    bool
	stats      Stats
}

// NewManager wires a manager to its lane pool, motion driver, and sink.
// Managers start active.
func NewManager(cfg Config, lanes *track.Allocator, driver motion.Driver, sink Sink, opts ...Option) *Manager {
	if sink == nil {
		sink = NopSink{}
	}
	m := &Manager{
		cfg:       cfg.withDefaults(),
		clock:     clock.Real(),
		lanes:     lanes,
		driver:    driver,
		sink:      sink,
		decorator: NewDecorator(nil),
		logger:    logging.NewComponentLogger(nil, "danmaku"),
		owners:    make(map[int]int64),
		active:    true,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start begins the periodic lane sweep.
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started || m.stopped {
		return
	}
	m.started = true
	m.sweep = m.clock.Every(m.cfg.SweepInterval, m.sweepLanes)
}

// Stop cancels every timer and animation and unmounts all fragments. A
// stopped manager ignores further input.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return
	}
	m.stopped = true
	if m.sweep != nil {
		m.sweep.Stop()
	}
	if m.batchTimer != nil {
		m.batchTimer.Stop()
	}
	m.batch = nil
	m.busy = false
	m.hasPending = false
	for _, f := range m.fragments {
		m.halt(f)
		f.State = StateRetired
		m.sink.FragmentCompleted(f.ID)
	}
	m.fragments = nil
	clear(m.owners)
	m.lanes.Reset()
}

// SetActive toggles whether new results are accepted. Fragments already on
// screen keep moving.
func (m *Manager) SetActive(active bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = active
	if !active {
		m.hasPending = false
	}
}

// AddFragment creates a single fragment from text. It returns false when the
// text is empty, a batch is draining, or the manager is stopped.
func (m *Manager) AddFragment(text string) (Fragment, bool) {
	text = strings.TrimSpace(text)
	m.mu.Lock()
	if text == "" || m.busy || m.stopped {
		m.stats.Rejected++
		m.mu.Unlock()
		return Fragment{}, false
	}
	f := m.addLocked(text)
	snapshot := f.Fragment
	m.mu.Unlock()

	m.animate(f)
	return snapshot, true
}

// Submit hands a pipeline result to the manager. It returns true when the
// result started displaying now. A result identical to the previously
// accepted one is suppressed. While a batch drains, only the most recent
// submission is remembered and is displayed when the batch finishes.
func (m *Manager) Submit(result string) bool {
	m.mu.Lock()
	if m.stopped || !m.active || strings.TrimSpace(result) == "" {
		m.mu.Unlock()
		return false
	}
	if m.busy {
		if m.hasPending {
			m.stats.Superseded++
		}
		m.pending = result
		m.hasPending = true
		m.mu.Unlock()
		return false
	}
	created, ok := m.submitLocked(result)
	m.mu.Unlock()

	for _, f := range created {
		m.animate(f)
	}
	return ok
}

// submitLocked splits result and either adds one fragment or starts a batch.
func (m *Manager) submitLocked(result string) ([]*fragment, bool) {
	if result == m.lastResult {
		m.stats.Duplicates++
		m.logger.Debug("duplicate result suppressed", logging.String("result", result))
		return nil, false
	}
	parts := splitter.Split(result, m.cfg.Delimiter)
	if len(parts) == 0 {
		return nil, false
	}
	m.lastResult = result
	if len(parts) == 1 {
		return []*fragment{m.addLocked(parts[0])}, true
	}

	m.busy = true
	m.batch = &batch{items: parts, next: 1}
	m.batchTimer = m.clock.AfterFunc(m.cfg.EmitInterval, m.emitNext)
	return []*fragment{m.addLocked(parts[0])}, true
}

// emitNext adds the next batch item, or ends the batch one interval after the
// last item and replays the pending result.
func (m *Manager) emitNext() {
	m.mu.Lock()
	if m.stopped || m.batch == nil {
		m.mu.Unlock()
		return
	}
	var created []*fragment
	if b := m.batch; b.next < len(b.items) {
		created = append(created, m.addLocked(b.items[b.next]))
		b.next++
		m.batchTimer = m.clock.AfterFunc(m.cfg.EmitInterval, m.emitNext)
	} else {
		m.batch = nil
		m.batchTimer = nil
		m.busy = false
		if m.hasPending {
			pending := m.pending
			m.pending = ""
			m.hasPending = false
			if m.active {
				created, _ = m.submitLocked(pending)
			}
		}
	}
	m.mu.Unlock()

	for _, f := range created {
		m.animate(f)
	}
}

// addLocked places a new fragment on a lane and enforces capacity.
func (m *Manager) addLocked(text string) *fragment {
	deco := m.decorator.Decorate(text)
	lane := m.lanes.Assign()
	f := &fragment{Fragment: Fragment{
		ID:        nextID(),
		Text:      deco.Text,
		Color:     deco.Color,
		FontSize:  deco.FontSize,
		Lane:      lane,
		Top:       track.Top(lane),
		Extent:    motion.StartExtent,
		State:     StateCreated,
		CreatedAt: m.clock.Now(),
	}}
	m.lanes.Update(lane, motion.StartExtent)
	m.owners[lane] = f.ID
	m.fragments = append(m.fragments, f)
	f.State = StateVisible
	m.stats.Created++
	m.sink.FragmentShown(f.View())
	m.logger.Debug("fragment shown", logging.FragmentID(f.ID), logging.Lane(lane), logging.String("text", f.Text))

	for len(m.fragments) > m.cfg.MaxVisible {
		m.evictLocked()
	}
	return f
}

// animate starts motion outside the manager lock; drivers may report
// synchronously.
func (m *Manager) animate(f *fragment) {
	id := f.ID
	anim := m.driver.Animate(id, f.Text,
		func(extent float64) { m.onReport(id, extent) },
		func() { m.onDone(id) },
	)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped || f.State != StateVisible || m.find(id) < 0 {
		anim.Stop()
		return
	}
	f.anim = anim
}

func (m *Manager) onReport(id int64, extent float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := m.find(id)
	if idx < 0 {
		return
	}
	f := m.fragments[idx]
	f.Extent = extent
	if m.owners[f.Lane] == id {
		m.lanes.Update(f.Lane, extent)
	}
	m.sink.FragmentMoved(id, extent)
}

func (m *Manager) onDone(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := m.find(id)
	if idx < 0 || m.stopped {
		return
	}
	f := m.fragments[idx]
	if f.State != StateVisible {
		return
	}
	f.State = StateCompleting
	if m.cfg.CompletionDelay < 0 {
		m.retireLocked(f)
		return
	}
	f.retire = m.clock.AfterFunc(m.cfg.CompletionDelay, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.stopped || f.State != StateCompleting {
			return
		}
		m.retireLocked(f)
	})
}

func (m *Manager) retireLocked(f *fragment) {
	m.removeLocked(f)
	m.stats.Retired++
	m.logger.Debug("fragment retired", logging.FragmentID(f.ID), logging.Lane(f.Lane))
}

// evictLocked drops the oldest fragment that has finished moving, or the
// oldest fragment overall when every fragment is still animating.
func (m *Manager) evictLocked() {
	victim := m.fragments[0]
	for _, f := range m.fragments {
		if f.State == StateCompleting {
			victim = f
			break
		}
	}
	m.halt(victim)
	m.removeLocked(victim)
	m.stats.Evicted++
	m.logger.Debug("fragment evicted", logging.FragmentID(victim.ID), logging.String("state", victim.State.String()))
}

// removeLocked unmounts f and hands its lane to the newest remaining
// claimant, or frees it when none is left.
func (m *Manager) removeLocked(f *fragment) {
	idx := m.find(f.ID)
	if idx < 0 {
		return
	}
	m.fragments = append(m.fragments[:idx], m.fragments[idx+1:]...)
	f.State = StateRetired

	if m.owners[f.Lane] == f.ID {
		var heir *fragment
		for i := len(m.fragments) - 1; i >= 0; i-- {
			if m.fragments[i].Lane == f.Lane {
				heir = m.fragments[i]
				break
			}
		}
		if heir != nil {
			m.owners[f.Lane] = heir.ID
			m.lanes.Update(f.Lane, heir.Extent)
		} else {
			delete(m.owners, f.Lane)
			m.lanes.Release(f.Lane)
		}
	}
	m.sink.FragmentCompleted(f.ID)
}

func (m *Manager) halt(f *fragment) {
	if f.anim != nil {
		f.anim.Stop()
	}
	if f.retire != nil {
		f.retire.Stop()
	}
}

func (m *Manager) sweepLanes() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return
	}
	claimed := make(map[int]struct{}, len(m.fragments))
	for _, f := range m.fragments {
		claimed[f.Lane] = struct{}{}
	}
	if reset := m.lanes.Sweep(claimed); reset > 0 {
		m.logger.Debug("stale lanes reset", logging.Int("lanes", reset))
	}
}

func (m *Manager) find(id int64) int {
	for i, f := range m.fragments {
		if f.ID == id {
			return i
		}
	}
	return -1
}

// Visible returns the on-screen fragments in insertion order.
func (m *Manager) Visible() []View {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]View, 0, len(m.fragments))
	for _, f := range m.fragments {
		out = append(out, f.View())
	}
	return out
}

// Stats returns lifecycle counters.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.stats
	s.Visible = len(m.fragments)
	s.Busy = m.busy
	return s
}
