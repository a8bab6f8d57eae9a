package player

import (
	"sync"
	"time"

	"danmaku/internal/clock"
)

// Playback simulates a player clock. Position advances with the wall clock
// scaled by speed while playing.
type Playback struct {
	clock clock.Clock

	mu       sync.Mutex
	anchor   time.Time
	base     time.Duration
	speed    float64
	paused   bool
	duration time.Duration
}

// NewPlayback starts a paused playback at position zero. A non-positive speed
// means 1x. duration bounds the position when positive.
func NewPlayback(c clock.Clock, speed float64, duration time.Duration) *Playback {
	if c == nil {
		c = clock.Real()
	}
	if speed <= 0 {
		speed = 1
	}
	return &Playback{
		clock:    c,
		anchor:   c.Now(),
		speed:    speed,
		paused:   true,
		duration: duration,
	}
}

// Position returns the current playback position.
func (p *Playback) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.positionLocked()
}

func (p *Playback) positionLocked() time.Duration {
	pos := p.base
	if !p.paused {
		elapsed := p.clock.Now().Sub(p.anchor)
		pos += time.Duration(float64(elapsed) * p.speed)
	}
	if p.duration > 0 && pos > p.duration {
		pos = p.duration
	}
	return pos
}

// Play resumes playback.
func (p *Playback) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.paused {
		return
	}
	p.anchor = p.clock.Now()
	p.paused = false
}

// Pause freezes the position.
func (p *Playback) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.paused {
		return
	}
	p.base = p.positionLocked()
	p.paused = true
}

// Toggle flips between playing and paused and reports whether playback is
// now paused.
func (p *Playback) Toggle() bool {
	if p.Paused() {
		p.Play()
		return false
	}
	p.Pause()
	return true
}

// Paused reports whether playback is paused.
func (p *Playback) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// Seek jumps to pos, clamped to [0, duration].
func (p *Playback) Seek(pos time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if pos < 0 {
		pos = 0
	}
	if p.duration > 0 && pos > p.duration {
		pos = p.duration
	}
	p.base = pos
	p.anchor = p.clock.Now()
}

// SetSpeed changes the playback rate without moving the position.
func (p *Playback) SetSpeed(speed float64) {
	if speed <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.base = p.positionLocked()
	p.anchor = p.clock.Now()
	p.speed = speed
}

// Ended reports whether a bounded playback reached its end.
func (p *Playback) Ended() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.duration > 0 && p.positionLocked() >= p.duration
}
