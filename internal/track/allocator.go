package track

import (
	"log/slog"
	"math/rand/v2"
	"sync"

	"danmaku/internal/logging"
)

const (
	// DefaultLanes is the lane count when none is configured.
	DefaultLanes = 10
	// DefaultSaturation is the extent above which a lane counts as occupied.
	DefaultSaturation = 80.0

	// TrackStart, TrackHeight, and TrackMargin position lanes vertically in
	// percent of the container height.
	TrackStart  = 10.0
	TrackHeight = 6.0
	TrackMargin = 1.0
)

// Top returns the vertical position of a lane in percent.
func Top(lane int) float64 {
	return TrackStart + float64(lane)*(TrackHeight+TrackMargin)
}

// Option customizes an Allocator.
type Option func(*Allocator)

// WithSaturation overrides the saturation threshold.
func WithSaturation(threshold float64) Option {
	return func(a *Allocator) {
		a.saturation = threshold
	}
}

// WithRand injects the random source used for saturated picks.
func WithRand(r *rand.Rand) Option {
	return func(a *Allocator) {
		if r != nil {
			a.rng = r
		}
	}
}

// WithLogger sets the logger used for out-of-range diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Allocator) {
		a.logger = logging.NewComponentLogger(logger, "track")
	}
}

// Allocator is safe for concurrent use.
type Allocator struct {
	mu         sync.Mutex
	extents    []float64
	saturation float64
	rng        *rand.Rand
	logger     *slog.Logger
}

// New builds an allocator with n lanes, all free.
func New(n int, opts ...Option) *Allocator {
	if n <= 0 {
		n = DefaultLanes
	}
	a := &Allocator{
		extents:    make([]float64, n),
		saturation: DefaultSaturation,
		rng:        rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		logger:     logging.NewComponentLogger(nil, "track"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Len returns the number of lanes.
func (a *Allocator) Len() int {
	return len(a.extents)
}

// Assign returns the lane with the smallest extent, lowest index on ties.
// When every lane exceeds the saturation threshold a uniformly random lane is
// returned instead.
func (a *Allocator) Assign() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	best := 0
	for i := 1; i < len(a.extents); i++ {
		if a.extents[i] < a.extents[best] {
			best = i
		}
	}
	if a.extents[best] > a.saturation {
		lane := a.rng.IntN(len(a.extents))
		a.logger.Debug("all lanes saturated, picking random lane", logging.Lane(lane), logging.Float64("min_extent", a.extents[best]))
		return lane
	}
	return best
}

// Update records the latest extent for a lane. Last write wins.
func (a *Allocator) Update(lane int, extent float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.inRange(lane, "update") {
		return
	}
	a.extents[lane] = extent
}

// Release marks a lane free.
func (a *Allocator) Release(lane int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.inRange(lane, "release") {
		return
	}
	a.extents[lane] = 0
}

// Sweep frees every lane that is not in claimed and returns how many lanes
// it reset.
func (a *Allocator) Sweep(claimed map[int]struct{}) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	reset := 0
	for lane, extent := range a.extents {
		if _, ok := claimed[lane]; ok {
			continue
		}
		if extent != 0 {
			a.extents[lane] = 0
			reset++
		}
	}
	return reset
}

// Reset frees every lane.
func (a *Allocator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	clear(a.extents)
}

// Snapshot returns a copy of the lane extents.
func (a *Allocator) Snapshot() []float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]float64, len(a.extents))
	copy(out, a.extents)
	return out
}

func (a *Allocator) inRange(lane int, op string) bool {
	if lane >= 0 && lane < len(a.extents) {
		return true
	}
	a.logger.Warn("lane index out of range",
		logging.String("operation", op),
		logging.Lane(lane),
		logging.Int("lanes", len(a.extents)),
	)
	return false
}
