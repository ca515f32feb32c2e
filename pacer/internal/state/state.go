// Package state implements the pacer's frame-tracking state machine: the
// ring buffers, projection bookkeeping and estimator wiring described by the
// wait-target/begin-frame/end-frame contract. It has no knowledge of
// threads, clocks, or graphics APIs: it is handed nanosecond timestamps and
// frame ids by its caller and is otherwise pure bookkeeping.
//
// Every exported method requires external mutual exclusion; State has no
// lock of its own (see pacer.Pacer, which supplies one).
package state

import (
	"math"

	"github.com/lowlatency/framepacer/pacer/internal/ewma"
)

const (
	// ringSize bounds the number of simultaneously in-flight frames. Going
	// past it implies producer/renderer desync, which the integration layer
	// is expected to detect and recover from via recalibration.
	ringSize = 16

	alphaLatency    = 0.3
	alphaThroughput = 0.3
	alphaCorrection = 0.5

	upFactor   = 1.10
	downFactor = 0.985

	minFrameTimeNS int64 = 1_000_000  // 1ms
	maxFrameTimeNS int64 = 50_000_000 // 50ms

	upPhase   = 0
	downPhase = 1
)

// Unavailable is returned in place of a latency or frame-time measurement
// when none could be computed, and used internally as the "empty slot"
// sentinel for the frame-id rings.
const Unavailable uint64 = math.MaxUint64

// State is the pacer's per-process frame-tracking state. The zero value is
// not valid; use New.
type State struct {
	latencyEst        *ewma.Estimator
	invThroughputEst  *ewma.Estimator
	projCorrectionEst *ewma.Estimator

	frameBeginTS  [ringSize]uint64
	frameBeginIDs [ringSize]uint64
	projectedTS   [ringSize]int64
	compApplied   [ringSize]int64

	projectionBase    uint64
	projectionBaseSet bool

	prevBeginID uint64

	prevEndID           uint64
	prevEndSet          bool
	prevEndTS           uint64
	prevPredictionError int64

	targetFrameTime uint64
}

// New returns a freshly initialized State with no observed frames yet.
func New() *State {
	s := &State{
		latencyEst:        ewma.New(alphaLatency, false),
		invThroughputEst:  ewma.New(alphaThroughput, false),
		projCorrectionEst: ewma.New(alphaCorrection, true),
	}
	for i := range s.frameBeginIDs {
		s.frameBeginIDs[i] = Unavailable
	}
	return s
}

// Reset replaces the state with a freshly initialized instance, preserving
// only TargetFrameTime. Callers must also reset any external frame counters
// they maintain (see integration.Adapter.recalibrate).
func (s *State) Reset() {
	preserved := s.targetFrameTime
	*s = *New()
	s.targetFrameTime = preserved
}

// SetTargetFrameTime sets the FPS floor enforced in EndFrame; 0 disables it.
func (s *State) SetTargetFrameTime(ns uint64) {
	s.targetFrameTime = ns
}

// TargetFrameTime returns the currently configured FPS floor.
func (s *State) TargetFrameTime() uint64 {
	return s.targetFrameTime
}

func roundInt64(x float64) int64 {
	return int64(math.Round(x))
}

func clampInt64(x, lo, hi int64) int64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
