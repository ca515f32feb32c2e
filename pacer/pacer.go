// Package pacer implements frame-pacing for latency-sensitive render loops:
// predicting how long a producer should wait before starting the next frame
// so that GPU work arrives just in time, instead of queuing up and adding
// latency.
//
// Design:
//   - Interface (not concrete type) so a no-op or recording implementation
//     can stand in during tests
//   - Lifecycle: New() → GetWaitTarget()/BeginFrame()/EndFrame() per frame →
//     Reset() on recalibration
//   - Thread-safe: all methods safe for concurrent use
//
// Implementation is in internal/state (hidden from clients).
package pacer

import (
	"sync"

	"github.com/lowlatency/framepacer/pacer/internal/state"
)

// Unavailable is returned by EndFrame in place of a latency or frame-time
// measurement when none could be computed (cold start, or the frame id no
// longer has an occupied ring slot).
const Unavailable = state.Unavailable

// Pacer is the public interface producers and the integration layer drive.
//
// Contract:
//   - GetWaitTarget(frameID) must be called before BeginFrame(frameID, ...)
//   - BeginFrame(frameID, ...) must be called exactly once per frame id
//   - EndFrame(frameID, ...) must be called exactly once per begun frame id,
//     once its GPU work has been confirmed complete (a fence signal)
type Pacer interface {
	// GetWaitTarget returns the absolute monotonic timestamp at which the
	// producer should be allowed to begin frameID. Returns 0 before the
	// first EndFrame has ever been observed.
	GetWaitTarget(frameID uint64) uint64

	// BeginFrame records that the producer is starting frameID at
	// timestamp, having been released at the target previously returned by
	// GetWaitTarget(frameID) (0 if cold start).
	BeginFrame(frameID, target, timestamp uint64)

	// EndFrame records that frameID's GPU work completed at timestamp.
	// Returns (Unavailable, Unavailable) if frameID has no matching,
	// still-occupied BeginFrame.
	EndFrame(frameID, timestamp uint64) (latency, frameTime uint64)

	// Reset clears all estimator and ring-buffer state, preserving only the
	// configured target frame time. Called on recalibration.
	Reset()

	// SetTargetFrameTime sets the FPS floor enforced in EndFrame; 0
	// disables it.
	SetTargetFrameTime(ns uint64)

	// TargetFrameTime returns the currently configured FPS floor.
	TargetFrameTime() uint64
}

type pacer struct {
	mu sync.Mutex
	s  *state.State
}

// New creates a new Pacer with no observed frames yet.
func New() Pacer {
	return &pacer{s: state.New()}
}

func (p *pacer) GetWaitTarget(frameID uint64) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.s.GetWaitTarget(frameID)
}

func (p *pacer) BeginFrame(frameID, target, timestamp uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.s.BeginFrame(frameID, target, timestamp)
}

func (p *pacer) EndFrame(frameID, timestamp uint64) (latency, frameTime uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.s.EndFrame(frameID, timestamp)
}

func (p *pacer) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.s.Reset()
}

func (p *pacer) SetTargetFrameTime(ns uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.s.SetTargetFrameTime(ns)
}

func (p *pacer) TargetFrameTime() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.s.TargetFrameTime()
}
