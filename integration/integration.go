// Package integration implements the producer-facing entry points: the
// engine tick (WaitAndBeginFrame) and present interception, plus the
// failsafe clamp and recalibration logic that keep a single mispredicted
// target or a desynced counter pair from freezing or permanently
// mispacing the application.
package integration

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/lowlatency/framepacer/fence"
	"github.com/lowlatency/framepacer/idle"
	"github.com/lowlatency/framepacer/observability"
	"github.com/lowlatency/framepacer/pacer"
)

const (
	// maxDrift is the largest (counter - counterRender) gap tolerated
	// before a desync is assumed and recalibration is armed.
	maxDrift = 16

	failsafeCap        = 50 * time.Millisecond
	failsafeTripLimit  = 5
	recalibrationDrain = 200 * time.Millisecond
)

// PresentBackend abstracts the graphics-API present path so Adapter is
// testable without a real GPU; cmd/demo implements it against SDL2.
type PresentBackend interface {
	// SubmitSignalWorkUnit injects an empty work unit on the present queue,
	// waiting on the app's present-ready semaphores and re-signalling them
	// so ordering with the real present is preserved, and returns a
	// CompletionSignal observable once that work unit retires.
	SubmitSignalWorkUnit() fence.CompletionSignal
}

// Clock returns the current monotonic time in nanoseconds.
type Clock func() uint64

// Adapter wires a pacer.Pacer, idle.Tracker and fence.Waiter into the two
// producer-facing entry points. The zero value is not valid; use New.
type Adapter struct {
	pacer   pacer.Pacer
	idle    *idle.Tracker
	waiter  *fence.Waiter
	backend PresentBackend
	clock   Clock
	placebo bool

	counter       atomic.Uint64
	counterRender atomic.Uint64
	failsafeTrips atomic.Uint64

	events  *observability.EventBus
	recalMu sync.Mutex
}

// New creates an Adapter with both frame counters at zero, so the first
// Tick() (which increments before use) begins frame id 1, matching the
// first Present() (which also increments before use) assigning render id 1.
// Keeping the two id spaces aligned from frame one is what lets idle.Tracker
// gate a producer frame on the matching frame's completion rather than on
// frame count alone.
func New(p pacer.Pacer, tracker *idle.Tracker, waiter *fence.Waiter, backend PresentBackend, clock Clock, placebo bool) *Adapter {
	a := &Adapter{pacer: p, idle: tracker, waiter: waiter, backend: backend, clock: clock, placebo: placebo}
	a.counter.Store(0)
	a.counterRender.Store(0)
	return a
}

// SetEventBus attaches an EventBus that Tick() publishes
// EventRecalibrationArmed / EventFailsafeTripped notifications to. Safe to
// call with nil to detach (the default; events are skipped entirely).
func (a *Adapter) SetEventBus(bus *observability.EventBus) {
	a.recalMu.Lock()
	a.events = bus
	a.recalMu.Unlock()
}

// SetPlacebo toggles placebo mode at runtime (driven by config hot reload).
func (a *Adapter) SetPlacebo(placebo bool) {
	a.recalMu.Lock()
	a.placebo = placebo
	a.recalMu.Unlock()
}

// SetTargetFrameTime forwards to the underlying pacer's FPS floor.
func (a *Adapter) SetTargetFrameTime(ns uint64) {
	a.pacer.SetTargetFrameTime(ns)
}

// ArmRecalibration forces the same recovery Tick() triggers on drift, for
// the case where image acquisition reports a lost surface or resize and the
// producer frequently skips the subsequent present. Present() itself never
// calls it; nothing in this package does.
func (a *Adapter) ArmRecalibration() {
	a.recalibrate()
}

func (a *Adapter) needsRecalibration(counter, counterRender uint64) bool {
	if counter <= counterRender {
		return true
	}
	return counter-counterRender > maxDrift
}

// recalibrate sleeps to drain in-flight work, resets both frame counters and
// the pacer's own state.
func (a *Adapter) recalibrate() {
	a.recalMu.Lock()
	events := a.events
	a.recalMu.Unlock()

	if events != nil {
		events.Publish(observability.Event{Kind: observability.EventRecalibrationArmed, FrameID: a.counter.Load()})
	}

	a.recalMu.Lock()
	defer a.recalMu.Unlock()
	time.Sleep(recalibrationDrain)
	a.counter.Store(1)
	a.counterRender.Store(0)
	a.failsafeTrips.Store(0)
	a.pacer.Reset()
}

// Tick performs the engine-tick entry point (WaitAndBeginFrame): increments
// the producer frame counter, detects recalibration conditions, applies the
// failsafe clamp to the computed wait target, waits via the idle tracker,
// and records BeginFrame. Returns the frame id it began.
func (a *Adapter) Tick() uint64 {
	counter := a.counter.Add(1)
	counterRender := a.counterRender.Load()

	if a.needsRecalibration(counter, counterRender) {
		a.recalibrate()
		counter = a.counter.Load()
	}

	frameID := counter
	target := a.pacer.GetWaitTarget(frameID)

	if a.placebo {
		a.failsafeTrips.Store(0)
		a.idle.SleepAndBegin(frameID, 0)
		beginTS := a.clock()
		a.pacer.BeginFrame(frameID, target, beginTS)
		return frameID
	}

	now := a.clock()
	var wait time.Duration
	if target > now {
		wait = time.Duration(target-now) * time.Nanosecond
	}

	if wait > failsafeCap {
		wait = failsafeCap
		trips := a.failsafeTrips.Add(1)

		a.recalMu.Lock()
		events := a.events
		a.recalMu.Unlock()
		if events != nil {
			events.Publish(observability.Event{Kind: observability.EventFailsafeTripped, FrameID: frameID})
		}

		if trips >= failsafeTripLimit {
			a.recalibrate()

			// recalibrate() just reset the pacer and both counters; frameID,
			// target and wait were all computed against the pre-reset state
			// and must be re-derived the same way the drift branch above
			// does, or BeginFrame would write a ~1s forced correction into a
			// ring slot of a state that is supposed to be cold.
			counter = a.counter.Load()
			frameID = counter
			target = a.pacer.GetWaitTarget(frameID)
			now = a.clock()
			wait = 0
			if target > now {
				wait = time.Duration(target-now) * time.Nanosecond
			}
		}
	} else {
		a.failsafeTrips.Store(0)
	}

	a.idle.SleepAndBegin(frameID, wait)
	beginTS := a.clock()
	a.pacer.BeginFrame(frameID, target, beginTS)
	return frameID
}

// Present performs the present-interception entry point: increments the
// render frame counter, submits a signal work unit, and enqueues its
// completion marker into the FenceWaiter.
func (a *Adapter) Present() uint64 {
	frameID := a.counterRender.Add(1)
	sig := a.backend.SubmitSignalWorkUnit()
	a.waiter.Push(frameID, sig)
	return frameID
}
