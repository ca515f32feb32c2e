// Package fence implements FenceWaiter: a single-consumer worker, one per
// device, that drains a FIFO queue of completion markers and reports frame
// completion to a pacer.Pacer and idle.Tracker.
//
// Design:
//   - Queue push is bounded only by memory: a []completionItem guarded by a
//     mutex + sync.Cond, a FIFO slice rather than a single overwritten slot,
//     because fences must not be dropped.
//   - Shutdown: a running flag flips, the condition broadcasts, and Close()
//     joins via a sync.WaitGroup.
package fence

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/lowlatency/framepacer/pacer"
)

// CompletionSignal is anything that can be blocked on until a piece of GPU
// work finishes. Graphics backends implement this over a real fence or
// semaphore; tests implement it over a channel.
type CompletionSignal interface {
	// Wait blocks until the GPU work this signal tracks has completed and
	// returns the completion wall-clock timestamp (nanoseconds, monotonic).
	Wait() uint64
	// Release returns the underlying fence/semaphore object to its pool.
	Release()
}

// Overlay receives per-frame latency reports. observability.Overlay
// implements this; nil is a valid, no-op value.
type Overlay interface {
	ReportLatency(deviceID uuid.UUID, frameID, latency, frameTime uint64)
}

type completionItem struct {
	frameID uint64
	signal  CompletionSignal
}

// Waiter is a per-device FenceWaiter.
type Waiter struct {
	deviceID uuid.UUID
	pacer    pacer.Pacer
	idle     idleEnder
	overlay  Overlay
	log      *slog.Logger

	mu      sync.Mutex
	cond    *sync.Cond
	queue   []completionItem
	running bool
	wg      sync.WaitGroup
}

// idleEnder is the subset of *idle.Tracker that fence depends on, kept
// narrow to avoid a direct import cycle concern and to make Waiter testable
// without a real Tracker.
type idleEnder interface {
	End(frameID uint64)
}

// New creates a Waiter for one device, identified by deviceID for logging
// and overlay correlation. overlay may be nil.
func New(deviceID uuid.UUID, p pacer.Pacer, tracker idleEnder, overlay Overlay) *Waiter {
	w := &Waiter{
		deviceID: deviceID,
		pacer:    p,
		idle:     tracker,
		overlay:  overlay,
		log:      slog.Default().With("device", deviceID),
		running:  true,
	}
	w.cond = sync.NewCond(&w.mu)
	w.wg.Add(1)
	go w.worker()
	return w
}

// Push enqueues a completion marker for frameID. Never blocks.
func (w *Waiter) Push(frameID uint64, signal CompletionSignal) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	w.queue = append(w.queue, completionItem{frameID: frameID, signal: signal})
	w.cond.Signal()
}

// Close stops the worker goroutine and waits for it to exit. Items still in
// the queue are discarded; the host graphics API is responsible for having
// waited for outstanding work before tearing down the device.
func (w *Waiter) Close() {
	w.mu.Lock()
	w.running = false
	w.cond.Broadcast()
	w.mu.Unlock()
	w.wg.Wait()
}

func (w *Waiter) worker() {
	defer w.wg.Done()

	for {
		w.mu.Lock()
		for len(w.queue) == 0 && w.running {
			w.cond.Wait()
		}
		if !w.running {
			w.mu.Unlock()
			return
		}
		item := w.queue[0]
		w.queue = w.queue[1:]
		w.mu.Unlock()

		ts := item.signal.Wait()
		item.signal.Release()

		latency, frameTime := w.pacer.EndFrame(item.frameID, ts)
		w.idle.End(item.frameID)

		if latency == pacer.Unavailable {
			w.log.Debug("fence completion for unknown frame", "frame_id", item.frameID)
			continue
		}
		if w.overlay != nil {
			w.overlay.ReportLatency(w.deviceID, item.frameID, latency, frameTime)
		}
	}
}
