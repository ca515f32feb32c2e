// Package observability implements the ambient reporting surfaces: a
// best-effort overlay bridge, a process resource snapshot, and
// frame/projection tracing spans.
package observability

import (
	"log/slog"
	"sync"

	"github.com/ebitengine/purego"
	"github.com/google/uuid"
)

// overlaySetMetrics mirrors a MangoHud-style
// overlay_SetMetrics(const char **names, const float *values, size_t count)
// exported symbol.
type overlaySetMetrics func(names **byte, values *float32, count uintptr)

// rtldNoload mirrors dlfcn.h's RTLD_NOLOAD on Linux; purego does not export
// this constant itself.
const rtldNoload = 0x00004

// Overlay reports per-frame latency to an already-loaded overlay library,
// located via late-bound dynamic symbol lookup (no cgo): equivalent to
// dlopen(..., RTLD_NOW|RTLD_NOLOAD) followed by dlsym. If no such library is
// loaded, or its expected symbol is absent, Overlay is silently a no-op: it
// never fails construction and never panics at report time.
type Overlay struct {
	mu        sync.Mutex
	setMetric func(name string, value float32)
}

// OpenOverlay attempts to bind libName's overlay_SetMetrics symbol. name
// lookup failures of any kind (library not loaded, symbol missing, wrong
// signature) are logged at Debug and produce a no-op Overlay rather than an
// error, since an overlay is cosmetic and must never be load-bearing.
//
// If events is non-nil and the bind succeeds, EventOverlayAttached is
// published; a failed bind (no-op Overlay) never publishes, since nothing
// attached. events may be nil.
func OpenOverlay(libName, symbol string, events *EventBus) (o *Overlay) {
	o = &Overlay{}

	defer func() {
		if r := recover(); r != nil {
			slog.Debug("overlay symbol bind failed, running as no-op", "lib", libName, "symbol", symbol, "panic", r)
		}
	}()

	handle, err := purego.Dlopen(libName, purego.RTLD_NOW|rtldNoload)
	if err != nil {
		slog.Debug("overlay library not loaded, running as no-op", "lib", libName, "err", err)
		return o
	}

	var setMetrics overlaySetMetrics
	purego.RegisterLibFunc(&setMetrics, handle, symbol)

	o.setMetric = func(name string, value float32) {
		b := append([]byte(name), 0)
		namePtr := &b[0]
		setMetrics(&namePtr, &value, 1)
	}

	if events != nil {
		events.Publish(Event{Kind: EventOverlayAttached})
	}
	return o
}

// Close detaches the overlay. It never unbinds the library (purego has no
// safe dlclose story for a symbol another process may still be using); it
// only publishes EventOverlayDetached on events, and only if the overlay
// had actually attached. events may be nil. Safe to call on a nil Overlay.
func (o *Overlay) Close(events *EventBus) {
	if o == nil || events == nil {
		return
	}
	o.mu.Lock()
	attached := o.setMetric != nil
	o.mu.Unlock()
	if attached {
		events.Publish(Event{Kind: EventOverlayDetached})
	}
}

// ReportLatency reports a frame's latency and frame-time to the bound
// overlay, if any. Implements fence.Overlay.
func (o *Overlay) ReportLatency(deviceID uuid.UUID, frameID, latency, frameTime uint64) {
	if o == nil {
		return
	}
	o.mu.Lock()
	setMetric := o.setMetric
	o.mu.Unlock()
	if setMetric == nil {
		return
	}
	setMetric("lfx_latency_ms", float32(latency)/1e6)
	if frameTime != ^uint64(0) {
		setMetric("lfx_frame_time_ms", float32(frameTime)/1e6)
	}
}

// ReportProcessSnapshot forwards a ProcessSnapshot to the bound overlay, if
// any, alongside the per-frame latency metrics so a stutter can be
// attributed to this process's own CPU/RSS rather than the OS scheduler.
func (o *Overlay) ReportProcessSnapshot(snap ProcessSnapshot) {
	if o == nil {
		return
	}
	o.mu.Lock()
	setMetric := o.setMetric
	o.mu.Unlock()
	if setMetric == nil {
		return
	}
	setMetric("lfx_proc_cpu_pct", float32(snap.CPUPercent))
	setMetric("lfx_proc_rss_mb", float32(snap.RSSBytes)/(1<<20))
}
