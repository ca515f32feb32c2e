// Package bridge exposes the producer-facing entry points as plain Go
// functions over a process-wide Adapter, for linking into a non-Go host
// process. The actual cgo //export shim lives in
// cmd/bridgeshim, since cgo export comments are only honored in package
// main; this package holds the logic that shim calls into, so it stays
// unit-testable without a cgo build.
package bridge

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/mattn/go-pointer"

	"github.com/lowlatency/framepacer/integration"
)

var (
	mu      sync.RWMutex
	adapter *integration.Adapter
)

// Init installs the process-wide Adapter that WaitAndBeginFrame and
// SetTargetFrameTime operate on. Must be called once before either is used
// from a foreign runtime.
func Init(a *integration.Adapter) {
	mu.Lock()
	adapter = a
	mu.Unlock()
}

// WaitAndBeginFrame performs the full producer tick against the installed
// Adapter. A no-op if Init has not been called yet (defensive, since a
// foreign host may call this before Go-side setup completes).
func WaitAndBeginFrame() {
	mu.RLock()
	a := adapter
	mu.RUnlock()
	if a == nil {
		return
	}
	a.Tick()
}

// SetTargetFrameTime sets the FPS floor on the installed Adapter's pacer.
func SetTargetFrameTime(nanoseconds uint64) {
	mu.RLock()
	a := adapter
	mu.RUnlock()
	if a == nil {
		return
	}
	a.SetTargetFrameTime(nanoseconds)
}

// hookState is the Go-side state a patched engine-tick trampoline needs to
// recover across the C callback boundary: which original function pointer
// to chain to after WaitAndBeginFrame runs.
type hookState struct {
	originalFn uintptr
	calls      atomic.Uint64
}

// hookHandles tracks minted pointer.Save handles so UninstallHook can
// release them; indexed by the original function address the hook chains
// to.
var hookHandles sync.Map // map[uintptr]unsafe.Pointer

// InstallHook mints an opaque handle for a hookState wrapping
// originalFnAddr, following the same mattn/go-pointer pattern
// ushitora-anqou-aqboy/window/sdl.go uses to hand a Go closure's address
// across a C callback boundary. The returned handle is the value that must
// be passed as the trampoline's user-data argument. No code in this module
// performs the machine-code patch that routes an engine tick through
// TrampolineEntry; cmd/bridgeshim exports only WaitAndBeginFrame and
// SetTargetFrameTime.
func InstallHook(originalFnAddr uintptr) unsafe.Pointer {
	state := &hookState{originalFn: originalFnAddr}
	handle := pointer.Save(state)
	hookHandles.Store(originalFnAddr, handle)
	return handle
}

// UninstallHook releases the handle minted by InstallHook for
// originalFnAddr, if any.
func UninstallHook(originalFnAddr uintptr) {
	if h, ok := hookHandles.LoadAndDelete(originalFnAddr); ok {
		pointer.Unref(h.(unsafe.Pointer))
	}
}

// TrampolineEntry is the function the patched engine-tick jump target calls.
// handle must be the unsafe.Pointer previously returned by InstallHook. It
// runs WaitAndBeginFrame, then returns the original function address so the
// caller's assembly stub can chain to it.
func TrampolineEntry(handle unsafe.Pointer) uintptr {
	state := pointer.Restore(handle).(*hookState)
	state.calls.Add(1)
	WaitAndBeginFrame()
	return state.originalFn
}
