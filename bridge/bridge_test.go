package bridge_test

import (
	"testing"

	"github.com/google/uuid"

	"github.com/lowlatency/framepacer/bridge"
	"github.com/lowlatency/framepacer/fence"
	"github.com/lowlatency/framepacer/idle"
	"github.com/lowlatency/framepacer/integration"
	"github.com/lowlatency/framepacer/pacer"
)

type noopSignal struct{}

func (noopSignal) Wait() uint64 { return 0 }
func (noopSignal) Release()     {}

type noopBackend struct{}

func (noopBackend) SubmitSignalWorkUnit() fence.CompletionSignal { return noopSignal{} }

func TestWaitAndBeginFrameWithoutInitIsNoop(t *testing.T) {
	// Intentionally does not call bridge.Init; must not panic.
	bridge.WaitAndBeginFrame()
	bridge.SetTargetFrameTime(16_666_667)
}

func TestWaitAndBeginFrameDrivesInstalledAdapter(t *testing.T) {
	p := pacer.New()
	tr := idle.New()
	w := fence.New(uuid.New(), p, tr, nil)
	defer w.Close()

	var now uint64
	a := integration.New(p, tr, w, noopBackend{}, func() uint64 { return now }, true)
	bridge.Init(a)

	bridge.WaitAndBeginFrame()
	bridge.SetTargetFrameTime(16_666_667)

	if got := p.TargetFrameTime(); got != 16_666_667 {
		t.Fatalf("TargetFrameTime = %d, want 16_666_667", got)
	}
}

func TestInstallAndUninstallHookRoundTrips(t *testing.T) {
	const fakeOriginal = uintptr(0xdeadbeef)
	handle := bridge.InstallHook(fakeOriginal)
	if handle == nil {
		t.Fatalf("InstallHook returned nil handle")
	}

	orig := bridge.TrampolineEntry(handle)
	if orig != fakeOriginal {
		t.Fatalf("TrampolineEntry returned %x, want %x", orig, fakeOriginal)
	}

	bridge.UninstallHook(fakeOriginal)
}
