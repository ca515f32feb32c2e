// Command demo is an SDL2-backed present loop exercising the full pacing
// pipeline end to end: engine tick, present interception, fence
// completion, all feeding back into the pacer.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/veandco/go-sdl2/sdl"
	"golang.org/x/sys/unix"

	"github.com/lowlatency/framepacer/fence"
	"github.com/lowlatency/framepacer/idle"
	"github.com/lowlatency/framepacer/integration"
	"github.com/lowlatency/framepacer/integration/config"
	"github.com/lowlatency/framepacer/observability"
	"github.com/lowlatency/framepacer/pacer"
)

func monotonicNS() uint64 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return 0
	}
	return uint64(ts.Sec)*1_000_000_000 + uint64(ts.Nsec)
}

// sdlCompletionSignal wraps an SDL present call: the demo takes the return
// of Present() as the frame's completion, so the signal is already complete
// when pushed, but it is modeled as a CompletionSignal to keep the real
// FenceWaiter contract exercised end to end.
type sdlCompletionSignal struct{ completedAt uint64 }

func (s sdlCompletionSignal) Wait() uint64 { return s.completedAt }
func (s sdlCompletionSignal) Release()     {}

type sdlBackend struct {
	renderer *sdl.Renderer
}

func (b *sdlBackend) SubmitSignalWorkUnit() fence.CompletionSignal {
	b.renderer.Clear()
	b.renderer.Present()
	return sdlCompletionSignal{completedAt: monotonicNS()}
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return fmt.Errorf("sdl.Init: %w", err)
	}
	defer sdl.Quit()

	window, err := sdl.CreateWindow("framepacer demo", sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED, 640, 480, sdl.WINDOW_SHOWN)
	if err != nil {
		return fmt.Errorf("sdl.CreateWindow: %w", err)
	}
	defer window.Destroy()

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		return fmt.Errorf("sdl.CreateRenderer: %w", err)
	}
	defer renderer.Destroy()

	cfg := config.Load()

	events := observability.NewEventBus()
	defer events.Close()

	overlay := observability.OpenOverlay("libMangoHud.so", "overlay_SetMetrics", events)
	defer overlay.Close(events)

	p := pacer.New()
	p.SetTargetFrameTime(cfg.TargetFrameTimeNS)
	tracker := idle.New()
	waiter := fence.New(uuid.New(), p, tracker, overlay)
	defer waiter.Close()

	snapshotter, err := observability.NewSnapshotter()
	if err != nil {
		slog.Warn("process snapshotting disabled", "err", err)
	} else {
		stopSnapshots := make(chan struct{})
		defer close(stopSnapshots)
		go func() {
			ticker := time.NewTicker(time.Second)
			defer ticker.Stop()
			ctx := context.Background()
			for {
				select {
				case <-ticker.C:
					snap := snapshotter.Sample(ctx)
					overlay.ReportProcessSnapshot(snap)
					slog.Debug("process snapshot", "cpu_pct", snap.CPUPercent, "rss_bytes", snap.RSSBytes)
				case <-stopSnapshots:
					return
				}
			}
		}()
	}

	backend := &sdlBackend{renderer: renderer}
	adapter := integration.New(p, tracker, waiter, backend, monotonicNS, cfg.Placebo)

	adapter.SetEventBus(events)
	eventCh := make(chan observability.Event, 8)
	events.Subscribe("log", eventCh)
	go func() {
		for ev := range eventCh {
			slog.Info("pacing event", "kind", ev.Kind, "frame_id", ev.FrameID)
		}
	}()

	stopWatch, err := config.Watch(config.DefaultPath(), cfg, adapter)
	if err != nil {
		slog.Warn("config hot reload disabled", "err", err)
	} else {
		defer stopWatch()
	}

	running := true
	for frame := 0; running && frame < 600; frame++ {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			if _, ok := event.(*sdl.QuitEvent); ok {
				running = false
			}
		}

		adapter.Tick()
		adapter.Present()

		time.Sleep(time.Millisecond) // yield between frames in this demo loop
	}

	return nil
}
