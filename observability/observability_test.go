package observability_test

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/lowlatency/framepacer/observability"
)

// TestOpenOverlayMissingLibraryIsNoop: when the named overlay library isn't
// already loaded into the process, OpenOverlay must not error or panic, and
// the resulting Overlay's ReportLatency must be a safe no-op.
func TestOpenOverlayMissingLibraryIsNoop(t *testing.T) {
	events := observability.NewEventBus()
	defer events.Close()
	ch := make(chan observability.Event, 1)
	events.Subscribe("test", ch)

	o := observability.OpenOverlay("libThisDoesNotExist.so", "overlay_SetMetrics", events)
	if o == nil {
		t.Fatalf("OpenOverlay returned nil")
	}
	o.ReportLatency(uuid.New(), 0, 16_000_000, 16_666_667)

	select {
	case ev := <-ch:
		t.Fatalf("OpenOverlay published %v for a library that never bound, want no event", ev)
	default:
	}

	o.Close(events)
	select {
	case ev := <-ch:
		t.Fatalf("Close published %v for an overlay that never attached, want no event", ev)
	default:
	}
}

func TestNewSnapshotterSamplesWithoutError(t *testing.T) {
	s, err := observability.NewSnapshotter()
	if err != nil {
		t.Fatalf("NewSnapshotter: %v", err)
	}
	snap := s.Sample(context.Background())
	_ = snap // best-effort: zero values are a valid outcome, not a failure
}

func TestSpanStartEndDoesNotPanic(t *testing.T) {
	span := observability.StartSpan("begin_frame", 42)
	span.End()
}
