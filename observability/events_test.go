package observability_test

import (
	"testing"

	"github.com/lowlatency/framepacer/observability"
)

func TestEventBusDeliversToSubscriber(t *testing.T) {
	bus := observability.NewEventBus()
	ch := make(chan observability.Event, 1)
	if err := bus.Subscribe("sink", ch); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	bus.Publish(observability.Event{Kind: observability.EventRecalibrationArmed, FrameID: 7})

	select {
	case ev := <-ch:
		if ev.Kind != observability.EventRecalibrationArmed || ev.FrameID != 7 {
			t.Fatalf("got %+v, want {EventRecalibrationArmed 7}", ev)
		}
	default:
		t.Fatalf("subscriber received nothing")
	}

	stats, err := bus.Stats("sink")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Sent != 1 || stats.Dropped != 0 {
		t.Fatalf("stats = %+v, want Sent=1 Dropped=0", stats)
	}
}

func TestEventBusDropsWhenSubscriberFull(t *testing.T) {
	bus := observability.NewEventBus()
	ch := make(chan observability.Event) // unbuffered, nobody reading
	if err := bus.Subscribe("blocked", ch); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	bus.Publish(observability.Event{Kind: observability.EventFailsafeTripped})

	stats, err := bus.Stats("blocked")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Dropped != 1 {
		t.Fatalf("stats.Dropped = %d, want 1", stats.Dropped)
	}
}

func TestEventBusDuplicateSubscribeErrors(t *testing.T) {
	bus := observability.NewEventBus()
	ch := make(chan observability.Event, 1)
	if err := bus.Subscribe("dup", ch); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if err := bus.Subscribe("dup", ch); err == nil {
		t.Fatalf("second Subscribe with same id succeeded, want error")
	}
}

func TestEventBusPublishAfterCloseIsNoop(t *testing.T) {
	bus := observability.NewEventBus()
	ch := make(chan observability.Event, 1)
	bus.Subscribe("sink", ch)
	bus.Close()
	bus.Publish(observability.Event{Kind: observability.EventOverlayAttached})

	select {
	case ev := <-ch:
		t.Fatalf("received event %+v after Close", ev)
	default:
	}
}
