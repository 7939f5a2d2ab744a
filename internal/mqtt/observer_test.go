package mqtt

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sweeney/relay-control/internal/relay"
)

var _ relay.Observer = (*Observer)(nil)

func testObserver() (*Observer, *FakePublisher) {
	f := NewFakePublisher()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewObserver(f, log), f
}

func TestObserverStartedPublishesRelayOn(t *testing.T) {
	obs, f := testObserver()

	obs.ActuationStarted(relay.Record{
		ID:       uuid.New(),
		Relay:    2,
		Source:   "web",
		Start:    time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
		Duration: 2 * time.Second,
	})

	events := f.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	got := events[0]
	if got.Type != EventRelayOn {
		t.Errorf("type: got %s, want RELAY_ON", got.Type)
	}
	if got.Relay != 2 || got.Source != "web" {
		t.Errorf("unexpected event: %+v", got)
	}
	if got.DurationSeconds != 2 {
		t.Errorf("duration: got %v, want 2", got.DurationSeconds)
	}
}

func TestObserverFinishedPublishesRelayOff(t *testing.T) {
	obs, f := testObserver()

	rec := relay.Record{ID: uuid.New(), Relay: 1, Source: "web", Duration: time.Second}
	obs.ActuationFinished(rec, nil)

	events := f.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Type != EventRelayOff {
		t.Errorf("type: got %s, want RELAY_OFF", events[0].Type)
	}
	if events[0].Reason != "" {
		t.Errorf("reason should be empty, got %q", events[0].Reason)
	}
}

func TestObserverFinishedWithFaultPublishesRelayFault(t *testing.T) {
	obs, f := testObserver()

	rec := relay.Record{ID: uuid.New(), Relay: 4, Source: "web", Duration: time.Second}
	obs.ActuationFinished(rec, errors.New("line write failed"))

	events := f.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Type != EventRelayFault {
		t.Errorf("type: got %s, want RELAY_FAULT", events[0].Type)
	}
	if events[0].Reason != "line write failed" {
		t.Errorf("reason: got %q", events[0].Reason)
	}
}

func TestObserverRejectedPublishesReason(t *testing.T) {
	obs, f := testObserver()

	obs.ActuationRejected(3, "physical_button", "capacity_exhausted")

	events := f.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	got := events[0]
	if got.Type != EventRejected {
		t.Errorf("type: got %s, want REJECTED", got.Type)
	}
	if got.Relay != 3 || got.Source != "physical_button" || got.Reason != "capacity_exhausted" {
		t.Errorf("unexpected event: %+v", got)
	}
}

func TestObserverSwallowsPublishErrors(t *testing.T) {
	obs, f := testObserver()
	f.PublishError = errors.New("broker unreachable")

	// Must not panic; the actuation path never sees publish failures.
	obs.ActuationStarted(relay.Record{ID: uuid.New(), Relay: 1, Source: "web"})
	obs.ActuationRejected(1, "web", "already_active")

	if len(f.Events()) != 0 {
		t.Errorf("expected no events recorded, got %d", len(f.Events()))
	}
}
