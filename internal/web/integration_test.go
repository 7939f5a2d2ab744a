package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sweeney/relay-control/internal/button"
	"github.com/sweeney/relay-control/internal/gpio"
	"github.com/sweeney/relay-control/internal/mqtt"
	"github.com/sweeney/relay-control/internal/relay"
	"github.com/sweeney/relay-control/internal/status"
)

// Exercises the full daemon stack on fakes: HTTP and button triggers
// flowing through the controller to GPIO, with telemetry and status
// updated along the way.
func TestFullStackTriggerFlow(t *testing.T) {
	duration := 20 * time.Millisecond

	defs := []relay.Def{
		{ID: 1, Line: 17, Name: "door", Duration: duration},
		{ID: 2, Line: 18, Duration: duration},
	}
	out1 := gpio.NewFakeOutput()
	out2 := gpio.NewFakeOutput()
	reg, err := relay.NewRegistry(defs, map[int]gpio.Output{1: out1, 2: out2})
	if err != nil {
		t.Fatalf("registry: %v", err)
	}

	tracker := status.NewTracker(time.Now(), status.Config{RelayCount: 2, MaxConcurrent: 3})
	pub := mqtt.NewFakePublisher()
	telemetry := mqtt.NewObserver(pub, testLogger())

	ctl := relay.NewController(reg, relay.NewAdmission(3), testLogger(), tracker, telemetry)
	srv := New(":0", "", ctl, tracker, testLogger())
	ts := httptest.NewServer(srv.httpServer.Handler)
	defer ts.Close()

	// Web trigger for relay 1.
	resp, err := http.Post(ts.URL+"/relay/1", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /relay/1: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("trigger: got %d, want 200", resp.StatusCode)
	}

	// Button press for relay 2 through the polling path.
	in := gpio.NewFakeInput()
	p := button.NewPoller(ctl, 2, 50*time.Millisecond, relay.SourceButton, in.Pressed, testLogger())
	tick := make(chan time.Time)
	done := make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		p.Run(ctx, tick, time.Now)
		close(done)
	}()
	tick <- time.Now() // baseline: released
	in.SetPressed(true)
	tick <- time.Now() // press edge dispatches
	cancel()
	<-done

	ctl.Wait()

	// Both relays completed a full ON/OFF cycle.
	for i, out := range []*gpio.FakeOutput{out1, out2} {
		if got := out.Writes(); len(got) != 2 || !got[0] || got[1] {
			t.Errorf("relay %d writes: got %v, want [true false]", i+1, got)
		}
	}

	// Telemetry carries both sources.
	events := pub.Events()
	if len(events) != 4 {
		t.Fatalf("telemetry events: got %d, want 4", len(events))
	}
	sources := map[string]bool{}
	for _, ev := range events {
		if ev.Type == mqtt.EventRelayOn {
			sources[ev.Source] = true
		}
	}
	if !sources["web"] || !sources["physical_button"] {
		t.Errorf("telemetry sources: got %v", sources)
	}

	// Status reflects the completed actuations.
	resp, err = http.Get(ts.URL + "/status")
	if err != nil {
		t.Fatalf("GET /status: %v", err)
	}
	defer resp.Body.Close()
	var sj StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sj.Status.Counts.Triggered != 2 || sj.Status.Counts.Completed != 2 {
		t.Errorf("counts: got %+v", sj.Status.Counts)
	}
	if sj.Status.Relays[0].LastSource != "web" {
		t.Errorf("relay 1 source: got %q", sj.Status.Relays[0].LastSource)
	}
	if sj.Status.Relays[1].LastSource != "physical_button" {
		t.Errorf("relay 2 source: got %q", sj.Status.Relays[1].LastSource)
	}
}
