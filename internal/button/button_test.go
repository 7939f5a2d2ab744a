package button

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type dispatchCall struct {
	relay  int
	source string
}

// fakeDispatcher records dispatch calls and returns a scripted result.
type fakeDispatcher struct {
	mu    sync.Mutex
	calls []dispatchCall

	// Err, if set, is returned by Dispatch.
	Err error
}

func (f *fakeDispatcher) Dispatch(relayID int, source string) (time.Duration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return 0, f.Err
	}
	f.calls = append(f.calls, dispatchCall{relay: relayID, source: source})
	return 2 * time.Second, nil
}

func (f *fakeDispatcher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestDebouncerWindow(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	d := debouncer{window: 300 * time.Millisecond}

	if !d.accept(base) {
		t.Fatal("first press should be accepted")
	}
	// 50ms later: inside the window.
	if d.accept(base.Add(50 * time.Millisecond)) {
		t.Error("press 50ms later should be suppressed")
	}
	// 400ms after the accepted press: outside the window.
	if !d.accept(base.Add(400 * time.Millisecond)) {
		t.Error("press 400ms later should be accepted")
	}
}

func TestDebouncerZeroWindow(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	d := debouncer{}

	if !d.accept(base) || !d.accept(base) {
		t.Error("zero window should accept every press")
	}
}

func TestEdgeSourceDebounce(t *testing.T) {
	disp := &fakeDispatcher{}
	s := NewEdgeSource(disp, 1, 300*time.Millisecond, "physical_button", testLogger())

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.Handle(base)
	s.Handle(base.Add(50 * time.Millisecond))

	if disp.count() != 1 {
		t.Errorf("dispatches after bounce pair: got %d, want 1", disp.count())
	}

	s.Handle(base.Add(400 * time.Millisecond))
	if disp.count() != 2 {
		t.Errorf("dispatches after spaced press: got %d, want 2", disp.count())
	}

	disp.mu.Lock()
	call := disp.calls[0]
	disp.mu.Unlock()
	if call.relay != 1 || call.source != "physical_button" {
		t.Errorf("dispatch call: got %+v", call)
	}
}

func TestEdgeSourceClosedDropsEvents(t *testing.T) {
	disp := &fakeDispatcher{}
	s := NewEdgeSource(disp, 1, 0, "physical_button", testLogger())

	s.Close()
	s.Handle(time.Now())

	if disp.count() != 0 {
		t.Errorf("dispatches after Close: got %d, want 0", disp.count())
	}
}

func TestEdgeSourceRejectionIsNotFatal(t *testing.T) {
	disp := &fakeDispatcher{Err: errors.New("relay already active")}
	s := NewEdgeSource(disp, 1, 0, "physical_button", testLogger())

	// Must not panic; the rejection is logged and dropped.
	s.Handle(time.Now())
	s.Handle(time.Now().Add(time.Second))
}

// runPoller drives a Poller through scripted samples at a fixed virtual
// interval and waits for it to finish.
func runPoller(t *testing.T, p *Poller, samples []bool, interval time.Duration) {
	t.Helper()

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := range samples {
		p.sample(base.Add(time.Duration(i) * interval))
	}
}

func TestPollerDetectsPressEdges(t *testing.T) {
	disp := &fakeDispatcher{}

	samples := []bool{false, false, true, true, false, true}
	i := 0
	read := func() (bool, error) {
		v := samples[i]
		if i < len(samples)-1 {
			i++
		}
		return v, nil
	}

	// 100ms virtual interval, 150ms window: both presses clear it.
	p := NewPoller(disp, 1, 150*time.Millisecond, "physical_button", read, testLogger())
	runPoller(t, p, samples, 100*time.Millisecond)

	if disp.count() != 2 {
		t.Errorf("dispatches: got %d, want 2", disp.count())
	}
}

func TestPollerHeldAtStartupDoesNotFire(t *testing.T) {
	disp := &fakeDispatcher{}

	read := func() (bool, error) { return true, nil }
	p := NewPoller(disp, 1, 0, "physical_button", read, testLogger())
	runPoller(t, p, []bool{true, true, true, true}, 10*time.Millisecond)

	if disp.count() != 0 {
		t.Errorf("dispatches for held button: got %d, want 0", disp.count())
	}
}

func TestPollerDebounceSuppressesChatter(t *testing.T) {
	disp := &fakeDispatcher{}

	// Press edges 40ms apart with a 300ms window: the second edge is
	// bounce and must be suppressed.
	samples := []bool{false, true, false, true, false, false}
	i := 0
	read := func() (bool, error) {
		v := samples[i]
		if i < len(samples)-1 {
			i++
		}
		return v, nil
	}

	p := NewPoller(disp, 1, 300*time.Millisecond, "physical_button", read, testLogger())
	runPoller(t, p, samples, 20*time.Millisecond)

	if disp.count() != 1 {
		t.Errorf("dispatches: got %d, want 1", disp.count())
	}
}

func TestPollerSkipsReadErrors(t *testing.T) {
	disp := &fakeDispatcher{}

	calls := 0
	read := func() (bool, error) {
		calls++
		switch calls {
		case 1:
			return false, nil
		case 2:
			return false, errors.New("simulated read failure")
		default:
			return true, nil
		}
	}

	p := NewPoller(disp, 1, 0, "physical_button", read, testLogger())
	runPoller(t, p, []bool{false, false, true}, 10*time.Millisecond)

	if disp.count() != 1 {
		t.Errorf("dispatches: got %d, want 1", disp.count())
	}
}

func TestPollerRunStopsOnCancel(t *testing.T) {
	disp := &fakeDispatcher{}
	read := func() (bool, error) { return false, nil }
	p := NewPoller(disp, 1, 0, "physical_button", read, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	tick := make(chan time.Time)
	done := make(chan struct{})
	go func() {
		p.Run(ctx, tick, time.Now)
		close(done)
	}()

	tick <- time.Now()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}

	// No dispatch can happen once Run has returned.
	if disp.count() != 0 {
		t.Errorf("dispatches: got %d, want 0", disp.count())
	}
}
