package gpio

import "testing"

func TestPhysicalLevelActiveLow(t *testing.T) {
	// Active-low board: logical ON drives the line low.
	if got := physicalLevel(true, true); got != 0 {
		t.Errorf("ON active-low: got %d, want 0", got)
	}
	if got := physicalLevel(false, true); got != 1 {
		t.Errorf("OFF active-low: got %d, want 1", got)
	}
}

func TestPhysicalLevelActiveHigh(t *testing.T) {
	if got := physicalLevel(true, false); got != 1 {
		t.Errorf("ON active-high: got %d, want 1", got)
	}
	if got := physicalLevel(false, false); got != 0 {
		t.Errorf("OFF active-high: got %d, want 0", got)
	}
}

func TestPolarityRoundTrip(t *testing.T) {
	// setLevel followed by readLevel must be self-consistent regardless
	// of the active-low configuration.
	for _, activeLow := range []bool{true, false} {
		for _, on := range []bool{true, false} {
			raw := physicalLevel(on, activeLow)
			if got := logicalLevel(raw, activeLow); got != on {
				t.Errorf("activeLow=%v on=%v: round trip gave %v", activeLow, on, got)
			}
		}
	}
}

func TestLogicalPressed(t *testing.T) {
	// Pull-up wiring reads low while the button is held.
	if !logicalPressed(0, true) {
		t.Error("pull-up raw 0: expected pressed")
	}
	if logicalPressed(1, true) {
		t.Error("pull-up raw 1: expected released")
	}
	if logicalPressed(0, false) {
		t.Error("pull-down raw 0: expected released")
	}
	if !logicalPressed(1, false) {
		t.Error("pull-down raw 1: expected pressed")
	}
}
