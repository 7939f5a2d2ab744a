package main

import (
	"syscall"
	"testing"
	"time"

	"github.com/sweeney/relay-control/internal/config"
)

func TestBuildDefsOrderedWithOverrides(t *testing.T) {
	cfg := config.Default()
	cfg.Relays = map[int]config.RelayConfig{
		3: {Line: 27, Name: "garage"},
		1: {Line: 17},
		2: {Line: 18, TriggerSeconds: 5},
	}
	cfg.Relay.TriggerSeconds = 2

	defs := buildDefs(cfg)
	if len(defs) != 3 {
		t.Fatalf("expected 3 defs, got %d", len(defs))
	}

	for i, wantID := range []int{1, 2, 3} {
		if defs[i].ID != wantID {
			t.Errorf("def %d: id %d, want %d", i, defs[i].ID, wantID)
		}
	}
	if defs[0].Duration != 2*time.Second {
		t.Errorf("relay 1 duration: got %v, want board default 2s", defs[0].Duration)
	}
	if defs[1].Duration != 5*time.Second {
		t.Errorf("relay 2 duration: got %v, want override 5s", defs[1].Duration)
	}
	if defs[2].Name != "garage" {
		t.Errorf("relay 3 name: got %q", defs[2].Name)
	}
	if defs[2].Line != 27 {
		t.Errorf("relay 3 line: got %d, want 27", defs[2].Line)
	}
}

func TestSignalName(t *testing.T) {
	if got := signalName(syscall.SIGINT); got != "SIGINT" {
		t.Errorf("SIGINT: got %q", got)
	}
	if got := signalName(syscall.SIGTERM); got != "SIGTERM" {
		t.Errorf("SIGTERM: got %q", got)
	}
	if got := signalName(syscall.SIGHUP); got != "UNKNOWN" {
		t.Errorf("SIGHUP: got %q", got)
	}
}
