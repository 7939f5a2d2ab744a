// Package relay implements the actuation core: the registry of relays,
// the global admission ceiling, and the engine that drives a relay ON for
// a bounded duration and always restores it to OFF.
//
// Shared mutable state is confined to the per-relay guards and the
// admission counter; everything else is immutable after construction.
package relay

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sweeney/relay-control/internal/gpio"
)

// Trigger source tags carried through logs and telemetry.
const (
	SourceWeb    = "web"
	SourceButton = "physical_button"
)

// Def is one relay's resolved configuration: the validated mapping the
// core consumes from the configuration layer.
type Def struct {
	ID       int
	Line     int
	Name     string
	Duration time.Duration
}

// Relay is a logical actuation channel bound to one output line. Owned
// by the Registry; immutable after construction.
type Relay struct {
	id       int
	line     int
	name     string
	duration time.Duration
	out      gpio.Output
	guard    guard
}

// ID returns the relay number.
func (r *Relay) ID() int { return r.id }

// Line returns the BCM offset of the relay's output line.
func (r *Relay) Line() int { return r.line }

// Name returns the optional human-readable name.
func (r *Relay) Name() string { return r.name }

// Duration returns how long one trigger holds the relay ON.
func (r *Relay) Duration() time.Duration { return r.duration }

// Active reports whether an actuation currently holds this relay's guard.
func (r *Relay) Active() bool { return r.guard.held() }

// guard is a single-holder lock with non-blocking acquire. It never
// queues: acquisition either succeeds or fails immediately.
type guard struct {
	flag atomic.Bool
}

func (g *guard) tryAcquire() bool {
	return g.flag.CompareAndSwap(false, true)
}

func (g *guard) release() {
	g.flag.Store(false)
}

func (g *guard) held() bool {
	return g.flag.Load()
}

// Record describes one admitted actuation. It lives for the duration of
// the actuation and feeds logging and telemetry only.
type Record struct {
	ID       uuid.UUID
	Relay    int
	Source   string
	Start    time.Time
	Duration time.Duration
}

// Observer receives actuation lifecycle notifications. Implementations
// must be safe for concurrent use: Started and Finished run on the
// actuation goroutine, Rejected on the dispatching goroutine.
type Observer interface {
	ActuationStarted(rec Record)

	// ActuationFinished fires after the cleanup step has run. fault is
	// non-nil if a hardware write failed during the actuation.
	ActuationFinished(rec Record, fault error)

	ActuationRejected(relayID int, source, reason string)
}
