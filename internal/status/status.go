// Package status provides a thread-safe tracker of daemon state for the
// HTTP layer and MQTT telemetry. It implements relay.Observer, so it is
// updated from the actuation goroutines as a lifecycle side channel.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/relay-control/internal/relay"
)

// Counts tracks actuation outcomes since startup.
type Counts struct {
	Triggered int
	Completed int
	Rejected  int
	Faults    int
}

// Config contains daemon configuration for display.
type Config struct {
	RelayCount     int
	MaxConcurrent  int
	TriggerSeconds float64
	ActiveLow      bool
	ButtonEnabled  bool
	Broker         string
	HTTPAddr       string
}

// RelayActivity is the per-relay telemetry kept by the tracker.
type RelayActivity struct {
	LastSource string
	LastStart  time.Time
	Triggers   int
}

// Snapshot is a point-in-time view of daemon state. It is a value type
// with its own map copy and stays valid after the lock is released.
type Snapshot struct {
	StartTime     time.Time
	Now           time.Time
	Active        int
	Counts        Counts
	Relays        map[int]RelayActivity
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
			Relays:    make(map[int]RelayActivity),
		},
	}
}

// ActuationStarted records an admitted actuation.
func (t *Tracker) ActuationStarted(rec relay.Record) {
	t.mu.Lock()
	t.snap.Active++
	t.snap.Counts.Triggered++
	a := t.snap.Relays[rec.Relay]
	a.LastSource = rec.Source
	a.LastStart = rec.Start
	a.Triggers++
	t.snap.Relays[rec.Relay] = a
	t.mu.Unlock()
}

// ActuationFinished records a completed actuation and any fault.
func (t *Tracker) ActuationFinished(rec relay.Record, fault error) {
	t.mu.Lock()
	if t.snap.Active > 0 {
		t.snap.Active--
	}
	t.snap.Counts.Completed++
	if fault != nil {
		t.snap.Counts.Faults++
	}
	t.mu.Unlock()
}

// ActuationRejected records a rejected dispatch.
func (t *Tracker) ActuationRejected(relayID int, source, reason string) {
	t.mu.Lock()
	t.snap.Counts.Rejected++
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state. The Now
// field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	relays := make(map[int]RelayActivity, len(t.snap.Relays))
	for id, a := range t.snap.Relays {
		relays[id] = a
	}
	t.mu.RUnlock()
	s.Relays = relays
	s.Now = time.Now()
	return s
}
