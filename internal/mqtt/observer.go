package mqtt

import (
	"log/slog"
	"time"

	"github.com/sweeney/relay-control/internal/relay"
)

// Observer converts relay lifecycle callbacks into telemetry events.
// Publish failures are logged and swallowed; telemetry never interferes
// with an actuation.
type Observer struct {
	pub Publisher
	log *slog.Logger
}

// NewObserver creates an Observer publishing through pub.
func NewObserver(pub Publisher, log *slog.Logger) *Observer {
	return &Observer{pub: pub, log: log}
}

// ActuationStarted publishes a RELAY_ON event.
func (o *Observer) ActuationStarted(rec relay.Record) {
	o.publish(Event{
		Timestamp:       rec.Start,
		Type:            EventRelayOn,
		Relay:           rec.Relay,
		Source:          rec.Source,
		DurationSeconds: rec.Duration.Seconds(),
	})
}

// ActuationFinished publishes RELAY_OFF, or RELAY_FAULT when the
// actuation hit a hardware error.
func (o *Observer) ActuationFinished(rec relay.Record, fault error) {
	ev := Event{
		Timestamp:       time.Now(),
		Type:            EventRelayOff,
		Relay:           rec.Relay,
		Source:          rec.Source,
		DurationSeconds: rec.Duration.Seconds(),
	}
	if fault != nil {
		ev.Type = EventRelayFault
		ev.Reason = fault.Error()
	}
	o.publish(ev)
}

// ActuationRejected publishes a REJECTED event with the reason code.
func (o *Observer) ActuationRejected(relayID int, source, reason string) {
	o.publish(Event{
		Timestamp: time.Now(),
		Type:      EventRejected,
		Relay:     relayID,
		Source:    source,
		Reason:    reason,
	})
}

func (o *Observer) publish(ev Event) {
	if err := o.pub.Publish(ev); err != nil {
		o.log.Warn("telemetry publish failed", "event", string(ev.Type), "relay", ev.Relay, "error", err)
	}
}
