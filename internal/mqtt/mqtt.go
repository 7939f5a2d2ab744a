// Package mqtt publishes actuation telemetry to an MQTT broker, with an
// abstraction for testing and an in-memory backlog for broker outages.
package mqtt

import (
	"encoding/json"
	"time"
)

// TopicEvents is the MQTT topic for relay actuation events.
const TopicEvents = "home/relay-control/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "home/relay-control/system"

// EventType identifies what happened to a relay.
type EventType string

const (
	EventRelayOn    EventType = "RELAY_ON"
	EventRelayOff   EventType = "RELAY_OFF"
	EventRelayFault EventType = "RELAY_FAULT"
	EventRejected   EventType = "REJECTED"
)

// Event is one relay actuation telemetry record.
type Event struct {
	Timestamp       time.Time
	Type            EventType
	Relay           int
	Source          string
	DurationSeconds float64
	Reason          string
}

// SystemEvent is a daemon lifecycle record (startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp time.Time
	Event     string // e.g. "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason    string // e.g. "SIGTERM" (shutdown only)

	// RawPayload, when set, is published verbatim instead of the
	// formatted envelope. Used for full status snapshots.
	RawPayload []byte

	// Retained marks the message for broker retention.
	Retained bool
}

// Publisher publishes telemetry. Publish errors must never stop an
// actuation; callers log and move on.
type Publisher interface {
	Publish(event Event) error
	PublishSystem(event SystemEvent) error
	Close() error
}

// ConnectionStatus reports whether the broker connection is up.
type ConnectionStatus interface {
	IsConnected() bool
}

// Payload is the JSON envelope for relay events.
type Payload struct {
	Relay RelayPayload `json:"relay"`
}

// RelayPayload contains the relay event details.
type RelayPayload struct {
	Timestamp       string  `json:"timestamp"`
	Event           string  `json:"event"`
	Relay           int     `json:"relay"`
	Source          string  `json:"source,omitempty"`
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
	Reason          string  `json:"reason,omitempty"`
}

// FormatPayload creates the JSON payload for a relay event.
func FormatPayload(event Event) ([]byte, error) {
	payload := Payload{
		Relay: RelayPayload{
			Timestamp:       event.Timestamp.UTC().Format(time.RFC3339),
			Event:           string(event.Type),
			Relay:           event.Relay,
			Source:          event.Source,
			DurationSeconds: event.DurationSeconds,
			Reason:          event.Reason,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload is the JSON envelope for system events.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event. When
// event.RawPayload is set it is returned directly.
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
