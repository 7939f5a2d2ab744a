package status

import (
	"encoding/json"
	"time"
)

// Lifecycle event payload published on the system topic. Carries the
// full daemon state so a retained STARTUP or SHUTDOWN message is
// self-describing.
type eventJSON struct {
	System eventInner `json:"system"`
}

type eventInner struct {
	Timestamp     string          `json:"timestamp"`
	Event         string          `json:"event"`
	Reason        string          `json:"reason,omitempty"`
	UptimeSeconds int64           `json:"uptime_seconds"`
	Active        int             `json:"active_triggers"`
	Counts        eventCountsJSON `json:"trigger_counts"`
	MQTT          eventMQTTJSON   `json:"mqtt"`
	Config        eventConfigJSON `json:"config"`
}

type eventCountsJSON struct {
	Triggered int `json:"triggered"`
	Completed int `json:"completed"`
	Rejected  int `json:"rejected"`
	Faults    int `json:"faults"`
}

type eventMQTTJSON struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker,omitempty"`
}

type eventConfigJSON struct {
	RelayCount     int     `json:"relay_count"`
	MaxConcurrent  int     `json:"max_concurrent_triggers"`
	TriggerSeconds float64 `json:"trigger_duration"`
	ActiveLow      bool    `json:"active_low"`
	ButtonEnabled  bool    `json:"button_enabled"`
	HTTPAddr       string  `json:"http_addr"`
}

// FormatStatusEvent returns the JSON payload for an MQTT system event
// carrying a full status snapshot.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	data, _ := json.Marshal(eventJSON{
		System: eventInner{
			Timestamp:     snap.Now.UTC().Format(time.RFC3339),
			Event:         event,
			Reason:        reason,
			UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
			Active:        snap.Active,
			Counts: eventCountsJSON{
				Triggered: snap.Counts.Triggered,
				Completed: snap.Counts.Completed,
				Rejected:  snap.Counts.Rejected,
				Faults:    snap.Counts.Faults,
			},
			MQTT: eventMQTTJSON{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
			Config: eventConfigJSON{
				RelayCount:     snap.Config.RelayCount,
				MaxConcurrent:  snap.Config.MaxConcurrent,
				TriggerSeconds: snap.Config.TriggerSeconds,
				ActiveLow:      snap.Config.ActiveLow,
				ButtonEnabled:  snap.Config.ButtonEnabled,
				HTTPAddr:       snap.Config.HTTPAddr,
			},
		},
	})
	return data
}
