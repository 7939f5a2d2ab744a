package web

import (
	"time"

	"github.com/sweeney/relay-control/internal/relay"
	"github.com/sweeney/relay-control/internal/status"
)

// StatusJSON is the JSON representation of the daemon status.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	UptimeSeconds int64       `json:"uptime_seconds"`
	StartTime     string      `json:"start_time"`
	Timestamp     string      `json:"timestamp"`
	Active        int         `json:"active_triggers"`
	MaxConcurrent int         `json:"max_concurrent_triggers"`
	Relays        []RelayJSON `json:"relays"`
	Counts        CountsJSON  `json:"trigger_counts"`
	MQTT          MQTTStatus  `json:"mqtt"`
	Config        ConfigJSON  `json:"config"`
}

// RelayJSON is one relay's state in the status response.
type RelayJSON struct {
	Relay           int     `json:"relay"`
	Name            string  `json:"name,omitempty"`
	Line            int     `json:"line"`
	On              bool    `json:"on"`
	Active          bool    `json:"active"`
	DurationSeconds float64 `json:"duration_seconds"`
	LastSource      string  `json:"last_source,omitempty"`
	LastStart       string  `json:"last_start,omitempty"`
	Triggers        int     `json:"triggers"`
}

// CountsJSON is the JSON representation of trigger counts.
type CountsJSON struct {
	Triggered int `json:"triggered"`
	Completed int `json:"completed"`
	Rejected  int `json:"rejected"`
	Faults    int `json:"faults"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker,omitempty"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	RelayCount     int     `json:"relay_count"`
	MaxConcurrent  int     `json:"max_concurrent_triggers"`
	TriggerSeconds float64 `json:"trigger_duration"`
	ActiveLow      bool    `json:"active_low"`
	ButtonEnabled  bool    `json:"button_enabled"`
	HTTPAddr       string  `json:"http_addr"`
}

func formatStatus(snap status.Snapshot, relays []relay.Status, active int) StatusJSON {
	rj := make([]RelayJSON, 0, len(relays))
	for _, r := range relays {
		activity := snap.Relays[r.Relay]
		entry := RelayJSON{
			Relay:           r.Relay,
			Name:            r.Name,
			Line:            r.Line,
			On:              r.On,
			Active:          r.Locked,
			DurationSeconds: r.Duration.Seconds(),
			LastSource:      activity.LastSource,
			Triggers:        activity.Triggers,
		}
		if !activity.LastStart.IsZero() {
			entry.LastStart = activity.LastStart.UTC().Format(time.RFC3339)
		}
		rj = append(rj, entry)
	}

	return StatusJSON{
		Status: StatusInner{
			UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
			StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
			Timestamp:     snap.Now.UTC().Format(time.RFC3339),
			Active:        active,
			MaxConcurrent: snap.Config.MaxConcurrent,
			Relays:        rj,
			Counts: CountsJSON{
				Triggered: snap.Counts.Triggered,
				Completed: snap.Counts.Completed,
				Rejected:  snap.Counts.Rejected,
				Faults:    snap.Counts.Faults,
			},
			MQTT: MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
			Config: ConfigJSON{
				RelayCount:     snap.Config.RelayCount,
				MaxConcurrent:  snap.Config.MaxConcurrent,
				TriggerSeconds: snap.Config.TriggerSeconds,
				ActiveLow:      snap.Config.ActiveLow,
				ButtonEnabled:  snap.Config.ButtonEnabled,
				HTTPAddr:       snap.Config.HTTPAddr,
			},
		},
	}
}
