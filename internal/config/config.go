// Package config loads, validates and persists the daemon configuration.
// Configuration is a single YAML file; the daemon reads it once at
// startup and treats it as immutable. Save validates before writing so
// an invalid configuration is never persisted.
package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/relay-control/internal/gpio"
)

// Config is the root configuration structure.
type Config struct {
	Relays  map[int]RelayConfig `yaml:"relays"`
	Relay   RelaySettings       `yaml:"relay_settings"`
	Button  ButtonConfig        `yaml:"button"`
	Server  ServerConfig        `yaml:"server"`
	MQTT    MQTTConfig          `yaml:"mqtt"`
	Logging LoggingConfig       `yaml:"logging"`
	GPIO    GPIOConfig          `yaml:"gpio"`
}

// RelayConfig describes one relay channel.
type RelayConfig struct {
	// Line is the BCM offset of the output line.
	Line int `yaml:"line"`

	// Name is an optional label shown on the control panel.
	Name string `yaml:"name,omitempty"`

	// TriggerSeconds overrides relay_settings.trigger_duration for this
	// relay when positive.
	TriggerSeconds float64 `yaml:"trigger_duration,omitempty"`
}

// RelaySettings contains board-wide relay behaviour.
type RelaySettings struct {
	ActiveLow             bool    `yaml:"active_low"`
	TriggerSeconds        float64 `yaml:"trigger_duration"`
	MaxConcurrentTriggers int     `yaml:"max_concurrent_triggers"`
}

// ButtonConfig describes the optional physical trigger button.
type ButtonConfig struct {
	Enabled bool `yaml:"enabled"`
	Line    int  `yaml:"line"`
	PullUp  bool `yaml:"pull_up"`

	// Relay is the channel a press triggers.
	Relay int `yaml:"relay"`

	DebounceSeconds float64 `yaml:"debounce_time"`

	// Mode selects the event strategy: "edge" (interrupt-driven) or
	// "poll" (fixed-interval sampling).
	Mode string `yaml:"mode"`

	PollIntervalMs int `yaml:"poll_interval_ms"`
}

// ServerConfig contains the HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// APIKey, when set, is required in the X-API-Key header on control
	// endpoints.
	APIKey string `yaml:"api_key,omitempty"`
}

// MQTTConfig contains the telemetry publisher settings.
type MQTTConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`

	// BufferSize is how many events are retained while the broker is
	// unreachable.
	BufferSize int `yaml:"buffer_size"`

	HeartbeatSeconds int `yaml:"heartbeat_seconds"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// GPIOConfig contains the character device settings.
type GPIOConfig struct {
	Chip string `yaml:"chip"`
}

// Default returns the configuration for a stock 8-channel board on a
// Raspberry Pi.
func Default() *Config {
	relays := make(map[int]RelayConfig, len(gpio.DefaultRelayLines))
	for id, line := range gpio.DefaultRelayLines {
		relays[id] = RelayConfig{Line: line}
	}

	return &Config{
		Relays: relays,
		Relay: RelaySettings{
			ActiveLow:             true,
			TriggerSeconds:        2,
			MaxConcurrentTriggers: 3,
		},
		Button: ButtonConfig{
			Enabled:         false,
			Line:            gpio.DefaultButtonLine,
			PullUp:          true,
			Relay:           1,
			DebounceSeconds: 0.3,
			Mode:            "edge",
			PollIntervalMs:  10,
		},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 5000,
		},
		MQTT: MQTTConfig{
			Enabled:          false,
			Broker:           "tcp://localhost:1883",
			ClientID:         "relay-control",
			BufferSize:       64,
			HeartbeatSeconds: 900,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
		GPIO: GPIOConfig{
			Chip: gpio.DefaultChip,
		},
	}
}

// Load reads the configuration file, applies environment variable
// overrides and validates the result. A missing file yields the
// defaults, written back to path so there is something to edit.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Best effort; a read-only filesystem still gets a working daemon.
		_ = write(cfg, path)
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	default:
		// A relays section in the file replaces the default map wholesale;
		// yaml would otherwise merge user relays into the default eight.
		cfg.Relays = nil
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
		if len(cfg.Relays) == 0 {
			cfg.Relays = Default().Relays
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// Save validates the configuration and writes it to path. Invalid
// configurations are rejected before anything touches the disk.
func Save(cfg *Config, path string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid config: %w", err)
	}
	return write(cfg, path)
}

func write(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// applyEnvOverrides applies RELAYCTL_* environment variables over the
// file values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("RELAYCTL_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("RELAYCTL_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("RELAYCTL_API_KEY"); v != "" {
		cfg.Server.APIKey = v
	}
	if v := os.Getenv("RELAYCTL_MQTT_BROKER"); v != "" {
		cfg.MQTT.Broker = v
	}
	if v := os.Getenv("RELAYCTL_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var errs []string

	if len(c.Relays) == 0 {
		errs = append(errs, "relays: at least one relay is required")
	}

	// Two relays must never share a physical line. Iterate in id order
	// so the error message is stable.
	ids := make([]int, 0, len(c.Relays))
	for id := range c.Relays {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	lineOwner := map[int]int{}
	for _, id := range ids {
		rc := c.Relays[id]
		if id < 1 {
			errs = append(errs, fmt.Sprintf("relays: id %d must be positive", id))
		}
		if rc.Line < 0 {
			errs = append(errs, fmt.Sprintf("relays: relay %d line must be non-negative", id))
		}
		if owner, dup := lineOwner[rc.Line]; dup {
			errs = append(errs, fmt.Sprintf("relays: relay %d and relay %d share line %d", owner, id, rc.Line))
		} else {
			lineOwner[rc.Line] = id
		}
		if rc.TriggerSeconds < 0 {
			errs = append(errs, fmt.Sprintf("relays: relay %d trigger_duration must not be negative", id))
		}
	}

	if c.Relay.TriggerSeconds <= 0 {
		errs = append(errs, "relay_settings: trigger_duration must be positive")
	}
	if c.Relay.MaxConcurrentTriggers < 1 {
		errs = append(errs, "relay_settings: max_concurrent_triggers must be at least 1")
	}

	if c.Button.Enabled {
		if _, ok := c.Relays[c.Button.Relay]; !ok {
			errs = append(errs, fmt.Sprintf("button: relay %d is not configured", c.Button.Relay))
		}
		if c.Button.DebounceSeconds < 0 {
			errs = append(errs, "button: debounce_time must not be negative")
		}
		if c.Button.Mode != "edge" && c.Button.Mode != "poll" {
			errs = append(errs, fmt.Sprintf("button: mode %q must be \"edge\" or \"poll\"", c.Button.Mode))
		}
		if c.Button.Mode == "poll" && c.Button.PollIntervalMs < 1 {
			errs = append(errs, "button: poll_interval_ms must be at least 1")
		}
		if owner, taken := lineOwner[c.Button.Line]; taken {
			errs = append(errs, fmt.Sprintf("button: line %d is already used by relay %d", c.Button.Line, owner))
		}
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, "server: port must be between 1 and 65535")
	}

	if c.MQTT.Enabled {
		if c.MQTT.Broker == "" {
			errs = append(errs, "mqtt: broker is required when enabled")
		}
		if c.MQTT.BufferSize < 1 {
			errs = append(errs, "mqtt: buffer_size must be at least 1")
		}
	}

	if c.GPIO.Chip == "" {
		errs = append(errs, "gpio: chip is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// TriggerDuration returns the effective trigger duration for one relay:
// the per-relay override when set, the board-wide default otherwise.
func (c *Config) TriggerDuration(id int) time.Duration {
	if rc, ok := c.Relays[id]; ok && rc.TriggerSeconds > 0 {
		return secondsToDuration(rc.TriggerSeconds)
	}
	return secondsToDuration(c.Relay.TriggerSeconds)
}

// Debounce returns the button debounce window.
func (b ButtonConfig) Debounce() time.Duration {
	return secondsToDuration(b.DebounceSeconds)
}

// PollInterval returns the polling interval for mode "poll".
func (b ButtonConfig) PollInterval() time.Duration {
	return time.Duration(b.PollIntervalMs) * time.Millisecond
}

// Heartbeat returns the telemetry heartbeat interval; zero disables it.
func (m MQTTConfig) Heartbeat() time.Duration {
	return time.Duration(m.HeartbeatSeconds) * time.Second
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
