package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sweeney/relay-control/internal/button"
	"github.com/sweeney/relay-control/internal/config"
	"github.com/sweeney/relay-control/internal/gpio"
	"github.com/sweeney/relay-control/internal/logging"
	"github.com/sweeney/relay-control/internal/mqtt"
	"github.com/sweeney/relay-control/internal/relay"
	"github.com/sweeney/relay-control/internal/status"
	"github.com/sweeney/relay-control/internal/web"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the relay control daemon",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runServe(opts.configPath)
		},
	}
}

// buildDefs converts the configured relay map into registry definitions
// in ascending id order.
func buildDefs(cfg *config.Config) []relay.Def {
	ids := make([]int, 0, len(cfg.Relays))
	for id := range cfg.Relays {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	defs := make([]relay.Def, 0, len(ids))
	for _, id := range ids {
		rc := cfg.Relays[id]
		defs = append(defs, relay.Def{
			ID:       id,
			Line:     rc.Line,
			Name:     rc.Name,
			Duration: cfg.TriggerDuration(id),
		})
	}
	return defs
}

func runServe(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logging.New(cfg.Logging)

	chip, err := gpio.OpenChip(cfg.GPIO.Chip)
	if err != nil {
		return fmt.Errorf("open gpio chip %s: %w", cfg.GPIO.Chip, err)
	}
	defer chip.Close()

	outputs := make(map[int]gpio.Output, len(cfg.Relays))
	// Closing an output drives the line OFF; the deferred close is the
	// hardware cleanup of last resort.
	defer func() {
		for id, out := range outputs {
			if err := out.Close(); err != nil {
				log.Warn("relay line close failed", "relay", id, "error", err)
			}
		}
	}()
	for id, rc := range cfg.Relays {
		out, err := chip.RequestOutput(rc.Line, cfg.Relay.ActiveLow)
		if err != nil {
			return fmt.Errorf("request relay %d on line %d: %w", id, rc.Line, err)
		}
		outputs[id] = out
	}

	reg, err := relay.NewRegistry(buildDefs(cfg), outputs)
	if err != nil {
		return fmt.Errorf("build relay registry: %w", err)
	}

	tracker := status.NewTracker(time.Now(), status.Config{
		RelayCount:     len(cfg.Relays),
		MaxConcurrent:  cfg.Relay.MaxConcurrentTriggers,
		TriggerSeconds: cfg.Relay.TriggerSeconds,
		ActiveLow:      cfg.Relay.ActiveLow,
		ButtonEnabled:  cfg.Button.Enabled,
		Broker:         cfg.MQTT.Broker,
		HTTPAddr:       cfg.Server.Addr(),
	})
	observers := []relay.Observer{tracker}

	var publisher mqtt.Publisher
	var connStatus mqtt.ConnectionStatus
	if cfg.MQTT.Enabled {
		pub := mqtt.NewRealPublisher(cfg.MQTT, log.With("component", "mqtt").Logger)
		pub.OnConnectionChange(tracker.SetMQTTConnected)
		observers = append(observers, mqtt.NewObserver(pub, log.Logger))
		publisher = pub
		connStatus = pub
		defer pub.Close()
	}

	ctl := relay.NewController(reg, relay.NewAdmission(cfg.Relay.MaxConcurrentTriggers), log.Logger, observers...)

	if publisher != nil {
		snap := tracker.Snapshot()
		err := publisher.PublishSystem(mqtt.SystemEvent{
			Timestamp:  snap.Now,
			Event:      "STARTUP",
			Retained:   true,
			RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
		})
		if err != nil {
			log.Warn("startup event publish failed", "error", err)
		}
	}

	srv := web.New(cfg.Server.Addr(), cfg.Server.APIKey, ctl, tracker, log.Logger)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", "error", err)
		}
	}()
	log.Info("http server listening", "addr", cfg.Server.Addr())

	// Cancelled at shutdown to stop the button poller and heartbeat.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var stopButton func()
	if cfg.Button.Enabled {
		stopButton, err = armButton(ctx, chip, cfg.Button, ctl, log)
		if err != nil {
			// The HTTP surface still works without the button.
			log.Warn("button disabled", "line", cfg.Button.Line, "error", err)
		}
	}

	if publisher != nil && cfg.MQTT.Heartbeat() > 0 {
		go heartbeatLoop(ctx, cfg.MQTT.Heartbeat(), publisher, connStatus, tracker, log)
	}

	log.Info("relay control started",
		"relays", len(cfg.Relays),
		"max_concurrent", cfg.Relay.MaxConcurrentTriggers,
		"trigger_duration", cfg.Relay.TriggerSeconds,
		"button", cfg.Button.Enabled,
		"mqtt", cfg.MQTT.Enabled)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	reason := signalName(sig)
	log.Info("shutting down", "signal", reason)

	// Stop accepting new triggers before draining the in-flight ones.
	if stopButton != nil {
		stopButton()
	}
	cancel()

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutCancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		log.Warn("http shutdown incomplete", "error", err)
	}

	ctl.Wait()

	if publisher != nil {
		snap := tracker.Snapshot()
		err := publisher.PublishSystem(mqtt.SystemEvent{
			Timestamp:  snap.Now,
			Event:      "SHUTDOWN",
			Reason:     reason,
			Retained:   true,
			RawPayload: status.FormatStatusEvent(snap, "SHUTDOWN", reason),
		})
		if err != nil {
			log.Warn("shutdown event publish failed", "error", err)
		}
	}

	log.Info("shutdown complete")
	return nil
}

// armButton wires the physical button to the controller, preferring
// interrupt-driven edges and falling back to polling when the line
// cannot deliver events.
func armButton(ctx context.Context, chip *gpio.Chip, bc config.ButtonConfig, ctl *relay.Controller, log *logging.Logger) (func(), error) {
	window := bc.Debounce()

	if bc.Mode == "edge" {
		es := button.NewEdgeSource(ctl, bc.Relay, window, relay.SourceButton, log.Logger)
		in, err := chip.RequestEdgeInput(bc.Line, bc.PullUp, es.Handle)
		if err == nil {
			log.Info("button armed", "mode", "edge", "line", bc.Line, "relay", bc.Relay, "debounce", window)
			return func() {
				// Events must stop before the line is released.
				es.Close()
				if err := in.Close(); err != nil {
					log.Warn("button line close failed", "error", err)
				}
			}, nil
		}
		log.Warn("edge events unavailable, falling back to polling", "line", bc.Line, "error", err)
	}

	in, err := chip.RequestInput(bc.Line, bc.PullUp)
	if err != nil {
		return nil, fmt.Errorf("request button line %d: %w", bc.Line, err)
	}
	p := button.NewPoller(ctl, bc.Relay, window, relay.SourceButton, in.Pressed, log.Logger)
	ticker := time.NewTicker(bc.PollInterval())
	go func() {
		defer ticker.Stop()
		p.Run(ctx, ticker.C, time.Now)
	}()
	log.Info("button armed", "mode", "poll", "line", bc.Line, "relay", bc.Relay,
		"interval", bc.PollInterval(), "debounce", window)
	return func() {
		if err := in.Close(); err != nil {
			log.Warn("button line close failed", "error", err)
		}
	}, nil
}

func heartbeatLoop(ctx context.Context, interval time.Duration, pub mqtt.Publisher, conn mqtt.ConnectionStatus, tracker *status.Tracker, log *logging.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tracker.SetMQTTConnected(conn.IsConnected())
			snap := tracker.Snapshot()
			err := pub.PublishSystem(mqtt.SystemEvent{
				Timestamp:  snap.Now,
				Event:      "HEARTBEAT",
				RawPayload: status.FormatStatusEvent(snap, "HEARTBEAT", ""),
			})
			if err != nil {
				log.Warn("heartbeat publish failed", "error", err)
			} else {
				log.Debug("heartbeat published", "uptime", snap.Uptime().Truncate(time.Second))
			}
		}
	}
}

func signalName(sig os.Signal) string {
	switch sig {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	default:
		return "UNKNOWN"
	}
}
