package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/sweeney/relay-control/internal/config"
	"github.com/sweeney/relay-control/internal/gpio"
)

func newTestRelaysCommand(opts *rootOptions) *cobra.Command {
	var hold time.Duration

	cmd := &cobra.Command{
		Use:   "test-relays",
		Short: "Cycle every configured relay ON and OFF once",
		Long: `Actuates each configured relay in id order, holding it ON briefly.
Intended for verifying board wiring; do not run while the daemon is
using the same lines.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runTestRelays(opts.configPath, hold)
		},
	}
	cmd.Flags().DurationVar(&hold, "hold", time.Second, "how long to hold each relay ON")
	return cmd
}

func runTestRelays(configPath string, hold time.Duration) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	chip, err := gpio.OpenChip(cfg.GPIO.Chip)
	if err != nil {
		return fmt.Errorf("open gpio chip %s: %w", cfg.GPIO.Chip, err)
	}
	defer chip.Close()

	ids := make([]int, 0, len(cfg.Relays))
	for id := range cfg.Relays {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	fmt.Printf("testing %d relays, %v ON each (active_low=%v)\n", len(ids), hold, cfg.Relay.ActiveLow)
	for _, id := range ids {
		rc := cfg.Relays[id]
		out, err := chip.RequestOutput(rc.Line, cfg.Relay.ActiveLow)
		if err != nil {
			return fmt.Errorf("request relay %d on line %d: %w", id, rc.Line, err)
		}

		fmt.Printf("relay %d (line %d) ON\n", id, rc.Line)
		if err := out.SetLevel(true); err != nil {
			out.Close()
			return fmt.Errorf("relay %d ON: %w", id, err)
		}
		time.Sleep(hold)
		if err := out.SetLevel(false); err != nil {
			out.Close()
			return fmt.Errorf("relay %d OFF: %w", id, err)
		}
		fmt.Printf("relay %d OFF\n", id)

		if err := out.Close(); err != nil {
			return fmt.Errorf("release relay %d: %w", id, err)
		}
	}

	fmt.Println("all relays tested")
	return nil
}
