package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sweeney/relay-control/internal/config"
	"github.com/sweeney/relay-control/internal/gpio"
)

func newDiagButtonCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "diag-button",
		Short: "Interactively test the physical button wiring",
		Long: `Reads the configured button line and reports both edge events and
level changes until interrupted. Useful for verifying wiring and the
pull-up setting before enabling the button in the daemon.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runDiagButton(opts.configPath)
		},
	}
}

func runDiagButton(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	bc := cfg.Button
	fmt.Printf("button config: enabled=%v line=%d relay=%d pull_up=%v debounce=%v mode=%s\n",
		bc.Enabled, bc.Line, bc.Relay, bc.PullUp, bc.Debounce(), bc.Mode)
	if !bc.Enabled {
		return errors.New("button is disabled in the configuration")
	}

	chip, err := gpio.OpenChip(cfg.GPIO.Chip)
	if err != nil {
		return fmt.Errorf("open gpio chip %s: %w", cfg.GPIO.Chip, err)
	}
	defer chip.Close()

	var presses atomic.Int64
	in, err := chip.RequestEdgeInput(bc.Line, bc.PullUp, func(t time.Time) {
		fmt.Printf("edge event: press %d at %s\n", presses.Add(1), t.Format(time.RFC3339Nano))
	})
	if err != nil {
		fmt.Printf("edge events unavailable (%v), polling only\n", err)
		in, err = chip.RequestInput(bc.Line, bc.PullUp)
		if err != nil {
			return fmt.Errorf("request button line %d: %w", bc.Line, err)
		}
	}
	defer in.Close()

	prev, err := in.Pressed()
	if err != nil {
		return fmt.Errorf("read button line: %w", err)
	}
	fmt.Printf("current state: pressed=%v\n", prev)
	if bc.PullUp {
		fmt.Println("expected: line HIGH released, LOW pressed (pull-up)")
	} else {
		fmt.Println("expected: line LOW released, HIGH pressed (pull-down)")
	}
	fmt.Println("press the button now (Ctrl+C to exit)")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-sigCh:
			fmt.Printf("done: %d press events seen\n", presses.Load())
			return nil
		case <-ticker.C:
			cur, err := in.Pressed()
			if err != nil {
				fmt.Printf("read error: %v\n", err)
				continue
			}
			if cur != prev {
				fmt.Printf("level change: pressed=%v\n", cur)
				prev = cur
			}
		}
	}
}
