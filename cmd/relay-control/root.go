package main

import (
	"github.com/spf13/cobra"
)

// rootOptions holds flags shared by all subcommands.
type rootOptions struct {
	configPath string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "relay-control",
		Short:         "Timed relay actuation over HTTP and a physical button",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "config.yaml", "path to the configuration file")

	cmd.AddCommand(
		newServeCommand(opts),
		newDiagButtonCommand(opts),
		newTestRelaysCommand(opts),
	)
	return cmd
}
