// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument parsing,
// flag binding, and validation. Command execution is delegated to handler
// functions in the handlers package.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/etcdseed/cmd/etcdseed/handlers"
)

// Root returns the root command for the etcdseed CLI.
//
// Run without a subcommand it bootstraps the node. The run is a no-op when
// the peers file already exists.
//
// Flags:
//
//	--config, -c: Path to an optional YAML configuration file
//	--verbose, -v: Print debug output
func Root() *cobra.Command {
	var configPath string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "etcdseed",
		Short: "Bootstrap an etcd member from its auto scaling group",
		Long: `Bootstrap an etcd member from its auto scaling group.

etcdseed discovers the other members of the node's group, probes them for a
running etcd cluster and either joins it, after removing members that have
left the group, or founds a new cluster. The result is written to the peers
file (PEERS_FILE) sourced by the etcd unit.

Settings are read from the environment and optionally from a YAML file.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Bootstrap(cmd.Context(), configPath, verbose)
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to configuration file")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print debug output")

	cmd.AddCommand(Show(&configPath))
	cmd.AddCommand(Version())

	return cmd
}
