package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/etcdseed/cmd/etcdseed/handlers"
)

// Show returns the command that prints the bootstrap result.
//
// Optional flags:
//
//	--archived: Read the archived cluster state instead of the peers file
//	--node: Node whose archived state to print (default: ETCD_NAME of the peers file)
func Show(configPath *string) *cobra.Command {
	var archived bool
	var node string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the peers file or the archived cluster state",
		Long: `Print the peers file written by the bootstrap.

On a terminal the values are rendered as a table; otherwise the file is
printed as KEY=VALUE lines.

With --archived the cluster state uploaded to ARCHIVE_BUCKET is printed as
JSON. Without a resolvable node name the archived node names are listed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := handlers.ShowOptions{
				ConfigPath: *configPath,
				Archived:   archived,
				Node:       node,
			}
			return handlers.Show(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().BoolVar(&archived, "archived", false, "Print the archived cluster state")
	cmd.Flags().StringVar(&node, "node", "", "Node name for --archived")

	return cmd
}
