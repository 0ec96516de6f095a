package commands

import (
	"github.com/spf13/cobra"

	"github.com/threetier/eks-topology/cmd/topology/handlers"
)

// Render returns the command for printing the effective topology.
//
// Optional flags:
//
//	--config, -c: Path to the topology YAML file (default: topology.yaml)
func Render() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the fully-defaulted topology as YAML",
		Long: `Load the topology declaration, apply every default, and print the
resulting declaration together with the planned subnet layout.

The output is what the Pulumi program will actually declare.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Render(configPath, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to the topology file (default: topology.yaml)")

	return cmd
}
