package commands

import (
	"github.com/spf13/cobra"

	"github.com/threetier/eks-topology/cmd/topology/handlers"
)

// Validate returns the command for validating a topology file.
//
// Optional flags:
//
//	--config, -c: Path to the topology YAML file (default: topology.yaml)
func Validate() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the topology declaration",
		Long: `Load the topology declaration, apply defaults, and validate it.

Prints a summary of the effective topology. A missing file is valid:
the built-in defaults describe a complete environment.

Examples:
  # Validate topology.yaml in the current directory
  topology validate

  # Validate a specific file
  topology validate -c production.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Validate(configPath, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to the topology file (default: topology.yaml)")

	return cmd
}
