package commands

import (
	"github.com/spf13/cobra"

	"github.com/threetier/eks-topology/cmd/topology/handlers"
)

// Verify returns the command for checking a deployed environment
// against the topology's invariants.
//
// Required flags:
//
//	--outputs, -o: Path to the stack outputs JSON (pulumi stack output --json)
//
// Optional flags:
//
//	--config, -c: Path to the topology YAML file (default: topology.yaml)
//
// Environment variables:
//
//	AWS credentials and region from the standard AWS environment/config chain.
func Verify() *cobra.Command {
	var configPath string
	var outputsPath string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a deployed environment against the declaration",
		Long: `Run read-only checks against the deployed environment: cluster state
and logging, subnet tiering, database policy, and the credential secret.

The stack outputs are taken from a JSON file:

  pulumi stack output --json > outputs.json
  topology verify -o outputs.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Verify(cmd.Context(), configPath, outputsPath, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to the topology file (default: topology.yaml)")
	cmd.Flags().StringVarP(&outputsPath, "outputs", "o", "", "Path to the stack outputs JSON file")
	_ = cmd.MarkFlagRequired("outputs")

	return cmd
}
