// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument
// parsing and flag binding. Command execution is delegated to handler
// functions in the handlers package.
package commands

import "github.com/spf13/cobra"

// Root returns the root command for the topology CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "topology",
		Short: "Validate, render, and verify the three-tier EKS topology",
	}

	cmd.AddCommand(Validate())
	cmd.AddCommand(Render())
	cmd.AddCommand(Verify())
	cmd.AddCommand(Version())

	return cmd
}
