// Package main is the entry point for the topology CLI.
//
// topology is a companion tool for the three-tier-eks Pulumi program.
// It validates and renders the topology declaration and verifies a
// deployed environment against the declaration's invariants.
//
// Commands: validate, render, verify, version.
package main

import (
	"fmt"
	"os"

	"github.com/threetier/eks-topology/cmd/topology/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
