// Package handlers implements the topology CLI commands. Command
// definitions and flag parsing live in the commands package; the logic
// here is kept free of cobra so it can be tested directly.
package handlers

import (
	"fmt"
	"io"
	"strings"

	"github.com/threetier/eks-topology/internal/config"
)

// Validate loads and validates a topology file and prints a summary of
// the effective declaration.
func Validate(path string, w io.Writer) error {
	topo, err := config.Load(path)
	if err != nil {
		return err
	}

	printSummary(w, topo)

	if topo.Database.NonProductionTeardown() {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Warning: the database teardown policy is delete-without-retention")
		fmt.Fprintln(w, "and deletion protection is disabled. This is intended for easily")
		fmt.Fprintln(w, "disposable environments. For durable data, set:")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "  database:")
		fmt.Fprintln(w, "    deletion_protection: true")
		fmt.Fprintln(w, "    retain_on_delete: true")
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Topology is valid.")
	return nil
}

// printSummary prints the effective topology in a short human-readable form.
func printSummary(w io.Writer, topo *config.Topology) {
	fmt.Fprintln(w, "Topology Summary")
	fmt.Fprintln(w, "----------------")
	fmt.Fprintf(w, "  Name:       %s\n", topo.Name)
	fmt.Fprintf(w, "  VPC:        %s across %d zones, %d NAT gateways\n",
		topo.Network.VPCCIDR, topo.Network.ZoneCount, topo.Network.NATGateways)
	fmt.Fprintf(w, "  Cluster:    Kubernetes %s, logs: %s\n",
		topo.Cluster.Version, strings.Join(topo.Cluster.LogTypes, ", "))
	fmt.Fprintf(w, "  Node pool:  %s, %d-%d nodes (desired %d), types: %s\n",
		topo.Cluster.NodePool.Name,
		topo.Cluster.NodePool.MinSize, topo.Cluster.NodePool.MaxSize, topo.Cluster.NodePool.DesiredSize,
		strings.Join(topo.Cluster.NodePool.InstanceTypes, ", "))
	fmt.Fprintf(w, "  Database:   %s %s on %s, port %d, %d-day backups\n",
		topo.Database.Engine, topo.Database.EngineVersion, topo.Database.InstanceClass,
		topo.Database.Port, topo.Database.BackupRetentionDays)
	fmt.Fprintf(w, "  Identity:   %s/%s\n", topo.Identity.Namespace, topo.Identity.ServiceAccount)
}
