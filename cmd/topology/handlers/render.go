package handlers

import (
	"fmt"
	"io"

	"github.com/threetier/eks-topology/internal/config"
)

// Render loads the topology, applies every default, and writes the
// fully-explicit declaration plus the planned subnet layout to w.
func Render(path string, w io.Writer) error {
	topo, err := config.Load(path)
	if err != nil {
		return err
	}

	if err := topo.WriteYAML(w); err != nil {
		return err
	}

	plans, err := topo.Network.PlanSubnets()
	if err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "# Planned subnets (tier, zone index, CIDR):")
	for _, plan := range plans {
		fmt.Fprintf(w, "#   %-9s zone %d  %s\n", plan.Tier, plan.ZoneIndex, plan.CIDR)
	}
	return nil
}
