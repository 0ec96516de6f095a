package config

import (
	"fmt"
	"net"
	"strings"
)

// validLogTypes are the control plane log categories EKS accepts.
var validLogTypes = map[string]bool{
	"api":               true,
	"audit":             true,
	"authenticator":     true,
	"controllerManager": true,
	"scheduler":         true,
}

// Validate checks the topology for declaration errors. It runs before
// synthesis so that a malformed declaration never reaches the engine.
func (t *Topology) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("name is required")
	}
	if strings.ContainsAny(t.Name, " /") {
		return fmt.Errorf("name %q must not contain spaces or slashes", t.Name)
	}

	if err := t.Network.validate(); err != nil {
		return fmt.Errorf("network validation failed: %w", err)
	}
	if err := t.Cluster.validate(); err != nil {
		return fmt.Errorf("cluster validation failed: %w", err)
	}
	if err := t.Database.validate(); err != nil {
		return fmt.Errorf("database validation failed: %w", err)
	}
	if t.Identity.Namespace == "" || t.Identity.ServiceAccount == "" {
		return fmt.Errorf("identity validation failed: namespace and service_account are required")
	}
	return nil
}

func (n NetworkSpec) validate() error {
	if n.VPCCIDR == "" {
		return fmt.Errorf("vpc_cidr is required")
	}
	if _, _, err := net.ParseCIDR(n.VPCCIDR); err != nil {
		return fmt.Errorf("invalid vpc_cidr: %w", err)
	}
	if n.ZoneCount < 2 {
		return fmt.Errorf("zone_count must be at least 2, got %d", n.ZoneCount)
	}
	if n.NATGateways < 1 || n.NATGateways > n.ZoneCount {
		return fmt.Errorf("nat_gateways must be between 1 and zone_count (%d), got %d", n.ZoneCount, n.NATGateways)
	}
	// Every tier must fit in every zone.
	if _, err := n.PlanSubnets(); err != nil {
		return err
	}
	return nil
}

func (c ClusterSpec) validate() error {
	if c.Version == "" {
		return fmt.Errorf("version is required")
	}
	for _, lt := range c.LogTypes {
		if !validLogTypes[lt] {
			return fmt.Errorf("invalid log type %q", lt)
		}
	}
	pool := c.NodePool
	if len(pool.InstanceTypes) == 0 {
		return fmt.Errorf("node pool %q needs at least one instance type", pool.Name)
	}
	if pool.MinSize < 0 || pool.MinSize > pool.DesiredSize || pool.DesiredSize > pool.MaxSize {
		return fmt.Errorf("node pool %q sizes must satisfy min <= desired <= max (got %d/%d/%d)",
			pool.Name, pool.MinSize, pool.DesiredSize, pool.MaxSize)
	}
	if pool.MaxUnavailablePercent <= 0 || pool.MaxUnavailablePercent > 100 {
		return fmt.Errorf("node pool %q max_unavailable_percent must be in (0,100], got %d",
			pool.Name, pool.MaxUnavailablePercent)
	}
	return nil
}

func (d DatabaseSpec) validate() error {
	if d.Engine == "" || d.EngineVersion == "" {
		return fmt.Errorf("engine and engine_version are required")
	}
	if d.Port <= 0 || d.Port > 65535 {
		return fmt.Errorf("invalid port %d", d.Port)
	}
	if d.BackupRetentionDays < 0 || d.BackupRetentionDays > 35 {
		return fmt.Errorf("backup_retention_days must be between 0 and 35, got %d", d.BackupRetentionDays)
	}
	return nil
}
