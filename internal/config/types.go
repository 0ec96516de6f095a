package config

// Topology holds the full topology declaration.
type Topology struct {
	// Name is the environment name used as a prefix for resource names
	// and ownership tags.
	Name string `yaml:"name"`

	Network  NetworkSpec  `yaml:"network"`
	Cluster  ClusterSpec  `yaml:"cluster"`
	Database DatabaseSpec `yaml:"database"`
	Identity IdentitySpec `yaml:"identity"`
}

// NetworkSpec declares the VPC and its subnet tiers.
type NetworkSpec struct {
	// VPCCIDR is the address block for the whole environment.
	VPCCIDR string `yaml:"vpc_cidr"`

	// ZoneCount is the number of availability zones every tier is
	// replicated across.
	ZoneCount int `yaml:"zone_count"`

	// SubnetPrefix is the prefix length of each subnet (e.g. 24).
	SubnetPrefix int `yaml:"subnet_prefix"`

	// NATGateways is the number of managed NAT gateways serving the
	// private tier. Private route tables are spread across them.
	NATGateways int `yaml:"nat_gateways"`
}

// ClusterSpec declares the managed Kubernetes control plane.
type ClusterSpec struct {
	// Version is the Kubernetes minor version pin (e.g. "1.30").
	Version string `yaml:"version"`

	// LogTypes are the control plane log categories to enable.
	LogTypes []string `yaml:"log_types"`

	// EndpointPublicAccess keeps the API endpoint reachable from the
	// internet in addition to the private endpoint. Default: true.
	EndpointPublicAccess *bool `yaml:"endpoint_public_access"`

	// NodePool is the autoscaling policy for managed compute. No static
	// node group is created from it; the control plane reconciles
	// capacity continuously within these bounds.
	NodePool NodePoolSpec `yaml:"node_pool"`
}

// NodePoolSpec is the autoscaling policy handed to the managed compute
// mode of the cluster.
type NodePoolSpec struct {
	Name          string   `yaml:"name"`
	InstanceTypes []string `yaml:"instance_types"`
	MinSize       int      `yaml:"min_size"`
	MaxSize       int      `yaml:"max_size"`
	DesiredSize   int      `yaml:"desired_size"`

	// MaxUnavailablePercent bounds how many nodes may be disrupted at
	// once during updates.
	MaxUnavailablePercent int `yaml:"max_unavailable_percent"`
}

// DatabaseSpec declares the managed relational database instance.
type DatabaseSpec struct {
	Engine        string `yaml:"engine"`
	EngineVersion string `yaml:"engine_version"`
	InstanceClass string `yaml:"instance_class"`
	Name          string `yaml:"name"`
	Username      string `yaml:"username"`
	Port          int    `yaml:"port"`
	StorageGiB    int    `yaml:"storage_gib"`

	// BackupRetentionDays is the automated backup window.
	BackupRetentionDays int `yaml:"backup_retention_days"`

	// DeletionProtection guards the instance against teardown. It is off
	// by default: this topology favors easy environment teardown over
	// durability. Set it (together with RetainOnDelete) before promoting
	// the declaration to a durable environment.
	DeletionProtection bool `yaml:"deletion_protection"`

	// RetainOnDelete keeps a final snapshot when the instance is
	// destroyed. Off by default, see DeletionProtection.
	RetainOnDelete bool `yaml:"retain_on_delete"`
}

// IdentitySpec declares the workload identity bound to the cluster's
// OIDC trust provider.
type IdentitySpec struct {
	// Namespace and ServiceAccount scope the identity to a single
	// Kubernetes service account.
	Namespace      string `yaml:"namespace"`
	ServiceAccount string `yaml:"service_account"`
}

// PublicEndpoint reports whether the cluster API endpoint is publicly
// reachable.
func (c ClusterSpec) PublicEndpoint() bool {
	if c.EndpointPublicAccess == nil {
		return true
	}
	return *c.EndpointPublicAccess
}

// NonProductionTeardown reports whether the database is configured for
// full deletion without retention. Callers surface this as a warning.
func (d DatabaseSpec) NonProductionTeardown() bool {
	return !d.DeletionProtection && !d.RetainOnDelete
}
