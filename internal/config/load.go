package config

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultTopologyFile is the file name looked up when no path is given.
const DefaultTopologyFile = "topology.yaml"

// Load reads, defaults, and validates a topology declaration from a YAML
// file. With an empty path the default file is used, and its absence is
// not an error: the built-in defaults describe a complete environment on
// their own. An explicitly given path must exist, so a typoed --config
// never silently deploys the defaults.
func Load(path string) (*Topology, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultTopologyFile
	}

	var t Topology
	data, err := os.ReadFile(path) // #nosec G304
	switch {
	case os.IsNotExist(err) && !explicit:
		// Fall through to defaults.
	case err != nil:
		return nil, fmt.Errorf("failed to read topology file: %w", err)
	default:
		if err := yaml.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("failed to unmarshal topology yaml: %w", err)
		}
	}

	t.ApplyDefaults()

	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("topology validation failed: %w", err)
	}
	return &t, nil
}

// ApplyDefaults fills every unset field with the documented default so
// that the effective declaration is fully explicit afterwards.
func (t *Topology) ApplyDefaults() {
	if t.Name == "" {
		t.Name = "three-tier"
	}

	if t.Network.VPCCIDR == "" {
		t.Network.VPCCIDR = DefaultVPCCIDR
	}
	if t.Network.ZoneCount == 0 {
		t.Network.ZoneCount = DefaultZoneCount
	}
	if t.Network.SubnetPrefix == 0 {
		t.Network.SubnetPrefix = DefaultSubnetPrefix
	}
	if t.Network.NATGateways == 0 {
		t.Network.NATGateways = DefaultNATGateways
	}

	if t.Cluster.Version == "" {
		t.Cluster.Version = DefaultKubernetesVersion
	}
	if len(t.Cluster.LogTypes) == 0 {
		t.Cluster.LogTypes = append([]string(nil), DefaultLogTypes...)
	}
	pool := &t.Cluster.NodePool
	if pool.Name == "" {
		pool.Name = DefaultNodePoolName
	}
	if len(pool.InstanceTypes) == 0 {
		pool.InstanceTypes = append([]string(nil), DefaultInstanceTypes...)
	}
	if pool.MaxSize == 0 {
		pool.MaxSize = 1000
	}
	if pool.DesiredSize == 0 {
		pool.DesiredSize = 2
	}
	if pool.MaxUnavailablePercent == 0 {
		pool.MaxUnavailablePercent = DefaultMaxUnavailablePercent
	}

	db := &t.Database
	if db.Engine == "" {
		db.Engine = DefaultDBEngine
	}
	if db.EngineVersion == "" {
		db.EngineVersion = DefaultDBEngineVersion
	}
	if db.InstanceClass == "" {
		db.InstanceClass = DefaultDBInstanceClass
	}
	if db.Name == "" {
		db.Name = DefaultDBName
	}
	if db.Username == "" {
		db.Username = DefaultDBUsername
	}
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.StorageGiB == 0 {
		db.StorageGiB = DefaultDBStorageGiB
	}
	if db.BackupRetentionDays == 0 {
		db.BackupRetentionDays = DefaultBackupRetention
	}

	if t.Identity.Namespace == "" {
		t.Identity.Namespace = DefaultIdentityNamespace
	}
	if t.Identity.ServiceAccount == "" {
		t.Identity.ServiceAccount = DefaultIdentityServiceAccount
	}
}

// WriteYAML renders the topology as YAML to w.
func (t *Topology) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(t); err != nil {
		return fmt.Errorf("failed to encode topology: %w", err)
	}
	return enc.Close()
}
