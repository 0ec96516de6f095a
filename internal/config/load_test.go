package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTopology(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "topology.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadMissingDefaultFileUsesDefaults(t *testing.T) {
	t.Parallel()

	// Empty path means the implicit default file; its absence is valid.
	topo, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "three-tier", topo.Name)
	assert.Equal(t, DefaultVPCCIDR, topo.Network.VPCCIDR)
	assert.Equal(t, DefaultZoneCount, topo.Network.ZoneCount)
	assert.Equal(t, DefaultNATGateways, topo.Network.NATGateways)
	assert.Equal(t, DefaultKubernetesVersion, topo.Cluster.Version)
	assert.Equal(t, DefaultLogTypes, topo.Cluster.LogTypes)
	assert.Equal(t, DefaultDBEngineVersion, topo.Database.EngineVersion)
	assert.Equal(t, DefaultDBPort, topo.Database.Port)
	assert.Equal(t, DefaultBackupRetention, topo.Database.BackupRetentionDays)
	assert.Equal(t, DefaultIdentityNamespace, topo.Identity.Namespace)
	assert.Equal(t, DefaultIdentityServiceAccount, topo.Identity.ServiceAccount)
}

func TestLoadExplicitMissingPathFails(t *testing.T) {
	t.Parallel()

	// A named file that does not exist is an error, never the defaults.
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read topology file")
}

func TestLoadDefaultsAreNonProductionTeardown(t *testing.T) {
	t.Parallel()

	topo, err := Load("")
	require.NoError(t, err)

	// The declared default favors easy teardown. Flipping either field
	// here is a deliberate behavior change, not a cleanup.
	assert.False(t, topo.Database.DeletionProtection)
	assert.False(t, topo.Database.RetainOnDelete)
	assert.True(t, topo.Database.NonProductionTeardown())
}

func TestLoadOverrides(t *testing.T) {
	t.Parallel()

	path := writeTopology(t, `
name: staging
network:
  vpc_cidr: 172.20.0.0/16
  nat_gateways: 3
  zone_count: 3
cluster:
  version: "1.31"
  node_pool:
    instance_types: [m6i.large]
    min_size: 1
    desired_size: 3
    max_size: 50
database:
  deletion_protection: true
  retain_on_delete: true
`)

	topo, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "staging", topo.Name)
	assert.Equal(t, "172.20.0.0/16", topo.Network.VPCCIDR)
	assert.Equal(t, 3, topo.Network.NATGateways)
	assert.Equal(t, "1.31", topo.Cluster.Version)
	assert.Equal(t, []string{"m6i.large"}, topo.Cluster.NodePool.InstanceTypes)
	assert.Equal(t, 50, topo.Cluster.NodePool.MaxSize)
	assert.False(t, topo.Database.NonProductionTeardown())

	// Untouched sections still get defaults.
	assert.Equal(t, DefaultLogTypes, topo.Cluster.LogTypes)
	assert.Equal(t, DefaultDBName, topo.Database.Name)
}

func TestLoadInvalidYAML(t *testing.T) {
	t.Parallel()

	path := writeTopology(t, "name: [unclosed")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadInvalidTopology(t *testing.T) {
	t.Parallel()

	path := writeTopology(t, `
network:
  vpc_cidr: not-a-cidr
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vpc_cidr")
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	t.Parallel()

	topo, err := Load("")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, topo.WriteYAML(&buf))

	path := writeTopology(t, buf.String())
	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, topo, reloaded)
}
