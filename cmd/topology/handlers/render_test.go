package handlers

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/threetier/eks-topology/internal/config"
)

func TestRenderIsFullyExplicit(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Render("", &buf))

	// The rendered document reloads into the same effective topology.
	var topo config.Topology
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &topo))

	var want config.Topology
	want.ApplyDefaults()
	assert.Equal(t, want, topo)
}

func TestRenderPlansSubnets(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Render("", &buf))

	out := buf.String()
	assert.Contains(t, out, "# Planned subnets")
	assert.Contains(t, out, "10.0.0.0/24")
	assert.Contains(t, out, "10.0.8.0/24")
	assert.Contains(t, out, "database")
}

func TestRenderOverrides(t *testing.T) {
	t.Parallel()

	path := writeTopology(t, `
name: staging
network:
  vpc_cidr: 172.20.0.0/16
`)

	var buf bytes.Buffer
	require.NoError(t, Render(path, &buf))
	assert.Contains(t, buf.String(), "name: staging")
	assert.Contains(t, buf.String(), "172.20.0.0/24")
}
