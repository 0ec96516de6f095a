package network_test

import (
	"fmt"
	"testing"

	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threetier/eks-topology/internal/config"
	"github.com/threetier/eks-topology/internal/stack/network"
	"github.com/threetier/eks-topology/internal/testing/pulumitest"
)

func defaultTopology(t *testing.T) *config.Topology {
	t.Helper()
	var topo config.Topology
	topo.ApplyDefaults()
	require.NoError(t, topo.Validate())
	return &topo
}

// synthesize runs the network layer under the mock monitor.
func synthesize(t *testing.T, topo *config.Topology) *pulumitest.Mocks {
	t.Helper()
	mocks := &pulumitest.Mocks{}
	err := mocks.Run(func(ctx *pulumi.Context) error {
		_, err := network.Provision(ctx, topo)
		return err
	})
	require.NoError(t, err)
	return mocks
}

func TestProvisionSubnetTiers(t *testing.T) {
	topo := defaultTopology(t)
	mocks := synthesize(t, topo)

	subnets := mocks.ByType("aws:ec2/subnet:Subnet")
	require.Len(t, subnets, 9)

	// Every tier present in every zone, exactly once.
	seen := map[string]int{}
	for _, subnet := range subnets {
		tier := subnet.Tag(network.TierTagKey)
		zone := subnet.String("availabilityZone")
		require.NotEmpty(t, tier)
		require.NotEmpty(t, zone)
		seen[tier+"/"+zone]++
	}
	for _, tier := range config.Tiers {
		for _, zone := range pulumitest.MockZones {
			assert.Equal(t, 1, seen[tier+"/"+zone], "tier %s zone %s", tier, zone)
		}
	}
}

func TestProvisionSubnetAddressing(t *testing.T) {
	topo := defaultTopology(t)
	mocks := synthesize(t, topo)

	plans, err := topo.Network.PlanSubnets()
	require.NoError(t, err)

	declared := map[string]bool{}
	for _, subnet := range mocks.ByType("aws:ec2/subnet:Subnet") {
		declared[subnet.String("cidrBlock")] = true
	}
	for _, plan := range plans {
		assert.True(t, declared[plan.CIDR], "planned subnet %s not declared", plan.CIDR)
	}
}

func TestProvisionPublicSubnetsMapPublicIPs(t *testing.T) {
	topo := defaultTopology(t)
	mocks := synthesize(t, topo)

	for _, subnet := range mocks.ByType("aws:ec2/subnet:Subnet") {
		wantPublic := subnet.Tag(network.TierTagKey) == config.TierPublic
		assert.Equal(t, wantPublic, subnet.Bool("mapPublicIpOnLaunch"), "subnet %s", subnet.Name)
	}
}

func TestProvisionDatabaseTierHasNoInternetRoute(t *testing.T) {
	topo := defaultTopology(t)
	mocks := synthesize(t, topo)

	dbRouteTableID := fmt.Sprintf("%s-database-rt-id", topo.Name)

	routeTables := mocks.ByType("aws:ec2/routeTable:RouteTable")
	var foundDB bool
	for _, rt := range routeTables {
		if rt.Name == topo.Name+"-database-rt" {
			foundDB = true
		}
	}
	require.True(t, foundDB, "database route table not declared")

	// No route resource may point out of the database route table.
	for _, route := range mocks.ByType("aws:ec2/route:Route") {
		assert.NotEqual(t, dbRouteTableID, route.String("routeTableId"),
			"database route table has route %s", route.Name)
	}

	// Its subnets are still associated, so they never fall back to the
	// main route table.
	associations := 0
	for _, rta := range mocks.ByType("aws:ec2/routeTableAssociation:RouteTableAssociation") {
		if rta.String("routeTableId") == dbRouteTableID {
			associations++
		}
	}
	assert.Equal(t, topo.Network.ZoneCount, associations)
}

func TestProvisionNATGateways(t *testing.T) {
	topo := defaultTopology(t)
	mocks := synthesize(t, topo)

	nats := mocks.ByType("aws:ec2/natGateway:NatGateway")
	assert.Len(t, nats, topo.Network.NATGateways)
	assert.Len(t, mocks.ByType("aws:ec2/eip:Eip"), topo.Network.NATGateways)

	// Each private default route goes through one of the NAT gateways.
	natIDs := map[string]bool{}
	for _, nat := range nats {
		natIDs[nat.Name+"-id"] = true
	}
	privateRoutes := 0
	for _, route := range mocks.ByType("aws:ec2/route:Route") {
		if id := route.String("natGatewayId"); id != "" {
			privateRoutes++
			assert.True(t, natIDs[id], "route %s uses unknown NAT gateway %s", route.Name, id)
			assert.Equal(t, "0.0.0.0/0", route.String("destinationCidrBlock"))
		}
	}
	assert.Equal(t, topo.Network.ZoneCount, privateRoutes)
}

func TestProvisionPublicDefaultRoute(t *testing.T) {
	topo := defaultTopology(t)
	mocks := synthesize(t, topo)

	igwRoutes := 0
	for _, route := range mocks.ByType("aws:ec2/route:Route") {
		if route.String("gatewayId") != "" {
			igwRoutes++
			assert.Equal(t, "0.0.0.0/0", route.String("destinationCidrBlock"))
		}
	}
	assert.Equal(t, 1, igwRoutes)
}

func TestProvisionVPC(t *testing.T) {
	topo := defaultTopology(t)
	mocks := synthesize(t, topo)

	vpcs := mocks.ByType("aws:ec2/vpc:Vpc")
	require.Len(t, vpcs, 1)
	assert.Equal(t, topo.Network.VPCCIDR, vpcs[0].String("cidrBlock"))
	assert.True(t, vpcs[0].Bool("enableDnsHostnames"))
	assert.True(t, vpcs[0].Bool("enableDnsSupport"))
}

func TestProvisionFailsWithTooManyZones(t *testing.T) {
	topo := defaultTopology(t)
	// The mocked region offers three zones.
	topo.Network.ZoneCount = 4
	topo.Network.NATGateways = 2

	mocks := &pulumitest.Mocks{}
	err := mocks.Run(func(ctx *pulumi.Context) error {
		_, err := network.Provision(ctx, topo)
		return err
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "availability zones")

	// Fail fast: nothing may have been declared.
	assert.Empty(t, mocks.ByType("aws:ec2/vpc:Vpc"))
}
