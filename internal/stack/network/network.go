// Package network declares the VPC layer: one address space split into
// public, private, and database subnet tiers, each replicated across the
// configured availability zones.
package network

import (
	"fmt"

	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws"
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/ec2"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/threetier/eks-topology/internal/config"
)

// TierTagKey tags every subnet with the tier it belongs to. The
// post-apply verifier selects subnets by this key.
const TierTagKey = "eks-topology/tier"

// Network holds the declared network resources consumed by the other
// stack layers.
type Network struct {
	VPC             *ec2.Vpc
	PublicSubnets   []*ec2.Subnet
	PrivateSubnets  []*ec2.Subnet
	DatabaseSubnets []*ec2.Subnet

	// Zones are the availability zone names backing the subnet tiers,
	// in planning order.
	Zones []string
}

// PrivateSubnetIDs returns the private tier subnet IDs as an input array.
func (n *Network) PrivateSubnetIDs() pulumi.StringArray {
	return subnetIDs(n.PrivateSubnets)
}

// DatabaseSubnetIDs returns the database tier subnet IDs as an input array.
func (n *Network) DatabaseSubnetIDs() pulumi.StringArray {
	return subnetIDs(n.DatabaseSubnets)
}

func subnetIDs(subnets []*ec2.Subnet) pulumi.StringArray {
	ids := make(pulumi.StringArray, 0, len(subnets))
	for _, s := range subnets {
		ids = append(ids, s.ID())
	}
	return ids
}

// Provision declares the VPC, the three subnet tiers across all zones,
// the internet gateway, the NAT gateways, and the per-tier route tables.
//
// The database tier gets a route table with no default route: resources
// placed there can never reach the internet. If the region offers fewer
// zones than the declaration asks for, Provision fails before any
// resource is registered.
func Provision(ctx *pulumi.Context, topo *config.Topology) (*Network, error) {
	spec := topo.Network

	azs, err := aws.GetAvailabilityZones(ctx, &aws.GetAvailabilityZonesArgs{
		State: pulumi.StringRef("available"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to look up availability zones: %w", err)
	}
	if len(azs.Names) < spec.ZoneCount {
		return nil, fmt.Errorf("topology needs %d availability zones, region offers %d", spec.ZoneCount, len(azs.Names))
	}
	zones := azs.Names[:spec.ZoneCount]

	plans, err := spec.PlanSubnets()
	if err != nil {
		return nil, fmt.Errorf("failed to plan subnets: %w", err)
	}

	clusterTag := fmt.Sprintf("kubernetes.io/cluster/%s", topo.Name)

	vpc, err := ec2.NewVpc(ctx, topo.Name+"-vpc", &ec2.VpcArgs{
		CidrBlock:          pulumi.String(spec.VPCCIDR),
		EnableDnsHostnames: pulumi.Bool(true),
		EnableDnsSupport:   pulumi.Bool(true),
		Tags: pulumi.StringMap{
			"Name":     pulumi.String(topo.Name + "-vpc"),
			clusterTag: pulumi.String("shared"),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to declare vpc: %w", err)
	}

	net := &Network{VPC: vpc, Zones: zones}

	for _, plan := range plans {
		name := fmt.Sprintf("%s-%s-%d", topo.Name, plan.Tier, plan.ZoneIndex)

		tags := pulumi.StringMap{
			"Name":     pulumi.String(name),
			TierTagKey: pulumi.String(plan.Tier),
			clusterTag: pulumi.String("shared"),
		}
		switch plan.Tier {
		case config.TierPublic:
			tags["kubernetes.io/role/elb"] = pulumi.String("1")
		case config.TierPrivate:
			tags["kubernetes.io/role/internal-elb"] = pulumi.String("1")
		}

		subnet, err := ec2.NewSubnet(ctx, name, &ec2.SubnetArgs{
			VpcId:               vpc.ID(),
			CidrBlock:           pulumi.String(plan.CIDR),
			AvailabilityZone:    pulumi.String(zones[plan.ZoneIndex]),
			MapPublicIpOnLaunch: pulumi.Bool(plan.Tier == config.TierPublic),
			Tags:                tags,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to declare subnet %s: %w", name, err)
		}

		switch plan.Tier {
		case config.TierPublic:
			net.PublicSubnets = append(net.PublicSubnets, subnet)
		case config.TierPrivate:
			net.PrivateSubnets = append(net.PrivateSubnets, subnet)
		case config.TierDatabase:
			net.DatabaseSubnets = append(net.DatabaseSubnets, subnet)
		}
	}

	igw, err := ec2.NewInternetGateway(ctx, topo.Name+"-igw", &ec2.InternetGatewayArgs{
		VpcId: vpc.ID(),
		Tags:  pulumi.StringMap{"Name": pulumi.String(topo.Name + "-igw")},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to declare internet gateway: %w", err)
	}

	if err := provisionPublicRoutes(ctx, topo.Name, vpc, igw, net.PublicSubnets); err != nil {
		return nil, err
	}

	nats, err := provisionNATGateways(ctx, topo.Name, spec.NATGateways, igw, net.PublicSubnets)
	if err != nil {
		return nil, err
	}

	if err := provisionPrivateRoutes(ctx, topo.Name, vpc, nats, net.PrivateSubnets); err != nil {
		return nil, err
	}

	if err := provisionDatabaseRoutes(ctx, topo.Name, vpc, net.DatabaseSubnets); err != nil {
		return nil, err
	}

	return net, nil
}

// provisionPublicRoutes attaches all public subnets to a shared route
// table with a default route through the internet gateway.
func provisionPublicRoutes(ctx *pulumi.Context, name string, vpc *ec2.Vpc, igw *ec2.InternetGateway, subnets []*ec2.Subnet) error {
	rt, err := ec2.NewRouteTable(ctx, name+"-public-rt", &ec2.RouteTableArgs{
		VpcId: vpc.ID(),
		Tags:  pulumi.StringMap{"Name": pulumi.String(name + "-public-rt")},
	})
	if err != nil {
		return fmt.Errorf("failed to declare public route table: %w", err)
	}

	_, err = ec2.NewRoute(ctx, name+"-public-default", &ec2.RouteArgs{
		RouteTableId:         rt.ID(),
		DestinationCidrBlock: pulumi.String("0.0.0.0/0"),
		GatewayId:            igw.ID(),
	})
	if err != nil {
		return fmt.Errorf("failed to declare public default route: %w", err)
	}

	for i, subnet := range subnets {
		_, err := ec2.NewRouteTableAssociation(ctx, fmt.Sprintf("%s-public-rta-%d", name, i), &ec2.RouteTableAssociationArgs{
			RouteTableId: rt.ID(),
			SubnetId:     subnet.ID(),
		})
		if err != nil {
			return fmt.Errorf("failed to associate public subnet %d: %w", i, err)
		}
	}
	return nil
}

// provisionNATGateways places count NAT gateways into the first public
// subnets, each with its own elastic IP.
func provisionNATGateways(ctx *pulumi.Context, name string, count int, igw *ec2.InternetGateway, publicSubnets []*ec2.Subnet) ([]*ec2.NatGateway, error) {
	nats := make([]*ec2.NatGateway, 0, count)
	for i := 0; i < count; i++ {
		eip, err := ec2.NewEip(ctx, fmt.Sprintf("%s-nat-eip-%d", name, i), &ec2.EipArgs{
			Domain: pulumi.String("vpc"),
			Tags:   pulumi.StringMap{"Name": pulumi.String(fmt.Sprintf("%s-nat-eip-%d", name, i))},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to declare NAT EIP %d: %w", i, err)
		}

		nat, err := ec2.NewNatGateway(ctx, fmt.Sprintf("%s-nat-%d", name, i), &ec2.NatGatewayArgs{
			AllocationId: eip.ID(),
			SubnetId:     publicSubnets[i].ID(),
			Tags:         pulumi.StringMap{"Name": pulumi.String(fmt.Sprintf("%s-nat-%d", name, i))},
		}, pulumi.DependsOn([]pulumi.Resource{igw}))
		if err != nil {
			return nil, fmt.Errorf("failed to declare NAT gateway %d: %w", i, err)
		}
		nats = append(nats, nat)
	}
	return nats, nil
}

// provisionPrivateRoutes gives each private subnet a zone-local route
// table whose default route goes through one of the NAT gateways,
// spread round-robin for availability.
func provisionPrivateRoutes(ctx *pulumi.Context, name string, vpc *ec2.Vpc, nats []*ec2.NatGateway, subnets []*ec2.Subnet) error {
	for i, subnet := range subnets {
		rt, err := ec2.NewRouteTable(ctx, fmt.Sprintf("%s-private-rt-%d", name, i), &ec2.RouteTableArgs{
			VpcId: vpc.ID(),
			Tags:  pulumi.StringMap{"Name": pulumi.String(fmt.Sprintf("%s-private-rt-%d", name, i))},
		})
		if err != nil {
			return fmt.Errorf("failed to declare private route table %d: %w", i, err)
		}

		_, err = ec2.NewRoute(ctx, fmt.Sprintf("%s-private-default-%d", name, i), &ec2.RouteArgs{
			RouteTableId:         rt.ID(),
			DestinationCidrBlock: pulumi.String("0.0.0.0/0"),
			NatGatewayId:         nats[i%len(nats)].ID(),
		})
		if err != nil {
			return fmt.Errorf("failed to declare private default route %d: %w", i, err)
		}

		_, err = ec2.NewRouteTableAssociation(ctx, fmt.Sprintf("%s-private-rta-%d", name, i), &ec2.RouteTableAssociationArgs{
			RouteTableId: rt.ID(),
			SubnetId:     subnet.ID(),
		})
		if err != nil {
			return fmt.Errorf("failed to associate private subnet %d: %w", i, err)
		}
	}
	return nil
}

// provisionDatabaseRoutes attaches the database subnets to a route table
// that carries only the implicit local route. No route to an internet or
// NAT gateway is ever added here.
func provisionDatabaseRoutes(ctx *pulumi.Context, name string, vpc *ec2.Vpc, subnets []*ec2.Subnet) error {
	rt, err := ec2.NewRouteTable(ctx, name+"-database-rt", &ec2.RouteTableArgs{
		VpcId: vpc.ID(),
		Tags:  pulumi.StringMap{"Name": pulumi.String(name + "-database-rt")},
	})
	if err != nil {
		return fmt.Errorf("failed to declare database route table: %w", err)
	}

	for i, subnet := range subnets {
		_, err := ec2.NewRouteTableAssociation(ctx, fmt.Sprintf("%s-database-rta-%d", name, i), &ec2.RouteTableAssociationArgs{
			RouteTableId: rt.ID(),
			SubnetId:     subnet.ID(),
		})
		if err != nil {
			return fmt.Errorf("failed to associate database subnet %d: %w", i, err)
		}
	}
	return nil
}
