// Package stack composes the topology layers into one Pulumi program
// run and exports the declaration's four outputs.
//
// Deploy only registers resources; dependency resolution, diffing, and
// apply ordering belong to the Pulumi engine. Layers are wired through
// their results (the database needs the network, the identity needs the
// cluster's trust provider) and nothing else imposes ordering.
package stack

import (
	"fmt"

	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/threetier/eks-topology/internal/config"
	"github.com/threetier/eks-topology/internal/stack/cluster"
	"github.com/threetier/eks-topology/internal/stack/database"
	"github.com/threetier/eks-topology/internal/stack/identity"
	"github.com/threetier/eks-topology/internal/stack/network"
)

// Stable output names consumed by operators and downstream automation.
const (
	OutputClusterName       = "clusterName"
	OutputDatabaseEndpoint  = "databaseEndpoint"
	OutputDatabaseSecretARN = "databaseSecretArn"
	OutputVPCID             = "vpcId"
)

// Outputs are the declaration's return values.
type Outputs struct {
	ClusterName       pulumi.StringOutput
	DatabaseEndpoint  pulumi.StringOutput
	DatabaseSecretARN pulumi.StringOutput
	VPCID             pulumi.StringOutput
}

// Deploy declares the full topology and exports its outputs.
func Deploy(ctx *pulumi.Context, topo *config.Topology) (*Outputs, error) {
	net, err := network.Provision(ctx, topo)
	if err != nil {
		return nil, fmt.Errorf("network layer: %w", err)
	}

	cl, err := cluster.Provision(ctx, topo, net)
	if err != nil {
		return nil, fmt.Errorf("compute layer: %w", err)
	}

	db, err := database.Provision(ctx, topo, net)
	if err != nil {
		return nil, fmt.Errorf("data layer: %w", err)
	}

	if _, err := identity.Provision(ctx, topo, cl); err != nil {
		return nil, fmt.Errorf("identity layer: %w", err)
	}

	out := &Outputs{
		ClusterName: cl.Cluster.Name,
		// Address is the hostname alone, without the port suffix.
		DatabaseEndpoint:  db.Instance.Address,
		DatabaseSecretARN: db.Secret.Arn,
		VPCID:             net.VPC.ID().ToStringOutput(),
	}

	ctx.Export(OutputClusterName, out.ClusterName)
	ctx.Export(OutputDatabaseEndpoint, out.DatabaseEndpoint)
	ctx.Export(OutputDatabaseSecretARN, out.DatabaseSecretARN)
	ctx.Export(OutputVPCID, out.VPCID)

	return out, nil
}
