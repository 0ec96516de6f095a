// Package main is the Pulumi program declaring the three-tier EKS
// topology: a VPC with public, private, and isolated subnet tiers, an
// EKS cluster in fully-managed compute mode, a PostgreSQL instance with
// generated credentials, and the load balancer controller workload
// identity.
//
// The program only declares desired state. Account and region come from
// the environment (AWS_PROFILE, AWS_REGION, or the Pulumi stack
// config); nothing is hardcoded here.
package main

import (
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	pulumiconfig "github.com/pulumi/pulumi/sdk/v3/go/pulumi/config"

	"github.com/threetier/eks-topology/internal/config"
	"github.com/threetier/eks-topology/internal/stack"
)

func main() {
	pulumi.Run(func(ctx *pulumi.Context) error {
		cfg := pulumiconfig.New(ctx, "")
		path := cfg.Get("topologyFile")

		topo, err := config.Load(path)
		if err != nil {
			return err
		}

		if topo.Database.NonProductionTeardown() {
			msg := "database teardown policy is delete-without-retention; " +
				"set database.deletion_protection and database.retain_on_delete before using this stack for durable data"
			if err := ctx.Log.Warn(msg, nil); err != nil {
				return err
			}
		}

		_, err = stack.Deploy(ctx, topo)
		return err
	})
}
