// Package identity binds a namespace-scoped workload identity to the
// cluster's OIDC trust provider and attaches the load balancer
// controller permission set to it.
package identity

import (
	"encoding/json"
	"fmt"

	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/iam"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/threetier/eks-topology/internal/config"
	"github.com/threetier/eks-topology/internal/stack/cluster"
)

// Identity holds the declared workload identity resources.
type Identity struct {
	Role *iam.Role
}

// Provision declares the IAM role assumed by the configured service
// account through the cluster's OIDC provider, and attaches the load
// balancer controller policy inline.
//
// The trust policy conditions on both the subject (the exact
// namespace/service-account pair) and the audience, so no other
// workload in the cluster can assume the role.
func Provision(ctx *pulumi.Context, topo *config.Topology, cl *cluster.Cluster) (*Identity, error) {
	subject := fmt.Sprintf("system:serviceaccount:%s:%s", topo.Identity.Namespace, topo.Identity.ServiceAccount)

	trust := pulumi.All(cl.OIDCProvider.Arn, cl.OIDCIssuer).ApplyT(func(args []interface{}) (string, error) {
		providerArn, _ := args[0].(string)
		issuer, _ := args[1].(string)
		return trustPolicy(providerArn, issuer, subject)
	}).(pulumi.StringOutput)

	roleName := topo.Name + "-alb-controller"
	role, err := iam.NewRole(ctx, roleName, &iam.RoleArgs{
		Name:             pulumi.String(roleName),
		AssumeRolePolicy: trust,
		Tags: pulumi.StringMap{
			"eks-topology/service-account": pulumi.String(subject),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to declare workload identity role: %w", err)
	}

	policyJSON, err := LoadBalancerControllerPolicy().JSON()
	if err != nil {
		return nil, err
	}

	_, err = iam.NewRolePolicy(ctx, roleName+"-policy", &iam.RolePolicyArgs{
		Role:   role.Name,
		Policy: pulumi.String(policyJSON),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to attach workload identity policy: %w", err)
	}

	return &Identity{Role: role}, nil
}

// trustPolicy renders the federated assume-role document for one
// service account subject.
func trustPolicy(providerARN, issuer, subject string) (string, error) {
	doc := map[string]interface{}{
		"Version": "2012-10-17",
		"Statement": []map[string]interface{}{{
			"Effect":    "Allow",
			"Principal": map[string]string{"Federated": providerARN},
			"Action":    "sts:AssumeRoleWithWebIdentity",
			"Condition": map[string]map[string]string{
				"StringEquals": {
					issuer + ":sub": subject,
					issuer + ":aud": "sts.amazonaws.com",
				},
			},
		}},
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to marshal trust policy: %w", err)
	}
	return string(data), nil
}
