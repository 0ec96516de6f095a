// Package cluster declares the managed Kubernetes control plane in
// fully-managed compute mode, its IAM roles, and the OIDC trust
// provider used for workload identities.
package cluster

import (
	"fmt"
	"strings"

	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/eks"
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/iam"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/threetier/eks-topology/internal/config"
	"github.com/threetier/eks-topology/internal/stack/network"
)

// oidcRootCAThumbprint is the SHA-1 thumbprint of the root CA behind the
// EKS OIDC issuer endpoints.
const oidcRootCAThumbprint = "9e99a48a9960b14926bb7f3b02e22da2b0ab7280"

// Managed policies required by the cluster role in fully-managed compute
// mode. Compute, storage, and load balancing are reconciled by the
// control plane itself, which acts through these.
var clusterRolePolicies = []string{
	"arn:aws:iam::aws:policy/AmazonEKSClusterPolicy",
	"arn:aws:iam::aws:policy/AmazonEKSComputePolicy",
	"arn:aws:iam::aws:policy/AmazonEKSBlockStoragePolicy",
	"arn:aws:iam::aws:policy/AmazonEKSLoadBalancingPolicy",
	"arn:aws:iam::aws:policy/AmazonEKSNetworkingPolicy",
}

// Managed policies for nodes the control plane provisions on our behalf.
var nodeRolePolicies = []string{
	"arn:aws:iam::aws:policy/AmazonEKSWorkerNodeMinimalPolicy",
	"arn:aws:iam::aws:policy/AmazonEC2ContainerRegistryPullOnly",
}

// Built-in node pools enabled on the cluster. The topology's own
// autoscaling policy is declared separately as a NodePool resource.
var builtinNodePools = pulumi.StringArray{
	pulumi.String("system"),
	pulumi.String("general-purpose"),
}

// Cluster holds the declared control plane and identity anchors consumed
// by the identity layer.
type Cluster struct {
	Cluster      *eks.Cluster
	NodeRole     *iam.Role
	OIDCProvider *iam.OpenIdConnectProvider

	// OIDCIssuer is the issuer URL without the https:// scheme, the form
	// IAM condition keys are written against.
	OIDCIssuer pulumi.StringOutput
}

// Provision declares the EKS cluster bound to the private subnets, with
// public and private endpoint access, every control plane log category
// from the topology enabled, and compute, block storage, and load
// balancing management delegated to the provider.
func Provision(ctx *pulumi.Context, topo *config.Topology, net *network.Network) (*Cluster, error) {
	spec := topo.Cluster

	clusterRole, err := serviceRole(ctx, topo.Name+"-cluster-role", "eks.amazonaws.com", clusterRolePolicies)
	if err != nil {
		return nil, fmt.Errorf("failed to declare cluster role: %w", err)
	}

	nodeRole, err := serviceRole(ctx, topo.Name+"-node-role", "ec2.amazonaws.com", nodeRolePolicies)
	if err != nil {
		return nil, fmt.Errorf("failed to declare node role: %w", err)
	}

	logTypes := make(pulumi.StringArray, 0, len(spec.LogTypes))
	for _, lt := range spec.LogTypes {
		logTypes = append(logTypes, pulumi.String(lt))
	}

	cl, err := eks.NewCluster(ctx, topo.Name+"-cluster", &eks.ClusterArgs{
		Name:    pulumi.String(topo.Name),
		RoleArn: clusterRole.Arn,
		Version: pulumi.String(spec.Version),
		VpcConfig: &eks.ClusterVpcConfigArgs{
			SubnetIds:             net.PrivateSubnetIDs(),
			EndpointPublicAccess:  pulumi.Bool(spec.PublicEndpoint()),
			EndpointPrivateAccess: pulumi.Bool(true),
		},
		EnabledClusterLogTypes: logTypes,
		AccessConfig: &eks.ClusterAccessConfigArgs{
			AuthenticationMode: pulumi.String("API"),
		},
		BootstrapSelfManagedAddons: pulumi.Bool(false),
		ComputeConfig: &eks.ClusterComputeConfigArgs{
			Enabled:     pulumi.Bool(true),
			NodePools:   builtinNodePools,
			NodeRoleArn: nodeRole.Arn,
		},
		StorageConfig: &eks.ClusterStorageConfigArgs{
			BlockStorage: &eks.ClusterStorageConfigBlockStorageArgs{
				Enabled: pulumi.Bool(true),
			},
		},
		KubernetesNetworkConfig: &eks.ClusterKubernetesNetworkConfigArgs{
			ElasticLoadBalancing: &eks.ClusterKubernetesNetworkConfigElasticLoadBalancingArgs{
				Enabled: pulumi.Bool(true),
			},
		},
		Tags: pulumi.StringMap{"Name": pulumi.String(topo.Name)},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to declare cluster: %w", err)
	}

	issuerURL := cl.Identities.Index(pulumi.Int(0)).Oidcs().Index(pulumi.Int(0)).Issuer().Elem()

	oidcProvider, err := iam.NewOpenIdConnectProvider(ctx, topo.Name+"-oidc", &iam.OpenIdConnectProviderArgs{
		Url:             issuerURL,
		ClientIdLists:   pulumi.StringArray{pulumi.String("sts.amazonaws.com")},
		ThumbprintLists: pulumi.StringArray{pulumi.String(oidcRootCAThumbprint)},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to declare OIDC provider: %w", err)
	}

	issuer := issuerURL.ApplyT(func(url string) string {
		return strings.TrimPrefix(url, "https://")
	}).(pulumi.StringOutput)

	out := &Cluster{
		Cluster:      cl,
		NodeRole:     nodeRole,
		OIDCProvider: oidcProvider,
		OIDCIssuer:   issuer,
	}

	if err := provisionNodePool(ctx, topo, out); err != nil {
		return nil, err
	}

	return out, nil
}

// serviceRole declares an IAM role assumable by an AWS service, with the
// given managed policies attached.
func serviceRole(ctx *pulumi.Context, name, service string, policyARNs []string) (*iam.Role, error) {
	trust := fmt.Sprintf(`{
  "Version": "2012-10-17",
  "Statement": [{
    "Effect": "Allow",
    "Principal": {"Service": "%s"},
    "Action": ["sts:AssumeRole", "sts:TagSession"]
  }]
}`, service)

	role, err := iam.NewRole(ctx, name, &iam.RoleArgs{
		Name:             pulumi.String(name),
		AssumeRolePolicy: pulumi.String(trust),
	})
	if err != nil {
		return nil, err
	}

	for i, arn := range policyARNs {
		_, err := iam.NewRolePolicyAttachment(ctx, fmt.Sprintf("%s-policy-%d", name, i), &iam.RolePolicyAttachmentArgs{
			Role:      role.Name,
			PolicyArn: pulumi.String(arn),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to attach policy %s: %w", arn, err)
		}
	}
	return role, nil
}
