// Package verify checks a deployed environment against the topology's
// invariants using read-only AWS API calls.
//
// It consumes the stack's outputs (cluster name, database endpoint,
// secret reference, network identifier) and reports one check result
// per invariant instead of stopping at the first failure.
package verify

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/smithy-go"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/eks"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	"github.com/threetier/eks-topology/internal/config"
	"github.com/threetier/eks-topology/internal/stack/network"
)

// Inputs are the stack outputs the verifier works from.
type Inputs struct {
	ClusterName      string `json:"clusterName"`
	DatabaseEndpoint string `json:"databaseEndpoint"`
	SecretARN        string `json:"databaseSecretArn"`
	VPCID            string `json:"vpcId"`
}

// Validate ensures every output value is present (outputs must resolve
// non-empty after a successful apply).
func (in Inputs) Validate() error {
	if in.ClusterName == "" || in.DatabaseEndpoint == "" || in.SecretARN == "" || in.VPCID == "" {
		return fmt.Errorf("all four stack outputs are required: clusterName, databaseEndpoint, databaseSecretArn, vpcId")
	}
	return nil
}

// Check is the outcome of one invariant check.
type Check struct {
	Name string
	Err  error
}

// OK reports whether the check passed.
func (c Check) OK() bool { return c.Err == nil }

// Failed reports whether any check in the list failed.
func Failed(checks []Check) bool {
	for _, c := range checks {
		if !c.OK() {
			return true
		}
	}
	return false
}

// Verifier runs the invariant checks against a live account.
type Verifier struct {
	Topology  *config.Topology
	Clusters  ClusterAPI
	Network   NetworkAPI
	Databases DatabaseAPI
	Secrets   SecretsAPI
}

// New builds a verifier with real AWS clients.
func New(cfg aws.Config, topo *config.Topology) *Verifier {
	clusters, net, dbs, secrets := NewClients(cfg)
	return &Verifier{Topology: topo, Clusters: clusters, Network: net, Databases: dbs, Secrets: secrets}
}

// Run executes all checks and returns their results.
func (v *Verifier) Run(ctx context.Context, in Inputs) ([]Check, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return []Check{
		{Name: "cluster", Err: v.checkCluster(ctx, in.ClusterName)},
		{Name: "subnets", Err: v.checkSubnets(ctx, in.VPCID)},
		{Name: "database", Err: v.checkDatabase(ctx, in.DatabaseEndpoint)},
		{Name: "secret", Err: v.checkSecret(ctx, in.SecretARN)},
	}, nil
}

// checkCluster verifies the control plane is active, every configured
// log category is enabled, and compute and storage management are
// delegated to the provider.
func (v *Verifier) checkCluster(ctx context.Context, name string) error {
	out, err := v.Clusters.DescribeCluster(ctx, &eks.DescribeClusterInput{Name: aws.String(name)})
	if isNotFound(err) {
		return fmt.Errorf("cluster %s does not exist", name)
	}
	if err != nil {
		return fmt.Errorf("failed to describe cluster %s: %w", name, err)
	}
	cl := out.Cluster

	if string(cl.Status) != "ACTIVE" {
		return fmt.Errorf("cluster %s is %s, want ACTIVE", name, cl.Status)
	}

	enabled := map[string]bool{}
	if cl.Logging != nil {
		for _, setup := range cl.Logging.ClusterLogging {
			if aws.ToBool(setup.Enabled) {
				for _, lt := range setup.Types {
					enabled[string(lt)] = true
				}
			}
		}
	}
	for _, lt := range v.Topology.Cluster.LogTypes {
		if !enabled[lt] {
			return fmt.Errorf("cluster %s: log type %q is not enabled", name, lt)
		}
	}

	if cl.ComputeConfig == nil || !aws.ToBool(cl.ComputeConfig.Enabled) {
		return fmt.Errorf("cluster %s: managed compute is not enabled", name)
	}
	if cl.StorageConfig == nil || cl.StorageConfig.BlockStorage == nil || !aws.ToBool(cl.StorageConfig.BlockStorage.Enabled) {
		return fmt.Errorf("cluster %s: managed block storage is not enabled", name)
	}
	return nil
}

// checkSubnets verifies every tier exists exactly once in every zone.
func (v *Verifier) checkSubnets(ctx context.Context, vpcID string) error {
	out, err := v.Network.DescribeSubnets(ctx, &ec2.DescribeSubnetsInput{
		Filters: []ec2types.Filter{
			{Name: aws.String("vpc-id"), Values: []string{vpcID}},
			{Name: aws.String("tag-key"), Values: []string{network.TierTagKey}},
		},
	})
	if isNotFound(err) {
		return fmt.Errorf("vpc %s does not exist", vpcID)
	}
	if err != nil {
		return fmt.Errorf("failed to describe subnets in %s: %w", vpcID, err)
	}

	spec := v.Topology.Network
	zonesPerTier := map[string]map[string]bool{}
	for _, subnet := range out.Subnets {
		tier := tagValue(subnet.Tags, network.TierTagKey)
		if zonesPerTier[tier] == nil {
			zonesPerTier[tier] = map[string]bool{}
		}
		az := aws.ToString(subnet.AvailabilityZone)
		if zonesPerTier[tier][az] {
			return fmt.Errorf("tier %q has more than one subnet in zone %s", tier, az)
		}
		zonesPerTier[tier][az] = true
	}

	for _, tier := range config.Tiers {
		if got := len(zonesPerTier[tier]); got != spec.ZoneCount {
			return fmt.Errorf("tier %q spans %d zones, want %d", tier, got, spec.ZoneCount)
		}
	}
	if len(out.Subnets) != len(config.Tiers)*spec.ZoneCount {
		return fmt.Errorf("found %d tier subnets, want %d", len(out.Subnets), len(config.Tiers)*spec.ZoneCount)
	}
	return nil
}

// checkDatabase verifies the instance behind the exported endpoint
// still carries the declared engine, port, backup, and teardown policy.
func (v *Verifier) checkDatabase(ctx context.Context, endpoint string) error {
	out, err := v.Databases.DescribeDBInstances(ctx, &rds.DescribeDBInstancesInput{})
	if err != nil {
		return fmt.Errorf("failed to describe database instances: %w", err)
	}

	spec := v.Topology.Database
	for _, db := range out.DBInstances {
		if db.Endpoint == nil || aws.ToString(db.Endpoint.Address) != endpoint {
			continue
		}
		if got := aws.ToString(db.Engine); got != spec.Engine {
			return fmt.Errorf("database engine is %q, want %q", got, spec.Engine)
		}
		if got := int(aws.ToInt32(db.Endpoint.Port)); got != spec.Port {
			return fmt.Errorf("database port is %d, want %d", got, spec.Port)
		}
		if got := int(aws.ToInt32(db.BackupRetentionPeriod)); got != spec.BackupRetentionDays {
			return fmt.Errorf("backup retention is %d days, want %d", got, spec.BackupRetentionDays)
		}
		if got := aws.ToBool(db.DeletionProtection); got != spec.DeletionProtection {
			return fmt.Errorf("deletion protection is %t, want %t", got, spec.DeletionProtection)
		}
		if aws.ToBool(db.PubliclyAccessible) {
			return fmt.Errorf("database %s is publicly accessible", endpoint)
		}
		return nil
	}
	return fmt.Errorf("no database instance found with endpoint %s", endpoint)
}

// checkSecret verifies the credential secret resolves and is not
// scheduled for deletion. The value itself is never read.
func (v *Verifier) checkSecret(ctx context.Context, arn string) error {
	out, err := v.Secrets.DescribeSecret(ctx, &secretsmanager.DescribeSecretInput{SecretId: aws.String(arn)})
	if isNotFound(err) {
		return fmt.Errorf("secret %s does not exist", arn)
	}
	if err != nil {
		return fmt.Errorf("failed to describe secret: %w", err)
	}
	if out.DeletedDate != nil {
		return fmt.Errorf("secret %s is scheduled for deletion", arn)
	}
	return nil
}

// isNotFound reports whether err is the service telling us the resource
// does not exist, as opposed to a transport or permission failure. A
// deleted resource is a failed invariant in its own right and gets a
// plain message instead of the wrapped API error.
func isNotFound(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.ErrorCode() {
	case "ResourceNotFoundException", "DBInstanceNotFound", "InvalidVpcID.NotFound":
		return true
	}
	return false
}

func tagValue(tags []ec2types.Tag, key string) string {
	for _, tag := range tags {
		if aws.ToString(tag.Key) == key {
			return aws.ToString(tag.Value)
		}
	}
	return ""
}
