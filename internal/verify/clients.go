package verify

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/eks"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// Narrow interfaces over the AWS clients, satisfied by the real SDK
// clients and by fakes in tests.

// ClusterAPI reads EKS cluster state.
type ClusterAPI interface {
	DescribeCluster(ctx context.Context, params *eks.DescribeClusterInput, optFns ...func(*eks.Options)) (*eks.DescribeClusterOutput, error)
}

// NetworkAPI reads VPC and subnet state.
type NetworkAPI interface {
	DescribeSubnets(ctx context.Context, params *ec2.DescribeSubnetsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSubnetsOutput, error)
}

// DatabaseAPI reads RDS instance state.
type DatabaseAPI interface {
	DescribeDBInstances(ctx context.Context, params *rds.DescribeDBInstancesInput, optFns ...func(*rds.Options)) (*rds.DescribeDBInstancesOutput, error)
}

// SecretsAPI reads secret metadata (never the value).
type SecretsAPI interface {
	DescribeSecret(ctx context.Context, params *secretsmanager.DescribeSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.DescribeSecretOutput, error)
}

// NewClients builds the real AWS clients from a loaded config.
func NewClients(cfg aws.Config) (ClusterAPI, NetworkAPI, DatabaseAPI, SecretsAPI) {
	return eks.NewFromConfig(cfg),
		ec2.NewFromConfig(cfg),
		rds.NewFromConfig(cfg),
		secretsmanager.NewFromConfig(cfg)
}
