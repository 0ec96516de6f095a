// Package database declares the managed relational database: generated
// credentials held in the secret store, an ingress rule scoped to the
// network's address block, and the instance itself on the isolated
// subnet tier.
package database

import (
	"fmt"

	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/ec2"
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/rds"
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/secretsmanager"
	"github.com/pulumi/pulumi-random/sdk/v4/go/random"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/threetier/eks-topology/internal/config"
	"github.com/threetier/eks-topology/internal/stack/network"
)

// Database holds the declared data layer resources.
type Database struct {
	Instance      *rds.Instance
	Secret        *secretsmanager.Secret
	SecurityGroup *ec2.SecurityGroup
}

// Provision declares the database instance and its credential secret.
//
// The credential value is generated at apply time and lives only in the
// secret store; the declaration carries a reference, never the value.
// The instance is reachable solely from the VPC's address block on the
// configured port. Teardown follows the declared policy: by default the
// instance is deleted without a final snapshot and without deletion
// protection, which is not production-safe.
func Provision(ctx *pulumi.Context, topo *config.Topology, net *network.Network) (*Database, error) {
	spec := topo.Database

	password, err := random.NewRandomPassword(ctx, topo.Name+"-db-password", &random.RandomPasswordArgs{
		Length:  pulumi.Int(32),
		Special: pulumi.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to declare database password: %w", err)
	}

	secret, err := secretsmanager.NewSecret(ctx, topo.Name+"-db-credentials", &secretsmanager.SecretArgs{
		NamePrefix:  pulumi.String(topo.Name + "/db-credentials-"),
		Description: pulumi.String("Generated credentials for the " + spec.Name + " database"),
		// Immediate deletion on teardown, consistent with the database's
		// own removal policy.
		RecoveryWindowInDays: pulumi.Int(0),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to declare credential secret: %w", err)
	}

	secretString := pulumi.JSONMarshal(pulumi.Map{
		"engine":   pulumi.String(spec.Engine),
		"dbname":   pulumi.String(spec.Name),
		"username": pulumi.String(spec.Username),
		"password": password.Result,
	})

	_, err = secretsmanager.NewSecretVersion(ctx, topo.Name+"-db-credentials-v", &secretsmanager.SecretVersionArgs{
		SecretId:     secret.ID(),
		SecretString: secretString,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to declare credential secret version: %w", err)
	}

	sg, err := ec2.NewSecurityGroup(ctx, topo.Name+"-db-sg", &ec2.SecurityGroupArgs{
		VpcId:       net.VPC.ID(),
		Description: pulumi.String("Database access from inside the VPC only"),
		Ingress: ec2.SecurityGroupIngressArray{
			ec2.SecurityGroupIngressArgs{
				Description: pulumi.String(fmt.Sprintf("%s from the VPC address block", spec.Engine)),
				Protocol:    pulumi.String("tcp"),
				FromPort:    pulumi.Int(spec.Port),
				ToPort:      pulumi.Int(spec.Port),
				CidrBlocks:  pulumi.StringArray{pulumi.String(topo.Network.VPCCIDR)},
			},
		},
		// No egress rules: the default allow-all outbound rule is removed.
		Tags: pulumi.StringMap{"Name": pulumi.String(topo.Name + "-db-sg")},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to declare database security group: %w", err)
	}

	subnetGroup, err := rds.NewSubnetGroup(ctx, topo.Name+"-db-subnets", &rds.SubnetGroupArgs{
		Description: pulumi.String("Isolated subnets for the database"),
		SubnetIds:   net.DatabaseSubnetIDs(),
		Tags:        pulumi.StringMap{"Name": pulumi.String(topo.Name + "-db-subnets")},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to declare database subnet group: %w", err)
	}

	instanceArgs := &rds.InstanceArgs{
		Engine:              pulumi.String(spec.Engine),
		EngineVersion:       pulumi.String(spec.EngineVersion),
		InstanceClass:       pulumi.String(spec.InstanceClass),
		AllocatedStorage:    pulumi.Int(spec.StorageGiB),
		DbName:              pulumi.String(spec.Name),
		Username:            pulumi.String(spec.Username),
		Password:            password.Result,
		Port:                pulumi.Int(spec.Port),
		DbSubnetGroupName:   subnetGroup.Name,
		VpcSecurityGroupIds: pulumi.StringArray{sg.ID()},

		BackupRetentionPeriod: pulumi.Int(spec.BackupRetentionDays),
		PubliclyAccessible:    pulumi.Bool(false),
		StorageEncrypted:      pulumi.Bool(true),

		DeletionProtection: pulumi.Bool(spec.DeletionProtection),
		SkipFinalSnapshot:  pulumi.Bool(!spec.RetainOnDelete),

		Tags: pulumi.StringMap{"Name": pulumi.String(topo.Name + "-db")},
	}
	if spec.RetainOnDelete {
		instanceArgs.FinalSnapshotIdentifier = pulumi.String(topo.Name + "-db-final")
	}

	instance, err := rds.NewInstance(ctx, topo.Name+"-db", instanceArgs)
	if err != nil {
		return nil, fmt.Errorf("failed to declare database instance: %w", err)
	}

	return &Database{Instance: instance, Secret: secret, SecurityGroup: sg}, nil
}
