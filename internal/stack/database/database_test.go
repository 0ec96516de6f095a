package database_test

import (
	"encoding/json"
	"testing"

	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threetier/eks-topology/internal/config"
	"github.com/threetier/eks-topology/internal/stack/database"
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

func synthesize(t *testing.T, topo *config.Topology) *pulumitest.Mocks {
	t.Helper()
	mocks := &pulumitest.Mocks{}
	err := mocks.Run(func(ctx *pulumi.Context) error {
		net, err := network.Provision(ctx, topo)
		if err != nil {
			return err
		}
		_, err = database.Provision(ctx, topo, net)
		return err
	})
	require.NoError(t, err)
	return mocks
}

func TestProvisionInstance(t *testing.T) {
	topo := defaultTopology(t)
	mocks := synthesize(t, topo)

	instances := mocks.ByType("aws:rds/instance:Instance")
	require.Len(t, instances, 1)
	db := instances[0]

	assert.Equal(t, "postgres", db.String("engine"))
	assert.Equal(t, config.DefaultDBEngineVersion, db.String("engineVersion"))
	assert.Equal(t, config.DefaultDBInstanceClass, db.String("instanceClass"))
	assert.Equal(t, config.DefaultDBName, db.String("dbName"))
	assert.Equal(t, config.DefaultDBUsername, db.String("username"))
	assert.Equal(t, float64(config.DefaultDBPort), db.Number("port"))
	assert.Equal(t, float64(config.DefaultDBStorageGiB), db.Number("allocatedStorage"))
	assert.Equal(t, float64(config.DefaultBackupRetention), db.Number("backupRetentionPeriod"))

	assert.False(t, db.Bool("publiclyAccessible"))
	assert.True(t, db.Bool("storageEncrypted"))
}

func TestProvisionTeardownPolicyDefaults(t *testing.T) {
	topo := defaultTopology(t)
	mocks := synthesize(t, topo)

	db := mocks.ByType("aws:rds/instance:Instance")[0]
	assert.False(t, db.Bool("deletionProtection"))
	assert.True(t, db.Bool("skipFinalSnapshot"))
	assert.Empty(t, db.String("finalSnapshotIdentifier"))
}

func TestProvisionTeardownPolicyRetained(t *testing.T) {
	topo := defaultTopology(t)
	topo.Database.DeletionProtection = true
	topo.Database.RetainOnDelete = true
	mocks := synthesize(t, topo)

	db := mocks.ByType("aws:rds/instance:Instance")[0]
	assert.True(t, db.Bool("deletionProtection"))
	assert.False(t, db.Bool("skipFinalSnapshot"))
	assert.Equal(t, topo.Name+"-db-final", db.String("finalSnapshotIdentifier"))
}

func TestProvisionGeneratedCredentials(t *testing.T) {
	topo := defaultTopology(t)
	mocks := synthesize(t, topo)

	passwords := mocks.ByType("random:index/randomPassword:RandomPassword")
	require.Len(t, passwords, 1)
	assert.Equal(t, float64(32), passwords[0].Number("length"))
	assert.False(t, passwords[0].Bool("special"))

	// The instance takes the generated value, never a literal.
	db := mocks.ByType("aws:rds/instance:Instance")[0]
	assert.Equal(t, "mock-generated-password", db.String("password"))
}

func TestProvisionSecretPayload(t *testing.T) {
	topo := defaultTopology(t)
	mocks := synthesize(t, topo)

	secrets := mocks.ByType("aws:secretsmanager/secret:Secret")
	require.Len(t, secrets, 1)
	assert.Equal(t, topo.Name+"/db-credentials-", secrets[0].String("namePrefix"))
	assert.Equal(t, float64(0), secrets[0].Number("recoveryWindowInDays"))

	versions := mocks.ByType("aws:secretsmanager/secretVersion:SecretVersion")
	require.Len(t, versions, 1)

	var payload map[string]string
	require.NoError(t, json.Unmarshal([]byte(versions[0].String("secretString")), &payload))
	assert.Equal(t, "postgres", payload["engine"])
	assert.Equal(t, config.DefaultDBName, payload["dbname"])
	assert.Equal(t, config.DefaultDBUsername, payload["username"])
	assert.Equal(t, "mock-generated-password", payload["password"])
}

func TestProvisionSecurityGroupScope(t *testing.T) {
	topo := defaultTopology(t)
	mocks := synthesize(t, topo)

	groups := mocks.ByType("aws:ec2/securityGroup:SecurityGroup")
	require.Len(t, groups, 1)
	sg := groups[0]

	ingress := sg.Objects("ingress")
	require.Len(t, ingress, 1)
	rule := ingress[0]
	assert.Equal(t, "tcp", rule["protocol"].StringValue())
	assert.Equal(t, float64(config.DefaultDBPort), rule["fromPort"].NumberValue())
	assert.Equal(t, float64(config.DefaultDBPort), rule["toPort"].NumberValue())

	cidrs := rule["cidrBlocks"].ArrayValue()
	require.Len(t, cidrs, 1)
	assert.Equal(t, topo.Network.VPCCIDR, cidrs[0].StringValue())

	// No outbound rules at all.
	assert.Empty(t, sg.Objects("egress"))

	db := mocks.ByType("aws:rds/instance:Instance")[0]
	assert.Equal(t, []string{sg.Name + "-id"}, db.Strings("vpcSecurityGroupIds"))
}

func TestProvisionSubnetGroupOnIsolatedTier(t *testing.T) {
	topo := defaultTopology(t)
	mocks := synthesize(t, topo)

	groups := mocks.ByType("aws:rds/subnetGroup:SubnetGroup")
	require.Len(t, groups, 1)

	assert.ElementsMatch(t, []string{
		"three-tier-database-0-id",
		"three-tier-database-1-id",
		"three-tier-database-2-id",
	}, groups[0].Strings("subnetIds"))
}
