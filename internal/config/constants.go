package config

// Subnet tier names. Each tier is instantiated once per availability zone.
const (
	// TierPublic subnets route directly to the internet gateway and host
	// internet-facing load balancers.
	TierPublic = "public"
	// TierPrivate subnets egress through NAT gateways and host cluster
	// workloads.
	TierPrivate = "private"
	// TierDatabase subnets have no internet route at all.
	TierDatabase = "database"
)

// Tiers lists all subnet tiers in planning order. The order is part of
// the subnet numbering scheme and must not change between syntheses.
var Tiers = []string{TierPublic, TierPrivate, TierDatabase}

// Network defaults.
const (
	DefaultVPCCIDR      = "10.0.0.0/16"
	DefaultZoneCount    = 3
	DefaultSubnetPrefix = 24
	DefaultNATGateways  = 2
)

// Cluster defaults.
const (
	DefaultKubernetesVersion     = "1.30"
	DefaultNodePoolName          = "system"
	DefaultMaxUnavailablePercent = 25
)

// DefaultInstanceTypes are the instance types allowed for managed node
// provisioning when none are configured.
var DefaultInstanceTypes = []string{"m5.large", "m5.xlarge", "m4.large"}

// DefaultLogTypes are the control plane log categories enabled on the
// cluster. All categories are enabled; trimming this list weakens the
// audit trail and fails verification.
var DefaultLogTypes = []string{"api", "audit", "authenticator", "controllerManager", "scheduler"}

// Database defaults.
const (
	DefaultDBEngine        = "postgres"
	DefaultDBEngineVersion = "15.3"
	DefaultDBInstanceClass = "db.t3.micro"
	DefaultDBName          = "threetierdb"
	DefaultDBUsername      = "dbadmin"
	DefaultDBPort          = 5432
	DefaultBackupRetention = 7
	DefaultDBStorageGiB    = 20
)

// Identity defaults. The service account is the one consumed by the AWS
// Load Balancer Controller; the permission statements attached to it are
// an external contract and live in the identity stack layer.
const (
	DefaultIdentityNamespace      = "kube-system"
	DefaultIdentityServiceAccount = "aws-load-balancer-controller"
)
