// Package config defines the topology declaration model for the
// three-tier EKS environment.
//
// The [Topology] struct is the canonical representation of the desired
// state: network tiers and zone replication, the managed cluster and its
// autoscaling policy, the database instance, and the workload identity
// binding. It is loaded from a YAML file, expanded with defaults, and
// validated before any resource is declared against the Pulumi engine.
package config
