package cluster

import (
	"fmt"
	"strconv"

	kubernetes "github.com/pulumi/pulumi-kubernetes/sdk/v4/go/kubernetes"
	"github.com/pulumi/pulumi-kubernetes/sdk/v4/go/kubernetes/apiextensions"
	metav1 "github.com/pulumi/pulumi-kubernetes/sdk/v4/go/kubernetes/meta/v1"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/threetier/eks-topology/internal/config"
)

// provisionNodePool declares the topology's autoscaling policy as a
// Karpenter NodePool on the cluster itself. The control plane owns the
// actual node lifecycle; this resource only bounds what it may do:
// which instance types it may pick and how much disruption an update
// may cause at once. Scaling floor and desired size are recorded as
// annotations — under fully-managed compute the control plane converges
// on demand and does not take a static desired count.
func provisionNodePool(ctx *pulumi.Context, topo *config.Topology, cl *Cluster) error {
	pool := topo.Cluster.NodePool

	provider, err := kubernetes.NewProvider(ctx, topo.Name+"-k8s", &kubernetes.ProviderArgs{
		Kubeconfig: cl.Kubeconfig(),
	})
	if err != nil {
		return fmt.Errorf("failed to declare kubernetes provider: %w", err)
	}

	instanceTypes := make([]string, len(pool.InstanceTypes))
	copy(instanceTypes, pool.InstanceTypes)

	_, err = apiextensions.NewCustomResource(ctx, topo.Name+"-nodepool-"+pool.Name, &apiextensions.CustomResourceArgs{
		ApiVersion: pulumi.String("karpenter.sh/v1"),
		Kind:       pulumi.String("NodePool"),
		Metadata: &metav1.ObjectMetaArgs{
			Name: pulumi.String(pool.Name),
			Annotations: pulumi.StringMap{
				"eks-topology/min-size":     pulumi.String(strconv.Itoa(pool.MinSize)),
				"eks-topology/desired-size": pulumi.String(strconv.Itoa(pool.DesiredSize)),
				"eks-topology/max-size":     pulumi.String(strconv.Itoa(pool.MaxSize)),
			},
		},
		OtherFields: kubernetes.UntypedArgs{
			"spec": map[string]interface{}{
				"template": map[string]interface{}{
					"spec": map[string]interface{}{
						"nodeClassRef": map[string]interface{}{
							"group": "eks.amazonaws.com",
							"kind":  "NodeClass",
							"name":  "default",
						},
						"requirements": []interface{}{
							map[string]interface{}{
								"key":      "node.kubernetes.io/instance-type",
								"operator": "In",
								"values":   instanceTypes,
							},
							map[string]interface{}{
								"key":      "kubernetes.io/os",
								"operator": "In",
								"values":   []string{"linux"},
							},
						},
					},
				},
				"disruption": map[string]interface{}{
					"consolidationPolicy": "WhenEmptyOrUnderutilized",
					"budgets": []interface{}{
						map[string]interface{}{
							"nodes": fmt.Sprintf("%d%%", pool.MaxUnavailablePercent),
						},
					},
				},
			},
		},
	}, pulumi.Provider(provider), pulumi.DependsOn([]pulumi.Resource{cl.Cluster}))
	if err != nil {
		return fmt.Errorf("failed to declare node pool %s: %w", pool.Name, err)
	}
	return nil
}
