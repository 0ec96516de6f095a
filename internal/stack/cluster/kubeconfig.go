package cluster

import (
	"encoding/json"
	"fmt"

	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

// Kubeconfig renders a kubeconfig for the declared cluster, using the
// aws CLI exec credential helper so no token ever lands in state.
func (c *Cluster) Kubeconfig() pulumi.StringOutput {
	return pulumi.All(c.Cluster.Name, c.Cluster.Endpoint, c.Cluster.CertificateAuthority.Data().Elem()).ApplyT(
		func(args []interface{}) (string, error) {
			name, _ := args[0].(string)
			endpoint, _ := args[1].(string)
			caData, _ := args[2].(string)
			return renderKubeconfig(name, endpoint, caData)
		}).(pulumi.StringOutput)
}

func renderKubeconfig(name, endpoint, caData string) (string, error) {
	kubeconfig := map[string]interface{}{
		"apiVersion": "v1",
		"kind":       "Config",
		"clusters": []map[string]interface{}{{
			"name": name,
			"cluster": map[string]interface{}{
				"server":                     endpoint,
				"certificate-authority-data": caData,
			},
		}},
		"contexts": []map[string]interface{}{{
			"name":    name,
			"context": map[string]interface{}{"cluster": name, "user": name},
		}},
		"current-context": name,
		"users": []map[string]interface{}{{
			"name": name,
			"user": map[string]interface{}{
				"exec": map[string]interface{}{
					"apiVersion": "client.authentication.k8s.io/v1beta1",
					"command":    "aws",
					"args":       []string{"eks", "get-token", "--cluster-name", name},
				},
			},
		}},
	}

	data, err := json.Marshal(kubeconfig)
	if err != nil {
		return "", fmt.Errorf("failed to render kubeconfig: %w", err)
	}
	return string(data), nil
}
