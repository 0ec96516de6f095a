// Package pulumitest provides a recording mock monitor for synthesizing
// the topology in unit tests without touching a cloud account.
//
// Tests run a program under [pulumi.WithMocks]; every registered
// resource is recorded with its resolved inputs so invariants can be
// asserted against the synthesized graph afterwards.
package pulumitest

import (
	"fmt"
	"sort"
	"sync"

	"github.com/pulumi/pulumi/sdk/v3/go/common/resource"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

// Values injected for output-only properties so programs that read them
// behave as they would against a live account.
const (
	MockOIDCIssuer = "https://oidc.eks.us-east-1.amazonaws.com/id/MOCK0123456789"
	MockRegion     = "us-east-1"
	MockAccountID  = "123456789012"
)

// MockZones are the availability zones reported by the mocked zone
// lookup.
var MockZones = []string{"us-east-1a", "us-east-1b", "us-east-1c"}

// Record is one registered resource with its resolved inputs.
type Record struct {
	Type   string
	Name   string
	Inputs resource.PropertyMap
}

// Mocks implements pulumi.MockResourceMonitor and records every
// resource registration.
type Mocks struct {
	mu      sync.Mutex
	records []Record
}

// NewResource records the registration and fabricates the output-only
// properties tests depend on.
func (m *Mocks) NewResource(args pulumi.MockResourceArgs) (string, resource.PropertyMap, error) {
	outputs := resource.PropertyMap{}
	for k, v := range args.Inputs {
		outputs[k] = v
	}

	switch args.TypeToken {
	case "aws:eks/cluster:Cluster":
		outputs["arn"] = resource.NewStringProperty(fmt.Sprintf("arn:aws:eks:%s:%s:cluster/%s", MockRegion, MockAccountID, args.Name))
		outputs["endpoint"] = resource.NewStringProperty("https://" + args.Name + ".eks." + MockRegion + ".amazonaws.com")
		outputs["certificateAuthority"] = resource.NewObjectProperty(resource.PropertyMap{
			"data": resource.NewStringProperty("bW9jay1jYS1kYXRh"),
		})
		outputs["identities"] = resource.NewArrayProperty([]resource.PropertyValue{
			resource.NewObjectProperty(resource.PropertyMap{
				"oidcs": resource.NewArrayProperty([]resource.PropertyValue{
					resource.NewObjectProperty(resource.PropertyMap{
						"issuer": resource.NewStringProperty(MockOIDCIssuer),
					}),
				}),
			}),
		})
	case "aws:iam/role:Role":
		outputs["arn"] = resource.NewStringProperty(fmt.Sprintf("arn:aws:iam::%s:role/%s", MockAccountID, args.Name))
	case "aws:iam/openIdConnectProvider:OpenIdConnectProvider":
		outputs["arn"] = resource.NewStringProperty(fmt.Sprintf("arn:aws:iam::%s:oidc-provider/%s", MockAccountID, args.Name))
	case "aws:rds/instance:Instance":
		address := args.Name + ".mock." + MockRegion + ".rds.amazonaws.com"
		outputs["address"] = resource.NewStringProperty(address)
		outputs["endpoint"] = resource.NewStringProperty(address + ":5432")
		outputs["arn"] = resource.NewStringProperty(fmt.Sprintf("arn:aws:rds:%s:%s:db:%s", MockRegion, MockAccountID, args.Name))
	case "aws:secretsmanager/secret:Secret":
		outputs["arn"] = resource.NewStringProperty(fmt.Sprintf("arn:aws:secretsmanager:%s:%s:secret:%s", MockRegion, MockAccountID, args.Name))
	case "random:index/randomPassword:RandomPassword":
		outputs["result"] = resource.NewStringProperty("mock-generated-password")
	}

	m.mu.Lock()
	m.records = append(m.records, Record{Type: args.TypeToken, Name: args.Name, Inputs: args.Inputs})
	m.mu.Unlock()

	return args.Name + "-id", outputs, nil
}

// Call answers provider function invocations.
func (m *Mocks) Call(args pulumi.MockCallArgs) (resource.PropertyMap, error) {
	switch args.Token {
	case "aws:index/getAvailabilityZones:getAvailabilityZones":
		names := make([]resource.PropertyValue, 0, len(MockZones))
		ids := make([]resource.PropertyValue, 0, len(MockZones))
		for i, z := range MockZones {
			names = append(names, resource.NewStringProperty(z))
			ids = append(ids, resource.NewStringProperty(fmt.Sprintf("use1-az%d", i+1)))
		}
		return resource.PropertyMap{
			"names":   resource.NewArrayProperty(names),
			"zoneIds": resource.NewArrayProperty(ids),
		}, nil
	default:
		return args.Args, nil
	}
}

// Records returns a copy of all recorded registrations.
func (m *Mocks) Records() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Record, len(m.records))
	copy(out, m.records)
	return out
}

// ByType returns the recorded registrations of one resource type,
// sorted by name.
func (m *Mocks) ByType(typeToken string) []Record {
	var out []Record
	for _, r := range m.Records() {
		if r.Type == typeToken {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Sorted returns all recorded registrations sorted by (type, name), the
// shape used for idempotence comparisons.
func (m *Mocks) Sorted() []Record {
	out := m.Records()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Run synthesizes a program under this mock monitor.
func (m *Mocks) Run(program pulumi.RunFunc) error {
	return pulumi.RunErr(program, pulumi.WithMocks("three-tier-eks", "test", m))
}
