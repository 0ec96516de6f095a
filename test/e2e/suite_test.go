//go:build e2e

// Package e2e verifies a deployed environment end to end.
//
// The suite needs a live AWS account and a finished `pulumi up`. Point
// it at the stack outputs and run with the e2e tag:
//
//	pulumi stack output --json > outputs.json
//	TOPOLOGY_OUTPUTS=outputs.json go test -v -tags=e2e ./test/e2e/...
//
// Without TOPOLOGY_OUTPUTS the suite skips; it never provisions or
// mutates anything itself, every call is read-only.
package e2e

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/threetier/eks-topology/internal/config"
	"github.com/threetier/eks-topology/internal/verify"
)

var (
	verifier *verify.Verifier
	inputs   verify.Inputs
)

func TestEnvironment(t *testing.T) {
	if os.Getenv("TOPOLOGY_OUTPUTS") == "" {
		t.Skip("TOPOLOGY_OUTPUTS not set, skipping e2e verification")
	}
	RegisterFailHandler(Fail)
	RunSpecs(t, "Deployed Environment Suite")
}

var _ = BeforeSuite(func() {
	data, err := os.ReadFile(os.Getenv("TOPOLOGY_OUTPUTS"))
	Expect(err).NotTo(HaveOccurred())
	Expect(json.Unmarshal(data, &inputs)).To(Succeed())
	Expect(inputs.Validate()).To(Succeed())

	topo, err := config.Load(os.Getenv("TOPOLOGY_FILE"))
	Expect(err).NotTo(HaveOccurred())

	cfg, err := awsconfig.LoadDefaultConfig(context.Background())
	Expect(err).NotTo(HaveOccurred())

	verifier = verify.New(cfg, topo)
})
