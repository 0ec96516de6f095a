//go:build e2e

package e2e

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("the deployed environment", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("passes every declared invariant", func() {
		checks, err := verifier.Run(ctx, inputs)
		Expect(err).NotTo(HaveOccurred())
		Expect(checks).To(HaveLen(4))
		for _, check := range checks {
			Expect(check.Err).NotTo(HaveOccurred(), "check %s", check.Name)
		}
	})
})
