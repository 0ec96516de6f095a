package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"

	"github.com/threetier/eks-topology/internal/config"
	"github.com/threetier/eks-topology/internal/verify"
)

// Factory function variables for verify - can be replaced in tests.
var (
	// readOutputs reads the stack outputs JSON file.
	readOutputs = func(path string) (verify.Inputs, error) {
		var in verify.Inputs
		data, err := os.ReadFile(path) // #nosec G304
		if err != nil {
			return in, fmt.Errorf("failed to read outputs file: %w", err)
		}
		if err := json.Unmarshal(data, &in); err != nil {
			return in, fmt.Errorf("failed to parse outputs file: %w", err)
		}
		return in, nil
	}

	// newVerifier builds a verifier backed by real AWS clients.
	newVerifier = func(ctx context.Context, topo *config.Topology) (*verify.Verifier, error) {
		cfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		return verify.New(cfg, topo), nil
	}
)

// Verify checks a deployed environment against the declaration and
// prints one line per invariant.
func Verify(ctx context.Context, configPath, outputsPath string, w io.Writer) error {
	topo, err := config.Load(configPath)
	if err != nil {
		return err
	}

	in, err := readOutputs(outputsPath)
	if err != nil {
		return err
	}

	v, err := newVerifier(ctx, topo)
	if err != nil {
		return err
	}

	checks, err := v.Run(ctx, in)
	if err != nil {
		return err
	}

	for _, check := range checks {
		if check.OK() {
			fmt.Fprintf(w, "ok    %s\n", check.Name)
		} else {
			fmt.Fprintf(w, "FAIL  %s: %v\n", check.Name, check.Err)
		}
	}

	if verify.Failed(checks) {
		return fmt.Errorf("environment does not match the declaration")
	}
	fmt.Fprintln(w, "Environment matches the declaration.")
	return nil
}
