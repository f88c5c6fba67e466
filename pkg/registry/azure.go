package registry

import (
	"context"
	"fmt"

	"sigs.k8s.io/yaml"

	"github.com/weaveworks/marketplace-publisher/internal/command"
)

// AzureCLI lists manifests with `az acr manifest list-metadata`.
type AzureCLI struct {
	Registry string
	Runner   command.Runner
}

// NewAzureCLI returns an AzureCLI lister for registry running az through runner.
func NewAzureCLI(registry string, runner command.Runner) *AzureCLI {
	if runner == nil {
		runner = command.ExecRunner{}
	}
	return &AzureCLI{Registry: registry, Runner: runner}
}

// ListManifests implements ManifestLister.
func (a *AzureCLI) ListManifests(ctx context.Context, repository string) ([]Manifest, error) {
	res, err := a.Runner.Run(ctx, "az", "acr", "manifest", "list-metadata",
		"--output", "json", a.Registry+"/"+repository)
	if err != nil {
		return nil, err
	}

	var manifests []Manifest
	if err := yaml.Unmarshal([]byte(res.Stdout), &manifests); err != nil {
		return nil, fmt.Errorf("failed to parse manifest metadata of %s: %w", repository, err)
	}
	return manifests, nil
}
