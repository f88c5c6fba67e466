package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/weaveworks/marketplace-publisher/pkg/exitcodes"
	"github.com/weaveworks/marketplace-publisher/pkg/registry"
)

type resolvedImage struct {
	LogicalName string `json:"logicalName"`
	Tag         string `json:"tag,omitempty"`
	Digest      string `json:"digest,omitempty"`
}

func newResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Print the newest tagged digest of each configured repository",
		Args:  cobra.NoArgs,
		RunE:  runResolve,
	}
	addRegistryFlags(cmd)
	return cmd
}

func runResolve(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd, registryFlagBindings)
	if err != nil {
		return err
	}

	table := registry.NewDigestResolver(newLister(cfg)).Resolve(cmd.Context(), cfg.Azure.Repositories)

	report := make(map[string]resolvedImage, len(table))
	for repo, res := range table {
		name, _ := registry.LogicalName(repo)
		report[repo] = resolvedImage{LogicalName: name, Tag: res.Tag, Digest: res.Digest}
	}
	out, err := yaml.Marshal(report)
	if err != nil {
		return exitcodes.New(exitcodes.ExitInternalError, fmt.Errorf("failed to encode table: %w", err))
	}
	cmd.Print(string(out))
	return nil
}
