package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weaveworks/marketplace-publisher/pkg/azure"
	"github.com/weaveworks/marketplace-publisher/pkg/config"
	"github.com/weaveworks/marketplace-publisher/pkg/values"
)

func newAzureCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "azure",
		Short: "Pin chart images to registry digests for the Azure marketplace",
		Long: `Rewrites the image of every Deployment template in the chart to a reference built from
the values file, labels pod templates with the release name, resolves the newest tagged
digest of each configured repository and merges the digests into the values file.

Nothing is written unless every image the templates use resolves to a digest.`,
		Args: cobra.NoArgs,
		RunE: runAzure,
	}
	cmd.Flags().String("chart-dir", "", "path to the unpacked chart (required)")
	cmd.Flags().String("values", "", "values file to update (default is values.yaml in the chart directory)")
	cmd.Flags().Bool("dry-run", false, "compute and log the changes without writing them")
	addRegistryFlags(cmd)
	return cmd
}

func addRegistryFlags(cmd *cobra.Command) {
	cmd.Flags().String("registry", "", "Azure container registry host (overrides azure.registry)")
	cmd.Flags().String("lister", "", "manifest lister: az or remote (overrides azure.lister)")
}

var registryFlagBindings = map[string]string{
	config.KeyAzureRegistry: "registry",
	config.KeyAzureLister:   "lister",
}

func runAzure(cmd *cobra.Command, _ []string) error {
	chartDir, err := requireFlag(cmd, "chart-dir")
	if err != nil {
		return err
	}
	valuesFile, err := cmd.Flags().GetString("values")
	if err != nil {
		return fmt.Errorf("failed to get values flag: %w", err)
	}
	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return fmt.Errorf("failed to get dry-run flag: %w", err)
	}

	cfg, err := loadConfig(cmd, registryFlagBindings)
	if err != nil {
		return err
	}

	publisher := azure.NewPublisher(AppFs, newLister(cfg))
	result, err := publisher.Run(cmd.Context(), azure.Options{
		ChartDir:     chartDir,
		ValuesFile:   valuesFile,
		Registry:     cfg.Azure.Registry,
		ValuesPath:   cfg.Azure.ValuesPath,
		ReleaseLabel: cfg.Azure.ReleaseLabel,
		Repositories: cfg.Azure.Repositories,
		DryRun:       dryRun,
	})
	if err != nil {
		return err
	}

	if dryRun {
		out, err := values.Marshal(result.Images)
		if err != nil {
			return fmt.Errorf("failed to encode images: %w", err)
		}
		for _, path := range result.Plan.Paths() {
			cmd.Printf("would rewrite %s\n", path)
		}
		cmd.Print(string(out))
		return nil
	}
	cmd.Printf("Rewrote %d of %d templates, pinned %d images\n", len(result.Plan.Changes), result.Plan.Files, result.Plan.Used.Len())
	return nil
}
