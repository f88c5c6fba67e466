package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weaveworks/marketplace-publisher/pkg/aws"
	"github.com/weaveworks/marketplace-publisher/pkg/config"
)

func newAWSCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aws",
		Short: "Publish a released chart and its images to the AWS marketplace",
		Long: `Pulls the released chart, copies every image it renders into the marketplace ECR
repository, points the chart values at the copies, renames the chart to the marketplace
product name and pushes it to ECR.`,
		Args: cobra.NoArgs,
		RunE: runAWS,
	}
	cmd.Flags().String("version", "", "chart version to publish (required)")
	cmd.Flags().String("aws-image-name", "", "marketplace product name the chart is published as (required)")
	cmd.Flags().String("local-helm-repo", "", "name of the local helm repository holding the released chart (required)")
	cmd.Flags().Bool("dry-run", false, "log image copies and the chart push instead of performing them")
	cmd.Flags().String("work-dir", "", "directory the chart is pulled into (default is a temporary directory)")
	cmd.Flags().String("ecr-repository", "", "ECR repository (overrides aws.ecrRepository)")
	return cmd
}

func runAWS(cmd *cobra.Command, _ []string) error {
	version, err := requireFlag(cmd, "version")
	if err != nil {
		return err
	}
	imageName, err := requireFlag(cmd, "aws-image-name")
	if err != nil {
		return err
	}
	helmRepo, err := requireFlag(cmd, "local-helm-repo")
	if err != nil {
		return err
	}
	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return fmt.Errorf("failed to get dry-run flag: %w", err)
	}
	workDir, err := cmd.Flags().GetString("work-dir")
	if err != nil {
		return fmt.Errorf("failed to get work-dir flag: %w", err)
	}

	cfg, err := loadConfig(cmd, map[string]string{config.KeyAWSECRRepository: "ecr-repository"})
	if err != nil {
		return err
	}

	publisher := aws.NewPublisher(AppFs, Runner, newCopier())
	result, err := publisher.Publish(cmd.Context(), aws.Options{
		Version:           version,
		ImageName:         imageName,
		LocalHelmRepo:     helmRepo,
		DryRun:            dryRun,
		ECRRepository:     cfg.AWS.ECRRepository,
		ChartName:         cfg.AWS.ChartName,
		ImageFilter:       cfg.AWS.ImageFilter,
		AllowedImageNames: cfg.AWS.ImageNames,
		WorkDir:           workDir,
	})
	if err != nil {
		return err
	}

	for _, c := range result.Copies {
		cmd.Printf("%s -> %s\n", c.Source, c.Destination)
	}
	if dryRun {
		cmd.Printf("Dry run: %s not pushed to %s\n", result.Archive, result.Remote)
		return nil
	}
	cmd.Printf("Pushed %s to %s\n", result.Archive, result.Remote)
	return nil
}
