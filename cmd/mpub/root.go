// Package main implements mpub, the marketplace chart publisher.
//
// The commands are:
//   - azure: pin a chart's Deployment images to registry digests and merge them into its values
//   - resolve: print the newest tagged digest of every configured repository
//   - aws: copy a released chart's images to ECR and push the chart as a marketplace product
package main

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/weaveworks/marketplace-publisher/internal/command"
	"github.com/weaveworks/marketplace-publisher/pkg/aws"
	"github.com/weaveworks/marketplace-publisher/pkg/config"
	"github.com/weaveworks/marketplace-publisher/pkg/exitcodes"
	log "github.com/weaveworks/marketplace-publisher/pkg/log"
	"github.com/weaveworks/marketplace-publisher/pkg/registry"
)

// Global flag variables
var (
	cfgFile      string
	debugEnabled bool
	logLevel     string
)

// AppFs defines the filesystem interface to use, allows mocking in tests.
var AppFs = afero.NewOsFs()

// SetFs replaces the current filesystem with the provided one and returns a function to restore it.
// This is primarily used for testing.
func SetFs(newFs afero.Fs) func() {
	oldFs := AppFs
	AppFs = newFs
	return func() { AppFs = oldFs }
}

// Runner executes helm and az. Tests replace it with a fake.
var Runner command.Runner = command.ExecRunner{}

// newLister builds the manifest lister selected by azure.lister.
var newLister = func(cfg *config.Config) registry.ManifestLister {
	if cfg.Azure.Lister == config.ListerRemote {
		return registry.NewRemote(cfg.Azure.Registry)
	}
	return registry.NewAzureCLI(cfg.Azure.Registry, Runner)
}

// newCopier builds the image copier used by the aws command.
var newCopier = func() aws.Copier {
	return aws.NewCraneCopier()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mpub",
		Short: "Publish Weave GitOps Enterprise charts to cloud marketplaces",
		Long: `mpub prepares the Weave GitOps Enterprise Helm chart for the Azure and AWS marketplaces.

For Azure it rewrites every Deployment image to a digest-pinned reference supplied
through the chart values and merges the resolved digests into values.yaml.
For AWS it copies the chart's images into the marketplace ECR repository and pushes
the chart under the marketplace product name.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			level := log.LevelInfo
			if debugEnabled {
				level = log.LevelDebug
			} else if logLevel != "" {
				parsedLevel, err := log.ParseLevel(logLevel)
				if err != nil {
					log.Warnf("Invalid log level specified: '%s'. Using default: %s. Error: %v", logLevel, level, err)
				} else {
					level = parsedLevel
				}
			}
			log.SetLevel(level)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.mpub.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugEnabled, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "set log level (debug, info, warn, error)")

	rootCmd.AddCommand(newAzureCmd())
	rootCmd.AddCommand(newResolveCmd())
	rootCmd.AddCommand(newAWSCmd())
	return rootCmd
}

// Execute builds the command tree and runs it. It is called by main.main().
func Execute() error {
	if err := newRootCmd().Execute(); err != nil {
		return fmt.Errorf("execute command: %w", err)
	}
	return nil
}

// loadConfig reads the config file and environment, applies the flags named in
// bindings (config key to flag name) when they were set and validates the result.
func loadConfig(cmd *cobra.Command, bindings map[string]string) (*config.Config, error) {
	v, err := config.New(AppFs, cfgFile)
	if err != nil {
		return nil, exitcodes.New(exitcodes.ExitInputConfigurationError, err)
	}
	for key, name := range bindings {
		flag := cmd.Flags().Lookup(name)
		if flag == nil || !flag.Changed {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, exitcodes.New(exitcodes.ExitInternalError, fmt.Errorf("failed to bind flag %s: %w", name, err))
		}
	}
	cfg, err := config.Load(v)
	if err != nil {
		return nil, exitcodes.New(exitcodes.ExitInputConfigurationError, err)
	}
	return cfg, nil
}

func requireFlag(cmd *cobra.Command, name string) (string, error) {
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		return "", exitcodes.New(exitcodes.ExitInternalError, fmt.Errorf("failed to get %s flag: %w", name, err))
	}
	if value == "" {
		return "", exitcodes.New(exitcodes.ExitMissingRequiredFlag, fmt.Errorf("required flag \"%s\" not set", name))
	}
	return value, nil
}
