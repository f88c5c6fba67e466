// Package config loads publisher settings from an optional YAML file, MPUB_
// environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"

	"github.com/distribution/reference"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/weaveworks/marketplace-publisher/pkg/manifest"
	"github.com/weaveworks/marketplace-publisher/pkg/registry"
)

const (
	// EnvPrefix prefixes environment variables, e.g. MPUB_AZURE_REGISTRY.
	EnvPrefix = "MPUB"
	// FileName is the config file searched for when none is given.
	FileName = ".mpub"

	ListerAzureCLI = "az"
	ListerRemote   = "remote"
)

// Config keys.
const (
	KeyAzureRegistry     = "azure.registry"
	KeyAzureRepositories = "azure.repositories"
	KeyAzureValuesPath   = "azure.valuesPath"
	KeyAzureReleaseLabel = "azure.releaseLabel"
	KeyAzureLister       = "azure.lister"
	KeyAWSECRRepository  = "aws.ecrRepository"
	KeyAWSImageNames     = "aws.imageNames"
	KeyAWSChartName      = "aws.chartName"
	KeyAWSImageFilter    = "aws.imageFilter"
)

// Defaults for the AWS pipeline.
const (
	DefaultECRRepository = "709825985650.dkr.ecr.us-east-1.amazonaws.com/weaveworks"
	DefaultChartName     = "mccp"
	DefaultImageFilter   = "weaveworks"
)

// DefaultAWSImageNames are the marketplace products a chart may be published as.
var DefaultAWSImageNames = []string{
	"weave-gitops-enterprise-development",
	"weave-gitops-enterprise-production",
}

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

var valuesPathSegment = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Azure configures the Azure marketplace pipeline.
type Azure struct {
	Registry     string   `mapstructure:"registry"`
	Repositories []string `mapstructure:"repositories"`
	ValuesPath   string   `mapstructure:"valuesPath"`
	ReleaseLabel string   `mapstructure:"releaseLabel"`
	Lister       string   `mapstructure:"lister"`
}

// AWS configures the AWS marketplace pipeline.
type AWS struct {
	ECRRepository string   `mapstructure:"ecrRepository"`
	ImageNames    []string `mapstructure:"imageNames"`
	ChartName     string   `mapstructure:"chartName"`
	ImageFilter   string   `mapstructure:"imageFilter"`
}

// Config is the complete publisher configuration.
type Config struct {
	Azure Azure `mapstructure:"azure"`
	AWS   AWS   `mapstructure:"aws"`
}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyAzureRegistry, registry.DefaultAzureRegistry)
	v.SetDefault(KeyAzureRepositories, registry.KnownRepositories())
	v.SetDefault(KeyAzureValuesPath, manifest.DefaultValuesPath)
	v.SetDefault(KeyAzureReleaseLabel, manifest.DefaultReleaseLabel)
	v.SetDefault(KeyAzureLister, ListerAzureCLI)
	v.SetDefault(KeyAWSECRRepository, DefaultECRRepository)
	v.SetDefault(KeyAWSImageNames, slices.Clone(DefaultAWSImageNames))
	v.SetDefault(KeyAWSChartName, DefaultChartName)
	v.SetDefault(KeyAWSImageFilter, DefaultImageFilter)
}

// New returns a viper instance with defaults and environment binding, reading
// file from fsys. Without file, .mpub.yaml is looked up in the working and home
// directories and its absence is not an error.
func New(fsys afero.Fs, file string) (*viper.Viper, error) {
	v := viper.New()
	v.SetFs(fsys)
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
		return v, nil
	}

	v.SetConfigName(FileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return v, nil
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every setting.
func (c *Config) Validate() error {
	if err := validateRegistryHost(c.Azure.Registry); err != nil {
		return err
	}
	if len(c.Azure.Repositories) == 0 {
		return fmt.Errorf("%w: %s is empty", ErrInvalidConfig, KeyAzureRepositories)
	}
	for _, repo := range c.Azure.Repositories {
		if !registry.IsKnownRepository(repo) {
			return fmt.Errorf("%w: %s: unknown repository %q", ErrInvalidConfig, KeyAzureRepositories, repo)
		}
	}
	for _, seg := range strings.Split(c.Azure.ValuesPath, ".") {
		if !valuesPathSegment.MatchString(seg) {
			return fmt.Errorf("%w: %s: invalid values path %q", ErrInvalidConfig, KeyAzureValuesPath, c.Azure.ValuesPath)
		}
	}
	if c.Azure.ReleaseLabel == "" {
		return fmt.Errorf("%w: %s is empty", ErrInvalidConfig, KeyAzureReleaseLabel)
	}
	if c.Azure.Lister != ListerAzureCLI && c.Azure.Lister != ListerRemote {
		return fmt.Errorf("%w: %s must be %q or %q, got %q", ErrInvalidConfig, KeyAzureLister, ListerAzureCLI, ListerRemote, c.Azure.Lister)
	}

	if _, err := reference.ParseNormalizedNamed(c.AWS.ECRRepository); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, KeyAWSECRRepository, err)
	}
	if len(c.AWS.ImageNames) == 0 {
		return fmt.Errorf("%w: %s is empty", ErrInvalidConfig, KeyAWSImageNames)
	}
	if c.AWS.ChartName == "" {
		return fmt.Errorf("%w: %s is empty", ErrInvalidConfig, KeyAWSChartName)
	}
	return nil
}

// validateRegistryHost accepts a bare registry host, optionally with a port.
func validateRegistryHost(host string) error {
	named, err := reference.ParseNormalizedNamed(host + "/probe")
	if err != nil || reference.Domain(named) != host {
		return fmt.Errorf("%w: %s: invalid registry host %q", ErrInvalidConfig, KeyAzureRegistry, host)
	}
	return nil
}
