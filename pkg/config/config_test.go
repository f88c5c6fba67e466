package config

import (
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weaveworks/marketplace-publisher/pkg/fileutil"
	"github.com/weaveworks/marketplace-publisher/pkg/registry"
)

func TestLoadDefaults(t *testing.T) {
	v, err := New(afero.NewMemMapFs(), "")
	require.NoError(t, err)

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, registry.DefaultAzureRegistry, cfg.Azure.Registry)
	assert.Equal(t, registry.KnownRepositories(), cfg.Azure.Repositories)
	assert.Equal(t, "global.azure.images", cfg.Azure.ValuesPath)
	assert.Equal(t, "azure-extensions-usage-release-identifier", cfg.Azure.ReleaseLabel)
	assert.Equal(t, ListerAzureCLI, cfg.Azure.Lister)
	assert.Equal(t, DefaultECRRepository, cfg.AWS.ECRRepository)
	assert.Equal(t, DefaultAWSImageNames, cfg.AWS.ImageNames)
	assert.Equal(t, "mccp", cfg.AWS.ChartName)
	assert.Equal(t, "weaveworks", cfg.AWS.ImageFilter)
}

func TestLoadFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/etc/mpub.yaml", []byte(`azure:
  registry: example.azurecr.io
  repositories:
  - policy-agent
  - kube-rbac-proxy
  valuesPath: global.marketplace.images
  lister: remote
aws:
  chartName: enterprise
`), fileutil.ReadWriteUserReadOthers))

	v, err := New(fsys, "/etc/mpub.yaml")
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "example.azurecr.io", cfg.Azure.Registry)
	assert.Equal(t, []string{"policy-agent", "kube-rbac-proxy"}, cfg.Azure.Repositories)
	assert.Equal(t, "global.marketplace.images", cfg.Azure.ValuesPath)
	assert.Equal(t, ListerRemote, cfg.Azure.Lister)
	assert.Equal(t, "enterprise", cfg.AWS.ChartName)
	assert.Equal(t, DefaultECRRepository, cfg.AWS.ECRRepository)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := New(afero.NewMemMapFs(), "/nope.yaml")
	require.Error(t, err)
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("MPUB_AZURE_REGISTRY", "env.azurecr.io:5000")
	t.Setenv("MPUB_AZURE_LISTER", "remote")

	v, err := New(afero.NewMemMapFs(), "")
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "env.azurecr.io:5000", cfg.Azure.Registry)
	assert.Equal(t, ListerRemote, cfg.Azure.Lister)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid"},
		{name: "registry with path", mutate: func(c *Config) { c.Azure.Registry = "example.azurecr.io/team" }, wantErr: "invalid registry host"},
		{name: "registry with tag", mutate: func(c *Config) { c.Azure.Registry = "example.azurecr.io:latest:x" }, wantErr: "invalid registry host"},
		{name: "no repositories", mutate: func(c *Config) { c.Azure.Repositories = nil }, wantErr: "azure.repositories is empty"},
		{name: "unknown repository", mutate: func(c *Config) { c.Azure.Repositories = []string{"flux"} }, wantErr: `unknown repository "flux"`},
		{name: "bad values path", mutate: func(c *Config) { c.Azure.ValuesPath = "global..images" }, wantErr: "invalid values path"},
		{name: "empty values path", mutate: func(c *Config) { c.Azure.ValuesPath = "" }, wantErr: "invalid values path"},
		{name: "empty label", mutate: func(c *Config) { c.Azure.ReleaseLabel = "" }, wantErr: "releaseLabel is empty"},
		{name: "bad lister", mutate: func(c *Config) { c.Azure.Lister = "docker" }, wantErr: "azure.lister must be"},
		{name: "bad ecr repository", mutate: func(c *Config) { c.AWS.ECRRepository = "UPPER/Case" }, wantErr: "aws.ecrRepository"},
		{name: "no image names", mutate: func(c *Config) { c.AWS.ImageNames = nil }, wantErr: "aws.imageNames is empty"},
		{name: "no chart name", mutate: func(c *Config) { c.AWS.ChartName = "" }, wantErr: "aws.chartName is empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := New(afero.NewMemMapFs(), "")
			require.NoError(t, err)
			cfg, err := Load(v)
			require.NoError(t, err)

			if tt.mutate != nil {
				tt.mutate(cfg)
			}
			err = cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
