package naming

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCamelCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "cluster-bootstrap-controller", want: "clusterBootstrapController"},
		{in: "policy-agent", want: "policyAgent"},
		{in: "weave-gitops-enterprise-clusters-service", want: "weaveGitopsEnterpriseClustersService"},
		{in: "azure-vote-back", want: "azureVoteBack"},
		{in: "UI-Server", want: "uiServer"},
		{in: "single", want: "single"},
		{in: "a--b", want: "aB"},
		{in: "cluster-2fa", want: "cluster2fa"},
		{in: "v2-API-server", want: "v2ApiServer"},
		{in: "3scale-operator", want: "3scaleOperator"},
		{in: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CamelCase(tt.in))
		})
	}
}

func TestFromPath(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{
			name: "subchart",
			path: "charts/cluster-controller/templates/deployment.yaml",
			want: "clusterController",
		},
		{
			name: "template subdirectory",
			path: "templates/clusters-service/deployment.yaml",
			want: "clustersService",
		},
		{
			name: "charts wins over templates",
			path: "templates/ignored/charts/pipeline-controller/deployment.yaml",
			want: "pipelineController",
		},
		{
			name: "first charts segment wins",
			path: "charts/gitopssets-controller/charts/nested/templates/deployment.yaml",
			want: "gitopssetsController",
		},
		{
			name: "absolute path",
			path: "/tmp/mccp/charts/policy-agent/templates/deployment.yaml",
			want: "policyAgent",
		},
		{
			name: "file directly under templates",
			path: "templates/deployment.yaml",
			want: "deployment.yaml",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromPath(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromPathDeterministic(t *testing.T) {
	first, err := FromPath("charts/templates-controller/templates/deployment.yaml")
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := FromPath("charts/templates-controller/templates/deployment.yaml")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestFromPathErrors(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		segment string
	}{
		{name: "no anchor", path: "manifests/deployment.yaml"},
		{name: "charts is last", path: "mccp/charts", segment: ChartsSegment},
		{name: "templates is last", path: "mccp/templates", segment: TemplatesSegment},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromPath(tt.path)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrPathDerivation))

			var pathErr *PathDerivationError
			require.True(t, errors.As(err, &pathErr))
			assert.Equal(t, tt.path, pathErr.Path)
			assert.Equal(t, tt.segment, pathErr.Segment)
			assert.Contains(t, err.Error(), tt.path)
		})
	}
}
