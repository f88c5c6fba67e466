package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolverPrecedence(t *testing.T) {
	r := NewResolver(nil)

	tests := []struct {
		name  string
		base  string
		field string
		want  string
	}{
		{
			name:  "path derived name",
			base:  "clusterController",
			field: "image: {{ .Values.controllerManager.manager.image.repository }}:{{ .Values.controllerManager.manager.image.tag }}",
			want:  "clusterController",
		},
		{
			name:  "kebab proxy",
			base:  "clusterController",
			field: "image: gcr.io/kubebuilder/kube-rbac-proxy:v0.8.0",
			want:  KubeRbacProxy,
		},
		{
			name:  "camel proxy",
			base:  "pipelineController",
			field: "image: {{ .Values.kubeRbacProxy.image.repository }}:{{ .Values.kubeRbacProxy.image.tag }}",
			want:  KubeRbacProxy,
		},
		{
			name:  "ui server",
			base:  "clustersService",
			field: `image: "{{ .Values.images.uiServer }}"`,
			want:  UIServer,
		},
		{
			name:  "ui server kebab",
			base:  "clustersService",
			field: "image: weaveworks/weave-gitops-enterprise-ui-server:v0.1.0",
			want:  UIServer,
		},
		{
			name:  "proxy beats ui server",
			base:  "clustersService",
			field: "image: {{ .Values.uiServer.kubeRbacProxy.image }}",
			want:  KubeRbacProxy,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(tt.base, tt.field))
		})
	}
}

func TestNewResolverOrdersByPriority(t *testing.T) {
	always := func(string) bool { return true }
	r := NewResolver([]Rule{
		{Name: "low", Priority: 1, Match: always},
		{Name: "high", Priority: 5, Match: always},
		{Name: "high-second", Priority: 5, Match: always},
	})

	names := make([]string, 0, 3)
	for _, rule := range r.Rules() {
		names = append(names, rule.Name)
	}
	assert.Equal(t, []string{"high", "high-second", "low"}, names)
	assert.Equal(t, "high", r.Resolve("base", "anything"))
}

func TestResolverWithoutRules(t *testing.T) {
	r := NewResolver([]Rule{})
	assert.Equal(t, "policyAgent", r.Resolve("policyAgent", "image: kube-rbac-proxy"))
}

func TestDefaultRulesOrder(t *testing.T) {
	rules := NewResolver(nil).Rules()
	assert.Equal(t, KubeRbacProxy, rules[0].Name)
	assert.Equal(t, UIServer, rules[1].Name)
}
