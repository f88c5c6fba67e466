// Package registry resolves the newest tagged digest of each published
// repository and holds the fixed table of repositories the charts use.
package registry

import "slices"

// DefaultAzureRegistry is the marketplace registry images are published to.
const DefaultAzureRegistry = "weaveworksmarketplacepublic.azurecr.io"

// KnownImage ties a registry repository to the logical name the chart
// templates address it by.
type KnownImage struct {
	Repository  string
	LogicalName string
}

// KnownImages lists every repository published with the charts.
var KnownImages = []KnownImage{
	{Repository: "cluster-bootstrap-controller", LogicalName: "clusterBootstrapController"},
	{Repository: "cluster-controller", LogicalName: "clusterController"},
	{Repository: "gitopssets-controller", LogicalName: "gitopssetsController"},
	{Repository: "kube-rbac-proxy", LogicalName: "kubeRbacProxy"},
	{Repository: "pipeline-controller", LogicalName: "pipelineController"},
	{Repository: "policy-agent", LogicalName: "policyAgent"},
	{Repository: "templates-controller", LogicalName: "templatesController"},
	{Repository: "weave-gitops-enterprise-clusters-service", LogicalName: "clustersService"},
	{Repository: "weave-gitops-enterprise-ui-server", LogicalName: "uiServer"},
}

// KnownRepositories returns the repository names of KnownImages in order.
func KnownRepositories() []string {
	repos := make([]string, 0, len(KnownImages))
	for _, k := range KnownImages {
		repos = append(repos, k.Repository)
	}
	return repos
}

// IsKnownRepository reports whether repo is in KnownImages.
func IsKnownRepository(repo string) bool {
	return slices.ContainsFunc(KnownImages, func(k KnownImage) bool { return k.Repository == repo })
}

// LogicalName returns the logical name of a known repository.
func LogicalName(repo string) (string, bool) {
	i := slices.IndexFunc(KnownImages, func(k KnownImage) bool { return k.Repository == repo })
	if i < 0 {
		return "", false
	}
	return KnownImages[i].LogicalName, true
}

// RepositoryFor returns the repository published under a logical name.
func RepositoryFor(logicalName string) (string, bool) {
	i := slices.IndexFunc(KnownImages, func(k KnownImage) bool { return k.LogicalName == logicalName })
	if i < 0 {
		return "", false
	}
	return KnownImages[i].Repository, true
}
