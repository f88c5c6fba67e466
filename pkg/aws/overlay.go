package aws

import (
	"errors"
	"fmt"

	"github.com/weaveworks/marketplace-publisher/pkg/values"
)

// ErrMissingImage is returned when a rendered chart lacks an image the overlay needs.
var ErrMissingImage = errors.New("image not found in rendered chart")

// subchartImage points a subchart's manager image at ECR.
type subchartImage struct {
	chart     string
	component string
}

var subchartImages = []subchartImage{
	{chart: "cluster-controller", component: "controllerManager"},
	{chart: "pipeline-controller", component: "controller"},
	{chart: "templates-controller", component: "controllerManager"},
	{chart: "gitopssets-controller", component: "controllerManager"},
}

var topLevelImages = []struct {
	key  string
	name string
}{
	{key: "clustersService", name: "weave-gitops-enterprise-clusters-service"},
	{key: "uiServer", name: "weave-gitops-enterprise-ui-server"},
	{key: "clusterBootstrapController", name: "cluster-bootstrap-controller"},
}

// Overlay returns the values that point the chart's images at their copies in
// ecrRepo. Images are matched by name; every image the chart needs must be present.
func Overlay(images []Image, ecrRepo string) (values.Document, error) {
	tags := make(map[string]string, len(images))
	for _, img := range images {
		tags[img.Name] = img.ECRTag()
	}
	lookup := func(name string) (string, error) {
		tag, ok := tags[name]
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrMissingImage, name)
		}
		return tag, nil
	}

	top := map[string]any{}
	for _, ti := range topLevelImages {
		tag, err := lookup(ti.name)
		if err != nil {
			return nil, err
		}
		top[ti.key] = ecrRepo + ":" + tag
	}
	doc := values.Document{"images": top}

	for _, si := range subchartImages {
		tag, err := lookup(si.chart)
		if err != nil {
			return nil, err
		}
		doc[si.chart] = map[string]any{
			si.component: map[string]any{
				"manager": map[string]any{
					"image": map[string]any{
						"repository": ecrRepo,
						"tag":        tag,
					},
				},
			},
		}
	}
	return doc, nil
}
