// Package aws republishes a released chart and its images to the AWS
// marketplace ECR repository.
package aws

import (
	"errors"
	"fmt"
	"path"
	"regexp"
	"slices"
	"strings"

	"github.com/distribution/reference"
)

var (
	// ErrMissingTag is returned for image references without a tag.
	ErrMissingTag = errors.New("image reference has no tag")
	// ErrInvalidImage wraps reference parsing failures.
	ErrInvalidImage = errors.New("invalid image reference")
)

var renderedImagePattern = regexp.MustCompile(`image: (.*)`)

// Image is a parsed, tagged image reference found in rendered manifests.
type Image struct {
	Original   string
	Registry   string
	Repository string
	// Name is the last path segment of the repository.
	Name string
	Tag  string
}

// ECRTag is the tag the image is published under in the shared ECR
// repository: "<name>-<tag>".
func (i Image) ECRTag() string {
	return i.Name + "-" + i.Tag
}

// ParseImage parses a tagged image reference.
func ParseImage(ref string) (Image, error) {
	named, err := reference.ParseNormalizedNamed(ref)
	if err != nil {
		return Image{}, fmt.Errorf("%w %q: %v", ErrInvalidImage, ref, err)
	}
	tagged, ok := named.(reference.Tagged)
	if !ok {
		return Image{}, fmt.Errorf("%w: %s", ErrMissingTag, ref)
	}
	repo := reference.Path(named)
	return Image{
		Original:   ref,
		Registry:   reference.Domain(named),
		Repository: repo,
		Name:       path.Base(repo),
		Tag:        tagged.Tag(),
	}, nil
}

// ExtractImages returns the sorted, de-duplicated image references of every
// `image: <ref>` line in rendered that contains filter. Surrounding quotes are
// removed.
func ExtractImages(rendered, filter string) []string {
	var images []string
	for _, line := range strings.Split(rendered, "\n") {
		m := renderedImagePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		ref := strings.Trim(strings.TrimSpace(m[1]), `"'`)
		if ref == "" || !strings.Contains(ref, filter) {
			continue
		}
		images = append(images, ref)
	}
	slices.Sort(images)
	return slices.Compact(images)
}
