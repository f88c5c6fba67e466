package values

import (
	"errors"
	"fmt"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/weaveworks/marketplace-publisher/pkg/manifest"
	"github.com/weaveworks/marketplace-publisher/pkg/registry"
)

var (
	// ErrUnknownImage marks a logical name no known repository is published under.
	ErrUnknownImage = errors.New("no known repository for logical image name")
	// ErrUnresolvedDigest marks a used repository whose digest was not resolved.
	ErrUnresolvedDigest = errors.New("no resolved digest for repository")
)

// CoverageError reports a logical name emitted by the rewriter that the digest
// table cannot serve.
type CoverageError struct {
	LogicalName string
	Repository  string
	Err         error
}

func (e *CoverageError) Error() string {
	if e.Repository != "" {
		return fmt.Sprintf("image %q (repository %q): %v", e.LogicalName, e.Repository, e.Err)
	}
	return fmt.Sprintf("image %q: %v", e.LogicalName, e.Err)
}

func (e *CoverageError) Unwrap() error {
	return e.Err
}

// Options control the shape of the images subtree.
type Options struct {
	// Registry is written as the registry of every image.
	Registry string
	// Path is the dotted values path of the images mapping.
	Path string
	// Repositories limits which repositories may serve a logical name. Empty means all known.
	Repositories []string
}

// BuildSubtree returns `{<path>: {<name>: {registry, image, digest}}}` for
// every name in used. It fails with a *CoverageError on the first name, in
// sorted order, that is unknown or whose repository did not resolve.
func BuildSubtree(used sets.Set[string], table registry.Table, opts Options) (Document, error) {
	if opts.Path == "" {
		opts.Path = manifest.DefaultValuesPath
	}
	allowed := sets.New(opts.Repositories...)

	images := map[string]any{}
	for _, name := range sets.List(used) {
		repo, ok := registry.RepositoryFor(name)
		if !ok || (allowed.Len() > 0 && !allowed.Has(repo)) {
			return nil, &CoverageError{LogicalName: name, Err: ErrUnknownImage}
		}
		res, ok := table.Lookup(repo)
		if !ok {
			return nil, &CoverageError{LogicalName: name, Repository: repo, Err: ErrUnresolvedDigest}
		}
		images[name] = map[string]any{
			"registry": opts.Registry,
			"image":    repo,
			"digest":   res.Digest,
		}
	}
	return nest(opts.Path, images), nil
}
