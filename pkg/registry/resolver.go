package registry

import (
	"context"
	"errors"
	"fmt"

	log "github.com/weaveworks/marketplace-publisher/pkg/log"
)

// ErrNoTaggedManifest is returned when a repository has no tagged manifest.
var ErrNoTaggedManifest = errors.New("no tagged manifest found")

// Resolution is the tag and digest a repository resolved to. The zero value
// marks a repository that could not be resolved.
type Resolution struct {
	Tag    string `json:"tag,omitempty"`
	Digest string `json:"digest,omitempty"`
}

// Resolved reports whether the resolution carries a digest.
func (r Resolution) Resolved() bool {
	return r.Digest != ""
}

// Table maps repository names to their resolution.
type Table map[string]Resolution

// Lookup returns the resolution of repo if it was resolved.
func (t Table) Lookup(repo string) (Resolution, bool) {
	res, ok := t[repo]
	if !ok || !res.Resolved() {
		return Resolution{}, false
	}
	return res, true
}

// DigestResolver resolves repositories one at a time through a ManifestLister.
type DigestResolver struct {
	lister ManifestLister
}

// NewDigestResolver returns a DigestResolver using lister.
func NewDigestResolver(lister ManifestLister) *DigestResolver {
	return &DigestResolver{lister: lister}
}

// Resolve builds the table for repos. A repository that fails to resolve is
// logged and recorded with a zero Resolution; the others are still resolved.
func (r *DigestResolver) Resolve(ctx context.Context, repos []string) Table {
	table := make(Table, len(repos))
	for _, repo := range repos {
		res, err := r.ResolveRepository(ctx, repo)
		if err != nil {
			log.Warn("Digest resolution failed", "repository", repo, "error", err)
			table[repo] = Resolution{}
			continue
		}
		log.Info("Resolved digest", "repository", repo, "tag", res.Tag, "digest", res.Digest)
		table[repo] = res
	}
	return table
}

// ResolveRepository returns the first tag and the digest of the newest tagged
// manifest of repo.
func (r *DigestResolver) ResolveRepository(ctx context.Context, repo string) (Resolution, error) {
	manifests, err := r.lister.ListManifests(ctx, repo)
	if err != nil {
		return Resolution{}, fmt.Errorf("failed to list manifests of %s: %w", repo, err)
	}
	latest, ok := LatestTagged(manifests)
	if !ok {
		return Resolution{}, fmt.Errorf("%s: %w", repo, ErrNoTaggedManifest)
	}
	return Resolution{Tag: latest.Tags[0], Digest: latest.Digest}, nil
}
