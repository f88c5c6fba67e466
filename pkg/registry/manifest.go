package registry

import (
	"context"
	"slices"
	"time"

	log "github.com/weaveworks/marketplace-publisher/pkg/log"
)

// Manifest is the metadata of one manifest in a repository, as listed by the
// registry.
type Manifest struct {
	Digest      string   `json:"digest"`
	Tags        []string `json:"tags,omitempty"`
	CreatedTime string   `json:"createdTime"`
}

// Created parses CreatedTime. Unparseable or missing times sort first.
func (m Manifest) Created() time.Time {
	if m.CreatedTime == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, m.CreatedTime)
	if err != nil {
		log.Debug("Unparseable manifest creation time", "digest", m.Digest, "createdTime", m.CreatedTime)
		return time.Time{}
	}
	return t
}

// ManifestLister lists the manifests of a repository.
type ManifestLister interface {
	ListManifests(ctx context.Context, repository string) ([]Manifest, error)
}

// LatestTagged returns the most recently created manifest carrying at least
// one tag. Of manifests created at the same time the one listed last wins.
func LatestTagged(manifests []Manifest) (Manifest, bool) {
	tagged := make([]Manifest, 0, len(manifests))
	for _, m := range manifests {
		if len(m.Tags) > 0 {
			tagged = append(tagged, m)
		}
	}
	if len(tagged) == 0 {
		return Manifest{}, false
	}
	slices.SortStableFunc(tagged, func(a, b Manifest) int {
		return a.Created().Compare(b.Created())
	})
	return tagged[len(tagged)-1], true
}
