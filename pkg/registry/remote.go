package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/name"
	v1 "github.com/google/go-containerregistry/pkg/v1"
	"github.com/google/go-containerregistry/pkg/v1/remote"

	log "github.com/weaveworks/marketplace-publisher/pkg/log"
)

// Remote lists manifests over the registry HTTP API. Tags pointing at the same
// digest are grouped into one Manifest.
type Remote struct {
	Registry string
	Options  []remote.Option
}

// NewRemote returns a Remote lister for registry. Without options the default
// keychain is used.
func NewRemote(registry string, opts ...remote.Option) *Remote {
	if len(opts) == 0 {
		opts = []remote.Option{remote.WithAuthFromKeychain(authn.DefaultKeychain)}
	}
	return &Remote{Registry: registry, Options: opts}
}

// ListManifests implements ManifestLister.
func (r *Remote) ListManifests(ctx context.Context, repository string) ([]Manifest, error) {
	repo, err := name.NewRepository(r.Registry + "/" + repository)
	if err != nil {
		return nil, fmt.Errorf("invalid repository %s/%s: %w", r.Registry, repository, err)
	}
	opts := append([]remote.Option{remote.WithContext(ctx)}, r.Options...)

	tags, err := remote.List(repo, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags of %s: %w", repo, err)
	}

	var manifests []Manifest
	byDigest := map[string]int{}
	for _, tag := range tags {
		desc, err := remote.Get(repo.Tag(tag), opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to get %s:%s: %w", repo, tag, err)
		}
		digest := desc.Digest.String()
		if i, ok := byDigest[digest]; ok {
			manifests[i].Tags = append(manifests[i].Tags, tag)
			continue
		}

		m := Manifest{Digest: digest, Tags: []string{tag}}
		if created, err := createdAt(desc); err != nil {
			log.Debug("Cannot read image creation time", "image", repo.Tag(tag).String(), "error", err)
		} else if !created.IsZero() {
			m.CreatedTime = created.UTC().Format(time.RFC3339Nano)
		}
		byDigest[digest] = len(manifests)
		manifests = append(manifests, m)
	}
	return manifests, nil
}

// createdAt reads the creation time from the image config. For an index the
// first child image is used.
func createdAt(desc *remote.Descriptor) (time.Time, error) {
	var img v1.Image
	if desc.MediaType.IsIndex() {
		idx, err := desc.ImageIndex()
		if err != nil {
			return time.Time{}, err
		}
		im, err := idx.IndexManifest()
		if err != nil {
			return time.Time{}, err
		}
		if len(im.Manifests) == 0 {
			return time.Time{}, nil
		}
		img, err = idx.Image(im.Manifests[0].Digest)
		if err != nil {
			return time.Time{}, err
		}
	} else {
		var err error
		img, err = desc.Image()
		if err != nil {
			return time.Time{}, err
		}
	}

	cfg, err := img.ConfigFile()
	if err != nil {
		return time.Time{}, err
	}
	return cfg.Created.Time, nil
}
