package aws

import (
	"context"

	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/crane"
)

// Copier copies an image between registries.
type Copier interface {
	Copy(ctx context.Context, src, dst string) error
}

// CraneCopier copies with go-containerregistry's crane.
type CraneCopier struct {
	Options []crane.Option
}

// NewCraneCopier returns a CraneCopier. Without options the default keychain is used.
func NewCraneCopier(opts ...crane.Option) *CraneCopier {
	if len(opts) == 0 {
		opts = []crane.Option{crane.WithAuthFromKeychain(authn.DefaultKeychain)}
	}
	return &CraneCopier{Options: opts}
}

// Copy implements Copier.
func (c *CraneCopier) Copy(ctx context.Context, src, dst string) error {
	opts := append([]crane.Option{crane.WithContext(ctx)}, c.Options...)
	return crane.Copy(src, dst, opts...)
}
