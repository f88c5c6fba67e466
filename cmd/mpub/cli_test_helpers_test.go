package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/weaveworks/marketplace-publisher/internal/command"
	"github.com/weaveworks/marketplace-publisher/pkg/aws"
	"github.com/weaveworks/marketplace-publisher/pkg/config"
	"github.com/weaveworks/marketplace-publisher/pkg/registry"
)

// executeCommand is a helper for testing Cobra commands
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)

	err = root.Execute()
	return buf.String(), err
}

type staticLister map[string][]registry.Manifest

func (s staticLister) ListManifests(_ context.Context, repo string) ([]registry.Manifest, error) {
	m, ok := s[repo]
	if !ok {
		return nil, errors.New("repository not found")
	}
	return m, nil
}

func knownLister() staticLister {
	l := staticLister{}
	for _, repo := range registry.KnownRepositories() {
		l[repo] = []registry.Manifest{{Digest: "sha256:" + repo, Tags: []string{"v1.0.0"}, CreatedTime: "2023-02-01T00:00:00Z"}}
	}
	return l
}

type recordingCopier struct {
	copies []string
}

func (r *recordingCopier) Copy(_ context.Context, src, dst string) error {
	r.copies = append(r.copies, src+" -> "+dst)
	return nil
}

// setupTest swaps the filesystem, command runner, lister and copier for the
// duration of the test.
func setupTest(t *testing.T, lister registry.ManifestLister, runner command.Runner, copier aws.Copier) afero.Fs {
	t.Helper()
	fsys := afero.NewMemMapFs()
	restoreFs := SetFs(fsys)

	oldRunner, oldLister, oldCopier := Runner, newLister, newCopier
	if runner != nil {
		Runner = runner
	}
	newLister = func(*config.Config) registry.ManifestLister { return lister }
	newCopier = func() aws.Copier { return copier }

	t.Cleanup(func() {
		restoreFs()
		Runner, newLister, newCopier = oldRunner, oldLister, oldCopier
	})
	return fsys
}
