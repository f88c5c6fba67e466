// Package azure prepares a chart for the Azure marketplace: every Deployment
// template is pinned to registry digests supplied through the values file, and
// pod templates carry the release usage label.
package azure

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/weaveworks/marketplace-publisher/pkg/chart"
	"github.com/weaveworks/marketplace-publisher/pkg/exitcodes"
	"github.com/weaveworks/marketplace-publisher/pkg/fileutil"
	log "github.com/weaveworks/marketplace-publisher/pkg/log"
	"github.com/weaveworks/marketplace-publisher/pkg/manifest"
	"github.com/weaveworks/marketplace-publisher/pkg/naming"
	"github.com/weaveworks/marketplace-publisher/pkg/registry"
	"github.com/weaveworks/marketplace-publisher/pkg/values"
)

// Options configure one run.
type Options struct {
	ChartDir string
	// ValuesFile defaults to values.yaml in ChartDir.
	ValuesFile   string
	Registry     string
	ValuesPath   string
	ReleaseLabel string
	// Repositories are queried for digests. Empty means every known repository.
	Repositories []string
	DryRun       bool
}

// Result describes a finished run.
type Result struct {
	Plan  *chart.Plan
	Table registry.Table
	// Images is the subtree built for the names the templates use.
	Images values.Document
	// Values is the merged values document.
	Values values.Document
}

// Publisher runs the Azure pipeline against a filesystem.
type Publisher struct {
	fs       afero.Fs
	resolver *registry.DigestResolver
	rules    *naming.Resolver
}

// NewPublisher returns a Publisher listing manifests with lister.
func NewPublisher(fsys afero.Fs, lister registry.ManifestLister) *Publisher {
	return &Publisher{
		fs:       fsys,
		resolver: registry.NewDigestResolver(lister),
		rules:    naming.NewResolver(nil),
	}
}

// Run rewrites the chart in opts.ChartDir and merges the digest subtree into
// its values file. Nothing is written unless every used image resolves; in
// dry-run mode nothing is written at all.
func (p *Publisher) Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.ValuesPath == "" {
		opts.ValuesPath = manifest.DefaultValuesPath
	}
	if opts.Registry == "" {
		opts.Registry = registry.DefaultAzureRegistry
	}
	if len(opts.Repositories) == 0 {
		opts.Repositories = registry.KnownRepositories()
	}
	if opts.ValuesFile == "" {
		opts.ValuesFile = filepath.Join(opts.ChartDir, chart.ValuesFile)
	}

	exists, err := fileutil.DirExists(p.fs, opts.ChartDir)
	if err != nil {
		return nil, exitcodes.New(exitcodes.ExitIOError, err)
	}
	if !exists {
		return nil, exitcodes.New(exitcodes.ExitChartNotFound, fmt.Errorf("chart directory not found: %s", opts.ChartDir))
	}
	md, err := chart.LoadMetadata(p.fs, opts.ChartDir)
	if err != nil {
		return nil, exitcodes.New(exitcodes.ExitChartMetadataError, err)
	}
	log.Info("Preparing chart for Azure", "chart", md.Name, "version", md.Version, "dir", opts.ChartDir)

	planner := chart.NewPlanner(p.fs, manifest.NewRewriter(opts.ValuesPath, p.rules), opts.ReleaseLabel)
	plan, err := planner.Plan(opts.ChartDir)
	if err != nil {
		var pathErr *naming.PathDerivationError
		if errors.As(err, &pathErr) {
			return nil, exitcodes.New(exitcodes.ExitPathDerivationError, err)
		}
		return nil, exitcodes.New(exitcodes.ExitTemplateRewriteError, err)
	}

	table := p.resolver.Resolve(ctx, opts.Repositories)
	if err := ctx.Err(); err != nil {
		return nil, exitcodes.New(exitcodes.ExitGeneralRuntimeError, err)
	}

	images, err := values.BuildSubtree(plan.Used, table, values.Options{
		Registry:     opts.Registry,
		Path:         opts.ValuesPath,
		Repositories: opts.Repositories,
	})
	if err != nil {
		return nil, exitcodes.New(exitcodes.ExitResolutionCoverage, err)
	}

	doc, err := p.loadValues(opts.ValuesFile)
	if err != nil {
		return nil, err
	}
	if err := values.Merge(doc, images); err != nil {
		return nil, exitcodes.New(exitcodes.ExitValuesMergeError, err)
	}

	result := &Result{Plan: plan, Table: table, Images: images, Values: doc}
	if opts.DryRun {
		for _, path := range plan.Paths() {
			log.Info("Dry run: would rewrite template", "path", path)
		}
		log.Info("Dry run: would update values", "path", opts.ValuesFile, "images", sets.List(plan.Used))
		return result, nil
	}

	data, err := values.Marshal(doc)
	if err != nil {
		return nil, exitcodes.New(exitcodes.ExitValuesMergeError, err)
	}
	if err := plan.Apply(p.fs, chart.Change{Path: opts.ValuesFile, Content: data}); err != nil {
		return nil, exitcodes.New(exitcodes.ExitIOError, err)
	}
	log.Info("Chart prepared for Azure", "templates", len(plan.Changes), "images", plan.Used.Len(), "values", opts.ValuesFile)
	return result, nil
}

func (p *Publisher) loadValues(path string) (values.Document, error) {
	exists, err := fileutil.FileExists(p.fs, path)
	if err != nil {
		return nil, exitcodes.New(exitcodes.ExitIOError, err)
	}
	if !exists {
		log.Debug("Values file not found, starting empty", "path", path)
		return values.Document{}, nil
	}
	doc, err := values.Load(p.fs, path)
	if err != nil {
		return nil, exitcodes.New(exitcodes.ExitValuesMergeError, err)
	}
	return doc, nil
}
