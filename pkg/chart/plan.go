// Package chart walks a chart directory, rewrites the Deployment templates it
// finds and collects the logical image names the rewritten templates use.
//
// Work is split in two phases. Planner.Plan reads every file and computes the
// new content without touching the filesystem; Plan.Apply writes the result.
package chart

import (
	"fmt"
	"path/filepath"
	"slices"

	"github.com/spf13/afero"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/weaveworks/marketplace-publisher/pkg/fileutil"
	log "github.com/weaveworks/marketplace-publisher/pkg/log"
	"github.com/weaveworks/marketplace-publisher/pkg/manifest"
	"github.com/weaveworks/marketplace-publisher/pkg/naming"
)

// Change is the new content of one file.
type Change struct {
	Path    string
	Content []byte
}

// Plan is the outcome of walking a chart.
type Plan struct {
	Root    string
	Changes []Change
	// Used holds every logical image name emitted while rewriting.
	Used sets.Set[string]
	// Files is the number of YAML files inspected.
	Files int
}

// Apply writes every change of the plan together with extra. Nothing is
// replaced unless every file could be staged.
func (p *Plan) Apply(fsys afero.Fs, extra ...Change) error {
	changes := append(slices.Clone(p.Changes), extra...)
	files := make([]fileutil.File, 0, len(changes))
	for _, c := range changes {
		files = append(files, fileutil.File{Path: c.Path, Data: c.Content})
	}
	if err := fileutil.ReplaceFiles(fsys, files); err != nil {
		return err
	}
	for _, c := range changes {
		log.Debug("Wrote file", "path", c.Path)
	}
	return nil
}

// Paths returns the paths the plan would write.
func (p *Plan) Paths() []string {
	paths := make([]string, 0, len(p.Changes))
	for _, c := range p.Changes {
		paths = append(paths, c.Path)
	}
	return paths
}

// Planner computes plans.
type Planner struct {
	fs           afero.Fs
	rewriter     *manifest.Rewriter
	releaseLabel string
}

// NewPlanner returns a Planner reading from fsys.
func NewPlanner(fsys afero.Fs, rewriter *manifest.Rewriter, releaseLabel string) *Planner {
	if rewriter == nil {
		rewriter = manifest.NewRewriter("", nil)
	}
	if releaseLabel == "" {
		releaseLabel = manifest.DefaultReleaseLabel
	}
	return &Planner{fs: fsys, rewriter: rewriter, releaseLabel: releaseLabel}
}

// Plan walks every YAML file below root. It fails on the first file whose
// Deployment documents cannot be named from its path.
func (p *Planner) Plan(root string) (*Plan, error) {
	files, err := fileutil.FindYAMLFiles(p.fs, root)
	if err != nil {
		return nil, err
	}

	plan := &Plan{Root: root, Used: sets.New[string](), Files: len(files)}
	for _, path := range files {
		data, err := afero.ReadFile(p.fs, path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil, fmt.Errorf("failed to relativize %s: %w", path, err)
		}

		content, used, err := p.RewriteFile(string(data), rel)
		if err != nil {
			return nil, err
		}
		plan.Used = plan.Used.Union(used)
		if content != string(data) {
			plan.Changes = append(plan.Changes, Change{Path: path, Content: []byte(content)})
			log.Debug("Template rewritten", "path", rel, "images", sets.List(used))
		}
	}

	log.Info("Planned chart rewrite", "root", root, "files", plan.Files, "changed", len(plan.Changes), "images", sets.List(plan.Used))
	return plan, nil
}

// RewriteFile rewrites and annotates the Deployment documents of one template
// file. rel is the file's path relative to the chart root and names the
// images that no override rule claims.
func (p *Planner) RewriteFile(content, rel string) (string, sets.Set[string], error) {
	used := sets.New[string]()
	docs := manifest.Split(content)

	var baseName string
	for i, doc := range docs {
		if !doc.IsDeployment() {
			continue
		}
		if baseName == "" {
			name, err := naming.FromPath(rel)
			if err != nil {
				return "", nil, err
			}
			baseName = name
		}
		rewritten, names := p.rewriter.RewriteDocument(doc, baseName)
		docs[i] = manifest.AnnotatePodTemplate(rewritten, p.releaseLabel)
		used = used.Union(names)
	}
	return manifest.Join(docs), used, nil
}
