package aws

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/spf13/afero"

	"github.com/weaveworks/marketplace-publisher/internal/command"
	"github.com/weaveworks/marketplace-publisher/internal/helm"
	"github.com/weaveworks/marketplace-publisher/pkg/chart"
	"github.com/weaveworks/marketplace-publisher/pkg/exitcodes"
	"github.com/weaveworks/marketplace-publisher/pkg/fileutil"
	log "github.com/weaveworks/marketplace-publisher/pkg/log"
	"github.com/weaveworks/marketplace-publisher/pkg/values"
	"github.com/weaveworks/marketplace-publisher/pkg/version"
)

// ErrImageNameNotAllowed is returned for a marketplace image name outside the configured list.
var ErrImageNameNotAllowed = errors.New("aws image name not allowed")

// Options configure one publishing run.
type Options struct {
	// Version of the chart to publish.
	Version string
	// ImageName is the marketplace product the chart is published as.
	ImageName string
	// LocalHelmRepo is the helm repository the released chart is pulled from.
	LocalHelmRepo string
	DryRun        bool

	ECRRepository     string
	ChartName         string
	ImageFilter       string
	AllowedImageNames []string

	// WorkDir receives the pulled chart. A temporary directory is used when empty.
	WorkDir string
}

// ImageCopy is one image copied to ECR.
type ImageCopy struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
}

// Result describes a finished run.
type Result struct {
	Copies  []ImageCopy
	Values  values.Document
	Archive string
	Remote  string
}

// Publisher republishes a chart to the AWS marketplace.
type Publisher struct {
	fs     afero.Fs
	runner command.Runner
	helm   *helm.CLI
	copier Copier
}

// NewPublisher returns a Publisher. fsys must be the filesystem helm writes to.
func NewPublisher(fsys afero.Fs, runner command.Runner, copier Copier) *Publisher {
	if runner == nil {
		runner = command.ExecRunner{}
	}
	if copier == nil {
		copier = NewCraneCopier()
	}
	return &Publisher{fs: fsys, runner: runner, helm: helm.NewCLI(runner), copier: copier}
}

// Publish pulls the released chart, copies its images to ECR, points the chart
// values at the copies, renames the chart to the marketplace image name, then
// packages and pushes it. In dry-run mode copies and the push are only logged.
func (p *Publisher) Publish(ctx context.Context, opts Options) (*Result, error) {
	if !slices.Contains(opts.AllowedImageNames, opts.ImageName) {
		return nil, &exitcodes.ExitCodeError{
			Code: exitcodes.ExitInvalidImageName,
			Err:  fmt.Errorf("%w: %q must be one of %v", ErrImageNameNotAllowed, opts.ImageName, opts.AllowedImageNames),
		}
	}
	if err := version.CheckHelmVersion(ctx, p.runner); err != nil {
		return nil, err
	}

	workDir := opts.WorkDir
	if workDir == "" {
		dir, err := afero.TempDir(p.fs, "", "mpub-aws-")
		if err != nil {
			return nil, exitcodes.New(exitcodes.ExitIOError, err)
		}
		defer func() {
			if err := p.fs.RemoveAll(dir); err != nil {
				log.Warn("Failed to remove work directory", "dir", dir, "error", err)
			}
		}()
		workDir = dir
	}
	chartDir := filepath.Join(workDir, opts.ChartName)

	if err := p.helm.Pull(ctx, &helm.PullOptions{
		Chart:    opts.LocalHelmRepo + "/" + opts.ChartName,
		Version:  opts.Version,
		UntarDir: workDir,
	}); err != nil {
		return nil, exitcodes.New(exitcodes.ExitHelmCommandFailed, err)
	}

	rendered, err := p.helm.Template(ctx, &helm.TemplateOptions{ChartPath: chartDir})
	if err != nil {
		return nil, exitcodes.New(exitcodes.ExitHelmCommandFailed, err)
	}

	images, err := parseImages(ExtractImages(rendered, opts.ImageFilter))
	if err != nil {
		return nil, exitcodes.New(exitcodes.ExitImageExtractionError, err)
	}

	ecrRepo := opts.ECRRepository + "/" + opts.ImageName
	result := &Result{Remote: "oci://" + opts.ECRRepository}
	for _, img := range images {
		cp := ImageCopy{Source: img.Original, Destination: ecrRepo + ":" + img.ECRTag()}
		result.Copies = append(result.Copies, cp)
		if opts.DryRun {
			log.Info("Dry run: would copy image", "source", cp.Source, "destination", cp.Destination)
			continue
		}
		log.Info("Copying image", "source", cp.Source, "destination", cp.Destination)
		if err := p.copier.Copy(ctx, cp.Source, cp.Destination); err != nil {
			return nil, exitcodes.New(exitcodes.ExitRegistryCommandFailed, fmt.Errorf("failed to copy %s: %w", cp.Source, err))
		}
	}

	overlay, err := Overlay(images, ecrRepo)
	if err != nil {
		return nil, exitcodes.New(exitcodes.ExitImageExtractionError, err)
	}
	merged, err := p.updateValues(chartDir, overlay)
	if err != nil {
		return nil, err
	}
	result.Values = merged

	md, err := chart.LoadMetadata(p.fs, chartDir)
	if err != nil {
		return nil, exitcodes.New(exitcodes.ExitChartMetadataError, err)
	}
	md.Name = opts.ImageName
	if err := chart.SaveMetadata(p.fs, chartDir, md); err != nil {
		return nil, exitcodes.New(exitcodes.ExitChartMetadataError, err)
	}

	archive, err := p.helm.Package(ctx, chartDir, workDir)
	if err != nil {
		return nil, exitcodes.New(exitcodes.ExitHelmCommandFailed, err)
	}
	result.Archive = archive

	if opts.DryRun {
		log.Info("Dry run: would push chart", "archive", archive, "remote", result.Remote)
		return result, nil
	}
	if err := p.helm.Push(ctx, archive, result.Remote); err != nil {
		return nil, exitcodes.New(exitcodes.ExitHelmCommandFailed, err)
	}
	log.Info("Published chart", "name", opts.ImageName, "version", opts.Version, "remote", result.Remote)
	return result, nil
}

func (p *Publisher) updateValues(chartDir string, overlay values.Document) (values.Document, error) {
	path := filepath.Join(chartDir, chart.ValuesFile)
	exists, err := fileutil.FileExists(p.fs, path)
	if err != nil {
		return nil, exitcodes.New(exitcodes.ExitIOError, err)
	}
	doc := values.Document{}
	if exists {
		if doc, err = values.Load(p.fs, path); err != nil {
			return nil, exitcodes.New(exitcodes.ExitValuesMergeError, err)
		}
	}
	if err := values.Merge(doc, overlay); err != nil {
		return nil, exitcodes.New(exitcodes.ExitValuesMergeError, err)
	}
	if err := values.Save(p.fs, path, doc); err != nil {
		return nil, exitcodes.New(exitcodes.ExitIOError, err)
	}
	return doc, nil
}

func parseImages(refs []string) ([]Image, error) {
	images := make([]Image, 0, len(refs))
	for _, ref := range refs {
		img, err := ParseImage(ref)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, nil
}
