// Package helm drives the helm CLI for the chart publishing steps that have no
// in-process equivalent: pulling from a chart repository, rendering, packaging
// and pushing to an OCI registry.
package helm

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"github.com/weaveworks/marketplace-publisher/internal/command"
	log "github.com/weaveworks/marketplace-publisher/pkg/log"
)

// ErrPackageOutput is returned when helm package does not report the archive it wrote.
var ErrPackageOutput = errors.New("cannot find chart archive in helm package output")

var packagedPattern = regexp.MustCompile(`saved it to: (\S+)`)

// PullOptions represents options for helm pull command
type PullOptions struct {
	// Chart is the chart reference, e.g. "weave-gitops-enterprise-charts/mccp".
	Chart    string
	Version  string
	UntarDir string
}

// TemplateOptions represents options for helm template command
type TemplateOptions struct {
	ReleaseName string
	ChartPath   string
	ValuesFiles []string
	SetValues   []string
	Namespace   string
}

// CLI runs helm through a command.Runner.
type CLI struct {
	runner command.Runner
}

// NewCLI returns a CLI. A nil runner executes helm as a child process.
func NewCLI(runner command.Runner) *CLI {
	if runner == nil {
		runner = command.ExecRunner{}
	}
	return &CLI{runner: runner}
}

// Pull downloads and unpacks a chart into options.UntarDir.
func (c *CLI) Pull(ctx context.Context, options *PullOptions) error {
	helmArgs := []string{"pull", "--untar", "--untardir", options.UntarDir, options.Chart}
	if options.Version != "" {
		helmArgs = append(helmArgs, "--version", options.Version)
	}
	_, err := c.execute(ctx, helmArgs)
	return errors.Wrapf(err, "failed to pull chart %s", options.Chart)
}

// Template renders a chart and returns the manifests.
func (c *CLI) Template(ctx context.Context, options *TemplateOptions) (string, error) {
	helmArgs := []string{"template"}
	if options.ReleaseName != "" {
		helmArgs = append(helmArgs, options.ReleaseName)
	}
	helmArgs = append(helmArgs, options.ChartPath)

	for _, valueFile := range options.ValuesFiles {
		helmArgs = append(helmArgs, "--values", valueFile)
	}
	for _, setValue := range options.SetValues {
		helmArgs = append(helmArgs, "--set", setValue)
	}
	if options.Namespace != "" {
		helmArgs = append(helmArgs, "--namespace", options.Namespace)
	}

	res, err := c.execute(ctx, helmArgs)
	if err != nil {
		return "", errors.Wrapf(err, "failed to render chart %s", options.ChartPath)
	}
	return res.Stdout, nil
}

// Package archives the chart at chartPath into destination and returns the archive path.
func (c *CLI) Package(ctx context.Context, chartPath, destination string) (string, error) {
	res, err := c.execute(ctx, []string{"package", chartPath, "--destination", destination})
	if err != nil {
		return "", errors.Wrapf(err, "failed to package chart %s", chartPath)
	}
	m := packagedPattern.FindStringSubmatch(res.Stdout)
	if m == nil {
		return "", errors.Wrap(ErrPackageOutput, strings.TrimSpace(res.Stdout))
	}
	return filepath.Clean(m[1]), nil
}

// Push uploads a chart archive to an OCI registry, e.g. "oci://registry/namespace".
func (c *CLI) Push(ctx context.Context, archive, remote string) error {
	_, err := c.execute(ctx, []string{"push", archive, remote})
	return errors.Wrapf(err, "failed to push %s to %s", archive, remote)
}

func (c *CLI) execute(ctx context.Context, args []string) (*command.Result, error) {
	res, err := c.runner.Run(ctx, "helm", args...)
	if err != nil {
		log.Error("Helm command failed", "args", strings.Join(args, " "), "error", err)
		return res, err
	}
	return res, nil
}
