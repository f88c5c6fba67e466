// Package version checks that the installed Helm CLI is recent enough for the
// publishing pipelines.
package version

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/weaveworks/marketplace-publisher/internal/command"
	"github.com/weaveworks/marketplace-publisher/pkg/exitcodes"
	log "github.com/weaveworks/marketplace-publisher/pkg/log"
)

const (
	// MinHelmVersion is the first Helm release with OCI push enabled by default.
	MinHelmVersion = "3.8.0"
)

// parseHelmVersionString extracts the core semantic version (e.g., "3.14.2")
// from the typical output of `helm version --short` (e.g., "v3.14.2+g0e1f115").
func parseHelmVersionString(versionStr string) string {
	parsed := strings.TrimSpace(versionStr)
	parsed = strings.TrimPrefix(parsed, "v")
	//nolint:nilaway // strings.Split always returns non-nil slice
	parsed = strings.Split(parsed, "+")[0]
	return parsed
}

// CheckHelmVersion runs `helm version --short` and fails unless the reported
// version satisfies MinHelmVersion.
func CheckHelmVersion(ctx context.Context, runner command.Runner) error {
	res, err := runner.Run(ctx, "helm", "version", "--short")
	if err != nil {
		return &exitcodes.ExitCodeError{
			Code: exitcodes.ExitHelmCommandFailed,
			Err:  fmt.Errorf("failed to get Helm version: %w", err),
		}
	}

	raw := parseHelmVersionString(res.Stdout)
	ok, err := isVersionGreaterOrEqual(raw, MinHelmVersion)
	if err != nil {
		return &exitcodes.ExitCodeError{
			Code: exitcodes.ExitHelmCommandFailed,
			Err:  fmt.Errorf("cannot parse Helm version %q: %w", raw, err),
		}
	}
	if !ok {
		return &exitcodes.ExitCodeError{
			Code: exitcodes.ExitHelmCommandFailed,
			Err:  fmt.Errorf("helm version %s is not supported. Minimum required version is %s", raw, MinHelmVersion),
		}
	}

	log.Debug("Helm version check passed", "version", raw)
	return nil
}

// isVersionGreaterOrEqual compares two semantic versions.
func isVersionGreaterOrEqual(v1, v2 string) (bool, error) {
	constraint, err := semver.NewConstraint(">= " + v2)
	if err != nil {
		return false, err
	}
	v, err := semver.NewVersion(v1)
	if err != nil {
		return false, err
	}
	return constraint.Check(v), nil
}
