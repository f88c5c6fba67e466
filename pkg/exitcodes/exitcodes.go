// Package exitcodes provides centralized exit code definitions for mpub.
// Exit codes are organized in ranges to categorize failures:
//
//	0:     Success
//	1-9:   Input/Configuration Errors (missing flags, invalid config, missing chart)
//	10-19: Chart Processing Errors (path derivation, rewriting, coverage, merge)
//	20-29: Runtime Errors (I/O, external tools, registries)
package exitcodes

import (
	"errors"
	"fmt"
)

// Exit code constants organized by category
const (
	ExitSuccess = 0

	// Input/Configuration Errors (1-9)
	ExitMissingRequiredFlag     = 1 // Required command flag not provided
	ExitInputConfigurationError = 2 // General configuration error
	ExitChartNotFound           = 3 // Chart directory or values file not found
	ExitInvalidImageName        = 4 // Marketplace image name not in the allowed list

	// Chart Processing Errors (10-19)
	ExitPathDerivationError   = 10 // Logical image name could not be derived from a template path
	ExitTemplateRewriteError  = 11 // Failed to rewrite chart templates
	ExitResolutionCoverage    = 12 // A used logical image name has no resolved digest
	ExitValuesMergeError      = 13 // Failed to merge into the values document
	ExitChartMetadataError    = 14 // Chart.yaml missing or invalid
	ExitImageExtractionError  = 15 // Rendered chart images could not be parsed
	ExitHelmCommandFailed     = 16 // Helm command execution failed
	ExitRegistryCommandFailed = 17 // Image copy or registry query failed fatally

	// Runtime Errors (20-29)
	ExitGeneralRuntimeError = 20
	ExitIOError             = 21

	// Internal Errors (30-39)
	ExitInternalError = 30
)

// ExitCodeError wraps an error with an exit code.
// Commands return it from RunE so main can exit with a stable code.
type ExitCodeError struct {
	Code int   // Exit code to return
	Err  error // Underlying error
}

func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("exit code %d: %v", e.Code, e.Err)
}

func (e *ExitCodeError) Unwrap() error {
	return e.Err
}

// New wraps err with code. A nil err yields nil.
func New(code int, err error) error {
	if err == nil {
		return nil
	}
	return &ExitCodeError{Code: code, Err: err}
}

// IsExitCodeError checks if an error is an ExitCodeError and returns its code.
// Returns false and 0 if the error is not an ExitCodeError.
func IsExitCodeError(err error) (int, bool) {
	var exitErr *ExitCodeError
	if errors.As(err, &exitErr) {
		return exitErr.Code, true
	}
	return 0, false
}

// CodeDescriptions maps exit codes to their human-readable descriptions
var CodeDescriptions = map[int]string{
	ExitSuccess:                 "Success",
	ExitMissingRequiredFlag:     "Required command flag not provided",
	ExitInputConfigurationError: "General configuration error",
	ExitChartNotFound:           "Chart directory or values file not found",
	ExitInvalidImageName:        "Marketplace image name not allowed",
	ExitPathDerivationError:     "Could not derive a logical image name from a template path",
	ExitTemplateRewriteError:    "Failed to rewrite chart templates",
	ExitResolutionCoverage:      "Used image has no resolved digest",
	ExitValuesMergeError:        "Failed to merge the values document",
	ExitChartMetadataError:      "Chart metadata missing or invalid",
	ExitImageExtractionError:    "Failed to parse images from the rendered chart",
	ExitHelmCommandFailed:       "Helm command execution failed",
	ExitRegistryCommandFailed:   "Registry operation failed",
	ExitGeneralRuntimeError:     "General runtime/system error",
	ExitIOError:                 "IO operation error",
	ExitInternalError:           "Internal error in command execution",
}
