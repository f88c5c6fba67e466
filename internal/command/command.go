// Package command runs the external tools the publisher drives (helm, az).
package command

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	log "github.com/weaveworks/marketplace-publisher/pkg/log"
)

// Result holds the captured output of a finished command.
type Result struct {
	Stdout string
	Stderr string
}

// Runner executes a command and captures its output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (*Result, error)
}

// ExecRunner runs commands as child processes.
type ExecRunner struct {
	// Dir is the working directory, the current one when empty.
	Dir string
}

// Run executes name with args. A non-zero exit is returned as an error carrying stderr.
func (r ExecRunner) Run(ctx context.Context, name string, args ...string) (*Result, error) {
	log.Infof("Executing: %s %s", name, strings.Join(args, " "))

	// #nosec G204 -- the publisher passes variable arguments to helm and az
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := &Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err != nil {
		log.Debug("Command failed", "command", name, "error", err, "stderr", result.Stderr)
		return result, fmt.Errorf("%s command failed: %w\n%s", name, err, result.Stderr)
	}
	return result, nil
}
