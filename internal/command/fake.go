package command

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// FakeResponse is the canned outcome of one command line.
type FakeResponse struct {
	Stdout string
	Stderr string
	Err    error
}

// Fake is a Runner returning canned responses keyed by the full command line
// ("helm version --short"). Unknown command lines fail.
type Fake struct {
	mu        sync.Mutex
	responses map[string]FakeResponse
	calls     []string
}

// NewFake returns an empty Fake.
func NewFake() *Fake {
	return &Fake{responses: map[string]FakeResponse{}}
}

// On registers the response for a command line.
func (f *Fake) On(commandLine string, resp FakeResponse) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[commandLine] = resp
	return f
}

// Calls returns the command lines run so far, in order.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// Run implements Runner.
func (f *Fake) Run(ctx context.Context, name string, args ...string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	line := strings.Join(append([]string{name}, args...), " ")

	f.mu.Lock()
	f.calls = append(f.calls, line)
	resp, ok := f.responses[line]
	f.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("unexpected command: %s", line)
	}
	result := &Result{Stdout: resp.Stdout, Stderr: resp.Stderr}
	if resp.Err != nil {
		return result, resp.Err
	}
	return result, nil
}
