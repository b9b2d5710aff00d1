// Package toolrun abstracts external tool invocation so the pipeline
// can be exercised in tests without the real binaries installed.
package toolrun

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"time"
)

// DefaultTimeout bounds a single tool invocation. Rasterizing a large
// splash screen can take a while on slow machines, but a tool that
// hangs longer than this is stuck.
const DefaultTimeout = 2 * time.Minute

// Runner executes external tools. Implementations: ExecRunner (real
// processes), DryRunner (print only), fakes in tests.
type Runner interface {
	// LookPath reports whether the named tool is available, returning
	// its resolved path.
	LookPath(name string) (string, error)

	// Run executes the tool and returns its combined stdout+stderr.
	// A non-zero exit status is an error; the returned output is valid
	// either way.
	Run(name string, args ...string) ([]byte, error)
}

// ExecRunner runs tools as real child processes.
type ExecRunner struct {
	// Timeout per invocation; zero means DefaultTimeout.
	Timeout time.Duration
}

func (r ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

func (r ExecRunner) Run(name string, args ...string) ([]byte, error) {
	timeout := r.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		return out, fmt.Errorf("%s timed out after %s", name, timeout)
	}
	return out, err
}

// DryRunner prints each command to W instead of executing it. LookPath
// always succeeds so a dry run works on machines without the tools.
type DryRunner struct {
	W io.Writer
}

func (r DryRunner) LookPath(name string) (string, error) {
	return name, nil
}

func (r DryRunner) Run(name string, args ...string) ([]byte, error) {
	fmt.Fprintf(r.W, "would run: %s", name)
	for _, a := range args {
		fmt.Fprintf(r.W, " %s", a)
	}
	fmt.Fprintln(r.W)
	return nil, nil
}
