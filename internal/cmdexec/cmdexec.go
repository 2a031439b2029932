// Package cmdexec runs external commands and captures their output.
//
// Every drive operation in ejectd delegates to OS utilities, so this package
// is the single choke point for spawning them. Callers provide a context and
// receive captured stdout or an exit-status error; stderr is discarded the
// way the original tooling invoked these utilities.
package cmdexec

import (
	"context"
	"errors"
	"os/exec"
	"time"
)

// Executor abstracts command execution so callers can be tested with fakes.
type Executor interface {
	// Output runs the command and returns its captured standard output.
	Output(ctx context.Context, binary string, args ...string) ([]byte, error)
	// Run runs the command for its side effect; a nonzero exit status is
	// returned as an error.
	Run(ctx context.Context, binary string, args ...string) error
}

type systemExecutor struct {
	timeout time.Duration
}

// New returns an Executor backed by os/exec. A positive timeout bounds every
// invocation; zero means the caller's context alone governs cancellation.
func New(timeout time.Duration) Executor {
	return systemExecutor{timeout: timeout}
}

func (e systemExecutor) Output(ctx context.Context, binary string, args ...string) ([]byte, error) {
	ctx, cancel := e.bound(ctx)
	defer cancel()
	return exec.CommandContext(ctx, binary, args...).Output() //nolint:gosec
}

func (e systemExecutor) Run(ctx context.Context, binary string, args ...string) error {
	ctx, cancel := e.bound(ctx)
	defer cancel()
	return exec.CommandContext(ctx, binary, args...).Run() //nolint:gosec
}

func (e systemExecutor) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if e.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, e.timeout)
}

// ExitStatus extracts the process exit code from a Run or Output error.
// It returns -1 when the command never ran (spawn failure, timeout).
func ExitStatus(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
