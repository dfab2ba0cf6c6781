package scan

import (
	"context"
	"errors"
	"os/exec"
)

// Runner abstracts external command execution so the adapter and the
// wireless helpers can be unit-tested without touching real system tools.
type Runner interface {
	// CombinedOutput runs the command and returns its combined
	// stdout/stderr. The context bounds the process lifetime.
	CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error)

	// Run executes the command and discards its output.
	Run(ctx context.Context, name string, args ...string) error
}

// OSRunner executes commands on the host via os/exec.
type OSRunner struct{}

func (OSRunner) CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

func (OSRunner) Run(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

// isNotFound reports whether the error means the binary is not installed.
func isNotFound(err error) bool {
	var execErr *exec.Error
	return errors.As(err, &execErr) && errors.Is(execErr.Err, exec.ErrNotFound)
}
