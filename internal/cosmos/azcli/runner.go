package azcli

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

const DefaultBinary = "az"

// Runner executes az commands.
type Runner interface {
	Run(ctx context.Context, args []string) (*RunResult, error)
}

// RunResult captures az command output.
type RunResult struct {
	Stdout []byte
	Stderr string
}

// ExecRunner runs az via os/exec.
type ExecRunner struct {
	binary      string
	execCommand func(ctx context.Context, name string, args ...string) *exec.Cmd
	lookPath    func(file string) (string, error)
}

// NewRunner returns a runner for the given az binary (DefaultBinary when empty).
func NewRunner(binary string) *ExecRunner {
	if binary == "" {
		binary = DefaultBinary
	}
	return &ExecRunner{
		binary:      binary,
		execCommand: exec.CommandContext,
		lookPath:    exec.LookPath,
	}
}

// Preflight verifies the az binary can be found before any remote call is made.
func (r *ExecRunner) Preflight() error {
	if _, err := r.lookPath(r.binary); err != nil {
		return ErrAzNotFound{Binary: r.binary}
	}
	return nil
}

// Run executes az with args. A non-zero exit is returned as *ErrCommandFailed.
func (r *ExecRunner) Run(ctx context.Context, args []string) (*RunResult, error) {
	cmd := r.execCommand(ctx, r.binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		result := &RunResult{
			Stdout: stdout.Bytes(),
			Stderr: stderr.String(),
		}
		if errors.Is(err, exec.ErrNotFound) {
			return result, ErrAzNotFound{Binary: r.binary}
		}
		var execErr *exec.Error
		if errors.As(err, &execErr) && errors.Is(execErr.Err, exec.ErrNotFound) {
			return result, ErrAzNotFound{Binary: r.binary}
		}
		return result, &ErrCommandFailed{Args: args, Stderr: result.Stderr, Err: err}
	}

	return &RunResult{
		Stdout: stdout.Bytes(),
		Stderr: stderr.String(),
	}, nil
}
