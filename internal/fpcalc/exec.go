package fpcalc

import (
	"bytes"
	"context"
	"os/exec"
)

// runOutputFn runs a command and captures its output.
type runOutputFn func(ctx context.Context, path string, args []string) (string, error)

// Executor runs short fpcalc commands with injectable dependencies.
type Executor struct {
	runOutput runOutputFn
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithRunOutput sets a custom runOutput function (for testing).
func WithRunOutput(fn runOutputFn) ExecutorOption {
	return func(e *Executor) { e.runOutput = fn }
}

// NewExecutor creates an Executor with the given options.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{runOutput: defaultRunOutput}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RunOutput executes fpcalc and returns stdout followed by stderr.
func (e *Executor) RunOutput(ctx context.Context, fpcalcPath string, args []string) (string, error) {
	return e.runOutput(ctx, fpcalcPath, args)
}

// defaultRunOutput returns the captured output even when the command fails.
func defaultRunOutput(ctx context.Context, fpcalcPath string, args []string) (string, error) {
	// #nosec G204 -- fpcalcPath comes from Resolve
	cmd := exec.CommandContext(ctx, fpcalcPath, args...)

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	return out.String(), err
}
