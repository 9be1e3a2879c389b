package services

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// CommandOutput captures what an external tool produced.
type CommandOutput struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// CommandRunner abstracts external tool execution for testability.
//
// Run returns an error only when the process could not be started or waited
// on. A process that ran and exited non-zero reports its status through
// CommandOutput.ExitCode with a nil error.
type CommandRunner interface {
	Run(ctx context.Context, binary string, args []string) (CommandOutput, error)
}

// RunnerFunc adapts a function to CommandRunner.
type RunnerFunc func(ctx context.Context, binary string, args []string) (CommandOutput, error)

// Run implements CommandRunner.
func (f RunnerFunc) Run(ctx context.Context, binary string, args []string) (CommandOutput, error) {
	return f(ctx, binary, args)
}

// ExecRunner runs commands with os/exec, buffering stdout and stderr.
type ExecRunner struct{}

// Run implements CommandRunner.
func (ExecRunner) Run(ctx context.Context, binary string, args []string) (CommandOutput, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return CommandOutput{ExitCode: -1}, err
	}
	err := cmd.Wait()
	out := CommandOutput{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			out.ExitCode = exitErr.ExitCode()
			return out, nil
		}
		out.ExitCode = -1
		return out, err
	}
	return out, nil
}
