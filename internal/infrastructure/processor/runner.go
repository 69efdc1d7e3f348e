package processor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"

	fe "media-stamp/pkg/errors"
)

// CommandResult is the captured outcome of one external process.
type CommandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// CommandRunner abstracts process execution so command construction can be
// tested without spawning ffmpeg or ffprobe.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (CommandResult, error)
}

// ExecRunner executes commands via os/exec.
type ExecRunner struct{}

// Run blocks until the process exits or ctx is cancelled. A non-nil error with
// ExitCode > 0 means the tool ran and failed; ExitCode -1 means it never
// produced an exit status.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) (CommandResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := CommandResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err != nil {
		result.ExitCode = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		}
		return result, err
	}

	return result, nil
}

// commandError maps a failed run to the error taxonomy. A tool that exited
// non-zero reports its stderr verbatim.
func commandError(ctx context.Context, res CommandResult, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fe.ErrInternal(ctxErr)
	}
	if res.ExitCode > 0 {
		if err == nil {
			err = fmt.Errorf("exit status %d", res.ExitCode)
		}
		return fe.ErrToolFailed(res.Stderr, err)
	}
	return fe.ErrInternal(err)
}
