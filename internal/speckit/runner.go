// Package speckit wraps the external spec-kit toolchain: the specify CLI,
// git, and the helper scripts specify installs under .specify/.
//
// Nothing here decides anything about workflow phases. Each type is a
// thin boundary adapter that turns a process call or a file test into a
// typed value the phase inspector and dispatcher consume.
package speckit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Runner executes an external command in a directory and returns its
// standard output.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) (string, error)
}

// ExecRunner runs commands with os/exec, bounding each call by Timeout.
type ExecRunner struct {
	Timeout time.Duration
}

// NewExecRunner creates an ExecRunner. A non-positive timeout disables
// the per-call bound; the caller's context still applies.
func NewExecRunner(timeout time.Duration) *ExecRunner {
	return &ExecRunner{Timeout: timeout}
}

// Run executes name with args in dir. On failure the error carries the
// command line, the exit cause, and trimmed stderr.
func (r *ExecRunner) Run(ctx context.Context, dir, name string, args ...string) (string, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("timed out after %s: %w", r.Timeout, ctx.Err())
		}
		return stdout.String(), &CommandError{
			Command: commandLine(name, args),
			Stderr:  strings.TrimSpace(stderr.String()),
			Err:     err,
		}
	}
	return stdout.String(), nil
}

// CommandError describes a failed external command.
type CommandError struct {
	Command string
	Stderr  string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s: %v: %s", e.Command, e.Err, e.Stderr)
	}
	return fmt.Sprintf("%s: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

func commandLine(name string, args []string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}
