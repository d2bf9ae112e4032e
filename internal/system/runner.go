// Package system wraps the host collaborators of a tunnel setup: external
// commands, privilege elevation, sysctl, systemd and netlink.
package system

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"
)

// Command is a program and its argument list. No shell is involved.
type Command struct {
	Name string
	Args []string
	// Stdin is fed to the process when non-empty.
	Stdin string
	// Interactive commands are attached to the runner's terminal streams
	// instead of having their output captured.
	Interactive bool
	// ReadOnly commands do not change the host and run even in dry-run mode.
	ReadOnly bool
}

// String renders the command for logs. It is never passed to a shell.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Result is the outcome of a finished command.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// ExitError reports a command that ran and exited non-zero, or could not
// be started at all (ExitCode -1).
type ExitError struct {
	Cmd      string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s: exit status %d", e.Cmd, e.ExitCode)
	if e.ExitCode < 0 && e.Err != nil {
		msg = fmt.Sprintf("%s: %v", e.Cmd, e.Err)
	}
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += " (" + s + ")"
	}
	return msg
}

func (e *ExitError) Unwrap() error { return e.Err }

// Runner executes commands. A non-nil error is always an *ExitError.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Log    logrus.FieldLogger
}

// NewExecRunner returns a runner attached to the process's terminal.
func NewExecRunner(log logrus.FieldLogger) *ExecRunner {
	return &ExecRunner{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Log:    log,
	}
}

func (r *ExecRunner) Run(ctx context.Context, cmd Command) (Result, error) {
	r.Log.WithField("cmd", cmd.String()).Debug("Running command")

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	var stdout, stderr bytes.Buffer
	switch {
	case cmd.Interactive:
		c.Stdin = r.Stdin
		c.Stdout = r.Stdout
		c.Stderr = r.Stderr
	default:
		c.Stdout = &stdout
		c.Stderr = &stderr
	}
	if cmd.Stdin != "" {
		c.Stdin = strings.NewReader(cmd.Stdin)
	}

	err := c.Run()
	res := Result{
		ExitCode: c.ProcessState.ExitCode(),
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}
	if err != nil {
		return res, &ExitError{Cmd: cmd.String(), ExitCode: res.ExitCode, Stderr: res.Stderr, Err: err}
	}
	return res, nil
}

// DryRunRunner logs mutating commands instead of running them. Read-only
// commands are passed to Next.
type DryRunRunner struct {
	Next Runner
	Out  io.Writer
	Log  logrus.FieldLogger
}

func (r *DryRunRunner) Run(ctx context.Context, cmd Command) (Result, error) {
	if cmd.ReadOnly && r.Next != nil {
		return r.Next.Run(ctx, cmd)
	}
	r.Log.WithField("cmd", cmd.String()).Info("Dry run, skipping command")
	if r.Out != nil {
		fmt.Fprintf(r.Out, "+ %s\n", cmd)
	}
	return Result{}, nil
}
