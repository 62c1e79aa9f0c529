// Package shell runs external programs for the recorder, either capturing
// their standard output or letting them write straight to the terminal.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"strings"

	"github.com/google/shlex"
	"pkt.systems/pslog"
)

// ErrCommandNotFound is returned when the program cannot be located or started.
var ErrCommandNotFound = errors.New("command not found")

// Result is the captured outcome of a command that did start.
type Result struct {
	// Lines is stdout split on "\n". Output ending in a newline yields a trailing empty line.
	Lines    []string
	Stderr   string
	ExitCode int
}

// Runner abstracts command execution so callers can be tested without a real shell.
type Runner interface {
	// Output runs cmdline and captures its standard output.
	Output(ctx context.Context, cmdline string) (Result, error)
	// Run runs cmdline with its output going to the terminal.
	Run(ctx context.Context, cmdline string) error
}

// Executor is the Runner backed by os/exec. The command line is split with
// POSIX shell quoting rules but no shell is involved.
type Executor struct {
	Dir    string
	Stdout io.Writer
	Stderr io.Writer
}

func NewExecutor() *Executor {
	return &Executor{Stdout: os.Stdout, Stderr: os.Stderr}
}

// Split tokenizes a command line the way a POSIX shell would, without expansion.
func Split(cmdline string) ([]string, error) {
	args, err := shlex.Split(cmdline)
	if err != nil {
		return nil, fmt.Errorf("split %q: %w", cmdline, err)
	}
	return args, nil
}

func (e *Executor) command(ctx context.Context, cmdline string) (*exec.Cmd, error) {
	args, err := Split(cmdline)
	if err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: empty command line", ErrCommandNotFound)
	}
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = e.Dir
	return cmd, nil
}

func (e *Executor) Output(ctx context.Context, cmdline string) (Result, error) {
	cmd, err := e.command(ctx, cmdline)
	if err != nil {
		return Result{}, err
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	res := Result{
		Lines:  strings.Split(stdout.String(), "\n"),
		Stderr: stderr.String(),
	}
	if err == nil {
		return res, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		pslog.Ctx(ctx).Debug("command exited non-zero", "cmd", cmdline, "exit_code", res.ExitCode)
		return res, nil
	}
	if notFound(err) {
		return Result{}, fmt.Errorf("%w: %s", ErrCommandNotFound, cmdline)
	}
	return Result{}, fmt.Errorf("run %q: %w", cmdline, err)
}

func (e *Executor) Run(ctx context.Context, cmdline string) error {
	cmd, err := e.command(ctx, cmdline)
	if err != nil {
		return err
	}
	cmd.Stdin = os.Stdin
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr
	if err := cmd.Run(); err != nil {
		if notFound(err) {
			return fmt.Errorf("%w: %s", ErrCommandNotFound, cmdline)
		}
		return fmt.Errorf("run %q: %w", cmdline, err)
	}
	return nil
}

func notFound(err error) bool {
	return errors.Is(err, exec.ErrNotFound) ||
		errors.Is(err, fs.ErrNotExist) ||
		errors.Is(err, fs.ErrPermission)
}
