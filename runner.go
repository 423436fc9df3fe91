package initramfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Runner executes one external command and waits for it to exit.
// A non-zero exit status is reported as *[ExitError].
type Runner interface {
	Run(ctx context.Context, argv []string) error
}

// ExecRunner runs commands as child processes attached to the caller's stdio.
type ExecRunner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecRunner creates an ExecRunner on the process stdio.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

// Run starts argv and waits for it.
// On context cancellation the whole process group of the child is killed.
func (r *ExecRunner) Run(ctx context.Context, argv []string) error {
	if len(argv) == 0 {
		return errors.New("empty command")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	isolate(cmd)

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("command aborted: %w", ctx.Err())
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ExitError{Argv: argv, Code: exitErr.ExitCode()}
		}
		return fmt.Errorf("failed to start command: %w", err)
	}
	return nil
}

// DryRunner prints each command line instead of running it.
type DryRunner struct {
	Out io.Writer
}

// Run writes the command line and reports success.
func (r DryRunner) Run(_ context.Context, argv []string) error {
	_, err := fmt.Fprintln(r.Out, strings.Join(argv, " "))
	return err
}

var (
	_ Runner = (*ExecRunner)(nil)
	_ Runner = DryRunner{}
)
