package pushctl

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"os/exec"

	"github.com/axondata/go-pushctl/internal/unix"
)

// Exit codes reported for invocations that never produced a process status.
// They follow the POSIX shell convention.
const (
	// ExitLaunchFailed is reported for launch errors other than the two below
	ExitLaunchFailed ExitCode = 1
	// ExitNotExecutable is reported when the executable exists but cannot run,
	// either for lack of permission or an unrecognized format
	ExitNotExecutable ExitCode = 126
	// ExitNotFound is reported when the executable cannot be found
	ExitNotFound ExitCode = 127
)

// ExitCode is the exit status of a service executable invocation
type ExitCode int

// Success reports whether the invocation exited with status 0
func (c ExitCode) Success() bool {
	return c == 0
}

// Runner invokes a service control executable with a single argument and
// waits for it to finish.
//
// A non-nil error means the executable could not be launched; the returned
// ExitCode is then non-zero so callers can treat both cases alike.
type Runner interface {
	Run(ctx context.Context, name, arg string) (ExitCode, error)
}

// RunnerFunc adapts an ordinary function to the Runner interface
type RunnerFunc func(ctx context.Context, name, arg string) (ExitCode, error)

// Run calls f(ctx, name, arg)
func (f RunnerFunc) Run(ctx context.Context, name, arg string) (ExitCode, error) {
	return f(ctx, name, arg)
}

// ExecRunner runs service executables as child processes.
// Children share the configured output streams, the way a shell script's
// children inherit its stdout and stderr.
type ExecRunner struct {
	// Stdout receives the child's standard output (nil discards it)
	Stdout io.Writer

	// Stderr receives the child's standard error (nil discards it)
	Stderr io.Writer

	// Env holds extra environment entries appended to the current environment
	Env []string

	// Dir is the working directory of the child (empty uses the current one)
	Dir string
}

// NewExecRunner creates an ExecRunner attached to the process's own stdout and stderr
func NewExecRunner() *ExecRunner {
	return &ExecRunner{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Run executes name with arg and returns its exit code
func (r *ExecRunner) Run(ctx context.Context, name, arg string) (ExitCode, error) {
	cmd := exec.CommandContext(ctx, name, arg)
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	cmd.Dir = r.Dir
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code, ok := unix.SignalExitCode(exitErr.ProcessState); ok {
			return ExitCode(code), nil
		}
		return ExitCode(exitErr.ExitCode()), nil
	}

	op, _ := ParseCommand(arg)
	opErr := &OpError{Op: op, Path: name, Err: errors.Join(ErrLaunch, err)}

	switch {
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return ExitNotFound, opErr
	case errors.Is(err, fs.ErrPermission), unix.IsExecFormat(err):
		return ExitNotExecutable, opErr
	default:
		return ExitLaunchFailed, opErr
	}
}

// Ensure ExecRunner implements Runner
var _ Runner = (*ExecRunner)(nil)
