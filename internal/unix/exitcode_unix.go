//go:build unix

// Package unix provides platform-specific process exit helpers.
package unix

import (
	"errors"
	"os"
	"syscall"
)

// SignalExitCode reports the shell-style exit code (128 + signal number) for
// a process that was terminated by a signal. ok is false when the process
// exited normally or the state carries no wait status.
func SignalExitCode(state *os.ProcessState) (code int, ok bool) {
	if state == nil {
		return 0, false
	}
	ws, isWait := state.Sys().(syscall.WaitStatus)
	if !isWait || !ws.Signaled() {
		return 0, false
	}
	return 128 + int(ws.Signal()), true
}

// IsExecFormat reports whether err is an exec format error (ENOEXEC), as
// returned for files with no recognized binary format or #! line.
func IsExecFormat(err error) bool {
	return errors.Is(err, syscall.ENOEXEC)
}
