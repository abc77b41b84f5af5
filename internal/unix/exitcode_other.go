//go:build !unix

// Package unix provides platform-specific process exit helpers.
package unix

import "os"

// SignalExitCode always reports false on platforms without POSIX signals.
func SignalExitCode(_ *os.ProcessState) (int, bool) {
	return 0, false
}

// IsExecFormat always reports false on platforms without ENOEXEC.
func IsExecFormat(_ error) bool {
	return false
}
