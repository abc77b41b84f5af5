package pushctl

import (
	"errors"
	"fmt"
)

// Common errors returned by pushctl operations
var (
	// ErrUnknownCommand indicates the command token is not start, stop, reload or restart
	ErrUnknownCommand = errors.New("pushctl: unknown command")

	// ErrLaunch indicates a service executable could not be started
	ErrLaunch = errors.New("pushctl: launch failed")

	// ErrReportDecode indicates a status report could not be decoded
	ErrReportDecode = errors.New("pushctl: report decode")
)

// OpError represents an error from a pushctl operation
type OpError struct {
	// Op is the command being executed when the error occurred
	Op Command
	// Path is the executable or file involved in the operation
	Path string
	// Err is the underlying error
	Err error
}

// Error returns a formatted error message
func (e *OpError) Error() string {
	return fmt.Sprintf("pushctl %s %q: %v", e.Op.String(), e.Path, e.Err)
}

// Unwrap returns the underlying error for error chain inspection
func (e *OpError) Unwrap() error {
	return e.Err
}
