package pushctl

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// Service executable defaults
const (
	// DefaultAPICommand is the control executable of the API service
	DefaultAPICommand = "pushmanager_api"

	// DefaultMainCommand is the control executable of the main service
	DefaultMainCommand = "pushmanager_main"
)

// Result describes one dispatched command
type Result struct {
	// Command is the command that was dispatched
	Command Command
	// API is the exit code of the API service invocation.
	// It is recorded for reporting only and never decides the outcome.
	API ExitCode
	// Main is the exit code of the main service invocation
	Main ExitCode
	// Started is when the API invocation began
	Started time.Time
	// Finished is when the main invocation returned
	Finished time.Time
}

// OK reports whether the main service invocation succeeded
func (r Result) OK() bool {
	return r.Main.Success()
}

// Status returns "OK" or "Failed"
func (r Result) Status() string {
	if r.OK() {
		return statusOK
	}
	return statusFailed
}

const (
	statusOK     = "OK"
	statusFailed = "Failed"
)

// Dispatcher forwards a control command to the API service and then to the
// main service, and prints a status line for the outcome.
type Dispatcher struct {
	// APICommand is the control executable of the API service
	APICommand string
	// MainCommand is the control executable of the main service
	MainCommand string
	// Runner invokes the executables
	Runner Runner
	// Out receives the status line
	Out io.Writer
	// Log receives debug records for each invocation
	Log logrus.FieldLogger

	now func() time.Time
}

// Option configures a Dispatcher
type Option func(*Dispatcher)

// WithAPICommand sets the API service control executable
func WithAPICommand(name string) Option {
	return func(d *Dispatcher) {
		d.APICommand = name
	}
}

// WithMainCommand sets the main service control executable
func WithMainCommand(name string) Option {
	return func(d *Dispatcher) {
		d.MainCommand = name
	}
}

// WithRunner sets the Runner used to invoke the executables
func WithRunner(r Runner) Option {
	return func(d *Dispatcher) {
		d.Runner = r
	}
}

// WithOutput sets the writer receiving the status line
func WithOutput(w io.Writer) Option {
	return func(d *Dispatcher) {
		d.Out = w
	}
}

// WithLogger sets the logger
func WithLogger(l logrus.FieldLogger) Option {
	return func(d *Dispatcher) {
		d.Log = l
	}
}

// NewDispatcher creates a Dispatcher with default settings
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		APICommand:  DefaultAPICommand,
		MainCommand: DefaultMainCommand,
		Out:         os.Stdout,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(d)
	}

	if d.Runner == nil {
		d.Runner = NewExecRunner()
	}
	if d.Out == nil {
		d.Out = io.Discard
	}
	if d.Log == nil {
		d.Log = discardLogger()
	}

	return d
}

// Run parses token and dispatches the resulting command.
// Unknown tokens return an error wrapping ErrUnknownCommand; nothing is
// printed and no executable is invoked.
func (d *Dispatcher) Run(ctx context.Context, token string) (Result, error) {
	cmd, err := ParseCommand(token)
	if err != nil {
		return Result{}, err
	}
	return d.Dispatch(ctx, cmd)
}

// Dispatch prints the command prefix, invokes the API service and then the
// main service with the command's canonical argument, and prints the status
// suffix chosen by the main service's exit code.
//
// The returned error is non-nil only for CommandUnknown or when writing to
// the output fails. A failed write never skips an invocation. Service
// failures are reported through the Result.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd Command) (Result, error) {
	if cmd == CommandUnknown {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.String())
	}

	res := Result{Command: cmd, Started: d.now()}

	var writeErr error
	if _, err := io.WriteString(d.Out, cmd.Prefix()); err != nil {
		writeErr = fmt.Errorf("writing status prefix: %w", err)
	}

	res.API = d.invoke(ctx, cmd, "api", d.APICommand)
	res.Main = d.invoke(ctx, cmd, "main", d.MainCommand)
	res.Finished = d.now()

	suffix := suffixFailed
	if res.OK() {
		suffix = suffixOK
	}
	if _, err := fmt.Fprintln(d.Out, suffix); err != nil && writeErr == nil {
		writeErr = fmt.Errorf("writing status suffix: %w", err)
	}

	d.Log.WithFields(logrus.Fields{
		"command":   cmd.String(),
		"api_exit":  int(res.API),
		"main_exit": int(res.Main),
		"status":    res.Status(),
	}).Debug("dispatch finished")

	return res, writeErr
}

// invoke runs one service executable and logs the outcome
func (d *Dispatcher) invoke(ctx context.Context, cmd Command, service, name string) ExitCode {
	start := d.now()
	code, err := d.Runner.Run(ctx, name, cmd.String())
	if err != nil && code.Success() {
		code = ExitLaunchFailed
	}

	entry := d.Log.WithFields(logrus.Fields{
		"command":   cmd.String(),
		"service":   service,
		"exec":      name,
		"arg":       cmd.String(),
		"exit_code": int(code),
		"duration":  d.now().Sub(start),
	})
	if err != nil {
		entry.WithError(err).Debug("service executable could not be launched")
		return code
	}
	entry.Debug("service executable finished")
	return code
}

func discardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
