package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/axondata/go-pushctl"
)

// Environment variables consulted for flag defaults
const (
	envAPICmd  = "PUSHMANAGER_API_CMD"
	envMainCmd = "PUSHMANAGER_MAIN_CMD"
	envReport  = "PUSHMANAGER_REPORT"
)

// errUsage is returned after the usage line has been printed
var errUsage = errors.New("usage")

// env carries the process surroundings so tests can replace them
type env struct {
	stdout io.Writer
	stderr io.Writer
	getenv func(string) string
	// runner overrides the ExecRunner when set
	runner pushctl.Runner
}

func newEnv() env {
	return env{
		stdout: os.Stdout,
		stderr: os.Stderr,
		getenv: os.Getenv,
	}
}

type options struct {
	apiCmd  string
	mainCmd string
	report  string
	verbose bool

	// usageShown is set when the help path printed the usage line
	usageShown bool
}

// run executes the command line and returns the process exit code
func run(args []string, e env) int {
	program := "pushmanager"
	if len(args) > 0 {
		program = args[0]
		args = args[1:]
	}

	root, opts := newRootCmd(program, e)
	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintln(e.stderr, err)
		}
		return 1
	}
	if opts.usageShown {
		return 1
	}
	return 0
}

// newRootCmd builds the command. Every token the wrapper does not accept,
// including -h, --help and unknown flags, prints the usage line to stdout.
func newRootCmd(program string, e env) (*cobra.Command, *options) {
	opts := &options{}
	usage := func() {
		fmt.Fprintln(e.stdout, pushctl.UsageLine(program))
	}

	root := &cobra.Command{
		Use:           program + " {start|stop|reload|restart}",
		Short:         "Control the pushmanager API and main services",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			token := ""
			if len(args) > 0 {
				token = args[0]
			}
			// "--" in front of the command is a token of its own
			if cmd.ArgsLenAtDash() == 0 {
				token = "--"
			}

			command, err := pushctl.ParseCommand(token)
			if err != nil {
				usage()
				return errUsage
			}

			return dispatch(cmd, command, opts, e)
		},
	}
	root.SetOut(e.stdout)
	root.SetErr(e.stderr)
	root.SetFlagErrorFunc(func(*cobra.Command, error) error {
		usage()
		return errUsage
	})
	root.SetHelpFunc(func(*cobra.Command, []string) {
		usage()
		opts.usageShown = true
	})

	flags := root.Flags()
	flags.StringVar(&opts.apiCmd, "api-cmd", envOr(e, envAPICmd, pushctl.DefaultAPICommand),
		"API service control executable (env "+envAPICmd+")")
	flags.StringVar(&opts.mainCmd, "main-cmd", envOr(e, envMainCmd, pushctl.DefaultMainCommand),
		"main service control executable (env "+envMainCmd+")")
	flags.StringVar(&opts.report, "report", envOr(e, envReport, ""),
		"write a status report file after each command (env "+envReport+")")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log each invocation to stderr")

	return root, opts
}

func dispatch(cmd *cobra.Command, command pushctl.Command, opts *options, e env) error {
	log := newLogger(opts.verbose, e.stderr)

	runner := e.runner
	if runner == nil {
		runner = &pushctl.ExecRunner{Stdout: e.stdout, Stderr: e.stderr}
	}

	d := pushctl.NewDispatcher(
		pushctl.WithAPICommand(opts.apiCmd),
		pushctl.WithMainCommand(opts.mainCmd),
		pushctl.WithRunner(runner),
		pushctl.WithOutput(e.stdout),
		pushctl.WithLogger(log),
	)

	res, err := d.Dispatch(cmd.Context(), command)
	if err != nil {
		// The status line could not be printed; nothing else to report.
		log.WithError(err).Debug("dispatch output failed")
		return nil
	}

	if opts.report != "" {
		if err := pushctl.WriteReport(opts.report, res); err != nil {
			fmt.Fprintf(e.stderr, "warning: %v\n", err)
		}
	}
	return nil
}

func newLogger(verbose bool, w io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	if verbose {
		log.SetOutput(w)
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

func envOr(e env, key, fallback string) string {
	if e.getenv == nil {
		return fallback
	}
	if v := e.getenv(key); v != "" {
		return v
	}
	return fallback
}
