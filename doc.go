// Package pushctl provides start, stop and restart control for the two
// pushmanager service processes: the API service and the main service.
//
// The Dispatcher forwards one command to both services in a fixed order,
// API service first, and prints a status line whose outcome depends only on
// the main service's exit code:
//
//	d := pushctl.NewDispatcher()
//	res, err := d.Run(context.Background(), "start")
//	if errors.Is(err, pushctl.ErrUnknownCommand) {
//	    fmt.Println(pushctl.UsageLine(os.Args[0]))
//	    os.Exit(1)
//	}
//	// prints "Starting... [OK]"
//
// "reload" is accepted as an alias for "restart"; both pass "restart" to the
// service executables.
//
// # Runners
//
// Executables are invoked through the Runner interface. ExecRunner spawns
// real child processes; tests and embedders can supply a RunnerFunc instead
// to simulate exit codes without spawning anything.
//
// # Reports
//
// WriteReport stores a Result as a small dotenv-format file, replaced
// atomically, so other tooling can read the outcome of the last command
// with ReadReport.
package pushctl
