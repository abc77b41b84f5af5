// Package main provides the pushmanager control command.
//
//	pushmanager {start|stop|reload|restart}
package main

import (
	"os"
)

func main() {
	os.Exit(run(os.Args, newEnv()))
}
