package pushctl

import (
	"fmt"
	"strings"
)

// Status suffixes printed after the command prefix
const (
	suffixOK     = "... [OK]"
	suffixFailed = "... [Failed]"
)

// Command represents a control command forwarded to both services
type Command int

const (
	// CommandUnknown represents an unrecognized command token
	CommandUnknown Command = iota
	// CommandStart starts both services
	CommandStart
	// CommandStop stops both services
	CommandStop
	// CommandRestart restarts both services (also selected by "reload")
	CommandRestart
)

// Command string constants, as passed to the service executables
const (
	cmdUnknownStr = "unknown"
	cmdStartStr   = "start"
	cmdStopStr    = "stop"
	cmdRestartStr = "restart"
	cmdReloadStr  = "reload"
)

// ParseCommand maps a command-line token to a Command.
// "reload" is an alias for "restart". Any other token, including the empty
// string, yields CommandUnknown and an error wrapping ErrUnknownCommand.
func ParseCommand(token string) (Command, error) {
	switch token {
	case cmdStartStr:
		return CommandStart, nil
	case cmdStopStr:
		return CommandStop, nil
	case cmdRestartStr, cmdReloadStr:
		return CommandRestart, nil
	default:
		return CommandUnknown, fmt.Errorf("%w: %q", ErrUnknownCommand, token)
	}
}

// String returns the canonical argument passed to the service executables
func (c Command) String() string {
	switch c {
	case CommandStart:
		return cmdStartStr
	case CommandStop:
		return cmdStopStr
	case CommandRestart:
		return cmdRestartStr
	case CommandUnknown:
		fallthrough
	default:
		return cmdUnknownStr
	}
}

// Prefix returns the text printed before the services are invoked
func (c Command) Prefix() string {
	switch c {
	case CommandStart:
		return "Starting"
	case CommandStop:
		return "Stopping"
	case CommandRestart:
		return "Reloading"
	default:
		return ""
	}
}

// Commands returns the accepted command tokens in usage order
func Commands() []string {
	return []string{cmdStartStr, cmdStopStr, cmdReloadStr, cmdRestartStr}
}

// UsageLine renders the usage message for the given program name
func UsageLine(program string) string {
	return fmt.Sprintf("Usage: %s {%s}", program, strings.Join(Commands(), "|"))
}
