package pushctl

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/renameio/v2"
	"github.com/joho/godotenv"
)

// FileMode is the mode of written report files
const FileMode = 0o644

// Report keys
const (
	reportKeyCommand  = "COMMAND"
	reportKeyAPIExit  = "API_EXIT"
	reportKeyMainExit = "MAIN_EXIT"
	reportKeyStatus   = "STATUS"
	reportKeyStarted  = "STARTED"
	reportKeyFinished = "FINISHED"
)

// Report is the decoded content of a status report file
type Report struct {
	// Command is the canonical command name (start, stop, restart)
	Command string
	// APIExit is the exit code of the API service invocation
	APIExit ExitCode
	// MainExit is the exit code of the main service invocation
	MainExit ExitCode
	// Status is "OK" or "Failed"
	Status string
	// Started is when the dispatch began
	Started time.Time
	// Finished is when the dispatch ended
	Finished time.Time
}

// OK reports whether the recorded status is OK
func (r Report) OK() bool {
	return r.Status == statusOK
}

// encodeReport renders a Result as dotenv KEY=value lines
func encodeReport(r Result) ([]byte, error) {
	out, err := godotenv.Marshal(map[string]string{
		reportKeyCommand:  r.Command.String(),
		reportKeyAPIExit:  strconv.Itoa(int(r.API)),
		reportKeyMainExit: strconv.Itoa(int(r.Main)),
		reportKeyStatus:   r.Status(),
		reportKeyStarted:  r.Started.Format(time.RFC3339Nano),
		reportKeyFinished: r.Finished.Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, err
	}
	return []byte(out + "\n"), nil
}

// WriteReport atomically replaces the report file at path with r
func WriteReport(path string, r Result) error {
	data, err := encodeReport(r)
	if err != nil {
		return &OpError{Op: r.Command, Path: path, Err: err}
	}
	if err := renameio.WriteFile(path, data, FileMode); err != nil {
		return &OpError{Op: r.Command, Path: path, Err: err}
	}
	return nil
}

// ReadReport reads and decodes the report file at path.
// Unknown keys and comments are ignored.
func ReadReport(path string) (Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Report{}, &OpError{Op: CommandUnknown, Path: path, Err: err}
	}

	rep, err := decodeReport(data)
	if err != nil {
		op, _ := ParseCommand(rep.Command)
		return Report{}, &OpError{Op: op, Path: path, Err: err}
	}
	return rep, nil
}

func decodeReport(data []byte) (Report, error) {
	var rep Report

	values, err := godotenv.Unmarshal(string(data))
	if err != nil {
		return rep, fmt.Errorf("%w: %v", ErrReportDecode, err)
	}

	rep.Command = values[reportKeyCommand]
	rep.Status = values[reportKeyStatus]

	if rep.APIExit, err = parseExitCode(values, reportKeyAPIExit); err != nil {
		return rep, err
	}
	if rep.MainExit, err = parseExitCode(values, reportKeyMainExit); err != nil {
		return rep, err
	}
	if rep.Started, err = parseTime(values, reportKeyStarted); err != nil {
		return rep, err
	}
	if rep.Finished, err = parseTime(values, reportKeyFinished); err != nil {
		return rep, err
	}

	return rep, nil
}

// parseExitCode decodes an optional integer field
func parseExitCode(values map[string]string, key string) (ExitCode, error) {
	v, ok := values[key]
	if !ok {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrReportDecode, key, err)
	}
	return ExitCode(n), nil
}

// parseTime decodes an optional RFC 3339 timestamp field
func parseTime(values map[string]string, key string) (time.Time, error) {
	v, ok := values[key]
	if !ok {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %v", ErrReportDecode, key, err)
	}
	return t, nil
}
