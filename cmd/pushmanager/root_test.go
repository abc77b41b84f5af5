package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axondata/go-pushctl"
)

type invocation struct {
	name string
	arg  string
}

type testEnv struct {
	env
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	calls  *[]invocation
}

func newTestEnv(codes map[string]pushctl.ExitCode, vars map[string]string) testEnv {
	var stdout, stderr bytes.Buffer
	calls := &[]invocation{}

	runner := pushctl.RunnerFunc(func(_ context.Context, name, arg string) (pushctl.ExitCode, error) {
		*calls = append(*calls, invocation{name: name, arg: arg})
		return codes[name], nil
	})

	return testEnv{
		env: env{
			stdout: &stdout,
			stderr: &stderr,
			getenv: func(key string) string { return vars[key] },
			runner: runner,
		},
		stdout: &stdout,
		stderr: &stderr,
		calls:  calls,
	}
}

func TestRunScenarios(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		codes  map[string]pushctl.ExitCode
		stdout string
		exit   int
		calls  []invocation
	}{
		{
			name:   "start ok",
			args:   []string{"dispatcher", "start"},
			stdout: "Starting... [OK]\n",
			calls: []invocation{
				{pushctl.DefaultAPICommand, "start"},
				{pushctl.DefaultMainCommand, "start"},
			},
		},
		{
			name:   "stop main fails",
			args:   []string{"dispatcher", "stop"},
			codes:  map[string]pushctl.ExitCode{pushctl.DefaultMainCommand: 1},
			stdout: "Stopping... [Failed]\n",
			calls: []invocation{
				{pushctl.DefaultAPICommand, "stop"},
				{pushctl.DefaultMainCommand, "stop"},
			},
		},
		{
			name:   "reload api fails",
			args:   []string{"dispatcher", "reload"},
			codes:  map[string]pushctl.ExitCode{pushctl.DefaultAPICommand: 1},
			stdout: "Reloading... [OK]\n",
			calls: []invocation{
				{pushctl.DefaultAPICommand, "restart"},
				{pushctl.DefaultMainCommand, "restart"},
			},
		},
		{
			name:   "extra arguments ignored",
			args:   []string{"dispatcher", "restart", "now"},
			stdout: "Reloading... [OK]\n",
			calls: []invocation{
				{pushctl.DefaultAPICommand, "restart"},
				{pushctl.DefaultMainCommand, "restart"},
			},
		},
		{
			name:   "unknown command",
			args:   []string{"dispatcher", "foo"},
			stdout: "Usage: dispatcher {start|stop|reload|restart}\n",
			exit:   1,
		},
		{
			name:   "short help flag",
			args:   []string{"dispatcher", "-h"},
			stdout: "Usage: dispatcher {start|stop|reload|restart}\n",
			exit:   1,
		},
		{
			name:   "long help flag",
			args:   []string{"dispatcher", "--help"},
			stdout: "Usage: dispatcher {start|stop|reload|restart}\n",
			exit:   1,
		},
		{
			name:   "help after command",
			args:   []string{"dispatcher", "start", "--help"},
			stdout: "Usage: dispatcher {start|stop|reload|restart}\n",
			exit:   1,
		},
		{
			name:   "version flag",
			args:   []string{"dispatcher", "--version"},
			stdout: "Usage: dispatcher {start|stop|reload|restart}\n",
			exit:   1,
		},
		{
			name:   "unknown shorthand flag",
			args:   []string{"dispatcher", "-x"},
			stdout: "Usage: dispatcher {start|stop|reload|restart}\n",
			exit:   1,
		},
		{
			name:   "unknown long flag",
			args:   []string{"dispatcher", "--foo"},
			stdout: "Usage: dispatcher {start|stop|reload|restart}\n",
			exit:   1,
		},
		{
			name:   "flag missing value",
			args:   []string{"dispatcher", "--api-cmd"},
			stdout: "Usage: dispatcher {start|stop|reload|restart}\n",
			exit:   1,
		},
		{
			name:   "double dash",
			args:   []string{"dispatcher", "--", "start"},
			stdout: "Usage: dispatcher {start|stop|reload|restart}\n",
			exit:   1,
		},
		{
			name:   "missing command",
			args:   []string{"/etc/init.d/pushmanager"},
			stdout: "Usage: /etc/init.d/pushmanager {start|stop|reload|restart}\n",
			exit:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			te := newTestEnv(tt.codes, nil)

			exit := run(tt.args, te.env)

			assert.Equal(t, tt.exit, exit)
			assert.Equal(t, tt.stdout, te.stdout.String())
			assert.Empty(t, te.stderr.String())
			if tt.calls == nil {
				assert.Empty(t, *te.calls)
			} else {
				assert.Equal(t, tt.calls, *te.calls)
			}
		})
	}
}

func TestRunCommandFlagsAndEnv(t *testing.T) {
	t.Run("flags", func(t *testing.T) {
		te := newTestEnv(nil, nil)

		exit := run([]string{"pm", "--api-cmd", "/opt/api", "--main-cmd", "/opt/main", "start"}, te.env)
		require.Equal(t, 0, exit)

		assert.Equal(t, []invocation{{"/opt/api", "start"}, {"/opt/main", "start"}}, *te.calls)
	})

	t.Run("environment", func(t *testing.T) {
		te := newTestEnv(nil, map[string]string{
			envAPICmd:  "/srv/api",
			envMainCmd: "/srv/main",
		})

		exit := run([]string{"pm", "stop"}, te.env)
		require.Equal(t, 0, exit)

		assert.Equal(t, []invocation{{"/srv/api", "stop"}, {"/srv/main", "stop"}}, *te.calls)
	})

	t.Run("flag beats environment", func(t *testing.T) {
		te := newTestEnv(nil, map[string]string{envMainCmd: "/srv/main"})

		exit := run([]string{"pm", "--main-cmd=/opt/main", "stop"}, te.env)
		require.Equal(t, 0, exit)

		assert.Equal(t, "/opt/main", (*te.calls)[1].name)
	})
}

func TestRunBadFlag(t *testing.T) {
	te := newTestEnv(nil, nil)

	exit := run([]string{"pm", "--bogus", "start"}, te.env)

	assert.Equal(t, 1, exit)
	assert.Equal(t, "Usage: pm {start|stop|reload|restart}\n", te.stdout.String())
	assert.Empty(t, te.stderr.String())
	assert.Empty(t, *te.calls)
}

func TestRunReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pushmanager.status")
	te := newTestEnv(map[string]pushctl.ExitCode{pushctl.DefaultMainCommand: 2}, map[string]string{envReport: path})

	exit := run([]string{"pm", "restart"}, te.env)
	require.Equal(t, 0, exit)
	assert.Equal(t, "Reloading... [Failed]\n", te.stdout.String())

	rep, err := pushctl.ReadReport(path)
	require.NoError(t, err)
	assert.Equal(t, "restart", rep.Command)
	assert.Equal(t, pushctl.ExitCode(2), rep.MainExit)
	assert.False(t, rep.OK())
}

func TestRunReportFailureKeepsExitCode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "dir", "status")
	te := newTestEnv(nil, nil)

	exit := run([]string{"pm", "--report", path, "start"}, te.env)

	assert.Equal(t, 0, exit)
	assert.Equal(t, "Starting... [OK]\n", te.stdout.String())
	assert.Contains(t, te.stderr.String(), "warning:")
}

func TestRunVerbose(t *testing.T) {
	te := newTestEnv(nil, nil)

	exit := run([]string{"pm", "-v", "start"}, te.env)
	require.Equal(t, 0, exit)

	assert.Equal(t, "Starting... [OK]\n", te.stdout.String())
	assert.Contains(t, te.stderr.String(), "service executable finished")
	assert.Contains(t, te.stderr.String(), "service=api")
}
