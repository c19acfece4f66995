package dockercli

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dbdock/dbdock/pkg/cmdexec"
)

// fakeExec serves scripted results keyed by the joined argv and records every
// call for later assertions.
type fakeExec struct {
	mu      sync.Mutex
	calls   [][]string
	results map[string]cmdexec.Result
	errs    map[string]error
}

func newFakeExec() *fakeExec {
	return &fakeExec{
		results: make(map[string]cmdexec.Result),
		errs:    make(map[string]error),
	}
}

func (f *fakeExec) Run(_ context.Context, args ...string) (cmdexec.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, args)
	key := strings.Join(args, " ")
	if err, ok := f.errs[key]; ok {
		return cmdexec.Result{}, err
	}
	return f.results[key], nil
}

func (f *fakeExec) callKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(f.calls))
	for _, call := range f.calls {
		keys = append(keys, strings.Join(call, " "))
	}
	return keys
}

func TestIsRunning(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	exec := newFakeExec()
	exec.results["docker ps --format {{.Names}}"] = cmdexec.Result{
		OutLines: []string{"other_container", "dbdock_postgres"},
	}
	cmds := New("", exec, nil)

	running, err := cmds.IsRunning(ctx, "dbdock_postgres")
	require.NoError(t, err)
	require.True(t, running)

	running, err = cmds.IsRunning(ctx, "dbdock_mysql")
	require.NoError(t, err)
	require.False(t, running)
}

func TestIsRegistered(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	exec := newFakeExec()
	exec.results["docker ps -a --format {{.Names}}"] = cmdexec.Result{
		OutLines: []string{"dbdock_postgres"},
	}
	cmds := New("", exec, nil)

	registered, err := cmds.IsRegistered(ctx, "dbdock_postgres")
	require.NoError(t, err)
	require.True(t, registered)

	require.Equal(t, []string{"docker ps -a --format {{.Names}}"}, exec.callKeys())
}

func TestCustomBinary(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	exec := newFakeExec()
	cmds := New("podman", exec, nil)

	_, err := cmds.IsRunning(ctx, "dbdock_postgres")
	require.NoError(t, err)
	require.Equal(t, []string{"podman ps --format {{.Names}}"}, exec.callKeys())
}

func TestStopRemove(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("running container is stopped first", func(t *testing.T) {
		exec := newFakeExec()
		exec.results["docker ps --format {{.Names}}"] = cmdexec.Result{
			OutLines: []string{"dbdock_postgres"},
		}
		cmds := New("", exec, nil)

		require.NoError(t, cmds.StopRemove(ctx, "dbdock_postgres"))
		require.Equal(t, []string{
			"docker ps --format {{.Names}}",
			"docker stop dbdock_postgres",
			"docker rm dbdock_postgres",
		}, exec.callKeys())
	})

	t.Run("stopped container is removed directly", func(t *testing.T) {
		exec := newFakeExec()
		cmds := New("", exec, nil)

		require.NoError(t, cmds.StopRemove(ctx, "dbdock_postgres"))
		require.Equal(t, []string{
			"docker ps --format {{.Names}}",
			"docker rm dbdock_postgres",
		}, exec.callKeys())
	})
}

func TestCopyToContainer(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	exec := newFakeExec()
	cmds := New("", exec, nil)

	require.NoError(t, cmds.CopyToContainer(ctx, "/tmp/init.sql", "dbdock_postgres", "/tmp/init.sql"))
	require.Equal(t, []string{"docker cp /tmp/init.sql dbdock_postgres:/tmp/init.sql"}, exec.callKeys())
}

func TestExecExpect(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	exec := newFakeExec()
	exec.results["docker exec dbdock_postgres pg_isready"] = cmdexec.Result{
		OutLines: []string{"/var/run/postgresql:5432 - accepting connections"},
	}
	cmds := New("", exec, nil)

	ok, err := cmds.ExecExpect(ctx, "dbdock_postgres", "accepting connections", "pg_isready")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = cmds.ExecExpect(ctx, "dbdock_postgres", "no response", "pg_isready")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestLogsContain(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	// postgres writes the startup banner to stderr.
	exec := newFakeExec()
	exec.results["docker logs dbdock_postgres"] = cmdexec.Result{
		OutLines: []string{"performing post-bootstrap initialization"},
		ErrLines: []string{"LOG:  database system is ready to accept connections"},
	}
	cmds := New("", exec, nil)

	ok, err := cmds.LogsContain(ctx, "dbdock_postgres", "ready to accept connections")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = cmds.LogsContain(ctx, "dbdock_postgres", "FATAL")
	require.NoError(t, err)
	require.False(t, ok)
}
