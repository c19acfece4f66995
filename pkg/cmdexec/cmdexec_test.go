package cmdexec

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitLines(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "empty",
			input: "",
			want:  nil,
		},
		{
			name:  "single line with trailing newline",
			input: "dbdock_postgres\n",
			want:  []string{"dbdock_postgres"},
		},
		{
			name:  "crlf line endings",
			input: "one\r\ntwo\r\n",
			want:  []string{"one", "two"},
		},
		{
			name:  "blank and whitespace lines dropped",
			input: "one\n\n   \ntwo\n",
			want:  []string{"one", "two"},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.want, SplitLines(test.input))
		})
	}
}

func TestStdoutMatching(t *testing.T) {
	t.Parallel()

	lines := []string{
		"2024-01-02 12:00:01 UTC LOG:  starting PostgreSQL",
		"2024-01-02 12:00:02 UTC LOG:  database system is ready to accept connections",
	}

	require.True(t, StdoutContains(lines, "ready to accept connections"))
	require.True(t, StdoutContains(lines, "starting"))
	require.False(t, StdoutContains(lines, "FATAL"))

	require.True(t, StdoutMissing(lines, "FATAL"))
	require.False(t, StdoutMissing(lines, "starting"))

	require.False(t, StdoutEmpty(lines))
	require.True(t, StdoutEmpty(nil))
	require.True(t, StdoutEmpty([]string{}))
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	err := &Error{
		Args:     []string{"docker", "start", "missing"},
		ExitCode: 1,
		Stderr:   "Error response from daemon: No such container: missing",
	}
	require.EqualError(t, err,
		`command "docker start missing" exited with status 1: Error response from daemon: No such container: missing`)
}

func TestProcessExecutor(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("captures stdout", func(t *testing.T) {
		res, err := New().Run(ctx, "echo", "hello")
		require.NoError(t, err)
		require.Equal(t, []string{"hello"}, res.OutLines)
		require.Empty(t, res.ErrLines)
		require.Equal(t, 0, res.ExitCode)
	})

	t.Run("non-zero exit", func(t *testing.T) {
		res, err := New().Run(ctx, "sh", "-c", "echo oops >&2; exit 3")
		require.Error(t, err)
		var cmdErr *Error
		require.True(t, errors.As(err, &cmdErr))
		require.Equal(t, 3, cmdErr.ExitCode)
		require.Equal(t, "oops", cmdErr.Stderr)
		require.Equal(t, 3, res.ExitCode)
	})

	t.Run("empty command", func(t *testing.T) {
		_, err := New().Run(ctx)
		require.Error(t, err)
	})
}

func TestResultLines(t *testing.T) {
	t.Parallel()

	res := Result{
		OutLines: []string{"out1", "out2"},
		ErrLines: []string{"err1"},
	}
	require.Equal(t, []string{"out1", "out2", "err1"}, res.Lines())
}
