package dbdock

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWaitForSucceedsImmediately(t *testing.T) {
	t.Parallel()

	var calls int
	ok := waitFor(context.Background(), discardLogger(), 5, func(context.Context) (bool, error) {
		calls++
		return true, nil
	})
	require.True(t, ok)
	require.Equal(t, 1, calls)
}

func TestWaitForExhaustsAttempts(t *testing.T) {
	t.Parallel()

	var calls int
	start := time.Now()
	ok := waitFor(context.Background(), discardLogger(), 3, func(context.Context) (bool, error) {
		calls++
		return false, nil
	})
	elapsed := time.Since(start)

	require.False(t, ok)
	require.Equal(t, 3, calls)
	// Three attempts pause twice, never after the last one.
	require.GreaterOrEqual(t, elapsed, 2*readyPollInterval)
	require.Less(t, elapsed, 20*readyPollInterval)
}

func TestWaitForErrorsCountAsFailedAttempts(t *testing.T) {
	t.Parallel()

	var calls int
	ok := waitFor(context.Background(), discardLogger(), 4, func(context.Context) (bool, error) {
		calls++
		if calls < 3 {
			return false, errors.New("connection refused")
		}
		return true, nil
	})
	require.True(t, ok)
	require.Equal(t, 3, calls)
}

func TestWaitForAllAttemptsError(t *testing.T) {
	t.Parallel()

	var calls int
	ok := waitFor(context.Background(), discardLogger(), 2, func(context.Context) (bool, error) {
		calls++
		return false, errors.New("connection refused")
	})
	require.False(t, ok)
	require.Equal(t, 2, calls)
}

func TestWaitForMinimumOneAttempt(t *testing.T) {
	t.Parallel()

	var calls int
	ok := waitFor(context.Background(), discardLogger(), 0, func(context.Context) (bool, error) {
		calls++
		return true, nil
	})
	require.True(t, ok)
	require.Equal(t, 1, calls)
}

func TestWaitForContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	var calls int
	start := time.Now()
	ok := waitFor(ctx, discardLogger(), 1000, func(context.Context) (bool, error) {
		calls++
		if calls == 2 {
			cancel()
		}
		return false, nil
	})

	require.False(t, ok)
	// Cancellation stops polling long before the attempt budget runs out.
	require.Less(t, calls, 10)
	require.Less(t, time.Since(start), 5*time.Second)
}
