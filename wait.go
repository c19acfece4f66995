package dbdock

import (
	"context"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"
)

// readyPollInterval is the fixed pause between readiness attempts.
const readyPollInterval = 100 * time.Millisecond

// waitFor polls cond until it reports true, with a constant 100ms pause
// between attempts and at most attempts evaluations. Errors from cond count
// as failed attempts and drive another iteration; a refused connection
// during early boot is expected, not fatal. Context cancellation stops
// polling and reports false the same way exhaustion does.
func waitFor(ctx context.Context, logger *slog.Logger, attempts int, cond func(context.Context) (bool, error)) bool {
	if attempts < 1 {
		attempts = 1
	}
	backoff := retry.WithMaxRetries(uint64(attempts-1), retry.NewConstant(readyPollInterval))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		ok, err := cond(ctx)
		if err != nil {
			logger.Debug("ready condition failed", slog.Any("error", err))
			return retry.RetryableError(err)
		}
		if !ok {
			return retry.RetryableError(errNotReady)
		}
		return nil
	})
	return err == nil
}
