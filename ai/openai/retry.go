package openai

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/poiesic/docrag/ai"
)

// requestPolicy bounds and retries calls to a remote service.
type requestPolicy struct {
	timeout  time.Duration
	attempts uint
	delay    time.Duration
	logger   *slog.Logger
}

func newRequestPolicy(config *ai.Config, logger *slog.Logger) requestPolicy {
	return requestPolicy{
		timeout:  config.RequestTimeout,
		attempts: config.MaxRetries,
		delay:    config.RetryDelay,
		logger:   logger,
	}
}

// options converts the policy to retry-go options bound to ctx.
func (p requestPolicy) options(ctx context.Context, op string) []retry.Option {
	return []retry.Option{
		retry.Context(ctx),
		retry.Attempts(p.attempts),
		retry.Delay(p.delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isRetryable),
		retry.OnRetry(func(n uint, err error) {
			p.logger.Warn("request failed, retrying", "op", op, "attempt", n+1, "err", err)
		}),
	}
}

// do runs fn with a per-attempt timeout, retrying transient failures.
func do[T any](ctx context.Context, p requestPolicy, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	return retry.DoWithData(func() (T, error) {
		attemptCtx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()
		return fn(attemptCtx)
	}, p.options(ctx, op)...)
}

// isRetryable reports whether another attempt could succeed.
// Cancellation by the caller and empty responses are final.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, ai.ErrEmptyResponse) {
		return false
	}
	return true
}
