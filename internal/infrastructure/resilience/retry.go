package resilience

import (
	"context"
	"log/slog"
	"time"
)

func retryLoop(
	ctx context.Context,
	operation string,
	cfg Config,
	fn func(context.Context) error,
	classifier ErrorClassifier,
) error {
	backoff := cfg.RetryInitialBackoff

	var lastErr error
	for attempt := 1; attempt <= cfg.RetryMaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if !classifier(lastErr).Retryable || attempt == cfg.RetryMaxAttempts {
			return lastErr
		}

		wait := min(backoff, cfg.RetryMaxBackoff)
		slog.Warn("retry_attempt",
			"operation", operation,
			"attempt", attempt,
			"max_attempts", cfg.RetryMaxAttempts,
			"backoff", wait,
			"error", lastErr,
		)

		if wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return lastErr
			case <-timer.C:
			}
		}
		backoff = min(time.Duration(float64(backoff)*cfg.RetryMultiplier), cfg.RetryMaxBackoff)
	}
	return lastErr
}
