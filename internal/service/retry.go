package service

import (
	"context"
	"time"

	"github.com/AlexBaum-ai/NEURM-sub006/internal/models"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/repository"

	"github.com/cenkalti/backoff/v4"
)

const maxConflictRetries = 3

// conflictBackOff is replaceable in tests.
var conflictBackOff = func() backoff.BackOff {
	return backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(10*time.Millisecond),
		backoff.WithMaxInterval(100*time.Millisecond),
		backoff.WithMaxElapsedTime(2*time.Second),
	)
}

// withConflictRetry runs op again while it fails with a transient storage conflict,
// up to maxConflictRetries extra attempts, then reports Conflict. Other errors are
// returned unchanged on the first occurrence.
func withConflictRetry(ctx context.Context, onRetry func(), op func(context.Context) error) error {
	var lastErr error
	attempt := 0

	err := backoff.Retry(func() error {
		if attempt > 0 && onRetry != nil {
			onRetry()
		}
		attempt++
		err := op(ctx)
		if err == nil {
			return nil
		}
		if !repository.IsRetryable(err) {
			return backoff.Permanent(err)
		}
		lastErr = err
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(conflictBackOff(), maxConflictRetries), ctx))

	if err == nil {
		return nil
	}
	if lastErr != nil && repository.IsRetryable(err) {
		return models.NewConflictError("Concurrent update detected, please retry", lastErr)
	}
	return err
}
