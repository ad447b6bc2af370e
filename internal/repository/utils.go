package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/osse101/StickerSwap_Go/internal/domain"
	"github.com/osse101/StickerSwap_Go/internal/logger"
	"github.com/osse101/StickerSwap_Go/internal/metrics"
)

// RetryBackoff is the base pause between contention retries; attempt n waits n*RetryBackoff.
var RetryBackoff = 10 * time.Millisecond

// SafeRollback rolls back a transaction and logs any error
func SafeRollback(ctx context.Context, tx Tx) {
	if err := tx.Rollback(ctx); err != nil {
		logger.FromContext(ctx).Error("Failed to rollback transaction", "error", err)
	}
}

// RunInTx begins a transaction, runs fn and commits. When the unit of work fails with
// domain.ErrContention it is retried up to maxRetries more times; once retries are
// exhausted domain.ErrTransient is returned. Any other error rolls back and is returned as is.
func RunInTx[T Tx](ctx context.Context, op string, maxRetries int, begin func(context.Context) (T, error), fn func(T) error) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			metrics.TxRetries.WithLabelValues(op).Inc()
			logger.FromContext(ctx).Debug("Retrying unit of work", "op", op, "attempt", attempt, "error", lastErr)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * RetryBackoff):
			}
		}

		lastErr = runOnce(ctx, begin, fn)
		if lastErr == nil || !errors.Is(lastErr, domain.ErrContention) {
			return lastErr
		}
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrTransient, op, lastErr)
}

func runOnce[T Tx](ctx context.Context, begin func(context.Context) (T, error), fn func(T) error) error {
	tx, err := begin(ctx)
	if err != nil {
		return err
	}
	defer SafeRollback(ctx, tx)

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
