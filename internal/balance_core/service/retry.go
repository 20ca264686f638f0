package service

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/tabungan-ledger/internal/config"
	"github.com/tabungan-ledger/internal/domain/shared"
)

// RetryPolicy bounds the retries of a unit that failed with a concurrency error.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

func NewRetryPolicy(cfg *config.MutationConfig) RetryPolicy {
	return RetryPolicy{
		MaxRetries: cfg.MaxRetries,
		BaseDelay:  cfg.RetryBaseDelay,
		MaxDelay:   cfg.RetryMaxDelay,
	}
}

// Do runs fn until it succeeds, fails with a non-retryable error, or the
// retries are exhausted. The last error is returned unchanged.
func (p RetryPolicy) Do(ctx context.Context, logger *slog.Logger, operation string, fn func() error) error {
	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil || !shared.IsRetryable(err) || attempt >= p.MaxRetries {
			return err
		}

		delay := p.backoff(attempt)
		logger.Warn("Concurrency conflict, retrying",
			"operation", operation,
			"attempt", attempt+1,
			"delay", delay,
			"error", err,
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
}

// backoff doubles BaseDelay per attempt up to MaxDelay, with up to 50% jitter.
func (p RetryPolicy) backoff(attempt int) time.Duration {
	if p.BaseDelay <= 0 {
		return 0
	}
	d := p.BaseDelay << attempt
	if d <= 0 || (p.MaxDelay > 0 && d > p.MaxDelay) {
		d = p.MaxDelay
	}
	half := int64(d / 2)
	if half <= 0 {
		return d
	}
	return time.Duration(half + rand.Int64N(half+1))
}
