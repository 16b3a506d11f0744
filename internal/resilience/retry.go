// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resilience

import (
	"context"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/ontomap/pkg/types"
)

// RetryPolicy wraps a fallible operation with bounded, backed-off retries.
// Only retryable errors (see Retryable) trigger another attempt; anything
// else propagates from the first attempt without delay.
type RetryPolicy struct {
	cfg    types.RetryConfig
	logger *zap.SugaredLogger

	// retryable decides whether an error is worth another attempt.
	// Defaults to Retryable.
	retryable func(error) bool

	// sleep waits out a backoff delay. Tests substitute a recording stub.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRetryPolicy builds a policy from cfg. A nil logger disables logging.
func NewRetryPolicy(cfg types.RetryConfig, logger *zap.SugaredLogger) *RetryPolicy {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &RetryPolicy{
		cfg:       cfg,
		logger:    logger,
		retryable: Retryable,
		sleep:     sleepContext,
	}
}

// Execute runs op, retrying retryable failures up to MaxRetries times.
// The context is checked before each backoff sleep; cancellation aborts the
// loop with ctx.Err() without masking the operation's own outcome semantics.
func (p *RetryPolicy) Execute(ctx context.Context, op func(ctx context.Context) error) error {
	attempts := p.cfg.MaxRetries + 1
	if !p.cfg.Enabled {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := op(ctx)
		if err == nil {
			return nil
		}
		if !p.retryable(err) {
			return err
		}
		lastErr = err

		if attempt == attempts-1 {
			p.logger.Errorw("all attempts failed",
				"attempts", attempts,
				"error", err)
			break
		}

		delay := p.Delay(attempt)
		p.logger.Warnw("attempt failed, retrying",
			"attempt", attempt+1,
			"of", attempts,
			"delay", delay,
			"error", err)

		if serr := p.sleep(ctx, delay); serr != nil {
			return serr
		}
	}
	return lastErr
}

// Delay computes the backoff for the given 0-indexed attempt:
// min(initial * base^attempt, max), scaled by a uniform factor in
// [0.5, 1.5) when jitter is enabled.
func (p *RetryPolicy) Delay(attempt int) time.Duration {
	base := p.cfg.ExponentialBase
	if base <= 0 {
		base = 2.0
	}

	d := float64(p.cfg.InitialDelay) * math.Pow(base, float64(attempt))
	if maxd := float64(p.cfg.MaxDelay); maxd > 0 && d > maxd {
		d = maxd
	}
	if p.cfg.Jitter {
		d *= 0.5 + rand.Float64()
	}
	return time.Duration(d)
}

// sleepContext waits for d or until ctx is done, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
