// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/ontomap/pkg/types"
)

func testRetryConfig(maxRetries int) types.RetryConfig {
	return types.RetryConfig{
		Enabled:         true,
		MaxRetries:      maxRetries,
		InitialDelay:    time.Millisecond,
		MaxDelay:        10 * time.Millisecond,
		ExponentialBase: 2.0,
	}
}

// newTestPolicy returns a policy whose sleeps record durations instead of
// actually waiting.
func newTestPolicy(maxRetries int) (*RetryPolicy, *[]time.Duration) {
	p := NewRetryPolicy(testRetryConfig(maxRetries), nil)
	var slept []time.Duration
	p.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return p, &slept
}

func TestExecuteSucceedsFirstTry(t *testing.T) {
	p, slept := newTestPolicy(3)

	calls := 0
	err := p.Execute(context.Background(), func(context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, *slept)
}

func TestExecuteRetriesThenSucceeds(t *testing.T) {
	p, slept := newTestPolicy(3)

	calls := 0
	err := p.Execute(context.Background(), func(context.Context) error {
		calls++
		if calls <= 3 {
			return NewError(KindNetwork, "ols", "down")
		}
		return nil
	})
	require.NoError(t, err)
	// Fails exactly maxRetries times then succeeds: maxRetries+1 invocations.
	assert.Equal(t, 4, calls)
	assert.Len(t, *slept, 3)
}

func TestExecuteExhaustsRetries(t *testing.T) {
	p, _ := newTestPolicy(3)

	calls := 0
	wantErr := NewError(KindTimeout, "ols", "slow")
	err := p.Execute(context.Background(), func(context.Context) error {
		calls++
		return wantErr
	})
	assert.Equal(t, 4, calls)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindTimeout))
}

func TestExecuteNonRetryablePropagatesImmediately(t *testing.T) {
	p, slept := newTestPolicy(5)

	calls := 0
	err := p.Execute(context.Background(), func(context.Context) error {
		calls++
		return NewError(KindAuthentication, "bioportal", "bad key")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, *slept)
	assert.True(t, IsKind(err, KindAuthentication))
}

func TestExecuteUnclassifiedErrorPropagates(t *testing.T) {
	p, _ := newTestPolicy(5)

	calls := 0
	plain := errors.New("programming error")
	err := p.Execute(context.Background(), func(context.Context) error {
		calls++
		return plain
	})
	assert.ErrorIs(t, err, plain)
	assert.Equal(t, 1, calls)
}

func TestExecuteDisabledMeansSingleAttempt(t *testing.T) {
	cfg := testRetryConfig(5)
	cfg.Enabled = false
	p := NewRetryPolicy(cfg, nil)

	calls := 0
	err := p.Execute(context.Background(), func(context.Context) error {
		calls++
		return NewError(KindNetwork, "ols", "down")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestExecuteCancelledDuringBackoff(t *testing.T) {
	cfg := testRetryConfig(5)
	cfg.InitialDelay = time.Second
	p := NewRetryPolicy(cfg, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := p.Execute(ctx, func(context.Context) error {
		return NewError(KindNetwork, "ols", "down")
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDelayGrowsExponentiallyAndCaps(t *testing.T) {
	p := NewRetryPolicy(types.RetryConfig{
		Enabled:         true,
		MaxRetries:      5,
		InitialDelay:    time.Second,
		MaxDelay:        5 * time.Second,
		ExponentialBase: 2.0,
	}, nil)

	assert.Equal(t, 1*time.Second, p.Delay(0))
	assert.Equal(t, 2*time.Second, p.Delay(1))
	assert.Equal(t, 4*time.Second, p.Delay(2))
	// 8s exceeds the cap.
	assert.Equal(t, 5*time.Second, p.Delay(3))
}

func TestDelayJitterStaysInRange(t *testing.T) {
	p := NewRetryPolicy(types.RetryConfig{
		Enabled:         true,
		InitialDelay:    time.Second,
		MaxDelay:        time.Minute,
		ExponentialBase: 2.0,
		Jitter:          true,
	}, nil)

	for i := 0; i < 100; i++ {
		d := p.Delay(0)
		// Uniform factor in [0.5, 1.5) of the 1s base.
		assert.GreaterOrEqual(t, d, 500*time.Millisecond)
		assert.Less(t, d, 1500*time.Millisecond)
	}
}
