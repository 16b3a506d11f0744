// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resilience

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/ontomap/pkg/types"
)

// State is a circuit breaker state.
type State string

const (
	StateClosed   State = "CLOSED"
	StateOpen     State = "OPEN"
	StateHalfOpen State = "HALF_OPEN"
)

// CircuitBreaker fails fast once a service has failed FailureThreshold times
// in a row, and probes it again after RecoveryTimeout. The only permitted
// transitions are CLOSED→OPEN on threshold breach, OPEN→HALF_OPEN after the
// timeout, HALF_OPEN→CLOSED on success, and HALF_OPEN→OPEN on failure.
type CircuitBreaker struct {
	name            string
	threshold       int
	recoveryTimeout time.Duration
	logger          *zap.SugaredLogger

	// isFailure decides whether an error counts toward the threshold.
	// Defaults to counting every classified service error.
	isFailure func(error) bool

	// now is the clock; tests substitute a fake.
	now func() time.Time

	mu           sync.Mutex
	state        State
	failureCount int
	lastFailure  time.Time
}

// BreakerSnapshot is a point-in-time dump of a breaker's state, as exposed
// in health reports.
type BreakerSnapshot struct {
	Name            string     `json:"name"`
	State           State      `json:"state"`
	FailureCount    int        `json:"failure_count"`
	Threshold       int        `json:"failure_threshold"`
	LastFailureTime *time.Time `json:"last_failure_time"`
}

// NewCircuitBreaker builds a breaker named after its service. A nil logger
// disables logging.
func NewCircuitBreaker(name string, cfg types.BreakerConfig, logger *zap.SugaredLogger) *CircuitBreaker {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &CircuitBreaker{
		name:            name,
		threshold:       cfg.FailureThreshold,
		recoveryTimeout: cfg.RecoveryTimeout,
		logger:          logger,
		isFailure:       isServiceError,
		now:             time.Now,
		state:           StateClosed,
	}
}

func isServiceError(err error) bool {
	_, ok := KindOf(err)
	return ok
}

// Call runs op under breaker protection. While the circuit is open and the
// recovery timeout has not elapsed, op is never invoked and Call fails fast
// with a service-unavailable error.
func (b *CircuitBreaker) Call(ctx context.Context, op func(ctx context.Context) error) error {
	b.mu.Lock()
	if b.state == StateOpen {
		if b.now().Sub(b.lastFailure) < b.recoveryTimeout {
			b.mu.Unlock()
			return NewError(KindServiceUnavailable, b.name,
				fmt.Sprintf("circuit breaker is OPEN, retry after %s", b.recoveryTimeout))
		}
		b.logger.Infow("circuit breaker probing recovery", "breaker", b.name, "state", StateHalfOpen)
		b.state = StateHalfOpen
	}
	b.mu.Unlock()

	err := op(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		if b.state == StateHalfOpen {
			b.logger.Infow("circuit breaker recovered", "breaker", b.name, "state", StateClosed)
		}
		b.failureCount = 0
		b.state = StateClosed
		return nil
	}

	if b.isFailure(err) {
		b.failureCount++
		b.lastFailure = b.now()
		if b.failureCount >= b.threshold {
			b.logger.Warnw("circuit breaker opened",
				"breaker", b.name,
				"failures", b.failureCount,
				"recovery_timeout", b.recoveryTimeout)
			b.state = StateOpen
		} else if b.state == StateHalfOpen {
			// A failed probe re-opens immediately regardless of count.
			b.state = StateOpen
		}
	}
	return err
}

// State returns the current state.
func (b *CircuitBreaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Reset forces the breaker closed and clears its failure bookkeeping.
// Intended for operator intervention and tests.
func (b *CircuitBreaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.logger.Infow("circuit breaker manually reset", "breaker", b.name)
	b.failureCount = 0
	b.state = StateClosed
	b.lastFailure = time.Time{}
}

// Snapshot returns a copy of the breaker's current state for health reports.
func (b *CircuitBreaker) Snapshot() BreakerSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := BreakerSnapshot{
		Name:         b.name,
		State:        b.state,
		FailureCount: b.failureCount,
		Threshold:    b.threshold,
	}
	if !b.lastFailure.IsZero() {
		t := b.lastFailure
		s.LastFailureTime = &t
	}
	return s
}
