// SPDX-License-Identifier: Apache-2.0

package resilience

import (
	"context"
	"sync"
	"time"

	"github.com/jllopis/pagepilot/pkg/errors"
)

// CircuitBreakerState represents the state of a circuit breaker.
type CircuitBreakerState string

const (
	// StateClosed lets calls through and counts consecutive failures.
	StateClosed CircuitBreakerState = "closed"

	// StateOpen rejects calls until the cool-down elapses.
	StateOpen CircuitBreakerState = "open"

	// StateHalfOpen lets trial calls through to probe recovery.
	StateHalfOpen CircuitBreakerState = "half-open"
)

// CircuitBreakerConfig configures a circuit breaker.
type CircuitBreakerConfig struct {
	// FailureThreshold is the number of consecutive failures that opens the
	// circuit (default 5).
	FailureThreshold int

	// SuccessThreshold is the number of half-open successes that closes it
	// again (default 2).
	SuccessThreshold int

	// Timeout is the cool-down before probing in half-open (default 30s).
	Timeout time.Duration

	// Name identifies the breaker in error details.
	Name string

	// ErrorType is the taxonomy type of rejections (default TypeUnknown).
	ErrorType errors.Type

	// Counts decides whether an error counts as a failure. Cancellations are
	// never counted when nil.
	Counts func(error) bool
}

// CircuitBreaker stops calling a failing collaborator for a while.
type CircuitBreaker struct {
	config       CircuitBreakerConfig
	mu           sync.Mutex
	state        CircuitBreakerState
	failures     int
	successes    int
	lastFailTime time.Time
	now          func() time.Time
}

// NewCircuitBreaker creates a new circuit breaker with the given config.
func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	if config.FailureThreshold < 1 {
		config.FailureThreshold = 5
	}
	if config.SuccessThreshold < 1 {
		config.SuccessThreshold = 2
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.Name == "" {
		config.Name = "circuit_breaker"
	}
	if config.ErrorType == "" {
		config.ErrorType = errors.TypeUnknown
	}
	if config.Counts == nil {
		config.Counts = func(err error) bool {
			return errors.Classify(err) != errors.TypeAborted
		}
	}
	return &CircuitBreaker{config: config, state: StateClosed, now: time.Now}
}

// Call runs fn when the breaker allows it. The lock is not held while fn
// runs.
func (cb *CircuitBreaker) Call(ctx context.Context, fn func(context.Context) error) error {
	_, err := WithCircuitBreaker(ctx, cb, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// WithCircuitBreaker is the result-returning form of CircuitBreaker.Call.
// A rejected call returns a non-recoverable AgentError so retries stop.
func WithCircuitBreaker[T any](ctx context.Context, cb *CircuitBreaker, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if err := cb.allow(); err != nil {
		return zero, err
	}
	value, err := fn(ctx)
	cb.record(err)
	return value, err
}

func (cb *CircuitBreaker) allow() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateOpen && cb.now().Sub(cb.lastFailTime) > cb.config.Timeout {
		cb.state = StateHalfOpen
		cb.successes = 0
		cb.failures = 0
	}
	if cb.state == StateOpen {
		return errors.New(cb.config.ErrorType, "circuit breaker open", nil).
			WithDetail("breaker", cb.config.Name).
			WithRecoverable(false)
	}
	return nil
}

func (cb *CircuitBreaker) record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err != nil {
		if !cb.config.Counts(err) {
			return
		}
		cb.failures++
		cb.lastFailTime = cb.now()
		if cb.state == StateHalfOpen || cb.failures >= cb.config.FailureThreshold {
			cb.state = StateOpen
			cb.failures = 0
			cb.successes = 0
		}
		return
	}

	switch cb.state {
	case StateHalfOpen:
		cb.successes++
		if cb.successes >= cb.config.SuccessThreshold {
			cb.state = StateClosed
			cb.failures = 0
			cb.successes = 0
		}
	case StateClosed:
		cb.failures = 0
	}
}

// State returns the current circuit breaker state.
func (cb *CircuitBreaker) State() CircuitBreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Reset closes the breaker.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.state = StateClosed
	cb.failures = 0
	cb.successes = 0
}
