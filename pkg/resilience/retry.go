// SPDX-License-Identifier: Apache-2.0
// Package resilience provides retry, fallback and timeout wrappers for agent
// operations.
package resilience

import (
	"context"
	"time"

	"github.com/jllopis/pagepilot/pkg/errors"
)

// RetryConfig controls retry behavior with exponential backoff.
type RetryConfig struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int

	// InitialDelay is the wait before the first retry.
	InitialDelay time.Duration

	// MaxDelay caps the backoff delay.
	MaxDelay time.Duration

	// BackoffMultiplier grows the delay after every retry (default 2.0).
	BackoffMultiplier float64

	// IsRecoverable determines if an error should be retried.
	// If nil, the error is classified and checked against the taxonomy.
	IsRecoverable func(error) bool

	// OnRetry is called before sleeping ahead of a retry.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:        2,
		InitialDelay:      500 * time.Millisecond,
		MaxDelay:          5 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// WithMaxRetries returns a new config with MaxRetries set.
func (rc RetryConfig) WithMaxRetries(n int) RetryConfig {
	rc.MaxRetries = n
	return rc
}

// WithInitialDelay returns a new config with InitialDelay set.
func (rc RetryConfig) WithInitialDelay(d time.Duration) RetryConfig {
	rc.InitialDelay = d
	return rc
}

// WithMaxDelay returns a new config with MaxDelay set.
func (rc RetryConfig) WithMaxDelay(d time.Duration) RetryConfig {
	rc.MaxDelay = d
	return rc
}

// WithIsRecoverable returns a new config with IsRecoverable set.
func (rc RetryConfig) WithIsRecoverable(fn func(error) bool) RetryConfig {
	rc.IsRecoverable = fn
	return rc
}

// Do runs fn up to MaxRetries+1 times. Non-recoverable failures are returned
// immediately; after the last attempt the last error is returned.
func (rc RetryConfig) Do(ctx context.Context, fn func(context.Context) error) error {
	_, err := WithRetry(ctx, rc, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// WithRetry is the result-returning form of RetryConfig.Do.
func WithRetry[T any](ctx context.Context, rc RetryConfig, fn func(context.Context) (T, error)) (T, error) {
	if rc.MaxRetries < 0 {
		rc.MaxRetries = 0
	}
	if rc.BackoffMultiplier <= 0 {
		rc.BackoffMultiplier = 2.0
	}
	isRecoverable := rc.IsRecoverable
	if isRecoverable == nil {
		isRecoverable = isRecoverableDefault
	}

	var (
		zero    T
		lastErr error
	)
	delay := rc.InitialDelay
	for attempt := 0; attempt <= rc.MaxRetries; attempt++ {
		if attempt > 0 {
			if rc.OnRetry != nil {
				rc.OnRetry(attempt, lastErr, delay)
			}
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, errors.New(errors.TypeAborted, "context canceled during retry", ctx.Err()).
					WithDetail("attempt", attempt).
					WithDetail("max_retries", rc.MaxRetries)
			case <-timer.C:
			}
			delay = nextDelay(delay, rc)
		}

		value, err := fn(ctx)
		if err == nil {
			return value, nil
		}
		lastErr = err

		if !isRecoverable(err) {
			return zero, err
		}
	}
	return zero, lastErr
}

func nextDelay(current time.Duration, rc RetryConfig) time.Duration {
	next := time.Duration(float64(current) * rc.BackoffMultiplier)
	if rc.MaxDelay > 0 && next > rc.MaxDelay {
		next = rc.MaxDelay
	}
	return next
}

// isRecoverableDefault honors an explicit AgentError flag and otherwise
// classifies the error.
func isRecoverableDefault(err error) bool {
	if err == nil {
		return false
	}
	var ae *errors.AgentError
	if errors.As(err, &ae) {
		return ae.Recoverable
	}
	return errors.IsRecoverable(errors.Classify(err))
}
