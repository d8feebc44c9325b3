// SPDX-License-Identifier: Apache-2.0

package resilience

import "context"

// FallbackStrategy defines a fallback behavior when the primary operation fails.
type FallbackStrategy[T any] interface {
	// Execute runs the fallback operation.
	Execute(ctx context.Context, primaryErr error) (T, error)
}

// FallbackFunc wraps a function as a FallbackStrategy.
type FallbackFunc[T any] func(ctx context.Context, primaryErr error) (T, error)

// Execute implements FallbackStrategy.
func (f FallbackFunc[T]) Execute(ctx context.Context, err error) (T, error) {
	return f(ctx, err)
}

// StaticFallback returns a static value on failure.
type StaticFallback[T any] struct {
	Value T
}

// Execute implements FallbackStrategy.
func (s StaticFallback[T]) Execute(context.Context, error) (T, error) {
	return s.Value, nil
}

// ChainedFallback tries multiple fallbacks in sequence. Each fallback sees the
// previous failure.
type ChainedFallback[T any] struct {
	Fallbacks []FallbackStrategy[T]
}

// Execute implements FallbackStrategy.
func (c ChainedFallback[T]) Execute(ctx context.Context, primaryErr error) (T, error) {
	var zero T
	lastErr := primaryErr
	for _, fallback := range c.Fallbacks {
		value, err := fallback.Execute(ctx, lastErr)
		if err == nil {
			return value, nil
		}
		lastErr = err
	}
	return zero, lastErr
}

// WithFallback runs primary. On failure, if shouldFallback is non-nil and
// returns false the primary error is returned; otherwise the fallback runs and
// its result is returned.
func WithFallback[T any](ctx context.Context, primary func(context.Context) (T, error), fallback FallbackStrategy[T], shouldFallback func(error) bool) (T, error) {
	value, err := primary(ctx)
	if err == nil {
		return value, nil
	}
	if shouldFallback != nil && !shouldFallback(err) {
		return value, err
	}
	return fallback.Execute(ctx, err)
}
