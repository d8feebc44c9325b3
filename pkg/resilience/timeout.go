// SPDX-License-Identifier: Apache-2.0

package resilience

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/jllopis/pagepilot/pkg/errors"
)

// TimeoutConfig controls timeout behavior.
type TimeoutConfig struct {
	// Duration is the maximum time allowed for the operation. Zero disables
	// the timeout.
	Duration time.Duration
}

// WithTimeout executes fn with a timeout boundary.
func WithTimeout(ctx context.Context, config TimeoutConfig, fn func(context.Context) error) error {
	_, err := WithTimeoutResult(ctx, config, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// WithTimeoutResult races fn against the deadline. fn receives a context that
// expires with the deadline; if fn ignores it, it keeps running in the
// background after the timeout error is returned. A deadline yields a
// TypeTimeout error, a parent cancellation a TypeAborted error.
func WithTimeoutResult[T any](ctx context.Context, config TimeoutConfig, fn func(context.Context) (T, error)) (T, error) {
	if config.Duration <= 0 {
		return fn(ctx)
	}

	ctx, cancel := context.WithTimeout(ctx, config.Duration)
	defer cancel()

	type result struct {
		value T
		err   error
	}

	done := make(chan result, 1)
	go func() {
		value, err := fn(ctx)
		done <- result{value, err}
	}()

	var zero T
	select {
	case <-ctx.Done():
		if stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
			return zero, errors.New(errors.TypeTimeout, "operation exceeded timeout", ctx.Err()).
				WithDetail("timeout", config.Duration.String())
		}
		return zero, errors.New(errors.TypeAborted, "operation cancelled", ctx.Err())
	case res := <-done:
		return res.value, res.err
	}
}
