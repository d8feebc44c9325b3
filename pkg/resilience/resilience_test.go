// SPDX-License-Identifier: Apache-2.0

package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	aerrors "github.com/jllopis/pagepilot/pkg/errors"
)

func fastRetry() RetryConfig {
	return DefaultRetryConfig().
		WithInitialDelay(time.Millisecond).
		WithMaxDelay(5 * time.Millisecond)
}

func TestRetrySuccess(t *testing.T) {
	attempts := 0
	err := fastRetry().Do(context.Background(), func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient error")
		}
		return nil
	})

	if err != nil {
		t.Errorf("expected success, got error: %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestRetryAttemptsBoundedByMaxRetries(t *testing.T) {
	for _, maxRetries := range []int{0, 1, 3} {
		attempts := 0
		err := fastRetry().WithMaxRetries(maxRetries).Do(context.Background(), func(context.Context) error {
			attempts++
			return errors.New("tool execution failed")
		})
		if err == nil {
			t.Fatalf("expected error after max retries")
		}
		if err.Error() != "tool execution failed" {
			t.Errorf("expected last error to be returned, got %v", err)
		}
		if attempts != maxRetries+1 {
			t.Errorf("maxRetries=%d: expected %d attempts, got %d", maxRetries, maxRetries+1, attempts)
		}
	}
}

func TestRetryNonRecoverableByClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"aborted text", errors.New("request aborted by user")},
		{"invalid parameters text", errors.New("missing required parameter: url")},
		{"typed aborted", aerrors.New(aerrors.TypeAborted, "stop", nil)},
		{"context canceled", context.Canceled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts := 0
			err := fastRetry().WithMaxRetries(5).Do(context.Background(), func(context.Context) error {
				attempts++
				return tt.err
			})
			if err == nil {
				t.Fatal("expected error")
			}
			if attempts != 1 {
				t.Errorf("expected 1 attempt, got %d", attempts)
			}
		})
	}
}

func TestRetryHonorsExplicitRecoverableFlag(t *testing.T) {
	attempts := 0
	err := fastRetry().Do(context.Background(), func(context.Context) error {
		attempts++
		return aerrors.New(aerrors.TypeTimeout, "slow", nil).WithRecoverable(false)
	})
	if err == nil || attempts != 1 {
		t.Fatalf("expected single attempt for non-recoverable flag, got %d (%v)", attempts, err)
	}
}

func TestRetryCustomIsRecoverable(t *testing.T) {
	attempts := 0
	config := fastRetry().WithIsRecoverable(func(error) bool { return false })
	_ = config.Do(context.Background(), func(context.Context) error {
		attempts++
		return errors.New("timeout")
	})
	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
}

func TestRetryBackoffSequence(t *testing.T) {
	var delays []time.Duration
	config := RetryConfig{
		MaxRetries:        4,
		InitialDelay:      time.Millisecond,
		MaxDelay:          3 * time.Millisecond,
		BackoffMultiplier: 2,
		OnRetry: func(_ int, _ error, d time.Duration) {
			delays = append(delays, d)
		},
	}
	_ = config.Do(context.Background(), func(context.Context) error {
		return errors.New("timeout")
	})

	want := []time.Duration{time.Millisecond, 2 * time.Millisecond, 3 * time.Millisecond, 3 * time.Millisecond}
	if len(delays) != len(want) {
		t.Fatalf("expected %d delays, got %v", len(want), delays)
	}
	for i := range want {
		if delays[i] != want[i] {
			t.Errorf("delay %d: expected %v, got %v", i, want[i], delays[i])
		}
	}
}

func TestRetryContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	config := DefaultRetryConfig().WithInitialDelay(200 * time.Millisecond)

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	attempts := 0
	err := config.Do(ctx, func(context.Context) error {
		attempts++
		return errors.New("transient error")
	})

	if err == nil {
		t.Fatal("expected context error")
	}
	if aerrors.Classify(err) != aerrors.TypeAborted {
		t.Errorf("expected aborted classification, got %s", aerrors.Classify(err))
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt before cancellation, got %d", attempts)
	}
}

func TestWithRetryResult(t *testing.T) {
	attempts := 0
	result, err := WithRetry(context.Background(), fastRetry(), func(context.Context) (string, error) {
		attempts++
		if attempts < 2 {
			return "", errors.New("rate limit")
		}
		return "success", nil
	})

	if err != nil {
		t.Errorf("expected success, got error: %v", err)
	}
	if result != "success" {
		t.Errorf("expected 'success', got %v", result)
	}
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
}
