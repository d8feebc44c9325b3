// SPDX-License-Identifier: Apache-2.0

package core

import (
	"context"
	"errors"
	"testing"
	"time"
)

func static(status HealthStatus) HealthChecker {
	return HealthCheckFunc(func(context.Context) HealthResult {
		return HealthResult{Status: status, Message: string(status)}
	})
}

func TestHealthRegistryCheckAll(t *testing.T) {
	tests := []struct {
		name     string
		statuses map[string]HealthStatus
		want     HealthStatus
	}{
		{"empty", nil, HealthHealthy},
		{"all healthy", map[string]HealthStatus{"llm": HealthHealthy, "store": HealthHealthy}, HealthHealthy},
		{"degraded", map[string]HealthStatus{"llm": HealthDegraded, "store": HealthHealthy}, HealthDegraded},
		{"unhealthy wins", map[string]HealthStatus{"a": HealthUnhealthy, "b": HealthDegraded}, HealthUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewHealthRegistry(0)
			for name, status := range tt.statuses {
				r.Register(name, static(status))
			}
			results, overall := r.CheckAll(context.Background())
			if overall != tt.want {
				t.Errorf("expected %s, got %s", tt.want, overall)
			}
			if len(results) != len(tt.statuses) {
				t.Fatalf("expected %d results, got %d", len(tt.statuses), len(results))
			}
			for i := 1; i < len(results); i++ {
				if results[i-1].Component > results[i].Component {
					t.Fatalf("results not sorted: %+v", results)
				}
			}
		})
	}
}

func TestHealthRegistryCheck(t *testing.T) {
	r := NewHealthRegistry(time.Second)
	r.Register("store", PingChecker(func(context.Context) error { return errors.New("database is locked") }))

	res, err := r.Check(context.Background(), "store")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != HealthUnhealthy || res.Component != "store" || res.Message != "database is locked" {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.LastCheck.IsZero() {
		t.Fatal("expected LastCheck to be set")
	}

	if _, err := r.Check(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for unregistered checker")
	}
}

func TestHealthRegistryBoundsChecks(t *testing.T) {
	r := NewHealthRegistry(10 * time.Millisecond)
	r.Register("slow", PingChecker(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))

	res, _ := r.Check(context.Background(), "slow")
	if res.Status != HealthUnhealthy || !errors.Is(res.Error, context.DeadlineExceeded) {
		t.Fatalf("expected deadline failure, got %+v", res)
	}
}

func TestHealthRegistryDefaultsMissingStatus(t *testing.T) {
	r := NewHealthRegistry(0)
	r.Register("blank", HealthCheckFunc(func(context.Context) HealthResult { return HealthResult{} }))
	res, _ := r.Check(context.Background(), "blank")
	if res.Status != HealthUnhealthy {
		t.Fatalf("expected unhealthy for blank status, got %s", res.Status)
	}
}
