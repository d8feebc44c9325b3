// SPDX-License-Identifier: Apache-2.0
// Package telemetry wires OpenTelemetry and slog into the agent: logger
// construction, exporter setup, span attributes and error/run metrics.
package telemetry

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/jllopis/pagepilot/pkg/errors"
)

// Run outcomes recorded by RecordRun.
const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
	OutcomeAborted   = "aborted"
	OutcomeBlocked   = "blocked"
)

// ErrorMetrics tracks classified errors, recoveries and agent runs.
type ErrorMetrics struct {
	errorCounter    metric.Int64Counter
	recoveryCounter metric.Int64Counter
	runCounter      metric.Int64Counter
	runDuration     metric.Float64Histogram
}

// NewErrorMetrics creates the meters on the global meter provider.
func NewErrorMetrics(ctx context.Context) (*ErrorMetrics, error) {
	meter := otel.Meter("pagepilot/agent")

	errorCounter, err := meter.Int64Counter(
		"pagepilot.errors.total",
		metric.WithDescription("Errors by type and component"),
	)
	if err != nil {
		return nil, err
	}

	recoveryCounter, err := meter.Int64Counter(
		"pagepilot.errors.recovered",
		metric.WithDescription("Errors recovered by retry or fallback, by type"),
	)
	if err != nil {
		return nil, err
	}

	runCounter, err := meter.Int64Counter(
		"pagepilot.agent.runs",
		metric.WithDescription("Processed messages by outcome and path"),
	)
	if err != nil {
		return nil, err
	}

	runDuration, err := meter.Float64Histogram(
		"pagepilot.agent.run.duration_ms",
		metric.WithDescription("Wall time of a processed message"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &ErrorMetrics{
		errorCounter:    errorCounter,
		recoveryCounter: recoveryCounter,
		runCounter:      runCounter,
		runDuration:     runDuration,
	}, nil
}

// RecordErrorMetric classifies err and increments the error counter.
func (em *ErrorMetrics) RecordErrorMetric(ctx context.Context, err error, component string) {
	if em == nil || err == nil {
		return
	}
	ae := errors.AsAgentError(err)
	em.errorCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String(AttrErrorType, string(ae.Type)),
			attribute.String(AttrComponent, component),
			attribute.String(AttrErrorRecoverable, strconv.FormatBool(ae.Recoverable)),
		),
	)
}

// RecordRecovery counts an error of type t that was retried or replaced by
// a fallback successfully.
func (em *ErrorMetrics) RecordRecovery(ctx context.Context, t errors.Type) {
	if em == nil {
		return
	}
	em.recoveryCounter.Add(ctx, 1,
		metric.WithAttributes(attribute.String(AttrErrorType, string(t))),
	)
}

// RecordRun counts one processed message and its duration.
func (em *ErrorMetrics) RecordRun(ctx context.Context, path, outcome string, elapsed time.Duration) {
	if em == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String(AttrRunPath, path),
		attribute.String(AttrRunOutcome, outcome),
	)
	em.runCounter.Add(ctx, 1, attrs)
	em.runDuration.Record(ctx, float64(elapsed.Microseconds())/1000, attrs)
}
