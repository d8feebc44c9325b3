// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/jllopis/pagepilot/pkg/core"
	"github.com/jllopis/pagepilot/pkg/errors"
	"github.com/jllopis/pagepilot/pkg/telemetry"
)

// Registry holds at most one Tool per ID.
type Registry struct {
	mu    sync.RWMutex
	tools map[ID]Tool

	logger     *slog.Logger
	tracer     trace.Tracer
	calls      metric.Int64Counter
	durationMs metric.Float64Histogram
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the registry logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry creates an empty registry. Instruments come from the global
// OpenTelemetry providers.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		tools:  make(map[ID]Tool),
		logger: slog.Default(),
		tracer: otel.Tracer("pagepilot/tools"),
	}
	for _, opt := range opts {
		opt(r)
	}

	meter := otel.Meter("pagepilot/tools")
	calls, err := meter.Int64Counter("pagepilot.tool.calls",
		metric.WithDescription("Tool calls by tool and outcome"))
	if err != nil {
		r.logger.Warn("tools.metrics.init", slog.String("error", err.Error()))
	}
	duration, err := meter.Float64Histogram("pagepilot.tool.duration_ms",
		metric.WithDescription("Tool call latency in milliseconds"),
		metric.WithUnit("ms"))
	if err != nil {
		r.logger.Warn("tools.metrics.init", slog.String("error", err.Error()))
	}
	r.calls = calls
	r.durationMs = duration
	return r
}

// Register adds or fully replaces the tool with the same name.
func (r *Registry) Register(tool Tool) error {
	if !tool.Name.Valid() {
		return errors.New(errors.TypeInvalidParameters,
			fmt.Sprintf("unsupported tool name %q", tool.Name), nil)
	}
	if tool.Executor == nil {
		return errors.New(errors.TypeInvalidParameters,
			fmt.Sprintf("tool %s has no executor", tool.Name), nil)
	}
	tool.Parameters = append([]Parameter(nil), tool.Parameters...)

	r.mu.Lock()
	_, replaced := r.tools[tool.Name]
	r.tools[tool.Name] = tool
	r.mu.Unlock()

	r.logger.Debug("tools.register",
		slog.String("tool", string(tool.Name)),
		slog.Bool("replaced", replaced),
	)
	return nil
}

// Unregister removes a tool. It reports whether the tool was present.
func (r *Registry) Unregister(id ID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.tools[id]
	delete(r.tools, id)
	return ok
}

// Get returns the tool registered under id.
func (r *Registry) Get(id ID) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[id]
	return tool, ok
}

// Resolve returns call with the declared defaults of its tool filled in, the
// parameters Execute hands to the executor. Unknown tools are returned as is.
func (r *Registry) Resolve(call Call) Call {
	if tool, ok := r.Get(call.Tool); ok {
		call.Parameters = applyDefaults(tool, call.Parameters)
	}
	return call
}

// List returns the registered tools sorted by name.
func (r *Registry) List() []Tool {
	r.mu.RLock()
	out := make([]Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		out = append(out, tool)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Execute runs a single call. It never panics and never returns an error:
// lookup, validation, executor errors and panics all become a failed Result.
func (r *Registry) Execute(ctx context.Context, call Call, actx *core.AgentContext) Result {
	if call.CallID == "" {
		call.CallID = uuid.NewString()
	}
	ctx, span := r.tracer.Start(ctx, "Tool.Execute",
		trace.WithAttributes(telemetry.ToolCallAttributes(string(call.Tool), call.CallID)...))
	defer span.End()

	start := time.Now()
	res := r.execute(ctx, call, actx)
	elapsedMs := float64(time.Since(start).Microseconds()) / 1000

	span.SetAttributes(attribute.Bool(telemetry.AttrToolSuccess, res.Success))
	if !res.Success {
		span.SetStatus(codes.Error, res.Error)
	}
	attrs := metric.WithAttributes(
		attribute.String("tool.name", string(call.Tool)),
		attribute.Bool("success", res.Success),
	)
	if r.calls != nil {
		r.calls.Add(ctx, 1, attrs)
	}
	if r.durationMs != nil {
		r.durationMs.Record(ctx, elapsedMs, attrs)
	}

	if res.Success {
		r.logger.Debug("tool.execute.complete",
			slog.String("tool", string(call.Tool)),
			slog.String("tool_call_id", call.CallID),
			slog.Float64("duration_ms", elapsedMs),
		)
	} else {
		r.logger.Warn("tool.execute.error",
			slog.String("tool", string(call.Tool)),
			slog.String("tool_call_id", call.CallID),
			slog.String("error", res.Error),
		)
	}
	return res
}

func (r *Registry) execute(ctx context.Context, call Call, actx *core.AgentContext) Result {
	tool, ok := r.Get(call.Tool)
	if !ok {
		return Failure(fmt.Sprintf("tool %s not found", call.Tool))
	}

	if v := ValidateParameters(tool, call.Parameters); !v.Valid {
		return Failure("invalid parameters: "+strings.Join(v.Errors, "; "), usage(tool))
	}
	params := applyDefaults(tool, call.Parameters)

	res, err := safeExecute(ctx, tool, params, actx)
	if err != nil {
		failure := Failure(err.Error(), res.Suggestions...)
		if ae := errors.AsAgentError(err); ae != nil && len(failure.Suggestions) == 0 {
			failure.Suggestions = ae.Suggestions
		}
		return failure
	}
	return normalize(tool.Name, res)
}

// safeExecute converts an executor panic into an error.
func safeExecute(ctx context.Context, tool Tool, params map[string]any, actx *core.AgentContext) (res Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			res = Result{}
			err = fmt.Errorf("tool %s execution failed: %v", tool.Name, rec)
		}
	}()
	return tool.Executor.Execute(ctx, params, actx)
}

func normalize(name ID, res Result) Result {
	if !res.Success {
		if res.Error == "" {
			res.Error = fmt.Sprintf("tool %s execution failed", name)
		}
		return res
	}
	if res.Data == nil && res.DisplayText == "" {
		return Failure(fmt.Sprintf("%s returned an empty result", name), res.Suggestions...)
	}
	return res
}

func usage(tool Tool) string {
	parts := make([]string, 0, len(tool.Parameters))
	for _, p := range tool.Parameters {
		s := p.Name + " (" + string(p.Type)
		if p.Required {
			s += ", required"
		}
		parts = append(parts, s+")")
	}
	return fmt.Sprintf("%s expects: %s", tool.Name, strings.Join(parts, ", "))
}
