// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jllopis/pagepilot/pkg/core"
	"github.com/jllopis/pagepilot/pkg/errors"
	"github.com/jllopis/pagepilot/pkg/resilience"
	"github.com/jllopis/pagepilot/pkg/tools"
)

const (
	DefaultStepTimeout = 30 * time.Second
	DefaultStepDelay   = 100 * time.Millisecond

	// estimatePerStep feeds Plan.EstimatedDuration.
	estimatePerStep = 2 * time.Second
)

// ErrAlreadyExecuting is returned by Execute while a run is in flight.
var ErrAlreadyExecuting = errors.New(errors.TypeToolExecutionFailed, "engine is already executing a plan", nil)

// FailurePolicy decides what happens to dependents of a failed step.
type FailurePolicy int

const (
	// ContinueOnFailure runs every step regardless of upstream outcomes.
	ContinueOnFailure FailurePolicy = iota
	// SkipDependents marks steps with a failed or skipped dependency as skipped.
	SkipDependents
)

// ParseFailurePolicy maps "continue" and "skip_dependents".
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "continue":
		return ContinueOnFailure, nil
	case "skip_dependents", "skip":
		return SkipDependents, nil
	default:
		return ContinueOnFailure, fmt.Errorf("unknown failure policy %q", s)
	}
}

// ToolRunner resolves and executes tools. *tools.Registry implements it.
type ToolRunner interface {
	FindByIntent(intent core.Intent) (tools.Tool, bool)
	Execute(ctx context.Context, call tools.Call, actx *core.AgentContext) tools.Result
}

// callResolver is implemented by runners that can report the parameters a
// call will run with, such as *tools.Registry.
type callResolver interface {
	Resolve(call tools.Call) tools.Call
}

// Engine plans and runs tool steps. One run may be in flight at a time.
type Engine struct {
	runner      ToolRunner
	stepTimeout time.Duration
	stepDelay   time.Duration
	policy      FailurePolicy
	audit       AuditStore
	progress    ProgressFunc
	logger      *slog.Logger
	tracer      trace.Tracer

	mu        sync.Mutex
	executing bool
	aborted   bool
	cancel    context.CancelFunc
	steps     []Step
}

// Option configures an Engine.
type Option func(*Engine)

// WithStepTimeout bounds each step. Zero disables the bound.
func WithStepTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d >= 0 {
			e.stepTimeout = d
		}
	}
}

// WithStepDelay sets the pause between consecutive steps.
func WithStepDelay(d time.Duration) Option {
	return func(e *Engine) {
		if d >= 0 {
			e.stepDelay = d
		}
	}
}

// WithFailurePolicy sets how dependents of failed steps are handled.
func WithFailurePolicy(p FailurePolicy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithAuditStore records every step transition in store.
func WithAuditStore(store AuditStore) Option {
	return func(e *Engine) { e.audit = store }
}

// WithProgress installs a progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(e *Engine) { e.progress = fn }
}

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an engine that executes steps through runner.
func NewEngine(runner ToolRunner, opts ...Option) *Engine {
	e := &Engine{
		runner:      runner,
		stepTimeout: DefaultStepTimeout,
		stepDelay:   DefaultStepDelay,
		logger:      slog.Default(),
		tracer:      otel.Tracer("pagepilot/planner"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CreatePlan builds a single-step plan when the intent resolves to a tool,
// otherwise an empty plan meaning no tool is needed.
func (e *Engine) CreatePlan(intent core.Intent, _ *core.AgentContext) *Plan {
	plan := &Plan{ID: uuid.NewString(), CreatedAt: time.Now()}
	tool, ok := e.runner.FindByIntent(intent)
	if !ok {
		return plan
	}
	params := make(map[string]any, len(intent.Parameters))
	for k, v := range intent.Parameters {
		params[k] = v
	}
	description := tool.Description
	if description == "" {
		description = "Run " + string(tool.Name)
	}
	plan.Steps = []PlannedStep{{
		ID:          uuid.NewString(),
		Tool:        tool.Name,
		Parameters:  params,
		Description: description,
	}}
	plan.EstimatedDuration = estimatePerStep
	return plan
}

// Execute validates the ordering of plan and starts a runner goroutine.
// The returned channel carries a running and a terminal snapshot per
// executed step (one snapshot for skipped steps) and is closed when the run
// ends. Ordering errors are returned before any step runs.
func (e *Engine) Execute(ctx context.Context, plan *Plan, actx *core.AgentContext) (<-chan Step, error) {
	if plan == nil {
		return nil, fmt.Errorf("plan is nil")
	}
	ordered, err := Order(plan.Steps)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	if e.executing {
		e.mu.Unlock()
		return nil, ErrAlreadyExecuting
	}
	runCtx, cancel := context.WithCancel(ctx)
	e.executing = true
	e.aborted = false
	e.cancel = cancel
	e.steps = nil
	e.mu.Unlock()

	out := make(chan Step, 2*len(ordered))
	go e.run(runCtx, cancel, plan, ordered, actx, out)
	return out, nil
}

// Abort stops scheduling further steps and cancels the run context.
// A step already in flight is not interrupted; its executor observes the
// cancelled context cooperatively.
func (e *Engine) Abort() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.aborted = true
	if e.cancel != nil {
		e.cancel()
	}
}

// IsExecuting reports whether a run loop is active.
func (e *Engine) IsExecuting() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.executing
}

// Steps returns the latest snapshot of each step of the last run, in
// execution order.
func (e *Engine) Steps() []Step {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Step(nil), e.steps...)
}

func (e *Engine) shouldStop(ctx context.Context) bool {
	e.mu.Lock()
	aborted := e.aborted
	e.mu.Unlock()
	return aborted || ctx.Err() != nil
}

func (e *Engine) run(ctx context.Context, cancel context.CancelFunc, plan *Plan, ordered []PlannedStep, actx *core.AgentContext, out chan<- Step) {
	runID, _ := core.RunID(ctx)
	total := len(ordered)
	log := e.logger.With(slog.String("plan_id", plan.ID), slog.String("run_id", runID))

	defer func() {
		cancel()
		e.mu.Lock()
		e.executing = false
		e.cancel = nil
		e.mu.Unlock()
		close(out)
	}()

	log.Info("planner.run.start", slog.Int("steps", total))
	e.notify(Progress{Type: ProgressPlanStarted, Message: fmt.Sprintf("Executing %d step(s)", total), TotalSteps: total})

	status := make(map[string]StepStatus, total)
	for i, planned := range ordered {
		if e.shouldStop(ctx) {
			log.Info("planner.run.aborted", slog.Int("completed_steps", i))
			e.notify(Progress{Type: ProgressPlanAborted, Message: "Execution aborted", StepIndex: i, TotalSteps: total})
			return
		}

		if e.policy == SkipDependents {
			if dep, blocked := blockedBy(planned, status); blocked {
				now := time.Now()
				skipped := Step{
					StepID:      planned.ID,
					Tool:        planned.Tool,
					Status:      StatusSkipped,
					Thought:     planned.Description,
					Observation: fmt.Sprintf("skipped because step %s did not complete", dep),
					StartedAt:   now,
					CompletedAt: now,
				}
				status[planned.ID] = StatusSkipped
				e.emit(ctx, plan.ID, runID, skipped, out)
				log.Info("planner.step.skipped", slog.String("step_id", planned.ID), slog.String("blocked_by", dep))
				e.notify(Progress{Type: ProgressStepSkipped, Message: skipped.Observation, StepIndex: i + 1, TotalSteps: total, ToolName: string(planned.Tool)})
				continue
			}
		}

		final := e.runStep(ctx, plan.ID, runID, planned, i, total, actx, out)
		status[planned.ID] = final.Status

		if i < total-1 && e.stepDelay > 0 {
			timer := time.NewTimer(e.stepDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
			case <-timer.C:
			}
		}
	}

	log.Info("planner.run.complete", slog.Int("steps", total))
	e.notify(Progress{Type: ProgressPlanCompleted, Message: "Execution finished", TotalSteps: total})
}

func (e *Engine) runStep(ctx context.Context, planID, runID string, planned PlannedStep, index, total int, actx *core.AgentContext, out chan<- Step) Step {
	ctx, span := e.tracer.Start(ctx, "Planner.Step", trace.WithAttributes(
		attribute.String("plan.id", planID),
		attribute.String("step.id", planned.ID),
		attribute.String("tool.name", string(planned.Tool)),
	))
	defer span.End()

	call := tools.Call{Tool: planned.Tool, Parameters: planned.Parameters, CallID: uuid.NewString()}
	if r, ok := e.runner.(callResolver); ok {
		call = r.Resolve(call)
	}
	step := Step{
		StepID:     planned.ID,
		Tool:       planned.Tool,
		CallID:     call.CallID,
		Parameters: call.Parameters,
		Status:     StatusRunning,
		Thought:    planned.Description,
		Action:     describeAction(planned),
		StartedAt:  time.Now(),
	}
	e.emit(ctx, planID, runID, step, out)
	e.logger.Debug("planner.step.start", slog.String("step_id", planned.ID), slog.String("tool", string(planned.Tool)))
	e.notify(Progress{Type: ProgressStepStarted, Message: "Running " + string(planned.Tool), StepIndex: index + 1, TotalSteps: total, ToolName: string(planned.Tool)})

	res, err := resilience.WithTimeoutResult(ctx, resilience.TimeoutConfig{Duration: e.stepTimeout},
		func(ctx context.Context) (tools.Result, error) {
			return e.runner.Execute(ctx, call, actx), nil
		})
	if err != nil {
		res = tools.Failure(stepErrorText(planned.Tool, e.stepTimeout, err))
	}

	step.Result = res
	step.CompletedAt = time.Now()
	if res.Success {
		step.Status = StatusCompleted
		step.Observation = observe(res)
		e.logger.Debug("planner.step.complete", slog.String("step_id", planned.ID))
		e.notify(Progress{Type: ProgressStepCompleted, Message: fmt.Sprintf("%s completed", planned.Tool), StepIndex: index + 1, TotalSteps: total, ToolName: string(planned.Tool)})
	} else {
		step.Status = StatusFailed
		step.Error = res.Error
		span.SetStatus(codes.Error, res.Error)
		e.logger.Warn("planner.step.failed",
			slog.String("step_id", planned.ID),
			slog.String("tool", string(planned.Tool)),
			slog.String("error", res.Error),
		)
		e.notify(Progress{Type: ProgressStepFailed, Message: res.Error, StepIndex: index + 1, TotalSteps: total, ToolName: string(planned.Tool)})
	}
	e.emit(ctx, planID, runID, step, out)
	return step
}

// emit records the snapshot, forwards it to the audit store and the channel.
// The channel holds two snapshots per step, so sends never block.
func (e *Engine) emit(ctx context.Context, planID, runID string, step Step, out chan<- Step) {
	e.mu.Lock()
	replaced := false
	for i := range e.steps {
		if e.steps[i].StepID == step.StepID {
			e.steps[i] = step
			replaced = true
			break
		}
	}
	if !replaced {
		e.steps = append(e.steps, step)
	}
	e.mu.Unlock()

	if e.audit != nil {
		record := AuditRecord{
			PlanID:      planID,
			RunID:       runID,
			StepID:      step.StepID,
			Tool:        string(step.Tool),
			Status:      step.Status,
			Error:       step.Error,
			StartedAt:   step.StartedAt,
			CompletedAt: step.CompletedAt,
		}
		if step.Status.Terminal() {
			record.Output = step.Result.Data
		}
		if err := e.audit.Record(context.WithoutCancel(ctx), record); err != nil {
			e.logger.Warn("planner.audit.error", slog.String("step_id", step.StepID), slog.String("error", err.Error()))
		}
	}
	out <- step
}

func (e *Engine) notify(p Progress) {
	if e.progress != nil {
		e.progress(p)
	}
}

func blockedBy(step PlannedStep, status map[string]StepStatus) (string, bool) {
	for _, dep := range step.DependsOn {
		if s := status[dep]; s == StatusFailed || s == StatusSkipped {
			return dep, true
		}
	}
	return "", false
}

func describeAction(step PlannedStep) string {
	if len(step.Parameters) == 0 {
		return string(step.Tool)
	}
	raw, err := json.Marshal(step.Parameters)
	if err != nil {
		return string(step.Tool)
	}
	return string(step.Tool) + " " + string(raw)
}

func observe(res tools.Result) string {
	if res.DisplayText != "" {
		return res.DisplayText
	}
	raw, err := json.Marshal(res.Data)
	if err != nil {
		return fmt.Sprint(res.Data)
	}
	return string(raw)
}

func stepErrorText(tool tools.ID, timeout time.Duration, err error) string {
	switch errors.Classify(err) {
	case errors.TypeTimeout:
		return fmt.Sprintf("%s timed out after %s", tool, timeout)
	case errors.TypeAborted:
		return fmt.Sprintf("%s was cancelled", tool)
	default:
		return err.Error()
	}
}
