// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

// Package agent coordinates a single user utterance: it assembles context,
// asks the intent analyzer what the user wants, runs a tool through the
// planner or delegates to the chat collaborator, and streams typed events.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jllopis/pagepilot/pkg/agentcontext"
	"github.com/jllopis/pagepilot/pkg/core"
	"github.com/jllopis/pagepilot/pkg/errors"
	"github.com/jllopis/pagepilot/pkg/guardrails"
	"github.com/jllopis/pagepilot/pkg/i18n"
	"github.com/jllopis/pagepilot/pkg/intent"
	"github.com/jllopis/pagepilot/pkg/llm"
	"github.com/jllopis/pagepilot/pkg/memory"
	"github.com/jllopis/pagepilot/pkg/planner"
	"github.com/jllopis/pagepilot/pkg/resilience"
	"github.com/jllopis/pagepilot/pkg/telemetry"
	"github.com/jllopis/pagepilot/pkg/tools"
)

const (
	DefaultEventBuffer  = 32
	DefaultHistoryTurns = 10
)

// ErrBusy is returned by ProcessMessage while another message is in flight.
var ErrBusy = errors.New(errors.TypeUnknown, "agent is already processing a message", nil).
	WithRecoverable(true)

const (
	pathStop    = "stop"
	pathCommand = "command"
	pathChat    = "chat"
	pathBlocked = "blocked"
)

// Controller processes one message at a time. Call Abort before starting a
// new message if the previous one should stop early.
type Controller struct {
	contexts *agentcontext.Manager
	analyzer intent.Analyzer
	registry *tools.Registry
	chatter  llm.Chatter
	engine   *planner.Engine

	model        string
	language     string
	eventBuffer  int
	historyTurns int
	retry        resilience.RetryConfig
	breaker      *resilience.CircuitBreaker
	guard        *guardrails.Guardrails
	handler      *errors.Handler
	metrics      *telemetry.ErrorMetrics
	transcript   memory.Transcript
	sessionID    string
	engineOpts   []planner.Option
	logger       *slog.Logger
	tracer       trace.Tracer
	now          func() time.Time

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	state   State
}

// Option configures a Controller.
type Option func(*Controller)

// WithModel sets the model id passed to the chat collaborator.
func WithModel(model string) Option {
	return func(c *Controller) { c.model = model }
}

// WithOutputLanguage sets the language of replies and user-facing errors.
func WithOutputLanguage(lang string) Option {
	return func(c *Controller) {
		if lang != "" {
			c.language = lang
		}
	}
}

// WithEventBuffer sets the capacity of the event channel.
func WithEventBuffer(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.eventBuffer = n
		}
	}
}

// WithHistoryTurns sets how many recent messages are sent to the chat
// collaborator.
func WithHistoryTurns(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.historyTurns = n
		}
	}
}

// WithProgress forwards planner progress notifications to fn.
func WithProgress(fn planner.ProgressFunc) Option {
	return func(c *Controller) {
		if fn != nil {
			c.engineOpts = append(c.engineOpts, planner.WithProgress(fn))
		}
	}
}

// WithEngineOptions configures the planner engine owned by the controller.
func WithEngineOptions(opts ...planner.Option) Option {
	return func(c *Controller) {
		c.engineOpts = append(c.engineOpts, opts...)
	}
}

// WithRetryConfig sets the retry policy for chat collaborator calls.
func WithRetryConfig(rc resilience.RetryConfig) Option {
	return func(c *Controller) { c.retry = rc }
}

// WithChatBreaker guards chat collaborator calls with a circuit breaker.
func WithChatBreaker(cb *resilience.CircuitBreaker) Option {
	return func(c *Controller) { c.breaker = cb }
}

// WithErrorHandler sets the handler used to localize user-facing errors.
func WithErrorHandler(h *errors.Handler) Option {
	return func(c *Controller) {
		if h != nil {
			c.handler = h
		}
	}
}

// WithErrorMetrics records error and run metrics.
func WithErrorMetrics(m *telemetry.ErrorMetrics) Option {
	return func(c *Controller) { c.metrics = m }
}

// WithTranscript persists every user and assistant message under sessionID.
func WithTranscript(t memory.Transcript, sessionID string) Option {
	return func(c *Controller) {
		c.transcript = t
		c.sessionID = sessionID
	}
}

// WithGuardrails screens incoming messages and filters replies.
func WithGuardrails(g *guardrails.Guardrails) Option {
	return func(c *Controller) { c.guard = g }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Controller. The planner engine is built over registry.
func New(contexts *agentcontext.Manager, analyzer intent.Analyzer, registry *tools.Registry, chatter llm.Chatter, opts ...Option) (*Controller, error) {
	switch {
	case contexts == nil:
		return nil, fmt.Errorf("context manager is required")
	case analyzer == nil:
		return nil, fmt.Errorf("intent analyzer is required")
	case registry == nil:
		return nil, fmt.Errorf("tool registry is required")
	case chatter == nil:
		return nil, fmt.Errorf("chat collaborator is required")
	}

	c := &Controller{
		contexts:     contexts,
		analyzer:     analyzer,
		registry:     registry,
		chatter:      chatter,
		language:     "en",
		eventBuffer:  DefaultEventBuffer,
		historyTurns: DefaultHistoryTurns,
		retry:        resilience.DefaultRetryConfig(),
		logger:       slog.Default(),
		tracer:       otel.Tracer("pagepilot/agent"),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.handler == nil {
		c.handler = errors.NewHandler(errors.WithLanguage(c.language))
	}
	c.engine = planner.NewEngine(registry, append([]planner.Option{planner.WithLogger(c.logger)}, c.engineOpts...)...)
	c.state = State{Status: StatusIdle, LastUpdated: c.now()}
	return c, nil
}

// Engine returns the planner engine used for tool runs.
func (c *Controller) Engine() *planner.Engine { return c.engine }

// State returns the current status snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Abort cancels the in-flight run, if any, and stops the planner from
// scheduling further steps. Collaborator calls already issued may still
// complete; their results are discarded.
func (c *Controller) Abort() {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	c.engine.Abort()
}

// ProcessMessage starts handling message and returns its event stream. The
// stream always ends with a single EventDone and is then closed; callers
// must drain it. ErrBusy is returned while another message is in flight.
// ProcessMessage does not cancel a previous run.
func (c *Controller) ProcessMessage(ctx context.Context, message string) (<-chan Event, error) {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	runCtx, cancel := context.WithCancel(ctx)
	runCtx, runID := core.EnsureRunID(runCtx)
	c.running = true
	c.cancel = cancel
	c.setStatusLocked(StatusThinking, runID)
	c.mu.Unlock()

	out := make(chan Event, c.eventBuffer)
	go c.run(runCtx, cancel, runID, message, out)
	return out, nil
}

func (c *Controller) run(ctx context.Context, cancel context.CancelFunc, runID, message string, out chan<- Event) {
	start := c.now()
	ctx, span := c.tracer.Start(ctx, "Agent.ProcessMessage",
		trace.WithAttributes(telemetry.RunAttributes(runID, c.model)...))
	log := c.logger.With(slog.String("run_id", runID))
	log.InfoContext(ctx, "agent.run.start")

	r := &run{c: c, out: out, log: log, path: pathChat, outcome: telemetry.OutcomeCompleted}

	defer func() {
		if p := recover(); p != nil {
			ae := errors.New(errors.TypeUnknown, "agent run panicked", fmt.Errorf("%v", p))
			log.ErrorContext(ctx, "agent.run.panic", slog.Any("panic", p))
			r.fail(ctx, ae)
		}
		if r.outcome == telemetry.OutcomeFailed {
			span.SetStatus(codes.Error, "agent run failed")
		}
		r.emit(Event{Type: EventDone})
		span.End()
		cancel()
		c.metrics.RecordRun(context.WithoutCancel(ctx), r.path, r.outcome, c.now().Sub(start))
		log.InfoContext(ctx, "agent.run.complete",
			slog.String("path", r.path),
			slog.String("outcome", r.outcome),
			slog.Duration("elapsed", c.now().Sub(start)),
		)
		c.finish()
		close(out)
	}()

	if err := r.handle(ctx, message); err != nil {
		r.fail(ctx, errors.AsAgentError(err))
	}
}

func (c *Controller) finish() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setStatusLocked(StatusTerminal, c.state.RunID)
	c.setStatusLocked(StatusIdle, "")
	c.running = false
	c.cancel = nil
}

func (c *Controller) transition(status Status) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setStatusLocked(status, c.state.RunID)
}

func (c *Controller) setStatusLocked(status Status, runID string) {
	c.state = State{Status: status, LastUpdated: c.now(), RunID: runID}
}

func (c *Controller) text(key i18n.Key, args ...any) string {
	return c.handler.Catalog().Message(c.handler.Language(), key, args...)
}

// remember appends a message to the in-process history and, when
// configured, to the persistent transcript.
func (c *Controller) remember(ctx context.Context, role core.Role, content string) {
	if content == "" {
		return
	}
	c.contexts.AddMessage(role, content)
	if c.transcript == nil {
		return
	}
	msg := core.ChatMessage{Role: role, Content: content, CreatedAt: c.now()}
	if err := c.transcript.AppendMessage(context.WithoutCancel(ctx), c.sessionID, msg); err != nil {
		c.logger.WarnContext(ctx, "agent.transcript.error", slog.String("error", err.Error()))
	}
}
