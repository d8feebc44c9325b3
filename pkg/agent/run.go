// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/jllopis/pagepilot/pkg/core"
	"github.com/jllopis/pagepilot/pkg/errors"
	"github.com/jllopis/pagepilot/pkg/i18n"
	"github.com/jllopis/pagepilot/pkg/intent"
	"github.com/jllopis/pagepilot/pkg/llm"
	"github.com/jllopis/pagepilot/pkg/planner"
	"github.com/jllopis/pagepilot/pkg/resilience"
	"github.com/jllopis/pagepilot/pkg/telemetry"
	"github.com/jllopis/pagepilot/pkg/tools"
)

// run holds the state of one ProcessMessage call. It is confined to the run
// goroutine.
type run struct {
	c       *Controller
	out     chan<- Event
	log     *slog.Logger
	path    string
	outcome string
}

func (r *run) emit(ev Event) {
	ev.Timestamp = r.c.now()
	r.out <- ev
}

// message emits the final reply of the run and records it in the history.
func (r *run) message(ctx context.Context, content string) {
	if filtered := r.c.guard.FilterOutput(context.WithoutCancel(ctx), content); filtered.Modified {
		r.log.InfoContext(ctx, "agent.guardrail.redacted", slog.Int("redactions", len(filtered.Redactions)))
		content = filtered.Content
	}
	r.emit(Event{Type: EventMessage, Content: content})
	r.c.remember(ctx, core.RoleAssistant, content)
}

func (r *run) fail(ctx context.Context, ae *errors.AgentError) {
	r.outcome = telemetry.OutcomeFailed
	r.c.metrics.RecordErrorMetric(context.WithoutCancel(ctx), ae, "agent")
	r.log.ErrorContext(ctx, "agent.run.error",
		slog.String("type", string(ae.Type)),
		slog.String("error", ae.Error()),
	)
	localized := r.c.handler.Localize(ae.Type, ae.Suggestions...)
	r.emit(Event{Type: EventError, Content: r.c.handler.FormatError(localized), Error: localized})
}

func (r *run) handle(ctx context.Context, message string) error {
	c := r.c
	span := trace.SpanFromContext(ctx)

	r.emit(Event{Type: EventThinking, Content: c.text(i18n.KeyThinking)})
	actx := c.contexts.BuildContext(message)
	history := c.contexts.RecentHistory(c.historyTurns)
	span.SetAttributes(telemetry.ContextAttributes(len(actx.ChatHistory), len(actx.Memories), actx.HasPage())...)

	in, err := c.analyzer.AnalyzeIntent(ctx, message, history)
	if c.analyzer.IsStopCommand(message) {
		r.path = pathStop
		r.outcome = telemetry.OutcomeAborted
		c.Abort()
		c.remember(ctx, core.RoleUser, message)
		r.message(ctx, c.text(i18n.KeyCancelled))
		return nil
	}
	if res := c.guard.CheckInput(ctx, message); res.Blocked {
		r.path = pathBlocked
		r.outcome = telemetry.OutcomeBlocked
		r.log.WarnContext(ctx, "agent.guardrail.blocked",
			slog.String("guardrail", res.GuardrailID),
			slog.String("reason", res.Reason),
			slog.Float64("confidence", res.Confidence),
		)
		r.emit(Event{Type: EventMessage, Content: c.text(i18n.KeyBlocked)})
		return nil
	}
	if err != nil {
		return errors.New(errors.TypeUnknown, "intent analysis failed", err)
	}
	span.SetAttributes(telemetry.IntentAttributes(string(in.Type), in.Action, in.Confidence)...)
	r.log.DebugContext(ctx, "agent.intent",
		slog.String("type", string(in.Type)),
		slog.String("action", in.Action),
		slog.Float64("confidence", in.Confidence),
	)
	c.remember(ctx, core.RoleUser, message)

	if in.Type == core.IntentCommand {
		handled, err := r.command(ctx, in, actx, message)
		if err != nil || handled {
			return err
		}
	}
	return r.chat(ctx, message, history)
}

// command runs the tool the intent resolves to. It reports false when no
// registered tool matches so the message is answered conversationally.
func (r *run) command(ctx context.Context, in core.Intent, actx *core.AgentContext, message string) (bool, error) {
	c := r.c
	tool, ok := c.registry.FindByIntent(in)
	if !ok {
		r.log.DebugContext(ctx, "agent.tool.unresolved", slog.String("action", in.Action))
		return false, nil
	}
	r.path = pathCommand

	if missing := tools.CheckRequirement(tool, actx); missing != nil {
		r.outcome = telemetry.OutcomeFailed
		c.metrics.RecordErrorMetric(ctx, missing, "tools")
		r.log.InfoContext(ctx, "agent.tool.context_unavailable",
			slog.String("tool", string(tool.Name)),
			slog.String("requires", tool.Requires.String()),
		)
		localized := c.handler.Localize(missing.Type)
		text := localized.Message
		if tool.Requires == tools.RequiresPost {
			text = c.text(i18n.KeyNoPost)
		}
		r.message(ctx, c.handler.Format(text, localized.Suggestions))
		return true, nil
	}

	in.Parameters = backfill(tool, in, actx, message)
	plan := c.engine.CreatePlan(in, actx)
	if plan.Empty() {
		return false, nil
	}
	trace.SpanFromContext(ctx).SetAttributes(telemetry.PlanAttributes(plan.ID, len(plan.Steps))...)

	c.transition(StatusExecuting)
	steps, err := c.engine.Execute(ctx, plan, actx)
	if err != nil {
		return true, err
	}

	var final *planner.Step
	for step := range steps {
		switch {
		case step.Status == planner.StatusRunning:
			call := tools.Call{Tool: step.Tool, Parameters: step.Parameters, CallID: step.CallID}
			r.emit(Event{Type: EventToolCall, Content: c.text(i18n.KeyRunningTool, step.Tool), ToolCall: &call})
		case step.Status.Terminal():
			res := step.Result
			r.emit(Event{Type: EventToolResult, ToolResult: &res})
			s := step
			final = &s
		}
	}

	switch {
	case final == nil || (ctx.Err() != nil && !final.Result.Success):
		r.outcome = telemetry.OutcomeAborted
		r.message(ctx, c.text(i18n.KeyCancelled))
	case final.Result.Success:
		r.message(ctx, displayResult(final.Result))
	default:
		r.outcome = telemetry.OutcomeFailed
		res := final.Result
		c.metrics.RecordErrorMetric(ctx, errors.New(errors.ClassifyMessage(res.Error), res.Error, nil), "tools")
		r.message(ctx, c.handler.Format(res.Error, res.Suggestions))
	}
	return true, nil
}

func (r *run) chat(ctx context.Context, message string, history []core.ChatMessage) error {
	c := r.c
	r.path = pathChat
	req := llm.ChatRequest{
		Message:        message,
		Context:        c.contexts.BuildContextString(message),
		Model:          c.model,
		OutputLanguage: c.language,
		History:        history,
	}

	var lastErr error
	rc := c.retry
	onRetry := rc.OnRetry
	rc.OnRetry = func(attempt int, err error, delay time.Duration) {
		lastErr = err
		r.log.WarnContext(ctx, "agent.chat.retry",
			slog.Int("attempt", attempt),
			slog.Duration("delay", delay),
			slog.String("error", err.Error()),
		)
		if onRetry != nil {
			onRetry(attempt, err, delay)
		}
	}

	fellBack := false
	greeting := resilience.FallbackFunc[string](func(ctx context.Context, err error) (string, error) {
		fellBack = true
		c.metrics.RecordErrorMetric(context.WithoutCancel(ctx), err, "llm")
		r.log.WarnContext(ctx, "agent.chat.fallback", slog.String("error", err.Error()))
		return c.text(i18n.KeyGreeting), nil
	})
	canGreet := func(err error) bool {
		return ctx.Err() == nil && !errors.Is(err, context.Canceled) && intent.IsGreeting(message)
	}

	reply, err := resilience.WithFallback(ctx, func(ctx context.Context) (string, error) {
		return resilience.WithRetry(ctx, rc, func(ctx context.Context) (string, error) {
			if c.breaker != nil {
				return resilience.WithCircuitBreaker(ctx, c.breaker, r.callChatter(req))
			}
			return r.callChatter(req)(ctx)
		})
	}, greeting, canGreet)
	if err == nil {
		if lastErr != nil && !fellBack {
			c.metrics.RecordRecovery(ctx, errors.Classify(lastErr))
		}
		r.message(ctx, reply)
		return nil
	}

	c.metrics.RecordErrorMetric(context.WithoutCancel(ctx), err, "llm")
	if errors.Is(err, context.Canceled) || ctx.Err() != nil {
		r.outcome = telemetry.OutcomeAborted
		r.message(ctx, c.text(i18n.KeyCancelled))
		return nil
	}
	r.outcome = telemetry.OutcomeFailed
	r.log.WarnContext(ctx, "agent.chat.error", slog.String("error", err.Error()))
	r.message(ctx, rawErrorText(err))
	return nil
}

func (r *run) callChatter(req llm.ChatRequest) func(context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		if sc, ok := r.c.chatter.(llm.StreamingChatter); ok {
			filterCtx := context.WithoutCancel(ctx)
			return sc.ChatStream(ctx, req, func(text string) {
				r.emit(Event{Type: EventMessage, Content: r.c.guard.FilterOutput(filterCtx, text).Content})
			})
		}
		return r.c.chatter.Chat(ctx, req)
	}
}

// backfill copies the intent parameters and fills declared parameters the
// user left out from the current context.
func backfill(tool tools.Tool, in core.Intent, actx *core.AgentContext, message string) map[string]any {
	params := make(map[string]any, len(in.Parameters)+2)
	for k, v := range in.Parameters {
		params[k] = v
	}
	fill := func(name string, value any) {
		if _, declared := tool.Parameter(name); !declared {
			return
		}
		if current, ok := params[name]; ok && current != nil && current != "" {
			return
		}
		params[name] = value
	}

	switch tool.Name {
	case tools.GenerateReply:
		if actx != nil && actx.CurrentPost != nil {
			fill("post", postParam(*actx.CurrentPost))
		}
		if p, ok := actx.ActivePersona(); ok {
			fill("persona", personaParam(p))
		}
	case tools.Summarize, tools.ExtractData:
		switch {
		case actx.HasSelection():
			fill("content", actx.Selection)
		case actx.HasPage():
			fill("content", actx.Page.Content)
		}
	case tools.SearchMemory:
		fill("query", message)
	}
	return params
}

func postParam(p core.Post) map[string]any {
	return map[string]any{
		"id":       p.ID,
		"author":   p.Author,
		"content":  p.Content,
		"platform": p.Platform,
		"url":      p.URL,
	}
}

func personaParam(p core.Persona) map[string]any {
	return map[string]any{
		"id":          p.ID,
		"name":        p.Name,
		"description": p.Description,
		"tone":        p.Tone,
	}
}

// displayResult renders a successful tool result for the user.
func displayResult(res tools.Result) string {
	if res.DisplayText != "" {
		return res.DisplayText
	}
	raw, err := json.MarshalIndent(res.Data, "", "  ")
	if err != nil {
		return fmt.Sprint(res.Data)
	}
	return string(raw)
}

// rawErrorText returns the underlying failure text without the taxonomy
// prefix.
func rawErrorText(err error) string {
	var ae *errors.AgentError
	if errors.As(err, &ae) {
		if ae.Err != nil {
			return ae.Err.Error()
		}
		return ae.Message
	}
	return err.Error()
}
