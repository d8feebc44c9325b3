// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

// Package guardrails screens what flows in and out of the agent.
//
// Guardrails run at two points of a turn:
//   - Input: before a user message is interpreted (prompt injection).
//   - Output: before a reply reaches the user (personal data masking).
//
// Example usage:
//
//	guard := guardrails.New(
//	    guardrails.WithPromptInjectionDetector(),
//	    guardrails.WithPIIFilter(guardrails.PIIMask),
//	)
//
//	if res := guard.CheckInput(ctx, message); res.Blocked {
//	    return res.Reason
//	}
//	reply = guard.FilterOutput(ctx, reply).Content
package guardrails

import (
	"context"
)

// CheckResult is the outcome of an input check.
type CheckResult struct {
	// Blocked indicates the content must not proceed.
	Blocked bool

	// Reason explains the block. Empty when not blocked.
	Reason string

	// GuardrailID identifies the checker that blocked.
	GuardrailID string

	// Confidence of the detection in [0,1].
	Confidence float64
}

// FilterResult is the outcome of output filtering.
type FilterResult struct {
	Content    string
	Modified   bool
	Redactions []Redaction
}

// Redaction describes one replaced span. The original text is never kept.
type Redaction struct {
	Type        string
	Replacement string
	Position    int
}

// InputChecker validates content before it is processed.
type InputChecker interface {
	CheckInput(ctx context.Context, input string) CheckResult
	ID() string
}

// OutputFilter rewrites content before it is shown.
type OutputFilter interface {
	FilterOutput(ctx context.Context, output string) FilterResult
	ID() string
}

// Guardrails runs input checkers and output filters in registration order.
// It is immutable after New and safe for concurrent use.
type Guardrails struct {
	inputCheckers []InputChecker
	outputFilters []OutputFilter
	failOpen      bool
}

// Option configures Guardrails.
type Option func(*Guardrails)

// New creates Guardrails with the given options.
func New(opts ...Option) *Guardrails {
	g := &Guardrails{}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// WithInputChecker adds an input checker.
func WithInputChecker(checker InputChecker) Option {
	return func(g *Guardrails) {
		g.inputCheckers = append(g.inputCheckers, checker)
	}
}

// WithOutputFilter adds an output filter.
func WithOutputFilter(filter OutputFilter) Option {
	return func(g *Guardrails) {
		g.outputFilters = append(g.outputFilters, filter)
	}
}

// WithFailOpen lets input through when the check is cancelled. The default
// blocks.
func WithFailOpen(failOpen bool) Option {
	return func(g *Guardrails) {
		g.failOpen = failOpen
	}
}

// Empty reports whether no checker or filter is configured. A nil
// Guardrails is empty.
func (g *Guardrails) Empty() bool {
	return g == nil || (len(g.inputCheckers) == 0 && len(g.outputFilters) == 0)
}

// CheckInput returns the first blocking result, or a zero CheckResult.
func (g *Guardrails) CheckInput(ctx context.Context, input string) CheckResult {
	if g == nil {
		return CheckResult{}
	}
	for _, checker := range g.inputCheckers {
		if ctx.Err() != nil {
			if g.failOpen {
				return CheckResult{}
			}
			return CheckResult{Blocked: true, Reason: "guardrail check cancelled", GuardrailID: "system"}
		}
		if res := checker.CheckInput(ctx, input); res.Blocked {
			res.GuardrailID = checker.ID()
			return res
		}
	}
	return CheckResult{}
}

// FilterOutput chains the output filters, each one receiving the previous
// result.
func (g *Guardrails) FilterOutput(ctx context.Context, output string) FilterResult {
	result := FilterResult{Content: output}
	if g == nil {
		return result
	}
	for _, filter := range g.outputFilters {
		if ctx.Err() != nil {
			return result
		}
		res := filter.FilterOutput(ctx, result.Content)
		if res.Modified {
			result.Content = res.Content
			result.Modified = true
			result.Redactions = append(result.Redactions, res.Redactions...)
		}
	}
	return result
}
