// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package guardrails

import (
	"context"
	"regexp"
)

// PromptInjectionDetector flags messages that try to override the
// assistant's instructions.
type PromptInjectionDetector struct {
	patterns  []*regexp.Regexp
	threshold float64
}

// PromptInjectionOption configures the detector.
type PromptInjectionOption func(*PromptInjectionDetector)

var defaultInjectionPatterns = []string{
	// instruction override
	`(?i)\b(ignore|disregard|forget|override)\s+(all\s+)?(the\s+)?(previous|prior|above|earlier)\s+(instructions?|prompts?|rules?)`,

	// persona hijack
	`(?i)\byou\s+are\s+now\s+(a|an)\s+`,
	`(?i)\bpretend\s+(you\s+are|to\s+be)\s+`,

	// system prompt extraction
	`(?i)\b(what\s+(is|are)|show\s+me|reveal|print|display)\s+your\s+(system\s+)?(prompt|instructions?)`,

	// jailbreaks
	`(?i)\bdo\s+anything\s+now\b`,
	`(?i)\bjailbreak`,
	`(?i)\bbypass\s+(the\s+)?(safety|content|filters?)`,
	`(?i)\b(developer|sudo|admin)\s+mode\b`,

	// chat template delimiters
	`(?i)\[/?INST\]`,
	`(?i)<</?SYS>>`,
	`<\|[a-z_]+\|>`,
}

// NewPromptInjectionDetector creates a detector with the built-in patterns.
// It blocks on any match unless a threshold is set.
func NewPromptInjectionDetector(opts ...PromptInjectionOption) *PromptInjectionDetector {
	d := &PromptInjectionDetector{}
	for _, p := range defaultInjectionPatterns {
		d.patterns = append(d.patterns, regexp.MustCompile(p))
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// WithInjectionPatterns adds patterns. Invalid expressions are ignored.
func WithInjectionPatterns(patterns ...string) PromptInjectionOption {
	return func(d *PromptInjectionDetector) {
		for _, p := range patterns {
			if re, err := regexp.Compile(p); err == nil {
				d.patterns = append(d.patterns, re)
			}
		}
	}
}

// WithInjectionThreshold sets the minimum confidence that blocks.
func WithInjectionThreshold(threshold float64) PromptInjectionOption {
	return func(d *PromptInjectionDetector) {
		if threshold >= 0 && threshold <= 1 {
			d.threshold = threshold
		}
	}
}

// ID returns "prompt-injection".
func (d *PromptInjectionDetector) ID() string { return "prompt-injection" }

// CheckInput scores input by the number of matching patterns: 0.7 for one
// match plus 0.1 per additional match, capped at 1.
func (d *PromptInjectionDetector) CheckInput(ctx context.Context, input string) CheckResult {
	if input == "" {
		return CheckResult{}
	}
	matches := 0
	for _, re := range d.patterns {
		if ctx.Err() != nil {
			return CheckResult{}
		}
		if re.MatchString(input) {
			matches++
		}
	}
	if matches == 0 {
		return CheckResult{}
	}
	confidence := min(0.7+float64(matches-1)*0.1, 1.0)
	if confidence < d.threshold {
		return CheckResult{Confidence: confidence}
	}
	return CheckResult{
		Blocked:     true,
		Reason:      "potential prompt injection detected",
		GuardrailID: d.ID(),
		Confidence:  confidence,
	}
}

// WithPromptInjectionDetector adds a PromptInjectionDetector.
func WithPromptInjectionDetector(opts ...PromptInjectionOption) Option {
	return WithInputChecker(NewPromptInjectionDetector(opts...))
}
