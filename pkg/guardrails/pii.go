// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package guardrails

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// PIIMode determines how personal data is replaced.
type PIIMode int

const (
	// PIIMask replaces matches with a placeholder such as "[EMAIL]".
	PIIMask PIIMode = iota
	// PIIRedact removes matches.
	PIIRedact
)

// ParsePIIMode maps "mask" and "redact" to a mode. "off" and "" report
// false.
func ParsePIIMode(s string) (PIIMode, bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "off", "none":
		return PIIMask, false, nil
	case "mask":
		return PIIMask, true, nil
	case "redact":
		return PIIRedact, true, nil
	default:
		return PIIMask, false, fmt.Errorf("unknown pii mode %q", s)
	}
}

// PIIType categorizes personal data.
type PIIType string

const (
	PIITypeEmail      PIIType = "email"
	PIITypePhone      PIIType = "phone"
	PIITypeSSN        PIIType = "ssn"
	PIITypeCreditCard PIIType = "credit_card"
	PIITypeIPAddress  PIIType = "ip_address"
)

type piiPattern struct {
	piiType PIIType
	pattern *regexp.Regexp
	mask    string
}

// Order matters: card numbers and SSNs before phone numbers.
var defaultPIIPatterns = []piiPattern{
	{PIITypeCreditCard, regexp.MustCompile(`\b[0-9]{4}[-\s]?[0-9]{4}[-\s]?[0-9]{4}[-\s]?[0-9]{4}\b`), "[CREDIT_CARD]"},
	{PIITypeSSN, regexp.MustCompile(`\b[0-9]{3}-[0-9]{2}-[0-9]{4}\b`), "[SSN]"},
	{PIITypeEmail, regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`), "[EMAIL]"},
	{PIITypeIPAddress, regexp.MustCompile(`\b(?:(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.){3}(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\b`), "[IP_ADDRESS]"},
	{PIITypePhone, regexp.MustCompile(`(?:\+?1[-.\s]?)?\(?[0-9]{3}\)?[-.\s][0-9]{3}[-.\s][0-9]{4}\b`), "[PHONE]"},
}

// PIIFilter masks or removes personal data.
type PIIFilter struct {
	mode    PIIMode
	enabled map[PIIType]bool
}

// PIIFilterOption configures the filter.
type PIIFilterOption func(*PIIFilter)

// NewPIIFilter creates a filter covering every built-in type.
func NewPIIFilter(mode PIIMode, opts ...PIIFilterOption) *PIIFilter {
	f := &PIIFilter{mode: mode, enabled: make(map[PIIType]bool)}
	for _, p := range defaultPIIPatterns {
		f.enabled[p.piiType] = true
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// WithPIITypes restricts filtering to types.
func WithPIITypes(types ...PIIType) PIIFilterOption {
	return func(f *PIIFilter) {
		for k := range f.enabled {
			f.enabled[k] = false
		}
		for _, t := range types {
			f.enabled[t] = true
		}
	}
}

// ID returns "pii-filter".
func (f *PIIFilter) ID() string { return "pii-filter" }

// FilterOutput replaces every enabled match in output.
func (f *PIIFilter) FilterOutput(ctx context.Context, output string) FilterResult {
	result := FilterResult{Content: output}
	if output == "" {
		return result
	}
	for _, p := range defaultPIIPatterns {
		if !f.enabled[p.piiType] {
			continue
		}
		if ctx.Err() != nil {
			return result
		}
		matches := p.pattern.FindAllStringIndex(result.Content, -1)
		// Replace back to front so earlier offsets stay valid.
		for i := len(matches) - 1; i >= 0; i-- {
			start, end := matches[i][0], matches[i][1]
			replacement := p.mask
			if f.mode == PIIRedact {
				replacement = ""
			}
			result.Redactions = append(result.Redactions, Redaction{
				Type:        string(p.piiType),
				Replacement: replacement,
				Position:    start,
			})
			result.Content = result.Content[:start] + replacement + result.Content[end:]
			result.Modified = true
		}
	}
	return result
}

// WithPIIFilter adds a PIIFilter as output filter.
func WithPIIFilter(mode PIIMode, opts ...PIIFilterOption) Option {
	return WithOutputFilter(NewPIIFilter(mode, opts...))
}
