// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package intent

import (
	"context"
	"math"
	"regexp"
	"strings"

	"github.com/jllopis/pagepilot/pkg/core"
)

// DefaultCommandThreshold is the minimum keyword score to treat a message as
// a tool command.
const DefaultCommandThreshold = 0.7

// KeywordAnalyzer classifies messages with weighted keyword matching. It is
// deterministic and needs no model.
type KeywordAnalyzer struct {
	threshold float64
}

// KeywordOption configures a KeywordAnalyzer.
type KeywordOption func(*KeywordAnalyzer)

// WithCommandThreshold overrides DefaultCommandThreshold.
func WithCommandThreshold(t float64) KeywordOption {
	return func(k *KeywordAnalyzer) {
		if t > 0 {
			k.threshold = t
		}
	}
}

// NewKeywordAnalyzer creates a KeywordAnalyzer.
func NewKeywordAnalyzer(opts ...KeywordOption) *KeywordAnalyzer {
	k := &KeywordAnalyzer{threshold: DefaultCommandThreshold}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

var _ Analyzer = (*KeywordAnalyzer)(nil)

// AnalyzeIntent classifies message. Tool cues win over question form, so
// "can you summarize this?" is a summarize command.
func (k *KeywordAnalyzer) AnalyzeIntent(ctx context.Context, message string, _ []core.ChatMessage) (core.Intent, error) {
	if err := ctx.Err(); err != nil {
		return core.Intent{}, err
	}
	in := core.Intent{RawMessage: message, Parameters: map[string]any{}}
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		in.Type = core.IntentChat
		return in, nil
	}

	if action, score := bestAction(trimmed); score >= k.threshold {
		in.Type = core.IntentCommand
		in.Action = action
		in.Confidence = confidence(score)
		extractParameters(&in, trimmed)
		return in, nil
	}

	switch {
	case matchesWhole(trimmed, confirmationWords):
		in.Type = core.IntentConfirmation
		in.Confidence = 0.8
	case isClarification(trimmed):
		in.Type = core.IntentClarification
		in.Confidence = 0.7
	case strings.HasSuffix(trimmed, "?") || questionPattern.MatchString(trimmed):
		in.Type = core.IntentQuery
		in.Confidence = 0.7
	default:
		in.Type = core.IntentChat
		in.Confidence = 0.5
	}
	return in, nil
}

// IsStopCommand reports whether message asks to stop the current run.
func (k *KeywordAnalyzer) IsStopCommand(message string) bool {
	return matchesWhole(message, stopWords)
}

// IsGreeting reports whether message is a bare greeting.
func IsGreeting(message string) bool {
	m := normalize(message)
	for _, g := range greetingWords {
		if m == g || strings.HasPrefix(m, g+" ") || strings.HasPrefix(m, g+",") {
			return true
		}
	}
	return false
}

func bestAction(message string) (string, float64) {
	var (
		best      string
		bestScore float64
	)
	for _, a := range compiledActions {
		var score float64
		for _, kw := range a.keywords {
			if kw.pattern.MatchString(message) {
				score += kw.weight
			}
		}
		if score > bestScore {
			best, bestScore = a.action, score
		}
	}
	return best, bestScore
}

// confidence maps a raw score into [0,1] with diminishing returns.
func confidence(score float64) float64 {
	return math.Round((1-math.Exp(-1.5*score))*100) / 100
}

func isClarification(message string) bool {
	for _, p := range clarificationPatterns {
		if p.MatchString(message) {
			return true
		}
	}
	return false
}

var (
	quotedPattern   = regexp.MustCompile(`["“]([^"”]+)["”]`)
	searchPattern   = regexp.MustCompile(`(?i)\b(?:about|for|on)\s+(.+)$`)
	pageVerbPattern = regexp.MustCompile(`(?i)\b(click|scroll|fill|navigate)`)
	tonePattern     = regexp.MustCompile(`(?i)\b(friendly|professional|witty|neutral)\b`)
	stylePattern    = regexp.MustCompile(`(?i)\b(brief|detailed|bullets)\b`)
)

// extractParameters pulls the few parameters that can be read off the text.
// Missing ones are backfilled from context by the caller.
func extractParameters(in *core.Intent, message string) {
	if m := quotedPattern.FindStringSubmatch(message); m != nil {
		in.Target = m[1]
	}
	switch in.Action {
	case "search_memory":
		if m := searchPattern.FindStringSubmatch(message); m != nil {
			in.Parameters["query"] = strings.Trim(m[1], " ?.!")
		}
	case "page_action":
		if m := pageVerbPattern.FindStringSubmatch(message); m != nil {
			in.Parameters["action"] = strings.ToLower(m[1])
		}
		if in.Target != "" {
			in.Parameters["selector"] = in.Target
		}
	case "generate_reply":
		if m := tonePattern.FindStringSubmatch(message); m != nil {
			in.Parameters["tone"] = strings.ToLower(m[1])
		}
	case "summarize":
		if m := stylePattern.FindStringSubmatch(message); m != nil {
			in.Parameters["style"] = strings.ToLower(m[1])
		}
	case "replay_workflow":
		if in.Target != "" {
			in.Parameters["workflow"] = in.Target
		}
	}
}
