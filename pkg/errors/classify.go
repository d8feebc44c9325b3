// SPDX-License-Identifier: Apache-2.0

package errors

import (
	"context"
	stderrors "errors"
	"strings"
)

// Classify maps any error onto the taxonomy. Errors that already carry a type
// keep it; context errors map to timeout and aborted; anything else is
// classified from its message text. Two errors with identical text can
// therefore classify differently when one carries a type; ClassifyMessage
// depends on the text alone.
func Classify(err error) Type {
	if err == nil {
		return TypeUnknown
	}
	var ae *AgentError
	if stderrors.As(err, &ae) && ae.Type.Valid() {
		return ae.Type
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return TypeTimeout
	}
	if stderrors.Is(err, context.Canceled) {
		return TypeAborted
	}
	return ClassifyMessage(err.Error())
}

// ClassifyMessage classifies an error message with a fixed-priority,
// case-insensitive substring cascade. The first matching rule wins, so a
// message mentioning both "timeout" and "failed" is a timeout.
func ClassifyMessage(msg string) Type {
	m := strings.ToLower(msg)
	switch {
	case containsAny(m, "timeout", "timed out", "deadline"):
		return TypeTimeout
	case containsAny(m, "abort", "cancel"):
		return TypeAborted
	case strings.Contains(m, "tool") && strings.Contains(m, "not found"):
		return TypeToolNotFound
	case containsAny(m, "parameter", "invalid"):
		return TypeInvalidParameters
	case strings.Contains(m, "context") && strings.Contains(m, "unavailable"):
		return TypeContextUnavailable
	case containsAny(m, "api", "quota", "rate limit", "429"):
		return TypeLLMError
	case containsAny(m, "execution", "failed"):
		return TypeToolExecutionFailed
	default:
		return TypeUnknown
	}
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
