// SPDX-License-Identifier: Apache-2.0
// Package errors provides the closed error taxonomy used across the agent,
// typed errors with recoverability and suggestions, and classification of
// arbitrary failures into the taxonomy.
package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
)

// Type classifies agent errors. The set is closed.
type Type string

const (
	// TypeToolNotFound indicates no tool matched the request.
	TypeToolNotFound Type = "tool_not_found"

	// TypeToolExecutionFailed indicates a tool ran and failed.
	TypeToolExecutionFailed Type = "tool_execution_failed"

	// TypeInvalidParameters indicates the tool call parameters were rejected.
	TypeInvalidParameters Type = "invalid_parameters"

	// TypeContextUnavailable indicates required page, selection or post context is missing.
	TypeContextUnavailable Type = "context_unavailable"

	// TypeLLMError indicates the language model collaborator failed.
	TypeLLMError Type = "llm_error"

	// TypeTimeout indicates an operation exceeded its time limit.
	TypeTimeout Type = "timeout"

	// TypeAborted indicates the operation was cancelled.
	TypeAborted Type = "aborted"

	// TypeUnknown is the fallback classification.
	TypeUnknown Type = "unknown"
)

// Types returns every member of the taxonomy.
func Types() []Type {
	return []Type{
		TypeToolNotFound,
		TypeToolExecutionFailed,
		TypeInvalidParameters,
		TypeContextUnavailable,
		TypeLLMError,
		TypeTimeout,
		TypeAborted,
		TypeUnknown,
	}
}

// Valid reports whether t is a member of the taxonomy.
func (t Type) Valid() bool {
	for _, known := range Types() {
		if t == known {
			return true
		}
	}
	return false
}

// IsRecoverable reports whether an error of type t may be retried.
func IsRecoverable(t Type) bool {
	switch t {
	case TypeAborted, TypeInvalidParameters:
		return false
	default:
		return true
	}
}

// AgentError is a classified error carrying a user-facing message and
// suggestions. It implements the error interface and can be unwrapped with
// errors.As().
type AgentError struct {
	Type        Type
	Message     string
	Details     map[string]any
	Recoverable bool
	Suggestions []string
	Err         error
}

// Error implements the error interface.
func (e *AgentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap implements errors.Unwrap for error chain traversal.
func (e *AgentError) Unwrap() error {
	return e.Err
}

// MarshalJSON implements json.Marshaler for structured logging.
func (e *AgentError) MarshalJSON() ([]byte, error) {
	var cause string
	if e.Err != nil {
		cause = e.Err.Error()
	}
	return json.Marshal(&struct {
		Type        string         `json:"type"`
		Message     string         `json:"message"`
		Details     map[string]any `json:"details,omitempty"`
		Recoverable bool           `json:"recoverable"`
		Suggestions []string       `json:"suggestions,omitempty"`
		Err         string         `json:"error,omitempty"`
	}{
		Type:        string(e.Type),
		Message:     e.Message,
		Details:     e.Details,
		Recoverable: e.Recoverable,
		Suggestions: e.Suggestions,
		Err:         cause,
	})
}

// New creates an AgentError. Recoverability defaults from the type.
func New(t Type, msg string, cause error) *AgentError {
	if !t.Valid() {
		t = TypeUnknown
	}
	return &AgentError{
		Type:        t,
		Message:     msg,
		Err:         cause,
		Details:     make(map[string]any),
		Recoverable: IsRecoverable(t),
	}
}

// WithDetail adds a key-value pair to the error details.
// Returns the error for method chaining.
func (e *AgentError) WithDetail(key string, value any) *AgentError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithSuggestions replaces the suggestions.
// Returns the error for method chaining.
func (e *AgentError) WithSuggestions(suggestions ...string) *AgentError {
	e.Suggestions = append([]string(nil), suggestions...)
	return e
}

// WithRecoverable overrides whether the error can be recovered from.
// Returns the error for method chaining.
func (e *AgentError) WithRecoverable(recoverable bool) *AgentError {
	e.Recoverable = recoverable
	return e
}

// RecoverableString returns "true" or "false" as a string for observability.
func (e *AgentError) RecoverableString() string {
	if e.Recoverable {
		return "true"
	}
	return "false"
}

// AsAgentError returns err as an AgentError if one is in its chain, or wraps
// it after classification otherwise.
func AsAgentError(err error) *AgentError {
	if err == nil {
		return nil
	}
	var ae *AgentError
	if stderrors.As(err, &ae) {
		return ae
	}
	return New(Classify(err), err.Error(), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return stderrors.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool { return stderrors.As(err, target) }
