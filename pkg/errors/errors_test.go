// SPDX-License-Identifier: Apache-2.0

package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jllopis/pagepilot/pkg/i18n"
)

func TestNew(t *testing.T) {
	cause := errors.New("network timeout")
	ae := New(TypeTimeout, "tool execution timed out", cause)

	if ae.Type != TypeTimeout {
		t.Errorf("expected TypeTimeout, got %v", ae.Type)
	}
	if ae.Message != "tool execution timed out" {
		t.Errorf("unexpected message %q", ae.Message)
	}
	if !errors.Is(ae, cause) {
		t.Errorf("expected errors.Is to work with wrapped error")
	}
	if !ae.Recoverable {
		t.Errorf("timeouts are recoverable")
	}
}

func TestNewUnknownType(t *testing.T) {
	ae := New(Type("bogus"), "x", nil)
	if ae.Type != TypeUnknown {
		t.Fatalf("expected invalid type to collapse to unknown, got %s", ae.Type)
	}
}

func TestError(t *testing.T) {
	tests := []struct {
		name     string
		ae       *AgentError
		expected string
	}{
		{
			name:     "with cause",
			ae:       New(TypeTimeout, "operation timed out", errors.New("deadline exceeded")),
			expected: "[timeout] operation timed out: deadline exceeded",
		},
		{
			name:     "without cause",
			ae:       New(TypeToolNotFound, "tool missing", nil),
			expected: "[tool_not_found] tool missing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ae.Error(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestIsRecoverable(t *testing.T) {
	for _, typ := range Types() {
		want := typ != TypeAborted && typ != TypeInvalidParameters
		if got := IsRecoverable(typ); got != want {
			t.Errorf("IsRecoverable(%s) = %v, want %v", typ, got, want)
		}
	}
}

func TestClassifyMessageCascade(t *testing.T) {
	tests := []struct {
		msg  string
		want Type
	}{
		{"request timeout", TypeTimeout},
		{"Operation TIMED OUT", TypeTimeout},
		{"execution failed after timeout", TypeTimeout},
		{"user aborted the request", TypeAborted},
		{"request cancelled", TypeAborted},
		{"tool summarize not found", TypeToolNotFound},
		{"page not found", TypeUnknown},
		{"missing required parameter: query", TypeInvalidParameters},
		{"invalid value", TypeInvalidParameters},
		{"page context unavailable", TypeContextUnavailable},
		{"API key rejected", TypeLLMError},
		{"quota exceeded", TypeLLMError},
		{"rate limit reached", TypeLLMError},
		{"status 429", TypeLLMError},
		{"execution error", TypeToolExecutionFailed},
		{"write failed", TypeToolExecutionFailed},
		{"something odd", TypeUnknown},
		{"", TypeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			if got := ClassifyMessage(tt.msg); got != tt.want {
				t.Errorf("ClassifyMessage(%q) = %s, want %s", tt.msg, got, tt.want)
			}
		})
	}
}

func TestClassifyIsPureAndClosed(t *testing.T) {
	inputs := []string{"timeout", "cancel", "tool x not found", "bad parameter", "boom", "429", "context unavailable"}
	for _, in := range inputs {
		first := Classify(errors.New(in))
		for i := 0; i < 5; i++ {
			if again := Classify(errors.New(in)); again != first {
				t.Fatalf("classification of %q changed: %s then %s", in, first, again)
			}
		}
		if !first.Valid() {
			t.Fatalf("classification %q is outside the taxonomy", first)
		}
	}
}

func TestClassifyTypedAndContextErrors(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", New(TypeContextUnavailable, "failed timeout", nil))
	if got := Classify(wrapped); got != TypeContextUnavailable {
		t.Errorf("expected typed error to keep its type, got %s", got)
	}
	if got := Classify(context.DeadlineExceeded); got != TypeTimeout {
		t.Errorf("expected deadline to be timeout, got %s", got)
	}
	if got := Classify(fmt.Errorf("call: %w", context.Canceled)); got != TypeAborted {
		t.Errorf("expected canceled to be aborted, got %s", got)
	}
	if got := Classify(nil); got != TypeUnknown {
		t.Errorf("expected nil to be unknown, got %s", got)
	}
}

func TestAsAgentError(t *testing.T) {
	ae := New(TypeLLMError, "llm down", nil)
	if got := AsAgentError(fmt.Errorf("wrap: %w", ae)); got != ae {
		t.Fatal("expected the wrapped AgentError to be returned")
	}
	got := AsAgentError(errors.New("rate limit"))
	if got.Type != TypeLLMError {
		t.Fatalf("expected llm_error, got %s", got.Type)
	}
	if AsAgentError(nil) != nil {
		t.Fatal("expected nil for nil error")
	}
}

func TestMarshalJSON(t *testing.T) {
	ae := New(TypeToolExecutionFailed, "tool failed", errors.New("boom")).
		WithDetail("tool", "summarize").
		WithSuggestions("retry")

	data, err := json.Marshal(ae)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out["type"] != "tool_execution_failed" || out["error"] != "boom" {
		t.Fatalf("unexpected json: %s", data)
	}
}

func TestHandlerNewAgentError(t *testing.T) {
	h := NewHandler()
	ae := h.NewAgentError(errors.New("request timed out"))
	if ae.Type != TypeTimeout {
		t.Fatalf("expected timeout, got %s", ae.Type)
	}
	if ae.Message != i18n.Default().Message("en", i18n.KeyTimeout) {
		t.Fatalf("expected localized message, got %q", ae.Message)
	}
	if len(ae.Suggestions) == 0 {
		t.Fatal("expected default suggestions")
	}

	custom := h.NewAgentError(errors.New("boom"), "do this")
	if len(custom.Suggestions) != 1 || custom.Suggestions[0] != "do this" {
		t.Fatalf("expected caller suggestions, got %v", custom.Suggestions)
	}
}

func TestHandlerLanguage(t *testing.T) {
	en := NewHandler().Localize(TypeAborted)
	es := NewHandler(WithLanguage("es")).Localize(TypeAborted)
	if en.Message == es.Message {
		t.Fatalf("expected different localized messages, both %q", en.Message)
	}
}

func TestHandlerFormat(t *testing.T) {
	h := NewHandler()
	out := h.Format("Failed.", []string{"one", "two"})
	if !strings.HasPrefix(out, "Failed.") || !strings.Contains(out, "• one") || !strings.Contains(out, "• two") {
		t.Fatalf("unexpected formatted output: %q", out)
	}
	if h.Format("plain", nil) != "plain" {
		t.Fatal("expected message unchanged without suggestions")
	}
	if h.FormatError(nil) != "" {
		t.Fatal("expected empty output for nil error")
	}
}

func TestClassifyPrefersCarriedTypeOverText(t *testing.T) {
	const text = "request failed"
	typed := New(TypeLLMError, text, nil)
	plain := errors.New(text)

	if got := Classify(typed); got != TypeLLMError {
		t.Fatalf("Classify(typed) = %s, want %s", got, TypeLLMError)
	}
	if got := Classify(plain); got != TypeToolExecutionFailed {
		t.Fatalf("Classify(plain) = %s, want %s", got, TypeToolExecutionFailed)
	}
	if ClassifyMessage(typed.Message) != ClassifyMessage(plain.Error()) {
		t.Fatal("ClassifyMessage must depend on the text alone")
	}
}
