// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package llm

import (
	"context"
	"errors"
	"sync"
)

// ScriptedMockProvider returns a pre-defined sequence of responses. An
// entry in Errors at the same position as a call makes that call fail,
// which is useful for exercising retries.
type ScriptedMockProvider struct {
	mu        sync.Mutex
	Responses []string
	Errors    []error
	Err       error
	CallCount int
}

// NewScriptedMockProvider creates a ScriptedMockProvider with responses.
func NewScriptedMockProvider(responses ...string) *ScriptedMockProvider {
	return &ScriptedMockProvider{Responses: responses}
}

// Chat pops the next scripted response or error.
func (s *ScriptedMockProvider) Chat(ctx context.Context, _ Request) (*Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	call := s.CallCount
	s.CallCount++

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Err != nil {
		return nil, s.Err
	}
	if call < len(s.Errors) && s.Errors[call] != nil {
		return nil, s.Errors[call]
	}
	if len(s.Responses) == 0 {
		return nil, errors.New("scripted mock: no more responses available")
	}

	content := s.Responses[0]
	s.Responses = s.Responses[1:]
	return &Response{
		Content: content,
		Usage:   Usage{PromptTokens: 10, CompletionTokens: 10, TotalTokens: 20},
	}, nil
}

// AddResponse appends a response to the queue.
func (s *ScriptedMockProvider) AddResponse(response string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Responses = append(s.Responses, response)
}

// Calls returns how many times Chat was called.
func (s *ScriptedMockProvider) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.CallCount
}
