// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package llm

import (
	"context"
	"fmt"
	"sync"
)

// MockProvider is a testing implementation of Provider. It records the last
// request it received.
type MockProvider struct {
	Response string
	Err      error
	ChatFunc func(ctx context.Context, req Request) (*Response, error)

	mu      sync.Mutex
	lastReq Request
}

// Chat returns the configured response or error.
func (m *MockProvider) Chat(ctx context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	m.lastReq = req
	m.mu.Unlock()

	if m.ChatFunc != nil {
		return m.ChatFunc(ctx, req)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return &Response{
		Content: m.Response,
		Usage:   Usage{PromptTokens: 10, CompletionTokens: 10, TotalTokens: 20},
	}, nil
}

// LastRequest returns the most recent request.
func (m *MockProvider) LastRequest() Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastReq
}

// FailingMockProvider always fails.
type FailingMockProvider struct {
	Err error
}

// Chat returns Err, or a generic error when Err is nil.
func (f *FailingMockProvider) Chat(context.Context, Request) (*Response, error) {
	if f.Err == nil {
		return nil, fmt.Errorf("mock error")
	}
	return nil, f.Err
}
