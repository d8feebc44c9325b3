// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

// Package llm defines the chat collaborator used for conversational replies
// and the model providers behind it.
package llm

import "context"

// Role represents the role of a message sender.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single unit of communication.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request is the provider-level input.
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
}

// Response is the provider-level output.
type Response struct {
	Content string `json:"content"`
	Usage   Usage  `json:"usage"`
}

// Usage tracks token consumption.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Provider sends chat requests to a model backend.
type Provider interface {
	Chat(ctx context.Context, req Request) (*Response, error)
}

// StreamChunk is one increment of a streamed response. The last chunk has
// Done set; an Error ends the stream.
type StreamChunk struct {
	Content string
	Done    bool
	Usage   *Usage
	Error   error
}

// StreamingProvider is a Provider that can stream partial content.
type StreamingProvider interface {
	Provider
	ChatStream(ctx context.Context, req Request) (<-chan StreamChunk, error)
}
