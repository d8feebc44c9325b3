// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jllopis/pagepilot/pkg/core"
)

// ErrEmptyResponse is returned when the model produced no content.
var ErrEmptyResponse = errors.New("llm returned an empty response")

// ChatRequest is one conversational turn sent to the chat collaborator.
type ChatRequest struct {
	Message        string
	Context        string
	Model          string
	OutputLanguage string
	History        []core.ChatMessage
}

// Chatter produces a conversational reply. Implementations return an error
// wrapping context.Canceled when the call was cancelled.
type Chatter interface {
	Chat(ctx context.Context, req ChatRequest) (string, error)
}

// StreamingChatter reports the cumulative reply text while it is produced.
type StreamingChatter interface {
	Chatter
	ChatStream(ctx context.Context, req ChatRequest, partial func(text string)) (string, error)
}

// ChatterFunc adapts a function to the Chatter interface.
type ChatterFunc func(ctx context.Context, req ChatRequest) (string, error)

// Chat calls f.
func (f ChatterFunc) Chat(ctx context.Context, req ChatRequest) (string, error) {
	return f(ctx, req)
}

const defaultSystemPrompt = "You are a browsing assistant. Answer using the provided context when it is relevant. Be concise."

// ProviderChatter builds prompts from a ChatRequest and sends them to a
// Provider.
type ProviderChatter struct {
	provider     Provider
	model        string
	systemPrompt string
	temperature  float64
}

// ChatterOption configures a ProviderChatter.
type ChatterOption func(*ProviderChatter)

// WithDefaultModel is used when a request does not name a model.
func WithDefaultModel(model string) ChatterOption {
	return func(c *ProviderChatter) { c.model = model }
}

// WithSystemPrompt replaces the base system prompt.
func WithSystemPrompt(prompt string) ChatterOption {
	return func(c *ProviderChatter) {
		if prompt != "" {
			c.systemPrompt = prompt
		}
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) ChatterOption {
	return func(c *ProviderChatter) { c.temperature = t }
}

// NewProviderChatter wraps provider.
func NewProviderChatter(provider Provider, opts ...ChatterOption) *ProviderChatter {
	c := &ProviderChatter{provider: provider, systemPrompt: defaultSystemPrompt}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ StreamingChatter = (*ProviderChatter)(nil)

// Chat sends the request and returns the reply text.
func (c *ProviderChatter) Chat(ctx context.Context, req ChatRequest) (string, error) {
	resp, err := c.provider.Chat(ctx, c.buildRequest(req))
	if err != nil {
		return "", wrapCancel(ctx, err)
	}
	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		return "", ErrEmptyResponse
	}
	return resp.Content, nil
}

// ChatStream streams the reply when the provider supports it and falls back
// to Chat otherwise. partial receives the cumulative text.
func (c *ProviderChatter) ChatStream(ctx context.Context, req ChatRequest, partial func(string)) (string, error) {
	sp, ok := c.provider.(StreamingProvider)
	if !ok {
		text, err := c.Chat(ctx, req)
		if err == nil && partial != nil {
			partial(text)
		}
		return text, err
	}

	chunks, err := sp.ChatStream(ctx, c.buildRequest(req))
	if err != nil {
		return "", wrapCancel(ctx, err)
	}
	var b strings.Builder
	for chunk := range chunks {
		if chunk.Error != nil {
			return "", wrapCancel(ctx, chunk.Error)
		}
		if chunk.Content != "" {
			b.WriteString(chunk.Content)
			if partial != nil {
				partial(b.String())
			}
		}
		if chunk.Done {
			break
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", ErrEmptyResponse
	}
	return b.String(), nil
}

func (c *ProviderChatter) buildRequest(req ChatRequest) Request {
	var system strings.Builder
	system.WriteString(c.systemPrompt)
	if req.OutputLanguage != "" {
		fmt.Fprintf(&system, "\nReply in the language with code %q.", req.OutputLanguage)
	}
	if req.Context != "" {
		system.WriteString("\n\nContext:\n")
		system.WriteString(req.Context)
	}

	messages := make([]Message, 0, len(req.History)+2)
	messages = append(messages, Message{Role: RoleSystem, Content: system.String()})
	for _, m := range req.History {
		role := RoleUser
		switch m.Role {
		case core.RoleAssistant:
			role = RoleAssistant
		case core.RoleSystem:
			role = RoleSystem
		}
		messages = append(messages, Message{Role: role, Content: m.Content})
	}
	messages = append(messages, Message{Role: RoleUser, Content: req.Message})

	model := req.Model
	if model == "" {
		model = c.model
	}
	return Request{Model: model, Messages: messages, Temperature: c.temperature}
}

// wrapCancel makes cancellation detectable with errors.Is even when the
// transport reported it with its own error.
func wrapCancel(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
		return fmt.Errorf("%w: %v", ctxErr, err)
	}
	return err
}
