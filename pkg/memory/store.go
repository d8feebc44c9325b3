// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

// Package memory persists saved knowledge, writing personas and chat
// transcripts, and feeds them into the context manager.
package memory

import (
	"context"
	"errors"

	"github.com/jllopis/pagepilot/pkg/agentcontext"
	"github.com/jllopis/pagepilot/pkg/core"
)

// ErrNotFound indicates no matching item was found.
var ErrNotFound = errors.New("memory: not found")

// Store persists memories and personas.
type Store interface {
	SaveMemory(ctx context.Context, item core.MemoryItem) (core.MemoryItem, error)
	ListMemories(ctx context.Context) ([]core.MemoryItem, error)
	DeleteMemory(ctx context.Context, id string) error

	SavePersona(ctx context.Context, p core.Persona) (core.Persona, error)
	ListPersonas(ctx context.Context) ([]core.Persona, error)
	DeletePersona(ctx context.Context, id string) error
}

// Transcript persists chat history per session.
type Transcript interface {
	AppendMessage(ctx context.Context, sessionID string, msg core.ChatMessage) error
	RecentMessages(ctx context.Context, sessionID string, limit int) ([]core.ChatMessage, error)
	ClearSession(ctx context.Context, sessionID string) error
}

// LoadInto replaces the manager's memories and personas with the stored
// ones.
func LoadInto(ctx context.Context, s Store, m *agentcontext.Manager) error {
	memories, err := s.ListMemories(ctx)
	if err != nil {
		return err
	}
	personas, err := s.ListPersonas(ctx)
	if err != nil {
		return err
	}
	m.SetMemories(memories)
	m.SetPersonas(personas)
	return nil
}

// Remember saves item and adds the stored copy to the manager.
func Remember(ctx context.Context, s Store, m *agentcontext.Manager, item core.MemoryItem) (core.MemoryItem, error) {
	saved, err := s.SaveMemory(ctx, item)
	if err != nil {
		return core.MemoryItem{}, err
	}
	m.AddMemory(saved)
	return saved, nil
}

// RestoreHistory replays up to limit stored messages into the manager.
func RestoreHistory(ctx context.Context, t Transcript, sessionID string, limit int, m *agentcontext.Manager) error {
	msgs, err := t.RecentMessages(ctx, sessionID, limit)
	if err != nil {
		return err
	}
	for _, msg := range msgs {
		m.AddMessage(msg.Role, msg.Content)
	}
	return nil
}
