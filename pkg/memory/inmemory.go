// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jllopis/pagepilot/pkg/core"
)

// InMemory is an in-process Store and Transcript.
type InMemory struct {
	mu       sync.RWMutex
	memories []core.MemoryItem
	personas []core.Persona
	sessions map[string][]core.ChatMessage
}

// NewInMemory creates an empty in-memory store.
func NewInMemory() *InMemory {
	return &InMemory{sessions: make(map[string][]core.ChatMessage)}
}

var (
	_ Store      = (*InMemory)(nil)
	_ Transcript = (*InMemory)(nil)
)

// SaveMemory inserts or replaces item by ID, assigning one when empty.
func (m *InMemory) SaveMemory(_ context.Context, item core.MemoryItem) (core.MemoryItem, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	item.Tags = append([]string(nil), item.Tags...)

	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.memories {
		if m.memories[i].ID == item.ID {
			m.memories[i] = item
			return item, nil
		}
	}
	m.memories = append(m.memories, item)
	return item, nil
}

// ListMemories returns memories in insertion order.
func (m *InMemory) ListMemories(context.Context) ([]core.MemoryItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]core.MemoryItem(nil), m.memories...), nil
}

// DeleteMemory removes a memory by ID.
func (m *InMemory) DeleteMemory(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.memories {
		if m.memories[i].ID == id {
			m.memories = append(m.memories[:i], m.memories[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// SavePersona inserts or replaces p by ID, assigning one when empty.
func (m *InMemory) SavePersona(_ context.Context, p core.Persona) (core.Persona, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.personas {
		if m.personas[i].ID == p.ID {
			m.personas[i] = p
			return p, nil
		}
	}
	m.personas = append(m.personas, p)
	return p, nil
}

// ListPersonas returns personas in insertion order.
func (m *InMemory) ListPersonas(context.Context) ([]core.Persona, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]core.Persona(nil), m.personas...), nil
}

// DeletePersona removes a persona by ID.
func (m *InMemory) DeletePersona(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.personas {
		if m.personas[i].ID == id {
			m.personas = append(m.personas[:i], m.personas[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// AppendMessage adds msg to the session transcript.
func (m *InMemory) AppendMessage(_ context.Context, sessionID string, msg core.ChatMessage) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sessionID] = append(m.sessions[sessionID], msg)
	return nil
}

// RecentMessages returns the last limit messages, oldest first. A limit of
// zero or less returns all of them.
func (m *InMemory) RecentMessages(_ context.Context, sessionID string, limit int) ([]core.ChatMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	msgs := m.sessions[sessionID]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return append([]core.ChatMessage(nil), msgs...), nil
}

// ClearSession drops a session transcript.
func (m *InMemory) ClearSession(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}
