// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

// Package agentcontext owns the mutable conversational and environmental
// state of an agent session and produces per-turn context snapshots.
package agentcontext

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jllopis/pagepilot/pkg/core"
)

const (
	DefaultMaxChatHistory      = 50
	DefaultMaxRelevantMemories = 5
	DefaultRelevanceThreshold  = 0.1
	DefaultMaxPageContentChars = 3000
)

// Manager holds chat history, page snapshot, selection, memories, personas and
// the current post. Setters are last-writer-wins; none of the operations fail.
type Manager struct {
	mu sync.RWMutex

	history         []core.ChatMessage
	page            *core.PageContext
	selection       string
	memories        []core.MemoryItem
	personas        []core.Persona
	activePersonaID string
	currentPost     *core.Post

	maxChatHistory      int
	maxRelevantMemories int
	relevanceThreshold  float64
	maxPageContentChars int
	logger              *slog.Logger
	now                 func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithMaxChatHistory bounds the chat history; oldest messages are evicted first.
func WithMaxChatHistory(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.maxChatHistory = n
		}
	}
}

// WithMaxRelevantMemories sets the default number of memories returned by retrieval.
func WithMaxRelevantMemories(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.maxRelevantMemories = n
		}
	}
}

// WithRelevanceThreshold sets the minimum similarity for a memory to be retrieved.
func WithRelevanceThreshold(t float64) Option {
	return func(m *Manager) {
		if t >= 0 {
			m.relevanceThreshold = t
		}
	}
}

// WithMaxPageContentChars bounds the page content rendered in context strings.
func WithMaxPageContentChars(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.maxPageContentChars = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// New creates a Manager with defaults applied.
func New(opts ...Option) *Manager {
	m := &Manager{
		maxChatHistory:      DefaultMaxChatHistory,
		maxRelevantMemories: DefaultMaxRelevantMemories,
		relevanceThreshold:  DefaultRelevanceThreshold,
		maxPageContentChars: DefaultMaxPageContentChars,
		logger:              slog.Default(),
		now:                 time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// UpdatePageContext replaces the page snapshot. A nil page clears it.
func (m *Manager) UpdatePageContext(page *core.PageContext) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if page == nil {
		m.page = nil
		return
	}
	cp := *page
	m.page = &cp
}

// UpdateSelection replaces the selected text.
func (m *Manager) UpdateSelection(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selection = text
}

// AddMessage appends a message and trims the history to its bound.
func (m *Manager) AddMessage(role core.Role, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = append(m.history, core.ChatMessage{
		Role:      role,
		Content:   content,
		CreatedAt: m.now(),
	})
	if over := len(m.history) - m.maxChatHistory; over > 0 {
		m.history = append([]core.ChatMessage(nil), m.history[over:]...)
		m.logger.Debug("context.history.trimmed", slog.Int("evicted", over))
	}
}

// ChatHistory returns a copy of the full history, oldest first.
func (m *Manager) ChatHistory() []core.ChatMessage {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]core.ChatMessage(nil), m.history...)
}

// RecentHistory returns at most the last n messages.
func (m *Manager) RecentHistory(n int) []core.ChatMessage {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if n <= 0 || n >= len(m.history) {
		return append([]core.ChatMessage(nil), m.history...)
	}
	return append([]core.ChatMessage(nil), m.history[len(m.history)-n:]...)
}

// SetMemories replaces the memory set.
func (m *Manager) SetMemories(items []core.MemoryItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.memories = append([]core.MemoryItem(nil), items...)
}

// AddMemory appends a single memory item.
func (m *Manager) AddMemory(item core.MemoryItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = m.now()
	}
	m.memories = append(m.memories, item)
}

// Memories returns a copy of all memories.
func (m *Manager) Memories() []core.MemoryItem {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]core.MemoryItem(nil), m.memories...)
}

// SetPersonas replaces the persona set.
func (m *Manager) SetPersonas(personas []core.Persona) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.personas = append([]core.Persona(nil), personas...)
}

// SetActivePersonaID selects the active persona.
func (m *Manager) SetActivePersonaID(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activePersonaID = id
}

// ActivePersona returns the active persona, if it is registered.
func (m *Manager) ActivePersona() (core.Persona, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.personas {
		if p.ID == m.activePersonaID {
			return p, true
		}
	}
	return core.Persona{}, false
}

// SetCurrentPost replaces the focused post. A nil post clears it.
func (m *Manager) SetCurrentPost(post *core.Post) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if post == nil {
		m.currentPost = nil
		return
	}
	cp := *post
	m.currentPost = &cp
}

// Clear drops page, selection, post and history. Memories and personas are kept.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.page = nil
	m.selection = ""
	m.currentPost = nil
	m.history = nil
}

// BuildContext returns a snapshot for one turn. With a non-empty query the
// memories are the relevance-ranked subset, otherwise the first N memories.
func (m *Manager) BuildContext(query string) *core.AgentContext {
	memories := m.contextMemories(query)

	m.mu.RLock()
	defer m.mu.RUnlock()
	actx := &core.AgentContext{
		ChatHistory:     append([]core.ChatMessage(nil), m.history...),
		Selection:       m.selection,
		Memories:        memories,
		Personas:        append([]core.Persona(nil), m.personas...),
		ActivePersonaID: m.activePersonaID,
	}
	if m.page != nil {
		page := *m.page
		actx.Page = &page
	}
	if m.currentPost != nil {
		post := *m.currentPost
		actx.CurrentPost = &post
	}
	return actx
}

func (m *Manager) contextMemories(query string) []core.MemoryItem {
	if query != "" {
		return m.RetrieveRelevantMemories(query, 0)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := m.maxRelevantMemories
	if n > len(m.memories) {
		n = len(m.memories)
	}
	return append([]core.MemoryItem(nil), m.memories[:n]...)
}
