// Package core holds the types shared by the agent packages: intents, the
// per-turn context snapshot, run ids and health checks.
package core

import "time"

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// ChatMessage is one turn of conversation history.
type ChatMessage struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// PageContext describes the page the user is looking at.
type PageContext struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Post is a social post the user is currently focused on.
type Post struct {
	ID       string `json:"id,omitempty"`
	Author   string `json:"author"`
	Content  string `json:"content"`
	Platform string `json:"platform"`
	URL      string `json:"url,omitempty"`
}

// MemoryItem is a piece of saved user knowledge.
type MemoryItem struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags,omitempty"`
	Source    string    `json:"source,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Persona is a writing profile used for reply generation.
type Persona struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Tone        string `json:"tone,omitempty"`
}

// AgentContext is a read-only snapshot of conversational and environmental
// state for one turn. It is rebuilt per turn and never persisted.
type AgentContext struct {
	ChatHistory     []ChatMessage `json:"chat_history"`
	Page            *PageContext  `json:"page,omitempty"`
	Selection       string        `json:"selection,omitempty"`
	Memories        []MemoryItem  `json:"memories"`
	Personas        []Persona     `json:"personas"`
	ActivePersonaID string        `json:"active_persona_id,omitempty"`
	CurrentPost     *Post         `json:"current_post,omitempty"`
}

// HasPage reports whether page content is available.
func (c *AgentContext) HasPage() bool {
	return c != nil && c.Page != nil && c.Page.Content != ""
}

// HasSelection reports whether the user has selected text.
func (c *AgentContext) HasSelection() bool {
	return c != nil && c.Selection != ""
}

// ActivePersona returns the persona matching ActivePersonaID.
func (c *AgentContext) ActivePersona() (Persona, bool) {
	if c == nil || c.ActivePersonaID == "" {
		return Persona{}, false
	}
	for _, p := range c.Personas {
		if p.ID == c.ActivePersonaID {
			return p, true
		}
	}
	return Persona{}, false
}
