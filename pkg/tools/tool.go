// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

// Package tools holds the closed set of tool definitions the agent can invoke,
// validates call parameters against their schemas and executes single calls
// behind a failure boundary.
package tools

import (
	"context"
	"strings"

	"github.com/jllopis/pagepilot/pkg/core"
)

// ID names a supported tool. The set is closed; see AllIDs.
type ID string

const (
	Summarize      ID = "summarize"
	ExtractData    ID = "extract_data"
	GenerateReply  ID = "generate_reply"
	SearchMemory   ID = "search_memory"
	PageAction     ID = "page_action"
	ReplayWorkflow ID = "replay_workflow"
)

// AllIDs returns every supported tool identifier.
func AllIDs() []ID {
	return []ID{Summarize, ExtractData, GenerateReply, SearchMemory, PageAction, ReplayWorkflow}
}

// ParseID resolves a tool name, ignoring case and surrounding space.
func ParseID(name string) (ID, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, id := range AllIDs() {
		if string(id) == name {
			return id, true
		}
	}
	return "", false
}

// Valid reports whether id is a supported tool.
func (id ID) Valid() bool {
	for _, known := range AllIDs() {
		if id == known {
			return true
		}
	}
	return false
}

// ParamType is the primitive type of a tool parameter.
type ParamType string

const (
	TypeString  ParamType = "string"
	TypeNumber  ParamType = "number"
	TypeBoolean ParamType = "boolean"
	TypeObject  ParamType = "object"
	TypeArray   ParamType = "array"
)

// Parameter declares one entry of a tool's parameter schema.
type Parameter struct {
	Name        string    `json:"name"`
	Type        ParamType `json:"type"`
	Description string    `json:"description,omitempty"`
	Required    bool      `json:"required,omitempty"`
	Default     any       `json:"default,omitempty"`
	Enum        []any     `json:"enum,omitempty"`
}

// Requirement names the context a tool needs before it can run.
type Requirement int

const (
	RequiresNone Requirement = iota
	RequiresPageOrSelection
	RequiresPost
)

func (r Requirement) String() string {
	switch r {
	case RequiresPageOrSelection:
		return "page_or_selection"
	case RequiresPost:
		return "post"
	default:
		return "none"
	}
}

// Result is the outcome of a tool call. A failed result always carries
// Error; a successful one carries Data or DisplayText.
type Result struct {
	Success     bool     `json:"success"`
	Data        any      `json:"data,omitempty"`
	Error       string   `json:"error,omitempty"`
	DisplayText string   `json:"display_text,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// Failure builds a failed Result.
func Failure(msg string, suggestions ...string) Result {
	return Result{Success: false, Error: msg, Suggestions: suggestions}
}

// Call is one invocation of a tool.
type Call struct {
	Tool       ID             `json:"tool"`
	Parameters map[string]any `json:"parameters,omitempty"`
	CallID     string         `json:"call_id"`
}

// Executor runs a tool. Implementations should report failures through the
// returned Result; errors and panics are tolerated and converted.
type Executor interface {
	Execute(ctx context.Context, params map[string]any, actx *core.AgentContext) (Result, error)
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, params map[string]any, actx *core.AgentContext) (Result, error)

// Execute calls f.
func (f ExecutorFunc) Execute(ctx context.Context, params map[string]any, actx *core.AgentContext) (Result, error) {
	return f(ctx, params, actx)
}

// Tool is a named, schema-validated capability.
type Tool struct {
	Name        ID          `json:"name"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	Parameters  []Parameter `json:"parameters"`
	Requires    Requirement `json:"requires"`
	Executor    Executor    `json:"-"`
}

// Parameter returns the declared parameter with the given name.
func (t Tool) Parameter(name string) (Parameter, bool) {
	for _, p := range t.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}
