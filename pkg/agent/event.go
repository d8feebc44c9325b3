// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package agent

import (
	"time"

	"github.com/jllopis/pagepilot/pkg/errors"
	"github.com/jllopis/pagepilot/pkg/tools"
)

// EventType tags a streamed controller event.
type EventType string

const (
	EventThinking   EventType = "thinking"
	EventToolCall   EventType = "tool_call"
	EventToolResult EventType = "tool_result"
	// EventMessage content replaces any previous message content of the run.
	EventMessage EventType = "message"
	EventError   EventType = "error"
	// EventDone is sent exactly once, last, on every run.
	EventDone EventType = "done"
)

// Event is one item of the ProcessMessage stream.
type Event struct {
	Type       EventType          `json:"type"`
	Content    string             `json:"content,omitempty"`
	ToolCall   *tools.Call        `json:"tool_call,omitempty"`
	ToolResult *tools.Result      `json:"tool_result,omitempty"`
	Error      *errors.AgentError `json:"error,omitempty"`
	Timestamp  time.Time          `json:"timestamp"`
}

// Status is the controller lifecycle state.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusThinking  Status = "thinking"
	StatusExecuting Status = "executing"
	// StatusTerminal is entered when a run ends and immediately left for
	// StatusIdle.
	StatusTerminal Status = "terminal"
)

// State is a snapshot of the controller status.
type State struct {
	Status      Status    `json:"status"`
	LastUpdated time.Time `json:"last_updated"`
	RunID       string    `json:"run_id,omitempty"`
}
