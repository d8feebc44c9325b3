// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"fmt"

	"github.com/jllopis/pagepilot/pkg/core"
)

// Builtins returns the six supported tool definitions, each bound to the
// executor supplied for its ID. Tools without an executor fail when called.
func Builtins(executors map[ID]Executor) []Tool {
	defs := []Tool{
		{
			Name:        Summarize,
			Description: "Summarize the current page or the selected text.",
			Category:    "content",
			Requires:    RequiresPageOrSelection,
			Parameters: []Parameter{
				{Name: "content", Type: TypeString, Required: true, Description: "Text to summarize"},
				{Name: "max_length", Type: TypeNumber, Default: 200, Description: "Upper bound in words"},
				{Name: "style", Type: TypeString, Default: "brief", Enum: []any{"brief", "detailed", "bullets"}},
			},
		},
		{
			Name:        ExtractData,
			Description: "Extract structured data from the current page or selection.",
			Category:    "content",
			Requires:    RequiresPageOrSelection,
			Parameters: []Parameter{
				{Name: "content", Type: TypeString, Required: true, Description: "Text to extract from"},
				{Name: "fields", Type: TypeArray, Description: "Field names to extract"},
				{Name: "format", Type: TypeString, Default: "json", Enum: []any{"json", "table", "list"}},
			},
		},
		{
			Name:        GenerateReply,
			Description: "Draft a reply to the current post using the active persona.",
			Category:    "social",
			Requires:    RequiresPost,
			Parameters: []Parameter{
				{Name: "post", Type: TypeObject, Required: true, Description: "Post being answered"},
				{Name: "persona", Type: TypeObject, Description: "Writing persona"},
				{Name: "tone", Type: TypeString, Enum: []any{"friendly", "professional", "witty", "neutral"}},
				{Name: "instructions", Type: TypeString, Description: "Extra guidance from the user"},
			},
		},
		{
			Name:        SearchMemory,
			Description: "Search saved notes and knowledge.",
			Category:    "memory",
			Parameters: []Parameter{
				{Name: "query", Type: TypeString, Required: true},
				{Name: "limit", Type: TypeNumber, Default: 5},
			},
		},
		{
			Name:        PageAction,
			Description: "Perform an action on the current page.",
			Category:    "page",
			Parameters: []Parameter{
				{Name: "action", Type: TypeString, Required: true, Enum: []any{"click", "fill", "scroll", "navigate"}},
				{Name: "selector", Type: TypeString},
				{Name: "value", Type: TypeString},
			},
		},
		{
			Name:        ReplayWorkflow,
			Description: "Replay a saved workflow plan.",
			Category:    "workflow",
			Parameters: []Parameter{
				{Name: "workflow", Type: TypeString, Required: true, Description: "Workflow file path or name"},
			},
		},
	}

	for i := range defs {
		if exec, ok := executors[defs[i].Name]; ok && exec != nil {
			defs[i].Executor = exec
			continue
		}
		defs[i].Executor = unconfigured(defs[i].Name)
	}
	return defs
}

// RegisterBuiltins registers every builtin tool in r.
func RegisterBuiltins(r *Registry, executors map[ID]Executor) error {
	for _, tool := range Builtins(executors) {
		if err := r.Register(tool); err != nil {
			return err
		}
	}
	return nil
}

func unconfigured(id ID) Executor {
	return ExecutorFunc(func(context.Context, map[string]any, *core.AgentContext) (Result, error) {
		return Failure(fmt.Sprintf("tool %s execution failed: no executor configured", id)), nil
	})
}
