// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"strings"

	"github.com/jllopis/pagepilot/pkg/core"
	"github.com/jllopis/pagepilot/pkg/errors"
)

var aliases = map[string]ID{
	"summary":    Summarize,
	"summarise":  Summarize,
	"tldr":       Summarize,
	"digest":     Summarize,
	"extract":    ExtractData,
	"scrape":     ExtractData,
	"collect":    ExtractData,
	"reply":      GenerateReply,
	"respond":    GenerateReply,
	"comment":    GenerateReply,
	"draft":      GenerateReply,
	"search":     SearchMemory,
	"recall":     SearchMemory,
	"find":       SearchMemory,
	"lookup":     SearchMemory,
	"click":      PageAction,
	"fill":       PageAction,
	"scroll":     PageAction,
	"type":       PageAction,
	"navigate":   PageAction,
	"replay":     ReplayWorkflow,
	"workflow":   ReplayWorkflow,
	"rerun":      ReplayWorkflow,
	"automation": ReplayWorkflow,
}

// ResolveAction maps an intent action to a tool ID: exact name first, then
// the alias table.
func ResolveAction(action string) (ID, bool) {
	if id, ok := ParseID(action); ok {
		return id, true
	}
	id, ok := aliases[strings.ToLower(strings.TrimSpace(action))]
	return id, ok
}

// FindByIntent returns the registered tool the intent's action resolves to.
// No match is a valid outcome.
func (r *Registry) FindByIntent(intent core.Intent) (Tool, bool) {
	id, ok := ResolveAction(intent.Action)
	if !ok {
		return Tool{}, false
	}
	return r.Get(id)
}

// CheckRequirement reports a context_unavailable error when actx lacks the
// context tool needs.
func CheckRequirement(tool Tool, actx *core.AgentContext) *errors.AgentError {
	switch tool.Requires {
	case RequiresPageOrSelection:
		if actx.HasPage() || actx.HasSelection() {
			return nil
		}
		return errors.New(errors.TypeContextUnavailable,
			"no page content or selection available", nil).
			WithDetail("tool", string(tool.Name))
	case RequiresPost:
		if actx != nil && actx.CurrentPost != nil {
			return nil
		}
		return errors.New(errors.TypeContextUnavailable,
			"no current post available", nil).
			WithDetail("tool", string(tool.Name))
	default:
		return nil
	}
}
