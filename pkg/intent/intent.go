// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

// Package intent defines the language-understanding collaborator that turns
// an utterance into a core.Intent, plus a keyword heuristic implementation.
package intent

import (
	"context"

	"github.com/jllopis/pagepilot/pkg/core"
)

// Analyzer interprets user messages.
type Analyzer interface {
	AnalyzeIntent(ctx context.Context, message string, history []core.ChatMessage) (core.Intent, error)
	IsStopCommand(message string) bool
}
