// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/jllopis/pagepilot/pkg/agentcontext"
	"github.com/jllopis/pagepilot/pkg/core"
	"github.com/jllopis/pagepilot/pkg/tools"
)

// SearchExecutor serves the search_memory tool from the manager's memories.
func SearchExecutor(m *agentcontext.Manager) tools.Executor {
	return tools.ExecutorFunc(func(_ context.Context, params map[string]any, _ *core.AgentContext) (tools.Result, error) {
		query, _ := params["query"].(string)
		limit := toInt(params["limit"])

		items := m.RetrieveRelevantMemories(query, limit)
		if len(items) == 0 {
			return tools.Result{
				Success:     true,
				Data:        []core.MemoryItem{},
				DisplayText: fmt.Sprintf("No saved notes match %q.", query),
			}, nil
		}

		var b strings.Builder
		fmt.Fprintf(&b, "Found %d note(s):", len(items))
		for i, item := range items {
			fmt.Fprintf(&b, "\n%d. %s", i+1, item.Content)
		}
		return tools.Result{Success: true, Data: items, DisplayText: b.String()}, nil
	})
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
