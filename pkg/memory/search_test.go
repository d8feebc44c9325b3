package memory

import (
	"context"
	"strings"
	"testing"

	"github.com/jllopis/pagepilot/pkg/agentcontext"
	"github.com/jllopis/pagepilot/pkg/core"
)

func TestSearchExecutor(t *testing.T) {
	m := agentcontext.New()
	m.SetMemories([]core.MemoryItem{
		{ID: "1", Content: "go channels"},
		{ID: "2", Content: "baking bread"},
	})
	exec := SearchExecutor(m)

	res, err := exec.Execute(context.Background(), map[string]any{"query": "go channels", "limit": float64(5)}, nil)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	items, ok := res.Data.([]core.MemoryItem)
	if !res.Success || !ok || len(items) != 1 || items[0].ID != "1" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if !strings.Contains(res.DisplayText, "go channels") {
		t.Fatalf("display text missing content: %q", res.DisplayText)
	}

	res, _ = exec.Execute(context.Background(), map[string]any{"query": "quantum physics"}, nil)
	if !res.Success || !strings.Contains(res.DisplayText, "No saved notes") {
		t.Fatalf("expected empty success, got %+v", res)
	}
}
