// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package planner

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jllopis/pagepilot/pkg/core"
	"github.com/jllopis/pagepilot/pkg/tools"
)

func TestReplayExecutor(t *testing.T) {
	dir := t.TempDir()
	flow := `
steps:
  - id: find
    tool: search_memory
    parameters: {step: find}
  - id: sum
    tool: summarize
    parameters: {step: sum}
    depends_on: [find]
`
	if err := os.WriteFile(filepath.Join(dir, "digest.yaml"), []byte(flow), 0o600); err != nil {
		t.Fatal(err)
	}

	runner := &fakeRunner{}
	replay := NewReplayExecutor(runner, dir, WithStepDelay(0))
	res, err := replay.Execute(context.Background(), map[string]any{"workflow": "digest.yaml"}, &core.AgentContext{})
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if !res.Success || res.DisplayText != "done find\ndone sum" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if got := strings.Join(runner.Calls(), ","); got != "find,sum" {
		t.Fatalf("unexpected calls %s", got)
	}
}

func TestReplayExecutorFailures(t *testing.T) {
	replay := NewReplayExecutor(&fakeRunner{}, t.TempDir())
	res, _ := replay.Execute(context.Background(), map[string]any{"workflow": "missing.yaml"}, nil)
	if res.Success || !strings.Contains(res.Error, "load workflow") {
		t.Fatalf("expected load failure, got %+v", res)
	}

	nested := context.WithValue(context.Background(), replayKey{}, "outer")
	res, _ = replay.Execute(nested, map[string]any{"workflow": "x.yaml"}, nil)
	if res.Success || !strings.Contains(res.Error, "nested") {
		t.Fatalf("expected nested replay rejection, got %+v", res)
	}
}

func TestReplayExecutorThroughRegistry(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "w.json"), []byte(`{"steps":[{"tool":"search_memory","parameters":{"query":"go"}}]}`), 0o600); err != nil {
		t.Fatal(err)
	}
	registry := tools.NewRegistry()
	err := tools.RegisterBuiltins(registry, map[tools.ID]tools.Executor{
		tools.SearchMemory: tools.ExecutorFunc(func(_ context.Context, params map[string]any, _ *core.AgentContext) (tools.Result, error) {
			return tools.Result{Success: true, DisplayText: "found " + params["query"].(string)}, nil
		}),
	})
	if err != nil {
		t.Fatal(err)
	}
	_ = registry.Register(tools.Tool{
		Name:       tools.ReplayWorkflow,
		Parameters: []tools.Parameter{{Name: "workflow", Type: tools.TypeString, Required: true}},
		Executor:   NewReplayExecutor(registry, dir, WithStepDelay(0)),
	})

	res := registry.Execute(context.Background(), tools.Call{Tool: tools.ReplayWorkflow, Parameters: map[string]any{"workflow": "w.json"}}, nil)
	if !res.Success || res.DisplayText != "found go" {
		t.Fatalf("unexpected result: %+v", res)
	}
}
