// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/jllopis/pagepilot/pkg/core"
	"github.com/jllopis/pagepilot/pkg/errors"
)

func staticExecutor(res Result, err error) Executor {
	return ExecutorFunc(func(context.Context, map[string]any, *core.AgentContext) (Result, error) {
		return res, err
	})
}

func searchTool(exec Executor) Tool {
	return Tool{
		Name: SearchMemory,
		Parameters: []Parameter{
			{Name: "query", Type: TypeString, Required: true},
			{Name: "limit", Type: TypeNumber, Default: 5},
		},
		Executor: exec,
	}
}

func TestRegisterReplacesExistingTool(t *testing.T) {
	r := NewRegistry()
	first := searchTool(staticExecutor(Result{Success: true, DisplayText: "first"}, nil))
	second := searchTool(staticExecutor(Result{Success: true, DisplayText: "second"}, nil))
	second.Description = "newest"

	if err := r.Register(first); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := r.Register(second); err != nil {
		t.Fatalf("register: %v", err)
	}

	if got := len(r.List()); got != 1 {
		t.Fatalf("expected exactly one tool, got %d", got)
	}
	tool, ok := r.Get(SearchMemory)
	if !ok || tool.Description != "newest" {
		t.Fatalf("expected newest registration, got %+v", tool)
	}
	res := r.Execute(context.Background(), Call{Tool: SearchMemory, Parameters: map[string]any{"query": "x"}}, nil)
	if res.DisplayText != "second" {
		t.Fatalf("expected second executor to run, got %+v", res)
	}
}

func TestRegisterRejectsUnsupportedTools(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(Tool{Name: "translate", Executor: staticExecutor(Result{}, nil)}); err == nil {
		t.Fatal("expected error for unsupported tool name")
	}
	if err := r.Register(Tool{Name: Summarize}); err == nil {
		t.Fatal("expected error for missing executor")
	}
}

func TestUnregisterAndList(t *testing.T) {
	r := NewRegistry()
	if err := RegisterBuiltins(r, nil); err != nil {
		t.Fatalf("register builtins: %v", err)
	}
	list := r.List()
	if len(list) != len(AllIDs()) {
		t.Fatalf("expected %d tools, got %d", len(AllIDs()), len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i-1].Name > list[i].Name {
			t.Fatalf("list not sorted: %s before %s", list[i-1].Name, list[i].Name)
		}
	}
	if !r.Unregister(PageAction) {
		t.Fatal("expected page_action to be removed")
	}
	if r.Unregister(PageAction) {
		t.Fatal("expected second unregister to report absence")
	}
}

func TestExecuteMissingTool(t *testing.T) {
	r := NewRegistry()
	res := r.Execute(context.Background(), Call{Tool: Summarize}, nil)
	if res.Success {
		t.Fatal("expected failure")
	}
	if !strings.Contains(res.Error, "summarize not found") {
		t.Fatalf("unexpected error: %q", res.Error)
	}
	if got := errors.ClassifyMessage(res.Error); got != errors.TypeToolNotFound {
		t.Fatalf("expected tool_not_found classification, got %s", got)
	}
}

func TestExecuteInvalidParametersSkipsExecutor(t *testing.T) {
	called := false
	r := NewRegistry()
	_ = r.Register(searchTool(ExecutorFunc(func(context.Context, map[string]any, *core.AgentContext) (Result, error) {
		called = true
		return Result{Success: true, DisplayText: "ok"}, nil
	})))

	res := r.Execute(context.Background(), Call{Tool: SearchMemory, Parameters: map[string]any{"limit": "many"}}, nil)
	if res.Success || called {
		t.Fatalf("expected validation failure without executor call, got %+v", res)
	}
	if !strings.Contains(res.Error, "missing required parameter: query") ||
		!strings.Contains(res.Error, "parameter limit must be a number") {
		t.Fatalf("expected all violations in error, got %q", res.Error)
	}
	if len(res.Suggestions) == 0 {
		t.Fatal("expected usage suggestion")
	}
}

func TestExecuteFillsDefaults(t *testing.T) {
	var seen map[string]any
	r := NewRegistry()
	_ = r.Register(searchTool(ExecutorFunc(func(_ context.Context, params map[string]any, _ *core.AgentContext) (Result, error) {
		seen = params
		return Result{Success: true, Data: params}, nil
	})))

	params := map[string]any{"query": "golang"}
	res := r.Execute(context.Background(), Call{Tool: SearchMemory, Parameters: params}, nil)
	if !res.Success {
		t.Fatalf("unexpected failure: %s", res.Error)
	}
	if seen["limit"] != 5 {
		t.Fatalf("expected default limit, got %v", seen["limit"])
	}
	if _, ok := params["limit"]; ok {
		t.Fatal("caller parameters must not be mutated")
	}
}

func TestResolveFillsDefaults(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(searchTool(ExecutorFunc(func(context.Context, map[string]any, *core.AgentContext) (Result, error) {
		return Result{Success: true, DisplayText: "ok"}, nil
	}))); err != nil {
		t.Fatalf("Register: %v", err)
	}

	params := map[string]any{"query": "golang"}
	call := r.Resolve(Call{Tool: SearchMemory, Parameters: params, CallID: "c-1"})
	if call.Parameters["limit"] != 5 || call.Parameters["query"] != "golang" || call.CallID != "c-1" {
		t.Fatalf("unexpected resolved call %+v", call)
	}
	if _, ok := params["limit"]; ok {
		t.Fatal("caller parameters must not be mutated")
	}
	unknown := r.Resolve(Call{Tool: Summarize, Parameters: params})
	if len(unknown.Parameters) != 1 {
		t.Fatalf("unknown tool must keep its parameters, got %v", unknown.Parameters)
	}
}

func TestExecutePanickingExecutor(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(searchTool(ExecutorFunc(func(context.Context, map[string]any, *core.AgentContext) (Result, error) {
		panic("boom")
	})))

	res := r.Execute(context.Background(), Call{Tool: SearchMemory, Parameters: map[string]any{"query": "x"}}, nil)
	if res.Success {
		t.Fatal("expected failure from panicking executor")
	}
	if !strings.Contains(res.Error, "boom") {
		t.Fatalf("expected panic value in error, got %q", res.Error)
	}
}

func TestExecuteResultInvariant(t *testing.T) {
	tests := []struct {
		name string
		res  Result
		err  error
	}{
		{name: "success with text", res: Result{Success: true, DisplayText: "done"}},
		{name: "success with data", res: Result{Success: true, Data: []string{"a"}}},
		{name: "empty success", res: Result{Success: true}},
		{name: "failure without message", res: Result{Success: false}},
		{name: "failure with message", res: Result{Error: "bad"}},
		{name: "error return", err: stderrors.New("network down")},
		{name: "agent error return", err: errors.New(errors.TypeLLMError, "quota exceeded", nil).WithSuggestions("wait")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			_ = r.Register(searchTool(staticExecutor(tt.res, tt.err)))
			res := r.Execute(context.Background(), Call{Tool: SearchMemory, Parameters: map[string]any{"query": "q"}}, nil)
			if !res.Success && res.Error == "" {
				t.Fatalf("failed result without error: %+v", res)
			}
			if res.Success && res.Data == nil && res.DisplayText == "" {
				t.Fatalf("successful result without payload: %+v", res)
			}
		})
	}
}

func TestExecuteEmptySuccessBecomesFailure(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(searchTool(staticExecutor(Result{Success: true}, nil)))
	res := r.Execute(context.Background(), Call{Tool: SearchMemory, Parameters: map[string]any{"query": "q"}}, nil)
	if res.Success || res.Error != "search_memory returned an empty result" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestExecuteAgentErrorSuggestions(t *testing.T) {
	r := NewRegistry()
	err := errors.New(errors.TypeLLMError, "quota exceeded", nil).WithSuggestions("wait a minute")
	_ = r.Register(searchTool(staticExecutor(Result{}, err)))
	res := r.Execute(context.Background(), Call{Tool: SearchMemory, Parameters: map[string]any{"query": "q"}}, nil)
	if res.Success || len(res.Suggestions) != 1 || res.Suggestions[0] != "wait a minute" {
		t.Fatalf("expected suggestions carried from agent error, got %+v", res)
	}
}

func TestFindByIntent(t *testing.T) {
	r := NewRegistry()
	if err := RegisterBuiltins(r, nil); err != nil {
		t.Fatalf("register builtins: %v", err)
	}
	tests := []struct {
		action string
		want   ID
		found  bool
	}{
		{"summarize", Summarize, true},
		{"Summary", Summarize, true},
		{"extract", ExtractData, true},
		{"reply", GenerateReply, true},
		{"recall", SearchMemory, true},
		{"search", SearchMemory, true},
		{"click", PageAction, true},
		{"workflow", ReplayWorkflow, true},
		{"dance", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		tool, ok := r.FindByIntent(core.Intent{Type: core.IntentCommand, Action: tt.action})
		if ok != tt.found || tool.Name != tt.want {
			t.Errorf("FindByIntent(%q) = %q, %v; want %q, %v", tt.action, tool.Name, ok, tt.want, tt.found)
		}
	}

	r.Unregister(Summarize)
	if _, ok := r.FindByIntent(core.Intent{Action: "summary"}); ok {
		t.Fatal("expected no match for unregistered tool")
	}
}

func TestCheckRequirement(t *testing.T) {
	summarize := Tool{Name: Summarize, Requires: RequiresPageOrSelection}
	reply := Tool{Name: GenerateReply, Requires: RequiresPost}
	search := Tool{Name: SearchMemory}

	empty := &core.AgentContext{}
	if err := CheckRequirement(summarize, empty); err == nil || err.Type != errors.TypeContextUnavailable {
		t.Fatalf("expected context_unavailable, got %v", err)
	}
	if err := CheckRequirement(summarize, nil); err == nil {
		t.Fatal("expected error for nil context")
	}
	if err := CheckRequirement(summarize, &core.AgentContext{Selection: "text"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := CheckRequirement(summarize, &core.AgentContext{Page: &core.PageContext{Content: "body"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := CheckRequirement(reply, empty); err == nil {
		t.Fatal("expected error without post")
	}
	if err := CheckRequirement(reply, &core.AgentContext{CurrentPost: &core.Post{}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := CheckRequirement(search, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBuiltinsWithoutExecutorFail(t *testing.T) {
	r := NewRegistry()
	called := false
	err := RegisterBuiltins(r, map[ID]Executor{
		SearchMemory: ExecutorFunc(func(context.Context, map[string]any, *core.AgentContext) (Result, error) {
			called = true
			return Result{Success: true, DisplayText: "found"}, nil
		}),
	})
	if err != nil {
		t.Fatalf("register builtins: %v", err)
	}

	res := r.Execute(context.Background(), Call{Tool: SearchMemory, Parameters: map[string]any{"query": "q"}}, nil)
	if !res.Success || !called {
		t.Fatalf("expected bound executor to run, got %+v", res)
	}
	res = r.Execute(context.Background(), Call{Tool: ReplayWorkflow, Parameters: map[string]any{"workflow": "w"}}, nil)
	if res.Success || !strings.Contains(res.Error, "no executor configured") {
		t.Fatalf("expected unconfigured failure, got %+v", res)
	}
}
