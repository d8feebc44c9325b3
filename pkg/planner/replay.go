// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package planner

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jllopis/pagepilot/pkg/core"
	"github.com/jllopis/pagepilot/pkg/tools"
)

type replayKey struct{}

// ReplayExecutor runs saved workflow plans for the replay_workflow tool.
// Each replay uses its own Engine so it can run inside a step of another
// plan. Nested replays are rejected.
type ReplayExecutor struct {
	runner ToolRunner
	dir    string
	opts   []Option
}

// NewReplayExecutor resolves relative workflow paths against dir and builds
// child engines with opts.
func NewReplayExecutor(runner ToolRunner, dir string, opts ...Option) *ReplayExecutor {
	return &ReplayExecutor{runner: runner, dir: dir, opts: opts}
}

var _ tools.Executor = (*ReplayExecutor)(nil)

// Execute loads the workflow named by params["workflow"] and runs it to
// completion.
func (r *ReplayExecutor) Execute(ctx context.Context, params map[string]any, actx *core.AgentContext) (tools.Result, error) {
	if ctx.Value(replayKey{}) != nil {
		return tools.Failure("nested workflow replay is not supported"), nil
	}
	name, _ := params["workflow"].(string)
	path := r.resolve(name)

	plan, err := LoadPlan(path)
	if err != nil {
		return tools.Failure(fmt.Sprintf("load workflow %s failed: %v", name, err),
			"Check the workflow file exists and is valid YAML or JSON"), nil
	}

	engine := NewEngine(r.runner, r.opts...)
	steps, err := engine.Execute(context.WithValue(ctx, replayKey{}, name), plan, actx)
	if err != nil {
		return tools.Failure(fmt.Sprintf("workflow %s is invalid: %v", name, err)), nil
	}
	for range steps {
	}

	summary := engine.GenerateSummary()
	if !summary.Success {
		msg := summary.Text
		if msg == "" {
			msg = fmt.Sprintf("workflow %s completed no steps", name)
		}
		return tools.Failure(msg), nil
	}
	return tools.Result{
		Success:     true,
		Data:        engine.Steps(),
		DisplayText: summary.Text,
	}, nil
}

func (r *ReplayExecutor) resolve(name string) string {
	name = strings.TrimSpace(name)
	if name == "" || filepath.IsAbs(name) || r.dir == "" {
		return name
	}
	return filepath.Join(r.dir, name)
}
