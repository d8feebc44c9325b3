// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

// Package planner turns intents into execution plans and runs them in
// dependency order, streaming step transitions as they happen.
package planner

import (
	"fmt"
	"time"

	"github.com/jllopis/pagepilot/pkg/tools"
)

// Plan is an ordered set of tool steps. The DependsOn graph must be acyclic.
type Plan struct {
	ID                string        `json:"id" yaml:"id"`
	Name              string        `json:"name,omitempty" yaml:"name,omitempty"`
	Steps             []PlannedStep `json:"steps" yaml:"steps"`
	EstimatedDuration time.Duration `json:"estimated_duration,omitempty" yaml:"estimated_duration,omitempty"`
	CreatedAt         time.Time     `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

// PlannedStep is one tool invocation within a plan.
type PlannedStep struct {
	ID          string         `json:"id" yaml:"id"`
	Tool        tools.ID       `json:"tool" yaml:"tool"`
	Parameters  map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	DependsOn   []string       `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
}

// Empty reports whether the plan needs no tool at all.
func (p *Plan) Empty() bool {
	return p == nil || len(p.Steps) == 0
}

// Validate checks step ids are present and unique, tools are supported,
// dependencies exist and form no cycle.
func (p *Plan) Validate() error {
	if p == nil {
		return fmt.Errorf("plan is nil")
	}
	seen := make(map[string]struct{}, len(p.Steps))
	for i, step := range p.Steps {
		if step.ID == "" {
			return fmt.Errorf("step %d missing id", i)
		}
		if _, dup := seen[step.ID]; dup {
			return fmt.Errorf("duplicate step id %q", step.ID)
		}
		seen[step.ID] = struct{}{}
		if !step.Tool.Valid() {
			return fmt.Errorf("step %q uses unsupported tool %q", step.ID, step.Tool)
		}
	}
	_, err := Order(p.Steps)
	return err
}

// StepStatus is the lifecycle state of a running step.
type StepStatus string

const (
	StatusPending   StepStatus = "pending"
	StatusRunning   StepStatus = "running"
	StatusCompleted StepStatus = "completed"
	StatusFailed    StepStatus = "failed"
	StatusSkipped   StepStatus = "skipped"
)

// Terminal reports whether no further transition follows s.
func (s StepStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusSkipped
}

// Step is a snapshot of a planned step at one transition. Snapshots are
// values; a terminal snapshot is never changed afterwards.
type Step struct {
	StepID string   `json:"step_id"`
	Tool   tools.ID `json:"tool"`
	CallID string   `json:"call_id,omitempty"`
	// Parameters are the arguments sent to the tool, defaults included.
	Parameters  map[string]any `json:"parameters,omitempty"`
	Status      StepStatus     `json:"status"`
	Thought     string         `json:"thought,omitempty"`
	Action      string         `json:"action,omitempty"`
	Observation string         `json:"observation,omitempty"`
	StartedAt   time.Time      `json:"started_at"`
	CompletedAt time.Time      `json:"completed_at,omitempty"`
	Error       string         `json:"error,omitempty"`
	Result      tools.Result   `json:"result"`
}
