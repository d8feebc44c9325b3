// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package planner

// ProgressType tags a progress notification.
type ProgressType string

const (
	ProgressPlanStarted   ProgressType = "plan_started"
	ProgressStepStarted   ProgressType = "step_started"
	ProgressStepCompleted ProgressType = "step_completed"
	ProgressStepFailed    ProgressType = "step_failed"
	ProgressStepSkipped   ProgressType = "step_skipped"
	ProgressPlanCompleted ProgressType = "plan_completed"
	ProgressPlanAborted   ProgressType = "plan_aborted"
)

// Progress is an observational notification. StepIndex is 1-based and zero
// for plan-level notifications.
type Progress struct {
	Type       ProgressType `json:"type"`
	Message    string       `json:"message"`
	StepIndex  int          `json:"step_index,omitempty"`
	TotalSteps int          `json:"total_steps,omitempty"`
	ToolName   string       `json:"tool_name,omitempty"`
}

// ProgressFunc receives progress notifications on the runner goroutine. It
// must not block.
type ProgressFunc func(Progress)
