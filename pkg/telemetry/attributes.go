// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Attribute keys shared by spans and metrics.
const (
	AttrComponent = "pagepilot.component"
	AttrSessionID = "pagepilot.session.id"

	AttrRunID      = "pagepilot.run.id"
	AttrRunPath    = "pagepilot.run.path" // "command", "chat", "stop"
	AttrRunOutcome = "pagepilot.run.outcome"

	AttrIntentType       = "pagepilot.intent.type"
	AttrIntentAction     = "pagepilot.intent.action"
	AttrIntentConfidence = "pagepilot.intent.confidence"

	AttrContextHistory  = "pagepilot.context.history_count"
	AttrContextMemories = "pagepilot.context.memory_count"
	AttrContextHasPage  = "pagepilot.context.has_page"

	AttrPlanID        = "pagepilot.plan.id"
	AttrPlanStepCount = "pagepilot.plan.step_count"

	AttrToolName    = "pagepilot.tool.name"
	AttrToolCallID  = "pagepilot.tool.call_id"
	AttrToolSuccess = "pagepilot.tool.success"

	AttrErrorType        = "pagepilot.error.type"
	AttrErrorRecoverable = "pagepilot.error.recoverable"

	AttrLLMModel    = "gen_ai.request.model"
	AttrLLMMessages = "gen_ai.request.messages"
)

// RunAttributes returns attributes for the top-level message span.
func RunAttributes(runID, model string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{attribute.String(AttrRunID, runID)}
	if model != "" {
		attrs = append(attrs, attribute.String(AttrLLMModel, model))
	}
	return attrs
}

// IntentAttributes describes an analyzed intent.
func IntentAttributes(intentType, action string, confidence float64) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(AttrIntentType, intentType),
		attribute.Float64(AttrIntentConfidence, confidence),
	}
	if action != "" {
		attrs = append(attrs, attribute.String(AttrIntentAction, action))
	}
	return attrs
}

// ContextAttributes summarizes the context snapshot used for a turn.
func ContextAttributes(historyCount, memoryCount int, hasPage bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrContextHistory, historyCount),
		attribute.Int(AttrContextMemories, memoryCount),
		attribute.Bool(AttrContextHasPage, hasPage),
	}
}

// PlanAttributes describes a plan about to run.
func PlanAttributes(planID string, steps int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrPlanID, planID),
		attribute.Int(AttrPlanStepCount, steps),
	}
}

// ToolCallAttributes describes a tool invocation.
func ToolCallAttributes(name, callID string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{attribute.String(AttrToolName, name)}
	if callID != "" {
		attrs = append(attrs, attribute.String(AttrToolCallID, callID))
	}
	return attrs
}

// ErrorAttributes describes a classified failure.
func ErrorAttributes(errType string, recoverable bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrErrorType, errType),
		attribute.Bool(AttrErrorRecoverable, recoverable),
	}
}
