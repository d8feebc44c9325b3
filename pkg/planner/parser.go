// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package planner

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// ParseJSON loads a plan from JSON and validates it.
func ParseJSON(data []byte) (*Plan, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty JSON payload")
	}
	var plan Plan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("parse json plan: %w", err)
	}
	return finishParsed(&plan)
}

// ParseYAML loads a plan from YAML and validates it.
func ParseYAML(data []byte) (*Plan, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty YAML payload")
	}
	var plan Plan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("parse yaml plan: %w", err)
	}
	return finishParsed(&plan)
}

// MarshalJSON serializes a plan to JSON. Use pretty for indented output.
func MarshalJSON(plan *Plan, pretty bool) ([]byte, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	if pretty {
		return json.MarshalIndent(plan, "", "  ")
	}
	return json.Marshal(plan)
}

// MarshalYAML serializes a plan to YAML.
func MarshalYAML(plan *Plan) ([]byte, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return yaml.Marshal(plan)
}

// finishParsed fills in a plan id and positional step ids left out of
// hand-written workflow files, then validates.
func finishParsed(plan *Plan) (*Plan, error) {
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	for i := range plan.Steps {
		if plan.Steps[i].ID == "" {
			plan.Steps[i].ID = fmt.Sprintf("step-%d", i+1)
		}
	}
	if plan.EstimatedDuration == 0 {
		plan.EstimatedDuration = estimatePerStep * time.Duration(len(plan.Steps))
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return plan, nil
}
