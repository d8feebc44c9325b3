// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package planner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LoadPlan loads a workflow plan from a YAML or JSON file.
func LoadPlan(path string) (*Plan, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("plan path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ParseJSON(data)
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return parseAuto(data)
	}
}

func parseAuto(data []byte) (*Plan, error) {
	if strings.HasPrefix(strings.TrimSpace(string(data)), "{") {
		if plan, err := ParseJSON(data); err == nil {
			return plan, nil
		}
	}
	if plan, err := ParseYAML(data); err == nil {
		return plan, nil
	}
	return nil, fmt.Errorf("unsupported plan format")
}
