// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package planner

import (
	"strings"
	"testing"
)

func ids(steps []PlannedStep) string {
	out := make([]string, len(steps))
	for i, s := range steps {
		out[i] = s.ID
	}
	return strings.Join(out, ",")
}

func TestOrder(t *testing.T) {
	tests := []struct {
		name  string
		steps []PlannedStep
		want  string
		err   string
	}{
		{name: "empty", want: ""},
		{name: "declaration order kept", steps: []PlannedStep{step("x"), step("y")}, want: "x,y"},
		{name: "dependencies first", steps: []PlannedStep{step("C", "A", "B"), step("B", "A"), step("A")}, want: "A,B,C"},
		{name: "diamond", steps: []PlannedStep{step("D", "B", "C"), step("B", "A"), step("C", "A"), step("A")}, want: "A,B,C,D"},
		{name: "self cycle", steps: []PlannedStep{step("A", "A")}, err: "Circular dependency at step A"},
		{name: "cycle", steps: []PlannedStep{step("A", "B"), step("B", "A")}, err: "Circular dependency at step"},
		{name: "unknown dependency", steps: []PlannedStep{step("A", "ghost")}, err: "unknown step ghost"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Order(tt.steps)
			if tt.err != "" {
				if err == nil || !strings.Contains(err.Error(), tt.err) {
					t.Fatalf("expected error containing %q, got %v", tt.err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ids(got) != tt.want {
				t.Fatalf("order = %s, want %s", ids(got), tt.want)
			}
		})
	}
}

func TestPlanValidate(t *testing.T) {
	valid := &Plan{Steps: []PlannedStep{step("a"), step("b", "a")}}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	dup := &Plan{Steps: []PlannedStep{step("a"), step("a")}}
	if err := dup.Validate(); err == nil {
		t.Fatal("expected duplicate id error")
	}
	bad := &Plan{Steps: []PlannedStep{{ID: "a", Tool: "translate"}}}
	if err := bad.Validate(); err == nil {
		t.Fatal("expected unsupported tool error")
	}
	var nilPlan *Plan
	if err := nilPlan.Validate(); err == nil {
		t.Fatal("expected nil plan error")
	}
}
