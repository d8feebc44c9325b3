// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package planner

import "fmt"

// Order returns steps in dependency order using a depth-first traversal.
// Steps without mutual dependencies keep their declaration order. A cycle
// or an unknown dependency is an error.
func Order(steps []PlannedStep) ([]PlannedStep, error) {
	index := make(map[string]int, len(steps))
	for i, step := range steps {
		index[step.ID] = i
	}

	const (
		unvisited = iota
		visiting
		visited
	)
	marks := make([]int, len(steps))
	ordered := make([]PlannedStep, 0, len(steps))

	var visit func(i int) error
	visit = func(i int) error {
		switch marks[i] {
		case visited:
			return nil
		case visiting:
			return fmt.Errorf("Circular dependency at step %s", steps[i].ID)
		}
		marks[i] = visiting
		for _, dep := range steps[i].DependsOn {
			j, ok := index[dep]
			if !ok {
				return fmt.Errorf("step %s depends on unknown step %s", steps[i].ID, dep)
			}
			if err := visit(j); err != nil {
				return err
			}
		}
		marks[i] = visited
		ordered = append(ordered, steps[i])
		return nil
	}

	for i := range steps {
		if err := visit(i); err != nil {
			return nil, err
		}
	}
	return ordered, nil
}
