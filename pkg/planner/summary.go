// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package planner

import "strings"

// Summary describes the outcome of the last run.
type Summary struct {
	Success   bool   `json:"success"`
	Text      string `json:"text"`
	Completed int    `json:"completed"`
	Failed    int    `json:"failed"`
	Skipped   int    `json:"skipped"`
}

// GenerateSummary reports success when no step failed and at least one
// completed. Text joins observations in execution order, or carries the
// first failure's error.
func (e *Engine) GenerateSummary() Summary {
	return Summarize(e.Steps())
}

// Summarize computes a Summary from step snapshots.
func Summarize(steps []Step) Summary {
	var (
		s            Summary
		observations []string
		firstFailure string
	)
	for _, step := range steps {
		switch step.Status {
		case StatusCompleted:
			s.Completed++
			if step.Observation != "" {
				observations = append(observations, step.Observation)
			}
		case StatusFailed:
			s.Failed++
			if firstFailure == "" {
				firstFailure = step.Error
			}
		case StatusSkipped:
			s.Skipped++
		}
	}
	s.Success = s.Failed == 0 && s.Completed > 0
	if s.Failed > 0 {
		s.Text = firstFailure
	} else {
		s.Text = strings.Join(observations, "\n")
	}
	return s
}
