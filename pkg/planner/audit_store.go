// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package planner

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// AuditRecord is one step transition of a plan run.
type AuditRecord struct {
	PlanID      string     `json:"plan_id"`
	RunID       string     `json:"run_id,omitempty"`
	StepID      string     `json:"step_id"`
	Tool        string     `json:"tool"`
	Status      StepStatus `json:"status"`
	Output      any        `json:"output,omitempty"`
	Error       string     `json:"error,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt time.Time  `json:"completed_at,omitempty"`
}

// AuditStore persists step transitions.
type AuditStore interface {
	Record(ctx context.Context, record AuditRecord) error
	List(ctx context.Context, filter AuditFilter) ([]AuditRecord, error)
}

// AuditFilter limits audit queries. Zero fields match everything.
type AuditFilter struct {
	PlanID string
	RunID  string
	StepID string
	Status StepStatus
	Limit  int
}

func (f AuditFilter) match(r AuditRecord) bool {
	if f.PlanID != "" && r.PlanID != f.PlanID {
		return false
	}
	if f.RunID != "" && r.RunID != f.RunID {
		return false
	}
	if f.StepID != "" && r.StepID != f.StepID {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	return true
}

// MemoryAuditStore keeps audit records in memory.
type MemoryAuditStore struct {
	mu      sync.Mutex
	records []AuditRecord
}

// NewMemoryAuditStore returns an empty in-memory audit store.
func NewMemoryAuditStore() *MemoryAuditStore {
	return &MemoryAuditStore{}
}

// Record appends a record.
func (s *MemoryAuditStore) Record(_ context.Context, record AuditRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return nil
}

// List returns matching records in insertion order.
func (s *MemoryAuditStore) List(_ context.Context, filter AuditFilter) ([]AuditRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]AuditRecord, 0, len(s.records))
	for _, r := range s.records {
		if !filter.match(r) {
			continue
		}
		out = append(out, r)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

func encodeAuditOutput(output any) ([]byte, error) {
	if output == nil {
		return []byte("null"), nil
	}
	return json.Marshal(output)
}

func decodeAuditOutput(raw []byte) (any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func utc(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}
