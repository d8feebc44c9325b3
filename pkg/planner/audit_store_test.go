// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package planner

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"
)

func sampleRecord(step string, status StepStatus) AuditRecord {
	return AuditRecord{
		PlanID:      "plan-1",
		RunID:       "run-1",
		StepID:      step,
		Tool:        "summarize",
		Status:      status,
		Output:      map[string]any{"ok": true},
		StartedAt:   time.Now().UTC(),
		CompletedAt: time.Now().UTC(),
	}
}

func TestMemoryAuditStore(t *testing.T) {
	store := NewMemoryAuditStore()
	ctx := context.Background()
	for _, r := range []AuditRecord{
		sampleRecord("a", StatusRunning),
		sampleRecord("a", StatusCompleted),
		sampleRecord("b", StatusFailed),
	} {
		if err := store.Record(ctx, r); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	all, err := store.List(ctx, AuditFilter{PlanID: "plan-1"})
	if err != nil || len(all) != 3 {
		t.Fatalf("expected 3 records, got %d (%v)", len(all), err)
	}
	failed, _ := store.List(ctx, AuditFilter{Status: StatusFailed})
	if len(failed) != 1 || failed[0].StepID != "b" {
		t.Fatalf("unexpected failed records: %+v", failed)
	}
	limited, _ := store.List(ctx, AuditFilter{StepID: "a", Limit: 1})
	if len(limited) != 1 || limited[0].Status != StatusRunning {
		t.Fatalf("unexpected limited records: %+v", limited)
	}
}

func TestSQLiteAuditStore(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()

	store, err := NewSQLiteAuditStore(db)
	if err != nil {
		t.Fatalf("new sqlite store: %v", err)
	}
	ctx := context.Background()
	running := sampleRecord("a", StatusRunning)
	running.CompletedAt = time.Time{}
	running.Output = nil
	for _, r := range []AuditRecord{running, sampleRecord("a", StatusCompleted), sampleRecord("b", StatusFailed)} {
		if err := store.Record(ctx, r); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	records, err := store.List(ctx, AuditFilter{PlanID: "plan-1", StepID: "a", Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Status != StatusRunning || !records[0].CompletedAt.IsZero() {
		t.Fatalf("unexpected first record: %+v", records[0])
	}
	out, ok := records[1].Output.(map[string]any)
	if !ok || out["ok"] != true {
		t.Fatalf("unexpected output: %#v", records[1].Output)
	}

	failed, err := store.List(ctx, AuditFilter{Status: StatusFailed})
	if err != nil || len(failed) != 1 {
		t.Fatalf("expected one failed record, got %d (%v)", len(failed), err)
	}
}

func TestNewSQLiteAuditStoreNilDB(t *testing.T) {
	if _, err := NewSQLiteAuditStore(nil); err == nil {
		t.Fatal("expected error for nil db")
	}
}
