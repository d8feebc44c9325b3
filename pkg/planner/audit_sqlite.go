// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package planner

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteAuditStore persists audit records in SQLite.
type SQLiteAuditStore struct {
	db *sql.DB
}

// NewSQLiteAuditStore wraps db and ensures the audit table exists.
func NewSQLiteAuditStore(db *sql.DB) (*SQLiteAuditStore, error) {
	if db == nil {
		return nil, errors.New("db is nil")
	}
	if err := ensureAuditSchema(db); err != nil {
		return nil, err
	}
	return &SQLiteAuditStore{db: db}, nil
}

// Record stores a single record.
func (s *SQLiteAuditStore) Record(ctx context.Context, record AuditRecord) error {
	output, err := encodeAuditOutput(record.Output)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO plan_audit (
			plan_id, run_id, step_id, tool, status, output_json, error_text, started_at, completed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		record.PlanID,
		record.RunID,
		record.StepID,
		record.Tool,
		string(record.Status),
		string(output),
		record.Error,
		utc(record.StartedAt),
		nullTime(record.CompletedAt),
	)
	return err
}

// List returns matching records ordered by insertion.
func (s *SQLiteAuditStore) List(ctx context.Context, filter AuditFilter) ([]AuditRecord, error) {
	var (
		clauses []string
		args    []any
	)
	add := func(clause string, value any) {
		clauses = append(clauses, clause)
		args = append(args, value)
	}
	if filter.PlanID != "" {
		add("plan_id = ?", filter.PlanID)
	}
	if filter.RunID != "" {
		add("run_id = ?", filter.RunID)
	}
	if filter.StepID != "" {
		add("step_id = ?", filter.StepID)
	}
	if filter.Status != "" {
		add("status = ?", string(filter.Status))
	}

	query := `SELECT plan_id, run_id, step_id, tool, status, output_json, error_text, started_at, completed_at FROM plan_audit`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY id ASC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []AuditRecord
	for rows.Next() {
		var (
			r          AuditRecord
			runID      sql.NullString
			status     string
			outputJSON sql.NullString
			errText    sql.NullString
			started    sql.NullTime
			completed  sql.NullTime
		)
		if err := rows.Scan(&r.PlanID, &runID, &r.StepID, &r.Tool, &status,
			&outputJSON, &errText, &started, &completed); err != nil {
			return nil, err
		}
		r.RunID = runID.String
		r.Status = StepStatus(status)
		r.Error = errText.String
		if outputJSON.Valid {
			if out, err := decodeAuditOutput([]byte(outputJSON.String)); err == nil {
				r.Output = out
			}
		}
		if started.Valid {
			r.StartedAt = started.Time
		}
		if completed.Valid {
			r.CompletedAt = completed.Time
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: utc(t), Valid: !t.IsZero()}
}

func ensureAuditSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS plan_audit (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			plan_id TEXT NOT NULL,
			run_id TEXT,
			step_id TEXT NOT NULL,
			tool TEXT NOT NULL,
			status TEXT NOT NULL,
			output_json TEXT,
			error_text TEXT,
			started_at TIMESTAMP,
			completed_at TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_plan_audit_plan ON plan_audit(plan_id);
		CREATE INDEX IF NOT EXISTS idx_plan_audit_status ON plan_audit(status);
	`)
	return err
}
