// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/jllopis/pagepilot/pkg/core"
)

// SQLiteStore implements Store and Transcript on SQLite.
type SQLiteStore struct {
	db *sql.DB
}

var (
	_ Store      = (*SQLiteStore)(nil)
	_ Transcript = (*SQLiteStore)(nil)
)

// OpenSQLite opens (creating if needed) the database at path and ensures the
// schema.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	store, err := NewSQLiteStore(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewSQLiteStore wraps an open database and ensures the schema.
func NewSQLiteStore(ctx context.Context, db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	s := &SQLiteStore{db: db}
	if err := s.initialize(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// DB exposes the underlying handle so other stores can share it.
func (s *SQLiteStore) DB() *sql.DB { return s.db }

// Close closes the database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) initialize(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS memories (
			id TEXT PRIMARY KEY,
			content TEXT NOT NULL,
			tags_json TEXT,
			source TEXT,
			created_at TIMESTAMP NOT NULL
		);
		CREATE TABLE IF NOT EXISTS personas (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			tone TEXT,
			position INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS chat_messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_chat_messages_session ON chat_messages(session_id, id);
	`)
	return err
}

// SaveMemory upserts item, assigning an ID when empty.
func (s *SQLiteStore) SaveMemory(ctx context.Context, item core.MemoryItem) (core.MemoryItem, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	tags, err := json.Marshal(item.Tags)
	if err != nil {
		return core.MemoryItem{}, fmt.Errorf("failed to marshal tags: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO memories (id, content, tags_json, source, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			content = excluded.content,
			tags_json = excluded.tags_json,
			source = excluded.source
	`, item.ID, item.Content, string(tags), item.Source, item.CreatedAt.UTC())
	if err != nil {
		return core.MemoryItem{}, err
	}
	return item, nil
}

// ListMemories returns memories oldest first.
func (s *SQLiteStore) ListMemories(ctx context.Context) ([]core.MemoryItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, content, tags_json, source, created_at
		FROM memories
		ORDER BY created_at ASC, rowid ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []core.MemoryItem
	for rows.Next() {
		var (
			item   core.MemoryItem
			tags   sql.NullString
			source sql.NullString
		)
		if err := rows.Scan(&item.ID, &item.Content, &tags, &source, &item.CreatedAt); err != nil {
			return nil, err
		}
		item.Source = source.String
		if tags.Valid && tags.String != "" && tags.String != "null" {
			if err := json.Unmarshal([]byte(tags.String), &item.Tags); err != nil {
				return nil, fmt.Errorf("failed to unmarshal tags: %w", err)
			}
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// DeleteMemory removes a memory by ID.
func (s *SQLiteStore) DeleteMemory(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "memories", id)
}

// SavePersona upserts p, assigning an ID when empty. New personas are listed
// after existing ones.
func (s *SQLiteStore) SavePersona(ctx context.Context, p core.Persona) (core.Persona, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO personas (id, name, description, tone, position)
		VALUES (?, ?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM personas))
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			tone = excluded.tone
	`, p.ID, p.Name, p.Description, p.Tone)
	if err != nil {
		return core.Persona{}, err
	}
	return p, nil
}

// ListPersonas returns personas in insertion order.
func (s *SQLiteStore) ListPersonas(ctx context.Context) ([]core.Persona, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, description, tone FROM personas ORDER BY position ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.Persona
	for rows.Next() {
		var (
			p           core.Persona
			description sql.NullString
			tone        sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.Name, &description, &tone); err != nil {
			return nil, err
		}
		p.Description = description.String
		p.Tone = tone.String
		out = append(out, p)
	}
	return out, rows.Err()
}

// DeletePersona removes a persona by ID.
func (s *SQLiteStore) DeletePersona(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "personas", id)
}

// AppendMessage adds msg to the session transcript.
func (s *SQLiteStore) AppendMessage(ctx context.Context, sessionID string, msg core.ChatMessage) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO chat_messages (session_id, role, content, created_at) VALUES (?, ?, ?, ?)
	`, sessionID, string(msg.Role), msg.Content, msg.CreatedAt.UTC())
	return err
}

// RecentMessages returns the last limit messages, oldest first. A limit of
// zero or less returns all of them.
func (s *SQLiteStore) RecentMessages(ctx context.Context, sessionID string, limit int) ([]core.ChatMessage, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT role, content, created_at FROM (
			SELECT id, role, content, created_at
			FROM chat_messages
			WHERE session_id = ?
			ORDER BY id DESC
			LIMIT ?
		) ORDER BY id ASC
	`, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []core.ChatMessage
	for rows.Next() {
		var (
			msg  core.ChatMessage
			role string
		)
		if err := rows.Scan(&role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, err
		}
		msg.Role = core.Role(role)
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

// ClearSession drops a session transcript.
func (s *SQLiteStore) ClearSession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM chat_messages WHERE session_id = ?`, sessionID)
	return err
}

func (s *SQLiteStore) deleteByID(ctx context.Context, table, id string) error {
	res, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, table), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
