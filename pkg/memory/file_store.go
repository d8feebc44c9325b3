// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/jllopis/pagepilot/pkg/core"
)

var unsafeSessionChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// FileTranscript persists each session as JSON lines under a directory.
type FileTranscript struct {
	dir string
	mu  sync.Mutex
}

var _ Transcript = (*FileTranscript)(nil)

// NewFileTranscript creates a file-backed transcript rooted at dir.
func NewFileTranscript(dir string) *FileTranscript {
	return &FileTranscript{dir: dir}
}

func (f *FileTranscript) path(sessionID string) string {
	name := unsafeSessionChars.ReplaceAllString(sessionID, "_")
	if name == "" {
		name = "default"
	}
	return filepath.Join(f.dir, name+".jsonl")
}

// AppendMessage appends a JSON-encoded message to the session file.
func (f *FileTranscript) AppendMessage(_ context.Context, sessionID string, msg core.ChatMessage) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return err
	}
	file, err := os.OpenFile(f.path(sessionID), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return err
	}
	defer file.Close()

	return json.NewEncoder(file).Encode(msg)
}

// RecentMessages returns the last limit messages, oldest first. A limit of
// zero or less returns all of them. A missing session yields no messages.
func (f *FileTranscript) RecentMessages(_ context.Context, sessionID string, limit int) ([]core.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	file, err := os.Open(f.path(sessionID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	var msgs []core.ChatMessage
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		var msg core.ChatMessage
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			return nil, fmt.Errorf("corrupt transcript line: %w", err)
		}
		msgs = append(msgs, msg)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}

// ClearSession removes the session file.
func (f *FileTranscript) ClearSession(_ context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	err := os.Remove(f.path(sessionID))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
