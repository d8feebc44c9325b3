package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jllopis/pagepilot/pkg/core"
)

func TestFileTranscriptRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	tr := NewFileTranscript(dir)

	if msgs, err := tr.RecentMessages(ctx, "missing", 5); err != nil || len(msgs) != 0 {
		t.Fatalf("expected empty result for missing session, got %v %v", msgs, err)
	}

	_ = tr.AppendMessage(ctx, "a/b", core.ChatMessage{Role: core.RoleUser, Content: "hi"})
	_ = tr.AppendMessage(ctx, "a/b", core.ChatMessage{Role: core.RoleAssistant, Content: "hello"})
	_ = tr.AppendMessage(ctx, "a/b", core.ChatMessage{Role: core.RoleUser, Content: "bye"})

	if _, err := os.Stat(filepath.Join(dir, "a_b.jsonl")); err != nil {
		t.Fatalf("expected sanitized session file: %v", err)
	}

	msgs, err := tr.RecentMessages(ctx, "a/b", 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(msgs) != 2 || msgs[0].Content != "hello" || msgs[0].Role != core.RoleAssistant {
		t.Fatalf("unexpected messages: %+v", msgs)
	}

	if err := tr.ClearSession(ctx, "a/b"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := tr.ClearSession(ctx, "a/b"); err != nil {
		t.Fatalf("clearing twice should be a no-op: %v", err)
	}
}
