// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package agentcontext

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/jllopis/pagepilot/pkg/core"
)

func memories(contents ...string) []core.MemoryItem {
	out := make([]core.MemoryItem, len(contents))
	for i, c := range contents {
		out[i] = core.MemoryItem{ID: fmt.Sprintf("m%d", i), Content: c}
	}
	return out
}

func TestAddMessageTrimsOldestFirst(t *testing.T) {
	m := New(WithMaxChatHistory(3))
	for i := 0; i < 5; i++ {
		m.AddMessage(core.RoleUser, fmt.Sprintf("msg-%d", i))
	}
	history := m.ChatHistory()
	if len(history) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(history))
	}
	if history[0].Content != "msg-2" || history[2].Content != "msg-4" {
		t.Fatalf("unexpected history order: %+v", history)
	}
}

func TestRecentHistory(t *testing.T) {
	m := New()
	for i := 0; i < 4; i++ {
		m.AddMessage(core.RoleAssistant, fmt.Sprintf("m%d", i))
	}
	recent := m.RecentHistory(2)
	if len(recent) != 2 || recent[0].Content != "m2" {
		t.Fatalf("unexpected recent history: %+v", recent)
	}
	if len(m.RecentHistory(10)) != 4 {
		t.Fatal("expected full history when n exceeds length")
	}
}

func TestRetrieveRelevantMemories(t *testing.T) {
	m := New(WithMaxRelevantMemories(2), WithRelevanceThreshold(0.2))
	m.SetMemories(memories(
		"golang channels and goroutines",
		"python decorators",
		"golang generics",
		"golang modules and goroutines tutorial",
	))

	got := m.RetrieveRelevantMemories("golang goroutines", 0)
	if len(got) > 2 {
		t.Fatalf("expected at most 2 memories, got %d", len(got))
	}
	if len(got) == 0 || got[0].Content != "golang channels and goroutines" {
		t.Fatalf("expected best match first, got %+v", got)
	}
	for _, item := range got {
		if s := Similarity("golang goroutines", item.Content); s < 0.2 {
			t.Fatalf("memory %q below threshold: %v", item.Content, s)
		}
	}

	if got := m.RetrieveRelevantMemories("golang goroutines", 1); len(got) != 1 {
		t.Fatalf("expected explicit limit to win, got %d", len(got))
	}
}

func TestRetrieveRelevantMemoriesNeverBelowThreshold(t *testing.T) {
	m := New(WithMaxRelevantMemories(10), WithRelevanceThreshold(0.5))
	m.SetMemories(memories("a b c d", "a b", "x y z", "a"))
	for _, s := range m.ScoreMemories("a b") {
		if s.Score < 0.5 {
			t.Fatalf("score %v below threshold for %q", s.Score, s.Item.Content)
		}
	}
	if got := m.RetrieveRelevantMemories("a b", 0); len(got) != 3 {
		t.Fatalf("expected 3 memories at or above 0.5, got %d: %+v", len(got), got)
	}
}

func TestRetrieveRelevantMemoriesEmptyInputs(t *testing.T) {
	m := New()
	if got := m.RetrieveRelevantMemories("anything", 0); len(got) != 0 {
		t.Fatalf("expected no memories from empty set, got %d", len(got))
	}
	m.SetMemories(memories("something"))
	if got := m.RetrieveRelevantMemories("", 0); len(got) != 0 {
		t.Fatalf("expected no memories for empty query, got %d", len(got))
	}
	if got := m.RetrieveRelevantMemories("  ...  ", 0); len(got) != 0 {
		t.Fatalf("expected no memories for punctuation-only query, got %d", len(got))
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"hello world", "hello world", 1},
		{"Hello, World!", "hello world", 1},
		{"a b", "b c", 1.0 / 3.0},
		{"", "x", 0},
	}
	for _, tt := range tests {
		if got := Similarity(tt.a, tt.b); got != tt.want {
			t.Errorf("Similarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestBuildContext(t *testing.T) {
	m := New(WithMaxRelevantMemories(2))
	m.SetMemories(memories("first note", "second note", "third note about cats"))
	m.SetPersonas([]core.Persona{{ID: "p1", Name: "Friendly"}})
	m.SetActivePersonaID("p1")
	m.UpdatePageContext(&core.PageContext{URL: "https://example.com", Title: "Example", Content: "body"})
	m.UpdateSelection("selected")
	m.SetCurrentPost(&core.Post{Author: "ana", Content: "hello", Platform: "x"})

	actx := m.BuildContext("")
	if len(actx.Memories) != 2 || actx.Memories[0].Content != "first note" {
		t.Fatalf("expected first N memories without query, got %+v", actx.Memories)
	}
	if actx.Page == nil || actx.Selection != "selected" || actx.CurrentPost == nil {
		t.Fatalf("expected page, selection and post in snapshot: %+v", actx)
	}
	if p, ok := actx.ActivePersona(); !ok || p.Name != "Friendly" {
		t.Fatalf("expected active persona in snapshot")
	}

	ranked := m.BuildContext("cats")
	if len(ranked.Memories) != 1 || ranked.Memories[0].Content != "third note about cats" {
		t.Fatalf("expected ranked memories for query, got %+v", ranked.Memories)
	}

	// Snapshot is isolated from later writes.
	m.UpdateSelection("changed")
	actx.Page.Title = "mutated"
	if actx.Selection != "selected" {
		t.Fatal("snapshot must not observe later writes")
	}
	if m.BuildContext("").Page.Title != "Example" {
		t.Fatal("mutating a snapshot must not change the manager")
	}
}

func TestClearKeepsMemoriesAndPersonas(t *testing.T) {
	m := New()
	m.SetMemories(memories("note"))
	m.SetPersonas([]core.Persona{{ID: "p"}})
	m.UpdateSelection("x")
	m.AddMessage(core.RoleUser, "hi")
	m.Clear()

	actx := m.BuildContext("")
	if actx.Selection != "" || len(actx.ChatHistory) != 0 || actx.Page != nil {
		t.Fatalf("expected cleared session state: %+v", actx)
	}
	if len(actx.Memories) != 1 || len(actx.Personas) != 1 {
		t.Fatal("expected memories and personas to survive Clear")
	}
}

func TestBuildContextStringSections(t *testing.T) {
	m := New(WithMaxPageContentChars(5))
	if got := m.BuildContextString(""); got != "" {
		t.Fatalf("expected empty context string, got %q", got)
	}

	m.SetMemories(memories("likes golang"))
	m.UpdatePageContext(&core.PageContext{URL: "https://go.dev", Title: "Go", Content: "abcdefghij"})
	m.UpdateSelection("picked text")
	m.SetCurrentPost(&core.Post{Author: "bob", Content: "post body", Platform: "mastodon"})

	got := m.BuildContextString("golang")
	order := []string{"[Current Page]", "[Selected Text]", "[Current Post]", "[Relevant Knowledge]"}
	last := -1
	for _, header := range order {
		idx := strings.Index(got, header)
		if idx < 0 {
			t.Fatalf("missing section %s in %q", header, got)
		}
		if idx < last {
			t.Fatalf("section %s out of order in %q", header, got)
		}
		last = idx
	}
	if !strings.Contains(got, "Content: abcde...") {
		t.Fatalf("expected truncated page content, got %q", got)
	}
	if !strings.Contains(got, "Author: bob") || !strings.Contains(got, "Platform: mastodon") {
		t.Fatalf("expected post fields, got %q", got)
	}
	if !strings.Contains(got, "1. likes golang") {
		t.Fatalf("expected numbered memory list, got %q", got)
	}
}

func TestBuildContextStringOmitsAbsentSections(t *testing.T) {
	m := New()
	m.UpdateSelection("only selection")
	got := m.BuildContextString("")
	if got != "[Selected Text]\nonly selection" {
		t.Fatalf("unexpected context string: %q", got)
	}
}

func TestConcurrentWritersLastWriterWins(t *testing.T) {
	m := New(WithMaxChatHistory(1000))
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m.UpdateSelection(fmt.Sprintf("sel-%d", i))
			m.AddMessage(core.RoleUser, fmt.Sprintf("msg-%d", i))
			_ = m.BuildContext("msg")
		}(i)
	}
	wg.Wait()

	if got := len(m.ChatHistory()); got != 20 {
		t.Fatalf("expected 20 messages, got %d", got)
	}
	sel := m.BuildContext("").Selection
	if !strings.HasPrefix(sel, "sel-") {
		t.Fatalf("expected one writer's selection to win, got %q", sel)
	}
}
