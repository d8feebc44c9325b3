// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package i18n

import "testing"

func TestMessageLanguageMatching(t *testing.T) {
	c := Default()
	tests := []struct {
		lang string
		want string
	}{
		{"", english.messages[KeyAborted]},
		{"en-US", english.messages[KeyAborted]},
		{"es-ES", spanish.messages[KeyAborted]},
		{"zh-CN", chinese.messages[KeyAborted]},
		{"not a language!", english.messages[KeyAborted]},
	}
	for _, tt := range tests {
		t.Run(tt.lang, func(t *testing.T) {
			if got := c.Message(tt.lang, KeyAborted); got != tt.want {
				t.Errorf("Message(%q) = %q, want %q", tt.lang, got, tt.want)
			}
		})
	}
}

func TestMessageFormatting(t *testing.T) {
	c := Default()
	if got := c.Message("en", KeyRunningTool, "summarize"); got != "Running summarize..." {
		t.Fatalf("unexpected formatted message: %q", got)
	}
	if got := c.Message("en", Key("missing.key")); got != "missing.key" {
		t.Fatalf("expected key echo for missing entry, got %q", got)
	}
}

func TestSuggestionsAreCopies(t *testing.T) {
	c := Default()
	s := c.Suggestions("en", KeyTimeout)
	if len(s) == 0 {
		t.Fatal("expected default suggestions")
	}
	s[0] = "mutated"
	if c.Suggestions("en", KeyTimeout)[0] == "mutated" {
		t.Fatal("suggestions must not alias the catalog")
	}
}

func TestCatalogBundlesAreComplete(t *testing.T) {
	for key := range english.messages {
		if _, ok := spanish.messages[key]; !ok {
			t.Errorf("spanish bundle missing %s", key)
		}
		if _, ok := chinese.messages[key]; !ok {
			t.Errorf("chinese bundle missing %s", key)
		}
	}
}
