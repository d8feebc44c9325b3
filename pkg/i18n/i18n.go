// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

// Package i18n holds the user-facing message catalog used for errors,
// cancellation notices and canned replies.
package i18n

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Key identifies a catalog entry.
type Key string

const (
	KeyToolNotFound        Key = "error.tool_not_found"
	KeyToolExecutionFailed Key = "error.tool_execution_failed"
	KeyInvalidParameters   Key = "error.invalid_parameters"
	KeyContextUnavailable  Key = "error.context_unavailable"
	KeyLLMError            Key = "error.llm_error"
	KeyTimeout             Key = "error.timeout"
	KeyAborted             Key = "error.aborted"
	KeyUnknown             Key = "error.unknown"

	KeyCancelled     Key = "agent.cancelled"
	KeyGreeting      Key = "agent.greeting"
	KeyToolDone      Key = "agent.tool_done"
	KeySuggestions   Key = "agent.suggestions"
	KeyThinking      Key = "agent.thinking"
	KeyRunningTool   Key = "agent.running_tool"
	KeyNoPageContext Key = "agent.no_page_context"
	KeyNoPost        Key = "agent.no_post"
	KeyBlocked       Key = "agent.blocked"
)

type bundle struct {
	messages    map[Key]string
	suggestions map[Key][]string
}

// Catalog resolves messages for a requested language, falling back to
// English when the language is unknown.
type Catalog struct {
	tags    []language.Tag
	bundles []bundle
	matcher language.Matcher
}

// Default returns the built-in catalog (English, Spanish, Chinese).
func Default() *Catalog {
	tags := []language.Tag{language.English, language.Spanish, language.Chinese}
	return &Catalog{
		tags:    tags,
		bundles: []bundle{english, spanish, chinese},
		matcher: language.NewMatcher(tags),
	}
}

// Languages returns the supported language tags.
func (c *Catalog) Languages() []string {
	out := make([]string, len(c.tags))
	for i, t := range c.tags {
		out[i] = t.String()
	}
	return out
}

func (c *Catalog) resolve(lang string) bundle {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return c.bundles[0]
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return c.bundles[0]
	}
	_, idx, conf := c.matcher.Match(tag)
	if conf == language.No || idx < 0 || idx >= len(c.bundles) {
		return c.bundles[0]
	}
	return c.bundles[idx]
}

// Message returns the formatted message for key in lang.
func (c *Catalog) Message(lang string, key Key, args ...any) string {
	msg, ok := c.resolve(lang).messages[key]
	if !ok {
		msg, ok = c.bundles[0].messages[key]
	}
	if !ok {
		return string(key)
	}
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...)
	}
	return msg
}

// Suggestions returns the default suggestions for key in lang.
func (c *Catalog) Suggestions(lang string, key Key) []string {
	s, ok := c.resolve(lang).suggestions[key]
	if !ok {
		s = c.bundles[0].suggestions[key]
	}
	return append([]string(nil), s...)
}
