// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package agentcontext

import (
	"fmt"
	"strings"
)

// BuildContextString renders the context for the chat collaborator. Sections
// appear in fixed order and are omitted when their source is absent:
// [Current Page], [Selected Text], [Current Post], [Relevant Knowledge].
func (m *Manager) BuildContextString(query string) string {
	actx := m.BuildContext(query)

	var sections []string
	if actx.Page != nil {
		var b strings.Builder
		b.WriteString("[Current Page]\n")
		fmt.Fprintf(&b, "URL: %s\n", actx.Page.URL)
		fmt.Fprintf(&b, "Title: %s\n", actx.Page.Title)
		if actx.Page.Content != "" {
			fmt.Fprintf(&b, "Content: %s", truncate(actx.Page.Content, m.maxPageContentChars))
		}
		sections = append(sections, strings.TrimRight(b.String(), "\n"))
	}
	if actx.Selection != "" {
		sections = append(sections, "[Selected Text]\n"+actx.Selection)
	}
	if post := actx.CurrentPost; post != nil {
		sections = append(sections, fmt.Sprintf("[Current Post]\nAuthor: %s\nContent: %s\nPlatform: %s",
			post.Author, post.Content, post.Platform))
	}
	if len(actx.Memories) > 0 {
		var b strings.Builder
		b.WriteString("[Relevant Knowledge]")
		for i, mem := range actx.Memories {
			fmt.Fprintf(&b, "\n%d. %s", i+1, mem.Content)
		}
		sections = append(sections, b.String())
	}
	return strings.Join(sections, "\n\n")
}

// truncate cuts s to at most max runes, appending an ellipsis when cut.
func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
