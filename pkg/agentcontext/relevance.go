// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package agentcontext

import (
	"sort"
	"strings"
	"unicode"

	"github.com/jllopis/pagepilot/pkg/core"
)

// ScoredMemory is a memory with its similarity to a query.
type ScoredMemory struct {
	Item  core.MemoryItem
	Score float64
}

// RetrieveRelevantMemories returns at most limit memories (the configured
// maximum when limit <= 0) whose word-overlap similarity with query reaches
// the relevance threshold, best first. Order among equal scores is not defined.
func (m *Manager) RetrieveRelevantMemories(query string, limit int) []core.MemoryItem {
	scored := m.ScoreMemories(query)
	if limit <= 0 {
		limit = m.maxRelevantMemories
	}
	if len(scored) > limit {
		scored = scored[:limit]
	}
	out := make([]core.MemoryItem, len(scored))
	for i, s := range scored {
		out[i] = s.Item
	}
	return out
}

// ScoreMemories returns every memory scoring at or above the threshold,
// sorted by descending score.
func (m *Manager) ScoreMemories(query string) []ScoredMemory {
	queryWords := wordSet(query)
	if len(queryWords) == 0 {
		return nil
	}

	m.mu.RLock()
	memories := append([]core.MemoryItem(nil), m.memories...)
	threshold := m.relevanceThreshold
	m.mu.RUnlock()

	var scored []ScoredMemory
	for _, item := range memories {
		score := jaccard(queryWords, wordSet(item.Content))
		if score >= threshold {
			scored = append(scored, ScoredMemory{Item: item, Score: score})
		}
	}
	sort.Slice(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// Similarity is the Jaccard index of the word sets of a and b.
func Similarity(a, b string) float64 {
	return jaccard(wordSet(a), wordSet(b))
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for w := range a {
		if _, ok := b[w]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

func wordSet(s string) map[string]struct{} {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}
