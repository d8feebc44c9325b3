// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package intent

import (
	"regexp"
	"strings"
)

type keyword struct {
	pattern *regexp.Regexp
	weight  float64
}

type rawKeyword struct {
	word   string
	weight float64
}

// actionKeywords lists weighted cues per tool action, in priority order for
// equal scores.
var actionKeywords = []struct {
	action string
	raw    []rawKeyword
}{
	{"summarize", []rawKeyword{
		{"summarize", 1.0}, {"summarise", 1.0}, {"summary", 1.0}, {"tldr", 1.0},
		{"tl;dr", 1.0}, {"sum up", 0.9}, {"digest", 0.7}, {"resumen", 1.0}, {"总结", 1.0},
	}},
	{"extract_data", []rawKeyword{
		{"extract", 1.0}, {"scrape", 0.9}, {"pull out", 0.8}, {"collect", 0.6}, {"extrae", 1.0}, {"提取", 1.0},
	}},
	{"generate_reply", []rawKeyword{
		{"reply", 1.0}, {"respond", 0.9}, {"write a response", 0.9}, {"comment", 0.7},
		{"draft", 0.8}, {"responde", 1.0}, {"回复", 1.0},
	}},
	{"search_memory", []rawKeyword{
		{"recall", 1.0}, {"search my notes", 1.0}, {"search memory", 1.0}, {"my notes", 0.8},
		{"what did i save", 0.9}, {"saved", 0.6}, {"search", 0.7}, {"busca", 0.9}, {"搜索", 1.0},
	}},
	{"page_action", []rawKeyword{
		{"click", 1.0}, {"scroll", 1.0}, {"fill", 0.9}, {"navigate", 0.9}, {"go to", 0.7}, {"press", 0.7},
	}},
	{"replay_workflow", []rawKeyword{
		{"replay", 1.0}, {"workflow", 0.9}, {"rerun", 0.9}, {"run again", 0.8},
	}},
}

var compiledActions = func() []struct {
	action   string
	keywords []keyword
} {
	out := make([]struct {
		action   string
		keywords []keyword
	}, len(actionKeywords))
	for i, a := range actionKeywords {
		out[i].action = a.action
		out[i].keywords = compileKeywords(a.raw)
	}
	return out
}()

// compileKeywords builds case-insensitive patterns. Latin single words allow
// common suffixes; phrases and non-Latin words match literally.
func compileKeywords(raws []rawKeyword) []keyword {
	out := make([]keyword, len(raws))
	for i, rk := range raws {
		var pattern string
		switch {
		case !isASCII(rk.word):
			pattern = regexp.QuoteMeta(rk.word)
		case strings.ContainsAny(rk.word, " ;"):
			pattern = `(?i)\b` + regexp.QuoteMeta(rk.word) + `\b`
		default:
			pattern = `(?i)\b` + regexp.QuoteMeta(rk.word) + `(?:es|s|d|ed|ing)?\b`
		}
		out[i] = keyword{pattern: regexp.MustCompile(pattern), weight: rk.weight}
	}
	return out
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > 127 {
			return false
		}
	}
	return true
}

var stopWords = []string{
	"stop", "cancel", "abort", "halt", "never mind", "nevermind", "quit that",
	"para", "detente", "cancela", "停止", "取消",
}

var greetingWords = []string{
	"hi", "hello", "hey", "good morning", "good afternoon", "good evening",
	"hola", "buenos días", "buenas", "你好", "您好",
}

var confirmationWords = []string{
	"yes", "yep", "yeah", "ok", "okay", "sure", "confirm", "go ahead", "do it",
	"sí", "si", "vale", "好的", "是的",
}

var clarificationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\s*i mean\b`),
	regexp.MustCompile(`(?i)\bwhat do you mean\b`),
	regexp.MustCompile(`(?i)\bclarify\b`),
	regexp.MustCompile(`(?i)^\s*no,?\s+i (meant|want)\b`),
}

var questionPattern = regexp.MustCompile(`(?i)^\s*(what|who|when|where|why|how|which|is|are|can|could|does|do|qué|cómo|cuál|dónde|por qué)\b`)

// normalize lowercases and trims punctuation around the message.
func normalize(message string) string {
	return strings.Trim(strings.ToLower(strings.TrimSpace(message)), " .!?¡¿。！？")
}

func matchesWhole(message string, words []string) bool {
	m := normalize(message)
	for _, w := range words {
		if m == w {
			return true
		}
	}
	return false
}
