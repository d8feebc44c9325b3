package main

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/jllopis/pagepilot/pkg/core"
	"github.com/jllopis/pagepilot/pkg/llm"
	"github.com/jllopis/pagepilot/pkg/tools"
)

// The shell has no browser attached, so the content tools work on the text
// loaded with /page and /select.

var (
	sentenceEnd = regexp.MustCompile(`[.!?]+(\s+|$)`)
	fieldLine   = regexp.MustCompile(`^\s*([A-Za-z][\w .-]{0,40}?)\s*:\s*(.+?)\s*$`)
)

func summarizeExecutor() tools.Executor {
	return tools.ExecutorFunc(func(_ context.Context, params map[string]any, _ *core.AgentContext) (tools.Result, error) {
		content, _ := params["content"].(string)
		style, _ := params["style"].(string)
		maxWords := 200
		if v, ok := params["max_length"].(float64); ok && v > 0 {
			maxWords = int(v)
		} else if v, ok := params["max_length"].(int); ok && v > 0 {
			maxWords = v
		}

		sentences := splitSentences(content)
		limit := 2
		if style == "detailed" || style == "bullets" {
			limit = 5
		}
		picked := make([]string, 0, limit)
		words := 0
		for _, s := range sentences {
			n := len(strings.Fields(s))
			if len(picked) == limit || (len(picked) > 0 && words+n > maxWords) {
				break
			}
			picked = append(picked, s)
			words += n
		}
		if len(picked) == 0 {
			return tools.Failure("nothing to summarize", "Load a page with /page or select text with /select"), nil
		}

		var text string
		if style == "bullets" {
			text = "• " + strings.Join(picked, "\n• ")
		} else {
			text = strings.Join(picked, " ")
		}
		return tools.Result{Success: true, Data: map[string]any{"summary": text, "sentences": len(picked)}, DisplayText: text}, nil
	})
}

func splitSentences(text string) []string {
	var out []string
	rest := strings.TrimSpace(text)
	for rest != "" {
		loc := sentenceEnd.FindStringIndex(rest)
		if loc == nil {
			out = append(out, rest)
			break
		}
		out = append(out, strings.TrimSpace(rest[:loc[1]]))
		rest = strings.TrimSpace(rest[loc[1]:])
	}
	return out
}

func extractExecutor() tools.Executor {
	return tools.ExecutorFunc(func(_ context.Context, params map[string]any, _ *core.AgentContext) (tools.Result, error) {
		content, _ := params["content"].(string)
		format, _ := params["format"].(string)
		wanted := map[string]bool{}
		if fields, ok := params["fields"].([]any); ok {
			for _, f := range fields {
				if s, ok := f.(string); ok {
					wanted[strings.ToLower(s)] = true
				}
			}
		}

		data := map[string]string{}
		for _, line := range strings.Split(content, "\n") {
			m := fieldLine.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			key := strings.ToLower(strings.TrimSpace(m[1]))
			if len(wanted) > 0 && !wanted[key] {
				continue
			}
			if _, seen := data[key]; !seen {
				data[key] = m[2]
			}
		}
		if len(data) == 0 {
			return tools.Failure("no key: value data found", "Select the lines that hold the data"), nil
		}

		res := tools.Result{Success: true, Data: data}
		keys := make([]string, 0, len(data))
		for k := range data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		switch format {
		case "table":
			var b strings.Builder
			b.WriteString("| field | value |\n|---|---|")
			for _, k := range keys {
				fmt.Fprintf(&b, "\n| %s | %s |", k, data[k])
			}
			res.DisplayText = b.String()
		case "list":
			lines := make([]string, len(keys))
			for i, k := range keys {
				lines[i] = fmt.Sprintf("- %s: %s", k, data[k])
			}
			res.DisplayText = strings.Join(lines, "\n")
		}
		return res, nil
	})
}

// replyExecutor drafts replies with the chat collaborator.
func replyExecutor(chatter llm.Chatter, model string) tools.Executor {
	return tools.ExecutorFunc(func(ctx context.Context, params map[string]any, _ *core.AgentContext) (tools.Result, error) {
		post, _ := params["post"].(map[string]any)
		var b strings.Builder
		fmt.Fprintf(&b, "Write a short reply to this post by %v:\n%v\n", post["author"], post["content"])
		if persona, ok := params["persona"].(map[string]any); ok {
			fmt.Fprintf(&b, "Write as %v (%v).\n", persona["name"], persona["tone"])
		}
		if tone, ok := params["tone"].(string); ok && tone != "" {
			fmt.Fprintf(&b, "Use a %s tone.\n", tone)
		}
		if extra, ok := params["instructions"].(string); ok && extra != "" {
			b.WriteString(extra)
		}

		reply, err := chatter.Chat(ctx, llm.ChatRequest{Message: b.String(), Model: model})
		if err != nil {
			return tools.Result{}, err
		}
		reply = strings.TrimSpace(reply)
		return tools.Result{Success: true, Data: map[string]any{"reply": reply}, DisplayText: reply}, nil
	})
}

func pageActionExecutor() tools.Executor {
	return tools.ExecutorFunc(func(_ context.Context, params map[string]any, _ *core.AgentContext) (tools.Result, error) {
		return tools.Failure(fmt.Sprintf("cannot %v: no browser is connected", params["action"]),
			"Load the page text with /page instead"), nil
	})
}
