package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/jllopis/pagepilot/pkg/agent"
	"github.com/jllopis/pagepilot/pkg/core"
	"github.com/jllopis/pagepilot/pkg/memory"
)

const shellHelp = `Commands:
  /page <file>                        load a text file as the current page
  /select <text>                      set the selected text
  /post <author>: <text>              set the post to reply to
  /remember <text> [#tag ...]         save a note
  /notes                              list saved notes
  /forget <id>                        delete a note
  /persona add <name> | <tone> | <description>
  /persona use <id or name>           set the active persona
  /personas                           list personas
  /context                            show what the agent sees
  /health                             check the model, store and breaker
  /clear                              forget page, selection, post and history
  /quit                               leave the shell
Anything else is sent to the agent, e.g. "summarize this" or "stop".
`

type shell struct {
	app *app
	in  *bufio.Scanner
	out io.Writer
	// turnContext scopes interrupts to a single agent turn.
	turnContext func(context.Context) (context.Context, context.CancelFunc)
}

func newShell(a *app, in io.Reader, out io.Writer) *shell {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &shell{app: a, in: scanner, out: out, turnContext: interruptContext}
}

func interruptContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt)
}

// Run reads lines until EOF, /quit or ctx is done.
func (s *shell) Run(ctx context.Context) error {
	fmt.Fprintln(s.out, "pagepilot ready. Type /help for commands.")
	for {
		fmt.Fprint(s.out, "> ")
		if !s.in.Scan() {
			fmt.Fprintln(s.out)
			return s.in.Err()
		}
		if ctx.Err() != nil {
			return nil
		}
		line := strings.TrimSpace(s.in.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			quit, err := s.command(ctx, line)
			if err != nil {
				fmt.Fprintf(s.out, "error: %v\n", err)
			}
			if quit {
				return nil
			}
			continue
		}
		s.ask(ctx, line)
	}
}

// ask sends a message to the agent and renders the event stream. An
// interrupt during the turn aborts it and returns to the prompt.
func (s *shell) ask(ctx context.Context, message string) {
	turn, stop := s.turnContext(ctx)
	defer stop()

	events, err := s.app.controller.ProcessMessage(ctx, message)
	if err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
		return
	}

	var reply string
	aborted := false
	for {
		select {
		case <-turn.Done():
			if !aborted {
				s.app.controller.Abort()
				aborted = true
			}
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev.Type {
			case agent.EventThinking:
				fmt.Fprintf(s.out, "… %s\n", ev.Content)
			case agent.EventToolCall:
				fmt.Fprintf(s.out, "→ %s\n", ev.Content)
			case agent.EventMessage:
				reply = ev.Content
			case agent.EventError:
				fmt.Fprintf(s.out, "! %s\n", ev.Content)
			case agent.EventDone:
				if reply != "" {
					fmt.Fprintln(s.out, reply)
				}
			}
		}
		if aborted {
			for ev := range events {
				if ev.Type == agent.EventMessage {
					reply = ev.Content
				}
			}
			if reply != "" {
				fmt.Fprintln(s.out, reply)
			}
			return
		}
	}
}

func (s *shell) command(ctx context.Context, line string) (bool, error) {
	name, arg := splitCommand(line)
	m := s.app.manager
	switch name {
	case "/quit", "/exit":
		return true, nil
	case "/help":
		fmt.Fprint(s.out, shellHelp)
	case "/page":
		page, err := loadPage(arg)
		if err != nil {
			return false, err
		}
		m.UpdatePageContext(page)
		fmt.Fprintf(s.out, "Loaded %q (%d characters).\n", page.Title, len(page.Content))
	case "/select":
		m.UpdateSelection(arg)
		if arg == "" {
			fmt.Fprintln(s.out, "Selection cleared.")
		} else {
			fmt.Fprintln(s.out, "Selection set.")
		}
	case "/post":
		author, content, ok := strings.Cut(arg, ":")
		if !ok || strings.TrimSpace(content) == "" {
			return false, fmt.Errorf("usage: /post <author>: <text>")
		}
		m.SetCurrentPost(&core.Post{Author: strings.TrimSpace(author), Content: strings.TrimSpace(content), Platform: "shell"})
		fmt.Fprintln(s.out, "Post set.")
	case "/remember":
		content, tags := parseNote(arg)
		if content == "" {
			return false, fmt.Errorf("usage: /remember <text> [#tag ...]")
		}
		item, err := memory.Remember(ctx, s.app.store, m, core.MemoryItem{Content: content, Tags: tags, Source: "shell"})
		if err != nil {
			return false, err
		}
		fmt.Fprintf(s.out, "Saved note %s.\n", item.ID)
	case "/notes":
		for _, item := range m.Memories() {
			fmt.Fprintf(s.out, "%s  %s", item.ID, item.Content)
			if len(item.Tags) > 0 {
				fmt.Fprintf(s.out, "  #%s", strings.Join(item.Tags, " #"))
			}
			fmt.Fprintln(s.out)
		}
	case "/forget":
		if err := s.app.store.DeleteMemory(ctx, arg); err != nil {
			return false, err
		}
		if err := memory.LoadInto(ctx, s.app.store, m); err != nil {
			return false, err
		}
		fmt.Fprintln(s.out, "Note deleted.")
	case "/persona":
		return false, s.persona(ctx, arg)
	case "/personas":
		active, _ := m.ActivePersona()
		for _, p := range m.BuildContext("").Personas {
			marker := " "
			if p.ID == active.ID {
				marker = "*"
			}
			fmt.Fprintf(s.out, "%s %s  %s (%s)\n", marker, p.ID, p.Name, p.Tone)
		}
	case "/context":
		fmt.Fprintln(s.out, m.BuildContextString(""))
	case "/health":
		results, overall := s.app.health.CheckAll(ctx)
		for _, r := range results {
			fmt.Fprintf(s.out, "%-12s %-9s %s\n", r.Component, r.Status, r.Message)
		}
		fmt.Fprintf(s.out, "overall: %s\n", overall)
	case "/clear":
		m.Clear()
		if err := s.app.transcript.ClearSession(ctx, s.app.cfg.Store.SessionID); err != nil {
			return false, err
		}
		fmt.Fprintln(s.out, "Context cleared.")
	default:
		return false, fmt.Errorf("unknown command %s, type /help", name)
	}
	return false, nil
}

func (s *shell) persona(ctx context.Context, arg string) error {
	sub, rest := splitCommand(arg)
	m := s.app.manager
	switch sub {
	case "add":
		parts := strings.SplitN(rest, "|", 3)
		for len(parts) < 3 {
			parts = append(parts, "")
		}
		name := strings.TrimSpace(parts[0])
		if name == "" {
			return fmt.Errorf("usage: /persona add <name> | <tone> | <description>")
		}
		p, err := s.app.store.SavePersona(ctx, core.Persona{
			Name:        name,
			Tone:        strings.TrimSpace(parts[1]),
			Description: strings.TrimSpace(parts[2]),
		})
		if err != nil {
			return err
		}
		if err := memory.LoadInto(ctx, s.app.store, m); err != nil {
			return err
		}
		fmt.Fprintf(s.out, "Saved persona %s.\n", p.ID)
	case "use":
		for _, p := range m.BuildContext("").Personas {
			if p.ID == rest || strings.EqualFold(p.Name, rest) {
				m.SetActivePersonaID(p.ID)
				fmt.Fprintf(s.out, "Writing as %s.\n", p.Name)
				return nil
			}
		}
		return fmt.Errorf("no persona %q", rest)
	default:
		return fmt.Errorf("usage: /persona add|use ...")
	}
	return nil
}

func splitCommand(line string) (string, string) {
	name, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	return strings.ToLower(name), strings.TrimSpace(arg)
}

// parseNote splits trailing #tags from the note text.
func parseNote(arg string) (string, []string) {
	fields := strings.Fields(arg)
	var words, tags []string
	for _, f := range fields {
		if len(f) > 1 && strings.HasPrefix(f, "#") {
			tags = append(tags, strings.TrimPrefix(f, "#"))
			continue
		}
		words = append(words, f)
	}
	return strings.Join(words, " "), tags
}

func loadPage(path string) (*core.PageContext, error) {
	if path == "" {
		return nil, fmt.Errorf("usage: /page <file>")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	content := string(raw)
	title := filepath.Base(path)
	for _, line := range strings.Split(content, "\n") {
		if line = strings.TrimSpace(strings.TrimLeft(line, "# ")); line != "" {
			title = line
			break
		}
	}
	return &core.PageContext{URL: "file://" + filepath.ToSlash(abs), Title: title, Content: content}, nil
}
