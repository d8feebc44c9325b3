// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"
)

// Change describes one successful reload.
type Change struct {
	Previous *Config
	Current  *Config
	// Sections lists the top-level keys whose values differ, e.g. "log".
	Sections []string
}

// Has reports whether section changed.
func (c Change) Has(section string) bool {
	for _, s := range c.Sections {
		if s == section {
			return true
		}
	}
	return false
}

// Watcher polls the config file and its profile overlay, reloading on
// change. --set overrides given at startup are reapplied on every reload.
type Watcher struct {
	mu        sync.RWMutex
	path      string
	profile   string
	sets      map[string]string
	interval  time.Duration
	modTimes  map[string]time.Time
	current   *Config
	listeners []func(Change)
	logger    *slog.Logger

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithWatchInterval sets the polling interval.
func WithWatchInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithWatchProfile also watches the named profile overlay.
func WithWatchProfile(profile string) WatcherOption {
	return func(w *Watcher) { w.profile = profile }
}

// WithWatchOverrides reapplies key=value overrides after every reload.
func WithWatchOverrides(sets map[string]string) WatcherOption {
	return func(w *Watcher) { w.sets = sets }
}

// WithWatchLogger sets the logger.
func WithWatchLogger(logger *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWatcher loads the configuration at path and prepares to watch it.
func NewWatcher(path string, opts ...WatcherOption) (*Watcher, error) {
	w := &Watcher{
		path:     path,
		interval: time.Second,
		modTimes: make(map[string]time.Time),
		logger:   slog.Default(),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.changedFiles()

	cfg, err := load(w.path, w.profile, w.sets)
	if err != nil {
		return nil, err
	}
	w.current = cfg
	return w, nil
}

// WatchCLI builds a Watcher from the --config, --profile and --set flags in
// args. It returns nil when no --config was given.
func WatchCLI(args []string, opts ...WatcherOption) (*Watcher, error) {
	cli, err := parseCLIOverrides(args)
	if err != nil || cli.path == "" {
		return nil, err
	}
	opts = append([]WatcherOption{WithWatchProfile(cli.profile), WithWatchOverrides(cli.sets)}, opts...)
	return NewWatcher(cli.path, opts...)
}

// OnChange registers fn for every successful reload that changed something.
func (w *Watcher) OnChange(fn func(Change)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.listeners = append(w.listeners, fn)
}

// Config returns the latest configuration.
func (w *Watcher) Config() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Start polls until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) {
	go func() {
		defer close(w.done)
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-w.stop:
				return
			case <-ticker.C:
				if w.changedFiles() {
					w.reload()
				}
			}
		}
	}()
}

// Stop ends polling and waits for it. Call only after Start.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
	<-w.done
}

// changedFiles records modification times and reports whether any watched
// file is new or newer.
func (w *Watcher) changedFiles() bool {
	files := []string{w.path}
	if w.profile != "" {
		files = append(files, ProfilePath(w.path, w.profile))
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	changed := false
	for _, f := range files {
		info, err := os.Stat(f)
		if err != nil {
			continue
		}
		if last, ok := w.modTimes[f]; !ok || info.ModTime().After(last) {
			w.modTimes[f] = info.ModTime()
			changed = true
		}
	}
	return changed
}

func (w *Watcher) reload() {
	next, err := load(w.path, w.profile, w.sets)
	if err != nil {
		w.logger.Error("config.reload.error", slog.String("path", w.path), slog.String("error", err.Error()))
		return
	}

	w.mu.Lock()
	change := Change{Previous: w.current, Current: next, Sections: ChangedSections(w.current, next)}
	w.current = next
	listeners := append([]func(Change){}, w.listeners...)
	w.mu.Unlock()

	if len(change.Sections) == 0 {
		return
	}
	w.logger.Info("config.reload", slog.String("path", w.path), slog.Any("sections", change.Sections))
	for _, fn := range listeners {
		fn(change)
	}
}

// ChangedSections returns the top-level sections that differ between a and b.
func ChangedSections(a, b *Config) []string {
	if a == nil || b == nil {
		return nil
	}
	var out []string
	add := func(name string, differs bool) {
		if differs {
			out = append(out, name)
		}
	}
	add("log", a.Log != b.Log)
	add("llm", a.LLM != b.LLM)
	add("agent", a.Agent != b.Agent)
	add("engine", a.Engine != b.Engine)
	add("retry", a.Retry != b.Retry)
	add("store", a.Store != b.Store)
	add("telemetry", a.Telemetry != b.Telemetry)
	add("guardrails", a.Guardrails != b.Guardrails)
	return out
}
