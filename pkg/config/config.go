// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads pagepilot settings from defaults, YAML files,
// PAGEPILOT_* environment variables and command line overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment overrides. The first underscore
// after the prefix separates section and key, so PAGEPILOT_AGENT_EVENT_BUFFER
// maps to agent.event_buffer.
const EnvPrefix = "PAGEPILOT_"

type Config struct {
	Log        LogConfig        `koanf:"log"`
	LLM        LLMConfig        `koanf:"llm"`
	Agent      AgentConfig      `koanf:"agent"`
	Engine     EngineConfig     `koanf:"engine"`
	Retry      RetryConfig      `koanf:"retry"`
	Store      StoreConfig      `koanf:"store"`
	Telemetry  TelemetryConfig  `koanf:"telemetry"`
	Guardrails GuardrailsConfig `koanf:"guardrails"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json, text
}

type LLMConfig struct {
	Provider string        `koanf:"provider"` // ollama, mock
	Model    string        `koanf:"model"`
	BaseURL  string        `koanf:"base_url"`
	Timeout  time.Duration `koanf:"timeout"`
}

type AgentConfig struct {
	MaxChatHistory           int     `koanf:"max_chat_history"`
	MaxRelevantMemories      int     `koanf:"max_relevant_memories"`
	MemoryRelevanceThreshold float64 `koanf:"memory_relevance_threshold"`
	MaxPageContentChars      int     `koanf:"max_page_content_chars"`
	OutputLanguage           string  `koanf:"output_language"`
	EventBuffer              int     `koanf:"event_buffer"`
	HistoryTurns             int     `koanf:"history_turns"`
}

type EngineConfig struct {
	StepTimeout   time.Duration `koanf:"step_timeout"`
	StepDelay     time.Duration `koanf:"step_delay"`
	FailurePolicy string        `koanf:"failure_policy"` // continue, skip_dependents
	WorkflowDir   string        `koanf:"workflow_dir"`
	Audit         bool          `koanf:"audit"`
}

type RetryConfig struct {
	MaxRetries   int           `koanf:"max_retries"`
	InitialDelay time.Duration `koanf:"initial_delay"`
	MaxDelay     time.Duration `koanf:"max_delay"`
	Multiplier   float64       `koanf:"multiplier"`
}

type StoreConfig struct {
	Path      string `koanf:"path"` // sqlite file; empty keeps everything in memory
	SessionID string `koanf:"session_id"`
}

type GuardrailsConfig struct {
	PromptInjection bool   `koanf:"prompt_injection"`
	PIIFilter       string `koanf:"pii_filter"` // off, mask, redact
}

type TelemetryConfig struct {
	Exporter     string        `koanf:"exporter"` // none, stdout, otlp
	OTLPEndpoint string        `koanf:"otlp_endpoint"`
	OTLPInsecure bool          `koanf:"otlp_insecure"`
	OTLPTimeout  time.Duration `koanf:"otlp_timeout"`
}

func defaults() map[string]any {
	return map[string]any{
		"log.level":  "info",
		"log.format": "text",

		"llm.provider": "ollama",
		"llm.model":    "llama3.2",
		"llm.base_url": "http://localhost:11434",
		"llm.timeout":  60 * time.Second,

		"agent.max_chat_history":           50,
		"agent.max_relevant_memories":      5,
		"agent.memory_relevance_threshold": 0.1,
		"agent.max_page_content_chars":     3000,
		"agent.output_language":            "en",
		"agent.event_buffer":               32,
		"agent.history_turns":              10,

		"engine.step_timeout":   30 * time.Second,
		"engine.step_delay":     100 * time.Millisecond,
		"engine.failure_policy": "continue",
		"engine.workflow_dir":   "workflows",
		"engine.audit":          true,

		"retry.max_retries":   2,
		"retry.initial_delay": 500 * time.Millisecond,
		"retry.max_delay":     5 * time.Second,
		"retry.multiplier":    2.0,

		"store.path":       "",
		"store.session_id": "default",

		"telemetry.exporter":      "none",
		"telemetry.otlp_endpoint": "",
		"telemetry.otlp_insecure": false,
		"telemetry.otlp_timeout":  10 * time.Second,

		"guardrails.prompt_injection": true,
		"guardrails.pii_filter":       "off",
	}
}

// Load reads defaults, the YAML file at path (if any) and the environment.
func Load(path string) (*Config, error) {
	return load(path, "", nil)
}

// LoadWithProfile additionally overlays "<name>.<profile><ext>" next to path
// when it exists, e.g. config.dev.yaml for profile "dev".
func LoadWithProfile(path, profile string) (*Config, error) {
	return load(path, profile, nil)
}

// LoadWithCLI loads configuration honoring --config, --profile and repeated
// --set key=value flags. Overrides from --set win over the environment.
func LoadWithCLI(args []string) (*Config, error) {
	opts, err := parseCLIOverrides(args)
	if err != nil {
		return nil, err
	}
	return load(opts.path, opts.profile, opts.sets)
}

func load(path, profile string, sets map[string]string) (*Config, error) {
	k := koanf.New(".")
	for key, value := range defaults() {
		if err := k.Set(key, value); err != nil {
			return nil, err
		}
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
		if profile != "" {
			profilePath := ProfilePath(path, profile)
			if _, err := os.Stat(profilePath); err == nil {
				if err := k.Load(file.Provider(profilePath), yaml.Parser()); err != nil {
					return nil, fmt.Errorf("load profile %s: %w", profilePath, err)
				}
			}
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, err
	}

	for key, value := range sets {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("set %s: %w", key, err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func envKey(s string) string {
	return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".", 1)
}

// ProfilePath returns the profile overlay path for a base config path.
func ProfilePath(path, profile string) string {
	dir := filepath.Dir(path)
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(filepath.Base(path), ext)
	return filepath.Join(dir, base+"."+profile+ext)
}

type cliOptions struct {
	path    string
	profile string
	sets    map[string]string
}

func parseCLIOverrides(args []string) (cliOptions, error) {
	opts := cliOptions{sets: make(map[string]string)}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		name, value, hasValue := strings.Cut(arg, "=")
		switch name {
		case "--config", "--profile", "--set":
		default:
			continue
		}
		if !hasValue {
			if i+1 >= len(args) {
				return cliOptions{}, fmt.Errorf("%s requires a value", name)
			}
			i++
			value = args[i]
		}
		switch name {
		case "--config":
			opts.path = value
		case "--profile":
			opts.profile = value
		case "--set":
			key, v, ok := strings.Cut(value, "=")
			key = strings.TrimSpace(key)
			if !ok || key == "" {
				return cliOptions{}, fmt.Errorf("invalid --set %q: expected key=value", value)
			}
			opts.sets[key] = v
		}
	}
	return opts, nil
}
