package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.LLM.Provider != "ollama" {
		t.Errorf("expected default provider ollama, got %s", cfg.LLM.Provider)
	}
	if cfg.Agent.MaxChatHistory != 50 || cfg.Agent.MaxRelevantMemories != 5 {
		t.Errorf("unexpected agent defaults: %+v", cfg.Agent)
	}
	if cfg.Agent.MemoryRelevanceThreshold != 0.1 || cfg.Agent.MaxPageContentChars != 3000 {
		t.Errorf("unexpected agent defaults: %+v", cfg.Agent)
	}
	if cfg.Agent.EventBuffer != 32 {
		t.Errorf("expected event buffer 32, got %d", cfg.Agent.EventBuffer)
	}
	if cfg.Engine.StepTimeout != 30*time.Second || cfg.Engine.StepDelay != 100*time.Millisecond {
		t.Errorf("unexpected engine defaults: %+v", cfg.Engine)
	}
	if cfg.Retry.MaxRetries != 2 || cfg.Retry.InitialDelay != 500*time.Millisecond || cfg.Retry.MaxDelay != 5*time.Second {
		t.Errorf("unexpected retry defaults: %+v", cfg.Retry)
	}
	if cfg.Retry.Multiplier != 2 {
		t.Errorf("expected multiplier 2, got %v", cfg.Retry.Multiplier)
	}
	if cfg.Telemetry.Exporter != "none" {
		t.Errorf("expected telemetry disabled by default, got %q", cfg.Telemetry.Exporter)
	}
	if !cfg.Guardrails.PromptInjection || cfg.Guardrails.PIIFilter != "off" {
		t.Errorf("unexpected guardrails defaults: %+v", cfg.Guardrails)
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("PAGEPILOT_LLM_PROVIDER", "mock")
	t.Setenv("PAGEPILOT_AGENT_MAX_CHAT_HISTORY", "12")
	t.Setenv("PAGEPILOT_ENGINE_STEP_TIMEOUT", "45s")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LLM.Provider != "mock" {
		t.Errorf("expected provider mock from env, got %s", cfg.LLM.Provider)
	}
	if cfg.Agent.MaxChatHistory != 12 {
		t.Errorf("expected max_chat_history 12 from env, got %d", cfg.Agent.MaxChatHistory)
	}
	if cfg.Engine.StepTimeout != 45*time.Second {
		t.Errorf("expected step timeout 45s from env, got %s", cfg.Engine.StepTimeout)
	}
}

func TestLoadFileAndProfile(t *testing.T) {
	tmpDir := t.TempDir()
	basePath := filepath.Join(tmpDir, "config.yaml")
	base := `
llm:
  model: "llama3.1"
log:
  level: "info"
engine:
  failure_policy: skip_dependents
`
	if err := os.WriteFile(basePath, []byte(base), 0o644); err != nil {
		t.Fatalf("write base: %v", err)
	}
	dev := `
log:
  level: "debug"
`
	if err := os.WriteFile(filepath.Join(tmpDir, "config.dev.yaml"), []byte(dev), 0o644); err != nil {
		t.Fatalf("write dev: %v", err)
	}

	cfg, err := Load(basePath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LLM.Model != "llama3.1" || cfg.Log.Level != "info" {
		t.Errorf("unexpected base config: %+v %+v", cfg.LLM, cfg.Log)
	}
	if cfg.Engine.FailurePolicy != "skip_dependents" {
		t.Errorf("expected failure policy from file, got %q", cfg.Engine.FailurePolicy)
	}
	if cfg.Engine.StepDelay != 100*time.Millisecond {
		t.Errorf("expected defaults kept for unset keys, got %s", cfg.Engine.StepDelay)
	}

	cfg, err = LoadWithProfile(basePath, "dev")
	if err != nil {
		t.Fatalf("LoadWithProfile failed: %v", err)
	}
	if cfg.Log.Level != "debug" || cfg.LLM.Model != "llama3.1" {
		t.Errorf("expected dev overlay on base, got %+v %+v", cfg.Log, cfg.LLM)
	}

	cfg, err = LoadWithProfile(basePath, "prod")
	if err != nil {
		t.Fatalf("missing profile should be ignored: %v", err)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected base level without overlay, got %q", cfg.Log.Level)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestProfilePath(t *testing.T) {
	got := ProfilePath(filepath.Join("etc", "pagepilot.yaml"), "dev")
	want := filepath.Join("etc", "pagepilot.dev.yaml")
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}
