package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jllopis/pagepilot/pkg/agent"
	"github.com/jllopis/pagepilot/pkg/agentcontext"
	"github.com/jllopis/pagepilot/pkg/config"
	"github.com/jllopis/pagepilot/pkg/core"
	"github.com/jllopis/pagepilot/pkg/errors"
	"github.com/jllopis/pagepilot/pkg/guardrails"
	"github.com/jllopis/pagepilot/pkg/intent"
	"github.com/jllopis/pagepilot/pkg/llm"
	"github.com/jllopis/pagepilot/pkg/memory"
	"github.com/jllopis/pagepilot/pkg/planner"
	"github.com/jllopis/pagepilot/pkg/resilience"
	"github.com/jllopis/pagepilot/pkg/telemetry"
	"github.com/jllopis/pagepilot/pkg/tools"
)

const mockReply = "This is a canned reply from the mock provider."

// app owns every long-lived component of the shell.
type app struct {
	cfg        *config.Config
	logger     *slog.Logger
	manager    *agentcontext.Manager
	store      memory.Store
	transcript memory.Transcript
	registry   *tools.Registry
	controller *agent.Controller
	health     *core.HealthRegistry
	closers    []func() error
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}
	ok := false
	defer func() {
		if !ok {
			a.Close()
		}
	}()

	a.manager = agentcontext.New(
		agentcontext.WithMaxChatHistory(cfg.Agent.MaxChatHistory),
		agentcontext.WithMaxRelevantMemories(cfg.Agent.MaxRelevantMemories),
		agentcontext.WithRelevanceThreshold(cfg.Agent.MemoryRelevanceThreshold),
		agentcontext.WithMaxPageContentChars(cfg.Agent.MaxPageContentChars),
		agentcontext.WithLogger(telemetry.Component(logger, "context")),
	)

	var db *sql.DB
	if cfg.Store.Path != "" {
		s, err := memory.OpenSQLite(ctx, cfg.Store.Path)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, s.Close)
		a.store, a.transcript, db = s, s, s.DB()
	} else {
		s := memory.NewInMemory()
		a.store, a.transcript = s, s
	}
	if err := memory.LoadInto(ctx, a.store, a.manager); err != nil {
		return nil, fmt.Errorf("load memories: %w", err)
	}
	if err := memory.RestoreHistory(ctx, a.transcript, cfg.Store.SessionID, cfg.Agent.MaxChatHistory, a.manager); err != nil {
		return nil, fmt.Errorf("restore history: %w", err)
	}

	chatter, ping, err := newChatter(cfg.LLM)
	if err != nil {
		return nil, err
	}

	guard, err := newGuardrails(cfg.Guardrails)
	if err != nil {
		return nil, err
	}

	engineOpts, err := engineOptions(cfg.Engine, db, logger)
	if err != nil {
		return nil, err
	}

	a.registry = tools.NewRegistry(tools.WithLogger(telemetry.Component(logger, "tools")))
	executors := map[tools.ID]tools.Executor{
		tools.Summarize:      summarizeExecutor(),
		tools.ExtractData:    extractExecutor(),
		tools.GenerateReply:  replyExecutor(chatter, cfg.LLM.Model),
		tools.SearchMemory:   memory.SearchExecutor(a.manager),
		tools.PageAction:     pageActionExecutor(),
		tools.ReplayWorkflow: planner.NewReplayExecutor(a.registry, cfg.Engine.WorkflowDir, engineOpts...),
	}
	if err := tools.RegisterBuiltins(a.registry, executors); err != nil {
		return nil, err
	}

	metrics, err := telemetry.NewErrorMetrics(ctx)
	if err != nil {
		return nil, err
	}

	breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Name:      "llm",
		ErrorType: errors.TypeLLMError,
	})

	progressLog := telemetry.Component(logger, "progress")
	a.controller, err = agent.New(a.manager, intent.NewKeywordAnalyzer(), a.registry, chatter,
		agent.WithModel(cfg.LLM.Model),
		agent.WithOutputLanguage(cfg.Agent.OutputLanguage),
		agent.WithEventBuffer(cfg.Agent.EventBuffer),
		agent.WithHistoryTurns(cfg.Agent.HistoryTurns),
		agent.WithEngineOptions(engineOpts...),
		agent.WithProgress(func(p planner.Progress) {
			progressLog.Debug("planner.progress",
				slog.String("type", string(p.Type)),
				slog.String("message", p.Message),
				slog.Int("step", p.StepIndex),
				slog.Int("total", p.TotalSteps),
			)
		}),
		agent.WithRetryConfig(retryConfig(cfg.Retry)),
		agent.WithChatBreaker(breaker),
		agent.WithGuardrails(guard),
		agent.WithErrorMetrics(metrics),
		agent.WithTranscript(a.transcript, cfg.Store.SessionID),
		agent.WithLogger(telemetry.Component(logger, "agent")),
	)
	if err != nil {
		return nil, err
	}

	a.health = core.NewHealthRegistry(5 * time.Second)
	a.health.Register("llm", core.PingChecker(ping))
	a.health.Register("llm_breaker", breakerChecker(breaker))
	if db != nil {
		a.health.Register("store", core.PingChecker(db.PingContext))
	}

	ok = true
	return a, nil
}

// Close releases the stores. It is safe to call more than once.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("app.close.error", slog.String("error", err.Error()))
		}
	}
	a.closers = nil
}

// newChatter returns the chat collaborator and a reachability probe for it.
func newChatter(cfg config.LLMConfig) (llm.Chatter, func(context.Context) error, error) {
	var (
		provider llm.Provider
		ping     func(context.Context) error
	)
	switch cfg.Provider {
	case "ollama":
		ollama := llm.NewOllama(cfg.BaseURL)
		provider, ping = ollama, ollama.Ping
	case "mock":
		provider = &llm.MockProvider{Response: mockReply}
		ping = func(context.Context) error { return nil }
	default:
		return nil, nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
	return &timeoutChatter{
		next:    llm.NewProviderChatter(provider, llm.WithDefaultModel(cfg.Model)),
		timeout: cfg.Timeout,
	}, ping, nil
}

func newGuardrails(cfg config.GuardrailsConfig) (*guardrails.Guardrails, error) {
	var opts []guardrails.Option
	if cfg.PromptInjection {
		opts = append(opts, guardrails.WithPromptInjectionDetector())
	}
	mode, enabled, err := guardrails.ParsePIIMode(cfg.PIIFilter)
	if err != nil {
		return nil, err
	}
	if enabled {
		opts = append(opts, guardrails.WithPIIFilter(mode))
	}
	return guardrails.New(opts...), nil
}

func breakerChecker(cb *resilience.CircuitBreaker) core.HealthChecker {
	return core.HealthCheckFunc(func(context.Context) core.HealthResult {
		state := cb.State()
		res := core.HealthResult{Status: core.HealthHealthy, Message: string(state)}
		switch state {
		case resilience.StateOpen:
			res.Status = core.HealthUnhealthy
		case resilience.StateHalfOpen:
			res.Status = core.HealthDegraded
		}
		return res
	})
}

// timeoutChatter bounds every chat turn by the configured LLM timeout.
type timeoutChatter struct {
	next    llm.StreamingChatter
	timeout time.Duration
}

func (t *timeoutChatter) Chat(ctx context.Context, req llm.ChatRequest) (string, error) {
	return resilience.WithTimeoutResult(ctx, resilience.TimeoutConfig{Duration: t.timeout},
		func(ctx context.Context) (string, error) {
			return t.next.Chat(ctx, req)
		})
}

func (t *timeoutChatter) ChatStream(ctx context.Context, req llm.ChatRequest, partial func(string)) (string, error) {
	return resilience.WithTimeoutResult(ctx, resilience.TimeoutConfig{Duration: t.timeout},
		func(ctx context.Context) (string, error) {
			return t.next.ChatStream(ctx, req, partial)
		})
}

func engineOptions(cfg config.EngineConfig, db *sql.DB, logger *slog.Logger) ([]planner.Option, error) {
	policy, err := planner.ParseFailurePolicy(cfg.FailurePolicy)
	if err != nil {
		return nil, err
	}
	opts := []planner.Option{
		planner.WithStepTimeout(cfg.StepTimeout),
		planner.WithStepDelay(cfg.StepDelay),
		planner.WithFailurePolicy(policy),
		planner.WithLogger(telemetry.Component(logger, "planner")),
	}
	if !cfg.Audit {
		return opts, nil
	}
	var store planner.AuditStore = planner.NewMemoryAuditStore()
	if db != nil {
		sqlStore, err := planner.NewSQLiteAuditStore(db)
		if err != nil {
			return nil, err
		}
		store = sqlStore
	}
	return append(opts, planner.WithAuditStore(store)), nil
}

func retryConfig(cfg config.RetryConfig) resilience.RetryConfig {
	return resilience.RetryConfig{
		MaxRetries:        cfg.MaxRetries,
		InitialDelay:      cfg.InitialDelay,
		MaxDelay:          cfg.MaxDelay,
		BackoffMultiplier: cfg.Multiplier,
	}
}
