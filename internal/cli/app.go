package cli

import (
	"fmt"
	"time"

	"github.com/soyeahso/voyant/internal/agent"
	"github.com/soyeahso/voyant/internal/config"
	"github.com/soyeahso/voyant/internal/llm"
	"github.com/soyeahso/voyant/internal/store"
	"github.com/soyeahso/voyant/internal/tools"
)

// app bundles the wired-up runner with its cleanup.
type app struct {
	runner *agent.Runner
	close  func() error
}

// buildApp loads config and assembles the assistant: provider registry,
// tool registry, conversation store, and the turn runner.
func buildApp() (*app, error) {
	cfg, err := config.Load(paths.Config)
	if err != nil {
		return nil, err
	}
	if issues := config.Validate(&cfg); len(issues) > 0 {
		for _, issue := range issues {
			log.Error().Str("path", issue.Path).Msg(issue.Message)
		}
		return nil, fmt.Errorf("invalid configuration (%d issue(s))", len(issues))
	}

	timeout := time.Duration(cfg.LLM.TimeoutSeconds) * time.Second

	registry := llm.NewRegistry(log)
	registry.Register("ollama", llm.NewOllamaClient(cfg.LLM.Ollama.BaseURL, cfg.LLM.Ollama.Model, timeout))
	if cfg.LLM.Claude.APIKey != "" {
		registry.Register("claude", llm.NewClaudeClient(cfg.LLM.Claude.APIKey, cfg.LLM.Claude.Model, timeout))
	}
	registry.SetFallback("ollama")

	client, err := registry.Resolve(cfg.LLM.Provider)
	if err != nil {
		return nil, err
	}

	toolset := tools.NewRegistry()
	toolset.Register(tools.NewWeatherTool(cfg.Weather.APIKey, cfg.Weather.BaseURL, timeout, log))

	var (
		st      store.ConversationStore
		cleanup = func() error { return nil }
	)
	switch cfg.Store.Backend {
	case "memory":
		st = store.NewMemoryStore()
	default:
		if err := paths.EnsureDirs(); err != nil {
			return nil, err
		}
		db, err := store.OpenSQLite(paths.DatabasePath(cfg.Store.Path), log)
		if err != nil {
			return nil, err
		}
		st = db
		cleanup = db.Close
	}

	runner, err := agent.NewRunner(agent.RunnerConfig{MaxToolRounds: cfg.Agent.MaxToolRounds}, client, toolset, st, log)
	if err != nil {
		cleanup()
		return nil, err
	}

	return &app{runner: runner, close: cleanup}, nil
}
