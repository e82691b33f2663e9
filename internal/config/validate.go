package config

import (
	"fmt"
	"slices"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks a Config for issues. Returns nil if valid.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue

	validProviders := []string{"ollama", "claude"}
	if cfg.LLM.Provider != "" && !slices.Contains(validProviders, cfg.LLM.Provider) {
		issues = append(issues, ValidationIssue{
			Path:    "llm.provider",
			Message: fmt.Sprintf("must be one of %v, got %q", validProviders, cfg.LLM.Provider),
		})
	}

	if cfg.LLM.Provider == "claude" && cfg.LLM.Claude.APIKey == "" {
		issues = append(issues, ValidationIssue{
			Path:    "llm.claude.apiKey",
			Message: "required when llm.provider is claude (set ANTHROPIC_API_KEY or use ${VAR} syntax)",
		})
	}

	if cfg.LLM.TimeoutSeconds < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "llm.timeoutSeconds",
			Message: fmt.Sprintf("must not be negative, got %d", cfg.LLM.TimeoutSeconds),
		})
	}

	validBackends := []string{"sqlite", "memory"}
	if cfg.Store.Backend != "" && !slices.Contains(validBackends, cfg.Store.Backend) {
		issues = append(issues, ValidationIssue{
			Path:    "store.backend",
			Message: fmt.Sprintf("must be one of %v, got %q", validBackends, cfg.Store.Backend),
		})
	}

	if cfg.Agent.MaxToolRounds < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "agent.maxToolRounds",
			Message: fmt.Sprintf("must not be negative, got %d", cfg.Agent.MaxToolRounds),
		})
	}

	validLogLevels := []string{"silent", "fatal", "error", "warn", "info", "debug", "trace"}
	if cfg.Logging.Level != "" && !slices.Contains(validLogLevels, cfg.Logging.Level) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.level",
			Message: fmt.Sprintf("must be one of %v, got %q", validLogLevels, cfg.Logging.Level),
		})
	}

	return issues
}
