package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, 120, cfg.LLM.TimeoutSeconds)
	assert.Equal(t, "http://localhost:11434", cfg.LLM.Ollama.BaseURL)
	assert.Equal(t, "https://api.weatherapi.com/v1", cfg.Weather.BaseURL)
	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, 1, cfg.Agent.MaxToolRounds)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	require.NoError(t, err)
	// Should return defaults
	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadValidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	yaml := `
llm:
  provider: claude
  timeoutSeconds: 30
  claude:
    apiKey: sk-test
    model: claude-test
weather:
  apiKey: w-test
store:
  backend: memory
agent:
  maxToolRounds: 2
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "claude", cfg.LLM.Provider)
	assert.Equal(t, 30, cfg.LLM.TimeoutSeconds)
	assert.Equal(t, "sk-test", cfg.LLM.Claude.APIKey)
	assert.Equal(t, "claude-test", cfg.LLM.Claude.Model)
	assert.Equal(t, "w-test", cfg.Weather.APIKey)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, 2, cfg.Agent.MaxToolRounds)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Defaults still fill the gaps the file left.
	assert.Equal(t, "http://localhost:11434", cfg.LLM.Ollama.BaseURL)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm: [broken"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	var cerr *ConfigError
	assert.ErrorAs(t, err, &cerr)
}

func TestExpandSensitiveFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	yaml := `
llm:
  provider: claude
  claude:
    apiKey: ${VOYANT_TEST_KEY}
weather:
  apiKey: ${VOYANT_UNSET_KEY}
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("VOYANT_TEST_KEY", "sk-expanded")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-expanded", cfg.LLM.Claude.APIKey)
	// Unset variables stay as-is.
	assert.Equal(t, "${VOYANT_UNSET_KEY}", cfg.Weather.APIKey)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("VOYANT_LLM_PROVIDER", "CLAUDE")
	t.Setenv("VOYANT_STORE_BACKEND", "memory")
	t.Setenv("VOYANT_MAX_TOOL_ROUNDS", "3")
	t.Setenv("VOYANT_LOG_LEVEL", "trace")

	cfg, err := Load("/nonexistent/path/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, "claude", cfg.LLM.Provider)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, 3, cfg.Agent.MaxToolRounds)
	assert.Equal(t, "trace", cfg.Logging.Level)
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	assert.Empty(t, Validate(&cfg))

	cfg.LLM.Provider = "gemini"
	cfg.Store.Backend = "postgres"
	cfg.Agent.MaxToolRounds = -1
	cfg.Logging.Level = "loud"

	issues := Validate(&cfg)
	require.Len(t, issues, 4)
	paths := make([]string, 0, len(issues))
	for _, i := range issues {
		paths = append(paths, i.Path)
	}
	assert.Contains(t, paths, "llm.provider")
	assert.Contains(t, paths, "store.backend")
	assert.Contains(t, paths, "agent.maxToolRounds")
	assert.Contains(t, paths, "logging.level")
}

func TestValidateClaudeRequiresKey(t *testing.T) {
	cfg := Defaults()
	cfg.LLM.Provider = "claude"

	issues := Validate(&cfg)
	require.Len(t, issues, 1)
	assert.Equal(t, "llm.claude.apiKey", issues[0].Path)
}

func TestResolvePathsHonorsHomeOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("VOYANT_HOME", dir)

	p, err := ResolvePaths()
	require.NoError(t, err)
	assert.Equal(t, dir, p.Base)
	assert.Equal(t, filepath.Join(dir, "config.yaml"), p.Config)
	assert.Equal(t, filepath.Join(dir, "data", "conversations.db"), p.DatabasePath(""))
	assert.Equal(t, "/tmp/x.db", p.DatabasePath("/tmp/x.db"))

	require.NoError(t, p.EnsureDirs())
	info, err := os.Stat(p.Data)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
