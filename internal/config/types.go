package config

// Config is the root configuration for the voyant travel assistant.
type Config struct {
	LLM     LLMConfig     `yaml:"llm,omitempty"`
	Weather WeatherConfig `yaml:"weather,omitempty"`
	Store   StoreConfig   `yaml:"store,omitempty"`
	Agent   AgentConfig   `yaml:"agent,omitempty"`
	Logging LoggingConfig `yaml:"logging,omitempty"`
}

// LLMConfig selects and configures the completion provider.
type LLMConfig struct {
	Provider       string       `yaml:"provider,omitempty"` // "ollama" | "claude"
	TimeoutSeconds int          `yaml:"timeoutSeconds,omitempty"`
	Ollama         OllamaConfig `yaml:"ollama,omitempty"`
	Claude         ClaudeConfig `yaml:"claude,omitempty"`
}

// OllamaConfig configures a local Ollama endpoint.
type OllamaConfig struct {
	BaseURL string `yaml:"baseUrl,omitempty"`
	Model   string `yaml:"model,omitempty"`
}

// ClaudeConfig configures the Anthropic API provider.
type ClaudeConfig struct {
	APIKey string `yaml:"apiKey,omitempty"`
	Model  string `yaml:"model,omitempty"`
}

// WeatherConfig configures the weather forecast tool. An empty APIKey
// leaves the tool registered but degraded.
type WeatherConfig struct {
	APIKey  string `yaml:"apiKey,omitempty"`
	BaseURL string `yaml:"baseUrl,omitempty"`
}

// StoreConfig selects the conversation store backend.
type StoreConfig struct {
	Backend string `yaml:"backend,omitempty"` // "sqlite" | "memory"
	Path    string `yaml:"path,omitempty"`    // sqlite database file; defaults under the voyant home
}

// AgentConfig tunes the orchestration loop.
type AgentConfig struct {
	MaxToolRounds int `yaml:"maxToolRounds,omitempty"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"` // "silent" | "error" | "warn" | "info" | "debug" | "trace"
	File  string `yaml:"file,omitempty"`
}
