// Package config loads, defaults, and validates the voyant configuration.
package config

import "fmt"

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	return Config{
		LLM: LLMConfig{
			Provider:       "ollama",
			TimeoutSeconds: 120,
			Ollama: OllamaConfig{
				BaseURL: "http://localhost:11434",
				Model:   "qwen3",
			},
			Claude: ClaudeConfig{
				Model: "claude-sonnet-4-20250514",
			},
		},
		Weather: WeatherConfig{
			BaseURL: "https://api.weatherapi.com/v1",
		},
		Store: StoreConfig{
			Backend: "sqlite",
		},
		Agent: AgentConfig{
			MaxToolRounds: 1,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
