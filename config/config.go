// Package config loads application configuration from a YAML file with
// environment-variable overrides applied on top.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/flexygent/flexygent/orchestration"
)

// LLMConfig selects the model and provider.
type LLMConfig struct {
	Provider    string   `yaml:"provider" env:"FLEXYGENT_LLM_PROVIDER"`
	Model       string   `yaml:"model" env:"FLEXYGENT_LLM_MODEL"`
	Temperature *float64 `yaml:"temperature" env:"FLEXYGENT_LLM_TEMPERATURE"`
	MaxTokens   *int     `yaml:"max_tokens" env:"FLEXYGENT_LLM_MAX_TOKENS"`
}

// MemoryConfig selects the transcript/memory backend.
type MemoryConfig struct {
	// Backend is one of "memory", "file", "sqlite".
	Backend string `yaml:"backend" env:"FLEXYGENT_MEMORY_BACKEND"`
	Path    string `yaml:"path" env:"FLEXYGENT_MEMORY_PATH"`
}

// RAGConfig configures the local vector index.
type RAGConfig struct {
	IndexDir string `yaml:"index_dir" env:"FLEXYGENT_RAG_INDEX_DIR"`
	// EmbeddingAPIKey falls back to OPENAI_API_KEY when empty.
	EmbeddingAPIKey string `yaml:"embedding_api_key" env:"FLEXYGENT_RAG_EMBEDDING_API_KEY"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `yaml:"level" env:"FLEXYGENT_LOG_LEVEL"`
	// Format is "text" or "json".
	Format string `yaml:"format" env:"FLEXYGENT_LOG_FORMAT"`
}

// Config is the root application configuration.
type Config struct {
	LLM          LLMConfig                   `yaml:"llm"`
	Policy       orchestration.ToolUsePolicy `yaml:"policy"`
	Memory       MemoryConfig                `yaml:"memory"`
	RAG          RAGConfig                   `yaml:"rag"`
	Log          LogConfig                   `yaml:"log"`
	SystemPrompt string                      `yaml:"system_prompt" env:"FLEXYGENT_SYSTEM_PROMPT"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		LLM:    LLMConfig{Model: "claude-sonnet-4-5"},
		Policy: orchestration.DefaultPolicy(),
		Memory: MemoryConfig{Backend: "memory"},
		Log:    LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads path (if non-empty and present), then applies environment
// overrides. A missing file is not an error; defaults apply.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("config: read %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("config: env overrides: %w", err)
	}
	return cfg, nil
}

// LogLevel converts the configured level name to a slog.Level.
func (c Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds a slog.Logger per the log configuration.
func (c Config) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel()}
	var handler slog.Handler
	if strings.EqualFold(c.Log.Format, "json") {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
