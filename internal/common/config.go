package common

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Logging     LoggingConfig   `toml:"logging"`
	Ingest      IngestConfig    `toml:"ingest"`
	Reconcile   ReconcileConfig `toml:"reconcile"`
	OpenAI      OpenAIConfig    `toml:"openai"`
	Gemini      GeminiConfig    `toml:"gemini"`
	Claude      ClaudeConfig    `toml:"claude"`
	LLM         LLMConfig       `toml:"llm"`
	Chat        ChatConfig      `toml:"chat"`
}

// ChatConfig controls the chat surface
type ChatConfig struct {
	// FallbackRules optionally points to a YAML file overriding the
	// built-in keyword fallback rules used when retrieval is unavailable
	FallbackRules string `toml:"fallback_rules"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Badger    BadgerConfig `toml:"badger"`
	Documents string       `toml:"documents"` // raw upload directory
	Indices   string       `toml:"indices"`   // per-document vector index directory
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// IngestConfig controls the background ingestion worker pool
type IngestConfig struct {
	Concurrency  int    `toml:"concurrency"`   // Number of concurrent ingestion workers
	PollInterval string `toml:"poll_interval"` // e.g., "500ms" - how often workers poll the queue
	EmbedTimeout string `toml:"embed_timeout"` // Timeout per embedding batch call
	MaxAttempts  int    `toml:"max_attempts"`  // Attempts before a task is marked error
}

// ReconcileConfig controls the index/status consistency sweep
type ReconcileConfig struct {
	Enabled  bool   `toml:"enabled"`
	Schedule string `toml:"schedule"` // Cron schedule format
}

// OpenAIConfig contains OpenAI API configuration for embeddings and chat
type OpenAIConfig struct {
	APIKey         string  `toml:"api_key"`
	Model          string  `toml:"model"`           // Default chat model
	EmbeddingModel string  `toml:"embedding_model"` // Embedding model (fixed dimension)
	Timeout        string  `toml:"timeout"`         // Operation timeout as duration string
	RateLimit      string  `toml:"rate_limit"`      // Minimum interval between API calls
	Temperature    float32 `toml:"temperature"`
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	Timeout     string  `toml:"timeout"`
	RateLimit   string  `toml:"rate_limit"`
	Temperature float32 `toml:"temperature"`
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	MaxTokens   int     `toml:"max_tokens"`
	Timeout     string  `toml:"timeout"`
	RateLimit   string  `toml:"rate_limit"`
	Temperature float32 `toml:"temperature"`
}

// LLMProvider represents the AI provider type
type LLMProvider string

const (
	// LLMProviderOpenAI uses the OpenAI API
	LLMProviderOpenAI LLMProvider = "openai"
	// LLMProviderGemini uses Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
	// LLMProviderClaude uses Anthropic Claude API
	LLMProviderClaude LLMProvider = "claude"
)

// LLMConfig contains unified configuration for all AI providers
type LLMConfig struct {
	DefaultProvider LLMProvider `toml:"default_provider"` // "openai", "gemini" or "claude"
}

// NewDefaultConfig creates a configuration with default values.
// Only user-facing settings should be exposed in rogo.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data/db",
			},
			Documents: "./data/documents",
			Indices:   "./data/indices",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout", "file"},
		},
		Ingest: IngestConfig{
			Concurrency:  4,       // Pipelines of different documents run concurrently
			PollInterval: "500ms", // Queue poll interval
			EmbedTimeout: "2m",    // Bound external embedding calls
			MaxAttempts:  2,
		},
		Reconcile: ReconcileConfig{
			Enabled:  true,
			Schedule: "0 */10 * * * *", // Every 10 minutes (cron format with seconds)
		},
		OpenAI: OpenAIConfig{
			APIKey:         "", // User must provide API key (OPENAI_API_KEY or config)
			Model:          "gpt-3.5-turbo-0125",
			EmbeddingModel: "text-embedding-3-small",
			Timeout:        "2m",
			RateLimit:      "200ms",
			Temperature:    0,
		},
		Gemini: GeminiConfig{
			APIKey:      "",
			Model:       "gemini-3-flash-preview",
			Timeout:     "2m",
			RateLimit:   "4s", // Free tier: 15 RPM
			Temperature: 0,
		},
		Claude: ClaudeConfig{
			APIKey:      "",
			Model:       "claude-haiku-3-5-20241022",
			MaxTokens:   4096,
			Timeout:     "2m",
			RateLimit:   "1s",
			Temperature: 0,
		},
		LLM: LLMConfig{
			DefaultProvider: LLMProviderOpenAI,
		},
	}
}

// LoadFromFiles loads configuration from files with priority:
// defaults -> file1 -> file2 -> ... -> env. Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("ROGO_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	if port := os.Getenv("ROGO_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("ROGO_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if path := os.Getenv("ROGO_BADGER_PATH"); path != "" {
		config.Storage.Badger.Path = path
	}
	if level := os.Getenv("ROGO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	// Provider credentials follow the conventional env names
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		config.OpenAI.APIKey = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		config.Claude.APIKey = key
	}
}

// ApplyFlagOverrides applies command-line flag overrides (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port != 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}
