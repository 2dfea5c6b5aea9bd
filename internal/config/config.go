package config

import (
	"log/slog"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds runtime configuration. Extend as needed.
type Config struct {
	// Server
	Port     int    `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Upload limits
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" envDefault:"10485760"` // 10MB in bytes

	// Provider routing
	DefaultProvider string            `env:"DEFAULT_PROVIDER" envDefault:"openrouter"`
	ProviderAliases map[string]string `env:"PROVIDER_ALIASES" envDefault:"gemini:openrouter"`

	// Ollama (local inference runtime)
	OllamaURL     string        `env:"OLLAMA_URL" envDefault:"http://localhost:11434"`
	OllamaModel   string        `env:"OLLAMA_MODEL" envDefault:"mistral"`
	OllamaTimeout time.Duration `env:"OLLAMA_TIMEOUT" envDefault:"120s"`

	// OpenRouter (hosted multi-model gateway)
	OpenRouterKey     string        `env:"OPENROUTER_API_KEY"`
	OpenRouterModel   string        `env:"OPENROUTER_MODEL" envDefault:"deepseek/deepseek-chat"`
	OpenRouterTimeout time.Duration `env:"OPENROUTER_TIMEOUT" envDefault:"90s"`
	OpenRouterReferer string        `env:"OPENROUTER_REFERER" envDefault:"http://localhost:8080"`

	// Anthropic (hosted multimodal)
	AnthropicKey     string        `env:"ANTHROPIC_API_KEY"`
	AnthropicModel   string        `env:"ANTHROPIC_MODEL" envDefault:"claude-haiku-4-5-20251001"`
	AnthropicTimeout time.Duration `env:"ANTHROPIC_TIMEOUT" envDefault:"90s"`

	// Shared connect timeout for all provider clients
	ConnectTimeout time.Duration `env:"CONNECT_TIMEOUT" envDefault:"10s"`

	// Cache
	CacheProvider string        `env:"CACHE_PROVIDER" envDefault:"noop"` // "redis" or "noop"
	RedisAddr     string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	CacheTTL      time.Duration `env:"CACHE_TTL" envDefault:"1h"`

	// OCR
	OCRLanguage string `env:"OCR_LANGUAGE" envDefault:"eng"`
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		slog.Warn("failed to parse env; using defaults where set", "err", err)
	}
	return cfg
}
