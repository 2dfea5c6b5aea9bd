package app

import (
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"

	"medreader/internal/analyzer"
	"medreader/internal/cache"
	"medreader/internal/config"
	"medreader/internal/extract"
	"medreader/internal/logger"
	"medreader/internal/provider"
)

// Deps bundles the runtime dependencies for the server. Everything is
// wired once here and passed explicitly; there is no ambient global
// state.
type Deps struct {
	Config   config.Config
	Log      *slog.Logger
	Registry *provider.Registry
	Cache    cache.Cache
	Analyzer *analyzer.Service
}

// Build loads env, config, and shared components.
func Build() (Deps, error) {
	// A .env file is optional; real env vars win either way.
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New(cfg.LogLevel)

	registry, err := buildRegistry(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize providers: %w", err)
	}

	c, err := buildCache(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize cache: %w", err)
	}

	svc := analyzer.New(
		registry,
		analyzer.DocumentFunc(extract.Document),
		extract.NewOCR(cfg.OCRLanguage, log),
		c,
		cfg.CacheTTL,
		log,
	)

	return Deps{
		Config:   cfg,
		Log:      log,
		Registry: registry,
		Cache:    c,
		Analyzer: svc,
	}, nil
}

func buildRegistry(cfg config.Config, log *slog.Logger) (*provider.Registry, error) {
	ollama, err := provider.NewOllamaClient(cfg.OllamaURL, cfg.OllamaModel, cfg.ConnectTimeout, cfg.OllamaTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Ollama client: %w", err)
	}
	openRouter, err := provider.NewOpenRouterClient(cfg.OpenRouterKey, cfg.OpenRouterModel, cfg.OpenRouterReferer, cfg.ConnectTimeout, cfg.OpenRouterTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenRouter client: %w", err)
	}
	anthropic, err := provider.NewAnthropicClient(cfg.AnthropicKey, cfg.AnthropicModel, cfg.ConnectTimeout, cfg.AnthropicTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Anthropic client: %w", err)
	}

	registry, err := provider.NewRegistry(
		[]provider.Client{ollama, openRouter, anthropic},
		cfg.ProviderAliases,
		cfg.DefaultProvider,
	)
	if err != nil {
		return nil, err
	}
	log.Info("provider registry built",
		"providers", registry.Names(),
		"default", registry.Default(),
		"ollama_model", cfg.OllamaModel,
		"openrouter_model", cfg.OpenRouterModel,
		"anthropic_model", cfg.AnthropicModel,
	)
	return registry, nil
}

func buildCache(cfg config.Config, log *slog.Logger) (cache.Cache, error) {
	switch cfg.CacheProvider {
	case "redis":
		c, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Redis cache: %w", err)
		}
		log.Info("using Redis analysis cache", "addr", cfg.RedisAddr, "ttl", cfg.CacheTTL)
		return c, nil
	case "noop":
		return cache.NewNoOpCache(), nil
	default:
		return nil, fmt.Errorf("invalid CACHE_PROVIDER: %s (valid options: redis, noop)", cfg.CacheProvider)
	}
}
