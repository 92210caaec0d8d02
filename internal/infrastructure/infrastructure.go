// Package infrastructure provides core service initialization for application
// startup. It assembles common dependencies (logging, database, provider
// gateway) that domain systems require.
package infrastructure

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/quillworks/quill/internal/config"
	"github.com/quillworks/quill/internal/provider"
	"github.com/quillworks/quill/pkg/database"
	"github.com/quillworks/quill/pkg/lifecycle"
)

// Infrastructure holds the core systems required by all domain modules.
// It provides a single point of initialization for lifecycle coordination,
// logging, database access, and the provider gateway.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Gateway   *provider.Gateway

	redis *redis.Client
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	infra := &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Database:  db,
	}

	gateway, err := buildGateway(cfg, logger, infra)
	if err != nil {
		return nil, fmt.Errorf("gateway init failed: %w", err)
	}
	infra.Gateway = gateway

	return infra, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}

	if i.redis != nil {
		i.Lifecycle.OnShutdown(func() {
			<-i.Lifecycle.Context().Done()
			if err := i.redis.Close(); err != nil {
				i.Logger.Warn("redis close failed", "error", err)
			}
		})
	}

	return nil
}

// buildGateway assembles the two-tier provider gateway: one client per
// tier against the configured backend, plus the extraction cache (Redis
// when enabled, in-process otherwise).
func buildGateway(cfg *config.Config, logger *slog.Logger, infra *Infrastructure) (*provider.Gateway, error) {
	extraction, err := buildClient(&cfg.Provider, &cfg.Provider.Extraction)
	if err != nil {
		return nil, fmt.Errorf("extraction client: %w", err)
	}

	generation, err := buildClient(&cfg.Provider, &cfg.Provider.Generation)
	if err != nil {
		return nil, fmt.Errorf("generation client: %w", err)
	}

	cache := provider.NewMemoryCache()
	if cfg.Cache.Enabled {
		infra.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		cache = provider.NewRedisCache(infra.redis)
	}

	return provider.NewGateway(
		extraction,
		generation,
		cfg.Provider.Extraction.Settings(),
		cfg.Provider.Generation.Settings(),
		logger,
		provider.WithCache(cache, cfg.Cache.TTLDuration()),
		provider.WithRetry(cfg.Provider.MaxAttempts, cfg.Provider.BackoffBaseDuration()),
	), nil
}

func buildClient(cfg *config.ProviderConfig, tier *config.TierConfig) (provider.Client, error) {
	switch cfg.Backend {
	case config.BackendAnthropic:
		return provider.NewAnthropicClient(cfg.APIKey, tier.Model)
	default:
		return provider.NewOpenAIClient(cfg.APIKey, cfg.BaseURL, tier.Model, tier.Temperature)
	}
}
