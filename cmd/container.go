package main

import (
	"fmt"

	"go.uber.org/dig"
	"go.uber.org/zap"

	rediscache "github.com/davidbz/llmcost/internal/cache/redis"
	"github.com/davidbz/llmcost/internal/config"
	"github.com/davidbz/llmcost/internal/domain"
	"github.com/davidbz/llmcost/internal/http"
	"github.com/davidbz/llmcost/internal/http/middleware"
	"github.com/davidbz/llmcost/internal/metrics"
	"github.com/davidbz/llmcost/internal/observability"
	"github.com/davidbz/llmcost/internal/pricing"
	"github.com/davidbz/llmcost/internal/provider/openrouter"
	"github.com/davidbz/llmcost/internal/tokenizer"
)

func buildContainer() (*dig.Container, error) {
	container := dig.New()

	// Configuration
	if err := container.Provide(config.Load); err != nil {
		return nil, fmt.Errorf("failed to provide config: %w", err)
	}
	if err := container.Provide(config.ParseDependenciesConfig); err != nil {
		return nil, fmt.Errorf("failed to provide config dependencies: %w", err)
	}

	// Observability
	if err := container.Provide(observability.InitLogger); err != nil {
		return nil, fmt.Errorf("failed to provide logger: %w", err)
	}
	if err := container.Provide(func(cfg *metrics.Config) *metrics.Collector {
		return metrics.NewCollector(cfg, nil)
	}); err != nil {
		return nil, fmt.Errorf("failed to provide metrics collector: %w", err)
	}
	if err := container.Provide(func(c *metrics.Collector) (pricing.Recorder, tokenizer.LoadRecorder, domain.EstimateRecorder) {
		return c, c, c
	}); err != nil {
		return nil, fmt.Errorf("failed to provide metric recorders: %w", err)
	}

	// Tokenizers
	if err := container.Provide(func(cfg *tokenizer.Config) *tokenizer.Registry {
		return tokenizer.NewRegistry(cfg.DefaultEncoding)
	}); err != nil {
		return nil, fmt.Errorf("failed to provide tokenizer registry: %w", err)
	}
	if err := container.Provide(func(registry *tokenizer.Registry, recorder tokenizer.LoadRecorder) domain.TokenCounter {
		return tokenizer.NewProvider(registry, nil, recorder)
	}); err != nil {
		return nil, fmt.Errorf("failed to provide tokenizer provider: %w", err)
	}

	// Pricing
	if err := container.Provide(func(cfg *openrouter.Config) domain.PricingFetcher {
		return openrouter.NewFetcher(*cfg)
	}); err != nil {
		return nil, fmt.Errorf("failed to provide pricing fetcher: %w", err)
	}
	if err := container.Provide(newPricingStore); err != nil {
		return nil, fmt.Errorf("failed to provide pricing store: %w", err)
	}
	if err := container.Provide(pricing.LoadFallback); err != nil {
		return nil, fmt.Errorf("failed to provide fallback pricing: %w", err)
	}
	if err := container.Provide(func(
		fetcher domain.PricingFetcher,
		store domain.PricingStore,
		fallback domain.PricingTable,
		recorder pricing.Recorder,
		cfg *pricing.Config,
	) domain.PricingProvider {
		return pricing.NewProvider(fetcher, store, fallback, recorder, cfg)
	}); err != nil {
		return nil, fmt.Errorf("failed to provide pricing provider: %w", err)
	}

	// Domain Services
	if err := container.Provide(func() domain.CostCalculator {
		return domain.NewStandardCostCalculator()
	}); err != nil {
		return nil, fmt.Errorf("failed to provide cost calculator: %w", err)
	}
	if err := container.Provide(domain.NewEstimatorService); err != nil {
		return nil, fmt.Errorf("failed to provide estimator service: %w", err)
	}

	// HTTP Layer
	if err := container.Provide(middleware.BuildMiddlewareChain); err != nil {
		return nil, fmt.Errorf("failed to provide middleware chain: %w", err)
	}
	if err := container.Provide(http.NewHandler); err != nil {
		return nil, fmt.Errorf("failed to provide HTTP handler: %w", err)
	}
	if err := container.Provide(http.NewServer); err != nil {
		return nil, fmt.Errorf("failed to provide HTTP server: %w", err)
	}

	// The logger is global; resolve it once so every command logs with the configured level.
	if err := container.Invoke(func(*zap.Logger) {}); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return container, nil
}

// newPricingStore shares the snapshot through Redis when REDIS_URL is set, otherwise keeps it in memory.
func newPricingStore(cfg *rediscache.Config, pricingCfg *pricing.Config) (domain.PricingStore, error) {
	if cfg.URL == "" {
		return pricing.NewMemoryStore(), nil
	}

	client, err := rediscache.NewClient(cfg.URL)
	if err != nil {
		return nil, err
	}

	return rediscache.NewPricingStore(client, cfg.Key, pricingCfg.CacheTTL), nil
}
