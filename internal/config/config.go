package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/dig"

	rediscache "github.com/davidbz/llmcost/internal/cache/redis"
	"github.com/davidbz/llmcost/internal/domain"
	"github.com/davidbz/llmcost/internal/metrics"
	"github.com/davidbz/llmcost/internal/observability"
	"github.com/davidbz/llmcost/internal/pricing"
	"github.com/davidbz/llmcost/internal/provider/openrouter"
	"github.com/davidbz/llmcost/internal/tokenizer"
)

// Config represents the estimator service configuration.
type Config struct {
	Server     ServerConfig
	CORS       CORSConfig
	Logger     observability.LoggerConfig
	Pricing    pricing.Config
	OpenRouter openrouter.Config
	Redis      rediscache.Config
	Tokenizer  tokenizer.Config
	Estimator  domain.EstimatorConfig
	Metrics    metrics.Config
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port         int `env:"SERVER_PORT"          envDefault:"8080"`
	ReadTimeout  int `env:"SERVER_READ_TIMEOUT"  envDefault:"30"`
	WriteTimeout int `env:"SERVER_WRITE_TIMEOUT" envDefault:"30"`
}

// CORSConfig contains CORS policy settings.
type CORSConfig struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS"   envSeparator:"," envDefault:"*"`
	AllowedMethods   []string `env:"CORS_ALLOWED_METHODS"   envSeparator:"," envDefault:"GET,POST,OPTIONS"`
	AllowedHeaders   []string `env:"CORS_ALLOWED_HEADERS"   envSeparator:"," envDefault:"Content-Type,Authorization"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS"                  envDefault:"true"`
	MaxAge           int      `env:"CORS_MAX_AGE"                            envDefault:"86400"`
	Debug            bool     `env:"CORS_DEBUG"                              envDefault:"false"`
}

// DepConfig is used for dependency injection with dig.
type DepConfig struct {
	dig.Out

	Server     *ServerConfig
	CORS       *CORSConfig
	Logger     *observability.LoggerConfig
	Pricing    *pricing.Config
	OpenRouter *openrouter.Config
	Redis      *rediscache.Config
	Tokenizer  *tokenizer.Config
	Estimator  *domain.EstimatorConfig
	Metrics    *metrics.Config
}

// Load loads environment files and parses configuration.
func Load() (*Config, error) {
	for _, file := range []string{".env"} {
		_ = godotenv.Load(file)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ParseDependenciesConfig returns pointers to sub-configs for dependency injection.
func ParseDependenciesConfig(cfg *Config) DepConfig {
	return DepConfig{
		Server:     &cfg.Server,
		CORS:       &cfg.CORS,
		Logger:     &cfg.Logger,
		Pricing:    &cfg.Pricing,
		OpenRouter: &cfg.OpenRouter,
		Redis:      &cfg.Redis,
		Tokenizer:  &cfg.Tokenizer,
		Estimator:  &cfg.Estimator,
		Metrics:    &cfg.Metrics,
	}
}
