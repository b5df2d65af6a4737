package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/cors"

	"github.com/davidbz/llmcost/internal/config"
	"github.com/davidbz/llmcost/internal/observability"
)

// corsLogger routes rs/cors debug output through zap.
type corsLogger struct{}

func (corsLogger) Printf(format string, args ...any) {
	observability.FromContext(context.Background()).Debug(fmt.Sprintf(format, args...))
}

// CORS applies the configured origin policy. Browser clients may read the
// id and pricing-source headers so a UI can flag estimates priced from the
// bundled table.
func CORS(cfg *config.CORSConfig) Middleware {
	if cfg == nil {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	opts := cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   append([]string{RequestIDHeader}, cfg.AllowedHeaders...),
		ExposedHeaders:   []string{TraceIDHeader, RequestIDHeader, PricingSourceHeader},
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}
	// rs/cors logs whenever a Logger is set.
	if cfg.Debug {
		opts.Logger = corsLogger{}
	}

	return cors.New(opts).Handler
}
