package middleware

import (
	"net/http"

	"github.com/davidbz/llmcost/internal/config"
	"github.com/davidbz/llmcost/internal/observability"
)

// Response headers set by the API.
const (
	TraceIDHeader       = "X-Trace-Id"
	RequestIDHeader     = "X-Request-Id"
	PricingSourceHeader = "X-Llmcost-Pricing-Source"
)

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain composes middlewares; the first one is the outermost wrapper.
func Chain(middlewares ...Middleware) Middleware {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}

// BuildMiddlewareChain composes Trace -> CORS -> Recover, so preflights and
// rejected origins still get ids and an access log line.
func BuildMiddlewareChain(corsConfig *config.CORSConfig) Middleware {
	return Chain(
		Trace(),
		CORS(corsConfig),
		Recover(),
	)
}

// Recover turns a handler panic into a 500.
func Recover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				observability.FromContext(r.Context()).Error("estimate handler panicked",
					observability.Any("panic", rec),
					observability.String("path", r.URL.Path))
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
