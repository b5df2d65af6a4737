package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/davidbz/llmcost/internal/observability"
)

// statusRecorder remembers the status code written by the handler.
type statusRecorder struct {
	http.ResponseWriter

	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	if s.status == 0 {
		s.status = status
	}
	s.ResponseWriter.WriteHeader(status)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	return s.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

// requestID reuses a caller-supplied UUID so client and server logs line up.
func requestID(r *http.Request) string {
	if id := r.Header.Get(RequestIDHeader); id != "" {
		if _, err := uuid.Parse(id); err == nil {
			return id
		}
	}
	return observability.GenerateRequestID()
}

// Trace tags every request with trace, span and request ids and writes one
// access log line once the handler returns. The line carries the pricing
// source the handler reported, so degraded (fallback/offline) answers show up
// in access logs without reading bodies.
func Trace() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()

			ctx := observability.WithTraceID(r.Context(), observability.GenerateTraceID())
			ctx = observability.WithSpanID(ctx, observability.GenerateSpanID())
			ctx = observability.WithRequestID(ctx, requestID(r))

			w.Header().Set(TraceIDHeader, observability.GetTraceID(ctx))
			w.Header().Set(RequestIDHeader, observability.GetRequestID(ctx))

			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r.WithContext(ctx))

			if rec.status == 0 {
				rec.status = http.StatusOK
			}
			ctx = observability.WithPricingSource(ctx, w.Header().Get(PricingSourceHeader))

			observability.FromContext(ctx).Info("request completed",
				observability.String("method", r.Method),
				observability.String("path", r.URL.Path),
				observability.Int("status", rec.status),
				observability.Duration("duration", time.Since(started)),
			)
		})
	}
}
