package observability

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type contextKey string

// Request-scoped values. Every one that is set is attached to log lines by FromContext.
const (
	TraceIDKey        contextKey = "trace_id"
	SpanIDKey         contextKey = "span_id"
	RequestIDKey      contextKey = "request_id"
	ModelKey          contextKey = "model"
	TokenizerModelKey contextKey = "tokenizer_model"
	PricingSourceKey  contextKey = "pricing_source"
)

// logKeys is the order context values appear in log lines.
//
//nolint:gochecknoglobals // Read-only key list
var logKeys = []contextKey{
	TraceIDKey,
	SpanIDKey,
	RequestIDKey,
	ModelKey,
	TokenizerModelKey,
	PricingSourceKey,
}

const (
	traceIDBytes = 16 // W3C trace-id size
	spanIDBytes  = 8  // W3C parent-id size
)

func with(ctx context.Context, key contextKey, value string) context.Context {
	if value == "" {
		return ctx
	}
	return context.WithValue(ctx, key, value)
}

func get(ctx context.Context, key contextKey) string {
	value, _ := ctx.Value(key).(string)
	return value
}

// WithTraceID stores the trace id.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return with(ctx, TraceIDKey, traceID)
}

// WithSpanID stores the span id.
func WithSpanID(ctx context.Context, spanID string) context.Context {
	return with(ctx, SpanIDKey, spanID)
}

// WithRequestID stores the request id.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return with(ctx, RequestIDKey, requestID)
}

// WithModel stores the model being estimated.
func WithModel(ctx context.Context, model string) context.Context {
	return with(ctx, ModelKey, model)
}

// WithTokenizerModel stores the model whose encoding counts the tokens.
func WithTokenizerModel(ctx context.Context, model string) context.Context {
	return with(ctx, TokenizerModelKey, model)
}

// WithPricingSource stores where the pricing table came from.
func WithPricingSource(ctx context.Context, source string) context.Context {
	return with(ctx, PricingSourceKey, source)
}

// GetTraceID returns the trace id, or "".
func GetTraceID(ctx context.Context) string { return get(ctx, TraceIDKey) }

// GetSpanID returns the span id, or "".
func GetSpanID(ctx context.Context) string { return get(ctx, SpanIDKey) }

// GetRequestID returns the request id, or "".
func GetRequestID(ctx context.Context) string { return get(ctx, RequestIDKey) }

// GetModel returns the model being estimated, or "".
func GetModel(ctx context.Context) string { return get(ctx, ModelKey) }

// GetTokenizerModel returns the tokenizer model, or "".
func GetTokenizerModel(ctx context.Context) string { return get(ctx, TokenizerModelKey) }

// GetPricingSource returns the pricing source, or "".
func GetPricingSource(ctx context.Context) string { return get(ctx, PricingSourceKey) }

// Fields returns the log fields for every value set on ctx.
func Fields(ctx context.Context) []zap.Field {
	fields := make([]zap.Field, 0, len(logKeys))
	for _, key := range logKeys {
		if value := get(ctx, key); value != "" {
			fields = append(fields, zap.String(string(key), value))
		}
	}
	return fields
}

// GenerateTraceID returns 32 hex chars.
func GenerateTraceID() string {
	return randomHex(traceIDBytes)
}

// GenerateSpanID returns 16 hex chars.
func GenerateSpanID() string {
	return randomHex(spanIDBytes)
}

// GenerateRequestID returns a random UUID.
func GenerateRequestID() string {
	return uuid.NewString()
}

func randomHex(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// uuid has its own entropy pool; strip dashes to keep the hex shape.
		id := uuid.New()
		return hex.EncodeToString(id[:])[:2*n]
	}
	return hex.EncodeToString(buf)
}
