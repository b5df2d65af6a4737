package observability_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/davidbz/llmcost/internal/observability"
)

func TestContextValues(t *testing.T) {
	ctx := context.Background()

	require.Empty(t, observability.GetTraceID(ctx))
	require.Empty(t, observability.GetModel(ctx))

	ctx = observability.WithTraceID(ctx, "trace-1")
	ctx = observability.WithSpanID(ctx, "span-1")
	ctx = observability.WithRequestID(ctx, "request-1")
	ctx = observability.WithModel(ctx, "gpt-4o")

	require.Equal(t, "trace-1", observability.GetTraceID(ctx))
	require.Equal(t, "span-1", observability.GetSpanID(ctx))
	require.Equal(t, "request-1", observability.GetRequestID(ctx))
	require.Equal(t, "gpt-4o", observability.GetModel(ctx))
}

func TestFields_EstimateContext(t *testing.T) {
	ctx := observability.WithRequestID(context.Background(), "request-1")
	ctx = observability.WithModel(ctx, "anthropic/claude-3.5-sonnet")
	ctx = observability.WithTokenizerModel(ctx, "gpt-4o")
	ctx = observability.WithPricingSource(ctx, "fallback")
	ctx = observability.WithTraceID(ctx, "")

	require.Equal(t, "gpt-4o", observability.GetTokenizerModel(ctx))
	require.Equal(t, "fallback", observability.GetPricingSource(ctx))

	keys := make([]string, 0, 4)
	for _, field := range observability.Fields(ctx) {
		keys = append(keys, field.Key)
	}
	require.Equal(t, []string{"request_id", "model", "tokenizer_model", "pricing_source"}, keys)
}

func TestGenerateIDs(t *testing.T) {
	traceID := observability.GenerateTraceID()
	spanID := observability.GenerateSpanID()

	require.Len(t, traceID, 32)
	require.Len(t, spanID, 16)
	require.NotEqual(t, traceID, observability.GenerateTraceID())
	require.NotEqual(t, observability.GenerateRequestID(), observability.GenerateRequestID())
}

func TestFromContext_AddsFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	observability.SetLogger(zap.New(core))
	t.Cleanup(func() { observability.SetLogger(nil) })

	ctx := observability.WithTraceID(context.Background(), "trace-1")
	ctx = observability.WithModel(ctx, "gpt-4o")
	ctx = observability.WithPricingSource(ctx, "cached")

	observability.FromContext(ctx).Info("estimate completed", observability.Int("input_tokens", 3))

	entries := logs.All()
	require.Len(t, entries, 1)

	fields := entries[0].ContextMap()
	require.Equal(t, "trace-1", fields["trace_id"])
	require.Equal(t, "gpt-4o", fields["model"])
	require.Equal(t, "cached", fields["pricing_source"])
	require.NotContains(t, fields, "span_id")
	require.Equal(t, int64(3), fields["input_tokens"])
}

func TestInitLogger(t *testing.T) {
	t.Cleanup(func() { observability.SetLogger(nil) })

	t.Run("should build a logger at the configured level", func(t *testing.T) {
		logger, err := observability.InitLogger(&observability.LoggerConfig{Level: "warn"})
		require.NoError(t, err)
		require.False(t, logger.Core().Enabled(zap.InfoLevel))
		require.True(t, logger.Core().Enabled(zap.WarnLevel))
	})

	t.Run("should reject an unknown level", func(t *testing.T) {
		_, err := observability.InitLogger(&observability.LoggerConfig{Level: "chatty"})
		require.Error(t, err)
	})

	t.Run("should accept a nil config", func(t *testing.T) {
		logger, err := observability.InitLogger(nil)
		require.NoError(t, err)
		require.NotNil(t, logger)
	})
}
