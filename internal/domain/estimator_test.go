package domain_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/davidbz/llmcost/internal/domain"
	"github.com/davidbz/llmcost/internal/observability"
)

// fakeCounter counts whitespace-separated words and remembers the models it was asked for.
type fakeCounter struct {
	mu     sync.Mutex
	models []string
	err    error
}

func (f *fakeCounter) CountTokens(_ context.Context, model string, text string) (int, error) {
	f.mu.Lock()
	f.models = append(f.models, model)
	f.mu.Unlock()

	if f.err != nil {
		return 0, f.err
	}
	return len(strings.Fields(text)), nil
}

// fakePricing returns a fixed result and records the options it received.
type fakePricing struct {
	mu     sync.Mutex
	result domain.PricingResult
	opts   []domain.FetchOptions
}

func (f *fakePricing) GetPricing(_ context.Context, opts domain.FetchOptions) domain.PricingResult {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.opts = append(f.opts, opts)
	if opts.Offline {
		return domain.PricingResult{Table: f.result.Table, Source: domain.PricingSourceOffline}
	}
	return f.result
}

type fakeEstimateRecorder struct {
	estimates []*domain.Estimate
}

func (f *fakeEstimateRecorder) RecordEstimate(estimate *domain.Estimate) {
	f.estimates = append(f.estimates, estimate)
}

func gpt35Pricing() domain.PricingResult {
	return domain.PricingResult{
		Table: domain.PricingTable{
			"gpt-3.5-turbo": domain.NewModelPricing(0.0000015, 0.000002),
		},
		Source:    domain.PricingSourceCached,
		FetchedAt: time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC),
	}
}

func newEstimator(
	counter domain.TokenCounter,
	pricing domain.PricingProvider,
	recorder domain.EstimateRecorder,
	config *domain.EstimatorConfig,
) *domain.EstimatorService {
	return domain.NewEstimatorService(counter, pricing, domain.NewStandardCostCalculator(), recorder, config)
}

func TestEstimatorService_Estimate(t *testing.T) {
	tests := []struct {
		name           string
		req            *domain.EstimateRequest
		expectedInput  int
		expectedOutput int
		expectedCost   float64
		expectedSource domain.PricingSource
	}{
		{
			name: "input and output",
			req: &domain.EstimateRequest{
				Model:  "gpt-3.5-turbo",
				Input:  "Hello world !",
				Output: "Hi there !",
			},
			expectedInput:  3,
			expectedOutput: 3,
			expectedCost:   0.0000105,
			expectedSource: domain.PricingSourceCached,
		},
		{
			name: "empty texts cost nothing",
			req: &domain.EstimateRequest{
				Model: "gpt-3.5-turbo",
			},
			expectedCost:   0,
			expectedSource: domain.PricingSourceCached,
		},
		{
			name: "unknown model is free",
			req: &domain.EstimateRequest{
				Model:  "some-unpriced-model",
				Input:  "one two",
				Output: "three",
			},
			expectedInput:  2,
			expectedOutput: 1,
			expectedCost:   0,
			expectedSource: domain.PricingSourceCached,
		},
		{
			name: "offline option is passed through",
			req: &domain.EstimateRequest{
				Model:   "gpt-3.5-turbo",
				Input:   "a b c d",
				Options: domain.FetchOptions{Offline: true},
			},
			expectedInput:  4,
			expectedCost:   0.000006,
			expectedSource: domain.PricingSourceOffline,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pricing := &fakePricing{result: gpt35Pricing()}
			service := newEstimator(&fakeCounter{}, pricing, nil, nil)

			estimate, err := service.Estimate(context.Background(), tt.req)
			require.NoError(t, err)

			require.Equal(t, tt.req.Model, estimate.Model)
			require.Equal(t, tt.expectedInput, estimate.InputTokens)
			require.Equal(t, tt.expectedOutput, estimate.OutputTokens)
			require.InDelta(t, tt.expectedCost, estimate.Cost, 1e-12)
			require.Equal(t, tt.expectedSource, estimate.PricingSource)
			require.Equal(t, []domain.FetchOptions{tt.req.Options}, pricing.opts)
		})
	}
}

func TestEstimatorService_Validation(t *testing.T) {
	service := newEstimator(&fakeCounter{}, &fakePricing{result: gpt35Pricing()}, nil, nil)

	t.Run("should reject nil request", func(t *testing.T) {
		_, err := service.Estimate(context.Background(), nil)
		require.Error(t, err)
	})

	t.Run("should reject empty model", func(t *testing.T) {
		_, err := service.Estimate(context.Background(), &domain.EstimateRequest{Input: "hi"})
		require.Error(t, err)
		require.Contains(t, err.Error(), "model cannot be empty")
	})
}

func TestEstimatorService_TokenizerFailure(t *testing.T) {
	loadErr := &domain.TokenizerLoadError{
		Model:    "mystery",
		Encoding: "cl100k_base",
		Err:      errors.New("connection refused"),
	}
	recorder := &fakeEstimateRecorder{}
	service := newEstimator(&fakeCounter{err: loadErr}, &fakePricing{result: gpt35Pricing()}, recorder, nil)

	estimate, err := service.Estimate(context.Background(), &domain.EstimateRequest{
		Model: "mystery",
		Input: "hello",
	})

	require.Nil(t, estimate)
	require.Error(t, err)

	var target *domain.TokenizerLoadError
	require.ErrorAs(t, err, &target)
	require.Equal(t, "mystery", target.Model)
	require.Empty(t, recorder.estimates)
}

func TestEstimatorService_FallbackPricingIsNotAnError(t *testing.T) {
	pricing := &fakePricing{result: domain.PricingResult{
		Table:  gpt35Pricing().Table,
		Source: domain.PricingSourceFallback,
	}}
	service := newEstimator(&fakeCounter{}, pricing, nil, nil)

	estimate, err := service.Estimate(context.Background(), &domain.EstimateRequest{
		Model:  "gpt-3.5-turbo",
		Input:  "Hello world !",
		Output: "Hi there !",
	})
	require.NoError(t, err)
	require.Equal(t, domain.PricingSourceFallback, estimate.PricingSource)
	require.True(t, estimate.PricingSource.Degraded())
	require.InDelta(t, 0.0000105, estimate.Cost, 1e-12)
}

func TestEstimatorService_FixedTokenizerModel(t *testing.T) {
	counter := &fakeCounter{}
	service := newEstimator(counter, &fakePricing{result: gpt35Pricing()}, nil, &domain.EstimatorConfig{
		FixedTokenizerModel: "gpt-3.5-turbo",
	})

	estimate, err := service.Estimate(context.Background(), &domain.EstimateRequest{
		Model: "claude-3-opus",
		Input: "hello",
	})
	require.NoError(t, err)

	// Pricing still follows the requested model.
	require.Equal(t, "claude-3-opus", estimate.Model)
	require.Equal(t, []string{"gpt-3.5-turbo", "gpt-3.5-turbo"}, counter.models)
}

func TestEstimatorService_PerModelTokenizer(t *testing.T) {
	counter := &fakeCounter{}
	service := newEstimator(counter, &fakePricing{result: gpt35Pricing()}, nil, nil)

	_, err := service.Estimate(context.Background(), &domain.EstimateRequest{Model: "gpt-4o", Input: "hi"})
	require.NoError(t, err)

	require.Equal(t, []string{"gpt-4o", "gpt-4o"}, counter.models)
}

func TestEstimatorService_RecordsEstimate(t *testing.T) {
	recorder := &fakeEstimateRecorder{}
	service := newEstimator(&fakeCounter{}, &fakePricing{result: gpt35Pricing()}, recorder, nil)

	estimate, err := service.Estimate(context.Background(), &domain.EstimateRequest{
		Model: "gpt-3.5-turbo",
		Input: "one two",
	})
	require.NoError(t, err)

	require.Len(t, recorder.estimates, 1)
	require.Same(t, estimate, recorder.estimates[0])
}

func TestEstimatorService_Pricing(t *testing.T) {
	pricing := &fakePricing{result: gpt35Pricing()}
	service := newEstimator(&fakeCounter{}, pricing, nil, nil)

	result := service.Pricing(context.Background(), domain.FetchOptions{TimeoutMs: 100})

	require.Equal(t, domain.PricingSourceCached, result.Source)
	require.Equal(t, gpt35Pricing().Table, result.Table)
	require.Equal(t, []domain.FetchOptions{{TimeoutMs: 100}}, pricing.opts)
}

func TestEstimatorService_ModelIDResolution(t *testing.T) {
	pricing := &fakePricing{result: domain.PricingResult{
		Table: domain.PricingTable{
			"openai/gpt-4o": domain.NewModelPricing(0.0000025, 0.00001),
		},
		Source: domain.PricingSourceFresh,
	}}
	req := &domain.EstimateRequest{Model: "gpt-4o", Input: "a b", Output: "c"}

	t.Run("should price exact ids only by default", func(t *testing.T) {
		service := newEstimator(&fakeCounter{}, pricing, nil, nil)

		estimate, err := service.Estimate(context.Background(), req)
		require.NoError(t, err)
		require.Zero(t, estimate.Cost)
	})

	t.Run("should price under the resolved id when enabled", func(t *testing.T) {
		service := newEstimator(&fakeCounter{}, pricing, nil, &domain.EstimatorConfig{ResolveModelIDs: true})

		estimate, err := service.Estimate(context.Background(), req)
		require.NoError(t, err)
		require.Equal(t, "gpt-4o", estimate.Model)
		require.InDelta(t, 0.000015, estimate.Cost, 1e-12)
	})
}

func TestEstimatorService_LogsTokenizerAndPricingSource(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	observability.SetLogger(zap.New(core))
	t.Cleanup(func() { observability.SetLogger(nil) })

	pricing := &fakePricing{result: domain.PricingResult{
		Table:  gpt35Pricing().Table,
		Source: domain.PricingSourceFallback,
	}}
	service := newEstimator(&fakeCounter{}, pricing, nil, &domain.EstimatorConfig{
		FixedTokenizerModel: "gpt-3.5-turbo",
	})

	_, err := service.Estimate(context.Background(), &domain.EstimateRequest{Model: "claude-3-opus", Input: "hi"})
	require.NoError(t, err)

	entries := logs.FilterMessage("estimate completed").All()
	require.Len(t, entries, 1)

	fields := entries[0].ContextMap()
	require.Equal(t, "claude-3-opus", fields["model"])
	require.Equal(t, "gpt-3.5-turbo", fields["tokenizer_model"])
	require.Equal(t, "fallback", fields["pricing_source"])
}
