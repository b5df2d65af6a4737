package domain

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/davidbz/llmcost/internal/observability"
)

// EstimatorConfig contains estimator settings.
type EstimatorConfig struct {
	// FixedTokenizerModel, when set, tokenizes every request with this model's
	// encoding instead of the requested model's.
	FixedTokenizerModel string `env:"TOKENIZER_FIXED_MODEL"`

	// ResolveModelIDs prices a model absent from the table under a matching
	// case-insensitive or "<vendor>/<model>" id. Off means exact ids only.
	ResolveModelIDs bool `env:"PRICING_RESOLVE_MODEL_IDS" envDefault:"false"`
}

// EstimatorService orchestrates token counting, pricing resolution and cost calculation.
type EstimatorService struct {
	tokens     TokenCounter
	pricing    PricingProvider
	calculator CostCalculator
	recorder   EstimateRecorder
	config     EstimatorConfig
}

// NewEstimatorService creates a new estimator service (DI constructor).
func NewEstimatorService(
	tokens TokenCounter,
	pricing PricingProvider,
	calculator CostCalculator,
	recorder EstimateRecorder,
	config *EstimatorConfig,
) *EstimatorService {
	svc := &EstimatorService{
		tokens:     tokens,
		pricing:    pricing,
		calculator: calculator,
		recorder:   recorder,
	}
	if config != nil {
		svc.config = *config
	}
	return svc
}

// Estimate counts input and output tokens and prices them for the requested model.
// Only tokenizer failures are returned; pricing failures degrade to the bundled table.
func (s *EstimatorService) Estimate(ctx context.Context, req *EstimateRequest) (*Estimate, error) {
	if req == nil {
		return nil, errors.New("request cannot be nil")
	}

	if req.Model == "" {
		return nil, errors.New("model cannot be empty")
	}

	tokenizerModel := s.tokenizerModel(req.Model)

	ctx = observability.WithModel(ctx, req.Model)
	ctx = observability.WithTokenizerModel(ctx, tokenizerModel)
	logger := observability.FromContext(ctx)

	var (
		inputTokens  int
		outputTokens int
		pricing      PricingResult
	)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		count, err := s.tokens.CountTokens(groupCtx, tokenizerModel, req.Input)
		if err != nil {
			return fmt.Errorf("failed to count input tokens: %w", err)
		}
		inputTokens = count
		return nil
	})

	group.Go(func() error {
		count, err := s.tokens.CountTokens(groupCtx, tokenizerModel, req.Output)
		if err != nil {
			return fmt.Errorf("failed to count output tokens: %w", err)
		}
		outputTokens = count
		return nil
	})

	// Pricing never fails and uses the caller context so a tokenizer error
	// does not abort an in-flight fetch shared with other callers.
	group.Go(func() error {
		pricing = s.pricing.GetPricing(ctx, req.Options)
		return nil
	})

	if err := group.Wait(); err != nil {
		logger.Error("estimate failed", observability.Error(err))
		return nil, err
	}

	ctx = observability.WithPricingSource(ctx, string(pricing.Source))
	logger = observability.FromContext(ctx)

	pricedModel := s.pricedModel(ctx, req.Model, pricing.Table)

	estimate := &Estimate{
		Model:         req.Model,
		InputTokens:   inputTokens,
		OutputTokens:  outputTokens,
		Cost:          s.calculator.Cost(pricedModel, inputTokens, outputTokens, pricing.Table),
		PricingSource: pricing.Source,
	}

	logger.Info("estimate completed",
		observability.Int("input_tokens", estimate.InputTokens),
		observability.Int("output_tokens", estimate.OutputTokens),
		observability.Float64("cost", estimate.Cost),
	)

	if s.recorder != nil {
		s.recorder.RecordEstimate(estimate)
	}

	return estimate, nil
}

// Pricing resolves the pricing table without estimating anything.
func (s *EstimatorService) Pricing(ctx context.Context, opts FetchOptions) PricingResult {
	return s.pricing.GetPricing(ctx, opts)
}

// pricedModel returns the table id the model is priced under.
func (s *EstimatorService) pricedModel(ctx context.Context, model string, table PricingTable) string {
	if !s.config.ResolveModelIDs {
		return model
	}
	if _, ok := table.Lookup(model); ok {
		return model
	}

	resolved := table.ResolveModelID(model)
	if resolved == "" {
		return model
	}

	observability.FromContext(ctx).Info("pricing model id resolved",
		observability.String("priced_as", resolved))
	return resolved
}

func (s *EstimatorService) tokenizerModel(model string) string {
	if s.config.FixedTokenizerModel != "" {
		return s.config.FixedTokenizerModel
	}
	return model
}
