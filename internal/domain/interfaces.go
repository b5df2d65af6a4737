package domain

import "context"

// TokenCounter counts tokens of a text under a model's encoding.
type TokenCounter interface {
	// CountTokens returns the number of tokens in text. Empty text is always 0.
	CountTokens(ctx context.Context, model string, text string) (int, error)
}

// PricingProvider resolves the model pricing table.
type PricingProvider interface {
	// GetPricing always returns a usable table; failures degrade to the bundled dataset.
	GetPricing(ctx context.Context, opts FetchOptions) PricingResult
}

// CostCalculator turns token counts into a USD cost.
type CostCalculator interface {
	// Cost returns the cost of a call to model, or 0 when the model has no pricing.
	Cost(model string, inputTokens, outputTokens int, table PricingTable) float64
}

// EstimateRecorder observes completed estimates.
type EstimateRecorder interface {
	RecordEstimate(estimate *Estimate)
}
