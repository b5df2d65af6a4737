package domain

import "time"

// ModelPricing holds per-token USD rates for a single model.
// A nil rate means the price is unknown and counts as zero.
type ModelPricing struct {
	InputCostPerToken  *float64 `json:"input_cost_per_token,omitempty"  yaml:"input_cost_per_token,omitempty"`
	OutputCostPerToken *float64 `json:"output_cost_per_token,omitempty" yaml:"output_cost_per_token,omitempty"`
}

// NewModelPricing builds a ModelPricing with both rates set.
func NewModelPricing(input, output float64) ModelPricing {
	return ModelPricing{
		InputCostPerToken:  &input,
		OutputCostPerToken: &output,
	}
}

// PricingTable maps model ids to their pricing.
type PricingTable map[string]ModelPricing

// PricingSource tells where a resolved pricing table came from.
type PricingSource string

const (
	// PricingSourceFresh means the table was fetched from the remote endpoint during this call.
	PricingSourceFresh PricingSource = "fresh"

	// PricingSourceCached means a previously fetched table was still within its TTL.
	PricingSourceCached PricingSource = "cached"

	// PricingSourceFallback means the remote fetch failed and the bundled table was used.
	PricingSourceFallback PricingSource = "fallback"

	// PricingSourceOffline means the caller skipped the network and the bundled table was used.
	PricingSourceOffline PricingSource = "offline"
)

// Degraded reports whether the table was served from the bundled dataset.
func (s PricingSource) Degraded() bool {
	return s == PricingSourceFallback || s == PricingSourceOffline
}

// PricingResult is a resolved pricing table together with its provenance.
type PricingResult struct {
	Table     PricingTable
	Source    PricingSource
	FetchedAt time.Time // zero for fallback and offline results
}

const (
	// DefaultTimeoutMs bounds the remote pricing lookup when the caller does not set one.
	DefaultTimeoutMs = 5000
)

// FetchOptions controls how pricing is resolved for a single call.
type FetchOptions struct {
	Offline   bool `json:"offline,omitempty"`
	TimeoutMs int  `json:"timeoutMs,omitempty"`
}

// Timeout returns the fetch deadline, falling back to DefaultTimeoutMs for non-positive values.
func (o FetchOptions) Timeout() time.Duration {
	if o.TimeoutMs <= 0 {
		return DefaultTimeoutMs * time.Millisecond
	}
	return time.Duration(o.TimeoutMs) * time.Millisecond
}

// EstimateRequest is the input of a cost estimate.
type EstimateRequest struct {
	Model   string       `json:"model"`
	Input   string       `json:"input,omitempty"`
	Output  string       `json:"output,omitempty"`
	Options FetchOptions `json:"options,omitempty"`
}

// Estimate is the result of a cost estimate.
type Estimate struct {
	Model         string        `json:"model"`
	InputTokens   int           `json:"inputTokens"`
	OutputTokens  int           `json:"outputTokens"`
	Cost          float64       `json:"cost"`
	PricingSource PricingSource `json:"pricingSource"`
}
