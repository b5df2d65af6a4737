package domain

import "github.com/shopspring/decimal"

// StandardCostCalculator implements per-token cost calculation.
type StandardCostCalculator struct{}

// NewStandardCostCalculator creates a new cost calculator.
func NewStandardCostCalculator() *StandardCostCalculator {
	return &StandardCostCalculator{}
}

// Cost computes inputTokens*inputRate + outputTokens*outputRate for the model.
// Models without an exact id in the table and unknown rates contribute nothing.
func (c *StandardCostCalculator) Cost(
	model string,
	inputTokens int,
	outputTokens int,
	table PricingTable,
) float64 {
	pricing, ok := table.Lookup(model)
	if !ok {
		return 0
	}

	inputCost := decimal.NewFromInt(int64(inputTokens)).Mul(rate(pricing.InputCostPerToken))
	outputCost := decimal.NewFromInt(int64(outputTokens)).Mul(rate(pricing.OutputCostPerToken))

	return inputCost.Add(outputCost).InexactFloat64()
}

func rate(r *float64) decimal.Decimal {
	if r == nil {
		return decimal.Zero
	}
	return decimal.NewFromFloat(*r)
}
