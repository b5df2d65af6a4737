package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "llmcost",
		Short: "Estimate LLM call costs from token counts and live model pricing",
		Long: `llmcost counts input and output tokens with the model's tokenizer and prices
them with per-token rates from the OpenRouter model list. The list is cached for an
hour; when it cannot be fetched in time the bundled pricing table is used instead.

Configuration is read from the environment (and a .env file), e.g. PRICING_TIMEOUT_MS,
PRICING_CACHE_TTL, REDIS_URL, TOKENIZER_FIXED_MODEL and LOG_LEVEL.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newServeCmd(),
		newEstimateCmd(),
		newPricingCmd(),
	)

	return root
}
