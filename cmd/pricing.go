package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/davidbz/llmcost/internal/domain"
	"github.com/davidbz/llmcost/internal/http"
)

func newPricingCmd() *cobra.Command {
	var (
		model     string
		offline   bool
		timeoutMs int
	)

	cmd := &cobra.Command{
		Use:   "pricing",
		Short: "Print the resolved pricing table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			container, err := buildContainer()
			if err != nil {
				return err
			}

			return container.Invoke(func(estimator *domain.EstimatorService) error {
				result := estimator.Pricing(cmd.Context(), domain.FetchOptions{
					Offline:   offline,
					TimeoutMs: timeoutMs,
				})

				if model != "" {
					id := result.Table.ResolveModelID(model)
					if id == "" {
						return fmt.Errorf("no pricing for model %q (source %s)", model, result.Source)
					}
					result.Table = domain.PricingTable{id: result.Table[id]}
				}

				return printJSON(cmd.OutOrStdout(), http.NewPricingResponse(result))
			})
		},
	}

	cmd.Flags().StringVarP(&model, "model", "m", "", "only print this model; bare names match a single vendor-prefixed id")
	cmd.Flags().BoolVar(&offline, "offline", false, "skip the network and use bundled pricing")
	cmd.Flags().IntVar(&timeoutMs, "timeout-ms", 0, "pricing fetch timeout in milliseconds (default 5000)")

	return cmd
}
