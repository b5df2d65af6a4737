package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/davidbz/llmcost/internal/domain"
)

type estimateFlags struct {
	model      string
	input      string
	output     string
	inputFile  string
	outputFile string
	offline    bool
	timeoutMs  int
}

func newEstimateCmd() *cobra.Command {
	var flags estimateFlags

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate token counts and cost for a model call",
		Example: `  llmcost estimate --model gpt-3.5-turbo --input "Hello world!" --output "Hi there!"
  llmcost estimate --model gpt-4o --input-file prompt.txt --offline`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := flags.request()
			if err != nil {
				return err
			}

			container, err := buildContainer()
			if err != nil {
				return err
			}

			return container.Invoke(func(estimator *domain.EstimatorService) error {
				estimate, estimateErr := estimator.Estimate(cmd.Context(), req)
				if estimateErr != nil {
					return estimateErr
				}
				return printJSON(cmd.OutOrStdout(), estimate)
			})
		},
	}

	cmd.Flags().StringVarP(&flags.model, "model", "m", "", "model id, e.g. gpt-3.5-turbo or openai/gpt-4o")
	cmd.Flags().StringVar(&flags.input, "input", "", "input (prompt) text")
	cmd.Flags().StringVar(&flags.output, "output", "", "output (completion) text")
	cmd.Flags().StringVar(&flags.inputFile, "input-file", "", "read the input text from a file")
	cmd.Flags().StringVar(&flags.outputFile, "output-file", "", "read the output text from a file")
	cmd.Flags().BoolVar(&flags.offline, "offline", false, "skip the network and use bundled pricing")
	cmd.Flags().IntVar(&flags.timeoutMs, "timeout-ms", 0, "pricing fetch timeout in milliseconds (default 5000)")

	_ = cmd.MarkFlagRequired("model")
	cmd.MarkFlagsMutuallyExclusive("input", "input-file")
	cmd.MarkFlagsMutuallyExclusive("output", "output-file")

	return cmd
}

func (f estimateFlags) request() (*domain.EstimateRequest, error) {
	input, err := textOrFile(f.input, f.inputFile)
	if err != nil {
		return nil, err
	}

	output, err := textOrFile(f.output, f.outputFile)
	if err != nil {
		return nil, err
	}

	return &domain.EstimateRequest{
		Model:  f.model,
		Input:  input,
		Output: output,
		Options: domain.FetchOptions{
			Offline:   f.offline,
			TimeoutMs: f.timeoutMs,
		},
	}, nil
}

func textOrFile(text, path string) (string, error) {
	if path == "" {
		return text, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

func printJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
