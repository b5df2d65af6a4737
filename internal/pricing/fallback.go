package pricing

import (
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/davidbz/llmcost/internal/domain"
)

//go:embed fallback_pricing.yaml
var bundledPricing []byte

type fallbackFile struct {
	Models domain.PricingTable `yaml:"models"`
}

// LoadFallback decodes the bundled pricing dataset.
func LoadFallback() (domain.PricingTable, error) {
	return ParseFallback(bundledPricing)
}

// ParseFallback decodes a pricing dataset in the bundled YAML layout.
func ParseFallback(data []byte) (domain.PricingTable, error) {
	var file fallbackFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to decode fallback pricing: %w", err)
	}

	if len(file.Models) == 0 {
		return nil, errors.New("fallback pricing has no models")
	}

	return file.Models, nil
}
