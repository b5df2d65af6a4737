// Package openrouter fetches live per-token model pricing from the OpenRouter model list.
package openrouter

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"github.com/davidbz/llmcost/internal/domain"
)

const (
	// DefaultBaseURL is the public OpenRouter API root.
	DefaultBaseURL = "https://openrouter.ai/api/v1"

	modelsPath = "models"
)

// Fetcher implements domain.PricingFetcher against GET {base}/models.
type Fetcher struct {
	client   openai.Client
	endpoint string
}

// NewFetcher creates a new OpenRouter pricing fetcher.
func NewFetcher(config Config) *Fetcher {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/") + "/"

	opts := []option.RequestOption{
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(0),
	}
	if config.APIKey != "" {
		opts = append(opts, option.WithAPIKey(config.APIKey))
	} else {
		// Never forward an OPENAI_API_KEY picked up from the environment.
		opts = append(opts, option.WithHeaderDel("authorization"))
	}

	return &Fetcher{
		client:   openai.NewClient(opts...),
		endpoint: baseURL + modelsPath,
	}
}

// Endpoint returns the model list URL.
func (f *Fetcher) Endpoint() string {
	return f.endpoint
}

// Fetch downloads the model list and converts it into a pricing table.
func (f *Fetcher) Fetch(ctx context.Context) (domain.PricingTable, error) {
	var (
		body     []byte
		response *http.Response
	)

	err := f.client.Get(ctx, modelsPath, nil, &body, option.WithResponseInto(&response))
	if err != nil {
		fetchErr := &domain.PricingFetchError{URL: f.endpoint, Err: err}

		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			fetchErr.StatusCode = apiErr.StatusCode
		}

		return nil, fetchErr
	}

	if response != nil && (response.StatusCode < 200 || response.StatusCode > 299) {
		return nil, &domain.PricingFetchError{
			URL:        f.endpoint,
			StatusCode: response.StatusCode,
			Err:        errors.New("unexpected status"),
		}
	}

	table, err := ParseModels(body)
	if err != nil {
		return nil, &domain.PricingFetchError{URL: f.endpoint, Err: err}
	}

	return table, nil
}

// ParseModels converts a {"data":[{"id":...,"pricing":{"prompt":...,"completion":...}}]}
// payload into a pricing table. Rates that are missing, non-numeric or negative are left unset.
func ParseModels(body []byte) (domain.PricingTable, error) {
	if !gjson.ValidBytes(body) {
		return nil, errors.New("malformed pricing payload: invalid JSON")
	}

	data := gjson.GetBytes(body, "data")
	if !data.IsArray() {
		return nil, errors.New("malformed pricing payload: missing data array")
	}

	table := make(domain.PricingTable)

	data.ForEach(func(_, record gjson.Result) bool {
		id := record.Get("id").String()
		if id == "" {
			return true
		}

		table[id] = domain.ModelPricing{
			InputCostPerToken:  parseRate(record.Get("pricing.prompt")),
			OutputCostPerToken: parseRate(record.Get("pricing.completion")),
		}
		return true
	})

	return table, nil
}

func parseRate(value gjson.Result) *float64 {
	if value.Type != gjson.String && value.Type != gjson.Number {
		return nil
	}

	d, err := decimal.NewFromString(strings.TrimSpace(value.String()))
	// OpenRouter reports "-1" for models whose price varies per request (e.g. routers).
	if err != nil || d.IsNegative() {
		return nil
	}

	rate := d.InexactFloat64()
	return &rate
}
