package openrouter

// Config contains OpenRouter model list settings.
// All fields map to OpenAI SDK options:
//   - BaseURL: Maps to option.WithBaseURL()
//   - APIKey: Maps to option.WithAPIKey(); the model list is public so it may be empty
type Config struct {
	BaseURL string `env:"PRICING_BASE_URL" envDefault:"https://openrouter.ai/api/v1"`
	APIKey  string `env:"PRICING_API_KEY"`
}
