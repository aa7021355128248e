package openai

// Config contains settings for OpenAI-compatible backends such as LM Studio
// or Ollama's /v1 routes. The endpoint comes with each request.
//   - APIKey: Maps to option.WithAPIKey(); local servers accept any value
//   - MaxRetries: Maps to option.WithMaxRetries()
type Config struct {
	APIKey     string `env:"OPENAI_API_KEY"     envDefault:"local"`
	MaxRetries int    `env:"OPENAI_MAX_RETRIES" envDefault:"0"`
}
