package anthropic

// Config contains Anthropic provider configuration.
type Config struct {
	APIKey     string `env:"ANTHROPIC_API_KEY"`
	BaseURL    string `env:"ANTHROPIC_BASE_URL"    envDefault:"https://api.anthropic.com"`
	Timeout    int    `env:"ANTHROPIC_TIMEOUT"     envDefault:"60"`
	MaxRetries int    `env:"ANTHROPIC_MAX_RETRIES" envDefault:"0"`
	MaxTokens  int    `env:"ANTHROPIC_MAX_TOKENS"  envDefault:"256"`
}
