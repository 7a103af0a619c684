package ollama

// Config contains settings for a local Ollama server.
type Config struct {
	BaseURL string `env:"OLLAMA_BASE_URL" envDefault:"http://localhost:11434"`
	Timeout int    `env:"OLLAMA_TIMEOUT"  envDefault:"120"`
}
