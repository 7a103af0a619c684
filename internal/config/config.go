// Package config loads sgrep settings from the environment and an optional
// .env file.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/dig"

	"github.com/davidbz/sgrep/internal/credential"
	"github.com/davidbz/sgrep/internal/observability"
	"github.com/davidbz/sgrep/internal/pattern"
	"github.com/davidbz/sgrep/internal/provider/anthropic"
	"github.com/davidbz/sgrep/internal/provider/ollama"
	"github.com/davidbz/sgrep/internal/provider/openai"
	"github.com/davidbz/sgrep/internal/provider/static"
)

// DefaultModel is used when neither a provider nor a model is configured.
const DefaultModel = "gpt-3.5-turbo"

// Color modes for highlighting.
const (
	ColorNever  = "never"
	ColorAuto   = "auto"
	ColorAlways = "always"
)

// Config represents the full sgrep configuration.
type Config struct {
	Translator  TranslatorConfig
	Pattern     pattern.Config
	Output      OutputConfig
	Log         observability.Config
	Credentials credential.Config
	OpenAI      openai.Config
	Anthropic   anthropic.Config
	Ollama      ollama.Config
	Static      static.Config
}

// TranslatorConfig selects the provider and model used for translation. An
// empty Model with a Provider set means that provider's default model.
type TranslatorConfig struct {
	Provider    string  `env:"SGREP_PROVIDER"`
	Model       string  `env:"SGREP_MODEL"`
	Temperature float64 `env:"SGREP_TEMPERATURE" envDefault:"0"`
}

// EffectiveModel returns the configured model, or DefaultModel when no
// provider was chosen either.
func (c *TranslatorConfig) EffectiveModel() string {
	if c.Model == "" && c.Provider == "" {
		return DefaultModel
	}
	return c.Model
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Color       string `env:"SGREP_COLOR"        envDefault:"never"`
	LineNumbers bool   `env:"SGREP_LINE_NUMBERS" envDefault:"false"`
}

// DepConfig is used for dependency injection with dig.
type DepConfig struct {
	dig.Out
	Translator  *TranslatorConfig
	Pattern     *pattern.Config
	Output      *OutputConfig
	Log         *observability.Config
	Credentials *credential.Config
	OpenAI      *openai.Config
	Anthropic   *anthropic.Config
	Ollama      *ollama.Config
	Static      *static.Config
}

// Load loads environment files and parses configuration.
func Load() (*Config, error) {
	for _, file := range []string{".env"} {
		_ = godotenv.Load(file)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks values env parsing cannot.
func (c *Config) Validate() error {
	switch c.Output.Color {
	case ColorNever, ColorAuto, ColorAlways:
	default:
		return fmt.Errorf("invalid color mode %q: must be never, auto or always", c.Output.Color)
	}

	if c.Translator.Temperature < 0 || c.Translator.Temperature > 2 {
		return fmt.Errorf("invalid temperature %v: must be between 0 and 2", c.Translator.Temperature)
	}

	if c.Pattern.MatchTimeout < 0 {
		return fmt.Errorf("invalid match timeout %v: cannot be negative", c.Pattern.MatchTimeout)
	}

	return nil
}

// ParseDependenciesConfig returns pointers to sub-configs for dependency injection.
func ParseDependenciesConfig(cfg *Config) DepConfig {
	return DepConfig{
		Translator:  &cfg.Translator,
		Pattern:     &cfg.Pattern,
		Output:      &cfg.Output,
		Log:         &cfg.Log,
		Credentials: &cfg.Credentials,
		OpenAI:      &cfg.OpenAI,
		Anthropic:   &cfg.Anthropic,
		Ollama:      &cfg.Ollama,
		Static:      &cfg.Static,
	}
}
