package inference

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds backend connection settings loaded from the environment.
type Config struct {
	BaseURL string        `env:"GAMEPILOT_API_URL" envDefault:"https://api.openai.com/v1"`
	APIKey  string        `env:"GAMEPILOT_API_KEY"`
	Model   string        `env:"GAMEPILOT_MODEL" envDefault:"gpt-4o-mini"`
	Timeout time.Duration `env:"GAMEPILOT_API_TIMEOUT" envDefault:"120s"`
}

// ConfigFromEnv parses backend settings from environment variables.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, &ConfigurationError{BackendError: BackendError{
			Message: "failed to parse backend configuration from environment", Cause: err,
		}}
	}
	return cfg, nil
}

// NewClientFromConfig builds a Client with a single OpenAI-compatible
// provider wired from cfg.
func NewClientFromConfig(cfg Config) (*Client, error) {
	adapter, err := NewOpenAIAdapter("openai", cfg.BaseURL, cfg.APIKey, WithTimeout(cfg.Timeout))
	if err != nil {
		return nil, err
	}
	return NewClient(WithProvider("openai", adapter)), nil
}
