// Package config reads the pipeline's environment configuration: the
// database location and the provider credentials.
package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Config holds everything read from the environment. The OpenAI credential
// serves the draft and verification passes and is mandatory for any mode
// that translates; the Groq credential serves only the improvement pass and
// is optional.
type Config struct {
	DatabaseURL string `env:"DATABASE_URL" envDefault:"postgres://localhost:5432/biocycle?sslmode=disable"`
	OpenAIKey   string `env:"OPENAI_API_KEY"`
	GroqKey     string `env:"GROQ_API_KEY"`
}

// Load parses the environment, preferring an existing .env file the way the
// storefront's own tooling does. A missing .env is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse environment configuration")
	}

	return cfg, nil
}

// RequireOpenAI enforces the mandatory credential for translating modes.
func (c *Config) RequireOpenAI() error {
	if c.OpenAIKey == "" {
		return errors.New("OPENAI_API_KEY must be set for any mode that performs translation")
	}
	return nil
}

// HasGroq reports whether the optional improvement-pass credential is
// present.
func (c *Config) HasGroq() bool {
	return c.GroqKey != ""
}
