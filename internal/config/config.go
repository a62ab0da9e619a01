package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

// Config contains all runtime settings for the concierge service.
type Config struct {
	BindAddr         string        `env:"APP_BIND_ADDR" envDefault:":8080"`
	ShutdownTimeout  time.Duration `env:"APP_SHUTDOWN_TIMEOUT" envDefault:"15s"`
	MetricsNamespace string        `env:"APP_METRICS_NAMESPACE" envDefault:"concierge"`
	AllowAnyOrigin   bool          `env:"APP_ALLOW_ANY_ORIGIN" envDefault:"false"`
	LogFilePath      string        `env:"LOG_FILE_PATH"`

	DatabaseURL string `env:"DATABASE_URL"`

	// Local model provider (Ollama-compatible).
	LocalProviderEnabled bool   `env:"USE_OLLAMA" envDefault:"false"`
	LocalProviderURL     string `env:"OLLAMA_BASE_URL" envDefault:"http://localhost:11434"`
	LocalProviderModel   string `env:"OLLAMA_MODEL" envDefault:"llama3.2"`

	// Hosted model provider (OpenAI-compatible). Attempted only when the key is set.
	HostedAPIKey  string `env:"HOSTED_API_KEY"`
	HostedBaseURL string `env:"HOSTED_BASE_URL" envDefault:"https://api.groq.com/openai/v1"`
	HostedModel   string `env:"HOSTED_MODEL" envDefault:"llama-3.1-8b-instant"`

	ProviderTimeout time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"30s"`

	// Identity used by the system prompt and the rule-based tier.
	CompanyName string `env:"COMPANY_NAME" envDefault:"Kenmark ITan Solutions"`
	WebsiteURL  string `env:"COMPANY_WEBSITE" envDefault:"kenmarkitan.com"`

	SessionCookieMaxAge time.Duration `env:"SESSION_COOKIE_MAX_AGE" envDefault:"168h"`
}

// Load reads environment variables, applies defaults, and validates.
func Load() (Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if cfg.ProviderTimeout <= 0 {
		return Config{}, fmt.Errorf("PROVIDER_TIMEOUT must be positive")
	}
	if cfg.ShutdownTimeout <= 0 {
		return Config{}, fmt.Errorf("APP_SHUTDOWN_TIMEOUT must be positive")
	}
	if cfg.SessionCookieMaxAge < time.Minute {
		return Config{}, fmt.Errorf("SESSION_COOKIE_MAX_AGE must be at least 1m")
	}
	if cfg.LocalProviderEnabled && strings.TrimSpace(cfg.LocalProviderURL) == "" {
		return Config{}, fmt.Errorf("OLLAMA_BASE_URL is required when USE_OLLAMA is set")
	}
	if strings.TrimSpace(cfg.CompanyName) == "" {
		return Config{}, fmt.Errorf("COMPANY_NAME must not be empty")
	}

	return cfg, nil
}
