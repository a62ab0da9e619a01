package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != ":8080" {
		t.Fatalf("BindAddr = %q, want :8080", cfg.BindAddr)
	}
	if cfg.ProviderTimeout != 30*time.Second {
		t.Fatalf("ProviderTimeout = %v, want 30s", cfg.ProviderTimeout)
	}
	if cfg.LocalProviderEnabled {
		t.Fatalf("LocalProviderEnabled should default to false")
	}
	if cfg.HostedAPIKey != "" {
		t.Fatalf("HostedAPIKey should default to empty")
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"zero provider timeout", "PROVIDER_TIMEOUT", "0s"},
		{"bad duration", "APP_SHUTDOWN_TIMEOUT", "soon"},
		{"tiny cookie age", "SESSION_COOKIE_MAX_AGE", "5s"},
		{"blank company", "COMPANY_NAME", "   "},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Fatalf("Load() expected error for %s=%s", tc.key, tc.value)
			}
		})
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("USE_OLLAMA", "true")
	t.Setenv("OLLAMA_MODEL", "llama3:latest")
	t.Setenv("HOSTED_API_KEY", "key-123")
	t.Setenv("PROVIDER_TIMEOUT", "10s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.LocalProviderEnabled || cfg.LocalProviderModel != "llama3:latest" {
		t.Fatalf("local provider config not applied: %+v", cfg)
	}
	if cfg.HostedAPIKey != "key-123" {
		t.Fatalf("HostedAPIKey = %q, want key-123", cfg.HostedAPIKey)
	}
	if cfg.ProviderTimeout != 10*time.Second {
		t.Fatalf("ProviderTimeout = %v, want 10s", cfg.ProviderTimeout)
	}
}
