package brain

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/kenmarkitan/concierge/internal/observability"
	"github.com/kenmarkitan/concierge/internal/reliability"
)

// Chain tries providers in order and returns the first success. Providers
// are tried, not raced: the first working answer matters more than latency,
// and racing would duplicate cost.
type Chain struct {
	providers []Provider
	timeout   time.Duration
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// NewChain assembles the provider tiers from configuration. The rule-based
// tier is always last, so the chain as a whole cannot fail.
func NewChain(cfg Config, metrics *observability.Metrics, logger *slog.Logger) *Chain {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	var providers []Provider
	if cfg.LocalEnabled {
		providers = append(providers, NewOllamaProvider(cfg.LocalEndpoint, cfg.LocalModel, timeout))
	}
	if cfg.HostedAPIKey != "" {
		providers = append(providers, NewHostedProvider(cfg.HostedAPIKey, cfg.HostedBaseURL, cfg.HostedModel))
	}
	providers = append(providers, NewRuleBasedProvider(cfg.CompanyName, cfg.WebsiteURL))

	return &Chain{
		providers: providers,
		timeout:   timeout,
		metrics:   metrics,
		logger:    logger,
	}
}

// NewChainWithProviders builds a chain over an explicit provider list.
func NewChainWithProviders(timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger, providers ...Provider) *Chain {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Chain{providers: providers, timeout: timeout, metrics: metrics, logger: logger}
}

var errAllProvidersFailed = errors.New("all providers failed")

// Generate returns the first provider success. Each attempt gets its own
// timeout; a failure falls through immediately, no retries within a tier.
func (c *Chain) Generate(ctx context.Context, req Request) (string, string, error) {
	var lastErr error

	for _, p := range c.providers {
		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		start := time.Now()
		text, err := p.Generate(attemptCtx, req)
		elapsed := time.Since(start)
		cancel()

		if err != nil {
			outcome := reliability.Classify(err)
			if c.metrics != nil {
				c.metrics.ProviderAttempts.WithLabelValues(p.Name(), outcome).Inc()
				c.metrics.ProviderLatency.WithLabelValues(p.Name()).Observe(elapsed.Seconds())
			}
			if c.logger != nil {
				c.logger.Warn("provider attempt failed",
					"provider", p.Name(),
					"outcome", outcome,
					"elapsed_ms", elapsed.Milliseconds(),
					"error", err,
				)
			}
			lastErr = err
			continue
		}

		if c.metrics != nil {
			c.metrics.ProviderAttempts.WithLabelValues(p.Name(), "ok").Inc()
			c.metrics.ProviderLatency.WithLabelValues(p.Name()).Observe(elapsed.Seconds())
		}
		return text, p.Name(), nil
	}

	if lastErr == nil {
		lastErr = errAllProvidersFailed
	}
	return "", "", lastErr
}
