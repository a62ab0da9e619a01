package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service.
type Metrics struct {
	Turns            *prometheus.CounterVec
	ProviderAttempts *prometheus.CounterVec
	ProviderLatency  *prometheus.HistogramVec
	Retrievals       *prometheus.CounterVec
	StoreErrors      *prometheus.CounterVec
	ActiveWebsockets prometheus.Gauge
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		Turns: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Conversation turns by outcome.",
		}, []string{"outcome"}),
		ProviderAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_attempts_total",
			Help:      "Generation provider attempts by provider and outcome.",
		}, []string{"provider", "outcome"}),
		ProviderLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_latency_seconds",
			Help:      "Generation provider attempt latency in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		}, []string{"provider"}),
		Retrievals: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retrievals_total",
			Help:      "Knowledge retrievals by outcome.",
		}, []string{"outcome"}),
		StoreErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_errors_total",
			Help:      "Best-effort store failures by operation.",
		}, []string{"op"}),
		ActiveWebsockets: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_websockets",
			Help:      "Number of connected chat websockets.",
		}),
	}
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
