// Package metrics exposes routing and dispatch metrics in Prometheus
// exposition format.
package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"janus-llm/janus/pkg/config"
	"janus-llm/janus/pkg/providers"
)

// Collector owns the metric vectors and the registry they are registered on.
//
// Metrics:
//   - <ns>_routing_decisions_total: decisions by scenario tag
//   - <ns>_dispatch_requests_total: dispatch attempts by provider and model
//   - <ns>_dispatch_errors_total: dispatch failures by provider and error type
//   - <ns>_dispatch_latency_seconds: end-to-end execution latency
//   - <ns>_fallback_attempts: targets tried per request
//   - <ns>_provider_health: provider health (0=healthy, 1=degraded, 2=down)
type Collector struct {
	registry *prometheus.Registry

	decisions        *prometheus.CounterVec
	dispatchRequests *prometheus.CounterVec
	dispatchErrors   *prometheus.CounterVec
	dispatchLatency  *prometheus.HistogramVec
	fallbackAttempts prometheus.Histogram
	providerHealth   *prometheus.GaugeVec
}

// NewCollector creates and registers the metric vectors. registry may be nil
// to create a private one.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{
		registry: registry,

		decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "routing_decisions_total",
				Help:      "Routing decisions by scenario tag",
			},
			[]string{"tag"},
		),

		dispatchRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "dispatch_requests_total",
				Help:      "Dispatch attempts by provider and model",
			},
			[]string{"provider", "model"},
		),

		dispatchErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "dispatch_errors_total",
				Help:      "Dispatch failures by provider and error type",
			},
			[]string{"provider", "error_type"},
		),

		dispatchLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "dispatch_latency_seconds",
				Help:      "End-to-end execution latency across all fallback attempts",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"provider", "model"},
		),

		fallbackAttempts: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "fallback_attempts",
				Help:      "Number of targets tried per request",
				Buckets:   []float64{1, 2, 3, 4, 5},
			},
		),

		providerHealth: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Name:      "provider_health",
				Help:      "Provider health state (0=healthy, 1=degraded, 2=down)",
			},
			[]string{"provider"},
		),
	}

	registry.MustRegister(
		c.decisions,
		c.dispatchRequests,
		c.dispatchErrors,
		c.dispatchLatency,
		c.fallbackAttempts,
		c.providerHealth,
	)

	return c
}

// RecordDecision counts a routing decision by its scenario tag.
func (c *Collector) RecordDecision(tag string) {
	c.decisions.WithLabelValues(tag).Inc()
}

// RecordDispatch records a served request: the target that answered, the
// total latency, and how many targets were tried.
func (c *Collector) RecordDispatch(provider, model string, latencySeconds float64, attempts int) {
	c.dispatchRequests.WithLabelValues(provider, model).Inc()
	c.dispatchLatency.WithLabelValues(provider, model).Observe(latencySeconds)
	c.fallbackAttempts.Observe(float64(attempts))
}

// RecordDispatchError counts a dispatch failure by provider and error type.
func (c *Collector) RecordDispatchError(provider string, err error) {
	c.dispatchErrors.WithLabelValues(provider, ErrorType(err)).Inc()
}

// SetProviderHealth publishes a provider's health state.
func (c *Collector) SetProviderHealth(provider string, state providers.HealthState) {
	c.providerHealth.WithLabelValues(provider).Set(float64(state))
}

// Handler returns the HTTP handler for the metrics endpoint.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ErrorType maps a dispatch error to its metric label.
func ErrorType(err error) string {
	var (
		timeout   *providers.TimeoutError
		conn      *providers.ConnectionError
		server    *providers.ServerError
		rateLimit *providers.RateLimitError
		client    *providers.ClientError
		parse     *providers.ParseError
	)
	switch {
	case errors.As(err, &timeout):
		return "timeout"
	case errors.As(err, &conn):
		return "connection"
	case errors.As(err, &server):
		return "server_error"
	case errors.As(err, &rateLimit):
		return "rate_limit"
	case errors.As(err, &client):
		return "client_error"
	case errors.As(err, &parse):
		return "parse_error"
	default:
		return "other"
	}
}
