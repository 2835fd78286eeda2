package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Locale routing metrics
	RoutingDecisions *prometheus.CounterVec
	LocaleResolved   *prometheus.CounterVec

	// Rate limiter metrics
	RateLimitConsumes *prometheus.CounterVec
	RateLimitRetries  prometheus.Counter

	// Auth metrics
	CodesIssued     prometheus.Counter
	CodesVerified   *prometheus.CounterVec
	ActiveSessions  prometheus.Gauge
	EndpointLatency *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		RoutingDecisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "velofit_routing_decisions_total",
			Help: "Total locale routing decisions, labeled by outcome",
		}, []string{"decision"}),
		LocaleResolved: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "velofit_locale_resolved_total",
			Help: "Total locale resolutions, labeled by locale and source",
		}, []string{"locale", "source"}),
		RateLimitConsumes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "velofit_rate_limit_consumes_total",
			Help: "Total rate limiter consume attempts, labeled by outcome",
		}, []string{"outcome"}),
		RateLimitRetries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "velofit_rate_limit_cas_retries_total",
			Help: "Total optimistic-concurrency retries in the rate limiter",
		}),
		CodesIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "velofit_verification_codes_issued_total",
			Help: "Total verification codes issued",
		}),
		CodesVerified: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "velofit_verification_codes_verified_total",
			Help: "Total verification attempts, labeled by result",
		}, []string{"result"}),
		ActiveSessions: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "velofit_active_sessions",
			Help: "Current number of active sessions",
		}),
		EndpointLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "velofit_endpoint_latency_seconds",
			Help:    "Latency of endpoints in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
}

// RecordDecision increments the routing decision counter for the given outcome.
func (m *Metrics) RecordDecision(decision string) {
	m.RoutingDecisions.WithLabelValues(decision).Inc()
}

// RecordConsume increments the rate limiter consume counter for the given outcome.
func (m *Metrics) RecordConsume(outcome string) {
	m.RateLimitConsumes.WithLabelValues(outcome).Inc()
}
