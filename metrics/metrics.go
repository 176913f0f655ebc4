// Package metrics provides Prometheus metrics for the Cogitto API.
//
// HTTP traffic:
//   - http_request_total: Counter with method, path, and status labels
//   - http_request_duration_seconds: Histogram with method and path labels
//   - http_request_in_flight: Gauge for concurrent requests
//
// Domain:
//   - cogitto_risk_assessments_total: answers by risk level and source
//   - cogitto_generation_requests_total / _duration_seconds: text generation outcomes
//   - cogitto_interaction_checks_total: interaction lookups by result
//   - cogitto_chat_sessions_active, cogitto_reference_medications: gauges
//
// All metrics are registered with the Prometheus default registry during
// package initialization.
package metrics

import (
	"strconv"
	"time"

	"github.com/cogitto/cogitto-api/entities"
	"github.com/prometheus/client_golang/prometheus"
)

// Generation outcomes
const (
	GenerationSuccess  = "success"
	GenerationError    = "error"
	GenerationTimeout  = "timeout"
	GenerationDisabled = "disabled"
)

var (
	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	RateLimiterBucketsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limiter_buckets_total",
			Help: "Total number of rate limiter buckets (IPs seen in last ~5 minutes)",
		},
	)

	RiskAssessmentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cogitto_risk_assessments_total",
			Help: "Answered queries by risk level and whether the fallback produced them",
		},
		[]string{"level", "fallback"},
	)

	GenerationRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cogitto_generation_requests_total",
			Help: "Text generation attempts by outcome",
		},
		[]string{"outcome"},
	)

	GenerationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cogitto_generation_duration_seconds",
			Help:    "Latency of text generation calls",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 20, 30, 60},
		},
	)

	InteractionChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cogitto_interaction_checks_total",
			Help: "Pairwise interaction checks by result",
		},
		[]string{"found"},
	)

	ChatSessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "cogitto_chat_sessions_active",
			Help: "Chat sessions currently held in memory",
		},
	)

	ReferenceMedications = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "cogitto_reference_medications",
			Help: "Medications in the loaded reference dataset",
		},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(RateLimiterBucketsTotal)
	prometheus.MustRegister(RiskAssessmentsTotal)
	prometheus.MustRegister(GenerationRequestsTotal)
	prometheus.MustRegister(GenerationDuration)
	prometheus.MustRegister(InteractionChecksTotal)
	prometheus.MustRegister(ChatSessionsActive)
	prometheus.MustRegister(ReferenceMedications)
}

// RecordRisk counts one classified answer.
func RecordRisk(level entities.RiskLevel, fallback bool) {
	RiskAssessmentsTotal.WithLabelValues(string(level), strconv.FormatBool(fallback)).Inc()
}

// RecordGeneration counts a generation attempt. Disabled attempts carry no latency.
func RecordGeneration(outcome string, elapsed time.Duration) {
	GenerationRequestsTotal.WithLabelValues(outcome).Inc()
	if outcome != GenerationDisabled {
		GenerationDuration.Observe(elapsed.Seconds())
	}
}

// RecordInteractionCheck counts one pairwise lookup.
func RecordInteractionCheck(found bool) {
	InteractionChecksTotal.WithLabelValues(strconv.FormatBool(found)).Inc()
}
