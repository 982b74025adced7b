// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the study generator.
package observability

import "github.com/prometheus/client_golang/prometheus"

// LLMBuckets covers generation latencies from 100ms to 2 minutes.
var LLMBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}

var (
	// RequestsTotal counts HTTP requests by method and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studygen_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "status"},
	)

	// RequestDuration records HTTP request duration in seconds.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "studygen_request_duration_seconds",
			Help:    "Request duration",
			Buckets: LLMBuckets,
		},
		[]string{"method"},
	)

	// GenerationTotal counts calls to the generation provider by outcome.
	// status is "ok" or the GenerationError kind.
	GenerationTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studygen_generation_total",
			Help: "Generation provider calls",
		},
		[]string{"provider", "status"},
	)

	GenerationLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "studygen_generation_latency_seconds",
			Help:    "Generation provider latency",
			Buckets: LLMBuckets,
		},
		[]string{"provider"},
	)

	// DeliveriesTotal counts mail hand-offs by outcome ("ok" or "error").
	DeliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studygen_deliveries_total",
			Help: "Mail deliveries",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		GenerationTotal,
		GenerationLatency,
		DeliveriesTotal,
	)
}
