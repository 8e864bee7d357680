package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PollsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "ride_console", Name: "polls_total", Help: "Total list polls issued"},
		[]string{"resource"},
	)
	PollErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "ride_console", Name: "poll_errors_total", Help: "Total failed list polls"},
		[]string{"resource"},
	)
	MutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "ride_console", Name: "mutations_total", Help: "Total mutation requests by operation and outcome"},
		[]string{"op", "outcome"},
	)
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ride_console",
			Name:      "request_duration_seconds",
			Help:      "API request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	StubRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "ride_stub", Name: "http_requests_total", Help: "Total HTTP requests handled by the stub"},
		[]string{"method", "path", "status"},
	)
	StubRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ride_stub",
			Name:      "http_request_duration_seconds",
			Help:      "Stub HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
