package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the gateway's Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "routing_console",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "routing_console",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "routing_console",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "route"},
	)

	reconcilePasses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "routing_console",
			Subsystem: "reconcile",
			Name:      "passes_total",
			Help:      "Reconcile passes by parent type, association kind and terminal state.",
		},
		[]string{"parent_type", "kind", "state"},
	)

	associationCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "routing_console",
			Subsystem: "reconcile",
			Name:      "association_calls_total",
			Help:      "removeOne/addMany calls issued to the backend.",
		},
		[]string{"op", "success"},
	)

	backendRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "routing_console",
			Subsystem: "backend",
			Name:      "requests_total",
			Help:      "Requests sent to the platform backend.",
		},
		[]string{"method", "status"},
	)

	backendDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "routing_console",
			Subsystem: "backend",
			Name:      "request_duration_seconds",
			Help:      "Duration of requests sent to the platform backend.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		},
		[]string{"method"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		reconcilePasses,
		associationCalls,
		backendRequests,
		backendDuration,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// HTTPRequestStarted marks a request in flight and returns the func that
// records its completion.
func HTTPRequestStarted() func(method, route string, status int) {
	start := time.Now()
	httpInFlight.Inc()
	return func(method, route string, status int) {
		httpInFlight.Dec()
		if route == "" {
			route = "unmatched"
		}
		method = strings.ToUpper(method)
		httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// RecordReconcilePass counts a finished reconcile pass.
func RecordReconcilePass(parentType, kind, state string) {
	reconcilePasses.WithLabelValues(parentType, kind, state).Inc()
}

// RecordAssociationCall counts one removeOne/addMany call.
func RecordAssociationCall(op string, success bool) {
	associationCalls.WithLabelValues(op, strconv.FormatBool(success)).Inc()
}

// RecordBackendRequest records one backend round trip. status is 0 when no
// response was received.
func RecordBackendRequest(method string, status int, duration time.Duration) {
	if duration <= 0 {
		duration = time.Millisecond
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	backendRequests.WithLabelValues(method, label).Inc()
	backendDuration.WithLabelValues(method).Observe(duration.Seconds())
}
