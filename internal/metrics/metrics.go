package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the service's Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "entitlement_api",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "entitlement_api",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "path"},
	)

	verifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "entitlement_api",
			Subsystem: "purchases",
			Name:      "verifications_total",
			Help:      "Purchase verifications by outcome.",
		},
		[]string{"kind", "outcome"},
	)

	gatewayCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "entitlement_api",
			Subsystem: "gateway",
			Name:      "calls_total",
			Help:      "Payment gateway calls by operation and result.",
		},
		[]string{"operation", "result"},
	)
)

// Verification outcomes.
const (
	OutcomeInvalid  = "invalid"
	OutcomeVerified = "verified"
	OutcomePremium  = "premium"
	OutcomeError    = "error"
)

func init() {
	Registry.MustRegister(httpRequests, httpDuration, verifications, gatewayCalls)
}

// Handler exposes the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records one handled HTTP request.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordVerification records the outcome of a purchase verification.
func RecordVerification(kind, outcome string) {
	verifications.WithLabelValues(kind, outcome).Inc()
}

// RecordGatewayCall records one gateway call.
func RecordGatewayCall(operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	gatewayCalls.WithLabelValues(operation, result).Inc()
}
