package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// APIClientMetrics records outbound calls made to the pressing backend.
type APIClientMetrics struct {
	requests *prometheus.CounterVec
	retries  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewAPIClientMetrics registers the backend client metrics on the provided registerer.
func NewAPIClientMetrics(reg prometheus.Registerer) *APIClientMetrics {
	if reg == nil {
		return &APIClientMetrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pressing_api_requests_total",
		Help: "Backend requests by method and final status.",
	}, []string{"method", "status"})
	retries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pressing_api_retries_total",
		Help: "Backend request attempts that were retried.",
	}, []string{"method"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pressing_api_request_duration_seconds",
		Help:    "Duration of backend requests including retries.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})
	reg.MustRegister(requests, retries, duration)
	return &APIClientMetrics{
		requests: requests,
		retries:  retries,
		duration: duration,
	}
}

// ObserveRequest records the final outcome of a request. Status 0 means no response was received.
func (m *APIClientMetrics) ObserveRequest(method string, status int, duration time.Duration) {
	if m == nil || m.requests == nil {
		return
	}
	label := "transport_error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.requests.WithLabelValues(normalizeLabel(method), label).Inc()
	m.duration.WithLabelValues(normalizeLabel(method)).Observe(duration.Seconds())
}

// IncRetry counts one retried attempt.
func (m *APIClientMetrics) IncRetry(method string) {
	if m == nil || m.retries == nil {
		return
	}
	m.retries.WithLabelValues(normalizeLabel(method)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
