package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// BackendMetrics records calls made to the restaurant REST API.
type BackendMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewBackendMetrics(reg prometheus.Registerer) *BackendMetrics {
	if reg == nil {
		return &BackendMetrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "backend_requests_total",
		Help: "Backend requests by method and status class.",
	}, []string{"method", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "backend_request_duration_seconds",
		Help:    "Backend request latency in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})
	reg.MustRegister(requests, duration)
	return &BackendMetrics{requests: requests, duration: duration}
}

// ObserveRequest records one round-trip. A zero status means the request never
// got a response.
func (b *BackendMetrics) ObserveRequest(method string, status int, duration time.Duration) {
	if b == nil || b.requests == nil {
		return
	}
	method = normalizeLabel(method)
	b.requests.WithLabelValues(method, statusClass(status)).Inc()
	b.duration.WithLabelValues(method).Observe(duration.Seconds())
}

func statusClass(status int) string {
	if status <= 0 {
		return "network_error"
	}
	return strconv.Itoa(status/100) + "xx"
}
