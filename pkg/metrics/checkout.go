package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records checkout state machine activity.
type CheckoutMetrics struct {
	transitions    *prometheus.CounterVec
	submissions    *prometheus.CounterVec
	submitDuration *prometheus.HistogramVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_transitions_total",
		Help: "Checkout state transitions by origin and destination step.",
	}, []string{"from", "to"})
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_submissions_total",
		Help: "Order submissions by outcome.",
	}, []string{"outcome"})
	submitDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "order_submit_duration_seconds",
		Help:    "Duration of order submissions against the backend in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	reg.MustRegister(transitions, submissions, submitDuration)
	return &CheckoutMetrics{
		transitions:    transitions,
		submissions:    submissions,
		submitDuration: submitDuration,
	}
}

// ObserveTransition counts a step change.
func (c *CheckoutMetrics) ObserveTransition(from, to string) {
	if c == nil || c.transitions == nil {
		return
	}
	c.transitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}

// ObserveSubmit records the outcome and latency of one order submission.
func (c *CheckoutMetrics) ObserveSubmit(outcome string, duration time.Duration) {
	if c == nil || c.submissions == nil {
		return
	}
	outcome = normalizeLabel(outcome)
	c.submissions.WithLabelValues(outcome).Inc()
	c.submitDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
