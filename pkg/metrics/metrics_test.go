package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCheckoutMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewCheckoutMetrics(reg)
	metrics.ObserveTransition("reviewing", "submitting")
	metrics.ObserveTransition("reviewing", "submitting")
	metrics.ObserveSubmit("success", 250*time.Millisecond)
	metrics.ObserveSubmit("", 10*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "checkout_transitions_total", "to", "submitting"); err != nil {
		t.Fatalf("fetch transitions: %v", err)
	} else if got != 2 {
		t.Fatalf("expected transitions=2, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "order_submissions_total", "outcome", "success"); err != nil {
		t.Fatalf("fetch submissions: %v", err)
	} else if got != 1 {
		t.Fatalf("expected success=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "order_submissions_total", "outcome", "unknown"); err != nil {
		t.Fatalf("fetch blank outcome: %v", err)
	} else if got != 1 {
		t.Fatalf("expected blank outcome to be recorded as unknown, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "order_submit_duration_seconds", "outcome", "success"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestBackendMetricsGroupsStatusClasses(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewBackendMetrics(reg)
	metrics.ObserveRequest("POST", 201, time.Millisecond)
	metrics.ObserveRequest("POST", 204, time.Millisecond)
	metrics.ObserveRequest("GET", 0, time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "backend_requests_total", "status", "2xx"); err != nil {
		t.Fatalf("fetch 2xx: %v", err)
	} else if got != 2 {
		t.Fatalf("expected 2xx=2, got %f", got)
	}
	if got, err := fetchCounterValue(mfs, "backend_requests_total", "status", "network_error"); err != nil {
		t.Fatalf("fetch network errors: %v", err)
	} else if got != 1 {
		t.Fatalf("expected network_error=1, got %f", got)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var checkout *CheckoutMetrics
	checkout.ObserveTransition("a", "b")
	checkout.ObserveSubmit("success", time.Second)

	NewCheckoutMetrics(nil).ObserveSubmit("success", time.Second)
	NewBackendMetrics(nil).ObserveRequest("GET", 200, time.Second)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
