package metrics

import (
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestWorkflowMetricsExportsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewWorkflowMetrics(reg)
	metrics.IncOrderCreated()
	metrics.IncOrderCancelled()
	metrics.IncPaymentConfirmed()
	metrics.IncAmountMismatch()
	metrics.IncRefundTransition("approved")
	metrics.IncStockRejection()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	for _, name := range []string{
		"orders_created_total",
		"orders_cancelled_total",
		"payments_confirmed_total",
		"payment_amount_mismatches_total",
		"stock_reservation_rejections_total",
	} {
		if got, err := fetchCounterValue(mfs, name, "", ""); err != nil {
			t.Fatalf("fetch %s: %v", name, err)
		} else if got != 1 {
			t.Fatalf("expected %s=1, got %f", name, got)
		}
	}

	if got, err := fetchCounterValue(mfs, "refund_transitions_total", "status", "approved"); err != nil {
		t.Fatalf("fetch refund transitions: %v", err)
	} else if got != 1 {
		t.Fatalf("expected refund_transitions_total=1, got %f", got)
	}
}

func TestWorkflowMetricsNilSafe(t *testing.T) {
	var metrics *WorkflowMetrics
	metrics.IncOrderCreated()
	metrics.IncRefundTransition("requested")

	empty := NewWorkflowMetrics(nil)
	empty.IncPaymentConfirmed()
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if label == "" || matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
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
