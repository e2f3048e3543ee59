package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// WorkflowMetrics records outcomes for the order, payment, and refund flows.
type WorkflowMetrics struct {
	ordersCreated     prometheus.Counter
	ordersCancelled   prometheus.Counter
	paymentsConfirmed prometheus.Counter
	amountMismatches  prometheus.Counter
	refundTransitions *prometheus.CounterVec
	stockRejections   prometheus.Counter
}

// NewWorkflowMetrics registers the workflow metrics on the provided registerer.
func NewWorkflowMetrics(reg prometheus.Registerer) *WorkflowMetrics {
	if reg == nil {
		return &WorkflowMetrics{}
	}
	ordersCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders successfully created.",
	})
	ordersCancelled := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_cancelled_total",
		Help: "Orders cancelled by buyers.",
	})
	paymentsConfirmed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "payments_confirmed_total",
		Help: "Gateway payments confirmed and reconciled.",
	})
	amountMismatches := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "payment_amount_mismatches_total",
		Help: "Confirmed payments whose amount did not match the computed order total.",
	})
	refundTransitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "refund_transitions_total",
		Help: "Refund state transitions by resulting status.",
	}, []string{"status"})
	stockRejections := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stock_reservation_rejections_total",
		Help: "Order attempts rejected for insufficient stock.",
	})
	reg.MustRegister(ordersCreated, ordersCancelled, paymentsConfirmed, amountMismatches, refundTransitions, stockRejections)
	return &WorkflowMetrics{
		ordersCreated:     ordersCreated,
		ordersCancelled:   ordersCancelled,
		paymentsConfirmed: paymentsConfirmed,
		amountMismatches:  amountMismatches,
		refundTransitions: refundTransitions,
		stockRejections:   stockRejections,
	}
}

// IncOrderCreated increments the created-orders counter.
func (m *WorkflowMetrics) IncOrderCreated() {
	if m == nil || m.ordersCreated == nil {
		return
	}
	m.ordersCreated.Inc()
}

// IncOrderCancelled increments the cancelled-orders counter.
func (m *WorkflowMetrics) IncOrderCancelled() {
	if m == nil || m.ordersCancelled == nil {
		return
	}
	m.ordersCancelled.Inc()
}

// IncPaymentConfirmed increments the confirmed-payments counter.
func (m *WorkflowMetrics) IncPaymentConfirmed() {
	if m == nil || m.paymentsConfirmed == nil {
		return
	}
	m.paymentsConfirmed.Inc()
}

// IncAmountMismatch increments the mismatch counter.
func (m *WorkflowMetrics) IncAmountMismatch() {
	if m == nil || m.amountMismatches == nil {
		return
	}
	m.amountMismatches.Inc()
}

// IncRefundTransition increments the transition counter for the given status.
func (m *WorkflowMetrics) IncRefundTransition(status string) {
	if m == nil || m.refundTransitions == nil {
		return
	}
	if status == "" {
		status = "unknown"
	}
	m.refundTransitions.WithLabelValues(status).Inc()
}

// IncStockRejection increments the insufficient-stock counter.
func (m *WorkflowMetrics) IncStockRejection() {
	if m == nil || m.stockRejections == nil {
		return
	}
	m.stockRejections.Inc()
}
