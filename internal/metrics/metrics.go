// Package metrics berisi collector Prometheus toko. Semua method aman dipanggil
// pada *Metrics nil supaya test tidak perlu registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	ordersPlaced    prometheus.Counter
	ordersRejected  *prometheus.CounterVec
	statusChanges   *prometheus.CounterVec
	reconciliations prometheus.Counter
	lowStockAlerts  prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ordersPlaced: f.NewCounter(prometheus.CounterOpts{
			Namespace: "nava", Name: "orders_placed_total",
			Help: "Orders recorded by checkout.",
		}),
		ordersRejected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nava", Name: "orders_rejected_total",
			Help: "Checkout attempts rejected, by reason.",
		}, []string{"reason"}),
		statusChanges: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nava", Name: "order_status_changes_total",
			Help: "Admin order status updates, by new status.",
		}, []string{"status"}),
		reconciliations: f.NewCounter(prometheus.CounterOpts{
			Namespace: "nava", Name: "stock_reconciliations_total",
			Help: "Product stock recomputations from variant stock.",
		}),
		lowStockAlerts: f.NewCounter(prometheus.CounterOpts{
			Namespace: "nava", Name: "low_stock_alerts_total",
			Help: "Low stock alerts raised by stockwatch.",
		}),
	}
}

func (m *Metrics) OrderPlaced() {
	if m != nil {
		m.ordersPlaced.Inc()
	}
}

func (m *Metrics) OrderRejected(reason string) {
	if m != nil {
		m.ordersRejected.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) StatusChanged(status string) {
	if m != nil {
		m.statusChanges.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) Reconciled() {
	if m != nil {
		m.reconciliations.Inc()
	}
}

func (m *Metrics) LowStockAlert() {
	if m != nil {
		m.lowStockAlerts.Inc()
	}
}
