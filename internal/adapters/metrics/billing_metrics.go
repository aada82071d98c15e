package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// BillingMetricsCollector handles invoice metrics
type BillingMetricsCollector struct {
	invoicesIssued  *prometheus.CounterVec
	invoicedCredits *prometheus.CounterVec
	invoicesPaid    *prometheus.CounterVec
	paidCredits     *prometheus.CounterVec
	overdueInvoices prometheus.Gauge
}

// NewBillingMetricsCollector creates a new billing metrics collector
func NewBillingMetricsCollector() *BillingMetricsCollector {
	return &BillingMetricsCollector{
		invoicesIssued: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "invoices_issued_total",
				Help:      "Invoices issued by type",
			},
			[]string{"type"},
		),
		invoicedCredits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "invoiced_credits_total",
				Help:      "Credits billed by invoice type",
			},
			[]string{"type"},
		),
		invoicesPaid: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "invoices_paid_total",
				Help:      "Invoices paid by type",
			},
			[]string{"type"},
		),
		paidCredits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "paid_credits_total",
				Help:      "Credits collected by invoice type",
			},
			[]string{"type"},
		),
		overdueInvoices: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "overdue_invoices",
				Help:      "Unpaid invoices past their due date at the last check",
			},
		),
	}
}

// Register registers all billing metrics with the Prometheus registry
func (c *BillingMetricsCollector) Register() error {
	if Registry == nil {
		return nil // Metrics not enabled
	}

	metrics := []prometheus.Collector{
		c.invoicesIssued,
		c.invoicedCredits,
		c.invoicesPaid,
		c.paidCredits,
		c.overdueInvoices,
	}

	for _, metric := range metrics {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}

	return nil
}

func (c *BillingMetricsCollector) RecordInvoicesIssued(kind string, count int, amount float64) {
	c.invoicesIssued.WithLabelValues(kind).Add(float64(count))
	c.invoicedCredits.WithLabelValues(kind).Add(amount)
}

func (c *BillingMetricsCollector) RecordInvoicePaid(kind string, amount float64) {
	c.invoicesPaid.WithLabelValues(kind).Inc()
	c.paidCredits.WithLabelValues(kind).Add(amount)
}

func (c *BillingMetricsCollector) SetOverdueInvoices(count int) {
	c.overdueInvoices.Set(float64(count))
}
