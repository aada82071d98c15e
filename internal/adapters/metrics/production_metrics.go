package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ProductionMetricsCollector handles factory, storage and marketplace metrics
type ProductionMetricsCollector struct {
	productionStarted   *prometheus.CounterVec
	productionRejected  *prometheus.CounterVec
	productionCompleted *prometheus.CounterVec
	storageFull         *prometheus.CounterVec

	factoryTransactions *prometheus.CounterVec
	factoryCredits      *prometheus.CounterVec
	ownedFactories      prometheus.Gauge

	listingEvents *prometheus.CounterVec
}

// NewProductionMetricsCollector creates a new production metrics collector
func NewProductionMetricsCollector() *ProductionMetricsCollector {
	return &ProductionMetricsCollector{
		productionStarted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "production_started_total",
				Help:      "Production tasks started by factory type",
			},
			[]string{"factory_type"},
		),
		productionRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "production_rejected_total",
				Help:      "Production starts refused by factory type and reason",
			},
			[]string{"factory_type", "reason"},
		),
		productionCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "production_completed_total",
				Help:      "Production tasks harvested into output storage",
			},
			[]string{"factory_type", "recipe"},
		),
		storageFull: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "storage_full_total",
				Help:      "Storage adds rejected for lack of capacity",
			},
			[]string{"compartment"},
		),
		factoryTransactions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "factory_transactions_total",
				Help:      "Factory purchases, sales and upgrades",
			},
			[]string{"kind"},
		),
		factoryCredits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "factory_credits_total",
				Help:      "Credits moved by factory purchases, sales and upgrades",
			},
			[]string{"kind"},
		),
		ownedFactories: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "owned_factories",
				Help:      "Factories currently owned by a player",
			},
		),
		listingEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "marketplace_listing_events_total",
				Help:      "Marketplace listings by lifecycle event",
			},
			[]string{"event"},
		),
	}
}

// Register registers all production metrics with the Prometheus registry
func (c *ProductionMetricsCollector) Register() error {
	if Registry == nil {
		return nil // Metrics not enabled
	}

	metrics := []prometheus.Collector{
		c.productionStarted,
		c.productionRejected,
		c.productionCompleted,
		c.storageFull,
		c.factoryTransactions,
		c.factoryCredits,
		c.ownedFactories,
		c.listingEvents,
	}

	for _, metric := range metrics {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}

	return nil
}

func (c *ProductionMetricsCollector) RecordProductionStarted(factoryType string) {
	c.productionStarted.WithLabelValues(factoryType).Inc()
}

func (c *ProductionMetricsCollector) RecordProductionRejected(factoryType string, reason string) {
	c.productionRejected.WithLabelValues(factoryType, reason).Inc()
}

func (c *ProductionMetricsCollector) RecordProductionCompleted(factoryType string, recipeID string) {
	c.productionCompleted.WithLabelValues(factoryType, recipeID).Inc()
}

func (c *ProductionMetricsCollector) RecordStorageFull(compartment string) {
	c.storageFull.WithLabelValues(compartment).Inc()
}

func (c *ProductionMetricsCollector) RecordFactoryTransaction(kind string, amount float64) {
	c.factoryTransactions.WithLabelValues(kind).Inc()
	c.factoryCredits.WithLabelValues(kind).Add(amount)
}

func (c *ProductionMetricsCollector) SetOwnedFactories(count int) {
	c.ownedFactories.Set(float64(count))
}

func (c *ProductionMetricsCollector) RecordListingEvent(event string) {
	c.listingEvents.WithLabelValues(event).Inc()
}
