package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// Namespace for all metrics
	namespace = "factory_economy"
	// Subsystem for engine metrics
	subsystem = "engine"
)

var (
	// Registry is the global Prometheus registry for all metrics
	Registry *prometheus.Registry

	// globalProductionCollector is the singleton production metrics collector
	// Set by SetGlobalProductionCollector() when metrics are enabled
	globalProductionCollector ProductionMetricsRecorder

	// globalBillingCollector is the singleton billing metrics collector
	// Set by SetGlobalBillingCollector() when metrics are enabled
	globalBillingCollector BillingMetricsRecorder
)

// ProductionMetricsRecorder defines the interface for recording factory and production events
// This interface is used by application code to record metrics
type ProductionMetricsRecorder interface {
	RecordProductionStarted(factoryType string)
	RecordProductionRejected(factoryType string, reason string)
	RecordProductionCompleted(factoryType string, recipeID string)
	RecordStorageFull(compartment string)
	RecordFactoryTransaction(kind string, amount float64)
	SetOwnedFactories(count int)
	RecordListingEvent(event string)
}

// BillingMetricsRecorder defines the interface for recording invoice events
type BillingMetricsRecorder interface {
	RecordInvoicesIssued(kind string, count int, amount float64)
	RecordInvoicePaid(kind string, amount float64)
	SetOverdueInvoices(count int)
}

// InitRegistry initializes the Prometheus registry
// Should be called once at application startup if metrics are enabled
func InitRegistry() {
	Registry = prometheus.NewRegistry()
}

// GetRegistry returns the global Prometheus registry
// Returns nil if metrics are not initialized
func GetRegistry() *prometheus.Registry {
	return Registry
}

// IsEnabled returns true if metrics collection is enabled
func IsEnabled() bool {
	return Registry != nil
}

// SetGlobalProductionCollector sets the global production metrics collector
func SetGlobalProductionCollector(collector ProductionMetricsRecorder) {
	globalProductionCollector = collector
}

// SetGlobalBillingCollector sets the global billing metrics collector
func SetGlobalBillingCollector(collector BillingMetricsRecorder) {
	globalBillingCollector = collector
}

// RecordProductionStarted records a started production task globally
func RecordProductionStarted(factoryType string) {
	if globalProductionCollector != nil {
		globalProductionCollector.RecordProductionStarted(factoryType)
	}
}

// RecordProductionRejected records a refused production start globally
func RecordProductionRejected(factoryType string, reason string) {
	if globalProductionCollector != nil {
		globalProductionCollector.RecordProductionRejected(factoryType, reason)
	}
}

// RecordProductionCompleted records a harvested production task globally
func RecordProductionCompleted(factoryType string, recipeID string) {
	if globalProductionCollector != nil {
		globalProductionCollector.RecordProductionCompleted(factoryType, recipeID)
	}
}

// RecordStorageFull records a rejected add past capacity globally
func RecordStorageFull(compartment string) {
	if globalProductionCollector != nil {
		globalProductionCollector.RecordStorageFull(compartment)
	}
}

// RecordFactoryTransaction records a buy, sell or upgrade payment globally
func RecordFactoryTransaction(kind string, amount float64) {
	if globalProductionCollector != nil {
		globalProductionCollector.RecordFactoryTransaction(kind, amount)
	}
}

// SetOwnedFactories updates the owned factories gauge globally
func SetOwnedFactories(count int) {
	if globalProductionCollector != nil {
		globalProductionCollector.SetOwnedFactories(count)
	}
}

// RecordListingEvent records a marketplace listing transition globally
func RecordListingEvent(event string) {
	if globalProductionCollector != nil {
		globalProductionCollector.RecordListingEvent(event)
	}
}

// RecordInvoicesIssued records a billing run globally
func RecordInvoicesIssued(kind string, count int, amount float64) {
	if globalBillingCollector != nil {
		globalBillingCollector.RecordInvoicesIssued(kind, count, amount)
	}
}

// RecordInvoicePaid records a settled invoice globally
func RecordInvoicePaid(kind string, amount float64) {
	if globalBillingCollector != nil {
		globalBillingCollector.RecordInvoicePaid(kind, amount)
	}
}

// SetOverdueInvoices updates the overdue invoices gauge globally
func SetOverdueInvoices(count int) {
	if globalBillingCollector != nil {
		globalBillingCollector.SetOverdueInvoices(count)
	}
}
