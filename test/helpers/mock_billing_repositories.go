package helpers

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/factorycraft/factory-economy/internal/domain/billing"
	"github.com/factorycraft/factory-economy/internal/domain/shared"
)

// MockInvoiceRepository is an in-memory test double for billing.InvoiceRepository
type MockInvoiceRepository struct {
	mu       sync.RWMutex
	invoices map[string]*billing.Invoice
	order    []string

	// SaveErr, when set, is returned by Save and SaveAll
	SaveErr error

	// AfterFindUnpaid, when set, runs after FindUnpaid has read the invoices
	// and before it returns them
	AfterFindUnpaid func()
}

// NewMockInvoiceRepository creates a new mock invoice repository
func NewMockInvoiceRepository() *MockInvoiceRepository {
	return &MockInvoiceRepository{invoices: make(map[string]*billing.Invoice)}
}

func (m *MockInvoiceRepository) Save(ctx context.Context, inv *billing.Invoice) error {
	return m.SaveAll(ctx, []*billing.Invoice{inv})
}

func (m *MockInvoiceRepository) SaveAll(ctx context.Context, invoices []*billing.Invoice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	for _, inv := range invoices {
		if _, ok := m.invoices[inv.ID()]; !ok {
			m.order = append(m.order, inv.ID())
		}
		m.invoices[inv.ID()] = inv.Clone()
	}
	return nil
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id string) (*billing.Invoice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	inv, ok := m.invoices[id]
	if !ok {
		return nil, shared.NewNotFoundError("invoice", id)
	}
	return inv.Clone(), nil
}

func (m *MockInvoiceRepository) FindByOwner(ctx context.Context, ownerID shared.PlayerID) ([]*billing.Invoice, error) {
	return m.find(func(inv *billing.Invoice) bool { return inv.OwnerID().Equals(ownerID) }), nil
}

func (m *MockInvoiceRepository) FindUnpaid(ctx context.Context) ([]*billing.Invoice, error) {
	unpaid := m.find(func(inv *billing.Invoice) bool { return !inv.IsPaid() })
	if m.AfterFindUnpaid != nil {
		m.AfterFindUnpaid()
	}
	return unpaid, nil
}

func (m *MockInvoiceRepository) FindUnpaidByFactory(ctx context.Context, factoryID string) ([]*billing.Invoice, error) {
	return m.find(func(inv *billing.Invoice) bool { return !inv.IsPaid() && inv.FactoryID() == factoryID }), nil
}

// All returns every stored invoice in insertion order
func (m *MockInvoiceRepository) All() []*billing.Invoice {
	return m.find(func(inv *billing.Invoice) bool { return true })
}

func (m *MockInvoiceRepository) find(keep func(inv *billing.Invoice) bool) []*billing.Invoice {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*billing.Invoice
	for _, id := range m.order {
		if inv := m.invoices[id]; keep(inv) {
			out = append(out, inv.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].IssuedAt().Before(out[j].IssuedAt()) })
	return out
}

// MockBillingRunRepository is an in-memory test double for billing.BillingRunRepository
type MockBillingRunRepository struct {
	mu   sync.Mutex
	runs map[billing.InvoiceType]time.Time
}

func NewMockBillingRunRepository() *MockBillingRunRepository {
	return &MockBillingRunRepository{runs: make(map[billing.InvoiceType]time.Time)}
}

func (m *MockBillingRunRepository) LastRun(ctx context.Context, kind billing.InvoiceType) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runs[kind], nil
}

func (m *MockBillingRunRepository) RecordRun(ctx context.Context, kind billing.InvoiceType, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[kind] = at
	return nil
}
