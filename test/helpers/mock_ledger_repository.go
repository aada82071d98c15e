package helpers

import (
	"context"
	"sync"

	"github.com/factorycraft/factory-economy/internal/domain/storage"
)

// MockLedgerRepository is an in-memory test double for storage.LedgerRepository
type MockLedgerRepository struct {
	mu      sync.RWMutex
	ledgers map[string]*storage.Ledger

	// SaveErr, when set, is returned by every Save
	SaveErr error
}

// NewMockLedgerRepository creates a new mock ledger repository
func NewMockLedgerRepository() *MockLedgerRepository {
	return &MockLedgerRepository{ledgers: make(map[string]*storage.Ledger)}
}

// SetSaveError makes subsequent saves fail (nil restores success)
func (m *MockLedgerRepository) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveErr = err
}

func (m *MockLedgerRepository) Save(ctx context.Context, l *storage.Ledger) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.ledgers[l.FactoryID()] = l.Clone()
	return nil
}

func (m *MockLedgerRepository) Delete(ctx context.Context, factoryID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.ledgers, factoryID)
	return nil
}

func (m *MockLedgerRepository) FindAll(ctx context.Context) ([]*storage.Ledger, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*storage.Ledger, 0, len(m.ledgers))
	for _, l := range m.ledgers {
		out = append(out, l.Clone())
	}
	return out, nil
}

// Stored returns the persisted copy of a ledger, or nil
func (m *MockLedgerRepository) Stored(factoryID string) *storage.Ledger {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.ledgers[factoryID]
	if !ok {
		return nil
	}
	return l.Clone()
}
