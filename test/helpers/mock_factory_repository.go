package helpers

import (
	"context"
	"sort"
	"sync"

	"github.com/factorycraft/factory-economy/internal/domain/factory"
)

// MockFactoryRepository is an in-memory test double for factory.FactoryRepository
type MockFactoryRepository struct {
	mu        sync.RWMutex
	factories map[string]*factory.Factory
	saves     int

	// SaveErr, when set, is returned by every Save
	SaveErr error
}

// NewMockFactoryRepository creates a new mock factory repository
func NewMockFactoryRepository() *MockFactoryRepository {
	return &MockFactoryRepository{factories: make(map[string]*factory.Factory)}
}

// SetSaveError makes subsequent saves fail (nil restores success)
func (m *MockFactoryRepository) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveErr = err
}

// Save stores a copy of the factory
func (m *MockFactoryRepository) Save(ctx context.Context, f *factory.Factory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.factories[f.ID()] = f.Clone()
	m.saves++
	return nil
}

// Delete removes a factory
func (m *MockFactoryRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.factories, id)
	return nil
}

// FindAll returns copies of every stored factory, sorted by id
func (m *MockFactoryRepository) FindAll(ctx context.Context) ([]*factory.Factory, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*factory.Factory, 0, len(m.factories))
	for _, f := range m.factories {
		out = append(out, f.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out, nil
}

// Stored returns the persisted copy of a factory, or nil
func (m *MockFactoryRepository) Stored(id string) *factory.Factory {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.factories[id]
	if !ok {
		return nil
	}
	return f.Clone()
}

// SaveCount returns the number of successful saves
func (m *MockFactoryRepository) SaveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}
