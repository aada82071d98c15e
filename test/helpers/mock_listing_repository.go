package helpers

import (
	"context"
	"sort"
	"sync"

	"github.com/factorycraft/factory-economy/internal/domain/marketplace"
	"github.com/factorycraft/factory-economy/internal/domain/shared"
)

// MockListingRepository is an in-memory test double for marketplace.ListingRepository
type MockListingRepository struct {
	mu       sync.RWMutex
	listings map[string]*marketplace.Listing

	// SaveErr, when set, is returned by every Save
	SaveErr error
}

func NewMockListingRepository() *MockListingRepository {
	return &MockListingRepository{listings: make(map[string]*marketplace.Listing)}
}

func (m *MockListingRepository) Save(ctx context.Context, l *marketplace.Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	copied := *l
	m.listings[l.ID()] = &copied
	return nil
}

func (m *MockListingRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.listings, id)
	return nil
}

func (m *MockListingRepository) FindByID(ctx context.Context, id string) (*marketplace.Listing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.listings[id]
	if !ok {
		return nil, shared.NewNotFoundError("listing", id)
	}
	copied := *l
	return &copied, nil
}

func (m *MockListingRepository) FindAll(ctx context.Context) ([]*marketplace.Listing, error) {
	return m.find(func(l *marketplace.Listing) bool { return true }), nil
}

func (m *MockListingRepository) FindBySeller(ctx context.Context, sellerID shared.PlayerID) ([]*marketplace.Listing, error) {
	return m.find(func(l *marketplace.Listing) bool { return l.SellerID().Equals(sellerID) }), nil
}

func (m *MockListingRepository) find(keep func(l *marketplace.Listing) bool) []*marketplace.Listing {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*marketplace.Listing
	for _, l := range m.listings {
		if keep(l) {
			copied := *l
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}
