package helpers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/factorycraft/factory-economy/internal/application/factory/services"
	"github.com/factorycraft/factory-economy/internal/domain/factory"
	"github.com/factorycraft/factory-economy/internal/domain/shared"
)

// TestEngine wires a registry, storage service and production engine to
// in-memory doubles. Any region named region_<id> resolves.
type TestEngine struct {
	Clock      *shared.MockClock
	Factories  *MockFactoryRepository
	Ledgers    *MockLedgerRepository
	Economy    *MockEconomy
	Regions    *MockRegionResolver
	Mover      *MockWorldMover
	Commands   *MockCommandRunner
	Registry   *services.Registry
	Storage    *services.StorageService
	Production *services.ProductionEngine
}

// NewTestEngine builds a TestEngine with the given settings and a mock clock at the unix epoch
func NewTestEngine(t *testing.T, settings services.Settings) *TestEngine {
	t.Helper()

	clock := shared.NewMockClock(time.Unix(0, 0))
	te := &TestEngine{
		Clock:     clock,
		Factories: NewMockFactoryRepository(),
		Ledgers:   NewMockLedgerRepository(),
		Economy:   NewMockEconomy(),
		Regions:   NewMockRegionResolver(),
		Mover:     NewMockWorldMover(),
		Commands:  NewMockCommandRunner(),
	}
	resources, recipes := NewTestCatalogs(t)
	te.Registry = services.NewRegistry(te.Factories, te.Ledgers, nil, te.Economy, te.Regions, te.Mover, clock, nil, settings)
	te.Storage = services.NewStorageService(te.Registry)
	te.Production = services.NewProductionEngine(te.Registry, recipes, resources, te.Commands)
	return te
}

// CreateFactory registers an unowned factory bound to region_<id>
func (te *TestEngine) CreateFactory(t *testing.T, id string, ftype shared.FactoryType, price float64) *factory.Factory {
	t.Helper()
	te.Regions.AddRegion("region_"+id, "world")
	f, err := te.Registry.Create(context.Background(), services.CreateFactoryRequest{
		ID:        id,
		RegionRef: "region_" + id,
		Type:      ftype,
		Price:     price,
	})
	require.NoError(t, err)
	return f
}

// OwnFactory creates a factory and has a new player with exactly enough
// credits buy it. It returns the owner.
func (te *TestEngine) OwnFactory(t *testing.T, id string, ftype shared.FactoryType, price float64) shared.PlayerID {
	t.Helper()
	player := shared.GeneratePlayerID()
	te.CreateFactory(t, id, ftype, price)
	te.Economy.SetBalance(player, price)
	require.NoError(t, te.Registry.Buy(context.Background(), player, id))
	return player
}
