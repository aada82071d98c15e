package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/factorycraft/factory-economy/internal/application/factory/services"
	"github.com/factorycraft/factory-economy/internal/domain/factory"
	"github.com/factorycraft/factory-economy/internal/domain/shared"
	"github.com/factorycraft/factory-economy/test/helpers"
)

type fixture struct {
	ctx       context.Context
	clock     *shared.MockClock
	factories *helpers.MockFactoryRepository
	ledgers   *helpers.MockLedgerRepository
	economy   *helpers.MockEconomy
	mover     *helpers.MockWorldMover
	commands  *helpers.MockCommandRunner
	registry  *services.Registry
	storage   *services.StorageService
	engine    *services.ProductionEngine
}

func newFixture(t *testing.T, tune ...func(s *services.Settings)) *fixture {
	t.Helper()

	settings := services.DefaultSettings()
	for _, fn := range tune {
		fn(&settings)
	}

	fx := &fixture{
		ctx:       context.Background(),
		clock:     shared.NewMockClock(time.Time{}),
		factories: helpers.NewMockFactoryRepository(),
		ledgers:   helpers.NewMockLedgerRepository(),
		economy:   helpers.NewMockEconomy(),
		mover:     helpers.NewMockWorldMover(),
		commands:  helpers.NewMockCommandRunner(),
	}
	resources, recipes := helpers.NewTestCatalogs(t)

	fx.registry = services.NewRegistry(
		fx.factories,
		fx.ledgers,
		nil,
		fx.economy,
		helpers.NewMockRegionResolver("region_f1", "region_f2"),
		fx.mover,
		fx.clock,
		nil,
		settings,
	)
	fx.storage = services.NewStorageService(fx.registry)
	fx.engine = services.NewProductionEngine(fx.registry, recipes, resources, fx.commands)
	return fx
}

// createFactory registers an unowned factory bound to region_<id>
func (fx *fixture) createFactory(t *testing.T, id string, ftype shared.FactoryType, price float64) {
	t.Helper()
	_, err := fx.registry.Create(fx.ctx, services.CreateFactoryRequest{
		ID:        id,
		RegionRef: "region_" + id,
		Type:      ftype,
		Price:     price,
		FastTravel: &factory.Location{
			World: "world", X: 10, Y: 64, Z: -3,
		},
	})
	require.NoError(t, err)
}

// ownedWorkshop creates workshop f1 (price 1000) bought by a fresh player
func (fx *fixture) ownedWorkshop(t *testing.T) shared.PlayerID {
	t.Helper()
	fx.createFactory(t, "f1", shared.FactoryTypeWorkshop, 1000)
	player := shared.GeneratePlayerID()
	fx.economy.SetBalance(player, 1000)
	require.NoError(t, fx.registry.Buy(fx.ctx, player, "f1"))
	return player
}
