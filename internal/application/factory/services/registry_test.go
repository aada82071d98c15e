package services_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/factorycraft/factory-economy/internal/application/factory/services"
	"github.com/factorycraft/factory-economy/internal/domain/factory"
	"github.com/factorycraft/factory-economy/internal/domain/shared"
)

func TestRegistry_Create(t *testing.T) {
	fx := newFixture(t)

	f, err := fx.registry.Create(fx.ctx, services.CreateFactoryRequest{
		ID: "f1", RegionRef: "region_f1", Type: shared.FactoryTypeWorkshop, Price: 1000,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, f.Level())
	assert.False(t, f.IsOwned())
	assert.NotNil(t, fx.factories.Stored("f1"), "factory persisted")
	assert.NotNil(t, fx.ledgers.Stored("f1"), "empty ledger persisted")

	status, err := fx.registry.Status("f1")
	require.NoError(t, err)
	assert.Equal(t, factory.StatusStopped, status)
}

func TestRegistry_CreateRejectsUnknownRegionAndDuplicates(t *testing.T) {
	fx := newFixture(t)
	fx.createFactory(t, "f1", shared.FactoryTypeWorkshop, 1000)

	_, err := fx.registry.Create(fx.ctx, services.CreateFactoryRequest{
		ID: "f9", RegionRef: "nowhere", Type: shared.FactoryTypeWorkshop, Price: 1,
	})
	var region *factory.ErrRegionNotFound
	assert.ErrorAs(t, err, &region)
	assert.False(t, fx.registry.Exists("f9"))

	_, err = fx.registry.Create(fx.ctx, services.CreateFactoryRequest{
		ID: "f1", RegionRef: "region_f2", Type: shared.FactoryTypeFoundry, Price: 1,
	})
	var dup *factory.ErrDuplicateFactory
	assert.ErrorAs(t, err, &dup)
}

func TestRegistry_BuySellRoundTrip(t *testing.T) {
	// Arrange
	fx := newFixture(t)
	fx.createFactory(t, "f1", shared.FactoryTypeWorkshop, 1000)
	player := shared.GeneratePlayerID()
	fx.economy.SetBalance(player, 1000)

	// Act: buy
	require.NoError(t, fx.registry.Buy(fx.ctx, player, "f1"))
	require.NoError(t, fx.storage.AddOutput(fx.ctx, "f1", "steel_ingot", 7))

	// Assert
	f, err := fx.registry.Get("f1")
	require.NoError(t, err)
	assert.True(t, f.IsOwnedBy(player))
	assert.Equal(t, 0.0, fx.economy.BalanceOf(player))
	assert.Len(t, fx.registry.ByOwner(player), 1)

	// Act: sell
	payout, err := fx.registry.Sell(fx.ctx, player, "f1")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 500.0, payout)
	assert.Equal(t, 500.0, fx.economy.BalanceOf(player))
	f, err = fx.registry.Get("f1")
	require.NoError(t, err)
	assert.False(t, f.IsOwned())
	assert.Empty(t, fx.registry.ByOwner(player))

	amount, err := fx.storage.AmountOutput("f1", "steel_ingot")
	require.NoError(t, err)
	assert.Equal(t, 7, amount, "storage survives the sale")
}

func TestRegistry_SellCanClearStorage(t *testing.T) {
	fx := newFixture(t, func(s *services.Settings) { s.ClearStorageOnSell = true })
	player := fx.ownedWorkshop(t)
	require.NoError(t, fx.storage.AddInput(fx.ctx, "f1", "iron_ore", 3))

	_, err := fx.registry.Sell(fx.ctx, player, "f1")

	require.NoError(t, err)
	snapshot, err := fx.storage.SnapshotInput("f1")
	require.NoError(t, err)
	assert.Empty(t, snapshot)
}

func TestRegistry_BuyFailures(t *testing.T) {
	t.Run("already owned", func(t *testing.T) {
		fx := newFixture(t)
		fx.ownedWorkshop(t)
		other := shared.GeneratePlayerID()
		fx.economy.SetBalance(other, 5000)

		err := fx.registry.Buy(fx.ctx, other, "f1")

		var owned *factory.ErrAlreadyOwned
		assert.ErrorAs(t, err, &owned)
		assert.Equal(t, 5000.0, fx.economy.BalanceOf(other))
	})

	t.Run("insufficient funds", func(t *testing.T) {
		fx := newFixture(t)
		fx.createFactory(t, "f1", shared.FactoryTypeWorkshop, 1000)
		poor := shared.GeneratePlayerID()
		fx.economy.SetBalance(poor, 999)

		err := fx.registry.Buy(fx.ctx, poor, "f1")

		var funds *shared.InsufficientFundsError
		assert.ErrorAs(t, err, &funds)
		f, _ := fx.registry.Get("f1")
		assert.False(t, f.IsOwned())
		assert.Equal(t, 999.0, fx.economy.BalanceOf(poor))
	})

	t.Run("economy error", func(t *testing.T) {
		fx := newFixture(t)
		fx.createFactory(t, "f1", shared.FactoryTypeWorkshop, 1000)
		player := shared.GeneratePlayerID()
		fx.economy.WithdrawErr = errors.New("economy offline")

		err := fx.registry.Buy(fx.ctx, player, "f1")

		var funds *shared.InsufficientFundsError
		assert.ErrorAs(t, err, &funds)
	})

	t.Run("unknown factory", func(t *testing.T) {
		fx := newFixture(t)

		err := fx.registry.Buy(fx.ctx, shared.GeneratePlayerID(), "nope")

		var nf *shared.NotFoundError
		assert.ErrorAs(t, err, &nf)
	})

	t.Run("save failure refunds", func(t *testing.T) {
		fx := newFixture(t)
		fx.createFactory(t, "f1", shared.FactoryTypeWorkshop, 1000)
		player := shared.GeneratePlayerID()
		fx.economy.SetBalance(player, 1000)
		fx.factories.SetSaveError(errors.New("disk full"))

		err := fx.registry.Buy(fx.ctx, player, "f1")

		require.Error(t, err)
		assert.Equal(t, 1000.0, fx.economy.BalanceOf(player), "withdrawal refunded")
		f, _ := fx.registry.Get("f1")
		assert.False(t, f.IsOwned(), "memory unchanged")
	})
}

func TestRegistry_SellRequiresOwner(t *testing.T) {
	fx := newFixture(t)
	fx.ownedWorkshop(t)

	_, err := fx.registry.Sell(fx.ctx, shared.GeneratePlayerID(), "f1")

	var notOwner *factory.ErrNotOwner
	assert.ErrorAs(t, err, &notOwner)
}

func TestRegistry_Upgrade(t *testing.T) {
	// Arrange
	fx := newFixture(t, func(s *services.Settings) {
		s.MaxLevel = 2
		s.UpgradeDuration = time.Minute
	})
	player := fx.ownedWorkshop(t)
	fx.economy.SetBalance(player, 2000)

	// Act
	cost, err := fx.registry.Upgrade(fx.ctx, player, "f1")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 500.0, cost)
	assert.Equal(t, 1500.0, fx.economy.BalanceOf(player))

	_, err = fx.registry.Upgrade(fx.ctx, player, "f1")
	var upgrading *factory.ErrAlreadyUpgrading
	require.ErrorAs(t, err, &upgrading)
	assert.Equal(t, 1500.0, fx.economy.BalanceOf(player), "rejected upgrade charges nothing")

	fx.clock.Advance(time.Minute)
	result, err := fx.engine.Tick(fx.ctx, "f1")
	require.NoError(t, err)
	assert.True(t, result.Upgraded)
	assert.Equal(t, 2, result.Level)

	_, err = fx.registry.Upgrade(fx.ctx, player, "f1")
	var maxLevel *factory.ErrMaxLevel
	assert.ErrorAs(t, err, &maxLevel)
}

func TestRegistry_UpgradeInsufficientFundsLeavesNoTimer(t *testing.T) {
	fx := newFixture(t)
	player := fx.ownedWorkshop(t)
	saves := fx.factories.SaveCount()

	_, err := fx.registry.Upgrade(fx.ctx, player, "f1")

	var funds *shared.InsufficientFundsError
	require.ErrorAs(t, err, &funds)
	f, _ := fx.registry.Get("f1")
	assert.False(t, f.IsUpgrading())
	assert.Equal(t, saves, fx.factories.SaveCount(), "nothing persisted")
}

func TestRegistry_UpgradeCostScalesWithLevel(t *testing.T) {
	settings := services.DefaultSettings()
	f := factory.Reconstruct(factory.Snapshot{ID: "f", RegionRef: "r", Type: shared.FactoryTypeFoundry, Price: 1000, Level: 3})

	assert.Equal(t, 1500.0, services.UpgradeCost(f, settings))
}

func TestRegistry_RemoveCascades(t *testing.T) {
	fx := newFixture(t)
	player := fx.ownedWorkshop(t)
	require.NoError(t, fx.storage.AddInput(fx.ctx, "f1", "iron_ore", 10))
	_, err := fx.registry.HireEmployee(fx.ctx, player, "f1", "Gus", 5)
	require.NoError(t, err)

	removed, err := fx.registry.Remove(fx.ctx, "f1")

	require.NoError(t, err)
	assert.True(t, removed)
	assert.Nil(t, fx.factories.Stored("f1"))
	assert.Nil(t, fx.ledgers.Stored("f1"))
	_, err = fx.storage.AmountInput("f1", "iron_ore")
	var nf *shared.NotFoundError
	assert.ErrorAs(t, err, &nf)

	removed, err = fx.registry.Remove(fx.ctx, "f1")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestRegistry_TeleportPlayer(t *testing.T) {
	fx := newFixture(t)
	owner := fx.ownedWorkshop(t)
	stranger := shared.GeneratePlayerID()

	ok, err := fx.registry.TeleportPlayer(fx.ctx, owner, "f1", false)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = fx.registry.TeleportPlayer(fx.ctx, stranger, "f1", false)
	var notOwner *factory.ErrNotOwner
	assert.ErrorAs(t, err, &notOwner)

	ok, err = fx.registry.TeleportPlayer(fx.ctx, stranger, "f1", true)
	require.NoError(t, err)
	assert.True(t, ok, "admins bypass ownership")

	require.NoError(t, fx.registry.SetFastTravel(fx.ctx, "f1", nil))
	ok, err = fx.registry.TeleportPlayer(fx.ctx, owner, "f1", false)
	require.NoError(t, err)
	assert.False(t, ok, "no location set")

	teleports := fx.mover.Teleports()
	require.Len(t, teleports, 2)
	assert.Equal(t, 64.0, teleports[0].To.Y)
}

func TestRegistry_Employees(t *testing.T) {
	fx := newFixture(t, func(s *services.Settings) { s.MaxEmployees = 1 })
	owner := fx.ownedWorkshop(t)

	e, err := fx.registry.HireEmployee(fx.ctx, owner, "f1", "Gus", 12.5)
	require.NoError(t, err)

	_, err = fx.registry.HireEmployee(fx.ctx, owner, "f1", "Ida", 1)
	var limit *factory.ErrEmployeeLimit
	assert.ErrorAs(t, err, &limit)

	_, err = fx.registry.HireEmployee(fx.ctx, shared.GeneratePlayerID(), "f1", "Ida", 1)
	var notOwner *factory.ErrNotOwner
	assert.ErrorAs(t, err, &notOwner)

	stored := fx.factories.Stored("f1")
	require.NotNil(t, stored)
	assert.Equal(t, 1, stored.EmployeeCount())

	require.NoError(t, fx.registry.FireEmployee(fx.ctx, owner, "f1", e.ID()))
	f, _ := fx.registry.Get("f1")
	assert.Equal(t, 0, f.EmployeeCount())
}

func TestRegistry_LoadRestoresState(t *testing.T) {
	fx := newFixture(t)
	player := fx.ownedWorkshop(t)
	require.NoError(t, fx.storage.AddInput(fx.ctx, "f1", "iron_ore", 4))

	reloaded := services.NewRegistry(fx.factories, fx.ledgers, nil, fx.economy,
		nil, nil, fx.clock, nil, services.DefaultSettings())
	require.NoError(t, reloaded.Load(fx.ctx))

	f, err := reloaded.Get("f1")
	require.NoError(t, err)
	assert.True(t, f.IsOwnedBy(player))
	amount, err := services.NewStorageService(reloaded).AmountInput("f1", "iron_ore")
	require.NoError(t, err)
	assert.Equal(t, 4, amount)
}

func TestRegistry_SetSuspended(t *testing.T) {
	fx := newFixture(t)
	fx.ownedWorkshop(t)

	changed, err := fx.registry.SetSuspended(fx.ctx, "f1", true)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = fx.registry.SetSuspended(fx.ctx, "f1", true)
	require.NoError(t, err)
	assert.False(t, changed)

	assert.True(t, fx.factories.Stored("f1").IsSuspended())
}
