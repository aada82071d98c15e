package services_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/factorycraft/factory-economy/internal/application/factory/services"
	"github.com/factorycraft/factory-economy/internal/domain/factory"
	"github.com/factorycraft/factory-economy/internal/domain/shared"
	"github.com/factorycraft/factory-economy/internal/domain/storage"
)

func TestProduction_SteelScenario(t *testing.T) {
	// Arrange: P buys f1 for 1000 and deposits 10 iron ore
	fx := newFixture(t)
	player := fx.ownedWorkshop(t)
	assert.Equal(t, 0.0, fx.economy.BalanceOf(player))
	require.NoError(t, fx.storage.AddInput(fx.ctx, "f1", "iron_ore", 10))

	// Act: start r1
	task, err := fx.engine.Start(fx.ctx, player, "f1", "r1")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 60, task.DurationSeconds())
	in, _ := fx.storage.AmountInput("f1", "iron_ore")
	assert.Equal(t, 5, in)

	view, err := fx.engine.Progress("f1")
	require.NoError(t, err)
	assert.Equal(t, factory.StateRunning, view.State)
	assert.Equal(t, factory.StatusRunning, view.Status)
	assert.Equal(t, int64(60), view.RemainingSeconds)

	// Act: tick before completion is a no-op
	fx.clock.AdvanceSeconds(59)
	result, err := fx.engine.Tick(fx.ctx, "f1")
	require.NoError(t, err)
	assert.Nil(t, result.Harvested)

	// Act: tick at completion harvests
	fx.clock.AdvanceSeconds(1)
	view, _ = fx.engine.Progress("f1")
	assert.Equal(t, factory.StateComplete, view.State)
	assert.Equal(t, 1.0, view.Progress)
	assert.Equal(t, int64(0), view.RemainingSeconds)

	result, err = fx.engine.Tick(fx.ctx, "f1")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"steel_ingot": 2}, result.Harvested)
	out, _ := fx.storage.AmountOutput("f1", "steel_ingot")
	assert.Equal(t, 2, out)

	view, _ = fx.engine.Progress("f1")
	assert.Equal(t, factory.StateIdle, view.State)
	assert.Equal(t, factory.StatusStopped, view.Status)
	assert.Nil(t, fx.factories.Stored("f1").Task(), "cleared task persisted")
}

func TestProduction_TickIsExactlyOnce(t *testing.T) {
	fx := newFixture(t)
	player := fx.ownedWorkshop(t)
	require.NoError(t, fx.storage.AddInput(fx.ctx, "f1", "iron_ore", 5))
	_, err := fx.engine.Start(fx.ctx, player, "f1", "r1")
	require.NoError(t, err)
	fx.clock.Advance(time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = fx.engine.Tick(fx.ctx, "f1")
		}()
	}
	wg.Wait()

	out, _ := fx.storage.AmountOutput("f1", "steel_ingot")
	assert.Equal(t, 2, out)
	assert.Len(t, fx.commands.Commands(), 1)
}

func TestProduction_InsufficientMaterials(t *testing.T) {
	// Arrange
	fx := newFixture(t)
	player := fx.ownedWorkshop(t)
	require.NoError(t, fx.storage.AddInput(fx.ctx, "f1", "iron_ore", 3))
	before := fx.ledgers.Stored("f1")

	// Act
	task, err := fx.engine.Start(fx.ctx, player, "f1", "r1")

	// Assert
	var materials *factory.ErrInsufficientMaterials
	require.ErrorAs(t, err, &materials)
	assert.Equal(t, map[string]int{"iron_ore": 2}, materials.Missing)
	assert.Nil(t, task)

	in, _ := fx.storage.SnapshotInput("f1")
	assert.Equal(t, map[string]int{"iron_ore": 3}, in)
	assert.Equal(t, before.Snapshot(storage.CompartmentInput), fx.ledgers.Stored("f1").Snapshot(storage.CompartmentInput))

	view, _ := fx.engine.Progress("f1")
	assert.Equal(t, factory.StateIdle, view.State)
	assert.Equal(t, factory.StatusNoParts, view.Status)

	fx.clock.Advance(services.DefaultSettings().NoPartsWindow)
	view, _ = fx.engine.Progress("f1")
	assert.Equal(t, factory.StatusStopped, view.Status, "NO_PARTS expires")
}

func TestProduction_StartPreconditions(t *testing.T) {
	t.Run("not owner", func(t *testing.T) {
		fx := newFixture(t)
		fx.ownedWorkshop(t)

		_, err := fx.engine.Start(fx.ctx, shared.GeneratePlayerID(), "f1", "r1")

		var notOwner *factory.ErrNotOwner
		assert.ErrorAs(t, err, &notOwner)
	})

	t.Run("unowned factory", func(t *testing.T) {
		fx := newFixture(t)
		fx.createFactory(t, "f1", shared.FactoryTypeWorkshop, 10)

		_, err := fx.engine.Start(fx.ctx, shared.GeneratePlayerID(), "f1", "r1")

		var notOwner *factory.ErrNotOwner
		assert.ErrorAs(t, err, &notOwner)
	})

	t.Run("unknown recipe", func(t *testing.T) {
		fx := newFixture(t)
		player := fx.ownedWorkshop(t)

		_, err := fx.engine.Start(fx.ctx, player, "f1", "nope")

		var nf *shared.NotFoundError
		assert.ErrorAs(t, err, &nf)
	})

	t.Run("recipe of another factory type", func(t *testing.T) {
		fx := newFixture(t)
		player := fx.ownedWorkshop(t)
		require.NoError(t, fx.storage.AddInput(fx.ctx, "f1", "coal", 10))

		_, err := fx.engine.Start(fx.ctx, player, "f1", "coke")

		var invalid *factory.ErrInvalidRecipe
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, shared.FactoryTypeWorkshop, invalid.FactoryType)
		in, _ := fx.storage.AmountInput("f1", "coal")
		assert.Equal(t, 10, in)
	})

	t.Run("recipe with unknown resource", func(t *testing.T) {
		fx := newFixture(t)
		player := fx.ownedWorkshop(t)
		require.NoError(t, fx.storage.AddInput(fx.ctx, "f1", "iron_ore", 10))

		_, err := fx.engine.Start(fx.ctx, player, "f1", "mystery")

		var invalid *factory.ErrInvalidRecipe
		assert.ErrorAs(t, err, &invalid)
	})

	t.Run("already producing", func(t *testing.T) {
		fx := newFixture(t)
		player := fx.ownedWorkshop(t)
		require.NoError(t, fx.storage.AddInput(fx.ctx, "f1", "iron_ore", 10))
		_, err := fx.engine.Start(fx.ctx, player, "f1", "r1")
		require.NoError(t, err)

		_, err = fx.engine.Start(fx.ctx, player, "f1", "r1")

		var active *factory.ErrProductionActive
		assert.ErrorAs(t, err, &active)
		in, _ := fx.storage.AmountInput("f1", "iron_ore")
		assert.Equal(t, 5, in)
	})

	t.Run("upgrading", func(t *testing.T) {
		fx := newFixture(t)
		player := fx.ownedWorkshop(t)
		fx.economy.SetBalance(player, 500)
		require.NoError(t, fx.storage.AddInput(fx.ctx, "f1", "iron_ore", 10))
		_, err := fx.registry.Upgrade(fx.ctx, player, "f1")
		require.NoError(t, err)

		_, err = fx.engine.Start(fx.ctx, player, "f1", "r1")

		var upgrading *factory.ErrAlreadyUpgrading
		assert.ErrorAs(t, err, &upgrading)
	})

	t.Run("suspended", func(t *testing.T) {
		fx := newFixture(t)
		player := fx.ownedWorkshop(t)
		require.NoError(t, fx.storage.AddInput(fx.ctx, "f1", "iron_ore", 10))
		_, err := fx.registry.SetSuspended(fx.ctx, "f1", true)
		require.NoError(t, err)

		_, err = fx.engine.Start(fx.ctx, player, "f1", "r1")

		var suspended *factory.ErrFactorySuspended
		assert.ErrorAs(t, err, &suspended)
	})
}

func TestProduction_EmployeesShortenNewTasks(t *testing.T) {
	fx := newFixture(t)
	player := fx.ownedWorkshop(t)
	_, err := fx.registry.HireEmployee(fx.ctx, player, "f1", "Ada", 5)
	require.NoError(t, err)
	_, err = fx.registry.HireEmployee(fx.ctx, player, "f1", "Bo", 5)
	require.NoError(t, err)
	require.NoError(t, fx.storage.AddInput(fx.ctx, "f1", "iron_ore", 5))

	task, err := fx.engine.Start(fx.ctx, player, "f1", "r1")

	require.NoError(t, err)
	assert.Equal(t, 48, task.DurationSeconds(), "two employees save 20%")
}

func TestProduction_BlockedOutputIsRetried(t *testing.T) {
	// Arrange: a single output slot already holding coal
	fx := newFixture(t, func(s *services.Settings) {
		s.BaseSlots = 1
		s.StackSize = 5
	})
	player := fx.ownedWorkshop(t)
	require.NoError(t, fx.storage.AddInput(fx.ctx, "f1", "iron_ore", 5))
	require.NoError(t, fx.storage.AddOutput(fx.ctx, "f1", "coal", 1))
	_, err := fx.engine.Start(fx.ctx, player, "f1", "r1")
	require.NoError(t, err)
	fx.clock.AdvanceSeconds(60)

	// Act
	result, err := fx.engine.Tick(fx.ctx, "f1")

	// Assert
	require.NoError(t, err)
	assert.True(t, result.Blocked)
	assert.True(t, result.NewlyBlocked)

	// later ticks stay blocked without being reported again
	fx.clock.AdvanceSeconds(1)
	result, err = fx.engine.Tick(fx.ctx, "f1")
	require.NoError(t, err)
	assert.True(t, result.Blocked)
	assert.False(t, result.NewlyBlocked)

	view, _ := fx.engine.Progress("f1")
	assert.Equal(t, factory.StateComplete, view.State)
	assert.Equal(t, factory.StatusRunning, view.Status, "pending harvest still reports running")

	ok, err := fx.storage.RemoveOutput(fx.ctx, "f1", "coal", 1)
	require.NoError(t, err)
	require.True(t, ok)

	result, err = fx.engine.Tick(fx.ctx, "f1")
	require.NoError(t, err)
	assert.False(t, result.Blocked)
	assert.False(t, result.NewlyBlocked)
	assert.Equal(t, map[string]int{"steel_ingot": 2}, result.Harvested)
}

func TestProduction_Cancel(t *testing.T) {
	fx := newFixture(t)
	player := fx.ownedWorkshop(t)
	require.NoError(t, fx.storage.AddInput(fx.ctx, "f1", "iron_ore", 5))

	var idle *factory.ErrNotProducing
	assert.ErrorAs(t, fx.engine.Cancel(fx.ctx, player, "f1"), &idle)

	_, err := fx.engine.Start(fx.ctx, player, "f1", "r1")
	require.NoError(t, err)

	require.NoError(t, fx.engine.Cancel(fx.ctx, player, "f1"))

	view, _ := fx.engine.Progress("f1")
	assert.Equal(t, factory.StateIdle, view.State)
	in, _ := fx.storage.AmountInput("f1", "iron_ore")
	assert.Equal(t, 0, in, "inputs are not refunded")
}

func TestProduction_SideEffectCommands(t *testing.T) {
	fx := newFixture(t)
	player := fx.ownedWorkshop(t)
	require.NoError(t, fx.storage.AddInput(fx.ctx, "f1", "iron_ore", 5))
	_, err := fx.engine.Start(fx.ctx, player, "f1", "r1")
	require.NoError(t, err)
	fx.clock.AdvanceSeconds(60)

	_, err = fx.engine.Tick(fx.ctx, "f1")
	require.NoError(t, err)

	assert.Equal(t, []string{"say " + player.String() + " made steel in f1"}, fx.commands.Commands())
}

func TestProduction_TickAll(t *testing.T) {
	fx := newFixture(t)
	player := fx.ownedWorkshop(t)
	fx.createFactory(t, "f2", shared.FactoryTypeWorkshop, 0)
	require.NoError(t, fx.registry.Buy(fx.ctx, player, "f2"))
	for _, id := range []string{"f1", "f2"} {
		require.NoError(t, fx.storage.AddInput(fx.ctx, id, "iron_ore", 5))
		_, err := fx.engine.Start(fx.ctx, player, id, "r1")
		require.NoError(t, err)
	}
	fx.clock.AdvanceSeconds(60)

	summary := fx.engine.TickAll(fx.ctx)

	assert.Equal(t, 2, summary.Ticked)
	assert.Equal(t, 2, summary.Harvested)
	assert.Equal(t, 0, summary.Failed)

	summary = fx.engine.TickAll(fx.ctx)
	assert.Equal(t, 0, summary.Ticked, "idle factories are skipped")
}

func TestProduction_AvailableRecipes(t *testing.T) {
	fx := newFixture(t)
	fx.createFactory(t, "f1", shared.FactoryTypeWorkshop, 1)

	recipes, err := fx.engine.AvailableRecipes("f1")

	require.NoError(t, err)
	ids := make([]string, 0, len(recipes))
	for _, r := range recipes {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"r1", "gears", "mystery"}, ids)
}
