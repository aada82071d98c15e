package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/factorycraft/factory-economy/internal/adapters/persistence"
	"github.com/factorycraft/factory-economy/internal/domain/catalog"
	"github.com/factorycraft/factory-economy/internal/domain/factory"
	"github.com/factorycraft/factory-economy/internal/domain/shared"
	"github.com/factorycraft/factory-economy/test/helpers"
)

var t0 = time.Date(2024, time.March, 1, 8, 0, 0, 0, time.UTC)

func TestFactoryRepository_SaveAndFindAll(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormFactoryRepository(db)
	ctx := context.Background()

	loc := &factory.Location{World: "world", X: 10, Y: 64, Z: -3, Yaw: 90}
	f, err := factory.NewFactory("foundry_1", "region_foundry_1", shared.FactoryTypeFoundry, 2500, loc, t0)
	require.NoError(t, err)

	owner := shared.GeneratePlayerID()
	require.NoError(t, f.AssignOwner(owner))
	recipe := catalog.Recipe{
		ID:              "steel",
		FactoryType:     shared.FactoryTypeFoundry,
		DurationSeconds: 60,
		Inputs:          map[string]int{"iron_ore": 3},
		Outputs:         map[string]int{"steel_ingot": 2},
	}
	require.NoError(t, f.StartTask(factory.NewProductionTask(recipe, t0, 60), t0))
	worker, err := factory.NewEmployee("Greta", 12.5, t0)
	require.NoError(t, err)
	require.NoError(t, f.Hire(worker, 3))

	// Act
	require.NoError(t, repo.Save(ctx, f))
	loaded, err := repo.FindAll(ctx)

	// Assert
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	got := loaded[0]
	assert.Equal(t, "foundry_1", got.ID())
	assert.Equal(t, shared.FactoryTypeFoundry, got.Type())
	assert.Equal(t, 2500.0, got.Price())
	require.NotNil(t, got.Owner())
	assert.True(t, got.Owner().Equals(owner))
	require.NotNil(t, got.Task())
	assert.Equal(t, "steel", got.Task().RecipeID())
	assert.Equal(t, t0.Unix(), got.Task().StartedAt())
	assert.Equal(t, map[string]int{"steel_ingot": 2}, got.Task().Outputs())
	require.NotNil(t, got.FastTravel())
	assert.Equal(t, *loc, *got.FastTravel())
	require.Len(t, got.Employees(), 1)
	assert.Equal(t, worker.ID(), got.Employees()[0].ID())
	assert.Equal(t, 12.5, got.Employees()[0].Wage())
}

func TestFactoryRepository_SaveReplacesEmployeeRows(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormFactoryRepository(db)
	ctx := context.Background()

	f, err := factory.NewFactory("wk", "region_wk", shared.FactoryTypeWorkshop, 1000, nil, t0)
	require.NoError(t, err)
	require.NoError(t, f.AssignOwner(shared.GeneratePlayerID()))
	first, _ := factory.NewEmployee("A", 5, t0)
	second, _ := factory.NewEmployee("B", 6, t0.Add(time.Minute))
	require.NoError(t, f.Hire(first, 3))
	require.NoError(t, f.Hire(second, 3))
	require.NoError(t, repo.Save(ctx, f))

	require.NoError(t, f.Fire(first.ID()))
	f.ReleaseOwner()
	require.NoError(t, repo.Save(ctx, f))

	loaded, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Nil(t, loaded[0].Owner())
	assert.Nil(t, loaded[0].Task())

	var rows int64
	require.NoError(t, db.Model(&persistence.EmployeeModel{}).Count(&rows).Error)
	assert.Equal(t, int64(len(loaded[0].Employees())), rows)
}

func TestFactoryRepository_UpgradeAndSuspensionRoundTrip(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormFactoryRepository(db)
	ctx := context.Background()

	f, err := factory.NewFactory("ref", "region_ref", shared.FactoryTypeRefinery, 800, nil, t0)
	require.NoError(t, err)
	require.NoError(t, f.AssignOwner(shared.GeneratePlayerID()))
	require.NoError(t, f.BeginUpgrade(t0, 600, 5))
	f.Suspend()
	require.NoError(t, repo.Save(ctx, f))

	loaded, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	require.NotNil(t, loaded[0].Upgrade())
	assert.Equal(t, 2, loaded[0].Upgrade().TargetLevel())
	assert.Equal(t, 600, loaded[0].Upgrade().DurationSeconds())
	assert.True(t, loaded[0].IsSuspended())
}

func TestFactoryRepository_Delete(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormFactoryRepository(db)
	ctx := context.Background()

	f, err := factory.NewFactory("gone", "region_gone", shared.FactoryTypeAssembly, 100, nil, t0)
	require.NoError(t, err)
	require.NoError(t, f.AssignOwner(shared.GeneratePlayerID()))
	worker, _ := factory.NewEmployee("C", 1, t0)
	require.NoError(t, f.Hire(worker, 3))
	require.NoError(t, repo.Save(ctx, f))

	require.NoError(t, repo.Delete(ctx, "gone"))

	loaded, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded)
	var rows int64
	require.NoError(t, db.Model(&persistence.EmployeeModel{}).Count(&rows).Error)
	assert.Zero(t, rows)
}
