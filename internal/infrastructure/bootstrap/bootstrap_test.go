package bootstrap_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/factorycraft/factory-economy/internal/adapters/metrics"
	factoryCommands "github.com/factorycraft/factory-economy/internal/application/factory/commands"
	factoryQueries "github.com/factorycraft/factory-economy/internal/application/factory/queries"
	"github.com/factorycraft/factory-economy/internal/domain/billing"
	"github.com/factorycraft/factory-economy/internal/domain/shared"
	"github.com/factorycraft/factory-economy/internal/domain/storage"
	"github.com/factorycraft/factory-economy/internal/infrastructure/bootstrap"
	"github.com/factorycraft/factory-economy/internal/infrastructure/config"
	"github.com/factorycraft/factory-economy/test/helpers"
)

var t0 = time.Date(2024, time.March, 1, 8, 0, 0, 0, time.UTC)

func testConfig() *config.Config {
	cfg := &config.Config{}
	config.SetDefaults(cfg)
	cfg.Catalog.ResourcesFile = "../../../configs/resources.yaml"
	cfg.Catalog.RecipesFile = "../../../configs/recipes.yaml"
	cfg.Catalog.RegionsFile = "../../../configs/regions.yaml"
	return cfg
}

func TestNew_RunsProductionThroughMediator(t *testing.T) {
	ctx := context.Background()
	db := helpers.NewTestDB(t)
	clock := shared.NewMockClock(t0)

	engine, err := bootstrap.New(ctx, testConfig(), bootstrap.Options{DB: db, Clock: clock})
	require.NoError(t, err)
	defer engine.Close()

	assert.Positive(t, engine.Catalogs.Resources().Len())
	assert.Positive(t, engine.Catalogs.Recipes().Len())

	player := shared.GeneratePlayerID()
	med := engine.Mediator

	_, err = med.Send(ctx, &factoryCommands.CreateFactoryCommand{
		ID: "w1", RegionRef: "factory_workshop_1", Type: "WORKSHOP", Price: 500,
	})
	require.NoError(t, err)
	_, err = med.Send(ctx, &factoryCommands.BuyFactoryCommand{PlayerID: player, FactoryID: "w1"})
	require.NoError(t, err)

	for resource, amount := range map[string]int{"iron_ore": 5, "coal": 1} {
		_, err = med.Send(ctx, &factoryCommands.AdjustStorageCommand{
			FactoryID: "w1", Compartment: storage.CompartmentInput, ResourceID: resource, Delta: amount,
		})
		require.NoError(t, err)
	}

	_, err = med.Send(ctx, &factoryCommands.StartProductionCommand{PlayerID: player, FactoryID: "w1", RecipeID: "smelt_steel"})
	require.NoError(t, err)

	clock.Advance(61 * time.Second)
	resp, err := med.Send(ctx, &factoryCommands.TickFactoriesCommand{})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.(*factoryCommands.TickFactoriesResponse).Summary.Harvested)

	details, err := med.Send(ctx, &factoryQueries.GetFactoryQuery{FactoryID: "w1"})
	require.NoError(t, err)
	assert.Equal(t, 2, details.(*factoryQueries.FactoryDetails).Output["steel_ingot"])

	balance, err := engine.Accounts.Balance(ctx, player)
	require.NoError(t, err)
	assert.InDelta(t, 9500, balance, 0.001)
}

func TestNew_RestoresPersistedFactories(t *testing.T) {
	ctx := context.Background()
	db := helpers.NewTestDB(t)
	cfg := testConfig()
	player := shared.GeneratePlayerID()

	first, err := bootstrap.New(ctx, cfg, bootstrap.Options{DB: db})
	require.NoError(t, err)
	_, err = first.Mediator.Send(ctx, &factoryCommands.CreateFactoryCommand{
		ID: "f1", RegionRef: "factory_foundry_1", Type: "FOUNDRY", Price: 100,
	})
	require.NoError(t, err)
	_, err = first.Mediator.Send(ctx, &factoryCommands.BuyFactoryCommand{PlayerID: player, FactoryID: "f1"})
	require.NoError(t, err)

	second, err := bootstrap.New(ctx, cfg, bootstrap.Options{DB: db})
	require.NoError(t, err)

	f, err := second.Registry.Get("f1")
	require.NoError(t, err)
	require.NotNil(t, f.Owner())
	assert.True(t, f.IsOwnedBy(player))
}

func TestNew_MissingCatalogFails(t *testing.T) {
	cfg := testConfig()
	cfg.Catalog.RegionsFile = "does-not-exist.yaml"

	_, err := bootstrap.New(context.Background(), cfg, bootstrap.Options{DB: helpers.NewTestDB(t)})
	require.Error(t, err)
}

func TestNew_MetricsEnabledInitialisesRegistry(t *testing.T) {
	cfg := testConfig()
	cfg.Metrics.Enabled = true
	t.Cleanup(func() { metrics.Registry = nil })

	_, err := bootstrap.New(context.Background(), cfg, bootstrap.Options{DB: helpers.NewTestDB(t)})
	require.NoError(t, err)
	assert.True(t, metrics.IsEnabled())
}

func TestBillingSettings(t *testing.T) {
	cfg := testConfig().Billing
	cfg.OverduePolicy = "SUSPEND"

	settings, err := bootstrap.BillingSettings(cfg)
	require.NoError(t, err)
	assert.Equal(t, billing.OverduePolicySuspend, settings.Overdue)
	assert.Equal(t, cfg.TaxRate, settings.Tax.Rate)

	cfg.OverduePolicy = "evict"
	_, err = bootstrap.BillingSettings(cfg)
	assert.Error(t, err)
}

func TestFactorySettings(t *testing.T) {
	cfg := testConfig().Factory
	settings := bootstrap.FactorySettings(cfg)

	assert.Equal(t, cfg.MaxLevel, settings.MaxLevel)
	assert.Equal(t, cfg.BonusPerEmployee, settings.Workforce.PerEmployee)
	assert.Equal(t, cfg.MaxBonus, settings.Workforce.Max)
}
