package setup_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	billingCommands "github.com/factorycraft/factory-economy/internal/application/billing/commands"
	billingQueries "github.com/factorycraft/factory-economy/internal/application/billing/queries"
	billingServices "github.com/factorycraft/factory-economy/internal/application/billing/services"
	factoryCommands "github.com/factorycraft/factory-economy/internal/application/factory/commands"
	factoryQueries "github.com/factorycraft/factory-economy/internal/application/factory/queries"
	factoryServices "github.com/factorycraft/factory-economy/internal/application/factory/services"
	marketCommands "github.com/factorycraft/factory-economy/internal/application/marketplace/commands"
	marketQueries "github.com/factorycraft/factory-economy/internal/application/marketplace/queries"
	marketServices "github.com/factorycraft/factory-economy/internal/application/marketplace/services"
	"github.com/factorycraft/factory-economy/internal/application/mediator"
	"github.com/factorycraft/factory-economy/internal/application/ratelimit"
	"github.com/factorycraft/factory-economy/internal/application/setup"
	"github.com/factorycraft/factory-economy/internal/domain/billing"
	"github.com/factorycraft/factory-economy/internal/domain/factory"
	"github.com/factorycraft/factory-economy/internal/domain/shared"
	"github.com/factorycraft/factory-economy/internal/domain/storage"
	"github.com/factorycraft/factory-economy/test/helpers"
)

func newMediator(t *testing.T, middlewares ...mediator.Middleware) (mediator.Mediator, *helpers.TestEngine) {
	t.Helper()
	engine := helpers.NewTestEngine(t, factoryServices.DefaultSettings())
	market := marketServices.NewMarketplace(engine.Registry, engine.Storage, helpers.NewMockListingRepository(), engine.Economy, engine.Clock, nil, time.Hour)
	scheduler := billingServices.NewBillingScheduler(
		engine.Registry,
		helpers.NewMockInvoiceRepository(),
		helpers.NewMockBillingRunRepository(),
		engine.Economy,
		nil,
		market,
		engine.Clock,
		nil,
		billingServices.DefaultSettings(),
	)

	reg := setup.NewHandlerRegistry(engine.Registry, engine.Storage, engine.Production, scheduler, market, nil, engine.Clock)
	m, err := reg.CreateConfiguredMediator(middlewares...)
	require.NoError(t, err)
	return m, engine
}

func TestMediator_ProductionLifecycle(t *testing.T) {
	// Arrange
	ctx := context.Background()
	m, engine := newMediator(t)
	engine.Regions.AddRegion("plot-7", "world")
	player := shared.GeneratePlayerID()
	engine.Economy.SetBalance(player, 1500)

	// Act
	_, err := m.Send(ctx, &factoryCommands.CreateFactoryCommand{ID: "f1", RegionRef: "plot-7", Type: "workshop", Price: 1000})
	require.NoError(t, err)
	resp, err := m.Send(ctx, &factoryCommands.BuyFactoryCommand{PlayerID: player, FactoryID: "f1"})
	require.NoError(t, err)
	assert.InDelta(t, 1000.0, resp.(*factoryCommands.BuyFactoryResponse).Price, 1e-9)

	_, err = m.Send(ctx, &factoryCommands.AdjustStorageCommand{FactoryID: "f1", Compartment: storage.CompartmentInput, ResourceID: "iron_ore", Delta: 5})
	require.NoError(t, err)
	_, err = m.Send(ctx, &factoryCommands.StartProductionCommand{PlayerID: player, FactoryID: "f1", RecipeID: "r1"})
	require.NoError(t, err)

	engine.Clock.Advance(60 * time.Second)
	tick, err := m.Send(ctx, &factoryCommands.TickFactoriesCommand{})
	require.NoError(t, err)

	// Assert
	assert.Equal(t, 1, tick.(*factoryCommands.TickFactoriesResponse).Summary.Harvested)
	details, err := m.Send(ctx, &factoryQueries.GetFactoryQuery{FactoryID: "f1"})
	require.NoError(t, err)
	d := details.(*factoryQueries.FactoryDetails)
	assert.Equal(t, map[string]int{"steel_ingot": 2}, d.Output)
	assert.Equal(t, factory.StatusStopped, d.Progress.Status)
	assert.InDelta(t, 500.0, d.UpgradeCost, 1e-9)

	list, err := m.Send(ctx, &factoryQueries.ListFactoriesQuery{OwnerID: &player})
	require.NoError(t, err)
	assert.Len(t, list.(*factoryQueries.ListFactoriesResponse).Factories, 1)
}

func TestMediator_DomainErrorsPassThrough(t *testing.T) {
	ctx := context.Background()
	m, engine := newMediator(t)
	engine.CreateFactory(t, "f1", shared.FactoryTypeWorkshop, 1000)
	player := shared.GeneratePlayerID()

	_, err := m.Send(ctx, &factoryCommands.BuyFactoryCommand{PlayerID: player, FactoryID: "f1"})

	var funds *shared.InsufficientFundsError
	assert.ErrorAs(t, err, &funds)
}

func TestMediator_InvalidFactoryType(t *testing.T) {
	m, _ := newMediator(t)

	_, err := m.Send(context.Background(), &factoryCommands.CreateFactoryCommand{ID: "f1", RegionRef: "x", Type: "castle", Price: 1})

	assert.Error(t, err)
}

func TestMediator_BillingAndMarketplace(t *testing.T) {
	// Arrange
	ctx := context.Background()
	m, engine := newMediator(t)
	seller := engine.OwnFactory(t, "f1", shared.FactoryTypeWorkshop, 1000)
	require.NoError(t, engine.Storage.AddOutput(ctx, "f1", "steel_ingot", 2))

	// Act: taxes
	run, err := m.Send(ctx, &billingCommands.RunBillingCommand{Kind: billing.InvoiceTypeTax})
	require.NoError(t, err)
	issued := run.(*billingCommands.RunBillingResponse).Invoices
	require.Len(t, issued, 1)

	invoices, err := m.Send(ctx, &billingQueries.ListInvoicesQuery{PlayerID: seller, UnpaidOnly: true})
	require.NoError(t, err)
	assert.InDelta(t, 50.0, invoices.(*billingQueries.ListInvoicesResponse).Total, 1e-9)

	engine.Economy.SetBalance(seller, 50)
	_, err = m.Send(ctx, &billingCommands.PayInvoiceCommand{PlayerID: seller, InvoiceID: issued[0].ID()})
	require.NoError(t, err)

	// Act: marketplace
	created, err := m.Send(ctx, &marketCommands.CreateListingCommand{PlayerID: seller, FactoryID: "f1", ResourceID: "steel_ingot", Amount: 2, UnitPrice: 7})
	require.NoError(t, err)
	listing := created.(*marketCommands.CreateListingResponse).Listing

	active, err := m.Send(ctx, &marketQueries.ListListingsQuery{})
	require.NoError(t, err)
	assert.Len(t, active.(*marketQueries.ListListingsResponse).Listings, 1)

	_, err = m.Send(ctx, &marketCommands.CancelListingCommand{PlayerID: seller, ListingID: listing.ID()})

	// Assert
	require.NoError(t, err)
	amount, err := engine.Storage.AmountOutput("f1", "steel_ingot")
	require.NoError(t, err)
	assert.Equal(t, 2, amount)
}

func TestMediator_RateLimitedPerPlayer(t *testing.T) {
	// Arrange: one command per hour, burst of one
	ctx := context.Background()
	m, engine := newMediator(t, ratelimit.Middleware(ratelimit.NewPlayerLimiter(1.0/3600, 1)))
	engine.CreateFactory(t, "f1", shared.FactoryTypeWorkshop, 0)
	player := shared.GeneratePlayerID()

	// Act
	_, first := m.Send(ctx, &factoryCommands.BuyFactoryCommand{PlayerID: player, FactoryID: "f1"})
	_, second := m.Send(ctx, &factoryCommands.SellFactoryCommand{PlayerID: player, FactoryID: "f1"})
	_, admin := m.Send(ctx, &factoryQueries.GetFactoryQuery{FactoryID: "f1"})

	// Assert
	require.NoError(t, first)
	var limited *ratelimit.ErrRateLimited
	assert.ErrorAs(t, second, &limited)
	assert.NoError(t, admin)
}
