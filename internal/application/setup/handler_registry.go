package setup

import (
	"reflect"

	billingCommands "github.com/factorycraft/factory-economy/internal/application/billing/commands"
	billingQueries "github.com/factorycraft/factory-economy/internal/application/billing/queries"
	billingServices "github.com/factorycraft/factory-economy/internal/application/billing/services"
	catalogCommands "github.com/factorycraft/factory-economy/internal/application/catalog/commands"
	catalogServices "github.com/factorycraft/factory-economy/internal/application/catalog/services"
	factoryCommands "github.com/factorycraft/factory-economy/internal/application/factory/commands"
	factoryQueries "github.com/factorycraft/factory-economy/internal/application/factory/queries"
	factoryServices "github.com/factorycraft/factory-economy/internal/application/factory/services"
	marketCommands "github.com/factorycraft/factory-economy/internal/application/marketplace/commands"
	marketQueries "github.com/factorycraft/factory-economy/internal/application/marketplace/queries"
	marketServices "github.com/factorycraft/factory-economy/internal/application/marketplace/services"
	"github.com/factorycraft/factory-economy/internal/application/mediator"
	"github.com/factorycraft/factory-economy/internal/domain/shared"
)

// HandlerRegistry holds all application services needed to build handlers
type HandlerRegistry struct {
	registry *factoryServices.Registry
	storage  *factoryServices.StorageService
	engine   *factoryServices.ProductionEngine
	billing  *billingServices.BillingScheduler
	market   *marketServices.Marketplace
	catalogs *catalogServices.Loader
	clock    shared.Clock
}

// NewHandlerRegistry creates a new handler registry. billing, market and
// catalogs may be nil; their handlers are then not registered.
func NewHandlerRegistry(
	registry *factoryServices.Registry,
	storageSvc *factoryServices.StorageService,
	engine *factoryServices.ProductionEngine,
	billing *billingServices.BillingScheduler,
	market *marketServices.Marketplace,
	catalogs *catalogServices.Loader,
	clock shared.Clock,
) *HandlerRegistry {
	// Default to real clock if not provided
	if clock == nil {
		clock = shared.NewRealClock()
	}

	return &HandlerRegistry{
		registry: registry,
		storage:  storageSvc,
		engine:   engine,
		billing:  billing,
		market:   market,
		catalogs: catalogs,
		clock:    clock,
	}
}

type registration struct {
	request mediator.Request
	handler mediator.RequestHandler
}

func register(m mediator.Mediator, regs []registration) error {
	for _, reg := range regs {
		if err := m.Register(reflect.TypeOf(reg.request), reg.handler); err != nil {
			return err
		}
	}
	return nil
}

// RegisterFactoryHandlers registers ownership, production, storage and workforce handlers
func (r *HandlerRegistry) RegisterFactoryHandlers(m mediator.Mediator) error {
	return register(m, []registration{
		{&factoryCommands.CreateFactoryCommand{}, factoryCommands.NewCreateFactoryHandler(r.registry)},
		{&factoryCommands.RemoveFactoryCommand{}, factoryCommands.NewRemoveFactoryHandler(r.registry)},
		{&factoryCommands.BuyFactoryCommand{}, factoryCommands.NewBuyFactoryHandler(r.registry)},
		{&factoryCommands.SellFactoryCommand{}, factoryCommands.NewSellFactoryHandler(r.registry)},
		{&factoryCommands.UpgradeFactoryCommand{}, factoryCommands.NewUpgradeFactoryHandler(r.registry, r.clock)},
		{&factoryCommands.StartProductionCommand{}, factoryCommands.NewStartProductionHandler(r.engine)},
		{&factoryCommands.CancelProductionCommand{}, factoryCommands.NewCancelProductionHandler(r.engine)},
		{&factoryCommands.TickFactoriesCommand{}, factoryCommands.NewTickFactoriesHandler(r.engine)},
		{&factoryCommands.TeleportCommand{}, factoryCommands.NewTeleportHandler(r.registry)},
		{&factoryCommands.SetFastTravelCommand{}, factoryCommands.NewSetFastTravelHandler(r.registry)},
		{&factoryCommands.HireEmployeeCommand{}, factoryCommands.NewHireEmployeeHandler(r.registry)},
		{&factoryCommands.FireEmployeeCommand{}, factoryCommands.NewFireEmployeeHandler(r.registry)},
		{&factoryCommands.AdjustStorageCommand{}, factoryCommands.NewAdjustStorageHandler(r.storage)},
		{&factoryQueries.GetFactoryQuery{}, factoryQueries.NewGetFactoryHandler(r.registry, r.storage, r.engine)},
		{&factoryQueries.ListFactoriesQuery{}, factoryQueries.NewListFactoriesHandler(r.registry, r.engine)},
		{&factoryQueries.ListRecipesQuery{}, factoryQueries.NewListRecipesHandler(r.engine)},
	})
}

// RegisterBillingHandlers registers invoice generation, payment and overdue handlers
func (r *HandlerRegistry) RegisterBillingHandlers(m mediator.Mediator) error {
	return register(m, []registration{
		{&billingCommands.RunBillingCommand{}, billingCommands.NewRunBillingHandler(r.billing)},
		{&billingCommands.CheckOverdueCommand{}, billingCommands.NewCheckOverdueHandler(r.billing)},
		{&billingCommands.CleanupListingsCommand{}, billingCommands.NewCleanupListingsHandler(r.billing)},
		{&billingCommands.PayInvoiceCommand{}, billingCommands.NewPayInvoiceHandler(r.billing)},
		{&billingQueries.ListInvoicesQuery{}, billingQueries.NewListInvoicesHandler(r.billing)},
	})
}

// RegisterMarketplaceHandlers registers listing handlers
func (r *HandlerRegistry) RegisterMarketplaceHandlers(m mediator.Mediator) error {
	return register(m, []registration{
		{&marketCommands.CreateListingCommand{}, marketCommands.NewCreateListingHandler(r.market)},
		{&marketCommands.PurchaseListingCommand{}, marketCommands.NewPurchaseListingHandler(r.market)},
		{&marketCommands.CancelListingCommand{}, marketCommands.NewCancelListingHandler(r.market)},
		{&marketQueries.ListListingsQuery{}, marketQueries.NewListListingsHandler(r.market)},
	})
}

// RegisterCatalogHandlers registers the catalog reload handler
func (r *HandlerRegistry) RegisterCatalogHandlers(m mediator.Mediator) error {
	return register(m, []registration{
		{&catalogCommands.ReloadCatalogCommand{}, catalogCommands.NewReloadCatalogHandler(r.catalogs)},
	})
}

// CreateConfiguredMediator creates a mediator with every available handler
// registered and the given middleware installed in order.
func (r *HandlerRegistry) CreateConfiguredMediator(middlewares ...mediator.Middleware) (mediator.Mediator, error) {
	m := mediator.NewMediator()
	for _, mw := range middlewares {
		if mw != nil {
			m.RegisterMiddleware(mw)
		}
	}

	if err := r.RegisterFactoryHandlers(m); err != nil {
		return nil, err
	}
	if r.billing != nil {
		if err := r.RegisterBillingHandlers(m); err != nil {
			return nil, err
		}
	}
	if r.market != nil {
		if err := r.RegisterMarketplaceHandlers(m); err != nil {
			return nil, err
		}
	}
	if r.catalogs != nil {
		if err := r.RegisterCatalogHandlers(m); err != nil {
			return nil, err
		}
	}

	return m, nil
}
