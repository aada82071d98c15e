// Package bootstrap assembles the factory economy from configuration.
// The daemon and the admin CLI both build their engine here so they share
// one wiring of repositories, services and mediator middleware.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/factorycraft/factory-economy/internal/adapters/catalogfile"
	"github.com/factorycraft/factory-economy/internal/adapters/economy"
	"github.com/factorycraft/factory-economy/internal/adapters/metrics"
	"github.com/factorycraft/factory-economy/internal/adapters/persistence"
	"github.com/factorycraft/factory-economy/internal/adapters/snapshot"
	"github.com/factorycraft/factory-economy/internal/adapters/world"
	billingServices "github.com/factorycraft/factory-economy/internal/application/billing/services"
	catalogServices "github.com/factorycraft/factory-economy/internal/application/catalog/services"
	"github.com/factorycraft/factory-economy/internal/application/common"
	factoryServices "github.com/factorycraft/factory-economy/internal/application/factory/services"
	marketServices "github.com/factorycraft/factory-economy/internal/application/marketplace/services"
	"github.com/factorycraft/factory-economy/internal/application/mediator"
	"github.com/factorycraft/factory-economy/internal/application/ratelimit"
	"github.com/factorycraft/factory-economy/internal/application/setup"
	"github.com/factorycraft/factory-economy/internal/domain/billing"
	"github.com/factorycraft/factory-economy/internal/domain/catalog"
	"github.com/factorycraft/factory-economy/internal/domain/factory"
	"github.com/factorycraft/factory-economy/internal/domain/shared"
	"github.com/factorycraft/factory-economy/internal/infrastructure/config"
	"github.com/factorycraft/factory-economy/internal/infrastructure/database"
)

// Options overrides parts of the wiring. Zero values select the production defaults.
type Options struct {
	// DB is used instead of opening cfg.Database. The caller keeps ownership.
	DB     *gorm.DB
	Clock  shared.Clock
	Logger *slog.Logger
}

// Engine is a fully wired factory economy
type Engine struct {
	Config *config.Config
	DB     *gorm.DB
	Clock  shared.Clock
	Logger *slog.Logger

	Accounts   *economy.AccountService
	Regions    *world.RegionTable
	Catalogs   *catalogServices.Loader
	Registry   *factoryServices.Registry
	Storage    *factoryServices.StorageService
	Production *factoryServices.ProductionEngine
	Billing    *billingServices.BillingScheduler
	Market     *marketServices.Marketplace
	Snapshots  *snapshot.Exporter
	Mediator   mediator.Mediator

	ownsDB bool
}

// New opens the database, loads the catalogs and the region table, restores
// persisted factories and returns a ready engine.
func New(ctx context.Context, cfg *config.Config, opts Options) (*Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	clock := opts.Clock
	if clock == nil {
		clock = shared.NewRealClock()
	}
	logger := opts.Logger
	if logger == nil {
		logger = common.DiscardLogger()
	}

	db := opts.DB
	ownsDB := false
	if db == nil {
		var err error
		db, err = database.NewConnection(&cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		ownsDB = true
		if err := database.AutoMigrate(db); err != nil {
			database.Close(db)
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	e := &Engine{Config: cfg, DB: db, Clock: clock, Logger: logger, ownsDB: ownsDB}
	if err := e.wire(ctx); err != nil {
		e.Close()
		return nil, err
	}
	return e, nil
}

func (e *Engine) wire(ctx context.Context) error {
	cfg := e.Config

	regions, err := world.LoadRegionTable(cfg.Catalog.RegionsFile)
	if err != nil {
		return err
	}
	e.Regions = regions

	source, err := catalogfile.New(cfg.Catalog.ResourcesFile, cfg.Catalog.RecipesFile)
	if err != nil {
		return err
	}
	resources := catalog.NewResourceCatalog(nil)
	recipes := catalog.NewRecipeCatalog()
	e.Catalogs = catalogServices.NewLoader(resources, recipes, source, e.Logger)
	if _, err := e.Catalogs.Reload(ctx); err != nil {
		return fmt.Errorf("failed to load catalogs: %w", err)
	}

	billingSettings, err := BillingSettings(cfg.Billing)
	if err != nil {
		return err
	}

	transactor := persistence.NewGormTransactor(e.DB)
	e.Accounts = economy.NewAccountService(e.DB, cfg.Economy.StartingBalance, e.Clock)

	e.Registry = factoryServices.NewRegistry(
		persistence.NewGormFactoryRepository(e.DB),
		persistence.NewGormLedgerRepository(e.DB),
		transactor,
		e.Accounts,
		regions,
		world.NewLogMover(e.Logger),
		e.Clock,
		e.Logger,
		FactorySettings(cfg.Factory),
	)
	if err := e.Registry.Load(ctx); err != nil {
		return fmt.Errorf("failed to restore factories: %w", err)
	}

	e.Storage = factoryServices.NewStorageService(e.Registry)
	e.Production = factoryServices.NewProductionEngine(e.Registry, recipes, resources, world.NewLogCommandRunner(e.Logger))

	listings := persistence.NewGormListingRepository(e.DB)
	invoices := persistence.NewGormInvoiceRepository(e.DB)
	e.Market = marketServices.NewMarketplace(e.Registry, e.Storage, listings, e.Accounts, e.Clock, e.Logger, cfg.Marketplace.ListingTTL)
	e.Billing = billingServices.NewBillingScheduler(
		e.Registry,
		invoices,
		persistence.NewGormBillingRunRepository(e.DB),
		e.Accounts,
		transactor,
		e.Market,
		e.Clock,
		e.Logger,
		billingSettings,
	)
	e.Snapshots = snapshot.NewExporter(e.Registry, e.Storage, invoices, listings, e.Clock)

	middlewares, err := e.middlewares()
	if err != nil {
		return err
	}
	handlers := setup.NewHandlerRegistry(e.Registry, e.Storage, e.Production, e.Billing, e.Market, e.Catalogs, e.Clock)
	e.Mediator, err = handlers.CreateConfiguredMediator(middlewares...)
	if err != nil {
		return fmt.Errorf("failed to register handlers: %w", err)
	}
	return nil
}

// middlewares installs command metrics outermost so rate-limited requests are counted too
func (e *Engine) middlewares() ([]mediator.Middleware, error) {
	var mws []mediator.Middleware

	if e.Config.Metrics.Enabled {
		metrics.InitRegistry()

		production := metrics.NewProductionMetricsCollector()
		if err := production.Register(); err != nil {
			return nil, fmt.Errorf("failed to register production metrics: %w", err)
		}
		metrics.SetGlobalProductionCollector(production)

		billingCollector := metrics.NewBillingMetricsCollector()
		if err := billingCollector.Register(); err != nil {
			return nil, fmt.Errorf("failed to register billing metrics: %w", err)
		}
		metrics.SetGlobalBillingCollector(billingCollector)

		commands := metrics.NewCommandMetricsCollector()
		if err := commands.Register(); err != nil {
			return nil, fmt.Errorf("failed to register command metrics: %w", err)
		}
		mws = append(mws, metrics.PrometheusMiddleware(commands))
	}

	if e.Config.RateLimit.Enabled {
		limiter := ratelimit.NewPlayerLimiter(e.Config.RateLimit.PerSecond, e.Config.RateLimit.Burst)
		mws = append(mws, ratelimit.Middleware(limiter))
	}
	return mws, nil
}

// Close releases the database when New opened it
func (e *Engine) Close() error {
	if e.ownsDB && e.DB != nil {
		return database.Close(e.DB)
	}
	return nil
}

// FactorySettings maps the factory section of the config onto registry tuning
func FactorySettings(cfg config.FactoryConfig) factoryServices.Settings {
	return factoryServices.Settings{
		MaxLevel:           cfg.MaxLevel,
		SellMultiplier:     cfg.SellMultiplier,
		UpgradeCostFactor:  cfg.UpgradeCostFactor,
		UpgradeDuration:    cfg.UpgradeDuration,
		BaseSlots:          cfg.BaseSlots,
		SlotsPerLevel:      cfg.SlotsPerLevel,
		StackSize:          cfg.StackSize,
		ClearStorageOnSell: cfg.ClearStorageOnSell,
		NoPartsWindow:      cfg.NoPartsWindow,
		MaxEmployees:       cfg.MaxEmployees,
		Workforce: factory.WorkforceBonus{
			PerEmployee: cfg.BonusPerEmployee,
			Max:         cfg.MaxBonus,
		},
	}
}

// BillingSettings maps the billing section of the config onto scheduler tuning
func BillingSettings(cfg config.BillingConfig) (billingServices.Settings, error) {
	policy, err := billing.ParseOverduePolicy(cfg.OverduePolicy)
	if err != nil {
		return billingServices.Settings{}, err
	}
	return billingServices.Settings{
		TaxInterval:    cfg.TaxInterval,
		SalaryInterval: cfg.SalaryInterval,
		TaxGrace:       cfg.TaxGrace,
		SalaryGrace:    cfg.SalaryGrace,
		Tax: billing.TaxPolicy{
			Rate:            cfg.TaxRate,
			LevelMultiplier: cfg.TaxLevelMultiplier,
		},
		Overdue: policy,
	}, nil
}
