// Package steps holds the godog step definitions. Every scenario drives a
// fully wired engine through its mediator against the shared test database.
package steps

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cucumber/godog"

	"github.com/factorycraft/factory-economy/internal/domain/billing"
	"github.com/factorycraft/factory-economy/internal/domain/factory"
	"github.com/factorycraft/factory-economy/internal/domain/marketplace"
	"github.com/factorycraft/factory-economy/internal/domain/shared"
	"github.com/factorycraft/factory-economy/internal/infrastructure/bootstrap"
	"github.com/factorycraft/factory-economy/internal/infrastructure/config"
	"github.com/factorycraft/factory-economy/test/helpers"
)

type economyContext struct {
	cfg     *config.Config
	clock   *shared.MockClock
	engine  *bootstrap.Engine
	players map[string]shared.PlayerID

	lastErr     error
	lastIssued  []*billing.Invoice
	lastOverdue []*billing.Invoice
	lastListing *marketplace.Listing
}

func (ec *economyContext) reset() error {
	if err := helpers.TruncateAllTables(); err != nil {
		return err
	}

	cfg := &config.Config{}
	config.SetDefaults(cfg)
	cfg.Catalog.ResourcesFile = "../../configs/resources.yaml"
	cfg.Catalog.RecipesFile = "../../configs/recipes.yaml"
	cfg.Catalog.RegionsFile = "../../configs/regions.yaml"

	ec.cfg = cfg
	ec.clock = shared.NewMockClock(time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC))
	ec.engine = nil
	ec.players = make(map[string]shared.PlayerID)
	ec.lastErr = nil
	ec.lastIssued = nil
	ec.lastOverdue = nil
	ec.lastListing = nil
	return nil
}

// economy builds the engine on first use so configuration steps can run first
func (ec *economyContext) economy(ctx context.Context) (*bootstrap.Engine, error) {
	if ec.engine != nil {
		return ec.engine, nil
	}
	engine, err := bootstrap.New(ctx, ec.cfg, bootstrap.Options{DB: helpers.SharedTestDB, Clock: ec.clock})
	if err != nil {
		return nil, fmt.Errorf("failed to build engine: %w", err)
	}
	ec.engine = engine
	return engine, nil
}

// rebuild discards the engine; the next step restores it from the database
func (ec *economyContext) rebuild() {
	ec.engine = nil
}

func (ec *economyContext) player(alias string) shared.PlayerID {
	id, ok := ec.players[alias]
	if !ok {
		id = shared.GeneratePlayerID()
		ec.players[alias] = id
	}
	return id
}

func (ec *economyContext) send(ctx context.Context, req interface{}) (interface{}, error) {
	engine, err := ec.economy(ctx)
	if err != nil {
		return nil, err
	}
	return engine.Mediator.Send(ctx, req)
}

func (ec *economyContext) theOperationSucceeds() error {
	if ec.lastErr != nil {
		return fmt.Errorf("expected success, got: %w", ec.lastErr)
	}
	return nil
}

func (ec *economyContext) theOperationFailsWith(kind string) error {
	if ec.lastErr == nil {
		return fmt.Errorf("expected a %q error, the operation succeeded", kind)
	}
	match, ok := errorKinds[kind]
	if !ok {
		return fmt.Errorf("unknown error kind %q", kind)
	}
	if !match(ec.lastErr) {
		return fmt.Errorf("expected a %q error, got: %v", kind, ec.lastErr)
	}
	return nil
}

func errorAs[T error](err error) bool {
	var target T
	return errors.As(err, &target)
}

var errorKinds = map[string]func(error) bool{
	"not owner":              errorAs[*factory.ErrNotOwner],
	"already owned":          errorAs[*factory.ErrAlreadyOwned],
	"insufficient funds":     errorAs[*shared.InsufficientFundsError],
	"insufficient materials": errorAs[*factory.ErrInsufficientMaterials],
	"invalid recipe":         errorAs[*factory.ErrInvalidRecipe],
	"production active":      errorAs[*factory.ErrProductionActive],
	"suspended":              errorAs[*factory.ErrFactorySuspended],
	"already paid":           errorAs[*billing.ErrAlreadyPaid],
	"self purchase":          errorAs[*marketplace.ErrSelfPurchase],
	"not found":              errorAs[*shared.NotFoundError],
}

func (ec *economyContext) timePasses(amount int, unit string) error {
	d := time.Duration(amount) * time.Second
	if strings.HasPrefix(unit, "hour") {
		d = time.Duration(amount) * time.Hour
	}
	ec.clock.Advance(d)
	return nil
}

// InitializeEconomyScenario registers every step against one shared scenario state
func InitializeEconomyScenario(sc *godog.ScenarioContext) {
	ec := &economyContext{}

	sc.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		return ctx, ec.reset()
	})

	sc.Step(`^the operation succeeds$`, ec.theOperationSucceeds)
	sc.Step(`^the operation fails with "([^"]*)"$`, ec.theOperationFailsWith)
	sc.Step(`^(\d+) (hours?) pass(?:es)?$`, ec.timePasses)

	registerFactorySteps(sc, ec)
	registerBillingSteps(sc, ec)
	registerMarketplaceSteps(sc, ec)
}
