package steps

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"

	"github.com/factorycraft/factory-economy/internal/application/factory/commands"
	"github.com/factorycraft/factory-economy/internal/application/factory/queries"
	"github.com/factorycraft/factory-economy/internal/domain/storage"
)

func registerFactorySteps(sc *godog.ScenarioContext, ec *economyContext) {
	sc.Step(`^a ([A-Z]+) factory "([^"]*)" in region "([^"]*)" priced at (\d+(?:\.\d+)?)$`, ec.aFactoryInRegionPricedAt)
	sc.Step(`^player "([^"]*)" owns factory "([^"]*)"$`, ec.playerOwnsFactory)
	sc.Step(`^player "([^"]*)" has (\d+(?:\.\d+)?) credits$`, ec.playerHasCredits)
	sc.Step(`^factory "([^"]*)" has (\d+) "([^"]*)" in its (input|output)$`, ec.factoryHasInStorage)
	sc.Step(`^"([^"]*)" hired "([^"]*)" at "([^"]*)" for a wage of (\d+(?:\.\d+)?)$`, ec.playerHiredEmployee)
	sc.Step(`^"([^"]*)" started "([^"]*)" at "([^"]*)"$`, ec.playerStartedRecipe)

	sc.Step(`^"([^"]*)" buys factory "([^"]*)"$`, ec.playerBuysFactory)
	sc.Step(`^"([^"]*)" sells factory "([^"]*)"$`, ec.playerSellsFactory)
	sc.Step(`^"([^"]*)" starts "([^"]*)" at "([^"]*)"$`, ec.playerStartsRecipe)
	sc.Step(`^(\d+) seconds pass and the factories tick$`, ec.secondsPassAndFactoriesTick)

	sc.Step(`^player "([^"]*)" should have (\d+(?:\.\d+)?) credits$`, ec.playerShouldHaveCredits)
	sc.Step(`^factory "([^"]*)" (input|output) holds (\d+) "([^"]*)"$`, ec.factoryCompartmentHolds)
	sc.Step(`^factory "([^"]*)" status is "([^"]*)"$`, ec.factoryStatusIs)
	sc.Step(`^factory "([^"]*)" is owned by "([^"]*)"$`, ec.factoryIsOwnedBy)
	sc.Step(`^factory "([^"]*)" has no owner$`, ec.factoryHasNoOwner)
	sc.Step(`^factory "([^"]*)" is (suspended|not suspended)$`, ec.factorySuspension)
}

// ============================================================================
// Setup Steps
// ============================================================================

func (ec *economyContext) aFactoryInRegionPricedAt(ctx context.Context, factoryType, id, region string, price float64) error {
	_, err := ec.send(ctx, &commands.CreateFactoryCommand{ID: id, RegionRef: region, Type: factoryType, Price: price})
	return err
}

func (ec *economyContext) playerOwnsFactory(ctx context.Context, alias, id string) error {
	_, err := ec.send(ctx, &commands.BuyFactoryCommand{PlayerID: ec.player(alias), FactoryID: id})
	return err
}

func (ec *economyContext) playerHasCredits(ctx context.Context, alias string, amount float64) error {
	engine, err := ec.economy(ctx)
	if err != nil {
		return err
	}
	return engine.Accounts.SetBalance(ctx, ec.player(alias), amount)
}

func (ec *economyContext) factoryHasInStorage(ctx context.Context, id string, amount int, resource, compartment string) error {
	_, err := ec.send(ctx, &commands.AdjustStorageCommand{
		FactoryID:   id,
		Compartment: storage.Compartment(compartment),
		ResourceID:  resource,
		Delta:       amount,
	})
	return err
}

func (ec *economyContext) playerHiredEmployee(ctx context.Context, alias, name, id string, wage float64) error {
	_, err := ec.send(ctx, &commands.HireEmployeeCommand{PlayerID: ec.player(alias), FactoryID: id, Name: name, Wage: wage})
	return err
}

func (ec *economyContext) playerStartedRecipe(ctx context.Context, alias, recipe, id string) error {
	_, err := ec.send(ctx, &commands.StartProductionCommand{PlayerID: ec.player(alias), FactoryID: id, RecipeID: recipe})
	return err
}

// ============================================================================
// Action Steps
// ============================================================================

func (ec *economyContext) playerBuysFactory(ctx context.Context, alias, id string) error {
	_, ec.lastErr = ec.send(ctx, &commands.BuyFactoryCommand{PlayerID: ec.player(alias), FactoryID: id})
	return nil
}

func (ec *economyContext) playerSellsFactory(ctx context.Context, alias, id string) error {
	_, ec.lastErr = ec.send(ctx, &commands.SellFactoryCommand{PlayerID: ec.player(alias), FactoryID: id})
	return nil
}

func (ec *economyContext) playerStartsRecipe(ctx context.Context, alias, recipe, id string) error {
	_, ec.lastErr = ec.send(ctx, &commands.StartProductionCommand{PlayerID: ec.player(alias), FactoryID: id, RecipeID: recipe})
	return nil
}

func (ec *economyContext) secondsPassAndFactoriesTick(ctx context.Context, seconds int) error {
	ec.clock.AdvanceSeconds(seconds)
	resp, err := ec.send(ctx, &commands.TickFactoriesCommand{})
	if err != nil {
		return err
	}
	if failed := resp.(*commands.TickFactoriesResponse).Summary.Failed; failed > 0 {
		return fmt.Errorf("%d factories failed to tick", failed)
	}
	return nil
}

// ============================================================================
// Assertion Steps
// ============================================================================

func (ec *economyContext) playerShouldHaveCredits(ctx context.Context, alias string, amount float64) error {
	engine, err := ec.economy(ctx)
	if err != nil {
		return err
	}
	balance, err := engine.Accounts.Balance(ctx, ec.player(alias))
	if err != nil {
		return err
	}
	if diff := balance - amount; diff > 0.001 || diff < -0.001 {
		return fmt.Errorf("expected %s to have %.2f credits, has %.2f", alias, amount, balance)
	}
	return nil
}

func (ec *economyContext) details(ctx context.Context, id string) (*queries.FactoryDetails, error) {
	resp, err := ec.send(ctx, &queries.GetFactoryQuery{FactoryID: id})
	if err != nil {
		return nil, err
	}
	return resp.(*queries.FactoryDetails), nil
}

func (ec *economyContext) factoryCompartmentHolds(ctx context.Context, id, compartment string, amount int, resource string) error {
	d, err := ec.details(ctx, id)
	if err != nil {
		return err
	}
	held := d.Input[resource]
	if compartment == "output" {
		held = d.Output[resource]
	}
	if held != amount {
		return fmt.Errorf("expected %s %s to hold %d %s, holds %d", id, compartment, amount, resource, held)
	}
	return nil
}

func (ec *economyContext) factoryStatusIs(ctx context.Context, id, status string) error {
	engine, err := ec.economy(ctx)
	if err != nil {
		return err
	}
	got, err := engine.Registry.Status(id)
	if err != nil {
		return err
	}
	if string(got) != status {
		return fmt.Errorf("expected %s status %s, got %s", id, status, got)
	}
	return nil
}

func (ec *economyContext) factoryIsOwnedBy(ctx context.Context, id, alias string) error {
	d, err := ec.details(ctx, id)
	if err != nil {
		return err
	}
	if !d.Factory.IsOwnedBy(ec.player(alias)) {
		return fmt.Errorf("expected %s to be owned by %s", id, alias)
	}
	return nil
}

func (ec *economyContext) factoryHasNoOwner(ctx context.Context, id string) error {
	d, err := ec.details(ctx, id)
	if err != nil {
		return err
	}
	if owner := d.Factory.Owner(); owner != nil {
		return fmt.Errorf("expected %s to be unowned, owned by %s", id, owner)
	}
	return nil
}

func (ec *economyContext) factorySuspension(ctx context.Context, id, state string) error {
	d, err := ec.details(ctx, id)
	if err != nil {
		return err
	}
	want := state == "suspended"
	if d.Factory.IsSuspended() != want {
		return fmt.Errorf("expected %s to be %s", id, state)
	}
	return nil
}
