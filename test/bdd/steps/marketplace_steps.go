package steps

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"

	billingCmd "github.com/factorycraft/factory-economy/internal/application/billing/commands"
	"github.com/factorycraft/factory-economy/internal/application/marketplace/commands"
	"github.com/factorycraft/factory-economy/internal/application/marketplace/queries"
)

func registerMarketplaceSteps(sc *godog.ScenarioContext, ec *economyContext) {
	sc.Step(`^"([^"]*)" listed (\d+) "([^"]*)" from "([^"]*)" at (\d+(?:\.\d+)?) each$`, ec.playerListed)
	sc.Step(`^"([^"]*)" lists (\d+) "([^"]*)" from "([^"]*)" at (\d+(?:\.\d+)?) each$`, ec.playerLists)
	sc.Step(`^"([^"]*)" buys the listing into "([^"]*)"$`, ec.playerBuysTheListing)
	sc.Step(`^"([^"]*)" cancels the listing$`, ec.playerCancelsTheListing)
	sc.Step(`^expired listings are cleaned up$`, ec.expiredListingsAreCleanedUp)
	sc.Step(`^there are (\d+) active listings$`, ec.thereAreActiveListings)
}

func (ec *economyContext) createListing(ctx context.Context, alias string, amount int, resource, id string, unitPrice float64) error {
	resp, err := ec.send(ctx, &commands.CreateListingCommand{
		PlayerID:   ec.player(alias),
		FactoryID:  id,
		ResourceID: resource,
		Amount:     amount,
		UnitPrice:  unitPrice,
	})
	if err != nil {
		return err
	}
	ec.lastListing = resp.(*commands.CreateListingResponse).Listing
	return nil
}

func (ec *economyContext) playerListed(ctx context.Context, alias string, amount int, resource, id string, unitPrice float64) error {
	return ec.createListing(ctx, alias, amount, resource, id, unitPrice)
}

func (ec *economyContext) playerLists(ctx context.Context, alias string, amount int, resource, id string, unitPrice float64) error {
	ec.lastErr = ec.createListing(ctx, alias, amount, resource, id, unitPrice)
	return nil
}

func (ec *economyContext) playerBuysTheListing(ctx context.Context, alias, target string) error {
	if ec.lastListing == nil {
		return fmt.Errorf("no listing was created")
	}
	_, ec.lastErr = ec.send(ctx, &commands.PurchaseListingCommand{
		PlayerID:        ec.player(alias),
		ListingID:       ec.lastListing.ID(),
		TargetFactoryID: target,
	})
	return nil
}

func (ec *economyContext) playerCancelsTheListing(ctx context.Context, alias string) error {
	if ec.lastListing == nil {
		return fmt.Errorf("no listing was created")
	}
	_, ec.lastErr = ec.send(ctx, &commands.CancelListingCommand{PlayerID: ec.player(alias), ListingID: ec.lastListing.ID()})
	return nil
}

func (ec *economyContext) expiredListingsAreCleanedUp(ctx context.Context) error {
	_, err := ec.send(ctx, &billingCmd.CleanupListingsCommand{})
	return err
}

func (ec *economyContext) thereAreActiveListings(ctx context.Context, count int) error {
	resp, err := ec.send(ctx, &queries.ListListingsQuery{})
	if err != nil {
		return err
	}
	if got := len(resp.(*queries.ListListingsResponse).Listings); got != count {
		return fmt.Errorf("expected %d active listings, got %d", count, got)
	}
	return nil
}
