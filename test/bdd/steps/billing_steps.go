package steps

import (
	"context"
	"fmt"
	"math"

	"github.com/cucumber/godog"

	"github.com/factorycraft/factory-economy/internal/application/billing/commands"
	"github.com/factorycraft/factory-economy/internal/application/billing/queries"
	"github.com/factorycraft/factory-economy/internal/domain/billing"
)

func registerBillingSteps(sc *godog.ScenarioContext, ec *economyContext) {
	sc.Step(`^the overdue policy is "([^"]*)"$`, ec.theOverduePolicyIs)
	sc.Step(`^the (TAX|SALARY) billing run execute(?:s|d)$`, ec.theBillingRunExecutes)
	sc.Step(`^overdue invoices are checked$`, ec.overdueInvoicesAreChecked)
	sc.Step(`^"([^"]*)" pays every unpaid invoice$`, ec.playerPaysEveryUnpaidInvoice)

	sc.Step(`^(\d+) (TAX|SALARY) invoices? (?:was|were) issued$`, ec.invoicesWereIssued)
	sc.Step(`^"([^"]*)" owes (\d+(?:\.\d+)?) in unpaid invoices$`, ec.playerOwes)
	sc.Step(`^(\d+) invoices? (?:is|are) overdue$`, ec.invoicesAreOverdue)
}

// theOverduePolicyIs reconfigures billing and restores the engine from the database
func (ec *economyContext) theOverduePolicyIs(policy string) error {
	if _, err := billing.ParseOverduePolicy(policy); err != nil {
		return err
	}
	ec.cfg.Billing.OverduePolicy = policy
	ec.rebuild()
	return nil
}

func (ec *economyContext) theBillingRunExecutes(ctx context.Context, kind string) error {
	resp, err := ec.send(ctx, &commands.RunBillingCommand{Kind: billing.InvoiceType(kind)})
	if err != nil {
		return err
	}
	ec.lastIssued = resp.(*commands.RunBillingResponse).Invoices
	return nil
}

func (ec *economyContext) overdueInvoicesAreChecked(ctx context.Context) error {
	resp, err := ec.send(ctx, &commands.CheckOverdueCommand{})
	if err != nil {
		return err
	}
	ec.lastOverdue = resp.(*commands.CheckOverdueResponse).Report.Overdue
	return nil
}

// playerPaysEveryUnpaidInvoice stops at the first failure and records it
func (ec *economyContext) playerPaysEveryUnpaidInvoice(ctx context.Context, alias string) error {
	player := ec.player(alias)
	resp, err := ec.send(ctx, &queries.ListInvoicesQuery{PlayerID: player, UnpaidOnly: true})
	if err != nil {
		return err
	}

	ec.lastErr = nil
	for _, inv := range resp.(*queries.ListInvoicesResponse).Invoices {
		if _, err := ec.send(ctx, &commands.PayInvoiceCommand{PlayerID: player, InvoiceID: inv.ID()}); err != nil {
			ec.lastErr = err
			return nil
		}
	}
	return nil
}

func (ec *economyContext) invoicesWereIssued(count int, kind string) error {
	if len(ec.lastIssued) != count {
		return fmt.Errorf("expected %d %s invoices, got %d", count, kind, len(ec.lastIssued))
	}
	for _, inv := range ec.lastIssued {
		if string(inv.Type()) != kind {
			return fmt.Errorf("invoice %s is %s, expected %s", inv.ID(), inv.Type(), kind)
		}
	}
	return nil
}

func (ec *economyContext) playerOwes(ctx context.Context, alias string, amount float64) error {
	resp, err := ec.send(ctx, &queries.ListInvoicesQuery{PlayerID: ec.player(alias), UnpaidOnly: true})
	if err != nil {
		return err
	}
	total := resp.(*queries.ListInvoicesResponse).Total
	if math.Abs(total-amount) > 0.001 {
		return fmt.Errorf("expected %s to owe %.2f, owes %.2f", alias, amount, total)
	}
	return nil
}

func (ec *economyContext) invoicesAreOverdue(count int) error {
	if len(ec.lastOverdue) != count {
		return fmt.Errorf("expected %d overdue invoices, got %d", count, len(ec.lastOverdue))
	}
	return nil
}
