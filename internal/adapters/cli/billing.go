package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/factorycraft/factory-economy/internal/application/billing/commands"
	"github.com/factorycraft/factory-economy/internal/application/billing/queries"
	"github.com/factorycraft/factory-economy/internal/application/mediator"
	"github.com/factorycraft/factory-economy/internal/domain/billing"
	"github.com/factorycraft/factory-economy/internal/infrastructure/bootstrap"
)

// NewBillingCommand creates the billing command with subcommands
func NewBillingCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "billing",
		Short: "Taxes, salaries and invoices",
		Long: `Issue and settle factory invoices.

Every owned factory is taxed on the tax interval and billed its workers'
wages on the salary interval. Invoices are due after a grace period; what
happens to overdue invoices depends on billing.overdue_policy.

Examples:
  factoryctl billing run tax
  factoryctl billing run salary --force
  factoryctl billing overdue
  factoryctl billing invoices --unpaid
  factoryctl billing pay <invoice-id>`,
	}

	cmd.AddCommand(newBillingRunCommand())
	cmd.AddCommand(newBillingOverdueCommand())
	cmd.AddCommand(newBillingInvoicesCommand())
	cmd.AddCommand(newBillingPayCommand())

	return cmd
}

func newBillingRunCommand() *cobra.Command {
	var forceRun bool

	cmd := &cobra.Command{
		Use:   "run <tax|salary>",
		Short: "Issue one round of invoices",
		Long: `Issue one round of invoices. A run inside the interval since the
previous one issues nothing unless --force-run is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := billing.ParseInvoiceType(args[0])
			if err != nil {
				return err
			}
			return withEngine(cmd, true, func(ctx context.Context, e *bootstrap.Engine) error {
				resp, err := mediator.SendAs[*commands.RunBillingResponse](ctx, e.Mediator, &commands.RunBillingCommand{Kind: kind, Force: forceRun})
				if err != nil {
					return err
				}
				if len(resp.Invoices) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "No %s invoices issued\n", kind)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Issued %d %s invoices\n\n", len(resp.Invoices), kind)
				return printInvoices(cmd.OutOrStdout(), resp.Invoices, e.Clock.Now())
			})
		},
	}

	cmd.Flags().BoolVar(&forceRun, "force-run", false, "Issue invoices even if the interval has not elapsed")
	return cmd
}

func newBillingOverdueCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "overdue",
		Short: "Apply the overdue policy now",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd, true, func(ctx context.Context, e *bootstrap.Engine) error {
				resp, err := mediator.SendAs[*commands.CheckOverdueResponse](ctx, e.Mediator, &commands.CheckOverdueCommand{})
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				r := resp.Report
				fmt.Fprintf(out, "%d overdue invoices\n", len(r.Overdue))
				for _, id := range r.Suspended {
					fmt.Fprintf(out, "  suspended %s\n", id)
				}
				for _, id := range r.Resumed {
					fmt.Fprintf(out, "  resumed %s\n", id)
				}
				if len(r.Overdue) > 0 {
					fmt.Fprintln(out)
					return printInvoices(out, r.Overdue, e.Clock.Now())
				}
				return nil
			})
		},
	}
}

func newBillingInvoicesCommand() *cobra.Command {
	var (
		factoryID string
		unpaid    bool
	)

	cmd := &cobra.Command{
		Use:   "invoices",
		Short: "List invoices",
		Long: `List the acting player's invoices, or the unpaid invoices of one factory.

Examples:
  factoryctl billing invoices --unpaid
  factoryctl billing invoices --factory workshop_1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := &queries.ListInvoicesQuery{FactoryID: factoryID, UnpaidOnly: unpaid}
			if factoryID == "" {
				player, err := resolvePlayer()
				if err != nil {
					return err
				}
				query.PlayerID = player
			}

			return withEngine(cmd, false, func(ctx context.Context, e *bootstrap.Engine) error {
				resp, err := mediator.SendAs[*queries.ListInvoicesResponse](ctx, e.Mediator, query)
				if err != nil {
					return err
				}
				if len(resp.Invoices) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No invoices found")
					return nil
				}
				if err := printInvoices(cmd.OutOrStdout(), resp.Invoices, e.Clock.Now()); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "\nUnpaid total: %.2f\n", resp.Total)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&factoryID, "factory", "", "Only unpaid invoices of this factory")
	cmd.Flags().BoolVar(&unpaid, "unpaid", false, "Hide paid invoices")
	return cmd
}

func newBillingPayCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pay <invoice-id>",
		Short: "Pay an invoice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			player, err := resolvePlayer()
			if err != nil {
				return err
			}
			return withEngine(cmd, true, func(ctx context.Context, e *bootstrap.Engine) error {
				resp, err := mediator.SendAs[*commands.PayInvoiceResponse](ctx, e.Mediator, &commands.PayInvoiceCommand{PlayerID: player, InvoiceID: args[0]})
				if err != nil {
					return err
				}
				inv := resp.Invoice
				fmt.Fprintf(cmd.OutOrStdout(), "Paid %s invoice %s for %s: %.2f\n", inv.Type(), inv.ID(), inv.FactoryID(), inv.Amount())
				return nil
			})
		},
	}
}

func printInvoices(out io.Writer, invoices []*billing.Invoice, now time.Time) error {
	w := newTable(out)
	fmt.Fprintln(w, "ID\tFACTORY\tTYPE\tAMOUNT\tISSUED\tDUE\tSTATE")
	for _, inv := range invoices {
		state := "unpaid"
		switch {
		case inv.IsPaid():
			state = "paid"
		case inv.IsOverdue(now):
			state = "OVERDUE"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%s\t%s\t%s\n",
			inv.ID(), inv.FactoryID(), inv.Type(), inv.Amount(), formatTime(inv.IssuedAt()), formatTime(inv.DueAt()), state)
	}
	return w.Flush()
}
