package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/factorycraft/factory-economy/internal/application/marketplace/commands"
	"github.com/factorycraft/factory-economy/internal/application/marketplace/queries"
	"github.com/factorycraft/factory-economy/internal/application/mediator"
	"github.com/factorycraft/factory-economy/internal/infrastructure/bootstrap"
)

// NewMarketCommand creates the market command with subcommands
func NewMarketCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "market",
		Short: "Player-to-player listings of factory output",
		Long: `Sell output goods to other players.

Listed goods leave the seller's output compartment and are held until the
listing is bought, cancelled or expires. A purchase delivers into the
buyer's chosen factory input compartment.

Examples:
  factoryctl market list
  factoryctl market sell workshop_1 steel_ingot 32 4.50
  factoryctl market buy <listing-id> --into foundry_1
  factoryctl market cancel <listing-id>`,
	}

	cmd.AddCommand(newMarketListCommand())
	cmd.AddCommand(newMarketSellCommand())
	cmd.AddCommand(newMarketBuyCommand())
	cmd.AddCommand(newMarketCancelCommand())

	return cmd
}

func newMarketListCommand() *cobra.Command {
	var mine bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List active listings",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := &queries.ListListingsQuery{}
			if mine {
				player, err := resolvePlayer()
				if err != nil {
					return err
				}
				query.SellerID = &player
			}

			return withEngine(cmd, false, func(ctx context.Context, e *bootstrap.Engine) error {
				resp, err := mediator.SendAs[*queries.ListListingsResponse](ctx, e.Mediator, query)
				if err != nil {
					return err
				}
				if len(resp.Listings) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No listings")
					return nil
				}

				ttl := e.Config.Marketplace.ListingTTL
				w := newTable(cmd.OutOrStdout())
				fmt.Fprintln(w, "ID\tSELLER\tFACTORY\tRESOURCE\tAMOUNT\tUNIT\tTOTAL\tEXPIRES")
				for _, l := range resp.Listings {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%.2f\t%.2f\t%s\n",
						l.ID(), l.SellerID(), l.FactoryID(), l.ResourceID(), l.Amount(), l.UnitPrice(), l.Total(),
						formatTime(l.CreatedAt().Add(ttl)))
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().BoolVar(&mine, "mine", false, "Only the acting player's listings")
	return cmd
}

func newMarketSellCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sell <factory-id> <resource-id> <amount> <unit-price>",
		Short: "List output goods for sale",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid amount %q", args[2])
			}
			unitPrice, err := strconv.ParseFloat(args[3], 64)
			if err != nil {
				return fmt.Errorf("invalid unit price %q", args[3])
			}
			player, err := resolvePlayer()
			if err != nil {
				return err
			}

			return withEngine(cmd, true, func(ctx context.Context, e *bootstrap.Engine) error {
				resp, err := mediator.SendAs[*commands.CreateListingResponse](ctx, e.Mediator, &commands.CreateListingCommand{
					PlayerID: player, FactoryID: args[0], ResourceID: args[1], Amount: amount, UnitPrice: unitPrice,
				})
				if err != nil {
					return err
				}
				l := resp.Listing
				fmt.Fprintf(cmd.OutOrStdout(), "Listed %d %s at %.2f each (listing %s)\n", l.Amount(), l.ResourceID(), l.UnitPrice(), l.ID())
				return nil
			})
		},
	}
}

func newMarketBuyCommand() *cobra.Command {
	var into string

	cmd := &cobra.Command{
		Use:   "buy <listing-id>",
		Short: "Buy a listing into one of your factories",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			player, err := resolvePlayer()
			if err != nil {
				return err
			}
			return withEngine(cmd, true, func(ctx context.Context, e *bootstrap.Engine) error {
				resp, err := mediator.SendAs[*commands.PurchaseListingResponse](ctx, e.Mediator, &commands.PurchaseListingCommand{
					PlayerID: player, ListingID: args[0], TargetFactoryID: into,
				})
				if err != nil {
					return err
				}
				l := resp.Listing
				fmt.Fprintf(cmd.OutOrStdout(), "Bought %d %s for %.2f into %s\n", l.Amount(), l.ResourceID(), resp.Paid, into)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&into, "into", "", "Factory receiving the goods (required)")
	cmd.MarkFlagRequired("into")
	return cmd
}

func newMarketCancelCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <listing-id>",
		Short: "Withdraw a listing and return its goods",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			player, err := resolvePlayer()
			if err != nil {
				return err
			}
			return withEngine(cmd, true, func(ctx context.Context, e *bootstrap.Engine) error {
				if _, err := e.Mediator.Send(ctx, &commands.CancelListingCommand{PlayerID: player, ListingID: args[0]}); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cancelled listing %s\n", args[0])
				return nil
			})
		},
	}
}
