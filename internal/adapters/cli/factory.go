package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/factorycraft/factory-economy/internal/application/factory/commands"
	"github.com/factorycraft/factory-economy/internal/application/factory/queries"
	"github.com/factorycraft/factory-economy/internal/application/mediator"
	"github.com/factorycraft/factory-economy/internal/domain/factory"
	"github.com/factorycraft/factory-economy/internal/domain/shared"
	"github.com/factorycraft/factory-economy/internal/domain/storage"
	"github.com/factorycraft/factory-economy/internal/infrastructure/bootstrap"
)

// NewFactoryCommand creates the factory command with subcommands
func NewFactoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "factory",
		Short: "Factory ownership, production and storage",
		Long: `Manage factories: define them, change hands, run recipes and move goods.

Factory types: WORKSHOP, FOUNDRY, REFINERY, ASSEMBLY

Examples:
  factoryctl factory create --id workshop_1 --region factory_workshop_1 --type WORKSHOP --price 500
  factoryctl factory list --unowned
  factoryctl factory buy workshop_1
  factoryctl factory start workshop_1 smelt_steel
  factoryctl factory show workshop_1`,
	}

	cmd.AddCommand(newFactoryCreateCommand())
	cmd.AddCommand(newFactoryRemoveCommand())
	cmd.AddCommand(newFactoryBuyCommand())
	cmd.AddCommand(newFactorySellCommand())
	cmd.AddCommand(newFactoryUpgradeCommand())
	cmd.AddCommand(newFactoryStartCommand())
	cmd.AddCommand(newFactoryCancelCommand())
	cmd.AddCommand(newFactoryTickCommand())
	cmd.AddCommand(newFactoryTeleportCommand())
	cmd.AddCommand(newFactoryFastTravelCommand())
	cmd.AddCommand(newFactoryHireCommand())
	cmd.AddCommand(newFactoryFireCommand())
	cmd.AddCommand(newFactoryStorageCommand())
	cmd.AddCommand(newFactoryShowCommand())
	cmd.AddCommand(newFactoryListCommand())
	cmd.AddCommand(newFactoryRecipesCommand())

	return cmd
}

func newFactoryCreateCommand() *cobra.Command {
	var (
		id           string
		region       string
		factoryType  string
		price        float64
		noFastTravel bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Define a new unowned factory",
		Long: `Define a new unowned level-1 factory bound to a region.

The fast-travel point defaults to the region's spawn, or the centre of its
floor when the region has none. Pass --no-fast-travel to leave it unset.

Example:
  factoryctl factory create --id workshop_1 --region factory_workshop_1 --type WORKSHOP --price 500`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd, true, func(ctx context.Context, e *bootstrap.Engine) error {
				var fastTravel *factory.Location
				if !noFastTravel {
					loc, err := e.Regions.SpawnPoint(region)
					if err != nil {
						return err
					}
					fastTravel = loc
				}

				resp, err := mediator.SendAs[*commands.CreateFactoryResponse](ctx, e.Mediator, &commands.CreateFactoryCommand{
					ID:         id,
					RegionRef:  region,
					Type:       factoryType,
					Price:      price,
					FastTravel: fastTravel,
				})
				if err != nil {
					return err
				}
				f := resp.Factory
				fmt.Fprintf(cmd.OutOrStdout(), "Created %s factory %s in %s (price %.2f)\n", f.Type(), f.ID(), f.RegionRef(), f.Price())
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Factory id (required)")
	cmd.Flags().StringVar(&region, "region", "", "Region reference (required)")
	cmd.Flags().StringVar(&factoryType, "type", "", "Factory type (required)")
	cmd.Flags().Float64Var(&price, "price", 0, "Purchase price")
	cmd.Flags().BoolVar(&noFastTravel, "no-fast-travel", false, "Do not set a fast-travel point")
	cmd.MarkFlagRequired("id")
	cmd.MarkFlagRequired("region")
	cmd.MarkFlagRequired("type")

	return cmd
}

func newFactoryRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <factory-id>",
		Short: "Delete a factory and its storage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd, true, func(ctx context.Context, e *bootstrap.Engine) error {
				resp, err := mediator.SendAs[*commands.RemoveFactoryResponse](ctx, e.Mediator, &commands.RemoveFactoryCommand{FactoryID: args[0]})
				if err != nil {
					return err
				}
				if !resp.Removed {
					fmt.Fprintf(cmd.OutOrStdout(), "Factory %s does not exist\n", args[0])
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed factory %s\n", args[0])
				return nil
			})
		},
	}
}

func newFactoryBuyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "buy <factory-id>",
		Short: "Buy an unowned factory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			player, err := resolvePlayer()
			if err != nil {
				return err
			}
			return withEngine(cmd, true, func(ctx context.Context, e *bootstrap.Engine) error {
				resp, err := mediator.SendAs[*commands.BuyFactoryResponse](ctx, e.Mediator, &commands.BuyFactoryCommand{PlayerID: player, FactoryID: args[0]})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Bought factory %s for %.2f\n", resp.FactoryID, resp.Price)
				return nil
			})
		},
	}
}

func newFactorySellCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sell <factory-id>",
		Short: "Sell an owned factory back to the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			player, err := resolvePlayer()
			if err != nil {
				return err
			}
			return withEngine(cmd, true, func(ctx context.Context, e *bootstrap.Engine) error {
				resp, err := mediator.SendAs[*commands.SellFactoryResponse](ctx, e.Mediator, &commands.SellFactoryCommand{PlayerID: player, FactoryID: args[0]})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Sold factory %s for %.2f\n", resp.FactoryID, resp.Payout)
				return nil
			})
		},
	}
}

func newFactoryUpgradeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "upgrade <factory-id>",
		Short: "Pay for and start a level upgrade",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			player, err := resolvePlayer()
			if err != nil {
				return err
			}
			return withEngine(cmd, true, func(ctx context.Context, e *bootstrap.Engine) error {
				resp, err := mediator.SendAs[*commands.UpgradeFactoryResponse](ctx, e.Mediator, &commands.UpgradeFactoryCommand{PlayerID: player, FactoryID: args[0]})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Upgrading factory %s to level %d for %.2f (ready in %s)\n",
					resp.FactoryID, resp.TargetLevel, resp.Cost, formatSeconds(resp.RemainingSeconds))
				return nil
			})
		},
	}
}

func newFactoryStartCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "start <factory-id> <recipe-id>",
		Short: "Start a production run",
		Long: `Start a production run. The recipe's inputs are taken from the input
compartment immediately; outputs arrive on the first tick after completion.

Example:
  factoryctl factory start workshop_1 smelt_steel`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			player, err := resolvePlayer()
			if err != nil {
				return err
			}
			return withEngine(cmd, true, func(ctx context.Context, e *bootstrap.Engine) error {
				resp, err := mediator.SendAs[*commands.StartProductionResponse](ctx, e.Mediator, &commands.StartProductionCommand{
					PlayerID: player, FactoryID: args[0], RecipeID: args[1],
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Started %s at %s (%s)\n",
					resp.Task.RecipeID(), args[0], formatSeconds(int64(resp.Task.DurationSeconds())))
				return nil
			})
		},
	}
}

func newFactoryCancelCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <factory-id>",
		Short: "Cancel the running production task",
		Long:  `Cancel the running production task. Consumed inputs are not refunded.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			player, err := resolvePlayer()
			if err != nil {
				return err
			}
			return withEngine(cmd, true, func(ctx context.Context, e *bootstrap.Engine) error {
				if _, err := e.Mediator.Send(ctx, &commands.CancelProductionCommand{PlayerID: player, FactoryID: args[0]}); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cancelled production at %s\n", args[0])
				return nil
			})
		},
	}
}

func newFactoryTickCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tick [factory-id]",
		Short: "Harvest finished production and complete due upgrades",
		Long: `Run one production tick, for every active factory or a single one.
The daemon does this on its tick interval; use this when it is stopped.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var factoryID string
			if len(args) == 1 {
				factoryID = args[0]
			}
			return withEngine(cmd, true, func(ctx context.Context, e *bootstrap.Engine) error {
				resp, err := mediator.SendAs[*commands.TickFactoriesResponse](ctx, e.Mediator, &commands.TickFactoriesCommand{FactoryID: factoryID})
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if r := resp.Result; r != nil {
					switch {
					case r.Blocked:
						fmt.Fprintf(out, "%s: %s finished but output storage is full\n", r.FactoryID, r.RecipeID)
					case r.RecipeID != "":
						fmt.Fprintf(out, "%s: harvested %s from %s\n", r.FactoryID, formatQuantities(r.Harvested), r.RecipeID)
					default:
						fmt.Fprintf(out, "%s: nothing to harvest\n", r.FactoryID)
					}
					if r.Upgraded {
						fmt.Fprintf(out, "%s: upgraded to level %d\n", r.FactoryID, r.Level)
					}
					return nil
				}
				s := resp.Summary
				fmt.Fprintf(out, "Ticked %d factories: %d harvested, %d upgraded, %d blocked, %d failed\n",
					s.Ticked, s.Harvested, s.Upgraded, s.Blocked, s.Failed)
				return nil
			})
		},
	}
}

func newFactoryTeleportCommand() *cobra.Command {
	var bypass bool

	cmd := &cobra.Command{
		Use:   "teleport <factory-id>",
		Short: "Move the player to the factory's fast-travel point",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			player, err := resolvePlayer()
			if err != nil {
				return err
			}
			return withEngine(cmd, false, func(ctx context.Context, e *bootstrap.Engine) error {
				resp, err := mediator.SendAs[*commands.TeleportResponse](ctx, e.Mediator, &commands.TeleportCommand{
					PlayerID: player, FactoryID: args[0], BypassOwnership: bypass,
				})
				if err != nil {
					return err
				}
				if !resp.Teleported {
					fmt.Fprintf(cmd.OutOrStdout(), "Factory %s has no fast-travel point\n", args[0])
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Teleported %s to %s\n", player, args[0])
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&bypass, "bypass-ownership", false, "Allow teleporting to factories the player does not own")
	return cmd
}

func newFactoryFastTravelCommand() *cobra.Command {
	var (
		world      string
		x, y, z    float64
		yaw, pitch float32
		fromRegion bool
		clear      bool
	)

	cmd := &cobra.Command{
		Use:   "fast-travel <factory-id>",
		Short: "Set or clear a factory's fast-travel point",
		Long: `Set or clear a factory's fast-travel point.

Examples:
  factoryctl factory fast-travel workshop_1 --world world --x 115.5 --y 64 --z 115.5
  factoryctl factory fast-travel workshop_1 --from-region
  factoryctl factory fast-travel workshop_1 --clear`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd, true, func(ctx context.Context, e *bootstrap.Engine) error {
				var loc *factory.Location
				switch {
				case clear:
				case fromRegion:
					f, err := e.Registry.Get(args[0])
					if err != nil {
						return err
					}
					if loc, err = e.Regions.SpawnPoint(f.RegionRef()); err != nil {
						return err
					}
				case world != "":
					loc = &factory.Location{World: world, X: x, Y: y, Z: z, Yaw: yaw, Pitch: pitch}
				default:
					return fmt.Errorf("one of --world, --from-region or --clear is required")
				}

				if _, err := e.Mediator.Send(ctx, &commands.SetFastTravelCommand{FactoryID: args[0], Location: loc}); err != nil {
					return err
				}
				if loc == nil {
					fmt.Fprintf(cmd.OutOrStdout(), "Cleared fast-travel point of %s\n", args[0])
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Fast-travel point of %s set to %s %.1f %.1f %.1f\n", args[0], loc.World, loc.X, loc.Y, loc.Z)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&world, "world", "", "World name")
	cmd.Flags().Float64Var(&x, "x", 0, "X coordinate")
	cmd.Flags().Float64Var(&y, "y", 0, "Y coordinate")
	cmd.Flags().Float64Var(&z, "z", 0, "Z coordinate")
	cmd.Flags().Float32Var(&yaw, "yaw", 0, "Yaw")
	cmd.Flags().Float32Var(&pitch, "pitch", 0, "Pitch")
	cmd.Flags().BoolVar(&fromRegion, "from-region", false, "Use the spawn point of the factory's region")
	cmd.Flags().BoolVar(&clear, "clear", false, "Remove the fast-travel point")
	cmd.MarkFlagsMutuallyExclusive("world", "from-region", "clear")

	return cmd
}

func newFactoryHireCommand() *cobra.Command {
	var (
		name string
		wage float64
	)

	cmd := &cobra.Command{
		Use:   "hire <factory-id>",
		Short: "Hire a worker; each worker shortens production runs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			player, err := resolvePlayer()
			if err != nil {
				return err
			}
			return withEngine(cmd, true, func(ctx context.Context, e *bootstrap.Engine) error {
				resp, err := mediator.SendAs[*commands.HireEmployeeResponse](ctx, e.Mediator, &commands.HireEmployeeCommand{
					PlayerID: player, FactoryID: args[0], Name: name, Wage: wage,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Hired %s (%s) at %s for %.2f per salary cycle\n",
					resp.Employee.Name(), resp.Employee.ID(), args[0], resp.Employee.Wage())
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Worker name (required)")
	cmd.Flags().Float64Var(&wage, "wage", 0, "Wage per salary cycle (required)")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("wage")

	return cmd
}

func newFactoryFireCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "fire <factory-id> <employee-id>",
		Short: "Dismiss a worker",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			player, err := resolvePlayer()
			if err != nil {
				return err
			}
			return withEngine(cmd, true, func(ctx context.Context, e *bootstrap.Engine) error {
				if _, err := e.Mediator.Send(ctx, &commands.FireEmployeeCommand{
					PlayerID: player, FactoryID: args[0], EmployeeID: args[1],
				}); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Dismissed %s from %s\n", args[1], args[0])
				return nil
			})
		},
	}
}

func newFactoryStorageCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "storage",
		Short: "Adjust a factory's storage",
		Long: `Add or remove resources in a factory's input or output compartment.
Adds that do not fit are rejected whole; removals of more than is held change nothing.

Examples:
  factoryctl factory storage add workshop_1 iron_ore 64
  factoryctl factory storage remove workshop_1 steel_ingot 2 --output`,
	}
	cmd.AddCommand(newStorageAdjustCommand("add", 1))
	cmd.AddCommand(newStorageAdjustCommand("remove", -1))
	return cmd
}

func newStorageAdjustCommand(use string, sign int) *cobra.Command {
	var output bool

	cmd := &cobra.Command{
		Use:   use + " <factory-id> <resource-id> <amount>",
		Short: use + " resources",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.Atoi(args[2])
			if err != nil || amount <= 0 {
				return fmt.Errorf("amount must be a positive integer, got %q", args[2])
			}
			compartment := storage.CompartmentInput
			if output {
				compartment = storage.CompartmentOutput
			}

			return withEngine(cmd, true, func(ctx context.Context, e *bootstrap.Engine) error {
				resp, err := mediator.SendAs[*commands.AdjustStorageResponse](ctx, e.Mediator, &commands.AdjustStorageCommand{
					FactoryID:   args[0],
					Compartment: compartment,
					ResourceID:  args[1],
					Delta:       sign * amount,
				})
				if err != nil {
					return err
				}
				if !resp.Applied {
					fmt.Fprintf(cmd.OutOrStdout(), "Not enough %s in %s %s (holding %d); nothing removed\n",
						args[1], args[0], compartment, resp.Amount)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s now holds %d %s\n", args[0], compartment, resp.Amount, args[1])
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&output, "output", false, "Use the output compartment instead of input")
	return cmd
}

func newFactoryShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <factory-id>",
		Short: "Show a factory's state, production and storage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd, false, func(ctx context.Context, e *bootstrap.Engine) error {
				d, err := mediator.SendAs[*queries.FactoryDetails](ctx, e.Mediator, &queries.GetFactoryQuery{FactoryID: args[0]})
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				f := d.Factory
				p := d.Progress

				fmt.Fprintf(out, "Factory %s\n", f.ID())
				fmt.Fprintf(out, "  Type:         %s\n", f.Type())
				fmt.Fprintf(out, "  Region:       %s\n", f.RegionRef())
				fmt.Fprintf(out, "  Owner:        %s\n", formatOwner(f.Owner()))
				fmt.Fprintf(out, "  Price:        %.2f\n", f.Price())
				fmt.Fprintf(out, "  Level:        %d\n", f.Level())
				fmt.Fprintf(out, "  Status:       %s\n", p.Status)
				if p.Suspended {
					fmt.Fprintf(out, "  Suspended:    yes (overdue invoices)\n")
				}
				if p.RecipeID != "" {
					fmt.Fprintf(out, "  Recipe:       %s (%.0f%%, %s left)\n", p.RecipeID, p.Progress*100, formatSeconds(p.RemainingSeconds))
				}
				if p.Upgrading {
					fmt.Fprintf(out, "  Upgrading:    %s left\n", formatSeconds(p.UpgradeRemaining))
				} else {
					fmt.Fprintf(out, "  Upgrade cost: %.2f\n", d.UpgradeCost)
				}
				if loc := f.FastTravel(); loc != nil {
					fmt.Fprintf(out, "  Fast travel:  %s %.1f %.1f %.1f\n", loc.World, loc.X, loc.Y, loc.Z)
				}

				fmt.Fprintf(out, "\nInput  (%d/%d slots): %s\n", d.InputSlots.Used, d.InputSlots.Capacity.Slots, formatQuantities(d.Input))
				fmt.Fprintf(out, "Output (%d/%d slots): %s\n", d.OutputSlots.Used, d.OutputSlots.Capacity.Slots, formatQuantities(d.Output))

				if employees := f.Employees(); len(employees) > 0 {
					fmt.Fprintln(out, "\nEmployees:")
					w := newTable(out)
					fmt.Fprintln(w, "  ID\tNAME\tWAGE\tHIRED")
					for _, emp := range employees {
						fmt.Fprintf(w, "  %s\t%s\t%.2f\t%s\n", emp.ID(), emp.Name(), emp.Wage(), formatTime(emp.HiredAt()))
					}
					w.Flush()
				}
				return nil
			})
		},
	}
}

func newFactoryListCommand() *cobra.Command {
	var (
		mine     bool
		unowned  bool
		ownerStr string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List factories",
		Long: `List factories with their owner, level and production status.

Examples:
  factoryctl factory list
  factoryctl factory list --unowned
  factoryctl factory list --mine`,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := &queries.ListFactoriesQuery{UnownedOnly: unowned}
			switch {
			case ownerStr != "":
				owner, err := shared.NewPlayerID(ownerStr)
				if err != nil {
					return err
				}
				query.OwnerID = &owner
			case mine:
				owner, err := resolvePlayer()
				if err != nil {
					return err
				}
				query.OwnerID = &owner
			}

			return withEngine(cmd, false, func(ctx context.Context, e *bootstrap.Engine) error {
				resp, err := mediator.SendAs[*queries.ListFactoriesResponse](ctx, e.Mediator, query)
				if err != nil {
					return err
				}
				if len(resp.Factories) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No factories found")
					return nil
				}

				w := newTable(cmd.OutOrStdout())
				fmt.Fprintln(w, "ID\tTYPE\tLEVEL\tOWNER\tPRICE\tSTATUS\tRECIPE\tPROGRESS")
				for _, f := range resp.Factories {
					recipe, progress := "-", "-"
					if f.RecipeID != "" {
						recipe = f.RecipeID
						progress = fmt.Sprintf("%.0f%%", f.Progress*100)
					}
					fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%.2f\t%s\t%s\t%s\n",
						f.ID, f.Type, f.Level, formatOwner(f.Owner), f.Price, f.Status, recipe, progress)
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().BoolVar(&mine, "mine", false, "Only factories owned by the acting player")
	cmd.Flags().BoolVar(&unowned, "unowned", false, "Only factories for sale")
	cmd.Flags().StringVar(&ownerStr, "owner", "", "Only factories owned by this player UUID")
	cmd.MarkFlagsMutuallyExclusive("mine", "unowned", "owner")

	return cmd
}

func newFactoryRecipesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "recipes <factory-id>",
		Short: "List the recipes a factory can run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd, false, func(ctx context.Context, e *bootstrap.Engine) error {
				resp, err := mediator.SendAs[*queries.ListRecipesResponse](ctx, e.Mediator, &queries.ListRecipesQuery{FactoryID: args[0]})
				if err != nil {
					return err
				}
				if len(resp.Recipes) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "No recipes for %s\n", args[0])
					return nil
				}

				w := newTable(cmd.OutOrStdout())
				fmt.Fprintln(w, "RECIPE\tDURATION\tINPUTS\tOUTPUTS")
				for _, r := range resp.Recipes {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.ID, formatSeconds(int64(r.DurationSeconds)),
						formatQuantities(r.Inputs), formatQuantities(r.Outputs))
				}
				return w.Flush()
			})
		},
	}
}
