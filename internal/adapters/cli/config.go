package cli

import (
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/factorycraft/factory-economy/internal/domain/shared"
	"github.com/factorycraft/factory-economy/internal/infrastructure/config"
)

// NewConfigCommand creates the config command with subcommands
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage factory economy configuration settings.

Configuration is loaded from multiple sources with priority:
1. Environment variables (FE_* prefix, plus DATABASE_URL)
2. Config file (config.yaml)
3. Default values

User preferences (default player, default config file) are stored in
~/.factory-economy/config.json

Examples:
  factoryctl config show
  factoryctl config set-player 4f2c7d1e-9a4b-4c55-8d0e-2b7f3c1a9e10
  factoryctl config set-file /etc/factory-economy/config.yaml
  factoryctl config clear-player`,
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetPlayerCommand())
	cmd.AddCommand(newConfigClearPlayerCommand())
	cmd.AddCommand(newConfigSetFileCommand())

	return cmd
}

// resolveConfigPath returns --config, else the file saved with 'config set-file'
func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	handler, err := config.NewUserConfigHandler()
	if err != nil {
		return ""
	}
	userCfg, err := handler.Load()
	if err != nil {
		return ""
	}
	return userCfg.ConfigFile
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			cfg, err := config.LoadConfig(resolveConfigPath())
			if err != nil {
				fmt.Fprintf(out, "Warning: Failed to load config: %v\n", err)
				fmt.Fprintln(out, "Using default configuration.")
				cfg = config.LoadConfigOrDefault("")
			}

			userConfigHandler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			userCfg, err := userConfigHandler.Load()
			if err != nil {
				fmt.Fprintf(out, "Warning: Failed to load user config: %v\n\n", err)
				userCfg = &config.UserConfig{}
			}

			fmt.Fprintln(out, "Factory Economy Configuration")
			fmt.Fprintln(out, "=============================")

			fmt.Fprintln(out, "User Preferences:")
			fmt.Fprintf(out, "  Config file:      %s\n", userConfigHandler.GetConfigPath())
			fmt.Fprintf(out, "  Default Player:   %s\n", orNotSet(userCfg.DefaultPlayerID))
			fmt.Fprintf(out, "  Default Config:   %s\n", orNotSet(userCfg.ConfigFile))

			fmt.Fprintln(out, "\nDatabase:")
			fmt.Fprintf(out, "  Type:             %s\n", cfg.Database.Type)
			switch {
			case cfg.Database.URL != "":
				fmt.Fprintf(out, "  URL:              %s\n", maskPassword(cfg.Database.URL))
			case cfg.Database.Type == "sqlite":
				fmt.Fprintf(out, "  Path:             %s\n", cfg.Database.Path)
			default:
				fmt.Fprintf(out, "  Host:             %s\n", cfg.Database.Host)
				fmt.Fprintf(out, "  Port:             %d\n", cfg.Database.Port)
				fmt.Fprintf(out, "  Database:         %s\n", cfg.Database.Name)
				fmt.Fprintf(out, "  User:             %s\n", cfg.Database.User)
			}

			fmt.Fprintln(out, "\nCatalogs:")
			fmt.Fprintf(out, "  Resources:        %s\n", cfg.Catalog.ResourcesFile)
			fmt.Fprintf(out, "  Recipes:          %s\n", cfg.Catalog.RecipesFile)
			fmt.Fprintf(out, "  Regions:          %s\n", cfg.Catalog.RegionsFile)

			fmt.Fprintln(out, "\nFactories:")
			fmt.Fprintf(out, "  Max Level:        %d\n", cfg.Factory.MaxLevel)
			fmt.Fprintf(out, "  Storage:          %d slots + %d/level, stacks of %d\n",
				cfg.Factory.BaseSlots, cfg.Factory.SlotsPerLevel, cfg.Factory.StackSize)
			fmt.Fprintf(out, "  Sell Multiplier:  %.2f\n", cfg.Factory.SellMultiplier)
			fmt.Fprintf(out, "  Upgrade:          %.2f x price, %s\n", cfg.Factory.UpgradeCostFactor, cfg.Factory.UpgradeDuration)
			fmt.Fprintf(out, "  Max Employees:    %d\n", cfg.Factory.MaxEmployees)

			fmt.Fprintln(out, "\nBilling:")
			fmt.Fprintf(out, "  Tax:              %.2f%% every %s (grace %s)\n", cfg.Billing.TaxRate*100, cfg.Billing.TaxInterval, cfg.Billing.TaxGrace)
			fmt.Fprintf(out, "  Salaries:         every %s (grace %s)\n", cfg.Billing.SalaryInterval, cfg.Billing.SalaryGrace)
			fmt.Fprintf(out, "  Overdue Policy:   %s\n", cfg.Billing.OverduePolicy)

			fmt.Fprintln(out, "\nDaemon:")
			fmt.Fprintf(out, "  PID File:         %s\n", cfg.Daemon.PIDFile)
			fmt.Fprintf(out, "  Tick Interval:    %s\n", cfg.Daemon.TickInterval)
			fmt.Fprintf(out, "  Snapshot Path:    %s\n", orNotSet(cfg.Daemon.SnapshotPath))

			fmt.Fprintln(out, "\nLogging:")
			fmt.Fprintf(out, "  Level:            %s\n", cfg.Logging.Level)
			fmt.Fprintf(out, "  Format:           %s\n", cfg.Logging.Format)
			fmt.Fprintf(out, "  Output:           %s\n", cfg.Logging.Output)

			return nil
		},
	}
}

func newConfigSetPlayerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-player <player-uuid>",
		Short: "Set default player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			player, err := shared.NewPlayerID(args[0])
			if err != nil {
				return err
			}

			userConfigHandler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			if err := userConfigHandler.SetDefaultPlayer(player.String()); err != nil {
				return fmt.Errorf("failed to set default player: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Default player set to %s\n", player)
			return nil
		},
	}
}

func newConfigClearPlayerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear-player",
		Short: "Clear default player",
		RunE: func(cmd *cobra.Command, args []string) error {
			userConfigHandler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			if err := userConfigHandler.ClearDefaultPlayer(); err != nil {
				return fmt.Errorf("failed to clear default player: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Default player cleared")
			return nil
		},
	}
}

func newConfigSetFileCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-file [path]",
		Short: "Set the config file used when --config is not given",
		Long: `Set the config file used when --config is not given.
Run without a path to go back to searching ./config.yaml and ./configs/.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				abs, err := filepath.Abs(args[0])
				if err != nil {
					return err
				}
				path = abs
			}

			userConfigHandler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			if err := userConfigHandler.SetConfigFile(path); err != nil {
				return fmt.Errorf("failed to set config file: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Default config file: %s\n", orNotSet(path))
			return nil
		},
	}
}

func orNotSet(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

// maskPassword hides the password in a database URL
func maskPassword(dbURL string) string {
	u, err := url.Parse(dbURL)
	if err != nil || u.User == nil {
		return dbURL
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}
