package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	playerFlag string
	force      bool
	verbose    bool
)

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "factoryctl",
		Short: "factoryctl - Administer the factory economy",
		Long: `factoryctl operates on the factory economy database directly.

It builds the same engine the daemon runs, applies one command and exits.
Commands that change state refuse to run while factoryd holds its PID file,
since the daemon keeps factories in memory and would overwrite the change.
Pass --force to run them anyway.

Examples:
  factoryctl factory create --id workshop_1 --region factory_workshop_1 --type WORKSHOP --price 500
  factoryctl factory buy workshop_1 --player 3f1c...
  factoryctl factory storage add workshop_1 iron_ore 64
  factoryctl factory start workshop_1 smelt_steel
  factoryctl factory list --unowned
  factoryctl billing run tax
  factoryctl market list
  factoryctl snapshot export backup.snap.zst`,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to config file (default: ./config.yaml, ./configs/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&playerFlag, "player", "",
		"Player UUID (defaults to 'factoryctl config set-player')")
	rootCmd.PersistentFlags().BoolVar(&force, "force", false,
		"Run state-changing commands even while factoryd is running")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")

	// Add command groups
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewFactoryCommand())
	rootCmd.AddCommand(NewBillingCommand())
	rootCmd.AddCommand(NewMarketCommand())
	rootCmd.AddCommand(NewCatalogCommand())
	rootCmd.AddCommand(NewSnapshotCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, describeError(err))
		os.Exit(1)
	}
}
