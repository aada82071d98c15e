package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/factorycraft/factory-economy/internal/application/ratelimit"
	"github.com/factorycraft/factory-economy/internal/domain/billing"
	"github.com/factorycraft/factory-economy/internal/domain/catalog"
	"github.com/factorycraft/factory-economy/internal/domain/factory"
	"github.com/factorycraft/factory-economy/internal/domain/shared"
	"github.com/factorycraft/factory-economy/internal/domain/storage"
	"github.com/factorycraft/factory-economy/internal/infrastructure/bootstrap"
	"github.com/factorycraft/factory-economy/internal/infrastructure/config"
	"github.com/factorycraft/factory-economy/internal/infrastructure/logging"
	"github.com/factorycraft/factory-economy/internal/infrastructure/pidfile"
)

// resolvePlayer resolves the acting player.
// Priority: --player flag > user config default
func resolvePlayer() (shared.PlayerID, error) {
	if playerFlag != "" {
		return shared.NewPlayerID(playerFlag)
	}

	userConfigHandler, err := config.NewUserConfigHandler()
	if err != nil {
		return shared.PlayerID{}, fmt.Errorf("no player specified and failed to load user config: %w", err)
	}
	userCfg, err := userConfigHandler.Load()
	if err != nil {
		return shared.PlayerID{}, fmt.Errorf("no player specified and failed to load user config: %w", err)
	}
	if userCfg.DefaultPlayerID != "" {
		return shared.NewPlayerID(userCfg.DefaultPlayerID)
	}

	return shared.PlayerID{}, fmt.Errorf("no player specified: use --player, or set a default with 'factoryctl config set-player'")
}

// withEngine loads configuration, builds the engine and runs fn against it.
// mutating commands are refused while the daemon is alive unless --force is set.
func withEngine(cmd *cobra.Command, mutating bool, fn func(ctx context.Context, e *bootstrap.Engine) error) error {
	cfg, err := config.LoadConfig(resolveConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// one-shot runs have no scrape endpoint
	cfg.Metrics.Enabled = false

	if mutating && !force {
		if pid, running := pidfile.New(cfg.Daemon.PIDFile).Running(); running {
			return fmt.Errorf("factoryd is running (PID %d); stop it first or pass --force", pid)
		}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	engine, err := bootstrap.New(ctx, cfg, bootstrap.Options{Logger: cliLogger(cmd.ErrOrStderr(), cfg.Logging)})
	if err != nil {
		return err
	}
	defer engine.Close()

	return fn(ctx, engine)
}

// cliLogger keeps the engine quiet on stderr unless --verbose is set
func cliLogger(w io.Writer, cfg config.LoggingConfig) *slog.Logger {
	cfg.Format = "text"
	cfg.Level = "warn"
	if verbose {
		cfg.Level = "debug"
	}
	return slog.New(logging.NewHandler(w, cfg))
}

// send dispatches request and asserts the response type

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func formatOwner(owner *shared.PlayerID) string {
	if owner == nil {
		return "-"
	}
	return owner.String()
}

// formatQuantities renders a resource map as "coal x1, iron_ore x5" in id order
func formatQuantities(q map[string]int) string {
	if len(q) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s x%d", k, q[k]))
	}
	return strings.Join(parts, ", ")
}

func formatSeconds(seconds int64) string {
	return (time.Duration(seconds) * time.Second).String()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// describeError turns engine errors into operator-facing messages with a hint where one helps
func describeError(err error) string {
	var (
		notFound  *shared.NotFoundError
		funds     *shared.InsufficientFundsError
		amount    *shared.InvalidAmountError
		notOwner  *factory.ErrNotOwner
		owned     *factory.ErrAlreadyOwned
		suspended *factory.ErrFactorySuspended
		materials *factory.ErrInsufficientMaterials
		active    *factory.ErrProductionActive
		invalid   *factory.ErrInvalidRecipe
		upgrading *factory.ErrAlreadyUpgrading
		region    *factory.ErrRegionNotFound
		full      *storage.StorageFullError
		unknown   *catalog.ErrUnknownResources
		paid      *billing.ErrAlreadyPaid
		limited   *ratelimit.ErrRateLimited
	)

	switch {
	case errors.As(err, &notFound):
		return fmt.Sprintf("Error: no %s with id %q", notFound.Entity, notFound.ID)
	case errors.As(err, &funds):
		return fmt.Sprintf("Error: %v\nHint: player %s needs %.2f available", err, funds.PlayerID, funds.Amount)
	case errors.As(err, &amount):
		return fmt.Sprintf("Error: %s must be positive (got %v)", amount.Field, amount.Value)
	case errors.As(err, &notOwner):
		return fmt.Sprintf("Error: %v\nHint: check --player or 'factoryctl config show'", err)
	case errors.As(err, &owned):
		return fmt.Sprintf("Error: %v\nHint: the current owner has to sell it first", err)
	case errors.As(err, &suspended):
		return fmt.Sprintf("Error: %v\nHint: list them with 'factoryctl billing invoices --factory %s --unpaid'", err, suspended.FactoryID)
	case errors.As(err, &materials):
		return fmt.Sprintf("Error: %v\nHint: add inputs with 'factoryctl factory storage add %s <resource> <amount>'", err, materials.FactoryID)
	case errors.As(err, &active):
		return fmt.Sprintf("Error: %v\nHint: cancel it with 'factoryctl factory cancel %s'", err, active.FactoryID)
	case errors.As(err, &invalid):
		return fmt.Sprintf("Error: %v\nHint: 'factoryctl factory recipes <factory-id>' lists the recipes a factory accepts", err)
	case errors.As(err, &upgrading):
		return fmt.Sprintf("Error: factory %s finishes upgrading in %s", upgrading.FactoryID, formatSeconds(upgrading.RemainingSeconds))
	case errors.As(err, &region):
		return fmt.Sprintf("Error: %v\nHint: regions are defined in the regions file named by catalog.regions_file", err)
	case errors.As(err, &full):
		return fmt.Sprintf("Error: %v\nHint: upgrade the factory for more slots", err)
	case errors.As(err, &unknown):
		return fmt.Sprintf("Error: %v\nHint: add the resources to the resource catalog and run 'factoryctl catalog reload'", err)
	case errors.As(err, &paid):
		return fmt.Sprintf("Invoice %s is already paid; nothing to do", paid.InvoiceID)
	case errors.As(err, &limited):
		return fmt.Sprintf("Error: %v\nHint: retry in a moment", err)
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}
