package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/factorycraft/factory-economy/internal/domain/factory"
	"github.com/factorycraft/factory-economy/internal/domain/shared"
)

const testPlayer = "4f2c7d1e-9a4b-4c55-8d0e-2b7f3c1a9e10"

type cliEnv struct {
	dir        string
	configFile string
	pidFile    string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	configs, err := filepath.Abs("../../../configs")
	require.NoError(t, err)

	env := &cliEnv{
		dir:        dir,
		configFile: filepath.Join(dir, "config.yaml"),
		pidFile:    filepath.Join(dir, "factoryd.pid"),
	}
	cfg := fmt.Sprintf(`database:
  type: sqlite
  path: %s
daemon:
  pid_file: %s
catalog:
  resources_file: %s
  recipes_file: %s
  regions_file: %s
`,
		filepath.Join(dir, "economy.db"),
		env.pidFile,
		filepath.Join(configs, "resources.yaml"),
		filepath.Join(configs, "recipes.yaml"),
		filepath.Join(configs, "regions.yaml"),
	)
	require.NoError(t, os.WriteFile(env.configFile, []byte(cfg), 0o644))
	return env
}

func (e *cliEnv) run(args ...string) (string, error) {
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", e.configFile}, args...))
	err := root.Execute()
	return out.String(), err
}

func (e *cliEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(args...)
	require.NoError(t, err, "factoryctl %s\n%s", strings.Join(args, " "), out)
	return out
}

func TestFactoryLifecycle(t *testing.T) {
	env := newCLIEnv(t)

	out := env.mustRun(t, "factory", "create", "--id", "workshop_1", "--region", "factory_workshop_1", "--type", "workshop", "--price", "500")
	assert.Contains(t, out, "Created WORKSHOP factory workshop_1")

	out = env.mustRun(t, "factory", "list", "--unowned")
	assert.Contains(t, out, "workshop_1")

	out = env.mustRun(t, "--player", testPlayer, "factory", "buy", "workshop_1")
	assert.Contains(t, out, "Bought factory workshop_1 for 500.00")

	env.mustRun(t, "factory", "storage", "add", "workshop_1", "iron_ore", "5")
	env.mustRun(t, "factory", "storage", "add", "workshop_1", "coal", "1")

	out = env.mustRun(t, "factory", "recipes", "workshop_1")
	assert.Contains(t, out, "smelt_steel")
	assert.NotContains(t, out, "cut_gears")

	out = env.mustRun(t, "--player", testPlayer, "factory", "start", "workshop_1", "smelt_steel")
	assert.Contains(t, out, "Started smelt_steel at workshop_1")

	out = env.mustRun(t, "factory", "show", "workshop_1")
	assert.Contains(t, out, "Owner:        "+testPlayer)
	assert.Contains(t, out, "Recipe:       smelt_steel")
	assert.Contains(t, out, "Fast travel:  world 115.5 64.0 115.5")

	_, err := env.run("--player", testPlayer, "factory", "start", "workshop_1", "smelt_steel")
	var active *factory.ErrProductionActive
	require.True(t, errors.As(err, &active))

	env.mustRun(t, "--player", testPlayer, "factory", "cancel", "workshop_1")
	out = env.mustRun(t, "factory", "list", "--owner", testPlayer)
	assert.Contains(t, out, "workshop_1")
	assert.Contains(t, out, "STOPPED")
}

func TestStorageRemoveMoreThanHeld(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun(t, "factory", "create", "--id", "w1", "--region", "factory_workshop_1", "--type", "WORKSHOP")
	env.mustRun(t, "factory", "storage", "add", "w1", "coal", "3")

	out := env.mustRun(t, "factory", "storage", "remove", "w1", "coal", "4")
	assert.Contains(t, out, "nothing removed")

	_, err := env.run("factory", "storage", "add", "w1", "coal", "-2")
	assert.Error(t, err)
}

func TestMutatingCommandsRefusedWhileDaemonRuns(t *testing.T) {
	env := newCLIEnv(t)
	// the test runner's parent process stands in for a live daemon
	require.NoError(t, os.WriteFile(env.pidFile, []byte(strconv.Itoa(os.Getppid())), 0o644))

	_, err := env.run("factory", "create", "--id", "w1", "--region", "factory_workshop_1", "--type", "WORKSHOP")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "factoryd is running")

	// reads are allowed
	env.mustRun(t, "factory", "list")

	env.mustRun(t, "--force", "factory", "create", "--id", "w1", "--region", "factory_workshop_1", "--type", "WORKSHOP")
}

func TestBillingRunAndPay(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun(t, "factory", "create", "--id", "w1", "--region", "factory_workshop_1", "--type", "WORKSHOP", "--price", "500")
	env.mustRun(t, "--player", testPlayer, "factory", "buy", "w1")

	out := env.mustRun(t, "billing", "run", "tax")
	assert.Contains(t, out, "Issued 1 TAX invoices")

	out = env.mustRun(t, "billing", "run", "tax")
	assert.Contains(t, out, "No TAX invoices issued")

	out = env.mustRun(t, "--player", testPlayer, "billing", "invoices", "--unpaid")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.GreaterOrEqual(t, len(lines), 2)
	invoiceID := strings.Fields(lines[1])[0]
	assert.Contains(t, out, "Unpaid total: 25.00")

	out = env.mustRun(t, "--player", testPlayer, "billing", "pay", invoiceID)
	assert.Contains(t, out, "Paid TAX invoice "+invoiceID)

	out = env.mustRun(t, "--player", testPlayer, "billing", "invoices", "--unpaid")
	assert.Contains(t, out, "No invoices found")
}

func TestMarketSellAndBuy(t *testing.T) {
	env := newCLIEnv(t)
	buyer := shared.GeneratePlayerID().String()

	env.mustRun(t, "factory", "create", "--id", "w1", "--region", "factory_workshop_1", "--type", "WORKSHOP")
	env.mustRun(t, "factory", "create", "--id", "f1", "--region", "factory_foundry_1", "--type", "FOUNDRY")
	env.mustRun(t, "--player", testPlayer, "factory", "buy", "w1")
	env.mustRun(t, "--player", buyer, "factory", "buy", "f1")
	env.mustRun(t, "factory", "storage", "add", "w1", "steel_ingot", "10", "--output")

	out := env.mustRun(t, "--player", testPlayer, "market", "sell", "w1", "steel_ingot", "4", "2.5")
	assert.Contains(t, out, "Listed 4 steel_ingot at 2.50 each")

	out = env.mustRun(t, "market", "list")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	listingID := strings.Fields(lines[1])[0]

	out = env.mustRun(t, "--player", buyer, "market", "buy", listingID, "--into", "f1")
	assert.Contains(t, out, "Bought 4 steel_ingot for 10.00 into f1")

	out = env.mustRun(t, "factory", "show", "f1")
	assert.Contains(t, out, "steel_ingot x4")
}

func TestSnapshotExportAndInspect(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun(t, "factory", "create", "--id", "w1", "--region", "factory_workshop_1", "--type", "WORKSHOP")
	env.mustRun(t, "factory", "storage", "add", "w1", "coal", "7")

	path := filepath.Join(env.dir, "economy.snap.zst")
	out := env.mustRun(t, "snapshot", "export", path)
	assert.Contains(t, out, "1 factories")

	out = env.mustRun(t, "snapshot", "inspect", path, "--factories")
	assert.Contains(t, out, "Factories: 1")
	assert.Contains(t, out, "coal x7")
}

func TestCatalogCommands(t *testing.T) {
	env := newCLIEnv(t)

	out := env.mustRun(t, "catalog", "check")
	assert.Contains(t, out, "Loaded")

	out = env.mustRun(t, "catalog", "resources")
	assert.Contains(t, out, "iron_ore")
}

func TestConfigPlayerDefaults(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run("config", "set-player", "not-a-uuid")
	assert.Error(t, err)

	env.mustRun(t, "config", "set-player", testPlayer)
	out := env.mustRun(t, "config", "show")
	assert.Contains(t, out, "Default Player:   "+testPlayer)

	player, err := resolvePlayer()
	require.NoError(t, err)
	assert.Equal(t, testPlayer, player.String())

	env.mustRun(t, "config", "clear-player")
	_, err = resolvePlayer()
	assert.Error(t, err)
}

func TestDescribeError(t *testing.T) {
	player := shared.GeneratePlayerID()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"not found", shared.NewNotFoundError("factory", "w9"), `no factory with id "w9"`},
		{"wrapped materials", fmt.Errorf("start: %w", &factory.ErrInsufficientMaterials{
			FactoryID: "w1", RecipeID: "smelt_steel", Missing: map[string]int{"coal": 1},
		}), "factoryctl factory storage add w1"},
		{"suspended", &factory.ErrFactorySuspended{FactoryID: "w1"}, "billing invoices --factory w1 --unpaid"},
		{"funds", shared.NewInsufficientFundsError(player, 50, nil), "needs 50.00 available"},
		{"upgrading", &factory.ErrAlreadyUpgrading{FactoryID: "w1", RemainingSeconds: 90}, "finishes upgrading in 1m30s"},
		{"plain", errors.New("boom"), "Error: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, describeError(tt.err), tt.want)
		})
	}
}

func TestMaskPassword(t *testing.T) {
	assert.Equal(t, "postgres://fe:xxxxx@db:5432/economy", maskPassword("postgres://fe:secret@db:5432/economy"))
	assert.Equal(t, "economy.db", maskPassword("economy.db"))
}
