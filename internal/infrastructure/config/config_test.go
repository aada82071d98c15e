package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig_DefaultsFillMissingSections(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	path := writeConfigFile(t, "logging:\n  level: debug\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, 5, cfg.Factory.MaxLevel)
	assert.Equal(t, 0.5, cfg.Factory.SellMultiplier)
	assert.Equal(t, 72*time.Hour, cfg.Billing.TaxInterval)
	assert.Equal(t, 24*time.Hour, cfg.Billing.SalaryInterval)
	assert.Equal(t, 72*time.Hour, cfg.Billing.TaxGrace)
	assert.Equal(t, "log", cfg.Billing.OverduePolicy)
	assert.Equal(t, 7*24*time.Hour, cfg.Marketplace.ListingTTL)
	assert.Equal(t, time.Second, cfg.Daemon.TickInterval)
}

func TestLoadConfig_FileValues(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	path := writeConfigFile(t, `
factory:
  max_level: 8
  upgrade_duration: 90s
  clear_storage_on_sell: true
billing:
  tax_rate: 0.1
  overdue_policy: suspend
marketplace:
  listing_ttl: 2h
catalog:
  resources_file: /srv/resources.yaml
  recipes_file: /srv/recipes.yaml
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Factory.MaxLevel)
	assert.Equal(t, 90*time.Second, cfg.Factory.UpgradeDuration)
	assert.True(t, cfg.Factory.ClearStorageOnSell)
	assert.Equal(t, 0.1, cfg.Billing.TaxRate)
	assert.Equal(t, "suspend", cfg.Billing.OverduePolicy)
	assert.Equal(t, 2*time.Hour, cfg.Marketplace.ListingTTL)
	assert.Equal(t, "/srv/resources.yaml", cfg.Catalog.ResourcesFile)
}

func TestLoadConfig_EnvironmentOverridesFile(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("FE_BILLING_OVERDUE_POLICY", "suspend")
	t.Setenv("FE_ECONOMY_STARTING_BALANCE", "250")
	path := writeConfigFile(t, "billing:\n  overdue_policy: log\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "suspend", cfg.Billing.OverduePolicy)
	assert.Equal(t, 250.0, cfg.Economy.StartingBalance)
}

func TestLoadConfig_DatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgresql://factory:secret@db:5432/factory")
	path := writeConfigFile(t, "database:\n  type: postgres\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, "postgresql://factory:secret@db:5432/factory", cfg.Database.URL)
}

func TestLoadConfig_RejectsInvalidValues(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	tests := []struct {
		name string
		body string
	}{
		{"unknown overdue policy", "billing:\n  overdue_policy: jail\n"},
		{"unknown database type", "database:\n  type: oracle\n"},
		{"sell multiplier above one", "factory:\n  sell_multiplier: 1.5\n"},
		{"file output without path", "logging:\n  output: file\n"},
		{"max bonus below per-employee bonus", "factory:\n  bonus_per_employee: 0.2\n  max_bonus: 0.1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfigFile(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid configuration")
		})
	}
}

func TestValidateConfig_SnapshotIntervalRequiredWithPath(t *testing.T) {
	cfg := &Config{}
	SetDefaults(cfg)
	require.NoError(t, ValidateConfig(cfg))

	cfg.Daemon.SnapshotPath = "/var/lib/factory/snapshot.json.zst"
	cfg.Daemon.SnapshotInterval = 0
	err := ValidateConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SnapshotInterval")
}

func TestLoadConfigOrDefault_FallsBackOnError(t *testing.T) {
	cfg := LoadConfigOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NotNil(t, cfg)
	assert.Equal(t, "sqlite", cfg.Database.Type)
}

func TestUserConfigHandler_RoundTrip(t *testing.T) {
	h, err := NewUserConfigHandlerAt(filepath.Join(t.TempDir(), "fe", "config.json"))
	require.NoError(t, err)

	cfg, err := h.Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.DefaultPlayerID)

	require.NoError(t, h.SetDefaultPlayer("4f2c7d1e-0000-4000-8000-000000000001"))
	cfg, err = h.Load()
	require.NoError(t, err)
	assert.Equal(t, "4f2c7d1e-0000-4000-8000-000000000001", cfg.DefaultPlayerID)

	require.NoError(t, h.SetConfigFile("/etc/factory-economy/config.yaml"))
	require.NoError(t, h.ClearDefaultPlayer())
	cfg, err = h.Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.DefaultPlayerID)
	assert.Equal(t, "/etc/factory-economy/config.yaml", cfg.ConfigFile)
}
