package config

import "time"

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	// Database defaults
	if cfg.Database.Type == "" {
		cfg.Database.Type = "sqlite"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "factory-economy.db"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "factory"
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = "factory_economy"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.BusyTimeout == 0 {
		cfg.Database.BusyTimeout = 5 * time.Second
	}
	if cfg.Database.LogQueries == "" {
		cfg.Database.LogQueries = "slow"
	}
	if cfg.Database.SlowQueryThreshold == 0 {
		cfg.Database.SlowQueryThreshold = 200 * time.Millisecond
	}
	if cfg.Database.Pool.MaxOpen == 0 {
		cfg.Database.Pool.MaxOpen = 25
	}
	if cfg.Database.Pool.MaxIdle == 0 {
		cfg.Database.Pool.MaxIdle = 5
	}
	if cfg.Database.Pool.MaxLifetime == 0 {
		cfg.Database.Pool.MaxLifetime = 5 * time.Minute
	}

	// Daemon defaults
	if cfg.Daemon.PIDFile == "" {
		cfg.Daemon.PIDFile = "/tmp/factoryd.pid"
	}
	if cfg.Daemon.TickInterval == 0 {
		cfg.Daemon.TickInterval = time.Second
	}
	if cfg.Daemon.BillingInterval == 0 {
		cfg.Daemon.BillingInterval = time.Minute
	}
	if cfg.Daemon.CleanupInterval == 0 {
		cfg.Daemon.CleanupInterval = 5 * time.Minute
	}
	if cfg.Daemon.SnapshotPath != "" && cfg.Daemon.SnapshotInterval == 0 {
		cfg.Daemon.SnapshotInterval = 15 * time.Minute
	}
	if cfg.Daemon.ShutdownTimeout == 0 {
		cfg.Daemon.ShutdownTimeout = 30 * time.Second
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	// Metrics defaults
	if cfg.Metrics.Host == "" {
		cfg.Metrics.Host = "localhost"
	}
	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9090
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	// Catalog defaults
	if cfg.Catalog.ResourcesFile == "" {
		cfg.Catalog.ResourcesFile = "configs/resources.yaml"
	}
	if cfg.Catalog.RecipesFile == "" {
		cfg.Catalog.RecipesFile = "configs/recipes.yaml"
	}
	if cfg.Catalog.RegionsFile == "" {
		cfg.Catalog.RegionsFile = "configs/regions.yaml"
	}

	// Economy defaults
	if cfg.Economy.StartingBalance == 0 {
		cfg.Economy.StartingBalance = 10000
	}

	// Factory defaults
	if cfg.Factory.MaxLevel == 0 {
		cfg.Factory.MaxLevel = 5
	}
	if cfg.Factory.SellMultiplier == 0 {
		cfg.Factory.SellMultiplier = 0.5
	}
	if cfg.Factory.UpgradeCostFactor == 0 {
		cfg.Factory.UpgradeCostFactor = 0.5
	}
	if cfg.Factory.UpgradeDuration == 0 {
		cfg.Factory.UpgradeDuration = 10 * time.Minute
	}
	if cfg.Factory.BaseSlots == 0 {
		cfg.Factory.BaseSlots = 27
	}
	if cfg.Factory.SlotsPerLevel == 0 {
		cfg.Factory.SlotsPerLevel = 9
	}
	if cfg.Factory.StackSize == 0 {
		cfg.Factory.StackSize = 64
	}
	if cfg.Factory.NoPartsWindow == 0 {
		cfg.Factory.NoPartsWindow = 30 * time.Second
	}
	if cfg.Factory.MaxEmployees == 0 {
		cfg.Factory.MaxEmployees = 3
	}
	if cfg.Factory.BonusPerEmployee == 0 {
		cfg.Factory.BonusPerEmployee = 0.1
	}
	if cfg.Factory.MaxBonus == 0 {
		cfg.Factory.MaxBonus = 0.3
	}

	// Billing defaults
	if cfg.Billing.TaxInterval == 0 {
		cfg.Billing.TaxInterval = 72 * time.Hour
	}
	if cfg.Billing.SalaryInterval == 0 {
		cfg.Billing.SalaryInterval = 24 * time.Hour
	}
	if cfg.Billing.TaxGrace == 0 {
		cfg.Billing.TaxGrace = 72 * time.Hour
	}
	if cfg.Billing.SalaryGrace == 0 {
		cfg.Billing.SalaryGrace = 72 * time.Hour
	}
	if cfg.Billing.TaxRate == 0 {
		cfg.Billing.TaxRate = 0.05
	}
	if cfg.Billing.TaxLevelMultiplier == 0 {
		cfg.Billing.TaxLevelMultiplier = 0.25
	}
	if cfg.Billing.OverduePolicy == "" {
		cfg.Billing.OverduePolicy = "log"
	}

	// Marketplace defaults
	if cfg.Marketplace.ListingTTL == 0 {
		cfg.Marketplace.ListingTTL = 7 * 24 * time.Hour
	}

	// Rate limit defaults
	if cfg.RateLimit.PerSecond == 0 {
		cfg.RateLimit.PerSecond = 5
	}
	if cfg.RateLimit.Burst == 0 {
		cfg.RateLimit.Burst = 10
	}
}
