package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the main configuration struct combining all sub-configs
type Config struct {
	Database    DatabaseConfig    `mapstructure:"database"`
	Daemon      DaemonConfig      `mapstructure:"daemon"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
	Catalog     CatalogConfig     `mapstructure:"catalog"`
	Economy     EconomyConfig     `mapstructure:"economy"`
	Factory     FactoryConfig     `mapstructure:"factory"`
	Billing     BillingConfig     `mapstructure:"billing"`
	Marketplace MarketplaceConfig `mapstructure:"marketplace"`
	RateLimit   RateLimitConfig   `mapstructure:"ratelimit"`
}

// LoadConfig loads configuration from multiple sources with priority:
// 1. Environment variables (highest priority)
// 2. Config file (config.yaml)
// 3. Defaults (lowest priority)
func LoadConfig(configPath string) (*Config, error) {
	// Load .env file if it exists (doesn't error if missing)
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/factory-economy")
	}

	v.SetEnvPrefix("FE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK - env vars and defaults still apply
	}

	// DATABASE_URL is honoured without the FE_ prefix
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		v.Set("database.url", dbURL)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	SetDefaults(&cfg)

	if err := ValidateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// bindEnvKeys registers the keys viper should look up in the environment.
// AutomaticEnv alone only resolves keys viper already knows about, so
// Unmarshal would miss env-only settings without this.
func bindEnvKeys(v *viper.Viper) {
	keys := []string{
		"database.type", "database.url", "database.host", "database.port",
		"database.user", "database.password", "database.name", "database.sslmode",
		"database.path", "database.busy_timeout", "database.log_queries", "database.slow_query_threshold",
		"daemon.pid_file", "daemon.tick_interval", "daemon.billing_interval",
		"daemon.cleanup_interval", "daemon.snapshot_path", "daemon.snapshot_interval",
		"daemon.shutdown_timeout",
		"logging.level", "logging.format", "logging.output", "logging.file_path",
		"metrics.enabled", "metrics.host", "metrics.port", "metrics.path",
		"catalog.resources_file", "catalog.recipes_file", "catalog.regions_file",
		"economy.starting_balance",
		"factory.max_level", "factory.sell_multiplier", "factory.clear_storage_on_sell",
		"billing.tax_rate", "billing.overdue_policy",
		"marketplace.listing_ttl",
		"ratelimit.per_second", "ratelimit.burst",
	}
	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// LoadConfigOrDefault loads configuration or returns a default config on error
func LoadConfigOrDefault(configPath string) *Config {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		defaultCfg := &Config{}
		SetDefaults(defaultCfg)
		return defaultCfg
	}
	return cfg
}

// MustLoadConfig loads configuration and panics on error (for use in main.go)
func MustLoadConfig(configPath string) *Config {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}
