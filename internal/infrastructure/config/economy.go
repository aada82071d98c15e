package config

import "time"

// CatalogConfig points at the definition files loaded at startup and on reload
type CatalogConfig struct {
	ResourcesFile string `mapstructure:"resources_file" validate:"required"`
	RecipesFile   string `mapstructure:"recipes_file" validate:"required"`
	// Region table used to validate factory region references
	RegionsFile string `mapstructure:"regions_file" validate:"required"`
}

// EconomyConfig configures the built-in account ledger
type EconomyConfig struct {
	// Balance credited to a player account the first time it is touched
	StartingBalance float64 `mapstructure:"starting_balance" validate:"min=0"`
}

// FactoryConfig holds factory tuning
type FactoryConfig struct {
	MaxLevel          int           `mapstructure:"max_level" validate:"min=1"`
	SellMultiplier    float64       `mapstructure:"sell_multiplier" validate:"min=0,max=1"`
	UpgradeCostFactor float64       `mapstructure:"upgrade_cost_factor" validate:"min=0"`
	UpgradeDuration   time.Duration `mapstructure:"upgrade_duration" validate:"min=0"`

	BaseSlots          int  `mapstructure:"base_slots" validate:"min=1"`
	SlotsPerLevel      int  `mapstructure:"slots_per_level" validate:"min=0"`
	StackSize          int  `mapstructure:"stack_size" validate:"min=1"`
	ClearStorageOnSell bool `mapstructure:"clear_storage_on_sell"`

	NoPartsWindow time.Duration `mapstructure:"no_parts_window"`

	MaxEmployees     int     `mapstructure:"max_employees" validate:"min=0"`
	BonusPerEmployee float64 `mapstructure:"bonus_per_employee" validate:"min=0,max=1"`
	MaxBonus         float64 `mapstructure:"max_bonus" validate:"min=0,lt=1"`
}

// BillingConfig holds tax and salary invoicing configuration
type BillingConfig struct {
	TaxInterval    time.Duration `mapstructure:"tax_interval" validate:"required"`
	SalaryInterval time.Duration `mapstructure:"salary_interval" validate:"required"`
	TaxGrace       time.Duration `mapstructure:"tax_grace"`
	SalaryGrace    time.Duration `mapstructure:"salary_grace"`

	TaxRate            float64 `mapstructure:"tax_rate" validate:"min=0"`
	TaxLevelMultiplier float64 `mapstructure:"tax_level_multiplier" validate:"min=0"`

	// log or suspend
	OverduePolicy string `mapstructure:"overdue_policy" validate:"required,oneof=log suspend"`
}

// MarketplaceConfig holds listing configuration
type MarketplaceConfig struct {
	ListingTTL time.Duration `mapstructure:"listing_ttl" validate:"required"`
}

// RateLimitConfig throttles player commands sent through the mediator
type RateLimitConfig struct {
	Enabled   bool    `mapstructure:"enabled"`
	PerSecond float64 `mapstructure:"per_second" validate:"min=0"`
	Burst     int     `mapstructure:"burst" validate:"min=0"`
}
