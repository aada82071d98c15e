package services

import (
	"time"

	"github.com/factorycraft/factory-economy/internal/domain/factory"
	"github.com/factorycraft/factory-economy/internal/domain/storage"
)

// Settings holds the tunables for factory ownership, storage and production
type Settings struct {
	MaxLevel          int
	SellMultiplier    float64
	UpgradeCostFactor float64
	UpgradeDuration   time.Duration

	BaseSlots          int
	SlotsPerLevel      int
	StackSize          int
	ClearStorageOnSell bool

	// NoPartsWindow is how long NO_PARTS is reported after a start fails for missing inputs
	NoPartsWindow time.Duration

	MaxEmployees int
	Workforce    factory.WorkforceBonus
}

// DefaultSettings returns the stock tuning
func DefaultSettings() Settings {
	return Settings{
		MaxLevel:          5,
		SellMultiplier:    0.5,
		UpgradeCostFactor: 0.5,
		UpgradeDuration:   10 * time.Minute,
		BaseSlots:         27,
		SlotsPerLevel:     9,
		StackSize:         64,
		NoPartsWindow:     30 * time.Second,
		MaxEmployees:      3,
		Workforce:         factory.WorkforceBonus{PerEmployee: 0.1, Max: 0.3},
	}
}

// Capacity returns the per-compartment capacity at a factory level
func (s Settings) Capacity(level int) storage.Capacity {
	return storage.CapacityForLevel(s.BaseSlots, s.SlotsPerLevel, s.StackSize, level)
}
