package factory

import (
	"fmt"
	"sort"
	"strings"

	"github.com/factorycraft/factory-economy/internal/domain/shared"
)

// ErrAlreadyOwned indicates a purchase of a factory that has an owner
type ErrAlreadyOwned struct {
	FactoryID string
	Owner     shared.PlayerID
}

func (e *ErrAlreadyOwned) Error() string {
	return fmt.Sprintf("factory %s is already owned by %s", e.FactoryID, e.Owner)
}

// ErrNotOwner indicates the requesting player does not own the factory
type ErrNotOwner struct {
	FactoryID string
	PlayerID  shared.PlayerID
}

func (e *ErrNotOwner) Error() string {
	return fmt.Sprintf("player %s does not own factory %s", e.PlayerID, e.FactoryID)
}

// ErrMaxLevel indicates an upgrade beyond the configured maximum level
type ErrMaxLevel struct {
	FactoryID string
	MaxLevel  int
}

func (e *ErrMaxLevel) Error() string {
	return fmt.Sprintf("factory %s is already at max level %d", e.FactoryID, e.MaxLevel)
}

// ErrAlreadyUpgrading indicates an upgrade timer is already running
type ErrAlreadyUpgrading struct {
	FactoryID        string
	RemainingSeconds int64
}

func (e *ErrAlreadyUpgrading) Error() string {
	return fmt.Sprintf("factory %s is already upgrading (%ds remaining)", e.FactoryID, e.RemainingSeconds)
}

// ErrRegionNotFound indicates the spatial region binding could not be resolved
type ErrRegionNotFound struct {
	RegionRef string
}

func (e *ErrRegionNotFound) Error() string {
	return fmt.Sprintf("region not found: %s", e.RegionRef)
}

// ErrDuplicateFactory indicates a factory id is already registered
type ErrDuplicateFactory struct {
	FactoryID string
}

func (e *ErrDuplicateFactory) Error() string {
	return fmt.Sprintf("factory %s already exists", e.FactoryID)
}

// ErrProductionActive indicates a factory already runs a production task
type ErrProductionActive struct {
	FactoryID string
	RecipeID  string
}

func (e *ErrProductionActive) Error() string {
	return fmt.Sprintf("factory %s is already producing %s", e.FactoryID, e.RecipeID)
}

// ErrNotProducing indicates a cancel on an idle factory
type ErrNotProducing struct {
	FactoryID string
}

func (e *ErrNotProducing) Error() string {
	return fmt.Sprintf("factory %s has no active production", e.FactoryID)
}

// ErrFactorySuspended indicates production is blocked by overdue invoices
type ErrFactorySuspended struct {
	FactoryID string
}

func (e *ErrFactorySuspended) Error() string {
	return fmt.Sprintf("factory %s is suspended until overdue invoices are paid", e.FactoryID)
}

// ErrInsufficientMaterials indicates the input compartment cannot cover a recipe
type ErrInsufficientMaterials struct {
	FactoryID string
	RecipeID  string
	Missing   map[string]int // resource -> units short
}

func (e *ErrInsufficientMaterials) Error() string {
	keys := make([]string, 0, len(e.Missing))
	for k := range e.Missing {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s x%d", k, e.Missing[k]))
	}
	return fmt.Sprintf("factory %s lacks materials for %s: missing %s",
		e.FactoryID, e.RecipeID, strings.Join(parts, ", "))
}

// ErrInvalidRecipe indicates a recipe/factory-type mismatch or a malformed recipe
type ErrInvalidRecipe struct {
	RecipeID    string
	FactoryType shared.FactoryType
	Reason      string
}

func (e *ErrInvalidRecipe) Error() string {
	return fmt.Sprintf("recipe %s is not valid for %s factories: %s", e.RecipeID, e.FactoryType, e.Reason)
}

// ErrEmployeeLimit indicates a hire beyond the per-factory employee cap
type ErrEmployeeLimit struct {
	FactoryID string
	Max       int
}

func (e *ErrEmployeeLimit) Error() string {
	return fmt.Sprintf("factory %s already employs the maximum of %d workers", e.FactoryID, e.Max)
}
