package factory

import (
	"fmt"
	"time"

	"github.com/factorycraft/factory-economy/internal/domain/shared"
)

// ProductionState is the engine's view of a factory's production
type ProductionState string

const (
	StateIdle     ProductionState = "IDLE"
	StateRunning  ProductionState = "RUNNING"
	StateComplete ProductionState = "COMPLETE" // finished, output not yet harvested
)

// Status is the presentation status of a factory. It is derived, never stored.
type Status string

const (
	StatusRunning Status = "RUNNING"
	StatusStopped Status = "STOPPED"
	StatusNoParts Status = "NO_PARTS"
)

// Location is a fast-travel destination inside the host world
type Location struct {
	World string  `json:"world"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
	Yaw   float32 `json:"yaw"`
	Pitch float32 `json:"pitch"`
}

// Factory is the aggregate root for an owned, leveled production unit bound to a region.
//
// Invariants:
// - owner == nil means the factory is for sale; unowned factories have no task and no employees
// - level only grows, by exactly one per completed upgrade
// - at most one production task and at most one upgrade timer at a time
// - no production may start while upgrading or suspended
type Factory struct {
	id          string
	regionRef   string
	factoryType shared.FactoryType
	owner       *shared.PlayerID
	price       float64
	level       int
	task        *ProductionTask
	fastTravel  *Location
	upgrade     *UpgradeTimer
	employees   []Employee
	suspended   bool
	createdAt   time.Time
}

// NewFactory creates an unowned level-1 factory
func NewFactory(id, regionRef string, factoryType shared.FactoryType, price float64, fastTravel *Location, createdAt time.Time) (*Factory, error) {
	if id == "" {
		return nil, shared.NewValidationError("id", "factory id cannot be empty")
	}
	if regionRef == "" {
		return nil, shared.NewValidationError("region", "region reference cannot be empty")
	}
	if !factoryType.IsValid() {
		return nil, shared.NewValidationError("type", fmt.Sprintf("unknown factory type %q", factoryType))
	}
	if price < 0 {
		return nil, shared.NewInvalidAmountError("price", price)
	}

	f := &Factory{
		id:          id,
		regionRef:   regionRef,
		factoryType: factoryType,
		price:       price,
		level:       1,
		createdAt:   createdAt,
	}
	if fastTravel != nil {
		loc := *fastTravel
		f.fastTravel = &loc
	}
	return f, nil
}

// Snapshot is the complete persisted state of a factory
type Snapshot struct {
	ID         string
	RegionRef  string
	Type       shared.FactoryType
	Owner      *shared.PlayerID
	Price      float64
	Level      int
	Task       *ProductionTask
	FastTravel *Location
	Upgrade    *UpgradeTimer
	Employees  []Employee
	Suspended  bool
	CreatedAt  time.Time
}

// Reconstruct rebuilds a factory from persistence without re-running creation checks
func Reconstruct(s Snapshot) *Factory {
	f := &Factory{
		id:          s.ID,
		regionRef:   s.RegionRef,
		factoryType: s.Type,
		price:       s.Price,
		level:       s.Level,
		task:        s.Task.clone(),
		suspended:   s.Suspended,
		createdAt:   s.CreatedAt,
	}
	if f.level < 1 {
		f.level = 1
	}
	if s.Owner != nil {
		owner := *s.Owner
		f.owner = &owner
	}
	if s.FastTravel != nil {
		loc := *s.FastTravel
		f.fastTravel = &loc
	}
	if s.Upgrade != nil {
		u := *s.Upgrade
		f.upgrade = &u
	}
	f.employees = append([]Employee(nil), s.Employees...)
	return f
}

// Snapshot exports the factory state for persistence
func (f *Factory) Snapshot() Snapshot {
	c := f.Clone()
	return Snapshot{
		ID:         c.id,
		RegionRef:  c.regionRef,
		Type:       c.factoryType,
		Owner:      c.owner,
		Price:      c.price,
		Level:      c.level,
		Task:       c.task,
		FastTravel: c.fastTravel,
		Upgrade:    c.upgrade,
		Employees:  c.employees,
		Suspended:  c.suspended,
		CreatedAt:  c.createdAt,
	}
}

// Clone returns a deep copy
func (f *Factory) Clone() *Factory {
	return Reconstruct(Snapshot{
		ID:         f.id,
		RegionRef:  f.regionRef,
		Type:       f.factoryType,
		Owner:      f.owner,
		Price:      f.price,
		Level:      f.level,
		Task:       f.task,
		FastTravel: f.fastTravel,
		Upgrade:    f.upgrade,
		Employees:  f.employees,
		Suspended:  f.suspended,
		CreatedAt:  f.createdAt,
	})
}

// Getters

func (f *Factory) ID() string               { return f.id }
func (f *Factory) RegionRef() string        { return f.regionRef }
func (f *Factory) Type() shared.FactoryType { return f.factoryType }
func (f *Factory) Price() float64           { return f.price }
func (f *Factory) Level() int               { return f.level }
func (f *Factory) Task() *ProductionTask    { return f.task }
func (f *Factory) Upgrade() *UpgradeTimer   { return f.upgrade }
func (f *Factory) IsSuspended() bool        { return f.suspended }
func (f *Factory) CreatedAt() time.Time     { return f.createdAt }
func (f *Factory) EmployeeCount() int       { return len(f.employees) }
func (f *Factory) IsUpgrading() bool        { return f.upgrade != nil }
func (f *Factory) HasTask() bool            { return f.task != nil }

// Owner returns the owning player, or nil when the factory is for sale
func (f *Factory) Owner() *shared.PlayerID {
	if f.owner == nil {
		return nil
	}
	owner := *f.owner
	return &owner
}

// FastTravel returns the teleport destination, or nil if none is set
func (f *Factory) FastTravel() *Location {
	if f.fastTravel == nil {
		return nil
	}
	loc := *f.fastTravel
	return &loc
}

// Employees returns a copy of the workforce
func (f *Factory) Employees() []Employee {
	return append([]Employee(nil), f.employees...)
}

// Ownership

// IsOwned reports whether a player owns the factory
func (f *Factory) IsOwned() bool {
	return f.owner != nil
}

// IsOwnedBy reports whether playerID owns the factory
func (f *Factory) IsOwnedBy(playerID shared.PlayerID) bool {
	return f.owner != nil && f.owner.Equals(playerID)
}

// RequireOwner returns ErrNotOwner unless playerID owns the factory
func (f *Factory) RequireOwner(playerID shared.PlayerID) error {
	if !f.IsOwnedBy(playerID) {
		return &ErrNotOwner{FactoryID: f.id, PlayerID: playerID}
	}
	return nil
}

// AssignOwner transfers an unowned factory to playerID
func (f *Factory) AssignOwner(playerID shared.PlayerID) error {
	if f.owner != nil {
		return &ErrAlreadyOwned{FactoryID: f.id, Owner: *f.owner}
	}
	if playerID.IsZero() {
		return shared.NewValidationError("owner", "owner cannot be empty")
	}
	owner := playerID
	f.owner = &owner
	return nil
}

// ReleaseOwner puts the factory back on sale. Production and any pending
// upgrade are cancelled without refund, employees are dismissed and a
// suspension is lifted. Storage is not touched here.
func (f *Factory) ReleaseOwner() {
	f.owner = nil
	f.task = nil
	f.upgrade = nil
	f.employees = nil
	f.suspended = false
}

// SetFastTravel replaces (or clears, with nil) the teleport destination
func (f *Factory) SetFastTravel(loc *Location) {
	if loc == nil {
		f.fastTravel = nil
		return
	}
	l := *loc
	f.fastTravel = &l
}

// Production

// State derives the production state at now
func (f *Factory) State(now time.Time) ProductionState {
	switch {
	case f.task == nil:
		return StateIdle
	case f.task.IsComplete(now):
		return StateComplete
	default:
		return StateRunning
	}
}

// Status derives the presentation status. A task that is complete but not
// yet harvested still reports RUNNING. noPartsUntil is the expiry of the
// transient NO_PARTS signal (zero when none).
func (f *Factory) Status(now time.Time, noPartsUntil time.Time) Status {
	if f.task != nil {
		return StatusRunning
	}
	if !noPartsUntil.IsZero() && now.Before(noPartsUntil) {
		return StatusNoParts
	}
	return StatusStopped
}

// CanStartProduction checks every precondition that depends on the factory alone
func (f *Factory) CanStartProduction(now time.Time) error {
	if f.task != nil {
		return &ErrProductionActive{FactoryID: f.id, RecipeID: f.task.RecipeID()}
	}
	if f.upgrade != nil {
		return &ErrAlreadyUpgrading{FactoryID: f.id, RemainingSeconds: f.upgrade.Remaining(now)}
	}
	if f.suspended {
		return &ErrFactorySuspended{FactoryID: f.id}
	}
	return nil
}

// StartTask installs a production task
func (f *Factory) StartTask(task *ProductionTask, now time.Time) error {
	if err := f.CanStartProduction(now); err != nil {
		return err
	}
	f.task = task.clone()
	return nil
}

// ClearTask drops the current task (harvested or cancelled)
func (f *Factory) ClearTask() {
	f.task = nil
}

// Upgrades

// BeginUpgrade starts the upgrade timer towards level+1
func (f *Factory) BeginUpgrade(now time.Time, durationSeconds, maxLevel int) error {
	if f.upgrade != nil {
		return &ErrAlreadyUpgrading{FactoryID: f.id, RemainingSeconds: f.upgrade.Remaining(now)}
	}
	if f.level >= maxLevel {
		return &ErrMaxLevel{FactoryID: f.id, MaxLevel: maxLevel}
	}
	if durationSeconds < 0 {
		durationSeconds = 0
	}
	f.upgrade = &UpgradeTimer{
		startedAt:       now.Unix(),
		durationSeconds: durationSeconds,
		targetLevel:     f.level + 1,
	}
	return nil
}

// CompleteUpgradeIfDue applies a finished upgrade, raising level by exactly one
func (f *Factory) CompleteUpgradeIfDue(now time.Time) bool {
	if f.upgrade == nil || !f.upgrade.IsDue(now) {
		return false
	}
	f.level++
	f.upgrade = nil
	return true
}

// Workforce

// Hire adds an employee, up to max
func (f *Factory) Hire(e Employee, max int) error {
	if len(f.employees) >= max {
		return &ErrEmployeeLimit{FactoryID: f.id, Max: max}
	}
	f.employees = append(f.employees, e)
	return nil
}

// Fire removes an employee by id
func (f *Factory) Fire(employeeID string) error {
	for i, e := range f.employees {
		if e.id == employeeID {
			f.employees = append(f.employees[:i], f.employees[i+1:]...)
			return nil
		}
	}
	return shared.NewNotFoundError("employee", employeeID)
}

// TotalWages sums every employee's wage
func (f *Factory) TotalWages() float64 {
	total := 0.0
	for _, e := range f.employees {
		total += e.wage
	}
	return total
}

// Billing

// Suspend blocks new production until Resume
func (f *Factory) Suspend() { f.suspended = true }

// Resume lifts a suspension
func (f *Factory) Resume() { f.suspended = false }
