package storage

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/factorycraft/factory-economy/internal/domain/shared"
)

// Compartment selects one of the two independent ledgers a factory holds
type Compartment string

const (
	CompartmentInput  Compartment = "INPUT"
	CompartmentOutput Compartment = "OUTPUT"
)

// ParseCompartment accepts "input" or "output" in any case
func ParseCompartment(s string) (Compartment, error) {
	switch c := Compartment(strings.ToUpper(strings.TrimSpace(s))); c {
	case CompartmentInput, CompartmentOutput:
		return c, nil
	default:
		return "", fmt.Errorf("unknown compartment %q (want input or output)", s)
	}
}

// Capacity bounds a compartment: Slots stacks of at most StackSize units each
type Capacity struct {
	Slots     int
	StackSize int
}

// CapacityForLevel computes a compartment's capacity at a factory level:
// base + (level-1) * perLevel slots.
func CapacityForLevel(baseSlots, slotsPerLevel, stackSize, level int) Capacity {
	if level < 1 {
		level = 1
	}
	return Capacity{
		Slots:     baseSlots + (level-1)*slotsPerLevel,
		StackSize: stackSize,
	}
}

// SlotsFor returns the number of stacks needed to hold units of one resource
func (c Capacity) SlotsFor(units int) int {
	if units <= 0 {
		return 0
	}
	if c.StackSize <= 0 {
		return 1
	}
	slots := units / c.StackSize
	if units%c.StackSize != 0 {
		slots++
	}
	return slots
}

// headroom returns how many more units fit on top of current in the stacks
// it already occupies.
func (c Capacity) headroom(current int) int {
	if current <= 0 || c.StackSize <= 0 {
		return 0
	}
	return (c.StackSize - current%c.StackSize) % c.StackSize
}

// Ledger is a factory's two-compartment resource ledger.
//
// Invariants:
// - Counts are never negative; zero entries are pruned
// - A compartment never uses more slots than its Capacity allows
//
// Ledger is not safe for concurrent use; callers hold the owning factory's lock.
type Ledger struct {
	factoryID string
	input     map[string]int
	output    map[string]int
}

// NewLedger creates an empty ledger for a factory
func NewLedger(factoryID string) *Ledger {
	return &Ledger{
		factoryID: factoryID,
		input:     make(map[string]int),
		output:    make(map[string]int),
	}
}

// ReconstructLedger rebuilds a ledger from persisted rows, dropping non-positive counts
func ReconstructLedger(factoryID string, input, output map[string]int) *Ledger {
	l := NewLedger(factoryID)
	for res, n := range input {
		if n > 0 {
			l.input[res] = n
		}
	}
	for res, n := range output {
		if n > 0 {
			l.output[res] = n
		}
	}
	return l
}

func (l *Ledger) FactoryID() string { return l.factoryID }

func (l *Ledger) compartment(c Compartment) map[string]int {
	if c == CompartmentOutput {
		return l.output
	}
	return l.input
}

// Amount returns the count held for a resource, 0 if absent
func (l *Ledger) Amount(c Compartment, resourceID string) int {
	return l.compartment(c)[resourceID]
}

// Snapshot returns a defensive copy of a compartment
func (l *Ledger) Snapshot(c Compartment) map[string]int {
	src := l.compartment(c)
	out := make(map[string]int, len(src))
	for res, n := range src {
		out[res] = n
	}
	return out
}

// IsEmpty reports whether both compartments are empty
func (l *Ledger) IsEmpty() bool {
	return len(l.input) == 0 && len(l.output) == 0
}

// UsedSlots returns how many stacks a compartment occupies
func (l *Ledger) UsedSlots(c Compartment, capacity Capacity) int {
	used := 0
	for _, n := range l.compartment(c) {
		used += capacity.SlotsFor(n)
	}
	return used
}

// FreeSlots returns the remaining stacks in a compartment, never negative
func (l *Ledger) FreeSlots(c Compartment, capacity Capacity) int {
	free := capacity.Slots - l.UsedSlots(c, capacity)
	if free < 0 {
		return 0
	}
	return free
}

// CanAddAll reports whether every item fits into the compartment at once
func (l *Ledger) CanAddAll(c Compartment, items map[string]int, capacity Capacity) bool {
	comp := l.compartment(c)
	free := capacity.Slots - l.UsedSlots(c, capacity)
	if free < 0 {
		return false
	}
	for res, n := range items {
		if n <= 0 {
			continue
		}
		current := comp[res]
		if current > math.MaxInt-n {
			return false
		}
		if capacity.StackSize <= 0 {
			// unbounded stacks: one slot per resource
			if current > 0 {
				continue
			}
			free--
		} else {
			if n <= capacity.headroom(current) {
				continue
			}
			free -= capacity.SlotsFor(n - capacity.headroom(current))
		}
		if free < 0 {
			return false
		}
	}
	return true
}

// Add credits amount units of a resource. It fails without mutating the
// ledger when amount is not positive or the result would exceed capacity.
func (l *Ledger) Add(c Compartment, resourceID string, amount int, capacity Capacity) error {
	if amount <= 0 {
		return shared.NewInvalidAmountError("amount", float64(amount))
	}
	if !l.CanAddAll(c, map[string]int{resourceID: amount}, capacity) {
		return NewStorageFullError(l.factoryID, c, resourceID, amount, l.FreeSlots(c, capacity))
	}
	l.compartment(c)[resourceID] += amount
	return nil
}

// AddAll credits every item, all or nothing
func (l *Ledger) AddAll(c Compartment, items map[string]int, capacity Capacity) error {
	for res, n := range items {
		if n <= 0 {
			return shared.NewInvalidAmountError("amount of "+res, float64(n))
		}
	}
	if !l.CanAddAll(c, items, capacity) {
		return NewStorageFullError(l.factoryID, c, "", totalUnits(items), l.FreeSlots(c, capacity))
	}
	comp := l.compartment(c)
	for res, n := range items {
		comp[res] += n
	}
	return nil
}

// Remove debits amount units of a resource. It returns false and leaves the
// ledger untouched when fewer than amount units are held.
func (l *Ledger) Remove(c Compartment, resourceID string, amount int) bool {
	if amount <= 0 {
		return false
	}
	comp := l.compartment(c)
	current := comp[resourceID]
	if current < amount {
		return false
	}
	if current == amount {
		delete(comp, resourceID)
	} else {
		comp[resourceID] = current - amount
	}
	return true
}

// Shortfalls reports, for each required resource, how many units are missing.
// An empty result means the compartment covers every requirement.
func (l *Ledger) Shortfalls(c Compartment, required map[string]int) map[string]int {
	comp := l.compartment(c)
	missing := make(map[string]int)
	for res, need := range required {
		if have := comp[res]; have < need {
			missing[res] = need - have
		}
	}
	return missing
}

// RemoveAll debits every requirement, all or nothing
func (l *Ledger) RemoveAll(c Compartment, required map[string]int) bool {
	if len(l.Shortfalls(c, required)) > 0 {
		return false
	}
	for res, n := range required {
		l.Remove(c, res, n)
	}
	return true
}

// Clear wipes both compartments
func (l *Ledger) Clear() {
	l.input = make(map[string]int)
	l.output = make(map[string]int)
}

// Clone returns a deep copy
func (l *Ledger) Clone() *Ledger {
	return ReconstructLedger(l.factoryID, l.input, l.output)
}

// ResourceIDs returns the resources held in a compartment, sorted
func (l *Ledger) ResourceIDs(c Compartment) []string {
	comp := l.compartment(c)
	ids := make([]string, 0, len(comp))
	for res := range comp {
		ids = append(ids, res)
	}
	sort.Strings(ids)
	return ids
}

func totalUnits(items map[string]int) int {
	total := 0
	for _, n := range items {
		if total > math.MaxInt-n {
			return math.MaxInt
		}
		total += n
	}
	return total
}
