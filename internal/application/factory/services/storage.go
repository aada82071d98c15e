package services

import (
	"context"
	"errors"

	"github.com/factorycraft/factory-economy/internal/adapters/metrics"
	"github.com/factorycraft/factory-economy/internal/domain/factory"
	"github.com/factorycraft/factory-economy/internal/domain/shared"
	"github.com/factorycraft/factory-economy/internal/domain/storage"
)

// StorageService exposes the per-factory input/output ledgers.
// Every mutation is persisted before it becomes visible.
type StorageService struct {
	registry *Registry
}

// NewStorageService creates a storage service over the registry's ledgers
func NewStorageService(registry *Registry) *StorageService {
	return &StorageService{registry: registry}
}

// AddInput credits the input compartment; fails with StorageFull past capacity
func (s *StorageService) AddInput(ctx context.Context, factoryID, resourceID string, amount int) error {
	return s.add(ctx, storage.CompartmentInput, factoryID, resourceID, amount)
}

// AddOutput credits the output compartment; fails with StorageFull past capacity
func (s *StorageService) AddOutput(ctx context.Context, factoryID, resourceID string, amount int) error {
	return s.add(ctx, storage.CompartmentOutput, factoryID, resourceID, amount)
}

// RemoveInput debits the input compartment. It returns false without
// mutating anything when fewer than amount units are held.
func (s *StorageService) RemoveInput(ctx context.Context, factoryID, resourceID string, amount int) (bool, error) {
	return s.remove(ctx, storage.CompartmentInput, factoryID, resourceID, amount)
}

// RemoveOutput debits the output compartment, see RemoveInput
func (s *StorageService) RemoveOutput(ctx context.Context, factoryID, resourceID string, amount int) (bool, error) {
	return s.remove(ctx, storage.CompartmentOutput, factoryID, resourceID, amount)
}

// AddOutputAsOwner credits the output compartment only while ownerID still
// owns the factory. The ownership check and the credit happen under the
// factory lock.
func (s *StorageService) AddOutputAsOwner(ctx context.Context, ownerID shared.PlayerID, factoryID, resourceID string, amount int) error {
	return s.add(ctx, storage.CompartmentOutput, factoryID, resourceID, amount, requireOwner(ownerID))
}

// RemoveOutputAsOwner debits the output compartment only while ownerID still
// owns the factory, see RemoveInput.
func (s *StorageService) RemoveOutputAsOwner(ctx context.Context, ownerID shared.PlayerID, factoryID, resourceID string, amount int) (bool, error) {
	return s.remove(ctx, storage.CompartmentOutput, factoryID, resourceID, amount, requireOwner(ownerID))
}

func requireOwner(ownerID shared.PlayerID) func(f *factory.Factory) error {
	return func(f *factory.Factory) error {
		return f.RequireOwner(ownerID)
	}
}

func (s *StorageService) add(ctx context.Context, c storage.Compartment, factoryID, resourceID string, amount int, checks ...func(f *factory.Factory) error) error {
	err := s.registry.mutate(ctx, factoryID, func(f *factory.Factory, l *storage.Ledger) (dirty, error) {
		for _, check := range checks {
			if err := check(f); err != nil {
				return 0, err
			}
		}
		if err := l.Add(c, resourceID, amount, s.registry.settings.Capacity(f.Level())); err != nil {
			return 0, err
		}
		return dirtyLedger, nil
	})
	var full *storage.StorageFullError
	if errors.As(err, &full) {
		metrics.RecordStorageFull(string(c))
	}
	return err
}

func (s *StorageService) remove(ctx context.Context, c storage.Compartment, factoryID, resourceID string, amount int, checks ...func(f *factory.Factory) error) (bool, error) {
	if amount <= 0 {
		return false, shared.NewInvalidAmountError("amount", float64(amount))
	}
	removed := false
	err := s.registry.mutate(ctx, factoryID, func(f *factory.Factory, l *storage.Ledger) (dirty, error) {
		for _, check := range checks {
			if err := check(f); err != nil {
				return 0, err
			}
		}
		if !l.Remove(c, resourceID, amount) {
			return 0, nil
		}
		removed = true
		return dirtyLedger, nil
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}

// AmountInput returns the units of a resource in the input compartment, 0 if absent
func (s *StorageService) AmountInput(factoryID, resourceID string) (int, error) {
	return s.amount(storage.CompartmentInput, factoryID, resourceID)
}

// AmountOutput returns the units of a resource in the output compartment, 0 if absent
func (s *StorageService) AmountOutput(factoryID, resourceID string) (int, error) {
	return s.amount(storage.CompartmentOutput, factoryID, resourceID)
}

func (s *StorageService) amount(c storage.Compartment, factoryID, resourceID string) (int, error) {
	_, l, err := s.registry.view(factoryID)
	if err != nil {
		return 0, err
	}
	return l.Amount(c, resourceID), nil
}

// SnapshotInput returns a copy of the input compartment
func (s *StorageService) SnapshotInput(factoryID string) (map[string]int, error) {
	return s.snapshot(storage.CompartmentInput, factoryID)
}

// SnapshotOutput returns a copy of the output compartment
func (s *StorageService) SnapshotOutput(factoryID string) (map[string]int, error) {
	return s.snapshot(storage.CompartmentOutput, factoryID)
}

func (s *StorageService) snapshot(c storage.Compartment, factoryID string) (map[string]int, error) {
	_, l, err := s.registry.view(factoryID)
	if err != nil {
		return nil, err
	}
	return l.Snapshot(c), nil
}

// Clear wipes both compartments
func (s *StorageService) Clear(ctx context.Context, factoryID string) error {
	return s.registry.mutate(ctx, factoryID, func(f *factory.Factory, l *storage.Ledger) (dirty, error) {
		if l.IsEmpty() {
			return 0, nil
		}
		l.Clear()
		return dirtyLedger, nil
	})
}

// SlotUsage describes one compartment's occupancy
type SlotUsage struct {
	Compartment storage.Compartment
	Capacity    storage.Capacity
	Used        int
	Free        int
}

// Slots reports the slot usage of a compartment at the factory's current level
func (s *StorageService) Slots(factoryID string, c storage.Compartment) (SlotUsage, error) {
	f, l, err := s.registry.view(factoryID)
	if err != nil {
		return SlotUsage{}, err
	}
	capacity := s.registry.settings.Capacity(f.Level())
	return SlotUsage{
		Compartment: c,
		Capacity:    capacity,
		Used:        l.UsedSlots(c, capacity),
		Free:        l.FreeSlots(c, capacity),
	}, nil
}

// FreeSlots returns the remaining storage slots of a compartment
func (s *StorageService) FreeSlots(factoryID string, c storage.Compartment) (int, error) {
	usage, err := s.Slots(factoryID, c)
	if err != nil {
		return 0, err
	}
	return usage.Free, nil
}
