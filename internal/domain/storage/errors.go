package storage

import "fmt"

// StorageFullError indicates an add would exceed a compartment's slot capacity
type StorageFullError struct {
	FactoryID   string
	Compartment Compartment
	ResourceID  string
	Amount      int
	FreeSlots   int
}

func NewStorageFullError(factoryID string, c Compartment, resourceID string, amount, freeSlots int) *StorageFullError {
	return &StorageFullError{
		FactoryID:   factoryID,
		Compartment: c,
		ResourceID:  resourceID,
		Amount:      amount,
		FreeSlots:   freeSlots,
	}
}

func (e *StorageFullError) Error() string {
	if e.ResourceID == "" {
		return fmt.Sprintf("%s storage of factory %s is full: cannot add %d units (%d free slots)",
			e.Compartment, e.FactoryID, e.Amount, e.FreeSlots)
	}
	return fmt.Sprintf("%s storage of factory %s is full: cannot add %d %s (%d free slots)",
		e.Compartment, e.FactoryID, e.Amount, e.ResourceID, e.FreeSlots)
}
