package commands

import (
	"context"
	"fmt"

	"github.com/factorycraft/factory-economy/internal/application/factory/services"
	"github.com/factorycraft/factory-economy/internal/application/mediator"
	"github.com/factorycraft/factory-economy/internal/domain/storage"
)

// AdjustStorageCommand adds (Delta > 0) or removes (Delta < 0) units in one
// compartment. Used by administrators and by hosts feeding items in.
type AdjustStorageCommand struct {
	FactoryID   string
	Compartment storage.Compartment
	ResourceID  string
	Delta       int
}

// AdjustStorageResponse reports the resulting amount. Applied is false when
// a removal asked for more than the compartment holds.
type AdjustStorageResponse struct {
	Applied bool
	Amount  int
}

type AdjustStorageHandler struct {
	storage *services.StorageService
}

func NewAdjustStorageHandler(storageSvc *services.StorageService) *AdjustStorageHandler {
	return &AdjustStorageHandler{storage: storageSvc}
}

func (h *AdjustStorageHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*AdjustStorageCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *AdjustStorageCommand")
	}

	var add func(context.Context, string, string, int) error
	var remove func(context.Context, string, string, int) (bool, error)
	var amount func(string, string) (int, error)
	switch cmd.Compartment {
	case storage.CompartmentInput:
		add, remove, amount = h.storage.AddInput, h.storage.RemoveInput, h.storage.AmountInput
	case storage.CompartmentOutput:
		add, remove, amount = h.storage.AddOutput, h.storage.RemoveOutput, h.storage.AmountOutput
	default:
		return nil, fmt.Errorf("unknown compartment %q", cmd.Compartment)
	}

	applied := true
	switch {
	case cmd.Delta > 0:
		if err := add(ctx, cmd.FactoryID, cmd.ResourceID, cmd.Delta); err != nil {
			return nil, err
		}
	case cmd.Delta < 0:
		ok, err := remove(ctx, cmd.FactoryID, cmd.ResourceID, -cmd.Delta)
		if err != nil {
			return nil, err
		}
		applied = ok
	default:
		return nil, fmt.Errorf("delta cannot be zero")
	}

	n, err := amount(cmd.FactoryID, cmd.ResourceID)
	if err != nil {
		return nil, err
	}
	return &AdjustStorageResponse{Applied: applied, Amount: n}, nil
}
