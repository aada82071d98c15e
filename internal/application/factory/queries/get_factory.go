package queries

import (
	"context"
	"fmt"

	"github.com/factorycraft/factory-economy/internal/application/factory/services"
	"github.com/factorycraft/factory-economy/internal/application/mediator"
	"github.com/factorycraft/factory-economy/internal/domain/factory"
	"github.com/factorycraft/factory-economy/internal/domain/storage"
)

// GetFactoryQuery fetches everything presentation needs about one factory
type GetFactoryQuery struct {
	FactoryID string
}

// FactoryDetails is a read model combining the factory, its production and its storage
type FactoryDetails struct {
	Factory     *factory.Factory
	Progress    services.ProgressView
	Input       map[string]int
	Output      map[string]int
	InputSlots  services.SlotUsage
	OutputSlots services.SlotUsage
	UpgradeCost float64
}

// GetFactoryHandler handles the GetFactory query
type GetFactoryHandler struct {
	registry *services.Registry
	storage  *services.StorageService
	engine   *services.ProductionEngine
}

// NewGetFactoryHandler creates a new GetFactoryHandler
func NewGetFactoryHandler(registry *services.Registry, storageSvc *services.StorageService, engine *services.ProductionEngine) *GetFactoryHandler {
	return &GetFactoryHandler{registry: registry, storage: storageSvc, engine: engine}
}

// Handle executes the GetFactory query
func (h *GetFactoryHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*GetFactoryQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetFactoryQuery")
	}

	f, err := h.registry.Get(query.FactoryID)
	if err != nil {
		return nil, err
	}
	progress, err := h.engine.Progress(query.FactoryID)
	if err != nil {
		return nil, err
	}
	input, err := h.storage.SnapshotInput(query.FactoryID)
	if err != nil {
		return nil, err
	}
	output, err := h.storage.SnapshotOutput(query.FactoryID)
	if err != nil {
		return nil, err
	}
	inSlots, err := h.storage.Slots(query.FactoryID, storage.CompartmentInput)
	if err != nil {
		return nil, err
	}
	outSlots, err := h.storage.Slots(query.FactoryID, storage.CompartmentOutput)
	if err != nil {
		return nil, err
	}

	return &FactoryDetails{
		Factory:     f,
		Progress:    progress,
		Input:       input,
		Output:      output,
		InputSlots:  inSlots,
		OutputSlots: outSlots,
		UpgradeCost: services.UpgradeCost(f, h.registry.Settings()),
	}, nil
}
