package commands

import (
	"context"
	"fmt"

	"github.com/factorycraft/factory-economy/internal/application/factory/services"
	"github.com/factorycraft/factory-economy/internal/application/mediator"
	"github.com/factorycraft/factory-economy/internal/domain/factory"
	"github.com/factorycraft/factory-economy/internal/domain/shared"
)

// CreateFactoryCommand registers a new unowned factory on a world region
type CreateFactoryCommand struct {
	ID         string
	RegionRef  string
	Type       string
	Price      float64
	FastTravel *factory.Location // Optional
}

// CreateFactoryResponse carries the created factory
type CreateFactoryResponse struct {
	Factory *factory.Factory
}

// CreateFactoryHandler handles the CreateFactory command
type CreateFactoryHandler struct {
	registry *services.Registry
}

// NewCreateFactoryHandler creates a new CreateFactoryHandler
func NewCreateFactoryHandler(registry *services.Registry) *CreateFactoryHandler {
	return &CreateFactoryHandler{registry: registry}
}

// Handle executes the CreateFactory command
func (h *CreateFactoryHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*CreateFactoryCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *CreateFactoryCommand")
	}

	factoryType, err := shared.ParseFactoryType(cmd.Type)
	if err != nil {
		return nil, fmt.Errorf("invalid factory type: %w", err)
	}

	f, err := h.registry.Create(ctx, services.CreateFactoryRequest{
		ID:         cmd.ID,
		RegionRef:  cmd.RegionRef,
		Type:       factoryType,
		Price:      cmd.Price,
		FastTravel: cmd.FastTravel,
	})
	if err != nil {
		return nil, err
	}

	return &CreateFactoryResponse{Factory: f}, nil
}
