package commands

import (
	"context"
	"fmt"

	"github.com/factorycraft/factory-economy/internal/application/factory/services"
	"github.com/factorycraft/factory-economy/internal/application/mediator"
)

// RemoveFactoryCommand deletes a factory with its storage, task and employees
type RemoveFactoryCommand struct {
	FactoryID string
}

type RemoveFactoryResponse struct {
	Removed bool
}

type RemoveFactoryHandler struct {
	registry *services.Registry
}

func NewRemoveFactoryHandler(registry *services.Registry) *RemoveFactoryHandler {
	return &RemoveFactoryHandler{registry: registry}
}

func (h *RemoveFactoryHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*RemoveFactoryCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *RemoveFactoryCommand")
	}

	removed, err := h.registry.Remove(ctx, cmd.FactoryID)
	if err != nil {
		return nil, err
	}
	return &RemoveFactoryResponse{Removed: removed}, nil
}
