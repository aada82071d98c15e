package commands

import (
	"context"
	"fmt"

	"github.com/factorycraft/factory-economy/internal/application/factory/services"
	"github.com/factorycraft/factory-economy/internal/application/mediator"
	"github.com/factorycraft/factory-economy/internal/domain/factory"
	"github.com/factorycraft/factory-economy/internal/domain/shared"
)

// TeleportCommand moves a player to a factory's fast-travel point.
// BypassOwnership lets administrators visit factories they do not own.
type TeleportCommand struct {
	PlayerID        shared.PlayerID
	FactoryID       string
	BypassOwnership bool
}

type TeleportResponse struct {
	Teleported bool
}

type TeleportHandler struct {
	registry *services.Registry
}

func NewTeleportHandler(registry *services.Registry) *TeleportHandler {
	return &TeleportHandler{registry: registry}
}

func (h *TeleportHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*TeleportCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *TeleportCommand")
	}

	moved, err := h.registry.TeleportPlayer(ctx, cmd.PlayerID, cmd.FactoryID, cmd.BypassOwnership)
	if err != nil {
		return nil, err
	}
	return &TeleportResponse{Teleported: moved}, nil
}

// SetFastTravelCommand sets or, with a nil Location, clears a factory's fast-travel point
type SetFastTravelCommand struct {
	FactoryID string
	Location  *factory.Location
}

type SetFastTravelResponse struct{}

type SetFastTravelHandler struct {
	registry *services.Registry
}

func NewSetFastTravelHandler(registry *services.Registry) *SetFastTravelHandler {
	return &SetFastTravelHandler{registry: registry}
}

func (h *SetFastTravelHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*SetFastTravelCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *SetFastTravelCommand")
	}

	if err := h.registry.SetFastTravel(ctx, cmd.FactoryID, cmd.Location); err != nil {
		return nil, err
	}
	return &SetFastTravelResponse{}, nil
}
