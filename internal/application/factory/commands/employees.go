package commands

import (
	"context"
	"fmt"

	"github.com/factorycraft/factory-economy/internal/application/factory/services"
	"github.com/factorycraft/factory-economy/internal/application/mediator"
	"github.com/factorycraft/factory-economy/internal/domain/factory"
	"github.com/factorycraft/factory-economy/internal/domain/shared"
)

// HireEmployeeCommand adds an NPC worker to an owned factory
type HireEmployeeCommand struct {
	PlayerID  shared.PlayerID
	FactoryID string
	Name      string
	Wage      float64
}

type HireEmployeeResponse struct {
	Employee factory.Employee
}

type HireEmployeeHandler struct {
	registry *services.Registry
}

func NewHireEmployeeHandler(registry *services.Registry) *HireEmployeeHandler {
	return &HireEmployeeHandler{registry: registry}
}

func (h *HireEmployeeHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*HireEmployeeCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *HireEmployeeCommand")
	}

	e, err := h.registry.HireEmployee(ctx, cmd.PlayerID, cmd.FactoryID, cmd.Name, cmd.Wage)
	if err != nil {
		return nil, err
	}
	return &HireEmployeeResponse{Employee: e}, nil
}

// FireEmployeeCommand dismisses a worker
type FireEmployeeCommand struct {
	PlayerID   shared.PlayerID
	FactoryID  string
	EmployeeID string
}

type FireEmployeeResponse struct{}

type FireEmployeeHandler struct {
	registry *services.Registry
}

func NewFireEmployeeHandler(registry *services.Registry) *FireEmployeeHandler {
	return &FireEmployeeHandler{registry: registry}
}

func (h *FireEmployeeHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*FireEmployeeCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *FireEmployeeCommand")
	}

	if err := h.registry.FireEmployee(ctx, cmd.PlayerID, cmd.FactoryID, cmd.EmployeeID); err != nil {
		return nil, err
	}
	return &FireEmployeeResponse{}, nil
}
