package commands

import (
	"context"
	"fmt"

	"github.com/factorycraft/factory-economy/internal/application/common"
	"github.com/factorycraft/factory-economy/internal/application/factory/services"
	"github.com/factorycraft/factory-economy/internal/application/mediator"
	"github.com/factorycraft/factory-economy/internal/domain/factory"
	"github.com/factorycraft/factory-economy/internal/domain/shared"
)

// StartProductionCommand consumes a recipe's inputs and starts its timer
type StartProductionCommand struct {
	PlayerID  shared.PlayerID
	FactoryID string
	RecipeID  string
}

type StartProductionResponse struct {
	Task *factory.ProductionTask
}

type StartProductionHandler struct {
	engine *services.ProductionEngine
}

func NewStartProductionHandler(engine *services.ProductionEngine) *StartProductionHandler {
	return &StartProductionHandler{engine: engine}
}

func (h *StartProductionHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*StartProductionCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *StartProductionCommand")
	}

	task, err := h.engine.Start(ctx, cmd.PlayerID, cmd.FactoryID, cmd.RecipeID)
	if err != nil {
		return nil, err
	}
	return &StartProductionResponse{Task: task}, nil
}

// CancelProductionCommand drops the running task. Consumed inputs are not refunded.
type CancelProductionCommand struct {
	PlayerID  shared.PlayerID
	FactoryID string
}

type CancelProductionResponse struct{}

type CancelProductionHandler struct {
	engine *services.ProductionEngine
}

func NewCancelProductionHandler(engine *services.ProductionEngine) *CancelProductionHandler {
	return &CancelProductionHandler{engine: engine}
}

func (h *CancelProductionHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*CancelProductionCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *CancelProductionCommand")
	}

	if err := h.engine.Cancel(ctx, cmd.PlayerID, cmd.FactoryID); err != nil {
		return nil, err
	}
	return &CancelProductionResponse{}, nil
}

// TickFactoriesCommand advances production and upgrades. With an empty
// FactoryID every active factory is ticked.
type TickFactoriesCommand struct {
	FactoryID string
}

type TickFactoriesResponse struct {
	Summary services.TickSummary
	Result  *services.TickResult // set when a single factory was ticked
}

type TickFactoriesHandler struct {
	engine *services.ProductionEngine
}

func NewTickFactoriesHandler(engine *services.ProductionEngine) *TickFactoriesHandler {
	return &TickFactoriesHandler{engine: engine}
}

func (h *TickFactoriesHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*TickFactoriesCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *TickFactoriesCommand")
	}

	if cmd.FactoryID == "" {
		summary := h.engine.TickAll(ctx)
		if summary.Harvested+summary.Upgraded+summary.Failed > 0 {
			common.LoggerFromContext(ctx).Info("factories ticked",
				"ticked", summary.Ticked,
				"harvested", summary.Harvested,
				"upgraded", summary.Upgraded,
				"blocked", summary.Blocked,
				"failed", summary.Failed)
		}
		return &TickFactoriesResponse{Summary: summary}, nil
	}

	result, err := h.engine.Tick(ctx, cmd.FactoryID)
	if err != nil {
		return nil, err
	}
	return &TickFactoriesResponse{Result: &result}, nil
}
