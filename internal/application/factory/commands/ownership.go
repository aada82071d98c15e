package commands

import (
	"context"
	"fmt"

	"github.com/factorycraft/factory-economy/internal/application/factory/services"
	"github.com/factorycraft/factory-economy/internal/application/mediator"
	"github.com/factorycraft/factory-economy/internal/domain/shared"
)

// BuyFactoryCommand transfers an unowned factory to the player for its price
type BuyFactoryCommand struct {
	PlayerID  shared.PlayerID
	FactoryID string
}

// BuyFactoryResponse reports the price paid
type BuyFactoryResponse struct {
	FactoryID string
	Price     float64
}

// BuyFactoryHandler handles the BuyFactory command
type BuyFactoryHandler struct {
	registry *services.Registry
}

func NewBuyFactoryHandler(registry *services.Registry) *BuyFactoryHandler {
	return &BuyFactoryHandler{registry: registry}
}

func (h *BuyFactoryHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*BuyFactoryCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *BuyFactoryCommand")
	}

	if err := h.registry.Buy(ctx, cmd.PlayerID, cmd.FactoryID); err != nil {
		return nil, err
	}
	f, err := h.registry.Get(cmd.FactoryID)
	if err != nil {
		return nil, err
	}
	return &BuyFactoryResponse{FactoryID: f.ID(), Price: f.Price()}, nil
}

// SellFactoryCommand returns an owned factory to the market
type SellFactoryCommand struct {
	PlayerID  shared.PlayerID
	FactoryID string
}

// SellFactoryResponse reports the credits paid out
type SellFactoryResponse struct {
	FactoryID string
	Payout    float64
}

// SellFactoryHandler handles the SellFactory command
type SellFactoryHandler struct {
	registry *services.Registry
}

func NewSellFactoryHandler(registry *services.Registry) *SellFactoryHandler {
	return &SellFactoryHandler{registry: registry}
}

func (h *SellFactoryHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*SellFactoryCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *SellFactoryCommand")
	}

	payout, err := h.registry.Sell(ctx, cmd.PlayerID, cmd.FactoryID)
	if err != nil {
		return nil, err
	}
	return &SellFactoryResponse{FactoryID: cmd.FactoryID, Payout: payout}, nil
}

// UpgradeFactoryCommand pays for and starts the next level upgrade
type UpgradeFactoryCommand struct {
	PlayerID  shared.PlayerID
	FactoryID string
}

// UpgradeFactoryResponse reports the charge and when the new level applies
type UpgradeFactoryResponse struct {
	FactoryID        string
	Cost             float64
	TargetLevel      int
	RemainingSeconds int64
}

// UpgradeFactoryHandler handles the UpgradeFactory command
type UpgradeFactoryHandler struct {
	registry *services.Registry
	clock    shared.Clock
}

func NewUpgradeFactoryHandler(registry *services.Registry, clock shared.Clock) *UpgradeFactoryHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &UpgradeFactoryHandler{registry: registry, clock: clock}
}

func (h *UpgradeFactoryHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*UpgradeFactoryCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *UpgradeFactoryCommand")
	}

	cost, err := h.registry.Upgrade(ctx, cmd.PlayerID, cmd.FactoryID)
	if err != nil {
		return nil, err
	}

	resp := &UpgradeFactoryResponse{FactoryID: cmd.FactoryID, Cost: cost}
	if f, err := h.registry.Get(cmd.FactoryID); err == nil {
		if u := f.Upgrade(); u != nil {
			resp.TargetLevel = u.TargetLevel()
			resp.RemainingSeconds = u.Remaining(h.clock.Now())
		}
	}
	return resp, nil
}
