package commands

import (
	"context"
	"fmt"

	"github.com/factorycraft/factory-economy/internal/application/marketplace/services"
	"github.com/factorycraft/factory-economy/internal/application/mediator"
	"github.com/factorycraft/factory-economy/internal/domain/marketplace"
	"github.com/factorycraft/factory-economy/internal/domain/shared"
)

// CreateListingCommand offers output goods of an owned factory for sale
type CreateListingCommand struct {
	PlayerID   shared.PlayerID
	FactoryID  string
	ResourceID string
	Amount     int
	UnitPrice  float64
}

type CreateListingResponse struct {
	Listing *marketplace.Listing
}

type CreateListingHandler struct {
	market *services.Marketplace
}

func NewCreateListingHandler(market *services.Marketplace) *CreateListingHandler {
	return &CreateListingHandler{market: market}
}

func (h *CreateListingHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*CreateListingCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *CreateListingCommand")
	}

	listing, err := h.market.CreateListing(ctx, cmd.PlayerID, cmd.FactoryID, cmd.ResourceID, cmd.Amount, cmd.UnitPrice)
	if err != nil {
		return nil, err
	}
	return &CreateListingResponse{Listing: listing}, nil
}

// PurchaseListingCommand buys a listing into the input compartment of TargetFactoryID
type PurchaseListingCommand struct {
	PlayerID        shared.PlayerID
	ListingID       string
	TargetFactoryID string
}

type PurchaseListingResponse struct {
	Listing *marketplace.Listing
	Paid    float64
}

type PurchaseListingHandler struct {
	market *services.Marketplace
}

func NewPurchaseListingHandler(market *services.Marketplace) *PurchaseListingHandler {
	return &PurchaseListingHandler{market: market}
}

func (h *PurchaseListingHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*PurchaseListingCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *PurchaseListingCommand")
	}

	listing, err := h.market.Purchase(ctx, cmd.PlayerID, cmd.ListingID, cmd.TargetFactoryID)
	if err != nil {
		return nil, err
	}
	return &PurchaseListingResponse{Listing: listing, Paid: listing.Total()}, nil
}

// CancelListingCommand withdraws a listing and returns its goods
type CancelListingCommand struct {
	PlayerID  shared.PlayerID
	ListingID string
}

type CancelListingResponse struct{}

type CancelListingHandler struct {
	market *services.Marketplace
}

func NewCancelListingHandler(market *services.Marketplace) *CancelListingHandler {
	return &CancelListingHandler{market: market}
}

func (h *CancelListingHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*CancelListingCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *CancelListingCommand")
	}

	if err := h.market.Cancel(ctx, cmd.PlayerID, cmd.ListingID); err != nil {
		return nil, err
	}
	return &CancelListingResponse{}, nil
}
