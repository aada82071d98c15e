package queries

import (
	"context"
	"fmt"

	"github.com/factorycraft/factory-economy/internal/application/marketplace/services"
	"github.com/factorycraft/factory-economy/internal/application/mediator"
	"github.com/factorycraft/factory-economy/internal/domain/marketplace"
	"github.com/factorycraft/factory-economy/internal/domain/shared"
)

// ListListingsQuery lists active listings, or every listing of SellerID
type ListListingsQuery struct {
	SellerID *shared.PlayerID
}

type ListListingsResponse struct {
	Listings []*marketplace.Listing
}

type ListListingsHandler struct {
	market *services.Marketplace
}

func NewListListingsHandler(market *services.Marketplace) *ListListingsHandler {
	return &ListListingsHandler{market: market}
}

func (h *ListListingsHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*ListListingsQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListListingsQuery")
	}

	var (
		listings []*marketplace.Listing
		err      error
	)
	if query.SellerID != nil {
		listings, err = h.market.BySeller(ctx, *query.SellerID)
	} else {
		listings, err = h.market.Active(ctx)
	}
	if err != nil {
		return nil, err
	}
	return &ListListingsResponse{Listings: listings}, nil
}
