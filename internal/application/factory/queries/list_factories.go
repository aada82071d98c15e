package queries

import (
	"context"
	"fmt"

	"github.com/factorycraft/factory-economy/internal/application/factory/services"
	"github.com/factorycraft/factory-economy/internal/application/mediator"
	"github.com/factorycraft/factory-economy/internal/domain/factory"
	"github.com/factorycraft/factory-economy/internal/domain/shared"
)

// ListFactoriesQuery lists factories, optionally only those owned by OwnerID
// or only those without an owner.
type ListFactoriesQuery struct {
	OwnerID     *shared.PlayerID
	UnownedOnly bool
}

// FactorySummary is one row of a factory listing
type FactorySummary struct {
	ID       string
	Type     shared.FactoryType
	Owner    *shared.PlayerID
	Price    float64
	Level    int
	Status   factory.Status
	RecipeID string
	Progress float64
}

type ListFactoriesResponse struct {
	Factories []FactorySummary
}

type ListFactoriesHandler struct {
	registry *services.Registry
	engine   *services.ProductionEngine
}

func NewListFactoriesHandler(registry *services.Registry, engine *services.ProductionEngine) *ListFactoriesHandler {
	return &ListFactoriesHandler{registry: registry, engine: engine}
}

func (h *ListFactoriesHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*ListFactoriesQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListFactoriesQuery")
	}

	var factories []*factory.Factory
	switch {
	case query.OwnerID != nil:
		factories = h.registry.ByOwner(*query.OwnerID)
	default:
		factories = h.registry.All()
	}

	resp := &ListFactoriesResponse{Factories: make([]FactorySummary, 0, len(factories))}
	for _, f := range factories {
		if query.UnownedOnly && f.IsOwned() {
			continue
		}
		summary := FactorySummary{
			ID:    f.ID(),
			Type:  f.Type(),
			Owner: f.Owner(),
			Price: f.Price(),
			Level: f.Level(),
		}
		if progress, err := h.engine.Progress(f.ID()); err == nil {
			summary.Status = progress.Status
			summary.RecipeID = progress.RecipeID
			summary.Progress = progress.Progress
		}
		resp.Factories = append(resp.Factories, summary)
	}
	return resp, nil
}
