package queries

import (
	"context"
	"fmt"

	"github.com/factorycraft/factory-economy/internal/application/factory/services"
	"github.com/factorycraft/factory-economy/internal/application/mediator"
	"github.com/factorycraft/factory-economy/internal/domain/catalog"
)

// ListRecipesQuery lists the recipes a factory can run
type ListRecipesQuery struct {
	FactoryID string
}

type ListRecipesResponse struct {
	Recipes []catalog.Recipe
}

type ListRecipesHandler struct {
	engine *services.ProductionEngine
}

func NewListRecipesHandler(engine *services.ProductionEngine) *ListRecipesHandler {
	return &ListRecipesHandler{engine: engine}
}

func (h *ListRecipesHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*ListRecipesQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListRecipesQuery")
	}

	recipes, err := h.engine.AvailableRecipes(query.FactoryID)
	if err != nil {
		return nil, err
	}
	return &ListRecipesResponse{Recipes: recipes}, nil
}
