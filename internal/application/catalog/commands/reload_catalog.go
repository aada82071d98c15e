package commands

import (
	"context"
	"fmt"

	"github.com/factorycraft/factory-economy/internal/application/catalog/services"
	"github.com/factorycraft/factory-economy/internal/application/mediator"
)

// ReloadCatalogCommand re-reads the resource and recipe files
type ReloadCatalogCommand struct{}

type ReloadCatalogResponse struct {
	Result services.ReloadResult
}

type ReloadCatalogHandler struct {
	loader *services.Loader
}

func NewReloadCatalogHandler(loader *services.Loader) *ReloadCatalogHandler {
	return &ReloadCatalogHandler{loader: loader}
}

func (h *ReloadCatalogHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	if _, ok := request.(*ReloadCatalogCommand); !ok {
		return nil, fmt.Errorf("invalid request type: expected *ReloadCatalogCommand")
	}

	result, err := h.loader.Reload(ctx)
	if err != nil {
		return nil, err
	}
	return &ReloadCatalogResponse{Result: result}, nil
}
