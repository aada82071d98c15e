package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/factorycraft/factory-economy/internal/application/common"
	"github.com/factorycraft/factory-economy/internal/domain/catalog"
)

// ReloadResult reports what a catalog reload kept and skipped
type ReloadResult struct {
	Resources int
	Recipes   int
	Warnings  []catalog.ConfigLoadWarning
	// Unresolved lists recipes that reference resources missing from the
	// resource catalog. They stay loaded and are rejected at production start.
	Unresolved []*catalog.ErrUnknownResources
}

// Loader refreshes the resource and recipe catalogs from one source
type Loader struct {
	resources *catalog.ResourceCatalog
	recipes   *catalog.RecipeCatalog
	source    catalog.Source
	logger    *slog.Logger

	mu sync.Mutex
}

func NewLoader(resources *catalog.ResourceCatalog, recipes *catalog.RecipeCatalog, source catalog.Source, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = common.DiscardLogger()
	}
	return &Loader{
		resources: resources,
		recipes:   recipes,
		source:    source,
		logger:    logger.With("component", "catalog"),
	}
}

// Reload replaces resources first, then recipes. Skipped entries are logged
// as warnings. If the resource source fails, neither catalog changes.
func (l *Loader) Reload(ctx context.Context) (ReloadResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var result ReloadResult

	warnings, err := l.resources.Reload(ctx, l.source)
	result.Warnings = append(result.Warnings, warnings...)
	if err != nil {
		l.logWarnings(result.Warnings)
		return result, err
	}

	warnings, err = l.recipes.Reload(ctx, l.source)
	result.Warnings = append(result.Warnings, warnings...)
	l.logWarnings(result.Warnings)
	if err != nil {
		return result, fmt.Errorf("resources reloaded but recipes kept: %w", err)
	}

	result.Resources = l.resources.Len()
	result.Recipes = l.recipes.Len()

	for _, recipe := range l.recipes.All() {
		var unknown *catalog.ErrUnknownResources
		if err := recipe.ValidateResources(l.resources); errors.As(err, &unknown) {
			result.Unresolved = append(result.Unresolved, unknown)
			l.logger.Warn("recipe references unknown resources", "recipe_id", unknown.RecipeID, "resources", unknown.Resources)
		}
	}

	l.logger.Info("catalogs reloaded",
		"resources", result.Resources,
		"recipes", result.Recipes,
		"skipped", len(result.Warnings))
	return result, nil
}

func (l *Loader) logWarnings(warnings []catalog.ConfigLoadWarning) {
	for _, w := range warnings {
		l.logger.Warn("catalog entry skipped", "catalog", w.Catalog, "entry_id", w.EntryID, "reason", w.Reason)
	}
}

func (l *Loader) Resources() *catalog.ResourceCatalog {
	return l.resources
}

func (l *Loader) Recipes() *catalog.RecipeCatalog {
	return l.recipes
}
