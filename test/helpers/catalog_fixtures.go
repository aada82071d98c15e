package helpers

import (
	"context"
	"testing"

	"github.com/factorycraft/factory-economy/internal/domain/catalog"
)

// StaticCatalogSource serves fixed catalog entries
type StaticCatalogSource struct {
	Resources []catalog.ResourceEntry
	Recipes   []catalog.RecipeEntry
}

func (s *StaticCatalogSource) LoadResources(ctx context.Context) ([]catalog.ResourceEntry, []catalog.ConfigLoadWarning, error) {
	return s.Resources, nil, nil
}

func (s *StaticCatalogSource) LoadRecipes(ctx context.Context) ([]catalog.RecipeEntry, []catalog.ConfigLoadWarning, error) {
	return s.Recipes, nil, nil
}

// DefaultCatalogSource returns a small catalog: iron ore smelted into steel
// in a WORKSHOP (recipe "r1": 5 iron_ore -> 2 steel_ingot in 60s) plus a
// FOUNDRY recipe and a recipe referencing an unknown resource.
func DefaultCatalogSource() *StaticCatalogSource {
	return &StaticCatalogSource{
		Resources: []catalog.ResourceEntry{
			{ID: "iron_ore", DisplayName: "Iron Ore", SellPrice: 2},
			{ID: "steel_ingot", DisplayName: "Steel Ingot", SellPrice: 12},
			{ID: "coal", DisplayName: "Coal", SellPrice: 1},
			{ID: "gear", DisplayName: "Gear", SellPrice: 30},
		},
		Recipes: []catalog.RecipeEntry{
			{
				ID:              "r1",
				FactoryType:     "WORKSHOP",
				DurationSeconds: 60,
				Inputs:          map[string]int{"iron_ore": 5},
				Outputs:         map[string]int{"steel_ingot": 2},
				Commands:        []string{"say {player} made steel in {factory}"},
			},
			{
				ID:              "gears",
				FactoryType:     "WORKSHOP",
				DurationSeconds: 120,
				Inputs:          map[string]int{"steel_ingot": 2},
				Outputs:         map[string]int{"gear": 1},
			},
			{
				ID:              "coke",
				FactoryType:     "FOUNDRY",
				DurationSeconds: 30,
				Inputs:          map[string]int{"coal": 2},
				Outputs:         map[string]int{"coal": 1},
			},
			{
				ID:              "mystery",
				FactoryType:     "WORKSHOP",
				DurationSeconds: 10,
				Inputs:          map[string]int{"iron_ore": 1},
				Outputs:         map[string]int{"unobtainium": 1},
			},
		},
	}
}

// NewTestCatalogs loads the default catalog fixture
func NewTestCatalogs(t *testing.T) (*catalog.ResourceCatalog, *catalog.RecipeCatalog) {
	t.Helper()
	src := DefaultCatalogSource()
	resources := catalog.NewResourceCatalog(nil)
	recipes := catalog.NewRecipeCatalog()
	if _, err := resources.Reload(context.Background(), src); err != nil {
		t.Fatalf("failed to load resources: %v", err)
	}
	if _, err := recipes.Reload(context.Background(), src); err != nil {
		t.Fatalf("failed to load recipes: %v", err)
	}
	return resources, recipes
}
