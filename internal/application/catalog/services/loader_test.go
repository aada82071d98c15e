package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/factorycraft/factory-economy/internal/application/catalog/services"
	"github.com/factorycraft/factory-economy/internal/domain/catalog"
	"github.com/factorycraft/factory-economy/test/helpers"
)

type brokenSource struct{}

func (brokenSource) LoadResources(ctx context.Context) ([]catalog.ResourceEntry, []catalog.ConfigLoadWarning, error) {
	return nil, nil, errors.New("file missing")
}

func (brokenSource) LoadRecipes(ctx context.Context) ([]catalog.RecipeEntry, []catalog.ConfigLoadWarning, error) {
	return nil, nil, errors.New("file missing")
}

func newLoader(src catalog.Source) *services.Loader {
	return services.NewLoader(catalog.NewResourceCatalog(nil), catalog.NewRecipeCatalog(), src, nil)
}

func TestLoader_Reload(t *testing.T) {
	// Arrange
	loader := newLoader(helpers.DefaultCatalogSource())

	// Act
	result, err := loader.Reload(context.Background())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 4, result.Resources)
	assert.Equal(t, 4, result.Recipes)
	assert.Empty(t, result.Warnings)
	require.Len(t, result.Unresolved, 1)
	assert.Equal(t, "mystery", result.Unresolved[0].RecipeID)
	assert.Equal(t, []string{"unobtainium"}, result.Unresolved[0].Resources)
}

func TestLoader_SkipsMalformedEntries(t *testing.T) {
	// Arrange
	src := helpers.DefaultCatalogSource()
	src.Resources = append(src.Resources, catalog.ResourceEntry{ID: "", DisplayName: "Nameless"})
	src.Recipes = append(src.Recipes, catalog.RecipeEntry{
		ID:              "broken",
		FactoryType:     "WORKSHOP",
		DurationSeconds: 0,
		Outputs:         map[string]int{"coal": 1},
	})
	loader := newLoader(src)

	// Act
	result, err := loader.Reload(context.Background())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 4, result.Resources)
	assert.Equal(t, 4, result.Recipes)
	assert.Len(t, result.Warnings, 2)
}

func TestLoader_FailingSourceKeepsCatalogs(t *testing.T) {
	// Arrange
	resources, recipes := helpers.NewTestCatalogs(t)
	loader := services.NewLoader(resources, recipes, brokenSource{}, nil)

	// Act
	_, err := loader.Reload(context.Background())

	// Assert
	require.Error(t, err)
	assert.Equal(t, 4, loader.Resources().Len())
	assert.Equal(t, 4, loader.Recipes().Len())
}
