package catalogfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/factorycraft/factory-economy/internal/domain/catalog"
)

const resourcesYAML = `
resources:
  iron_ore:
    name: Iron Ore
    sell_price: 2
    material: RAW_IRON
  steel_ingot:
    name: Steel Ingot
    sell_price: 12.5
    lore: ["Forged in fire"]
    custom_model_data: 1001
    external:
      kind: mmoitems
      id: STEEL_INGOT
  cursed:
    name: Cursed
    sell_price: -4
  typo:
    nmae: Typo
`

const recipesYAML = `
recipes:
  smelt_steel:
    factory_type: WORKSHOP
    duration: 60
    inputs:
      iron_ore: 5
    outputs:
      steel_ingot: 2
    commands:
      - say {player} smelted steel
  no_output:
    factory_type: FOUNDRY
    duration: 10
    outputs: {}
  zero_time:
    factory_type: FOUNDRY
    duration: 0
    outputs:
      iron_ore: 1
`

func writeFiles(t *testing.T, resources, recipes string) *Source {
	t.Helper()
	dir := t.TempDir()
	resPath := filepath.Join(dir, "resources.yaml")
	recPath := filepath.Join(dir, "recipes.yaml")
	require.NoError(t, os.WriteFile(resPath, []byte(resources), 0o644))
	require.NoError(t, os.WriteFile(recPath, []byte(recipes), 0o644))
	src, err := New(resPath, recPath)
	require.NoError(t, err)
	return src
}

func TestLoadResources(t *testing.T) {
	src := writeFiles(t, resourcesYAML, recipesYAML)

	entries, warnings, err := src.LoadResources(context.Background())
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, "iron_ore", entries[0].ID)
	assert.Equal(t, "RAW_IRON", entries[0].Material)
	steel := entries[1]
	assert.Equal(t, "steel_ingot", steel.ID)
	assert.Equal(t, 12.5, steel.SellPrice)
	assert.Equal(t, []string{"Forged in fire"}, steel.Lore)
	assert.Equal(t, 1001, steel.CustomModelData)
	assert.Equal(t, "MMOITEMS", steel.ExternalKind)
	assert.Equal(t, "STEEL_INGOT", steel.ExternalID)

	require.Len(t, warnings, 2)
	assert.Equal(t, "cursed", warnings[0].EntryID)
	assert.Equal(t, "typo", warnings[1].EntryID)
	assert.Equal(t, "resources", warnings[0].Catalog)
}

func TestLoadRecipes(t *testing.T) {
	src := writeFiles(t, resourcesYAML, recipesYAML)

	entries, warnings, err := src.LoadRecipes(context.Background())
	require.NoError(t, err)

	require.Len(t, entries, 1)
	r := entries[0]
	assert.Equal(t, "smelt_steel", r.ID)
	assert.Equal(t, "WORKSHOP", r.FactoryType)
	assert.Equal(t, 60, r.DurationSeconds)
	assert.Equal(t, map[string]int{"iron_ore": 5}, r.Inputs)
	assert.Equal(t, map[string]int{"steel_ingot": 2}, r.Outputs)
	assert.Equal(t, []string{"say {player} smelted steel"}, r.Commands)

	ids := []string{warnings[0].EntryID, warnings[1].EntryID}
	assert.ElementsMatch(t, []string{"no_output", "zero_time"}, ids)
}

func TestLoad_UnreadableSourceFails(t *testing.T) {
	dir := t.TempDir()
	src, err := New(filepath.Join(dir, "missing.yaml"), filepath.Join(dir, "also-missing.yaml"))
	require.NoError(t, err)

	_, _, err = src.LoadResources(context.Background())
	assert.Error(t, err)

	broken := writeFiles(t, "resources: [not, a, mapping]", "recipes: {")
	_, _, err = broken.LoadResources(context.Background())
	assert.Error(t, err)
	_, _, err = broken.LoadRecipes(context.Background())
	assert.Error(t, err)
}

func TestSource_FeedsCatalogs(t *testing.T) {
	src := writeFiles(t, resourcesYAML, recipesYAML)
	resources := catalog.NewResourceCatalog(nil)
	recipes := catalog.NewRecipeCatalog()

	_, err := resources.Reload(context.Background(), src)
	require.NoError(t, err)
	_, err = recipes.Reload(context.Background(), src)
	require.NoError(t, err)

	def, err := resources.Get("steel_ingot")
	require.NoError(t, err)
	assert.True(t, def.IsExternal())

	recipe, err := recipes.Get("smelt_steel")
	require.NoError(t, err)
	assert.NoError(t, recipe.ValidateResources(resources))
}

func TestShippedCatalogFilesLoadCleanly(t *testing.T) {
	src, err := New(filepath.Join("..", "..", "..", "configs", "resources.yaml"), filepath.Join("..", "..", "..", "configs", "recipes.yaml"))
	require.NoError(t, err)

	resources, warnings, err := src.LoadResources(context.Background())
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.NotEmpty(t, resources)

	recipes, warnings, err := src.LoadRecipes(context.Background())
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.NotEmpty(t, recipes)
}
