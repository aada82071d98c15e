package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/factorycraft/factory-economy/internal/domain/shared"
)

// Recipe converts input resources into outputs over a fixed duration.
// A recipe belongs to exactly one factory type.
type Recipe struct {
	ID              string
	FactoryType     shared.FactoryType
	DurationSeconds int
	Inputs          map[string]int
	Outputs         map[string]int
	Commands        []string
}

// Clone returns a deep copy so callers cannot mutate catalog state
func (r Recipe) Clone() Recipe {
	c := r
	c.Inputs = copyQuantities(r.Inputs)
	c.Outputs = copyQuantities(r.Outputs)
	if r.Commands != nil {
		c.Commands = append([]string(nil), r.Commands...)
	}
	return c
}

// ResourceIDs returns every resource referenced by the recipe, sorted
func (r Recipe) ResourceIDs() []string {
	seen := make(map[string]struct{}, len(r.Inputs)+len(r.Outputs))
	for id := range r.Inputs {
		seen[id] = struct{}{}
	}
	for id := range r.Outputs {
		seen[id] = struct{}{}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ValidateResources checks every referenced resource against the resource
// catalog. Recipes are loaded without this check; it runs at production start.
func (r Recipe) ValidateResources(resources *ResourceCatalog) error {
	var missing []string
	for _, id := range r.ResourceIDs() {
		if !resources.Has(id) {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return &ErrUnknownResources{RecipeID: r.ID, Resources: missing}
	}
	return nil
}

func copyQuantities(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func newRecipe(e RecipeEntry) (Recipe, error) {
	id := strings.TrimSpace(e.ID)
	if id == "" {
		return Recipe{}, fmt.Errorf("missing id")
	}
	if strings.TrimSpace(e.FactoryType) == "" {
		return Recipe{}, fmt.Errorf("missing factory type")
	}
	factoryType, err := shared.ParseFactoryType(e.FactoryType)
	if err != nil {
		return Recipe{}, err
	}
	if e.DurationSeconds <= 0 {
		return Recipe{}, fmt.Errorf("duration must be positive, got %d", e.DurationSeconds)
	}
	if len(e.Outputs) == 0 {
		return Recipe{}, fmt.Errorf("recipe produces nothing")
	}
	for res, qty := range e.Inputs {
		if qty <= 0 {
			return Recipe{}, fmt.Errorf("input %s has non-positive quantity %d", res, qty)
		}
	}
	for res, qty := range e.Outputs {
		if qty <= 0 {
			return Recipe{}, fmt.Errorf("output %s has non-positive quantity %d", res, qty)
		}
	}

	r := Recipe{
		ID:              id,
		FactoryType:     factoryType,
		DurationSeconds: e.DurationSeconds,
		Inputs:          copyQuantities(e.Inputs),
		Outputs:         copyQuantities(e.Outputs),
	}
	if len(e.Commands) > 0 {
		r.Commands = append([]string(nil), e.Commands...)
	}
	return r, nil
}

// RecipeCatalog is the reloadable registry of production recipes
type RecipeCatalog struct {
	mu      sync.RWMutex
	recipes map[string]Recipe
	order   []string
}

// NewRecipeCatalog creates an empty recipe catalog
func NewRecipeCatalog() *RecipeCatalog {
	return &RecipeCatalog{recipes: make(map[string]Recipe)}
}

// Reload reads every recipe from src and swaps the catalog. Entries without
// a factory type, or otherwise malformed, are skipped with a warning.
// Unknown input/output resources are not checked here.
func (c *RecipeCatalog) Reload(ctx context.Context, src Source) ([]ConfigLoadWarning, error) {
	entries, warnings, err := src.LoadRecipes(ctx)
	if err != nil {
		return warnings, fmt.Errorf("failed to load recipes: %w", err)
	}

	recipes := make(map[string]Recipe, len(entries))
	order := make([]string, 0, len(entries))
	for _, e := range entries {
		r, err := newRecipe(e)
		if err != nil {
			warnings = append(warnings, ConfigLoadWarning{Catalog: "recipes", EntryID: e.ID, Reason: err.Error()})
			continue
		}
		if _, dup := recipes[r.ID]; dup {
			warnings = append(warnings, ConfigLoadWarning{Catalog: "recipes", EntryID: r.ID, Reason: "duplicate id"})
			continue
		}
		recipes[r.ID] = r
		order = append(order, r.ID)
	}

	c.mu.Lock()
	c.recipes = recipes
	c.order = order
	c.mu.Unlock()

	return warnings, nil
}

// Get returns the recipe for id
func (c *RecipeCatalog) Get(id string) (Recipe, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	r, ok := c.recipes[id]
	if !ok {
		return Recipe{}, shared.NewNotFoundError("recipe", id)
	}
	return r.Clone(), nil
}

// All returns a snapshot of every recipe keyed by id
func (c *RecipeCatalog) All() map[string]Recipe {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]Recipe, len(c.recipes))
	for id, r := range c.recipes {
		out[id] = r.Clone()
	}
	return out
}

// ByFactoryType returns the recipes offered to a factory type in catalog
// order. The order may change across reloads; callers must not keep indexes.
func (c *RecipeCatalog) ByFactoryType(t shared.FactoryType) []Recipe {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []Recipe
	for _, id := range c.order {
		if r := c.recipes[id]; r.FactoryType == t {
			out = append(out, r.Clone())
		}
	}
	return out
}

// Len returns the number of loaded recipes
func (c *RecipeCatalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.recipes)
}
