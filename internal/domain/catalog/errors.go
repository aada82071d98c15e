package catalog

import "fmt"

// ConfigLoadWarning describes a catalog entry that was skipped during load.
// It is non-fatal: the remaining entries are still loaded.
type ConfigLoadWarning struct {
	Catalog string // "resources" or "recipes"
	EntryID string
	Reason  string
}

func (w ConfigLoadWarning) Error() string {
	if w.EntryID == "" {
		return fmt.Sprintf("%s: skipped entry: %s", w.Catalog, w.Reason)
	}
	return fmt.Sprintf("%s: skipped %q: %s", w.Catalog, w.EntryID, w.Reason)
}

// ErrUnknownResources indicates a recipe references resources missing from the resource catalog
type ErrUnknownResources struct {
	RecipeID  string
	Resources []string
}

func (e *ErrUnknownResources) Error() string {
	return fmt.Sprintf("recipe %s references unknown resources: %v", e.RecipeID, e.Resources)
}
