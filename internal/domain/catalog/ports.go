package catalog

import "context"

// Source loads raw catalog entries from the configuration collaborator.
// Entries rejected by the source itself (e.g. schema violations) are
// reported as warnings rather than errors; a returned error means the
// whole source was unreadable and the current catalog must be kept.
type Source interface {
	LoadResources(ctx context.Context) ([]ResourceEntry, []ConfigLoadWarning, error)
	LoadRecipes(ctx context.Context) ([]RecipeEntry, []ConfigLoadWarning, error)
}

// ExternalItemResolver bridges externally backed resources (third-party
// item plugins) to a host item handle. Only consulted for definitions
// flagged as external.
type ExternalItemResolver interface {
	ResolveExternalItem(ctx context.Context, kind ExternalKind, id string, amount int) (*ItemHandle, error)
}

// ItemHandle is an opaque reference to a host item stack produced by an ExternalItemResolver
type ItemHandle struct {
	Kind    ExternalKind
	ID      string
	Amount  int
	Payload any
}

// ResourceEntry is an unvalidated resource definition as read from configuration
type ResourceEntry struct {
	ID              string
	DisplayName     string
	SellPrice       float64
	Material        string
	Lore            []string
	CustomModelData int
	ExternalKind    string
	ExternalID      string
}

// RecipeEntry is an unvalidated recipe definition as read from configuration
type RecipeEntry struct {
	ID              string
	FactoryType     string
	DurationSeconds int
	Inputs          map[string]int
	Outputs         map[string]int
	Commands        []string
}
