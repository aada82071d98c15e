package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/factorycraft/factory-economy/internal/domain/shared"
)

// ExternalKind names a third-party item plugin that can back a resource
type ExternalKind string

const (
	ExternalMMOItems        ExternalKind = "MMOITEMS"
	ExternalExecutableItems ExternalKind = "EXECUTABLEITEMS"
)

// ParseExternalKind parses an external kind case-insensitively
func ParseExternalKind(s string) (ExternalKind, error) {
	k := ExternalKind(strings.ToUpper(strings.TrimSpace(s)))
	switch k {
	case ExternalMMOItems, ExternalExecutableItems:
		return k, nil
	default:
		return "", fmt.Errorf("unknown external item kind: %q", s)
	}
}

// ExternalRef points a resource at an item owned by a third-party plugin
type ExternalRef struct {
	Kind ExternalKind
	ID   string
}

// ResourceDefinition is an immutable resource type known to the economy
type ResourceDefinition struct {
	ID              string
	DisplayName     string
	SellPrice       float64
	Material        string
	Lore            []string
	CustomModelData int
	External        *ExternalRef
}

// IsExternal reports whether the resource is backed by a third-party item plugin
func (d ResourceDefinition) IsExternal() bool {
	return d.External != nil
}

func (d ResourceDefinition) clone() ResourceDefinition {
	c := d
	if d.Lore != nil {
		c.Lore = append([]string(nil), d.Lore...)
	}
	if d.External != nil {
		ext := *d.External
		c.External = &ext
	}
	return c
}

// newResourceDefinition validates a raw entry
func newResourceDefinition(e ResourceEntry) (ResourceDefinition, error) {
	id := strings.TrimSpace(e.ID)
	if id == "" {
		return ResourceDefinition{}, fmt.Errorf("missing id")
	}
	if e.SellPrice < 0 {
		return ResourceDefinition{}, fmt.Errorf("sell price cannot be negative")
	}

	def := ResourceDefinition{
		ID:              id,
		DisplayName:     e.DisplayName,
		SellPrice:       e.SellPrice,
		Material:        e.Material,
		Lore:            append([]string(nil), e.Lore...),
		CustomModelData: e.CustomModelData,
	}
	if def.DisplayName == "" {
		def.DisplayName = id
	}

	if e.ExternalKind != "" || e.ExternalID != "" {
		kind, err := ParseExternalKind(e.ExternalKind)
		if err != nil {
			return ResourceDefinition{}, err
		}
		if e.ExternalID == "" {
			return ResourceDefinition{}, fmt.Errorf("external item id is required for %s", kind)
		}
		def.External = &ExternalRef{Kind: kind, ID: e.ExternalID}
	}

	return def, nil
}

// ResourceCatalog is the reloadable registry of resource definitions.
// Reload replaces the whole set atomically; readers never observe a partial catalog.
type ResourceCatalog struct {
	mu       sync.RWMutex
	defs     map[string]ResourceDefinition
	order    []string
	resolver ExternalItemResolver
}

// NewResourceCatalog creates an empty catalog. resolver may be nil when no
// third-party item plugin is installed.
func NewResourceCatalog(resolver ExternalItemResolver) *ResourceCatalog {
	return &ResourceCatalog{
		defs:     make(map[string]ResourceDefinition),
		resolver: resolver,
	}
}

// Reload reads every resource from src and swaps the catalog.
// Malformed entries are skipped and returned as warnings. If src fails as a
// whole the previous catalog stays in place.
func (c *ResourceCatalog) Reload(ctx context.Context, src Source) ([]ConfigLoadWarning, error) {
	entries, warnings, err := src.LoadResources(ctx)
	if err != nil {
		return warnings, fmt.Errorf("failed to load resources: %w", err)
	}

	defs := make(map[string]ResourceDefinition, len(entries))
	order := make([]string, 0, len(entries))
	for _, e := range entries {
		def, err := newResourceDefinition(e)
		if err != nil {
			warnings = append(warnings, ConfigLoadWarning{Catalog: "resources", EntryID: e.ID, Reason: err.Error()})
			continue
		}
		if _, dup := defs[def.ID]; dup {
			warnings = append(warnings, ConfigLoadWarning{Catalog: "resources", EntryID: def.ID, Reason: "duplicate id"})
			continue
		}
		defs[def.ID] = def
		order = append(order, def.ID)
	}

	c.mu.Lock()
	c.defs = defs
	c.order = order
	c.mu.Unlock()

	return warnings, nil
}

// Get returns the definition for id
func (c *ResourceCatalog) Get(id string) (ResourceDefinition, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	def, ok := c.defs[id]
	if !ok {
		return ResourceDefinition{}, shared.NewNotFoundError("resource", id)
	}
	return def.clone(), nil
}

// Has reports whether id is a known resource
func (c *ResourceCatalog) Has(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.defs[id]
	return ok
}

// All returns a snapshot of every definition keyed by id
func (c *ResourceCatalog) All() map[string]ResourceDefinition {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]ResourceDefinition, len(c.defs))
	for id, def := range c.defs {
		out[id] = def.clone()
	}
	return out
}

// IDs returns resource ids in catalog order
func (c *ResourceCatalog) IDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.order...)
}

// Len returns the number of loaded resources
func (c *ResourceCatalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.defs)
}

// ResolveExternal converts amount units of an externally backed resource
// into a host item handle. Plain resources, and any resource when no
// resolver is configured, report NotFound.
func (c *ResourceCatalog) ResolveExternal(ctx context.Context, id string, amount int) (*ItemHandle, error) {
	def, err := c.Get(id)
	if err != nil {
		return nil, err
	}
	if !def.IsExternal() || c.resolver == nil {
		return nil, shared.NewNotFoundError("external item", id)
	}
	if amount <= 0 {
		return nil, shared.NewInvalidAmountError("amount", float64(amount))
	}

	handle, err := c.resolver.ResolveExternalItem(ctx, def.External.Kind, def.External.ID, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s item %s: %w", def.External.Kind, def.External.ID, err)
	}
	return handle, nil
}
