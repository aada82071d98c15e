package marketplace

import (
	"context"

	"github.com/factorycraft/factory-economy/internal/domain/shared"
)

// ListingRepository persists marketplace listings
type ListingRepository interface {
	Save(ctx context.Context, listing *Listing) error
	Delete(ctx context.Context, id string) error
	// FindByID returns shared.NotFoundError for unknown ids
	FindByID(ctx context.Context, id string) (*Listing, error)
	FindAll(ctx context.Context) ([]*Listing, error)
	FindBySeller(ctx context.Context, sellerID shared.PlayerID) ([]*Listing, error)
}
