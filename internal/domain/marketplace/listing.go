package marketplace

import (
	"time"

	"github.com/google/uuid"

	"github.com/factorycraft/factory-economy/internal/domain/shared"
)

// Listing offers escrowed goods taken from a seller's output compartment
type Listing struct {
	id         string
	sellerID   shared.PlayerID
	factoryID  string
	resourceID string
	amount     int
	unitPrice  float64
	createdAt  time.Time
}

// NewListing creates a listing with a generated id
func NewListing(sellerID shared.PlayerID, factoryID, resourceID string, amount int, unitPrice float64, createdAt time.Time) (*Listing, error) {
	if sellerID.IsZero() {
		return nil, shared.NewValidationError("seller", "seller cannot be empty")
	}
	if factoryID == "" {
		return nil, shared.NewValidationError("factory_id", "factory id cannot be empty")
	}
	if resourceID == "" {
		return nil, shared.NewValidationError("resource_id", "resource id cannot be empty")
	}
	if amount <= 0 {
		return nil, shared.NewInvalidAmountError("amount", float64(amount))
	}
	if unitPrice < 0 {
		return nil, shared.NewInvalidAmountError("unit_price", unitPrice)
	}
	return &Listing{
		id:         uuid.New().String(),
		sellerID:   sellerID,
		factoryID:  factoryID,
		resourceID: resourceID,
		amount:     amount,
		unitPrice:  shared.RoundCredits(unitPrice),
		createdAt:  createdAt,
	}, nil
}

// ReconstructListing rebuilds a listing from persistence
func ReconstructListing(id string, sellerID shared.PlayerID, factoryID, resourceID string, amount int, unitPrice float64, createdAt time.Time) *Listing {
	return &Listing{
		id:         id,
		sellerID:   sellerID,
		factoryID:  factoryID,
		resourceID: resourceID,
		amount:     amount,
		unitPrice:  unitPrice,
		createdAt:  createdAt,
	}
}

func (l *Listing) ID() string                { return l.id }
func (l *Listing) SellerID() shared.PlayerID { return l.sellerID }
func (l *Listing) FactoryID() string         { return l.factoryID }
func (l *Listing) ResourceID() string        { return l.resourceID }
func (l *Listing) Amount() int               { return l.amount }
func (l *Listing) UnitPrice() float64        { return l.unitPrice }
func (l *Listing) CreatedAt() time.Time      { return l.createdAt }

// Total is the price of the whole lot
func (l *Listing) Total() float64 {
	return shared.RoundCredits(l.unitPrice * float64(l.amount))
}

// IsExpired reports whether the listing is older than ttl. A non-positive ttl never expires.
func (l *Listing) IsExpired(now time.Time, ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	return !now.Before(l.createdAt.Add(ttl))
}
