package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/factorycraft/factory-economy/internal/adapters/metrics"
	"github.com/factorycraft/factory-economy/internal/application/common"
	factoryServices "github.com/factorycraft/factory-economy/internal/application/factory/services"
	"github.com/factorycraft/factory-economy/internal/domain/economy"
	"github.com/factorycraft/factory-economy/internal/domain/factory"
	"github.com/factorycraft/factory-economy/internal/domain/marketplace"
	"github.com/factorycraft/factory-economy/internal/domain/shared"
)

// DefaultListingTTL is how long goods stay listed before they are returned
const DefaultListingTTL = 7 * 24 * time.Hour

// Marketplace lets owners sell output goods to other players. Listed goods
// are held in escrow: they leave the seller's output compartment when the
// listing is created and return there on cancel or expiry.
type Marketplace struct {
	registry *factoryServices.Registry
	storage  *factoryServices.StorageService
	listings marketplace.ListingRepository
	economy  economy.Service
	clock    shared.Clock
	logger   *slog.Logger
	ttl      time.Duration

	mu sync.Mutex // guards listing lifecycle transitions
}

func NewMarketplace(
	registry *factoryServices.Registry,
	storageSvc *factoryServices.StorageService,
	listings marketplace.ListingRepository,
	economySvc economy.Service,
	clock shared.Clock,
	logger *slog.Logger,
	ttl time.Duration,
) *Marketplace {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	if logger == nil {
		logger = common.DiscardLogger()
	}
	return &Marketplace{
		registry: registry,
		storage:  storageSvc,
		listings: listings,
		economy:  economySvc,
		clock:    clock,
		logger:   logger.With("component", "marketplace"),
		ttl:      ttl,
	}
}

// CreateListing escrows amount units of a resource from the seller's output
// compartment and offers them at unitPrice each.
func (m *Marketplace) CreateListing(ctx context.Context, sellerID shared.PlayerID, factoryID, resourceID string, amount int, unitPrice float64) (*marketplace.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	listing, err := marketplace.NewListing(sellerID, factoryID, resourceID, amount, unitPrice, m.clock.Now())
	if err != nil {
		return nil, err
	}

	removed, err := m.storage.RemoveOutputAsOwner(ctx, sellerID, factoryID, resourceID, amount)
	if err != nil {
		return nil, err
	}
	if !removed {
		have, _ := m.storage.AmountOutput(factoryID, resourceID)
		return nil, &factory.ErrInsufficientMaterials{
			FactoryID: factoryID,
			RecipeID:  "listing",
			Missing:   map[string]int{resourceID: amount - have},
		}
	}

	if err := m.listings.Save(ctx, listing); err != nil {
		m.restoreOutput(ctx, listing)
		return nil, fmt.Errorf("failed to save listing: %w", err)
	}

	metrics.RecordListingEvent("created")
	m.logger.Info("listing created",
		"listing_id", listing.ID(),
		"seller_id", sellerID.String(),
		"factory_id", factoryID,
		"resource_id", resourceID,
		"amount", amount,
		"unit_price", unitPrice)
	return listing, nil
}

// Purchase buys a whole listing. The buyer pays the total, the goods are
// added to the input compartment of the buyer's target factory and the
// seller is credited. Any failure before the listing is removed is rolled
// back.
func (m *Marketplace) Purchase(ctx context.Context, buyerID shared.PlayerID, listingID, targetFactoryID string) (*marketplace.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	listing, err := m.listings.FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.IsExpired(m.clock.Now(), m.ttl) {
		return nil, &marketplace.ErrListingExpired{ListingID: listing.ID()}
	}
	if listing.SellerID().Equals(buyerID) {
		return nil, &marketplace.ErrSelfPurchase{ListingID: listing.ID()}
	}

	target, err := m.registry.Get(targetFactoryID)
	if err != nil {
		return nil, err
	}
	if err := target.RequireOwner(buyerID); err != nil {
		return nil, err
	}

	total := listing.Total()
	if err := economy.Charge(ctx, m.economy, buyerID, total); err != nil {
		return nil, err
	}

	if err := m.storage.AddInput(ctx, targetFactoryID, listing.ResourceID(), listing.Amount()); err != nil {
		m.refund(ctx, buyerID, total, listing.ID())
		return nil, err
	}

	if err := m.listings.Delete(ctx, listing.ID()); err != nil {
		if _, rerr := m.storage.RemoveInput(ctx, targetFactoryID, listing.ResourceID(), listing.Amount()); rerr != nil {
			m.logger.Error("failed to take back purchased goods", "listing_id", listing.ID(), "error", rerr)
		}
		m.refund(ctx, buyerID, total, listing.ID())
		return nil, fmt.Errorf("failed to close listing %s: %w", listing.ID(), err)
	}

	if err := economy.Credit(ctx, m.economy, listing.SellerID(), total); err != nil {
		m.logger.Error("purchase completed but seller payout failed",
			"listing_id", listing.ID(),
			"seller_id", listing.SellerID().String(),
			"amount", total,
			"error", err)
	}

	metrics.RecordListingEvent("purchased")
	m.logger.Info("listing purchased",
		"listing_id", listing.ID(),
		"buyer_id", buyerID.String(),
		"seller_id", listing.SellerID().String(),
		"target_factory_id", targetFactoryID,
		"total", total)
	return listing, nil
}

// Cancel withdraws a listing and returns its goods to the seller's factory.
// It fails with NotOwner once the seller no longer owns that factory.
func (m *Marketplace) Cancel(ctx context.Context, sellerID shared.PlayerID, listingID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	listing, err := m.listings.FindByID(ctx, listingID)
	if err != nil {
		return err
	}
	if !listing.SellerID().Equals(sellerID) {
		return &factory.ErrNotOwner{FactoryID: listing.FactoryID(), PlayerID: sellerID}
	}

	if err := m.storage.AddOutputAsOwner(ctx, sellerID, listing.FactoryID(), listing.ResourceID(), listing.Amount()); err != nil {
		return err
	}
	if err := m.listings.Delete(ctx, listing.ID()); err != nil {
		m.takeBackOutput(ctx, listing)
		return fmt.Errorf("failed to delete listing %s: %w", listing.ID(), err)
	}

	metrics.RecordListingEvent("cancelled")
	m.logger.Info("listing cancelled", "listing_id", listing.ID(), "seller_id", sellerID.String())
	return nil
}

// Active returns every listing that has not expired
func (m *Marketplace) Active(ctx context.Context) ([]*marketplace.Listing, error) {
	all, err := m.listings.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	now := m.clock.Now()
	active := make([]*marketplace.Listing, 0, len(all))
	for _, l := range all {
		if !l.IsExpired(now, m.ttl) {
			active = append(active, l)
		}
	}
	return active, nil
}

// BySeller returns a player's listings, expired ones included
func (m *Marketplace) BySeller(ctx context.Context, sellerID shared.PlayerID) ([]*marketplace.Listing, error) {
	return m.listings.FindBySeller(ctx, sellerID)
}

// CleanupExpired returns expired listings to their source factories. A
// listing whose factory has no room stays listed until the next sweep.
// One whose factory no longer exists, or no longer belongs to the seller,
// is dropped with its goods. It reports how many listings were closed.
func (m *Marketplace) CleanupExpired(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	all, err := m.listings.FindAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load listings: %w", err)
	}

	now := m.clock.Now()
	closed := 0
	for _, l := range all {
		if !l.IsExpired(now, m.ttl) {
			continue
		}

		if !m.registry.Exists(l.FactoryID()) {
			if m.drop(ctx, l, "source factory removed") {
				closed++
			}
			continue
		}

		err := m.storage.AddOutputAsOwner(ctx, l.SellerID(), l.FactoryID(), l.ResourceID(), l.Amount())
		var notOwner *factory.ErrNotOwner
		switch {
		case errors.As(err, &notOwner):
			if m.drop(ctx, l, "source factory changed owner") {
				closed++
			}
			continue
		case err != nil:
			m.logger.Info("expired listing kept, goods do not fit", "listing_id", l.ID(), "factory_id", l.FactoryID(), "error", err)
			continue
		}
		if err := m.listings.Delete(ctx, l.ID()); err != nil {
			m.takeBackOutput(ctx, l)
			m.logger.Error("failed to delete expired listing", "listing_id", l.ID(), "error", err)
			continue
		}

		metrics.RecordListingEvent("expired")
		closed++
	}

	if closed > 0 {
		m.logger.Info("expired listings returned", "count", closed)
	}
	return closed, nil
}

// drop deletes an expired listing without returning its goods
func (m *Marketplace) drop(ctx context.Context, l *marketplace.Listing, reason string) bool {
	if err := m.listings.Delete(ctx, l.ID()); err != nil {
		m.logger.Error("failed to drop expired listing", "listing_id", l.ID(), "error", err)
		return false
	}
	m.logger.Warn("expired listing dropped", "listing_id", l.ID(), "factory_id", l.FactoryID(), "seller_id", l.SellerID().String(), "amount", l.Amount(), "reason", reason)
	metrics.RecordListingEvent("dropped")
	return true
}

func (m *Marketplace) restoreOutput(ctx context.Context, l *marketplace.Listing) {
	if err := m.storage.AddOutput(ctx, l.FactoryID(), l.ResourceID(), l.Amount()); err != nil {
		m.logger.Error("failed to restore escrowed goods", "listing_id", l.ID(), "factory_id", l.FactoryID(), "error", err)
	}
}

func (m *Marketplace) takeBackOutput(ctx context.Context, l *marketplace.Listing) {
	if _, err := m.storage.RemoveOutput(ctx, l.FactoryID(), l.ResourceID(), l.Amount()); err != nil {
		m.logger.Error("failed to take back returned goods", "listing_id", l.ID(), "error", err)
	}
}

func (m *Marketplace) refund(ctx context.Context, playerID shared.PlayerID, amount float64, listingID string) {
	if err := economy.Credit(ctx, m.economy, playerID, amount); err != nil {
		m.logger.Error("refund failed", "listing_id", listingID, "player_id", playerID.String(), "amount", amount, "error", err)
	}
}
