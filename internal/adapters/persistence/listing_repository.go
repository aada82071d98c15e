package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/factorycraft/factory-economy/internal/domain/marketplace"
	"github.com/factorycraft/factory-economy/internal/domain/shared"
)

// GormListingRepository implements marketplace.ListingRepository using GORM
type GormListingRepository struct {
	db *gorm.DB
}

func NewGormListingRepository(db *gorm.DB) *GormListingRepository {
	return &GormListingRepository{db: db}
}

func (r *GormListingRepository) Save(ctx context.Context, l *marketplace.Listing) error {
	model := ListingModel{
		ID:         l.ID(),
		SellerID:   l.SellerID().String(),
		FactoryID:  l.FactoryID(),
		ResourceID: l.ResourceID(),
		Amount:     l.Amount(),
		UnitPrice:  l.UnitPrice(),
		CreatedAt:  l.CreatedAt(),
	}
	if err := Conn(ctx, r.db).Clauses(clause.OnConflict{UpdateAll: true}).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to save listing: %w", err)
	}
	return nil
}

func (r *GormListingRepository) Delete(ctx context.Context, id string) error {
	if err := Conn(ctx, r.db).Where("id = ?", id).Delete(&ListingModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete listing: %w", err)
	}
	return nil
}

func (r *GormListingRepository) FindByID(ctx context.Context, id string) (*marketplace.Listing, error) {
	var model ListingModel
	err := Conn(ctx, r.db).Where("id = ?", id).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.NewNotFoundError("listing", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find listing: %w", err)
	}
	return modelToListing(&model)
}

func (r *GormListingRepository) FindAll(ctx context.Context) ([]*marketplace.Listing, error) {
	return r.find(Conn(ctx, r.db))
}

func (r *GormListingRepository) FindBySeller(ctx context.Context, sellerID shared.PlayerID) ([]*marketplace.Listing, error) {
	return r.find(Conn(ctx, r.db).Where("seller_id = ?", sellerID.String()))
}

func (r *GormListingRepository) find(query *gorm.DB) ([]*marketplace.Listing, error) {
	var models []ListingModel
	if err := query.Order("created_at, id").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to query listings: %w", err)
	}
	listings := make([]*marketplace.Listing, 0, len(models))
	for i := range models {
		l, err := modelToListing(&models[i])
		if err != nil {
			return nil, fmt.Errorf("failed to convert listing %s: %w", models[i].ID, err)
		}
		listings = append(listings, l)
	}
	return listings, nil
}

func modelToListing(model *ListingModel) (*marketplace.Listing, error) {
	seller, err := shared.NewPlayerID(model.SellerID)
	if err != nil {
		return nil, err
	}
	return marketplace.ReconstructListing(
		model.ID,
		seller,
		model.FactoryID,
		model.ResourceID,
		model.Amount,
		model.UnitPrice,
		model.CreatedAt,
	), nil
}
