package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/factorycraft/factory-economy/internal/domain/billing"
	"github.com/factorycraft/factory-economy/internal/domain/shared"
)

// GormInvoiceRepository implements billing.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

func (r *GormInvoiceRepository) Save(ctx context.Context, inv *billing.Invoice) error {
	return r.SaveAll(ctx, []*billing.Invoice{inv})
}

// SaveAll upserts a batch of invoices
func (r *GormInvoiceRepository) SaveAll(ctx context.Context, invoices []*billing.Invoice) error {
	if len(invoices) == 0 {
		return nil
	}
	models := make([]InvoiceModel, 0, len(invoices))
	for _, inv := range invoices {
		models = append(models, invoiceToModel(inv))
	}
	if err := Conn(ctx, r.db).Clauses(clause.OnConflict{UpdateAll: true}).Create(&models).Error; err != nil {
		return fmt.Errorf("failed to save invoices: %w", err)
	}
	return nil
}

func (r *GormInvoiceRepository) FindByID(ctx context.Context, id string) (*billing.Invoice, error) {
	var model InvoiceModel
	err := Conn(ctx, r.db).Where("id = ?", id).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.NewNotFoundError("invoice", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find invoice: %w", err)
	}
	return modelToInvoice(&model)
}

func (r *GormInvoiceRepository) FindByOwner(ctx context.Context, ownerID shared.PlayerID) ([]*billing.Invoice, error) {
	return r.find(Conn(ctx, r.db).Where("owner_id = ?", ownerID.String()))
}

func (r *GormInvoiceRepository) FindUnpaid(ctx context.Context) ([]*billing.Invoice, error) {
	return r.find(Conn(ctx, r.db).Where("paid = ?", false))
}

func (r *GormInvoiceRepository) FindUnpaidByFactory(ctx context.Context, factoryID string) ([]*billing.Invoice, error) {
	return r.find(Conn(ctx, r.db).Where("factory_id = ? AND paid = ?", factoryID, false))
}

func (r *GormInvoiceRepository) find(query *gorm.DB) ([]*billing.Invoice, error) {
	var models []InvoiceModel
	if err := query.Order("issued_at, id").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}

	invoices := make([]*billing.Invoice, 0, len(models))
	for i := range models {
		inv, err := modelToInvoice(&models[i])
		if err != nil {
			return nil, fmt.Errorf("failed to convert invoice %s: %w", models[i].ID, err)
		}
		invoices = append(invoices, inv)
	}
	return invoices, nil
}

func invoiceToModel(inv *billing.Invoice) InvoiceModel {
	return InvoiceModel{
		ID:        inv.ID(),
		FactoryID: inv.FactoryID(),
		OwnerID:   inv.OwnerID().String(),
		Type:      string(inv.Type()),
		Amount:    inv.Amount(),
		IssuedAt:  inv.IssuedAt(),
		DueAt:     inv.DueAt(),
		Paid:      inv.IsPaid(),
		PaidAt:    inv.PaidAt(),
	}
}

func modelToInvoice(model *InvoiceModel) (*billing.Invoice, error) {
	owner, err := shared.NewPlayerID(model.OwnerID)
	if err != nil {
		return nil, err
	}
	kind, err := billing.ParseInvoiceType(model.Type)
	if err != nil {
		return nil, err
	}
	return billing.ReconstructInvoice(
		model.ID,
		model.FactoryID,
		owner,
		kind,
		model.Amount,
		model.IssuedAt,
		model.DueAt,
		model.Paid,
		model.PaidAt,
	), nil
}

// GormBillingRunRepository implements billing.BillingRunRepository
type GormBillingRunRepository struct {
	db *gorm.DB
}

func NewGormBillingRunRepository(db *gorm.DB) *GormBillingRunRepository {
	return &GormBillingRunRepository{db: db}
}

// LastRun returns the zero time when the kind never ran
func (r *GormBillingRunRepository) LastRun(ctx context.Context, kind billing.InvoiceType) (time.Time, error) {
	var model BillingRunModel
	err := Conn(ctx, r.db).Where("kind = ?", string(kind)).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read billing run: %w", err)
	}
	return model.LastRun, nil
}

func (r *GormBillingRunRepository) RecordRun(ctx context.Context, kind billing.InvoiceType, at time.Time) error {
	model := BillingRunModel{Kind: string(kind), LastRun: at}
	if err := Conn(ctx, r.db).Clauses(clause.OnConflict{UpdateAll: true}).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to record billing run: %w", err)
	}
	return nil
}
