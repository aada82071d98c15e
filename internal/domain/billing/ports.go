package billing

import (
	"context"
	"time"

	"github.com/factorycraft/factory-economy/internal/domain/shared"
)

// InvoiceRepository persists invoices
type InvoiceRepository interface {
	Save(ctx context.Context, invoice *Invoice) error
	SaveAll(ctx context.Context, invoices []*Invoice) error
	// FindByID returns shared.NotFoundError for unknown ids
	FindByID(ctx context.Context, id string) (*Invoice, error)
	FindByOwner(ctx context.Context, ownerID shared.PlayerID) ([]*Invoice, error)
	FindUnpaid(ctx context.Context) ([]*Invoice, error)
	FindUnpaidByFactory(ctx context.Context, factoryID string) ([]*Invoice, error)
}

// BillingRunRepository records when each invoice type was last generated
type BillingRunRepository interface {
	// LastRun returns the zero time when the kind never ran
	LastRun(ctx context.Context, kind InvoiceType) (time.Time, error)
	RecordRun(ctx context.Context, kind InvoiceType, at time.Time) error
}
