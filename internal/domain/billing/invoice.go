package billing

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/factorycraft/factory-economy/internal/domain/shared"
)

// InvoiceType distinguishes the billing cycles
type InvoiceType string

const (
	InvoiceTypeTax    InvoiceType = "TAX"
	InvoiceTypeSalary InvoiceType = "SALARY"
)

// ParseInvoiceType parses an invoice type, case-insensitive
func ParseInvoiceType(s string) (InvoiceType, error) {
	switch t := InvoiceType(strings.ToUpper(strings.TrimSpace(s))); t {
	case InvoiceTypeTax, InvoiceTypeSalary:
		return t, nil
	default:
		return "", fmt.Errorf("unknown invoice type %q", s)
	}
}

// Invoice is a billed obligation owed by a factory's owner.
// The owner is snapshotted at issue time so a later sale does not move the debt.
// Invoices are never deleted; removing a factory orphans them as history.
type Invoice struct {
	id          string
	factoryID   string
	ownerID     shared.PlayerID
	invoiceType InvoiceType
	amount      float64
	issuedAt    time.Time
	dueAt       time.Time
	paid        bool
	paidAt      *time.Time
}

// NewInvoice issues an unpaid invoice due grace after issuedAt
func NewInvoice(factoryID string, ownerID shared.PlayerID, invoiceType InvoiceType, amount float64, issuedAt time.Time, grace time.Duration) (*Invoice, error) {
	if factoryID == "" {
		return nil, shared.NewValidationError("factory_id", "factory id cannot be empty")
	}
	if ownerID.IsZero() {
		return nil, shared.NewValidationError("owner", "invoice owner cannot be empty")
	}
	if amount < 0 {
		return nil, shared.NewInvalidAmountError("amount", amount)
	}
	if _, err := ParseInvoiceType(string(invoiceType)); err != nil {
		return nil, shared.NewValidationError("type", err.Error())
	}

	return &Invoice{
		id:          uuid.New().String(),
		factoryID:   factoryID,
		ownerID:     ownerID,
		invoiceType: invoiceType,
		amount:      shared.RoundCredits(amount),
		issuedAt:    issuedAt,
		dueAt:       issuedAt.Add(grace),
	}, nil
}

// ReconstructInvoice rebuilds an invoice from persistence
func ReconstructInvoice(id, factoryID string, ownerID shared.PlayerID, invoiceType InvoiceType, amount float64, issuedAt, dueAt time.Time, paid bool, paidAt *time.Time) *Invoice {
	inv := &Invoice{
		id:          id,
		factoryID:   factoryID,
		ownerID:     ownerID,
		invoiceType: invoiceType,
		amount:      amount,
		issuedAt:    issuedAt,
		dueAt:       dueAt,
		paid:        paid,
	}
	if paidAt != nil {
		t := *paidAt
		inv.paidAt = &t
	}
	return inv
}

func (i *Invoice) ID() string               { return i.id }
func (i *Invoice) FactoryID() string        { return i.factoryID }
func (i *Invoice) OwnerID() shared.PlayerID { return i.ownerID }
func (i *Invoice) Type() InvoiceType        { return i.invoiceType }
func (i *Invoice) Amount() float64          { return i.amount }
func (i *Invoice) IssuedAt() time.Time      { return i.issuedAt }
func (i *Invoice) DueAt() time.Time         { return i.dueAt }
func (i *Invoice) IsPaid() bool             { return i.paid }

func (i *Invoice) PaidAt() *time.Time {
	if i.paidAt == nil {
		return nil
	}
	t := *i.paidAt
	return &t
}

// IsOverdue reports now > due && !paid
func (i *Invoice) IsOverdue(now time.Time) bool {
	return !i.paid && now.After(i.dueAt)
}

// MarkPaid settles the invoice
func (i *Invoice) MarkPaid(now time.Time) error {
	if i.paid {
		return &ErrAlreadyPaid{InvoiceID: i.id}
	}
	i.paid = true
	t := now
	i.paidAt = &t
	return nil
}

// Clone returns an independent copy
func (i *Invoice) Clone() *Invoice {
	return ReconstructInvoice(i.id, i.factoryID, i.ownerID, i.invoiceType, i.amount, i.issuedAt, i.dueAt, i.paid, i.paidAt)
}
