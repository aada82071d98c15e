package queries

import (
	"context"
	"fmt"

	"github.com/factorycraft/factory-economy/internal/application/billing/services"
	"github.com/factorycraft/factory-economy/internal/application/mediator"
	"github.com/factorycraft/factory-economy/internal/domain/billing"
	"github.com/factorycraft/factory-economy/internal/domain/shared"
)

// ListInvoicesQuery lists a player's invoices, or the unpaid invoices of a
// factory when FactoryID is set.
type ListInvoicesQuery struct {
	PlayerID   shared.PlayerID
	FactoryID  string
	UnpaidOnly bool
}

type ListInvoicesResponse struct {
	Invoices []*billing.Invoice
	Total    float64 // sum of unpaid amounts
}

type ListInvoicesHandler struct {
	scheduler *services.BillingScheduler
}

func NewListInvoicesHandler(scheduler *services.BillingScheduler) *ListInvoicesHandler {
	return &ListInvoicesHandler{scheduler: scheduler}
}

func (h *ListInvoicesHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*ListInvoicesQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListInvoicesQuery")
	}

	var (
		invoices []*billing.Invoice
		err      error
	)
	if query.FactoryID != "" {
		invoices, err = h.scheduler.UnpaidByFactory(ctx, query.FactoryID)
	} else {
		invoices, err = h.scheduler.InvoicesByOwner(ctx, query.PlayerID)
	}
	if err != nil {
		return nil, err
	}

	resp := &ListInvoicesResponse{Invoices: make([]*billing.Invoice, 0, len(invoices))}
	for _, inv := range invoices {
		if query.UnpaidOnly && inv.IsPaid() {
			continue
		}
		if !inv.IsPaid() {
			resp.Total += inv.Amount()
		}
		resp.Invoices = append(resp.Invoices, inv)
	}
	resp.Total = shared.RoundCredits(resp.Total)
	return resp, nil
}
