package commands

import (
	"context"
	"fmt"

	"github.com/factorycraft/factory-economy/internal/application/billing/services"
	"github.com/factorycraft/factory-economy/internal/application/mediator"
	"github.com/factorycraft/factory-economy/internal/domain/billing"
)

// RunBillingCommand issues invoices of one kind. Force skips the
// once-per-interval guard.
type RunBillingCommand struct {
	Kind  billing.InvoiceType
	Force bool
}

// RunBillingResponse lists the invoices issued; empty when the run was skipped
type RunBillingResponse struct {
	Invoices []*billing.Invoice
}

// RunBillingHandler handles the RunBilling command
type RunBillingHandler struct {
	scheduler *services.BillingScheduler
}

// NewRunBillingHandler creates a new RunBillingHandler
func NewRunBillingHandler(scheduler *services.BillingScheduler) *RunBillingHandler {
	return &RunBillingHandler{scheduler: scheduler}
}

// Handle executes the RunBilling command
func (h *RunBillingHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*RunBillingCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *RunBillingCommand")
	}

	var (
		invoices []*billing.Invoice
		err      error
	)
	switch {
	case cmd.Force:
		invoices, err = h.scheduler.ForceRun(ctx, cmd.Kind)
	case cmd.Kind == billing.InvoiceTypeTax:
		invoices, err = h.scheduler.AssessTaxes(ctx)
	case cmd.Kind == billing.InvoiceTypeSalary:
		invoices, err = h.scheduler.GenerateSalaryInvoices(ctx)
	default:
		return nil, fmt.Errorf("unknown invoice type %q", cmd.Kind)
	}
	if err != nil {
		return nil, err
	}
	return &RunBillingResponse{Invoices: invoices}, nil
}

// CheckOverdueCommand applies the overdue policy to unpaid invoices
type CheckOverdueCommand struct{}

type CheckOverdueResponse struct {
	Report services.OverdueReport
}

type CheckOverdueHandler struct {
	scheduler *services.BillingScheduler
}

func NewCheckOverdueHandler(scheduler *services.BillingScheduler) *CheckOverdueHandler {
	return &CheckOverdueHandler{scheduler: scheduler}
}

func (h *CheckOverdueHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	if _, ok := request.(*CheckOverdueCommand); !ok {
		return nil, fmt.Errorf("invalid request type: expected *CheckOverdueCommand")
	}

	report, err := h.scheduler.CheckOverdue(ctx)
	if err != nil {
		return nil, err
	}
	return &CheckOverdueResponse{Report: report}, nil
}

// CleanupListingsCommand returns expired marketplace listings to their sellers
type CleanupListingsCommand struct{}

type CleanupListingsResponse struct {
	Closed int
}

type CleanupListingsHandler struct {
	scheduler *services.BillingScheduler
}

func NewCleanupListingsHandler(scheduler *services.BillingScheduler) *CleanupListingsHandler {
	return &CleanupListingsHandler{scheduler: scheduler}
}

func (h *CleanupListingsHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	if _, ok := request.(*CleanupListingsCommand); !ok {
		return nil, fmt.Errorf("invalid request type: expected *CleanupListingsCommand")
	}

	closed, err := h.scheduler.CleanupExpiredListings(ctx)
	if err != nil {
		return nil, err
	}
	return &CleanupListingsResponse{Closed: closed}, nil
}
