package commands

import (
	"context"
	"fmt"

	"github.com/factorycraft/factory-economy/internal/application/billing/services"
	"github.com/factorycraft/factory-economy/internal/application/mediator"
	"github.com/factorycraft/factory-economy/internal/domain/billing"
	"github.com/factorycraft/factory-economy/internal/domain/shared"
)

// PayInvoiceCommand pays one of the player's invoices in full
type PayInvoiceCommand struct {
	PlayerID  shared.PlayerID
	InvoiceID string
}

type PayInvoiceResponse struct {
	Invoice *billing.Invoice
}

type PayInvoiceHandler struct {
	scheduler *services.BillingScheduler
}

func NewPayInvoiceHandler(scheduler *services.BillingScheduler) *PayInvoiceHandler {
	return &PayInvoiceHandler{scheduler: scheduler}
}

func (h *PayInvoiceHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*PayInvoiceCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *PayInvoiceCommand")
	}

	inv, err := h.scheduler.PayInvoice(ctx, cmd.PlayerID, cmd.InvoiceID)
	if err != nil {
		return nil, err
	}
	return &PayInvoiceResponse{Invoice: inv}, nil
}
