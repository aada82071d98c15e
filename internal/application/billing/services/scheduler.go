package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/factorycraft/factory-economy/internal/adapters/metrics"
	"github.com/factorycraft/factory-economy/internal/application/common"
	factoryServices "github.com/factorycraft/factory-economy/internal/application/factory/services"
	"github.com/factorycraft/factory-economy/internal/domain/billing"
	"github.com/factorycraft/factory-economy/internal/domain/economy"
	"github.com/factorycraft/factory-economy/internal/domain/factory"
	"github.com/factorycraft/factory-economy/internal/domain/shared"
)

// Settings controls invoice generation and the overdue policy
type Settings struct {
	TaxInterval    time.Duration
	SalaryInterval time.Duration
	TaxGrace       time.Duration
	SalaryGrace    time.Duration
	Tax            billing.TaxPolicy
	Overdue        billing.OverduePolicy
}

// DefaultSettings returns a three-day tax cycle and a daily salary cycle,
// each with three days of grace
func DefaultSettings() Settings {
	return Settings{
		TaxInterval:    72 * time.Hour,
		SalaryInterval: 24 * time.Hour,
		TaxGrace:       72 * time.Hour,
		SalaryGrace:    72 * time.Hour,
		Tax:            billing.TaxPolicy{Rate: 0.05, LevelMultiplier: 0.25},
		Overdue:        billing.OverduePolicyLog,
	}
}

// ListingSweeper returns expired marketplace listings to their sellers
type ListingSweeper interface {
	CleanupExpired(ctx context.Context) (int, error)
}

// OverdueReport summarises one CheckOverdue pass
type OverdueReport struct {
	Overdue   []*billing.Invoice
	Suspended []string
	Resumed   []string
}

// BillingScheduler issues tax and salary invoices for owned factories,
// collects payments and enforces the overdue policy.
type BillingScheduler struct {
	registry   *factoryServices.Registry
	invoices   billing.InvoiceRepository
	runs       billing.BillingRunRepository
	economy    economy.Service
	transactor common.Transactor
	sweeper    ListingSweeper
	clock      shared.Clock
	logger     *slog.Logger
	settings   Settings

	runMu sync.Mutex // one generation or overdue pass at a time; also held while a payment settles
	payMu sync.Mutex // payments are serialised so an invoice is never charged twice
}

func NewBillingScheduler(
	registry *factoryServices.Registry,
	invoices billing.InvoiceRepository,
	runs billing.BillingRunRepository,
	economySvc economy.Service,
	transactor common.Transactor,
	sweeper ListingSweeper,
	clock shared.Clock,
	logger *slog.Logger,
	settings Settings,
) *BillingScheduler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	if logger == nil {
		logger = common.DiscardLogger()
	}
	if transactor == nil {
		transactor = common.NoopTransactor{}
	}
	return &BillingScheduler{
		registry:   registry,
		invoices:   invoices,
		runs:       runs,
		economy:    economySvc,
		transactor: transactor,
		sweeper:    sweeper,
		clock:      clock,
		logger:     logger.With("component", "billing"),
		settings:   settings,
	}
}

func (s *BillingScheduler) Settings() Settings {
	return s.settings
}

// AssessTaxes issues one TAX invoice per owned factory. A run inside the
// tax interval since the previous one is skipped and returns no invoices.
func (s *BillingScheduler) AssessTaxes(ctx context.Context) ([]*billing.Invoice, error) {
	return s.generate(ctx, billing.InvoiceTypeTax, false)
}

// GenerateSalaryInvoices issues one SALARY invoice per owned factory that
// employs workers.
func (s *BillingScheduler) GenerateSalaryInvoices(ctx context.Context) ([]*billing.Invoice, error) {
	return s.generate(ctx, billing.InvoiceTypeSalary, false)
}

// ForceRun generates invoices of the given kind regardless of the last run
func (s *BillingScheduler) ForceRun(ctx context.Context, kind billing.InvoiceType) ([]*billing.Invoice, error) {
	return s.generate(ctx, kind, true)
}

func (s *BillingScheduler) generate(ctx context.Context, kind billing.InvoiceType, force bool) ([]*billing.Invoice, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	now := s.clock.Now()
	interval, grace := s.cycle(kind)

	if !force {
		last, err := s.runs.LastRun(ctx, kind)
		if err != nil {
			return nil, fmt.Errorf("failed to read last %s run: %w", kind, err)
		}
		if !billing.RunDue(last, now, interval) {
			s.logger.Debug("billing run skipped", "kind", string(kind), "last_run", last, "interval", interval)
			return nil, nil
		}
	}

	var issued []*billing.Invoice
	total := 0.0
	for _, f := range s.registry.Owned() {
		amount, ok := s.amountFor(kind, f)
		if !ok {
			continue
		}
		inv, err := billing.NewInvoice(f.ID(), *f.Owner(), kind, amount, now, grace)
		if err != nil {
			s.logger.Warn("invoice not issued", "kind", string(kind), "factory_id", f.ID(), "error", err)
			continue
		}
		issued = append(issued, inv)
		total += inv.Amount()
	}

	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if len(issued) > 0 {
			if err := s.invoices.SaveAll(ctx, issued); err != nil {
				return err
			}
		}
		return s.runs.RecordRun(ctx, kind, now)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record %s run: %w", kind, err)
	}

	metrics.RecordInvoicesIssued(string(kind), len(issued), total)
	s.logger.Info("billing run complete", "kind", string(kind), "invoices", len(issued), "total", shared.RoundCredits(total))
	return issued, nil
}

func (s *BillingScheduler) cycle(kind billing.InvoiceType) (time.Duration, time.Duration) {
	if kind == billing.InvoiceTypeSalary {
		return s.settings.SalaryInterval, s.settings.SalaryGrace
	}
	return s.settings.TaxInterval, s.settings.TaxGrace
}

func (s *BillingScheduler) amountFor(kind billing.InvoiceType, f *factory.Factory) (float64, bool) {
	if kind == billing.InvoiceTypeSalary {
		if f.EmployeeCount() == 0 {
			return 0, false
		}
		return f.TotalWages(), true
	}
	return s.settings.Tax.Amount(f.Price(), f.Level()), true
}

// CheckOverdue finds unpaid invoices past their due date and applies the
// overdue policy. Under the suspend policy a factory stays suspended while
// its current owner has an overdue invoice for it, and is resumed otherwise.
func (s *BillingScheduler) CheckOverdue(ctx context.Context) (OverdueReport, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	now := s.clock.Now()
	unpaid, err := s.invoices.FindUnpaid(ctx)
	if err != nil {
		return OverdueReport{}, fmt.Errorf("failed to load unpaid invoices: %w", err)
	}

	var report OverdueReport
	delinquent := make(map[string]bool)
	for _, inv := range unpaid {
		if !inv.IsOverdue(now) {
			continue
		}
		report.Overdue = append(report.Overdue, inv)
		s.logger.Warn("invoice overdue",
			"invoice_id", inv.ID(),
			"factory_id", inv.FactoryID(),
			"owner_id", inv.OwnerID().String(),
			"kind", string(inv.Type()),
			"amount", inv.Amount(),
			"due_at", inv.DueAt())

		if f, err := s.registry.Get(inv.FactoryID()); err == nil && f.IsOwnedBy(inv.OwnerID()) {
			delinquent[inv.FactoryID()] = true
		}
	}
	metrics.SetOverdueInvoices(len(report.Overdue))

	if s.settings.Overdue != billing.OverduePolicySuspend {
		return report, nil
	}

	for _, f := range s.registry.All() {
		want := delinquent[f.ID()]
		if f.IsSuspended() == want {
			continue
		}
		changed, err := s.registry.SetSuspended(ctx, f.ID(), want)
		if err != nil {
			s.logger.Error("failed to update suspension", "factory_id", f.ID(), "suspend", want, "error", err)
			continue
		}
		if !changed {
			continue
		}
		if want {
			report.Suspended = append(report.Suspended, f.ID())
			s.logger.Warn("factory suspended for overdue invoices", "factory_id", f.ID())
		} else {
			report.Resumed = append(report.Resumed, f.ID())
			s.logger.Info("factory resumed", "factory_id", f.ID())
		}
	}
	return report, nil
}

// PayInvoice charges the invoice owner and marks the invoice paid. If the
// paid invoice cannot be saved the charge is refunded.
func (s *BillingScheduler) PayInvoice(ctx context.Context, playerID shared.PlayerID, invoiceID string) (*billing.Invoice, error) {
	s.payMu.Lock()
	defer s.payMu.Unlock()

	inv, err := s.invoices.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if !inv.OwnerID().Equals(playerID) {
		return nil, &factory.ErrNotOwner{FactoryID: inv.FactoryID(), PlayerID: playerID}
	}
	if inv.IsPaid() {
		return nil, &billing.ErrAlreadyPaid{InvoiceID: inv.ID()}
	}

	if err := economy.Charge(ctx, s.economy, playerID, inv.Amount()); err != nil {
		return nil, err
	}

	// settling excludes overdue passes
	s.runMu.Lock()
	defer s.runMu.Unlock()

	if err := inv.MarkPaid(s.clock.Now()); err != nil {
		s.refund(ctx, playerID, inv)
		return nil, err
	}
	if err := s.invoices.Save(ctx, inv); err != nil {
		s.refund(ctx, playerID, inv)
		return nil, fmt.Errorf("failed to save paid invoice %s: %w", inv.ID(), err)
	}

	metrics.RecordInvoicePaid(string(inv.Type()), inv.Amount())
	s.logger.Info("invoice paid", "invoice_id", inv.ID(), "factory_id", inv.FactoryID(), "player_id", playerID.String(), "amount", inv.Amount())

	if s.settings.Overdue == billing.OverduePolicySuspend {
		s.resumeIfSettled(ctx, inv.FactoryID())
	}
	return inv, nil
}

func (s *BillingScheduler) refund(ctx context.Context, playerID shared.PlayerID, inv *billing.Invoice) {
	if err := economy.Credit(ctx, s.economy, playerID, inv.Amount()); err != nil {
		s.logger.Error("refund failed", "invoice_id", inv.ID(), "player_id", playerID.String(), "amount", inv.Amount(), "error", err)
	}
}

func (s *BillingScheduler) resumeIfSettled(ctx context.Context, factoryID string) {
	f, err := s.registry.Get(factoryID)
	if err != nil || !f.IsSuspended() {
		return
	}
	unpaid, err := s.invoices.FindUnpaidByFactory(ctx, factoryID)
	if err != nil {
		s.logger.Error("failed to check remaining invoices", "factory_id", factoryID, "error", err)
		return
	}
	now := s.clock.Now()
	for _, inv := range unpaid {
		if inv.IsOverdue(now) && f.IsOwnedBy(inv.OwnerID()) {
			return
		}
	}
	if changed, err := s.registry.SetSuspended(ctx, factoryID, false); err != nil {
		s.logger.Error("failed to resume factory", "factory_id", factoryID, "error", err)
	} else if changed {
		s.logger.Info("factory resumed", "factory_id", factoryID)
	}
}

// CleanupExpiredListings returns expired marketplace listings to their sellers
func (s *BillingScheduler) CleanupExpiredListings(ctx context.Context) (int, error) {
	if s.sweeper == nil {
		return 0, nil
	}
	return s.sweeper.CleanupExpired(ctx)
}

// Queries

func (s *BillingScheduler) InvoicesByOwner(ctx context.Context, playerID shared.PlayerID) ([]*billing.Invoice, error) {
	return s.invoices.FindByOwner(ctx, playerID)
}

func (s *BillingScheduler) UnpaidByFactory(ctx context.Context, factoryID string) ([]*billing.Invoice, error) {
	return s.invoices.FindUnpaidByFactory(ctx, factoryID)
}

// Invoice returns a single invoice by id
func (s *BillingScheduler) Invoice(ctx context.Context, invoiceID string) (*billing.Invoice, error) {
	return s.invoices.FindByID(ctx, invoiceID)
}
