package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/factorycraft/factory-economy/internal/application/billing/services"
	factoryServices "github.com/factorycraft/factory-economy/internal/application/factory/services"
	"github.com/factorycraft/factory-economy/internal/domain/billing"
	"github.com/factorycraft/factory-economy/internal/domain/factory"
	"github.com/factorycraft/factory-economy/internal/domain/shared"
	"github.com/factorycraft/factory-economy/test/helpers"
)

type billingFixture struct {
	ctx       context.Context
	engine    *helpers.TestEngine
	invoices  *helpers.MockInvoiceRepository
	runs      *helpers.MockBillingRunRepository
	scheduler *services.BillingScheduler
}

func newBillingFixture(t *testing.T, sweeper services.ListingSweeper, tune ...func(s *services.Settings)) *billingFixture {
	t.Helper()
	settings := services.DefaultSettings()
	for _, fn := range tune {
		fn(&settings)
	}

	engine := helpers.NewTestEngine(t, factoryServices.DefaultSettings())
	fx := &billingFixture{
		ctx:      context.Background(),
		engine:   engine,
		invoices: helpers.NewMockInvoiceRepository(),
		runs:     helpers.NewMockBillingRunRepository(),
	}
	fx.scheduler = services.NewBillingScheduler(
		engine.Registry,
		fx.invoices,
		fx.runs,
		engine.Economy,
		nil,
		sweeper,
		engine.Clock,
		nil,
		settings,
	)
	return fx
}

func suspendPolicy(s *services.Settings) {
	s.Overdue = billing.OverduePolicySuspend
}

func TestAssessTaxes_OneInvoicePerOwnedFactory(t *testing.T) {
	// Arrange
	fx := newBillingFixture(t, nil)
	alice := fx.engine.OwnFactory(t, "f1", shared.FactoryTypeWorkshop, 1000)
	bob := fx.engine.OwnFactory(t, "f2", shared.FactoryTypeFoundry, 2000)
	fx.engine.CreateFactory(t, "f3", shared.FactoryTypeRefinery, 500)
	now := fx.engine.Clock.Now()

	// Act
	issued, err := fx.scheduler.AssessTaxes(fx.ctx)

	// Assert
	require.NoError(t, err)
	require.Len(t, issued, 2)

	byFactory := map[string]*billing.Invoice{}
	for _, inv := range issued {
		byFactory[inv.FactoryID()] = inv
		assert.Equal(t, billing.InvoiceTypeTax, inv.Type())
		assert.False(t, inv.IsPaid())
		assert.Equal(t, now.Add(72*time.Hour), inv.DueAt())
	}
	assert.InDelta(t, 50.0, byFactory["f1"].Amount(), 1e-9)
	assert.True(t, byFactory["f1"].OwnerID().Equals(alice))
	assert.InDelta(t, 100.0, byFactory["f2"].Amount(), 1e-9)
	assert.True(t, byFactory["f2"].OwnerID().Equals(bob))
	assert.Len(t, fx.invoices.All(), 2)
}

func TestAssessTaxes_LevelRaisesTax(t *testing.T) {
	// Arrange
	fx := newBillingFixture(t, nil)
	owner := fx.engine.OwnFactory(t, "f1", shared.FactoryTypeWorkshop, 1000)
	fx.engine.Economy.SetBalance(owner, 500)
	_, err := fx.engine.Registry.Upgrade(fx.ctx, owner, "f1")
	require.NoError(t, err)
	fx.engine.Clock.Advance(fx.engine.Registry.Settings().UpgradeDuration)
	_, err = fx.engine.Production.Tick(fx.ctx, "f1")
	require.NoError(t, err)

	// Act
	issued, err := fx.scheduler.AssessTaxes(fx.ctx)

	// Assert: 1000 * 0.05 * (1 + 1*0.25)
	require.NoError(t, err)
	require.Len(t, issued, 1)
	assert.InDelta(t, 62.5, issued[0].Amount(), 1e-9)
}

func TestAssessTaxes_SecondRunInsideIntervalIsSkipped(t *testing.T) {
	// Arrange
	fx := newBillingFixture(t, nil)
	fx.engine.OwnFactory(t, "f1", shared.FactoryTypeWorkshop, 1000)
	_, err := fx.scheduler.AssessTaxes(fx.ctx)
	require.NoError(t, err)

	// Act
	fx.engine.Clock.Advance(time.Hour)
	again, err := fx.scheduler.AssessTaxes(fx.ctx)

	// Assert
	require.NoError(t, err)
	assert.Empty(t, again)
	assert.Len(t, fx.invoices.All(), 1)

	fx.engine.Clock.Advance(70 * time.Hour)
	again, err = fx.scheduler.AssessTaxes(fx.ctx)
	require.NoError(t, err)
	assert.Empty(t, again, "tax runs every three days")

	// Act: once the interval has elapsed the run happens again
	fx.engine.Clock.Advance(time.Hour)
	next, err := fx.scheduler.AssessTaxes(fx.ctx)

	// Assert
	require.NoError(t, err)
	assert.Len(t, next, 1)
	assert.Len(t, fx.invoices.All(), 2)
}

func TestForceRun_IgnoresLastRun(t *testing.T) {
	fx := newBillingFixture(t, nil)
	fx.engine.OwnFactory(t, "f1", shared.FactoryTypeWorkshop, 1000)
	_, err := fx.scheduler.AssessTaxes(fx.ctx)
	require.NoError(t, err)

	forced, err := fx.scheduler.ForceRun(fx.ctx, billing.InvoiceTypeTax)

	require.NoError(t, err)
	assert.Len(t, forced, 1)
}

func TestGenerateSalaryInvoices_OnlyFactoriesWithEmployees(t *testing.T) {
	// Arrange
	fx := newBillingFixture(t, nil)
	owner := fx.engine.OwnFactory(t, "f1", shared.FactoryTypeWorkshop, 1000)
	fx.engine.OwnFactory(t, "f2", shared.FactoryTypeFoundry, 1000)
	_, err := fx.engine.Registry.HireEmployee(fx.ctx, owner, "f1", "Ada", 10)
	require.NoError(t, err)
	_, err = fx.engine.Registry.HireEmployee(fx.ctx, owner, "f1", "Brunel", 15.5)
	require.NoError(t, err)

	// Act
	issued, err := fx.scheduler.GenerateSalaryInvoices(fx.ctx)

	// Assert
	require.NoError(t, err)
	require.Len(t, issued, 1)
	assert.Equal(t, "f1", issued[0].FactoryID())
	assert.Equal(t, billing.InvoiceTypeSalary, issued[0].Type())
	assert.InDelta(t, 25.5, issued[0].Amount(), 1e-9)
}

func TestGenerate_SaveFailureDoesNotRecordRun(t *testing.T) {
	// Arrange
	fx := newBillingFixture(t, nil)
	fx.engine.OwnFactory(t, "f1", shared.FactoryTypeWorkshop, 1000)
	fx.invoices.SaveErr = errors.New("disk full")

	// Act
	issued, err := fx.scheduler.AssessTaxes(fx.ctx)

	// Assert
	require.Error(t, err)
	assert.Nil(t, issued)
	last, err := fx.runs.LastRun(fx.ctx, billing.InvoiceTypeTax)
	require.NoError(t, err)
	assert.True(t, last.IsZero())
}

func TestPayInvoice(t *testing.T) {
	// Arrange
	fx := newBillingFixture(t, nil)
	owner := fx.engine.OwnFactory(t, "f1", shared.FactoryTypeWorkshop, 1000)
	issued, err := fx.scheduler.AssessTaxes(fx.ctx)
	require.NoError(t, err)
	require.Len(t, issued, 1)
	id := issued[0].ID()

	t.Run("insufficient funds", func(t *testing.T) {
		fx.engine.Economy.SetBalance(owner, 10)

		_, err := fx.scheduler.PayInvoice(fx.ctx, owner, id)

		var funds *shared.InsufficientFundsError
		assert.ErrorAs(t, err, &funds)
		assert.InDelta(t, 10.0, fx.engine.Economy.BalanceOf(owner), 1e-9)
	})

	t.Run("not owner", func(t *testing.T) {
		stranger := shared.GeneratePlayerID()
		fx.engine.Economy.SetBalance(stranger, 1000)

		_, err := fx.scheduler.PayInvoice(fx.ctx, stranger, id)

		var notOwner *factory.ErrNotOwner
		assert.ErrorAs(t, err, &notOwner)
		assert.InDelta(t, 1000.0, fx.engine.Economy.BalanceOf(stranger), 1e-9)
	})

	t.Run("unknown invoice", func(t *testing.T) {
		_, err := fx.scheduler.PayInvoice(fx.ctx, owner, "missing")

		var notFound *shared.NotFoundError
		assert.ErrorAs(t, err, &notFound)
	})

	t.Run("paid", func(t *testing.T) {
		fx.engine.Economy.SetBalance(owner, 80)

		paid, err := fx.scheduler.PayInvoice(fx.ctx, owner, id)

		require.NoError(t, err)
		assert.True(t, paid.IsPaid())
		assert.InDelta(t, 30.0, fx.engine.Economy.BalanceOf(owner), 1e-9)
		unpaid, err := fx.scheduler.UnpaidByFactory(fx.ctx, "f1")
		require.NoError(t, err)
		assert.Empty(t, unpaid)
	})

	t.Run("already paid", func(t *testing.T) {
		_, err := fx.scheduler.PayInvoice(fx.ctx, owner, id)

		var alreadyPaid *billing.ErrAlreadyPaid
		assert.ErrorAs(t, err, &alreadyPaid)
		assert.InDelta(t, 30.0, fx.engine.Economy.BalanceOf(owner), 1e-9)
	})
}

func TestPayInvoice_SaveFailureRefunds(t *testing.T) {
	// Arrange
	fx := newBillingFixture(t, nil)
	owner := fx.engine.OwnFactory(t, "f1", shared.FactoryTypeWorkshop, 1000)
	issued, err := fx.scheduler.AssessTaxes(fx.ctx)
	require.NoError(t, err)
	fx.engine.Economy.SetBalance(owner, 100)
	fx.invoices.SaveErr = errors.New("connection reset")

	// Act
	_, err = fx.scheduler.PayInvoice(fx.ctx, owner, issued[0].ID())

	// Assert
	require.Error(t, err)
	assert.InDelta(t, 100.0, fx.engine.Economy.BalanceOf(owner), 1e-9)
	stored, err := fx.invoices.FindByID(fx.ctx, issued[0].ID())
	require.NoError(t, err)
	assert.False(t, stored.IsPaid())
}

func TestCheckOverdue_LogPolicyOnlyReports(t *testing.T) {
	// Arrange
	fx := newBillingFixture(t, nil)
	fx.engine.OwnFactory(t, "f1", shared.FactoryTypeWorkshop, 1000)
	_, err := fx.scheduler.AssessTaxes(fx.ctx)
	require.NoError(t, err)

	// Act: not yet due
	report, err := fx.scheduler.CheckOverdue(fx.ctx)
	require.NoError(t, err)
	assert.Empty(t, report.Overdue)

	// Act: past the grace period
	fx.engine.Clock.Advance(73 * time.Hour)
	report, err = fx.scheduler.CheckOverdue(fx.ctx)

	// Assert
	require.NoError(t, err)
	assert.Len(t, report.Overdue, 1)
	assert.Empty(t, report.Suspended)
	f, err := fx.engine.Registry.Get("f1")
	require.NoError(t, err)
	assert.False(t, f.IsSuspended())
}

func TestCheckOverdue_SuspendPolicyBlocksProductionUntilPaid(t *testing.T) {
	// Arrange
	fx := newBillingFixture(t, nil, suspendPolicy)
	owner := fx.engine.OwnFactory(t, "f1", shared.FactoryTypeWorkshop, 1000)
	issued, err := fx.scheduler.AssessTaxes(fx.ctx)
	require.NoError(t, err)
	require.NoError(t, fx.engine.Storage.AddInput(fx.ctx, "f1", "iron_ore", 5))
	fx.engine.Clock.Advance(73 * time.Hour)

	// Act
	report, err := fx.scheduler.CheckOverdue(fx.ctx)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []string{"f1"}, report.Suspended)
	_, err = fx.engine.Production.Start(fx.ctx, owner, "f1", "r1")
	var suspended *factory.ErrFactorySuspended
	assert.ErrorAs(t, err, &suspended)

	// Act: paying the overdue invoice lifts the suspension
	fx.engine.Economy.SetBalance(owner, 50)
	_, err = fx.scheduler.PayInvoice(fx.ctx, owner, issued[0].ID())
	require.NoError(t, err)

	// Assert
	f, err := fx.engine.Registry.Get("f1")
	require.NoError(t, err)
	assert.False(t, f.IsSuspended())
	_, err = fx.engine.Production.Start(fx.ctx, owner, "f1", "r1")
	assert.NoError(t, err)
}

func TestPayInvoice_NotUndoneByConcurrentOverduePass(t *testing.T) {
	// Arrange: f1 is suspended for an overdue tax invoice
	fx := newBillingFixture(t, nil, suspendPolicy)
	owner := fx.engine.OwnFactory(t, "f1", shared.FactoryTypeWorkshop, 1000)
	issued, err := fx.scheduler.AssessTaxes(fx.ctx)
	require.NoError(t, err)
	fx.engine.Clock.Advance(73 * time.Hour)
	_, err = fx.scheduler.CheckOverdue(fx.ctx)
	require.NoError(t, err)
	fx.engine.Economy.SetBalance(owner, 50)

	// the next overdue pass pauses right after loading the unpaid invoices
	loaded := make(chan struct{})
	proceed := make(chan struct{})
	fx.invoices.AfterFindUnpaid = func() {
		close(loaded)
		<-proceed
	}

	// Act
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := fx.scheduler.CheckOverdue(fx.ctx)
		assert.NoError(t, err)
	}()
	<-loaded
	go func() {
		defer wg.Done()
		_, err := fx.scheduler.PayInvoice(fx.ctx, owner, issued[0].ID())
		assert.NoError(t, err)
	}()
	time.Sleep(20 * time.Millisecond)
	close(proceed)
	wg.Wait()

	// Assert
	f, err := fx.engine.Registry.Get("f1")
	require.NoError(t, err)
	assert.False(t, f.IsSuspended(), "paid factory stays resumed")
}

func TestCheckOverdue_SuspendPolicyIgnoresPreviousOwnersDebt(t *testing.T) {
	// Arrange
	fx := newBillingFixture(t, nil, suspendPolicy)
	seller := fx.engine.OwnFactory(t, "f1", shared.FactoryTypeWorkshop, 1000)
	_, err := fx.scheduler.AssessTaxes(fx.ctx)
	require.NoError(t, err)
	_, err = fx.engine.Registry.Sell(fx.ctx, seller, "f1")
	require.NoError(t, err)
	buyer := shared.GeneratePlayerID()
	fx.engine.Economy.SetBalance(buyer, 1000)
	require.NoError(t, fx.engine.Registry.Buy(fx.ctx, buyer, "f1"))
	fx.engine.Clock.Advance(73 * time.Hour)

	// Act
	report, err := fx.scheduler.CheckOverdue(fx.ctx)

	// Assert
	require.NoError(t, err)
	assert.Len(t, report.Overdue, 1)
	assert.Empty(t, report.Suspended)
}

func TestInvoicesByOwner(t *testing.T) {
	fx := newBillingFixture(t, nil)
	alice := fx.engine.OwnFactory(t, "f1", shared.FactoryTypeWorkshop, 1000)
	fx.engine.OwnFactory(t, "f2", shared.FactoryTypeWorkshop, 1000)
	_, err := fx.scheduler.AssessTaxes(fx.ctx)
	require.NoError(t, err)

	invoices, err := fx.scheduler.InvoicesByOwner(fx.ctx, alice)

	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, "f1", invoices[0].FactoryID())
}

type countingSweeper struct {
	calls int
}

func (s *countingSweeper) CleanupExpired(ctx context.Context) (int, error) {
	s.calls++
	return 2, nil
}

func TestCleanupExpiredListings(t *testing.T) {
	t.Run("without marketplace", func(t *testing.T) {
		fx := newBillingFixture(t, nil)

		n, err := fx.scheduler.CleanupExpiredListings(fx.ctx)

		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("delegates to the marketplace", func(t *testing.T) {
		sweeper := &countingSweeper{}
		fx := newBillingFixture(t, sweeper)

		n, err := fx.scheduler.CleanupExpiredListings(fx.ctx)

		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Equal(t, 1, sweeper.calls)
	})
}
