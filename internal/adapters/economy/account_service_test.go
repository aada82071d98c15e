package economy_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/factorycraft/factory-economy/internal/adapters/economy"
	"github.com/factorycraft/factory-economy/internal/adapters/persistence"
	"github.com/factorycraft/factory-economy/internal/domain/shared"
	"github.com/factorycraft/factory-economy/test/helpers"
)

func newAccounts(t *testing.T, starting float64) *economy.AccountService {
	t.Helper()
	db := helpers.NewTestDB(t)
	clock := shared.NewMockClock(time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC))
	return economy.NewAccountService(db, starting, clock)
}

func TestAccountService_OpensWithStartingBalance(t *testing.T) {
	svc := newAccounts(t, 500)

	balance, err := svc.Balance(context.Background(), shared.GeneratePlayerID())
	require.NoError(t, err)
	assert.Equal(t, 500.0, balance)
}

func TestAccountService_WithdrawAndDeposit(t *testing.T) {
	svc := newAccounts(t, 100)
	ctx := context.Background()
	player := shared.GeneratePlayerID()

	ok, err := svc.Withdraw(ctx, player, 40)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Withdraw(ctx, player, 61)
	require.NoError(t, err)
	assert.False(t, ok, "insufficient funds is a plain false")

	ok, err = svc.Deposit(ctx, player, 15.25)
	require.NoError(t, err)
	assert.True(t, ok)

	balance, err := svc.Balance(ctx, player)
	require.NoError(t, err)
	assert.Equal(t, 75.25, balance)
}

func TestAccountService_RejectsNegativeAmounts(t *testing.T) {
	svc := newAccounts(t, 100)
	ctx := context.Background()
	player := shared.GeneratePlayerID()

	_, err := svc.Withdraw(ctx, player, -1)
	assert.Error(t, err)
	_, err = svc.Deposit(ctx, player, -1)
	assert.Error(t, err)
	assert.Error(t, svc.SetBalance(ctx, player, -1))
}

func TestAccountService_SetBalance(t *testing.T) {
	svc := newAccounts(t, 100)
	ctx := context.Background()
	player := shared.GeneratePlayerID()

	require.NoError(t, svc.SetBalance(ctx, player, 3))
	balance, err := svc.Balance(ctx, player)
	require.NoError(t, err)
	assert.Equal(t, 3.0, balance)
}

func TestAccountService_ConcurrentWithdrawalsNeverOverdraw(t *testing.T) {
	svc := newAccounts(t, 100)
	ctx := context.Background()
	player := shared.GeneratePlayerID()

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := svc.Withdraw(ctx, player, 10)
			if err == nil && ok {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, succeeded)
	balance, err := svc.Balance(ctx, player)
	require.NoError(t, err)
	assert.Zero(t, balance)
}

func TestAccountService_JoinsTransaction(t *testing.T) {
	db := helpers.NewTestDB(t)
	svc := economy.NewAccountService(db, 100, nil)
	tx := persistence.NewGormTransactor(db)
	ctx := context.Background()
	player := shared.GeneratePlayerID()

	_ = tx.WithinTransaction(ctx, func(ctx context.Context) error {
		ok, err := svc.Withdraw(ctx, player, 100)
		require.NoError(t, err)
		require.True(t, ok)
		return assert.AnError
	})

	balance, err := svc.Balance(ctx, player)
	require.NoError(t, err)
	assert.Equal(t, 100.0, balance, "rolled back withdrawal restores funds")
}
