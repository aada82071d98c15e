package helpers

import (
	"context"
	"sync"

	"github.com/factorycraft/factory-economy/internal/domain/shared"
)

// MockEconomy is an in-memory balance service
type MockEconomy struct {
	mu       sync.Mutex
	balances map[shared.PlayerID]float64

	// WithdrawErr, when set, is returned by every Withdraw
	WithdrawErr error
	// RefuseDeposits makes Deposit report false
	RefuseDeposits bool
}

// NewMockEconomy creates an economy where every player starts at zero
func NewMockEconomy() *MockEconomy {
	return &MockEconomy{balances: make(map[shared.PlayerID]float64)}
}

// SetBalance sets a player's balance
func (m *MockEconomy) SetBalance(playerID shared.PlayerID, amount float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[playerID] = amount
}

// BalanceOf returns a player's balance without a context
func (m *MockEconomy) BalanceOf(playerID shared.PlayerID) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[playerID]
}

func (m *MockEconomy) Withdraw(ctx context.Context, playerID shared.PlayerID, amount float64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WithdrawErr != nil {
		return false, m.WithdrawErr
	}
	if m.balances[playerID] < amount {
		return false, nil
	}
	m.balances[playerID] -= amount
	return true, nil
}

func (m *MockEconomy) Deposit(ctx context.Context, playerID shared.PlayerID, amount float64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RefuseDeposits {
		return false, nil
	}
	m.balances[playerID] += amount
	return true, nil
}

func (m *MockEconomy) Balance(ctx context.Context, playerID shared.PlayerID) (float64, error) {
	return m.BalanceOf(playerID), nil
}
