package economy

import (
	"context"
	"fmt"

	"github.com/factorycraft/factory-economy/internal/domain/shared"
)

// Charge withdraws amount or returns shared.InsufficientFundsError.
// A zero amount succeeds without touching the service.
func Charge(ctx context.Context, svc Service, playerID shared.PlayerID, amount float64) error {
	if amount < 0 {
		return shared.NewInvalidAmountError("amount", amount)
	}
	if amount == 0 {
		return nil
	}
	ok, err := svc.Withdraw(ctx, playerID, amount)
	if err != nil {
		return shared.NewInsufficientFundsError(playerID, amount, err)
	}
	if !ok {
		return shared.NewInsufficientFundsError(playerID, amount, nil)
	}
	return nil
}

// Credit deposits amount, failing if the service refuses
func Credit(ctx context.Context, svc Service, playerID shared.PlayerID, amount float64) error {
	if amount <= 0 {
		return nil
	}
	ok, err := svc.Deposit(ctx, playerID, amount)
	if err != nil {
		return fmt.Errorf("deposit %.2f to %s: %w", amount, playerID, err)
	}
	if !ok {
		return fmt.Errorf("deposit %.2f to %s refused", amount, playerID)
	}
	return nil
}
