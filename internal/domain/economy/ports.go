package economy

import (
	"context"

	"github.com/factorycraft/factory-economy/internal/domain/shared"
)

// Service is the host's opaque balance service. Each call is atomic; the
// engine treats a false result or an error from Withdraw as insufficient
// funds and never retries.
type Service interface {
	Withdraw(ctx context.Context, playerID shared.PlayerID, amount float64) (bool, error)
	Deposit(ctx context.Context, playerID shared.PlayerID, amount float64) (bool, error)
	Balance(ctx context.Context, playerID shared.PlayerID) (float64, error)
}
