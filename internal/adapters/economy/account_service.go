package economy

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/factorycraft/factory-economy/internal/adapters/persistence"
	"github.com/factorycraft/factory-economy/internal/domain/shared"
)

// AccountService is a self-contained economy backed by the accounts table.
// Hosts with their own economy plugin implement economy.Service instead.
// Accounts are opened lazily with the configured starting balance.
type AccountService struct {
	db              *gorm.DB
	startingBalance float64
	clock           shared.Clock
}

func NewAccountService(db *gorm.DB, startingBalance float64, clock shared.Clock) *AccountService {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &AccountService{db: db, startingBalance: startingBalance, clock: clock}
}

// Withdraw debits amount if the balance covers it. It reports false, with
// no error, when funds are insufficient.
func (s *AccountService) Withdraw(ctx context.Context, playerID shared.PlayerID, amount float64) (bool, error) {
	if amount < 0 {
		return false, shared.NewInvalidAmountError("amount", amount)
	}
	if err := s.open(ctx, playerID); err != nil {
		return false, err
	}

	result := persistence.Conn(ctx, s.db).
		Model(&persistence.AccountModel{}).
		Where("player_id = ? AND balance >= ?", playerID.String(), amount).
		Updates(map[string]interface{}{
			"balance":    gorm.Expr("balance - ?", amount),
			"updated_at": s.clock.Now(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to withdraw from %s: %w", playerID, result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (s *AccountService) Deposit(ctx context.Context, playerID shared.PlayerID, amount float64) (bool, error) {
	if amount < 0 {
		return false, shared.NewInvalidAmountError("amount", amount)
	}
	if err := s.open(ctx, playerID); err != nil {
		return false, err
	}

	result := persistence.Conn(ctx, s.db).
		Model(&persistence.AccountModel{}).
		Where("player_id = ?", playerID.String()).
		Updates(map[string]interface{}{
			"balance":    gorm.Expr("balance + ?", amount),
			"updated_at": s.clock.Now(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to deposit to %s: %w", playerID, result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (s *AccountService) Balance(ctx context.Context, playerID shared.PlayerID) (float64, error) {
	if err := s.open(ctx, playerID); err != nil {
		return 0, err
	}
	var account persistence.AccountModel
	if err := persistence.Conn(ctx, s.db).Where("player_id = ?", playerID.String()).First(&account).Error; err != nil {
		return 0, fmt.Errorf("failed to read balance of %s: %w", playerID, err)
	}
	return shared.RoundCredits(account.Balance), nil
}

// SetBalance overwrites a balance (administration)
func (s *AccountService) SetBalance(ctx context.Context, playerID shared.PlayerID, amount float64) error {
	if amount < 0 {
		return shared.NewInvalidAmountError("amount", amount)
	}
	account := persistence.AccountModel{PlayerID: playerID.String(), Balance: amount, UpdatedAt: s.clock.Now()}
	if err := persistence.Conn(ctx, s.db).Clauses(clause.OnConflict{UpdateAll: true}).Create(&account).Error; err != nil {
		return fmt.Errorf("failed to set balance of %s: %w", playerID, err)
	}
	return nil
}

func (s *AccountService) open(ctx context.Context, playerID shared.PlayerID) error {
	account := persistence.AccountModel{
		PlayerID:  playerID.String(),
		Balance:   s.startingBalance,
		UpdatedAt: s.clock.Now(),
	}
	if err := persistence.Conn(ctx, s.db).Clauses(clause.OnConflict{DoNothing: true}).Create(&account).Error; err != nil {
		return fmt.Errorf("failed to open account for %s: %w", playerID, err)
	}
	return nil
}
