package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/factorycraft/factory-economy/internal/domain/storage"
)

// GormLedgerRepository implements storage.LedgerRepository over the
// input_storage and output_storage tables.
type GormLedgerRepository struct {
	db *gorm.DB
}

func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// Save rewrites both compartments of the ledger's factory
func (r *GormLedgerRepository) Save(ctx context.Context, ledger *storage.Ledger) error {
	id := ledger.FactoryID()
	return Conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := deleteLedger(tx, id); err != nil {
			return err
		}

		input := ledger.Snapshot(storage.CompartmentInput)
		if len(input) > 0 {
			rows := make([]InputStorageModel, 0, len(input))
			for res, amount := range input {
				rows = append(rows, InputStorageModel{FactoryID: id, ResourceID: res, Amount: amount})
			}
			if err := tx.Create(&rows).Error; err != nil {
				return fmt.Errorf("failed to save input storage of %s: %w", id, err)
			}
		}

		output := ledger.Snapshot(storage.CompartmentOutput)
		if len(output) > 0 {
			rows := make([]OutputStorageModel, 0, len(output))
			for res, amount := range output {
				rows = append(rows, OutputStorageModel{FactoryID: id, ResourceID: res, Amount: amount})
			}
			if err := tx.Create(&rows).Error; err != nil {
				return fmt.Errorf("failed to save output storage of %s: %w", id, err)
			}
		}
		return nil
	})
}

func (r *GormLedgerRepository) Delete(ctx context.Context, factoryID string) error {
	return deleteLedger(Conn(ctx, r.db), factoryID)
}

func deleteLedger(tx *gorm.DB, factoryID string) error {
	if err := tx.Where("factory_id = ?", factoryID).Delete(&InputStorageModel{}).Error; err != nil {
		return fmt.Errorf("failed to clear input storage of %s: %w", factoryID, err)
	}
	if err := tx.Where("factory_id = ?", factoryID).Delete(&OutputStorageModel{}).Error; err != nil {
		return fmt.Errorf("failed to clear output storage of %s: %w", factoryID, err)
	}
	return nil
}

// FindAll loads every ledger that has at least one stored resource
func (r *GormLedgerRepository) FindAll(ctx context.Context) ([]*storage.Ledger, error) {
	db := Conn(ctx, r.db)

	var inputs []InputStorageModel
	if err := db.Find(&inputs).Error; err != nil {
		return nil, fmt.Errorf("failed to load input storage: %w", err)
	}
	var outputs []OutputStorageModel
	if err := db.Find(&outputs).Error; err != nil {
		return nil, fmt.Errorf("failed to load output storage: %w", err)
	}

	in := make(map[string]map[string]int)
	out := make(map[string]map[string]int)
	var order []string
	seen := make(map[string]bool)
	track := func(id string) {
		if !seen[id] {
			seen[id] = true
			order = append(order, id)
		}
	}
	for _, row := range inputs {
		track(row.FactoryID)
		if in[row.FactoryID] == nil {
			in[row.FactoryID] = make(map[string]int)
		}
		in[row.FactoryID][row.ResourceID] = row.Amount
	}
	for _, row := range outputs {
		track(row.FactoryID)
		if out[row.FactoryID] == nil {
			out[row.FactoryID] = make(map[string]int)
		}
		out[row.FactoryID][row.ResourceID] = row.Amount
	}

	ledgers := make([]*storage.Ledger, 0, len(order))
	for _, id := range order {
		ledgers = append(ledgers, storage.ReconstructLedger(id, in[id], out[id]))
	}
	return ledgers, nil
}
