package storage

import "context"

// LedgerRepository persists factory ledgers (input and output tables).
// Save rewrites both compartments of one factory.
type LedgerRepository interface {
	Save(ctx context.Context, ledger *Ledger) error
	Delete(ctx context.Context, factoryID string) error
	FindAll(ctx context.Context) ([]*Ledger, error)
}
