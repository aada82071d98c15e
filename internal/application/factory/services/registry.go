package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/factorycraft/factory-economy/internal/adapters/metrics"
	"github.com/factorycraft/factory-economy/internal/application/common"
	"github.com/factorycraft/factory-economy/internal/domain/economy"
	"github.com/factorycraft/factory-economy/internal/domain/factory"
	"github.com/factorycraft/factory-economy/internal/domain/shared"
	"github.com/factorycraft/factory-economy/internal/domain/storage"
)

// dirty marks which records a mutation must persist
type dirty uint8

const (
	dirtyFactory dirty = 1 << iota
	dirtyLedger
)

// Registry owns the in-memory set of factories and their ledgers and
// mediates ownership changes.
//
// Published *factory.Factory and *storage.Ledger values are never mutated:
// every change is applied to clones under the factory's lock, persisted in
// one transaction and only then swapped in. A failed save therefore leaves
// memory exactly as it was.
type Registry struct {
	factoryRepo factory.FactoryRepository
	ledgerRepo  storage.LedgerRepository
	transactor  common.Transactor
	economy     economy.Service
	regions     factory.RegionResolver
	mover       factory.WorldMover
	clock       shared.Clock
	logger      *slog.Logger
	settings    Settings

	locks *lockSet

	mu        sync.RWMutex
	factories map[string]*factory.Factory
	ledgers   map[string]*storage.Ledger
	noParts   map[string]time.Time // factory id -> NO_PARTS expiry
}

// NewRegistry creates an empty registry; call Load to restore persisted state
func NewRegistry(
	factoryRepo factory.FactoryRepository,
	ledgerRepo storage.LedgerRepository,
	transactor common.Transactor,
	economySvc economy.Service,
	regions factory.RegionResolver,
	mover factory.WorldMover,
	clock shared.Clock,
	logger *slog.Logger,
	settings Settings,
) *Registry {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	if logger == nil {
		logger = common.DiscardLogger()
	}
	if transactor == nil {
		transactor = common.NoopTransactor{}
	}

	return &Registry{
		factoryRepo: factoryRepo,
		ledgerRepo:  ledgerRepo,
		transactor:  transactor,
		economy:     economySvc,
		regions:     regions,
		mover:       mover,
		clock:       clock,
		logger:      logger.With("component", "factory_registry"),
		settings:    settings,
		locks:       newLockSet(),
		factories:   make(map[string]*factory.Factory),
		ledgers:     make(map[string]*storage.Ledger),
		noParts:     make(map[string]time.Time),
	}
}

// Settings returns the registry's tuning
func (r *Registry) Settings() Settings {
	return r.settings
}

// Load replaces the in-memory state with a full snapshot from the repositories
func (r *Registry) Load(ctx context.Context) error {
	factories, err := r.factoryRepo.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load factories: %w", err)
	}
	ledgers, err := r.ledgerRepo.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load storage: %w", err)
	}

	fm := make(map[string]*factory.Factory, len(factories))
	for _, f := range factories {
		fm[f.ID()] = f
	}
	lm := make(map[string]*storage.Ledger, len(factories))
	for _, l := range ledgers {
		if _, ok := fm[l.FactoryID()]; !ok {
			r.logger.Warn("ignoring storage of unknown factory", "factory_id", l.FactoryID())
			continue
		}
		lm[l.FactoryID()] = l
	}
	for id := range fm {
		if _, ok := lm[id]; !ok {
			lm[id] = storage.NewLedger(id)
		}
	}

	r.mu.Lock()
	r.factories = fm
	r.ledgers = lm
	r.noParts = make(map[string]time.Time)
	r.mu.Unlock()

	metrics.SetOwnedFactories(r.ownedCount())
	r.logger.Info("factories loaded", "count", len(fm))
	return nil
}

// view returns the published state of a factory. Callers must not mutate it.
func (r *Registry) view(id string) (*factory.Factory, *storage.Ledger, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[id]
	if !ok {
		return nil, nil, shared.NewNotFoundError("factory", id)
	}
	return f, r.ledgers[id], nil
}

// mutate applies fn to clones of a factory and its ledger under the factory
// lock, persists what fn marked dirty and publishes the clones.
func (r *Registry) mutate(ctx context.Context, id string, fn func(f *factory.Factory, l *storage.Ledger) (dirty, error)) error {
	unlock := r.locks.lock(id)
	defer unlock()

	current, ledger, err := r.view(id)
	if err != nil {
		return err
	}
	f := current.Clone()
	l := ledger.Clone()

	d, err := fn(f, l)
	if err != nil {
		return err
	}
	if d == 0 {
		return nil
	}
	if err := r.persist(ctx, f, l, d); err != nil {
		return err
	}

	r.mu.Lock()
	r.factories[id] = f
	r.ledgers[id] = l
	r.mu.Unlock()
	return nil
}

func (r *Registry) persist(ctx context.Context, f *factory.Factory, l *storage.Ledger, d dirty) error {
	err := r.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if d&dirtyFactory != 0 {
			if err := r.factoryRepo.Save(ctx, f); err != nil {
				return fmt.Errorf("failed to save factory %s: %w", f.ID(), err)
			}
		}
		if d&dirtyLedger != 0 {
			if err := r.ledgerRepo.Save(ctx, l); err != nil {
				return fmt.Errorf("failed to save storage of factory %s: %w", f.ID(), err)
			}
		}
		return nil
	})
	if err != nil {
		r.logger.Error("persist failed, in-memory state unchanged", "factory_id", f.ID(), "error", err)
	}
	return err
}

// CreateFactoryRequest describes a new factory bound to a region
type CreateFactoryRequest struct {
	ID         string
	RegionRef  string
	Type       shared.FactoryType
	Price      float64
	FastTravel *factory.Location
}

// Create registers a new unowned factory. The region must resolve and the id must be unused.
func (r *Registry) Create(ctx context.Context, req CreateFactoryRequest) (*factory.Factory, error) {
	if _, err := r.regions.ResolveRegion(ctx, req.RegionRef); err != nil {
		return nil, err
	}

	unlock := r.locks.lock(req.ID)
	defer unlock()

	if _, _, err := r.view(req.ID); err == nil {
		return nil, &factory.ErrDuplicateFactory{FactoryID: req.ID}
	}

	f, err := factory.NewFactory(req.ID, req.RegionRef, req.Type, req.Price, req.FastTravel, r.clock.Now())
	if err != nil {
		return nil, err
	}
	l := storage.NewLedger(req.ID)

	if err := r.persist(ctx, f, l, dirtyFactory|dirtyLedger); err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.factories[f.ID()] = f
	r.ledgers[f.ID()] = l
	r.mu.Unlock()

	r.logger.Info("factory created", "factory_id", f.ID(), "type", f.Type(), "region", f.RegionRef(), "price", f.Price())
	return f.Clone(), nil
}

// Remove deletes a factory with its storage, task and employees. Invoices
// and listings referencing it are left behind as history. Returns false if
// the factory does not exist.
func (r *Registry) Remove(ctx context.Context, id string) (bool, error) {
	unlock := r.locks.lock(id)
	defer unlock()

	if _, _, err := r.view(id); err != nil {
		return false, nil
	}

	err := r.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := r.ledgerRepo.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete storage of factory %s: %w", id, err)
		}
		if err := r.factoryRepo.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete factory %s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		r.logger.Error("factory removal failed", "factory_id", id, "error", err)
		return false, err
	}

	r.mu.Lock()
	delete(r.factories, id)
	delete(r.ledgers, id)
	delete(r.noParts, id)
	r.mu.Unlock()

	metrics.SetOwnedFactories(r.ownedCount())
	r.logger.Info("factory removed", "factory_id", id)
	return true, nil
}

// Buy transfers an unowned factory to playerID for its price.
// The price is withdrawn first and refunded if the ownership change cannot be saved.
func (r *Registry) Buy(ctx context.Context, playerID shared.PlayerID, id string) error {
	charged := 0.0
	err := r.mutate(ctx, id, func(f *factory.Factory, l *storage.Ledger) (dirty, error) {
		if f.IsOwned() {
			return 0, &factory.ErrAlreadyOwned{FactoryID: id, Owner: *f.Owner()}
		}
		if err := economy.Charge(ctx, r.economy, playerID, f.Price()); err != nil {
			return 0, err
		}
		charged = f.Price()
		if err := f.AssignOwner(playerID); err != nil {
			return 0, err
		}
		return dirtyFactory, nil
	})
	if err != nil {
		r.refund(ctx, playerID, charged, "buy", id)
		return err
	}

	metrics.RecordFactoryTransaction("buy", charged)
	metrics.SetOwnedFactories(r.ownedCount())
	r.logger.Info("factory bought", "factory_id", id, "player_id", playerID.String(), "price", charged)
	return nil
}

// Sell returns the factory to the market and pays price * SellMultiplier.
// The ownership change is saved before the payout is deposited.
func (r *Registry) Sell(ctx context.Context, playerID shared.PlayerID, id string) (float64, error) {
	payout := 0.0
	err := r.mutate(ctx, id, func(f *factory.Factory, l *storage.Ledger) (dirty, error) {
		if err := f.RequireOwner(playerID); err != nil {
			return 0, err
		}
		payout = shared.RoundCredits(f.Price() * r.settings.SellMultiplier)
		f.ReleaseOwner()
		d := dirtyFactory
		if r.settings.ClearStorageOnSell {
			l.Clear()
			d |= dirtyLedger
		}
		return d, nil
	})
	if err != nil {
		return 0, err
	}

	r.clearNoParts(id)
	metrics.SetOwnedFactories(r.ownedCount())

	if err := economy.Credit(ctx, r.economy, playerID, payout); err != nil {
		r.logger.Error("sale recorded but payout failed", "factory_id", id, "player_id", playerID.String(), "amount", payout, "error", err)
		return 0, fmt.Errorf("factory %s sold but payout failed: %w", id, err)
	}

	metrics.RecordFactoryTransaction("sell", payout)
	r.logger.Info("factory sold", "factory_id", id, "player_id", playerID.String(), "payout", payout)
	return payout, nil
}

// Upgrade charges price * UpgradeCostFactor * level and starts the upgrade
// timer. The level rises by one when the timer completes during a tick.
func (r *Registry) Upgrade(ctx context.Context, playerID shared.PlayerID, id string) (float64, error) {
	charged := 0.0
	err := r.mutate(ctx, id, func(f *factory.Factory, l *storage.Ledger) (dirty, error) {
		if err := f.RequireOwner(playerID); err != nil {
			return 0, err
		}
		cost := UpgradeCost(f, r.settings)
		if err := f.BeginUpgrade(r.clock.Now(), int(r.settings.UpgradeDuration.Seconds()), r.settings.MaxLevel); err != nil {
			return 0, err
		}
		if err := economy.Charge(ctx, r.economy, playerID, cost); err != nil {
			return 0, err
		}
		charged = cost
		return dirtyFactory, nil
	})
	if err != nil {
		r.refund(ctx, playerID, charged, "upgrade", id)
		return 0, err
	}

	metrics.RecordFactoryTransaction("upgrade", charged)
	r.logger.Info("factory upgrade started", "factory_id", id, "player_id", playerID.String(), "cost", charged)
	return charged, nil
}

// UpgradeCost returns price * UpgradeCostFactor * current level, rounded to cents
func UpgradeCost(f *factory.Factory, settings Settings) float64 {
	return shared.RoundCredits(f.Price() * settings.UpgradeCostFactor * float64(f.Level()))
}

func (r *Registry) refund(ctx context.Context, playerID shared.PlayerID, amount float64, op, id string) {
	if amount <= 0 {
		return
	}
	if err := economy.Credit(ctx, r.economy, playerID, amount); err != nil {
		r.logger.Error("refund failed", "operation", op, "factory_id", id, "player_id", playerID.String(), "amount", amount, "error", err)
		return
	}
	r.logger.Warn("payment refunded", "operation", op, "factory_id", id, "player_id", playerID.String(), "amount", amount)
}

// TeleportPlayer moves the player to the factory's fast-travel location.
// It returns false when no location is set. Unless bypassOwnership is set
// (admin callers) the player must own the factory.
func (r *Registry) TeleportPlayer(ctx context.Context, playerID shared.PlayerID, id string, bypassOwnership bool) (bool, error) {
	f, _, err := r.view(id)
	if err != nil {
		return false, err
	}
	loc := f.FastTravel()
	if loc == nil {
		return false, nil
	}
	if !bypassOwnership {
		if err := f.RequireOwner(playerID); err != nil {
			return false, err
		}
	}
	if err := r.mover.Teleport(ctx, playerID, *loc); err != nil {
		return false, fmt.Errorf("teleport to factory %s failed: %w", id, err)
	}
	return true, nil
}

// SetFastTravel replaces the fast-travel location; nil clears it
func (r *Registry) SetFastTravel(ctx context.Context, id string, loc *factory.Location) error {
	return r.mutate(ctx, id, func(f *factory.Factory, l *storage.Ledger) (dirty, error) {
		f.SetFastTravel(loc)
		return dirtyFactory, nil
	})
}

// HireEmployee adds an NPC worker to an owned factory
func (r *Registry) HireEmployee(ctx context.Context, playerID shared.PlayerID, id, name string, wage float64) (factory.Employee, error) {
	var hired factory.Employee
	err := r.mutate(ctx, id, func(f *factory.Factory, l *storage.Ledger) (dirty, error) {
		if err := f.RequireOwner(playerID); err != nil {
			return 0, err
		}
		e, err := factory.NewEmployee(name, wage, r.clock.Now())
		if err != nil {
			return 0, shared.NewValidationError("employee", err.Error())
		}
		if err := f.Hire(e, r.settings.MaxEmployees); err != nil {
			return 0, err
		}
		hired = e
		return dirtyFactory, nil
	})
	if err != nil {
		return factory.Employee{}, err
	}
	r.logger.Info("employee hired", "factory_id", id, "employee_id", hired.ID(), "wage", hired.Wage())
	return hired, nil
}

// FireEmployee dismisses an NPC worker
func (r *Registry) FireEmployee(ctx context.Context, playerID shared.PlayerID, id, employeeID string) error {
	return r.mutate(ctx, id, func(f *factory.Factory, l *storage.Ledger) (dirty, error) {
		if err := f.RequireOwner(playerID); err != nil {
			return 0, err
		}
		if err := f.Fire(employeeID); err != nil {
			return 0, err
		}
		return dirtyFactory, nil
	})
}

// SetSuspended applies or lifts an overdue-billing suspension.
// It reports whether the flag changed.
func (r *Registry) SetSuspended(ctx context.Context, id string, suspended bool) (bool, error) {
	changed := false
	err := r.mutate(ctx, id, func(f *factory.Factory, l *storage.Ledger) (dirty, error) {
		if f.IsSuspended() == suspended {
			return 0, nil
		}
		if suspended {
			f.Suspend()
		} else {
			f.Resume()
		}
		changed = true
		return dirtyFactory, nil
	})
	return changed, err
}

// Queries

// Get returns a copy of the factory
func (r *Registry) Get(id string) (*factory.Factory, error) {
	f, _, err := r.view(id)
	if err != nil {
		return nil, err
	}
	return f.Clone(), nil
}

// Exists reports whether id is registered
func (r *Registry) Exists(id string) bool {
	_, _, err := r.view(id)
	return err == nil
}

// All returns copies of every factory, sorted by id
func (r *Registry) All() []*factory.Factory {
	return r.filter(func(f *factory.Factory) bool { return true })
}

// ByOwner returns copies of the factories owned by playerID, sorted by id
func (r *Registry) ByOwner(playerID shared.PlayerID) []*factory.Factory {
	return r.filter(func(f *factory.Factory) bool { return f.IsOwnedBy(playerID) })
}

// Owned returns copies of every owned factory, sorted by id
func (r *Registry) Owned() []*factory.Factory {
	return r.filter(func(f *factory.Factory) bool { return f.IsOwned() })
}

func (r *Registry) filter(keep func(f *factory.Factory) bool) []*factory.Factory {
	r.mu.RLock()
	out := make([]*factory.Factory, 0, len(r.factories))
	for _, f := range r.factories {
		if keep(f) {
			out = append(out, f.Clone())
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Status derives the presentation status of a factory
func (r *Registry) Status(id string) (factory.Status, error) {
	f, _, err := r.view(id)
	if err != nil {
		return "", err
	}
	return f.Status(r.clock.Now(), r.noPartsUntil(id)), nil
}

func (r *Registry) ownedCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, f := range r.factories {
		if f.IsOwned() {
			n++
		}
	}
	return n
}

func (r *Registry) markNoParts(id string) {
	r.mu.Lock()
	r.noParts[id] = r.clock.Now().Add(r.settings.NoPartsWindow)
	r.mu.Unlock()
}

func (r *Registry) clearNoParts(id string) {
	r.mu.Lock()
	delete(r.noParts, id)
	r.mu.Unlock()
}

func (r *Registry) noPartsUntil(id string) time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.noParts[id]
}

// isNotFound reports whether err is a shared.NotFoundError
func isNotFound(err error) bool {
	var nf *shared.NotFoundError
	return errors.As(err, &nf)
}
