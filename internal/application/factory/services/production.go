package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/factorycraft/factory-economy/internal/adapters/metrics"
	"github.com/factorycraft/factory-economy/internal/domain/catalog"
	"github.com/factorycraft/factory-economy/internal/domain/factory"
	"github.com/factorycraft/factory-economy/internal/domain/shared"
	"github.com/factorycraft/factory-economy/internal/domain/storage"
)

// ProductionEngine runs recipes on factories.
//
// Per factory: IDLE -> RUNNING -> COMPLETE -> IDLE. Starting consumes the
// inputs and creates the task in one persisted step; a tick on a complete
// task deposits the outputs and clears the task in one persisted step, so
// every task is harvested exactly once.
type ProductionEngine struct {
	registry  *Registry
	recipes   *catalog.RecipeCatalog
	resources *catalog.ResourceCatalog
	commands  factory.CommandRunner

	blockedMu sync.Mutex
	blocked   map[string]bool // factories whose finished output is waiting for room
}

// NewProductionEngine creates an engine. commands may be nil, in which case
// recipe side-effect commands are skipped.
func NewProductionEngine(registry *Registry, recipes *catalog.RecipeCatalog, resources *catalog.ResourceCatalog, commands factory.CommandRunner) *ProductionEngine {
	return &ProductionEngine{
		registry:  registry,
		recipes:   recipes,
		resources: resources,
		commands:  commands,
		blocked:   make(map[string]bool),
	}
}

// Start begins producing recipeID on a factory owned by playerID
func (e *ProductionEngine) Start(ctx context.Context, playerID shared.PlayerID, factoryID, recipeID string) (*factory.ProductionTask, error) {
	r := e.registry
	now := r.clock.Now()
	var started *factory.ProductionTask
	var factoryType shared.FactoryType

	err := r.mutate(ctx, factoryID, func(f *factory.Factory, l *storage.Ledger) (dirty, error) {
		factoryType = f.Type()
		if err := f.RequireOwner(playerID); err != nil {
			return 0, err
		}
		if err := f.CanStartProduction(now); err != nil {
			return 0, err
		}

		recipe, err := e.recipes.Get(recipeID)
		if err != nil {
			return 0, err
		}
		if recipe.FactoryType != f.Type() {
			return 0, &factory.ErrInvalidRecipe{
				RecipeID:    recipe.ID,
				FactoryType: f.Type(),
				Reason:      fmt.Sprintf("recipe belongs to %s factories", recipe.FactoryType),
			}
		}
		if err := recipe.ValidateResources(e.resources); err != nil {
			return 0, &factory.ErrInvalidRecipe{RecipeID: recipe.ID, FactoryType: f.Type(), Reason: err.Error()}
		}

		if missing := l.Shortfalls(storage.CompartmentInput, recipe.Inputs); len(missing) > 0 {
			r.markNoParts(factoryID)
			return 0, &factory.ErrInsufficientMaterials{FactoryID: factoryID, RecipeID: recipe.ID, Missing: missing}
		}
		l.RemoveAll(storage.CompartmentInput, recipe.Inputs)

		duration := r.settings.Workforce.Apply(recipe.DurationSeconds, f.EmployeeCount())
		task := factory.NewProductionTask(recipe, now, duration)
		if err := f.StartTask(task, now); err != nil {
			return 0, err
		}
		started = task
		return dirtyFactory | dirtyLedger, nil
	})
	if err != nil {
		if factoryType != "" {
			metrics.RecordProductionRejected(string(factoryType), rejectionReason(err))
		}
		return nil, err
	}

	r.clearNoParts(factoryID)
	metrics.RecordProductionStarted(string(factoryType))
	r.logger.Info("production started",
		"factory_id", factoryID,
		"recipe_id", recipeID,
		"player_id", playerID.String(),
		"duration_seconds", started.DurationSeconds())
	return started, nil
}

func rejectionReason(err error) string {
	var (
		materials *factory.ErrInsufficientMaterials
		invalid   *factory.ErrInvalidRecipe
		active    *factory.ErrProductionActive
		upgrading *factory.ErrAlreadyUpgrading
		suspended *factory.ErrFactorySuspended
		notOwner  *factory.ErrNotOwner
	)
	switch {
	case errors.As(err, &materials):
		return "insufficient_materials"
	case errors.As(err, &invalid):
		return "invalid_recipe"
	case errors.As(err, &active):
		return "production_active"
	case errors.As(err, &upgrading):
		return "upgrading"
	case errors.As(err, &suspended):
		return "suspended"
	case errors.As(err, &notOwner):
		return "not_owner"
	case isNotFound(err):
		return "not_found"
	default:
		return "error"
	}
}

// TickResult reports what a tick did to one factory
type TickResult struct {
	FactoryID string
	// RecipeID and Harvested are set when a completed task was deposited
	RecipeID  string
	Harvested map[string]int
	// Blocked is set when a completed task's outputs did not fit in storage;
	// NewlyBlocked only on the first such tick
	Blocked      bool
	NewlyBlocked bool
	Upgraded     bool
	Level        int
}

// Tick advances one factory: a finished upgrade raises the level and a
// complete task is harvested into the output compartment. Without a task
// or with an incomplete one it does nothing. If the outputs do not fit, the
// task stays complete and is retried on the next tick.
func (e *ProductionEngine) Tick(ctx context.Context, factoryID string) (TickResult, error) {
	r := e.registry
	now := r.clock.Now()
	result := TickResult{FactoryID: factoryID}
	var owner *shared.PlayerID
	var factoryType shared.FactoryType

	err := r.mutate(ctx, factoryID, func(f *factory.Factory, l *storage.Ledger) (dirty, error) {
		var d dirty
		owner = f.Owner()
		factoryType = f.Type()

		if f.CompleteUpgradeIfDue(now) {
			result.Upgraded = true
			d |= dirtyFactory
		}
		result.Level = f.Level()

		task := f.Task()
		if task == nil || !task.IsComplete(now) {
			return d, nil
		}

		outputs := task.Outputs()
		if err := l.AddAll(storage.CompartmentOutput, outputs, r.settings.Capacity(f.Level())); err != nil {
			var full *storage.StorageFullError
			if errors.As(err, &full) {
				result.Blocked = true
				return d, nil
			}
			return 0, err
		}
		f.ClearTask()
		result.RecipeID = task.RecipeID()
		result.Harvested = outputs
		return d | dirtyFactory | dirtyLedger, nil
	})
	if err != nil {
		e.setBlocked(factoryID, false)
		return TickResult{FactoryID: factoryID}, err
	}
	result.NewlyBlocked = e.setBlocked(factoryID, result.Blocked)

	if result.Upgraded {
		r.logger.Info("factory upgrade completed", "factory_id", factoryID, "level", result.Level)
	}
	if result.NewlyBlocked {
		metrics.RecordStorageFull(string(storage.CompartmentOutput))
		r.logger.Warn("production output blocked by full storage", "factory_id", factoryID)
	}
	if result.Harvested != nil {
		metrics.RecordProductionCompleted(string(factoryType), result.RecipeID)
		r.logger.Info("production completed", "factory_id", factoryID, "recipe_id", result.RecipeID, "outputs", result.Harvested)
		e.runSideEffects(ctx, factoryID, result.RecipeID, owner)
	}
	return result, nil
}

// setBlocked records whether a factory's output is blocked and reports
// whether it just became so.
func (e *ProductionEngine) setBlocked(factoryID string, blocked bool) bool {
	e.blockedMu.Lock()
	defer e.blockedMu.Unlock()
	if !blocked {
		delete(e.blocked, factoryID)
		return false
	}
	if e.blocked[factoryID] {
		return false
	}
	e.blocked[factoryID] = true
	return true
}

// runSideEffects dispatches the recipe's commands with {factory}, {recipe}
// and {player} substituted. Failures are logged; the harvest stands.
func (e *ProductionEngine) runSideEffects(ctx context.Context, factoryID, recipeID string, owner *shared.PlayerID) {
	if e.commands == nil {
		return
	}
	recipe, err := e.recipes.Get(recipeID)
	if err != nil || len(recipe.Commands) == 0 {
		return
	}

	player := ""
	if owner != nil {
		player = owner.String()
	}
	replacer := strings.NewReplacer("{factory}", factoryID, "{recipe}", recipeID, "{player}", player)
	for _, cmd := range recipe.Commands {
		if err := e.commands.RunCommand(ctx, replacer.Replace(cmd)); err != nil {
			e.registry.logger.Warn("recipe command failed", "factory_id", factoryID, "recipe_id", recipeID, "command", cmd, "error", err)
		}
	}
}

// TickSummary aggregates a TickAll pass
type TickSummary struct {
	Ticked    int
	Harvested int
	Upgraded  int
	Blocked   int
	Failed    int
}

// TickAll ticks every factory with a task or a running upgrade. Order across
// factories is unspecified; a failing factory does not stop the pass.
func (e *ProductionEngine) TickAll(ctx context.Context) TickSummary {
	var summary TickSummary
	for _, id := range e.activeFactoryIDs() {
		if ctx.Err() != nil {
			break
		}
		result, err := e.Tick(ctx, id)
		summary.Ticked++
		if err != nil {
			summary.Failed++
			e.registry.logger.Error("tick failed", "factory_id", id, "error", err)
			continue
		}
		if result.Harvested != nil {
			summary.Harvested++
		}
		if result.Upgraded {
			summary.Upgraded++
		}
		if result.Blocked {
			summary.Blocked++
		}
	}
	return summary
}

func (e *ProductionEngine) activeFactoryIDs() []string {
	r := e.registry
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.factories))
	for id, f := range r.factories {
		if f.HasTask() || f.IsUpgrading() {
			ids = append(ids, id)
		}
	}
	return ids
}

// Cancel drops the running task without refunding consumed inputs
func (e *ProductionEngine) Cancel(ctx context.Context, playerID shared.PlayerID, factoryID string) error {
	err := e.registry.mutate(ctx, factoryID, func(f *factory.Factory, l *storage.Ledger) (dirty, error) {
		if err := f.RequireOwner(playerID); err != nil {
			return 0, err
		}
		if !f.HasTask() {
			return 0, &factory.ErrNotProducing{FactoryID: factoryID}
		}
		f.ClearTask()
		return dirtyFactory, nil
	})
	if err != nil {
		return err
	}
	e.registry.logger.Info("production cancelled", "factory_id", factoryID, "player_id", playerID.String())
	return nil
}

// ProgressView is the presentation contract for a factory's production
type ProgressView struct {
	FactoryID        string
	Level            int
	State            factory.ProductionState
	Status           factory.Status
	RecipeID         string
	Progress         float64
	ElapsedSeconds   int64
	RemainingSeconds int64
	DurationSeconds  int
	Upgrading        bool
	UpgradeRemaining int64
	Suspended        bool
}

// Progress reports the current production state of a factory
func (e *ProductionEngine) Progress(factoryID string) (ProgressView, error) {
	r := e.registry
	f, _, err := r.view(factoryID)
	if err != nil {
		return ProgressView{}, err
	}
	now := r.clock.Now()

	view := ProgressView{
		FactoryID: factoryID,
		Level:     f.Level(),
		State:     f.State(now),
		Status:    f.Status(now, r.noPartsUntil(factoryID)),
		Suspended: f.IsSuspended(),
	}
	if task := f.Task(); task != nil {
		view.RecipeID = task.RecipeID()
		view.Progress = task.Progress(now)
		view.ElapsedSeconds = task.Elapsed(now)
		view.RemainingSeconds = task.Remaining(now)
		view.DurationSeconds = task.DurationSeconds()
	}
	if up := f.Upgrade(); up != nil {
		view.Upgrading = true
		view.UpgradeRemaining = up.Remaining(now)
	}
	return view, nil
}

// AvailableRecipes lists the recipes a factory's type can run, in catalog order
func (e *ProductionEngine) AvailableRecipes(factoryID string) ([]catalog.Recipe, error) {
	f, _, err := e.registry.view(factoryID)
	if err != nil {
		return nil, err
	}
	return e.recipes.ByFactoryType(f.Type()), nil
}
