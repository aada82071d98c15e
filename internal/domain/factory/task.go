package factory

import (
	"time"

	"github.com/factorycraft/factory-economy/internal/domain/catalog"
)

// ProductionTask is an in-flight run of a recipe.
// Duration and outputs are snapshotted at start, so later catalog reloads
// never change a task that is already running.
type ProductionTask struct {
	recipeID        string
	startedAt       int64 // unix seconds
	durationSeconds int
	outputs         map[string]int
}

// NewProductionTask snapshots a recipe into a task starting at now.
// durationSeconds is the effective duration after bonuses; it is floored at 1.
func NewProductionTask(recipe catalog.Recipe, now time.Time, durationSeconds int) *ProductionTask {
	if durationSeconds < 1 {
		durationSeconds = 1
	}
	return &ProductionTask{
		recipeID:        recipe.ID,
		startedAt:       now.Unix(),
		durationSeconds: durationSeconds,
		outputs:         copyCounts(recipe.Outputs),
	}
}

// ReconstructProductionTask rebuilds a task from persistence
func ReconstructProductionTask(recipeID string, startedAt int64, durationSeconds int, outputs map[string]int) *ProductionTask {
	return &ProductionTask{
		recipeID:        recipeID,
		startedAt:       startedAt,
		durationSeconds: durationSeconds,
		outputs:         copyCounts(outputs),
	}
}

func (t *ProductionTask) RecipeID() string        { return t.recipeID }
func (t *ProductionTask) StartedAt() int64        { return t.startedAt }
func (t *ProductionTask) DurationSeconds() int    { return t.durationSeconds }
func (t *ProductionTask) Outputs() map[string]int { return copyCounts(t.outputs) }

// Elapsed returns whole seconds since start; never negative
func (t *ProductionTask) Elapsed(now time.Time) int64 {
	elapsed := now.Unix() - t.startedAt
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// Remaining returns whole seconds until completion; exactly 0 once complete
func (t *ProductionTask) Remaining(now time.Time) int64 {
	remaining := int64(t.durationSeconds) - t.Elapsed(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Progress returns elapsed/duration clamped to [0, 1]; exactly 1.0 at completion
func (t *ProductionTask) Progress(now time.Time) float64 {
	if t.IsComplete(now) {
		return 1.0
	}
	return float64(t.Elapsed(now)) / float64(t.durationSeconds)
}

// IsComplete reports whether elapsed >= duration
func (t *ProductionTask) IsComplete(now time.Time) bool {
	return t.Elapsed(now) >= int64(t.durationSeconds)
}

func (t *ProductionTask) clone() *ProductionTask {
	if t == nil {
		return nil
	}
	return ReconstructProductionTask(t.recipeID, t.startedAt, t.durationSeconds, t.outputs)
}

func copyCounts(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
