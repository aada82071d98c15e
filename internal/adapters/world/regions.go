// Package world adapts the engine's host ports (region lookup, teleports,
// console commands) for a standalone daemon with no game server attached.
package world

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/factorycraft/factory-economy/internal/domain/factory"
)

// Region is one entry of the region table
type Region struct {
	World string     `yaml:"world"`
	Min   [3]float64 `yaml:"min"`
	Max   [3]float64 `yaml:"max"`
	Spawn *spawnDoc  `yaml:"spawn"`
}

type spawnDoc struct {
	X     float64 `yaml:"x"`
	Y     float64 `yaml:"y"`
	Z     float64 `yaml:"z"`
	Yaw   float32 `yaml:"yaw"`
	Pitch float32 `yaml:"pitch"`
}

type regionFile struct {
	Regions map[string]Region `yaml:"regions"`
}

// RegionTable resolves region references from a YAML file.
// Reload swaps the whole table; lookups never see a partial file.
type RegionTable struct {
	path string

	mu      sync.RWMutex
	regions map[string]Region
}

// LoadRegionTable reads path and returns a ready table
func LoadRegionTable(path string) (*RegionTable, error) {
	t := &RegionTable{path: path}
	if err := t.Reload(); err != nil {
		return nil, err
	}
	return t, nil
}

// Reload re-reads the file, keeping the current table on failure
func (t *RegionTable) Reload() error {
	data, err := os.ReadFile(t.path)
	if err != nil {
		return fmt.Errorf("failed to read regions file: %w", err)
	}
	var doc regionFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse regions file: %w", err)
	}
	for ref, r := range doc.Regions {
		if r.World == "" {
			return fmt.Errorf("region %s: world is required", ref)
		}
		for axis := 0; axis < 3; axis++ {
			if r.Min[axis] > r.Max[axis] {
				return fmt.Errorf("region %s: min exceeds max on axis %d", ref, axis)
			}
		}
	}
	if doc.Regions == nil {
		doc.Regions = map[string]Region{}
	}

	t.mu.Lock()
	t.regions = doc.Regions
	t.mu.Unlock()
	return nil
}

func (t *RegionTable) ResolveRegion(ctx context.Context, ref string) (*factory.RegionHandle, error) {
	t.mu.RLock()
	r, ok := t.regions[ref]
	t.mu.RUnlock()
	if !ok {
		return nil, &factory.ErrRegionNotFound{RegionRef: ref}
	}
	return &factory.RegionHandle{Ref: ref, World: r.World}, nil
}

// SpawnPoint returns the region's spawn, or the centre of its floor when none is set
func (t *RegionTable) SpawnPoint(ref string) (*factory.Location, error) {
	t.mu.RLock()
	r, ok := t.regions[ref]
	t.mu.RUnlock()
	if !ok {
		return nil, &factory.ErrRegionNotFound{RegionRef: ref}
	}
	if r.Spawn != nil {
		return &factory.Location{World: r.World, X: r.Spawn.X, Y: r.Spawn.Y, Z: r.Spawn.Z, Yaw: r.Spawn.Yaw, Pitch: r.Spawn.Pitch}, nil
	}
	return &factory.Location{
		World: r.World,
		X:     (r.Min[0] + r.Max[0]) / 2,
		Y:     r.Min[1],
		Z:     (r.Min[2] + r.Max[2]) / 2,
	}, nil
}

// Refs lists the known region references in order
func (t *RegionTable) Refs() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	refs := make([]string, 0, len(t.regions))
	for ref := range t.regions {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	return refs
}
