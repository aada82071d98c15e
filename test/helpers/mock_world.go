package helpers

import (
	"context"
	"sync"

	"github.com/factorycraft/factory-economy/internal/domain/factory"
	"github.com/factorycraft/factory-economy/internal/domain/shared"
)

// MockRegionResolver resolves only the regions added to it
type MockRegionResolver struct {
	mu      sync.RWMutex
	regions map[string]string // ref -> world
}

// NewMockRegionResolver creates a resolver knowing the given region refs in world "world"
func NewMockRegionResolver(refs ...string) *MockRegionResolver {
	m := &MockRegionResolver{regions: make(map[string]string)}
	for _, ref := range refs {
		m.regions[ref] = "world"
	}
	return m
}

// AddRegion registers a region
func (m *MockRegionResolver) AddRegion(ref, world string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.regions[ref] = world
}

func (m *MockRegionResolver) ResolveRegion(ctx context.Context, ref string) (*factory.RegionHandle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	world, ok := m.regions[ref]
	if !ok {
		return nil, &factory.ErrRegionNotFound{RegionRef: ref}
	}
	return &factory.RegionHandle{Ref: ref, World: world}, nil
}

// Teleport records one teleport
type Teleport struct {
	PlayerID shared.PlayerID
	To       factory.Location
}

// MockWorldMover records teleports instead of moving anyone
type MockWorldMover struct {
	mu        sync.Mutex
	teleports []Teleport
}

func NewMockWorldMover() *MockWorldMover {
	return &MockWorldMover{}
}

func (m *MockWorldMover) Teleport(ctx context.Context, playerID shared.PlayerID, to factory.Location) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.teleports = append(m.teleports, Teleport{PlayerID: playerID, To: to})
	return nil
}

// Teleports returns the recorded teleports
func (m *MockWorldMover) Teleports() []Teleport {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Teleport(nil), m.teleports...)
}

// MockCommandRunner records dispatched console commands
type MockCommandRunner struct {
	mu       sync.Mutex
	commands []string
}

func NewMockCommandRunner() *MockCommandRunner {
	return &MockCommandRunner{}
}

func (m *MockCommandRunner) RunCommand(ctx context.Context, command string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commands = append(m.commands, command)
	return nil
}

// Commands returns the recorded commands
func (m *MockCommandRunner) Commands() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.commands...)
}
