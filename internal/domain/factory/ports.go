package factory

import (
	"context"

	"github.com/factorycraft/factory-economy/internal/domain/shared"
)

// FactoryRepository persists factory records together with their employees
type FactoryRepository interface {
	Save(ctx context.Context, f *Factory) error
	Delete(ctx context.Context, id string) error
	FindAll(ctx context.Context) ([]*Factory, error)
}

// RegionHandle is the resolved spatial region a factory is bound to
type RegionHandle struct {
	Ref   string
	World string
}

// RegionResolver validates region references against the host's region plugin
type RegionResolver interface {
	// ResolveRegion returns ErrRegionNotFound when ref does not exist
	ResolveRegion(ctx context.Context, ref string) (*RegionHandle, error)
}

// WorldMover performs the actual player teleport on the host
type WorldMover interface {
	Teleport(ctx context.Context, playerID shared.PlayerID, to Location) error
}

// CommandRunner dispatches a recipe's side-effect command on the host console
type CommandRunner interface {
	RunCommand(ctx context.Context, command string) error
}
