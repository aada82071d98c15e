package world

import (
	"context"
	"log/slog"

	"github.com/factorycraft/factory-economy/internal/domain/factory"
	"github.com/factorycraft/factory-economy/internal/domain/shared"
)

// LogMover records teleports in the log. A game server integration replaces it.
type LogMover struct {
	logger *slog.Logger
}

func NewLogMover(logger *slog.Logger) *LogMover {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMover{logger: logger}
}

func (m *LogMover) Teleport(ctx context.Context, playerID shared.PlayerID, to factory.Location) error {
	m.logger.InfoContext(ctx, "teleport",
		"player_id", playerID.String(),
		"world", to.World,
		"x", to.X, "y", to.Y, "z", to.Z,
	)
	return nil
}

// LogCommandRunner writes recipe side-effect commands to the log
type LogCommandRunner struct {
	logger *slog.Logger
}

func NewLogCommandRunner(logger *slog.Logger) *LogCommandRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogCommandRunner{logger: logger}
}

func (r *LogCommandRunner) RunCommand(ctx context.Context, command string) error {
	r.logger.InfoContext(ctx, "console command", "command", command)
	return nil
}
