package config

import "time"

// DaemonConfig holds factoryd runtime configuration
type DaemonConfig struct {
	// PID file location
	PIDFile string `mapstructure:"pid_file"`

	// How often every factory is ticked
	TickInterval time.Duration `mapstructure:"tick_interval" validate:"required"`

	// How often the billing jobs (tax, salary, overdue check) are evaluated.
	// Each job still honours its own interval through the billing run records.
	BillingInterval time.Duration `mapstructure:"billing_interval" validate:"required"`

	// How often expired marketplace listings are swept
	CleanupInterval time.Duration `mapstructure:"cleanup_interval" validate:"required"`

	// Snapshot export destination; empty disables periodic snapshots
	SnapshotPath     string        `mapstructure:"snapshot_path"`
	SnapshotInterval time.Duration `mapstructure:"snapshot_interval"`

	// Graceful shutdown timeout
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required"`
}
