package config

import "time"

// DatabaseConfig selects the store behind the factory, ledger, billing and
// listing repositories. SQLite suits a single server; postgres lets several
// servers share one economy.
type DatabaseConfig struct {
	Type string `mapstructure:"type" validate:"required,oneof=postgres sqlite"`

	// DSN for postgres; when set the host/port/user fields are ignored.
	// DATABASE_URL in the environment overrides it.
	URL string `mapstructure:"url"`

	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode" validate:"omitempty,oneof=disable require verify-ca verify-full"`

	// SQLite file; empty means an in-memory database
	Path string `mapstructure:"path"`
	// How long a SQLite writer waits on a lock held by another process,
	// e.g. factoryctl --force next to a running daemon
	BusyTimeout time.Duration `mapstructure:"busy_timeout"`

	// off, slow or all. slow logs failed statements and statements over
	// SlowQueryThreshold; all also logs every statement at debug level.
	LogQueries         string        `mapstructure:"log_queries" validate:"omitempty,oneof=off slow all"`
	SlowQueryThreshold time.Duration `mapstructure:"slow_query_threshold"`

	Pool PoolConfig `mapstructure:"pool"`
}

// PoolConfig sizes the postgres connection pool. SQLite always uses one connection.
type PoolConfig struct {
	MaxOpen     int           `mapstructure:"max_open" validate:"min=1"`
	MaxIdle     int           `mapstructure:"max_idle" validate:"min=1"`
	MaxLifetime time.Duration `mapstructure:"max_lifetime"`
}
