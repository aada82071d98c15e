package config

// LoggingConfig configures the slog logger shared by the daemon's services.
// factoryctl ignores it and logs warnings to stderr.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`

	// stdout, stderr or file; file appends to FilePath
	Output   string `mapstructure:"output" validate:"required,oneof=stdout stderr file"`
	FilePath string `mapstructure:"file_path" validate:"required_if=Output file"`

	// Adds source file:line to each record
	IncludeCaller bool `mapstructure:"include_caller"`
}

// MetricsConfig controls the Prometheus collectors and the HTTP endpoint
// that exposes them. When disabled no collector is registered and the
// recording helpers are no-ops.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port" validate:"omitempty,min=1024,max=65535"`
	Path    string `mapstructure:"path"`
}
