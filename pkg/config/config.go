// Package config provides configuration management for omopstat.
//
// This package has no I/O dependencies (no file operations, no
// network calls). Validation functions may write user-facing warnings
// via gn.Warn().
//
// # Configuration Sources
//
// Precedence (highest to lowest): CLI flags > env vars > config.yaml > defaults
//
// # Design Principles
//
// - Default config (from New()) is always valid - no validation needed
// - All mutations go through Option functions - the only way to modify Config
// - Invalid options are rejected with gn.Warn() - config remains in valid state
// - ToOptions() converts persistent fields (those in config.yaml)
// - Environment variables match ToOptions() fields exactly
//
// # Environment Variables
//
// Use OMOPSTAT_ prefix with underscores for nesting:
//
//	OMOPSTAT_DATABASE_DRIVER=sqlite
//	OMOPSTAT_DATABASE_PATH=/data/omop.sqlite
//	OMOPSTAT_LOG_LEVEL=info
//	OMOPSTAT_JOBS_NUMBER=8
package config

import (
	"runtime"
)

// Config represents the complete omopstat configuration.
type Config struct {
	// Database contains connection settings for the OMOP database.
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`

	// Stats contains thresholds for the statistics engine.
	Stats StatsConfig `mapstructure:"stats" yaml:"stats"`

	// Search contains defaults for fuzzy concept search.
	Search SearchConfig `mapstructure:"search" yaml:"search"`

	Log LogConfig `mapstructure:"log" yaml:"log"`

	// JobsNumber is the number of concurrent workers used for
	// per-concept computation inside a batch.
	// Default value is set according to the number of available threads.
	JobsNumber int `mapstructure:"jobs_number" yaml:"jobs_number"`

	// HomeDir determines where config, cache and logs directories reside.
	// It must be set by CLI during init, there is no default value for it.
	HomeDir string
}

// DatabaseConfig contains OMOP database connection parameters.
// Driver selects the backend; postgres uses host/port/user/password,
// sqlite and duckdb use Path.
type DatabaseConfig struct {
	// Driver is one of "postgres", "sqlite", "duckdb".
	Driver string `mapstructure:"driver" yaml:"driver"`

	// Host is the PostgreSQL server hostname or IP address.
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the PostgreSQL server port number.
	Port int `mapstructure:"port" yaml:"port"`

	// User is the PostgreSQL database username.
	User string `mapstructure:"user" yaml:"user"`

	// Password is the PostgreSQL database password.
	Password string `mapstructure:"password" yaml:"password"`

	// Database is the PostgreSQL database name to connect to.
	Database string `mapstructure:"database" yaml:"database"`

	// SSLMode specifies the SSL connection mode.
	// Valid values: "disable", "require", "verify-ca", "verify-full"
	SSLMode string `mapstructure:"ssl_mode" yaml:"ssl_mode"`

	// Path is the database file for sqlite and duckdb backends.
	Path string `mapstructure:"path" yaml:"path"`
}

// StatsConfig contains thresholds for the statistics engine.
type StatsConfig struct {
	// MinRows is the minimum row count for a concept to qualify for
	// summary computation.
	MinRows int `mapstructure:"min_rows" yaml:"min_rows"`

	// MaxCategoricalValues is the distinct-value ceiling at or below
	// which a concept's values are treated as categorical.
	MaxCategoricalValues int `mapstructure:"max_categorical_values" yaml:"max_categorical_values"`

	// MinCategoricalCount drops frequency-table entries seen fewer
	// times than this.
	MinCategoricalCount int `mapstructure:"min_categorical_count" yaml:"min_categorical_count"`

	// MaxStoredCategories caps how many frequency-table entries are
	// kept per concept, most frequent first.
	MaxStoredCategories int `mapstructure:"max_stored_categories" yaml:"max_stored_categories"`

	// WithPercentiles enables p5/p25/p75/p95 computation.
	// Uses pointer to distinguish between unset (nil) and false.
	WithPercentiles *bool `mapstructure:"with_percentiles" yaml:"with_percentiles"`

	// BatchSize is the number of concepts processed per batch.
	BatchSize int `mapstructure:"batch_size" yaml:"batch_size"`

	// Tables limits the run to the named logical domains.
	// Empty slice means all configured tables.
	// Runtime-only field - not in ToOptions().
	Tables []string `mapstructure:"tables" yaml:"tables"`

	// OutputFile is the CSV sink for incremental batch output.
	// Empty means results are only accumulated in memory.
	// Runtime-only field - not in ToOptions().
	OutputFile string `mapstructure:"output_file" yaml:"output_file"`
}

// SearchConfig contains defaults for fuzzy concept search.
type SearchConfig struct {
	// MaxDistance is the in-memory matcher's score cutoff.
	MaxDistance float64 `mapstructure:"max_distance" yaml:"max_distance"`

	// MinScore is the columnar matcher's Jaro-Winkler cutoff.
	MinScore float64 `mapstructure:"min_score" yaml:"min_score"`

	// Limit caps the number of rows the columnar matcher returns.
	Limit int `mapstructure:"limit" yaml:"limit"`
}

// LogConfig provides typical settings for application logs.
type LogConfig struct {
	// Format can be 'json' or 'text'.
	Format string `mapstructure:"format"      yaml:"format"`
	// Level of logging -- 'error', 'warn', 'info', 'debug'
	Level string `mapstructure:"level"       yaml:"level"`
	// Destination can be a log file (to default place), STDERR or STDOUT
	Destination string `mapstructure:"destination" yaml:"destination"`
}

// New creates a Config with sensible default values.
// The returned config is always valid and ready to use.
// Default values can be overridden using Option functions via Update().
func New() *Config {
	withPercentiles := true
	res := &Config{
		Database: DatabaseConfig{
			Driver:   "postgres",
			Host:     "localhost",
			Port:     5432,
			User:     "postgres",
			Password: "postgres",
			Database: "omop",
			SSLMode:  "disable",
		},
		Stats: StatsConfig{
			MinRows:              10,
			MaxCategoricalValues: 50,
			MinCategoricalCount:  10,
			MaxStoredCategories:  10,
			WithPercentiles:      &withPercentiles,
			BatchSize:            100,
		},
		Search: SearchConfig{
			MaxDistance: 3,
			MinScore:    0.75,
			Limit:       100,
		},
		Log: LogConfig{
			Format: "json",
			Level:  "info",
			// for now file is rewritten every time the log starts
			Destination: "file",
		},
		JobsNumber: runtime.NumCPU(), // Default to number of CPU threads
	}

	return res
}
