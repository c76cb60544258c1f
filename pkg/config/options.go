package config

import (
	"strings"
)

// Option is a function that modifies a Config.
// Options validate inputs and reject invalid values with warnings.
type Option func(*Config)

// OptDatabaseDriver sets the database backend.
// Valid values: "postgres", "sqlite", "duckdb".
func OptDatabaseDriver(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Database.Driver", s) {
			c.Database.Driver = s
		}
	}
}

// OptDatabaseHost sets the PostgreSQL server hostname or IP address.
func OptDatabaseHost(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database Host", s) {
			c.Database.Host = s
		}
	}
}

// OptDatabasePort sets the PostgreSQL server port number.
func OptDatabasePort(i int) Option {
	return func(c *Config) {
		if isValidInt("Database Port", i) {
			c.Database.Port = i
		}
	}
}

// OptDatabaseUser sets the PostgreSQL database username.
func OptDatabaseUser(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database User", s) {
			c.Database.User = s
		}
	}
}

// OptDatabasePassword sets the PostgreSQL database password.
func OptDatabasePassword(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database Password", s) {
			c.Database.Password = s
		}
	}
}

// OptDatabaseDatabase sets the PostgreSQL database name to connect to.
func OptDatabaseDatabase(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database Name", s) {
			c.Database.Database = s
		}
	}
}

// OptDatabaseSSLMode sets the SSL connection mode.
// Valid values: "disable", "require", "verify-ca", "verify-full".
func OptDatabaseSSLMode(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Database.SSLMode", s) {
			c.Database.SSLMode = s
		}
	}
}

// OptDatabasePath sets the database file for sqlite/duckdb backends.
func OptDatabasePath(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database Path", s) {
			c.Database.Path = s
		}
	}
}

// OptStatsMinRows sets the minimum row count for a concept to qualify
// for summary computation.
func OptStatsMinRows(i int) Option {
	return func(c *Config) {
		if isValidInt("Stats MinRows", i) {
			c.Stats.MinRows = i
		}
	}
}

// OptStatsMaxCategoricalValues sets the distinct-value ceiling for
// categorical classification.
func OptStatsMaxCategoricalValues(i int) Option {
	return func(c *Config) {
		if isValidInt("Stats MaxCategoricalValues", i) {
			c.Stats.MaxCategoricalValues = i
		}
	}
}

// OptStatsMinCategoricalCount sets the minimum occurrences for a
// frequency-table entry to be kept.
func OptStatsMinCategoricalCount(i int) Option {
	return func(c *Config) {
		if isValidInt("Stats MinCategoricalCount", i) {
			c.Stats.MinCategoricalCount = i
		}
	}
}

// OptStatsMaxStoredCategories caps stored frequency-table entries.
func OptStatsMaxStoredCategories(i int) Option {
	return func(c *Config) {
		if isValidInt("Stats MaxStoredCategories", i) {
			c.Stats.MaxStoredCategories = i
		}
	}
}

// OptStatsWithPercentiles toggles percentile computation.
// Uses pointer to distinguish between unset (nil) and false.
func OptStatsWithPercentiles(b *bool) Option {
	return func(c *Config) {
		if b != nil {
			c.Stats.WithPercentiles = b
		}
	}
}

// OptStatsBatchSize sets the number of concepts processed per batch.
func OptStatsBatchSize(i int) Option {
	return func(c *Config) {
		if isValidInt("Stats BatchSize", i) {
			c.Stats.BatchSize = i
		}
	}
}

// OptStatsTables limits a run to the named logical domains.
// Empty slice means all configured tables.
// Runtime-only field - not in ToOptions().
func OptStatsTables(ss []string) Option {
	return func(c *Config) {
		if len(ss) > 0 {
			c.Stats.Tables = ss
		}
	}
}

// OptStatsOutputFile sets the CSV sink for incremental batch output.
// Runtime-only field - not in ToOptions().
func OptStatsOutputFile(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Stats OutputFile", s) {
			c.Stats.OutputFile = s
		}
	}
}

// OptSearchMaxDistance sets the in-memory matcher's score cutoff.
func OptSearchMaxDistance(f float64) Option {
	return func(c *Config) {
		if f >= 0 {
			c.Search.MaxDistance = f
		}
	}
}

// OptSearchMinScore sets the columnar matcher's similarity cutoff.
func OptSearchMinScore(f float64) Option {
	return func(c *Config) {
		if f >= 0 && f <= 1 {
			c.Search.MinScore = f
		}
	}
}

// OptSearchLimit caps the number of rows the columnar matcher returns.
func OptSearchLimit(i int) Option {
	return func(c *Config) {
		if isValidInt("Search Limit", i) {
			c.Search.Limit = i
		}
	}
}

// OptLogLevel sets the logging level.
// Valid values: "debug", "info", "warn", "error".
func OptLogLevel(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Level", s) {
			c.Log.Level = s
		}
	}
}

// OptLogFormat sets the log output format.
// Valid values: "json", "text".
func OptLogFormat(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Format", s) {
			c.Log.Format = s
		}
	}
}

// OptLogDestination sets where logs are written.
// Valid values: "file", "stderr", "stdout".
func OptLogDestination(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Destination", s) {
			c.Log.Destination = s
		}
	}
}

// OptJobsNumber sets the number of concurrent workers for per-concept
// computation inside a batch. Default is runtime.NumCPU().
func OptJobsNumber(i int) Option {
	return func(c *Config) {
		if isValidInt("Jobs Number", i) {
			c.JobsNumber = i
		}
	}
}

// OptHomeDir sets the home directory for config, cache, and log locations.
// Set once at startup from os.UserHomeDir().
// Runtime-only field - not in ToOptions().
func OptHomeDir(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Home Directory", s) {
			c.HomeDir = s
		}
	}
}
