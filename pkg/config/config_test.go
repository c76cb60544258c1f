package config_test

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/clindict/omopstat/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirs(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that uses file system in short mode")
	}

	tempHome := t.TempDir()

	tests := []struct {
		msg string
		fn  func(string) string
		res string
	}{
		{
			msg: "config dir",
			fn:  config.ConfigDir,
			res: filepath.Join(tempHome, ".config", "omopstat"),
		},
		{
			msg: "cache dir",
			fn:  config.CacheDir,
			res: filepath.Join(tempHome, ".cache", "omopstat"),
		},
		{
			msg: "log dir",
			fn:  config.LogDir,
			res: filepath.Join(tempHome, ".local", "share", "omopstat", "logs"),
		},
	}

	for _, v := range tests {
		res := v.fn(tempHome)
		assert.Equal(t, v.res, res, v.msg)
	}
}

func TestNew(t *testing.T) {
	cfg := config.New()

	t.Run("creates valid default config", func(t *testing.T) {
		require.NotNil(t, cfg)

		// Database defaults
		assert.Equal(t, "postgres", cfg.Database.Driver)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "postgres", cfg.Database.User)
		assert.Equal(t, "omop", cfg.Database.Database)
		assert.Equal(t, "disable", cfg.Database.SSLMode)

		// Stats defaults
		assert.Equal(t, 10, cfg.Stats.MinRows)
		assert.Equal(t, 50, cfg.Stats.MaxCategoricalValues)
		assert.Equal(t, 10, cfg.Stats.MinCategoricalCount)
		assert.Equal(t, 10, cfg.Stats.MaxStoredCategories)
		require.NotNil(t, cfg.Stats.WithPercentiles)
		assert.True(t, *cfg.Stats.WithPercentiles)
		assert.Equal(t, 100, cfg.Stats.BatchSize)
		assert.Empty(t, cfg.Stats.Tables)

		// Search defaults
		assert.Equal(t, 3.0, cfg.Search.MaxDistance)
		assert.Equal(t, 0.75, cfg.Search.MinScore)
		assert.Equal(t, 100, cfg.Search.Limit)

		// Log defaults
		assert.Equal(t, "json", cfg.Log.Format)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, "file", cfg.Log.Destination)

		// JobsNumber defaults to CPU count
		assert.Equal(t, runtime.NumCPU(), cfg.JobsNumber)
	})
}

func TestOptionDatabaseDriver(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "sets sqlite",
			input:    "sqlite",
			expected: "sqlite",
		},
		{
			name:     "sets duckdb",
			input:    "duckdb",
			expected: "duckdb",
		},
		{
			name:     "normalizes to lowercase",
			input:    "SQLite",
			expected: "sqlite",
		},
		{
			name:     "ignores invalid value",
			input:    "oracle",
			expected: "postgres", // Should keep default
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			opt := config.OptDatabaseDriver(tt.input)
			cfg.Update([]config.Option{opt})
			assert.Equal(t, tt.expected, cfg.Database.Driver)
		})
	}
}

func TestOptionDatabaseHost(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "sets valid host",
			input:    "db.example.com",
			expected: "db.example.com",
		},
		{
			name:     "trims whitespace",
			input:    "  db.example.com  ",
			expected: "db.example.com",
		},
		{
			name:     "ignores empty string",
			input:    "",
			expected: "localhost", // Should keep default
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			opt := config.OptDatabaseHost(tt.input)
			cfg.Update([]config.Option{opt})
			assert.Equal(t, tt.expected, cfg.Database.Host)
		})
	}
}

func TestOptionStatsMinRows(t *testing.T) {
	tests := []struct {
		name     string
		input    int
		expected int
	}{
		{
			name:     "sets valid threshold",
			input:    25,
			expected: 25,
		},
		{
			name:     "ignores zero",
			input:    0,
			expected: 10, // Should keep default
		},
		{
			name:     "ignores negative",
			input:    -5,
			expected: 10, // Should keep default
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			opt := config.OptStatsMinRows(tt.input)
			cfg.Update([]config.Option{opt})
			assert.Equal(t, tt.expected, cfg.Stats.MinRows)
		})
	}
}

func TestOptionStatsWithPercentiles(t *testing.T) {
	f := false

	t.Run("sets false", func(t *testing.T) {
		cfg := config.New()
		cfg.Update([]config.Option{config.OptStatsWithPercentiles(&f)})
		require.NotNil(t, cfg.Stats.WithPercentiles)
		assert.False(t, *cfg.Stats.WithPercentiles)
	})

	t.Run("ignores nil", func(t *testing.T) {
		cfg := config.New()
		cfg.Update([]config.Option{config.OptStatsWithPercentiles(nil)})
		require.NotNil(t, cfg.Stats.WithPercentiles)
		assert.True(t, *cfg.Stats.WithPercentiles)
	})
}

func TestOptionSearchMinScore(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{
			name:     "sets valid score",
			input:    0.9,
			expected: 0.9,
		},
		{
			name:     "ignores out of range",
			input:    1.5,
			expected: 0.75, // Should keep default
		},
		{
			name:     "ignores negative",
			input:    -0.2,
			expected: 0.75, // Should keep default
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			opt := config.OptSearchMinScore(tt.input)
			cfg.Update([]config.Option{opt})
			assert.Equal(t, tt.expected, cfg.Search.MinScore)
		})
	}
}

func TestOptionLogLevel(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "sets valid log level",
			input:    "debug",
			expected: "debug",
		},
		{
			name:     "normalizes to lowercase",
			input:    "WARN",
			expected: "warn",
		},
		{
			name:     "ignores invalid value",
			input:    "verbose",
			expected: "info", // Should keep default
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			opt := config.OptLogLevel(tt.input)
			cfg.Update([]config.Option{opt})
			assert.Equal(t, tt.expected, cfg.Log.Level)
		})
	}
}

func TestToOptionsRoundTrip(t *testing.T) {
	f := false
	cfg := config.New()
	cfg.Update([]config.Option{
		config.OptDatabaseDriver("sqlite"),
		config.OptDatabasePath("/data/omop.sqlite"),
		config.OptStatsMinRows(20),
		config.OptStatsWithPercentiles(&f),
		config.OptSearchLimit(50),
		config.OptJobsNumber(4),
	})

	recreated := config.New()
	recreated.Update(cfg.ToOptions())

	assert.Equal(t, "sqlite", recreated.Database.Driver)
	assert.Equal(t, "/data/omop.sqlite", recreated.Database.Path)
	assert.Equal(t, 20, recreated.Stats.MinRows)
	require.NotNil(t, recreated.Stats.WithPercentiles)
	assert.False(t, *recreated.Stats.WithPercentiles)
	assert.Equal(t, 50, recreated.Search.Limit)
	assert.Equal(t, 4, recreated.JobsNumber)
}

func TestToOptionsExcludesRuntimeFields(t *testing.T) {
	cfg := config.New()
	cfg.Update([]config.Option{
		config.OptHomeDir("/home/someone"),
		config.OptStatsTables([]string{"measurement"}),
		config.OptStatsOutputFile("/tmp/out.csv"),
	})

	recreated := config.New()
	recreated.Update(cfg.ToOptions())

	assert.Empty(t, recreated.HomeDir)
	assert.Empty(t, recreated.Stats.Tables)
	assert.Empty(t, recreated.Stats.OutputFile)
}
