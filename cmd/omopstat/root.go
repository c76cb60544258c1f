package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/clindict/omopstat/internal/iofs"
	"github.com/clindict/omopstat/internal/iologger"
	"github.com/clindict/omopstat/pkg/config"
	"github.com/clindict/omopstat/pkg/omopstat"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	homeDir string
	cfg     *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Version: fmt.Sprintf("version: %s\nbuild:   %s",
		omopstat.Version, omopstat.Build),
	Use:   "omopstat",
	Short: "Compute and compare OMOP concept statistics",
	Long: `omopstat computes per-concept statistical summaries from OMOP CDM
clinical event tables, compares the distributions of two concepts to
recommend alignments, and provides fuzzy search over concept labels.

The tool provides three operations:
  - stats:   scan event tables and compute summaries in batches
  - compare: score the similarity of two concept summaries
  - search:  fuzzy-search a concept label column

Configuration precedence (highest to lowest):
  1. CLI flags
  2. Environment variables (OMOPSTAT_*)
  3. Config file (~/.config/omopstat/config.yaml)
  4. Built-in defaults`,
	PersistentPreRunE: bootstrap,
	SilenceErrors:     true,
	SilenceUsage:      true,
}

func bootstrap(cmd *cobra.Command, args []string) error {
	var err error
	homeDir, err = os.UserHomeDir()
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if err = iofs.EnsureDirs(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	// Initialize logging with hardcoded defaults
	// Will be reconfigured later with user's config settings
	defaultLog := config.LogConfig{
		Format:      "json",
		Level:       "info",
		Destination: "file",
	}
	if err = iologger.Init(config.LogDir(homeDir), defaultLog, false); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if err = iofs.EnsureConfigFile(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	var cfgViper *config.Config
	if cfgViper, err = initConfig(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	cfg = config.New()
	cfg.Update(cfgViper.ToOptions())
	cfg.Update([]config.Option{config.OptHomeDir(homeDir)})

	// Reconfigure logging with user's settings and proper log file
	// location.
	if err = iologger.Init(config.LogDir(homeDir), cfg.Log, true); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	slog.Info("Configuration loaded",
		"config_file", config.ConfigFilePath(homeDir))

	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Remove the automatic "omopstat version" prefix
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.Flags().BoolP("version", "V", false, "version for omopstat")

	rootCmd.AddCommand(getStatsCmd())
	rootCmd.AddCommand(getCompareCmd())
	rootCmd.AddCommand(getSearchCmd())
}

func initConfig(home string) (*config.Config, error) {
	var err error
	cfgPath := config.ConfigFilePath(home)
	v := viper.New()
	v.SetConfigFile(cfgPath)

	initEnvVars(v)

	if err = v.ReadInConfig(); err != nil {
		return nil, iofs.ReadFileError(cfgPath, err)
	}

	var res config.Config
	if err = v.Unmarshal(&res); err != nil {
		return nil, iofs.ReadFileError(cfgPath, err)
	}

	return &res, nil
}

func initEnvVars(v *viper.Viper) {
	// Set environment variables we want.
	// We set them manually so we can see clearly which env variables are allowed.
	// These match the fields included in config.ToOptions() - i.e., persistent
	// configuration that can be stored in config.yaml.
	v.SetEnvPrefix("OMOPSTAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Database configuration
	v.BindEnv("database.driver", "DATABASE_DRIVER")
	v.BindEnv("database.host", "DATABASE_HOST")
	v.BindEnv("database.port", "DATABASE_PORT")
	v.BindEnv("database.user", "DATABASE_USER")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("database.database", "DATABASE_DATABASE")
	v.BindEnv("database.ssl_mode", "DATABASE_SSL_MODE")
	v.BindEnv("database.path", "DATABASE_PATH")

	// Stats configuration
	v.BindEnv("stats.min_rows", "STATS_MIN_ROWS")
	v.BindEnv("stats.max_categorical_values", "STATS_MAX_CATEGORICAL_VALUES")
	v.BindEnv("stats.min_categorical_count", "STATS_MIN_CATEGORICAL_COUNT")
	v.BindEnv("stats.max_stored_categories", "STATS_MAX_STORED_CATEGORIES")
	v.BindEnv("stats.with_percentiles", "STATS_WITH_PERCENTILES")
	v.BindEnv("stats.batch_size", "STATS_BATCH_SIZE")

	// Search configuration
	v.BindEnv("search.max_distance", "SEARCH_MAX_DISTANCE")
	v.BindEnv("search.min_score", "SEARCH_MIN_SCORE")
	v.BindEnv("search.limit", "SEARCH_LIMIT")

	// Log configuration
	v.BindEnv("log.level", "LOG_LEVEL")
	v.BindEnv("log.format", "LOG_FORMAT")
	v.BindEnv("log.destination", "LOG_DESTINATION")

	// General configuration
	v.BindEnv("jobs_number", "JOBS_NUMBER")

	v.AutomaticEnv()
}
