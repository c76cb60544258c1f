package main

import (
	"context"
	"time"

	"github.com/clindict/omopstat/internal/iodb"
	"github.com/clindict/omopstat/internal/iostats"
	"github.com/clindict/omopstat/pkg/config"
	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"
	"github.com/spf13/cobra"
)

// getStatsCmd returns the stats command.
func getStatsCmd() *cobra.Command {
	var (
		tables        []string
		output        string
		minRows       int
		batchSize     int
		jobs          int
		noPercentiles bool
	)

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Compute per-concept statistical summaries",
		Long: `Compute statistical summaries for every qualifying concept in the
configured OMOP event tables.

For each concept with enough rows the tool computes row and patient
counts, date range, and either numeric descriptive statistics
(min/max/mean/median/sd/cv and percentiles) or a categorical
frequency table, depending on the concept's values.

Tables absent from the database are skipped. A failure for one
concept is logged and skipped; the run continues. With --output,
results are appended to a CSV file batch by batch, so a long run can
be inspected mid-flight.

Examples:
  # All configured tables, results to CSV
  omopstat stats --output summaries.csv

  # Only measurements and observations, lower row threshold
  omopstat stats --tables measurement,observation --min-rows 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Update(statsOptions(
				tables, output, minRows, batchSize, jobs, noPercentiles))

			return runStats(cmd.Context())
		},
	}

	statsCmd.Flags().StringSliceVarP(&tables, "tables", "t", nil,
		"logical domains to process (default all)")
	statsCmd.Flags().StringVarP(&output, "output", "o", "",
		"CSV file for incremental batch output")
	statsCmd.Flags().IntVar(&minRows, "min-rows", 0,
		"minimum rows for a concept to qualify")
	statsCmd.Flags().IntVar(&batchSize, "batch-size", 0,
		"concepts per processing batch")
	statsCmd.Flags().IntVarP(&jobs, "jobs", "j", 0,
		"concurrent workers per batch")
	statsCmd.Flags().BoolVar(&noPercentiles, "no-percentiles", false,
		"skip p5/p25/p75/p95 computation")

	return statsCmd
}

// statsOptions converts the stats flags to config options. Unset flags
// produce no option, so defaults stay untouched and no validation
// warnings fire for flags the user never gave.
func statsOptions(
	tables []string,
	output string,
	minRows, batchSize, jobs int,
	noPercentiles bool,
) []config.Option {
	var opts []config.Option
	if len(tables) > 0 {
		opts = append(opts, config.OptStatsTables(tables))
	}
	if output != "" {
		opts = append(opts, config.OptStatsOutputFile(output))
	}
	if minRows > 0 {
		opts = append(opts, config.OptStatsMinRows(minRows))
	}
	if batchSize > 0 {
		opts = append(opts, config.OptStatsBatchSize(batchSize))
	}
	if jobs > 0 {
		opts = append(opts, config.OptJobsNumber(jobs))
	}
	if noPercentiles {
		withPercentiles := false
		opts = append(opts,
			config.OptStatsWithPercentiles(&withPercentiles))
	}
	return opts
}

func runStats(ctx context.Context) error {
	startTime := time.Now()

	op := iodb.New()
	if err := op.Connect(ctx, &cfg.Database); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	defer op.Close()

	printConnected()

	engine := iostats.New(cfg, op, iostats.NewBarProgress())

	gn.Info("Computing concept statistics, " +
		"<em>it might take a while</em>...")
	records, err := engine.ComputeAll(ctx)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	gn.Info("Computed <em>%s</em> concept summaries in %s",
		humanize.Comma(int64(len(records))),
		gnfmt.TimeString(time.Since(startTime).Seconds()),
	)
	if cfg.Stats.OutputFile != "" {
		gn.Info("Results appended to <em>%s</em>", cfg.Stats.OutputFile)
	}
	return nil
}

func printConnected() {
	switch cfg.Database.Driver {
	case "postgres":
		gn.Info("Connected to database: <em>%s@%s:%d/%s</em>",
			cfg.Database.User, cfg.Database.Host,
			cfg.Database.Port, cfg.Database.Database)
	default:
		gn.Info("Connected to %s database: <em>%s</em>",
			cfg.Database.Driver, cfg.Database.Path)
	}
}
