package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"

	"github.com/clindict/omopstat/internal/iodb"
	"github.com/clindict/omopstat/internal/iosearch"
	"github.com/clindict/omopstat/pkg/errcode"
	"github.com/clindict/omopstat/pkg/fuzzy"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
)

// getSearchCmd returns the search command.
func getSearchCmd() *cobra.Command {
	var (
		table     string
		column    string
		csvFile   string
		predicate string
		limit     int
	)

	searchCmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Fuzzy-search concept labels",
		Long: `Fuzzy-search a column of concept labels for a query.

Two modes are available:
  --table:    search a database table; on DuckDB the similarity is
              computed by the engine's Jaro-Winkler function, other
              backends are scored in memory
  --csv-file: search a column of a local CSV file in memory using
              normalized substring, token, and edit-distance scoring

Examples:
  omopstat search "hemoglobin" --table concept --column concept_name
  omopstat search "hemoglobin" --csv-file dictionary.csv --column name`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit > 0 {
				cfg.Search.Limit = limit
			}
			if csvFile != "" {
				return runSearchCSV(csvFile, column, args[0])
			}
			if table != "" {
				return runSearchTable(cmd.Context(), table, column,
					predicate, args[0])
			}
			err := searchInputError()
			gn.PrintErrorMessage(err)
			return err
		},
	}

	searchCmd.Flags().StringVar(&table, "table", "",
		"database table to search")
	searchCmd.Flags().StringVarP(&column, "column", "c", "concept_name",
		"column holding the labels")
	searchCmd.Flags().StringVar(&csvFile, "csv-file", "",
		"CSV file to search in memory")
	searchCmd.Flags().StringVar(&predicate, "where", "",
		"extra SQL predicate for table search")
	searchCmd.Flags().IntVarP(&limit, "limit", "l", 0,
		"maximum number of results")

	return searchCmd
}

func runSearchTable(
	ctx context.Context,
	table, column, predicate, query string,
) error {
	op := iodb.New()
	if err := op.Connect(ctx, &cfg.Database); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	defer op.Close()

	matches, err := iosearch.Columnar(ctx, op, table, column, query,
		iosearch.Options{
			MinScore:       cfg.Search.MinScore,
			Limit:          cfg.Search.Limit,
			ExtraPredicate: predicate,
		})
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	for _, m := range matches {
		fmt.Printf("%.3f  %v\n", m.Similarity, m.Row[column])
	}
	gn.Info("Found <em>%d</em> matches", len(matches))
	return nil
}

func runSearchCSV(path, column, query string) error {
	file, err := os.Open(path)
	if err != nil {
		err = &gn.Error{
			Code: errcode.SearchInputError,
			Msg:  "Cannot read CSV file <em>%s</em>",
			Vars: []any{path},
			Err:  fmt.Errorf("cannot open %s: %w", path, err),
		}
		gn.PrintErrorMessage(err)
		return err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil || len(records) == 0 {
		err = &gn.Error{
			Code: errcode.SearchInputError,
			Msg:  "Cannot parse CSV file <em>%s</em>",
			Vars: []any{path},
			Err:  fmt.Errorf("cannot parse %s: %w", path, err),
		}
		gn.PrintErrorMessage(err)
		return err
	}

	colIdx := -1
	for i, name := range records[0] {
		if name == column {
			colIdx = i
			break
		}
	}
	if colIdx < 0 {
		err = &gn.Error{
			Code: errcode.SearchInputError,
			Msg:  "Column <em>%s</em> not found in <em>%s</em>",
			Vars: []any{column, path},
			Err:  fmt.Errorf("column %s not in %s", column, path),
		}
		gn.PrintErrorMessage(err)
		return err
	}

	matches := fuzzy.Search(records[1:], query,
		func(row []string) string { return row[colIdx] },
		cfg.Search.MaxDistance,
	)
	if len(matches) > cfg.Search.Limit {
		matches = matches[:cfg.Search.Limit]
	}

	for _, m := range matches {
		fmt.Printf("%.1f  %s\n", m.Score, m.Item[colIdx])
	}
	gn.Info("Found <em>%d</em> matches", len(matches))
	return nil
}

func searchInputError() error {
	return &gn.Error{
		Code: errcode.SearchInputError,
		Msg:  "Either <em>--table</em> or <em>--csv-file</em> is required",
		Err:  fmt.Errorf("no search target given"),
	}
}
