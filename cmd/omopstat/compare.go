package main

import (
	"fmt"
	"os"

	"github.com/clindict/omopstat/pkg/compare"
	"github.com/clindict/omopstat/pkg/errcode"
	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"
	"github.com/spf13/cobra"
)

// getCompareCmd returns the compare command.
func getCompareCmd() *cobra.Command {
	compareCmd := &cobra.Command{
		Use:   "compare summary-a.json summary-b.json",
		Short: "Score the similarity of two concept summaries",
		Long: `Compare two concept statistical summaries and print a similarity
result as JSON.

Both inputs are summary JSON files as produced by 'omopstat stats'.
Numeric summaries are scored on quantile overlap, coefficient of
variation, range overlap and distribution distance; categorical
summaries on value-set Jaccard index and frequency-profile
similarity. Summaries of different data types are incomparable and
produce the fixed sentinel score.

Examples:
  omopstat compare hemoglobin_src.json hemoglobin_tgt.json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(args[0], args[1])
		},
	}

	return compareCmd
}

func runCompare(pathA, pathB string) error {
	dataA, err := os.ReadFile(pathA)
	if err != nil {
		err = compareInputError(pathA, err)
		gn.PrintErrorMessage(err)
		return err
	}
	dataB, err := os.ReadFile(pathB)
	if err != nil {
		err = compareInputError(pathB, err)
		gn.PrintErrorMessage(err)
		return err
	}

	res, err := compare.DistributionsJSON(dataA, dataB, nil)
	if err != nil {
		err = &gn.Error{
			Code: errcode.CompareParseError,
			Msg:  "Could not parse summary JSON",
			Err:  err,
		}
		gn.PrintErrorMessage(err)
		return err
	}

	enc := gnfmt.GNjson{Pretty: true}
	out, err := enc.Encode(res)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	fmt.Println(string(out))
	return nil
}

func compareInputError(path string, err error) error {
	return &gn.Error{
		Code: errcode.CompareParseError,
		Msg:  "Cannot read summary file <em>%s</em>",
		Vars: []any{path},
		Err:  fmt.Errorf("cannot read %s: %w", path, err),
	}
}
