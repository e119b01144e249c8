package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spboyer/napr/internal/dataset"
	"github.com/spboyer/napr/internal/statistics"
	"github.com/spf13/cobra"
)

func newStatCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stat",
		Short: "Descriptive statistics over dataset columns",
	}
	cmd.AddCommand(newStatWithinCommand())
	return cmd
}

func newStatWithinCommand() *cobra.Command {
	var (
		column    string
		low       float64
		high      float64
		inclusive string
	)

	cmd := &cobra.Command{
		Use:   "within <file.csv>",
		Short: "Percentage of a column's values inside an interval",
		Long: `Report the percentage of values in a numeric CSV column that fall inside
the interval [low, high]. Use --inclusive to choose which bounds count as
inside: both (default), neither, left or right. Empty cells are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inc, err := statistics.ParseInclusive(inclusive)
			if err != nil {
				return err
			}
			values, err := readColumn(args[0], column)
			if err != nil {
				return err
			}
			pct, err := statistics.PercentWithin(values, low, high, inc)
			if err != nil {
				return fmt.Errorf("column %s: %w", column, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%.2f%% of %d values in %s are within [%g, %g] (inclusive: %s)\n", //nolint:errcheck
				pct, len(values), column, low, high, inc)
			return nil
		},
	}

	cmd.Flags().StringVar(&column, "column", "", "Column to summarize")
	cmd.Flags().Float64Var(&low, "low", 0, "Lower bound of the interval")
	cmd.Flags().Float64Var(&high, "high", 0, "Upper bound of the interval")
	cmd.Flags().StringVar(&inclusive, "inclusive", "both", "Bounds that count as inside: both, neither, left, right")
	_ = cmd.MarkFlagRequired("column")
	_ = cmd.MarkFlagRequired("low")
	_ = cmd.MarkFlagRequired("high")

	return cmd
}

// readColumn parses one numeric column of a (possibly compressed) CSV file.
func readColumn(path, column string) ([]float64, error) {
	rc, err := dataset.Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close() //nolint:errcheck

	r := csv.NewReader(rc)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%s: reading header: %w", path, err)
	}
	idx := -1
	for i, h := range header {
		if strings.TrimSpace(h) == column {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%s: column %q not found", path, column)
	}

	var values []float64
	for line := 2; ; line++ {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		cell := strings.TrimSpace(record[idx])
		if cell == "" {
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: column %s: %q is not numeric", path, line, column, cell)
		}
		values = append(values, v)
	}
	return values, nil
}
