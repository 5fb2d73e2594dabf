package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fleetdash/internal/engine"
	"fleetdash/internal/export"
)

var (
	filterSheet        string
	filterVehicleTypes []string
	filterFuelTypes    []string
	filterProvinces    []string
	filterRanges       []string
	filterFrom         string
	filterTo           string
	filterFormat       string
	filterOutput       string
)

var filterCmd = &cobra.Command{
	Use:   "filter <file>",
	Short: "Apply filters to a spreadsheet offline and export the rows",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := export.ParseFormat(filterFormat)
		if err != nil {
			return err
		}
		if f == export.SQLite && filterOutput == "" {
			return fmt.Errorf("--format sqlite needs -o")
		}
		criteria, err := buildCriteria(
			engine.Selection{
				engine.ColVehicleType: filterVehicleTypes,
				engine.ColFuelType:    filterFuelTypes,
				engine.ColProvince:    filterProvinces,
			},
			filterRanges, filterFrom, filterTo,
		)
		if err != nil {
			return err
		}

		ds, err := loadStandardized(args[0], filterSheet)
		if err != nil {
			return err
		}
		view := engine.Apply(ds, criteria)
		log.Info("filters applied", zap.Int("rows", view.Len()), zap.Int("total", ds.Len()))

		if filterOutput == "" {
			return export.Write(cmd.OutOrStdout(), view, f)
		}
		return export.WriteFile(filterOutput, view, f)
	},
}

func buildCriteria(sel engine.Selection, ranges []string, from, to string) (engine.Criteria, error) {
	c := engine.Criteria{Selection: sel}
	for _, arg := range ranges {
		r, err := parseRange(arg)
		if err != nil {
			return c, err
		}
		c.Ranges = append(c.Ranges, r)
	}
	var err error
	if c.Dates.Start, err = parseDay(from); err != nil {
		return c, err
	}
	if c.Dates.End, err = parseDay(to); err != nil {
		return c, err
	}
	if !c.Dates.Start.IsZero() && !c.Dates.End.IsZero() && c.Dates.Start.After(c.Dates.End) {
		return c, fmt.Errorf("--from %s > --to %s: %w", from, to, engine.ErrInvalidRange)
	}
	return c, nil
}

// parseRange reads metric=min:max.
func parseRange(arg string) (engine.Range, error) {
	col, bounds, ok := strings.Cut(arg, "=")
	if !ok {
		return engine.Range{}, fmt.Errorf("range %q: want metric=min:max", arg)
	}
	lo, hi, ok := strings.Cut(bounds, ":")
	if !ok {
		return engine.Range{}, fmt.Errorf("range %q: want metric=min:max", arg)
	}
	minV, err := strconv.ParseFloat(strings.TrimSpace(lo), 64)
	if err != nil {
		return engine.Range{}, fmt.Errorf("range %q: %w", arg, err)
	}
	maxV, err := strconv.ParseFloat(strings.TrimSpace(hi), 64)
	if err != nil {
		return engine.Range{}, fmt.Errorf("range %q: %w", arg, err)
	}
	return engine.NewRange(strings.TrimSpace(col), minV, maxV)
}

func parseDay(s string) (t time.Time, err error) {
	if strings.TrimSpace(s) == "" {
		return t, nil
	}
	t, ok := engine.ToDate(engine.String(s))
	if !ok {
		return t, fmt.Errorf("invalid date %q", s)
	}
	return t, nil
}

func init() {
	fl := filterCmd.Flags()
	fl.StringVar(&filterSheet, "sheet", "", "worksheet name (default first)")
	fl.StringSliceVar(&filterVehicleTypes, "vehicle-type", nil, "vehicle types to keep")
	fl.StringSliceVar(&filterFuelTypes, "fuel-type", nil, "fuel types to keep")
	fl.StringSliceVar(&filterProvinces, "province", nil, "provinces to keep")
	fl.StringArrayVar(&filterRanges, "range", nil, "metric range as metric=min:max (repeatable)")
	fl.StringVar(&filterFrom, "from", "", "first date (alone: that single day)")
	fl.StringVar(&filterTo, "to", "", "last date")
	fl.StringVar(&filterFormat, "format", "csv", "output format: csv, arrow or sqlite")
	fl.StringVarP(&filterOutput, "output", "o", "", "output file (default stdout)")
	rootCmd.AddCommand(filterCmd)
}
