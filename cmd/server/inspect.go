package main

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"fleetdash/internal/engine"
)

var inspectSheet string

type columnReport struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type inspectReport struct {
	Name    string                   `yaml:"name"`
	Rows    int                      `yaml:"rows"`
	Columns []columnReport           `yaml:"columns"`
	Options map[string][]string      `yaml:"options"`
	Bounds  map[string]engine.Bounds `yaml:"bounds"`
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Standardize a spreadsheet and print its schema, filter options and metric bounds",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadStandardized(args[0], inspectSheet)
		if err != nil {
			return err
		}
		report := inspectReport{
			Name:    ds.Name,
			Rows:    ds.Len(),
			Options: map[string][]string{},
			Bounds:  engine.MetricBounds(ds),
		}
		for _, c := range ds.Columns {
			report.Columns = append(report.Columns, columnReport{Name: c.Name, Type: string(c.Type)})
		}
		for dim, opts := range engine.ResolveOptions(ds, nil) {
			if ds.Has(dim) {
				report.Options[dim] = opts
			}
		}

		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	},
}

func loadStandardized(path, sheet string) (*engine.Dataset, error) {
	raw, err := engine.NewLoader(log).Load(path, sheet)
	if err != nil {
		return nil, err
	}
	return engine.Standardize(raw)
}

func init() {
	inspectCmd.Flags().StringVar(&inspectSheet, "sheet", "", "worksheet name (default first)")
	rootCmd.AddCommand(inspectCmd)
}
