package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var convertTo string

var convertCmd = &cobra.Command{
	Use:   "convert [file]",
	Short: "Re-emit the selected table in another format",
	Long: `Convert reads a table from any supported input (pipe text, Markdown,
CSV, TSV, XLSX) and writes it out as pipe text, csv, tsv, yaml, or json:

    tabx convert report.xlsx --sheet Costs --to csv
    tabx convert data.csv                       # csv -> pipe text

YAML and JSON outputs keep rows as lists and lift a header row, when the
table has one, into a "columns" key.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := loadInput(args)
		if err != nil {
			return err
		}
		t, err := pickTable(src)
		if err != nil {
			return err
		}
		t, err = limitTable(t)
		if err != nil {
			return err
		}
		switch strings.ToLower(convertTo) {
		case "", "pipe", "org":
			printTable(os.Stdout, t)
			return nil
		case "csv":
			return renderCSV(os.Stdout, t, ',')
		case "tsv":
			return renderCSV(os.Stdout, t, '\t')
		case "yaml", "yml":
			return renderYAML(os.Stdout, t)
		case "json":
			return renderJSON(os.Stdout, t)
		default:
			return fmt.Errorf("unsupported output format %q (pipe, csv, tsv, yaml, json)", convertTo)
		}
	},
}

func init() {
	convertCmd.Flags().StringVar(&convertTo, "to", "pipe", "output format: pipe, csv, tsv, yaml, or json")
}
