package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/tabx/internal/filter"
	"github.com/oakwood-commons/tabx/pkg/rangespec"
	"github.com/oakwood-commons/tabx/pkg/table"
)

var (
	filterRows     rangespec.Spec
	filterCols     rangespec.Spec
	filterExpr     string
	filterNoErrors bool
	filterTables   []string
	filterNamesCol string
)

var filterCmd = &cobra.Command{
	Use:   "filter [file]",
	Short: "Select rows and columns, optionally through an expression",
	Long: `Filter selects rows and columns from a table. Row and column specs
take 1-based indexes, inclusive ranges, and negative end-anchored indexes:

    tabx filter notes.org --rows 2-5,-1 --cols 1,3

The --filter expression is evaluated per row with columns bound as c1, c2,
... (cN), their numeric forms as c1n, c2n, ... (cNn), the 1-based counter n,
and the whole row as the list row. Rows where it yields a truthy value are
kept:

    tabx filter notes.org --filter 'c2n > 10.0 && c1.contains("x")'

With --tblnames, named tables from the host document are stacked first and
--namescol can record each row's origin in an extra column.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := loadInput(args)
		if err != nil {
			return err
		}
		e, _, err := newEngine(src)
		if err != nil {
			return err
		}
		var t table.Table
		if len(filterTables) > 0 {
			placement, perr := filter.ParseNamesCol(filterNamesCol)
			if perr != nil {
				return perr
			}
			t, err = e.MergeNamed(filterTables, placement)
		} else {
			t, err = pickTable(src)
		}
		if err != nil {
			return err
		}
		out, err := e.FilterList(t, filter.Options{
			Rows:     filterRows,
			Cols:     filterCols,
			Filter:   filterExpr,
			NoErrors: filterNoErrors,
		})
		if err != nil {
			return err
		}
		out, err = limitTable(out)
		if err != nil {
			return err
		}
		printTable(os.Stdout, out)
		return nil
	},
}

func init() {
	filterCmd.Flags().Var(&filterRows, "rows", "row spec, e.g. 1,3-5,-1 (default: all)")
	filterCmd.Flags().Var(&filterCols, "cols", "column spec, e.g. 2,1,4-6 (default: all)")
	filterCmd.Flags().StringVar(&filterExpr, "filter", "", "row expression; rows where it is truthy are kept")
	filterCmd.Flags().BoolVar(&filterNoErrors, "noerrors", false, "drop rows whose evaluation errors instead of failing")
	filterCmd.Flags().StringSliceVar(&filterTables, "tblnames", nil, "stack these named tables from the document first")
	filterCmd.Flags().StringVar(&filterNamesCol, "namescol", "", "provenance column for --tblnames: first or last")
}
