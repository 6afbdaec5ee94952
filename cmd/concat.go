package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/tabx/pkg/table"
)

var (
	concatHorizontal bool
	concatPad        string
)

var concatCmd = &cobra.Command{
	Use:   "concat [files...]",
	Short: "Join tables top to bottom or side by side",
	Long: `Concat joins tables: every table from every input file, in order, or
all tables of stdin when no files are given. The default stacks them
vertically; --horizontal puts them side by side. Tables that disagree on
width or height are padded with --pad.

    tabx concat q1.org q2.org --pad -
    cat both.org | tabx concat --horizontal`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var tables []table.Table
		if len(args) == 0 {
			src, err := loadInput(nil)
			if err != nil {
				return err
			}
			tables = src.Tables
		} else {
			for _, path := range args {
				src, err := loadInput([]string{path})
				if err != nil {
					return err
				}
				tables = append(tables, src.Tables...)
			}
		}
		if len(tables) == 0 {
			return fmt.Errorf("no tables to concatenate")
		}
		e, _, err := newEngine(nil)
		if err != nil {
			return err
		}
		var out table.Table
		if concatHorizontal {
			out, err = e.HConcat(tables, concatPad)
		} else {
			out, err = e.VConcat(tables, concatPad)
		}
		if err != nil {
			return err
		}
		printTable(os.Stdout, out)
		return nil
	},
}

func init() {
	concatCmd.Flags().BoolVar(&concatHorizontal, "horizontal", false, "join side by side instead of stacking")
	concatCmd.Flags().StringVar(&concatPad, "pad", "", "fill value for size mismatches")
}
