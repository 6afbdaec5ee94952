package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/tabx/pkg/table"
)

var (
	flattenLine    int
	flattenCol     int
	flattenNRows   int
	flattenNCols   int
	flattenReducer string
	flattenReps    int
)

var flattenCmd = &cobra.Command{
	Use:   "flatten [file]",
	Short: "Fold runs of cells into one cell through a reducer",
	Long: `Flatten combines --nrows cells below the start cell into the start
cell, per column across --ncols columns, then drops consumed rows that end up
entirely blank. Positive --ncols spans rightward, negative spans leftward,
zero spans to the right edge. --reps repeats the fold on successive rows.

The reducer is a registered name ("join", "sum", "mean", ...; see tabx
functions) or a one-off expression over the cell list:

    tabx flatten notes.org --line 2 --col 3 --nrows 2 --reducer sum
    tabx flatten notes.org --line 1 --nrows 3 --reducer 'cells.join("; ")'`,
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
		t, err := pickTable(src)
		if err != nil {
			return err
		}
		at := table.Coordinate{Line: flattenLine, Col: flattenCol}
		if err := e.Flatten(&t, at, flattenNRows, flattenNCols, flattenReducer, flattenReps); err != nil {
			return err
		}
		printTable(os.Stdout, t)
		return nil
	},
}

func init() {
	flattenCmd.Flags().IntVar(&flattenLine, "line", 1, "1-based data row of the start cell")
	flattenCmd.Flags().IntVar(&flattenCol, "col", 1, "1-based column of the start cell")
	flattenCmd.Flags().IntVar(&flattenNRows, "nrows", 1, "cells below the start cell to consume")
	flattenCmd.Flags().IntVar(&flattenNCols, "ncols", 1, "columns to span: >0 right, <0 left, 0 to the right edge")
	flattenCmd.Flags().StringVar(&flattenReducer, "reducer", "join", "reducer name or expression over the cell list")
	flattenCmd.Flags().IntVar(&flattenReps, "reps", 1, "repetitions on successive start rows")
}
