package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/tabx/internal/narrow"
)

var (
	narrowCol        int
	narrowWidth      int
	narrowMaxWidth   int
	narrowFixed      []int
	narrowSeparators bool
)

var narrowCmd = &cobra.Command{
	Use:   "narrow [file]",
	Short: "Word-wrap wide cells onto continuation rows",
	Long: `Narrow shrinks a table by word-wrapping cell text onto continuation
rows. With --col and --width one column is wrapped greedily:

    tabx narrow notes.org --col 3 --width 20

With --maxwidth the configured external optimizer assigns every column a
width so the table fits the budget; --fixed pins columns at their current
width. The optimizer command comes from the config file (solver.command).

    tabx narrow notes.org --maxwidth 72 --fixed 1 --separators`,
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
		if narrowMaxWidth > 0 {
			fixed := make(map[int]bool, len(narrowFixed))
			for _, c := range narrowFixed {
				fixed[c] = true
			}
			opts := narrow.Options{
				MaxWidth:   narrowMaxWidth,
				Fixed:      fixed,
				Separators: narrowSeparators,
			}
			if err := e.NarrowTable(rootCtx, &t, opts); err != nil {
				return err
			}
		} else {
			if narrowCol < 1 || narrowWidth < 1 {
				return fmt.Errorf("narrow needs --col and --width, or --maxwidth for the whole table")
			}
			if err := e.NarrowColumn(&t, narrowCol, narrowWidth, narrowSeparators); err != nil {
				return err
			}
		}
		printTable(os.Stdout, t)
		return nil
	},
}

func init() {
	narrowCmd.Flags().IntVar(&narrowCol, "col", 0, "1-based column to wrap")
	narrowCmd.Flags().IntVar(&narrowWidth, "width", 0, "target width for --col")
	narrowCmd.Flags().IntVar(&narrowMaxWidth, "maxwidth", 0, "total width budget for the whole table (uses the external optimizer)")
	narrowCmd.Flags().IntSliceVar(&narrowFixed, "fixed", nil, "columns kept at their current width under --maxwidth")
	narrowCmd.Flags().BoolVar(&narrowSeparators, "separators", false, "insert a separator row after each wrapped group")
}
