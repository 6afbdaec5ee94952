package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var transposeCmd = &cobra.Command{
	Use:   "transpose [file]",
	Short: "Swap rows and columns",
	Long: `Transpose mirrors the selected table across its diagonal. Separator
rows do not survive the swap; ragged rows are padded first so the result is
rectangular.`,
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
		out, err := e.Transpose(t)
		if err != nil {
			return err
		}
		printTable(os.Stdout, out)
		return nil
	},
}
