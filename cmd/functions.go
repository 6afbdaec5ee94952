package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/tabx/internal/celenv"
	"github.com/oakwood-commons/tabx/internal/jump"
	"github.com/oakwood-commons/tabx/pkg/table"
)

var functionsCmd = &cobra.Command{
	Use:   "functions",
	Short: "List expression functions, presets, and reducers",
	Long: `Functions prints everything callable in tabx expressions: the row
environment available to filters, the cell environment available inside jump
conditions, the jump presets, and the flatten reducers. Presets and reducers
include entries registered through the config file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, _, err := newEngine(nil)
		if err != nil {
			return err
		}

		rowEnv, err := celenv.NewRowEnv(1)
		if err != nil {
			return err
		}
		fmt.Println("Row filter functions (filter --filter):")
		for _, f := range celenv.Functions(rowEnv.Env(), nil) {
			fmt.Println("  " + f)
		}

		tiny := table.FromCells([][]string{{""}})
		je, err := jump.New(&tiny, jump.NewState(), e.Presets, e.Reducers)
		if err != nil {
			return err
		}
		fmt.Println()
		fmt.Println("Jump condition functions (expression leaves):")
		for _, f := range celenv.Functions(je.Env(), nil) {
			fmt.Println("  " + f)
		}

		fmt.Println()
		fmt.Println("Jump presets:")
		for _, p := range e.Presets.List() {
			fmt.Printf("  %-10s %s\n", p.Name, p.Description)
		}

		fmt.Println()
		fmt.Println("Flatten reducers:")
		for _, r := range e.Reducers.List() {
			fmt.Printf("  %-10s %s\n", r.Name, r.Description)
		}
		return nil
	},
}
