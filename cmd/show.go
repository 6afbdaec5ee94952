package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var showPretty bool

var showCmd = &cobra.Command{
	Use:   "show [file]",
	Short: "Print the selected table",
	Long: `Show prints one table from the input as aligned pipe text, or as a
bordered grid with --pretty. Pick the table with --table or --name, and trim
the output with --limit, --offset, or --tail.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShow(args, showPretty)
	},
}

// runShow backs both the show subcommand and the bare root invocation.
func runShow(args []string, pretty bool) error {
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
	if pretty {
		printPrettyTable(os.Stdout, t)
		return nil
	}
	printTable(os.Stdout, t)
	return nil
}

func init() {
	showCmd.Flags().BoolVar(&showPretty, "pretty", false, "render with box borders instead of pipe text")
}
