package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/tabx/pkg/table"
)

var (
	jumpDir   string
	jumpSteps int
	jumpFrom  string
	jumpShow  bool
)

var jumpCmd = &cobra.Command{
	Use:   "jump [file] CONDITION",
	Short: "Move a cursor through the table to a matching cell",
	Long: `Jump walks cell by cell from --from in --dir, wrapping at the table
edges, until the condition matches, and prints the landing coordinate as
(line,col). The condition language combines regexes, relative matches,
coordinate gotos, presets, combinators, and expression leaves:

    tabx jump notes.org '"total"'
    tabx jump notes.org --dir down 'and(nonempty, field.matches("^[0-9]"))' --steps 2
    tabx jump notes.org 'or(match("^WIP", 0, -1), hline)'

Negative --steps walk the inverted direction. Conditions may mutate cells
(setfield, flatten); --show prints the table afterwards.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cond := args[len(args)-1]
		src, err := loadInput(args[:len(args)-1])
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
		start := table.Coordinate{Line: 1, Col: 1}
		if jumpFrom != "" {
			start, err = parseCoordinate(jumpFrom)
			if err != nil {
				return err
			}
		}
		at, err := e.Jump(&t, start, jumpSteps, cond, jumpDir)
		if err != nil {
			return err
		}
		fmt.Println(at)
		if jumpShow {
			printTable(os.Stdout, t)
		}
		return nil
	},
}

// parseCoordinate reads a "line,col" pair of 1-based integers.
func parseCoordinate(s string) (table.Coordinate, error) {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return table.Coordinate{}, fmt.Errorf("coordinate %q: want line,col", s)
	}
	line, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return table.Coordinate{}, fmt.Errorf("coordinate %q: %v", s, err)
	}
	col, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return table.Coordinate{}, fmt.Errorf("coordinate %q: %v", s, err)
	}
	return table.Coordinate{Line: line, Col: col}, nil
}

func init() {
	jumpCmd.Flags().StringVar(&jumpDir, "dir", "", "walk direction: right, left, up, or down (default right)")
	jumpCmd.Flags().IntVar(&jumpSteps, "steps", 1, "matches to advance; negative inverts the direction")
	jumpCmd.Flags().StringVar(&jumpFrom, "from", "", "start coordinate as line,col (default 1,1)")
	jumpCmd.Flags().BoolVar(&jumpShow, "show", false, "print the table after the jump (conditions may mutate cells)")
}
