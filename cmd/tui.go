package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oakwood-commons/tabx/internal/ui"
	"github.com/oakwood-commons/tabx/pkg/logger"
)

var tuiCmd = &cobra.Command{
	Use:   "tui [file]",
	Short: "Walk the table interactively",
	Long: `Tui opens the table walker. Arrow keys move the cursor plainly; "j"
prompts for a jump as "direction: condition" and "J" and "K" repeat it
forward and backward; ":" prompts for a filter expression applied as a view;
"t" and "T" cycle between the document's tables; "w" writes edits back into
the source document; "u" undoes; "q" quits.`,
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
		return ui.Run(ui.Options{
			Source:  src,
			Engine:  e,
			NoColor: noColor,
			Logger:  *logger.FromContext(rootCtx),
		})
	},
}
