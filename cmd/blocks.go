package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/tabx/pkg/logger"
)

var blocksWrite bool

var blocksCmd = &cobra.Command{
	Use:   "blocks [file]",
	Short: "Refresh dynamic filter blocks in a document",
	Long: `Blocks recomputes every #+BEGIN: tabx-filter block in the document
and replaces its body with the filter result, bottom-up so line numbers stay
valid while rewriting:

    #+BEGIN: tabx-filter :tblnames costs :filter "c2n > 100.0" :cols 1,2
    | old body, replaced on update |
    #+END:

Block parameters inherit from the config file's filter defaults, then from
the document's #+PROPERTY: tabx-filter line, then from the block header. The
refreshed document goes to stdout, or back into the file with --write.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := loadInput(args)
		if err != nil {
			return err
		}
		if src.Doc == nil {
			return fmt.Errorf("blocks requires a document input, not %s", src.Format)
		}
		e, cfg, err := newEngine(src)
		if err != nil {
			return err
		}
		defaults, err := cfg.FilterDefaults()
		if err != nil {
			return err
		}
		n, err := e.UpdateBlocks(src.Doc, defaults)
		if err != nil {
			return err
		}
		logger.FromContext(rootCtx).V(1).Info("updated dynamic blocks", "count", n)
		if blocksWrite {
			if src.Path == "" {
				return fmt.Errorf("--write needs a file argument, not stdin")
			}
			return os.WriteFile(src.Path, []byte(src.Doc.String()), 0o644)
		}
		fmt.Print(src.Doc.String())
		return nil
	},
}

func init() {
	blocksCmd.Flags().BoolVar(&blocksWrite, "write", false, "rewrite the input file in place")
}
