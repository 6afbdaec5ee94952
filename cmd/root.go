// Package cmd implements the tabx command-line interface.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/tabx/pkg/logger"
	"github.com/oakwood-commons/tabx/pkg/settings"
)

// Flag values shared across commands. Flags specific to one subcommand live
// next to that command's definition.
var (
	debug       bool
	quiet       bool
	noColor     bool
	configFile  string
	inputFormat string
	sheetName   string
	tableIndex  int
	tableName   string

	limitRows  int
	offsetRows int
	tailRows   int

	rootPretty bool
)

// rootCtx carries the configured logger into every command run.
var rootCtx = context.Background()

// runParams collects the effective run settings once flags are parsed.
var runParams = settings.NewCliParams()

// errShowHelp signals that neither a file argument nor piped stdin provided
// input, so help should be printed instead of an error.
var errShowHelp = errors.New("no input provided")

var rootCmd = &cobra.Command{
	Use:   "tabx [file]",
	Short: "Inspect and transform structured-text tables",
	Long: `tabx reads pipe-delimited tables from plain-text documents, Markdown,
CSV/TSV, or XLSX workbooks, then filters, reshapes, flattens, narrows, and
walks them from the command line.

Without a subcommand tabx prints the selected table, so

    tabx notes.org
    cat notes.org | tabx --table 2

are quick ways to check what a document contains. Input comes from the
positional file argument or from piped stdin; the format is sniffed from the
extension and content unless --format pins it.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := int8(0)
		if quiet {
			level = 1
		}
		if debug {
			level = -1
		}
		runParams.MinLogLevel = level
		runParams.IsQuiet = quiet
		runParams.NoColor = noColor

		lgr := logger.Get(level)
		lgr = logger.WithValues(lgr,
			logger.RootCommandKey, settings.CliBinaryName,
			logger.SubCommandKey, cmd.Name(),
		)
		rootCtx = logger.WithLogger(context.Background(), lgr)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShow(args, rootPretty)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(cliVersionString())
		return nil
	},
}

func cliVersionString() string {
	return fmt.Sprintf("%s %s (commit %s, built %s)",
		settings.CliBinaryName,
		settings.VersionInformation.BuildVersion,
		settings.VersionInformation.Commit,
		settings.VersionInformation.BuildTime)
}

// resolveConfigPath returns the config file for this run: the explicit flag
// value when set, otherwise the first config.yaml under $XDG_CONFIG_HOME/tabx
// or ~/.config/tabx. Empty means built-in defaults only.
func resolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	var candidates []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		candidates = append(candidates, filepath.Join(xdg, settings.CliBinaryName, "config.yaml"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", settings.CliBinaryName, "config.yaml"))
	}
	for _, p := range candidates {
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p
		}
	}
	return ""
}

// Execute runs the root command, translating the empty-invocation sentinel
// into help text.
func Execute() error {
	err := rootCmd.Execute()
	if errors.Is(err, errShowHelp) {
		return rootCmd.Help()
	}
	return err
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVar(&debug, "debug", false, "enable debug logging")
	pf.BoolVarP(&quiet, "quiet", "q", false, "log warnings and errors only")
	pf.BoolVar(&noColor, "no-color", false, "disable colored output")
	pf.StringVar(&configFile, "config-file", "", "config file (default: $XDG_CONFIG_HOME/tabx/config.yaml)")
	pf.StringVarP(&inputFormat, "format", "f", "", "input format: org, md, csv, tsv, or xlsx (default: detect)")
	pf.StringVar(&sheetName, "sheet", "", "XLSX sheet to read (default: first)")
	pf.IntVarP(&tableIndex, "table", "t", 1, "1-based index of the table to use")
	pf.StringVarP(&tableName, "name", "n", "", "use the table with this #+NAME marker")

	pf.IntVar(&limitRows, "limit", 0, "print at most this many data rows")
	pf.IntVar(&offsetRows, "offset", 0, "skip this many data rows first")
	pf.IntVar(&tailRows, "tail", 0, "print only the last N data rows")

	rootCmd.Flags().BoolVar(&rootPretty, "pretty", false, "render with box borders instead of pipe text")

	rootCmd.Version = cliVersionString()
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(filterCmd)
	rootCmd.AddCommand(flattenCmd)
	rootCmd.AddCommand(narrowCmd)
	rootCmd.AddCommand(transposeCmd)
	rootCmd.AddCommand(concatCmd)
	rootCmd.AddCommand(jumpCmd)
	rootCmd.AddCommand(blocksCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(functionsCmd)
	rootCmd.AddCommand(tuiCmd)
}
