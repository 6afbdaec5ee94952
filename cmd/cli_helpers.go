package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/oakwood-commons/tabx/internal/config"
	"github.com/oakwood-commons/tabx/internal/jump"
	"github.com/oakwood-commons/tabx/internal/limiter"
	"github.com/oakwood-commons/tabx/internal/narrow"
	"github.com/oakwood-commons/tabx/pkg/engine"
	"github.com/oakwood-commons/tabx/pkg/loader"
	"github.com/oakwood-commons/tabx/pkg/logger"
	"github.com/oakwood-commons/tabx/pkg/settings"
	"github.com/oakwood-commons/tabx/pkg/table"
)

// stdinIsPiped reports whether stdin carries piped data rather than a
// terminal. Variable so tests can stub it.
var stdinIsPiped = func() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// loadInput resolves the host input for a run: the positional file when
// given, otherwise piped stdin. Returns errShowHelp when neither is present.
func loadInput(args []string) (*loader.Source, error) {
	format, err := loader.ParseFormat(inputFormat)
	if err != nil {
		return nil, err
	}
	opts := loader.Options{
		Format: format,
		Sheet:  sheetName,
		Logger: *logger.FromContext(rootCtx),
	}
	if len(args) > 0 {
		runParams.Input = settings.InputSettings{Path: args[0], Sheet: sheetName}
		return loader.LoadFile(args[0], opts)
	}
	if !stdinIsPiped() {
		return nil, errShowHelp
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	runParams.Input = settings.InputSettings{FromStdin: true, Sheet: sheetName}
	return loader.LoadString(string(data), opts)
}

// pickTable selects the table a command operates on, honoring --name and
// --table. Indexes are 1-based in document order.
func pickTable(src *loader.Source) (table.Table, error) {
	if tableName != "" {
		if src.Doc == nil {
			return table.Table{}, fmt.Errorf("--name requires a document input, not %s", src.Format)
		}
		text, err := src.Doc.FindNamed(tableName)
		if err != nil {
			return table.Table{}, err
		}
		return table.Parse(text)
	}
	if len(src.Tables) == 0 {
		return table.Table{}, fmt.Errorf("input contains no tables")
	}
	if tableIndex < 1 || tableIndex > len(src.Tables) {
		return table.Table{}, fmt.Errorf("table %d out of range: input has %d table(s)", tableIndex, len(src.Tables))
	}
	return src.Tables[tableIndex-1], nil
}

// newEngine builds the engine for one run: user configuration merged over the
// embedded defaults, the host document as named-table resolver, and the
// external solver when one is configured.
func newEngine(src *loader.Source) (*engine.Engine, config.Config, error) {
	cfg, err := config.Load(resolveConfigPath(configFile))
	if err != nil {
		return nil, config.Config{}, err
	}
	opts := []engine.Option{engine.WithLogger(*logger.FromContext(rootCtx))}
	if src != nil && src.Doc != nil {
		opts = append(opts, engine.WithResolver(src.Doc))
	}
	if len(cfg.Solver.Command) > 0 {
		opts = append(opts, engine.WithSolver(&narrow.CommandSolver{
			Command: cfg.Solver.Command,
			Marker:  cfg.Solver.Marker,
			Timeout: cfg.Solver.Timeout(),
		}))
	}
	e, err := engine.New(opts...)
	if err != nil {
		return nil, config.Config{}, err
	}
	for _, p := range cfg.Presets {
		e.Presets.Register(jump.Preset{Name: p.Name, Description: p.Description, Condition: p.Condition})
	}
	for _, r := range cfg.Reducers {
		if err := e.Reducers.RegisterExpr(r.Name, r.Expr, r.Description); err != nil {
			return nil, config.Config{}, fmt.Errorf("reducer %q: %w", r.Name, err)
		}
	}
	return e, cfg, nil
}

// limitTable applies the --limit/--offset/--tail window to command output.
func limitTable(t table.Table) (table.Table, error) {
	win := limiter.Config{Limit: limitRows, Offset: offsetRows, Tail: tailRows}
	if err := win.Validate(); err != nil {
		return table.Table{}, err
	}
	if !win.IsActive() {
		return t, nil
	}
	return win.Apply(t), nil
}
