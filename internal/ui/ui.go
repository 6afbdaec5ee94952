// Package ui implements the interactive table walker: a scrolling grid view
// over the loaded tables with a cursor, jump and filter-view prompts, undo,
// and write-back of edits into the host document.
package ui

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"github.com/go-logr/logr"
	"golang.org/x/term"

	"github.com/oakwood-commons/tabx/pkg/engine"
	"github.com/oakwood-commons/tabx/pkg/loader"
)

// Options configures one walker run.
type Options struct {
	// Source is the loaded input. Its tables are cloned into working copies;
	// write-back goes through Source.Doc when the input is a document.
	Source *loader.Source
	// Engine runs jumps and filter views; its State spans the whole session.
	Engine *engine.Engine
	// NoColor strips styling, keeping only the inverse cursor highlight.
	NoColor bool
	// Logger reports walker lifecycle at V(1).
	Logger logr.Logger
}

// Run starts the walker and blocks until the user quits.
func Run(opts Options) error {
	if opts.Source == nil || len(opts.Source.Tables) == 0 {
		return fmt.Errorf("input contains no tables")
	}
	if opts.Engine == nil {
		return fmt.Errorf("no engine configured")
	}
	m := New(opts)
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 && h > 0 {
		m.width, m.height = w, h
	}
	opts.Logger.V(1).Info("starting walker", "tables", len(m.tables))
	_, err := tea.NewProgram(m).Run()
	return err
}
