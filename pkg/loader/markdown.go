package loader

import (
	"strings"

	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/parser"

	"github.com/oakwood-commons/tabx/pkg/table"
)

// loadMarkdown extracts every GFM table from a markdown document. The header
// row becomes the first data row followed by a separator, matching the shape
// the pipe codec produces for a table with a heading rule. Markdown does not
// round-trip: Source.Doc stays nil and rewrites are out of reach.
func loadMarkdown(input string) (*Source, error) {
	// Parser instances are single-use; build a fresh one per call.
	p := parser.NewWithExtensions(parser.CommonExtensions)
	root := p.Parse([]byte(input))

	var tables []table.Table
	ast.WalkFunc(root, func(node ast.Node, entering bool) ast.WalkStatus {
		if !entering {
			return ast.GoToNext
		}
		if tbl, ok := node.(*ast.Table); ok {
			tables = append(tables, markdownTable(tbl))
			return ast.SkipChildren
		}
		return ast.GoToNext
	})
	return &Source{Format: FormatMarkdown, Tables: tables}, nil
}

func markdownTable(node *ast.Table) table.Table {
	var t table.Table
	for _, section := range node.GetChildren() {
		switch section.(type) {
		case *ast.TableHeader:
			for _, row := range section.GetChildren() {
				t.Rows = append(t.Rows, table.Row{Cells: markdownRowCells(row)})
			}
			t.Rows = append(t.Rows, table.NewSeparator())
		case *ast.TableBody, *ast.TableFooter:
			for _, row := range section.GetChildren() {
				t.Rows = append(t.Rows, table.Row{Cells: markdownRowCells(row)})
			}
		}
	}
	return t.Normalize("")
}

func markdownRowCells(row ast.Node) []string {
	var cells []string
	for _, cell := range row.GetChildren() {
		cells = append(cells, strings.TrimSpace(markdownText(cell)))
	}
	return cells
}

// markdownText flattens a cell's inline tree to plain text: literals of every
// leaf (text, code spans) concatenated, markup dropped.
func markdownText(node ast.Node) string {
	var b strings.Builder
	ast.WalkFunc(node, func(n ast.Node, entering bool) ast.WalkStatus {
		if !entering {
			return ast.GoToNext
		}
		if leaf := n.AsLeaf(); leaf != nil {
			b.Write(leaf.Literal)
		}
		return ast.GoToNext
	})
	return b.String()
}
