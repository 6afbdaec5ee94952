package cmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/tabx/pkg/table"
)

// printTable writes t as aligned pipe text followed by a newline. Empty
// tables print nothing.
func printTable(w io.Writer, t table.Table) {
	if t.IsEmpty() {
		return
	}
	fmt.Fprintln(w, t.String())
}

// printPrettyTable renders t with box borders. A separator after the first
// row promotes that row to the header.
func printPrettyTable(w io.Writer, t table.Table) {
	rows := t.DataRows()
	if len(rows) == 0 {
		return
	}
	tw := tablewriter.NewWriter(w)
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	if t.SeparatorAfter(1) {
		tw.SetHeader(rows[0])
		rows = rows[1:]
	}
	for _, row := range rows {
		tw.Append(row)
	}
	tw.Render()
}

// tableDoc is the document shape for YAML and JSON conversion: the header row
// split out under "columns" when the table has one, data rows as lists so
// column order survives serialization.
type tableDoc struct {
	Columns []string   `yaml:"columns,omitempty" json:"columns,omitempty"`
	Rows    [][]string `yaml:"rows" json:"rows"`
}

func newTableDoc(t table.Table) tableDoc {
	rows := t.DataRows()
	doc := tableDoc{Rows: rows}
	if len(rows) > 0 && t.SeparatorAfter(1) {
		doc.Columns = rows[0]
		doc.Rows = rows[1:]
	}
	return doc
}

func renderYAML(w io.Writer, t table.Table) error {
	out, err := yaml.Marshal(newTableDoc(t))
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

func renderJSON(w io.Writer, t table.Table) error {
	out, err := json.MarshalIndent(newTableDoc(t), "", "  ")
	if err != nil {
		return err
	}
	if _, err := w.Write(out); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}

func renderCSV(w io.Writer, t table.Table, comma rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma
	if err := cw.WriteAll(t.DataRows()); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}
