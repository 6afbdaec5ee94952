// Package loader ingests table data from the formats the CLI accepts: plain
// text with embedded pipe tables, markdown with GFM tables, CSV/TSV, and XLSX
// workbooks. The format is picked from the file extension, the caller's
// explicit choice, or a content sniff, in that order.
package loader

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/tabx/internal/document"
	"github.com/oakwood-commons/tabx/pkg/table"
)

// Format identifies an input format.
type Format string

const (
	// FormatAuto dispatches on the file extension, falling back to a
	// content sniff for extension-less input.
	FormatAuto Format = ""
	// FormatDocument is plain text with embedded pipe tables (.org, .txt).
	FormatDocument Format = "document"
	// FormatMarkdown is markdown with GFM pipe tables.
	FormatMarkdown Format = "markdown"
	// FormatCSV is comma-separated values.
	FormatCSV Format = "csv"
	// FormatTSV is tab-separated values.
	FormatTSV Format = "tsv"
	// FormatXLSX is an Excel workbook.
	FormatXLSX Format = "xlsx"
)

// Options controls loading. The zero value auto-detects the format, selects
// the first worksheet for workbooks, and logs nothing.
type Options struct {
	// Format forces a format instead of extension/content detection.
	Format Format
	// Sheet names the XLSX worksheet to read; empty selects the first one.
	Sheet string
	// Logger reports detection decisions at V(1).
	Logger logr.Logger
}

// Source is one loaded input. Tables holds the extracted tables in document
// order. Doc is non-nil only for FormatDocument inputs, where the surrounding
// text is kept so named-table lookup and dynamic-block rewriting work; the
// other formats carry tables without a host document.
type Source struct {
	Format Format
	Path   string
	Doc    *document.Document
	Tables []table.Table
}

// LoadFile reads path and loads it, picking the format from opts.Format or
// the file extension.
func LoadFile(path string, opts Options) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	format := opts.Format
	if format == FormatAuto {
		format = formatForPath(path)
	}
	src, err := load(data, format, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	src.Path = path
	return src, nil
}

// LoadString loads in-memory input (typically stdin), picking the format from
// opts.Format or a content sniff. Binary XLSX content passes through string
// conversion unharmed.
func LoadString(input string, opts Options) (*Source, error) {
	return load([]byte(input), opts.Format, opts)
}

func load(data []byte, format Format, opts Options) (*Source, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("empty input")
	}
	if format == FormatAuto {
		format = detectFormat(data)
		opts.Logger.V(1).Info("detected input format", "format", string(format))
	}
	switch format {
	case FormatDocument:
		return loadDocument(string(data))
	case FormatMarkdown:
		return loadMarkdown(string(data))
	case FormatCSV, FormatTSV:
		return loadCSV(string(data), format)
	case FormatXLSX:
		return loadXLSX(data, opts.Sheet)
	default:
		return nil, fmt.Errorf("unsupported format %q", string(format))
	}
}

// ParseFormat converts a user-supplied format name to a Format. Extensions
// with and without a leading dot are accepted.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "":
		return FormatAuto, nil
	case "document", "org", "txt":
		return FormatDocument, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "csv":
		return FormatCSV, nil
	case "tsv":
		return FormatTSV, nil
	case "xlsx":
		return FormatXLSX, nil
	default:
		return FormatAuto, fmt.Errorf("unsupported format %q", s)
	}
}

func formatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return FormatMarkdown
	case ".csv":
		return FormatCSV
	case ".tsv":
		return FormatTSV
	case ".xlsx":
		return FormatXLSX
	case ".org", ".txt":
		return FormatDocument
	default:
		return FormatAuto
	}
}

// loadDocument parses plain text into a Document and extracts every embedded
// pipe table.
func loadDocument(input string) (*Source, error) {
	doc := document.New(input)
	var tables []table.Table
	for _, span := range doc.TableSpans() {
		t, err := table.Parse(doc.Text(span))
		if err != nil {
			return nil, fmt.Errorf("table at line %d: %w", span.Start, err)
		}
		tables = append(tables, t)
	}
	return &Source{Format: FormatDocument, Doc: doc, Tables: tables}, nil
}

// detectFormat sniffs extension-less input. Workbooks are recognized by the
// ZIP container magic; markdown by a GFM delimiter row (which the pipe codec
// would misread as data); anything with pipe-table or `#+` lines is a
// document. Ambiguous inputs should name their format via Options.Format.
func detectFormat(data []byte) Format {
	if isXLSX(data) {
		return FormatXLSX
	}
	lines := strings.Split(string(data), "\n")
	switch {
	case isLikelyMarkdown(lines):
		return FormatMarkdown
	case isLikelyDocument(lines):
		return FormatDocument
	case isLikelyTSV(lines):
		return FormatTSV
	case isLikelyCSV(lines):
		return FormatCSV
	}
	return FormatDocument
}

// isXLSX reports whether data starts with the ZIP local-file-header magic.
// XLSX workbooks are ZIP containers.
func isXLSX(data []byte) bool {
	return bytes.HasPrefix(data, []byte("PK\x03\x04"))
}

// gfmDelimiterPattern matches a GFM table delimiter row with at least two
// columns, e.g. `| --- | :--: |`. The `+` joints of pipe-text separators
// (`|---+---|`) are excluded, so documents do not match.
var gfmDelimiterPattern = regexp.MustCompile(`^\s*\|?\s*:?-+:?\s*(\|\s*:?-+:?\s*)+\|?\s*$`)

// isLikelyMarkdown heuristic: returns true if any line is a GFM table
// delimiter row. Such rows must not reach the pipe codec, which would read
// `| --- | --- |` as a data row of dashes.
func isLikelyMarkdown(lines []string) bool {
	for _, line := range lines {
		if gfmDelimiterPattern.MatchString(line) {
			return true
		}
	}
	return false
}

// isLikelyDocument heuristic: returns true if any non-empty line is a pipe
// table line or a `#+` meta line.
func isLikelyDocument(lines []string) bool {
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "|") || strings.HasPrefix(trimmed, "#+") {
			return true
		}
	}
	return false
}

// isLikelyTSV heuristic: a majority of non-empty lines contain a tab.
func isLikelyTSV(lines []string) bool {
	tabCount := 0
	nonEmptyCount := 0
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		nonEmptyCount++
		if strings.Contains(line, "\t") {
			tabCount++
		}
	}
	return nonEmptyCount > 0 && tabCount > nonEmptyCount/2
}

// isLikelyCSV heuristic: a majority of non-empty lines contain a comma.
func isLikelyCSV(lines []string) bool {
	commaCount := 0
	nonEmptyCount := 0
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		nonEmptyCount++
		if strings.Contains(line, ",") {
			commaCount++
		}
	}
	return nonEmptyCount > 0 && commaCount > nonEmptyCount/2
}
