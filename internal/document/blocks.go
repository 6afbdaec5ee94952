package document

import (
	"fmt"
	"strings"

	"github.com/oakwood-commons/tabx/internal/filter"
)

// BlockType is the dynamic-block name this system owns.
const BlockType = "tabx-filter"

// Block is one dynamic block: `#+BEGIN: tabx-filter :params…` … `#+END:`.
// Begin and End are the marker lines; the body lies strictly between.
type Block struct {
	Begin  int
	End    int
	Params string
}

// Body returns the span of the block's current body, empty when the markers
// are adjacent.
func (b Block) Body() Span {
	return Span{Start: b.Begin + 1, End: b.End - 1}
}

// blockHeader reads a `#+BEGIN: name params` line, reporting the block name
// and the raw parameter text.
func blockHeader(line string) (name, params string, ok bool) {
	key, value, ok := marker(line)
	if !ok || key != "begin" {
		return "", "", false
	}
	fields := strings.SplitN(value, " ", 2)
	if fields[0] == "" {
		return "", "", false
	}
	name = strings.ToLower(fields[0])
	if len(fields) == 2 {
		params = strings.TrimSpace(fields[1])
	}
	return name, params, true
}

func isBlockEnd(line string) bool {
	key, value, ok := marker(line)
	return ok && key == "end" && value == ""
}

// Blocks lists the document's tabx-filter dynamic blocks, top to bottom.
// Every open marker needs its #+END: before the next block or the end of the
// document; foreign block names pair the same way but are not returned.
func (d *Document) Blocks() ([]Block, error) {
	var blocks []Block
	open := 0 // line of the open #+BEGIN:, 0 when closed
	var openName, openParams string
	for i, line := range d.lines {
		if name, params, ok := blockHeader(line); ok {
			if open != 0 {
				return nil, fmt.Errorf("dynamic block at line %d: still open at line %d", open, i+1)
			}
			open, openName, openParams = i+1, name, params
			continue
		}
		if isBlockEnd(line) {
			if open == 0 {
				continue
			}
			if openName == BlockType {
				blocks = append(blocks, Block{Begin: open, End: i + 1, Params: openParams})
			}
			open = 0
		}
	}
	if open != 0 {
		return nil, fmt.Errorf("dynamic block at line %d: missing #+END:", open)
	}
	return blocks, nil
}

// PropertyParams parses the document-level tabx-filter property into a
// parameter record; a document without the property yields the zero record.
func (d *Document) PropertyParams() (filter.Params, error) {
	raw, ok := d.Properties()[BlockType]
	if !ok {
		return filter.Params{}, nil
	}
	p, err := filter.ParseParams(raw)
	if err != nil {
		return filter.Params{}, fmt.Errorf("property %s: %w", BlockType, err)
	}
	return p, nil
}

// UpdateBlocks recomputes the body of every tabx-filter block: block
// parameters override the document's tabx-filter property, which overrides
// the given defaults. The document itself resolves the referenced tables, so
// a block can consume tables updated by a block below it. Returns the number
// of blocks rewritten; on error the document keeps every rewrite already
// applied, and the failing block reports its line.
func (d *Document) UpdateBlocks(defaults filter.Params) (int, error) {
	propParams, err := d.PropertyParams()
	if err != nil {
		return 0, err
	}
	base := propParams.Merge(defaults)

	blocks, err := d.Blocks()
	if err != nil {
		return 0, err
	}
	// Bottom-up, so rewrites never shift the positions still to process.
	updated := 0
	for i := len(blocks) - 1; i >= 0; i-- {
		b := blocks[i]
		if err := d.updateBlock(b, base); err != nil {
			return updated, fmt.Errorf("dynamic block at line %d: %w", b.Begin, err)
		}
		updated++
	}
	return updated, nil
}

func (d *Document) updateBlock(b Block, base filter.Params) error {
	params, err := filter.ParseParams(b.Params)
	if err != nil {
		return err
	}
	result, err := filter.Run(d, params.Merge(base))
	if err != nil {
		return err
	}
	var body []string
	if !result.IsEmpty() {
		body = strings.Split(result.String(), "\n")
	}
	return d.Replace(b.Body(), body)
}
