package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const markdownFixture = "# Inventory\n\n" +
	"Some prose before the table.\n\n" +
	"| name | qty |\n" +
	"| ---- | --- |\n" +
	"| apple | 3 |\n" +
	"| kiwi | 12 |\n\n" +
	"More prose.\n\n" +
	"| **bold** text | `code` |\n" +
	"|:--------------|-------:|\n" +
	"| plain | x |\n"

func TestLoadMarkdownTables(t *testing.T) {
	src, err := LoadString(markdownFixture, Options{Format: FormatMarkdown})
	require.NoError(t, err)

	assert.Equal(t, FormatMarkdown, src.Format)
	assert.Nil(t, src.Doc)
	require.Len(t, src.Tables, 2)

	first := src.Tables[0]
	require.Len(t, first.Rows, 4)
	assert.Equal(t, []string{"name", "qty"}, first.Rows[0].Cells)
	assert.True(t, first.Rows[1].Separator)
	assert.Equal(t, []string{"apple", "3"}, first.Rows[2].Cells)
	assert.Equal(t, []string{"kiwi", "12"}, first.Rows[3].Cells)

	// Inline markup flattens to plain text.
	second := src.Tables[1]
	assert.Equal(t, []string{"bold text", "code"}, second.Rows[0].Cells)
	assert.Equal(t, []string{"plain", "x"}, second.Rows[2].Cells)
}

func TestLoadMarkdownRendersAsPipeText(t *testing.T) {
	src, err := LoadString(markdownFixture, Options{Format: FormatMarkdown})
	require.NoError(t, err)
	require.Len(t, src.Tables, 2)

	want := "| name  | qty |\n" +
		"|-------+-----|\n" +
		"| apple | 3   |\n" +
		"| kiwi  | 12  |"
	assert.Equal(t, want, src.Tables[0].String())
}

func TestLoadMarkdownAutoDetected(t *testing.T) {
	input := "| a | b |\n| --- | --- |\n| 1 | 2 |\n"
	src, err := LoadString(input, Options{})
	require.NoError(t, err)
	assert.Equal(t, FormatMarkdown, src.Format)
	require.Len(t, src.Tables, 1)
	assert.Equal(t, [][]string{{"a", "b"}, {"1", "2"}}, src.Tables[0].DataRows())
}

func TestLoadMarkdownNoTables(t *testing.T) {
	src, err := LoadString("# Title\n\nonly prose here\n", Options{Format: FormatMarkdown})
	require.NoError(t, err)
	assert.Equal(t, FormatMarkdown, src.Format)
	assert.Empty(t, src.Tables)
}

func TestLoadMarkdownHeaderOnlyTable(t *testing.T) {
	src, err := LoadString("| a | b |\n| --- | --- |\n", Options{Format: FormatMarkdown})
	require.NoError(t, err)
	require.Len(t, src.Tables, 1)
	rows := src.Tables[0].Rows
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"a", "b"}, rows[0].Cells)
	assert.True(t, rows[1].Separator)
}
