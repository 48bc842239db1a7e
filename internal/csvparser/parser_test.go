package csvparser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gtback/ots-tools/internal/config"
)

func defaultSettings() config.SourceConfig {
	return config.SourceConfig{Delimiter: ",", Encoding: "utf-8"}
}

func TestParseReader_HeaderAndRows(t *testing.T) {
	input := "Name,Summary,Budget,Category\n" +
		"Solar roofs,\"Put panels, everywhere\",100,Energy\n" +
		"Bike lanes,,50,Transport\n"

	table, err := ParseReader(strings.NewReader(input), defaultSettings())
	require.NoError(t, err)

	assert.Equal(t, []string{"Name", "Summary", "Budget", "Category"}, table.Headers)
	require.Len(t, table.Rows, 2)

	assert.Equal(t, 1, table.Rows[0].Index)
	assert.Equal(t, 2, table.Rows[0].Line)
	assert.Equal(t, []string{"Solar roofs", "Put panels, everywhere", "100", "Energy"}, table.Rows[0].Cells)

	assert.Equal(t, 2, table.Rows[1].Index)
	assert.Equal(t, "", table.Rows[1].Cells[1], "empty cells are kept as empty strings")
	assert.Equal(t, "Transport", table.Rows[1].Last())
}

func TestParseReader_BlankLinesConsumeIndex(t *testing.T) {
	input := "Name,Body,Cat\nA,x,E\n\nB,y,E\n,,\nC,z,F\n"

	table, err := ParseReader(strings.NewReader(input), defaultSettings())
	require.NoError(t, err)

	require.Len(t, table.Rows, 4)
	tests := []struct {
		first string
		index int
		line  int
	}{
		{"A", 1, 2},
		{"B", 3, 4},
		{"", 4, 5},
		{"C", 5, 6},
	}
	for i, tt := range tests {
		assert.Equal(t, tt.first, table.Rows[i].First(), "row %d", i)
		assert.Equal(t, tt.index, table.Rows[i].Index, "row %d", i)
		assert.Equal(t, tt.line, table.Rows[i].Line, "row %d", i)
	}
	assert.Equal(t, []string{"", "", ""}, table.Rows[2].Cells)
}

func TestParseReader_MultilineFieldKeepsLineNumbers(t *testing.T) {
	input := "Name,Body\nA,\"two\nlines\"\n\n\nB,y\r\n"

	table, err := ParseReader(strings.NewReader(input), defaultSettings())
	require.NoError(t, err)

	require.Len(t, table.Rows, 2)
	assert.Equal(t, "two\nlines", table.Rows[0].Cells[1])
	assert.Equal(t, 1, table.Rows[0].Index)
	assert.Equal(t, 4, table.Rows[1].Index)
	assert.Equal(t, 6, table.Rows[1].Line)
}

func TestParseReader_LeadingBlankLinesBeforeHeader(t *testing.T) {
	table, err := ParseReader(strings.NewReader("\n\nA,B\n1,2\n"), defaultSettings())
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, table.Headers)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, 1, table.Rows[0].Index)
	assert.Equal(t, 4, table.Rows[0].Line)
}

func TestParseReader_VariableFieldCounts(t *testing.T) {
	input := "A,B,C\n1\n1,2,3,4\n"

	table, err := ParseReader(strings.NewReader(input), defaultSettings())
	require.NoError(t, err)

	require.Len(t, table.Rows, 2)
	assert.Len(t, table.Rows[0].Cells, 1)
	assert.Len(t, table.Rows[1].Cells, 4)
}

func TestParseReader_EmptyHeadersAreNamed(t *testing.T) {
	table, err := ParseReader(strings.NewReader(" Title ,,Cat\nx,y,z\n"), defaultSettings())
	require.NoError(t, err)
	assert.Equal(t, []string{"Title", "Column_2", "Cat"}, table.Headers)
}

func TestParseReader_Delimiters(t *testing.T) {
	tests := []struct {
		name      string
		delimiter string
		input     string
	}{
		{"pipe", "|", "A|B\n1|2\n"},
		{"pipe word", "pipe", "A|B\n1|2\n"},
		{"tab", "tab", "A\tB\n1\t2\n"},
		{"escaped tab", "\\t", "A\tB\n1\t2\n"},
		{"semicolon", ";", "A;B\n1;2\n"},
		{"default", "", "A,B\n1,2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := config.SourceConfig{Delimiter: tt.delimiter}
			table, err := ParseReader(strings.NewReader(tt.input), settings)
			require.NoError(t, err)
			assert.Equal(t, []string{"A", "B"}, table.Headers)
			require.Len(t, table.Rows, 1)
			assert.Equal(t, []string{"1", "2"}, table.Rows[0].Cells)
		})
	}
}

func TestParseReader_Encodings(t *testing.T) {
	t.Run("utf-8 BOM is stripped", func(t *testing.T) {
		input := "\xEF\xBB\xBFName,Cat\nCafé,Food\n"
		table, err := ParseReader(strings.NewReader(input), defaultSettings())
		require.NoError(t, err)
		assert.Equal(t, "Name", table.Headers[0])
		assert.Equal(t, "Café", table.Rows[0].First())
	})

	t.Run("windows-1252", func(t *testing.T) {
		// 0xE9 is "é" in windows-1252.
		input := "Name,Cat\nCaf\xE9,Food\n"
		settings := config.SourceConfig{Delimiter: ",", Encoding: "windows-1252"}
		table, err := ParseReader(strings.NewReader(input), settings)
		require.NoError(t, err)
		assert.Equal(t, "Café", table.Rows[0].First())
	})

	t.Run("unknown label", func(t *testing.T) {
		settings := config.SourceConfig{Encoding: "klingon-8"}
		_, err := ParseReader(strings.NewReader("a\n"), settings)
		require.ErrorContains(t, err, "unsupported encoding")
	})
}

func TestParse_FileErrors(t *testing.T) {
	_, err := Parse(filepath.Join(t.TempDir(), "missing.csv"), defaultSettings())
	require.ErrorContains(t, err, "failed to open file")

	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	_, err = Parse(path, defaultSettings())
	require.ErrorIs(t, err, ErrEmptyFile)
}

func TestParse_SetsSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.csv")
	require.NoError(t, os.WriteFile(path, []byte("A,B\n1,2\n"), 0o644))

	table, err := Parse(path, defaultSettings())
	require.NoError(t, err)
	assert.Equal(t, path, table.Source)
}
