// =============================================================================
// csv2wiki - CSV Parser Module
// =============================================================================
//
// This module reads the input CSV into a types.Table. It handles:
//   - Different delimiters (comma, pipe, semicolon, tab)
//   - Non-UTF-8 encodings (any WHATWG label known to golang.org/x/text)
//   - A leading byte order mark, as written by spreadsheet exports
//   - Quoted fields spanning lines and rows with varying field counts
//
// ROW CONVENTION:
//   Record 1 is the header row. Every later record is a data row numbered by
//   its position after the header. A blank line produces no row but still
//   consumes its number, so titles stay stable when blank lines are present.
//   Records whose cells are all empty (",,") are ordinary rows.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/gtback/ots-tools/internal/config"
	"github.com/gtback/ots-tools/internal/types"
)

// ErrEmptyFile is returned when the input has no header row.
var ErrEmptyFile = errors.New("CSV file is empty")

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a CSV file and returns the parsed table.
//
// PARAMETERS:
//   - filePath: The path to the CSV file.
//   - settings: The source settings from the configuration.
//
// RETURNS:
//   - The parsed table.
//   - An error if the file cannot be opened, decoded or parsed.
func Parse(filePath string, settings config.SourceConfig) (*types.Table, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	table, err := ParseReader(file, settings)
	if err != nil {
		return nil, err
	}
	table.Source = filePath
	return table, nil
}

// ParseReader reads CSV records from r. The encoding in settings is applied
// before the records are split.
func ParseReader(r io.Reader, settings config.SourceConfig) (*types.Table, error) {
	decoded, err := newDecodingReader(bufio.NewReader(r), settings.Encoding)
	if err != nil {
		return nil, err
	}

	csvReader := csv.NewReader(decoded)
	configureReader(csvReader, settings)

	records, err := readRecords(csvReader)
	if err != nil {
		return nil, err
	}

	return BuildTable(records)
}

// Record is one raw input record and the line it starts on. A blank line is
// a Record without cells.
type Record struct {
	Line  int
	Cells []string
}

// readRecords reads every record. encoding/csv skips blank lines; they are
// put back as empty records so they keep their place in the numbering.
// Blank lines before the header are dropped.
func readRecords(reader *csv.Reader) ([]Record, error) {
	var records []Record
	nextLine := 0

	for {
		cells, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}

		line, _ := reader.FieldPos(0)
		if nextLine > 0 {
			for blank := nextLine; blank < line; blank++ {
				records = append(records, Record{Line: blank})
			}
		}
		records = append(records, Record{Line: line, Cells: cells})

		// A quoted last field may span lines.
		lastLine, _ := reader.FieldPos(len(cells) - 1)
		nextLine = lastLine + strings.Count(cells[len(cells)-1], "\n") + 1
	}

	return records, nil
}

// BuildTable turns raw records (header first) into a table. It is shared
// with the XLSX row source so both formats follow the same row convention.
func BuildTable(records []Record) (*types.Table, error) {
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}

	table := &types.Table{
		Headers: cleanHeaders(records[0].Cells),
		Rows:    make([]types.Row, 0, len(records)-1),
	}

	for i, record := range records[1:] {
		if len(record.Cells) == 0 {
			continue
		}
		cells := make([]string, len(record.Cells))
		copy(cells, record.Cells)
		table.Rows = append(table.Rows, types.Row{
			Index: i + 1,
			Line:  record.Line,
			Cells: cells,
		})
	}

	return table, nil
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings config.SourceConfig) {
	reader.Comma = delimiterRune(settings.Delimiter)

	// Rows may be shorter or longer than the header; validation decides
	// what is acceptable.
	reader.FieldsPerRecord = -1

	// Allow lazy quotes (quotes that don't follow strict CSV rules).
	reader.LazyQuotes = true
}

// delimiterRune maps a configured delimiter to the rune encoding/csv expects.
func delimiterRune(delimiter string) rune {
	switch delimiter {
	case "\\t", "\t", "tab", "TAB":
		return '\t'
	case "|", "pipe", "PIPE":
		return '|'
	case ";", "semicolon":
		return ';'
	case "":
		return ','
	default:
		return []rune(delimiter)[0]
	}
}

// newDecodingReader wraps r so that it yields UTF-8. A byte order mark at the
// start of the stream is honoured and removed whatever the configured
// encoding is.
func newDecodingReader(r io.Reader, encoding string) (io.Reader, error) {
	label := strings.TrimSpace(strings.ToLower(encoding))
	if label == "" {
		label = "utf-8"
	}

	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", encoding, err)
	}

	return transform.NewReader(r, unicode.BOMOverride(enc.NewDecoder())), nil
}

// cleanHeaders trims header values and names empty headers after their
// column position.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))

	for i, header := range headers {
		header = strings.TrimSpace(header)
		if header == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}
		cleaned[i] = header
	}

	return cleaned
}
