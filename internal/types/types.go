// =============================================================================
// csv2wiki - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are produced by:
//   - csvparser
//   - xlsxparser
//
// and consumed by:
//   - validation
//   - converter
//
// =============================================================================

package types

// =============================================================================
// TABLE TYPES
// =============================================================================

// Table is a header row plus the data rows read from one input file.
// Both row sources (CSV and XLSX) produce a Table, so everything downstream
// works on cell positions rather than on the file format.
type Table struct {
	// Headers contains the header row. Header i names the section built from
	// column i of every data row.
	Headers []string

	// Rows contains the data rows in file order. Blank lines are not
	// included but still consume an index.
	Rows []Row

	// Source is the path of the file the table was read from.
	Source string
}

// Row represents a single data row.
type Row struct {
	// Index is the 1-based position of the record after the header, blank
	// lines included. It is the number used in the page title.
	Index int

	// Line is the line (CSV) or sheet row (XLSX) the record starts on.
	// Useful for error reporting.
	Line int

	// Cells contains the cell values in column order. A row may be shorter
	// or longer than the header.
	Cells []string
}

// First returns the first cell of the row, or "" for an empty row.
func (r Row) First() string {
	if len(r.Cells) == 0 {
		return ""
	}
	return r.Cells[0]
}

// Last returns the last cell of the row, or "" for an empty row.
func (r Row) Last() string {
	if len(r.Cells) == 0 {
		return ""
	}
	return r.Cells[len(r.Cells)-1]
}

// HeaderAt returns the header for column i, or "" when the header row is
// shorter than i+1.
func (t *Table) HeaderAt(i int) string {
	if i < 0 || i >= len(t.Headers) {
		return ""
	}
	return t.Headers[i]
}
