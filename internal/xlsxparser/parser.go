// =============================================================================
// csv2wiki - XLSX Row Source
// =============================================================================
//
// This module reads a worksheet from an XLSX workbook and produces the same
// types.Table the CSV parser produces. Spreadsheets exported to CSV often lose
// their encoding or quoting along the way, so reading the workbook directly
// is offered as an alternative input.
//
// SHEET SELECTION:
//   The configured sheet name is used when present; otherwise the first sheet
//   in workbook order is read.
//
// =============================================================================

package xlsxparser

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/gtback/ots-tools/internal/config"
	"github.com/gtback/ots-tools/internal/csvparser"
	"github.com/gtback/ots-tools/internal/types"
)

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads one worksheet of an XLSX file.
//
// PARAMETERS:
//   - filePath: The path to the XLSX file.
//   - settings: The source settings; only Sheet is used.
//
// RETURNS:
//   - The parsed table.
//   - An error if the workbook cannot be opened or the sheet does not exist.
func Parse(filePath string, settings config.SourceConfig) (*types.Table, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	table, err := parseWorkbook(f, settings.Sheet)
	if err != nil {
		return nil, err
	}
	table.Source = filePath
	return table, nil
}

// parseWorkbook resolves the sheet and converts its rows.
func parseWorkbook(f *excelize.File, sheet string) (*types.Table, error) {
	sheetName, err := resolveSheet(f, sheet)
	if err != nil {
		return nil, err
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheetName, err)
	}

	padRows(rows)

	records := make([]csvparser.Record, len(rows))
	for i, cells := range rows {
		records[i] = csvparser.Record{Line: i + 1, Cells: cells}
	}

	table, err := csvparser.BuildTable(records)
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", sheetName, err)
	}
	return table, nil
}

// padRows extends data rows to the header width. excelize drops trailing
// empty cells, which would otherwise turn the last non-empty cell into the
// category column. An empty sheet row becomes a row of empty cells, the
// same record a CSV export of the sheet contains.
func padRows(rows [][]string) {
	if len(rows) == 0 {
		return
	}
	width := len(rows[0])
	for i := 1; i < len(rows); i++ {
		for len(rows[i]) < width {
			rows[i] = append(rows[i], "")
		}
	}
}

// resolveSheet returns the sheet to read. An explicit name must exist.
func resolveSheet(f *excelize.File, sheet string) (string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", fmt.Errorf("workbook has no sheets")
	}

	if sheet == "" {
		return sheets[0], nil
	}

	for _, name := range sheets {
		if name == sheet {
			return name, nil
		}
	}

	return "", fmt.Errorf("sheet %q not found (available: %v)", sheet, sheets)
}
