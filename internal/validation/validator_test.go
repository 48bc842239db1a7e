package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gtback/ots-tools/internal/types"
)

func table(headers []string, rows ...[]string) *types.Table {
	t := &types.Table{Headers: headers}
	for i, cells := range rows {
		t.Rows = append(t.Rows, types.Row{Index: i + 1, Line: i + 2, Cells: cells})
	}
	return t
}

func rules(errs []*ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Rule
	}
	return out
}

func TestValidate_Clean(t *testing.T) {
	tbl := table([]string{"Name", "Summary", "Category"},
		[]string{"Solar", "Panels", "Energy"},
		[]string{"Wind", "", "Energy"},
		[]string{"Short"},
	)

	result := Validate(tbl, ValidationOptions{TitlePrefix: "Proposal"})
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 3, result.RowsValidated)
}

func TestValidate_NoHeader(t *testing.T) {
	result := Validate(&types.Table{}, ValidationOptions{TitlePrefix: "Proposal"})
	require.False(t, result.IsValid)
	assert.Equal(t, []string{RuleHeader}, rules(result.Errors))

	result = Validate(nil, ValidationOptions{})
	assert.False(t, result.IsValid)
}

func TestValidate_Rules(t *testing.T) {
	tests := []struct {
		name      string
		row       []string
		wantRules []string
		wantValid bool
	}{
		{"row longer than header", []string{"A", "b", "c", "extra"}, []string{RuleRowLength}, false},
		{"forbidden title chars", []string{"A [draft]", "b", "c"}, []string{RuleTitleChars}, false},
		{"forbidden category chars", []string{"A", "b", "x|y"}, []string{RuleCategoryChars}, false},
		{"empty first cell", []string{"", "b", "c"}, []string{RuleEmptyTitle}, true},
		{"single cell is also the category", []string{"{A}"}, []string{RuleTitleChars, RuleCategoryChars}, false},
		{"whitespace category", []string{"A", "b", "  "}, []string{RuleBlankCategory}, false},
		{"empty category", []string{"A", "b", ""}, []string{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := table([]string{"Name", "Summary", "Category"}, tt.row)
			result := Validate(tbl, ValidationOptions{TitlePrefix: "Proposal"})
			assert.Equal(t, tt.wantRules, rules(result.Errors))
			assert.Equal(t, tt.wantValid, result.IsValid)
		})
	}
}

func TestValidate_DuplicateTitles(t *testing.T) {
	// Row indexes normally keep titles unique; a repeated index forces a collision.
	tbl := &types.Table{
		Headers: []string{"Name", "Category"},
		Rows: []types.Row{
			{Index: 1, Line: 2, Cells: []string{"A", "x"}},
			{Index: 1, Line: 5, Cells: []string{"A", "y"}},
		},
	}

	result := Validate(tbl, ValidationOptions{TitlePrefix: "Proposal"})
	assert.True(t, result.IsValid)
	require.Len(t, result.Warnings(), 1)
	w := result.Warnings()[0]
	assert.Equal(t, RuleDuplicateTitle, w.Rule)
	assert.Equal(t, 5, w.Line)
	assert.Contains(t, w.Message, "line 2")
}

func TestValidate_TreatWarningsAsErrors(t *testing.T) {
	tbl := table([]string{"Name", "Category"}, []string{"", "x"})

	result := Validate(tbl, ValidationOptions{TitlePrefix: "Proposal", TreatWarningsAsErrors: true})
	assert.False(t, result.IsValid)
	assert.Equal(t, 1, result.ErrorCount)
	assert.Zero(t, result.WarningCount)
	assert.Len(t, result.Fatal(), 1)
}

func TestValidationError_Error(t *testing.T) {
	e := &ValidationError{
		Severity: SeverityError,
		Line:     4,
		Column:   "Name",
		Value:    "A#B",
		Message:  "bad",
	}
	assert.Equal(t, "[ERROR] line 4, column 'Name': bad (value: 'A#B')", e.Error())

	e = &ValidationError{Severity: SeverityWarning, Message: "file has no header row"}
	assert.Equal(t, "[WARNING]: file has no header row", e.Error())
}

func TestFormatErrorsAndWriteErrorLog(t *testing.T) {
	assert.Equal(t, "No validation errors.", FormatErrors(nil))

	errs := []*ValidationError{
		{Severity: SeverityError, Line: 2, Message: "one"},
		{Severity: SeverityWarning, Line: 3, Message: "two"},
	}
	formatted := FormatErrors(errs)
	assert.Contains(t, formatted, "2 finding(s)")
	assert.Contains(t, formatted, "1. [ERROR] line 2: one")
	assert.Contains(t, formatted, "2. [WARNING] line 3: two")

	path := filepath.Join(t.TempDir(), "validation.log")
	require.NoError(t, WriteErrorLog(errs, path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, formatted, string(data))
}
