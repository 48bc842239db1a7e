// =============================================================================
// csv2wiki - Validation Engine
// =============================================================================
//
// This module checks a parsed table before anything is written to the wiki.
// A run that would fail halfway through (leaving the wiki partially modified)
// is caught here instead:
//   - The table must have a header row
//   - No data row may be longer than the header (a section needs a title)
//   - Derived page titles and categories must be legal MediaWiki titles
//   - A category cell may not be whitespace only
//
// Some problems are only worth a warning:
//   - Two rows deriving the same title (the later row edits the same page)
//   - A row with an empty first cell (the title ends in ": ")
//
// ERROR HANDLING:
//   - Errors are collected, not returned one at a time
//   - Each error includes the source line, column and offending value
//   - Warnings never stop processing unless TreatWarningsAsErrors is set
//     (validation.warnings_as_errors in the configuration)
//
// =============================================================================

package validation

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/gtback/ots-tools/internal/types"
	"github.com/gtback/ots-tools/internal/wikitext"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Rule names used in ValidationError.Rule.
const (
	RuleHeader         = "header"
	RuleRowLength      = "row_length"
	RuleTitleChars     = "title_chars"
	RuleCategoryChars  = "category_chars"
	RuleBlankCategory  = "blank_category"
	RuleDuplicateTitle = "duplicate_title"
	RuleEmptyTitle     = "empty_title"
)

// ValidationError represents a single validation finding.
type ValidationError struct {
	// Severity is SeverityError (fatal) or SeverityWarning.
	Severity string

	// Rule is the rule that was violated.
	Rule string

	// Line is the record number in the source file (header = 1).
	// Zero for table-level findings.
	Line int

	// Row is the data row ordinal used in the page title.
	Row int

	// Column is the header of the offending column, if any.
	Column string

	// Value is the offending value.
	Value string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s]", strings.ToUpper(e.Severity))
	if e.Line > 0 {
		fmt.Fprintf(&b, " line %d", e.Line)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, ", column '%s'", e.Column)
	}
	fmt.Fprintf(&b, ": %s", e.Message)
	if e.Value != "" {
		fmt.Fprintf(&b, " (value: '%s')", e.Value)
	}
	return b.String()
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult contains the results of validation.
type ValidationResult struct {
	// IsValid is true if there are no fatal errors.
	IsValid bool

	// Errors contains all findings, warnings included, in row order.
	Errors []*ValidationError

	ErrorCount   int
	WarningCount int

	// RowsValidated is the number of data rows checked.
	RowsValidated int
}

// Fatal returns only the findings with error severity.
func (r *ValidationResult) Fatal() []*ValidationError {
	var out []*ValidationError
	for _, e := range r.Errors {
		if e.Severity == SeverityError {
			out = append(out, e)
		}
	}
	return out
}

// Warnings returns only the findings with warning severity.
func (r *ValidationResult) Warnings() []*ValidationError {
	var out []*ValidationError
	for _, e := range r.Errors {
		if e.Severity == SeverityWarning {
			out = append(out, e)
		}
	}
	return out
}

func (r *ValidationResult) add(e *ValidationError) {
	r.Errors = append(r.Errors, e)
	if e.Severity == SeverityError {
		r.ErrorCount++
	} else {
		r.WarningCount++
	}
}

// =============================================================================
// VALIDATOR
// =============================================================================

// ValidationOptions contains options for validation.
type ValidationOptions struct {
	// TitlePrefix is the page title prefix used to derive titles.
	TitlePrefix string

	// TreatWarningsAsErrors promotes every warning to an error.
	// Default: false
	TreatWarningsAsErrors bool
}

// Validator validates tables.
type Validator struct {
	options ValidationOptions
}

// NewValidator creates a Validator with the given options.
func NewValidator(options ValidationOptions) *Validator {
	return &Validator{options: options}
}

// Validate validates a table with the given options.
//
// PARAMETERS:
//   - table: The parsed (and transformed) table.
//   - options: Title prefix and severity options.
//
// RETURNS:
//   - The validation result. Check IsValid before writing anything.
func Validate(table *types.Table, options ValidationOptions) *ValidationResult {
	return NewValidator(options).ValidateTable(table)
}

// ValidateTable runs every rule against the table.
func (v *Validator) ValidateTable(table *types.Table) *ValidationResult {
	result := &ValidationResult{}

	if table == nil || len(table.Headers) == 0 {
		result.add(v.finding(&ValidationError{
			Severity: SeverityError,
			Rule:     RuleHeader,
			Message:  "file has no header row",
		}))
		result.IsValid = false
		return result
	}

	firstLine := make(map[string]int)
	for _, row := range table.Rows {
		for _, e := range v.ValidateRow(table, row, firstLine) {
			result.add(e)
		}
		result.RowsValidated++
	}

	result.IsValid = result.ErrorCount == 0
	return result
}

// ValidateRow checks a single data row. seen maps derived titles to the line
// that first produced them and is updated in place; pass nil to skip the
// duplicate check.
func (v *Validator) ValidateRow(table *types.Table, row types.Row, seen map[string]int) []*ValidationError {
	var errs []*ValidationError

	if len(row.Cells) > len(table.Headers) {
		errs = append(errs, v.finding(&ValidationError{
			Severity: SeverityError,
			Rule:     RuleRowLength,
			Line:     row.Line,
			Row:      row.Index,
			Message: fmt.Sprintf("row has %d cells but the header has %d; extra cells have no section title",
				len(row.Cells), len(table.Headers)),
		}))
	}

	name := row.First()
	title := wikitext.PageTitle(v.options.TitlePrefix, row.Index, name)

	if strings.TrimSpace(name) == "" {
		errs = append(errs, v.finding(&ValidationError{
			Severity: SeverityWarning,
			Rule:     RuleEmptyTitle,
			Line:     row.Line,
			Row:      row.Index,
			Column:   table.HeaderAt(0),
			Message:  "first cell is empty",
		}))
	}

	if bad := wikitext.InvalidTitleChars(title); bad != "" {
		errs = append(errs, v.finding(&ValidationError{
			Severity: SeverityError,
			Rule:     RuleTitleChars,
			Line:     row.Line,
			Row:      row.Index,
			Column:   table.HeaderAt(0),
			Value:    name,
			Message:  fmt.Sprintf("page title contains forbidden characters %q", bad),
		}))
	}

	if category := row.Last(); category != "" {
		column := table.HeaderAt(len(row.Cells) - 1)
		if strings.TrimSpace(category) == "" {
			errs = append(errs, v.finding(&ValidationError{
				Severity: SeverityError,
				Rule:     RuleBlankCategory,
				Line:     row.Line,
				Row:      row.Index,
				Column:   column,
				Value:    category,
				Message:  "category is only whitespace",
			}))
		} else if bad := wikitext.InvalidTitleChars(category); bad != "" {
			errs = append(errs, v.finding(&ValidationError{
				Severity: SeverityError,
				Rule:     RuleCategoryChars,
				Line:     row.Line,
				Row:      row.Index,
				Column:   column,
				Value:    category,
				Message:  fmt.Sprintf("category contains forbidden characters %q", bad),
			}))
		}
	}

	if seen != nil {
		if line, dup := seen[title]; dup {
			errs = append(errs, v.finding(&ValidationError{
				Severity: SeverityWarning,
				Rule:     RuleDuplicateTitle,
				Line:     row.Line,
				Row:      row.Index,
				Value:    title,
				Message:  fmt.Sprintf("title already produced by line %d", line),
			}))
		} else {
			seen[title] = row.Line
		}
	}

	return errs
}

func (v *Validator) finding(e *ValidationError) *ValidationError {
	if v.options.TreatWarningsAsErrors {
		e.Severity = SeverityError
	}
	return e
}

// =============================================================================
// ERROR REPORTING
// =============================================================================

// FormatErrors formats validation errors for display.
func FormatErrors(errors []*ValidationError) string {
	if len(errors) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Validation completed with %d finding(s):\n\n", len(errors)))

	for i, err := range errors {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
	}

	return builder.String()
}

// WriteErrorLog writes validation errors to a log file.
//
// PARAMETERS:
//   - errors: The validation errors to write.
//   - filePath: The path to the output file.
//
// RETURNS:
//   - An error if writing fails.
func WriteErrorLog(errors []*ValidationError, filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create validation log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	if _, err := writer.WriteString(FormatErrors(errors)); err != nil {
		return fmt.Errorf("failed to write validation log: %w", err)
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to write validation log: %w", err)
	}
	return nil
}
