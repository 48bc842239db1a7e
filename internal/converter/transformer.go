// =============================================================================
// csv2wiki - Transformation Engine
// =============================================================================
//
// Optional per-column rules that rewrite cell values before pages are built.
// A rule names a column by its header and lists actions applied in order:
//
//   transformations:
//     - column: Status
//       actions:
//         - type: trim
//         - type: lookup
//           lookup_table: {"y": "Accepted", "n": "Rejected"}
//
// TRANSFORMATION TYPES:
//   - String manipulations (prepend, append, trim, case conversion)
//   - Substring and regular expression replacements
//   - Lookup table replacements
//   - Defaults for empty cells
//
// The first column feeds the page title and the last column the category, so
// a rule on either changes titles and categories too.
//
// =============================================================================

package converter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gtback/ots-tools/internal/config"
	"github.com/gtback/ots-tools/internal/types"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// =============================================================================
// TRANSFORMER
// =============================================================================

// Transformer applies transformation rules to cell values.
type Transformer struct {
	rules   map[string][]config.TransformationAction
	regexes map[string]*regexp.Regexp
}

// NewTransformer checks the rules and compiles their regular expressions.
// Rules for the same column are concatenated in order.
func NewTransformer(rules []config.TransformationRule) (*Transformer, error) {
	t := &Transformer{
		rules:   make(map[string][]config.TransformationAction),
		regexes: make(map[string]*regexp.Regexp),
	}

	for _, rule := range rules {
		for _, action := range rule.Actions {
			if !knownAction(action.Type) {
				return nil, fmt.Errorf("column %q: unknown transformation type: %s", rule.Column, action.Type)
			}
			if action.Type == "regex_replace" && action.Find != "" {
				if _, ok := t.regexes[action.Find]; !ok {
					re, err := regexp.Compile(action.Find)
					if err != nil {
						return nil, fmt.Errorf("column %q: invalid regex pattern: %w", rule.Column, err)
					}
					t.regexes[action.Find] = re
				}
			}
		}
		t.rules[rule.Column] = append(t.rules[rule.Column], rule.Actions...)
	}

	return t, nil
}

// Empty reports whether the transformer has no rules.
func (t *Transformer) Empty() bool {
	return t == nil || len(t.rules) == 0
}

// Transform applies the rules for one column to a value.
//
// PARAMETERS:
//   - column: The header of the column the value came from.
//   - value: The current value of the cell.
//
// RETURNS:
//   - The transformed value (unchanged when the column has no rule).
func (t *Transformer) Transform(column, value string) string {
	if t.Empty() {
		return value
	}
	result := value
	for _, action := range t.rules[column] {
		result = t.apply(result, action)
	}
	return result
}

// TransformTable returns a copy of the table with every rule applied.
// The input table is not modified.
func (t *Transformer) TransformTable(table *types.Table) *types.Table {
	if t.Empty() {
		return table
	}

	out := &types.Table{
		Headers: append([]string(nil), table.Headers...),
		Source:  table.Source,
		Rows:    make([]types.Row, len(table.Rows)),
	}
	for i, row := range table.Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = t.Transform(table.HeaderAt(j), cell)
		}
		out.Rows[i] = types.Row{Index: row.Index, Line: row.Line, Cells: cells}
	}
	return out
}

// apply applies a single transformation action.
//
// SUPPORTED TRANSFORMATIONS:
//   See the switch statement below. Types are checked by NewTransformer, so
//   the default branch is unreachable in practice.
func (t *Transformer) apply(value string, action config.TransformationAction) string {
	switch action.Type {

	// =========================================================================
	// STRING MANIPULATIONS
	// =========================================================================

	case "prepend_string":
		return action.Value + value

	case "append_string":
		return value + action.Value

	case "trim":
		return strings.TrimSpace(value)

	case "trim_left":
		if action.Value != "" {
			return strings.TrimLeft(value, action.Value)
		}
		return strings.TrimLeft(value, " \t\n\r")

	case "trim_right":
		if action.Value != "" {
			return strings.TrimRight(value, action.Value)
		}
		return strings.TrimRight(value, " \t\n\r")

	case "uppercase":
		return strings.ToUpper(value)

	case "lowercase":
		return strings.ToLower(value)

	case "normalize_whitespace":
		return strings.TrimSpace(whitespaceRun.ReplaceAllString(value, " "))

	// =========================================================================
	// REPLACEMENTS
	// =========================================================================

	case "replace":
		// EXAMPLE:
		//   Input: "hello-world"
		//   Action: replace with find "-" and value "_"
		//   Output: "hello_world"
		if action.Find == "" {
			return value
		}
		return strings.ReplaceAll(value, action.Find, action.Value)

	case "regex_replace":
		// EXAMPLE:
		//   Input: "See ticket #42"
		//   Action: regex_replace with find "#(\d+)" and value "No. $1"
		//   Output: "See ticket No. 42"
		re, ok := t.regexes[action.Find]
		if !ok {
			return value
		}
		return re.ReplaceAllString(value, action.Value)

	// =========================================================================
	// LOOKUP TABLE REPLACEMENTS
	// =========================================================================

	case "lookup":
		if replacement, exists := action.LookupTable[value]; exists {
			return replacement
		}
		return value

	case "lookup_with_default":
		// The default value is specified in action.Value.
		if replacement, exists := action.LookupTable[value]; exists {
			return replacement
		}
		return action.Value

	case "if_empty_use_default":
		if strings.TrimSpace(value) == "" {
			return action.Value
		}
		return value

	default:
		return value
	}
}

func knownAction(kind string) bool {
	switch kind {
	case "prepend_string", "append_string",
		"trim", "trim_left", "trim_right",
		"uppercase", "lowercase", "normalize_whitespace",
		"replace", "regex_replace",
		"lookup", "lookup_with_default", "if_empty_use_default":
		return true
	}
	return false
}
