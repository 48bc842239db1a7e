package converter

import (
	"github.com/gtback/ots-tools/internal/types"
	"github.com/gtback/ots-tools/internal/wikitext"
)

// Section is one section write on a page.
type Section struct {
	// Index is the section number edited first: the ordinal of this section
	// among the non-empty sections written to the page.
	Index int

	// Header names the section. It comes from the header row.
	Header string

	// Body is the section content without its heading.
	Body string

	// Category is set on the section built from the last cell of the row.
	Category string
}

// Text is the content sent for an indexed section edit, heading included.
func (s Section) Text() string {
	return wikitext.Section(s.Header, s.Body)
}

// Page is everything written for one data row.
type Page struct {
	Row   int
	Line  int
	Title string

	// Sections are written in column order. A page with no sections is
	// saved once with empty text so the TOC link resolves.
	Sections []Section

	Category string
}

// Plan is the full set of writes for one table.
type Plan struct {
	Pages []Page

	TOCTitle string
	TOCText  string

	// Categories holds distinct last-column values in first-seen order.
	Categories []string
}

// Titles returns the page titles in row order.
func (p *Plan) Titles() []string {
	titles := make([]string, len(p.Pages))
	for i, page := range p.Pages {
		titles[i] = page.Title
	}
	return titles
}

// SectionCount returns the number of section writes in the plan.
func (p *Plan) SectionCount() int {
	n := 0
	for _, page := range p.Pages {
		n += len(page.Sections)
	}
	return n
}

// BuildPlan derives pages, the TOC and the category list from a table.
//
// PARAMETERS:
//   - table: The transformed table.
//   - titlePrefix: Prefix of every page title ("Proposal").
//   - tocTitle: Title of the table-of-contents page.
//
// RETURNS:
//   - The plan. BuildPlan never performs I/O.
func BuildPlan(table *types.Table, titlePrefix, tocTitle string) *Plan {
	plan := &Plan{TOCTitle: tocTitle}
	seen := make(map[string]bool)

	for _, row := range table.Rows {
		page := Page{
			Row:   row.Index,
			Line:  row.Line,
			Title: wikitext.PageTitle(titlePrefix, row.Index, row.First()),
		}

		// The first cell names the page. In a one-cell row it is also the
		// last cell, and so the category.
		last := len(row.Cells) - 1
		for col := 0; col < len(row.Cells); col++ {
			cell := row.Cells[col]
			if cell == "" || (col == 0 && col != last) {
				continue
			}

			section := Section{
				Index:  len(page.Sections) + 1,
				Header: table.HeaderAt(col),
				Body:   cell,
			}
			if col == last {
				section.Body = wikitext.CategoryLink(cell)
				section.Category = cell
				page.Category = cell
				if !seen[cell] {
					seen[cell] = true
					plan.Categories = append(plan.Categories, cell)
				}
			}
			page.Sections = append(page.Sections, section)
		}

		plan.Pages = append(plan.Pages, page)
	}

	plan.TOCText = wikitext.TOC(plan.Titles())
	return plan
}
