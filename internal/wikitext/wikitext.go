// =============================================================================
// csv2wiki - Wikitext Writer Module
// =============================================================================
//
// This module renders the small pieces of wikitext the importer writes:
//
//   == Summary ==                 <- section heading (indexed section edits)
//   Put panels everywhere         <- cell content, sent verbatim
//
//   [[Category:Energy]]           <- category marker for the last column
//
//   * [[Proposal_1: Solar roofs]] <- one TOC line per created page
//
// Cell content is not escaped: the CSV is expected to carry wikitext.
//
// =============================================================================

package wikitext

import (
	"strconv"
	"strings"
)

// CategoryNamespace is the canonical name of the category namespace.
const CategoryNamespace = "Category"

// ForbiddenTitleChars are characters MediaWiki never allows in a page title.
const ForbiddenTitleChars = "#<>[]|{}"

// PageTitle builds the title of the page created for a data row:
// "<prefix>_<index>: <name>".
func PageTitle(prefix string, index int, name string) string {
	return prefix + "_" + strconv.Itoa(index) + ": " + name
}

// Heading renders a level-2 section heading followed by a newline.
func Heading(title string) string {
	return "== " + strings.TrimSpace(title) + " ==\n"
}

// Section renders a complete section: heading plus body. This is the text an
// indexed section edit must send, since it replaces the heading as well.
func Section(title, body string) string {
	return Heading(title) + body
}

// CategoryTitle returns the page title of a category page.
func CategoryTitle(category string) string {
	return CategoryNamespace + ":" + category
}

// CategoryLink renders the marker that places a page in a category.
func CategoryLink(category string) string {
	return "[[" + CategoryTitle(category) + "]]"
}

// PageLink renders an internal link to a page.
func PageLink(title string) string {
	return "[[" + title + "]]"
}

// TOCLine renders one table-of-contents entry.
func TOCLine(title string) string {
	return "* " + PageLink(title) + " \n"
}

// TOC renders the whole table-of-contents body, one line per title, in order.
func TOC(titles []string) string {
	var b strings.Builder
	for _, title := range titles {
		b.WriteString(TOCLine(title))
	}
	return b.String()
}

// InvalidTitleChars returns the forbidden characters found in title, in
// order of first appearance, or "" when the title is acceptable.
func InvalidTitleChars(title string) string {
	var found []rune
	for _, r := range title {
		if strings.ContainsRune(ForbiddenTitleChars, r) && !containsRune(found, r) {
			found = append(found, r)
		}
	}
	return string(found)
}

func containsRune(rs []rune, r rune) bool {
	for _, x := range rs {
		if x == r {
			return true
		}
	}
	return false
}
