package mediawiki

import (
	"context"
	"encoding/json"
	"fmt"

	"cgt.name/pkg/go-mwclient/params"
	"github.com/antonholmquist/jason"
)

// SectionNew is the section value that appends a new section to a page.
const SectionNew = "new"

// EditRequest describes one action=edit call.
type EditRequest struct {
	Title string
	Text  string

	// Section is "" for a whole-page edit, "new" to append a section, or a
	// section number. An indexed edit replaces the heading too, so Text
	// should start with the heading.
	Section string

	// SectionTitle is the heading for Section == "new".
	SectionTitle string

	Summary string
}

// Edit saves page content. A refused edit is returned as *EditFailure; an
// API error object (bad section, bad token, permissions) as *APIError.
//
// The request goes through Post rather than go-mwclient's Edit so that the
// edit result object can be inspected field by field.
func (c *Client) Edit(ctx context.Context, req EditRequest) error {
	token, err := c.csrf(ctx)
	if err != nil {
		return err
	}

	p := params.Values{
		"action": "edit",
		"title":  req.Title,
		"text":   req.Text,
		"token":  token,
	}
	if req.Section != "" {
		p["section"] = req.Section
	}
	if req.SectionTitle != "" {
		p["sectiontitle"] = req.SectionTitle
	}
	if req.Summary != "" {
		p["summary"] = req.Summary
	}

	resp, err := c.post(ctx, p)
	if err != nil {
		return err
	}
	return editResult(req.Title, resp)
}

// editResult turns the "edit" object of a response into nil or an
// *EditFailure.
func editResult(title string, resp *jason.Object) error {
	edit, err := resp.GetObject("edit")
	if err != nil {
		return &EditFailure{Title: title, Result: "no result", Err: fmt.Errorf("failed to decode edit response: %w", err)}
	}

	result, err := edit.GetString("result")
	if err != nil {
		return &EditFailure{Title: title, Result: "no result", Err: fmt.Errorf("failed to decode edit result: %w", err)}
	}
	if result == "Success" {
		return nil
	}

	details := make(map[string]string)
	for k, v := range edit.Map() {
		switch k {
		case "result", "title", "pageid", "contentmodel":
			continue
		}
		details[k] = valueText(v)
	}
	return &EditFailure{Title: title, Result: result, Details: details}
}

// valueText renders a response value for error messages: strings as-is,
// everything else as JSON.
func valueText(v *jason.Value) string {
	if s, err := v.String(); err == nil {
		return s
	}
	b, err := json.Marshal(v.Interface())
	if err != nil {
		return fmt.Sprintf("%v", v.Interface())
	}
	return string(b)
}

// Delete removes a page.
func (c *Client) Delete(ctx context.Context, title, reason string) error {
	token, err := c.csrf(ctx)
	if err != nil {
		return err
	}

	p := params.Values{
		"action": "delete",
		"title":  title,
		"token":  token,
	}
	if reason != "" {
		p["reason"] = reason
	}

	_, err = c.post(ctx, p)
	return err
}

// SearchResult is one hit of list=search.
type SearchResult struct {
	Namespace int
	Title     string
	PageID    int
}

// Search runs a full-text search in the main namespace and follows
// continuation until every hit has been returned. A continuation page that
// brings no new titles is treated as a loop and fails the search.
func (c *Client) Search(ctx context.Context, query string) ([]SearchResult, error) {
	q := c.mw.NewQuery(params.Values{
		"action":      "query",
		"list":        "search",
		"srsearch":    query,
		"srwhat":      "text",
		"srnamespace": "0",
		"srlimit":     "max",
	})

	var results []SearchResult
	seen := make(map[string]bool)

	for batch := 0; ; batch++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !q.Next() {
			break
		}

		resp := q.Resp()
		hits, err := resp.GetObjectArray("query", "search")
		if err != nil {
			return nil, fmt.Errorf("failed to decode search results for %q: %w", query, err)
		}

		fresh := 0
		for _, hit := range hits {
			title, err := hit.GetString("title")
			if err != nil {
				return nil, fmt.Errorf("failed to decode search hit for %q: %w", query, err)
			}
			ns, _ := hit.GetInt64("ns")
			pageID, _ := hit.GetInt64("pageid")

			if !seen[title] {
				seen[title] = true
				fresh++
			}
			results = append(results, SearchResult{Namespace: int(ns), Title: title, PageID: int(pageID)})
		}

		if _, err := resp.GetObject("continue"); err == nil && batch > 0 && fresh == 0 {
			return nil, fmt.Errorf("search for %q: wiki repeated continuation", query)
		}
	}

	if err := q.Err(); err != nil {
		return nil, fmt.Errorf("failed to search for %q: %w", query, wrapError("query", err))
	}
	return results, nil
}
