// Package mwtest provides an in-memory MediaWiki action API for tests.
//
// It implements just enough of api.php for csv2wiki: login/logout with a
// session cookie, login and CSRF tokens, whole-page and section edits,
// deletion, and paginated substring search. Section semantics follow
// MediaWiki: editing a section number that does not exist fails with
// "nosuchsection", and section=new appends (creating the page if needed).
package mwtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
)

const (
	sessionCookie = "mwsession"
	sessionValue  = "valid"

	// LoginToken is the token handed out by meta=tokens&type=login.
	LoginToken = "login-token+\\"
	// CSRFToken is the token handed out to logged-in sessions.
	CSRFToken = "csrf-token+\\"
	// AnonToken is the CSRF token MediaWiki gives anonymous sessions.
	AnonToken = "+\\"
)

// Call records one API request.
type Call struct {
	Action string
	Params url.Values
}

// Server is a fake wiki. Exported fields may be changed before the first
// request.
type Server struct {
	*httptest.Server

	// Username and Password are the only accepted credentials.
	Username string
	Password string

	// SearchPageSize is the number of hits per list=search response.
	SearchPageSize int

	// SpamPatterns makes edits whose text contains any pattern fail with
	// result "Failure" and a "spamblacklist" field.
	SpamPatterns []string

	mu    sync.Mutex
	pages map[string]*page
	calls []Call
}

type page struct {
	lead     string
	sections []section
}

type section struct {
	title string
	body  string
}

// NewServer starts a fake wiki that is closed when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		Username:       "admin",
		Password:       "secret",
		SearchPageSize: 10,
		pages:          make(map[string]*page),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// APIURL returns the api.php endpoint.
func (s *Server) APIURL() string {
	return s.URL + "/api.php"
}

// Site returns host:port, the form used in csv2wiki configuration.
func (s *Server) Site() string {
	return strings.TrimPrefix(s.URL, "http://")
}

// Seed creates or replaces a page with plain text and no sections.
func (s *Server) Seed(title, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[title] = &page{lead: text}
}

// Text returns the rendered wikitext of a page.
func (s *Server) Text(title string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pages[title]
	if !ok {
		return "", false
	}
	return p.render(), true
}

// SectionTitles returns the headings of a page in order.
func (s *Server) SectionTitles(title string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pages[title]
	if !ok {
		return nil
	}
	titles := make([]string, len(p.sections))
	for i, sec := range p.sections {
		titles[i] = sec.title
	}
	return titles
}

// Titles returns every page title, sorted.
func (s *Server) Titles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedTitles()
}

// Calls returns the recorded requests, optionally filtered by action.
func (s *Server) Calls(action string) []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Call
	for _, c := range s.calls {
		if action == "" || c.Action == action {
			out = append(out, c)
		}
	}
	return out
}

func (s *Server) sortedTitles() []string {
	titles := make([]string, 0, len(s.pages))
	for t := range s.pages {
		titles = append(titles, t)
	}
	sort.Strings(titles)
	return titles
}

func (p *page) render() string {
	var b strings.Builder
	b.WriteString(p.lead)
	for _, sec := range p.sections {
		if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
			b.WriteString("\n")
		}
		b.WriteString("== " + sec.title + " ==\n")
		b.WriteString(sec.body)
	}
	return b.String()
}

// ---------------------------------------------------------------------------
// HTTP handling
// ---------------------------------------------------------------------------

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	if !strings.HasSuffix(r.URL.Path, "/api.php") {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	form := cloneValues(r.Form)
	action := form.Get("action")
	s.calls = append(s.calls, Call{Action: action, Params: form})

	loggedIn := false
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value == sessionValue {
		loggedIn = true
	}

	switch action {
	case "query":
		s.handleQuery(w, form, loggedIn)
	case "login":
		s.handleLogin(w, form)
	case "logout":
		// Accepted with or without a token, by GET or POST.
		http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1})
		writeJSON(w, map[string]any{})
	case "edit":
		s.handleEdit(w, form, loggedIn)
	case "delete":
		s.handleDelete(w, form, loggedIn)
	default:
		writeError(w, "badvalue", fmt.Sprintf("Unrecognized value for parameter \"action\": %s.", action))
	}
}

func (s *Server) handleQuery(w http.ResponseWriter, form url.Values, loggedIn bool) {
	if form.Get("meta") == "tokens" {
		tokens := map[string]string{}
		switch form.Get("type") {
		case "login":
			tokens["logintoken"] = LoginToken
		default:
			if loggedIn {
				tokens["csrftoken"] = CSRFToken
			} else {
				tokens["csrftoken"] = AnonToken
			}
		}
		writeJSON(w, map[string]any{"batchcomplete": true, "query": map[string]any{"tokens": tokens}})
		return
	}

	if form.Get("list") == "search" {
		s.handleSearch(w, form)
		return
	}

	writeJSON(w, map[string]any{"batchcomplete": true})
}

func (s *Server) handleLogin(w http.ResponseWriter, form url.Values) {
	if form.Get("lgtoken") != LoginToken {
		writeJSON(w, map[string]any{"login": map[string]any{"result": "WrongToken"}})
		return
	}
	if form.Get("lgname") != s.Username || form.Get("lgpassword") != s.Password {
		writeJSON(w, map[string]any{"login": map[string]any{
			"result": "Failed",
			"reason": "Incorrect username or password entered. Please try again.",
		}})
		return
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: sessionValue, Path: "/"})
	writeJSON(w, map[string]any{"login": map[string]any{
		"result":     "Success",
		"lguserid":   1,
		"lgusername": s.Username,
	}})
}

func (s *Server) checkToken(w http.ResponseWriter, form url.Values, loggedIn bool) bool {
	if !loggedIn || form.Get("token") != CSRFToken {
		writeError(w, "badtoken", "Invalid CSRF token.")
		return false
	}
	return true
}

func (s *Server) handleEdit(w http.ResponseWriter, form url.Values, loggedIn bool) {
	if !s.checkToken(w, form, loggedIn) {
		return
	}

	title := form.Get("title")
	text := form.Get("text")

	for _, pattern := range s.SpamPatterns {
		if strings.Contains(text, pattern) {
			writeJSON(w, map[string]any{"edit": map[string]any{
				"result":        "Failure",
				"spamblacklist": pattern,
			}})
			return
		}
	}

	p := s.pages[title]
	switch sec := form.Get("section"); sec {
	case "":
		s.pages[title] = &page{lead: text}
	case "new":
		if p == nil {
			p = &page{}
			s.pages[title] = p
		}
		p.sections = append(p.sections, section{title: form.Get("sectiontitle"), body: text})
	default:
		n, err := strconv.Atoi(sec)
		if err != nil || n < 0 {
			writeError(w, "invalidsection", `The "section" parameter must be a valid section ID or "new".`)
			return
		}
		if n == 0 {
			if p == nil {
				p = &page{}
				s.pages[title] = p
			}
			p.lead = text
			break
		}
		if p == nil || n > len(p.sections) {
			writeError(w, "nosuchsection", fmt.Sprintf("There is no section %d.", n))
			return
		}
		p.sections[n-1] = parseSection(text, p.sections[n-1].title)
	}

	writeJSON(w, map[string]any{"edit": map[string]any{
		"result": "Success",
		"title":  title,
	}})
}

// parseSection splits "== Heading ==\nbody" into a section. Text without a
// heading line keeps the previous title.
func parseSection(text, previousTitle string) section {
	if !strings.HasPrefix(text, "=") {
		return section{title: previousTitle, body: text}
	}
	heading, body, _ := strings.Cut(text, "\n")
	return section{title: strings.TrimSpace(strings.Trim(heading, "=")), body: body}
}

func (s *Server) handleDelete(w http.ResponseWriter, form url.Values, loggedIn bool) {
	if !s.checkToken(w, form, loggedIn) {
		return
	}
	title := form.Get("title")
	if _, ok := s.pages[title]; !ok {
		writeError(w, "missingtitle", "The page you specified doesn't exist.")
		return
	}
	delete(s.pages, title)
	writeJSON(w, map[string]any{"delete": map[string]any{
		"title":  title,
		"reason": form.Get("reason"),
	}})
}

func (s *Server) handleSearch(w http.ResponseWriter, form url.Values) {
	needle := searchKey(form.Get("srsearch"))

	var hits []map[string]any
	for _, title := range s.sortedTitles() {
		if strings.HasPrefix(title, "Category:") {
			continue
		}
		p := s.pages[title]
		if strings.Contains(searchKey(title), needle) || strings.Contains(searchKey(p.render()), needle) {
			hits = append(hits, map[string]any{"ns": 0, "title": title, "pageid": len(hits) + 1})
		}
	}

	offset, _ := strconv.Atoi(form.Get("sroffset"))
	if offset > len(hits) {
		offset = len(hits)
	}
	end := offset + s.SearchPageSize
	if end > len(hits) {
		end = len(hits)
	}

	resp := map[string]any{
		"query": map[string]any{
			"searchinfo": map[string]any{"totalhits": len(hits)},
			"search":     append([]map[string]any{}, hits[offset:end]...),
		},
	}
	if end < len(hits) {
		resp["continue"] = map[string]any{"sroffset": strconv.Itoa(end), "continue": "-||"}
	} else {
		resp["batchcomplete"] = true
	}
	writeJSON(w, resp)
}

// searchKey folds case and treats underscores as spaces, the way MediaWiki
// normalizes titles.
func searchKey(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, "_", " "))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code, info string) {
	w.Header().Set("MediaWiki-API-Error", code)
	writeJSON(w, map[string]any{"error": map[string]any{"code": code, "info": info}})
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}
