// =============================================================================
// csv2wiki - MediaWiki Action API Client
// =============================================================================
//
// This module adapts go-mwclient to the calls the importer needs:
//
//   login / logout        session handling (cookie jar kept by go-mwclient)
//   query meta=tokens     login and CSRF tokens, cached per session
//   edit                  whole-page and section edits
//   delete                page deletion
//   query list=search     full-text search with continuation
//
// API error objects come back as *APIError and refused edits as
// *EditFailure. Calls are strictly sequential; the client is not safe for
// concurrent use. go-mwclient takes no context, so ctx is checked before
// every request.
//
// =============================================================================

package mediawiki

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	mwclient "cgt.name/pkg/go-mwclient"
	"cgt.name/pkg/go-mwclient/params"
	"github.com/antonholmquist/jason"
)

// DefaultUserAgent is used when Options.UserAgent is empty. go-mwclient
// appends its own identifier.
const DefaultUserAgent = "csv2wiki/1.0"

// Client is a MediaWiki action API client bound to one api.php endpoint.
type Client struct {
	mw     *mwclient.Client
	apiURL string
	logger *slog.Logger
}

// Options configures a Client.
type Options struct {
	// UserAgent identifies the tool to the wiki operators.
	UserAgent string

	// Timeout bounds each HTTP request. Zero keeps go-mwclient's default.
	Timeout time.Duration

	// Logger receives request-level debug output. Default: slog.Default().
	Logger *slog.Logger
}

// =============================================================================
// CONSTRUCTION
// =============================================================================

// APIURL builds the api.php URL for a site given as host plus base path
// (e.g. "localhost/mediawiki"), a scheme, and the script path below it.
//
// EXAMPLE:
//
//	APIURL("http", "localhost/mediawiki", "/")  => "http://localhost/mediawiki/api.php"
//	APIURL("https", "wiki.example.org", "/w/")  => "https://wiki.example.org/w/api.php"
func APIURL(scheme, site, path string) (string, error) {
	site = strings.TrimSpace(site)
	if i := strings.Index(site, "://"); i >= 0 {
		scheme = site[:i]
		site = site[i+3:]
	}
	site = strings.TrimRight(site, "/")
	if site == "" {
		return "", fmt.Errorf("wiki site is empty")
	}

	scriptPath := "/" + strings.Trim(path, "/")
	if scriptPath != "/" {
		scriptPath += "/"
	}

	u, err := url.Parse(scheme + "://" + site + scriptPath + "api.php")
	if err != nil {
		return "", fmt.Errorf("failed to parse wiki URL: %w", err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("wiki URL %q has no host", u.String())
	}
	return u.String(), nil
}

// New creates a client for the given api.php URL.
func New(apiURL string, opts Options) (*Client, error) {
	u, err := url.Parse(apiURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse API URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported API URL scheme %q", u.Scheme)
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	mw, err := mwclient.New(u.String(), userAgent)
	if err != nil {
		return nil, fmt.Errorf("failed to create mediawiki client: %w", err)
	}
	if opts.Timeout > 0 {
		mw.SetHTTPTimeout(opts.Timeout)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		mw:     mw,
		apiURL: u.String(),
		logger: logger,
	}, nil
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// post sends p as a form POST. go-mwclient reports API warnings as an error
// alongside a decoded response; those are logged and the response is used.
func (c *Client) post(ctx context.Context, p params.Values) (*jason.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	action := p["action"]
	resp, err := c.mw.Post(p)
	if err == nil {
		return resp, nil
	}
	if _, ok := libraryAPIError(err); !ok && resp != nil {
		c.logger.Debug("mediawiki API warnings", "action", action, "warnings", err.Error())
		return resp, nil
	}
	return nil, wrapError(action, err)
}

// csrf returns the session's CSRF token. go-mwclient caches it after the
// first request.
func (c *Client) csrf(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	token, err := c.mw.GetToken(mwclient.CSRFToken)
	if err != nil {
		return "", fmt.Errorf("failed to fetch csrf token: %w", wrapError("query", err))
	}
	return token, nil
}
