package mediawiki

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	mwclient "cgt.name/pkg/go-mwclient"
)

// ErrLoginFailed is wrapped by Login when the wiki rejects the credentials.
var ErrLoginFailed = errors.New("mediawiki login failed")

// APIError is an error object returned by the action API, for example
// {"error": {"code": "nosuchsection", "info": "There is no section 3."}}.
type APIError struct {
	Code string
	Info string

	// Action is the API action that produced the error.
	Action string
}

func (e *APIError) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("mediawiki API error (%s): %s: %s", e.Action, e.Code, e.Info)
	}
	return fmt.Sprintf("mediawiki API error: %s: %s", e.Code, e.Info)
}

// IsAPIError reports whether err carries an *APIError, optionally with one of
// the given codes.
func IsAPIError(err error, codes ...string) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if len(codes) == 0 {
		return true
	}
	for _, code := range codes {
		if apiErr.Code == code {
			return true
		}
	}
	return false
}

// EditFailure is returned when an edit request succeeds at the API level but
// the edit itself is refused, e.g. by a spam blacklist, an abuse filter, or a
// captcha. It is not an *APIError.
type EditFailure struct {
	Title  string
	Result string

	// Details holds the remaining fields of the edit response, such as
	// "spamblacklist" with the offending URL.
	Details map[string]string

	// Err is set when the edit response could not be decoded.
	Err error
}

func (e *EditFailure) Error() string {
	msg := fmt.Sprintf("edit of %q refused: %s", e.Title, e.Result)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if len(e.Details) == 0 {
		return msg
	}

	keys := make([]string, 0, len(e.Details))
	for k := range e.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+e.Details[k])
	}
	return fmt.Sprintf("%s (%s)", msg, strings.Join(parts, ", "))
}

func (e *EditFailure) Unwrap() error {
	return e.Err
}

// libraryAPIError extracts the API error object go-mwclient reports.
func libraryAPIError(err error) (mwclient.APIError, bool) {
	for ; err != nil; err = errors.Unwrap(err) {
		switch e := any(err).(type) {
		case mwclient.APIError:
			return e, true
		case *mwclient.APIError:
			if e != nil {
				return *e, true
			}
		}
	}
	return mwclient.APIError{}, false
}

// wrapError converts go-mwclient errors for action into this package's
// error types.
func wrapError(action string, err error) error {
	if apiErr, ok := libraryAPIError(err); ok {
		return &APIError{Code: apiErr.Code, Info: apiErr.Info, Action: action}
	}
	return fmt.Errorf("mediawiki %s request failed: %w", action, err)
}
