package wiki

import (
	"errors"
	"fmt"
)

// MediaWiki error codes the client and its callers act upon.
const (
	CodeNoSuchSection    = "nosuchsection"
	CodeArticleExists    = "articleexists"
	CodeMissingTitle     = "missingtitle"
	CodeAssertUserFailed = "assertuserfailed"
	CodeBadToken         = "badtoken"
)

var (
	// ErrNotLoggedIn is returned by write operations called before Login.
	ErrNotLoggedIn = errors.New("not logged in to the wiki")

	// ErrLoginFailed is returned when the wiki rejects the credentials.
	ErrLoginFailed = errors.New("wiki login failed")

	// ErrUnexpectedResponse is returned when api.php answers with a body
	// that is not the expected JSON shape.
	ErrUnexpectedResponse = errors.New("unexpected response from wiki API")
)

// APIError is an error reported by the wiki in the "error" member of an
// API response.
type APIError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

// Error implements error.
func (e *APIError) Error() string {
	return fmt.Sprintf("wiki API error %s: %s", e.Code, e.Info)
}

// HasCode reports whether err is an APIError with the given code.
func HasCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// IsAPIError reports whether err was reported by the wiki itself, as
// opposed to a transport or decoding failure.
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}
