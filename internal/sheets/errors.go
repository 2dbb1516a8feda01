package sheets

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCredentials is returned when the OAuth client ID or secret
	// is not configured.
	ErrMissingCredentials = errors.New("sheets client ID and client secret must be configured")

	// ErrMissingSheet is returned when the spreadsheet ID or range is empty.
	ErrMissingSheet = errors.New("sheets sheetID and range must be configured")

	// ErrNoAuthCode is returned when the interactive flow reads no code.
	ErrNoAuthCode = errors.New("no authorization code entered")

	// ErrTokenNotFound is returned when no token has been cached yet.
	ErrTokenNotFound = errors.New("no cached token")
)

// APIError is an error response from the Sheets API.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("sheets api: %d %s: %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("sheets api: %d: %s", e.StatusCode, e.Message)
}
