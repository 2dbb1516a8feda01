// Package sheets reads a range of a Google spreadsheet.
//
// Authorization uses the OAuth2 installed-application flow from
// golang.org/x/oauth2/google: the first run prints a consent URL and reads
// the authorization code from the terminal, later runs reuse the token
// cached on disk. Values are fetched from the Sheets v4 REST endpoint.
package sheets
