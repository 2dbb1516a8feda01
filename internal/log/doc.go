// Package log provides slog-based logging that never prints credentials.
//
// csv2wiki handles three kinds of secrets: the wiki password given on the
// command line, the login and CSRF tokens MediaWiki hands out during a
// session, and the Google OAuth client secret and tokens used by the Sheets
// fetcher. The SecureHandler masks all of them, even in verbose mode, so
// that debug logs can be pasted into a bug report.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
//
//	logger.Debug("login", "user", "Admin", "lgpassword", pw) // lgpassword=***REDACTED***
package log
