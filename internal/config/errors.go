package config

import "errors"

// Configuration validation errors.
// Sentinels let callers use errors.Is while keeping the messages readable.
var (
	// ErrNoSite is returned when no wiki host is configured.
	ErrNoSite = errors.New("no wiki site configured: set wiki.site in the config file or use --site")

	// ErrInvalidScheme is returned for schemes other than http and https.
	ErrInvalidScheme = errors.New("invalid scheme: must be http or https")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrEmptyPagePrefix is returned when the page prefix is empty, which
	// would make every page title a bare number.
	ErrEmptyPagePrefix = errors.New("invalid page prefix: must not be empty")

	// ErrEmptyTOCTitle is returned when the table of contents title is empty.
	ErrEmptyTOCTitle = errors.New("invalid TOC title: must not be empty")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrAuthzRootUnset is returned when no authz paths were given and
	// the environment does not provide a default.
	ErrAuthzRootUnset = errors.New("authz file not specified and " + AuthzRootEnv + " is not set")
)
