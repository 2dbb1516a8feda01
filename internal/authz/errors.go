package authz

import "errors"

var (
	// ErrEmptyPrefix is returned when the repository path prefix is empty.
	ErrEmptyPrefix = errors.New("authz path prefix must not be empty")

	// ErrCommandFailed wraps a failed svn invocation.
	ErrCommandFailed = errors.New("svn command failed")
)
