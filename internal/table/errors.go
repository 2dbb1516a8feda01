package table

import "errors"

// ErrNoHeader is returned when the input has no records at all.
var ErrNoHeader = errors.New("input has no header row")
