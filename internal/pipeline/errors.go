package pipeline

import "errors"

var (
	// ErrSectionWrite is returned when a section could not be written, even
	// after appending it as a new section.
	ErrSectionWrite = errors.New("failed to write section")

	// ErrPageWrite is returned when a full-page edit fails.
	ErrPageWrite = errors.New("failed to write page")

	// ErrMove is returned when a page move fails for a reason other than
	// the wiki refusing it.
	ErrMove = errors.New("failed to move page")
)
