package service

import "errors"

var (
	// ErrSourceNotFound indicates the catalog does not list the source.
	ErrSourceNotFound = errors.New("task source not found")

	// ErrProjectUnknown indicates a source whose project could not be
	// resolved, so no work log could be written for it.
	ErrProjectUnknown = errors.New("project of task source is unknown")

	// ErrAlreadySubmitted indicates a journal entry the ledger already accepted.
	ErrAlreadySubmitted = errors.New("journal entry already submitted")

	// ErrInvalidRange indicates a date range that ends before it starts.
	ErrInvalidRange = errors.New("date range ends before it starts")
)
