package reconcile

import "errors"

var (
	// ErrEmptyWindow indicates a stop window that covers no time.
	ErrEmptyWindow = errors.New("stop window is empty")

	// ErrNotFollowUp indicates follow-up options on a source that is not a
	// follow-up.
	ErrNotFollowUp = errors.New("source is not a follow-up")

	// ErrNoGateway indicates no follow-up gateway is wired for the source type.
	ErrNoGateway = errors.New("no follow-up gateway for source type")

	// ErrNoParentStory indicates the owning story of a follow-up is unknown.
	ErrNoParentStory = errors.New("follow-up has no owning story")

	// ErrFollowUpNotFound indicates the owning story has no record with the
	// follow-up's id.
	ErrFollowUpNotFound = errors.New("follow-up record not found")

	// ErrCompletionRejected indicates the follow-up API refused the
	// completion, typically because it precedes the record's event date.
	ErrCompletionRejected = errors.New("follow-up completion rejected")
)
