package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is a generic sentinel for auth failures.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrStoreUnavailable marks transport/connection failures to the database.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrTransactionAborted marks a multi-step write that was rolled back as a whole.
	ErrTransactionAborted = errors.New("transaction aborted")
	// ErrExternalService marks an unreachable or failing classifier, generator or calendar.
	ErrExternalService = errors.New("external service failure")
	// ErrMalformedResponse marks an external payload that did not match the expected shape.
	ErrMalformedResponse = errors.New("malformed response")
	// ErrRatingOutOfRange is returned for submitted ratings outside 1..5.
	ErrRatingOutOfRange = errors.New("rating out of range")
)
