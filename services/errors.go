package services

import "errors"

// Error kinds surfaced to callers. Remote-call failures are caught at the
// point of the call and wrapped into one of these; none escapes as an
// unhandled fault.
var (
	// ErrValidation - a required field was blank or out of range; rejected
	// before any remote call.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound - the referenced entity or user no longer exists.
	ErrNotFound = errors.New("not found")
	// ErrForbidden - the caller does not own the entity it tried to mutate.
	ErrForbidden = errors.New("forbidden")
	// ErrWriteFailed - a create/update/delete request failed or hit an
	// unexpected precondition; retryable.
	ErrWriteFailed = errors.New("write failed")
	// ErrUnavailable - a subscribed stream is in the unknown/error state, so
	// the derived view cannot be served until it recovers; retryable.
	ErrUnavailable = errors.New("temporarily unavailable")
)
