package progression

import "errors"

var (
	// ErrNotFound means no progression state exists for the user.
	ErrNotFound = errors.New("progression state not found")

	// ErrConflict means a conditional write lost against a concurrent
	// update. The award transaction reloads and retries on it.
	ErrConflict = errors.New("conflicting concurrent update")

	// ErrConflictExhausted means the retry bound was exceeded and the
	// award could not be durably applied. Surfaced to the caller: dropping
	// the award silently would break the score/history invariant.
	ErrConflictExhausted = errors.New("award retries exhausted by concurrent updates")

	// ErrUnknownAction means the action kind has no reward configured.
	ErrUnknownAction = errors.New("unknown action kind")
)
