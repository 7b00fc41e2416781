package engine

import "errors"

// Error taxonomy reported to callers. Rejected events never leave a
// session in a partially mutated state.
var (
	ErrConflict           = errors.New("an active session of this type already exists for the channel")
	ErrNotFound           = errors.New("session not found")
	ErrInvalidAction      = errors.New("action not valid in the current phase or state")
	ErrDuplicateAction    = errors.New("action already submitted for this phase")
	ErrContentUnavailable = errors.New("content adapter unavailable")
)
