package core

import "errors"

// Sentinel errors for the SIP dialog core's error taxonomy.
// InvalidPattern is the only one ever surfaced to a caller, from Init and
// SetFilter; the rest are counted internally and never propagated.
var (
	// ErrInvalidPattern is returned from Init/SetFilter when a user-supplied
	// regex fails to compile. Prior filter/admission state is left unchanged.
	ErrInvalidPattern = errors.New("sipcore: invalid pattern")

	// ErrCapacityReached means a new call was dropped because the registry
	// is at capture.limit and rotation is disabled. Never surfaced; counted.
	ErrCapacityReached = errors.New("sipcore: capacity reached")

	// ErrParse marks a malformed SIP payload. Never surfaced; counted.
	ErrParse = errors.New("sipcore: parse error")

	// ErrNotFound names the not-found case of the taxonomy. Lookups do not
	// return it; a missing call is reported as nil.
	ErrNotFound = errors.New("sipcore: not found")
)
