package decision

import "errors"

var (
	// ErrStale indicates the request was already resolved, expired, or never
	// existed. This is the primary defense against double processing and
	// stale UI from a previous process instance.
	ErrStale = errors.New("decision: request is no longer valid")

	// ErrNotAuthorized indicates the acting identity is not the intended
	// recipient of the request. No state changes.
	ErrNotAuthorized = errors.New("decision: not authorized to decide this request")
)
