package games

import "errors"

var (
	// ErrNotFound is returned when the list has no row for the requested id,
	// or no rows at all when the latest row was requested.
	ErrNotFound = errors.New("game not found")
	// ErrPreconditionFailed is returned when the store rejects a write because
	// the supplied etag no longer matches the stored row.
	ErrPreconditionFailed = errors.New("game version mismatch")
)
