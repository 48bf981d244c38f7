// Package errs holds sentinel errors shared across layers so handlers can
// map them to stable HTTP statuses.
package errs

import "errors"

var (
	// ErrNotInitialized means an engine was queried before its first reset.
	ErrNotInitialized = errors.New("engine not initialized")

	// ErrUpstreamFetch means the puzzle provider was unreachable or returned
	// a bad response during reset. Retryable.
	ErrUpstreamFetch = errors.New("upstream fetch failed")

	// ErrEpochConflict means an action was submitted against an epoch that
	// rolled over mid-request. The client must restart.
	ErrEpochConflict = errors.New("epoch rolled over, restart required")

	// ErrPersistence means the durable snapshot write failed during rollover.
	// Ephemeral data is preserved so a retry can complete it.
	ErrPersistence = errors.New("snapshot persistence failed")

	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnknownGame indicates a game id with no registered engine.
	ErrUnknownGame = errors.New("unknown game")

	// ErrUnauthorized indicates a missing or invalid session.
	ErrUnauthorized = errors.New("unauthorized")
)
