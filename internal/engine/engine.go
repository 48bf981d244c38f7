// Package engine holds the per-game singletons. Each engine owns the
// shared truth for the current epoch (puzzle solution, mine layout) and
// the single-flight reset protocol that rolls one epoch into the next.
// State transitions are pure functions over a player's JSON state.
package engine

import (
	"context"

	"daily_games/internal/domain"
)

// RolloverFunc runs the end-of-epoch pipeline for a closing epoch before
// the engine adopts a new one. An error keeps the old epoch in place so
// the next request retries.
type RolloverFunc func(ctx context.Context, gameID, closingEpoch, previousEpoch string, maxScore int) error

type Engine interface {
	// GameID returns the registry identifier for this engine.
	GameID() string

	// EnsureReset makes the engine hold currentEpoch's shared truth,
	// rolling over the previous epoch first if needed. Returns true if a
	// reset occurred. Concurrent callers during a reset all observe the
	// post-reset truth.
	EnsureReset(ctx context.Context, currentEpoch string) (bool, error)

	// InitState returns the starting state for a new player. Pure.
	InitState() (domain.PlayerState, error)

	// UpdateState applies one player action. Pure and total: an illegal or
	// mismatched action produces a terminal-failure state, never an error.
	// Errors are reserved for undecodable state/action documents.
	UpdateState(state domain.PlayerState, action domain.Action) (domain.PlayerState, error)

	// MaxScore returns the best achievable score this epoch. Fails with
	// errs.ErrNotInitialized before the first reset.
	MaxScore() (int, error)
}
