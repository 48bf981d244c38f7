package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"daily_games/internal/domain"
	"daily_games/internal/epoch"
	"daily_games/internal/errs"
)

// FetchFunc retrieves the daily puzzle from an external provider.
type FetchFunc func(ctx context.Context) (*domain.PuzzleData, error)

// ChessPuzzleEngine serves one shared daily puzzle. The board is given in
// FEN; player moves and the solution are UCI strings. Score counts
// correctly matched solution moves.
type ChessPuzzleEngine struct {
	gameID       string
	clock        epoch.Clock
	fetch        FetchFunc
	rollover     RolloverFunc
	fetchTimeout time.Duration

	mu       sync.RWMutex
	epoch    string // "" until the first reset
	fen      string
	solution []string
}

// ChessState is the per-player state document for the chess puzzle.
type ChessState struct {
	FEN      string   `json:"fen"`
	Moves    []string `json:"moves"`
	Score    int      `json:"score"`
	Gameover bool     `json:"gameover"`
	Won      bool     `json:"won"`
}

// ChessAction is a single player move.
type ChessAction struct {
	Move string `json:"move"`
}

func NewChessPuzzleEngine(gameID string, clock epoch.Clock, fetch FetchFunc, rollover RolloverFunc, fetchTimeout time.Duration) *ChessPuzzleEngine {
	return &ChessPuzzleEngine{
		gameID:       gameID,
		clock:        clock,
		fetch:        fetch,
		rollover:     rollover,
		fetchTimeout: fetchTimeout,
	}
}

func (e *ChessPuzzleEngine) GameID() string { return e.gameID }

func (e *ChessPuzzleEngine) EnsureReset(ctx context.Context, currentEpoch string) (bool, error) {
	// lock-free fast path for the common already-fresh case
	e.mu.RLock()
	fresh := e.epoch == currentEpoch
	e.mu.RUnlock()
	if fresh {
		return false, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// re-check: another request may have reset while we waited
	if e.epoch == currentEpoch {
		return false, nil
	}

	// Resets only move forward. A caller that captured its timestamp just
	// before the boundary can acquire the lock after a fresh request
	// already adopted the new epoch; it must not roll the live epoch back.
	// Epoch ids at a fixed reset hour order lexically.
	if e.epoch != "" && currentEpoch < e.epoch {
		return false, fmt.Errorf("%w: epoch %s superseded by %s", errs.ErrEpochConflict, currentEpoch, e.epoch)
	}

	// Roll the closing epoch into durable history before adopting the new
	// one. A failure here leaves the epoch marker unchanged so the next
	// request retries instead of discarding the old truth.
	if e.epoch != "" {
		prev, err := e.clock.Previous(e.epoch)
		if err != nil {
			return false, err
		}
		if err := e.rollover(ctx, e.gameID, e.epoch, prev, len(e.solution)); err != nil {
			return false, err
		}
	}

	// The fetch is the only I/O performed under the engine lock, so it is
	// bounded: a slow upstream must not stall every player.
	fctx, cancel := context.WithTimeout(ctx, e.fetchTimeout)
	defer cancel()

	data, err := e.fetch(fctx)
	if err != nil {
		return false, fmt.Errorf("%w: %v", errs.ErrUpstreamFetch, err)
	}
	if data.FEN == "" || len(data.Solution) == 0 {
		return false, fmt.Errorf("%w: empty puzzle payload", errs.ErrUpstreamFetch)
	}

	e.fen = data.FEN
	e.solution = data.Solution
	e.epoch = currentEpoch
	return true, nil
}

func (e *ChessPuzzleEngine) InitState() (domain.PlayerState, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.epoch == "" {
		return nil, errs.ErrNotInitialized
	}
	return json.Marshal(ChessState{
		FEN:   e.fen,
		Moves: []string{},
	})
}

func (e *ChessPuzzleEngine) UpdateState(state domain.PlayerState, action domain.Action) (domain.PlayerState, error) {
	var s ChessState
	if err := json.Unmarshal(state, &s); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	var a ChessAction
	if err := json.Unmarshal(action, &a); err != nil {
		return nil, fmt.Errorf("decode action: %w", err)
	}

	if s.Gameover {
		return state, nil
	}

	e.mu.RLock()
	solution := e.solution
	e.mu.RUnlock()

	// i lags the turn by one: the new move has not been appended yet
	i := len(s.Moves)

	// wrong or out-of-range move ends the puzzle
	if i >= len(solution) || a.Move != solution[i] {
		s.Gameover = true
		s.Won = false
		return json.Marshal(s)
	}

	s.Moves = append(s.Moves, a.Move)
	s.Score = i + 1

	if s.Score == len(solution) {
		s.Gameover = true
		s.Won = true
	}
	return json.Marshal(s)
}

func (e *ChessPuzzleEngine) MaxScore() (int, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.epoch == "" {
		return 0, errs.ErrNotInitialized
	}
	return len(e.solution), nil
}
