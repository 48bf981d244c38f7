package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"math/rand"
	"sort"
	"sync"

	"daily_games/internal/domain"
	"daily_games/internal/epoch"
	"daily_games/internal/errs"
)

const (
	minesweeperGridSize = 8 // 8x8 board
	minesweeperMines    = 10
)

// MinesweeperEngine serves one shared daily mine layout. Players mark the
// tiles they believe hide mines: a correct mark scores, a wrong mark ends
// the round, finding every mine wins. Needs no external provider; the
// layout is derived deterministically from the epoch so every process
// seeds the same board.
type MinesweeperEngine struct {
	gameID   string
	clock    epoch.Clock
	rollover RolloverFunc

	mu    sync.RWMutex
	epoch string
	mines []int // sorted tile indexes, shared truth
}

// MinesweeperState is the per-player state document.
type MinesweeperState struct {
	GridSize int   `json:"grid_size"`
	Revealed []int `json:"revealed"`
	Score    int   `json:"score"`
	Gameover bool  `json:"gameover"`
	Won      bool  `json:"won"`
}

// MinesweeperAction marks a single tile.
type MinesweeperAction struct {
	Tile *int `json:"tile"`
}

func NewMinesweeperEngine(gameID string, clock epoch.Clock, rollover RolloverFunc) *MinesweeperEngine {
	return &MinesweeperEngine{gameID: gameID, clock: clock, rollover: rollover}
}

func (e *MinesweeperEngine) GameID() string { return e.gameID }

func (e *MinesweeperEngine) EnsureReset(ctx context.Context, currentEpoch string) (bool, error) {
	e.mu.RLock()
	fresh := e.epoch == currentEpoch
	e.mu.RUnlock()
	if fresh {
		return false, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.epoch == currentEpoch {
		return false, nil
	}

	// resets only move forward; a straggler from the closed epoch must
	// not roll the live one back
	if e.epoch != "" && currentEpoch < e.epoch {
		return false, fmt.Errorf("%w: epoch %s superseded by %s", errs.ErrEpochConflict, currentEpoch, e.epoch)
	}

	if e.epoch != "" {
		prev, err := e.clock.Previous(e.epoch)
		if err != nil {
			return false, err
		}
		if err := e.rollover(ctx, e.gameID, e.epoch, prev, len(e.mines)); err != nil {
			return false, err
		}
	}

	e.mines = scatterMines(currentEpoch)
	e.epoch = currentEpoch
	return true, nil
}

// scatterMines derives the day's layout from the epoch identifier.
func scatterMines(epochID string) []int {
	h := fnv.New64a()
	h.Write([]byte(epochID))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	tiles := rng.Perm(minesweeperGridSize * minesweeperGridSize)[:minesweeperMines]
	sort.Ints(tiles)
	return tiles
}

func (e *MinesweeperEngine) InitState() (domain.PlayerState, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.epoch == "" {
		return nil, errs.ErrNotInitialized
	}
	return json.Marshal(MinesweeperState{
		GridSize: minesweeperGridSize,
		Revealed: []int{},
	})
}

func (e *MinesweeperEngine) UpdateState(state domain.PlayerState, action domain.Action) (domain.PlayerState, error) {
	var s MinesweeperState
	if err := json.Unmarshal(state, &s); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	var a MinesweeperAction
	if err := json.Unmarshal(action, &a); err != nil {
		return nil, fmt.Errorf("decode action: %w", err)
	}

	if s.Gameover {
		return state, nil
	}

	// missing or out-of-bounds tile ends the round
	if a.Tile == nil || *a.Tile < 0 || *a.Tile >= minesweeperGridSize*minesweeperGridSize {
		s.Gameover = true
		s.Won = false
		return json.Marshal(s)
	}
	tile := *a.Tile

	// re-marking an already found mine changes nothing
	for _, r := range s.Revealed {
		if r == tile {
			return state, nil
		}
	}

	e.mu.RLock()
	mines := e.mines
	e.mu.RUnlock()

	if !containsTile(mines, tile) {
		s.Gameover = true
		s.Won = false
		return json.Marshal(s)
	}

	s.Revealed = append(s.Revealed, tile)
	s.Score = len(s.Revealed)

	if s.Score == len(mines) {
		s.Gameover = true
		s.Won = true
	}
	return json.Marshal(s)
}

func containsTile(sorted []int, tile int) bool {
	i := sort.SearchInts(sorted, tile)
	return i < len(sorted) && sorted[i] == tile
}

func (e *MinesweeperEngine) MaxScore() (int, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.epoch == "" {
		return 0, errs.ErrNotInitialized
	}
	return len(e.mines), nil
}
