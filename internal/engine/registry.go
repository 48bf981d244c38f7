package engine

import (
	"fmt"
	"time"

	"daily_games/internal/domain"
	"daily_games/internal/epoch"
	"daily_games/internal/errs"
)

// Registration binds an engine singleton to its leaderboard policy.
type Registration struct {
	Engine    Engine
	RankOrder domain.RankOrder
}

// Registry maps game ids to their engine singletons. Built once at
// startup; games are selected by id at the serving boundary.
type Registry struct {
	games map[string]Registration
}

// NewRegistry constructs the engine singletons for every supported game.
func NewRegistry(clock epoch.Clock, fetch FetchFunc, rollover RolloverFunc, fetchTimeout time.Duration) *Registry {
	return &Registry{games: map[string]Registration{
		"chess_puzzle": {
			Engine:    NewChessPuzzleEngine("chess_puzzle", clock, fetch, rollover, fetchTimeout),
			RankOrder: domain.RankDescending,
		},
		"minesweeper": {
			Engine:    NewMinesweeperEngine("minesweeper", clock, rollover),
			RankOrder: domain.RankDescending,
		},
	}}
}

// Get returns the registration for gameID.
func (r *Registry) Get(gameID string) (Registration, error) {
	reg, ok := r.games[gameID]
	if !ok {
		return Registration{}, fmt.Errorf("%w: %s", errs.ErrUnknownGame, gameID)
	}
	return reg, nil
}

// RankOrder returns the leaderboard policy for gameID.
func (r *Registry) RankOrder(gameID string) (domain.RankOrder, error) {
	reg, err := r.Get(gameID)
	if err != nil {
		return "", err
	}
	return reg.RankOrder, nil
}

// IDs lists the registered game ids.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.games))
	for id := range r.games {
		ids = append(ids, id)
	}
	return ids
}
