package service

import (
	"context"
	"fmt"
	"time"

	"daily_games/internal/domain"
	"daily_games/internal/engine"
	"daily_games/internal/epoch"
	"daily_games/internal/errs"
	"daily_games/internal/logger"
	"daily_games/internal/repository"
	"daily_games/internal/store"
)

// GameService is the serving-layer facade over the engines and stores.
// Each request captures one timestamp and derives both the epoch and the
// TTL from it, so a write near the boundary cannot tag state with one
// epoch and the other epoch's expiry.
type GameService struct {
	clock       epoch.Clock
	registry    *engine.Registry
	states      *store.StateStore
	leaderboard *store.Leaderboard
	streak      *store.StreakTracker
	snapshots   *repository.SnapshotRepository
}

func NewGameService(
	clock epoch.Clock,
	registry *engine.Registry,
	states *store.StateStore,
	leaderboard *store.Leaderboard,
	streak *store.StreakTracker,
	snapshots *repository.SnapshotRepository,
) *GameService {
	return &GameService{
		clock:       clock,
		registry:    registry,
		states:      states,
		leaderboard: leaderboard,
		streak:      streak,
		snapshots:   snapshots,
	}
}

// Start ensures the engine holds the current epoch's truth and returns the
// player's state, initializing it if absent or if the epoch just rolled.
func (s *GameService) Start(ctx context.Context, gameID, playerID string) (domain.PlayerState, error) {
	reg, err := s.registry.Get(gameID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	cur := s.clock.At(now)
	ttl := s.clock.TTLAt(now)

	isReset, err := reg.Engine.EnsureReset(ctx, cur)
	if err != nil {
		return nil, err
	}

	// After EnsureReset: the previous epoch's rollover has settled, so
	// marking the new epoch cannot race the streak continuity check.
	if err := s.streak.MarkPlayed(ctx, gameID, cur, ttl); err != nil {
		return nil, err
	}

	state, err := s.states.Get(ctx, gameID, playerID, cur)
	if err != nil {
		return nil, err
	}
	if state == nil || isReset {
		state, err = reg.Engine.InitState()
		if err != nil {
			return nil, err
		}
		if err := s.states.Put(ctx, gameID, playerID, cur, state, ttl); err != nil {
			return nil, err
		}
	}
	return state, nil
}

// ApplyAction applies one player action against the stored state and
// records the new score on the live leaderboard. If the epoch rolled
// since the player last fetched, it reports a conflict: the client must
// call Start again.
func (s *GameService) ApplyAction(ctx context.Context, gameID, playerID string, action domain.Action) (domain.PlayerState, error) {
	reg, err := s.registry.Get(gameID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	cur := s.clock.At(now)
	ttl := s.clock.TTLAt(now)

	isReset, err := reg.Engine.EnsureReset(ctx, cur)
	if err != nil {
		return nil, err
	}
	if isReset {
		return nil, errs.ErrEpochConflict
	}

	state, err := s.states.Get(ctx, gameID, playerID, cur)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, fmt.Errorf("%w: game not started", errs.ErrNotFound)
	}

	next, err := reg.Engine.UpdateState(state, action)
	if err != nil {
		return nil, err
	}

	if err := s.states.Put(ctx, gameID, playerID, cur, next, ttl); err != nil {
		return nil, err
	}

	meta, err := domain.Meta(next)
	if err != nil {
		return nil, err
	}
	if err := s.leaderboard.Record(ctx, gameID, cur, playerID, meta.Score, ttl); err != nil {
		// the state write already succeeded; the next action re-records
		logger.Error("leaderboard record failed", "game", gameID, "player", playerID, "error", err)
	}

	return next, nil
}

// DailyStats returns the most recent durable snapshot for a game.
func (s *GameService) DailyStats(ctx context.Context, gameID string) (*domain.Snapshot, error) {
	if _, err := s.registry.Get(gameID); err != nil {
		return nil, err
	}
	return s.snapshots.Latest(ctx, gameID)
}

// Live returns the in-flight leaderboard for the current epoch plus the
// seconds remaining until reset. Used by the websocket feed.
func (s *GameService) Live(ctx context.Context, gameID string) ([]domain.LeaderboardEntry, int, error) {
	reg, err := s.registry.Get(gameID)
	if err != nil {
		return nil, 0, err
	}

	now := time.Now()
	entries, err := s.leaderboard.Rank(ctx, gameID, s.clock.At(now), reg.RankOrder)
	if err != nil {
		return nil, 0, err
	}
	return entries, int(s.clock.TTLAt(now) / time.Second), nil
}

// Games lists the playable game ids.
func (s *GameService) Games() []string { return s.registry.IDs() }
