// Package rollover condenses a closing epoch's leaderboard and streak into
// a durable snapshot, then clears the ephemeral keys it drained.
package rollover

import (
	"context"
	"errors"
	"fmt"

	"daily_games/internal/domain"
	"daily_games/internal/engine"
	"daily_games/internal/epoch"
	"daily_games/internal/errs"
	"daily_games/internal/logger"
	"daily_games/internal/repository"
	"daily_games/internal/store"

	"github.com/redis/go-redis/v9"
)

// Pipeline runs the end-of-epoch sequence for one game. Engines invoke it
// from inside their reset protocol, before adopting the new epoch.
type Pipeline struct {
	rdb         *redis.Client
	clock       epoch.Clock
	streak      *store.StreakTracker
	leaderboard *store.Leaderboard
	snapshots   *repository.SnapshotRepository
	rankOrder   func(gameID string) (domain.RankOrder, error)
}

func NewPipeline(
	rdb *redis.Client,
	clock epoch.Clock,
	streak *store.StreakTracker,
	leaderboard *store.Leaderboard,
	snapshots *repository.SnapshotRepository,
	rankOrder func(gameID string) (domain.RankOrder, error),
) *Pipeline {
	return &Pipeline{
		rdb:         rdb,
		clock:       clock,
		streak:      streak,
		leaderboard: leaderboard,
		snapshots:   snapshots,
		rankOrder:   rankOrder,
	}
}

func doneKey(gameID string) string { return fmt.Sprintf("game:%s:rollover_done", gameID) }

// Run executes the pipeline for closingEpoch. Steps in order: advance the
// streak, read streak and rankings, upsert the snapshot, and only after
// the durable write commits, clear the guard and leaderboard keys. A
// completion marker makes a repeat trigger for the same epoch a no-op, so
// a late snapshot retry cannot overwrite good rankings with an already
// cleared (empty) leaderboard.
func (p *Pipeline) Run(ctx context.Context, gameID, closingEpoch, previousEpoch string, maxScore int) error {
	done, err := p.rdb.Get(ctx, doneKey(gameID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	if done == closingEpoch {
		return nil
	}

	if err := p.streak.Advance(ctx, gameID, closingEpoch, previousEpoch); err != nil {
		return err
	}

	streak, err := p.streak.Current(ctx, gameID)
	if err != nil {
		return err
	}

	order, err := p.rankOrder(gameID)
	if err != nil {
		return err
	}
	rankings, err := p.leaderboard.Rank(ctx, gameID, closingEpoch, order)
	if err != nil {
		return err
	}

	date, err := p.clock.OpeningTime(closingEpoch)
	if err != nil {
		return err
	}

	snap := &domain.Snapshot{
		GameID:   gameID,
		Epoch:    closingEpoch,
		Date:     date,
		Rankings: rankings,
		MaxScore: maxScore,
		Streak:   streak,
	}
	if err := p.snapshots.Upsert(ctx, snap); err != nil {
		// Ephemeral data stays put (its own TTL will prune it eventually),
		// so a retry on the next request loses nothing.
		return fmt.Errorf("%w: %v", errs.ErrPersistence, err)
	}

	// cleanup only after the durable write succeeded
	if err := p.streak.ClearGuard(ctx, gameID, closingEpoch); err != nil {
		return err
	}
	if err := p.leaderboard.Clear(ctx, gameID, closingEpoch); err != nil {
		return err
	}
	if err := p.rdb.Set(ctx, doneKey(gameID), closingEpoch, 0).Err(); err != nil {
		return err
	}

	logger.Info("epoch rolled over",
		"game", gameID, "epoch", closingEpoch, "players", len(rankings), "streak", streak)
	return nil
}

// Run satisfies engine.RolloverFunc.
var _ engine.RolloverFunc = (*Pipeline)(nil).Run
