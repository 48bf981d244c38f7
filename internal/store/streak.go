package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// StreakTracker counts consecutive epochs with at least one play per game.
//
// Per-epoch idempotence comes from a SETNX guard key that expires with the
// epoch. Continuity across epochs is tracked by two persistent markers:
// last_played is the most recent epoch with a play, prev_played the one
// played before it. Advance compares those against the closing window.
type StreakTracker struct {
	rdb *redis.Client
}

func NewStreakTracker(rdb *redis.Client) *StreakTracker {
	return &StreakTracker{rdb: rdb}
}

func guardKey(gameID, epoch string) string {
	return fmt.Sprintf("game:%s:played:%s", gameID, epoch)
}

func streakKey(gameID string) string     { return fmt.Sprintf("game:%s:streak", gameID) }
func lastPlayedKey(gameID string) string { return fmt.Sprintf("game:%s:last_played", gameID) }
func prevPlayedKey(gameID string) string { return fmt.Sprintf("game:%s:prev_played", gameID) }
func advancedKey(gameID string) string   { return fmt.Sprintf("game:%s:streak_advanced", gameID) }

// MarkPlayed records that epoch saw at least one play. Only the first call
// per epoch has any effect; it wins the guard and shifts the played
// markers. ttl must be the time remaining in the epoch.
func (s *StreakTracker) MarkPlayed(ctx context.Context, gameID, epoch string, ttl time.Duration) error {
	set, err := s.rdb.SetNX(ctx, guardKey(gameID, epoch), 1, ttl).Result()
	if err != nil {
		return err
	}
	if !set {
		return nil
	}

	last, err := s.rdb.GetSet(ctx, lastPlayedKey(gameID), epoch).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	if last != "" && last != epoch {
		return s.rdb.Set(ctx, prevPlayedKey(gameID), last, 0).Err()
	}
	return nil
}

// Advance settles the streak when closingEpoch ends: increment if both the
// closing epoch and the one before it saw a play, otherwise reset to 0.
// It reads the played markers before rollover's cleanup touches any keys,
// and an advanced marker makes a repeat call for the same epoch a no-op.
func (s *StreakTracker) Advance(ctx context.Context, gameID, closingEpoch, previousEpoch string) error {
	done, err := s.rdb.Get(ctx, advancedKey(gameID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	if done == closingEpoch {
		return nil
	}

	last, err := s.rdb.Get(ctx, lastPlayedKey(gameID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	prev, err := s.rdb.Get(ctx, prevPlayedKey(gameID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}

	if last == closingEpoch && prev == previousEpoch {
		if err := s.rdb.Incr(ctx, streakKey(gameID)).Err(); err != nil {
			return err
		}
	} else {
		if err := s.rdb.Set(ctx, streakKey(gameID), 0, 0).Err(); err != nil {
			return err
		}
	}

	return s.rdb.Set(ctx, advancedKey(gameID), closingEpoch, 0).Err()
}

// Current returns the streak counter, 0 if never set.
func (s *StreakTracker) Current(ctx context.Context, gameID string) (int, error) {
	n, err := s.rdb.Get(ctx, streakKey(gameID)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// ClearGuard deletes the played-guard key for an epoch. Rollover calls this
// only after the durable snapshot write commits.
func (s *StreakTracker) ClearGuard(ctx context.Context, gameID, epoch string) error {
	return s.rdb.Del(ctx, guardKey(gameID, epoch)).Err()
}
