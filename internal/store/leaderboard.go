package store

import (
	"context"
	"fmt"
	"time"

	"daily_games/internal/domain"

	"github.com/redis/go-redis/v9"
)

// Leaderboard keeps per-(game, epoch) rankings in a Redis sorted set.
//
// Record is last-write-wins: the player's entry always reflects their
// latest score. Ties order deterministically because Redis sorts equal
// scores lexically by member.
type Leaderboard struct {
	rdb *redis.Client
}

func NewLeaderboard(rdb *redis.Client) *Leaderboard {
	return &Leaderboard{rdb: rdb}
}

func leaderboardKey(gameID, epoch string) string {
	return fmt.Sprintf("game:%s:leaderboard:%s", gameID, epoch)
}

// Record upserts the player's score and keeps the whole set expiring with
// the epoch. Rollover clears the key explicitly before that TTL fires.
func (l *Leaderboard) Record(ctx context.Context, gameID, epoch, playerID string, score int, ttl time.Duration) error {
	key := leaderboardKey(gameID, epoch)
	if err := l.rdb.ZAdd(ctx, key, redis.Z{Score: float64(score), Member: playerID}).Err(); err != nil {
		return err
	}
	return l.rdb.Expire(ctx, key, ttl).Err()
}

// Rank returns all entries ordered per the game's ranking policy.
func (l *Leaderboard) Rank(ctx context.Context, gameID, epoch string, order domain.RankOrder) ([]domain.LeaderboardEntry, error) {
	if !order.Valid() {
		return nil, fmt.Errorf("invalid rank order %q", order)
	}

	key := leaderboardKey(gameID, epoch)
	var zs []redis.Z
	var err error
	if order == domain.RankAscending {
		zs, err = l.rdb.ZRangeWithScores(ctx, key, 0, -1).Result()
	} else {
		zs, err = l.rdb.ZRevRangeWithScores(ctx, key, 0, -1).Result()
	}
	if err != nil {
		return nil, err
	}

	entries := make([]domain.LeaderboardEntry, 0, len(zs))
	for _, z := range zs {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		entries = append(entries, domain.LeaderboardEntry{
			PlayerID: member,
			Score:    int(z.Score),
		})
	}
	return entries, nil
}

// Clear drops the epoch's leaderboard after it has been snapshotted.
func (l *Leaderboard) Clear(ctx context.Context, gameID, epoch string) error {
	return l.rdb.Del(ctx, leaderboardKey(gameID, epoch)).Err()
}
