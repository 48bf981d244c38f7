// Package store contains the Redis-backed ephemeral stores: per-player
// game state, live leaderboards, the streak tracker and sessions. All of
// them key by epoch and expire with it, so stale progress from a closed
// window is unreachable even before expiry fires.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"daily_games/internal/domain"

	"github.com/redis/go-redis/v9"
)

// StateStore holds each player's in-progress state for the current epoch.
type StateStore struct {
	rdb *redis.Client
}

func NewStateStore(rdb *redis.Client) *StateStore {
	return &StateStore{rdb: rdb}
}

func stateKey(gameID, playerID, epoch string) string {
	return fmt.Sprintf("game:%s:%s:%s", gameID, playerID, epoch)
}

// Get returns the stored state, or nil if the player has none this epoch.
func (s *StateStore) Get(ctx context.Context, gameID, playerID, epoch string) (domain.PlayerState, error) {
	raw, err := s.rdb.Get(ctx, stateKey(gameID, playerID, epoch)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return domain.PlayerState(raw), nil
}

// Put stores a state document. ttl must be the time remaining in the
// epoch, computed from the same timestamp as the epoch itself, so the key
// cannot outlive its window.
func (s *StateStore) Put(ctx context.Context, gameID, playerID, epoch string, state domain.PlayerState, ttl time.Duration) error {
	return s.rdb.Set(ctx, stateKey(gameID, playerID, epoch), []byte(state), ttl).Err()
}

// Delete removes a state document, reporting whether it existed.
func (s *StateStore) Delete(ctx context.Context, gameID, playerID, epoch string) (bool, error) {
	n, err := s.rdb.Del(ctx, stateKey(gameID, playerID, epoch)).Result()
	return n > 0, err
}
