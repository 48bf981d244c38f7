package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionStore keeps authenticated player sessions in Redis. The session
// id is opaque; the value is the player id the identity layer resolved.
type SessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSessionStore(rdb *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{rdb: rdb, ttl: ttl}
}

func sessionKey(sessionID string) string { return "session:" + sessionID }

func (s *SessionStore) TTL() time.Duration { return s.ttl }

// Create stores a new session for playerID.
func (s *SessionStore) Create(ctx context.Context, sessionID, playerID string) error {
	return s.rdb.Set(ctx, sessionKey(sessionID), playerID, s.ttl).Err()
}

// Get resolves a session id to a player id, "" if expired or unknown.
func (s *SessionStore) Get(ctx context.Context, sessionID string) (string, error) {
	playerID, err := s.rdb.Get(ctx, sessionKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return playerID, err
}

// Heartbeat extends a live session by the configured TTL.
func (s *SessionStore) Heartbeat(ctx context.Context, sessionID string) (bool, error) {
	return s.rdb.Expire(ctx, sessionKey(sessionID), s.ttl).Result()
}

// Delete removes a session on player disconnect.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, sessionKey(sessionID)).Err()
}
