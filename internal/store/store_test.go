package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daily_games/internal/domain"
)

func testRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	return mr, redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestStateStore_RoundTrip(t *testing.T) {
	_, rdb := testRedis(t)
	s := NewStateStore(rdb)
	ctx := context.Background()

	state := domain.PlayerState(`{"score":2,"gameover":false,"won":false}`)
	require.NoError(t, s.Put(ctx, "chess_puzzle", "p1", "2025-03-10@09", state, time.Hour))

	got, err := s.Get(ctx, "chess_puzzle", "p1", "2025-03-10@09")
	require.NoError(t, err)
	assert.JSONEq(t, string(state), string(got))
}

func TestStateStore_AbsentReturnsNil(t *testing.T) {
	_, rdb := testRedis(t)
	s := NewStateStore(rdb)

	got, err := s.Get(context.Background(), "chess_puzzle", "nobody", "2025-03-10@09")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStateStore_EpochScopedKeys(t *testing.T) {
	// Stale progress from a closed epoch must not surface in the next one
	// even while the old key still exists.
	_, rdb := testRedis(t)
	s := NewStateStore(rdb)
	ctx := context.Background()

	old := domain.PlayerState(`{"score":5,"gameover":true,"won":true}`)
	require.NoError(t, s.Put(ctx, "chess_puzzle", "p1", "2025-03-09@09", old, time.Hour))

	got, err := s.Get(ctx, "chess_puzzle", "p1", "2025-03-10@09")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStateStore_TTLExpiry(t *testing.T) {
	mr, rdb := testRedis(t)
	s := NewStateStore(rdb)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "chess_puzzle", "p1", "2025-03-10@09", domain.PlayerState(`{}`), time.Minute))

	mr.FastForward(2 * time.Minute)

	got, err := s.Get(ctx, "chess_puzzle", "p1", "2025-03-10@09")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStateStore_Delete(t *testing.T) {
	_, rdb := testRedis(t)
	s := NewStateStore(rdb)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "chess_puzzle", "p1", "2025-03-10@09", domain.PlayerState(`{}`), time.Hour))

	existed, err := s.Delete(ctx, "chess_puzzle", "p1", "2025-03-10@09")
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = s.Delete(ctx, "chess_puzzle", "p1", "2025-03-10@09")
	require.NoError(t, err)
	assert.False(t, existed)
}

func TestLeaderboard_RankAscending(t *testing.T) {
	_, rdb := testRedis(t)
	l := NewLeaderboard(rdb)
	ctx := context.Background()

	require.NoError(t, l.Record(ctx, "minesweeper", "2025-03-10@09", "a", 3, time.Hour))
	require.NoError(t, l.Record(ctx, "minesweeper", "2025-03-10@09", "b", 1, time.Hour))
	require.NoError(t, l.Record(ctx, "minesweeper", "2025-03-10@09", "c", 2, time.Hour))

	entries, err := l.Rank(ctx, "minesweeper", "2025-03-10@09", domain.RankAscending)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "b", entries[0].PlayerID)
	assert.Equal(t, "c", entries[1].PlayerID)
	assert.Equal(t, "a", entries[2].PlayerID)
}

func TestLeaderboard_RankDescending(t *testing.T) {
	_, rdb := testRedis(t)
	l := NewLeaderboard(rdb)
	ctx := context.Background()

	require.NoError(t, l.Record(ctx, "chess_puzzle", "2025-03-10@09", "a", 3, time.Hour))
	require.NoError(t, l.Record(ctx, "chess_puzzle", "2025-03-10@09", "b", 1, time.Hour))
	require.NoError(t, l.Record(ctx, "chess_puzzle", "2025-03-10@09", "c", 2, time.Hour))

	entries, err := l.Rank(ctx, "chess_puzzle", "2025-03-10@09", domain.RankDescending)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "a", entries[0].PlayerID)
	assert.Equal(t, "c", entries[1].PlayerID)
	assert.Equal(t, "b", entries[2].PlayerID)
}

func TestLeaderboard_LastWriteWins(t *testing.T) {
	_, rdb := testRedis(t)
	l := NewLeaderboard(rdb)
	ctx := context.Background()

	require.NoError(t, l.Record(ctx, "chess_puzzle", "2025-03-10@09", "a", 5, time.Hour))
	require.NoError(t, l.Record(ctx, "chess_puzzle", "2025-03-10@09", "a", 2, time.Hour))

	entries, err := l.Rank(ctx, "chess_puzzle", "2025-03-10@09", domain.RankDescending)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 2, entries[0].Score)
}

func TestLeaderboard_InvalidOrder(t *testing.T) {
	_, rdb := testRedis(t)
	l := NewLeaderboard(rdb)

	_, err := l.Rank(context.Background(), "chess_puzzle", "2025-03-10@09", domain.RankOrder("sideways"))
	assert.Error(t, err)
}

func TestLeaderboard_Clear(t *testing.T) {
	_, rdb := testRedis(t)
	l := NewLeaderboard(rdb)
	ctx := context.Background()

	require.NoError(t, l.Record(ctx, "chess_puzzle", "2025-03-10@09", "a", 1, time.Hour))
	require.NoError(t, l.Clear(ctx, "chess_puzzle", "2025-03-10@09"))

	entries, err := l.Rank(ctx, "chess_puzzle", "2025-03-10@09", domain.RankDescending)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStreak_MarkPlayedIdempotentPerEpoch(t *testing.T) {
	mr, rdb := testRedis(t)
	s := NewStreakTracker(rdb)
	ctx := context.Background()

	require.NoError(t, s.MarkPlayed(ctx, "chess_puzzle", "2025-03-10@09", time.Hour))
	require.NoError(t, s.MarkPlayed(ctx, "chess_puzzle", "2025-03-10@09", time.Hour))

	lastPlayed, err := mr.Get("game:chess_puzzle:last_played")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10@09", lastPlayed)
	assert.False(t, mr.Exists("game:chess_puzzle:prev_played"))
}

func TestStreak_ContinuityIncrements(t *testing.T) {
	_, rdb := testRedis(t)
	s := NewStreakTracker(rdb)
	ctx := context.Background()

	// plays on two consecutive epochs
	require.NoError(t, s.MarkPlayed(ctx, "chess_puzzle", "2025-03-09@09", time.Hour))
	require.NoError(t, s.MarkPlayed(ctx, "chess_puzzle", "2025-03-10@09", time.Hour))

	require.NoError(t, s.Advance(ctx, "chess_puzzle", "2025-03-10@09", "2025-03-09@09"))

	n, err := s.Current(ctx, "chess_puzzle")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStreak_GapResets(t *testing.T) {
	_, rdb := testRedis(t)
	s := NewStreakTracker(rdb)
	ctx := context.Background()

	// played 03-07, skipped 03-09, played 03-10
	require.NoError(t, s.MarkPlayed(ctx, "chess_puzzle", "2025-03-07@09", time.Hour))
	require.NoError(t, s.MarkPlayed(ctx, "chess_puzzle", "2025-03-10@09", time.Hour))

	require.NoError(t, s.Advance(ctx, "chess_puzzle", "2025-03-10@09", "2025-03-09@09"))

	n, err := s.Current(ctx, "chess_puzzle")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestStreak_FirstEverPlayResets(t *testing.T) {
	_, rdb := testRedis(t)
	s := NewStreakTracker(rdb)
	ctx := context.Background()

	require.NoError(t, s.MarkPlayed(ctx, "chess_puzzle", "2025-03-10@09", time.Hour))
	require.NoError(t, s.Advance(ctx, "chess_puzzle", "2025-03-10@09", "2025-03-09@09"))

	n, err := s.Current(ctx, "chess_puzzle")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestStreak_AdvanceIdempotentPerClosingEpoch(t *testing.T) {
	_, rdb := testRedis(t)
	s := NewStreakTracker(rdb)
	ctx := context.Background()

	require.NoError(t, s.MarkPlayed(ctx, "chess_puzzle", "2025-03-09@09", time.Hour))
	require.NoError(t, s.MarkPlayed(ctx, "chess_puzzle", "2025-03-10@09", time.Hour))

	require.NoError(t, s.Advance(ctx, "chess_puzzle", "2025-03-10@09", "2025-03-09@09"))
	require.NoError(t, s.Advance(ctx, "chess_puzzle", "2025-03-10@09", "2025-03-09@09"))

	n, err := s.Current(ctx, "chess_puzzle")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStreak_LongRun(t *testing.T) {
	_, rdb := testRedis(t)
	s := NewStreakTracker(rdb)
	ctx := context.Background()

	epochs := []string{"2025-03-08@09", "2025-03-09@09", "2025-03-10@09", "2025-03-11@09"}
	for i, e := range epochs {
		require.NoError(t, s.MarkPlayed(ctx, "chess_puzzle", e, time.Hour))
		if i > 0 {
			require.NoError(t, s.Advance(ctx, "chess_puzzle", e, epochs[i-1]))
		}
	}

	n, err := s.Current(ctx, "chess_puzzle")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestSessionStore(t *testing.T) {
	mr, rdb := testRedis(t)
	s := NewSessionStore(rdb, time.Minute)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, "sess1", "player-42"))

	playerID, err := s.Get(ctx, "sess1")
	require.NoError(t, err)
	assert.Equal(t, "player-42", playerID)

	ok, err := s.Heartbeat(ctx, "sess1")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.Delete(ctx, "sess1"))
	playerID, err = s.Get(ctx, "sess1")
	require.NoError(t, err)
	assert.Empty(t, playerID)

	// expiry
	require.NoError(t, s.Create(ctx, "sess2", "player-43"))
	mr.FastForward(2 * time.Minute)
	playerID, err = s.Get(ctx, "sess2")
	require.NoError(t, err)
	assert.Empty(t, playerID)
}
