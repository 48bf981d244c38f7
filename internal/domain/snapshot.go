package domain

import "time"

// LeaderboardEntry is one (player, score) pair within a (game, epoch).
type LeaderboardEntry struct {
	PlayerID string `json:"player_id"`
	Score    int    `json:"score"`
}

// Snapshot is the durable record of a closed epoch: the final rankings,
// the max achievable score and the streak at rollover. One row per
// (game, epoch); rollover upserts so a racing second trigger is harmless.
type Snapshot struct {
	GameID    string             `json:"game_id"`
	Epoch     string             `json:"epoch"`
	Date      time.Time          `json:"date"`
	Rankings  []LeaderboardEntry `json:"rankings"`
	MaxScore  int                `json:"max_score"`
	Streak    int                `json:"streak"`
	CreatedAt time.Time          `json:"created_at"`
}
