package domain

import "encoding/json"

// PlayerState is a game-specific JSON document stored per (game, player,
// epoch). Every game's state embeds the StateMeta fields so the service
// layer can read the score and terminal flags without knowing the game.
type PlayerState = json.RawMessage

// Action is an opaque player action payload interpreted by the engine.
type Action = json.RawMessage

// StateMeta is the envelope common to all game states.
type StateMeta struct {
	Score    int  `json:"score"`
	Gameover bool `json:"gameover"`
	Won      bool `json:"won"`
}

// Meta extracts the common envelope from a state document.
func Meta(state PlayerState) (StateMeta, error) {
	var m StateMeta
	if err := json.Unmarshal(state, &m); err != nil {
		return StateMeta{}, err
	}
	return m, nil
}

// RankOrder is a game's leaderboard ranking policy.
type RankOrder string

const (
	// RankAscending ranks lower scores first (e.g. fewest mistakes).
	RankAscending RankOrder = "asc"
	// RankDescending ranks higher scores first.
	RankDescending RankOrder = "desc"
)

func (o RankOrder) Valid() bool {
	return o == RankAscending || o == RankDescending
}
