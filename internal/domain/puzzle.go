package domain

// PuzzleData is the shared-truth payload the daily puzzle provider
// returns: the starting position and the full solution line.
type PuzzleData struct {
	FEN      string   `json:"fen"`
	Solution []string `json:"solution"`
	Rating   int      `json:"rating"`
}
