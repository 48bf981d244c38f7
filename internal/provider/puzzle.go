// Package provider fetches the shared daily puzzle from an external API.
// Called only from inside an engine's reset protocol.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"daily_games/internal/domain"
)

// PuzzleClient is an HTTP client for a daily-puzzle API that returns the
// position as FEN and the solution as a UCI move list.
type PuzzleClient struct {
	url        string
	httpClient *http.Client
}

func NewPuzzleClient(url string) *PuzzleClient {
	return &PuzzleClient{
		url: url,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type puzzlePayload struct {
	Puzzles []struct {
		FEN    string   `json:"fen"`
		Moves  []string `json:"moves"`
		Rating int      `json:"rating"`
	} `json:"puzzles"`
}

// FetchDaily retrieves the daily puzzle. The caller's context bounds the
// request; the engine lock is held while this runs, so it must be short.
func (c *PuzzleClient) FetchDaily(ctx context.Context) (*domain.PuzzleData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("puzzle api returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	var payload puzzlePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode puzzle payload: %w", err)
	}
	if len(payload.Puzzles) == 0 {
		return nil, fmt.Errorf("puzzle api returned no puzzles")
	}

	p := payload.Puzzles[0]
	if p.FEN == "" || len(p.Moves) == 0 {
		return nil, fmt.Errorf("puzzle api returned incomplete puzzle")
	}

	return &domain.PuzzleData{
		FEN:      p.FEN,
		Solution: p.Moves,
		Rating:   p.Rating,
	}, nil
}
