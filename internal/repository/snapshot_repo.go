package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"daily_games/internal/domain"
	"daily_games/internal/errs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgxpool.Pool the repository needs; pgxmock
// implements it for tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// SnapshotRepository persists one durable row per (game, epoch): the
// final rankings, max score and streak at rollover.
type SnapshotRepository struct {
	db DB
}

func NewSnapshotRepository(db DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Upsert writes a snapshot row. ON CONFLICT keeps a racing second rollover
// trigger for the same epoch from failing or duplicating.
func (r *SnapshotRepository) Upsert(ctx context.Context, s *domain.Snapshot) error {
	rankingsJSON, err := json.Marshal(s.Rankings)
	if err != nil {
		return fmt.Errorf("marshal rankings: %w", err)
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO snapshots (game_id, epoch, date, rankings, max_score, streak)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (game_id, epoch) DO UPDATE
		 SET rankings = EXCLUDED.rankings,
		     max_score = EXCLUDED.max_score,
		     streak = EXCLUDED.streak`,
		s.GameID, s.Epoch, s.Date, rankingsJSON, s.MaxScore, s.Streak,
	)
	return err
}

// Latest returns the most recent snapshot for a game.
func (r *SnapshotRepository) Latest(ctx context.Context, gameID string) (*domain.Snapshot, error) {
	var (
		s            domain.Snapshot
		rankingsJSON []byte
	)
	err := r.db.QueryRow(ctx,
		`SELECT game_id, epoch, date, rankings, max_score, streak, created_at
		 FROM snapshots
		 WHERE game_id = $1
		 ORDER BY date DESC
		 LIMIT 1`,
		gameID,
	).Scan(&s.GameID, &s.Epoch, &s.Date, &rankingsJSON, &s.MaxScore, &s.Streak, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: no snapshot for %s", errs.ErrNotFound, gameID)
	}
	if err != nil {
		return nil, err
	}

	s.Rankings = []domain.LeaderboardEntry{}
	if len(rankingsJSON) > 0 {
		if err := json.Unmarshal(rankingsJSON, &s.Rankings); err != nil {
			return nil, fmt.Errorf("unmarshal rankings: %w", err)
		}
	}
	return &s, nil
}
