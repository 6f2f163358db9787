package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"gamification-engine/internal/domain"
)

// LeaderboardRepository implements app.LeaderboardRepository. The increment
// is a single INSERT ... ON CONFLICT DO UPDATE adding the delta inside
// Postgres, so concurrent scoring events for the same key never overwrite
// each other.
type LeaderboardRepository struct {
	db *bun.DB
}

func NewLeaderboardRepository(db *bun.DB) *LeaderboardRepository {
	return &LeaderboardRepository{db: db}
}

func (r *LeaderboardRepository) AddPoints(ctx context.Context, entry domain.LeaderboardEntry) error {
	_, err := r.db.NewRaw(
		`INSERT INTO leaderboard_entries (user_id, game_id, period, window_start, points, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, game_id, period, window_start) DO UPDATE
		 SET points = leaderboard_entries.points + EXCLUDED.points,
		     updated_at = EXCLUDED.updated_at`,
		entry.UserID, entry.GameID, string(entry.Period), entry.WindowStart,
		entry.Points, entry.CreatedAt, entry.UpdatedAt,
	).Exec(ctx)
	if err != nil {
		return fmt.Errorf("add points: %w", err)
	}
	return nil
}

func (r *LeaderboardRepository) Top(ctx context.Context, gameID string, period domain.Period, windowStart time.Time, limit int) ([]domain.Standing, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []struct {
		UserID string `bun:"user_id"`
		Points int    `bun:"points"`
	}
	err := r.db.NewRaw(
		`SELECT user_id, points FROM leaderboard_entries
		 WHERE game_id = ? AND period = ? AND window_start = ?
		 ORDER BY points DESC, created_at ASC
		 LIMIT ?`,
		gameID, string(period), windowStart, limit,
	).Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("top standings: %w", err)
	}

	standings := make([]domain.Standing, len(rows))
	for i, row := range rows {
		standings[i] = domain.Standing{UserID: row.UserID, Points: row.Points, Rank: i + 1}
	}
	return standings, nil
}

func (r *LeaderboardRepository) Rank(ctx context.Context, userID, gameID string, period domain.Period, windowStart time.Time) (domain.Standing, error) {
	var standing domain.Standing
	err := r.db.NewRaw(
		`SELECT user_id, points, rn FROM (
		     SELECT user_id, points,
		            ROW_NUMBER() OVER (ORDER BY points DESC, created_at ASC) AS rn
		     FROM leaderboard_entries
		     WHERE game_id = ? AND period = ? AND window_start = ?
		 ) ranked WHERE user_id = ?`,
		gameID, string(period), windowStart, userID,
	).Scan(ctx, &standing.UserID, &standing.Points, &standing.Rank)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Standing{}, domain.ErrNotRanked
	}
	if err != nil {
		return domain.Standing{}, fmt.Errorf("rank: %w", err)
	}
	return standing, nil
}
