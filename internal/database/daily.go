// internal/database/daily.go
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/JayAllanBaker/KingsCorner/internal/models"
)

// GetOrCreateDailyChallenge returns the challenge for a date (YYYY-MM-DD),
// creating it with the deterministic "daily-<date>" seed on first access.
// Every player who requests the same date gets the same shuffled deal.
func GetOrCreateDailyChallenge(ctx context.Context, date string) (*models.DailyChallenge, error) {
	c := &models.DailyChallenge{}
	err := DB.QueryRow(ctx,
		`SELECT id, date, seed, created_at FROM daily_challenges WHERE date = $1`,
		date,
	).Scan(&c.ID, &c.Date, &c.Seed, &c.CreatedAt)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("select daily challenge: %w", err)
	}

	seed := "daily-" + date
	err = DB.QueryRow(ctx,
		`INSERT INTO daily_challenges (date, seed) VALUES ($1, $2)
		 ON CONFLICT (date) DO UPDATE SET seed = daily_challenges.seed
		 RETURNING id, date, seed, created_at`,
		date, seed,
	).Scan(&c.ID, &c.Date, &c.Seed, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert daily challenge: %w", err)
	}
	return c, nil
}

// SubmitDailyChallengeScore records a user's result. Repeat submissions for
// the same challenge are allowed; the leaderboard takes the best.
func SubmitDailyChallengeScore(ctx context.Context, s *models.DailyChallengeScore) error {
	err := DB.QueryRow(ctx,
		`INSERT INTO daily_challenge_scores (challenge_id, user_id, score, moves, time_seconds, completed)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		s.ChallengeID, s.UserID, s.Score, s.Moves, s.TimeSeconds, s.Completed,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert daily score: %w", err)
	}
	return nil
}

// DailyChallengeLeaderboard returns completed scores for a challenge, best
// score first with time as the tiebreak.
func DailyChallengeLeaderboard(ctx context.Context, challengeID, limit int) ([]models.DailyChallengeScore, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := DB.Query(ctx,
		`SELECT id, challenge_id, user_id, score, moves, time_seconds, completed, created_at
		 FROM daily_challenge_scores
		 WHERE challenge_id = $1 AND completed = true
		 ORDER BY score DESC, time_seconds ASC
		 LIMIT $2`,
		challengeID, limit)
	if err != nil {
		return nil, fmt.Errorf("select leaderboard: %w", err)
	}
	defer rows.Close()

	var scores []models.DailyChallengeScore
	for rows.Next() {
		var s models.DailyChallengeScore
		if err := rows.Scan(&s.ID, &s.ChallengeID, &s.UserID, &s.Score, &s.Moves,
			&s.TimeSeconds, &s.Completed, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan score row: %w", err)
		}
		scores = append(scores, s)
	}
	return scores, rows.Err()
}
