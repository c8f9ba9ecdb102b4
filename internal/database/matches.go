// internal/database/matches.go
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/JayAllanBaker/KingsCorner/internal/models"
)

// CreateMatch inserts a new active match row.
func CreateMatch(ctx context.Context, m *models.Match) error {
	err := DB.QueryRow(ctx,
		`INSERT INTO matches (id, mode, status, player1_id, player2_id, seed, difficulty)
		 VALUES ($1, $2, 'ACTIVE', $3, $4, $5, $6)
		 RETURNING started_at`,
		m.ID, m.Mode, m.Player1ID, m.Player2ID, m.Seed, nullable(m.Difficulty),
	).Scan(&m.StartedAt)
	if err != nil {
		return fmt.Errorf("insert match: %w", err)
	}
	m.Status = "ACTIVE"
	return nil
}

// FinalizeMatch marks a match complete with its result and final state snapshot.
func FinalizeMatch(ctx context.Context, matchID uuid.UUID, winnerID *uuid.UUID, p1Score, p2Score, totalMoves int, finalState interface{}) error {
	_, err := DB.Exec(ctx,
		`UPDATE matches
		 SET status = 'COMPLETE', winner_id = $2, player1_score = $3, player2_score = $4,
		     total_moves = $5, final_state = $6, ended_at = now(),
		     duration_seconds = EXTRACT(EPOCH FROM now() - started_at)::int
		 WHERE id = $1`,
		matchID, winnerID, p1Score, p2Score, totalMoves, finalState)
	if err != nil {
		return fmt.Errorf("finalize match: %w", err)
	}
	return nil
}

// AbandonMatch marks a match abandoned without a result.
func AbandonMatch(ctx context.Context, matchID uuid.UUID) error {
	_, err := DB.Exec(ctx,
		`UPDATE matches SET status = 'ABANDONED', ended_at = now() WHERE id = $1`, matchID)
	if err != nil {
		return fmt.Errorf("abandon match: %w", err)
	}
	return nil
}

// GetMatchHistory returns a user's most recent matches, newest first.
func GetMatchHistory(ctx context.Context, userID uuid.UUID, limit int) ([]models.Match, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := DB.Query(ctx,
		`SELECT id, mode, status, player1_id, player2_id, winner_id,
		        COALESCE(seed, ''), COALESCE(difficulty, ''), started_at, ended_at,
		        player1_score, player2_score, total_moves, COALESCE(duration_seconds, 0)
		 FROM matches
		 WHERE player1_id = $1 OR player2_id = $1
		 ORDER BY started_at DESC
		 LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("select match history: %w", err)
	}
	defer rows.Close()

	var matches []models.Match
	for rows.Next() {
		var m models.Match
		if err := rows.Scan(&m.ID, &m.Mode, &m.Status, &m.Player1ID, &m.Player2ID,
			&m.WinnerID, &m.Seed, &m.Difficulty, &m.StartedAt, &m.EndedAt,
			&m.Player1Score, &m.Player2Score, &m.TotalMoves, &m.DurationSecs); err != nil {
			return nil, fmt.Errorf("scan match row: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// UpsertActiveGame stores the live state snapshot for a running game.
func UpsertActiveGame(ctx context.Context, gameID, matchID uuid.UUID, state interface{}, currentTurn *uuid.UUID, lobbyCode string) error {
	_, err := DB.Exec(ctx,
		`INSERT INTO active_games (id, match_id, current_state, current_turn, lobby_code)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE
		 SET current_state = EXCLUDED.current_state,
		     current_turn = EXCLUDED.current_turn,
		     updated_at = now()`,
		gameID, matchID, state, currentTurn, nullable(lobbyCode))
	if err != nil {
		return fmt.Errorf("upsert active game: %w", err)
	}
	return nil
}

// GetActiveGameByLobbyCode resolves a friend-match lobby code to its game and
// match IDs plus the stored state JSON.
func GetActiveGameByLobbyCode(ctx context.Context, code string) (gameID, matchID uuid.UUID, stateJSON []byte, err error) {
	err = DB.QueryRow(ctx,
		`SELECT id, match_id, current_state FROM active_games WHERE lobby_code = $1`,
		code,
	).Scan(&gameID, &matchID, &stateJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, uuid.Nil, nil, ErrNotFound
	}
	if err != nil {
		return uuid.Nil, uuid.Nil, nil, fmt.Errorf("select active game: %w", err)
	}
	return gameID, matchID, stateJSON, nil
}

// DeleteActiveGame removes the live snapshot once a game finishes.
func DeleteActiveGame(ctx context.Context, gameID uuid.UUID) error {
	_, err := DB.Exec(ctx, `DELETE FROM active_games WHERE id = $1`, gameID)
	if err != nil {
		return fmt.Errorf("delete active game: %w", err)
	}
	return nil
}

// nullable maps the empty string to NULL for optional varchar columns.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
