// internal/database/users.go
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/JayAllanBaker/KingsCorner/internal/models"
)

// ErrNotFound is returned when a lookup matches no rows.
var ErrNotFound = errors.New("not found")

// CreateUser inserts a new account and its empty profile.
func CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error) {
	u := &models.User{ID: uuid.New(), Username: username, PasswordHash: passwordHash}
	err := DB.QueryRow(ctx,
		`INSERT INTO users (id, username, password_hash) VALUES ($1, $2, $3) RETURNING created_at`,
		u.ID, u.Username, u.PasswordHash,
	).Scan(&u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	if _, err := DB.Exec(ctx, `INSERT INTO profiles (user_id) VALUES ($1)`, u.ID); err != nil {
		return nil, fmt.Errorf("insert profile: %w", err)
	}
	return u, nil
}

// GetUserByUsername fetches a user by username. Returns ErrNotFound when absent.
func GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	u := &models.User{}
	err := DB.QueryRow(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username = $1`,
		username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}
	return u, nil
}

// GetProfile fetches a user's profile. Returns ErrNotFound when absent.
func GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	p := &models.Profile{}
	var displayName *string
	err := DB.QueryRow(ctx,
		`SELECT user_id, display_name, avatar_id, rating, wins, losses, win_streak,
		        games_played, created_at, updated_at
		 FROM profiles WHERE user_id = $1`,
		userID,
	).Scan(&p.UserID, &displayName, &p.AvatarID, &p.Rating, &p.Wins, &p.Losses,
		&p.WinStreak, &p.GamesPlayed, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select profile: %w", err)
	}
	if displayName != nil {
		p.DisplayName = *displayName
	}
	return p, nil
}

// ApplyMatchResult updates a profile's counters after a finished match.
// A win extends the streak; a loss resets it.
func ApplyMatchResult(ctx context.Context, userID uuid.UUID, won bool) error {
	var err error
	if won {
		_, err = DB.Exec(ctx,
			`UPDATE profiles
			 SET wins = wins + 1, win_streak = win_streak + 1,
			     games_played = games_played + 1, updated_at = now()
			 WHERE user_id = $1`, userID)
	} else {
		_, err = DB.Exec(ctx,
			`UPDATE profiles
			 SET losses = losses + 1, win_streak = 0,
			     games_played = games_played + 1, updated_at = now()
			 WHERE user_id = $1`, userID)
	}
	if err != nil {
		return fmt.Errorf("apply match result: %w", err)
	}
	return nil
}
