// internal/database/database.go
package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// DB is the shared connection pool. Nil when persistence is not configured;
// callers must check before issuing queries.
var DB *pgxpool.Pool

// Init connects the shared pool and bootstraps the schema.
func Init(ctx context.Context, dsn string) error {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("ping database: %w", err)
	}
	DB = pool
	if err := EnsureSchema(ctx); err != nil {
		return err
	}
	logrus.Info("Connected to Postgres")
	return nil
}

// Close releases the shared pool.
func Close() {
	if DB != nil {
		DB.Close()
		DB = nil
	}
}

// EnsureSchema creates the tables if they do not exist. There is no external
// migration tool; the schema is small enough to bootstrap in-process.
func EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			username TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS profiles (
			user_id UUID PRIMARY KEY REFERENCES users(id),
			display_name TEXT,
			avatar_id INTEGER NOT NULL DEFAULT 0,
			rating INTEGER NOT NULL DEFAULT 1200,
			wins INTEGER NOT NULL DEFAULT 0,
			losses INTEGER NOT NULL DEFAULT 0,
			win_streak INTEGER NOT NULL DEFAULT 0,
			games_played INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS matches (
			id UUID PRIMARY KEY,
			mode VARCHAR(20) NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'ACTIVE',
			player1_id UUID REFERENCES users(id),
			player2_id UUID REFERENCES users(id),
			winner_id UUID REFERENCES users(id),
			seed TEXT,
			difficulty VARCHAR(20),
			started_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			ended_at TIMESTAMPTZ,
			final_state JSONB,
			player1_score INTEGER NOT NULL DEFAULT 0,
			player2_score INTEGER NOT NULL DEFAULT 0,
			total_moves INTEGER NOT NULL DEFAULT 0,
			duration_seconds INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS matches_player1_idx ON matches(player1_id)`,
		`CREATE INDEX IF NOT EXISTS matches_player2_idx ON matches(player2_id)`,
		`CREATE INDEX IF NOT EXISTS matches_mode_idx ON matches(mode)`,
		`CREATE TABLE IF NOT EXISTS daily_challenges (
			id SERIAL PRIMARY KEY,
			date VARCHAR(10) UNIQUE NOT NULL,
			seed TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS daily_challenge_scores (
			id SERIAL PRIMARY KEY,
			challenge_id INTEGER NOT NULL REFERENCES daily_challenges(id),
			user_id UUID NOT NULL REFERENCES users(id),
			score INTEGER NOT NULL,
			moves INTEGER NOT NULL,
			time_seconds INTEGER NOT NULL,
			completed BOOLEAN NOT NULL DEFAULT false,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS daily_scores_challenge_idx ON daily_challenge_scores(challenge_id)`,
		`CREATE INDEX IF NOT EXISTS daily_scores_user_idx ON daily_challenge_scores(user_id)`,
		`CREATE TABLE IF NOT EXISTS active_games (
			id UUID PRIMARY KEY,
			match_id UUID NOT NULL REFERENCES matches(id),
			current_state JSONB NOT NULL,
			current_turn UUID,
			lobby_code VARCHAR(6) UNIQUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS active_games_lobby_code_idx ON active_games(lobby_code)`,
	}
	for _, stmt := range statements {
		if _, err := DB.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
