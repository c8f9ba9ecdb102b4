// internal/models/models.go
package models

import (
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

// User holds account identity shared across the service layers.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt,omitempty"`
}

// Player is a seat in a running game. AI seats carry no connection and a
// difficulty label instead.
type Player struct {
	ID           uuid.UUID       `json:"id"`
	User         *User           `json:"user,omitempty"`
	Conn         *websocket.Conn `json:"-"`
	Connected    bool            `json:"connected"`
	IsAI         bool            `json:"isAI"`
	AIDifficulty string          `json:"aiDifficulty,omitempty"`
}

// Card is the wire representation of a single card. ID is the stable
// rank-suit string ("Q-hearts"), not a per-instance identifier.
type Card struct {
	ID     string `json:"id"`
	Suit   string `json:"suit"`
	Rank   string `json:"rank"`
	Value  int    `json:"value"`
	Color  string `json:"color"`
	FaceUp bool   `json:"faceUp"`
}

// PileRef addresses a pile in an action payload.
type PileRef struct {
	Type  string `json:"type"`
	Index int    `json:"index"`
}

// GameAction is the client-submitted action envelope routed by the
// orchestrator.
type GameAction struct {
	ActionType string   `json:"type"`
	From       *PileRef `json:"from,omitempty"`
	To         *PileRef `json:"to,omitempty"`
	CardID     string   `json:"cardId,omitempty"`
}

// Profile carries persistent per-user stats.
type Profile struct {
	UserID      uuid.UUID `json:"userId"`
	DisplayName string    `json:"displayName,omitempty"`
	AvatarID    int       `json:"avatarId"`
	Rating      int       `json:"rating"`
	Wins        int       `json:"wins"`
	Losses      int       `json:"losses"`
	WinStreak   int       `json:"winStreak"`
	GamesPlayed int       `json:"gamesPlayed"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Match is a row of match history.
type Match struct {
	ID            uuid.UUID  `json:"id"`
	Mode          string     `json:"mode"`   // AI, RANKED, FRIEND, DAILY
	Status        string     `json:"status"` // ACTIVE, COMPLETE, ABANDONED
	Player1ID     uuid.UUID  `json:"player1Id"`
	Player2ID     *uuid.UUID `json:"player2Id,omitempty"`
	WinnerID      *uuid.UUID `json:"winnerId,omitempty"`
	Seed          string     `json:"seed,omitempty"`
	Difficulty    string     `json:"difficulty,omitempty"`
	StartedAt     time.Time  `json:"startedAt"`
	EndedAt       *time.Time `json:"endedAt,omitempty"`
	Player1Score  int        `json:"player1Score"`
	Player2Score  int        `json:"player2Score"`
	TotalMoves    int        `json:"totalMoves"`
	DurationSecs  int        `json:"durationSeconds,omitempty"`
}

// DailyChallenge is one calendar day's shared seeded deal.
type DailyChallenge struct {
	ID        int       `json:"id"`
	Date      string    `json:"date"` // YYYY-MM-DD
	Seed      string    `json:"seed"`
	CreatedAt time.Time `json:"createdAt"`
}

// DailyChallengeScore is one user's result for a daily challenge.
type DailyChallengeScore struct {
	ID          int       `json:"id"`
	ChallengeID int       `json:"challengeId"`
	UserID      uuid.UUID `json:"userId"`
	Score       int       `json:"score"`
	Moves       int       `json:"moves"`
	TimeSeconds int       `json:"timeSeconds"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"createdAt"`
}
