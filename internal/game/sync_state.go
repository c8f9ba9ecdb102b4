// internal/game/sync_state.go
package game

import (
	"github.com/google/uuid"

	"github.com/JayAllanBaker/KingsCorner/engine"
	"github.com/JayAllanBaker/KingsCorner/internal/models"
)

// SyncPlayerState is one seat's visible state. Kings Corner hands are played
// face-up, so both hands are revealed in full.
type SyncPlayerState struct {
	PlayerID      uuid.UUID     `json:"playerId"`
	Username      string        `json:"username,omitempty"`
	IsAI          bool          `json:"isAI"`
	Hand          []models.Card `json:"hand"`
	Score         int           `json:"score"`
	IsCurrentTurn bool          `json:"isCurrentTurn"`
}

// SyncGameState is the full board snapshot sent to clients.
type SyncGameState struct {
	GameID          uuid.UUID         `json:"gameId"`
	MatchID         uuid.UUID         `json:"matchId,omitempty"`
	Mode            string            `json:"mode,omitempty"`
	Started         bool              `json:"started"`
	GameOver        bool              `json:"gameOver"`
	CurrentPlayerID uuid.UUID         `json:"currentPlayerId"`
	WinnerID        uuid.UUID         `json:"winnerId,omitempty"`
	Round           int               `json:"round"`
	Phase           string            `json:"phase"`
	Moves           int               `json:"moves"`
	DeckCount       int               `json:"deckCount"`
	Tableau         [][]models.Card   `json:"tableau"`
	Foundations     [][]models.Card   `json:"foundations"`
	Players         []SyncPlayerState `json:"players"`
	Seed            string            `json:"seed,omitempty"`
	CanUndo         bool              `json:"canUndo"`
}

// cardDTO converts an engine card to its wire form.
func cardDTO(c engine.Card, faceUp bool) models.Card {
	return models.Card{
		ID:     c.ID(),
		Suit:   c.SuitName(),
		Rank:   c.RankName(),
		Value:  c.RankValue(),
		Color:  c.ColorName(),
		FaceUp: faceUp,
	}
}

func phaseName(p engine.TurnPhase) string {
	switch p {
	case engine.PhasePlaying:
		return "playing"
	case engine.PhaseDrawing:
		return "drawing"
	case engine.PhaseEnded:
		return "ended"
	}
	return "unknown"
}

// BuildSyncState generates the board snapshot.
func (g *KingsGame) BuildSyncState() SyncGameState {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.buildSyncState()
}

// buildSyncState is BuildSyncState without the lock round-trip.
// Assumes lock is held by caller.
func (g *KingsGame) buildSyncState() SyncGameState {
	st := SyncGameState{
		GameID:    g.ID,
		MatchID:   g.MatchID,
		Mode:      g.Mode,
		Started:   g.Started,
		GameOver:  g.GameOver || g.Engine.IsTerminal(),
		Round:     int(g.Engine.Round),
		Phase:     phaseName(g.Engine.Phase),
		Moves:     int(g.Engine.Moves),
		DeckCount: int(g.Engine.DeckLen),
		Seed:      g.Seed,
	}

	if g.Started && !st.GameOver {
		st.CurrentPlayerID = g.EngineToPlayer[g.Engine.CurrentPlayer]
	}
	if g.Engine.Winner != engine.NoWinner {
		st.WinnerID = g.EngineToPlayer[uint8(g.Engine.Winner)]
	}

	st.Tableau = make([][]models.Card, engine.NumTableau)
	for t := 0; t < engine.NumTableau; t++ {
		pile := make([]models.Card, g.Engine.TableauLen[t])
		for i := range pile {
			pile[i] = cardDTO(g.Engine.Tableau[t][i], true)
		}
		st.Tableau[t] = pile
	}

	st.Foundations = make([][]models.Card, engine.NumFoundations)
	for f := 0; f < engine.NumFoundations; f++ {
		pile := make([]models.Card, g.Engine.FoundationLen[f])
		for i := range pile {
			pile[i] = cardDTO(g.Engine.Foundations[f][i], true)
		}
		st.Foundations[f] = pile
	}

	st.Players = make([]SyncPlayerState, len(g.Players))
	for i, p := range g.Players {
		ps := SyncPlayerState{
			PlayerID: p.ID,
			IsAI:     p.IsAI,
		}
		if p.User != nil {
			ps.Username = p.User.Username
		}
		if engineIdx, ok := g.PlayerToEngine[p.ID]; ok {
			hand := g.Engine.Players[engineIdx].HandCards()
			ps.Hand = make([]models.Card, len(hand))
			for j, c := range hand {
				ps.Hand[j] = cardDTO(c, true)
			}
			ps.Score = int(g.Engine.Players[engineIdx].Score)
			ps.IsCurrentTurn = g.Started && !st.GameOver && g.Engine.CurrentPlayer == engineIdx
		}
		st.Players[i] = ps
	}

	return st
}
