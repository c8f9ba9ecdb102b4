// Package engine implements the Kings Corner rules engine.
//
// The engine is a pure state-transition system: GameState is a flat value
// type, ApplyMove takes a state by value and returns a Result holding a
// brand-new snapshot on success or the untouched input on rejection. No
// call path mutates shared state, so callers may keep any number of prior
// snapshots around for undo.
package engine

const (
	MaxPlayers     = 2
	NumTableau     = 4
	NumFoundations = 4
	DeckSize       = 52
	FoundationCap  = 13
)

// NoWinner is the Winner value of a non-terminal state.
const NoWinner int8 = -1

// TurnPhase tracks where the current player is inside their turn.
type TurnPhase uint8

const (
	PhasePlaying TurnPhase = iota // current player may act
	PhaseDrawing                  // transient: end-of-turn auto-draw in progress
	PhaseEnded                    // terminal, Winner is set
)

// PlayerState holds one player's hand and running score.
type PlayerState struct {
	Hand    [DeckSize]Card
	HandLen uint8
	Score   int32
}

// HandCards returns a copy of the player's hand as a slice.
func (p *PlayerState) HandCards() []Card {
	out := make([]Card, p.HandLen)
	copy(out, p.Hand[:p.HandLen])
	return out
}

// GameState holds the complete, self-contained state of a Kings Corner game.
// It is a flat value type: a plain struct copy is a full snapshot.
type GameState struct {
	Deck          [DeckSize]Card
	DeckLen       uint8
	Tableau       [NumTableau][DeckSize]Card
	TableauLen    [NumTableau]uint8
	Foundations   [NumFoundations][FoundationCap]Card
	FoundationLen [NumFoundations]uint8
	Players       [MaxPlayers]PlayerState
	CurrentPlayer uint8
	Round         uint16 // increments every full player rotation, starts at 1
	Phase         TurnPhase
	Winner        int8 // player index, or NoWinner
	Moves         uint16
	Rules         Rules
	Seed          string
}

// IsTerminal returns true once a winner has been determined.
func (g *GameState) IsTerminal() bool { return g.Winner != NoWinner }

// TableauTop returns the top card of tableau pile i, or EmptyCard if empty.
func (g *GameState) TableauTop(i int) Card {
	if i < 0 || i >= NumTableau || g.TableauLen[i] == 0 {
		return EmptyCard
	}
	return g.Tableau[i][g.TableauLen[i]-1]
}

// FoundationTop returns the top card of foundation pile i, or EmptyCard if empty.
func (g *GameState) FoundationTop(i int) Card {
	if i < 0 || i >= NumFoundations || g.FoundationLen[i] == 0 {
		return EmptyCard
	}
	return g.Foundations[i][g.FoundationLen[i]-1]
}

// TableauRun returns a copy of tableau pile i from position start to the top.
func (g *GameState) TableauRun(i, start int) []Card {
	if i < 0 || i >= NumTableau || start < 0 || start >= int(g.TableauLen[i]) {
		return nil
	}
	out := make([]Card, int(g.TableauLen[i])-start)
	copy(out, g.Tableau[i][start:g.TableauLen[i]])
	return out
}

// FindInHand returns the position of the card with the given id in player
// p's hand, or -1 if absent.
func (g *GameState) FindInHand(p uint8, cardID string) int {
	for i := uint8(0); i < g.Players[p].HandLen; i++ {
		if g.Players[p].Hand[i].ID() == cardID {
			return int(i)
		}
	}
	return -1
}

// FindInTableau returns the position of the card with the given id in
// tableau pile t, or -1 if absent.
func (g *GameState) FindInTableau(t int, cardID string) int {
	if t < 0 || t >= NumTableau {
		return -1
	}
	for i := uint8(0); i < g.TableauLen[t]; i++ {
		if g.Tableau[t][i].ID() == cardID {
			return int(i)
		}
	}
	return -1
}

// NumActivePlayers returns the number of players in this game.
func (g *GameState) NumActivePlayers() uint8 { return g.Rules.numPlayers() }

// NextPlayer returns the player after current in round-robin order.
func (g *GameState) NextPlayer(current uint8) uint8 {
	return (current + 1) % g.Rules.numPlayers()
}

// CardCount returns the total number of cards across deck, hands, tableau
// and foundations. It is DeckSize in every reachable state.
func (g *GameState) CardCount() int {
	n := int(g.DeckLen)
	for p := uint8(0); p < g.Rules.numPlayers(); p++ {
		n += int(g.Players[p].HandLen)
	}
	for t := 0; t < NumTableau; t++ {
		n += int(g.TableauLen[t])
	}
	for f := 0; f < NumFoundations; f++ {
		n += int(g.FoundationLen[f])
	}
	return n
}

// checkWin inspects hand lengths and marks the state terminal when a win
// condition is met. Called after every mutating action; Winner is monotonic
// and never reset.
func (g *GameState) checkWin() {
	if g.IsTerminal() {
		return
	}
	if g.Rules.numPlayers() == 1 && g.Rules.SoloStrictWin {
		if g.Players[0].HandLen != 0 || g.DeckLen != 0 {
			return
		}
		for t := 0; t < NumTableau; t++ {
			if g.TableauLen[t] != 0 {
				return
			}
		}
		g.Winner = 0
		g.Phase = PhaseEnded
		return
	}
	for p := uint8(0); p < g.Rules.numPlayers(); p++ {
		if g.Players[p].HandLen == 0 {
			g.Winner = int8(p)
			g.Phase = PhaseEnded
			return
		}
	}
}

// ---------------------------------------------------------------------------
// Snapshot Undo (Save / Restore)
// ---------------------------------------------------------------------------

// Snapshot is a complete value-copy of GameState for undo support.
// Saving and restoring are plain struct copies.
type Snapshot GameState

// Save returns a snapshot of the current game state.
func (g *GameState) Save() Snapshot { return Snapshot(*g) }

// Restore replaces the game state with the given snapshot.
func (g *GameState) Restore(s Snapshot) { *g = GameState(s) }
