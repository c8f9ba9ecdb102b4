package ai

import (
	"math/rand"
	"testing"

	"github.com/JayAllanBaker/KingsCorner/engine"
)

// aiGame returns an empty two-player state with player 1 (the AI seat in
// service games) to act. Piles are stocked per-test.
func aiGame() engine.GameState {
	var g engine.GameState
	g.Rules = engine.DefaultRules()
	g.Winner = engine.NoWinner
	g.Round = 1
	g.CurrentPlayer = 1
	return g
}

func giveHand(g *engine.GameState, p uint8, cards ...engine.Card) {
	for _, c := range cards {
		g.Players[p].Hand[g.Players[p].HandLen] = c
		g.Players[p].HandLen++
	}
}

func stackTableau(g *engine.GameState, t int, cards ...engine.Card) {
	for _, c := range cards {
		g.Tableau[t][g.TableauLen[t]] = c
		g.TableauLen[t]++
	}
}

func stackFoundation(g *engine.GameState, f int, cards ...engine.Card) {
	for _, c := range cards {
		g.Foundations[f][g.FoundationLen[f]] = c
		g.FoundationLen[f]++
	}
}

func stackDeck(g *engine.GameState, cards ...engine.Card) {
	for _, c := range cards {
		g.Deck[g.DeckLen] = c
		g.DeckLen++
	}
}

func fixedRand() *rand.Rand { return rand.New(rand.NewSource(1)) }

// ---------------------------------------------------------------------------
// Move generation
// ---------------------------------------------------------------------------

func TestGenerateMovesFromHand(t *testing.T) {
	g := aiGame()
	king := engine.NewCard(engine.SuitHearts, engine.RankKing)
	six := engine.NewCard(engine.SuitSpades, engine.RankSix)
	giveHand(&g, 1, king, six)
	stackTableau(&g, 0, engine.NewCard(engine.SuitHearts, engine.RankSeven))

	moves := GenerateMoves(&g)

	// King: 4 foundations (all empty). Six: tableau 0 (7♥ top).
	// King also fits no tableau pile (none empty under the King-only rule —
	// piles 1–3 are empty, so King fits those three as well).
	foundationMoves, tableauMoves := 0, 0
	for _, m := range moves {
		switch m.To.Type {
		case engine.PileFoundation:
			foundationMoves++
		case engine.PileTableau:
			tableauMoves++
		}
	}
	if foundationMoves != 4 {
		t.Errorf("foundation moves = %d, want 4", foundationMoves)
	}
	if tableauMoves != 4 {
		t.Errorf("tableau moves = %d, want 4 (6♠ on 7♥ plus King on three empty piles)", tableauMoves)
	}
}

func TestGenerateMovesTableauRuns(t *testing.T) {
	g := aiGame()
	ten := engine.NewCard(engine.SuitSpades, engine.RankTen)
	nine := engine.NewCard(engine.SuitHearts, engine.RankNine)
	jack := engine.NewCard(engine.SuitHearts, engine.RankJack)
	stackTableau(&g, 0, ten, nine)
	stackTableau(&g, 1, jack)
	stackTableau(&g, 2, engine.NewCard(engine.SuitClubs, engine.RankTen))
	stackTableau(&g, 3, engine.NewCard(engine.SuitDiamonds, engine.RankTwo))
	giveHand(&g, 1, engine.NewCard(engine.SuitClubs, engine.RankThree))

	moves := GenerateMoves(&g)

	var runToJack, nineToBlackTen bool
	for _, m := range moves {
		if m.From.Type == engine.PileTableau && m.From.Index == 0 {
			if m.CardID == ten.ID() && m.To.Index == 1 {
				runToJack = true
			}
			if m.CardID == nine.ID() && m.To.Index == 2 {
				nineToBlackTen = true
			}
		}
	}
	if !runToJack {
		t.Error("missing run move 10♠9♥ onto J♥")
	}
	if !nineToBlackTen {
		t.Error("missing partial run move 9♥ onto 10♣")
	}
}

func TestGenerateMovesEmptyBoard(t *testing.T) {
	g := aiGame()
	giveHand(&g, 1, engine.NewCard(engine.SuitClubs, engine.RankFive))

	if moves := GenerateMoves(&g); len(moves) != 0 {
		t.Errorf("got %d moves, want 0 (5♣ fits nothing)", len(moves))
	}
}

// ---------------------------------------------------------------------------
// Heuristic scoring
// ---------------------------------------------------------------------------

func TestScoreMoveWeights(t *testing.T) {
	g := aiGame()
	king := engine.NewCard(engine.SuitHearts, engine.RankKing)
	ace := engine.NewCard(engine.SuitSpades, engine.RankAce)
	giveHand(&g, 1, king, ace)
	stackFoundation(&g, 0, engine.NewCard(engine.SuitSpades, engine.RankTwo))
	solo := engine.NewCard(engine.SuitDiamonds, engine.RankFour)
	stackTableau(&g, 2, solo)
	stackTableau(&g, 3, engine.NewCard(engine.SuitClubs, engine.RankFive))

	handToFoundation := engine.Action{
		Type:   engine.ActionMoveCard,
		From:   &engine.PileRef{Type: engine.PileHand},
		To:     &engine.PileRef{Type: engine.PileFoundation, Index: 1},
		CardID: king.ID(),
	}
	if got := ScoreMove(&g, handToFoundation); got != 150 {
		t.Errorf("hand→foundation = %d, want 150", got)
	}

	aceToFoundation := handToFoundation
	aceToFoundation.CardID = ace.ID()
	if got := ScoreMove(&g, aceToFoundation); got != 160 {
		t.Errorf("ace hand→foundation = %d, want 160", got)
	}

	emptiesPile := engine.Action{
		Type:   engine.ActionMoveCard,
		From:   &engine.PileRef{Type: engine.PileTableau, Index: 2},
		To:     &engine.PileRef{Type: engine.PileTableau, Index: 3},
		CardID: solo.ID(),
	}
	if got := ScoreMove(&g, emptiesPile); got != 20 {
		t.Errorf("pile-emptying tableau move = %d, want 20", got)
	}

	if got := ScoreMove(&g, engine.Action{Type: engine.ActionDraw}); got != -5 {
		t.Errorf("draw = %d, want -5", got)
	}
}

// ---------------------------------------------------------------------------
// Selection policies
// ---------------------------------------------------------------------------

// TestHardAlwaysPicksFoundation pits one foundation move against several
// tableau moves; Hard must take the foundation move every time.
func TestHardAlwaysPicksFoundation(t *testing.T) {
	g := aiGame()
	king := engine.NewCard(engine.SuitHearts, engine.RankKing)
	six := engine.NewCard(engine.SuitSpades, engine.RankSix)
	five := engine.NewCard(engine.SuitDiamonds, engine.RankFive)
	giveHand(&g, 1, king, six, five)
	stackTableau(&g, 0, engine.NewCard(engine.SuitHearts, engine.RankSeven))
	stackTableau(&g, 1, engine.NewCard(engine.SuitClubs, engine.RankSix))
	stackTableau(&g, 2, engine.NewCard(engine.SuitDiamonds, engine.RankQueen))
	stackTableau(&g, 3, engine.NewCard(engine.SuitSpades, engine.RankNine))

	sel := New(Hard, fixedRand())
	for i := 0; i < 20; i++ {
		a := sel.SelectMove(&g)
		if a == nil {
			t.Fatal("SelectMove returned nil with moves available")
		}
		if a.To == nil || a.To.Type != engine.PileFoundation || a.CardID != king.ID() {
			t.Fatalf("iteration %d: Hard picked %+v, want King to foundation", i, a)
		}
	}
}

func TestSelectMoveDrawsWhenStuck(t *testing.T) {
	g := aiGame()
	giveHand(&g, 1, engine.NewCard(engine.SuitClubs, engine.RankFive))
	stackDeck(&g, engine.NewCard(engine.SuitHearts, engine.RankTwo))

	sel := New(Standard, fixedRand())
	a := sel.SelectMove(&g)
	if a == nil || a.Type != engine.ActionDraw {
		t.Errorf("got %+v, want a draw action", a)
	}
}

func TestSelectMoveNilWhenNoActions(t *testing.T) {
	g := aiGame()
	giveHand(&g, 1, engine.NewCard(engine.SuitClubs, engine.RankFive))
	// Deck empty, no legal moves.

	sel := New(Hard, fixedRand())
	if a := sel.SelectMove(&g); a != nil {
		t.Errorf("got %+v, want nil", a)
	}
}

// TestEasyAndStandardReturnLegalMoves checks the sampling policies always
// return one of the generated candidates.
func TestEasyAndStandardReturnLegalMoves(t *testing.T) {
	g := aiGame()
	king := engine.NewCard(engine.SuitHearts, engine.RankKing)
	six := engine.NewCard(engine.SuitSpades, engine.RankSix)
	giveHand(&g, 1, king, six)
	stackTableau(&g, 0, engine.NewCard(engine.SuitHearts, engine.RankSeven))

	legal := make(map[string]bool)
	for _, m := range GenerateMoves(&g) {
		legal[m.CardID+string(m.To.Type)] = true
	}

	for _, d := range []Difficulty{Easy, Standard} {
		sel := New(d, fixedRand())
		for i := 0; i < 50; i++ {
			a := sel.SelectMove(&g)
			if a == nil || a.Type != engine.ActionMoveCard {
				t.Fatalf("%s: got %+v, want a move_card", d, a)
			}
			if !legal[a.CardID+string(a.To.Type)] {
				t.Fatalf("%s: selected unknown move %+v", d, a)
			}
		}
	}
}

// TestStandardSamplesTopHalf verifies Standard never picks from the bottom
// half of the ranking when scores are well separated.
func TestStandardSamplesTopHalf(t *testing.T) {
	g := aiGame()
	king := engine.NewCard(engine.SuitClubs, engine.RankKing)
	giveHand(&g, 1, king)
	// King fits all 4 empty foundations (score 150 each) and all 4 empty
	// tableau piles (score 50 each): top half = the foundation moves.
	sel := New(Standard, fixedRand())
	for i := 0; i < 50; i++ {
		a := sel.SelectMove(&g)
		if a == nil || a.To.Type != engine.PileFoundation {
			t.Fatalf("iteration %d: Standard picked %+v, want a foundation move", i, a)
		}
	}
}
