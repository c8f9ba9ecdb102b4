// Package ai implements the computer opponent for Kings Corner.
//
// The selector is a pure function of the game state: it enumerates every
// legal move for the acting player using the engine's rules predicates,
// ranks candidates with a static heuristic, and picks one according to the
// configured difficulty. No search, no hidden state.
package ai

import (
	"math/rand"
	"sort"

	"github.com/JayAllanBaker/KingsCorner/engine"
)

// Difficulty selects the move-selection policy.
type Difficulty string

const (
	Easy     Difficulty = "EASY"
	Standard Difficulty = "STANDARD"
	Hard     Difficulty = "HARD"
)

// Heuristic weights for ranking candidate moves.
const (
	scoreFoundationDest = 100 // placing on a foundation works toward emptying the hand
	scoreFromHand       = 50  // hand moves directly serve the win condition
	scoreEmptiesPile    = 20  // a vacated tableau pile can take a future King
	scoreAceBonus       = 10  // an Ace finishes a foundation
	scoreDraw           = -5  // drawing is a last resort
)

// ScoredMove pairs a candidate action with its heuristic score.
type ScoredMove struct {
	Action engine.Action
	Score  int
}

// Selector chooses moves for one AI player.
type Selector struct {
	Difficulty Difficulty
	rng        *rand.Rand
}

// New returns a Selector for the given difficulty. The rand source drives
// the Easy and Standard sampling policies; passing a fixed-seed source
// makes selection reproducible.
func New(difficulty Difficulty, rng *rand.Rand) *Selector {
	return &Selector{Difficulty: difficulty, rng: rng}
}

// SelectMove returns the AI's next action for the given state, or nil when
// no action is possible (empty move set and empty deck — the turn must end).
func (s *Selector) SelectMove(g *engine.GameState) *engine.Action {
	candidates := GenerateMoves(g)
	if len(candidates) == 0 {
		if g.DeckLen > 0 {
			return &engine.Action{Type: engine.ActionDraw}
		}
		return nil
	}

	scored := make([]ScoredMove, len(candidates))
	for i, a := range candidates {
		scored[i] = ScoredMove{Action: a, Score: ScoreMove(g, a)}
	}

	var pick engine.Action
	switch s.Difficulty {
	case Easy:
		pick = s.selectEasy(scored)
	case Hard:
		pick = selectHard(scored)
	default:
		pick = s.selectStandard(scored)
	}
	return &pick
}

// GenerateMoves enumerates every legal move_card action for the acting
// player: singles from the hand to each foundation and tableau pile, and
// every valid tableau suffix run to each other tableau pile (or, for
// singleton runs, to foundations).
func GenerateMoves(g *engine.GameState) []engine.Action {
	var moves []engine.Action
	anyOnEmpty := g.Rules.EmptyTableauAnyCard
	acting := g.CurrentPlayer

	// Hand cards.
	for i := uint8(0); i < g.Players[acting].HandLen; i++ {
		card := g.Players[acting].Hand[i]
		for f := 0; f < engine.NumFoundations; f++ {
			if engine.IsValidFoundationMove(card, g.FoundationTop(f)) {
				moves = append(moves, moveCard(engine.PileHand, 0, engine.PileFoundation, f, card))
			}
		}
		for t := 0; t < engine.NumTableau; t++ {
			if engine.IsValidTableauMove(card, g.TableauTop(t), anyOnEmpty) {
				moves = append(moves, moveCard(engine.PileHand, 0, engine.PileTableau, t, card))
			}
		}
	}

	// Tableau runs: every suffix of every pile.
	for from := 0; from < engine.NumTableau; from++ {
		pileLen := int(g.TableauLen[from])
		for start := 0; start < pileLen; start++ {
			run := g.TableauRun(from, start)
			head := run[0]

			if len(run) == 1 {
				for f := 0; f < engine.NumFoundations; f++ {
					if engine.IsValidFoundationMove(head, g.FoundationTop(f)) {
						moves = append(moves, moveCard(engine.PileTableau, from, engine.PileFoundation, f, head))
					}
				}
			}
			for to := 0; to < engine.NumTableau; to++ {
				if to == from {
					continue
				}
				if engine.IsValidTableauMove(head, g.TableauTop(to), anyOnEmpty) && engine.IsValidSequence(run) {
					moves = append(moves, moveCard(engine.PileTableau, from, engine.PileTableau, to, head))
				}
			}
		}
	}

	return moves
}

// ScoreMove assigns the static heuristic value of a candidate action.
func ScoreMove(g *engine.GameState, a engine.Action) int {
	if a.Type == engine.ActionDraw {
		return scoreDraw
	}
	if a.Type != engine.ActionMoveCard || a.To == nil {
		return 0
	}

	score := 0
	if a.To.Type == engine.PileFoundation {
		score += scoreFoundationDest
	}
	if a.From != nil && a.From.Type == engine.PileHand {
		score += scoreFromHand
	}
	if a.From != nil && a.From.Type == engine.PileTableau {
		// Moving the whole pile vacates it for a future King.
		t := a.From.Index
		if g.TableauLen[t] > 0 && g.Tableau[t][0].ID() == a.CardID {
			score += scoreEmptiesPile
		}
	}
	if card, ok := engine.CardByID(a.CardID); ok && card.IsAce() {
		score += scoreAceBonus
	}
	return score
}

// selectEasy samples over all candidates, weighted by max(1, score+10):
// biased toward good moves but deliberately fallible.
func (s *Selector) selectEasy(scored []ScoredMove) engine.Action {
	total := 0
	weights := make([]int, len(scored))
	for i, m := range scored {
		w := m.Score + 10
		if w < 1 {
			w = 1
		}
		weights[i] = w
		total += w
	}
	roll := s.rng.Intn(total)
	for i, w := range weights {
		roll -= w
		if roll < 0 {
			return scored[i].Action
		}
	}
	return scored[len(scored)-1].Action
}

// selectStandard sorts by score and picks uniformly from the top half.
func (s *Selector) selectStandard(scored []ScoredMove) engine.Action {
	sortByScore(scored)
	top := (len(scored) + 1) / 2
	return scored[s.rng.Intn(top)].Action
}

// selectHard always takes the highest-scoring candidate; ties break by
// enumeration order.
func selectHard(scored []ScoredMove) engine.Action {
	sortByScore(scored)
	return scored[0].Action
}

// sortByScore sorts descending by score, stable so that enumeration order
// decides ties.
func sortByScore(scored []ScoredMove) {
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
}

func moveCard(fromType engine.PileType, fromIdx int, toType engine.PileType, toIdx int, card engine.Card) engine.Action {
	return engine.Action{
		Type:   engine.ActionMoveCard,
		From:   &engine.PileRef{Type: fromType, Index: fromIdx},
		To:     &engine.PileRef{Type: toType, Index: toIdx},
		CardID: card.ID(),
	}
}
