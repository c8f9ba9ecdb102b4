package engine

// PileType identifies which kind of pile an action refers to.
type PileType string

const (
	PileHand       PileType = "hand"
	PileTableau    PileType = "tableau"
	PileFoundation PileType = "foundation"
)

// ActionType is the tag of a player action.
type ActionType string

const (
	ActionDraw     ActionType = "draw"
	ActionMoveCard ActionType = "move_card"
	ActionEndTurn  ActionType = "end_turn"
)

// PileRef addresses a single pile on the board.
type PileRef struct {
	Type  PileType `json:"type"`
	Index int      `json:"index"`
}

// Action is one player action as it crosses the wire.
type Action struct {
	Type   ActionType `json:"type"`
	From   *PileRef   `json:"from,omitempty"`
	To     *PileRef   `json:"to,omitempty"`
	CardID string     `json:"cardId,omitempty"`
}

// Rejection reasons reported on Result.Error. Rejections are local and
// non-fatal: the caller gets the original state back and may retry.
const (
	ErrEmptyDeck             = "EmptyDeck"
	ErrCardNotFound          = "CardNotFound"
	ErrMultiCardToFoundation = "MultiCardToFoundation"
	ErrInvalidMove           = "InvalidMove"
	ErrInvalidParameters     = "InvalidParameters"
	ErrUnknownActionType     = "UnknownActionType"
	ErrGameOver              = "GameOver"
)

// Result is the outcome of one ApplyMove transition. On success State is a
// new snapshot; on rejection State is the unchanged input and Error names
// the reason.
type Result struct {
	Valid bool
	State GameState
	Error string
}

// reject wraps the untouched input state with an error reason.
func reject(state GameState, reason string) Result {
	return Result{Valid: false, State: state, Error: reason}
}

// ApplyMove applies a single action to state and returns the transition
// result. The input state is never mutated: transitions are all-or-nothing
// against a private copy.
func ApplyMove(state GameState, action Action) Result {
	if state.IsTerminal() {
		return reject(state, ErrGameOver)
	}

	switch action.Type {
	case ActionDraw:
		return applyDraw(state)
	case ActionMoveCard:
		return applyMoveCard(state, action)
	case ActionEndTurn:
		return applyEndTurn(state)
	default:
		return reject(state, ErrUnknownActionType)
	}
}

// drawOne pops the top deck card into player p's hand and counts the move.
// Caller must ensure the deck is non-empty.
func (g *GameState) drawOne(p uint8) {
	g.DeckLen--
	card := g.Deck[g.DeckLen]
	g.Players[p].Hand[g.Players[p].HandLen] = card
	g.Players[p].HandLen++
	g.Moves++
}

// applyDraw moves one card from the deck to the current player's hand.
// Drawing never changes whose turn it is.
func applyDraw(state GameState) Result {
	if state.DeckLen == 0 {
		return reject(state, ErrEmptyDeck)
	}
	next := state
	next.drawOne(next.CurrentPlayer)
	next.checkWin()
	return Result{Valid: true, State: next}
}

// applyEndTurn finishes the current player's turn: auto-draw one card if the
// deck allows, then advance round-robin, bumping the round counter on wrap.
func applyEndTurn(state GameState) Result {
	next := state
	if next.Phase == PhasePlaying {
		next.Phase = PhaseDrawing
		if next.DeckLen > 0 {
			next.drawOne(next.CurrentPlayer)
		}
	}
	next.CurrentPlayer = next.NextPlayer(next.CurrentPlayer)
	if next.CurrentPlayer == 0 {
		next.Round++
	}
	next.Phase = PhasePlaying
	next.checkWin()
	return Result{Valid: true, State: next}
}

// applyMoveCard validates and executes a move_card action: a single hand or
// foundation card, or a tableau run, onto a tableau or foundation pile.
func applyMoveCard(state GameState, action Action) Result {
	if action.From == nil || action.To == nil || action.CardID == "" {
		return reject(state, ErrInvalidParameters)
	}

	next := state
	acting := next.CurrentPlayer

	// Resolve the source run. For tableau sources the run is the found card
	// and everything above it; hand and foundation sources move singletons.
	var run []Card
	var srcTableau, srcStart int
	switch action.From.Type {
	case PileHand:
		idx := next.FindInHand(acting, action.CardID)
		if idx < 0 {
			return reject(state, ErrCardNotFound)
		}
		run = []Card{next.Players[acting].Hand[idx]}
		srcStart = idx
	case PileTableau:
		t := action.From.Index
		if t < 0 || t >= NumTableau {
			return reject(state, ErrInvalidParameters)
		}
		idx := next.FindInTableau(t, action.CardID)
		if idx < 0 {
			return reject(state, ErrCardNotFound)
		}
		run = next.TableauRun(t, idx)
		srcTableau, srcStart = t, idx
	case PileFoundation:
		f := action.From.Index
		if f < 0 || f >= NumFoundations {
			return reject(state, ErrInvalidParameters)
		}
		top := next.FoundationTop(f)
		if top == EmptyCard || top.ID() != action.CardID {
			return reject(state, ErrCardNotFound)
		}
		run = []Card{top}
	default:
		return reject(state, ErrInvalidParameters)
	}

	// Validate the destination.
	toFoundation := false
	switch action.To.Type {
	case PileFoundation:
		f := action.To.Index
		if f < 0 || f >= NumFoundations {
			return reject(state, ErrInvalidParameters)
		}
		if len(run) > 1 {
			return reject(state, ErrMultiCardToFoundation)
		}
		if !IsValidFoundationMove(run[0], next.FoundationTop(f)) {
			return reject(state, ErrInvalidMove)
		}
		toFoundation = true
	case PileTableau:
		t := action.To.Index
		if t < 0 || t >= NumTableau {
			return reject(state, ErrInvalidParameters)
		}
		if action.From.Type == PileTableau && t == action.From.Index {
			return reject(state, ErrInvalidMove)
		}
		if !IsValidTableauMove(run[0], next.TableauTop(t), next.Rules.EmptyTableauAnyCard) {
			return reject(state, ErrInvalidMove)
		}
		if !IsValidSequence(run) {
			return reject(state, ErrInvalidMove)
		}
	default:
		return reject(state, ErrInvalidParameters)
	}

	// Remove the run from its source.
	switch action.From.Type {
	case PileHand:
		h := &next.Players[acting]
		copy(h.Hand[srcStart:], h.Hand[srcStart+1:h.HandLen])
		h.HandLen--
	case PileTableau:
		next.TableauLen[srcTableau] = uint8(srcStart)
	case PileFoundation:
		next.FoundationLen[action.From.Index]--
	}

	// Append the run to its destination in order.
	if toFoundation {
		f := action.To.Index
		next.Foundations[f][next.FoundationLen[f]] = run[0]
		next.FoundationLen[f]++
	} else {
		t := action.To.Index
		for _, c := range run {
			next.Tableau[t][next.TableauLen[t]] = c
			next.TableauLen[t]++
		}
	}

	next.Moves++
	next.Players[acting].Score += int32(next.Rules.PointsPerMove)
	if toFoundation {
		next.Players[acting].Score += int32(next.Rules.PointsPerFoundation)
	}
	next.checkWin()
	return Result{Valid: true, State: next}
}
