package engine

import (
	"math/rand"
	"time"
)

// NewDeck returns the 52-card deck in suit-major order, unshuffled.
func NewDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	for suit := uint8(0); suit < 4; suit++ {
		for rank := RankAce; rank <= RankKing; rank++ {
			deck = append(deck, NewCard(suit, rank))
		}
	}
	return deck
}

// lcgModulus and friends parameterize the seeded float stream. The stream
// must stay bit-for-bit stable across releases: Daily Challenge fairness
// depends on every process producing the identical shuffle for a seed.
const (
	lcgMultiplier = 9301
	lcgIncrement  = 49297
	lcgModulus    = 233280
)

// SeedHash folds a seed string into a 32-bit integer, shifting and
// subtracting per character with int32 wraparound.
func SeedHash(seed string) int32 {
	var h int32
	for _, b := range []byte(seed) {
		h = (h << 5) - h + int32(b)
	}
	return h
}

// SeededFloats returns a deterministic stream of pseudo-random floats in
// [0, 1) derived from the seed string: a char-fold hash feeding an LCG.
// The initial hash is normalized into [0, lcgModulus) so the stream is
// well-defined for every seed.
func SeededFloats(seed string) func() float64 {
	state := SeedHash(seed) % lcgModulus
	if state < 0 {
		state += lcgModulus
	}
	return func() float64 {
		state = (state*lcgMultiplier + lcgIncrement) % lcgModulus
		return float64(state) / lcgModulus
	}
}

// randomFloats returns a non-deterministic float stream for unseeded games.
func randomFloats() func() float64 {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	return r.Float64
}

// Shuffle returns a Fisher-Yates shuffled copy of deck, drawing randomness
// from next. The input slice is never mutated.
func Shuffle(deck []Card, next func() float64) []Card {
	out := make([]Card, len(deck))
	copy(out, deck)
	for i := len(out) - 1; i > 0; i-- {
		j := int(next() * float64(i+1))
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// floatsForSeed picks the deterministic stream when a seed is present.
func floatsForSeed(seed string) func() float64 {
	if seed == "" {
		return randomFloats()
	}
	return SeededFloats(seed)
}

// NewGame builds, shuffles and deals a fresh game. A non-empty seed makes
// the resulting state fully deterministic: identical seed, identical deal,
// across processes and time. An empty seed uses a time-seeded source.
//
// Deal order follows the table setup: each tableau pile receives one card
// popped from the shuffled deck end, then each player receives
// Rules.CardsPerPlayer cards; the remainder stays as the face-down draw
// deck.
func NewGame(seed string, rules Rules) GameState {
	var g GameState
	g.Rules = rules
	g.Seed = seed
	g.Winner = NoWinner
	g.Round = 1
	g.Phase = PhasePlaying

	shuffled := Shuffle(NewDeck(), floatsForSeed(seed))
	g.DeckLen = uint8(copy(g.Deck[:], shuffled))

	// One face-up card per tableau pile.
	for t := 0; t < NumTableau; t++ {
		g.DeckLen--
		g.Tableau[t][0] = g.Deck[g.DeckLen]
		g.TableauLen[t] = 1
	}

	// Deal hands round-robin.
	n := rules.numPlayers()
	for c := uint8(0); c < rules.cardsPerPlayer(); c++ {
		for p := uint8(0); p < n; p++ {
			g.DeckLen--
			g.Players[p].Hand[c] = g.Deck[g.DeckLen]
			g.Players[p].HandLen++
		}
	}

	return g
}
