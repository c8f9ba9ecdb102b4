package engine

// Rules holds configurable game rule settings.
//
// The defaults encode the authoritative two-player policy: classical
// King-only placement on empty tableau piles and foundation-only scoring.
// The legacy cooperative variant is reachable by toggling fields rather
// than by a separate engine.
type Rules struct {
	NumPlayers          uint8 // number of players (1 or 2); 0 treated as 2
	CardsPerPlayer      uint8 // initial hand size; 0 treated as 7
	EmptyTableauAnyCard bool  // if true, any card may start an empty tableau pile
	SoloStrictWin       bool  // solo only: win requires hand, deck and tableau all empty
	PointsPerMove       int   // awarded for every accepted move_card
	PointsPerFoundation int   // awarded additionally for foundation placements
}

// DefaultRules returns the standard two-player competitive rules.
func DefaultRules() Rules {
	return Rules{
		NumPlayers:          2,
		CardsPerPlayer:      7,
		EmptyTableauAnyCard: false,
		SoloStrictWin:       false,
		PointsPerMove:       0,
		PointsPerFoundation: 100,
	}
}

// SoloRules returns the legacy single-player cooperative rules.
func SoloRules() Rules {
	return Rules{
		NumPlayers:          1,
		CardsPerPlayer:      7,
		EmptyTableauAnyCard: false,
		SoloStrictWin:       true,
		PointsPerMove:       10,
		PointsPerFoundation: 0,
	}
}

// numPlayers returns the effective number of players, treating 0 as 2.
func (r *Rules) numPlayers() uint8 {
	if r.NumPlayers == 0 {
		return 2
	}
	return r.NumPlayers
}

// cardsPerPlayer returns the effective initial hand size, treating 0 as 7.
func (r *Rules) cardsPerPlayer() uint8 {
	if r.CardsPerPlayer == 0 {
		return 7
	}
	return r.CardsPerPlayer
}

// IsValidFoundationMove reports whether card may be placed on a foundation
// whose current top is top (EmptyCard for an empty pile). Foundations build
// down in suit from a King.
func IsValidFoundationMove(card, top Card) bool {
	if card == EmptyCard {
		return false
	}
	if top == EmptyCard {
		return card.IsKing()
	}
	if card.Suit() != top.Suit() {
		return false
	}
	return top.RankValue()-card.RankValue() == 1
}

// IsValidTableauMove reports whether card may be placed on a tableau pile
// whose current top is top (EmptyCard for an empty pile). Tableau piles
// build down in alternating color; an empty pile takes a King unless
// anyOnEmpty relaxes that.
func IsValidTableauMove(card, top Card, anyOnEmpty bool) bool {
	if card == EmptyCard {
		return false
	}
	if top == EmptyCard {
		return anyOnEmpty || card.IsKing()
	}
	if card.Color() == top.Color() {
		return false
	}
	return top.RankValue()-card.RankValue() == 1
}

// IsValidSequence reports whether cards forms a movable run: strictly
// descending by exactly one rank per step with alternating colors.
// cards[0] is the bottom-most card of the run (the one placed onto the
// destination top). Empty and singleton runs are trivially valid.
func IsValidSequence(cards []Card) bool {
	for i := 0; i+1 < len(cards); i++ {
		cur, next := cards[i], cards[i+1]
		if cur.Color() == next.Color() {
			return false
		}
		if cur.RankValue()-next.RankValue() != 1 {
			return false
		}
	}
	return true
}
