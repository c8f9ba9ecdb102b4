package engine

import "fmt"

// Suit constants — packed into upper 4 bits of Card.
const (
	SuitHearts   uint8 = 0
	SuitDiamonds uint8 = 1
	SuitClubs    uint8 = 2
	SuitSpades   uint8 = 3
)

// Rank constants — packed into lower 4 bits of Card. Ace is low.
const (
	RankAce   uint8 = 1
	RankTwo   uint8 = 2
	RankThree uint8 = 3
	RankFour  uint8 = 4
	RankFive  uint8 = 5
	RankSix   uint8 = 6
	RankSeven uint8 = 7
	RankEight uint8 = 8
	RankNine  uint8 = 9
	RankTen   uint8 = 10
	RankJack  uint8 = 11
	RankQueen uint8 = 12
	RankKing  uint8 = 13
)

// Color of a card, derived from its suit.
const (
	ColorRed   uint8 = 0
	ColorBlack uint8 = 1
)

// Card is a packed uint8: upper 4 bits = suit, lower 4 bits = rank (1–13).
type Card uint8

// EmptyCard represents the absence of a card (an empty pile top).
const EmptyCard Card = 0xFF

// NewCard constructs a Card from suit and rank.
func NewCard(suit, rank uint8) Card {
	return Card((suit << 4) | (rank & 0x0F))
}

// Suit returns the suit bits (upper 4).
func (c Card) Suit() uint8 { return uint8(c) >> 4 }

// Rank returns the rank bits (lower 4). Ranks run 1 (Ace) through 13 (King).
func (c Card) Rank() uint8 { return uint8(c) & 0x0F }

// RankValue returns the total-order value of the rank, 1–13.
func (c Card) RankValue() int { return int(c.Rank()) }

// Color returns ColorRed for hearts/diamonds, ColorBlack for clubs/spades.
func (c Card) Color() uint8 {
	if s := c.Suit(); s == SuitHearts || s == SuitDiamonds {
		return ColorRed
	}
	return ColorBlack
}

// IsKing reports whether the card is a King of any suit.
func (c Card) IsKing() bool { return c.Rank() == RankKing }

// IsAce reports whether the card is an Ace of any suit.
func (c Card) IsAce() bool { return c.Rank() == RankAce }

var rankNames = [14]string{"", "A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}
var suitNames = [4]string{"hearts", "diamonds", "clubs", "spades"}

// RankName returns the display rank ("A", "2", ..., "10", "J", "Q", "K").
func (c Card) RankName() string {
	r := c.Rank()
	if r < 1 || r > 13 {
		return "?"
	}
	return rankNames[r]
}

// SuitName returns the lowercase suit name used on the wire.
func (c Card) SuitName() string {
	s := c.Suit()
	if s > SuitSpades {
		return "?"
	}
	return suitNames[s]
}

// ColorName returns "red" or "black".
func (c Card) ColorName() string {
	if c.Color() == ColorRed {
		return "red"
	}
	return "black"
}

// ID returns the stable card identity of the form "Q-hearts". It is unique
// per rank+suit and never changes as the card moves between piles.
func (c Card) ID() string {
	return c.RankName() + "-" + c.SuitName()
}

// String implements fmt.Stringer for debugging output.
func (c Card) String() string {
	if c == EmptyCard {
		return "empty"
	}
	return fmt.Sprintf("%s of %s", c.RankName(), c.SuitName())
}

// CardByID resolves a card id string ("Q-hearts") back to its Card value.
// Returns EmptyCard and false if the id does not name a real card.
func CardByID(id string) (Card, bool) {
	for suit := uint8(0); suit < 4; suit++ {
		for rank := RankAce; rank <= RankKing; rank++ {
			c := NewCard(suit, rank)
			if c.ID() == id {
				return c, true
			}
		}
	}
	return EmptyCard, false
}
