package domain

import "fmt"

// Suit identifies one of the four French suits.
type Suit string

const (
	Hearts   Suit = "H"
	Diamonds Suit = "D"
	Clubs    Suit = "C"
	Spades   Suit = "S"
)

// Suits lists all suits in the fixed enumeration order used when building a shoe.
var Suits = []Suit{Hearts, Diamonds, Clubs, Spades}

// Card is a single playing card. Rank runs 1 (Ace) through 13 (King).
// The shoe holds two full decks, so two cards with equal Suit and Rank are
// expected and must never be collapsed into one; identity is positional.
type Card struct {
	Suit Suit `json:"suit"`
	Rank int  `json:"rank"`
}

// Value is the numeric value used for run ordering: Ace is 1, face cards
// count 10, everything else is its face value.
func (c Card) Value() int {
	if c.Rank > 10 {
		return 10
	}
	return c.Rank
}

// ScoreValue is the penalty charged for holding the card at round end:
// Ace 20, face cards 10, everything else face value.
func (c Card) ScoreValue() int {
	switch {
	case c.Rank == 1:
		return 20
	case c.Rank > 10:
		return 10
	default:
		return c.Rank
	}
}

// Glyph renders the card for logs and clients, e.g. "A♥" or "10♣".
func (c Card) Glyph() string {
	return c.rankLabel() + c.suitSymbol()
}

// Color reports "red" for hearts/diamonds and "black" for clubs/spades.
func (c Card) Color() string {
	if c.Suit == Hearts || c.Suit == Diamonds {
		return "red"
	}
	return "black"
}

func (c Card) rankLabel() string {
	switch c.Rank {
	case 1:
		return "A"
	case 11:
		return "J"
	case 12:
		return "Q"
	case 13:
		return "K"
	default:
		return fmt.Sprintf("%d", c.Rank)
	}
}

func (c Card) suitSymbol() string {
	switch c.Suit {
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	default:
		return "♠"
	}
}
