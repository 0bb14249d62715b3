package domain

import "sort"

// MeldType distinguishes the two legal meld shapes.
type MeldType string

const (
	// MeldSet is three or more cards of one rank.
	MeldSet MeldType = "set"
	// MeldRun is four or more cards of one suit with consecutive values.
	MeldRun MeldType = "run"
)

// MinSetSize and MinRunSize are the absolute floors for a legal meld;
// round contracts may demand larger melds but never smaller.
const (
	MinSetSize = 3
	MinRunSize = 4
)

// Meld is a laid-down combination owned by one player for the rest of the round.
type Meld struct {
	Type  MeldType `json:"type"`
	Cards []Card   `json:"cards"`
}

// ValidateMeld reports whether cards form a legal meld of the claimed type.
// It is pure: the input slice is never reordered or mutated.
func ValidateMeld(cards []Card, meldType MeldType) bool {
	switch meldType {
	case MeldSet:
		return validateSet(cards)
	case MeldRun:
		return validateRun(cards)
	default:
		return false
	}
}

func validateSet(cards []Card) bool {
	if len(cards) < MinSetSize {
		return false
	}
	rank := cards[0].Rank
	for _, c := range cards {
		if c.Rank != rank {
			return false
		}
	}
	return true
}

func validateRun(cards []Card) bool {
	if len(cards) < MinRunSize {
		return false
	}
	suit := cards[0].Suit
	values := make([]int, len(cards))
	for i, c := range cards {
		if c.Suit != suit {
			return false
		}
		values[i] = c.Value()
	}
	sort.Ints(values)
	for i := 1; i < len(values); i++ {
		// A zero gap means the shoe's duplicate copy snuck in; both
		// cases break contiguity.
		if values[i] != values[i-1]+1 {
			return false
		}
	}
	return true
}

// CanExtend reports whether card may be laid off onto the meld: matching
// rank for a set, or extending either end of a run's value range in suit.
func CanExtend(m Meld, card Card) bool {
	if len(m.Cards) == 0 {
		return false
	}
	switch m.Type {
	case MeldSet:
		return card.Rank == m.Cards[0].Rank
	case MeldRun:
		if card.Suit != m.Cards[0].Suit {
			return false
		}
		lo, hi := runBounds(m.Cards)
		return card.Value() == lo-1 || card.Value() == hi+1
	default:
		return false
	}
}

func runBounds(cards []Card) (lo, hi int) {
	lo, hi = cards[0].Value(), cards[0].Value()
	for _, c := range cards[1:] {
		v := c.Value()
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
