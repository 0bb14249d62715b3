package domain

import "math/rand"

// ShoeSize is the number of cards in the two-deck stock.
const ShoeSize = 104

// Stock is the face-down draw pile: two full 52-card decks. The top of the
// stock is the last element.
type Stock struct {
	cards []Card
	rng   *rand.Rand
}

// NewStock builds a shuffled 104-card two-deck stock using the provided rng.
func NewStock(rng *rand.Rand) *Stock {
	cards := make([]Card, 0, ShoeSize)
	for copies := 0; copies < 2; copies++ {
		for _, s := range Suits {
			for r := 1; r <= 13; r++ {
				cards = append(cards, Card{Suit: s, Rank: r})
			}
		}
	}
	st := &Stock{cards: cards, rng: rng}
	st.shuffle()
	return st
}

// Fisher-Yates, in place.
func (s *Stock) shuffle() {
	s.rng.Shuffle(len(s.cards), func(i, j int) {
		s.cards[i], s.cards[j] = s.cards[j], s.cards[i]
	})
}

// Deal removes and returns the top card. Callers must check IsEmpty first;
// dealing from an empty stock returns the zero Card.
func (s *Stock) Deal() Card {
	if len(s.cards) == 0 {
		return Card{}
	}
	c := s.cards[len(s.cards)-1]
	s.cards = s.cards[:len(s.cards)-1]
	return c
}

// IsEmpty reports whether the stock has no cards left.
func (s *Stock) IsEmpty() bool {
	return len(s.cards) == 0
}

// Len returns the number of cards remaining.
func (s *Stock) Len() int {
	return len(s.cards)
}

// Reset replaces the stock contents with a shuffled copy of pile. It reports
// false without mutating anything when pile is empty; this is the recycling
// step used when the stock runs dry mid-round.
func (s *Stock) Reset(pile []Card) bool {
	if len(pile) == 0 {
		return false
	}
	s.cards = append(s.cards[:0:0], pile...)
	s.shuffle()
	return true
}
