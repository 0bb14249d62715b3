package bot

import (
	"github.com/MortisHD/SlatteryShanghai/internal/domain"
)

const copiesPerRank = 8 // two decks, four suits each

// Memory stores the bot's private view of which cards have surfaced during
// the round: its own deals, every discard it has watched go by, and cards
// opponents bought face up.
type Memory struct {
	seenByRank [14]int // indexed by rank 1..13
}

// NewMemory initializes an empty memory.
func NewMemory() *Memory {
	return &Memory{}
}

// Reset clears the memory for a new round.
func (m *Memory) Reset() {
	m.seenByRank = [14]int{}
}

// MarkSeen records one surfaced card.
func (m *Memory) MarkSeen(card domain.Card) {
	if card.Rank < 1 || card.Rank > 13 {
		return
	}
	m.seenByRank[card.Rank]++
}

// SeenOfRank reports how many cards of the given rank have surfaced.
func (m *Memory) SeenOfRank(rank int) int {
	if rank < 1 || rank > 13 {
		return 0
	}
	return m.seenByRank[rank]
}

// RankExhaustion reports the fraction of a rank's copies already seen, 0 when
// the rank is fully live and 1 when every copy has surfaced.
func (m *Memory) RankExhaustion(rank int) float64 {
	return float64(m.SeenOfRank(rank)) / float64(copiesPerRank)
}
