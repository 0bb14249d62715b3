package internal

import (
	"sort"

	"github.com/MortisHD/SlatteryShanghai/internal/domain"
)

// Candidate is a meldable grouping detected in a hand, expressed as hand
// indices so the caller can submit it directly.
type Candidate struct {
	Type    domain.MeldType
	Indices []int
}

// CandidateMelds scans the hand for rank groups of three or more and
// same-suit runs of four or more consecutive values. Groups come first,
// larger candidates before smaller ones within each kind.
func CandidateMelds(hand []domain.Card) []Candidate {
	var out []Candidate

	byRank := make(map[int][]int)
	for i, c := range hand {
		byRank[c.Rank] = append(byRank[c.Rank], i)
	}
	var groups []Candidate
	for _, idxs := range byRank {
		if len(idxs) >= domain.MinSetSize {
			groups = append(groups, Candidate{Type: domain.MeldSet, Indices: append([]int(nil), idxs...)})
		}
	}
	sort.Slice(groups, func(i, j int) bool {
		if len(groups[i].Indices) != len(groups[j].Indices) {
			return len(groups[i].Indices) > len(groups[j].Indices)
		}
		return groups[i].Indices[0] < groups[j].Indices[0]
	})
	out = append(out, groups...)

	var runs []Candidate
	for _, suit := range domain.Suits {
		runs = append(runs, suitRuns(hand, suit)...)
	}
	sort.Slice(runs, func(i, j int) bool {
		if len(runs[i].Indices) != len(runs[j].Indices) {
			return len(runs[i].Indices) > len(runs[j].Indices)
		}
		return runs[i].Indices[0] < runs[j].Indices[0]
	})
	out = append(out, runs...)

	return out
}

// suitRuns finds maximal chains of consecutive card values within one suit.
// Duplicate values contribute a single card each; the spares stay in hand.
func suitRuns(hand []domain.Card, suit domain.Suit) []Candidate {
	byValue := make(map[int]int)
	for i, c := range hand {
		if c.Suit != suit {
			continue
		}
		if _, seen := byValue[c.Value()]; !seen {
			byValue[c.Value()] = i
		}
	}
	if len(byValue) < domain.MinRunSize {
		return nil
	}

	values := make([]int, 0, len(byValue))
	for v := range byValue {
		values = append(values, v)
	}
	sort.Ints(values)

	var out []Candidate
	start := 0
	for i := 1; i <= len(values); i++ {
		if i < len(values) && values[i] == values[i-1]+1 {
			continue
		}
		if i-start >= domain.MinRunSize {
			indices := make([]int, 0, i-start)
			for _, v := range values[start:i] {
				indices = append(indices, byValue[v])
			}
			out = append(out, Candidate{Type: domain.MeldRun, Indices: indices})
		}
		start = i
	}
	return out
}

// Usefulness estimates how much the card at idx contributes to the rest of
// the hand. Same-rank companions count toward future sets; same-suit
// neighbors within two values count toward future runs, adjacent neighbors
// twice as much as gapped ones.
func Usefulness(hand []domain.Card, idx int) float64 {
	return UsefulnessOf(hand, idx, hand[idx])
}

// UsefulnessOf scores an arbitrary card against the hand, skipping the hand
// slot at skipIdx (pass -1 when the card is not in the hand, as for a buy
// decision on a discard).
func UsefulnessOf(hand []domain.Card, skipIdx int, card domain.Card) float64 {
	score := 0.0
	for i, c := range hand {
		if i == skipIdx {
			continue
		}
		if c.Rank == card.Rank {
			score += 1.0
		}
		if c.Suit == card.Suit {
			switch gap := absInt(c.Value() - card.Value()); gap {
			case 1:
				score += 0.5
			case 2:
				score += 0.25
			}
		}
	}
	return score
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
