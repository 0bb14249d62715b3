package bot

import (
	botinternal "github.com/MortisHD/SlatteryShanghai/internal/bot/internal"
	"github.com/MortisHD/SlatteryShanghai/internal/domain"
)

// heuristic is the single greedy strategy behind every difficulty tier.
// Tiers differ only in the Tuning thresholds and pacing.
type heuristic struct {
	tuning Tuning
	memory *Memory
}

func newHeuristic(tuning Tuning) *heuristic {
	return &heuristic{tuning: tuning, memory: NewMemory()}
}

// ChooseDraw prefers the discard top when it clearly completes a meld or
// scores above the pickup threshold; otherwise draws blind from the stock.
func (h *heuristic) ChooseDraw(game *domain.Game, userID string) DrawChoice {
	pl, ok := game.Players[userID]
	if !ok {
		return DrawFromStock
	}
	top, ok := game.DiscardTop()
	if !ok {
		return DrawFromStock
	}
	if h.completesMeld(pl.Hand, top) {
		return TakeDiscard
	}
	if h.usefulness(pl.Hand, -1, top) >= h.tuning.PickupThreshold {
		return TakeDiscard
	}
	return DrawFromStock
}

// PlanMeld proposes one meld: a candidate of a type the round contract still
// needs, or any candidate once the bot has gone down. Before going down the
// bot holds candidates of types the contract does not call for.
func (h *heuristic) PlanMeld(game *domain.Game, userID string) (MeldPlan, bool) {
	pl, ok := game.Players[userID]
	if !ok {
		return MeldPlan{}, false
	}
	req := game.Requirement()
	setsShort, runsShort := req.MissingCounts(pl.Melds)

	candidates := botinternal.CandidateMelds(pl.Hand)

	wanted := domain.MeldSet
	if runsShort > setsShort {
		wanted = domain.MeldRun
	}
	for pass := 0; pass < 2; pass++ {
		for _, cand := range candidates {
			needed := (cand.Type == domain.MeldSet && setsShort > 0) ||
				(cand.Type == domain.MeldRun && runsShort > 0)
			if !needed {
				continue
			}
			if pass == 0 && cand.Type != wanted {
				continue
			}
			return MeldPlan{Type: cand.Type, Indices: cand.Indices}, true
		}
	}

	if pl.GoneDown {
		for _, cand := range candidates {
			return MeldPlan{Type: cand.Type, Indices: cand.Indices}, true
		}
	}
	return MeldPlan{}, false
}

// ChooseDiscard throws the card least useful to the rest of the hand,
// preferring to dump higher point values on equal usefulness.
func (h *heuristic) ChooseDiscard(game *domain.Game, userID string) int {
	pl, ok := game.Players[userID]
	if !ok || len(pl.Hand) == 0 {
		return 0
	}
	best := 0
	bestScore := h.usefulness(pl.Hand, 0, pl.Hand[0])
	for i := 1; i < len(pl.Hand); i++ {
		score := h.usefulness(pl.Hand, i, pl.Hand[i])
		if score < bestScore ||
			(score == bestScore && pl.Hand[i].ScoreValue() > pl.Hand[best].ScoreValue()) {
			best = i
			bestScore = score
		}
	}
	return best
}

// WantsBuy spends a token when the contested card scores above the buy
// threshold against the bot's hand.
func (h *heuristic) WantsBuy(game *domain.Game, userID string, card domain.Card) bool {
	pl, ok := game.Players[userID]
	if !ok {
		return false
	}
	return h.usefulness(pl.Hand, -1, card) >= h.tuning.BuyThreshold
}

// Observe records a card that surfaced face up.
func (h *heuristic) Observe(card domain.Card) {
	h.memory.MarkSeen(card)
}

// ResetRound clears the seen-card memory before a new deal.
func (h *heuristic) ResetRound() {
	h.memory.Reset()
}

// usefulness is the analyzer score discounted by how many copies of the
// card's rank have already surfaced this round.
func (h *heuristic) usefulness(hand []domain.Card, skipIdx int, card domain.Card) float64 {
	score := botinternal.UsefulnessOf(hand, skipIdx, card)
	return score - h.tuning.ExhaustionPenalty*h.memory.RankExhaustion(card.Rank)
}

// completesMeld reports whether adding the card to the hand yields a meld
// candidate that actually contains it.
func (h *heuristic) completesMeld(hand []domain.Card, card domain.Card) bool {
	extended := append(append([]domain.Card(nil), hand...), card)
	newIdx := len(extended) - 1
	for _, cand := range botinternal.CandidateMelds(extended) {
		for _, idx := range cand.Indices {
			if idx == newIdx {
				return true
			}
		}
	}
	return false
}
