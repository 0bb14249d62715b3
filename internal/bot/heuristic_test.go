package bot

import (
	"testing"

	"github.com/MortisHD/SlatteryShanghai/internal/domain"
)

func gameWithHand(round int, hand []domain.Card) *domain.Game {
	return &domain.Game{
		Phase: domain.PhasePlaying,
		Round: round,
		Players: map[string]*domain.PlayerRoundState{
			"bot": {UserID: "bot", Hand: hand, BuysRemaining: 3},
		},
		TurnOrder: []string{"bot"},
	}
}

func TestChooseDrawPicksUpCompletingCard(t *testing.T) {
	h := newHeuristic(MediumTuning)
	game := gameWithHand(1, []domain.Card{
		{Suit: domain.Spades, Rank: 7},
		{Suit: domain.Clubs, Rank: 7},
		{Suit: domain.Diamonds, Rank: 12},
	})
	game.DiscardPile = []domain.Card{{Suit: domain.Hearts, Rank: 7}}

	if got := h.ChooseDraw(game, "bot"); got != TakeDiscard {
		t.Fatalf("choice = %v, want TakeDiscard for a set-completing seven", got)
	}
}

func TestChooseDrawDefaultsToStock(t *testing.T) {
	h := newHeuristic(MediumTuning)
	game := gameWithHand(1, []domain.Card{
		{Suit: domain.Spades, Rank: 2},
		{Suit: domain.Clubs, Rank: 7},
		{Suit: domain.Diamonds, Rank: 12},
	})
	game.DiscardPile = []domain.Card{{Suit: domain.Hearts, Rank: 10}}

	if got := h.ChooseDraw(game, "bot"); got != DrawFromStock {
		t.Fatalf("choice = %v, want DrawFromStock for a useless ten", got)
	}
}

func TestPlanMeldPrefersContractType(t *testing.T) {
	h := newHeuristic(MediumTuning)
	// Round 2 wants one set and one run; the set should come first.
	game := gameWithHand(2, []domain.Card{
		{Suit: domain.Hearts, Rank: 9},
		{Suit: domain.Spades, Rank: 9},
		{Suit: domain.Clubs, Rank: 9},
		{Suit: domain.Hearts, Rank: 2},
		{Suit: domain.Hearts, Rank: 3},
		{Suit: domain.Hearts, Rank: 4},
		{Suit: domain.Hearts, Rank: 5},
	})

	plan, ok := h.PlanMeld(game, "bot")
	if !ok {
		t.Fatal("expected a meld plan")
	}
	if plan.Type != domain.MeldSet {
		t.Fatalf("type = %s, want the set first", plan.Type)
	}
	for _, idx := range plan.Indices {
		if game.Players["bot"].Hand[idx].Rank != 9 {
			t.Fatalf("index %d is not a nine", idx)
		}
	}
}

func TestPlanMeldHoldsUnneededTypeBeforeGoingDown(t *testing.T) {
	h := newHeuristic(MediumTuning)
	// Round 1 wants two sets; a lone run candidate stays in hand.
	game := gameWithHand(1, []domain.Card{
		{Suit: domain.Hearts, Rank: 2},
		{Suit: domain.Hearts, Rank: 3},
		{Suit: domain.Hearts, Rank: 4},
		{Suit: domain.Hearts, Rank: 5},
	})

	if _, ok := h.PlanMeld(game, "bot"); ok {
		t.Fatal("run candidate must be held while the contract wants sets")
	}
}

func TestPlanMeldShedsExtrasAfterGoingDown(t *testing.T) {
	h := newHeuristic(MediumTuning)
	game := gameWithHand(1, []domain.Card{
		{Suit: domain.Hearts, Rank: 2},
		{Suit: domain.Hearts, Rank: 3},
		{Suit: domain.Hearts, Rank: 4},
		{Suit: domain.Hearts, Rank: 5},
	})
	pl := game.Players["bot"]
	pl.GoneDown = true
	pl.Melds = []domain.Meld{
		{Type: domain.MeldSet, Cards: []domain.Card{
			{Suit: domain.Hearts, Rank: 9}, {Suit: domain.Spades, Rank: 9}, {Suit: domain.Clubs, Rank: 9},
		}},
		{Type: domain.MeldSet, Cards: []domain.Card{
			{Suit: domain.Hearts, Rank: 11}, {Suit: domain.Spades, Rank: 11}, {Suit: domain.Clubs, Rank: 11},
		}},
	}

	plan, ok := h.PlanMeld(game, "bot")
	if !ok {
		t.Fatal("expected the leftover run to be shed")
	}
	if plan.Type != domain.MeldRun {
		t.Fatalf("type = %s, want run", plan.Type)
	}
}

func TestChooseDiscardDropsLeastUseful(t *testing.T) {
	h := newHeuristic(MediumTuning)
	game := gameWithHand(1, []domain.Card{
		{Suit: domain.Spades, Rank: 5},
		{Suit: domain.Clubs, Rank: 5},
		{Suit: domain.Hearts, Rank: 7},
		{Suit: domain.Hearts, Rank: 8},
		{Suit: domain.Diamonds, Rank: 13},
	})

	if got := h.ChooseDiscard(game, "bot"); got != 4 {
		t.Fatalf("discard index = %d, want the lone king at 4", got)
	}
}

func TestWantsBuyComparesTierThresholds(t *testing.T) {
	hand := []domain.Card{
		{Suit: domain.Spades, Rank: 5},
		{Suit: domain.Clubs, Rank: 5},
		{Suit: domain.Diamonds, Rank: 9},
		{Suit: domain.Diamonds, Rank: 13},
	}
	card := domain.Card{Suit: domain.Hearts, Rank: 5} // usefulness 2.0

	easy := newHeuristic(EasyTuning)
	medium := newHeuristic(MediumTuning)

	if easy.WantsBuy(gameWithHand(1, hand), "bot", card) {
		t.Fatal("easy tier should not pay for a marginal card")
	}
	if !medium.WantsBuy(gameWithHand(1, hand), "bot", card) {
		t.Fatal("medium tier should buy a third five")
	}
}

func TestSeenCopiesDiscountBuys(t *testing.T) {
	hand := []domain.Card{
		{Suit: domain.Spades, Rank: 5},
		{Suit: domain.Clubs, Rank: 5},
		{Suit: domain.Diamonds, Rank: 9},
		{Suit: domain.Diamonds, Rank: 13},
	}
	card := domain.Card{Suit: domain.Hearts, Rank: 5}

	h := newHeuristic(HardTuning)
	game := gameWithHand(1, hand)
	if !h.WantsBuy(game, "bot", card) {
		t.Fatal("hard tier should want the third five while fives are live")
	}

	for _, suit := range domain.Suits {
		h.Observe(domain.Card{Suit: suit, Rank: 5})
		h.Observe(domain.Card{Suit: suit, Rank: 5})
	}
	if h.WantsBuy(game, "bot", card) {
		t.Fatal("a rank with every copy seen is not worth a token")
	}

	h.ResetRound()
	if !h.WantsBuy(game, "bot", card) {
		t.Fatal("memory must clear between rounds")
	}
}

func TestNewBrainRejectsUnknownDifficulty(t *testing.T) {
	if _, err := NewBrain("nightmare"); err == nil {
		t.Fatal("expected an error for an unknown difficulty")
	}
	for _, difficulty := range []string{DifficultyEasy, DifficultyMedium, DifficultyHard} {
		if _, err := NewBrain(difficulty); err != nil {
			t.Fatalf("NewBrain(%s) error: %v", difficulty, err)
		}
	}
}
