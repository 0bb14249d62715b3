package bot

import (
	"github.com/MortisHD/SlatteryShanghai/internal/domain"
)

// DrawChoice is the bot's decision for the start of its turn.
type DrawChoice int

const (
	// DrawFromStock takes the face-down top of the stock.
	DrawFromStock DrawChoice = iota
	// TakeDiscard picks up the face-up top of the discard pile.
	TakeDiscard
)

// MeldPlan is one meld submission expressed as hand indices. Indices are
// valid against the hand as it stands when the plan is produced; callers
// must re-plan after each applied meld.
type MeldPlan struct {
	Type    domain.MeldType
	Indices []int
}

// Brain produces a bot player's decisions from the game state. All methods
// are pure reads of the game; the caller applies the results through the
// normal action API.
type Brain interface {
	// ChooseDraw picks between the stock and the discard top.
	ChooseDraw(game *domain.Game, userID string) DrawChoice
	// PlanMeld proposes the next meld to lay down, or ok=false when the
	// hand holds nothing worth melding.
	PlanMeld(game *domain.Game, userID string) (MeldPlan, bool)
	// ChooseDiscard picks the hand index to throw.
	ChooseDiscard(game *domain.Game, userID string) int
	// WantsBuy decides whether the contested discard is worth a buy token.
	WantsBuy(game *domain.Game, userID string, card domain.Card) bool
	// Observe feeds the brain a card that surfaced face up.
	Observe(card domain.Card)
	// ResetRound clears any per-round state before a new deal.
	ResetRound()
}
