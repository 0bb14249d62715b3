package bot

import (
	"github.com/MortisHD/SlatteryShanghai/internal/domain"
)

// Agent binds a provisioned bot identity to a brain for one match.
type Agent struct {
	ID    string
	Name  string
	Brain Brain
}

// NewAgent builds an agent from an identity, with the brain picked by the
// identity's difficulty tier.
func NewAgent(identity BotIdentity) (*Agent, error) {
	difficulty := identity.Difficulty
	if difficulty == "" {
		difficulty = DifficultyMedium
	}
	brain, err := NewBrain(difficulty)
	if err != nil {
		return nil, err
	}
	name := identity.DisplayName
	if name == "" {
		name = identity.Username
	}
	return &Agent{ID: identity.UserID, Name: name, Brain: brain}, nil
}

// Observe forwards a surfaced card to the brain's memory.
func (a *Agent) Observe(card domain.Card) {
	a.Brain.Observe(card)
}

// ResetRound clears per-round brain state before a new deal.
func (a *Agent) ResetRound() {
	a.Brain.ResetRound()
}
