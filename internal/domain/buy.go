package domain

// BuyWindow is the sub-state between a discard and the next player's draw:
// non-active players with buy tokens may claim the discarded card for the
// price of a penalty card from the stock.
type BuyWindow struct {
	Open          bool
	Card          Card
	DiscarderID   string
	Responses     map[string]bool // userID -> wants to buy
}

// BuyResult describes a resolved purchase.
type BuyResult struct {
	BuyerID     string
	Card        Card
	PenaltyCard Card
	GotPenalty  bool
}

// buyEligible reports whether the player may bid on the open window: anyone
// except the active player and the discarder, while they hold buy tokens.
// The discarder chose to let the card go; the active player can pick it up
// for free as their draw.
func (g *Game) buyEligible(userID string) bool {
	pl, ok := g.Players[userID]
	if !ok {
		return false
	}
	if userID == g.CurrentPlayerID() || userID == g.Buy.DiscarderID {
		return false
	}
	return pl.BuysRemaining > 0
}

// OpenBuyWindow opens the window over the current discard top. It reports
// false when there is nothing to contest or nobody is eligible, in which
// case play proceeds straight to the next draw phase.
func (g *Game) OpenBuyWindow(discarderID string) bool {
	if g.Phase != PhasePlaying || g.Buy.Open {
		return false
	}
	top, ok := g.DiscardTop()
	if !ok {
		return false
	}
	g.Buy = BuyWindow{
		Open:        true,
		Card:        top,
		DiscarderID: discarderID,
		Responses:   make(map[string]bool),
	}
	eligible := false
	for _, id := range g.TurnOrder {
		if g.buyEligible(id) {
			eligible = true
			break
		}
	}
	if !eligible {
		g.Buy = BuyWindow{}
	}
	return eligible
}

// RespondToBuy records a player's yes/no for the open window. A repeated
// response overwrites the previous one until the window resolves.
func (g *Game) RespondToBuy(userID string, wants bool) error {
	if g.Phase != PhasePlaying {
		return ErrNotPlaying
	}
	if !g.Buy.Open {
		return ErrBuyWindowClosed
	}
	pl, ok := g.Players[userID]
	if !ok {
		return ErrUnknownPlayer
	}
	if userID == g.CurrentPlayerID() || userID == g.Buy.DiscarderID {
		return ErrNotEligibleToBuy
	}
	if wants && pl.BuysRemaining <= 0 {
		return ErrNoBuysRemaining
	}
	g.Buy.Responses[userID] = wants
	return nil
}

// AllBuyResponsesIn reports whether every eligible player has answered,
// letting the window resolve before its deadline.
func (g *Game) AllBuyResponsesIn() bool {
	if !g.Buy.Open {
		return true
	}
	for _, id := range g.TurnOrder {
		if !g.buyEligible(id) {
			continue
		}
		if _, answered := g.Buy.Responses[id]; !answered {
			return false
		}
	}
	return true
}

// ResolveBuyWindow closes the window. Exactly one buyer wins: the first in
// turn order from the active player among those who said yes. The buyer
// receives the contested card plus one penalty card from the stock (skipped
// when both stock and discard are exhausted) and spends one buy token.
// Non-responders count as "no". Returns nil when nobody bought.
func (g *Game) ResolveBuyWindow() *BuyResult {
	if !g.Buy.Open {
		return nil
	}
	window := g.Buy
	g.Buy = BuyWindow{}

	var buyer *PlayerRoundState
	n := len(g.TurnOrder)
	for i := 0; i < n; i++ {
		id := g.TurnOrder[(g.CurrentTurn+i)%n]
		if !window.Responses[id] {
			continue
		}
		pl := g.Players[id]
		if pl.BuysRemaining <= 0 || id == window.DiscarderID || id == g.CurrentPlayerID() {
			continue
		}
		buyer = pl
		break
	}
	if buyer == nil {
		return nil
	}

	top, ok := g.DiscardTop()
	if !ok || top != window.Card {
		// The contested card is gone; nothing to transfer.
		return nil
	}
	g.DiscardPile = g.DiscardPile[:len(g.DiscardPile)-1]
	buyer.Hand = append(buyer.Hand, top)
	buyer.BuysRemaining--

	result := &BuyResult{BuyerID: buyer.UserID, Card: top}
	if penalty, err := g.drawFromStock(); err == nil {
		buyer.Hand = append(buyer.Hand, penalty)
		result.PenaltyCard = penalty
		result.GotPenalty = true
	}
	return result
}
