package domain

import "sort"

// activePlayer resolves userID to its round state and checks that the game
// is running, the player exists and it is their turn.
func (g *Game) activePlayer(userID string) (*PlayerRoundState, error) {
	if g.Phase != PhasePlaying {
		return nil, ErrNotPlaying
	}
	pl, ok := g.Players[userID]
	if !ok {
		return nil, ErrUnknownPlayer
	}
	if g.CurrentPlayerID() != userID {
		return nil, ErrNotYourTurn
	}
	return pl, nil
}

// Draw takes the top card of the stock into the active player's hand,
// recycling the discard pile into the stock when needed.
func (g *Game) Draw(userID string) (Card, error) {
	pl, err := g.activePlayer(userID)
	if err != nil {
		return Card{}, err
	}
	if g.Buy.Open {
		return Card{}, ErrBuyWindowOpen
	}
	if g.HasDrawn {
		return Card{}, ErrAlreadyDrawn
	}
	card, err := g.drawFromStock()
	if err != nil {
		return Card{}, err
	}
	pl.Hand = append(pl.Hand, card)
	g.HasDrawn = true
	return card, nil
}

// PickUpDiscard takes the top of the discard pile instead of drawing.
func (g *Game) PickUpDiscard(userID string) (Card, error) {
	pl, err := g.activePlayer(userID)
	if err != nil {
		return Card{}, err
	}
	if g.Buy.Open {
		return Card{}, ErrBuyWindowOpen
	}
	if g.HasDrawn {
		return Card{}, ErrAlreadyDrawn
	}
	top, ok := g.DiscardTop()
	if !ok {
		return Card{}, ErrEmptyDiscard
	}
	g.DiscardPile = g.DiscardPile[:len(g.DiscardPile)-1]
	pl.Hand = append(pl.Hand, top)
	g.HasDrawn = true
	return top, nil
}

// MakeMeld lays the referenced hand cards down as a new meld of the claimed
// type. It may be called repeatedly before discarding. The gone-down latch
// is recomputed after every successful meld and never un-latches within the
// round. Returns wentOut=true when the meld emptied the hand and the round
// contract was met; a contract failure on an emptying meld reverts the whole
// action.
func (g *Game) MakeMeld(userID string, indices []int, meldType MeldType) (Meld, bool, error) {
	pl, err := g.activePlayer(userID)
	if err != nil {
		return Meld{}, false, err
	}
	if !g.HasDrawn {
		return Meld{}, false, ErrNotDrawnYet
	}
	cards, err := cardsAt(pl.Hand, indices)
	if err != nil {
		return Meld{}, false, err
	}
	if !ValidateMeld(cards, meldType) {
		return Meld{}, false, ErrInvalidMeld
	}

	before := append([]Card(nil), pl.Hand...)
	pl.Hand = removeAt(pl.Hand, indices)
	meld := Meld{Type: meldType, Cards: cards}
	pl.Melds = append(pl.Melds, meld)

	if !pl.GoneDown && g.Requirement().Satisfies(pl.Melds) {
		pl.GoneDown = true
	}

	if len(pl.Hand) == 0 {
		if err := g.goOutAllowed(pl); err != nil {
			pl.Hand = before
			pl.Melds = pl.Melds[:len(pl.Melds)-1]
			return Meld{}, false, err
		}
		return meld, true, nil
	}
	return meld, false, nil
}

// LayOff adds one hand card onto an existing meld, own or another player's.
// Only allowed once the acting player has gone down this round.
func (g *Game) LayOff(userID string, cardIndex int, targetUserID string, meldIndex int) (bool, error) {
	pl, err := g.activePlayer(userID)
	if err != nil {
		return false, err
	}
	if !g.HasDrawn {
		return false, ErrNotDrawnYet
	}
	if !pl.GoneDown {
		return false, ErrNotGoneDown
	}
	if cardIndex < 0 || cardIndex >= len(pl.Hand) {
		return false, ErrInvalidCardIndex
	}
	target, ok := g.Players[targetUserID]
	if !ok {
		return false, ErrUnknownPlayer
	}
	if meldIndex < 0 || meldIndex >= len(target.Melds) {
		return false, ErrInvalidLayOff
	}
	card := pl.Hand[cardIndex]
	if !CanExtend(target.Melds[meldIndex], card) {
		return false, ErrInvalidLayOff
	}

	pl.Hand = append(pl.Hand[:cardIndex], pl.Hand[cardIndex+1:]...)
	target.Melds[meldIndex].Cards = append(target.Melds[meldIndex].Cards, card)

	if len(pl.Hand) == 0 {
		if err := g.goOutAllowed(pl); err != nil {
			// Symmetric revert: pull the card back off the meld.
			m := &target.Melds[meldIndex]
			m.Cards = m.Cards[:len(m.Cards)-1]
			pl.Hand = insertAt(pl.Hand, cardIndex, card)
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// Discard moves one hand card to the top of the discard pile and, unless the
// player went out, advances the turn. A discard that would empty the hand
// without the round contract met is rolled back in full.
func (g *Game) Discard(userID string, cardIndex int) (Card, bool, error) {
	pl, err := g.activePlayer(userID)
	if err != nil {
		return Card{}, false, err
	}
	if !g.HasDrawn {
		return Card{}, false, ErrNotDrawnYet
	}
	if cardIndex < 0 || cardIndex >= len(pl.Hand) {
		return Card{}, false, ErrInvalidCardIndex
	}

	card := pl.Hand[cardIndex]
	pl.Hand = append(pl.Hand[:cardIndex], pl.Hand[cardIndex+1:]...)
	g.DiscardPile = append(g.DiscardPile, card)

	if len(pl.Hand) == 0 {
		if err := g.goOutAllowed(pl); err != nil {
			g.DiscardPile = g.DiscardPile[:len(g.DiscardPile)-1]
			pl.Hand = insertAt(pl.Hand, cardIndex, card)
			return Card{}, false, err
		}
		return card, true, nil
	}

	g.advanceTurn()
	return card, false, nil
}

// MoveCard reorders the player's hand for display; hand order carries no
// game meaning but index-based actions depend on the player's view matching.
func (g *Game) MoveCard(userID string, from, to int) error {
	if g.Phase != PhasePlaying {
		return ErrNotPlaying
	}
	pl, ok := g.Players[userID]
	if !ok {
		return ErrUnknownPlayer
	}
	if from < 0 || from >= len(pl.Hand) || to < 0 || to >= len(pl.Hand) {
		return ErrInvalidCardIndex
	}
	card := pl.Hand[from]
	pl.Hand = append(pl.Hand[:from], pl.Hand[from+1:]...)
	pl.Hand = insertAt(pl.Hand, to, card)
	return nil
}

// cardsAt resolves hand indices to cards, rejecting duplicates and
// out-of-range values before anything mutates.
func cardsAt(hand []Card, indices []int) ([]Card, error) {
	if len(indices) == 0 {
		return nil, ErrInvalidCardIndex
	}
	seen := make(map[int]bool, len(indices))
	out := make([]Card, 0, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= len(hand) || seen[idx] {
			return nil, ErrInvalidCardIndex
		}
		seen[idx] = true
		out = append(out, hand[idx])
	}
	return out, nil
}

// removeAt deletes the given indices from hand, highest first so earlier
// removals cannot shift later ones.
func removeAt(hand []Card, indices []int) []Card {
	sorted := append([]int(nil), indices...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
	for _, idx := range sorted {
		hand = append(hand[:idx], hand[idx+1:]...)
	}
	return hand
}

func insertAt(hand []Card, idx int, card Card) []Card {
	hand = append(hand, Card{})
	copy(hand[idx+1:], hand[idx:])
	hand[idx] = card
	return hand
}
