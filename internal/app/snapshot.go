package app

import "github.com/MortisHD/SlatteryShanghai/internal/domain"

// PlayerPublic is what every participant may know about a player: melds are
// on the table, hand contents are not.
type PlayerPublic struct {
	UserID        string        `json:"user_id"`
	Seat          int           `json:"seat"`
	HandCount     int           `json:"hand_count"`
	Melds         []domain.Meld `json:"melds"`
	BuysRemaining int           `json:"buys_remaining"`
	GoneDown      bool          `json:"gone_down"`
	Scores        []int         `json:"scores"`
	Total         int           `json:"total"`
}

// SnapshotPayload is the per-viewer view of a running game. Only the
// viewer's own hand is included; opponents appear as counts.
type SnapshotPayload struct {
	Phase         domain.Phase            `json:"phase"`
	Round         int                     `json:"round"`
	Requirement   domain.RoundRequirement `json:"requirement"`
	CurrentTurnID string                  `json:"current_turn_id"`
	HasDrawn      bool                    `json:"has_drawn"`
	StockSize     int                     `json:"stock_size"`
	DiscardTop    *domain.Card            `json:"discard_top,omitempty"`
	BuyOpen       bool                    `json:"buy_open"`
	BuyCard       *domain.Card            `json:"buy_card,omitempty"`
	Hand          []domain.Card           `json:"hand"`
	Players       []PlayerPublic          `json:"players"`
}

// Snapshot builds viewer's partial view of the game per the redaction rule:
// an opponent's hand contents are never exposed, only the count.
func (s *Service) Snapshot(game *domain.Game, viewerID string) SnapshotPayload {
	snap := SnapshotPayload{
		Phase:         game.Phase,
		Round:         game.Round,
		Requirement:   game.Requirement(),
		CurrentTurnID: game.CurrentPlayerID(),
		HasDrawn:      game.HasDrawn,
		BuyOpen:       game.Buy.Open,
	}
	if game.Stock != nil {
		snap.StockSize = game.Stock.Len()
	}
	if top, ok := game.DiscardTop(); ok {
		snap.DiscardTop = &top
	}
	if game.Buy.Open {
		card := game.Buy.Card
		snap.BuyCard = &card
	}
	if viewer, ok := game.Players[viewerID]; ok {
		snap.Hand = append([]domain.Card(nil), viewer.Hand...)
	}
	for _, id := range game.TurnOrder {
		pl := game.Players[id]
		melds := make([]domain.Meld, len(pl.Melds))
		for i, m := range pl.Melds {
			melds[i] = domain.Meld{Type: m.Type, Cards: append([]domain.Card(nil), m.Cards...)}
		}
		scores := make([]int, game.Round)
		for i := 0; i < game.Round && i < domain.TotalRounds; i++ {
			scores[i] = pl.Scores[i]
		}
		snap.Players = append(snap.Players, PlayerPublic{
			UserID:        id,
			Seat:          pl.Seat,
			HandCount:     len(pl.Hand),
			Melds:         melds,
			BuysRemaining: pl.BuysRemaining,
			GoneDown:      pl.GoneDown,
			Scores:        scores,
			Total:         pl.TotalScore(),
		})
	}
	return snap
}
