package app

import (
	"errors"
	"math/rand"
	"time"

	"github.com/MortisHD/SlatteryShanghai/internal/domain"
)

var (
	ErrTooFewPlayers = errors.New("not enough players to start")
	ErrTooManySeats  = errors.New("too many players for a two-deck shoe")
)

// Service contains the Shanghai use-cases operating on domain state. Each
// action validates, mutates the Game and returns the events the transport
// should relay; rejected actions return a sentinel error and leave the game
// untouched.
type Service struct {
	rng              *rand.Rand
	buyWindowSeconds int
	baseAward        int64
}

// NewService constructs a Service with the provided rng or a time-seeded
// default. buyWindowSeconds controls how long a discard stays contestable;
// baseAward scales the end-of-game gold settlement.
func NewService(rng *rand.Rand, buyWindowSeconds int, baseAward int64) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if buyWindowSeconds <= 0 {
		buyWindowSeconds = 3
	}
	return &Service{rng: rng, buyWindowSeconds: buyWindowSeconds, baseAward: baseAward}
}

// BuyWindowSeconds returns the configured buy-window duration.
func (s *Service) BuyWindowSeconds() int {
	return s.buyWindowSeconds
}

// StartGame creates the domain Game for the given seat-ordered userIDs
// (empty strings mark empty seats) and deals round 1.
func (s *Service) StartGame(playerIDs []string) (*domain.Game, []Event, error) {
	occupied := 0
	for _, id := range playerIDs {
		if id != "" {
			occupied++
		}
	}
	if occupied < MinPlayersToStart {
		return nil, nil, ErrTooFewPlayers
	}
	if occupied > MaxPlayers {
		return nil, nil, ErrTooManySeats
	}

	game := domain.NewGame(playerIDs, s.rng)
	game.DealRound()

	events := []Event{{
		Kind:    EventGameStarted,
		Payload: GameStartedPayload{Players: append([]string(nil), game.TurnOrder...)},
	}}
	events = append(events, s.roundStartEvents(game)...)
	return game, events, nil
}

// roundStartEvents announces the new round and deals every hand privately.
func (s *Service) roundStartEvents(game *domain.Game) []Event {
	top, _ := game.DiscardTop()
	events := []Event{{
		Kind: EventRoundStarted,
		Payload: RoundStartedPayload{
			Round:       game.Round,
			Requirement: game.Requirement(),
			HandSize:    10 + game.Round,
			DiscardTop:  top,
			LeadUserID:  game.CurrentPlayerID(),
		},
	}}
	for _, id := range game.TurnOrder {
		pl := game.Players[id]
		events = append(events, Event{
			Kind: EventHandDealt,
			Payload: HandDealtPayload{
				UserID: id,
				Hand:   append([]domain.Card(nil), pl.Hand...),
			},
			Recipients: []string{id},
		})
	}
	return events
}

// Draw pulls from the stock for the active player. The drawn card is
// revealed only to the drawer.
func (s *Service) Draw(game *domain.Game, userID string) ([]Event, error) {
	card, err := game.Draw(userID)
	if err != nil {
		return nil, err
	}
	return []Event{
		{
			Kind:       EventCardDrawn,
			Payload:    CardDrawnPayload{UserID: userID, Card: card, StockSize: game.Stock.Len()},
			Recipients: []string{userID},
		},
		{
			Kind:    EventCardDrawn,
			Payload: CardDrawnPublicPayload{UserID: userID, StockSize: game.Stock.Len()},
		},
	}, nil
}

// PickUpDiscard takes the discard top as the active player's draw. The pile
// top is public, so the event broadcasts.
func (s *Service) PickUpDiscard(game *domain.Game, userID string) ([]Event, error) {
	card, err := game.PickUpDiscard(userID)
	if err != nil {
		return nil, err
	}
	return []Event{{
		Kind:    EventDiscardPickedUp,
		Payload: DiscardPickedUpPayload{UserID: userID, Card: card},
	}}, nil
}

// MakeMeld lays down a meld for the active player; going out by melding
// ends the round immediately.
func (s *Service) MakeMeld(game *domain.Game, userID string, indices []int, meldType domain.MeldType) ([]Event, error) {
	meld, wentOut, err := game.MakeMeld(userID, indices, meldType)
	if err != nil {
		return nil, err
	}
	pl := game.Players[userID]
	events := []Event{{
		Kind: EventCardMelded,
		Payload: CardMeldedPayload{
			UserID:   userID,
			Meld:     meld,
			GoneDown: pl.GoneDown,
			HandSize: len(pl.Hand),
		},
	}}
	if wentOut {
		events = append(events, s.finishRound(game, userID)...)
	}
	return events, nil
}

// LayOff extends an existing meld with one card from the active player's hand.
func (s *Service) LayOff(game *domain.Game, userID string, cardIndex int, targetUserID string, meldIndex int) ([]Event, error) {
	pl, ok := game.Players[userID]
	if !ok {
		return nil, domain.ErrUnknownPlayer
	}
	var card domain.Card
	if cardIndex >= 0 && cardIndex < len(pl.Hand) {
		card = pl.Hand[cardIndex]
	}
	wentOut, err := game.LayOff(userID, cardIndex, targetUserID, meldIndex)
	if err != nil {
		return nil, err
	}
	events := []Event{{
		Kind: EventCardLaidOff,
		Payload: CardLaidOffPayload{
			UserID:       userID,
			Card:         card,
			TargetUserID: targetUserID,
			MeldIndex:    meldIndex,
			HandSize:     len(pl.Hand),
		},
	}}
	if wentOut {
		events = append(events, s.finishRound(game, userID)...)
	}
	return events, nil
}

// Discard ends the meld phase. A non-terminal discard advances the turn and
// opens the buy window when anyone is eligible to contest the card; the
// transport resolves the window after BuyWindowSeconds.
func (s *Service) Discard(game *domain.Game, userID string, cardIndex int) ([]Event, error) {
	card, wentOut, err := game.Discard(userID, cardIndex)
	if err != nil {
		return nil, err
	}
	if wentOut {
		events := []Event{{
			Kind:    EventCardDiscarded,
			Payload: CardDiscardedPayload{UserID: userID, Card: card},
		}}
		return append(events, s.finishRound(game, userID)...), nil
	}

	next := game.CurrentPlayerID()
	events := []Event{{
		Kind:    EventCardDiscarded,
		Payload: CardDiscardedPayload{UserID: userID, Card: card, NextUserID: next},
	}}
	if game.OpenBuyWindow(userID) {
		events = append(events, Event{
			Kind: EventBuyWindowOpened,
			Payload: BuyWindowOpenedPayload{
				Card:        card,
				DiscarderID: userID,
				Seconds:     s.buyWindowSeconds,
			},
		})
	} else {
		events = append(events, Event{
			Kind:    EventTurnAdvanced,
			Payload: TurnAdvancedPayload{UserID: next},
		})
	}
	return events, nil
}

// RespondToBuy records a yes/no for the open window. Responses emit no
// events; the resolution does.
func (s *Service) RespondToBuy(game *domain.Game, userID string, wants bool) error {
	return game.RespondToBuy(userID, wants)
}

// ResolveBuyWindow closes the window, hands the contested card (plus a
// penalty card, revealed only to the buyer) to the first requester in turn
// order, and lets the next player's draw phase begin.
func (s *Service) ResolveBuyWindow(game *domain.Game) []Event {
	result := game.ResolveBuyWindow()
	var events []Event
	if result != nil {
		pl := game.Players[result.BuyerID]
		events = append(events,
			Event{
				Kind: EventCardBought,
				Payload: CardBoughtPayload{
					UserID:     result.BuyerID,
					Card:       result.Card,
					GotPenalty: result.GotPenalty,
					BuysLeft:   pl.BuysRemaining,
				},
			},
			Event{
				Kind: EventHandDealt,
				Payload: HandDealtPayload{
					UserID: result.BuyerID,
					Hand:   append([]domain.Card(nil), pl.Hand...),
				},
				Recipients: []string{result.BuyerID},
			},
		)
	}
	events = append(events, Event{
		Kind:    EventTurnAdvanced,
		Payload: TurnAdvancedPayload{UserID: game.CurrentPlayerID()},
	})
	return events
}

// finishRound scores the round for winnerID and either deals the next round
// or completes the game with standings and the gold settlement.
func (s *Service) finishRound(game *domain.Game, winnerID string) []Event {
	round := game.Round
	game.EndRound(winnerID)

	scores := make(map[string]int, len(game.TurnOrder))
	for _, id := range game.TurnOrder {
		scores[id] = game.Players[id].Scores[round-1]
	}
	events := []Event{{
		Kind:    EventRoundEnded,
		Payload: RoundEndedPayload{Round: round, WinnerID: winnerID, Scores: scores},
	}}

	if game.Phase == domain.PhaseComplete {
		standings := game.Standings()
		settlement := game.CalculateSettlement(s.baseAward)
		return append(events, Event{
			Kind: EventGameCompleted,
			Payload: GameCompletedPayload{
				Standings:      standings,
				WinnerID:       standings[0].UserID,
				BalanceChanges: settlement.BalanceChanges,
			},
		})
	}

	return append(events, s.roundStartEvents(game)...)
}
