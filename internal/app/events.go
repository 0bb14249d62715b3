package app

import "github.com/MortisHD/SlatteryShanghai/internal/domain"

// EventKind identifies emitted game events for transport dispatch.
type EventKind string

const (
	EventPlayerJoined    EventKind = "player_joined"
	EventPlayerLeft      EventKind = "player_left"
	EventGameStarted     EventKind = "game_started"
	EventRoundStarted    EventKind = "round_started"
	EventHandDealt       EventKind = "hand_dealt"
	EventTurnAdvanced    EventKind = "turn_advanced"
	EventCardDrawn       EventKind = "card_drawn"
	EventDiscardPickedUp EventKind = "discard_picked_up"
	EventBuyWindowOpened EventKind = "buy_window_opened"
	EventCardBought      EventKind = "card_bought"
	EventCardMelded      EventKind = "card_melded"
	EventCardLaidOff     EventKind = "card_laid_off"
	EventCardDiscarded   EventKind = "card_discarded"
	EventRoundEnded      EventKind = "round_ended"
	EventGameCompleted   EventKind = "game_completed"
)

// Event is a game event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // user IDs; empty means broadcast
}

type PlayerJoinedPayload struct {
	UserID string `json:"user_id"`
	Seat   int    `json:"seat"`
	Owner  bool   `json:"owner"`
}

type PlayerLeftPayload struct {
	UserID string `json:"user_id"`
}

type GameStartedPayload struct {
	Players []string `json:"players"`
}

type RoundStartedPayload struct {
	Round       int                     `json:"round"`
	Requirement domain.RoundRequirement `json:"requirement"`
	HandSize    int                     `json:"hand_size"`
	DiscardTop  domain.Card             `json:"discard_top"`
	LeadUserID  string                  `json:"lead_user_id"`
}

// HandDealtPayload is always targeted at its owner; hands never broadcast.
type HandDealtPayload struct {
	UserID string        `json:"user_id"`
	Hand   []domain.Card `json:"hand"`
}

type TurnAdvancedPayload struct {
	UserID string `json:"user_id"`
}

// CardDrawnPayload reveals the card only to the drawer; everyone else sees
// the public half (who drew, stock size).
type CardDrawnPayload struct {
	UserID    string      `json:"user_id"`
	Card      domain.Card `json:"card"`
	StockSize int         `json:"stock_size"`
}

type CardDrawnPublicPayload struct {
	UserID    string `json:"user_id"`
	StockSize int    `json:"stock_size"`
}

type DiscardPickedUpPayload struct {
	UserID string      `json:"user_id"`
	Card   domain.Card `json:"card"`
}

type BuyWindowOpenedPayload struct {
	Card        domain.Card `json:"card"`
	DiscarderID string      `json:"discarder_id"`
	Seconds     int         `json:"seconds"`
}

type CardBoughtPayload struct {
	UserID     string      `json:"user_id"`
	Card       domain.Card `json:"card"`
	GotPenalty bool        `json:"got_penalty"`
	BuysLeft   int         `json:"buys_left"`
}

type CardMeldedPayload struct {
	UserID   string      `json:"user_id"`
	Meld     domain.Meld `json:"meld"`
	GoneDown bool        `json:"gone_down"`
	HandSize int         `json:"hand_size"`
}

type CardLaidOffPayload struct {
	UserID       string      `json:"user_id"`
	Card         domain.Card `json:"card"`
	TargetUserID string      `json:"target_user_id"`
	MeldIndex    int         `json:"meld_index"`
	HandSize     int         `json:"hand_size"`
}

type CardDiscardedPayload struct {
	UserID     string      `json:"user_id"`
	Card       domain.Card `json:"card"`
	NextUserID string      `json:"next_user_id"`
}

type RoundEndedPayload struct {
	Round    int            `json:"round"`
	WinnerID string         `json:"winner_id"`
	Scores   map[string]int `json:"scores"`
}

type GameCompletedPayload struct {
	Standings      []domain.Standing `json:"standings"`
	WinnerID       string            `json:"winner_id"`
	BalanceChanges map[string]int64  `json:"balance_changes"`
}
