package nakama

import (
	"github.com/MortisHD/SlatteryShanghai/internal/app"
	"github.com/MortisHD/SlatteryShanghai/internal/domain"
)

// Client request payloads, decoded from JSON match data.

type makeMeldRequest struct {
	Indices []int  `json:"indices"`
	Type    string `json:"type"` // "set" or "run"
}

type layOffRequest struct {
	CardIndex    int    `json:"card_index"`
	TargetUserID string `json:"target_user_id"`
	MeldIndex    int    `json:"meld_index"`
}

type discardRequest struct {
	CardIndex int `json:"card_index"`
}

type buyResponseRequest struct {
	Wants bool `json:"wants"`
}

type moveCardRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

type gameErrorEvent struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// MatchLabel is the JSON document stored as the Nakama match label; list
// queries filter on its fields.
type MatchLabel struct {
	Game  string `json:"game"`
	Code  string `json:"code"`
	Open  int    `json:"open"`
	Phase string `json:"phase"`
}

// meldTypeFromWire validates the client-provided meld type string.
func meldTypeFromWire(s string) (domain.MeldType, bool) {
	switch domain.MeldType(s) {
	case domain.MeldSet:
		return domain.MeldSet, true
	case domain.MeldRun:
		return domain.MeldRun, true
	}
	return "", false
}

// opCodeForEvent maps an app event kind to its wire opcode.
func opCodeForEvent(kind app.EventKind) (int64, bool) {
	switch kind {
	case app.EventGameStarted:
		return OpGameStarted, true
	case app.EventRoundStarted:
		return OpRoundStarted, true
	case app.EventHandDealt:
		return OpHandDealt, true
	case app.EventTurnAdvanced:
		return OpTurnAdvanced, true
	case app.EventCardDrawn:
		return OpCardDrawn, true
	case app.EventDiscardPickedUp:
		return OpDiscardTaken, true
	case app.EventBuyWindowOpened:
		return OpBuyWindowOpened, true
	case app.EventCardBought:
		return OpCardBought, true
	case app.EventCardMelded:
		return OpCardMelded, true
	case app.EventCardLaidOff:
		return OpCardLaidOff, true
	case app.EventCardDiscarded:
		return OpCardDiscarded, true
	case app.EventRoundEnded:
		return OpRoundEnded, true
	case app.EventGameCompleted:
		return OpGameCompleted, true
	}
	return 0, false
}
