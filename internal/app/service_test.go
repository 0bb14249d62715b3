package app

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/MortisHD/SlatteryShanghai/internal/domain"
)

func newTestService(seed int64) *Service {
	return NewService(rand.New(rand.NewSource(seed)), 3, 100)
}

func TestStartGameDealsRoundOne(t *testing.T) {
	svc := newTestService(42)

	game, events, err := svc.StartGame([]string{"u1", "u2", ""})
	if err != nil {
		t.Fatalf("start game error: %v", err)
	}
	if game.Round != 1 {
		t.Fatalf("round = %d, want 1", game.Round)
	}

	handEvents := 0
	for _, ev := range events {
		if ev.Kind == EventHandDealt {
			handEvents++
			payload := ev.Payload.(HandDealtPayload)
			if len(payload.Hand) != 11 {
				t.Fatalf("hand size = %d, want 11", len(payload.Hand))
			}
			if len(ev.Recipients) != 1 || ev.Recipients[0] != payload.UserID {
				t.Fatalf("hand event must target its owner, got %v", ev.Recipients)
			}
		}
	}
	if handEvents != 2 {
		t.Fatalf("hand events = %d, want 2", handEvents)
	}
}

func TestStartGameRejectsBadSeatCounts(t *testing.T) {
	svc := newTestService(1)
	if _, _, err := svc.StartGame([]string{"u1", "", ""}); !errors.Is(err, ErrTooFewPlayers) {
		t.Fatalf("err = %v, want ErrTooFewPlayers", err)
	}
	if _, _, err := svc.StartGame([]string{"a", "b", "c", "d", "e"}); !errors.Is(err, ErrTooManySeats) {
		t.Fatalf("err = %v, want ErrTooManySeats", err)
	}
}

func TestDrawRevealsCardOnlyToDrawer(t *testing.T) {
	svc := newTestService(7)
	game, _, err := svc.StartGame([]string{"u1", "u2"})
	if err != nil {
		t.Fatalf("start game error: %v", err)
	}

	events, err := svc.Draw(game, "u1")
	if err != nil {
		t.Fatalf("draw: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	private := events[0]
	if len(private.Recipients) != 1 || private.Recipients[0] != "u1" {
		t.Fatalf("private draw event recipients = %v", private.Recipients)
	}
	public := events[1]
	if len(public.Recipients) != 0 {
		t.Fatal("public draw event must broadcast")
	}
	if _, ok := public.Payload.(CardDrawnPublicPayload); !ok {
		t.Fatalf("public payload %T must not carry the card", public.Payload)
	}
}

// The §-style scenario: round 1, 2 players, 11 cards each. u1 draws, melds a
// set of three 7s, discards a king. u2 cannot go out having melded too little.
func TestRoundOneScenario(t *testing.T) {
	svc := newTestService(11)
	game, _, err := svc.StartGame([]string{"u1", "u2"})
	if err != nil {
		t.Fatalf("start game error: %v", err)
	}

	if _, err := svc.Draw(game, "u1"); err != nil {
		t.Fatalf("draw: %v", err)
	}

	// Fix u1's hand for determinism: 12 cards after the draw.
	game.Players["u1"].Hand = []domain.Card{
		{Suit: domain.Hearts, Rank: 7}, {Suit: domain.Spades, Rank: 7}, {Suit: domain.Clubs, Rank: 7},
		{Suit: domain.Hearts, Rank: 2}, {Suit: domain.Hearts, Rank: 3}, {Suit: domain.Hearts, Rank: 4},
		{Suit: domain.Diamonds, Rank: 9}, {Suit: domain.Clubs, Rank: 10}, {Suit: domain.Spades, Rank: 2},
		{Suit: domain.Diamonds, Rank: 5}, {Suit: domain.Clubs, Rank: 6}, {Suit: domain.Spades, Rank: 13},
	}

	events, err := svc.MakeMeld(game, "u1", []int{0, 1, 2}, domain.MeldSet)
	if err != nil {
		t.Fatalf("meld: %v", err)
	}
	melded := events[0].Payload.(CardMeldedPayload)
	if melded.GoneDown {
		t.Fatal("one set does not meet the round 1 contract")
	}

	// Discard the king (now index 8).
	events, err = svc.Discard(game, "u1", 8)
	if err != nil {
		t.Fatalf("discard: %v", err)
	}
	discarded := events[0].Payload.(CardDiscardedPayload)
	if discarded.Card != (domain.Card{Suit: domain.Spades, Rank: 13}) {
		t.Fatalf("discarded %v, want K♠", discarded.Card)
	}
	if game.CurrentPlayerID() != "u2" {
		t.Fatalf("turn = %s, want u2", game.CurrentPlayerID())
	}

	// u2 tries to go out with a single set laid; the attempt must fail and
	// leave their state untouched.
	if _, err := svc.Draw(game, "u2"); err != nil {
		t.Fatalf("u2 draw: %v", err)
	}
	game.Players["u2"].Melds = []domain.Meld{
		{Type: domain.MeldSet, Cards: []domain.Card{
			{Suit: domain.Hearts, Rank: 9}, {Suit: domain.Spades, Rank: 9}, {Suit: domain.Clubs, Rank: 9},
		}},
	}
	game.Players["u2"].Hand = []domain.Card{{Suit: domain.Diamonds, Rank: 4}}

	_, err = svc.Discard(game, "u2", 0)
	if !errors.Is(err, domain.ErrRequirementNotMet) {
		t.Fatalf("err = %v, want ErrRequirementNotMet", err)
	}
	if len(game.Players["u2"].Hand) != 1 {
		t.Fatal("failed go-out must restore the hand")
	}
}

func TestDiscardOpensBuyWindow(t *testing.T) {
	svc := newTestService(23)
	game, _, err := svc.StartGame([]string{"u1", "u2", "u3"})
	if err != nil {
		t.Fatalf("start game error: %v", err)
	}

	if _, err := svc.Draw(game, "u1"); err != nil {
		t.Fatalf("draw: %v", err)
	}
	events, err := svc.Discard(game, "u1", 0)
	if err != nil {
		t.Fatalf("discard: %v", err)
	}

	found := false
	for _, ev := range events {
		if ev.Kind == EventBuyWindowOpened {
			found = true
			payload := ev.Payload.(BuyWindowOpenedPayload)
			if payload.Seconds != 3 {
				t.Fatalf("window seconds = %d, want 3", payload.Seconds)
			}
		}
	}
	if !found {
		t.Fatal("expected a buy window with three players")
	}
	if !game.Buy.Open {
		t.Fatal("domain window should be open")
	}
}

func TestResolveBuyWindowEmitsPurchase(t *testing.T) {
	svc := newTestService(29)
	game, _, err := svc.StartGame([]string{"u1", "u2", "u3"})
	if err != nil {
		t.Fatalf("start game error: %v", err)
	}
	if _, err := svc.Draw(game, "u1"); err != nil {
		t.Fatalf("draw: %v", err)
	}
	if _, err := svc.Discard(game, "u1", 0); err != nil {
		t.Fatalf("discard: %v", err)
	}
	if err := svc.RespondToBuy(game, "u3", true); err != nil {
		t.Fatalf("respond: %v", err)
	}

	events := svc.ResolveBuyWindow(game)
	kinds := make(map[EventKind]bool)
	for _, ev := range events {
		kinds[ev.Kind] = true
	}
	if !kinds[EventCardBought] || !kinds[EventHandDealt] || !kinds[EventTurnAdvanced] {
		t.Fatalf("missing resolution events, got %v", kinds)
	}
}

func TestGoingOutEndsRoundAndDealsNext(t *testing.T) {
	svc := newTestService(31)
	game, _, err := svc.StartGame([]string{"u1", "u2"})
	if err != nil {
		t.Fatalf("start game error: %v", err)
	}

	if _, err := svc.Draw(game, "u1"); err != nil {
		t.Fatalf("draw: %v", err)
	}
	pl := game.Players["u1"]
	pl.Melds = []domain.Meld{
		{Type: domain.MeldSet, Cards: []domain.Card{
			{Suit: domain.Hearts, Rank: 7}, {Suit: domain.Spades, Rank: 7}, {Suit: domain.Clubs, Rank: 7},
		}},
		{Type: domain.MeldSet, Cards: []domain.Card{
			{Suit: domain.Hearts, Rank: 9}, {Suit: domain.Spades, Rank: 9}, {Suit: domain.Clubs, Rank: 9},
		}},
	}
	pl.GoneDown = true
	pl.Hand = []domain.Card{{Suit: domain.Clubs, Rank: 13}}

	events, err := svc.Discard(game, "u1", 0)
	if err != nil {
		t.Fatalf("discard: %v", err)
	}

	kinds := make([]EventKind, 0, len(events))
	for _, ev := range events {
		kinds = append(kinds, ev.Kind)
	}
	sawRoundEnded, sawRoundStarted := false, false
	for _, k := range kinds {
		if k == EventRoundEnded {
			sawRoundEnded = true
		}
		if k == EventRoundStarted {
			sawRoundStarted = true
		}
	}
	if !sawRoundEnded || !sawRoundStarted {
		t.Fatalf("events = %v, want round end then next round start", kinds)
	}
	if game.Round != 2 {
		t.Fatalf("round = %d, want 2", game.Round)
	}
	for _, id := range game.TurnOrder {
		if got := len(game.Players[id].Hand); got != 12 {
			t.Fatalf("%s hand = %d, want 12", id, got)
		}
	}
}

func TestGameCompletedCarriesSettlement(t *testing.T) {
	svc := newTestService(37)
	game, _, err := svc.StartGame([]string{"u1", "u2"})
	if err != nil {
		t.Fatalf("start game error: %v", err)
	}
	game.Round = domain.TotalRounds // finishing this round ends the game

	if _, err := svc.Draw(game, "u1"); err != nil {
		t.Fatalf("draw: %v", err)
	}
	pl := game.Players["u1"]
	pl.Melds = []domain.Meld{
		{Type: domain.MeldRun, Cards: []domain.Card{
			{Suit: domain.Hearts, Rank: 2}, {Suit: domain.Hearts, Rank: 3},
			{Suit: domain.Hearts, Rank: 4}, {Suit: domain.Hearts, Rank: 5},
		}},
		{Type: domain.MeldRun, Cards: []domain.Card{
			{Suit: domain.Spades, Rank: 2}, {Suit: domain.Spades, Rank: 3},
			{Suit: domain.Spades, Rank: 4}, {Suit: domain.Spades, Rank: 5},
		}},
		{Type: domain.MeldRun, Cards: []domain.Card{
			{Suit: domain.Clubs, Rank: 2}, {Suit: domain.Clubs, Rank: 3},
			{Suit: domain.Clubs, Rank: 4}, {Suit: domain.Clubs, Rank: 5},
		}},
	}
	pl.GoneDown = true
	pl.Hand = []domain.Card{{Suit: domain.Clubs, Rank: 13}}

	events, err := svc.Discard(game, "u1", 0)
	if err != nil {
		t.Fatalf("discard: %v", err)
	}

	var completed *GameCompletedPayload
	for _, ev := range events {
		if ev.Kind == EventGameCompleted {
			payload := ev.Payload.(GameCompletedPayload)
			completed = &payload
		}
	}
	if completed == nil {
		t.Fatal("expected a game completed event")
	}
	if completed.WinnerID != "u1" {
		t.Fatalf("winner = %s, want u1", completed.WinnerID)
	}
	if completed.BalanceChanges["u1"] != 100 || completed.BalanceChanges["u2"] != -100 {
		t.Fatalf("settlement = %v", completed.BalanceChanges)
	}
	if game.Phase != domain.PhaseComplete {
		t.Fatalf("phase = %s, want complete", game.Phase)
	}
}

func TestSnapshotRedactsOpponentHands(t *testing.T) {
	svc := newTestService(41)
	game, _, err := svc.StartGame([]string{"u1", "u2"})
	if err != nil {
		t.Fatalf("start game error: %v", err)
	}

	snap := svc.Snapshot(game, "u1")
	if len(snap.Hand) != 11 {
		t.Fatalf("own hand = %d cards, want 11", len(snap.Hand))
	}
	for _, pl := range snap.Players {
		if pl.HandCount != 11 {
			t.Fatalf("%s hand count = %d, want 11", pl.UserID, pl.HandCount)
		}
	}
	if snap.DiscardTop == nil {
		t.Fatal("snapshot should expose the discard top")
	}
	if snap.CurrentTurnID != "u1" {
		t.Fatalf("turn = %s, want u1", snap.CurrentTurnID)
	}
	if snap.Requirement.Round != 1 {
		t.Fatalf("requirement round = %d, want 1", snap.Requirement.Round)
	}
}
