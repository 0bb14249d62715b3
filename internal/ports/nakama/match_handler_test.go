package nakama

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/MortisHD/SlatteryShanghai/internal/domain"
	"github.com/MortisHD/SlatteryShanghai/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// noopLogger implements runtime.Logger for tests that only need to satisfy the interface.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) WithField(string, interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) WithFields(map[string]interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) Fields() map[string]interface{} {
	return nil
}

// mockDispatcher records match dispatcher calls for assertions.
type mockDispatcher struct {
	opCodes      []int64
	lastData     []byte
	labelUpdates int
	lastLabel    string
}

func (md *mockDispatcher) BroadcastMessage(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	md.opCodes = append(md.opCodes, opCode)
	md.lastData = append([]byte(nil), data...)
	return nil
}

func (md *mockDispatcher) BroadcastMessageDeferred(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	return nil
}

func (md *mockDispatcher) MatchKick(presences []runtime.Presence) error {
	return nil
}

func (md *mockDispatcher) MatchLabelUpdate(label string) error {
	md.labelUpdates++
	md.lastLabel = label
	return nil
}

func (md *mockDispatcher) sawOpCode(op int64) bool {
	for _, code := range md.opCodes {
		if code == op {
			return true
		}
	}
	return false
}

// testPresence is a minimal runtime.Presence for driving the handler.
type testPresence struct {
	userID string
}

func (p testPresence) GetUserId() string                 { return p.userID }
func (p testPresence) GetSessionId() string              { return "session-" + p.userID }
func (p testPresence) GetNodeId() string                 { return "node" }
func (p testPresence) GetHidden() bool                   { return false }
func (p testPresence) GetPersistence() bool              { return true }
func (p testPresence) GetUsername() string               { return p.userID }
func (p testPresence) GetStatus() string                 { return "" }
func (p testPresence) GetReason() runtime.PresenceReason { return runtime.PresenceReasonJoin }

// testMatchData wraps a presence with an opcode and payload.
type testMatchData struct {
	testPresence
	opCode int64
	data   []byte
}

func (m testMatchData) GetOpCode() int64      { return m.opCode }
func (m testMatchData) GetData() []byte       { return m.data }
func (m testMatchData) GetReliable() bool     { return true }
func (m testMatchData) GetReceiveTime() int64 { return 0 }

type mockEconomy struct {
	updates []ports.WalletUpdate
}

func (me *mockEconomy) GetBalance(ctx context.Context, userID string) (int64, error) {
	return 0, nil
}

func (me *mockEconomy) UpdateBalances(ctx context.Context, updates []ports.WalletUpdate) error {
	me.updates = append(me.updates, updates...)
	return nil
}

func newTestMatch(t *testing.T, userIDs ...string) (*matchHandler, *MatchState, *mockDispatcher) {
	t.Helper()
	mh := newMatchHandler()
	logger := noopLogger{}
	dispatcher := &mockDispatcher{}

	stateIface, tickRate, label := mh.MatchInit(context.Background(), logger, nil, nil, map[string]interface{}{"code": "TEST42"})
	if tickRate != 1 {
		t.Fatalf("tick rate = %d, want 1", tickRate)
	}
	var parsed MatchLabel
	if err := json.Unmarshal([]byte(label), &parsed); err != nil {
		t.Fatalf("label is not JSON: %v", err)
	}
	if parsed.Game != "shanghai" || parsed.Phase != "lobby" || parsed.Code != "TEST42" {
		t.Fatalf("unexpected initial label: %+v", parsed)
	}

	state := stateIface.(*MatchState)
	state.Economy = &mockEconomy{}
	state.BotsEnabled = false

	presences := make([]runtime.Presence, 0, len(userIDs))
	for _, id := range userIDs {
		presences = append(presences, testPresence{userID: id})
	}
	state = mh.MatchJoin(context.Background(), logger, nil, nil, dispatcher, 0, state, presences).(*MatchState)
	return mh, state, dispatcher
}

func loopWith(mh *matchHandler, state *MatchState, dispatcher *mockDispatcher, tick int64, msgs ...runtime.MatchData) interface{} {
	return mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, tick, state, msgs)
}

func startedGame(t *testing.T, userIDs ...string) (*matchHandler, *MatchState, *mockDispatcher) {
	t.Helper()
	mh, state, dispatcher := newTestMatch(t, userIDs...)
	msg := testMatchData{testPresence: testPresence{userID: userIDs[0]}, opCode: OpStartGame}
	state = loopWith(mh, state, dispatcher, 1, msg).(*MatchState)
	if state.Game == nil {
		t.Fatal("game should have started")
	}
	return mh, state, dispatcher
}

func TestMatchJoinAssignsSeatsAndOwner(t *testing.T) {
	_, state, dispatcher := newTestMatch(t, "u1", "u2")

	if state.Seats[0] != "u1" || state.Seats[1] != "u2" {
		t.Fatalf("seats = %v", state.Seats)
	}
	if state.OwnerSeat != 0 {
		t.Fatalf("owner seat = %d, want 0", state.OwnerSeat)
	}
	if !dispatcher.sawOpCode(OpLobbyState) {
		t.Fatal("expected a lobby state broadcast")
	}
	if dispatcher.labelUpdates == 0 {
		t.Fatal("expected a label update on join")
	}
}

func TestStartGameRequiresOwner(t *testing.T) {
	mh, state, dispatcher := newTestMatch(t, "u1", "u2")

	msg := testMatchData{testPresence: testPresence{userID: "u2"}, opCode: OpStartGame}
	state = loopWith(mh, state, dispatcher, 1, msg).(*MatchState)
	if state.Game != nil {
		t.Fatal("non-owner must not start the game")
	}
}

func TestStartGameDealsAndRelabels(t *testing.T) {
	_, state, dispatcher := startedGame(t, "u1", "u2")

	if state.Game.Round != 1 {
		t.Fatalf("round = %d, want 1", state.Game.Round)
	}
	if !dispatcher.sawOpCode(OpHandDealt) {
		t.Fatal("expected private hand deals")
	}
	var parsed MatchLabel
	if err := json.Unmarshal([]byte(dispatcher.lastLabel), &parsed); err != nil {
		t.Fatalf("label is not JSON: %v", err)
	}
	if parsed.Phase != "playing" || parsed.Open != 0 {
		t.Fatalf("label after start = %+v", parsed)
	}
}

func TestDrawAndDiscardFlow(t *testing.T) {
	mh, state, dispatcher := startedGame(t, "u1", "u2")
	active := state.Game.CurrentPlayerID()

	draw := testMatchData{testPresence: testPresence{userID: active}, opCode: OpDrawStock}
	state = loopWith(mh, state, dispatcher, 2, draw).(*MatchState)
	if !state.Game.HasDrawn {
		t.Fatal("draw should be recorded")
	}

	payload, _ := json.Marshal(discardRequest{CardIndex: 0})
	discard := testMatchData{testPresence: testPresence{userID: active}, opCode: OpDiscard, data: payload}
	state = loopWith(mh, state, dispatcher, 3, discard).(*MatchState)

	if state.Game.CurrentPlayerID() == active {
		t.Fatal("turn should advance after the discard")
	}
	if !dispatcher.sawOpCode(OpCardDiscarded) {
		t.Fatal("expected a discard broadcast")
	}
}

func TestActingOutOfTurnSendsError(t *testing.T) {
	mh, state, dispatcher := startedGame(t, "u1", "u2")
	idle := "u1"
	if state.Game.CurrentPlayerID() == idle {
		idle = "u2"
	}

	draw := testMatchData{testPresence: testPresence{userID: idle}, opCode: OpDrawStock}
	state = loopWith(mh, state, dispatcher, 2, draw).(*MatchState)

	if state.Game.HasDrawn {
		t.Fatal("out-of-turn draw must not mutate the game")
	}
	if !dispatcher.sawOpCode(OpGameError) {
		t.Fatal("expected a targeted error event")
	}
}

func TestBuyWindowResolvesAtDeadline(t *testing.T) {
	mh, state, dispatcher := startedGame(t, "u1", "u2", "u3")
	active := state.Game.CurrentPlayerID()

	draw := testMatchData{testPresence: testPresence{userID: active}, opCode: OpDrawStock}
	state = loopWith(mh, state, dispatcher, 2, draw).(*MatchState)

	payload, _ := json.Marshal(discardRequest{CardIndex: 0})
	discard := testMatchData{testPresence: testPresence{userID: active}, opCode: OpDiscard, data: payload}
	state = loopWith(mh, state, dispatcher, 3, discard).(*MatchState)

	if !state.Game.Buy.Open {
		t.Fatal("three-player discard should open a buy window")
	}
	if state.BuyDeadlineTick != 3+int64(state.App.BuyWindowSeconds()) {
		t.Fatalf("deadline tick = %d", state.BuyDeadlineTick)
	}

	// Nothing happens before the deadline.
	state = loopWith(mh, state, dispatcher, state.BuyDeadlineTick-1).(*MatchState)
	if !state.Game.Buy.Open {
		t.Fatal("window must stay open until the deadline")
	}

	state = loopWith(mh, state, dispatcher, state.BuyDeadlineTick).(*MatchState)
	if state.Game.Buy.Open {
		t.Fatal("window must resolve at the deadline")
	}
	if !dispatcher.sawOpCode(OpTurnAdvanced) {
		t.Fatal("expected the turn to move on after resolution")
	}
}

func TestBuyWindowResolvesEarlyWhenAllResponded(t *testing.T) {
	mh, state, dispatcher := startedGame(t, "u1", "u2", "u3")
	active := state.Game.CurrentPlayerID()

	draw := testMatchData{testPresence: testPresence{userID: active}, opCode: OpDrawStock}
	state = loopWith(mh, state, dispatcher, 2, draw).(*MatchState)
	payload, _ := json.Marshal(discardRequest{CardIndex: 0})
	discard := testMatchData{testPresence: testPresence{userID: active}, opCode: OpDiscard, data: payload}
	state = loopWith(mh, state, dispatcher, 3, discard).(*MatchState)

	buyer := ""
	for _, seat := range state.Seats {
		if seat != "" && seat != active && seat != state.Game.CurrentPlayerID() {
			buyer = seat
			break
		}
	}
	if buyer == "" {
		t.Fatal("no eligible buyer found")
	}

	respPayload, _ := json.Marshal(buyResponseRequest{Wants: true})
	resp := testMatchData{testPresence: testPresence{userID: buyer}, opCode: OpRespondToBuy, data: respPayload}
	state = loopWith(mh, state, dispatcher, 4, resp).(*MatchState)

	if state.Game.Buy.Open {
		t.Fatal("window must resolve once every eligible player responded")
	}
	if !dispatcher.sawOpCode(OpCardBought) {
		t.Fatal("expected a purchase broadcast")
	}
	if got := len(state.Game.Players[buyer].Hand); got != 13 {
		t.Fatalf("buyer hand = %d cards, want 13 (11 dealt + card + penalty)", got)
	}
	if state.Game.Players[buyer].BuysRemaining != 2 {
		t.Fatalf("buys remaining = %d, want 2", state.Game.Players[buyer].BuysRemaining)
	}
}

func TestJoinAttemptRejectsWhenFull(t *testing.T) {
	mh, state, _ := newTestMatch(t, "u1", "u2", "u3", "u4")

	_, allowed, reason := mh.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, nil, 0, state, testPresence{userID: "u5"}, nil)
	if allowed {
		t.Fatal("fifth player must be rejected")
	}
	if reason != "match full" {
		t.Fatalf("reason = %q", reason)
	}
}

func TestJoinAttemptAllowsReconnect(t *testing.T) {
	mh, state, _ := startedGame(t, "u1", "u2")

	if _, allowed, _ := mh.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, nil, 0, state, testPresence{userID: "u2"}, nil); !allowed {
		t.Fatal("seated player must be allowed back in")
	}
	if _, allowed, _ := mh.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, nil, 0, state, testPresence{userID: "u9"}, nil); allowed {
		t.Fatal("strangers cannot join a running game")
	}
}

func TestMatchLeaveTerminatesWithoutHumans(t *testing.T) {
	mh, state, dispatcher := newTestMatch(t, "u1")

	result := mh.MatchLeave(context.Background(), noopLogger{}, nil, nil, dispatcher, 5, state, []runtime.Presence{testPresence{userID: "u1"}})
	if result != nil {
		t.Fatal("match with no humans must terminate")
	}
}

func TestMidGameLeaveHandsSeatToCaretaker(t *testing.T) {
	mh, state, dispatcher := startedGame(t, "u1", "u2", "u3")

	result := mh.MatchLeave(context.Background(), noopLogger{}, nil, nil, dispatcher, 5, state, []runtime.Presence{testPresence{userID: "u3"}})
	state = result.(*MatchState)

	if state.seatOf("u3") < 0 {
		t.Fatal("departed player keeps the seat for rejoin")
	}
	if !state.isBotControlled("u3") {
		t.Fatal("departed player's hand must be bot-controlled")
	}
	if state.Game == nil || state.Game.Phase != domain.PhasePlaying {
		t.Fatal("game must continue")
	}
}
