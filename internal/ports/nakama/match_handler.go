package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"math/rand"
	"strconv"
	"time"

	"github.com/MortisHD/SlatteryShanghai/internal/app"
	"github.com/MortisHD/SlatteryShanghai/internal/bot"
	"github.com/MortisHD/SlatteryShanghai/internal/config"
	"github.com/MortisHD/SlatteryShanghai/internal/domain"
	"github.com/MortisHD/SlatteryShanghai/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

const maxMeldsPerActivation = 8 // safety bound on a bot's meld loop

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	Code      string                      `json:"code"`       // Join code shown to players
	Seats     [app.MaxPlayers]string      `json:"seats"`      // User IDs by seat, empty string means open
	OwnerSeat int                         `json:"owner_seat"` // Seat index of the match owner
	Tick      int64                       `json:"tick"`
	Presences map[string]runtime.Presence `json:"-"` // UserID -> Presence for targeted messaging
	App       *app.Service                `json:"-"`
	Game      *domain.Game                `json:"-"` // nil while in the lobby

	BotsEnabled          bool                  `json:"bots_enabled"`
	BotAutoFillDelay     int                   `json:"bot_auto_fill_delay"` // Seconds before bots fill a solo lobby
	BotWaitUntil         int64                 `json:"bot_wait_until"`      // Tick when the scheduled bot acts
	BuyDeadlineTick      int64                 `json:"buy_deadline_tick"`   // Tick when an open buy window resolves
	LastSinglePlayerTick int64                 `json:"last_single_player_tick"`
	Bots                 map[string]*bot.Agent `json:"-"` // Agents keyed by the user ID they control
	Economy              ports.EconomyPort     `json:"-"`

	rng *rand.Rand
}

func (ms *MatchState) openSeatsCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat == "" {
			count++
		}
	}
	return count
}

func (ms *MatchState) occupiedSeatCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat != "" {
			count++
		}
	}
	return count
}

func (ms *MatchState) seatOf(userID string) int {
	for i, seat := range ms.Seats {
		if seat == userID {
			return i
		}
	}
	return -1
}

// isBotControlled reports whether a seat occupant acts through an agent:
// either a provisioned bot identity or a departed human handed to a caretaker.
func (ms *MatchState) isBotControlled(userID string) bool {
	if bot.IsBot(userID) {
		return true
	}
	_, ok := ms.Bots[userID]
	return ok
}

// connectedHumanCount counts seated players with a live presence.
func (ms *MatchState) connectedHumanCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat == "" || bot.IsBot(seat) {
			continue
		}
		if _, ok := ms.Presences[seat]; ok {
			count++
		}
	}
	return count
}

// firstConnectedHumanSeat returns the lowest seat index with a live human, or -1.
func (ms *MatchState) firstConnectedHumanSeat() int {
	for i, seat := range ms.Seats {
		if seat == "" || bot.IsBot(seat) {
			continue
		}
		if _, ok := ms.Presences[seat]; ok {
			return i
		}
	}
	return -1
}

func (ms *MatchState) agentFor(userID string, logger runtime.Logger) *bot.Agent {
	if agent, ok := ms.Bots[userID]; ok {
		return agent
	}
	identity, ok := bot.GetBotConfig(userID)
	if !ok {
		identity = bot.BotIdentity{UserID: userID, Difficulty: bot.DifficultyMedium}
	}
	agent, err := bot.NewAgent(identity)
	if err != nil {
		logger.Error("agentFor: failed to build agent for %s: %v", userID, err)
		return nil
	}
	ms.Bots[userID] = agent
	return agent
}

type matchHandler struct{}

func newMatchHandler() *matchHandler {
	return &matchHandler{}
}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	if err := bot.LoadIdentities("data/bot_identities.json"); err != nil {
		logger.Warn("MatchInit: Could not load bot identities: %v", err)
	}
	if err := config.LoadGameConfig("data/game_config.json"); err != nil {
		logger.Warn("MatchInit: Could not load game config: %v", err)
	}

	code, _ := params["code"].(string)

	state := &MatchState{
		Code:             code,
		Tick:             0,
		Presences:        make(map[string]runtime.Presence),
		App:              app.NewService(nil, config.GetBuyWindowSeconds(), config.GetBaseAward()),
		OwnerSeat:        -1,
		Bots:             make(map[string]*bot.Agent),
		Economy:          NewNakamaEconomyAdapter(nk),
		BotsEnabled:      true,
		BotAutoFillDelay: config.GetBotAutoFillDelaySeconds(),
		rng:              rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	if cfg := config.GetGameConfig(); cfg != nil {
		state.BotsEnabled = cfg.BotsEnabled
	}

	// Environment overrides for operational tuning.
	if env, ok := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string); ok {
		if val, ok := env["shanghai_bots_enabled"]; ok {
			state.BotsEnabled = val == "true"
		}
		if val, ok := env["shanghai_bot_auto_fill_delay_sec"]; ok {
			if i, err := strconv.Atoi(val); err == nil && i > 0 {
				state.BotAutoFillDelay = i
			}
		}
	}

	tickRate := 1
	return state, tickRate, mh.labelString(state, logger)
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	// Reconnects are always allowed back into their seat.
	if matchState.seatOf(presence.GetUserId()) >= 0 {
		return state, true, ""
	}

	if matchState.Game != nil {
		return state, false, "game already started"
	}

	// Display names double as table identity for players; no two alike.
	for _, p := range matchState.Presences {
		if p.GetUsername() != "" && p.GetUsername() == presence.GetUsername() {
			return state, false, "name taken"
		}
	}

	if matchState.openSeatsCount() <= 0 {
		hasBot := false
		for _, seat := range matchState.Seats {
			if bot.IsBot(seat) {
				hasBot = true
				break
			}
		}
		if !hasBot {
			return state, false, "match full"
		}
	}

	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		userID := p.GetUserId()
		matchState.Presences[userID] = p

		if seat := matchState.seatOf(userID); seat >= 0 {
			// Rejoin: reclaim the seat from any caretaker agent.
			delete(matchState.Bots, userID)
			if matchState.Game != nil {
				mh.sendSnapshot(matchState, dispatcher, logger, userID)
			}
			continue
		}

		assigned := false
		for i, seatUserID := range matchState.Seats {
			if seatUserID == "" {
				matchState.Seats[i] = userID
				assigned = true
				break
			}
		}

		if !assigned && matchState.Game == nil {
			for i, seatUserID := range matchState.Seats {
				if bot.IsBot(seatUserID) {
					logger.Info("MatchJoin: Replacing bot %s with human %s in seat %d", seatUserID, userID, i)
					delete(matchState.Bots, seatUserID)
					matchState.Seats[i] = userID
					assigned = true
					break
				}
			}
		}

		if !assigned {
			logger.Warn("MatchJoin: User %s joined but no seat was available.", userID)
			continue
		}
	}

	if matchState.OwnerSeat < 0 || !mh.seatHasConnectedHuman(matchState, matchState.OwnerSeat) {
		matchState.OwnerSeat = matchState.firstConnectedHumanSeat()
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastLobbyState(matchState, dispatcher, logger)

	return matchState
}

func (mh *matchHandler) seatHasConnectedHuman(state *MatchState, seat int) bool {
	if seat < 0 || seat >= len(state.Seats) {
		return false
	}
	userID := state.Seats[seat]
	if userID == "" || bot.IsBot(userID) {
		return false
	}
	_, ok := state.Presences[userID]
	return ok
}

// MatchLeave is called when one or more players leave the match.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		userID := p.GetUserId()
		delete(matchState.Presences, userID)

		seat := matchState.seatOf(userID)
		if seat < 0 {
			continue
		}
		if matchState.Game == nil {
			matchState.Seats[seat] = ""
			logger.Debug("MatchLeave: User %s left, seat %d freed.", userID, seat)
			continue
		}
		// Mid-game: a caretaker agent plays the hand so the table never
		// stalls on a departed player's turn.
		if agent := matchState.agentFor(userID, logger); agent != nil {
			logger.Info("MatchLeave: User %s left mid-game, seat %d now bot-controlled.", userID, seat)
		}
	}

	if matchState.OwnerSeat < 0 || !mh.seatHasConnectedHuman(matchState, matchState.OwnerSeat) {
		matchState.OwnerSeat = matchState.firstConnectedHumanSeat()
	}

	if matchState.connectedHumanCount() == 0 {
		logger.Info("MatchLeave: Terminating match with no humans.")
		return nil
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastLobbyState(matchState, dispatcher, logger)

	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	for _, msg := range messages {
		mh.handleMessage(ctx, matchState, dispatcher, logger, msg)
	}

	// A timed-out buy window resolves with non-responders counted as "no".
	if matchState.Game != nil && matchState.Game.Buy.Open {
		if matchState.Game.AllBuyResponsesIn() || tick >= matchState.BuyDeadlineTick {
			events := matchState.App.ResolveBuyWindow(matchState.Game)
			mh.applyEvents(ctx, matchState, dispatcher, logger, events)
			matchState.BuyDeadlineTick = 0
		}
	}

	if matchState.BotsEnabled {
		mh.processBots(ctx, matchState, dispatcher, logger)
	}

	return matchState
}

func (mh *matchHandler) handleMessage(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()

	switch msg.GetOpCode() {
	case OpStartGame:
		mh.handleStartGame(ctx, state, dispatcher, logger, senderID)
	case OpRequestSnapshot:
		mh.sendSnapshot(state, dispatcher, logger, senderID)
	case OpMoveCard:
		mh.handleMoveCard(state, dispatcher, logger, senderID, msg.GetData())
	default:
		mh.handleGameAction(ctx, state, dispatcher, logger, senderID, msg)
	}
}

func (mh *matchHandler) handleStartGame(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, senderID string) {
	senderSeat := state.seatOf(senderID)
	if senderSeat != state.OwnerSeat {
		logger.Warn("StartGame: User %s tried to start but is not owner (owner_seat=%d)", senderID, state.OwnerSeat)
		return
	}
	if state.Game != nil {
		logger.Warn("StartGame: Game already in progress.")
		return
	}

	activeCount := state.occupiedSeatCount()
	if activeCount < app.MinPlayersToStart {
		logger.Warn("StartGame: Cannot start with %d players. Need at least %d.", activeCount, app.MinPlayersToStart)
		return
	}

	game, events, err := state.App.StartGame(state.Seats[:])
	if err != nil {
		logger.Error("StartGame: Failed to start game: %v", err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}
	state.Game = game

	// Every bot seat needs a live agent before its first turn.
	for _, seat := range state.Seats {
		if bot.IsBot(seat) {
			state.agentFor(seat, logger)
		}
	}

	mh.updateLabel(state, dispatcher, logger)
	mh.applyEvents(ctx, state, dispatcher, logger, events)

	logger.Info("StartGame: Game started with %d players.", activeCount)
}

// handleGameAction decodes and applies one in-game client action.
func (mh *matchHandler) handleGameAction(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, senderID string, msg runtime.MatchData) {
	if state.Game == nil {
		logger.Warn("handleGameAction: Game not started (op=%d from %s).", msg.GetOpCode(), senderID)
		return
	}

	var events []app.Event
	var err error

	switch msg.GetOpCode() {
	case OpDrawStock:
		events, err = state.App.Draw(state.Game, senderID)
	case OpPickUpDiscard:
		events, err = state.App.PickUpDiscard(state.Game, senderID)
	case OpMakeMeld:
		var req makeMeldRequest
		if err = json.Unmarshal(msg.GetData(), &req); err != nil {
			mh.sendError(state, dispatcher, logger, senderID, 400, "invalid meld request")
			return
		}
		meldType, ok := meldTypeFromWire(req.Type)
		if !ok {
			mh.sendError(state, dispatcher, logger, senderID, 400, "invalid meld type")
			return
		}
		events, err = state.App.MakeMeld(state.Game, senderID, req.Indices, meldType)
	case OpLayOff:
		var req layOffRequest
		if err = json.Unmarshal(msg.GetData(), &req); err != nil {
			mh.sendError(state, dispatcher, logger, senderID, 400, "invalid lay off request")
			return
		}
		events, err = state.App.LayOff(state.Game, senderID, req.CardIndex, req.TargetUserID, req.MeldIndex)
	case OpDiscard:
		var req discardRequest
		if err = json.Unmarshal(msg.GetData(), &req); err != nil {
			mh.sendError(state, dispatcher, logger, senderID, 400, "invalid discard request")
			return
		}
		events, err = state.App.Discard(state.Game, senderID, req.CardIndex)
	case OpRespondToBuy:
		var req buyResponseRequest
		if err = json.Unmarshal(msg.GetData(), &req); err != nil {
			mh.sendError(state, dispatcher, logger, senderID, 400, "invalid buy response")
			return
		}
		err = state.App.RespondToBuy(state.Game, senderID, req.Wants)
	default:
		logger.Warn("handleGameAction: Unknown opcode received: %d", msg.GetOpCode())
		return
	}

	if err != nil {
		logger.Warn("handleGameAction: User %s op %d rejected: %v", senderID, msg.GetOpCode(), err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}

	mh.applyEvents(ctx, state, dispatcher, logger, events)
}

func (mh *matchHandler) handleMoveCard(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, senderID string, data []byte) {
	if state.Game == nil {
		return
	}
	var req moveCardRequest
	if err := json.Unmarshal(data, &req); err != nil {
		mh.sendError(state, dispatcher, logger, senderID, 400, "invalid move request")
		return
	}
	if err := state.Game.MoveCard(senderID, req.From, req.To); err != nil {
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
	}
}

// applyEvents broadcasts service events and runs the side effects some of
// them imply: buy window scheduling, bot memory, wallet settlement.
func (mh *matchHandler) applyEvents(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, events []app.Event) {
	for _, ev := range events {
		mh.dispatchEvent(state, dispatcher, logger, ev)

		switch ev.Kind {
		case app.EventBuyWindowOpened:
			p := ev.Payload.(app.BuyWindowOpenedPayload)
			state.BuyDeadlineTick = state.Tick + int64(state.App.BuyWindowSeconds())
			mh.collectBotBuyResponses(state, logger, p.Card)
			mh.observeForBots(state, p.Card)
		case app.EventCardDiscarded:
			p := ev.Payload.(app.CardDiscardedPayload)
			mh.observeForBots(state, p.Card)
		case app.EventCardBought:
			p := ev.Payload.(app.CardBoughtPayload)
			mh.observeForBots(state, p.Card)
		case app.EventRoundStarted:
			state.BuyDeadlineTick = 0
			state.BotWaitUntil = 0
			for _, agent := range state.Bots {
				agent.ResetRound()
			}
		case app.EventGameCompleted:
			p := ev.Payload.(app.GameCompletedPayload)
			mh.settleWallets(ctx, state, logger, p.BalanceChanges)
			state.Game = nil
			state.BuyDeadlineTick = 0
			state.BotWaitUntil = 0
			mh.updateLabel(state, dispatcher, logger)
		}

		if state.Game == nil {
			return
		}
	}
}

// collectBotBuyResponses answers the open window for every bot-controlled
// seat immediately; only humans get the full timed window.
func (mh *matchHandler) collectBotBuyResponses(state *MatchState, logger runtime.Logger, card domain.Card) {
	if state.Game == nil {
		return
	}
	for _, seat := range state.Seats {
		if seat == "" || !state.isBotControlled(seat) {
			continue
		}
		agent := state.agentFor(seat, logger)
		if agent == nil {
			continue
		}
		wants := agent.Brain.WantsBuy(state.Game, seat, card)
		// Ineligible seats are rejected by the domain; that is fine here.
		_ = state.App.RespondToBuy(state.Game, seat, wants)
	}
}

func (mh *matchHandler) observeForBots(state *MatchState, card domain.Card) {
	for _, agent := range state.Bots {
		agent.Observe(card)
	}
}

func (mh *matchHandler) settleWallets(ctx context.Context, state *MatchState, logger runtime.Logger, changes map[string]int64) {
	if state.Economy == nil {
		return
	}
	updates := make([]ports.WalletUpdate, 0, len(changes))
	for userID, amount := range changes {
		if bot.IsBot(userID) {
			continue
		}
		updates = append(updates, ports.WalletUpdate{
			UserID: userID,
			Amount: amount,
			Metadata: map[string]interface{}{
				"match_id": ctx.Value(runtime.RUNTIME_CTX_MATCH_ID),
				"reason":   "game_settlement",
			},
		})
	}
	if err := state.Economy.UpdateBalances(ctx, updates); err != nil {
		logger.Error("Failed to update balances: %v", err)
	}
}

func (mh *matchHandler) processBots(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	// 1. Auto-fill the lobby when a single human has been waiting.
	if state.Game == nil {
		if state.connectedHumanCount() == 1 && state.openSeatsCount() > 0 {
			if state.LastSinglePlayerTick == 0 {
				state.LastSinglePlayerTick = state.Tick
			}
			if state.Tick-state.LastSinglePlayerTick >= int64(state.BotAutoFillDelay) {
				mh.fillSeatsWithBots(state, dispatcher, logger)
				state.LastSinglePlayerTick = 0
			}
		} else {
			state.LastSinglePlayerTick = 0
		}
		return
	}

	// 2. Drive the active seat when an agent controls it. The buy window
	// freezes turns until it resolves.
	if state.Game.Phase != domain.PhasePlaying || state.Game.Buy.Open {
		return
	}
	currentID := state.Game.CurrentPlayerID()
	if !state.isBotControlled(currentID) {
		state.BotWaitUntil = 0
		return
	}

	if state.BotWaitUntil == 0 {
		state.BotWaitUntil = state.Tick + mh.botDelayTicks(state, currentID)
		return
	}
	if state.Tick < state.BotWaitUntil {
		return
	}
	state.BotWaitUntil = 0

	// Stale-turn guard: the delay may have outlived the turn.
	if state.Game == nil || state.Game.Phase != domain.PhasePlaying ||
		state.Game.Buy.Open || state.Game.CurrentPlayerID() != currentID {
		return
	}

	mh.botTakeTurn(ctx, state, dispatcher, logger, currentID)
}

func (mh *matchHandler) botDelayTicks(state *MatchState, userID string) int64 {
	difficulty := bot.DifficultyMedium
	if identity, ok := bot.GetBotConfig(userID); ok && identity.Difficulty != "" {
		difficulty = identity.Difficulty
	}
	tuning := bot.TuningFor(difficulty)
	minMs, maxMs := tuning.MinActDelayMs, tuning.MaxActDelayMs
	if cfgMin, cfgMax := config.GetBotActDelayOverrideMs(); cfgMin > 0 && cfgMax >= cfgMin {
		minMs, maxMs = cfgMin, cfgMax
	}
	minTicks := minMs / 1000
	maxTicks := maxMs / 1000
	if minTicks < 1 {
		minTicks = 1
	}
	if maxTicks < minTicks {
		maxTicks = minTicks
	}
	return int64(minTicks + state.rng.Intn(maxTicks-minTicks+1))
}

// botTakeTurn plays one full turn for the agent: draw, meld, discard. Every
// step re-checks that the game is still in play and it is still this seat's
// turn before acting.
func (mh *matchHandler) botTakeTurn(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string) {
	agent := state.agentFor(userID, logger)
	if agent == nil {
		return
	}

	if !state.Game.HasDrawn {
		var events []app.Event
		var err error
		if agent.Brain.ChooseDraw(state.Game, userID) == bot.TakeDiscard {
			events, err = state.App.PickUpDiscard(state.Game, userID)
			if err != nil {
				events, err = state.App.Draw(state.Game, userID)
			}
		} else {
			events, err = state.App.Draw(state.Game, userID)
		}
		if err != nil {
			logger.Error("botTakeTurn: %s failed to draw: %v", userID, err)
			return
		}
		mh.applyEvents(ctx, state, dispatcher, logger, events)
	}

	for i := 0; i < maxMeldsPerActivation; i++ {
		if !mh.botStillActive(state, userID) {
			return
		}
		plan, ok := agent.Brain.PlanMeld(state.Game, userID)
		if !ok {
			break
		}
		events, err := state.App.MakeMeld(state.Game, userID, plan.Indices, plan.Type)
		if err != nil {
			logger.Warn("botTakeTurn: %s meld rejected: %v", userID, err)
			break
		}
		mh.applyEvents(ctx, state, dispatcher, logger, events)
	}

	if !mh.botStillActive(state, userID) {
		return
	}
	idx := agent.Brain.ChooseDiscard(state.Game, userID)
	events, err := state.App.Discard(state.Game, userID, idx)
	if err != nil {
		logger.Error("botTakeTurn: %s failed to discard index %d: %v", userID, idx, err)
		return
	}
	mh.applyEvents(ctx, state, dispatcher, logger, events)
}

func (mh *matchHandler) botStillActive(state *MatchState, userID string) bool {
	return state.Game != nil && state.Game.Phase == domain.PhasePlaying &&
		state.Game.CurrentPlayerID() == userID
}

func (mh *matchHandler) fillSeatsWithBots(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	added := false
	for i, seat := range state.Seats {
		if seat != "" {
			continue
		}
		identity := bot.GetBotIdentity(i)
		if identity.UserID == "" || state.seatOf(identity.UserID) >= 0 {
			continue
		}
		agent, err := bot.NewAgent(identity)
		if err != nil {
			logger.Error("fillSeatsWithBots: failed to create agent for %s: %v", identity.UserID, err)
			continue
		}
		state.Seats[i] = identity.UserID
		state.Bots[identity.UserID] = agent
		logger.Info("fillSeatsWithBots: Added bot %s to seat %d", identity.DisplayName, i)
		added = true
	}
	if added {
		mh.updateLabel(state, dispatcher, logger)
		mh.broadcastLobbyState(state, dispatcher, logger)
	}
}

// dispatchEvent serializes one app event and routes it to its recipients.
func (mh *matchHandler) dispatchEvent(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	opCode, ok := opCodeForEvent(ev.Kind)
	if !ok {
		logger.Warn("dispatchEvent: no opcode for event kind %s", ev.Kind)
		return
	}

	data, err := json.Marshal(ev.Payload)
	if err != nil {
		logger.Error("dispatchEvent: failed to marshal %s: %v", ev.Kind, err)
		return
	}

	var recipients []runtime.Presence
	if len(ev.Recipients) > 0 {
		for _, uid := range ev.Recipients {
			if p, ok := state.Presences[uid]; ok {
				recipients = append(recipients, p)
			}
		}
		// Targeted events whose recipients are offline (bots, departed
		// players) must not leak to the rest of the table.
		if len(recipients) == 0 {
			return
		}
	}

	if err := dispatcher.BroadcastMessage(opCode, data, recipients, nil, true); err != nil {
		logger.Error("dispatchEvent: broadcast failed: %v", err)
	}
}

type lobbyPlayer struct {
	UserID      string `json:"user_id"`
	Seat        int    `json:"seat"`
	DisplayName string `json:"display_name"`
	IsBot       bool   `json:"is_bot"`
	IsOwner     bool   `json:"is_owner"`
}

type lobbyState struct {
	Code    string        `json:"code"`
	Phase   string        `json:"phase"`
	Players []lobbyPlayer `json:"players"`
}

func (mh *matchHandler) broadcastLobbyState(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	payload := lobbyState{Code: state.Code, Phase: mh.phaseLabel(state)}
	for i, userID := range state.Seats {
		if userID == "" {
			continue
		}
		displayName := userID
		if p, ok := state.Presences[userID]; ok {
			displayName = p.GetUsername()
		} else if name := bot.GetBotDisplayName(userID); name != "" {
			displayName = name
		}
		payload.Players = append(payload.Players, lobbyPlayer{
			UserID:      userID,
			Seat:        i,
			DisplayName: displayName,
			IsBot:       state.isBotControlled(userID),
			IsOwner:     i == state.OwnerSeat,
		})
	}

	data, err := json.Marshal(payload)
	if err != nil {
		logger.Error("broadcastLobbyState: marshal failed: %v", err)
		return
	}
	if err := dispatcher.BroadcastMessage(OpLobbyState, data, nil, nil, true); err != nil {
		logger.Error("broadcastLobbyState: broadcast failed: %v", err)
	}
}

func (mh *matchHandler) sendSnapshot(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string) {
	if state.Game == nil {
		return
	}
	presence, ok := state.Presences[userID]
	if !ok {
		return
	}
	snap := state.App.Snapshot(state.Game, userID)
	data, err := json.Marshal(snap)
	if err != nil {
		logger.Error("sendSnapshot: marshal failed: %v", err)
		return
	}
	if err := dispatcher.BroadcastMessage(OpSnapshot, data, []runtime.Presence{presence}, nil, true); err != nil {
		logger.Error("sendSnapshot: broadcast failed: %v", err)
	}
}

// sendError delivers a structured error to a single connected user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int, message string) {
	presence, ok := state.Presences[userID]
	if !ok {
		return
	}
	data, err := json.Marshal(gameErrorEvent{Code: code, Message: message})
	if err != nil {
		logger.Error("sendError: marshal failed: %v", err)
		return
	}
	if err := dispatcher.BroadcastMessage(OpGameError, data, []runtime.Presence{presence}, nil, true); err != nil {
		logger.Error("sendError: broadcast failed: %v", err)
	}
}

func (mh *matchHandler) phaseLabel(state *MatchState) string {
	if state.Game != nil {
		return "playing"
	}
	return "lobby"
}

func (mh *matchHandler) labelString(state *MatchState, logger runtime.Logger) string {
	open := state.openSeatsCount()
	if state.Game != nil {
		open = 0
	}
	label := MatchLabel{
		Game:  "shanghai",
		Code:  state.Code,
		Open:  open,
		Phase: mh.phaseLabel(state),
	}
	data, err := json.Marshal(label)
	if err != nil {
		logger.Error("labelString: marshal failed: %v", err)
		return "{}"
	}
	return string(data)
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if err := dispatcher.MatchLabelUpdate(mh.labelString(state, logger)); err != nil {
		logger.Error("updateLabel: failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, reason int) interface{} {
	logger.Debug("MatchTerminate: Match terminated for reason %d", reason)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
