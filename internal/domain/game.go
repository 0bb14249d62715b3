package domain

import (
	"math/rand"
	"sort"
)

// Phase represents the lifecycle stage of a Shanghai game.
type Phase string

const (
	// PhaseLobby is the pre-game state where players can still join.
	PhaseLobby Phase = "lobby"
	// PhasePlaying covers rounds 1 through 7.
	PhasePlaying Phase = "playing"
	// PhaseComplete is the terminal state after round 7 is scored.
	PhaseComplete Phase = "complete"
)

// BuysPerRound is how many buy tokens each player holds at the start of a round.
const BuysPerRound = 3

// PlayerRoundState holds one player's state. Hand, Melds, BuysRemaining and
// GoneDown reset every round; Scores and RoundsWon persist for the game.
type PlayerRoundState struct {
	UserID        string
	Seat          int // 1-based seat number
	Hand          []Card
	Melds         []Meld
	BuysRemaining int
	GoneDown      bool
	Scores        [TotalRounds]int
	RoundsWon     int
}

// TotalScore sums the per-round penalties recorded so far.
func (p *PlayerRoundState) TotalScore() int {
	total := 0
	for _, s := range p.Scores {
		total += s
	}
	return total
}

// Game is the authoritative state machine for one room: hands, melds, the
// shared stock and discard pile, turn order and the buy-window sub-state.
// It is not safe for concurrent use; the room's match loop serializes access.
type Game struct {
	Phase Phase

	Players   map[string]*PlayerRoundState
	TurnOrder []string // userIDs in seat order; index = turn position

	Round       int // 1..7
	CurrentTurn int // index into TurnOrder
	HasDrawn    bool

	Stock       *Stock
	DiscardPile []Card // top is the last element

	Buy BuyWindow

	rng *rand.Rand
}

// NewGame creates a game for the given userIDs in seat order. The first
// round is not dealt until DealRound is called.
func NewGame(userIDs []string, rng *rand.Rand) *Game {
	players := make(map[string]*PlayerRoundState, len(userIDs))
	order := make([]string, 0, len(userIDs))
	for i, id := range userIDs {
		if id == "" {
			continue
		}
		players[id] = &PlayerRoundState{UserID: id, Seat: i + 1}
		order = append(order, id)
	}
	return &Game{
		Phase:     PhasePlaying,
		Players:   players,
		TurnOrder: order,
		rng:       rng,
	}
}

// CurrentPlayerID returns the userID whose turn it is.
func (g *Game) CurrentPlayerID() string {
	if len(g.TurnOrder) == 0 {
		return ""
	}
	return g.TurnOrder[g.CurrentTurn]
}

// Requirement returns the contract for the round in progress.
func (g *Game) Requirement() RoundRequirement {
	return RequirementForRound(g.Round)
}

// DiscardTop returns the top of the discard pile, if any.
func (g *Game) DiscardTop() (Card, bool) {
	if len(g.DiscardPile) == 0 {
		return Card{}, false
	}
	return g.DiscardPile[len(g.DiscardPile)-1], true
}

// DealRound advances to the next round (or deals round 1), builds a fresh
// shuffled two-deck stock, deals 10+round cards per player, flips one card
// to start the discard pile and resets per-round player state. The starting
// player rotates by round number so a different seat leads each round.
func (g *Game) DealRound() {
	g.Round++
	g.Stock = NewStock(g.rng)
	g.DiscardPile = g.DiscardPile[:0]
	g.Buy = BuyWindow{}
	g.HasDrawn = false

	handSize := 10 + g.Round
	for _, id := range g.TurnOrder {
		pl := g.Players[id]
		pl.Hand = pl.Hand[:0]
		for i := 0; i < handSize; i++ {
			pl.Hand = append(pl.Hand, g.Stock.Deal())
		}
		pl.Melds = nil
		pl.BuysRemaining = BuysPerRound
		pl.GoneDown = false
	}

	g.DiscardPile = append(g.DiscardPile, g.Stock.Deal())
	g.CurrentTurn = (g.Round - 1) % len(g.TurnOrder)
}

// EndRound scores the finished round: the winner records zero, every other
// player records the sum of the score values of their retained hand. Round 7
// moves the game to PhaseComplete; earlier rounds deal the next one.
func (g *Game) EndRound(winnerID string) {
	slot := g.Round - 1
	for _, id := range g.TurnOrder {
		pl := g.Players[id]
		if id == winnerID {
			pl.Scores[slot] = 0
			pl.RoundsWon++
			continue
		}
		penalty := 0
		for _, c := range pl.Hand {
			penalty += c.ScoreValue()
		}
		pl.Scores[slot] = penalty
	}

	if g.Round >= TotalRounds {
		g.Phase = PhaseComplete
		return
	}
	g.DealRound()
}

// Standing is one row of the final (or running) scoreboard.
type Standing struct {
	UserID    string `json:"user_id"`
	Seat      int    `json:"seat"`
	Total     int    `json:"total"`
	RoundsWon int    `json:"rounds_won"`
}

// Standings returns players ordered by ascending total score: lowest wins.
// Ties break toward the player with more rounds won, then the lower seat.
func (g *Game) Standings() []Standing {
	out := make([]Standing, 0, len(g.TurnOrder))
	for _, id := range g.TurnOrder {
		pl := g.Players[id]
		out = append(out, Standing{
			UserID:    id,
			Seat:      pl.Seat,
			Total:     pl.TotalScore(),
			RoundsWon: pl.RoundsWon,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total < out[j].Total
		}
		if out[i].RoundsWon != out[j].RoundsWon {
			return out[i].RoundsWon > out[j].RoundsWon
		}
		return out[i].Seat < out[j].Seat
	})
	return out
}

// Settlement holds the gold changes to apply when the game completes.
type Settlement struct {
	BalanceChanges map[string]int64
}

// settlement multipliers by finish position, keyed by player count.
var settlementShares = map[int][]int64{
	2: {1, -1},
	3: {3, -1, -2},
	4: {2, 1, -1, -2},
}

// CalculateSettlement converts final standings into zero-sum gold changes
// scaled by baseAward.
func (g *Game) CalculateSettlement(baseAward int64) Settlement {
	standings := g.Standings()
	shares, ok := settlementShares[len(standings)]
	changes := make(map[string]int64, len(standings))
	for i, st := range standings {
		if !ok || i >= len(shares) {
			changes[st.UserID] = 0
			continue
		}
		changes[st.UserID] = shares[i] * baseAward
	}
	return Settlement{BalanceChanges: changes}
}

// drawFromStock pops the stock, recycling the discard pile (minus its top
// card) when the stock is empty. Returns ErrNoCardsAvailable when recycling
// is impossible.
func (g *Game) drawFromStock() (Card, error) {
	if g.Stock.IsEmpty() {
		if len(g.DiscardPile) <= 1 {
			return Card{}, ErrNoCardsAvailable
		}
		top := g.DiscardPile[len(g.DiscardPile)-1]
		recycle := g.DiscardPile[:len(g.DiscardPile)-1]
		if !g.Stock.Reset(recycle) {
			return Card{}, ErrNoCardsAvailable
		}
		g.DiscardPile = append(g.DiscardPile[:0], top)
	}
	return g.Stock.Deal(), nil
}

// goOutAllowed re-scans the player's cumulative melds against the round
// contract; a nil error means an empty hand ends the round.
func (g *Game) goOutAllowed(pl *PlayerRoundState) error {
	req := g.Requirement()
	if req.Satisfies(pl.Melds) {
		return nil
	}
	setsShort, runsShort := req.MissingCounts(pl.Melds)
	return &RequirementError{Round: g.Round, SetsShort: setsShort, RunsShort: runsShort}
}

func (g *Game) advanceTurn() {
	g.CurrentTurn = (g.CurrentTurn + 1) % len(g.TurnOrder)
	g.HasDrawn = false
}
